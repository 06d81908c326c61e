package links

import (
	"errors"
	"net/url"
	"time"

	"github.com/ediwnll/urlshortener/pkg/shortener/apierrors"
	"github.com/ediwnll/urlshortener/pkg/shortener/models"
	"github.com/ediwnll/urlshortener/pkg/shortener/shortcode"
	"gorm.io/gorm"
)

// maxGenerateAttempts bounds how many generator draws a single create will
// make before giving up with ErrAllocationExhausted. Bounded retry keeps the
// generator stateless; the vanishingly small exhaustion probability is
// surfaced as a retryable error rather than papered over by lengthening the
// code.
const maxGenerateAttempts = 5

// ErrInvalidTargetURL is returned when the destination is not an absolute
// HTTP/HTTPS URL.
var ErrInvalidTargetURL = apierrors.New("VALIDATION_ERROR",
	"target_url must be a valid http or https URL",
	400)

// Create allocates a short link for targetURL. An empty customAlias means a
// code is generated; ttlHours > 0 sets an expiry, anything else means the
// link never expires.
//
// There is no application-level lock around the exists-check-then-insert:
// the unique index on code is the final arbiter, and a duplicate-key error
// from the store is translated back into the domain error (or counted as a
// failed draw on the generated path).
func Create(db *gorm.DB, targetURL, customAlias string, ttlHours int) (*models.ShortLink, error) {
	if !isHTTPURL(targetURL) {
		return nil, ErrInvalidTargetURL
	}

	var expiresAt *time.Time
	if ttlHours > 0 {
		t := time.Now().UTC().Add(time.Duration(ttlHours) * time.Hour)
		expiresAt = &t
	}

	if customAlias != "" {
		if !shortcode.ValidateAlias(customAlias) {
			return nil, apierrors.ErrInvalidAlias
		}
		taken, err := codeExists(db, customAlias)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apierrors.ErrAliasTaken
		}

		link := models.ShortLink{
			Code:        customAlias,
			TargetURL:   targetURL,
			CustomAlias: &customAlias,
			ExpiresAt:   expiresAt,
			IsActive:    true,
		}
		if err := db.Create(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost the race to a concurrent create
				return nil, apierrors.ErrAliasTaken
			}
			return nil, err
		}
		return &link, nil
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code := shortcode.Generate(shortcode.DefaultLength)
		taken, err := codeExists(db, code)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		link := models.ShortLink{
			Code:      code,
			TargetURL: targetURL,
			ExpiresAt: expiresAt,
			IsActive:  true,
		}
		err = db.Create(&link).Error
		if err == nil {
			return &link, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent create claimed the code between the existence
			// check and the insert; counts as a failed draw
			continue
		}
		return nil, err
	}

	return nil, apierrors.ErrAllocationExhausted
}

// GetByCode returns the active link for code, or apierrors.ErrNotFound.
// Expired-but-active links ARE returned: expiration is a separate check so
// callers can distinguish "not found" from "found but expired".
func GetByCode(db *gorm.DB, code string) (*models.ShortLink, error) {
	var link models.ShortLink
	err := db.Where("code = ? AND is_active = ?", code, true).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// IsExpired reports whether the link's expiry is set and in the past.
// Stored timestamps are UTC.
func IsExpired(link *models.ShortLink) bool {
	if link.ExpiresAt == nil {
		return false
	}
	return link.ExpiresAt.Before(time.Now().UTC())
}

// Deactivate soft-deletes the active link for code and reports whether a row
// was affected. The code remains taken for uniqueness afterwards.
func Deactivate(db *gorm.DB, code string) (bool, error) {
	res := db.Model(&models.ShortLink{}).
		Where("code = ? AND is_active = ?", code, true).
		Update("is_active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Purge irreversibly deletes the link for code (active or not) together with
// its click events. The schema declares the cascade; the delete is still
// issued explicitly for both tables so behavior does not depend on the
// store's pragma state.
func Purge(db *gorm.DB, code string) (bool, error) {
	var link models.ShortLink
	err := db.Where("code = ?", code).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("link_id = ?", link.ID).Delete(&models.ClickEvent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&link).Error
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// IncrementClicks atomically adds one to the link's denormalized counter.
// The addition happens in the store so concurrent redirects never lose
// updates.
func IncrementClicks(db *gorm.DB, linkID uint) error {
	return db.Model(&models.ShortLink{}).
		Where("id = ?", linkID).
		UpdateColumn("click_count", gorm.Expr("click_count + ?", 1)).Error
}

// List returns active links newest-first with pagination.
func List(db *gorm.DB, skip, limit int) ([]models.ShortLink, error) {
	var result []models.ShortLink
	err := db.Where("is_active = ?", true).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Find(&result).Error
	return result, err
}

// Count returns the number of active links.
func Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.ShortLink{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

// codeExists checks the full code namespace, active and deactivated rows
// alike: a retired code can never be reused.
func codeExists(db *gorm.DB, code string) (bool, error) {
	var count int64
	err := db.Model(&models.ShortLink{}).Where("code = ?", code).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
