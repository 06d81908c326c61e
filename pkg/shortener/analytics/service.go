package analytics

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ediwnll/urlshortener/pkg/shortener/links"
	"github.com/ediwnll/urlshortener/pkg/shortener/models"
	"gorm.io/gorm"
)

const (
	maxUserAgentLen = 512
	maxReferrerLen  = 2048
	maxIPHashLen    = 64
	topReferrerN    = 10

	// directBucket is where null and empty referrers fold.
	directBucket = "Direct"
)

// RecordClick appends one click event for a link. User agent and referrer
// are stored as received, truncated to the schema limits; there is no
// idempotency, each call creates a distinct event.
func RecordClick(db *gorm.DB, linkID uint, userAgent, referrer, ipHash *string) (*models.ClickEvent, error) {
	click := models.ClickEvent{
		LinkID:    linkID,
		ClickedAt: time.Now().UTC(),
		UserAgent: truncate(userAgent, maxUserAgentLen),
		Referrer:  truncate(referrer, maxReferrerLen),
		IPHash:    truncate(ipHash, maxIPHashLen),
	}
	if err := db.Create(&click).Error; err != nil {
		return nil, err
	}
	return &click, nil
}

// DayCount is the click count for one UTC calendar date.
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// HourCount is the click count for one hour of day aggregated across all
// days.
type HourCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// ReferrerCount is the click count for one referrer domain.
type ReferrerCount struct {
	Referrer string `json:"referrer"`
	Count    int64  `json:"count"`
}

// Analytics is the aggregated click data for one link.
type Analytics struct {
	TotalClicks  int64           `json:"total_clicks"`
	ClicksByDay  []DayCount      `json:"clicks_by_day"`
	TopReferrers []ReferrerCount `json:"top_referrers"`
	ClicksByHour []HourCount     `json:"clicks_by_hour"`
}

// Range restricts aggregation to clicked_at within [Start, End). Nil bounds
// mean unbounded on that side.
type Range struct {
	Start *time.Time
	End   *time.Time
}

// GetAnalytics aggregates click data for the active link identified by code;
// apierrors.ErrNotFound if the code does not resolve. Counting and grouping
// run in the store so the event log is never materialized in memory; only
// the referrer fold (bounded by the number of distinct referrer strings)
// happens here.
func GetAnalytics(db *gorm.DB, code string, r Range) (*Analytics, error) {
	link, err := links.GetByCode(db, code)
	if err != nil {
		return nil, err
	}

	clicks := func() *gorm.DB {
		q := db.Model(&models.ClickEvent{}).Where("link_id = ?", link.ID)
		if r.Start != nil {
			q = q.Where("clicked_at >= ?", r.Start.UTC())
		}
		if r.End != nil {
			q = q.Where("clicked_at < ?", r.End.UTC())
		}
		return q
	}

	result := Analytics{}

	if err := clicks().Count(&result.TotalClicks).Error; err != nil {
		return nil, err
	}

	// Per-day histogram, sparse, ascending by date
	if err := clicks().
		Select("strftime('%Y-%m-%d', clicked_at) AS date, COUNT(*) AS count").
		Group("date").Order("date ASC").
		Scan(&result.ClicksByDay).Error; err != nil {
		return nil, err
	}

	// Hour-of-day histogram, zero-filled to all 24 hours
	var hours []HourCount
	if err := clicks().
		Select("CAST(strftime('%H', clicked_at) AS INTEGER) AS hour, COUNT(*) AS count").
		Group("hour").
		Scan(&hours).Error; err != nil {
		return nil, err
	}
	result.ClicksByHour = make([]HourCount, 24)
	for h := range result.ClicksByHour {
		result.ClicksByHour[h].Hour = h
	}
	for _, hc := range hours {
		if hc.Hour >= 0 && hc.Hour < 24 {
			result.ClicksByHour[hc.Hour].Count = hc.Count
		}
	}

	top, err := topReferrers(clicks())
	if err != nil {
		return nil, err
	}
	result.TopReferrers = top

	return &result, nil
}

// referrerRow is one raw-referrer group from the store. FirstSeen (MIN(id)
// over the group) carries the tie-break ordering.
type referrerRow struct {
	Referrer  *string
	Count     int64
	FirstSeen uint
}

// topReferrers groups clicks by raw referrer in the store, then folds the
// (bounded) groups into registrable domains. Ordering is count descending
// with ties broken by first-seen event id, so equal-count domains always
// come back in the same order.
func topReferrers(clicks *gorm.DB) ([]ReferrerCount, error) {
	var rows []referrerRow
	if err := clicks.
		Select("referrer, COUNT(*) AS count, MIN(id) AS first_seen").
		Group("referrer").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		count     int64
		firstSeen uint
	}
	buckets := make(map[string]*bucket)
	for _, row := range rows {
		domain := referrerDomain(row.Referrer)
		b, ok := buckets[domain]
		if !ok {
			b = &bucket{firstSeen: row.FirstSeen}
			buckets[domain] = b
		}
		b.count += row.Count
		if row.FirstSeen < b.firstSeen {
			b.firstSeen = row.FirstSeen
		}
	}

	type entry struct {
		domain string
		bucket *bucket
	}
	entries := make([]entry, 0, len(buckets))
	for domain, b := range buckets {
		entries = append(entries, entry{domain, b})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].bucket.count != entries[j].bucket.count {
			return entries[i].bucket.count > entries[j].bucket.count
		}
		return entries[i].bucket.firstSeen < entries[j].bucket.firstSeen
	})

	if len(entries) > topReferrerN {
		entries = entries[:topReferrerN]
	}
	top := make([]ReferrerCount, len(entries))
	for i, e := range entries {
		top[i] = ReferrerCount{Referrer: e.domain, Count: e.bucket.count}
	}
	return top, nil
}

// referrerDomain normalizes a raw referrer value to its grouping bucket:
// the host for absolute HTTP(S) URLs, "Direct" for null/empty values, and
// the raw string otherwise.
func referrerDomain(referrer *string) string {
	if referrer == nil || *referrer == "" {
		return directBucket
	}
	raw := *referrer
	if strings.HasPrefix(raw, "http") {
		if u, err := url.Parse(raw); err == nil {
			if u.Host != "" {
				return u.Host
			}
			return directBucket
		}
	}
	return raw
}

func truncate(s *string, max int) *string {
	if s == nil || len(*s) <= max {
		return s
	}
	t := (*s)[:max]
	return &t
}
