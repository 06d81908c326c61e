package redirect

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/ediwnll/urlshortener/pkg/shortener/analytics"
	"github.com/ediwnll/urlshortener/pkg/shortener/apierrors"
	"github.com/ediwnll/urlshortener/pkg/shortener/links"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Handler handles short URL redirects
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new redirect handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// Redirect resolves a short code and issues a temporary redirect
// Per request: LOOKUP -> {NOT_FOUND | EXPIRED | ACTIVE -> RECORD -> REDIRECT}.
// Click recording is best-effort: failures are logged and the redirect still
// succeeds.
// @Summary Redirect to the target URL
// @Description Resolve a short code, record the click, and redirect
// @Tags redirect
// @Param code path string true "Short code"
// @Success 307 "Temporary redirect to the target URL"
// @Failure 404 {object} map[string]interface{} "Short code not found"
// @Failure 410 {object} map[string]interface{} "Short link has expired"
// @Router /{code} [get]
func (h *Handler) Redirect(c *gin.Context) {
	code := c.Param("code")

	link, err := links.GetByCode(h.db, code)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	// Expired links answer 410 without recording anything
	if links.IsExpired(link) {
		apierrors.Abort(c, apierrors.ErrExpired)
		return
	}

	if err := links.IncrementClicks(h.db, link.ID); err != nil {
		log.Warn().Err(err).Str("code", code).Msg("failed to increment click count")
	}

	userAgent := headerValue(c, "User-Agent")
	referrer := headerValue(c, "Referer")
	ipHash := hashIP(c.ClientIP())
	if _, err := analytics.RecordClick(h.db, link.ID, userAgent, referrer, ipHash); err != nil {
		log.Warn().Err(err).Str("code", code).Msg("failed to record click event")
	}

	c.Redirect(http.StatusTemporaryRedirect, link.TargetURL)
}

// hashIP one-way hashes a client address; the raw address is never stored or
// logged. A missing address yields nil, not an error.
func hashIP(ip string) *string {
	if ip == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(ip))
	h := hex.EncodeToString(sum[:])[:16]
	return &h
}

func headerValue(c *gin.Context, name string) *string {
	v := c.GetHeader(name)
	if v == "" {
		return nil
	}
	return &v
}

// RegisterRoutes registers redirect routes on the root router
// This should be called AFTER all other routes to avoid conflicts
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/:code", h.Redirect)
}
