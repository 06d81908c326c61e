package admin

import (
	"net/http"

	"github.com/ediwnll/urlshortener/pkg/shortener/apierrors"
	"github.com/ediwnll/urlshortener/pkg/shortener/links"
	"github.com/ediwnll/urlshortener/pkg/shortener/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles admin requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new admin handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// StatsResponse represents system statistics
type StatsResponse struct {
	TotalLinks       int64 `json:"total_links"`
	ActiveLinks      int64 `json:"active_links"`
	DeactivatedLinks int64 `json:"deactivated_links"`
	ExpiringLinks    int64 `json:"expiring_links"`
	TotalClicks      int64 `json:"total_clicks"`
	TotalClickEvents int64 `json:"total_click_events"`
	TotalUsers       int64 `json:"total_users"`
}

// GetStats returns system statistics
// @Summary System statistics
// @Description Link and click totals across the whole store
// @Tags admin
// @Produce json
// @Success 200 {object} StatsResponse
// @Security BearerAuth
// @Router /admin/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	var stats StatsResponse

	h.db.Model(&models.ShortLink{}).Count(&stats.TotalLinks)
	h.db.Model(&models.ShortLink{}).Where("is_active = ?", true).Count(&stats.ActiveLinks)
	h.db.Model(&models.ShortLink{}).Where("is_active = ?", false).Count(&stats.DeactivatedLinks)
	h.db.Model(&models.ShortLink{}).Where("expires_at IS NOT NULL").Count(&stats.ExpiringLinks)
	h.db.Model(&models.ClickEvent{}).Count(&stats.TotalClickEvents)
	h.db.Model(&models.User{}).Count(&stats.TotalUsers)

	// Sum of the denormalized per-link counters
	h.db.Model(&models.ShortLink{}).Select("COALESCE(SUM(click_count), 0)").Scan(&stats.TotalClicks)

	c.JSON(http.StatusOK, stats)
}

// PurgeURL irreversibly deletes a link and its click events
// @Summary Purge a shortened URL
// @Description Hard-delete a link (active or deactivated) and all its click events
// @Tags admin
// @Produce json
// @Param code path string true "Short code"
// @Success 200 {object} map[string]bool "deleted"
// @Failure 404 {object} map[string]interface{} "Short code not found"
// @Security BearerAuth
// @Router /admin/urls/{code} [delete]
func (h *Handler) PurgeURL(c *gin.Context) {
	deleted, err := links.Purge(h.db, c.Param("code"))
	if err != nil {
		apierrors.Abort(c, err)
		return
	}
	if !deleted {
		apierrors.Abort(c, apierrors.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// RegisterRoutes registers admin routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.GetStats)
	rg.DELETE("/urls/:code", h.PurgeURL)
}
