package analytics

import (
	"net/http"
	"time"

	"github.com/ediwnll/urlshortener/pkg/shortener/apierrors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles analytics requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new analytics handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// Get returns aggregated click analytics for a link
// @Summary Get URL analytics
// @Description Total clicks, per-day and per-hour histograms, and top referrer domains for a short link
// @Tags analytics
// @Produce json
// @Param code path string true "Short code"
// @Param start_date query string false "Inclusive start date (YYYY-MM-DD, UTC)"
// @Param end_date query string false "Inclusive end date (YYYY-MM-DD, UTC)"
// @Success 200 {object} Analytics
// @Failure 400 {object} map[string]interface{} "Invalid date bound"
// @Failure 404 {object} map[string]interface{} "Short code not found"
// @Router /urls/{code}/analytics [get]
func (h *Handler) Get(c *gin.Context) {
	var r Range
	if s := c.Query("start_date"); s != "" {
		start, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		if err != nil {
			apierrors.Abort(c, apierrors.New("VALIDATION_ERROR",
				"start_date must be formatted as YYYY-MM-DD", http.StatusBadRequest))
			return
		}
		r.Start = &start
	}
	if s := c.Query("end_date"); s != "" {
		end, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		if err != nil {
			apierrors.Abort(c, apierrors.New("VALIDATION_ERROR",
				"end_date must be formatted as YYYY-MM-DD", http.StatusBadRequest))
			return
		}
		// end_date is inclusive: the exclusive bound is the next midnight
		endExclusive := end.AddDate(0, 0, 1)
		r.End = &endExclusive
	}

	result, err := GetAnalytics(h.db, c.Param("code"), r)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RegisterRoutes registers analytics routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/urls/:code/analytics", h.Get)
}
