package links

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ediwnll/urlshortener/pkg/shortener/apierrors"
	"github.com/ediwnll/urlshortener/pkg/shortener/config"
	"github.com/ediwnll/urlshortener/pkg/shortener/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles link management requests
type Handler struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewHandler creates a new links handler
func NewHandler(db *gorm.DB, cfg *config.Config) *Handler {
	return &Handler{db: db, cfg: cfg}
}

// CreateURLRequest represents the request to shorten a URL
type CreateURLRequest struct {
	TargetURL   string `json:"target_url" binding:"required"`
	CustomAlias string `json:"custom_alias" binding:"omitempty,max=50"`
	TTLHours    int    `json:"ttl_hours"`
}

// BulkCreateRequest represents a bounded batch of create requests
type BulkCreateRequest struct {
	URLs []CreateURLRequest `json:"urls" binding:"required,min=1,max=10,dive"`
}

// URLResponse represents a short link in API responses
type URLResponse struct {
	ID         uint    `json:"id"`
	Code       string  `json:"code"`
	ShortURL   string  `json:"short_url"`
	TargetURL  string  `json:"target_url"`
	CreatedAt  string  `json:"created_at"`
	ExpiresAt  *string `json:"expires_at,omitempty"`
	ClickCount uint    `json:"click_count"`
	IsActive   bool    `json:"is_active"`
}

// BulkResultItem is the per-item outcome of a bulk creation; either URL or
// Error is set.
type BulkResultItem struct {
	URL       *URLResponse `json:"url,omitempty"`
	Error     string       `json:"error,omitempty"`
	TargetURL string       `json:"target_url"`
}

// BulkCreateResponse enumerates per-item results; a partial-failure batch is
// not itself an error.
type BulkCreateResponse struct {
	Results      []BulkResultItem `json:"results"`
	SuccessCount int              `json:"success_count"`
	ErrorCount   int              `json:"error_count"`
}

// ListURLsResponse wraps a page of links with the total active count.
type ListURLsResponse struct {
	URLs  []URLResponse `json:"urls"`
	Total int64         `json:"total"`
}

func (h *Handler) urlToResponse(link *models.ShortLink) URLResponse {
	resp := URLResponse{
		ID:         link.ID,
		Code:       link.Code,
		ShortURL:   h.cfg.ShortURL(link.Code),
		TargetURL:  link.TargetURL,
		CreatedAt:  link.CreatedAt.UTC().Format(time.RFC3339),
		ClickCount: link.ClickCount,
		IsActive:   link.IsActive,
	}
	if link.ExpiresAt != nil {
		s := link.ExpiresAt.UTC().Format(time.RFC3339)
		resp.ExpiresAt = &s
	}
	return resp
}

// Create creates a new short link
// @Summary Create a shortened URL
// @Description Shorten a URL, optionally with a custom alias and a TTL in hours
// @Tags urls
// @Accept json
// @Produce json
// @Param request body CreateURLRequest true "URL details"
// @Success 201 {object} URLResponse
// @Failure 400 {object} map[string]interface{} "Invalid target URL or alias"
// @Failure 409 {object} map[string]interface{} "Alias already taken"
// @Failure 503 {object} map[string]interface{} "Code allocation exhausted"
// @Router /urls [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Abort(c, apierrors.New("VALIDATION_ERROR", err.Error(), http.StatusBadRequest))
		return
	}

	link, err := Create(h.db, req.TargetURL, req.CustomAlias, req.TTLHours)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.urlToResponse(link))
}

// CreateBulk creates up to 10 short links in one request
// @Summary Create multiple shortened URLs
// @Description Create a batch of short links; each item succeeds or fails independently
// @Tags urls
// @Accept json
// @Produce json
// @Param request body BulkCreateRequest true "Batch of URL details (max 10)"
// @Success 200 {object} BulkCreateResponse
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Router /urls/bulk [post]
func (h *Handler) CreateBulk(c *gin.Context) {
	var req BulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Abort(c, apierrors.New("VALIDATION_ERROR", err.Error(), http.StatusBadRequest))
		return
	}

	resp := BulkCreateResponse{Results: make([]BulkResultItem, 0, len(req.URLs))}
	for _, item := range req.URLs {
		link, err := Create(h.db, item.TargetURL, item.CustomAlias, item.TTLHours)
		if err != nil {
			resp.Results = append(resp.Results, BulkResultItem{
				Error:     err.Error(),
				TargetURL: item.TargetURL,
			})
			resp.ErrorCount++
			continue
		}
		url := h.urlToResponse(link)
		resp.Results = append(resp.Results, BulkResultItem{
			URL:       &url,
			TargetURL: item.TargetURL,
		})
		resp.SuccessCount++
	}

	c.JSON(http.StatusOK, resp)
}

// List returns active links with pagination
// @Summary List shortened URLs
// @Description List active short links, newest first
// @Tags urls
// @Produce json
// @Param skip query int false "Number of records to skip"
// @Param limit query int false "Max records to return (default 10, max 100)"
// @Success 200 {object} ListURLsResponse
// @Router /urls [get]
func (h *Handler) List(c *gin.Context) {
	skip := 0
	if s := c.Query("skip"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed >= 0 {
			skip = parsed
		}
	}
	limit := 10
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	urls, err := List(h.db, skip, limit)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}
	total, err := Count(h.db)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	resp := ListURLsResponse{URLs: make([]URLResponse, len(urls)), Total: total}
	for i := range urls {
		resp.URLs[i] = h.urlToResponse(&urls[i])
	}
	c.JSON(http.StatusOK, resp)
}

// Get returns a short link's details by code
// @Summary Get URL details
// @Description Get details of an active short link by its code
// @Tags urls
// @Produce json
// @Param code path string true "Short code"
// @Success 200 {object} URLResponse
// @Failure 404 {object} map[string]interface{} "Short code not found"
// @Router /urls/{code} [get]
func (h *Handler) Get(c *gin.Context) {
	link, err := GetByCode(h.db, c.Param("code"))
	if err != nil {
		apierrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, h.urlToResponse(link))
}

// Deactivate soft-deletes a short link
// @Summary Deactivate a shortened URL
// @Description Soft-delete a short link; its code remains reserved and can never be reused
// @Tags urls
// @Produce json
// @Param code path string true "Short code"
// @Success 200 {object} map[string]bool "deleted"
// @Failure 404 {object} map[string]interface{} "Short code not found"
// @Router /urls/{code} [delete]
func (h *Handler) Deactivate(c *gin.Context) {
	deleted, err := Deactivate(h.db, c.Param("code"))
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

// RegisterRoutes registers link management routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/urls", h.Create)
	rg.POST("/urls/bulk", h.CreateBulk)
	rg.GET("/urls", h.List)
	rg.GET("/urls/:code", h.Get)
	rg.DELETE("/urls/:code", h.Deactivate)
}
