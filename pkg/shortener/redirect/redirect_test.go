package redirect

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ediwnll/urlshortener/pkg/shortener/models"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?_fk=1"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	models.AutoMigrate(db)
	return db
}

func createTestLink(t *testing.T, db *gorm.DB, code, target string, expiresAt *time.Time) models.ShortLink {
	link := models.ShortLink{
		Code:      code,
		TargetURL: target,
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
	if err := db.Create(&link).Error; err != nil {
		t.Fatalf("Failed to create test link: %v", err)
	}
	return link
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)
	handler.RegisterRoutes(r)
	return r
}

func TestRedirect(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	createTestLink(t, db, "test-link", "https://example.com", nil)

	req, _ := http.NewRequest("GET", "/test-link", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusTemporaryRedirect {
		t.Errorf("Expected status 307, got %d", resp.Code)
	}
	location := resp.Header().Get("Location")
	if location != "https://example.com" {
		t.Errorf("Expected Location 'https://example.com', got %s", location)
	}
}

func TestRedirectNotFound(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	req, _ := http.NewRequest("GET", "/nonexistent", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestRedirectDeactivatedLinkNotFound(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	link := createTestLink(t, db, "soft-deleted", "https://example.com", nil)
	db.Model(&link).Update("is_active", false)

	req, _ := http.NewRequest("GET", "/soft-deleted", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for deactivated link, got %d", resp.Code)
	}
}

func TestRedirectExpiredLink(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	past := time.Now().UTC().Add(-time.Hour)
	link := createTestLink(t, db, "expired-link", "https://example.com", &past)

	req, _ := http.NewRequest("GET", "/expired-link", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusGone {
		t.Errorf("Expected status 410, got %d", resp.Code)
	}

	// An expired hit leaves no trace: no counter bump, no click event
	var updated models.ShortLink
	db.First(&updated, link.ID)
	if updated.ClickCount != 0 {
		t.Errorf("Expected click count 0 after expired hit, got %d", updated.ClickCount)
	}
	var events int64
	db.Model(&models.ClickEvent{}).Where("link_id = ?", link.ID).Count(&events)
	if events != 0 {
		t.Errorf("Expected 0 click events after expired hit, got %d", events)
	}
}

func TestRedirectRecordsClick(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	link := createTestLink(t, db, "tracked", "https://example.com", nil)

	req, _ := http.NewRequest("GET", "/tracked", nil)
	req.Header.Set("User-Agent", "test-agent/1.0")
	req.Header.Set("Referer", "https://www.example.org/page")
	req.RemoteAddr = "203.0.113.9:4444"
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusTemporaryRedirect {
		t.Fatalf("Expected status 307, got %d", resp.Code)
	}

	var updated models.ShortLink
	db.First(&updated, link.ID)
	if updated.ClickCount != 1 {
		t.Errorf("Expected click count 1, got %d", updated.ClickCount)
	}

	var event models.ClickEvent
	if err := db.Where("link_id = ?", link.ID).First(&event).Error; err != nil {
		t.Fatalf("Expected a click event: %v", err)
	}
	if event.UserAgent == nil || *event.UserAgent != "test-agent/1.0" {
		t.Error("Expected user agent to be recorded as received")
	}
	if event.Referrer == nil || *event.Referrer != "https://www.example.org/page" {
		t.Error("Expected referrer to be recorded as received")
	}
	if event.IPHash == nil {
		t.Fatal("Expected an ip hash")
	}
	if len(*event.IPHash) != 16 {
		t.Errorf("Expected 16 character ip hash, got %q", *event.IPHash)
	}
	if *event.IPHash == "203.0.113.9" {
		t.Error("Raw IP address must never be stored")
	}
}

func TestRedirectWithoutOptionalMetadata(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	link := createTestLink(t, db, "bare", "https://example.com", nil)

	// No user agent, no referrer; a missing client address is not an error
	req := httptest.NewRequest("GET", "/bare", nil)
	req.Header.Del("User-Agent")
	req.RemoteAddr = ""
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusTemporaryRedirect {
		t.Fatalf("Expected status 307, got %d", resp.Code)
	}

	var event models.ClickEvent
	if err := db.Where("link_id = ?", link.ID).First(&event).Error; err != nil {
		t.Fatalf("Expected a click event: %v", err)
	}
	if event.Referrer != nil {
		t.Errorf("Expected nil referrer, got %q", *event.Referrer)
	}
}

func TestHashIPDeterministic(t *testing.T) {
	a := hashIP("198.51.100.7")
	b := hashIP("198.51.100.7")
	if a == nil || b == nil || *a != *b {
		t.Error("Expected identical hashes for identical addresses")
	}

	c := hashIP("198.51.100.8")
	if *a == *c {
		t.Error("Expected different hashes for different addresses")
	}

	if hashIP("") != nil {
		t.Error("Expected nil hash for missing address")
	}
}

func TestConcurrentRedirects(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	link := createTestLink(t, db, "hot-path", "https://example.com", nil)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequest("GET", "/hot-path", nil)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != http.StatusTemporaryRedirect {
				t.Errorf("Expected status 307, got %d", resp.Code)
			}
		}()
	}
	wg.Wait()

	var updated models.ShortLink
	db.First(&updated, link.ID)
	if updated.ClickCount != n {
		t.Errorf("Expected click count %d, got %d", n, updated.ClickCount)
	}
	var events int64
	db.Model(&models.ClickEvent{}).Where("link_id = ?", link.ID).Count(&events)
	if events != n {
		t.Errorf("Expected %d click events, got %d", n, events)
	}
}
