package models

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?_fk=1"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	// A single connection keeps the in-memory database shared across the pool
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestAutoMigrate(t *testing.T) {
	db := setupTestDB(t)

	err := AutoMigrate(db)
	if err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	// Verify tables exist by checking if we can query them
	tables := []string{"short_links", "click_events", "users"}
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table %s to exist", table)
		}
	}

	if !db.Migrator().HasIndex(&ShortLink{}, "idx_short_links_active_created") {
		t.Error("Expected composite index on (is_active, created_at)")
	}
	if !db.Migrator().HasIndex(&ClickEvent{}, "idx_click_events_link_clicked") {
		t.Error("Expected composite index on (link_id, clicked_at)")
	}
}

func TestShortLinkCodeUnique(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	link := ShortLink{
		Code:      "abc1234",
		TargetURL: "https://example.com",
		IsActive:  true,
	}
	if err := db.Create(&link).Error; err != nil {
		t.Fatalf("Failed to create link: %v", err)
	}
	if link.ID == 0 {
		t.Error("Expected link ID to be set after create")
	}

	// Duplicate code must be rejected even when the first row is deactivated
	if err := db.Model(&link).Update("is_active", false).Error; err != nil {
		t.Fatalf("Failed to deactivate link: %v", err)
	}
	dup := ShortLink{
		Code:      "abc1234",
		TargetURL: "https://other.example.com",
		IsActive:  true,
	}
	if err := db.Create(&dup).Error; err == nil {
		t.Error("Expected error when creating link with duplicate code")
	}
}

func TestClickEventBelongsToLink(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	link := ShortLink{Code: "clicked", TargetURL: "https://example.com", IsActive: true}
	db.Create(&link)

	ua := "test-agent"
	click := ClickEvent{
		LinkID:    link.ID,
		ClickedAt: time.Now().UTC(),
		UserAgent: &ua,
	}
	if err := db.Create(&click).Error; err != nil {
		t.Fatalf("Failed to create click event: %v", err)
	}

	var count int64
	db.Model(&ClickEvent{}).Where("link_id = ?", link.ID).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 click event, got %d", count)
	}
}

func TestUserModel(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	user := User{
		Email:        "test@example.com",
		PasswordHash: "hashed_password",
		Name:         "Test User",
		SystemRole:   SystemRoleUser,
	}

	result := db.Create(&user)
	if result.Error != nil {
		t.Fatalf("Failed to create user: %v", result.Error)
	}

	if user.ID == 0 {
		t.Error("Expected user ID to be set after create")
	}

	// Test unique email constraint
	user2 := User{
		Email:        "test@example.com",
		PasswordHash: "another_hash",
		Name:         "Another User",
	}
	result = db.Create(&user2)
	if result.Error == nil {
		t.Error("Expected error when creating user with duplicate email")
	}
}
