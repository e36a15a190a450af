package repository

import (
	"context"
	"testing"
	"time"

	"khavho-commerce/internal/domain"

	"github.com/google/uuid"
)

func newTestAd(title string, active bool) *domain.FloatingAd {
	now := time.Now()
	return &domain.FloatingAd{
		ID:         uuid.New(),
		Title:      title,
		ButtonText: "Learn more",
		ButtonURL:  "https://example.com/promo",
		Duration:   10,
		Active:     active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func countActiveAds(t *testing.T) int {
	t.Helper()
	var count int
	if err := testDB.QueryRow("SELECT COUNT(*) FROM floating_ads WHERE active = TRUE").Scan(&count); err != nil {
		t.Fatalf("Failed to count active ads: %v", err)
	}
	return count
}

func TestSaveActiveKeepsSingleActiveAd(t *testing.T) {
	repo := NewFloatingAdRepository(testDB)
	ctx := context.Background()

	if _, err := testDB.Exec("DELETE FROM floating_ads"); err != nil {
		t.Fatalf("Failed to clear floating ads: %v", err)
	}
	defer testDB.Exec("DELETE FROM floating_ads")

	first := newTestAd("Winter special", true)
	if err := repo.SaveActive(ctx, first); err != nil {
		t.Fatalf("Failed to save first ad: %v", err)
	}

	if got := countActiveAds(t); got != 1 {
		t.Fatalf("Expected 1 active ad after first save, got %d", got)
	}

	second := newTestAd("Spring clearance", true)
	if err := repo.SaveActive(ctx, second); err != nil {
		t.Fatalf("Failed to save second ad: %v", err)
	}

	if got := countActiveAds(t); got != 1 {
		t.Fatalf("Expected 1 active ad after second save, got %d", got)
	}

	active, err := repo.FindActive(ctx)
	if err != nil {
		t.Fatalf("Failed to find active ad: %v", err)
	}
	if active.ID != second.ID {
		t.Errorf("Expected active ad %s, got %s", second.ID, active.ID)
	}

	ads, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list ads: %v", err)
	}
	if len(ads) != 2 {
		t.Errorf("Expected both ads retained, got %d", len(ads))
	}
}

func TestSaveActiveInactiveLeavesNoActiveAd(t *testing.T) {
	repo := NewFloatingAdRepository(testDB)
	ctx := context.Background()

	if _, err := testDB.Exec("DELETE FROM floating_ads"); err != nil {
		t.Fatalf("Failed to clear floating ads: %v", err)
	}
	defer testDB.Exec("DELETE FROM floating_ads")

	active := newTestAd("Launch promo", true)
	if err := repo.SaveActive(ctx, active); err != nil {
		t.Fatalf("Failed to save active ad: %v", err)
	}

	// Saving an inactive ad still deactivates the current one.
	draft := newTestAd("Draft promo", false)
	if err := repo.SaveActive(ctx, draft); err != nil {
		t.Fatalf("Failed to save inactive ad: %v", err)
	}

	if got := countActiveAds(t); got != 0 {
		t.Errorf("Expected no active ads, got %d", got)
	}

	if _, err := repo.FindActive(ctx); err != ErrFloatingAdNotFound {
		t.Errorf("Expected ErrFloatingAdNotFound, got %v", err)
	}
}

func TestSaveActiveUpdatesExistingAd(t *testing.T) {
	repo := NewFloatingAdRepository(testDB)
	ctx := context.Background()

	if _, err := testDB.Exec("DELETE FROM floating_ads"); err != nil {
		t.Fatalf("Failed to clear floating ads: %v", err)
	}
	defer testDB.Exec("DELETE FROM floating_ads")

	ad := newTestAd("Original title", true)
	if err := repo.SaveActive(ctx, ad); err != nil {
		t.Fatalf("Failed to save ad: %v", err)
	}

	ad.Title = "Updated title"
	ad.UpdatedAt = time.Now()
	if err := repo.SaveActive(ctx, ad); err != nil {
		t.Fatalf("Failed to update ad: %v", err)
	}

	ads, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list ads: %v", err)
	}
	if len(ads) != 1 {
		t.Fatalf("Expected upsert to keep one row, got %d", len(ads))
	}
	if ads[0].Title != "Updated title" {
		t.Errorf("Expected updated title, got %s", ads[0].Title)
	}
}

func TestDeleteFloatingAd(t *testing.T) {
	repo := NewFloatingAdRepository(testDB)
	ctx := context.Background()

	ad := newTestAd("Short lived", false)
	if err := repo.SaveActive(ctx, ad); err != nil {
		t.Fatalf("Failed to save ad: %v", err)
	}

	if err := repo.Delete(ctx, ad.ID); err != nil {
		t.Fatalf("Failed to delete ad: %v", err)
	}

	if err := repo.Delete(ctx, ad.ID); err != ErrFloatingAdNotFound {
		t.Errorf("Expected ErrFloatingAdNotFound on second delete, got %v", err)
	}
}
