package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"khavho-commerce/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrFloatingAdNotFound = errors.New("floating ad not found")
)

// FloatingAdRepository defines the interface for floating ad data
// access. SaveActive is the only write path that can set active=true
// and is responsible for the single-active-ad invariant.
type FloatingAdRepository interface {
	// SaveActive deactivates every currently active ad and then inserts
	// or updates the given ad with its submitted active flag, all in one
	// transaction. Either both steps apply or neither does.
	SaveActive(ctx context.Context, ad *domain.FloatingAd) error
	FindActive(ctx context.Context) (*domain.FloatingAd, error)
	List(ctx context.Context) ([]domain.FloatingAd, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type floatingAdRepository struct {
	db *sql.DB
}

// NewFloatingAdRepository creates a new instance of FloatingAdRepository
func NewFloatingAdRepository(db *sql.DB) FloatingAdRepository {
	return &floatingAdRepository{db: db}
}

// SaveActive performs the deactivate-all-then-upsert batch inside a
// single transaction so a partial application is never observable.
func (r *floatingAdRepository) SaveActive(ctx context.Context, ad *domain.FloatingAd) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin floating ad transaction: %w", err)
	}
	defer tx.Rollback()

	// Deactivate first; the upsert below is then the only row that can
	// end up active.
	if _, err := tx.ExecContext(ctx, `UPDATE floating_ads SET active = FALSE, updated_at = NOW() WHERE active = TRUE`); err != nil {
		return fmt.Errorf("failed to deactivate floating ads: %w", err)
	}

	upsert := `
		INSERT INTO floating_ads (id, title, description, image_url, button_text, button_url, duration, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    description = EXCLUDED.description,
		    image_url = EXCLUDED.image_url,
		    button_text = EXCLUDED.button_text,
		    button_url = EXCLUDED.button_url,
		    duration = EXCLUDED.duration,
		    active = EXCLUDED.active,
		    updated_at = EXCLUDED.updated_at
	`

	_, err = tx.ExecContext(
		ctx,
		upsert,
		ad.ID,
		ad.Title,
		ad.Description,
		ad.ImageURL,
		ad.ButtonText,
		ad.ButtonURL,
		ad.Duration,
		ad.Active,
		ad.CreatedAt,
		ad.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert floating ad: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit floating ad transaction: %w", err)
	}

	return nil
}

// FindActive retrieves the currently active ad, if any
func (r *floatingAdRepository) FindActive(ctx context.Context) (*domain.FloatingAd, error) {
	query := `
		SELECT id, title, description, image_url, button_text, button_url, duration, active, created_at, updated_at
		FROM floating_ads
		WHERE active = TRUE
		LIMIT 1
	`

	ad := &domain.FloatingAd{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&ad.ID,
		&ad.Title,
		&ad.Description,
		&ad.ImageURL,
		&ad.ButtonText,
		&ad.ButtonURL,
		&ad.Duration,
		&ad.Active,
		&ad.CreatedAt,
		&ad.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrFloatingAdNotFound
		}
		return nil, fmt.Errorf("failed to find active floating ad: %w", err)
	}

	return ad, nil
}

// List retrieves all floating ads, newest first
func (r *floatingAdRepository) List(ctx context.Context) ([]domain.FloatingAd, error) {
	query := `
		SELECT id, title, description, image_url, button_text, button_url, duration, active, created_at, updated_at
		FROM floating_ads
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list floating ads: %w", err)
	}
	defer rows.Close()

	ads := []domain.FloatingAd{}
	for rows.Next() {
		ad := domain.FloatingAd{}
		err := rows.Scan(
			&ad.ID,
			&ad.Title,
			&ad.Description,
			&ad.ImageURL,
			&ad.ButtonText,
			&ad.ButtonURL,
			&ad.Duration,
			&ad.Active,
			&ad.CreatedAt,
			&ad.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan floating ad: %w", err)
		}
		ads = append(ads, ad)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating floating ads: %w", err)
	}

	return ads, nil
}

// Delete removes a floating ad from the database
func (r *floatingAdRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM floating_ads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete floating ad: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrFloatingAdNotFound
	}

	return nil
}
