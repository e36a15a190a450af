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
	ErrMessageNotFound = errors.New("message not found")
)

// MessageRepository defines the interface for contact message data access
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	List(ctx context.Context) ([]domain.Message, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MessageStatus) error
	Count(ctx context.Context) (int, error)
}

type messageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new instance of MessageRepository
func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create inserts a new message into the database using parameterized queries
func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO messages (id, first_name, last_name, email, phone, company, service, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		message.ID,
		message.FirstName,
		message.LastName,
		message.Email,
		message.Phone,
		message.Company,
		message.Service,
		message.Message,
		message.Status,
		message.CreatedAt,
		message.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// List retrieves all messages, newest first
func (r *messageRepository) List(ctx context.Context) ([]domain.Message, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, company, service, message, status, created_at, updated_at
		FROM messages
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		message := domain.Message{}
		err := rows.Scan(
			&message.ID,
			&message.FirstName,
			&message.LastName,
			&message.Email,
			&message.Phone,
			&message.Company,
			&message.Service,
			&message.Message,
			&message.Status,
			&message.CreatedAt,
			&message.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, message)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// FindByID retrieves a message by ID using parameterized queries
func (r *messageRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, company, service, message, status, created_at, updated_at
		FROM messages
		WHERE id = $1
	`

	message := &domain.Message{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&message.ID,
		&message.FirstName,
		&message.LastName,
		&message.Email,
		&message.Phone,
		&message.Company,
		&message.Service,
		&message.Message,
		&message.Status,
		&message.CreatedAt,
		&message.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to find message by ID: %w", err)
	}

	return message, nil
}

// UpdateStatus sets the workflow status of a message
func (r *messageRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MessageStatus) error {
	query := `
		UPDATE messages
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update message status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrMessageNotFound
	}

	return nil
}

// Count returns the total number of messages
func (r *messageRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}
