package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"khavho-commerce/internal/domain"
	"khavho-commerce/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus = errors.New("invalid message status")
)

// MessageInput is the contact form payload.
type MessageInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Company   string
	Service   string
	Message   string
}

// MessageService handles contact message intake and the back-office
// status workflow.
type MessageService interface {
	Submit(ctx context.Context, input MessageInput) (*domain.Message, error)
	List(ctx context.Context) ([]domain.Message, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MessageStatus) error
}

type messageService struct {
	messageRepo repository.MessageRepository
}

// NewMessageService creates a new instance of MessageService
func NewMessageService(messageRepo repository.MessageRepository) MessageService {
	return &messageService{messageRepo: messageRepo}
}

// Submit records a contact form submission with status "new"
func (s *messageService) Submit(ctx context.Context, input MessageInput) (*domain.Message, error) {
	now := time.Now().UTC()
	message := &domain.Message{
		ID:        uuid.New(),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Company:   input.Company,
		Service:   input.Service,
		Message:   input.Message,
		Status:    domain.MessageStatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to submit message: %w", err)
	}
	return message, nil
}

// List retrieves all messages for the admin panel
func (s *messageService) List(ctx context.Context) ([]domain.Message, error) {
	return s.messageRepo.List(ctx)
}

// UpdateStatus sets a message's status. The status set is closed but
// transitions are unconstrained: any status may replace any other.
func (s *messageService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MessageStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.messageRepo.UpdateStatus(ctx, id, status)
}
