package transport

import (
	"net/http"

	"khavho-commerce/internal/middleware"
	"khavho-commerce/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ContactRequest is the public contact form payload
type ContactRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Service   string `json:"service" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// ContactHandler handles the public contact form
type ContactHandler struct {
	messageService service.MessageService
	logger         *zap.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(messageService service.MessageService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		messageService: messageService,
		logger:         logger,
	}
}

// RegisterRoutes registers the contact route; rateLimit is applied so
// the public form cannot be used to flood the messages collection.
func (h *ContactHandler) RegisterRoutes(r chi.Router, rateLimit func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if rateLimit != nil {
			r.Use(rateLimit)
		}
		r.Post("/api/contact", h.Submit)
	})
}

// Submit validates and records a contact form submission
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Contact validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.messageService.Submit(r.Context(), service.MessageInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Service:   req.Service,
		Message:   req.Message,
	})
	if err != nil {
		h.logger.Error("Failed to submit contact message", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to submit message")
		return
	}

	h.logger.Info("Contact message received", zap.String("message_id", message.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, message)
}
