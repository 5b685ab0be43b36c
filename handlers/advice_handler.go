package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/YogindraChaudhari/Product-Advisor/internal/observability"
	"github.com/YogindraChaudhari/Product-Advisor/middleware"
	"github.com/YogindraChaudhari/Product-Advisor/models"
	"github.com/YogindraChaudhari/Product-Advisor/services"
	"github.com/YogindraChaudhari/Product-Advisor/services/advice"
	"github.com/YogindraChaudhari/Product-Advisor/services/routing"
	"github.com/YogindraChaudhari/Product-Advisor/utils"
)

// AdviceService defines the advice operations used by the HTTP layer
type AdviceService interface {
	Generate(ctx context.Context, in advice.Input) (*routing.Result, error)
	History(ctx context.Context, userID string) ([]*models.Advice, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) error
	Rename(ctx context.Context, id uuid.UUID, userID, title string) error
	DeleteAccount(ctx context.Context, userID string) (int64, error)
}

// GenerateResponse is the body of a successful POST /api/advice
type GenerateResponse struct {
	Result         string            `json:"result"`
	Provider       string            `json:"provider"`
	ID             string            `json:"id"`
	FallbackErrors []routing.Failure `json:"fallback_errors,omitempty"`
}

// OwnerRequest carries the acting user for delete operations
type OwnerRequest struct {
	UserID string `json:"user_id"`
}

// RenameRequest is the body of PATCH /api/advice/{id}
type RenameRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
}

// AdviceHandler handles advice HTTP requests
type AdviceHandler struct {
	service AdviceService
	logger  *zap.Logger
}

// NewAdviceHandler creates a new AdviceHandler
func NewAdviceHandler(service AdviceService, logger *zap.Logger) *AdviceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdviceHandler{
		service: service,
		logger:  logger,
	}
}

// HandleGenerate handles POST /api/advice
func (h *AdviceHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx, h.logger)

	var in advice.Input
	if err := utils.DecodeJSON(r, &in); err != nil {
		logger.Warn("failed to parse request body", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if !authorizeOwner(w, r, in.UserID, logger) {
		return
	}

	result, err := h.service.Generate(ctx, in)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	response := GenerateResponse{
		Result:         result.Text,
		Provider:       string(result.ProviderUsed),
		ID:             result.PersistedID,
		FallbackErrors: result.Fallbacks,
	}

	if err := utils.WriteOK(w, response); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}

// HandleHistory handles GET /api/advice/{user_id}
func (h *AdviceHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if !authorizeOwner(w, r, userID, h.logger) {
		return
	}

	history, err := h.service.History(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if history == nil {
		history = []*models.Advice{}
	}

	_ = utils.WriteOK(w, history)
}

// HandleDelete handles DELETE /api/advice/{id}
func (h *AdviceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var body OwnerRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	id, ok := h.adviceID(w, r)
	if !ok || !authorizeOwner(w, r, body.UserID, h.logger) {
		return
	}

	if err := h.service.Delete(r.Context(), id, body.UserID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteSuccess(w, "")
}

// HandleRename handles PATCH /api/advice/{id}
func (h *AdviceHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	var body RenameRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	id, ok := h.adviceID(w, r)
	if !ok || !authorizeOwner(w, r, body.UserID, h.logger) {
		return
	}

	if err := h.service.Rename(r.Context(), id, body.UserID, body.Title); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteSuccess(w, "")
}

// adviceID parses the {id} path parameter. An id that is not a UUID cannot exist,
// so it is answered like a missing advice
func (h *AdviceHandler) adviceID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Debug("invalid advice id", zap.Error(err))
		HandleServiceError(w, services.ErrAdviceNotFound, h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// authorizeOwner rejects requests acting on behalf of someone other than the token subject.
// An empty user id is left for the service to report as missing
func authorizeOwner(w http.ResponseWriter, r *http.Request, userID string, logger *zap.Logger) bool {
	if userID == "" {
		return true
	}
	if err := middleware.CheckOwner(r.Context(), userID); err != nil {
		if errors.Is(err, middleware.ErrOwnerMismatch) {
			logger.Warn("owner mismatch", zap.String("user_id", userID))
		}
		HandleServiceError(w, services.ErrForbidden, logger)
		return false
	}
	return true
}
