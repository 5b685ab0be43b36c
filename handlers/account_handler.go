package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/YogindraChaudhari/Product-Advisor/internal/observability"
	"github.com/YogindraChaudhari/Product-Advisor/utils"
)

// AccountHandler handles account lifecycle requests
type AccountHandler struct {
	service AdviceService
	logger  *zap.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(service AdviceService, logger *zap.Logger) *AccountHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountHandler{
		service: service,
		logger:  logger,
	}
}

// HandleDeleteAccount handles POST /api/account/delete-account
func (h *AccountHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx, h.logger)

	var body OwnerRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if !authorizeOwner(w, r, body.UserID, logger) {
		return
	}

	deleted, err := h.service.DeleteAccount(ctx, body.UserID)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	logger.Info("account deleted", zap.Int64("advices_deleted", deleted))

	_ = utils.WriteSuccess(w, "Account deleted successfully")
}
