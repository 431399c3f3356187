package handler

import (
	"context"
	"net/http"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/auth"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"go.uber.org/zap"
)

// UserDirectory records authenticated principals as user lookups
type UserDirectory interface {
	EnsureUser(ctx context.Context, externalID, name, email string) (*domain.Lookup, error)
}

type AuthHandler struct {
	users  UserDirectory
	logger *zap.Logger
}

func NewAuthHandler(users UserDirectory, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		logger: logger,
	}
}

// Me godoc
// @Summary Get current authenticated user
// @Description Returns the caller with roles and makes sure a user document exists for timeline authorship
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.AuthUserDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "No user context")
		return
	}

	dto := domain.AuthUserDTO{
		ExternalID: userCtx.UserID,
		Name:       userCtx.Name(),
		Email:      userCtx.Email,
		Roles:      userCtx.RolesAsStrings(),
		AuthType:   userCtx.AuthType,
		IsAdmin:    userCtx.IsAdmin(),
	}

	if userCtx.AuthType != auth.AuthTypeAPIKey {
		user, err := h.users.EnsureUser(r.Context(), userCtx.UserID, userCtx.Name(), userCtx.Email)
		if err != nil {
			h.logger.Error("failed to record user", zap.String("user_id", userCtx.UserID), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to load user")
			return
		}
		dto.ID = user.ID
	}

	respondJSON(w, http.StatusOK, dto)
}
