package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the caller's own record. Every route sits behind
// RequireAuth.
type ProfileHandler struct {
	users  UserStore
	hasher PasswordHasher
}

func NewProfileHandler(users UserStore, hasher PasswordHasher) *ProfileHandler {
	return &ProfileHandler{users: users, hasher: hasher}
}

// UpdateProfileRequest has no role field: owners cannot change their role.
type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Password *string `json:"password" binding:"omitempty,max=72"`
}

type CapabilitiesResponse struct {
	UserID  string    `json:"userId"`
	Role    user.Role `json:"role"`
	IsAdmin bool      `json:"isAdmin"`
}

func (h *ProfileHandler) GetProfile(ctx *gin.Context) {
	u, ok := h.currentUser(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, u.Public())
}

func (h *ProfileHandler) UpdateProfile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	var patch user.Patch

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			RespondBadRequest(ctx, "Invalid request body", fieldRequired("name"))
			return
		}
		patch.Name = &name
	}

	if req.Password != nil {
		if *req.Password == "" {
			RespondBadRequest(ctx, "Invalid request body", fieldRequired("password"))
			return
		}

		if passwordTooLong(ctx, *req.Password) {
			return
		}

		hash, err := h.hasher.Hash(*req.Password)
		if err != nil {
			RespondInternal(ctx, "Could not update profile", err)
			return
		}
		patch.PasswordHash = &hash
	}

	if patch.Empty() {
		RespondBadRequest(ctx, "Nothing to update", nil)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	_, err := h.users.Update(cctx, userID, patch)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not update profile", err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Profile updated successfully")
}

// DeleteProfile removes the caller's record. Issued tokens are not tracked,
// so the client is expected to discard its token.
func (h *ProfileHandler) DeleteProfile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	err := h.users.Delete(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not delete profile", err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Profile deleted successfully")
}

// Capabilities answers "what may this caller do" from the stored record, so
// clients need not decode the token themselves.
func (h *ProfileHandler) Capabilities(ctx *gin.Context) {
	u, ok := h.currentUser(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, CapabilitiesResponse{
		UserID:  u.ID,
		Role:    u.Role,
		IsAdmin: u.Role == user.RoleAdmin,
	})
}

func (h *ProfileHandler) currentUser(ctx *gin.Context) (user.User, bool) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return user.User{}, false
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return user.User{}, false
		}
		RespondInternal(ctx, "Could not load profile", err)
		return user.User{}, false
	}

	return u, true
}
