package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const AdminPageSize = 5

type AdminUsersHandler struct {
	users UserStore
}

func NewAdminUsersHandler(users UserStore) *AdminUsersHandler {
	return &AdminUsersHandler{users: users}
}

// AdminUpdateUserRequest is the allow-list of fields an admin may change.
type AdminUpdateUserRequest struct {
	Name  *string    `json:"name" binding:"omitempty,max=100"`
	Email *string    `json:"email" binding:"omitempty,email,max=254"`
	Role  *user.Role `json:"role" binding:"omitempty,oneof=user admin"`
}

type ListUsersResponse struct {
	Users       []user.Public `json:"users"`
	CurrentPage int           `json:"currentPage"`
	TotalPages  int           `json:"totalPages"`
	TotalUsers  int           `json:"totalUsers"`
}

// GET /admin/users?page=2
func (h *AdminUsersHandler) List(ctx *gin.Context) {
	page := user.NormalizePage(parseIntDefault(ctx.Query("page"), 1))

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	result, err := h.users.List(cctx, page, AdminPageSize)

	if err != nil {
		RespondInternal(ctx, "Could not list users", err)
		return
	}

	users := make([]user.Public, 0, len(result.Items))
	for _, u := range result.Items {
		users = append(users, u.Public())
	}

	ctx.JSON(http.StatusOK, ListUsersResponse{
		Users:       users,
		CurrentPage: page,
		TotalPages:  user.TotalPages(result.Total, AdminPageSize),
		TotalUsers:  result.Total,
	})
}

func (h *AdminUsersHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	var req AdminUpdateUserRequest

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

	if req.Email != nil {
		if *req.Email == "" {
			RespondBadRequest(ctx, "Invalid request body", fieldRequired("email"))
			return
		}
		patch.Email = req.Email
	}

	if req.Role != nil {
		if !req.Role.Valid() {
			RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": []FieldError{{
				Field:   "role",
				Rule:    "oneof",
				Param:   "user admin",
				Message: validationMessage("oneof", "user admin"),
			}}})
			return
		}
		patch.Role = req.Role
	}

	if patch.Empty() {
		RespondBadRequest(ctx, "Nothing to update", nil)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	_, err := h.users.Update(cctx, id, patch)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, user.ErrEmailTaken):
			RespondConflict(ctx, "email_taken", "Email is already in use.")
		default:
			RespondInternal(ctx, "Could not update user", err)
		}
		return
	}

	RespondMessage(ctx, http.StatusOK, "User updated successfully")
}

func (h *AdminUsersHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	err := h.users.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not delete user", err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "User deleted successfully")
}

func parseIntDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}

	n, err := strconv.Atoi(s)

	if err != nil {
		return fallback
	}

	return n
}
