package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string, role user.Role) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context, page, pageSize int) (user.Page, error)
	Update(ctx context.Context, id string, patch user.Patch) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

type TokenIssuer interface {
	Issue(userID string, role user.Role) (string, error)
}

type AuthHandler struct {
	users     UserStore
	hasher    PasswordHasher
	tokens    TokenIssuer
	adminCode string
	metrics   *observability.Prom
}

// NewAuthHandler wires signup/login. An empty adminCode disables admin
// signup; metrics may be nil.
func NewAuthHandler(users UserStore, hasher PasswordHasher, tokens TokenIssuer, adminCode string, metrics *observability.Prom) *AuthHandler {
	return &AuthHandler{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		adminCode: adminCode,
		metrics:   metrics,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SignUpRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,max=72"` // bcrypt input limit
	// AdminCode promotes the new account to admin when it matches config.
	AdminCode string `json:"adminCode"`
}

type LoginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	Role    user.Role `json:"role"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		h.metrics.ObserveAuth("signup", "invalid_request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.metrics.ObserveAuth("signup", "invalid_request")
		RespondBadRequest(ctx, "Invalid request body", fieldRequired("name"))
		return
	}

	if passwordTooLong(ctx, req.Password) {
		h.metrics.ObserveAuth("signup", "invalid_request")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)

	defer cancel()

	hash, err := h.hasher.Hash(req.Password)

	if err != nil {
		h.metrics.ObserveAuth("signup", "error")
		RespondInternal(ctx, "Could not create user", err)
		return
	}

	// default role for new users

	role := user.RoleUser

	if h.adminCodeMatches(req.AdminCode) {
		role = user.RoleAdmin
	}

	_, err = h.users.Create(cctx, req.Name, req.Email, hash, role)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			h.metrics.ObserveAuth("signup", "email_taken")
			RespondConflict(ctx, "email_taken", "Email is already in use.")
			return
		}

		h.metrics.ObserveAuth("signup", "error")
		RespondInternal(ctx, "Could not create user", err)
		return
	}

	h.metrics.ObserveAuth("signup", "ok")
	RespondMessage(ctx, http.StatusCreated, "User registered successfully")
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		h.metrics.ObserveAuth("login", "invalid_request")
		return
	}
	// short timeout for DB lookup
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			h.metrics.ObserveAuth("login", "error")
			RespondInternal(ctx, "Could not log in", err)
			return
		}

		h.metrics.ObserveAuth("login", "invalid_credentials")
		RespondUnauthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	if !h.hasher.Verify(foundUser.PasswordHash, req.Password) {
		h.metrics.ObserveAuth("login", "invalid_credentials")
		RespondUnauthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	token, err := h.tokens.Issue(foundUser.ID, foundUser.Role)

	if err != nil {
		h.metrics.ObserveAuth("login", "error")
		RespondInternal(ctx, "Could not generate access token", err)
		return
	}

	h.metrics.ObserveAuth("login", "ok")
	ctx.JSON(http.StatusOK, LoginResponse{
		Message: "Login successful",
		Token:   token,
		Role:    foundUser.Role,
	})
}

func (h *AuthHandler) adminCodeMatches(code string) bool {
	if h.adminCode == "" || code == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(h.adminCode)) == 1
}
