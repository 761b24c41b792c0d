package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Rrens/shop-assistant/internal/api/middleware"
	"github.com/Rrens/shop-assistant/internal/api/response"
	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/Rrens/shop-assistant/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// Authenticator is the account side of the API
type Authenticator interface {
	Register(ctx context.Context, input domain.UserCreate) (*domain.User, error)
	Login(ctx context.Context, input domain.UserLogin) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService Authenticator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService Authenticator) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// validationErrors turns validator output into a field -> message map
func validationErrors(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	out := make(map[string]string, len(verrs))
	for _, e := range verrs {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out[field] = "field is required"
		case "email":
			out[field] = "invalid email format"
		case "min":
			out[field] = "must be at least " + e.Param() + " characters"
		case "max":
			out[field] = "must be at most " + e.Param() + " characters"
		default:
			out[field] = "validation failed on " + e.Tag()
		}
	}
	return out
}

// Register handles shopper registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if errors.Is(err, service.ErrEmailTaken) {
		response.Conflict(w, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Registration failed")
		response.InternalError(w, "registration failed")
		return
	}

	response.Created(w, map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// Login handles shopper login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	tokens, err := h.authService.Login(r.Context(), input)
	if errors.Is(err, service.ErrInvalidCredentials) {
		response.Unauthorized(w, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Login failed")
		response.InternalError(w, "login failed")
		return
	}

	response.OK(w, tokens)
}

// Refresh handles token refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), input.RefreshToken)
	if errors.Is(err, service.ErrInvalidRefresh) {
		response.Unauthorized(w, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Token refresh failed")
		response.InternalError(w, "token refresh failed")
		return
	}

	response.OK(w, tokens)
}

// Me returns the current authenticated shopper
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		response.Unauthorized(w, "user not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load user")
		response.InternalError(w, "failed to load user")
		return
	}

	response.OK(w, map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}
