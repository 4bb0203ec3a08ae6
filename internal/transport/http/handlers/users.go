package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/infra/security"
	"github.com/arklim/tourism-api/internal/transport/http/middleware"
	"github.com/arklim/tourism-api/internal/usecase"
)

// AccountService is the subset of usecase.AuthService the user endpoints need.
type AccountService interface {
	Register(ctx context.Context, in usecase.RegisterInput) (domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, email, token string) error
	Profile(ctx context.Context, email string) (domain.User, error)
	UpdateProfile(ctx context.Context, email string, update domain.ProfileUpdate) (domain.User, error)
}

// UserHandler exposes registration, login, logout and profile endpoints.
type UserHandler struct {
	accounts AccountService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(accounts AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// RegisterRoutes binds user routes. loginMiddlewares run ahead of the login handler.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	r.POST("/register", h.register)
	r.POST("/login", append(append([]gin.HandlerFunc{}, loginMiddlewares...), h.login)...)
	r.POST("/logout", h.logout)
	r.GET("/profile", middleware.RequireAuth(), h.profile)
	r.PUT("/profile", middleware.RequireAuth(), h.updateProfile)
}

func (h *UserHandler) register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondUnexpected(c, err,
			ErrorCase{Err: usecase.ErrEmailAlreadyExists, Status: http.StatusBadRequest, Message: "Email is already in use"},
		)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *UserHandler) login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondUnexpected(c, err,
			ErrorCase{Err: usecase.ErrInvalidCredentials, Status: http.StatusBadRequest, Message: "Invalid email or password"},
		)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// logout reads the header itself: it must answer 400 rather than 401 when the token is absent.
func (h *UserHandler) logout(c *gin.Context) {
	token, ok := security.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Invalid or missing token"))
		return
	}

	var email string
	if identity, ok := middleware.GetIdentity(c); ok {
		email = identity.Email
	}

	if err := h.accounts.Logout(c.Request.Context(), email, token); err != nil {
		respondUnexpected(c, err,
			ErrorCase{Err: security.ErrInvalidTokenFormat, Status: http.StatusBadRequest, Message: "Invalid or missing token"},
			ErrorCase{Err: security.ErrInvalidToken, Status: http.StatusBadRequest, Message: "Invalid or missing token"},
		)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "User logged out successfully"})
}

func (h *UserHandler) profile(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	user, err := h.accounts.Profile(c.Request.Context(), identity.Email)
	if err != nil {
		respondUnexpected(c, err,
			ErrorCase{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "User not found"},
		)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{Name: user.Name, Email: user.Email})
}

func (h *UserHandler) updateProfile(c *gin.Context) {
	var req ProfileUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	identity, _ := middleware.GetIdentity(c)

	user, err := h.accounts.UpdateProfile(c.Request.Context(), identity.Email, domain.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondUnexpected(c, err,
			ErrorCase{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "User not found"},
			ErrorCase{Err: usecase.ErrEmailAlreadyExists, Status: http.StatusBadRequest, Message: "Email is already in use"},
		)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{Name: user.Name, Email: user.Email})
}
