package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"mall-api/internal/middleware"
	"mall-api/internal/repository"
	"mall-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Username    string `json:"username" validate:"required"`
	Password    string `json:"password" validate:"required"`
	Role        string `json:"role" validate:"required"`
	FullName    string `json:"full_name" validate:"required"`
	Address     string `json:"address"`
	PaymentInfo string `json:"payment_info"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents the token refresh request payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UpdateProfileRequest carries the three mutable profile fields
type UpdateProfileRequest struct {
	FullName    string `json:"full_name" validate:"required"`
	Address     string `json:"address"`
	PaymentInfo string `json:"payment_info"`
}

// AccountProfile represents account data echoed to callers. The password
// hash never leaves the service.
type AccountProfile struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	FullName    string `json:"full_name"`
	Address     string `json:"address,omitempty"`
	PaymentInfo string `json:"payment_info,omitempty"`
}

// RegisterResponse represents the registration response
type RegisterResponse struct {
	Message string         `json:"message"`
	Account AccountProfile `json:"user"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Message      string         `json:"message"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Account      AccountProfile `json:"user"`
}

// RefreshResponse represents the token refresh response
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accountService service.AccountService
	logger         *zap.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// RegisterRoutes registers all account routes
func (h *AccountHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/accounts", func(r chi.Router) {
		// Public routes
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/logout", h.Logout)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
		})
	})
}

func profileOf(username, role, fullName, address, paymentInfo string) AccountProfile {
	return AccountProfile{
		Username:    username,
		Role:        role,
		FullName:    fullName,
		Address:     address,
		PaymentInfo: paymentInfo,
	}
}

// Register handles account registration
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.accountService.Register(r.Context(), req.Username, req.Password, req.Role, req.FullName, req.Address, req.PaymentInfo)
	if err != nil {
		if errors.Is(err, repository.ErrAccountAlreadyExists) {
			h.logger.Debug("Registration conflict", zap.String("username", req.Username))
			middleware.RespondWithError(w, http.StatusConflict, "account with this username already exists")
			return
		}

		h.logger.Error("Registration failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register account")
		return
	}

	h.logger.Info("Account registered successfully", zap.String("username", account.Username))
	middleware.RespondWithJSON(w, http.StatusCreated, RegisterResponse{
		Message: "User created successfully!",
		Account: profileOf(account.Username, account.Role, account.FullName, account.Address, account.PaymentInfo),
	})
}

// Login handles authentication
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accessToken, refreshToken, account, err := h.accountService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Debug("Login rejected", zap.String("username", req.Username))
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}

		h.logger.Error("Login failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	h.logger.Info("Account logged in successfully", zap.String("username", account.Username))
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{
		Message:      fmt.Sprintf("Welcome back, %s!", account.Username),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Account:      profileOf(account.Username, account.Role, account.FullName, account.Address, account.PaymentInfo),
	})
}

// Logout handles logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("Logout decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.accountService.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to logout")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// RefreshToken handles token refresh
func (h *AccountHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Refresh token validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newAccessToken, err := h.accountService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Debug("Token refresh failed", zap.Error(err))

		if errors.Is(err, service.ErrInvalidToken) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		if errors.Is(err, service.ErrTokenExpired) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "refresh token expired")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, RefreshResponse{AccessToken: newAccessToken})
}

// GetProfile returns the authenticated account's profile
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsername(r.Context())
	if !ok {
		h.logger.Error("Username not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	account, err := h.accountService.FindByUsername(r.Context(), username)
	if err != nil {
		h.logger.Error("Failed to get account profile", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get account profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, profileOf(account.Username, account.Role, account.FullName, account.Address, account.PaymentInfo))
}

// UpdateProfile updates the mutable profile fields of the authenticated
// account. An unknown username is a silent no-op; the matched count is
// logged so the no-op stays observable.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsername(r.Context())
	if !ok {
		h.logger.Error("Username not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Profile update validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	matched, err := h.accountService.UpdateProfile(r.Context(), username, req.FullName, req.Address, req.PaymentInfo)
	if err != nil {
		h.logger.Error("Profile update failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	h.logger.Info("Profile updated",
		zap.String("username", username),
		zap.Int64("matched", matched),
	)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "User information updated successfully!"})
}
