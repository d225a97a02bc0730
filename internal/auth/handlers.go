package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/datewrapped/internal/common/apperr"
	"github.com/imadgeboyega/datewrapped/internal/common/utils"
)

// Handler holds dependencies for auth endpoints
type Handler struct {
	service    Service
	middleware *Middleware
}

func NewHandler(service Service, middleware *Middleware) *Handler {
	return &Handler{service: service, middleware: middleware}
}

// RegisterRoutes registers all auth routes with the router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	auth := router.PathPrefix("/api/auth").Subrouter()

	// Public routes
	auth.HandleFunc("/signup", h.Signup).Methods("POST")
	auth.HandleFunc("/signin", h.Signin).Methods("POST")
	auth.HandleFunc("/google", h.GoogleAuth).Methods("POST")
	auth.HandleFunc("/refresh", h.RefreshToken).Methods("POST")

	// Protected routes
	auth.Handle("/logout", h.middleware.Authenticate(http.HandlerFunc(h.Logout))).Methods("POST")
	auth.Handle("/me", h.middleware.Authenticate(http.HandlerFunc(h.Me))).Methods("GET")
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.SuccessResponse(w, resp, http.StatusCreated)
}

func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.service.Signin(r.Context(), &req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.SuccessResponse(w, resp, http.StatusOK)
}

func (h *Handler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	var req GoogleAuthRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.service.GoogleAuth(r.Context(), &req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.SuccessResponse(w, resp, http.StatusOK)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.SuccessResponse(w, resp, http.StatusOK)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), getTokenFromContext(r.Context())); err != nil {
		h.respondError(w, err)
		return
	}
	utils.MessageResponse(w, "Logged out successfully", http.StatusOK)
}

// Me returns the signed-in user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.SuccessResponse(w, user, http.StatusOK)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := utils.ValidateStruct(v); err != nil {
		utils.RespondWithAppError(w, err)
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		utils.ErrorResponse(w, "Invalid email or password", http.StatusUnauthorized)
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrInvalidGoogleToken):
		utils.ErrorResponse(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, ErrTooManyAttempts):
		utils.ErrorResponse(w, "Too many login attempts. Please try again later.", http.StatusTooManyRequests)
	case errors.Is(err, ErrEmailAlreadyExists):
		utils.ErrorResponse(w, "Email already registered", http.StatusConflict)
	case errors.Is(err, ErrSocialAccount):
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrGoogleDisabled):
		utils.ErrorResponse(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrUserNotFound):
		utils.ErrorResponse(w, "User not found", http.StatusNotFound)
	default:
		utils.RespondWithAppError(w, apperr.Storage("auth", err))
	}
}
