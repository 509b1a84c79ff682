package handlers

import (
	"net/http"
	"time"

	"github.com/adminbank/backend/internal/config"
	"github.com/adminbank/backend/internal/logger"
	"github.com/adminbank/backend/internal/middleware"
	"github.com/adminbank/backend/internal/models"
	"github.com/adminbank/backend/internal/services"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth      *services.AuthService
	cookie    config.CookieConfig
	validator *services.ValidationHelper
}

func NewAuthHandler(auth *services.AuthService, cookie config.CookieConfig) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		cookie:    cookie,
		validator: services.NewValidationHelper(),
	}
}

type loginRequest struct {
	AdminCode string `json:"adminCode" validate:"required,max=32"`
	Password  string `json:"password" validate:"required,max=128"`
}

type loginResponse struct {
	AdminCode string      `json:"adminCode"`
	Role      models.Role `json:"role"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Login authenticates an admin and sets the session cookie
// @Summary Login admin
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} object{data=loginResponse}
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	claims, err := h.auth.Login(r.Context(), req.AdminCode, req.Password)
	if err != nil {
		services.SendErrorResponse(w, "Accessed denied.", http.StatusForbidden, nil)
		return
	}

	session, err := h.auth.IssueSession(*claims)
	if err != nil {
		logger.Log.Error("session issue failed", zap.String("admin_code", claims.AdminCode), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.Claims.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	writeData(w, http.StatusOK, loginResponse{
		AdminCode: session.Claims.AdminCode,
		Role:      session.Claims.Role,
		Token:     session.Token,
		ExpiresAt: session.Claims.ExpiresAt,
	})
}

// Logout revokes the current session
// @Summary Logout admin
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{data=object{message=string}}
// @Failure 401 {object} services.ErrorResponse
// @Router /logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.Claims(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Authentication required", http.StatusUnauthorized, nil)
		return
	}

	if err := h.auth.Logout(r.Context(), claims); err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	writeData(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}
