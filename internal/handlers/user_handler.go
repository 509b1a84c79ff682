package handlers

import (
	"net/http"

	"github.com/adminbank/backend/internal/middleware"
	"github.com/adminbank/backend/internal/services"
)

type UserHandler struct {
	transactions *services.TransactionService
	validator    *services.ValidationHelper
}

func NewUserHandler(transactions *services.TransactionService) *UserHandler {
	return &UserHandler{
		transactions: transactions,
		validator:    services.NewValidationHelper(),
	}
}

type registerUserRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email"`
	StateCode    string `json:"stateCode" validate:"required,max=20"`
	TownshipCode string `json:"townshipCode" validate:"required,max=20"`
}

// RegisterUser creates a zero-balance user owned by the caller
// @Summary Register user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body registerUserRequest true "New user"
// @Success 201 {object} object{data=models.User}
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /users [post]
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.Claims(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Authentication required", http.StatusUnauthorized, nil)
		return
	}

	var req registerUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	user, err := h.transactions.RegisterUser(r.Context(), req.Name, req.Email, req.StateCode, req.TownshipCode, claims.AdminCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, user)
}
