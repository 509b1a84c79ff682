package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adminbank/backend/internal/middleware"
	"github.com/adminbank/backend/internal/services"
	"github.com/go-playground/validator/v10"
)

type TransactionHandler struct {
	transactions *services.TransactionService
	validator    *services.ValidationHelper
}

func NewTransactionHandler(transactions *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		validator:    services.NewValidationHelper(),
	}
}

type transactionRequest struct {
	Process string          `json:"process" validate:"required"`
	Data    json.RawMessage `json:"data" swaggertype:"object"`
}

// Execute runs a transfer, withdraw, deposit or list operation
// @Summary Execute transaction
// @Description process is one of transfer, withdraw, deposit, list. data carries the matching payload.
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body transactionRequest true "Operation"
// @Success 200 {object} object{data=object}
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /transactions [post]
func (h *TransactionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.Claims(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Authentication required", http.StatusUnauthorized, nil)
		return
	}

	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	op, err := services.ParseOperation(req.Process, req.Data, h.validator)
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
			return
		}
		writeError(w, r, err)
		return
	}

	result, err := h.transactions.Execute(r.Context(), claims.AdminCode, op)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, result)
}
