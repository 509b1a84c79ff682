package handlers

import (
	"net/http"

	"github.com/adminbank/backend/internal/middleware"
	"github.com/adminbank/backend/internal/models"
	"github.com/adminbank/backend/internal/services"
	"github.com/go-chi/chi/v5"
)

const (
	processActivate   = "activate"
	processDeactivate = "deactivate"
	processSearch     = "search"
)

type AdminHandler struct {
	admins       *services.AdminService
	transactions *services.TransactionService
	validator    *services.ValidationHelper
}

func NewAdminHandler(admins *services.AdminService, transactions *services.TransactionService) *AdminHandler {
	return &AdminHandler{
		admins:       admins,
		transactions: transactions,
		validator:    services.NewValidationHelper(),
	}
}

type createAdminRequest struct {
	Name     string      `json:"name" validate:"required,max=100"`
	Password string      `json:"password" validate:"required,min=8,max=128"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=standard super"`
}

type adminActionRequest struct {
	Process string           `json:"process" validate:"required"`
	Data    *adminActionData `json:"data,omitempty"`
}

type adminActionData struct {
	AdminCode string `json:"adminCode"`
}

// ListAdmins returns every admin
// @Summary List admins
// @Tags Admins
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{data=[]models.Admin}
// @Failure 401 {object} services.ErrorResponse
// @Router /admins [get]
func (h *AdminHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.admins.FindAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, admins)
}

// CreateAdmin registers a new admin
// @Summary Create admin
// @Description Super-admins only. Role defaults to standard.
// @Tags Admins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createAdminRequest true "New admin"
// @Success 201 {object} object{data=models.Admin}
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /admins [post]
func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleStandard
	}

	admin, err := h.admins.Create(r.Context(), req.Name, req.Password, req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, admin)
}

// AdminAction runs an action against the admin named in the path
// @Summary Admin actions
// @Description POST accepts activate, deactivate and search; GET accepts search via ?process=.
// @Tags Admins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Admin code"
// @Param request body adminActionRequest false "Action"
// @Success 200 {object} object{data=models.Admin}
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /admins/{code}/actions [post]
func (h *AdminHandler) AdminAction(w http.ResponseWriter, r *http.Request) {
	var req adminActionRequest
	if r.Method == http.MethodGet {
		req.Process = r.URL.Query().Get("process")
		if req.Process == "" {
			req.Process = processSearch
		}
	} else {
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err)
			return
		}
		if err := h.validator.ValidateStruct(&req); err != nil {
			services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
			return
		}
	}

	code := chi.URLParam(r, "code")
	if req.Data != nil && req.Data.AdminCode != "" && req.Data.AdminCode != code {
		services.SendErrorResponse(w, "Admin code does not match the path", http.StatusBadRequest, nil)
		return
	}
	claims, _ := middleware.Claims(r.Context())

	switch req.Process {
	case processSearch:
		admin, err := h.admins.FindByCode(r.Context(), code)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, admin)
	case processActivate, processDeactivate:
		if r.Method == http.MethodGet {
			services.SendErrorResponse(w, "Invalid process name", http.StatusBadRequest, nil)
			return
		}
		if claims == nil || claims.Role != models.RoleSuper {
			services.SendErrorResponse(w, "User is not authorized to perform this action.", http.StatusForbidden, nil)
			return
		}

		transition := h.admins.Activate
		if req.Process == processDeactivate {
			transition = h.admins.Deactivate
		}
		admin, err := transition(r.Context(), code)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, admin)
	default:
		services.SendErrorResponse(w, "Invalid process name", http.StatusBadRequest, nil)
	}
}

// ListAdminTransactions returns the transactions an admin performed
// @Summary Admin transactions
// @Tags Admins
// @Produce json
// @Security BearerAuth
// @Param code path string true "Admin code"
// @Param order query string false "asc or desc"
// @Success 200 {object} object{data=[]models.Transaction}
// @Failure 400 {object} services.ErrorResponse
// @Router /admins/{code}/transactions [get]
func (h *AdminHandler) ListAdminTransactions(w http.ResponseWriter, r *http.Request) {
	order := r.URL.Query().Get("order")
	if order != "" && order != "asc" && order != "desc" {
		services.SendErrorResponse(w, "Invalid order, expected asc or desc", http.StatusBadRequest, nil)
		return
	}

	records, err := h.transactions.ListTransactionsForAdmin(r.Context(), chi.URLParam(r, "code"), services.ParseOrder(order))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, records)
}

// ListAdminUsers returns the users an admin registered
// @Summary Admin users
// @Tags Admins
// @Produce json
// @Security BearerAuth
// @Param code path string true "Admin code"
// @Success 200 {object} object{data=[]models.User}
// @Failure 400 {object} services.ErrorResponse
// @Router /admins/{code}/user [get]
func (h *AdminHandler) ListAdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.transactions.ListUsersForAdmin(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, users)
}
