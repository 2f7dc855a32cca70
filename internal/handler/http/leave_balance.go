package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
)

type LeaveBalanceHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	GetMy(w http.ResponseWriter, r *http.Request)
	ListByEmployee(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Adjust(w http.ResponseWriter, r *http.Request)
	CarryOver(w http.ResponseWriter, r *http.Request)
	Initialize(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type leaveBalanceHandlerImpl struct {
	balanceService leave.BalanceService
}

func NewLeaveBalanceHandler(balanceService leave.BalanceService) LeaveBalanceHandler {
	return &leaveBalanceHandlerImpl{balanceService: balanceService}
}

// List implements LeaveBalanceHandler.
func (h *leaveBalanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var errs validator.ValidationErrors
	filter := leave.BalanceFilter{}
	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if leaveTypeID := r.URL.Query().Get("leave_type_id"); leaveTypeID != "" {
		filter.LeaveTypeID = &leaveTypeID
	}
	filter.Year = queryInt(r, "year", &errs)
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	balances, err := h.balanceService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.NewLeaveBalanceResponses(balances))
}

func (h *leaveBalanceHandlerImpl) listForEmployee(w http.ResponseWriter, r *http.Request, employeeID string) {
	var errs validator.ValidationErrors
	year := queryInt(r, "year", &errs)
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	balances, err := h.balanceService.ListByEmployee(r.Context(), employeeID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.NewLeaveBalanceResponses(balances))
}

// GetMy implements LeaveBalanceHandler.
func (h *leaveBalanceHandlerImpl) GetMy(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	h.listForEmployee(w, r, actor.EmployeeID)
}

// ListByEmployee implements LeaveBalanceHandler.
func (h *leaveBalanceHandlerImpl) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := urlID(w, r, "employeeId")
	if !ok {
		return
	}
	h.listForEmployee(w, r, employeeID)
}

// Get implements LeaveBalanceHandler.
func (h *leaveBalanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	balance, err := h.balanceService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if balance.EmployeeID != actor.EmployeeID && !user.HasPermission(actor.Role, user.PermissionLeaveBalanceViewAll) {
		// Hide rows of other employees entirely
		response.HandleError(w, leave.ErrBalanceNotFound(id))
		return
	}

	response.Success(w, leave.NewLeaveBalanceResponse(balance))
}

// Create implements LeaveBalanceHandler.
func (h *leaveBalanceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateLeaveBalanceRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	balance, err := h.balanceService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave balance created successfully", leave.NewLeaveBalanceResponse(balance))
}

// Adjust implements LeaveBalanceHandler.
func (h *leaveBalanceHandlerImpl) Adjust(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req leave.AdjustBalanceRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	balance, err := h.balanceService.Adjust(r.Context(), id, req.Days, req.Reason)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave balance adjusted successfully", leave.NewLeaveBalanceResponse(balance))
}

// CarryOver implements LeaveBalanceHandler.
func (h *leaveBalanceHandlerImpl) CarryOver(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := urlID(w, r, "employeeId")
	if !ok {
		return
	}

	var req leave.CarryOverRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.balanceService.CarryOver(r.Context(), employeeID, req.FromYear, req.ToYear)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave balances carried over successfully", leave.NewLeaveBalanceResponses(created))
}

// Initialize implements LeaveBalanceHandler.
func (h *leaveBalanceHandlerImpl) Initialize(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := urlID(w, r, "employeeId")
	if !ok {
		return
	}

	var req leave.InitializeBalanceRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.balanceService.Initialize(r.Context(), employeeID, req.Year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave balances initialized successfully", leave.NewLeaveBalanceResponses(created))
}

// Delete implements LeaveBalanceHandler.
func (h *leaveBalanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.balanceService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave balance deleted successfully", nil)
}
