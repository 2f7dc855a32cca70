package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/response"
)

type LeaveTypeHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetByCode(w http.ResponseWriter, r *http.Request)
	ToggleActive(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type leaveTypeHandlerImpl struct {
	typeService leave.TypeService
}

func NewLeaveTypeHandler(typeService leave.TypeService) LeaveTypeHandler {
	return &leaveTypeHandlerImpl{typeService: typeService}
}

// Create implements LeaveTypeHandler.
func (h *leaveTypeHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateLeaveTypeRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	leaveType, err := h.typeService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave type created successfully", leave.NewLeaveTypeResponse(leaveType))
}

// Update implements LeaveTypeHandler.
func (h *leaveTypeHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req leave.UpdateLeaveTypeRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	leaveType, err := h.typeService.Update(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave type updated successfully", leave.NewLeaveTypeResponse(leaveType))
}

// List implements LeaveTypeHandler. Inactive types are listed only for
// callers who manage the catalog.
func (h *leaveTypeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	includeInactive := r.URL.Query().Get("include_inactive") == "true" &&
		user.HasPermission(actor.Role, user.PermissionLeaveManageTypes)

	types, err := h.typeService.List(r.Context(), includeInactive)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	items := make([]leave.LeaveTypeResponse, 0, len(types))
	for _, t := range types {
		items = append(items, leave.NewLeaveTypeResponse(t))
	}
	response.Success(w, items)
}

// Get implements LeaveTypeHandler.
func (h *leaveTypeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	leaveType, err := h.typeService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.NewLeaveTypeResponse(leaveType))
}

// GetByCode implements LeaveTypeHandler.
func (h *leaveTypeHandlerImpl) GetByCode(w http.ResponseWriter, r *http.Request) {
	code, ok := urlID(w, r, "code")
	if !ok {
		return
	}

	leaveType, err := h.typeService.GetByCode(r.Context(), code)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.NewLeaveTypeResponse(leaveType))
}

// ToggleActive implements LeaveTypeHandler.
func (h *leaveTypeHandlerImpl) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	leaveType, err := h.typeService.ToggleActive(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave type status updated successfully", leave.NewLeaveTypeResponse(leaveType))
}

// Delete implements LeaveTypeHandler.
func (h *leaveTypeHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.typeService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave type deleted successfully", nil)
}
