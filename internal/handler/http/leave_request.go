package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type LeaveRequestHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	ApproveByManager(w http.ResponseWriter, r *http.Request)
	RejectByManager(w http.ResponseWriter, r *http.Request)
	ApproveByHR(w http.ResponseWriter, r *http.Request)
	RejectByHR(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type leaveRequestHandlerImpl struct {
	requestService leave.RequestService
	now            func() time.Time
}

func NewLeaveRequestHandler(requestService leave.RequestService, now func() time.Time) LeaveRequestHandler {
	if now == nil {
		now = time.Now
	}
	return &leaveRequestHandlerImpl{
		requestService: requestService,
		now:            now,
	}
}

// actorFrom returns the authenticated actor or writes 401.
func actorFrom(w http.ResponseWriter, r *http.Request) (leave.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return leave.Actor{}, false
	}
	return actor, true
}

// decodeJSON decodes the body into v. An empty body leaves v untouched
// when optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, optional bool) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		slog.Debug("Request decode error", "path", r.URL.Path, "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

func urlID(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	id := chi.URLParam(r, param)
	if id == "" {
		response.BadRequest(w, param+" is required", nil)
		return "", false
	}
	return id, true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, key string, errs *validator.ValidationErrors) *int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		*errs = append(*errs, validator.ValidationError{Field: key, Message: key + " must be an integer"})
		return nil
	}
	return &n
}

func requestFilterFromQuery(r *http.Request) (leave.RequestFilter, error) {
	var errs validator.ValidationErrors
	filter := leave.RequestFilter{}
	q := r.URL.Query()

	if employeeID := q.Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if status := q.Get("status"); status != "" {
		s := leave.LeaveRequestStatus(status)
		filter.Status = &s
	}
	filter.Year = queryInt(r, "year", &errs)
	if page := queryInt(r, "page", &errs); page != nil {
		filter.Page = *page
	}
	if limit := queryInt(r, "limit", &errs); limit != nil {
		filter.Limit = *limit
	}

	if len(errs) > 0 {
		return filter, errs
	}
	return filter, nil
}

func (h *leaveRequestHandlerImpl) writeList(w http.ResponseWriter, filter leave.RequestFilter, requests []leave.LeaveRequest, total int64) {
	filter.Normalize()
	items := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, req := range requests {
		items = append(items, leave.NewLeaveRequestResponse(req))
	}
	response.SuccessWithMeta(w, items, response.NewMeta(filter.Page, filter.Limit, total))
}

// Create implements LeaveRequestHandler.
func (h *leaveRequestHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req leave.CreateLeaveRequestRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.requestService.Create(r.Context(), actor, req, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request created successfully", leave.NewLeaveRequestResponse(created))
}

// Update implements LeaveRequestHandler.
func (h *leaveRequestHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req leave.UpdateLeaveRequestRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	updated, err := h.requestService.Update(r.Context(), actor, id, req, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request updated successfully", leave.NewLeaveRequestResponse(updated))
}

// Submit implements LeaveRequestHandler.
func (h *leaveRequestHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	submitted, err := h.requestService.Submit(r.Context(), actor, id, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request submitted successfully", leave.NewLeaveRequestResponse(submitted))
}

type reviewFunc func(ctx context.Context, actor leave.Actor, id string, req leave.ReviewRequest, now time.Time) (leave.LeaveRequest, error)

func (h *leaveRequestHandlerImpl) review(w http.ResponseWriter, r *http.Request, fn reviewFunc, message string) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req leave.ReviewRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	reviewed, err := fn(r.Context(), actor, id, req, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, leave.NewLeaveRequestResponse(reviewed))
}

// ApproveByManager implements LeaveRequestHandler.
func (h *leaveRequestHandlerImpl) ApproveByManager(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.requestService.ApproveByManager, "Leave request approved by manager")
}

// RejectByManager implements LeaveRequestHandler.
func (h *leaveRequestHandlerImpl) RejectByManager(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.requestService.RejectByManager, "Leave request rejected by manager")
}

// ApproveByHR implements LeaveRequestHandler.
func (h *leaveRequestHandlerImpl) ApproveByHR(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.requestService.ApproveByHR, "Leave request approved by HR")
}

// RejectByHR implements LeaveRequestHandler.
func (h *leaveRequestHandlerImpl) RejectByHR(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.requestService.RejectByHR, "Leave request rejected by HR")
}

// Cancel implements LeaveRequestHandler.
func (h *leaveRequestHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req leave.CancelRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	cancelled, err := h.requestService.Cancel(r.Context(), actor, id, req, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request cancelled successfully", leave.NewLeaveRequestResponse(cancelled))
}

// Get implements LeaveRequestHandler. Callers without leave.view_all only
// see their own requests.
func (h *leaveRequestHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	req, err := h.requestService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !req.IsOwnedBy(actor.EmployeeID) && !user.HasPermission(actor.Role, user.PermissionLeaveViewAll) {
		response.HandleError(w, leave.ErrNotRequestOwner(id))
		return
	}

	response.Success(w, leave.NewLeaveRequestResponse(req))
}

// ListMine implements LeaveRequestHandler.
func (h *leaveRequestHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	filter, err := requestFilterFromQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	requests, total, err := h.requestService.ListMine(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.writeList(w, filter, requests, total)
}

// List implements LeaveRequestHandler.
func (h *leaveRequestHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter, err := requestFilterFromQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	requests, total, err := h.requestService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.writeList(w, filter, requests, total)
}

// Delete implements LeaveRequestHandler.
func (h *leaveRequestHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.requestService.Remove(r.Context(), actor, id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request deleted successfully", nil)
}
