package http

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
)

type HolidayHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListInRange(w http.ResponseWriter, r *http.Request)
	ListUpcoming(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	CloneYear(w http.ResponseWriter, r *http.Request)
}

type holidayHandlerImpl struct {
	holidayService leave.HolidayService
	now            func() time.Time
}

func NewHolidayHandler(holidayService leave.HolidayService, now func() time.Time) HolidayHandler {
	if now == nil {
		now = time.Now
	}
	return &holidayHandlerImpl{holidayService: holidayService, now: now}
}

// Create implements HolidayHandler.
func (h *holidayHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateHolidayRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	holiday, err := h.holidayService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday created successfully", leave.NewHolidayResponse(holiday))
}

// Update implements HolidayHandler.
func (h *holidayHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req leave.UpdateHolidayRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	holiday, err := h.holidayService.Update(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Holiday updated successfully", leave.NewHolidayResponse(holiday))
}

// List implements HolidayHandler. Filters: year, type.
func (h *holidayHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var errs validator.ValidationErrors
	filter := leave.HolidayFilter{Year: queryInt(r, "year", &errs)}
	if t := r.URL.Query().Get("type"); t != "" {
		ht := leave.HolidayType(t)
		filter.Type = &ht
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	holidays, err := h.holidayService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.NewHolidayResponses(holidays))
}

// Get implements HolidayHandler.
func (h *holidayHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	holiday, err := h.holidayService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.NewHolidayResponse(holiday))
}

// ListInRange implements HolidayHandler.
func (h *holidayHandlerImpl) ListInRange(w http.ResponseWriter, r *http.Request) {
	startDate, ok := urlID(w, r, "startDate")
	if !ok {
		return
	}
	endDate, ok := urlID(w, r, "endDate")
	if !ok {
		return
	}

	holidays, err := h.holidayService.ListInRange(r.Context(), startDate, endDate)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.NewHolidayResponses(holidays))
}

// ListUpcoming implements HolidayHandler.
func (h *holidayHandlerImpl) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	var errs validator.ValidationErrors
	limit := queryInt(r, "limit", &errs)
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	n := 0
	if limit != nil {
		n = *limit
	}
	holidays, err := h.holidayService.ListUpcoming(r.Context(), n, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.NewHolidayResponses(holidays))
}

// Delete implements HolidayHandler.
func (h *holidayHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.holidayService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Holiday deleted successfully", nil)
}

// CloneYear implements HolidayHandler.
func (h *holidayHandlerImpl) CloneYear(w http.ResponseWriter, r *http.Request) {
	var req leave.CloneHolidaysRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	holidays, err := h.holidayService.CloneYear(r.Context(), req.FromYear, req.ToYear)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holidays cloned successfully", leave.NewHolidayResponses(holidays))
}
