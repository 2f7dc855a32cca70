package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type LeaveTypeResponse struct {
	ID                 string          `json:"id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	Description        *string         `json:"description,omitempty"`
	IsPaid             bool            `json:"is_paid"`
	RequiresApproval   bool            `json:"requires_approval"`
	RequiresAttachment bool            `json:"requires_attachment"`
	AllowHalfDay       bool            `json:"allow_half_day"`
	IsActive           bool            `json:"is_active"`
	MaxDaysPerRequest  *int            `json:"max_days_per_request,omitempty"`
	MinDaysNotice      *int            `json:"min_days_notice,omitempty"`
	DefaultDays        decimal.Decimal `json:"default_days"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func NewLeaveTypeResponse(t LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:                 t.ID,
		Code:               t.Code,
		Name:               t.Name,
		Description:        t.Description,
		IsPaid:             t.IsPaid,
		RequiresApproval:   t.RequiresApproval,
		RequiresAttachment: t.RequiresAttachment,
		AllowHalfDay:       t.AllowHalfDay,
		IsActive:           t.IsActive,
		MaxDaysPerRequest:  t.MaxDaysPerRequest,
		MinDaysNotice:      t.MinDaysNotice,
		DefaultDays:        t.DefaultDays,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

type LeaveBalanceResponse struct {
	ID              string             `json:"id"`
	EmployeeID      string             `json:"employee_id"`
	LeaveTypeID     string             `json:"leave_type_id"`
	LeaveType       *LeaveTypeResponse `json:"leave_type,omitempty"`
	Year            int                `json:"year"`
	TotalDays       decimal.Decimal    `json:"total_days"`
	UsedDays        decimal.Decimal    `json:"used_days"`
	PendingDays     decimal.Decimal    `json:"pending_days"`
	RemainingDays   decimal.Decimal    `json:"remaining_days"`
	CarriedOverDays decimal.Decimal    `json:"carried_over_days"`
	AdjustmentDays  decimal.Decimal    `json:"adjustment_days"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func NewLeaveBalanceResponse(b LeaveBalance) LeaveBalanceResponse {
	resp := LeaveBalanceResponse{
		ID:              b.ID,
		EmployeeID:      b.EmployeeID,
		LeaveTypeID:     b.LeaveTypeID,
		Year:            b.Year,
		TotalDays:       b.TotalDays,
		UsedDays:        b.UsedDays,
		PendingDays:     b.PendingDays,
		RemainingDays:   b.RemainingDays,
		CarriedOverDays: b.CarriedOverDays,
		AdjustmentDays:  b.AdjustmentDays,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.LeaveType != nil {
		lt := NewLeaveTypeResponse(*b.LeaveType)
		resp.LeaveType = &lt
	}
	return resp
}

func NewLeaveBalanceResponses(balances []LeaveBalance) []LeaveBalanceResponse {
	out := make([]LeaveBalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, NewLeaveBalanceResponse(b))
	}
	return out
}

type ReviewResponse struct {
	Status     *ReviewStatus `json:"status,omitempty"`
	ReviewerID *string       `json:"reviewer_id,omitempty"`
	ReviewedAt *time.Time    `json:"reviewed_at,omitempty"`
	Notes      *string       `json:"notes,omitempty"`
}

type HistoryResponse struct {
	ID          string              `json:"id"`
	Action      Action              `json:"action"`
	FromStatus  *LeaveRequestStatus `json:"from_status,omitempty"`
	ToStatus    LeaveRequestStatus  `json:"to_status"`
	PerformedBy string              `json:"performed_by"`
	Notes       *string             `json:"notes,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

type LeaveRequestResponse struct {
	ID            string             `json:"id"`
	EmployeeID    string             `json:"employee_id"`
	LeaveTypeID   string             `json:"leave_type_id"`
	LeaveType     *LeaveTypeResponse `json:"leave_type,omitempty"`
	StartDate     string             `json:"start_date"`
	EndDate       string             `json:"end_date"`
	TotalDays     decimal.Decimal    `json:"total_days"`
	IsHalfDay     bool               `json:"is_half_day"`
	HalfDayPeriod *HalfDayPeriod     `json:"half_day_period,omitempty"`
	Reason        *string            `json:"reason,omitempty"`
	SubstituteID  *string            `json:"substitute_id,omitempty"`
	ContactDuring *string            `json:"contact_during,omitempty"`
	Status        LeaveRequestStatus `json:"status"`
	ManagerReview ReviewResponse     `json:"manager_review"`
	HRReview      ReviewResponse     `json:"hr_review"`
	CancelReason  *string            `json:"cancel_reason,omitempty"`
	CancelledBy   *string            `json:"cancelled_by,omitempty"`
	CancelledAt   *time.Time         `json:"cancelled_at,omitempty"`
	SubmittedAt   *time.Time         `json:"submitted_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	History       []HistoryResponse  `json:"history,omitempty"`
}

func newReviewResponse(r Review) ReviewResponse {
	return ReviewResponse{
		Status:     r.Status,
		ReviewerID: r.ReviewerID,
		ReviewedAt: r.ReviewedAt,
		Notes:      r.Notes,
	}
}

func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		LeaveTypeID:   r.LeaveTypeID,
		StartDate:     r.StartDate.Format(DateLayout),
		EndDate:       r.EndDate.Format(DateLayout),
		TotalDays:     r.TotalDays,
		IsHalfDay:     r.IsHalfDay,
		HalfDayPeriod: r.HalfDayPeriod,
		Reason:        r.Reason,
		SubstituteID:  r.SubstituteID,
		ContactDuring: r.ContactDuring,
		Status:        r.Status,
		ManagerReview: newReviewResponse(r.ManagerReview),
		HRReview:      newReviewResponse(r.HRReview),
		CancelReason:  r.CancelReason,
		CancelledBy:   r.CancelledBy,
		CancelledAt:   r.CancelledAt,
		SubmittedAt:   r.SubmittedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.LeaveType != nil {
		lt := NewLeaveTypeResponse(*r.LeaveType)
		resp.LeaveType = &lt
	}
	for _, h := range r.History {
		resp.History = append(resp.History, HistoryResponse{
			ID:          h.ID,
			Action:      h.Action,
			FromStatus:  h.FromStatus,
			ToStatus:    h.ToStatus,
			PerformedBy: h.PerformedBy,
			Notes:       h.Notes,
			CreatedAt:   h.CreatedAt,
		})
	}
	return resp
}

type ListLeaveRequestResponse struct {
	TotalCount int64                  `json:"total_count"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
	Requests   []LeaveRequestResponse `json:"requests"`
}

type HolidayResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	LocalName   *string     `json:"local_name,omitempty"`
	Date        string      `json:"date"`
	EndDate     *string     `json:"end_date,omitempty"`
	Type        HolidayType `json:"type"`
	IsRecurring bool        `json:"is_recurring"`
	Year        int         `json:"year"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func NewHolidayResponse(h Holiday) HolidayResponse {
	resp := HolidayResponse{
		ID:          h.ID,
		Name:        h.Name,
		LocalName:   h.LocalName,
		Date:        h.Date.Format(DateLayout),
		Type:        h.Type,
		IsRecurring: h.IsRecurring,
		Year:        h.Year,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
	if h.EndDate != nil {
		end := h.EndDate.Format(DateLayout)
		resp.EndDate = &end
	}
	return resp
}

func NewHolidayResponses(holidays []Holiday) []HolidayResponse {
	items := make([]HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		items = append(items, NewHolidayResponse(h))
	}
	return items
}
