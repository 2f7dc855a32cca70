package leave

import (
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

type CreateLeaveRequestRequest struct {
	LeaveTypeID   string  `json:"leave_type_id" validate:"required"`
	StartDate     string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	IsHalfDay     bool    `json:"is_half_day"`
	HalfDayPeriod *string `json:"half_day_period,omitempty" validate:"omitempty,oneof=MORNING AFTERNOON"`
	Reason        *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
	SubstituteID  *string `json:"substitute_id,omitempty" validate:"omitempty,max=64"`
	ContactDuring *string `json:"contact_during,omitempty" validate:"omitempty,max=255"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	errs := validator.Struct(r)

	if r.HalfDayPeriod != nil && !r.IsHalfDay {
		errs = append(errs, validator.ValidationError{
			Field:   "half_day_period",
			Message: "half_day_period requires is_half_day",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateLeaveRequestRequest struct {
	LeaveTypeID   *string `json:"leave_type_id,omitempty" validate:"omitempty,min=1"`
	StartDate     *string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate       *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsHalfDay     *bool   `json:"is_half_day,omitempty"`
	HalfDayPeriod *string `json:"half_day_period,omitempty" validate:"omitempty,oneof=MORNING AFTERNOON"`
	Reason        *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
	SubstituteID  *string `json:"substitute_id,omitempty" validate:"omitempty,max=64"`
	ContactDuring *string `json:"contact_during,omitempty" validate:"omitempty,max=255"`
}

func (r *UpdateLeaveRequestRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

// ChangesDays reports whether the update affects the day count.
func (r *UpdateLeaveRequestRequest) ChangesDays() bool {
	return r.StartDate != nil || r.EndDate != nil || r.IsHalfDay != nil
}

type ReviewRequest struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r *ReviewRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

type CancelRequest struct {
	CancelReason *string `json:"cancel_reason,omitempty" validate:"omitempty,max=1000"`
}

func (r *CancelRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// RequestFilter is the closed filter for request lists. Nil fields do not
// filter. Page and Limit default to DefaultPage and DefaultLimit.
type RequestFilter struct {
	EmployeeID *string
	Status     *LeaveRequestStatus
	Year       *int
	Page       int
	Limit      int
}

func (f *RequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !f.Status.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of DRAFT, PENDING_MANAGER, PENDING_HR, APPROVED, REJECTED, CANCELLED",
		})
	}
	if f.Year != nil && (*f.Year < 1900 || *f.Year > 9999) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 1900 and 9999",
		})
	}
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive integer",
		})
	}
	if f.Limit < 0 || f.Limit > MaxLimit {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be between 1 and 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Normalize applies the paging defaults.
func (f *RequestFilter) Normalize() {
	if f.Page <= 0 {
		f.Page = DefaultPage
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
}

func (f RequestFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type CreateLeaveTypeRequest struct {
	Code               string          `json:"code" validate:"required,max=50"`
	Name               string          `json:"name" validate:"required,max=255"`
	Description        *string         `json:"description,omitempty" validate:"omitempty,max=1000"`
	IsPaid             *bool           `json:"is_paid,omitempty"`
	RequiresApproval   *bool           `json:"requires_approval,omitempty"`
	RequiresAttachment *bool           `json:"requires_attachment,omitempty"`
	AllowHalfDay       *bool           `json:"allow_half_day,omitempty"`
	IsActive           *bool           `json:"is_active,omitempty"`
	MaxDaysPerRequest  *int            `json:"max_days_per_request,omitempty" validate:"omitempty,gt=0"`
	MinDaysNotice      *int            `json:"min_days_notice,omitempty" validate:"omitempty,gte=0"`
	DefaultDays        decimal.Decimal `json:"default_days"`
}

func (r *CreateLeaveTypeRequest) Validate() error {
	errs := validator.Struct(r)

	if r.DefaultDays.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "default_days",
			Message: "default_days must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateLeaveTypeRequest struct {
	Code               *string          `json:"code,omitempty" validate:"omitempty,min=1,max=50"`
	Name               *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description        *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	IsPaid             *bool            `json:"is_paid,omitempty"`
	RequiresApproval   *bool            `json:"requires_approval,omitempty"`
	RequiresAttachment *bool            `json:"requires_attachment,omitempty"`
	AllowHalfDay       *bool            `json:"allow_half_day,omitempty"`
	IsActive           *bool            `json:"is_active,omitempty"`
	MaxDaysPerRequest  *int             `json:"max_days_per_request,omitempty" validate:"omitempty,gt=0"`
	MinDaysNotice      *int             `json:"min_days_notice,omitempty" validate:"omitempty,gte=0"`
	DefaultDays        *decimal.Decimal `json:"default_days,omitempty"`
}

func (r *UpdateLeaveTypeRequest) Validate() error {
	errs := validator.Struct(r)

	if r.DefaultDays != nil && r.DefaultDays.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "default_days",
			Message: "default_days must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateLeaveBalanceRequest struct {
	EmployeeID  string          `json:"employee_id" validate:"required"`
	LeaveTypeID string          `json:"leave_type_id" validate:"required"`
	Year        int             `json:"year" validate:"required,gte=1900,lte=9999"`
	TotalDays   decimal.Decimal `json:"total_days"`
}

func (r *CreateLeaveBalanceRequest) Validate() error {
	errs := validator.Struct(r)

	if r.TotalDays.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "total_days",
			Message: "total_days must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AdjustBalanceRequest struct {
	Days   decimal.Decimal `json:"days"`
	Reason string          `json:"reason" validate:"required,max=500"`
}

func (r *AdjustBalanceRequest) Validate() error {
	errs := validator.Struct(r)

	if r.Days.IsZero() {
		errs = append(errs, validator.ValidationError{
			Field:   "days",
			Message: "days must not be zero",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CarryOverRequest struct {
	FromYear int `json:"from_year" validate:"required,gte=1900,lte=9999"`
	ToYear   int `json:"to_year" validate:"required,gte=1900,lte=9999"`
}

func (r *CarryOverRequest) Validate() error {
	errs := validator.Struct(r)

	if len(errs) == 0 && r.ToYear <= r.FromYear {
		errs = append(errs, validator.ValidationError{
			Field:   "to_year",
			Message: "to_year must be after from_year",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type InitializeBalanceRequest struct {
	Year int `json:"year" validate:"required,gte=1900,lte=9999"`
}

func (r *InitializeBalanceRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

// BalanceFilter is the closed filter for balance lists.
type BalanceFilter struct {
	EmployeeID  *string
	LeaveTypeID *string
	Year        *int
}

type CreateHolidayRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	LocalName   *string `json:"local_name,omitempty" validate:"omitempty,max=255"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	EndDate     *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Type        *string `json:"type,omitempty" validate:"omitempty,oneof=PUBLIC RELIGIOUS NATIONAL OTHER"`
	IsRecurring bool    `json:"is_recurring"`
	// Year defaults to the year of Date.
	Year *int `json:"year,omitempty" validate:"omitempty,gte=1900,lte=9999"`
}

func (r *CreateHolidayRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateHolidayRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	LocalName   *string `json:"local_name,omitempty" validate:"omitempty,max=255"`
	Date        *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Type        *string `json:"type,omitempty" validate:"omitempty,oneof=PUBLIC RELIGIOUS NATIONAL OTHER"`
	IsRecurring *bool   `json:"is_recurring,omitempty"`
	Year        *int    `json:"year,omitempty" validate:"omitempty,gte=1900,lte=9999"`
}

func (r *UpdateHolidayRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

// HolidayFilter narrows holiday lists. Nil fields do not filter.
type HolidayFilter struct {
	Year *int
	Type *HolidayType
}

func (f HolidayFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Year != nil && (*f.Year < 1900 || *f.Year > 9999) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 1900 and 9999",
		})
	}
	if f.Type != nil && !f.Type.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of PUBLIC, RELIGIOUS, NATIONAL, OTHER",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

const (
	DefaultUpcomingHolidays = 10
	MaxUpcomingHolidays     = 100
)

type CloneHolidaysRequest struct {
	FromYear int `json:"from_year" validate:"required,gte=1900,lte=9999"`
	ToYear   int `json:"to_year" validate:"required,gte=1900,lte=9999"`
}

func (r *CloneHolidaysRequest) Validate() error {
	errs := validator.Struct(r)

	if len(errs) == 0 && r.ToYear == r.FromYear {
		errs = append(errs, validator.ValidationError{
			Field:   "to_year",
			Message: "to_year must differ from from_year",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
