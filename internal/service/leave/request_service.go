package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// Recorder observes workflow outcomes. pkg/metrics provides the Prometheus
// implementation.
type Recorder interface {
	TransitionCompleted(action leave.Action, outcome string)
	TransitionRetried(action leave.Action)
}

type noopRecorder struct{}

func (noopRecorder) TransitionCompleted(leave.Action, string) {}
func (noopRecorder) TransitionRetried(leave.Action)           {}

// actionRemove labels draft deletion in metrics. It never enters history.
const actionRemove leave.Action = "REMOVE"

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, leave.TransitionEvent) {}

type RequestServiceImpl struct {
	tx leave.TxManager
	leave.LeaveTypeRepository
	leave.LeaveBalanceRepository
	leave.LeaveRequestRepository
	leave.LeaveHistoryRepository
	notifier leave.Notifier
	recorder Recorder
	retry    RetryPolicy
}

func NewRequestService(
	tx leave.TxManager,
	leaveTypeRepository leave.LeaveTypeRepository,
	leaveBalanceRepository leave.LeaveBalanceRepository,
	leaveRequestRepository leave.LeaveRequestRepository,
	leaveHistoryRepository leave.LeaveHistoryRepository,
	notifier leave.Notifier,
	recorder Recorder,
	retry RetryPolicy,
) leave.RequestService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &RequestServiceImpl{
		tx:                     tx,
		LeaveTypeRepository:    leaveTypeRepository,
		LeaveBalanceRepository: leaveBalanceRepository,
		LeaveRequestRepository: leaveRequestRepository,
		LeaveHistoryRepository: leaveHistoryRepository,
		notifier:               notifier,
		recorder:               recorder,
		retry:                  retry.withDefaults(),
	}
}

// Create implements leave.RequestService.
func (s *RequestServiceImpl) Create(ctx context.Context, actor leave.Actor, req leave.CreateLeaveRequestRequest, now time.Time) (leave.LeaveRequest, error) {
	startDate, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	endDate, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	request := leave.LeaveRequest{
		EmployeeID:    actor.EmployeeID,
		LeaveTypeID:   req.LeaveTypeID,
		StartDate:     startDate,
		EndDate:       endDate,
		IsHalfDay:     req.IsHalfDay,
		HalfDayPeriod: halfDayPeriod(req.IsHalfDay, req.HalfDayPeriod),
		Reason:        req.Reason,
		SubstituteID:  req.SubstituteID,
		ContactDuring: req.ContactDuring,
		Status:        leave.StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var created leave.LeaveRequest
	err = s.execute(ctx, leave.ActionCreate, func(ctx context.Context) error {
		leaveType, err := s.activeLeaveType(ctx, request.LeaveTypeID)
		if err != nil {
			return err
		}
		if err := applyDayRules(&request, leaveType); err != nil {
			return err
		}

		created, err = s.LeaveRequestRepository.Create(ctx, request)
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}
		created.LeaveType = &leaveType

		return s.appendHistory(ctx, created.ID, leave.ActionCreate, nil, leave.StatusDraft, actor.EmployeeID, nil, now)
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	return created, nil
}

// Update implements leave.RequestService.
func (s *RequestServiceImpl) Update(ctx context.Context, actor leave.Actor, id string, req leave.UpdateLeaveRequestRequest, now time.Time) (leave.LeaveRequest, error) {
	var updated leave.LeaveRequest
	err := s.execute(ctx, leave.ActionUpdate, func(ctx context.Context) error {
		request, err := s.LeaveRequestRepository.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !request.IsOwnedBy(actor.EmployeeID) {
			return leave.ErrNotRequestOwner(id)
		}
		if request.Status != leave.StatusDraft {
			return leave.ErrNotDraft(id, request.Status)
		}

		previousTypeID := request.LeaveTypeID
		if err := applyUpdate(&request, req); err != nil {
			return err
		}

		// Activity is checked only when the draft moves to another type.
		var leaveType leave.LeaveType
		if request.LeaveTypeID != previousTypeID {
			leaveType, err = s.activeLeaveType(ctx, request.LeaveTypeID)
		} else {
			leaveType, err = s.LeaveTypeRepository.GetByID(ctx, request.LeaveTypeID)
		}
		if err != nil {
			return err
		}
		if err := applyDayRules(&request, leaveType); err != nil {
			return err
		}

		request.UpdatedAt = now
		if err := s.LeaveRequestRepository.Update(ctx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		request.LeaveType = &leaveType
		updated = request

		return s.appendHistory(ctx, id, leave.ActionUpdate, leave.StatusDraft.Ptr(), leave.StatusDraft, actor.EmployeeID, nil, now)
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	return updated, nil
}

// Submit implements leave.RequestService.
func (s *RequestServiceImpl) Submit(ctx context.Context, actor leave.Actor, id string, now time.Time) (leave.LeaveRequest, error) {
	return s.transition(ctx, actor, id, leave.ActionSubmit, nil, now, ownerOnly,
		func(r *leave.LeaveRequest) {
			r.SubmittedAt = &now
			r.ManagerReview = leave.Review{Status: reviewStatus(leave.ReviewStatusPending)}
			r.HRReview = leave.Review{}
			if r.RequiresHRReview {
				r.HRReview.Status = reviewStatus(leave.ReviewStatusPending)
			}
		})
}

// ApproveByManager implements leave.RequestService.
func (s *RequestServiceImpl) ApproveByManager(ctx context.Context, actor leave.Actor, id string, req leave.ReviewRequest, now time.Time) (leave.LeaveRequest, error) {
	return s.transition(ctx, actor, id, leave.ActionManagerApprove, req.Notes, now, notOwner,
		func(r *leave.LeaveRequest) {
			r.ManagerReview = review(leave.ReviewStatusApproved, actor, req.Notes, now)
		})
}

// RejectByManager implements leave.RequestService.
func (s *RequestServiceImpl) RejectByManager(ctx context.Context, actor leave.Actor, id string, req leave.ReviewRequest, now time.Time) (leave.LeaveRequest, error) {
	return s.transition(ctx, actor, id, leave.ActionManagerReject, req.Notes, now, notOwner,
		func(r *leave.LeaveRequest) {
			r.ManagerReview = review(leave.ReviewStatusRejected, actor, req.Notes, now)
			// The HR stage is never reached.
			r.HRReview = leave.Review{}
		})
}

// ApproveByHR implements leave.RequestService.
func (s *RequestServiceImpl) ApproveByHR(ctx context.Context, actor leave.Actor, id string, req leave.ReviewRequest, now time.Time) (leave.LeaveRequest, error) {
	return s.transition(ctx, actor, id, leave.ActionHRApprove, req.Notes, now, notOwner,
		func(r *leave.LeaveRequest) {
			r.HRReview = review(leave.ReviewStatusApproved, actor, req.Notes, now)
		})
}

// RejectByHR implements leave.RequestService.
func (s *RequestServiceImpl) RejectByHR(ctx context.Context, actor leave.Actor, id string, req leave.ReviewRequest, now time.Time) (leave.LeaveRequest, error) {
	return s.transition(ctx, actor, id, leave.ActionHRReject, req.Notes, now, notOwner,
		func(r *leave.LeaveRequest) {
			r.HRReview = review(leave.ReviewStatusRejected, actor, req.Notes, now)
		})
}

// Cancel implements leave.RequestService.
func (s *RequestServiceImpl) Cancel(ctx context.Context, actor leave.Actor, id string, req leave.CancelRequest, now time.Time) (leave.LeaveRequest, error) {
	return s.transition(ctx, actor, id, leave.ActionCancel, req.CancelReason, now, ownerOrHR,
		func(r *leave.LeaveRequest) {
			cancelledBy := actor.EmployeeID
			r.CancelReason = req.CancelReason
			r.CancelledBy = &cancelledBy
			r.CancelledAt = &now
		})
}

// Remove implements leave.RequestService.
func (s *RequestServiceImpl) Remove(ctx context.Context, actor leave.Actor, id string) error {
	return s.execute(ctx, actionRemove, func(ctx context.Context) error {
		request, err := s.LeaveRequestRepository.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !request.IsOwnedBy(actor.EmployeeID) {
			return leave.ErrNotRequestOwner(id)
		}
		if request.Status != leave.StatusDraft {
			return leave.ErrNotDraft(id, request.Status)
		}
		return s.LeaveRequestRepository.Delete(ctx, id)
	})
}

// Get implements leave.RequestService. The request comes with its leave
// type and history attached.
func (s *RequestServiceImpl) Get(ctx context.Context, id string) (leave.LeaveRequest, error) {
	request, err := s.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	leaveType, err := s.LeaveTypeRepository.GetByID(ctx, request.LeaveTypeID)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave type by ID: %w", err)
	}
	request.LeaveType = &leaveType

	history, err := s.LeaveHistoryRepository.ListByRequest(ctx, id)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get request history: %w", err)
	}
	request.History = history

	return request, nil
}

// List implements leave.RequestService.
func (s *RequestServiceImpl) List(ctx context.Context, filter leave.RequestFilter) ([]leave.LeaveRequest, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}
	filter.Normalize()
	return s.LeaveRequestRepository.List(ctx, filter)
}

// ListMine implements leave.RequestService.
func (s *RequestServiceImpl) ListMine(ctx context.Context, actor leave.Actor, filter leave.RequestFilter) ([]leave.LeaveRequest, int64, error) {
	employeeID := actor.EmployeeID
	filter.EmployeeID = &employeeID
	return s.List(ctx, filter)
}

type authorizer func(actor leave.Actor, r leave.LeaveRequest) error

func ownerOnly(actor leave.Actor, r leave.LeaveRequest) error {
	if !r.IsOwnedBy(actor.EmployeeID) {
		return leave.ErrNotRequestOwner(r.ID)
	}
	return nil
}

func notOwner(actor leave.Actor, r leave.LeaveRequest) error {
	if r.IsOwnedBy(actor.EmployeeID) {
		return leave.ErrSelfReview(r.ID)
	}
	return nil
}

func ownerOrHR(actor leave.Actor, r leave.LeaveRequest) error {
	if !r.IsOwnedBy(actor.EmployeeID) && !actor.IsHR() {
		return leave.ErrCancelNotAllowed(r.ID)
	}
	return nil
}

// transition runs one workflow step: lock the request, check the actor,
// look the step up in the transition table, lock and update the balance,
// write the request and append history. Everything happens in one
// transaction and the notifier only sees committed steps.
func (s *RequestServiceImpl) transition(
	ctx context.Context,
	actor leave.Actor,
	id string,
	action leave.Action,
	notes *string,
	now time.Time,
	authorize authorizer,
	mutate func(r *leave.LeaveRequest),
) (leave.LeaveRequest, error) {
	var result leave.LeaveRequest
	var from leave.LeaveRequestStatus

	err := s.execute(ctx, action, func(ctx context.Context) error {
		request, err := s.LeaveRequestRepository.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := authorize(actor, request); err != nil {
			return err
		}

		leaveType, err := s.LeaveTypeRepository.GetByID(ctx, request.LeaveTypeID)
		if err != nil {
			return fmt.Errorf("failed to get leave type by ID: %w", err)
		}

		// The HR stage is decided once, at submission.
		if action == leave.ActionSubmit && request.Status == leave.StatusDraft {
			request.RequiresHRReview = leaveType.RequiresApproval
		}

		t, err := leave.Lookup(request.Status, action, request.RequiresHRReview)
		if err != nil {
			return err
		}

		if err := s.applyLedger(ctx, &request, t.Ledger); err != nil {
			return err
		}

		from = request.Status
		request.Status = t.To
		request.UpdatedAt = now
		mutate(&request)

		if err := s.LeaveRequestRepository.Update(ctx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		if err := s.appendHistory(ctx, id, action, from.Ptr(), t.To, actor.EmployeeID, notes, now); err != nil {
			return err
		}

		request.LeaveType = &leaveType
		result = request
		return nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	slog.Info("Leave request transitioned",
		"request_id", id,
		"action", action,
		"from", from,
		"to", result.Status,
		"performed_by", actor.EmployeeID,
	)
	s.notifier.Notify(ctx, leave.TransitionEvent{
		RequestID:   result.ID,
		EmployeeID:  result.EmployeeID,
		Action:      action,
		FromStatus:  from,
		ToStatus:    result.Status,
		PerformedBy: actor.EmployeeID,
		OccurredAt:  now,
	})

	return result, nil
}

// applyLedger moves the request's days on its balance row. Reserve looks
// the row up by (employee, type, year of start date) and proceeds without
// a reservation when no row exists; every later step touches the row only
// when the reservation was made.
func (s *RequestServiceImpl) applyLedger(ctx context.Context, request *leave.LeaveRequest, op leave.LedgerOp) error {
	if op == leave.LedgerNone {
		return nil
	}

	var balance leave.LeaveBalance
	if op == leave.LedgerReserve {
		b, ok, err := s.LeaveBalanceRepository.GetByKeyForUpdate(ctx, request.EmployeeID, request.LeaveTypeID, request.BalanceYear())
		if err != nil {
			return fmt.Errorf("failed to get leave balance: %w", err)
		}
		if !ok {
			slog.Warn("No leave balance for submitted request, proceeding without reservation",
				"request_id", request.ID,
				"employee_id", request.EmployeeID,
				"leave_type_id", request.LeaveTypeID,
				"year", request.BalanceYear(),
			)
			request.BalanceID = nil
			return nil
		}
		if b.RemainingDays.LessThan(request.TotalDays) {
			return leave.ErrInsufficientBalanceFor(request.TotalDays.String(), b.RemainingDays.String())
		}
		balance = b
	} else {
		if request.BalanceID == nil {
			return nil
		}
		b, err := s.LeaveBalanceRepository.GetByIDForUpdate(ctx, *request.BalanceID)
		if err != nil {
			return fmt.Errorf("failed to get leave balance: %w", err)
		}
		balance = b
	}

	if err := balance.Apply(op, request.TotalDays); err != nil {
		return err
	}
	if _, err := s.LeaveBalanceRepository.UpdateAmounts(ctx, balance); err != nil {
		return err
	}

	if op == leave.LedgerReserve {
		balanceID := balance.ID
		request.BalanceID = &balanceID
	}
	return nil
}

// execute runs fn in a transaction and reruns it on concurrency errors.
func (s *RequestServiceImpl) execute(ctx context.Context, action leave.Action, fn func(ctx context.Context) error) error {
	err := s.retry.run(ctx, string(action),
		func() { s.recorder.TransitionRetried(action) },
		func() error { return s.tx.WithinTx(ctx, fn) },
	)
	s.recorder.TransitionCompleted(action, outcome(err))
	return err
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if e, ok := leave.AsError(err); ok {
		return string(e.Kind)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "cancelled"
	}
	return "error"
}

func (s *RequestServiceImpl) activeLeaveType(ctx context.Context, id string) (leave.LeaveType, error) {
	leaveType, err := s.LeaveTypeRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, leave.ErrNotFound) {
			return leave.LeaveType{}, leave.ErrLeaveTypeInvalid(id)
		}
		return leave.LeaveType{}, fmt.Errorf("failed to get leave type by ID: %w", err)
	}
	if !leaveType.IsActive {
		return leave.LeaveType{}, leave.ErrLeaveTypeInvalid(id)
	}
	return leaveType, nil
}

func (s *RequestServiceImpl) appendHistory(
	ctx context.Context,
	requestID string,
	action leave.Action,
	from *leave.LeaveRequestStatus,
	to leave.LeaveRequestStatus,
	performedBy string,
	notes *string,
	now time.Time,
) error {
	_, err := s.LeaveHistoryRepository.Append(ctx, leave.History{
		RequestID:   requestID,
		Action:      action,
		FromStatus:  from,
		ToStatus:    to,
		PerformedBy: performedBy,
		Notes:       notes,
		CreatedAt:   now,
	})
	if err != nil {
		return fmt.Errorf("failed to append request history: %w", err)
	}
	return nil
}

// applyDayRules checks the date range and the leave type limits and sets
// TotalDays.
func applyDayRules(r *leave.LeaveRequest, lt leave.LeaveType) error {
	if r.EndDate.Before(r.StartDate) {
		return leave.ErrInvalidDateRange(r.StartDate.Format(leave.DateLayout), r.EndDate.Format(leave.DateLayout))
	}
	if r.IsHalfDay && !lt.AllowHalfDay {
		return leave.ErrHalfDayNotAllowed(lt.ID)
	}

	r.TotalDays = leave.CountDays(r.StartDate, r.EndDate, r.IsHalfDay)
	if lt.MaxDaysPerRequest != nil && r.TotalDays.GreaterThan(decimal.NewFromInt(int64(*lt.MaxDaysPerRequest))) {
		return leave.ErrMaxDaysExceeded(r.TotalDays.String(), *lt.MaxDaysPerRequest)
	}
	return nil
}

func applyUpdate(r *leave.LeaveRequest, req leave.UpdateLeaveRequestRequest) error {
	if req.LeaveTypeID != nil {
		r.LeaveTypeID = *req.LeaveTypeID
	}
	if req.StartDate != nil {
		d, err := parseDate("start_date", *req.StartDate)
		if err != nil {
			return err
		}
		r.StartDate = d
	}
	if req.EndDate != nil {
		d, err := parseDate("end_date", *req.EndDate)
		if err != nil {
			return err
		}
		r.EndDate = d
	}
	if req.IsHalfDay != nil {
		r.IsHalfDay = *req.IsHalfDay
	}
	if req.HalfDayPeriod != nil || req.IsHalfDay != nil {
		period := req.HalfDayPeriod
		if period == nil && r.HalfDayPeriod != nil {
			p := string(*r.HalfDayPeriod)
			period = &p
		}
		r.HalfDayPeriod = halfDayPeriod(r.IsHalfDay, period)
	}
	if req.Reason != nil {
		r.Reason = req.Reason
	}
	if req.SubstituteID != nil {
		r.SubstituteID = req.SubstituteID
	}
	if req.ContactDuring != nil {
		r.ContactDuring = req.ContactDuring
	}
	return nil
}

func parseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(leave.DateLayout, value)
	if err != nil {
		return time.Time{}, leave.ErrInvalidDate(field, value)
	}
	return d, nil
}

func halfDayPeriod(isHalfDay bool, period *string) *leave.HalfDayPeriod {
	if !isHalfDay || period == nil {
		return nil
	}
	p := leave.HalfDayPeriod(*period)
	return &p
}

func reviewStatus(s leave.ReviewStatus) *leave.ReviewStatus {
	return &s
}

func review(status leave.ReviewStatus, actor leave.Actor, notes *string, now time.Time) leave.Review {
	reviewerID := actor.EmployeeID
	return leave.Review{
		Status:     reviewStatus(status),
		ReviewerID: &reviewerID,
		ReviewedAt: &now,
		Notes:      notes,
	}
}
