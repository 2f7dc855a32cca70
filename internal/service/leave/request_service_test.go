package leave

import (
	"context"
	"sync"
	"testing"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertBalance(t *testing.T, b leave.LeaveBalance, total, used, pending, remaining string) {
	t.Helper()
	assert.True(t, b.TotalDays.Equal(days(total)), "total: got %s want %s", b.TotalDays, total)
	assert.True(t, b.UsedDays.Equal(days(used)), "used: got %s want %s", b.UsedDays, used)
	assert.True(t, b.PendingDays.Equal(days(pending)), "pending: got %s want %s", b.PendingDays, pending)
	assert.True(t, b.RemainingDays.Equal(days(remaining)), "remaining: got %s want %s", b.RemainingDays, remaining)
	assert.NoError(t, b.Check())
}

func TestRequestService_TwoStageApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.balance(t, f.annual, 12)

	r := f.draft(t, f.annual, "2025-04-07", "2025-04-09")
	assert.Equal(t, leave.StatusDraft, r.Status)
	assert.True(t, r.TotalDays.Equal(days("3")))

	r, err := f.requests.Submit(ctx, employee, r.ID, testNow)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPendingManager, r.Status)
	require.NotNil(t, r.BalanceID)
	assert.Equal(t, b.ID, *r.BalanceID)
	assertBalance(t, f.reload(t, b.ID), "12", "0", "3", "9")

	r, err = f.requests.ApproveByManager(ctx, manager, r.ID, leave.ReviewRequest{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPendingHR, r.Status)
	require.NotNil(t, r.ManagerReview.Status)
	assert.Equal(t, leave.ReviewStatusApproved, *r.ManagerReview.Status)
	assertBalance(t, f.reload(t, b.ID), "12", "0", "3", "9")

	r, err = f.requests.ApproveByHR(ctx, hr, r.ID, leave.ReviewRequest{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, r.Status)
	assertBalance(t, f.reload(t, b.ID), "12", "3", "0", "9")

	got, err := f.requests.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, got.History, 4)
	assert.Equal(t, leave.ActionHRApprove, got.History[0].Action)
	assert.Equal(t, leave.ActionCreate, got.History[3].Action)

	events := f.notifier.Events()
	require.Len(t, events, 3)
	assert.Equal(t, leave.StatusPendingHR, events[1].ToStatus)
}

func TestRequestService_ManagerApprovalWithoutHRStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.balance(t, f.emergency, 5)

	r := f.draft(t, f.emergency, "2025-04-07", "2025-04-08")
	_, err := f.requests.Submit(ctx, employee, r.ID, testNow)
	require.NoError(t, err)

	r, err = f.requests.ApproveByManager(ctx, manager, r.ID, leave.ReviewRequest{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, r.Status)
	assert.Nil(t, r.HRReview.Status)
	assertBalance(t, f.reload(t, b.ID), "5", "2", "0", "3")

	_, err = f.requests.ApproveByHR(ctx, hr, r.ID, leave.ReviewRequest{}, testNow)
	assert.ErrorIs(t, err, leave.ErrInvalidState)
}

func TestRequestService_RejectionsReleaseReservation(t *testing.T) {
	tests := []struct {
		name   string
		reject func(f *fixture, id string) (leave.LeaveRequest, error)
	}{
		{
			name: "manager rejects",
			reject: func(f *fixture, id string) (leave.LeaveRequest, error) {
				return f.requests.RejectByManager(context.Background(), manager, id, leave.ReviewRequest{}, testNow)
			},
		},
		{
			name: "hr rejects",
			reject: func(f *fixture, id string) (leave.LeaveRequest, error) {
				if _, err := f.requests.ApproveByManager(context.Background(), manager, id, leave.ReviewRequest{}, testNow); err != nil {
					return leave.LeaveRequest{}, err
				}
				return f.requests.RejectByHR(context.Background(), hr, id, leave.ReviewRequest{}, testNow)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			b := f.balance(t, f.annual, 10)
			r := f.draft(t, f.annual, "2025-05-05", "2025-05-09")

			_, err := f.requests.Submit(context.Background(), employee, r.ID, testNow)
			require.NoError(t, err)

			r, err = tt.reject(f, r.ID)
			require.NoError(t, err)
			assert.Equal(t, leave.StatusRejected, r.Status)
			assertBalance(t, f.reload(t, b.ID), "10", "0", "0", "10")

			_, err = f.requests.Cancel(context.Background(), employee, r.ID, leave.CancelRequest{}, testNow)
			assert.ErrorIs(t, err, leave.ErrInvalidState)
		})
	}
}

func TestRequestService_CancelFromEveryState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.balance(t, f.annual, 20)

	// DRAFT: nothing to release
	draft := f.draft(t, f.annual, "2025-06-02", "2025-06-03")
	reason := "plans changed"
	cancelled, err := f.requests.Cancel(ctx, employee, draft.ID, leave.CancelRequest{CancelReason: &reason}, testNow)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, employee.EmployeeID, *cancelled.CancelledBy)
	assertBalance(t, f.reload(t, b.ID), "20", "0", "0", "20")

	// PENDING_HR: releases pending
	pending := f.draft(t, f.annual, "2025-06-09", "2025-06-12")
	_, err = f.requests.Submit(ctx, employee, pending.ID, testNow)
	require.NoError(t, err)
	_, err = f.requests.ApproveByManager(ctx, manager, pending.ID, leave.ReviewRequest{}, testNow)
	require.NoError(t, err)
	_, err = f.requests.Cancel(ctx, employee, pending.ID, leave.CancelRequest{}, testNow)
	require.NoError(t, err)
	assertBalance(t, f.reload(t, b.ID), "20", "0", "0", "20")

	// APPROVED: HR cancels, used days come back
	approved := f.draft(t, f.annual, "2025-07-01", "2025-07-05")
	_, err = f.requests.Submit(ctx, employee, approved.ID, testNow)
	require.NoError(t, err)
	_, err = f.requests.ApproveByManager(ctx, manager, approved.ID, leave.ReviewRequest{}, testNow)
	require.NoError(t, err)
	_, err = f.requests.ApproveByHR(ctx, hr, approved.ID, leave.ReviewRequest{}, testNow)
	require.NoError(t, err)
	assertBalance(t, f.reload(t, b.ID), "20", "5", "0", "15")

	_, err = f.requests.Cancel(ctx, hr, approved.ID, leave.CancelRequest{}, testNow)
	require.NoError(t, err)
	assertBalance(t, f.reload(t, b.ID), "20", "0", "0", "20")

	// Re-cancel never touches the ledger
	versionBefore := f.reload(t, b.ID).Version
	_, err = f.requests.Cancel(ctx, employee, approved.ID, leave.CancelRequest{}, testNow)
	assert.ErrorIs(t, err, leave.ErrInvalidState)
	assert.Equal(t, versionBefore, f.reload(t, b.ID).Version)
	assertBalance(t, f.reload(t, b.ID), "20", "0", "0", "20")
}

func TestRequestService_TerminalHistoryRecordsPriorStatus(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, f *fixture, id string)
		finish  func(f *fixture, id string) (leave.LeaveRequest, error)
		from    leave.LeaveRequestStatus
		to      leave.LeaveRequestStatus
		action  leave.Action
	}{
		{
			name:    "cancel from draft",
			prepare: func(*testing.T, *fixture, string) {},
			finish:  cancelAs(employee),
			from:    leave.StatusDraft,
			to:      leave.StatusCancelled,
			action:  leave.ActionCancel,
		},
		{
			name:    "cancel from pending manager",
			prepare: submitted,
			finish:  cancelAs(employee),
			from:    leave.StatusPendingManager,
			to:      leave.StatusCancelled,
			action:  leave.ActionCancel,
		},
		{
			name:    "cancel from pending hr",
			prepare: managerApproved,
			finish:  cancelAs(employee),
			from:    leave.StatusPendingHR,
			to:      leave.StatusCancelled,
			action:  leave.ActionCancel,
		},
		{
			name: "cancel from approved",
			prepare: func(t *testing.T, f *fixture, id string) {
				managerApproved(t, f, id)
				_, err := f.requests.ApproveByHR(context.Background(), hr, id, leave.ReviewRequest{}, testNow)
				require.NoError(t, err)
			},
			finish: cancelAs(hr),
			from:   leave.StatusApproved,
			to:     leave.StatusCancelled,
			action: leave.ActionCancel,
		},
		{
			name:    "manager reject",
			prepare: submitted,
			finish: func(f *fixture, id string) (leave.LeaveRequest, error) {
				return f.requests.RejectByManager(context.Background(), manager, id, leave.ReviewRequest{}, testNow)
			},
			from:   leave.StatusPendingManager,
			to:     leave.StatusRejected,
			action: leave.ActionManagerReject,
		},
		{
			name:    "hr reject",
			prepare: managerApproved,
			finish: func(f *fixture, id string) (leave.LeaveRequest, error) {
				return f.requests.RejectByHR(context.Background(), hr, id, leave.ReviewRequest{}, testNow)
			},
			from:   leave.StatusPendingHR,
			to:     leave.StatusRejected,
			action: leave.ActionHRReject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			b := f.balance(t, f.annual, 10)
			r := f.draft(t, f.annual, "2025-05-05", "2025-05-07")

			tt.prepare(t, f, r.ID)
			r, err := tt.finish(f, r.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.to, r.Status)
			assertBalance(t, f.reload(t, b.ID), "10", "0", "0", "10")

			got, err := f.requests.Get(context.Background(), r.ID)
			require.NoError(t, err)
			require.NotEmpty(t, got.History)
			last := got.History[0]
			assert.Equal(t, tt.action, last.Action)
			require.NotNil(t, last.FromStatus)
			assert.Equal(t, tt.from, *last.FromStatus)
			assert.Equal(t, tt.to, last.ToStatus)
		})
	}
}

func TestRequestService_CancelFromPendingManagerReleasesReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.balance(t, f.annual, 10)
	r := f.draft(t, f.annual, "2025-05-05", "2025-05-08")

	_, err := f.requests.Submit(ctx, employee, r.ID, testNow)
	require.NoError(t, err)
	assertBalance(t, f.reload(t, b.ID), "10", "0", "4", "6")

	r, err = f.requests.Cancel(ctx, employee, r.ID, leave.CancelRequest{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, r.Status)
	assertBalance(t, f.reload(t, b.ID), "10", "0", "0", "10")
}

func TestRequestService_HRStageFixedAtSubmission(t *testing.T) {
	ctx := context.Background()

	t.Run("flag cleared after submit keeps the HR stage", func(t *testing.T) {
		f := newFixture(t)
		b := f.balance(t, f.annual, 10)
		r := f.draft(t, f.annual, "2025-05-05", "2025-05-09")

		r, err := f.requests.Submit(ctx, employee, r.ID, testNow)
		require.NoError(t, err)
		assert.True(t, r.RequiresHRReview)

		off := false
		_, err = f.types.Update(ctx, f.annual.ID, leave.UpdateLeaveTypeRequest{RequiresApproval: &off})
		require.NoError(t, err)

		r, err = f.requests.ApproveByManager(ctx, manager, r.ID, leave.ReviewRequest{}, testNow)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusPendingHR, r.Status)
		require.NotNil(t, r.HRReview.Status)
		assert.Equal(t, leave.ReviewStatusPending, *r.HRReview.Status)
		assertBalance(t, f.reload(t, b.ID), "10", "0", "5", "5")

		r, err = f.requests.ApproveByHR(ctx, hr, r.ID, leave.ReviewRequest{}, testNow)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, r.Status)
		assertBalance(t, f.reload(t, b.ID), "10", "5", "0", "5")
	})

	t.Run("flag set after submit adds no HR stage", func(t *testing.T) {
		f := newFixture(t)
		b := f.balance(t, f.emergency, 5)
		r := f.draft(t, f.emergency, "2025-05-05", "2025-05-06")

		r, err := f.requests.Submit(ctx, employee, r.ID, testNow)
		require.NoError(t, err)
		assert.False(t, r.RequiresHRReview)

		on := true
		_, err = f.types.Update(ctx, f.emergency.ID, leave.UpdateLeaveTypeRequest{RequiresApproval: &on})
		require.NoError(t, err)

		r, err = f.requests.ApproveByManager(ctx, manager, r.ID, leave.ReviewRequest{}, testNow)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, r.Status)
		assert.Nil(t, r.HRReview.Status)
		assertBalance(t, f.reload(t, b.ID), "5", "2", "0", "3")
	})
}

func submitted(t *testing.T, f *fixture, id string) {
	t.Helper()
	_, err := f.requests.Submit(context.Background(), employee, id, testNow)
	require.NoError(t, err)
}

func managerApproved(t *testing.T, f *fixture, id string) {
	t.Helper()
	submitted(t, f, id)
	_, err := f.requests.ApproveByManager(context.Background(), manager, id, leave.ReviewRequest{}, testNow)
	require.NoError(t, err)
}

func cancelAs(actor leave.Actor) func(f *fixture, id string) (leave.LeaveRequest, error) {
	return func(f *fixture, id string) (leave.LeaveRequest, error) {
		return f.requests.Cancel(context.Background(), actor, id, leave.CancelRequest{}, testNow)
	}
}

func TestRequestService_InsufficientBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.balance(t, f.annual, 2)

	r := f.draft(t, f.annual, "2025-04-07", "2025-04-09")
	_, err := f.requests.Submit(ctx, employee, r.ID, testNow)
	require.ErrorIs(t, err, leave.ErrInsufficientBalance)

	e, ok := leave.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "3", e.Details["requested"])
	assert.Equal(t, "2", e.Details["remaining"])

	stored, err := f.requests.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusDraft, stored.Status)
	assertBalance(t, f.reload(t, b.ID), "2", "0", "0", "2")
	assert.Empty(t, f.notifier.Events())
}

func TestRequestService_SubmitWithoutBalanceRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := f.draft(t, f.annual, "2025-04-07", "2025-04-09")
	r, err := f.requests.Submit(ctx, employee, r.ID, testNow)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPendingManager, r.Status)
	assert.Nil(t, r.BalanceID)

	// A row created afterwards is never touched by this request.
	b := f.balance(t, f.annual, 10)
	_, err = f.requests.ApproveByManager(ctx, manager, r.ID, leave.ReviewRequest{}, testNow)
	require.NoError(t, err)
	_, err = f.requests.ApproveByHR(ctx, hr, r.ID, leave.ReviewRequest{}, testNow)
	require.NoError(t, err)
	assertBalance(t, f.reload(t, b.ID), "10", "0", "0", "10")
}

func TestRequestService_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.balance(t, f.annual, 10)
	r := f.draft(t, f.annual, "2025-04-07", "2025-04-07")

	_, err := f.requests.Submit(ctx, stranger, r.ID, testNow)
	assert.ErrorIs(t, err, leave.ErrForbidden)

	_, err = f.requests.Submit(ctx, employee, r.ID, testNow)
	require.NoError(t, err)

	// A manager filing their own request still cannot approve it.
	selfReviewer := leave.Actor{EmployeeID: employee.EmployeeID, Role: manager.Role}
	_, err = f.requests.ApproveByManager(ctx, selfReviewer, r.ID, leave.ReviewRequest{}, testNow)
	assert.ErrorIs(t, err, leave.ErrForbidden)

	_, err = f.requests.Cancel(ctx, stranger, r.ID, leave.CancelRequest{}, testNow)
	assert.ErrorIs(t, err, leave.ErrForbidden)

	_, err = f.requests.Update(ctx, stranger, r.ID, leave.UpdateLeaveRequestRequest{}, testNow)
	assert.ErrorIs(t, err, leave.ErrForbidden)
}

func TestRequestService_InvalidTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.draft(t, f.annual, "2025-04-07", "2025-04-07")

	_, err := f.requests.ApproveByManager(ctx, manager, r.ID, leave.ReviewRequest{}, testNow)
	assert.ErrorIs(t, err, leave.ErrInvalidState)

	_, err = f.requests.ApproveByHR(ctx, hr, r.ID, leave.ReviewRequest{}, testNow)
	assert.ErrorIs(t, err, leave.ErrInvalidState)

	_, err = f.requests.Submit(ctx, employee, r.ID, testNow)
	require.NoError(t, err)
	_, err = f.requests.Submit(ctx, employee, r.ID, testNow)
	assert.ErrorIs(t, err, leave.ErrInvalidState)

	_, err = f.requests.ApproveByHR(ctx, hr, r.ID, leave.ReviewRequest{}, testNow)
	assert.ErrorIs(t, err, leave.ErrInvalidState)

	_, err = f.requests.Update(ctx, employee, r.ID, leave.UpdateLeaveRequestRequest{}, testNow)
	assert.ErrorIs(t, err, leave.ErrInvalidState)

	err = f.requests.Remove(ctx, employee, r.ID)
	assert.ErrorIs(t, err, leave.ErrInvalidState)

	_, err = f.requests.Get(ctx, "missing")
	assert.ErrorIs(t, err, leave.ErrNotFound)
}

func TestRequestService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inactive := false
	_, err := f.types.Update(ctx, f.emergency.ID, leave.UpdateLeaveTypeRequest{IsActive: &inactive})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  leave.CreateLeaveRequestRequest
		code string
	}{
		{
			name: "end before start",
			req:  leave.CreateLeaveRequestRequest{LeaveTypeID: f.annual.ID, StartDate: "2025-04-09", EndDate: "2025-04-07"},
			code: "INVALID_DATE_RANGE",
		},
		{
			name: "unknown type",
			req:  leave.CreateLeaveRequestRequest{LeaveTypeID: "missing", StartDate: "2025-04-07", EndDate: "2025-04-07"},
			code: "LEAVE_TYPE_INVALID",
		},
		{
			name: "inactive type",
			req:  leave.CreateLeaveRequestRequest{LeaveTypeID: f.emergency.ID, StartDate: "2025-04-07", EndDate: "2025-04-07"},
			code: "LEAVE_TYPE_INVALID",
		},
		{
			name: "over max days",
			req:  leave.CreateLeaveRequestRequest{LeaveTypeID: f.annual.ID, StartDate: "2025-04-01", EndDate: "2025-05-15"},
			code: "MAX_DAYS_EXCEEDED",
		},
		{
			name: "bad date",
			req:  leave.CreateLeaveRequestRequest{LeaveTypeID: f.annual.ID, StartDate: "07/04/2025", EndDate: "2025-04-07"},
			code: "INVALID_DATE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.requests.Create(ctx, employee, tt.req, testNow)
			require.ErrorIs(t, err, leave.ErrValidation)
			e, ok := leave.AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, e.Code)
		})
	}
}

func TestRequestService_HalfDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.balance(t, f.annual, 1)
	period := "AFTERNOON"

	r, err := f.requests.Create(ctx, employee, leave.CreateLeaveRequestRequest{
		LeaveTypeID:   f.annual.ID,
		StartDate:     "2025-04-07",
		EndDate:       "2025-04-07",
		IsHalfDay:     true,
		HalfDayPeriod: &period,
	}, testNow)
	require.NoError(t, err)
	assert.True(t, r.TotalDays.Equal(days("0.5")))
	require.NotNil(t, r.HalfDayPeriod)
	assert.Equal(t, leave.HalfDayAfternoon, *r.HalfDayPeriod)

	second, err := f.requests.Create(ctx, employee, leave.CreateLeaveRequestRequest{
		LeaveTypeID: f.annual.ID,
		StartDate:   "2025-04-08",
		EndDate:     "2025-04-08",
		IsHalfDay:   true,
	}, testNow)
	require.NoError(t, err)

	for _, id := range []string{r.ID, second.ID} {
		_, err := f.requests.Submit(ctx, employee, id, testNow)
		require.NoError(t, err)
	}
	assertBalance(t, f.reload(t, b.ID), "1", "0", "1", "0")

	_, err = f.requests.Create(ctx, employee, leave.CreateLeaveRequestRequest{
		LeaveTypeID: f.emergency.ID,
		StartDate:   "2025-04-07",
		EndDate:     "2025-04-07",
		IsHalfDay:   true,
	}, testNow)
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestRequestService_UpdateRecomputesDays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.draft(t, f.annual, "2025-04-07", "2025-04-07")

	end := "2025-04-11"
	reason := "family trip"
	updated, err := f.requests.Update(ctx, employee, r.ID, leave.UpdateLeaveRequestRequest{EndDate: &end, Reason: &reason}, testNow)
	require.NoError(t, err)
	assert.True(t, updated.TotalDays.Equal(days("5")))
	assert.Equal(t, "family trip", *updated.Reason)

	tooLong := "2025-06-30"
	_, err = f.requests.Update(ctx, employee, r.ID, leave.UpdateLeaveRequestRequest{EndDate: &tooLong}, testNow)
	assert.ErrorIs(t, err, leave.ErrValidation)

	got, err := f.requests.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalDays.Equal(days("5")))
	require.Len(t, got.History, 2)
	assert.Equal(t, leave.ActionUpdate, got.History[0].Action)
}

func TestRequestService_UpdateDraftOfDeactivatedType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.draft(t, f.annual, "2025-04-07", "2025-04-08")

	_, err := f.types.ToggleActive(ctx, f.annual.ID)
	require.NoError(t, err)

	// Same type: the draft stays editable.
	end := "2025-04-10"
	updated, err := f.requests.Update(ctx, employee, r.ID, leave.UpdateLeaveRequestRequest{EndDate: &end}, testNow)
	require.NoError(t, err)
	assert.True(t, updated.TotalDays.Equal(days("4")))

	// Moving to an inactive type is still refused.
	other := f.draft(t, f.emergency, "2025-04-07", "2025-04-07")
	_, err = f.requests.Update(ctx, employee, other.ID, leave.UpdateLeaveRequestRequest{LeaveTypeID: &f.annual.ID}, testNow)
	assert.ErrorIs(t, err, leave.ErrValidation)

	// Moving to an active type works.
	shorter := "2025-04-08"
	updated, err = f.requests.Update(ctx, employee, r.ID, leave.UpdateLeaveRequestRequest{LeaveTypeID: &f.emergency.ID, EndDate: &shorter}, testNow)
	require.NoError(t, err)
	assert.Equal(t, f.emergency.ID, updated.LeaveTypeID)
}

func TestRequestService_RemoveDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.draft(t, f.annual, "2025-04-07", "2025-04-07")

	assert.ErrorIs(t, f.requests.Remove(ctx, stranger, r.ID), leave.ErrForbidden)
	require.NoError(t, f.requests.Remove(ctx, employee, r.ID))

	_, err := f.requests.Get(ctx, r.ID)
	assert.ErrorIs(t, err, leave.ErrNotFound)
}

func TestRequestService_ConcurrentSubmitsNeverOverdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.balance(t, f.annual, 10)

	const n = 8
	ids := make([]string, n)
	for i := range ids {
		ids[i] = f.draft(t, f.annual, "2025-08-04", "2025-08-06").ID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.requests.Submit(ctx, employee, id, testNow)
		}(i, id)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, leave.ErrInsufficientBalance):
			insufficient++
		}
	}
	assert.Equal(t, 3, ok)
	assert.Equal(t, n-3, insufficient)
	assertBalance(t, f.reload(t, b.ID), "10", "0", "9", "1")
}

func TestRequestService_RetriesConcurrencyErrors(t *testing.T) {
	t.Run("succeeds within budget", func(t *testing.T) {
		var flaky *flakyTx
		f := newFixtureWithTx(t, func(inner leave.TxManager) leave.TxManager {
			flaky = &flakyTx{inner: inner}
			return flaky
		})
		b := f.balance(t, f.annual, 10)
		r := f.draft(t, f.annual, "2025-04-07", "2025-04-07")

		flaky.calls, flaky.failures = 0, 2
		_, err := f.requests.Submit(context.Background(), employee, r.ID, testNow)
		require.NoError(t, err)
		assert.Equal(t, 3, flaky.calls)
		assert.Equal(t, 2, f.recorder.retries)
		assertBalance(t, f.reload(t, b.ID), "10", "0", "1", "9")
	})

	t.Run("surfaces after budget", func(t *testing.T) {
		var flaky *flakyTx
		f := newFixtureWithTx(t, func(inner leave.TxManager) leave.TxManager {
			flaky = &flakyTx{inner: inner}
			return flaky
		})
		b := f.balance(t, f.annual, 10)
		r := f.draft(t, f.annual, "2025-04-07", "2025-04-07")

		flaky.calls, flaky.failures = 0, 10
		_, err := f.requests.Submit(context.Background(), employee, r.ID, testNow)
		require.ErrorIs(t, err, leave.ErrConcurrency)
		assert.Equal(t, fastRetry.MaxRetries+1, flaky.calls)
		assertBalance(t, f.reload(t, b.ID), "10", "0", "0", "10")
		assert.Len(t, f.notifier.Events(), 0)
	})
}

func TestRequestService_ListMine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		f.draft(t, f.annual, "2025-04-07", "2025-04-07")
	}
	_, err := f.requests.Create(ctx, stranger, leave.CreateLeaveRequestRequest{
		LeaveTypeID: f.annual.ID,
		StartDate:   "2025-04-07",
		EndDate:     "2025-04-07",
	}, testNow)
	require.NoError(t, err)

	mine, total, err := f.requests.ListMine(ctx, employee, leave.RequestFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, mine, 2)

	all, total, err := f.requests.List(ctx, leave.RequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, all, 4)

	_, _, err = f.requests.List(ctx, leave.RequestFilter{Limit: 500})
	assert.Error(t, err)
}
