package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/fixtures"
)

type TypeServiceImpl struct {
	leave.LeaveTypeRepository
}

func NewTypeService(leaveTypeRepository leave.LeaveTypeRepository) leave.TypeService {
	return &TypeServiceImpl{LeaveTypeRepository: leaveTypeRepository}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create implements leave.TypeService.
func (s *TypeServiceImpl) Create(ctx context.Context, req leave.CreateLeaveTypeRequest) (leave.LeaveType, error) {
	leaveType := leave.LeaveType{
		Code:               normalizeCode(req.Code),
		Name:               strings.TrimSpace(req.Name),
		Description:        req.Description,
		IsPaid:             boolOr(req.IsPaid, true),
		RequiresApproval:   boolOr(req.RequiresApproval, true),
		RequiresAttachment: boolOr(req.RequiresAttachment, false),
		AllowHalfDay:       boolOr(req.AllowHalfDay, false),
		IsActive:           boolOr(req.IsActive, true),
		MaxDaysPerRequest:  req.MaxDaysPerRequest,
		MinDaysNotice:      req.MinDaysNotice,
		DefaultDays:        req.DefaultDays,
	}

	created, err := s.LeaveTypeRepository.Create(ctx, leaveType)
	if err != nil {
		return leave.LeaveType{}, err
	}
	return created, nil
}

// Update implements leave.TypeService.
func (s *TypeServiceImpl) Update(ctx context.Context, id string, req leave.UpdateLeaveTypeRequest) (leave.LeaveType, error) {
	leaveType, err := s.LeaveTypeRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveType{}, err
	}

	if req.Code != nil {
		leaveType.Code = normalizeCode(*req.Code)
	}
	if req.Name != nil {
		leaveType.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		leaveType.Description = req.Description
	}
	leaveType.IsPaid = boolOr(req.IsPaid, leaveType.IsPaid)
	leaveType.RequiresApproval = boolOr(req.RequiresApproval, leaveType.RequiresApproval)
	leaveType.RequiresAttachment = boolOr(req.RequiresAttachment, leaveType.RequiresAttachment)
	leaveType.AllowHalfDay = boolOr(req.AllowHalfDay, leaveType.AllowHalfDay)
	leaveType.IsActive = boolOr(req.IsActive, leaveType.IsActive)
	if req.MaxDaysPerRequest != nil {
		leaveType.MaxDaysPerRequest = req.MaxDaysPerRequest
	}
	if req.MinDaysNotice != nil {
		leaveType.MinDaysNotice = req.MinDaysNotice
	}
	if req.DefaultDays != nil {
		leaveType.DefaultDays = *req.DefaultDays
	}
	leaveType.UpdatedAt = time.Now()

	if err := s.LeaveTypeRepository.Update(ctx, leaveType); err != nil {
		return leave.LeaveType{}, err
	}
	return leaveType, nil
}

// Get implements leave.TypeService.
func (s *TypeServiceImpl) Get(ctx context.Context, id string) (leave.LeaveType, error) {
	return s.LeaveTypeRepository.GetByID(ctx, id)
}

// GetByCode implements leave.TypeService.
func (s *TypeServiceImpl) GetByCode(ctx context.Context, code string) (leave.LeaveType, error) {
	return s.LeaveTypeRepository.GetByCode(ctx, normalizeCode(code))
}

// List implements leave.TypeService.
func (s *TypeServiceImpl) List(ctx context.Context, includeInactive bool) ([]leave.LeaveType, error) {
	return s.LeaveTypeRepository.List(ctx, includeInactive)
}

// ToggleActive implements leave.TypeService.
func (s *TypeServiceImpl) ToggleActive(ctx context.Context, id string) (leave.LeaveType, error) {
	leaveType, err := s.LeaveTypeRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveType{}, err
	}

	leaveType.IsActive = !leaveType.IsActive
	leaveType.UpdatedAt = time.Now()
	if err := s.LeaveTypeRepository.Update(ctx, leaveType); err != nil {
		return leave.LeaveType{}, err
	}
	return leaveType, nil
}

// Delete implements leave.TypeService. Types referenced by requests or
// balances can only be deactivated.
func (s *TypeServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.LeaveTypeRepository.GetByID(ctx, id); err != nil {
		return err
	}

	refs, err := s.LeaveTypeRepository.CountReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count leave type references: %w", err)
	}
	if refs > 0 {
		return leave.ErrLeaveTypeInUse(id)
	}
	return s.LeaveTypeRepository.Delete(ctx, id)
}

// SeedDefaults implements leave.TypeService. Codes that already exist are
// skipped, so repeated calls create nothing.
func (s *TypeServiceImpl) SeedDefaults(ctx context.Context) ([]leave.LeaveType, error) {
	created := make([]leave.LeaveType, 0)
	for _, leaveType := range fixtures.GetDefaultLeaveTypes() {
		_, err := s.LeaveTypeRepository.GetByCode(ctx, leaveType.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, leave.ErrNotFound) {
			return nil, fmt.Errorf("failed to get leave type %s: %w", leaveType.Code, err)
		}

		lt, err := s.LeaveTypeRepository.Create(ctx, leaveType)
		if err != nil {
			if errors.Is(err, leave.ErrConflict) {
				continue
			}
			return nil, fmt.Errorf("failed to seed leave type %s: %w", leaveType.Code, err)
		}
		slog.Info("Seeded leave type", "code", lt.Code, "default_days", lt.DefaultDays.String())
		created = append(created, lt)
	}
	return created, nil
}
