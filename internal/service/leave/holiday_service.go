package leave

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
)

type HolidayServiceImpl struct {
	tx leave.TxManager
	leave.HolidayRepository
}

func NewHolidayService(tx leave.TxManager, holidayRepository leave.HolidayRepository) leave.HolidayService {
	return &HolidayServiceImpl{tx: tx, HolidayRepository: holidayRepository}
}

// Create implements leave.HolidayService.
func (s *HolidayServiceImpl) Create(ctx context.Context, req leave.CreateHolidayRequest) (leave.Holiday, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return leave.Holiday{}, err
	}

	holiday := leave.Holiday{
		Name:        strings.TrimSpace(req.Name),
		LocalName:   req.LocalName,
		Date:        date,
		Type:        leave.HolidayPublic,
		IsRecurring: req.IsRecurring,
		Year:        date.Year(),
	}
	if req.EndDate != nil {
		end, err := parseDate("end_date", *req.EndDate)
		if err != nil {
			return leave.Holiday{}, err
		}
		holiday.EndDate = &end
	}
	if req.Type != nil {
		holiday.Type = leave.HolidayType(*req.Type)
	}
	if req.Year != nil {
		holiday.Year = *req.Year
	}
	if err := checkHolidayDates(holiday); err != nil {
		return leave.Holiday{}, err
	}

	return s.HolidayRepository.Create(ctx, holiday)
}

// Update implements leave.HolidayService. Moving the date without an
// explicit year moves the year along with it.
func (s *HolidayServiceImpl) Update(ctx context.Context, id string, req leave.UpdateHolidayRequest) (leave.Holiday, error) {
	holiday, err := s.HolidayRepository.GetByID(ctx, id)
	if err != nil {
		return leave.Holiday{}, err
	}

	if req.Name != nil {
		holiday.Name = strings.TrimSpace(*req.Name)
	}
	if req.LocalName != nil {
		holiday.LocalName = req.LocalName
	}
	if req.Date != nil {
		date, err := parseDate("date", *req.Date)
		if err != nil {
			return leave.Holiday{}, err
		}
		holiday.Date = date
		holiday.Year = date.Year()
	}
	if req.EndDate != nil {
		end, err := parseDate("end_date", *req.EndDate)
		if err != nil {
			return leave.Holiday{}, err
		}
		holiday.EndDate = &end
	}
	if req.Type != nil {
		holiday.Type = leave.HolidayType(*req.Type)
	}
	if req.IsRecurring != nil {
		holiday.IsRecurring = *req.IsRecurring
	}
	if req.Year != nil {
		holiday.Year = *req.Year
	}
	if err := checkHolidayDates(holiday); err != nil {
		return leave.Holiday{}, err
	}

	holiday.UpdatedAt = time.Now()
	if err := s.HolidayRepository.Update(ctx, holiday); err != nil {
		return leave.Holiday{}, err
	}
	return holiday, nil
}

// Get implements leave.HolidayService.
func (s *HolidayServiceImpl) Get(ctx context.Context, id string) (leave.Holiday, error) {
	return s.HolidayRepository.GetByID(ctx, id)
}

// List implements leave.HolidayService.
func (s *HolidayServiceImpl) List(ctx context.Context, filter leave.HolidayFilter) ([]leave.Holiday, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.HolidayRepository.List(ctx, filter)
}

// ListInRange implements leave.HolidayService.
func (s *HolidayServiceImpl) ListInRange(ctx context.Context, startDate, endDate string) ([]leave.Holiday, error) {
	from, err := parseDate("start_date", startDate)
	if err != nil {
		return nil, err
	}
	to, err := parseDate("end_date", endDate)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, leave.ErrInvalidDateRange(startDate, endDate)
	}
	return s.HolidayRepository.ListInRange(ctx, from, to)
}

// ListUpcoming implements leave.HolidayService.
func (s *HolidayServiceImpl) ListUpcoming(ctx context.Context, limit int, now time.Time) ([]leave.Holiday, error) {
	if limit <= 0 {
		limit = leave.DefaultUpcomingHolidays
	}
	if limit > leave.MaxUpcomingHolidays {
		limit = leave.MaxUpcomingHolidays
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.HolidayRepository.ListUpcoming(ctx, today, limit)
}

// Delete implements leave.HolidayService.
func (s *HolidayServiceImpl) Delete(ctx context.Context, id string) error {
	return s.HolidayRepository.Delete(ctx, id)
}

// CloneYear implements leave.HolidayService. Recurring holidays of fromYear
// are copied to toYear with their dates shifted by the year difference.
// Entries already present in toYear (same name and date) are skipped.
func (s *HolidayServiceImpl) CloneYear(ctx context.Context, fromYear, toYear int) ([]leave.Holiday, error) {
	if fromYear == toYear {
		return nil, leave.ErrInvalidCloneYears(fromYear, toYear)
	}

	created := make([]leave.Holiday, 0)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created = created[:0]

		source, err := s.HolidayRepository.List(ctx, leave.HolidayFilter{Year: &fromYear})
		if err != nil {
			return fmt.Errorf("failed to list holidays of %d: %w", fromYear, err)
		}
		target, err := s.HolidayRepository.List(ctx, leave.HolidayFilter{Year: &toYear})
		if err != nil {
			return fmt.Errorf("failed to list holidays of %d: %w", toYear, err)
		}

		existing := make(map[string]struct{}, len(target))
		for _, h := range target {
			existing[holidayKey(h.Name, h.Date)] = struct{}{}
		}

		shift := toYear - fromYear
		for _, h := range source {
			if !h.IsRecurring {
				continue
			}
			date := shiftYears(h.Date, shift)
			if _, ok := existing[holidayKey(h.Name, date)]; ok {
				continue
			}

			clone := leave.Holiday{
				Name:        h.Name,
				LocalName:   h.LocalName,
				Date:        date,
				Type:        h.Type,
				IsRecurring: true,
				Year:        toYear,
			}
			if h.EndDate != nil {
				end := shiftYears(*h.EndDate, shift)
				clone.EndDate = &end
			}

			c, err := s.HolidayRepository.Create(ctx, clone)
			if err != nil {
				return fmt.Errorf("failed to clone holiday %s: %w", h.ID, err)
			}
			created = append(created, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Cloned holidays", "from_year", fromYear, "to_year", toYear, "count", len(created))
	return created, nil
}

func checkHolidayDates(h leave.Holiday) error {
	if h.EndDate != nil && h.EndDate.Before(h.Date) {
		return leave.ErrInvalidDateRange(h.Date.Format(leave.DateLayout), h.EndDate.Format(leave.DateLayout))
	}
	return nil
}

// shiftYears moves d by n years. Feb 29 lands on Mar 1 in a common year.
func shiftYears(d time.Time, n int) time.Time {
	return time.Date(d.Year()+n, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func holidayKey(name string, date time.Time) string {
	return name + "|" + date.Format(leave.DateLayout)
}
