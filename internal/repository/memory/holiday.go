package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
)

type holidayRepository struct {
	s *Store
}

func (r *holidayRepository) Create(ctx context.Context, h leave.Holiday) (leave.Holiday, error) {
	defer r.s.lock(ctx)()

	if h.ID == "" {
		id, err := newID("holiday")
		if err != nil {
			return leave.Holiday{}, err
		}
		h.ID = id
	}
	now := time.Now()
	h.CreatedAt, h.UpdatedAt = now, now
	r.s.holidays[h.ID] = h
	return h, nil
}

func (r *holidayRepository) GetByID(ctx context.Context, id string) (leave.Holiday, error) {
	defer r.s.lock(ctx)()

	h, ok := r.s.holidays[id]
	if !ok {
		return leave.Holiday{}, leave.ErrHolidayNotFound(id)
	}
	return h, nil
}

func (r *holidayRepository) List(ctx context.Context, filter leave.HolidayFilter) ([]leave.Holiday, error) {
	return r.collect(ctx, 0, func(h leave.Holiday) bool {
		if filter.Year != nil && h.Year != *filter.Year {
			return false
		}
		if filter.Type != nil && h.Type != *filter.Type {
			return false
		}
		return true
	}), nil
}

func (r *holidayRepository) ListInRange(ctx context.Context, from, to time.Time) ([]leave.Holiday, error) {
	return r.collect(ctx, 0, func(h leave.Holiday) bool {
		return !h.Date.After(to) && !h.LastDay().Before(from)
	}), nil
}

func (r *holidayRepository) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]leave.Holiday, error) {
	return r.collect(ctx, limit, func(h leave.Holiday) bool {
		return !h.Date.Before(from)
	}), nil
}

func (r *holidayRepository) Update(ctx context.Context, h leave.Holiday) error {
	defer r.s.lock(ctx)()

	current, ok := r.s.holidays[h.ID]
	if !ok {
		return leave.ErrHolidayNotFound(h.ID)
	}
	h.CreatedAt = current.CreatedAt
	r.s.holidays[h.ID] = h
	return nil
}

func (r *holidayRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.holidays[id]; !ok {
		return leave.ErrHolidayNotFound(id)
	}
	delete(r.s.holidays, id)
	return nil
}

// collect returns matching holidays by date, then id. limit <= 0 means all.
func (r *holidayRepository) collect(ctx context.Context, limit int, match func(leave.Holiday) bool) []leave.Holiday {
	defer r.s.lock(ctx)()

	out := make([]leave.Holiday, 0)
	for _, h := range r.s.holidays {
		if match(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
