package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/fastprodman/campushub/internal/models"
	"github.com/fastprodman/campushub/internal/repos/fines"
)

var _ fines.Store = finesView{}

type finesView struct {
	s  *Store
	tx *unit
}

func (v finesView) Get(_ context.Context, fineID string) (models.Fine, error) {
	if v.tx != nil {
		f, ok := v.tx.fines[fineID]
		if ok {
			return f, nil
		}
	}

	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	f, ok := v.s.fines[fineID]
	if !ok {
		return models.Fine{}, fines.ErrFineNotFound
	}

	return f, nil
}

func (v finesView) ListByUser(_ context.Context, userID string) ([]models.Fine, error) {
	return v.collect(func(f models.Fine) bool { return f.UserID == userID }), nil
}

func (v finesView) List(_ context.Context) ([]models.Fine, error) {
	return v.collect(func(models.Fine) bool { return true }), nil
}

func (v finesView) collect(keep func(models.Fine) bool) []models.Fine {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	out := make([]models.Fine, 0)
	for id, f := range v.s.fines {
		if v.tx != nil {
			_, staged := v.tx.fines[id]
			if staged {
				continue
			}
		}

		if keep(f) {
			out = append(out, f)
		}
	}

	if v.tx != nil {
		for _, f := range v.tx.fines {
			if keep(f) {
				out = append(out, f)
			}
		}
	}

	slices.SortFunc(out, func(a, b models.Fine) int {
		c := b.Date.Compare(a.Date)
		if c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})

	return out
}

func (v finesView) Insert(ctx context.Context, fine models.Fine) error {
	if v.tx == nil {
		panic("memory fines: write outside Atomic")
	}

	err := v.tx.owns(fine.UserID)
	if err != nil {
		return err
	}

	_, err = v.Get(ctx, fine.ID)
	if err == nil {
		return fines.ErrDuplicateFine
	}

	v.tx.fines[fine.ID] = fine

	return nil
}

func (v finesView) MarkPaid(ctx context.Context, fineID string) error {
	if v.tx == nil {
		panic("memory fines: write outside Atomic")
	}

	f, err := v.Get(ctx, fineID)
	if err != nil {
		return err
	}

	err = v.tx.owns(f.UserID)
	if err != nil {
		return err
	}

	if f.IsPaid {
		return fines.ErrFineAlreadyPaid
	}

	f.IsPaid = true
	v.tx.fines[fineID] = f

	return nil
}
