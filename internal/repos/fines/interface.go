package fines

import (
	"context"
	"errors"

	"github.com/fastprodman/campushub/internal/models"
)

var (
	ErrFineNotFound    = errors.New("fine not found")
	ErrFineAlreadyPaid = errors.New("fine already paid")
	ErrDuplicateFine   = errors.New("duplicate fine")
)

type Reader interface {
	Get(ctx context.Context, fineID string) (models.Fine, error)
	ListByUser(ctx context.Context, userID string) ([]models.Fine, error)
	List(ctx context.Context) ([]models.Fine, error)
}

type Writer interface {
	Insert(ctx context.Context, fine models.Fine) error
	// MarkPaid flips IsPaid once; a second call fails with ErrFineAlreadyPaid.
	MarkPaid(ctx context.Context, fineID string) error
}

type Store interface {
	Reader
	Writer
}
