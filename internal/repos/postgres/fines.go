package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/fastprodman/campushub/internal/infra/pgutils"
	"github.com/fastprodman/campushub/internal/models"
	"github.com/fastprodman/campushub/internal/repos/fines"
)

var _ fines.Store = (*finesRepo)(nil)

type finesRepo struct {
	s      *Store
	q      sqlx.ExtContext
	userID string
}

type fineRow struct {
	ID                   string    `db:"id"`
	UserID               string    `db:"user_id"`
	Amount               int64     `db:"amount"`
	Reason               string    `db:"reason"`
	LibraryTransactionID string    `db:"library_transaction_id"`
	IsPaid               bool      `db:"is_paid"`
	FinedAt              time.Time `db:"fined_at"`
}

func (r fineRow) model() models.Fine {
	return models.Fine{
		ID:            r.ID,
		UserID:        r.UserID,
		AmountMinor:   r.Amount,
		Reason:        r.Reason,
		TransactionID: r.LibraryTransactionID,
		IsPaid:        r.IsPaid,
		Date:          r.FinedAt,
	}
}

func (r *finesRepo) Get(ctx context.Context, fineID string) (models.Fine, error) {
	list, err := r.selectFines(ctx, goqu.C(colID).Eq(fineID))
	if err != nil {
		return models.Fine{}, err
	}

	if len(list) == 0 {
		return models.Fine{}, fines.ErrFineNotFound
	}

	return list[0], nil
}

func (r *finesRepo) ListByUser(ctx context.Context, userID string) ([]models.Fine, error) {
	return r.selectFines(ctx, goqu.C(colUserID).Eq(userID))
}

func (r *finesRepo) List(ctx context.Context) ([]models.Fine, error) {
	return r.selectFines(ctx)
}

func (r *finesRepo) selectFines(ctx context.Context, where ...goqu.Expression) ([]models.Fine, error) {
	query, args, err := build(r.s.sql.
		From(tableFines).
		Select(colID, colUserID, "amount", "reason", "library_transaction_id", "is_paid", colFinedAt).
		Where(where...).
		Order(goqu.C(colFinedAt).Desc(), goqu.C(colID).Asc()).
		Prepared(true))
	if err != nil {
		return nil, err
	}

	var rows []fineRow

	err = sqlx.SelectContext(ctx, r.q, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select fines: %w", err)
	}

	out := make([]models.Fine, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}

	return out, nil
}

func (r *finesRepo) Insert(ctx context.Context, fine models.Fine) error {
	err := owns(r.userID, fine.UserID)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO fines (id, user_id, amount, reason, library_transaction_id, is_paid, fined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, fine.ID, fine.UserID, fine.AmountMinor, fine.Reason, fine.TransactionID, fine.IsPaid, fine.Date.UTC())
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return fines.ErrDuplicateFine
		}

		return fmt.Errorf("insert fine: %w", err)
	}

	return nil
}

func (r *finesRepo) MarkPaid(ctx context.Context, fineID string) error {
	fine, err := r.Get(ctx, fineID)
	if err != nil {
		return err
	}

	err = owns(r.userID, fine.UserID)
	if err != nil {
		return err
	}

	res, err := r.q.ExecContext(ctx, `
		UPDATE fines
		SET is_paid = TRUE
		WHERE id = $1
		  AND NOT is_paid
	`, fineID)
	if err != nil {
		return fmt.Errorf("mark fine paid: %w", err)
	}

	return expectOneRow(res, fines.ErrFineAlreadyPaid)
}
