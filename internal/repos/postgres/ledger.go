package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/fastprodman/campushub/internal/models"
	"github.com/fastprodman/campushub/internal/repos/ledger"
)

var _ ledger.Store = (*ledgerRepo)(nil)

type ledgerRepo struct {
	s      *Store
	q      sqlx.ExtContext
	userID string
}

type walletRow struct {
	UserID  string `db:"user_id"`
	Balance int64  `db:"balance"`
}

type walletTxRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	Amount      int64     `db:"amount"`
	Type        string    `db:"type"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r walletTxRow) model() models.WalletTransaction {
	return models.WalletTransaction{
		ID:          r.ID,
		UserID:      r.UserID,
		AmountMinor: r.Amount,
		Type:        models.TxType(r.Type),
		Description: r.Description,
		Date:        r.CreatedAt,
	}
}

func (r *ledgerRepo) Wallet(ctx context.Context, userID string) (models.Wallet, error) {
	query, args, err := build(r.s.sql.
		From(tableWallets).
		Select(colUserID, "balance").
		Where(goqu.C(colUserID).Eq(userID)).
		Prepared(true))
	if err != nil {
		return models.Wallet{}, err
	}

	var row walletRow

	err = sqlx.GetContext(ctx, r.q, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Wallet{}, ledger.ErrWalletNotFound
		}

		return models.Wallet{}, fmt.Errorf("get wallet: %w", err)
	}

	return models.Wallet{UserID: row.UserID, BalanceMinor: row.Balance}, nil
}

func (r *ledgerRepo) History(ctx context.Context, userID string) ([]models.WalletTransaction, error) {
	_, err := r.Wallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	query, args, err := build(r.s.sql.
		From(tableWalletTxns).
		Select(colID, colUserID, "amount", "type", "description", colCreatedAt).
		Where(goqu.C(colUserID).Eq(userID)).
		Order(goqu.C(colCreatedAt).Desc(), goqu.C(colSeq).Desc()).
		Prepared(true))
	if err != nil {
		return nil, err
	}

	var rows []walletTxRow

	err = sqlx.SelectContext(ctx, r.q, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select wallet transactions: %w", err)
	}

	out := make([]models.WalletTransaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}

	return out, nil
}

func (r *ledgerRepo) Credit(ctx context.Context, userID string, amount int64, description string) (models.WalletTransaction, error) {
	err := owns(r.userID, userID)
	if err != nil {
		return models.WalletTransaction{}, err
	}

	if amount <= 0 {
		return models.WalletTransaction{}, ledger.ErrInvalidAmount
	}

	res, err := r.q.ExecContext(ctx, `
		UPDATE wallets
		SET balance = balance + $2, updated_at = now()
		WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return models.WalletTransaction{}, fmt.Errorf("increase balance: %w", err)
	}

	err = expectOneRow(res, ledger.ErrWalletNotFound)
	if err != nil {
		return models.WalletTransaction{}, err
	}

	return r.append(ctx, userID, amount, models.TxCredit, description)
}

func (r *ledgerRepo) Debit(ctx context.Context, userID string, amount int64, description string) (models.WalletTransaction, error) {
	err := owns(r.userID, userID)
	if err != nil {
		return models.WalletTransaction{}, err
	}

	if amount <= 0 {
		return models.WalletTransaction{}, ledger.ErrInvalidAmount
	}

	res, err := r.q.ExecContext(ctx, `
		UPDATE wallets
		SET balance = balance - $2, updated_at = now()
		WHERE user_id = $1
		  AND balance >= $2
	`, userID, amount)
	if err != nil {
		return models.WalletTransaction{}, fmt.Errorf("decrease balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return models.WalletTransaction{}, fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		// Either the wallet is missing or the guard failed.
		_, werr := r.Wallet(ctx, userID)
		if werr != nil {
			return models.WalletTransaction{}, werr
		}

		return models.WalletTransaction{}, ledger.ErrInsufficientFunds
	}

	return r.append(ctx, userID, amount, models.TxDebit, description)
}

func (r *ledgerRepo) append(ctx context.Context, userID string, amount int64, typ models.TxType, description string) (models.WalletTransaction, error) {
	entry := models.WalletTransaction{
		ID:          r.s.newID(),
		UserID:      userID,
		AmountMinor: amount,
		Type:        typ,
		Description: description,
		Date:        r.s.now().UTC(),
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO wallet_transactions (id, user_id, amount, type, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ID, entry.UserID, entry.AmountMinor, string(entry.Type), entry.Description, entry.Date)
	if err != nil {
		return models.WalletTransaction{}, fmt.Errorf("insert wallet transaction: %w", err)
	}

	return entry, nil
}

func expectOneRow(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return notFound
	}

	return nil
}
