package models

import "time"

type TxType string

const (
	TxCredit TxType = "credit"
	TxDebit  TxType = "debit"
)

type Wallet struct {
	UserID       string
	BalanceMinor int64 // cents
}

// WalletTransaction is an append-only ledger entry. AmountMinor is always positive;
// Type carries the direction.
type WalletTransaction struct {
	ID          string
	UserID      string
	AmountMinor int64 // cents
	Type        TxType
	Description string
	Date        time.Time
}

// Signed returns the entry's effect on the wallet balance.
func (t WalletTransaction) Signed() int64 {
	if t.Type == TxDebit {
		return -t.AmountMinor
	}

	return t.AmountMinor
}

type Fine struct {
	ID            string
	UserID        string
	AmountMinor   int64 // cents
	Reason        string
	TransactionID string // library transaction that caused the fine, may be empty
	IsPaid        bool
	Date          time.Time
}
