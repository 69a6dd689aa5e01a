package models

import "testing"

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderPending, OrderPreparing, true},
		{OrderPending, OrderReady, false},
		{OrderPreparing, OrderReady, true},
		{OrderPreparing, OrderPending, false},
		{OrderReady, OrderPreparing, false},
		{OrderPending, OrderCompleted, true},
		{OrderPreparing, OrderCancelled, true},
		{OrderReady, OrderCompleted, true},
		{OrderCompleted, OrderCancelled, false},
		{OrderCancelled, OrderCompleted, false},
		{OrderCancelled, OrderReady, false},
		{OrderPending, OrderStatus("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			t.Parallel()

			got := tt.from.CanTransitionTo(tt.to)
			if got != tt.want {
				t.Fatalf("%s -> %s: want %v, got %v", tt.from, tt.to, tt.want, got)
			}
		})
	}
}

func TestWalletTransaction_Signed(t *testing.T) {
	t.Parallel()

	credit := WalletTransaction{AmountMinor: 500, Type: TxCredit}
	debit := WalletTransaction{AmountMinor: 899, Type: TxDebit}

	if credit.Signed() != 500 {
		t.Fatalf("credit signed: want 500, got %d", credit.Signed())
	}

	if debit.Signed() != -899 {
		t.Fatalf("debit signed: want -899, got %d", debit.Signed())
	}
}
