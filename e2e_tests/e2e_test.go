//go:build e2e

package e2etests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/fastprodman/campushub/pkg/money"
)

const (
	baseURL   = "http://localhost:8080"
	timeout   = 5 * time.Second
	waitReady = 20 * time.Second
)

var httpClient = &http.Client{Timeout: timeout}

func TestE2E_WalletFlow(t *testing.T) {
	waitUntilReady(t)

	before := getBalanceCents(t, "u2")

	t.Run("topup_increases_balance", func(t *testing.T) {
		code, body := send(t, http.MethodPost, "/user/u2/wallet/topup", `{"amount":"10.15"}`)
		if code != http.StatusOK {
			t.Fatalf("topup: want 200, got %d (%s)", code, body)
		}

		got := getBalanceCents(t, "u2")
		if got != before+1015 {
			t.Fatalf("after topup: want %d, got %d", before+1015, got)
		}
	})

	t.Run("topup_rejects_bad_precision", func(t *testing.T) {
		code, _ := send(t, http.MethodPost, "/user/u2/wallet/topup", `{"amount":"1.234"}`)
		if code != http.StatusBadRequest {
			t.Fatalf("bad precision: want 400, got %d", code)
		}
	})

	t.Run("order_debits_wallet", func(t *testing.T) {
		start := getBalanceCents(t, "u2")

		code, body := send(t, http.MethodPost, "/user/u2/orders", `{"items":[{"itemId":"c5","quantity":2}]}`)
		if code != http.StatusCreated {
			t.Fatalf("place order: want 201, got %d (%s)", code, body)
		}

		got := getBalanceCents(t, "u2")
		if got != start-700 {
			t.Fatalf("after order: want %d, got %d", start-700, got)
		}

		var order struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}

		err := json.Unmarshal([]byte(body), &order)
		if err != nil {
			t.Fatalf("decode order: %v", err)
		}

		code, body = send(t, http.MethodPost, "/orders/"+order.ID+"/cancel", "")
		if code != http.StatusOK {
			t.Fatalf("cancel: want 200, got %d (%s)", code, body)
		}
	})

	t.Run("insufficient_funds_conflict", func(t *testing.T) {
		start := getBalanceCents(t, "u2")

		code, _ := send(t, http.MethodPost, "/user/u2/orders", `{"items":[{"itemId":"c6","quantity":100}]}`)
		if code != http.StatusConflict {
			t.Fatalf("insufficient funds: want 409, got %d", code)
		}

		if got := getBalanceCents(t, "u2"); got != start {
			t.Fatalf("balance changed on failed order: want %d, got %d", start, got)
		}
	})
}

func TestE2E_Validation(t *testing.T) {
	waitUntilReady(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown_user", http.MethodGet, "/user/nobody/wallet", "", http.StatusNotFound},
		{"unknown_fine", http.MethodPost, "/user/u1/fines/missing/pay", "", http.StatusNotFound},
		{"empty_cart", http.MethodPost, "/user/u1/orders", `{"items":[]}`, http.StatusBadRequest},
		{"unknown_field", http.MethodPost, "/user/u1/wallet/topup", `{"amount":"1","extra":true}`, http.StatusBadRequest},
		{"menu", http.MethodGet, "/menu", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := send(t, tt.method, tt.path, tt.body)
			if code != tt.want {
				t.Fatalf("%s %s: want %d, got %d (%s)", tt.method, tt.path, tt.want, code, body)
			}
		})
	}
}

/* -------------------- helpers -------------------- */

func send(t *testing.T, method, path, body string) (int, string) {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, string(b)
}

func getBalanceCents(t *testing.T, userID string) int64 {
	t.Helper()

	code, body := send(t, http.MethodGet, fmt.Sprintf("/user/%s/wallet", userID), "")
	if code != http.StatusOK {
		t.Fatalf("GET wallet %s: want 200, got %d (%s)", userID, code, body)
	}

	var payload struct {
		UserID  string `json:"userId"`
		Balance string `json:"balance"`
	}

	err := json.Unmarshal([]byte(body), &payload)
	if err != nil {
		t.Fatalf("decode json: %v", err)
	}

	if payload.UserID != userID {
		t.Fatalf("userId mismatch: want %s, got %s", userID, payload.UserID)
	}

	cents, err := money.ParseCents(payload.Balance)
	if err != nil {
		t.Fatalf("invalid balance format %q: %v", payload.Balance, err)
	}

	return cents
}

// waitUntilReady polls /healthz and skips the suite if the API never comes up.
func waitUntilReady(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitReady)
	defer cancel()

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Skipf("service not ready at %s within %s", baseURL, waitReady)
		case <-tick.C:
			req, _ := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)

			resp, err := httpClient.Do(req)
			if err != nil {
				continue
			}

			_ = resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				return
			}
		}
	}
}
