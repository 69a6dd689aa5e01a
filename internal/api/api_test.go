package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/campushub/internal/config"
	"github.com/fastprodman/campushub/internal/infra/logging"
	"github.com/fastprodman/campushub/internal/models"
	catmemory "github.com/fastprodman/campushub/internal/repos/catalog/memory"
	"github.com/fastprodman/campushub/internal/repos/memory"
	"github.com/fastprodman/campushub/internal/repos/seed"
	"github.com/fastprodman/campushub/internal/services/ordering"
	"github.com/fastprodman/campushub/internal/services/payments"
	"github.com/fastprodman/campushub/internal/services/query"
	"github.com/fastprodman/campushub/internal/services/studyguide"
)

var oct20 = time.Date(2023, 10, 20, 18, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*httptest.Server, *Notifier) {
	t.Helper()

	data := seed.Default()
	store := memory.NewSeeded(data)
	cat := catmemory.New(data)
	notifier := NewNotifier()

	engine := ordering.New(store, cat,
		config.OrderingConfig{PrepareDelay: time.Hour, ReadyDelay: time.Hour},
		ordering.WithStatusListener(notifier),
		ordering.WithTokenSource(func() int { return 417 }),
		ordering.WithLogger(logging.Discard()),
	)

	srv := httptest.NewServer(NewRouter(Services{
		Orders:     engine,
		Payments:   payments.New(store),
		Query:      query.New(cat, store, query.WithClock(func() time.Time { return oct20 })),
		StudyGuide: studyguide.Placeholder{},
		Notifier:   notifier,
	}))

	t.Cleanup(func() {
		notifier.Close()
		srv.Close()
		_ = engine.Close(context.Background())
	})

	return srv, notifier
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, map[string]any) {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(t.Context(), method, srv.URL+path, rdr)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	//nolint:errcheck
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}

	return resp.StatusCode, out
}

func doList(t *testing.T, srv *httptest.Server, path string) []map[string]any {
	t.Helper()

	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	//nolint:errcheck
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return out
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	code, body := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestErrorStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		want    int
		wantErr string
	}{
		{"unknown_user", http.MethodGet, "/user/u9/wallet", "", http.StatusNotFound, "user not found"},
		{"no_wallet", http.MethodGet, "/user/a1/wallet", "", http.StatusNotFound, "wallet not found"},
		{"bad_amount", http.MethodPost, "/user/u1/wallet/topup", `{"amount":"1.234"}`, http.StatusBadRequest, ""},
		{"wrapping_amount", http.MethodPost, "/user/u1/wallet/topup", `{"amount":"184467440737095517"}`, http.StatusBadRequest, ""},
		{"zero_amount", http.MethodPost, "/user/u1/wallet/topup", `{"amount":"0"}`, http.StatusBadRequest, ""},
		{"unknown_field", http.MethodPost, "/user/u1/wallet/topup", `{"amount":"1","x":1}`, http.StatusBadRequest, "invalid JSON"},
		{"empty_body", http.MethodPost, "/user/u1/wallet/topup", "", http.StatusBadRequest, "empty body"},
		{"unknown_fine", http.MethodPost, "/user/u1/fines/f9/pay", "", http.StatusNotFound, "fine not found"},
		{"foreign_fine", http.MethodPost, "/user/u2/fines/f1/pay", "", http.StatusNotFound, "fine not found"},
		{"empty_cart", http.MethodPost, "/user/u1/orders", `{"items":[]}`, http.StatusBadRequest, "cart is empty"},
		{"zero_quantity", http.MethodPost, "/user/u1/orders", `{"items":[{"itemId":"c1","quantity":0}]}`, http.StatusBadRequest, "quantity must be between 1 and 100"},
		{"wrapping_quantity", http.MethodPost, "/user/u1/orders", `{"items":[{"itemId":"c3","quantity":4611686018427387905}]}`, http.StatusBadRequest, "quantity must be between 1 and 100"},
		{"split_lines_over_limit", http.MethodPost, "/user/u1/orders", `{"items":[{"itemId":"c3","quantity":60},{"itemId":"c3","quantity":60}]}`, http.StatusBadRequest, "quantity must be between 1 and 100"},
		{"unknown_item", http.MethodPost, "/user/u1/orders", `{"items":[{"itemId":"zz","quantity":1}]}`, http.StatusNotFound, "menu item not found"},
		{"insufficient_funds", http.MethodPost, "/user/u2/orders", `{"items":[{"itemId":"c6","quantity":14}]}`, http.StatusConflict, "insufficient funds"},
		{"unknown_order", http.MethodPost, "/orders/o9/complete", "", http.StatusNotFound, "order not found"},
		{"finished_order", http.MethodPost, "/orders/o1/cancel", "", http.StatusConflict, "invalid order status transition"},
		{"empty_study_text", http.MethodPost, "/study-guide", `{"text":"  "}`, http.StatusBadRequest, "text is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, _ := newTestServer(t)

			code, body := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, code)

			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, body["error"])
			}
		})
	}
}

func TestTopUpFlow(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	code, body := do(t, srv, http.MethodGet, "/user/u1/wallet", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "75.50", body["balance"])

	code, body = do(t, srv, http.MethodPost, "/user/u1/wallet/topup", `{"amount":"20.25"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "95.75", body["balance"])

	hist := doList(t, srv, "/user/u1/wallet/transactions")
	require.Len(t, hist, 4)
	assert.Equal(t, "20.25", hist[0]["amount"])
	assert.Equal(t, string(models.TxCredit), hist[0]["type"])
	assert.Equal(t, "Wallet Top-Up", hist[0]["description"])
}

func TestPayFineTwice(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	code, body := do(t, srv, http.MethodPost, "/user/u1/fines/f1/pay", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["isPaid"])

	code, body = do(t, srv, http.MethodPost, "/user/u1/fines/f1/pay", "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "fine already paid", body["error"])

	_, body = do(t, srv, http.MethodGet, "/user/u1/wallet", "")
	assert.Equal(t, "70.50", body["balance"])
}

func TestPlaceAndCompleteOrder(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	code, body := do(t, srv, http.MethodPost, "/user/u1/orders",
		`{"items":[{"itemId":"c1","quantity":1},{"itemId":"c3","quantity":2}]}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "11.99", body["total"])
	assert.Equal(t, string(models.OrderPending), body["status"])
	assert.InDelta(t, 417, body["token"], 0)
	assert.Equal(t, "https://api.qrserver.com/v1/create-qr-code/?data=417&size=150x150", body["pickupCodeUrl"])

	id, ok := body["id"].(string)
	require.True(t, ok)

	_, wallet := do(t, srv, http.MethodGet, "/user/u1/wallet", "")
	assert.Equal(t, "63.51", wallet["balance"])

	list := doList(t, srv, "/user/u1/orders")
	require.Len(t, list, 3)
	assert.Equal(t, id, list[0]["id"])

	code, body = do(t, srv, http.MethodPost, "/orders/"+id+"/complete", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, string(models.OrderCompleted), body["status"])

	code, _ = do(t, srv, http.MethodPost, "/orders/"+id+"/cancel", "")
	assert.Equal(t, http.StatusConflict, code)
}

func TestReadEndpoints(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	code, profile := do(t, srv, http.MethodGet, "/user/u1/profile", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "u1", profile["id"])

	menu := doList(t, srv, "/menu")
	require.Len(t, menu, 6)
	assert.Equal(t, "5.99", menu[0]["price"])

	books := doList(t, srv, "/books?q=clean")
	require.Len(t, books, 1)
	assert.Equal(t, "b3", books[0]["id"])

	assert.Len(t, doList(t, srv, "/user/u1/books"), 2)
	assert.Len(t, doList(t, srv, "/user/u1/fines"), 1)

	code, dash := do(t, srv, http.MethodGet, "/user/u1/dashboard", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "5.00", dash["unpaidFinesTotal"])
	assert.NotNil(t, dash["wallet"])

	code, stats := do(t, srv, http.MethodGet, "/admin/stats", "")
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 2, stats["totalStudents"], 0)
	assert.Equal(t, "23.99", stats["canteenRevenue"])
	assert.Len(t, stats["libraryActivity"], 7)
}

func TestStudyGuide(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	code, body := do(t, srv, http.MethodPost, "/study-guide", `{"text":"photosynthesis"}`)
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["summary"])
	assert.Len(t, body["keyPoints"], 3)
}

func TestOrderUpdatesOverWebsocket(t *testing.T) {
	t.Parallel()

	srv, notifier := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/user/u1/orders/ws"

	conn, resp, err := websocket.DefaultDialer.DialContext(t.Context(), wsURL, nil)
	require.NoError(t, err)
	//nolint:errcheck
	defer resp.Body.Close()
	//nolint:errcheck
	defer conn.Close()

	require.Eventually(t, func() bool { return notifier.Subscribers("u1") == 1 }, time.Second, 5*time.Millisecond)

	code, placed := do(t, srv, http.MethodPost, "/user/u1/orders", `{"items":[{"itemId":"c5","quantity":1}]}`)
	require.Equal(t, http.StatusCreated, code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var update map[string]any
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, placed["id"], update["id"])
	assert.Equal(t, string(models.OrderPending), update["status"])

	code, _ = do(t, srv, http.MethodPost, "/orders/"+placed["id"].(string)+"/cancel", "")
	require.Equal(t, http.StatusOK, code)

	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, string(models.OrderCancelled), update["status"])

	code, _ = do(t, srv, http.MethodPost, "/user/u2/orders", `{"items":[{"itemId":"c5","quantity":1}]}`)
	require.Equal(t, http.StatusCreated, code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))

	err = conn.ReadJSON(&update)
	require.Error(t, err, "other users' orders must not be delivered")
}

func TestNotifierCloseRejectsSubscribers(t *testing.T) {
	t.Parallel()

	srv, notifier := newTestServer(t)
	notifier.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/user/u1/orders/ws"

	conn, resp, err := websocket.DefaultDialer.DialContext(t.Context(), wsURL, nil)
	require.NoError(t, err)
	//nolint:errcheck
	defer resp.Body.Close()
	//nolint:errcheck
	defer conn.Close()

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
	assert.Zero(t, notifier.Subscribers("u1"))
}
