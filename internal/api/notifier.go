package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fastprodman/campushub/internal/infra/logging"
	"github.com/fastprodman/campushub/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Notifier pushes order status changes to websocket subscribers of the
// order's owner. Slow subscribers miss updates instead of blocking the
// ordering engine.
type Notifier struct {
	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
	log    *slog.Logger
}

func NewNotifier() *Notifier {
	return &Notifier{
		subs: make(map[string]map[*subscriber]struct{}),
		log:  logging.Component("notifier"),
	}
}

// OrderStatusChanged implements ordering.StatusListener.
func (n *Notifier) OrderStatusChanged(order models.CanteenOrder) {
	msg, err := json.Marshal(toOrder(order))
	if err != nil {
		n.log.Error("encode order update", "order_id", order.ID, "error", err)
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	for s := range n.subs[order.UserID] {
		select {
		case s.send <- msg:
		default:
			n.log.Warn("dropping order update for slow subscriber", "user_id", order.UserID, "order_id", order.ID)
		}
	}
}

// Subscribers reports how many connections userID currently holds.
func (n *Notifier) Subscribers(userID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.subs[userID])
}

// Serve upgrades the request and streams userID's order updates until the
// client disconnects or the notifier is closed.
func (n *Notifier) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response.
		n.log.Debug("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	s := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}

	if !n.subscribe(userID, s) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()

		return
	}

	n.log.Debug("subscriber connected", "user_id", userID)

	go s.writePump()

	s.readPump()
	n.unsubscribe(userID, s)

	n.log.Debug("subscriber disconnected", "user_id", userID)
}

// Close disconnects every subscriber and rejects new ones.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true

	for userID, set := range n.subs {
		for s := range set {
			close(s.send)
		}

		delete(n.subs, userID)
	}
}

func (n *Notifier) subscribe(userID string, s *subscriber) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return false
	}

	set, ok := n.subs[userID]
	if !ok {
		set = make(map[*subscriber]struct{})
		n.subs[userID] = set
	}

	set[s] = struct{}{}

	return true
}

func (n *Notifier) unsubscribe(userID string, s *subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()

	set := n.subs[userID]
	if _, ok := set[s]; !ok {
		// Already removed by Close.
		return
	}

	delete(set, s)
	close(s.send)

	if len(set) == 0 {
		delete(n.subs, userID)
	}
}

// readPump discards client frames and returns once the connection fails.
func (s *subscriber) readPump() {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, _, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
	}
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			err := s.conn.WriteMessage(websocket.TextMessage, msg)
			if err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))

			err := s.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				return
			}
		}
	}
}
