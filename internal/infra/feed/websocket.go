package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"som_trader/internal/domain"
	"som_trader/internal/event"
	"som_trader/internal/infra"
)

var _ domain.BarSource = (*Worker)(nil)

const (
	maxRetries       = 10
	handshakeTimeout = 10 * time.Second
	readTimeout      = 60 * time.Second
)

// barMessage is the wire format of one bar sample from the feed server.
type barMessage struct {
	Type   string  `json:"type"` // "bar"
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
	Ts     int64   `json:"ts"` // Unix milliseconds
}

// Worker maintains the WebSocket connection to the bar feed. It assigns
// sequence numbers at ingress and pushes pooled events into the inbox.
type Worker struct {
	url       string
	token     string
	symbol    string
	inbox     chan<- event.Event
	seq       *uint64
	conn      *websocket.Conn
	mu        sync.RWMutex
	writeMu   sync.Mutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewWorker creates a new bar feed worker.
func NewWorker(url, token, symbol string, inbox chan<- event.Event, seq *uint64) *Worker {
	return &Worker{
		url:    url,
		token:  token,
		symbol: symbol,
		inbox:  inbox,
		seq:    seq,
	}
}

// Connect starts the connection loop in the background.
func (w *Worker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.connectionLoop(ctx)
	return nil
}

func (w *Worker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			slog.Warn("Feed connection failed", slog.Any("error", err), slog.Int("retry", retryCount))
			infra.GlobalMetrics.RecordReconnect()
			delay := infra.CalculateBackoff(retryCount)
			retryCount++
			if retryCount > maxRetries {
				retryCount = 0
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		} else {
			retryCount = 0
			w.readLoop(ctx)
		}
	}
}

func (w *Worker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	header := make(http.Header)
	if w.token != "" {
		header.Add("Authorization", "Bearer "+w.token)
	}

	conn, _, err := dialer.DialContext(ctx, w.url, header)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()

	if err := w.subscribe(); err != nil {
		w.closeConnection()
		return err
	}

	infra.GlobalMetrics.SetFeedConnected(true)
	slog.Info("Feed connected", slog.String("symbol", w.symbol))
	return nil
}

func (w *Worker) subscribe() error {
	msg := map[string]interface{}{
		"op":      "subscribe",
		"channel": "bars",
		"symbols": []string{w.symbol},
	}
	b, _ := json.Marshal(msg)
	return w.threadSafeWrite(websocket.TextMessage, b)
}

func (w *Worker) threadSafeWrite(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.conn == nil {
		return fmt.Errorf("no conn")
	}
	return w.conn.WriteMessage(msgType, data)
}

func (w *Worker) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.mu.RLock()
		if w.conn == nil {
			w.mu.RUnlock()
			return
		}
		w.conn.SetReadDeadline(time.Now().Add(readTimeout))
		w.mu.RUnlock()

		_, msg, err := w.conn.ReadMessage()
		if err != nil {
			w.closeConnection()
			return
		}
		w.handleMessage(msg)
	}
}

func (w *Worker) handleMessage(msg []byte) {
	var resp barMessage
	if json.Unmarshal(msg, &resp) != nil || resp.Type != "bar" {
		return
	}
	if resp.Symbol != w.symbol {
		return
	}

	ev := event.AcquireBarEvent()
	// Single producer (the readLoop): the next sequence number is claimed
	// only when the enqueue succeeds, so a dropped bar leaves no hole for
	// the sequencer gap check.
	ev.Seq = atomic.LoadUint64(w.seq) + 1
	ev.Ts = resp.Ts
	ev.Symbol = resp.Symbol
	ev.Price = resp.Price
	ev.Volume = resp.Volume

	select {
	case w.inbox <- ev:
		atomic.AddUint64(w.seq, 1)
	default:
		// Inbox full: drop the bar and return the event to the pool.
		event.ReleaseBarEvent(ev)
	}
}

func (w *Worker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	w.connected = false
	infra.GlobalMetrics.SetFeedConnected(false)
}

// IsConnected reports whether the socket is currently up.
func (w *Worker) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// Disconnect stops the worker and waits for the loops to exit.
func (w *Worker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}
