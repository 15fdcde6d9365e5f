// Package stream delivers live quote updates over a channel, either from
// the Yahoo WebSocket streamer or by polling the batch quote endpoint. A
// fallback mode downgrades from WebSocket to polling transparently.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/gramistella/yfin/pkg/client"
	"github.com/gramistella/yfin/pkg/models"
	"github.com/gramistella/yfin/pkg/quote"
)

// Method selects the transport.
type Method int

const (
	// WebSocketWithFallback streams over WebSocket, downgrading to polling
	// when the handshake fails or frames stop arriving. The default.
	WebSocketWithFallback Method = iota
	// WebSocket streams over WebSocket only.
	WebSocket
	// Polling ticks the batch quote endpoint.
	Polling
)

// Config drives one stream session.
type Config struct {
	Symbols  []string
	Method   Method
	Interval time.Duration // polling tick, and the basis of the fallback window
	DiffOnly bool          // suppress updates whose price is unchanged
}

const (
	defaultInterval = 10 * time.Second
	updateBuffer    = 64
)

// minFallbackWindow floors the silent-socket window. A variable so tests
// can shrink it.
var minFallbackWindow = 15 * time.Second

// Handle controls a running stream.
type Handle struct {
	stopOnce sync.Once
	stop     chan struct{}
	cancel   context.CancelFunc
	done     chan struct{}
}

// Stop asks the background task to finish its current step and exit, then
// waits for it.
func (h *Handle) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

// Abort cancels the task immediately; in-flight network work is torn down
// at its next suspension point.
func (h *Handle) Abort() {
	h.cancel()
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

// Start launches the stream's background task. The returned channel is
// bounded and closed when the task exits; it is intended for a single
// consumer.
func Start(ctx context.Context, c *client.Client, cfg Config) (*Handle, <-chan models.QuoteUpdate, error) {
	if len(cfg.Symbols) == 0 {
		return nil, nil, &client.ErrInvalidParams{Detail: "no symbols to stream"}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		stop:   make(chan struct{}),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	updates := make(chan models.QuoteUpdate, updateBuffer)

	s := &session{
		client:  c,
		cfg:     cfg,
		updates: updates,
		stop:    h.stop,
		last:    make(map[string]float64),
		log:     c.Logger().With().Str("component", "stream").Logger(),
	}

	go func() {
		defer close(h.done)
		defer close(updates)
		defer cancel()
		s.run(ctx)
	}()
	return h, updates, nil
}

type session struct {
	client  *client.Client
	cfg     Config
	updates chan models.QuoteUpdate
	stop    chan struct{}
	last    map[string]float64
	log     zerolog.Logger
}

func (s *session) run(ctx context.Context) {
	switch s.cfg.Method {
	case Polling:
		s.runPolling(ctx)
	case WebSocket:
		if err := s.runWebSocket(ctx, nil); err != nil {
			s.log.Debug().Err(err).Msg("websocket stream ended")
		}
	default:
		// Fallback window: long enough for a few missed ticks, never
		// shorter than the floor.
		window := 3 * s.cfg.Interval
		if window < minFallbackWindow {
			window = minFallbackWindow
		}
		firstFrame := time.After(window)
		if err := s.runWebSocket(ctx, firstFrame); err != nil {
			if ctx.Err() != nil || s.stopped() {
				return
			}
			s.log.Debug().Err(err).Msg("websocket unavailable, polling instead")
			s.runPolling(ctx)
		}
	}
}

func (s *session) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// emit applies the diff filter and delivers one update. Returns false when
// the session should end.
func (s *session) emit(symbol string, lp *float64, cur models.Currency, prevClose *float64) bool {
	if lp != nil && s.cfg.DiffOnly {
		if prev, ok := s.last[symbol]; ok && prev == *lp {
			return true
		}
	}
	if lp != nil {
		s.last[symbol] = *lp
	}

	upd := models.QuoteUpdate{
		Symbol:        symbol,
		LastPrice:     lp,
		PreviousClose: prevClose,
		Currency:      cur,
		Ts:            time.Now().UTC().Unix(),
	}
	select {
	case s.updates <- upd:
		return true
	case <-s.stop:
		return false
	}
}

// ── Polling path ──

func (s *session) runPolling(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		quotes, err := quote.Fetch(ctx, s.client, s.cfg.Symbols, client.CallOpts{CacheMode: client.CacheBypass})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Debug().Err(err).Msg("poll failed")
		}
		for _, q := range quotes {
			// Off-hours the endpoint reports no live price; the previous
			// close stands in.
			lp := moneyAmount(q.Price)
			if lp == nil {
				lp = moneyAmount(q.PreviousClose)
			}
			if !s.emit(q.Symbol, lp, q.Currency, moneyAmount(q.PreviousClose)) {
				return
			}
		}

		select {
		case <-ticker.C:
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func moneyAmount(m *models.Money) *float64 {
	if m == nil {
		return nil
	}
	v := m.Amount
	return &v
}

// ── WebSocket path ──

type subscribeFrame struct {
	Subscribe []string `json:"subscribe"`
}

// wsFrame is the streamer's text envelope; the protobuf payload arrives
// base64-encoded in the message field.
type wsFrame struct {
	Message string `json:"message"`
}

// runWebSocket streams until stop/cancel or a connection error. When
// firstFrame is non-nil and fires before any frame arrives, the connection
// is abandoned with an error so the caller can fall back.
func (s *session) runWebSocket(ctx context.Context, firstFrame <-chan time.Time) error {
	headers := http.Header{}
	headers.Set("User-Agent", s.client.UserAgent())

	conn, _, err := websocket.Dial(ctx, s.client.URLs().Stream, &websocket.DialOptions{
		HTTPHeader: headers,
	})
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	sub, err := json.Marshal(subscribeFrame{Subscribe: s.cfg.Symbols})
	if err != nil {
		return err
	}
	if err := conn.Write(ctx, websocket.MessageText, sub); err != nil {
		return err
	}

	// The read loop runs in its own goroutine so stop() can interrupt a
	// blocked read via context cancellation.
	frames := make(chan []byte)
	readErr := make(chan error, 1)
	readCtx, cancelRead := context.WithCancel(ctx)
	defer cancelRead()
	go func() {
		for {
			_, data, err := conn.Read(readCtx)
			if err != nil {
				readErr <- err
				return
			}
			select {
			case frames <- data:
			case <-readCtx.Done():
				return
			}
		}
	}()

	received := false
	for {
		select {
		case data := <-frames:
			received = true
			if !s.handleFrame(data) {
				return nil
			}
		case err := <-readErr:
			if received {
				// An established stream that drops terminates the task.
				return nil
			}
			return err
		case <-firstFrame:
			if !received {
				return errNoFrames
			}
			firstFrame = nil
		case <-s.stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *session) handleFrame(data []byte) bool {
	payload := string(data)
	var frame wsFrame
	if err := json.Unmarshal(data, &frame); err == nil && frame.Message != "" {
		payload = frame.Message
	}

	pd, err := decodeFrame(payload)
	if err != nil {
		s.log.Debug().Err(err).Msg("dropping undecodable frame")
		return true
	}
	return s.emit(pd.ID, pd.Price, models.Currency(pd.Currency), nil)
}

type streamError string

func (e streamError) Error() string { return string(e) }

// errNoFrames marks a WebSocket that connected but stayed silent past the
// fallback window.
const errNoFrames = streamError("no frames received within fallback window")
