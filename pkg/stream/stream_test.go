package stream

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"nhooyr.io/websocket"

	"github.com/gramistella/yfin/pkg/client"
)

// encodePricing builds a wire frame the way the streamer does.
func encodePricing(id string, price float32, currency string, ts int64) string {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, id)
	b = protowire.AppendTag(b, 2, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, math.Float32bits(price))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(ts))
	if currency != "" {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendString(b, currency)
	}
	return base64.StdEncoding.EncodeToString(b)
}

// encodeHeartbeat builds a frame with an id and time but no price field.
func encodeHeartbeat(id string, ts int64) string {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, id)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(ts))
	return base64.StdEncoding.EncodeToString(b)
}

func TestDecodeFrame(t *testing.T) {
	pd, err := decodeFrame(encodePricing("AAPL", 190.5, "USD", 1756000000))
	require.NoError(t, err)
	assert.Equal(t, "AAPL", pd.ID)
	require.NotNil(t, pd.Price)
	assert.InDelta(t, 190.5, *pd.Price, 1e-3)
	assert.Equal(t, "USD", pd.Currency)
	assert.EqualValues(t, 1756000000, pd.Time)
}

func TestDecodeFrameWithoutPrice(t *testing.T) {
	pd, err := decodeFrame(encodeHeartbeat("AAPL", 1756000000))
	require.NoError(t, err)
	assert.Equal(t, "AAPL", pd.ID)
	assert.Nil(t, pd.Price)
}

func TestDecodeFrameRejectsGarbage(t *testing.T) {
	_, err := decodeFrame("not base64 at all!!!")
	assert.Error(t, err)

	// Valid base64, not a pricing message with an id.
	_, err = decodeFrame(base64.StdEncoding.EncodeToString([]byte{0x08, 0x01}))
	assert.Error(t, err)
}

func quoteBody(price float64) string {
	return fmt.Sprintf(`{"quoteResponse":{"result":[
	  {"symbol":"AAPL","currency":"USD","regularMarketPrice":%g,"regularMarketPreviousClose":189.0}
	],"error":null}}`, price)
}

func pollClient(t *testing.T, handler http.HandlerFunc) *client.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	e := client.DefaultEndpoints()
	e.Quote = srv.URL + "/v7/finance/quote"
	return client.New(client.WithEndpoints(e))
}

func TestPollingEmitsAndStops(t *testing.T) {
	c := pollClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, quoteBody(190.5))
	})

	h, updates, err := Start(context.Background(), c, Config{
		Symbols:  []string{"AAPL"},
		Method:   Polling,
		Interval: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	upd := <-updates
	assert.Equal(t, "AAPL", upd.Symbol)
	require.NotNil(t, upd.LastPrice)
	assert.Equal(t, 190.5, *upd.LastPrice)
	assert.EqualValues(t, "USD", upd.Currency)
	assert.NotZero(t, upd.Ts)

	h.Stop()
	// Channel closes after the task exits.
	for range updates {
	}
}

func TestPollingDiffOnlySuppressesRepeats(t *testing.T) {
	var polls int32
	c := pollClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&polls, 1)
		price := 190.5
		if n >= 3 {
			price = 191.0
		}
		fmt.Fprint(w, quoteBody(price))
	})

	h, updates, err := Start(context.Background(), c, Config{
		Symbols:  []string{"AAPL"},
		Method:   Polling,
		Interval: 5 * time.Millisecond,
		DiffOnly: true,
	})
	require.NoError(t, err)
	defer h.Stop()

	first := <-updates
	assert.Equal(t, 190.5, *first.LastPrice)
	// The repeated 190.5 polls are filtered; the next delivery is the move.
	second := <-updates
	assert.Equal(t, 191.0, *second.LastPrice)
}

func TestPollingFallsBackToPreviousClose(t *testing.T) {
	c := pollClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[
		  {"symbol":"AAPL","currency":"USD","regularMarketPreviousClose":189.0}
		],"error":null}}`)
	})

	h, updates, err := Start(context.Background(), c, Config{
		Symbols:  []string{"AAPL"},
		Method:   Polling,
		Interval: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	defer h.Stop()

	upd := <-updates
	require.NotNil(t, upd.LastPrice)
	assert.Equal(t, 189.0, *upd.LastPrice)
}

func TestStartNoSymbols(t *testing.T) {
	_, _, err := Start(context.Background(), client.New(), Config{})
	var ip *client.ErrInvalidParams
	assert.ErrorAs(t, err, &ip)
}

func TestAbortTerminatesQuickly(t *testing.T) {
	c := pollClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, quoteBody(190.5))
	})

	h, updates, err := Start(context.Background(), c, Config{
		Symbols:  []string{"AAPL"},
		Method:   Polling,
		Interval: time.Hour, // the task would otherwise sleep forever
	})
	require.NoError(t, err)

	<-updates
	done := make(chan struct{})
	go func() {
		h.Abort()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("abort did not terminate the stream task")
	}
}

// wsServer accepts one WebSocket connection, waits for the subscribe frame,
// then sends the given payloads as text messages.
func wsServer(t *testing.T, payloads ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		ctx := r.Context()

		_, sub, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var frame subscribeFrame
		if err := json.Unmarshal(sub, &frame); err != nil || len(frame.Subscribe) == 0 {
			return
		}

		for _, p := range payloads {
			env, _ := json.Marshal(wsFrame{Message: p})
			if err := conn.Write(ctx, websocket.MessageText, env); err != nil {
				return
			}
		}
		// Hold the connection open until the client leaves.
		_, _, _ = conn.Read(ctx)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsClient(t *testing.T, wsURL string) *client.Client {
	t.Helper()
	e := client.DefaultEndpoints()
	e.Stream = "ws" + strings.TrimPrefix(wsURL, "http")
	return client.New(client.WithEndpoints(e))
}

func TestWebSocketStream(t *testing.T) {
	srv := wsServer(t,
		encodePricing("AAPL", 190.5, "USD", 1756000000),
		encodePricing("AAPL", 191.0, "USD", 1756000001),
	)
	c := wsClient(t, srv.URL)

	h, updates, err := Start(context.Background(), c, Config{
		Symbols: []string{"AAPL"},
		Method:  WebSocket,
	})
	require.NoError(t, err)
	defer h.Stop()

	first := <-updates
	assert.Equal(t, "AAPL", first.Symbol)
	assert.InDelta(t, 190.5, *first.LastPrice, 1e-3)
	assert.EqualValues(t, "USD", first.Currency)

	second := <-updates
	assert.InDelta(t, 191.0, *second.LastPrice, 1e-3)
}

func TestWebSocketDiffOnly(t *testing.T) {
	srv := wsServer(t,
		encodePricing("AAPL", 190.5, "USD", 1),
		encodePricing("AAPL", 190.5, "USD", 2),
		encodePricing("AAPL", 192.0, "USD", 3),
	)
	c := wsClient(t, srv.URL)

	h, updates, err := Start(context.Background(), c, Config{
		Symbols:  []string{"AAPL"},
		Method:   WebSocket,
		DiffOnly: true,
	})
	require.NoError(t, err)
	defer h.Stop()

	first := <-updates
	assert.InDelta(t, 190.5, *first.LastPrice, 1e-3)
	second := <-updates
	assert.InDelta(t, 192.0, *second.LastPrice, 1e-3)
}

func TestWebSocketFrameWithoutPriceEmitsNil(t *testing.T) {
	srv := wsServer(t,
		encodeHeartbeat("AAPL", 1756000000),
		encodePricing("AAPL", 190.5, "USD", 1756000001),
	)
	c := wsClient(t, srv.URL)

	h, updates, err := Start(context.Background(), c, Config{
		Symbols: []string{"AAPL"},
		Method:  WebSocket,
	})
	require.NoError(t, err)
	defer h.Stop()

	// The priceless frame must not surface as a 0.0 price.
	first := <-updates
	assert.Equal(t, "AAPL", first.Symbol)
	assert.Nil(t, first.LastPrice)

	second := <-updates
	require.NotNil(t, second.LastPrice)
	assert.InDelta(t, 190.5, *second.LastPrice, 1e-3)
}

func TestFallbackToPollingOnSilentSocket(t *testing.T) {
	oldFloor := minFallbackWindow
	minFallbackWindow = 50 * time.Millisecond
	defer func() { minFallbackWindow = oldFloor }()

	// Accepts and reads the subscribe frame but never sends anything.
	wsSrv := wsServer(t)

	quoteSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, quoteBody(190.5))
	}))
	t.Cleanup(quoteSrv.Close)

	e := client.DefaultEndpoints()
	e.Stream = "ws" + strings.TrimPrefix(wsSrv.URL, "http")
	e.Quote = quoteSrv.URL + "/v7/finance/quote"
	c := client.New(client.WithEndpoints(e))

	h, updates, err := Start(context.Background(), c, Config{
		Symbols:  []string{"AAPL"},
		Method:   WebSocketWithFallback,
		Interval: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	defer h.Stop()

	select {
	case upd := <-updates:
		assert.Equal(t, "AAPL", upd.Symbol)
		require.NotNil(t, upd.LastPrice)
		assert.Equal(t, 190.5, *upd.LastPrice)
	case <-time.After(5 * time.Second):
		t.Fatal("silent socket did not downgrade to polling")
	}
}

func TestFallbackToPollingOnDialFailure(t *testing.T) {
	quoteSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, quoteBody(190.5))
	}))
	t.Cleanup(quoteSrv.Close)

	e := client.DefaultEndpoints()
	e.Stream = "ws://127.0.0.1:1" // nothing listens here
	e.Quote = quoteSrv.URL + "/v7/finance/quote"
	c := client.New(client.WithEndpoints(e))

	h, updates, err := Start(context.Background(), c, Config{
		Symbols:  []string{"AAPL"},
		Method:   WebSocketWithFallback,
		Interval: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	defer h.Stop()

	select {
	case upd := <-updates:
		assert.Equal(t, "AAPL", upd.Symbol)
		require.NotNil(t, upd.LastPrice)
		assert.Equal(t, 190.5, *upd.LastPrice)
	case <-time.After(5 * time.Second):
		t.Fatal("fallback polling produced no update")
	}
}
