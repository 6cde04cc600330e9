package httpclient

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestClient(t *testing.T, maxRetries int, handler fasthttp.RequestHandler) *Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	return New(Config{
		Timeout:     time.Second,
		MaxRetries:  maxRetries,
		BaseBackoff: time.Millisecond,
	}, nil, WithDial(func(string) (net.Conn, error) { return ln.Dial() }))
}

func TestDoRetriesServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, 3, func(ctx *fasthttp.RequestCtx) {
		if atomic.AddInt32(&calls, 1) < 3 {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			return
		}
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString(`{"ok":true}`)
	})

	resp, err := client.Do(context.Background(), Request{Method: fasthttp.MethodGet, URL: "http://board.local/ping"})
	require.NoError(t, err)
	assert.Equal(t, fasthttp.StatusOK, resp.Status)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, 3, func(ctx *fasthttp.RequestCtx) {
		atomic.AddInt32(&calls, 1)
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		ctx.SetBodyString(`{"description":"bad list"}`)
	})

	_, err := client.Do(context.Background(), Request{Method: fasthttp.MethodPost, URL: "http://board.local/cards", Body: []byte(`{}`)})
	require.Error(t, err)
	assert.True(t, IsStatus(err, fasthttp.StatusBadRequest))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	client := newTestClient(t, 2, func(ctx *fasthttp.RequestCtx) {
		atomic.AddInt32(&calls, 1)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	})

	_, err := client.Do(context.Background(), Request{Method: fasthttp.MethodGet, URL: "http://board.local/boards/1"})
	require.Error(t, err)
	assert.True(t, IsStatus(err, fasthttp.StatusInternalServerError))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestDoSendsHeadersAndBody(t *testing.T) {
	client := newTestClient(t, 0, func(ctx *fasthttp.RequestCtx) {
		assert.Equal(t, "Bearer secret", string(ctx.Request.Header.Peek("Authorization")))
		assert.Equal(t, "application/json", string(ctx.Request.Header.ContentType()))
		assert.Equal(t, fasthttp.MethodPatch, string(ctx.Method()))
		ctx.SetBody(ctx.PostBody())
	})

	resp, err := client.Do(context.Background(), Request{
		Method:  fasthttp.MethodPatch,
		URL:     "http://board.local/api/cards/1",
		Headers: map[string]string{"Authorization": "Bearer secret"},
		Body:    []byte(`{"listId":"l2"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"listId":"l2"}`, string(resp.Body))
}

func TestDoHonoursExpiredContext(t *testing.T) {
	client := newTestClient(t, 3, func(ctx *fasthttp.RequestCtx) {})

	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	_, err := client.Do(ctx, Request{Method: fasthttp.MethodGet, URL: "http://board.local/"})
	assert.Error(t, err)
}

func TestDoKeepsCredentialsOutOfLogs(t *testing.T) {
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusBadGateway)
	}}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	core, logs := observer.New(zapcore.DebugLevel)
	client := New(Config{Timeout: time.Second, MaxRetries: 1, BaseBackoff: time.Millisecond}, zap.New(core),
		WithDial(func(string) (net.Conn, error) { return ln.Dial() }))

	_, err := client.Do(context.Background(), Request{Method: fasthttp.MethodPost, URL: "http://tg.local/botSECRET-TOKEN/sendMessage"})
	require.Error(t, err)

	entries := logs.All()
	require.NotEmpty(t, entries)
	for _, entry := range entries {
		for key, value := range entry.ContextMap() {
			assert.NotContains(t, fmt.Sprint(value), "SECRET-TOKEN", "field %s of %q", key, entry.Message)
		}
	}
	assert.Equal(t, "http://tg.local", entries[0].ContextMap()["endpoint"])
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://api.telegram.org", redactURL("https://api.telegram.org/bot123:abc/sendMessage?x=1"))
	assert.Equal(t, "unparseable url", redactURL("::"))
}
