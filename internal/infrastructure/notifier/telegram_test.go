package notifier

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/pkg/httpclient"
)

func newTestTelegram(t *testing.T, handler fasthttp.RequestHandler) *Telegram {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	http := httpclient.New(httpclient.Config{Timeout: time.Second, BaseBackoff: time.Millisecond}, nil,
		httpclient.WithDial(func(string) (net.Conn, error) { return ln.Dial() }))
	return NewTelegram(Config{BaseURL: "http://tg.local", Token: "123:abc"}, http, nil)
}

func TestSendBuildsKeyboard(t *testing.T) {
	tg := newTestTelegram(t, func(ctx *fasthttp.RequestCtx) {
		assert.Equal(t, "/bot123:abc/sendMessage", string(ctx.Path()))
		var req sendMessageRequest
		require.NoError(t, json.Unmarshal(ctx.PostBody(), &req))
		assert.Equal(t, "42", req.ChatID)
		require.NotNil(t, req.ReplyMarkup)
		require.Len(t, req.ReplyMarkup.InlineKeyboard, 1)
		assert.Equal(t, "task:done:c1", req.ReplyMarkup.InlineKeyboard[0][0].CallbackData)
		ctx.SetBodyString(`{"ok":true}`)
	})

	err := tg.Send(context.Background(), domain.Notification{
		RecipientID: "42",
		Text:        "due soon",
		Actions:     [][]domain.Action{{{Label: "Done", Data: "task:done:c1"}}},
	})
	require.NoError(t, err)
}

func TestSendClassifiesFailures(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		body        string
		unreachable bool
	}{
		{name: "blocked", status: fasthttp.StatusForbidden, body: `{"ok":false,"description":"Forbidden: bot was blocked by the user"}`, unreachable: true},
		{name: "chat not found", status: fasthttp.StatusBadRequest, body: `{"ok":false,"description":"Bad Request: chat not found"}`, unreachable: true},
		{name: "bad markup", status: fasthttp.StatusBadRequest, body: `{"ok":false,"description":"Bad Request: can't parse entities"}`},
		{name: "server error", status: fasthttp.StatusBadGateway, body: `{}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tg := newTestTelegram(t, func(ctx *fasthttp.RequestCtx) {
				ctx.SetStatusCode(tc.status)
				ctx.SetBodyString(tc.body)
			})

			err := tg.Send(context.Background(), domain.Notification{RecipientID: "42", Text: "hi"})
			require.Error(t, err)
			assert.Equal(t, tc.unreachable, domain.IsUnreachable(err))
			if !tc.unreachable {
				assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotification))
			}
		})
	}
}
