package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/pkg/httpclient"
	"github.com/fastygo/taskpulse/usecase"
)

// Config describes the Bot API endpoint.
type Config struct {
	BaseURL string
	Token   string
}

// Telegram sends notifications through the Telegram Bot API.
// Recipient ids are chat ids.
type Telegram struct {
	http    *httpclient.Client
	baseURL string
	token   string
	logger  *zap.Logger
}

func NewTelegram(cfg Config, http *httpclient.Client, logger *zap.Logger) *Telegram {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Telegram{
		http:    http,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		logger:  logger,
	}
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type sendMessageRequest struct {
	ChatID      string `json:"chat_id"`
	Text        string `json:"text"`
	ReplyMarkup *struct {
		InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
	} `json:"reply_markup,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send delivers one message. Blocked bots and missing chats come back as UnreachableError.
func (t *Telegram) Send(ctx context.Context, n domain.Notification) error {
	if n.RecipientID == "" {
		return domain.NotificationError("recipient is empty", nil)
	}

	req := sendMessageRequest{ChatID: n.RecipientID, Text: n.Text}
	if len(n.Actions) > 0 {
		req.ReplyMarkup = &struct {
			InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
		}{}
		for _, row := range n.Actions {
			buttons := make([]inlineButton, 0, len(row))
			for _, action := range row {
				buttons = append(buttons, inlineButton{Text: action.Label, CallbackData: action.Data})
			}
			req.ReplyMarkup.InlineKeyboard = append(req.ReplyMarkup.InlineKeyboard, buttons)
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return domain.NotificationError("encode message", err)
	}

	_, err = t.http.Do(ctx, httpclient.Request{
		Method: fasthttp.MethodPost,
		URL:    t.baseURL + "/bot" + t.token + "/sendMessage",
		Body:   body,
	})
	if err == nil {
		return nil
	}
	if isUnreachable(err) {
		return domain.UnreachableError(n.RecipientID, err)
	}
	return domain.NotificationError("send message", err)
}

func isUnreachable(err error) bool {
	switch {
	case httpclient.IsStatus(err, fasthttp.StatusForbidden):
		return true
	case httpclient.IsStatus(err, fasthttp.StatusBadRequest):
		return strings.Contains(strings.ToLower(describe(err)), "chat not found")
	default:
		return false
	}
}

func describe(err error) string {
	var statusErr *httpclient.StatusError
	if !errors.As(err, &statusErr) {
		return err.Error()
	}
	var payload apiResponse
	if json.Unmarshal(statusErr.Body, &payload) == nil && payload.Description != "" {
		return payload.Description
	}
	return string(statusErr.Body)
}

var _ usecase.Notifier = (*Telegram)(nil)
