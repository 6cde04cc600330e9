package board

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/pkg/httpclient"
	"github.com/fastygo/taskpulse/usecase"
)

// Config describes how to reach the board API.
type Config struct {
	BaseURL string
	Token   string
}

// Client talks to a Planka-compatible board API.
type Client struct {
	http    *httpclient.Client
	baseURL string
	token   string
	logger  *zap.Logger
}

func New(cfg Config, http *httpclient.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:    http,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		logger:  logger,
	}
}

type boardResponse struct {
	Included struct {
		Lists []struct {
			ID       string  `json:"id"`
			Name     string  `json:"name"`
			Position float64 `json:"position"`
		} `json:"lists"`
	} `json:"included"`
}

// GetBoardLists returns the board's lists ordered by position.
func (c *Client) GetBoardLists(ctx context.Context, boardID string) ([]domain.BoardList, error) {
	if boardID == "" {
		return nil, domain.BoardError("board id is empty", nil)
	}
	resp, err := c.do(ctx, fasthttp.MethodGet, "/api/boards/"+url.PathEscape(boardID), nil)
	if err != nil {
		return nil, domain.BoardError("get board lists", err)
	}

	var payload boardResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, domain.BoardError("decode board lists", err)
	}

	lists := make([]domain.BoardList, 0, len(payload.Included.Lists))
	for _, l := range payload.Included.Lists {
		lists = append(lists, domain.BoardList{ID: l.ID, Name: l.Name, Position: l.Position})
	}
	sort.SliceStable(lists, func(i, j int) bool { return lists[i].Position < lists[j].Position })
	return lists, nil
}

// UpdateCard moves a card to another list.
func (c *Client) UpdateCard(ctx context.Context, cardID, listID string) error {
	body, err := json.Marshal(map[string]string{"listId": listID})
	if err != nil {
		return domain.BoardError("encode card update", err)
	}
	if _, err := c.do(ctx, fasthttp.MethodPatch, "/api/cards/"+url.PathEscape(cardID), body); err != nil {
		return domain.BoardError(fmt.Sprintf("move card %s", cardID), err)
	}
	return nil
}

// AddComment posts an activity comment on a card.
func (c *Client) AddComment(ctx context.Context, cardID, text string) error {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return domain.BoardError("encode comment", err)
	}
	if _, err := c.do(ctx, fasthttp.MethodPost, "/api/cards/"+url.PathEscape(cardID)+"/comment-actions", body); err != nil {
		return domain.BoardError(fmt.Sprintf("comment on card %s", cardID), err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*httpclient.Response, error) {
	headers := map[string]string{"Accept": "application/json"}
	if c.token != "" {
		headers["Authorization"] = "Bearer " + c.token
	}
	resp, err := c.http.Do(ctx, httpclient.Request{
		Method:  method,
		URL:     c.baseURL + path,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		c.logger.Warn("board request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

var _ usecase.BoardClient = (*Client)(nil)
