package mocks

import (
	"context"
	"sync"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/usecase"
)

// MoveCall records one UpdateCard call.
type MoveCall struct {
	CardID string
	ListID string
}

// CommentCall records one AddComment call.
type CommentCall struct {
	CardID string
	Text   string
}

// Board implements usecase.BoardClient with overridable behaviour and call tracking.
type Board struct {
	GetBoardListsFn func(ctx context.Context, boardID string) ([]domain.BoardList, error)
	UpdateCardFn    func(ctx context.Context, cardID, listID string) error
	AddCommentFn    func(ctx context.Context, cardID, text string) error

	Lists []domain.BoardList

	mu           sync.Mutex
	ListCalls    int
	MoveCalls    []MoveCall
	CommentCalls []CommentCall
}

func (b *Board) GetBoardLists(ctx context.Context, boardID string) ([]domain.BoardList, error) {
	b.mu.Lock()
	b.ListCalls++
	b.mu.Unlock()
	if b.GetBoardListsFn != nil {
		return b.GetBoardListsFn(ctx, boardID)
	}
	return b.Lists, nil
}

func (b *Board) UpdateCard(ctx context.Context, cardID, listID string) error {
	b.mu.Lock()
	b.MoveCalls = append(b.MoveCalls, MoveCall{CardID: cardID, ListID: listID})
	b.mu.Unlock()
	if b.UpdateCardFn != nil {
		return b.UpdateCardFn(ctx, cardID, listID)
	}
	return nil
}

func (b *Board) AddComment(ctx context.Context, cardID, text string) error {
	b.mu.Lock()
	b.CommentCalls = append(b.CommentCalls, CommentCall{CardID: cardID, Text: text})
	b.mu.Unlock()
	if b.AddCommentFn != nil {
		return b.AddCommentFn(ctx, cardID, text)
	}
	return nil
}

// Moves returns a copy of the recorded UpdateCard calls.
func (b *Board) Moves() []MoveCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]MoveCall(nil), b.MoveCalls...)
}

// Comments returns a copy of the recorded AddComment calls.
func (b *Board) Comments() []CommentCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]CommentCall(nil), b.CommentCalls...)
}

// Notifier implements usecase.Notifier and records every attempt.
type Notifier struct {
	SendFn func(ctx context.Context, n domain.Notification) error

	mu       sync.Mutex
	attempts []domain.Notification
	sent     []domain.Notification
}

func (n *Notifier) Send(ctx context.Context, notification domain.Notification) error {
	n.mu.Lock()
	n.attempts = append(n.attempts, notification)
	n.mu.Unlock()
	if n.SendFn != nil {
		if err := n.SendFn(ctx, notification); err != nil {
			return err
		}
	}
	n.mu.Lock()
	n.sent = append(n.sent, notification)
	n.mu.Unlock()
	return nil
}

// Sent returns the notifications that were delivered.
func (n *Notifier) Sent() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notification(nil), n.sent...)
}

// Attempts returns every notification passed to Send, delivered or not.
func (n *Notifier) Attempts() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notification(nil), n.attempts...)
}

// Reset forgets recorded calls.
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attempts = nil
	n.sent = nil
}

// Outbox implements usecase.ActivityOutbox in memory.
type Outbox struct {
	Err error

	mu       sync.Mutex
	Comments []CommentCall
}

func (o *Outbox) EnqueueComment(_ context.Context, taskID, text string) error {
	if o.Err != nil {
		return o.Err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Comments = append(o.Comments, CommentCall{CardID: taskID, Text: text})
	return nil
}

var (
	_ usecase.BoardClient    = (*Board)(nil)
	_ usecase.Notifier       = (*Notifier)(nil)
	_ usecase.ActivityOutbox = (*Outbox)(nil)
)
