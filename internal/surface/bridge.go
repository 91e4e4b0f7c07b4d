package surface

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/debemdeboas/campaign-editor/internal/model"
)

var (
	ErrBridgeClosed   = errors.New("design surface disconnected")
	ErrUnknownRequest = errors.New("unknown export request")
)

type ExportKind string

const (
	ExportMarkup  ExportKind = "markup"
	ExportPreview ExportKind = "preview"
)

// MsgExportRequest is the event type pushed to the browser for each export.
const MsgExportRequest = "export-request"

// ExportRequest is the message the browser receives over its event stream.
type ExportRequest struct {
	Type      string     `json:"type"`
	RequestID string     `json:"requestId"`
	Kind      ExportKind `json:"kind"`
}

// Reply is the browser's answer to an ExportRequest.
type Reply struct {
	Markup       string       `json:"markup,omitempty"`
	PreviewImage string       `json:"previewImage,omitempty"`
	Design       model.Design `json:"design,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// ExportError is a failure reported by the widget itself.
type ExportError struct {
	Kind    ExportKind
	Message string
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("%s export failed: %s", e.Kind, e.Message)
}

// Exchange correlates export requests with the replies posted back by the browser.
// One Exchange serves every bridge of a session, so a reply may arrive on any connection.
type Exchange struct {
	mu      sync.Mutex
	pending map[string]chan Reply
}

func NewExchange() *Exchange {
	return &Exchange{
		pending: make(map[string]chan Reply),
	}
}

func (x *Exchange) register() (string, <-chan Reply) {
	id := uuid.NewString()
	ch := make(chan Reply, 1)

	x.mu.Lock()
	x.pending[id] = ch
	x.mu.Unlock()

	return id, ch
}

func (x *Exchange) forget(id string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.pending, id)
}

// Resolve delivers a reply. Only the first reply for a request is kept.
func (x *Exchange) Resolve(requestID string, reply Reply) error {
	x.mu.Lock()
	ch, ok := x.pending[requestID]
	delete(x.pending, requestID)
	x.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRequest, requestID)
	}

	ch <- reply
	return nil
}

// Pending reports the number of requests still waiting for a reply.
func (x *Exchange) Pending() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.pending)
}

// Sender pushes one message to the connected browser.
type Sender func(ctx context.Context, msg string) error

// Bridge is a Surface backed by a browser connection: each export is pushed as a
// request over the event stream and completed by the browser's reply.
type Bridge struct {
	exchange *Exchange
	send     Sender

	closeOnce sync.Once
	closed    chan struct{}
}

func NewBridge(exchange *Exchange, send Sender) *Bridge {
	return &Bridge{
		exchange: exchange,
		send:     send,
		closed:   make(chan struct{}),
	}
}

// Close fails every export still waiting on this connection.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		close(b.closed)
	})
}

func (b *Bridge) ExportMarkup(ctx context.Context) (MarkupExport, error) {
	reply, err := b.request(ctx, ExportMarkup)
	if err != nil {
		return MarkupExport{}, err
	}
	return MarkupExport{Markup: reply.Markup, Design: reply.Design}, nil
}

func (b *Bridge) ExportPreview(ctx context.Context) (PreviewExport, error) {
	reply, err := b.request(ctx, ExportPreview)
	if err != nil {
		return PreviewExport{}, err
	}
	return PreviewExport{PreviewImage: reply.PreviewImage, Design: reply.Design}, nil
}

func (b *Bridge) request(ctx context.Context, kind ExportKind) (Reply, error) {
	select {
	case <-b.closed:
		return Reply{}, ErrBridgeClosed
	default:
	}

	id, ch := b.exchange.register()
	defer b.exchange.forget(id)

	msg, err := json.Marshal(ExportRequest{Type: MsgExportRequest, RequestID: id, Kind: kind})
	if err != nil {
		return Reply{}, fmt.Errorf("failed to encode export request: %w", err)
	}

	if err := b.send(ctx, string(msg)); err != nil {
		return Reply{}, fmt.Errorf("failed to push %s export request: %w", kind, err)
	}

	select {
	case reply := <-ch:
		if reply.Error != "" {
			return Reply{}, &ExportError{Kind: kind, Message: reply.Error}
		}
		return reply, nil
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	case <-b.closed:
		return Reply{}, ErrBridgeClosed
	}
}
