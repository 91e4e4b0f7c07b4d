// Package editor keeps one mounted save orchestrator per open campaign.
package editor

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/debemdeboas/campaign-editor/internal/model"
	"github.com/debemdeboas/campaign-editor/internal/saving"
	"github.com/debemdeboas/campaign-editor/internal/sse"
	"github.com/debemdeboas/campaign-editor/internal/surface"
)

// MsgSaveStatus is the type of the status events pushed to editor clients.
const MsgSaveStatus = "save-status"

// StatusMessage reports an orchestrator transition to the browser.
type StatusMessage struct {
	Type       string      `json:"type"`
	Event      string      `json:"event"`
	State      saving.Step `json:"state"`
	Generation uint64      `json:"generation"`
	Stale      bool        `json:"stale,omitempty"`
	Error      string      `json:"error,omitempty"`
}

func NewStatusMessage(tr saving.Transition) StatusMessage {
	msg := StatusMessage{
		Type:       MsgSaveStatus,
		Event:      tr.Event.Name(),
		State:      tr.After.Process.Step(),
		Generation: tr.After.Generation,
		Stale:      tr.Stale,
	}
	if f, ok := tr.Event.(saving.Failure); ok && f.Cause() != nil {
		msg.Error = f.Cause().Error()
	}
	return msg
}

// Session is the editor state of one open campaign.
type Session struct {
	ID           model.CampaignID
	Slot         *surface.Slot
	Exchange     *surface.Exchange
	Orchestrator *saving.Orchestrator

	name atomic.Pointer[string]
	refs int // guarded by Manager.mu
}

// Name is the campaign name stamped on exported snapshots.
func (s *Session) Name() string {
	if n := s.name.Load(); n != nil {
		return *n
	}
	return ""
}

func (s *Session) SetName(name string) {
	s.name.Store(&name)
}

// Attach makes client the session's design surface: export requests are
// pushed to it and answered through Resolve. The returned detach undoes it.
func (s *Session) Attach(client *sse.Client) (detach func()) {
	bridge := surface.NewBridge(s.Exchange, func(ctx context.Context, msg string) error {
		return sse.Send(ctx, client, msg)
	})
	unbind := s.Slot.Bind(bridge)

	return func() {
		unbind()
		bridge.Close()
	}
}

// Resolve hands a browser's export reply to the waiting bridge request.
func (s *Session) Resolve(requestID string, reply surface.Reply) error {
	return s.Exchange.Resolve(requestID, reply)
}

func statusObserver(clients *sse.SSEClients, id model.CampaignID) saving.Observer {
	return func(tr saving.Transition) {
		data, err := json.Marshal(NewStatusMessage(tr))
		if err != nil {
			return
		}
		clients.Broadcast(id, string(data))
	}
}
