package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/debemdeboas/campaign-editor/internal/config"
	"github.com/debemdeboas/campaign-editor/internal/editor"
	"github.com/debemdeboas/campaign-editor/internal/saving"
	"github.com/debemdeboas/campaign-editor/internal/sse"
)

// EventConnected is the first event of every stream.
const EventConnected = "connected"

type connectedMessage struct {
	CampaignID string      `json:"campaignId"`
	Name       string      `json:"name"`
	State      saving.Step `json:"state"`
}

// serveEvents mounts the campaign's editor session for as long as the stream
// is open and makes this client its design surface.
func (s *Server) serveEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	id := campaignID(r)

	sess, err := s.sessions.Acquire(r.Context(), id)
	if errors.Is(err, editor.ErrManagerClosed) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("campaign_id", string(id)).Msg("Failed to open editor session")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer s.sessions.Release(id)

	client := sse.NewClient(id)
	s.clients.Add(client)
	defer s.clients.Delete(client)

	detach := sess.Attach(client)
	defer detach()

	w.Header().Set(config.HCType, config.CTypeSSE)
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	hello, _ := json.Marshal(connectedMessage{
		CampaignID: string(id),
		Name:       sess.Name(),
		State:      sess.Orchestrator.Snapshot().Process.Step(),
	})
	if err := s.flushEvent(rc, w, EventConnected, string(hello)); err != nil {
		s.log.Warn().Err(err).Msg("Streaming unsupported")
		return
	}

	s.log.Info().Str("campaign_id", string(id)).Msg("Editor client connected")
	defer s.log.Info().Str("campaign_id", string(id)).Msg("Editor client disconnected")

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case msg := <-client.Msg:
			if err := s.flushEvent(rc, w, "", msg); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) flushEvent(rc *http.ResponseController, w io.Writer, event, msg string) error {
	if err := sse.WriteEvent(w, event, msg); err != nil {
		return err
	}
	return rc.Flush()
}
