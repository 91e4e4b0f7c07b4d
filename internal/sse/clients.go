// Package sse provides Server-Sent Events client management for editor sessions.
package sse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/debemdeboas/campaign-editor/internal/model"
)

var ErrClientGone = errors.New("sse client disconnected")

const clientBuffer = 16

type Client struct {
	Msg        chan string
	CampaignID model.CampaignID

	done     chan struct{}
	doneOnce sync.Once
}

func NewClient(id model.CampaignID) *Client {
	return &Client{
		Msg:        make(chan string, clientBuffer),
		CampaignID: id,
		done:       make(chan struct{}),
	}
}

// Done is closed once the client has been removed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

type SSEClients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewSSEClients() *SSEClients {
	return &SSEClients{
		clients: make(map[*Client]bool),
	}
}

func (s *SSEClients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

// Delete removes client and releases anyone blocked in Send to it. Msg is
// left open so concurrent senders never write to a closed channel.
func (s *SSEClients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, client)
	client.doneOnce.Do(func() { close(client.done) })
}

// Count returns the number of clients connected to a campaign.
func (s *SSEClients) Count(id model.CampaignID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for client := range s.clients {
		if client.CampaignID == id {
			n++
		}
	}
	return n
}

// Broadcast offers msg to every client of a campaign, dropping it for clients
// whose buffer is full.
func (s *SSEClients) Broadcast(id model.CampaignID, msg string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for client := range s.clients {
		if client.CampaignID == id {
			select {
			case client.Msg <- msg:
			default:
			}
		}
	}
}

// Send delivers msg to a single client, waiting for buffer space.
func Send(ctx context.Context, client *Client, msg string) error {
	select {
	case <-client.done:
		return ErrClientGone
	default:
	}

	select {
	case client.Msg <- msg:
		return nil
	case <-client.done:
		return ErrClientGone
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WriteEvent writes msg as one SSE frame. An empty event name writes a
// default "message" event.
func WriteEvent(w io.Writer, event, msg string) error {
	var b strings.Builder
	if event != "" {
		fmt.Fprintf(&b, "event: %s\n", event)
	}
	for _, line := range strings.Split(msg, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}
