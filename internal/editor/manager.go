package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/campaign-editor/internal/model"
	"github.com/debemdeboas/campaign-editor/internal/repository"
	"github.com/debemdeboas/campaign-editor/internal/saving"
	"github.com/debemdeboas/campaign-editor/internal/sse"
	"github.com/debemdeboas/campaign-editor/internal/surface"
)

var ErrManagerClosed = errors.New("editor session manager closed")

type Option func(*Manager)

func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// WithObserver adds an observer to every session's orchestrator.
func WithObserver(obs saving.Observer) Option {
	return func(m *Manager) {
		m.observers = append(m.observers, obs)
	}
}

// WithClients broadcasts every session's save status to its SSE clients.
func WithClients(clients *sse.SSEClients) Option {
	return func(m *Manager) {
		m.clients = clients
	}
}

func WithExportTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.exportTimeout = d
	}
}

// WithDefaultName names campaigns that have never been saved.
func WithDefaultName(name string) Option {
	return func(m *Manager) {
		m.defaultName = name
	}
}

// Manager mounts a session on the first Acquire of a campaign and unmounts it
// when the last holder releases it.
type Manager struct {
	repo repository.CampaignRepository

	log           zerolog.Logger
	observers     []saving.Observer
	clients       *sse.SSEClients
	exportTimeout time.Duration
	defaultName   string

	mu       sync.Mutex
	sessions map[model.CampaignID]*Session
	closed   bool
}

func NewManager(repo repository.CampaignRepository, opts ...Option) *Manager {
	m := &Manager{
		repo:     repo,
		log:      zerolog.Nop(),
		sessions: make(map[model.CampaignID]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire returns the session of id, mounting it if needed. Every successful
// Acquire must be paired with a Release.
func (m *Manager) Acquire(ctx context.Context, id model.CampaignID) (*Session, error) {
	if s, err := m.retain(id); s != nil || err != nil {
		return s, err
	}

	name, err := m.storedName(ctx, id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}
	// Another caller may have mounted it while the name was loading.
	if s, ok := m.sessions[id]; ok {
		s.refs++
		return s, nil
	}

	s := m.mount(id, name)
	s.refs = 1
	m.sessions[id] = s

	m.log.Info().Str("campaign_id", string(id)).Msg("Editor session mounted")
	return s, nil
}

func (m *Manager) retain(id model.CampaignID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	s.refs++
	return s, nil
}

func (m *Manager) storedName(ctx context.Context, id model.CampaignID) (string, error) {
	stored, err := m.repo.GetContent(ctx, id)
	switch {
	case errors.Is(err, repository.ErrCampaignNotFound):
		return m.defaultName, nil
	case err != nil:
		return "", fmt.Errorf("load campaign %s: %w", id, err)
	case stored.Content == nil || stored.Content.Campaign() == "":
		return m.defaultName, nil
	default:
		return stored.Content.Campaign(), nil
	}
}

func (m *Manager) mount(id model.CampaignID, name string) *Session {
	s := &Session{
		ID:       id,
		Slot:     surface.NewSlot(),
		Exchange: surface.NewExchange(),
	}
	s.SetName(name)

	opts := []saving.Option{
		saving.WithLogger(m.log.With().Str("campaign_id", string(id)).Logger()),
		saving.WithCampaignName(s.Name),
	}
	if m.exportTimeout > 0 {
		opts = append(opts, saving.WithExportTimeout(m.exportTimeout))
	}
	for _, obs := range m.observers {
		opts = append(opts, saving.WithObserver(obs))
	}
	if m.clients != nil {
		opts = append(opts, saving.WithObserver(statusObserver(m.clients, id)))
	}

	s.Orchestrator = saving.New(s.Slot, repository.PersisterFor(m.repo, id), opts...)
	return s
}

// Release drops one hold on id. The last release unmounts the session and
// abandons any save cycle still in flight.
func (m *Manager) Release(id model.CampaignID) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	s.refs--
	if s.refs > 0 {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	s.Orchestrator.Close()
	m.log.Info().Str("campaign_id", string(id)).Msg("Editor session unmounted")
}

// Get returns the mounted session of id without taking a hold on it.
func (m *Manager) Get(id model.CampaignID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Len returns the number of mounted sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close unmounts every session. Later Acquire calls fail with ErrManagerClosed.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[model.CampaignID]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Orchestrator.Close()
	}
}
