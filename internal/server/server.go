// Package server is the HTTP surface of the campaign editor: stored campaigns,
// editor sessions with their event streams, the gallery proxy and settings.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/campaign-editor/internal/cache"
	"github.com/debemdeboas/campaign-editor/internal/editor"
	"github.com/debemdeboas/campaign-editor/internal/gallery"
	"github.com/debemdeboas/campaign-editor/internal/metrics"
	"github.com/debemdeboas/campaign-editor/internal/model"
	"github.com/debemdeboas/campaign-editor/internal/repository"
	"github.com/debemdeboas/campaign-editor/internal/routes"
	"github.com/debemdeboas/campaign-editor/internal/sse"
)

const (
	defaultKeepAlive   = 15 * time.Second
	maxUploadMemory    = 32 << 20
	defaultSourceStyle = "gruvbox"
)

type Option func(*Server)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

func WithGallery(g gallery.Gallery) Option {
	return func(s *Server) {
		s.gallery = g
	}
}

func WithSettings(q *cache.Query[model.EditorSettings]) Option {
	return func(s *Server) {
		s.settings = q
	}
}

// WithMetrics serves m at path.
func WithMetrics(m *metrics.Metrics, path string) Option {
	return func(s *Server) {
		s.metrics = m
		s.metricsPath = path
	}
}

func WithSourceStyle(style string) Option {
	return func(s *Server) {
		s.sourceStyle = style
	}
}

// WithExportTimeout bounds on-demand exports.
func WithExportTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.exportTimeout = d
	}
}

func WithKeepAlive(d time.Duration) Option {
	return func(s *Server) {
		s.keepAlive = d
	}
}

type Server struct {
	repo     repository.CampaignRepository
	sessions *editor.Manager
	clients  *sse.SSEClients

	gallery     gallery.Gallery
	settings    *cache.Query[model.EditorSettings]
	metrics     *metrics.Metrics
	metricsPath string

	sourceStyle   string
	exportTimeout time.Duration
	keepAlive     time.Duration

	log zerolog.Logger
}

func New(repo repository.CampaignRepository, sessions *editor.Manager, clients *sse.SSEClients, opts ...Option) *Server {
	s := &Server{
		repo:        repo,
		sessions:    sessions,
		clients:     clients,
		sourceStyle: defaultSourceStyle,
		keepAlive:   defaultKeepAlive,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(secureHeaders)

	r.Get(routes.HealthPath, s.serveHealth)

	r.Group(func(r chi.Router) {
		r.Use(noCache)

		r.Get(routes.APICampaigns, s.serveCampaignList)
		r.Get(routes.APICampaign, s.serveCampaign)
		r.Delete(routes.APICampaign, s.serveCampaignDelete)
		r.Get(routes.APICampaignSource, s.serveCampaignSource)
		r.Put(routes.APICampaignName, s.serveCampaignRename)

		r.Get(routes.APICampaignEvents, s.serveEvents)
		r.Post(routes.APICampaignSave, s.serveSave)
		r.Get(routes.APICampaignExport, s.serveExport)
		r.Post(routes.APICampaignReply, s.serveExportReply)

		r.Get(routes.APIImages, s.serveImageList)
		r.Post(routes.APIImages, s.serveImageUpload)
		r.Get(routes.APISettings, s.serveSettings)
	})

	r.Get(routes.StyleCSS, s.serveStyleCSS)

	if s.metrics != nil && s.metricsPath != "" {
		r.Method(http.MethodGet, s.metricsPath, s.metrics.Handler())
	}

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}
