package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/debemdeboas/campaign-editor/internal/cache"
	"github.com/debemdeboas/campaign-editor/internal/config"
	"github.com/debemdeboas/campaign-editor/internal/db"
	"github.com/debemdeboas/campaign-editor/internal/editor"
	"github.com/debemdeboas/campaign-editor/internal/gallery"
	"github.com/debemdeboas/campaign-editor/internal/legacy"
	"github.com/debemdeboas/campaign-editor/internal/logger"
	"github.com/debemdeboas/campaign-editor/internal/metrics"
	"github.com/debemdeboas/campaign-editor/internal/render"
	"github.com/debemdeboas/campaign-editor/internal/repository"
	"github.com/debemdeboas/campaign-editor/internal/server"
	"github.com/debemdeboas/campaign-editor/internal/sse"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file loaded")
	}

	cfg, err := config.LoadConfig(config.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, config.ErrLoadConfigFmt+"\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, config.SecretsFromEnv(), log); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

type app struct {
	sessions *editor.Manager
	handler  http.Handler
	closers  []func() error
}

func (a *app) Close() error {
	a.sessions.Close()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func setPackageLoggers(log zerolog.Logger) {
	config.SetLogger(logger.Component(log, "config"))
	db.SetLogger(logger.Component(log, "db"))
	repository.SetLogger(logger.Component(log, "repository"))
	render.SetLogger(logger.Component(log, "render"))
}

func newApp(ctx context.Context, cfg *config.Config, secrets config.Secrets, log zerolog.Logger) (*app, error) {
	setPackageLoggers(log)

	repo, closeRepo, err := repository.Open(cfg.Storage, secrets.RedisPassword)
	if err != nil {
		return nil, fmt.Errorf(config.ErrCreateRepositoryFmt, err)
	}
	a := &app{closers: []func() error{closeRepo}}

	legacyClient := legacy.NewClient(cfg.Gallery.Legacy.BaseURL,
		legacy.WithTimeout(cfg.Gallery.Legacy.Timeout()),
		legacy.WithSessionCookie(config.CookieLegacySession, secrets.LegacySession),
		legacy.WithLogger(logger.Component(log, "legacy")),
	)

	images, err := openGallery(ctx, cfg, secrets, legacyClient)
	if err != nil {
		_ = closeRepo()
		return nil, fmt.Errorf(config.ErrCreateGalleryFmt, err)
	}

	clients := sse.NewSSEClients()
	editorOpts := []editor.Option{
		editor.WithLogger(logger.Component(log, "editor")),
		editor.WithClients(clients),
		editor.WithExportTimeout(cfg.Editor.ExportTimeout()),
		editor.WithDefaultName(cfg.Editor.DefaultCampaignName),
	}

	serverOpts := []server.Option{
		server.WithLogger(logger.Component(log, "server")),
		server.WithGallery(images),
		server.WithSettings(cache.NewQuery(legacyClient.GetEditorSettings)),
		server.WithSourceStyle(cfg.Render.SourceStyle),
		server.WithExportTimeout(cfg.Editor.ExportTimeout()),
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		editorOpts = append(editorOpts, editor.WithObserver(m.Observer()))
		serverOpts = append(serverOpts, server.WithMetrics(m, cfg.Metrics.Path))
	}

	a.sessions = editor.NewManager(repo, editorOpts...)
	if m != nil {
		m.RegisterSessions(a.sessions.Len)
	}

	a.handler = server.New(repo, a.sessions, clients, serverOpts...).Handler()
	return a, nil
}

func openGallery(ctx context.Context, cfg *config.Config, secrets config.Secrets, client *legacy.Client) (gallery.Gallery, error) {
	switch cfg.Gallery.Backend {
	case config.GalleryS3:
		s3cfg := cfg.Gallery.S3
		return gallery.NewS3Gallery(ctx, gallery.S3Options{
			Bucket:          s3cfg.Bucket,
			Endpoint:        s3cfg.Endpoint,
			Region:          s3cfg.Region,
			PublicURL:       s3cfg.PublicURL,
			AccessKeyID:     secrets.S3AccessKeyID,
			AccessKeySecret: secrets.S3AccessKeySecret,
			PageSize:        s3cfg.PageSize,
		})
	case config.GalleryLegacy:
		return gallery.NewLegacyGallery(client), nil
	}
	return nil, fmt.Errorf("unsupported gallery backend %q", cfg.Gallery.Backend)
}

// run serves until ctx is done. Open event streams end with ctx, so shutdown
// does not wait on them.
func run(ctx context.Context, cfg *config.Config, secrets config.Secrets, log zerolog.Logger) error {
	a, err := newApp(ctx, cfg, secrets, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing storage")
		}
	}()

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage.Backend).Str("gallery", cfg.Gallery.Backend).Msg("Server listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
