package saving

import (
	"context"
	"sync"

	"github.com/debemdeboas/campaign-editor/internal/model"
	"github.com/debemdeboas/campaign-editor/internal/surface"
)

// fakeSurface answers exports with fixed values or errors.
type fakeSurface struct {
	markup     surface.MarkupExport
	preview    surface.PreviewExport
	markupErr  error
	previewErr error

	mu           sync.Mutex
	markupCalls  int
	previewCalls int
}

func (f *fakeSurface) ExportMarkup(ctx context.Context) (surface.MarkupExport, error) {
	f.mu.Lock()
	f.markupCalls++
	f.mu.Unlock()
	return f.markup, f.markupErr
}

func (f *fakeSurface) ExportPreview(ctx context.Context) (surface.PreviewExport, error) {
	f.mu.Lock()
	f.previewCalls++
	f.mu.Unlock()
	return f.preview, f.previewErr
}

func (f *fakeSurface) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markupCalls, f.previewCalls
}

// gatedSource blocks every Current call until released.
type gatedSource struct {
	release chan struct{}
	handle  surface.Surface
}

func newGatedSource(h surface.Surface) *gatedSource {
	return &gatedSource{release: make(chan struct{}), handle: h}
}

func (g *gatedSource) Current() surface.Surface {
	<-g.release
	return g.handle
}

// recordingPersister records every content it receives and answers from results.
type recordingPersister struct {
	mu       sync.Mutex
	received []model.Content
	results  chan error
}

func newRecordingPersister() *recordingPersister {
	return &recordingPersister{results: make(chan error, 16)}
}

func (p *recordingPersister) Persist(ctx context.Context, content model.Content) error {
	p.mu.Lock()
	p.received = append(p.received, content)
	p.mu.Unlock()

	select {
	case err := <-p.results:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *recordingPersister) contents() []model.Content {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Content(nil), p.received...)
}
