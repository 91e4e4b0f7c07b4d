// Package surface describes the design-surface capability and keeps track of the
// handle currently bound to an editor session.
package surface

import (
	"context"
	"sync"

	"github.com/debemdeboas/campaign-editor/internal/model"
)

type MarkupExport struct {
	Markup string       `json:"markup"`
	Design model.Design `json:"design,omitempty"`
}

type PreviewExport struct {
	PreviewImage string       `json:"previewImage"`
	Design       model.Design `json:"design,omitempty"`
}

// Surface is a live handle to the WYSIWYG widget. Both exports may fail with an
// implementation-defined error.
type Surface interface {
	ExportMarkup(ctx context.Context) (MarkupExport, error)
	ExportPreview(ctx context.Context) (PreviewExport, error)
}

// Slot holds the handle bound to a session. The handle may be absent, and it may be
// replaced at any time when the widget remounts.
type Slot struct {
	mu      sync.RWMutex
	current Surface
	epoch   uint64
}

func NewSlot() *Slot {
	return &Slot{}
}

// Current returns the bound handle, or nil.
func (s *Slot) Current() Surface {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Bind replaces the bound handle. The returned function unbinds it, unless another
// handle has been bound in the meantime.
func (s *Slot) Bind(h Surface) (unbind func()) {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.current = h
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch == epoch {
			s.current = nil
		}
	}
}
