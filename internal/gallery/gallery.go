// Package gallery serves the editor's image gallery from a pluggable backend.
package gallery

import (
	"context"
	"io"

	"github.com/debemdeboas/campaign-editor/internal/legacy"
	"github.com/debemdeboas/campaign-editor/internal/model"
)

type Query struct {
	SearchTerm   string `json:"searchTerm"`
	Continuation string `json:"continuation"`
}

// Page is one page of gallery images. An empty Continuation marks the last page.
type Page struct {
	Items        []model.ImageItem `json:"items"`
	Continuation string            `json:"continuation,omitempty"`
}

type Gallery interface {
	List(ctx context.Context, q Query) (Page, error)
	Upload(ctx context.Context, name string, r io.Reader, size int64) error
}

type LegacyGallery struct {
	client *legacy.Client
}

func NewLegacyGallery(client *legacy.Client) *LegacyGallery {
	return &LegacyGallery{client: client}
}

func (g *LegacyGallery) List(ctx context.Context, q Query) (Page, error) {
	page, err := g.client.GetImageGallery(ctx, q.SearchTerm, q.Continuation)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: page.Items, Continuation: page.Continuation}, nil
}

func (g *LegacyGallery) Upload(ctx context.Context, name string, r io.Reader, _ int64) error {
	return g.client.UploadImage(ctx, name, r)
}
