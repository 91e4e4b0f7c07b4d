package saving

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/debemdeboas/campaign-editor/internal/model"
	"github.com/debemdeboas/campaign-editor/internal/surface"
)

// Export takes a snapshot of the design surface. The markup and preview exports run
// concurrently; the first failure is returned as is.
func Export(ctx context.Context, s surface.Surface, campaignName string) (model.Content, error) {
	var (
		markup  surface.MarkupExport
		preview surface.PreviewExport
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		markup, err = s.ExportMarkup(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		preview, err = s.ExportPreview(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	design := markup.Design
	if len(design) == 0 {
		design = preview.Design
	}

	if len(design) > 0 {
		return model.DesignContent{
			Markup:       markup.Markup,
			Design:       design,
			PreviewImage: preview.PreviewImage,
			CampaignName: campaignName,
		}, nil
	}

	return model.HTMLContent{
		Markup:       markup.Markup,
		PreviewImage: preview.PreviewImage,
		CampaignName: campaignName,
	}, nil
}
