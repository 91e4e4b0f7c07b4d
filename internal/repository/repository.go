// Package repository stores exported campaign content.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/campaign-editor/internal/model"
	"github.com/debemdeboas/campaign-editor/internal/saving"
	"github.com/debemdeboas/campaign-editor/internal/util"
)

var ErrCampaignNotFound = errors.New("campaign not found")

type CampaignRepository interface {
	// SaveContent creates or replaces the stored content of a campaign.
	// Writing content identical to what is stored is a no-op.
	SaveContent(ctx context.Context, id model.CampaignID, content model.Content) error
	GetContent(ctx context.Context, id model.CampaignID) (*model.StoredCampaign, error)
	// ListCampaigns returns summaries, most recently modified first.
	ListCampaigns(ctx context.Context) ([]model.CampaignSummary, error)
	DeleteCampaign(ctx context.Context, id model.CampaignID) error
}

var repoLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}

// PersisterFor binds a campaign to repo as the save target of its editor session.
func PersisterFor(repo CampaignRepository, id model.CampaignID) saving.Persister {
	return saving.PersisterFunc(func(ctx context.Context, content model.Content) error {
		return repo.SaveContent(ctx, id, content)
	})
}

func notFound(id model.CampaignID) error {
	return fmt.Errorf("%w: %s", ErrCampaignNotFound, id)
}

// contentHash fingerprints the wire form of content.
func contentHash(content model.Content) (string, error) {
	data, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("error encoding content: %w", err)
	}
	return util.ContentHash(data), nil
}
