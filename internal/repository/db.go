package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/debemdeboas/campaign-editor/internal/db"
	"github.com/debemdeboas/campaign-editor/internal/model"
	"github.com/debemdeboas/campaign-editor/internal/util/compression"
)

const (
	selectContentHash = `SELECT content_hash FROM campaigns WHERE id = ?`

	upsertCampaign = `
INSERT INTO campaigns (id, name, content_type, markup, design, preview_image, content_hash, created_at, modified_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    content_type = excluded.content_type,
    markup = excluded.markup,
    design = excluded.design,
    preview_image = excluded.preview_image,
    content_hash = excluded.content_hash,
    modified_at = excluded.modified_at`

	selectCampaign = `
SELECT name, content_type, markup, design, preview_image, content_hash, created_at, modified_at
FROM campaigns WHERE id = ?`

	selectSummaries = `
SELECT id, name, content_type, preview_image, modified_at
FROM campaigns ORDER BY modified_at DESC, id`

	deleteCampaign = `DELETE FROM campaigns WHERE id = ?`
)

type DBCampaignRepository struct { // implements CampaignRepository
	db         db.Db
	compressor compression.Compressor

	now func() time.Time
}

func NewDBCampaignRepository(db db.Db, compressor compression.Compressor) *DBCampaignRepository {
	if compressor == nil {
		compressor = compression.ZstdCompressor{}
	}

	return &DBCampaignRepository{
		db:         db,
		compressor: compressor,

		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *DBCampaignRepository) SaveContent(ctx context.Context, id model.CampaignID, content model.Content) error {
	if content == nil {
		return fmt.Errorf("error saving campaign %s: no content", id)
	}

	hash, err := contentHash(content)
	if err != nil {
		return err
	}

	var stored sql.NullString
	err = r.db.QueryRow(ctx, selectContentHash, id).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("error reading content hash: %w", err)
	}
	if stored.Valid && stored.String == hash {
		repoLogger.Debug().Str("campaign_id", string(id)).Msg("Campaign content unchanged, skipping write")
		return nil
	}

	markup, err := r.compressor.Compress([]byte(content.HTML()))
	if err != nil {
		return fmt.Errorf("error compressing markup: %w", err)
	}

	var design []byte
	if d := model.DesignOf(content); len(d) > 0 {
		design, err = r.compressor.Compress(d)
		if err != nil {
			return fmt.Errorf("error compressing design: %w", err)
		}
	}

	now := r.now()
	res, err := r.db.Exec(ctx, upsertCampaign,
		id, content.Campaign(), string(content.Type()), markup, design, content.Preview(), hash, now, now,
	)
	if err != nil {
		return fmt.Errorf("error saving campaign: %w", err)
	}

	repoLogger.Debug().Interface("result", res).Str("campaign_id", string(id)).Msg("Campaign saved")

	return nil
}

func (r *DBCampaignRepository) GetContent(ctx context.Context, id model.CampaignID) (*model.StoredCampaign, error) {
	var (
		name, contentType, preview string
		markup, design             []byte
		hash                       sql.NullString
	)
	campaign := &model.StoredCampaign{ID: id}

	err := r.db.QueryRow(ctx, selectCampaign, id).Scan(
		&name, &contentType, &markup, &design, &preview, &hash, &campaign.CreatedDate, &campaign.ModifiedDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying campaign: %w", err)
	}

	html, err := r.compressor.Decompress(markup)
	if err != nil {
		return nil, fmt.Errorf("error decompressing markup: %w", err)
	}

	switch model.ContentType(contentType) {
	case model.ContentTypeHTML:
		campaign.Content = model.HTMLContent{
			Markup:       string(html),
			PreviewImage: preview,
			CampaignName: name,
		}
	case model.ContentTypeDesign:
		var d model.Design
		if len(design) > 0 {
			d, err = r.compressor.Decompress(design)
			if err != nil {
				return nil, fmt.Errorf("error decompressing design: %w", err)
			}
		}
		campaign.Content = model.DesignContent{
			Markup:       string(html),
			Design:       d,
			PreviewImage: preview,
			CampaignName: name,
		}
	default:
		return nil, fmt.Errorf("campaign %s has unknown content type %q", id, contentType)
	}

	campaign.ContentHash = hash.String
	return campaign, nil
}

func (r *DBCampaignRepository) ListCampaigns(ctx context.Context) ([]model.CampaignSummary, error) {
	rows, err := r.db.Query(ctx, selectSummaries)
	if err != nil {
		return nil, fmt.Errorf("error querying campaigns: %w", err)
	}
	defer rows.Close()

	summaries := make([]model.CampaignSummary, 0)
	for rows.Next() {
		var s model.CampaignSummary
		var contentType string

		if err := rows.Scan(&s.ID, &s.Name, &contentType, &s.PreviewImage, &s.ModifiedDate); err != nil {
			return nil, fmt.Errorf("error scanning campaign: %w", err)
		}
		s.Type = model.ContentType(contentType)
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

func (r *DBCampaignRepository) DeleteCampaign(ctx context.Context, id model.CampaignID) error {
	res, err := r.db.Exec(ctx, deleteCampaign, id)
	if err != nil {
		return fmt.Errorf("error deleting campaign: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting campaign: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}
