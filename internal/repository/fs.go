package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/debemdeboas/campaign-editor/internal/model"
	"github.com/debemdeboas/campaign-editor/internal/render"
	"github.com/debemdeboas/campaign-editor/internal/util"
)

const (
	extHTML     = ".html"
	extMarkdown = ".md"
	extMeta     = ".toml"
	extDesign   = ".design.json"
)

// importNamespace seeds the IDs of imported campaigns that do not declare one.
var importNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("campaign-editor/import"))

// CampaignFile is a campaign read from a source directory.
type CampaignFile struct {
	ID           model.CampaignID
	Path         string
	Content      model.Content
	ModifiedDate time.Time
}

// ImportID is the stable ID given to a source file named name (without
// extension) when its metadata has none.
func ImportID(name string) model.CampaignID {
	return model.CampaignID(uuid.NewSHA1(importNamespace, []byte(name)).String())
}

// ReadCampaignDir reads every .html and .md campaign in dir, newest first.
// Markdown is rendered to HTML with code highlighted in style. Metadata comes
// from %%% front matter and from an optional <name>.toml sidecar, which wins.
// A <name>.design.json file turns the campaign into design content.
func ReadCampaignDir(dir, style string) ([]CampaignFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var campaigns []CampaignFile
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != extHTML && ext != extMarkdown) {
			continue
		}

		campaign, err := readCampaignFile(dir, entry, style)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		campaigns = append(campaigns, campaign)
	}

	slices.SortStableFunc(campaigns, func(a, b CampaignFile) int {
		return -a.ModifiedDate.Compare(b.ModifiedDate)
	})

	return campaigns, nil
}

func readCampaignFile(dir string, entry fs.DirEntry, style string) (CampaignFile, error) {
	path := filepath.Join(dir, entry.Name())
	ext := filepath.Ext(entry.Name())
	name := strings.TrimSuffix(entry.Name(), ext)

	source, err := os.ReadFile(path)
	if err != nil {
		return CampaignFile{}, err
	}

	info, err := entry.Info()
	if err != nil {
		return CampaignFile{}, err
	}

	meta := &util.CampaignMeta{}
	markup := string(source)
	if ext == extMarkdown {
		var body []byte
		meta, body, err = util.SplitFrontMatter(source)
		if err != nil {
			return CampaignFile{}, err
		}
		markup = string(render.RenderMarkdown(body, style))
	}

	if err := mergeSidecar(meta, filepath.Join(dir, name+extMeta)); err != nil {
		return CampaignFile{}, err
	}

	design, err := os.ReadFile(filepath.Join(dir, name+extDesign))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return CampaignFile{}, err
	}

	campaignName := meta.Name
	if campaignName == "" {
		campaignName = name
	}

	var content model.Content = model.HTMLContent{
		Markup:       markup,
		PreviewImage: meta.PreviewImage,
		CampaignName: campaignName,
	}
	if len(design) > 0 {
		content = model.DesignContent{
			Markup:       markup,
			Design:       model.Design(design),
			PreviewImage: meta.PreviewImage,
			CampaignName: campaignName,
		}
	}

	id := model.CampaignID(meta.ID)
	if id == "" {
		id = ImportID(name)
	}

	modified := info.ModTime()
	if !meta.Date.IsZero() {
		modified = meta.Date
	}

	return CampaignFile{
		ID:           id,
		Path:         path,
		Content:      content,
		ModifiedDate: modified,
	}, nil
}

func mergeSidecar(meta *util.CampaignMeta, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	sidecar, err := util.DecodeMeta(data)
	if err != nil {
		return err
	}

	if sidecar.ID != "" {
		meta.ID = sidecar.ID
	}
	if sidecar.Name != "" {
		meta.Name = sidecar.Name
	}
	if sidecar.PreviewImage != "" {
		meta.PreviewImage = sidecar.PreviewImage
	}
	if !sidecar.Date.IsZero() {
		meta.Date = sidecar.Date
	}
	return nil
}

// ImportCampaignDir stores every campaign of dir in repo.
func ImportCampaignDir(ctx context.Context, repo CampaignRepository, dir, style string) ([]CampaignFile, error) {
	campaigns, err := ReadCampaignDir(dir, style)
	if err != nil {
		return nil, err
	}

	for _, c := range campaigns {
		if err := repo.SaveContent(ctx, c.ID, c.Content); err != nil {
			return nil, fmt.Errorf("import %s: %w", c.Path, err)
		}
		repoLogger.Info().
			Str("campaign_id", string(c.ID)).
			Str("path", c.Path).
			Msg("Campaign imported")
	}

	return campaigns, nil
}
