// Package util provides content hashing and campaign metadata parsing.
package util

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gomarkdown/markdown"
)

// CampaignMeta is the TOML metadata attached to an imported campaign, either as
// front matter in a markdown source or as a sidecar file.
type CampaignMeta struct {
	ID           string    `toml:"id"`
	Name         string    `toml:"name"`
	PreviewImage string    `toml:"preview_image"`
	Date         time.Time `toml:"date"`

	// Consumed is the number of leading bytes taken by front matter.
	Consumed int `toml:"-"`
}

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func ContentHashString(content string) string {
	return ContentHash([]byte(content))
}

// DecodeMeta parses a standalone TOML metadata document.
func DecodeMeta(data []byte) (*CampaignMeta, error) {
	meta := &CampaignMeta{}
	if _, err := toml.Decode(string(data), meta); err != nil {
		return nil, fmt.Errorf("failed to decode campaign metadata: %w", err)
	}
	return meta, nil
}

// GetFrontMatter reads the %%%-delimited TOML block at the top of md.
func GetFrontMatter(md []byte) (*CampaignMeta, error) {
	md = markdown.NormalizeNewlines(md)
	md = bytes.TrimLeft(md, "\n \t\r")

	delimiter := []byte("%%%")

	if len(md) < 2*len(delimiter) {
		return nil, fmt.Errorf("invalid front matter format")
	}

	if !bytes.HasPrefix(md, delimiter) {
		return nil, fmt.Errorf("invalid front matter format")
	}

	second := bytes.Index(md[len(delimiter):], delimiter)
	if second == -1 {
		return nil, fmt.Errorf("invalid front matter format")
	}

	end := second + 2*len(delimiter) + 1
	if end > len(md) {
		return nil, fmt.Errorf("invalid front matter format")
	}

	meta, err := DecodeMeta(md[len(delimiter) : end-len(delimiter)-1])
	if err != nil {
		return nil, err
	}
	meta.Consumed = end

	return meta, nil
}

// SplitFrontMatter separates optional front matter from the markdown body.
// A document without front matter yields empty metadata and the whole input.
func SplitFrontMatter(md []byte) (*CampaignMeta, []byte, error) {
	trimmed := bytes.TrimLeft(markdown.NormalizeNewlines(md), "\n \t\r")
	if !bytes.HasPrefix(trimmed, []byte("%%%")) {
		return &CampaignMeta{}, md, nil
	}

	meta, err := GetFrontMatter(trimmed)
	if err != nil {
		return nil, nil, err
	}
	return meta, trimmed[meta.Consumed:], nil
}
