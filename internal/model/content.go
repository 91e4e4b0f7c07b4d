// Package model defines core data structures and types for the campaign editor.
package model

import (
	"encoding/json"
	"fmt"
)

type CampaignID string

// ContentType is the discriminator the legacy backend uses for campaign content.
type ContentType string

const (
	ContentTypeHTML   ContentType = "html"
	ContentTypeDesign ContentType = "unlayer"
)

// Design is the structured, re-editable payload produced by the design surface.
// It is opaque to this service and is passed through byte for byte.
type Design json.RawMessage

func (d Design) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

func (d *Design) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = nil
		return nil
	}
	*d = append((*d)[:0], data...)
	return nil
}

// Content is an exported snapshot of a campaign, ready to persist.
// The only implementations are HTMLContent and DesignContent.
type Content interface {
	Type() ContentType
	HTML() string
	Preview() string
	Campaign() string
}

type HTMLContent struct {
	Markup       string
	PreviewImage string
	CampaignName string
}

func (c HTMLContent) Type() ContentType { return ContentTypeHTML }
func (c HTMLContent) HTML() string      { return c.Markup }
func (c HTMLContent) Preview() string   { return c.PreviewImage }
func (c HTMLContent) Campaign() string  { return c.CampaignName }

type DesignContent struct {
	Markup       string
	Design       Design
	PreviewImage string
	CampaignName string
}

func (c DesignContent) Type() ContentType { return ContentTypeDesign }
func (c DesignContent) HTML() string      { return c.Markup }
func (c DesignContent) Preview() string   { return c.PreviewImage }
func (c DesignContent) Campaign() string  { return c.CampaignName }

// DesignOf returns the structured payload of c, or nil for plain HTML content.
func DesignOf(c Content) Design {
	if d, ok := c.(DesignContent); ok {
		return d.Design
	}
	return nil
}

// contentEnvelope is the wire shape shared with the legacy backend and the browser.
type contentEnvelope struct {
	HTMLContent  string      `json:"htmlContent"`
	Design       Design      `json:"design,omitempty"`
	PreviewImage string      `json:"previewImage"`
	CampaignName string      `json:"campaignName"`
	Type         ContentType `json:"type"`
}

func (c HTMLContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(contentEnvelope{
		HTMLContent:  c.Markup,
		PreviewImage: c.PreviewImage,
		CampaignName: c.CampaignName,
		Type:         ContentTypeHTML,
	})
}

func (c DesignContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(contentEnvelope{
		HTMLContent:  c.Markup,
		Design:       c.Design,
		PreviewImage: c.PreviewImage,
		CampaignName: c.CampaignName,
		Type:         ContentTypeDesign,
	})
}

// DecodeContent parses the wire representation produced by MarshalJSON.
func DecodeContent(data []byte) (Content, error) {
	var env contentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}

	switch env.Type {
	case ContentTypeHTML:
		return HTMLContent{
			Markup:       env.HTMLContent,
			PreviewImage: env.PreviewImage,
			CampaignName: env.CampaignName,
		}, nil
	case ContentTypeDesign:
		return DesignContent{
			Markup:       env.HTMLContent,
			Design:       env.Design,
			PreviewImage: env.PreviewImage,
			CampaignName: env.CampaignName,
		}, nil
	default:
		return nil, fmt.Errorf("unknown content type %q", env.Type)
	}
}
