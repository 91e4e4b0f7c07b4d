package model

import "time"

// StoredCampaign is a campaign as it was last persisted.
type StoredCampaign struct {
	ID      CampaignID
	Content Content

	// Hash of the compressed payload, used to skip writes of unchanged content.
	ContentHash string

	CreatedDate  time.Time
	ModifiedDate time.Time
}

// CampaignSummary is the listing view of a stored campaign.
type CampaignSummary struct {
	ID           CampaignID  `json:"id"`
	Name         string      `json:"name"`
	Type         ContentType `json:"type"`
	PreviewImage string      `json:"previewImage"`
	ModifiedDate time.Time   `json:"modifiedDate"`
}

func (c *StoredCampaign) Summary() CampaignSummary {
	s := CampaignSummary{
		ID:           c.ID,
		ModifiedDate: c.ModifiedDate,
	}
	if c.Content != nil {
		s.Name = c.Content.Campaign()
		s.Type = c.Content.Type()
		s.PreviewImage = c.Content.Preview()
	}
	return s
}

func (c *StoredCampaign) GetTitle() string {
	if c.Content != nil && c.Content.Campaign() != "" {
		return c.Content.Campaign()
	}
	return "Untitled - " + c.CreatedDate.Format("2006-01-02")
}
