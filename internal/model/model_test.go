package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentWireFormat(t *testing.T) {
	t.Run("html content has no design", func(t *testing.T) {
		data, err := json.Marshal(HTMLContent{Markup: "m", PreviewImage: "p", CampaignName: "n"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"htmlContent":"m","previewImage":"p","campaignName":"n","type":"html"}`, string(data))
	})

	t.Run("design is passed through verbatim", func(t *testing.T) {
		c := DesignContent{Markup: "m", Design: Design(`{"body":{"rows":[1,2]}}`)}
		data, err := json.Marshal(c)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"design":{"body":{"rows":[1,2]}}`)
		assert.Contains(t, string(data), `"type":"unlayer"`)

		decoded, err := DecodeContent(data)
		require.NoError(t, err)
		assert.Equal(t, c, decoded)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := DecodeContent([]byte(`{"type":"mjml"}`))
		assert.ErrorContains(t, err, "mjml")
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := DecodeContent([]byte(`{`))
		assert.Error(t, err)
	})
}

func TestDesign(t *testing.T) {
	data, err := json.Marshal(Design(nil))
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var d Design
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.Nil(t, d)

	assert.Nil(t, DesignOf(HTMLContent{}))
	assert.Equal(t, Design(`{}`), DesignOf(DesignContent{Design: Design(`{}`)}))
}

func TestStoredCampaign(t *testing.T) {
	created := time.Date(2024, time.June, 2, 8, 0, 0, 0, time.UTC)
	modified := created.Add(time.Hour)

	stored := &StoredCampaign{
		ID:           "c1",
		Content:      DesignContent{CampaignName: "Launch", PreviewImage: "p.png"},
		CreatedDate:  created,
		ModifiedDate: modified,
	}

	assert.Equal(t, CampaignSummary{
		ID:           "c1",
		Name:         "Launch",
		Type:         ContentTypeDesign,
		PreviewImage: "p.png",
		ModifiedDate: modified,
	}, stored.Summary())
	assert.Equal(t, "Launch", stored.GetTitle())

	untitled := &StoredCampaign{ID: "c2", CreatedDate: created}
	assert.Equal(t, "Untitled - 2024-06-02", untitled.GetTitle())
	assert.Equal(t, CampaignSummary{ID: "c2"}, untitled.Summary())
}
