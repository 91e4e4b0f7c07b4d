package model

import "time"

type SortingProductsCriteria struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type EditorStore struct {
	Name                        string                    `json:"name"`
	PromotionCodeEnabled        bool                      `json:"promotionCodeEnabled"`
	PromotionCodeDynamicEnabled bool                      `json:"promotionCodeDynamicEnabled"`
	ProductsEnabled             bool                      `json:"productsEnabled"`
	SortingProductsCriteria     []SortingProductsCriteria `json:"sortingProductsCriteria"`
}

// EditorSettings are the account-level flags that shape the editor's tool set.
type EditorSettings struct {
	AbandonedCartCampaign     bool          `json:"abandonedCartCampaign"`
	VisitedProductsCampaign   bool          `json:"visitedProductsCampaign"`
	ConfirmationOrderCampaign bool          `json:"confirmationOrderCampaign"`
	PendingOrderCampaign      bool          `json:"pendingOrderCampaign"`
	BestSellingEnabled        bool          `json:"bestSellingEnabled"`
	NewProductsEnabled        bool          `json:"newProductsEnabled"`
	CrossSellingEnabled       bool          `json:"crossSellingEnabled"`
	RSSCampaign               bool          `json:"rssCampaign"`
	RSSShowPreview            bool          `json:"rssShowPreview"`
	Stores                    []EditorStore `json:"stores"`
}

// ImageItem is one entry of the remote image gallery.
type ImageItem struct {
	Name             string    `json:"name"`
	Extension        string    `json:"extension"`
	LastModifiedDate time.Time `json:"lastModifiedDate"`
	Size             int64     `json:"size"`
	URL              string    `json:"url"`
	ThumbnailURL     string    `json:"thumbnailUrl"`
	ThumbnailURL150  string    `json:"thumbnailUrl150"`
}
