package gallery

import (
	"path"
	"time"

	"github.com/debemdeboas/campaign-editor/internal/model"
)

func imageItem(key, url string, size int64, modified time.Time) model.ImageItem {
	return model.ImageItem{
		Name:             path.Base(key),
		Extension:        path.Ext(key),
		LastModifiedDate: modified.UTC(),
		Size:             size,
		URL:              url,
		ThumbnailURL:     url,
		ThumbnailURL150:  url,
	}
}
