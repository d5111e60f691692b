package models

// MediaItem is one published post as returned by the media listing call.
// Fetched fresh per request, never persisted.
type MediaItem struct {
	ID               string `json:"id"`
	Caption          string `json:"caption,omitempty"`
	MediaType        string `json:"media_type"` // IMAGE, VIDEO, CAROUSEL_ALBUM
	MediaProductType string `json:"media_product_type,omitempty"`
	MediaURL         string `json:"media_url,omitempty"`
	ThumbnailURL     string `json:"thumbnail_url,omitempty"`
	Permalink        string `json:"permalink,omitempty"`
	Timestamp        string `json:"timestamp,omitempty"`
	LikeCount        int    `json:"like_count"`
	CommentsCount    int    `json:"comments_count"`
}

// IsReel reports whether the item is a short-form video post
func (m *MediaItem) IsReel() bool {
	return m.MediaProductType == "REELS"
}

// EnrichedMedia is a MediaItem decorated with per-post insight metrics.
// Insights is empty when every metric fetch for the item failed.
type EnrichedMedia struct {
	MediaItem
	Insights map[string]float64 `json:"insights"`
}

// FetchAttempt records one failed endpoint/field-set combination in the
// media resolution cascade
type FetchAttempt struct {
	Endpoint string `json:"endpoint"`
	Fields   string `json:"fields"`
	Message  string `json:"message"`
	Code     int    `json:"code"`
}
