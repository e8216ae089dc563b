package contentdto

// VideoIngestItem là một video trong payload fetch từ TikTok
type VideoIngestItem struct {
	VideoID      string      `json:"videoId" validate:"required"`
	Description  string      `json:"description,omitempty"`
	ShareURL     string      `json:"shareUrl,omitempty"`
	CreateTime   interface{} `json:"createTime"`
	ViewCount    int64       `json:"viewCount" validate:"gte=0"`
	LikeCount    int64       `json:"likeCount" validate:"gte=0"`
	CommentCount int64       `json:"commentCount" validate:"gte=0"`
	ShareCount   int64       `json:"shareCount" validate:"gte=0"`
}

// VideoIngestInput dữ liệu đầu vào của một lượt ingest video
type VideoIngestInput struct {
	OrganizationID string            `json:"organizationId" validate:"required"`
	Videos         []VideoIngestItem `json:"videos" validate:"required,dive"`
}
