package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video đại diện cho một video TikTok được theo dõi trong tổ chức
// Counters trên document này là giá trị tuyệt đối mới nhất lấy từ nguồn
type Video struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID nội bộ

	VideoID string `json:"videoId" bson:"videoId" index:"compound:org_video_unique"` // ID video từ nguồn (TikTok)

	// ===== OWNERSHIP =====
	OrganizationID primitive.ObjectID `json:"organizationId" bson:"organizationId" index:"single:1;compound:org_video_unique"` // Tổ chức sở hữu video
	UserID         primitive.ObjectID `json:"userId,omitempty" bson:"userId,omitempty" index:"single:1"`                       // Creator đăng video

	// ===== SOURCE METADATA =====
	Description string `json:"description,omitempty" bson:"description,omitempty"` // Mô tả video
	ShareURL    string `json:"shareUrl,omitempty" bson:"shareUrl,omitempty"`       // Link chia sẻ
	CreateTime  int64  `json:"createTime" bson:"createTime" index:"single:1"`      // Thời điểm đăng video (UnixMilli)

	// ===== TRACKING FLAGS =====
	IsInPlan  bool `json:"isInPlan" bson:"isInPlan"`   // Video có thuộc content plan nào không
	IsUp      bool `json:"isUp" bson:"isUp"`           // Video còn hiện diện trong lần fetch gần nhất
	IsTracked bool `json:"isTracked" bson:"isTracked"` // Video còn được theo dõi số liệu

	// ===== LATEST COUNTERS =====
	ViewCount    int64 `json:"viewCount" bson:"viewCount"`       // Lượt xem tuyệt đối mới nhất
	LikeCount    int64 `json:"likeCount" bson:"likeCount"`       // Lượt thích tuyệt đối mới nhất
	CommentCount int64 `json:"commentCount" bson:"commentCount"` // Lượt bình luận tuyệt đối mới nhất
	ShareCount   int64 `json:"shareCount" bson:"shareCount"`     // Lượt chia sẻ tuyệt đối mới nhất

	// ===== TIMESTAMPS =====
	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
