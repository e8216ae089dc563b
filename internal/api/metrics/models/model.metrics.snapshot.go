package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MetricSnapshot là một lát cắt số liệu của video tại thời điểm ingest.
// Snapshot chỉ giữ trong thời gian ngắn (mặc định 48 giờ) để phục vụ
// rollup theo giờ, sau đó bị retention worker dọn đi.
type MetricSnapshot struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của snapshot

	// ===== OWNERSHIP =====
	OrganizationID primitive.ObjectID `json:"organizationId" bson:"organizationId" index:"compound:org_video_ts"` // Tổ chức sở hữu
	VideoRef       string             `json:"videoRef" bson:"videoRef" index:"compound:org_video_ts"`             // VideoID của video nguồn

	// ===== COUNTERS =====
	ViewCount    int64 `json:"viewCount" bson:"viewCount"`
	LikeCount    int64 `json:"likeCount" bson:"likeCount"`
	CommentCount int64 `json:"commentCount" bson:"commentCount"`
	ShareCount   int64 `json:"shareCount" bson:"shareCount"`

	NewViewCount int64 `json:"newViewCount" bson:"newViewCount"` // Delta lượt xem so với snapshot liền trước của video

	// ===== TIMESTAMPS =====
	Timestamp int64 `json:"timestamp" bson:"timestamp" index:"single:1;compound:org_video_ts"` // Thời điểm ingest (UnixMilli)
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`                                        // Thời gian tạo
}

// MetricDailyClose là số liệu chốt cuối ngày của một video, được archive
// từ snapshot cuối cùng của ngày hôm trước. Khác với snapshot, daily close
// được giữ lâu dài làm lịch sử.
type MetricDailyClose struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của bản ghi

	// ===== OWNERSHIP =====
	OrganizationID primitive.ObjectID `json:"organizationId" bson:"organizationId" index:"compound:org_video_date_unique"` // Tổ chức sở hữu
	VideoRef       string             `json:"videoRef" bson:"videoRef" index:"compound:org_video_date_unique"`             // VideoID của video nguồn
	DateKey        string             `json:"dateKey" bson:"dateKey" index:"compound:org_video_date_unique"`               // Ngày chốt, dạng yyyymmdd

	// ===== COUNTERS =====
	ViewCount    int64 `json:"viewCount" bson:"viewCount"`
	LikeCount    int64 `json:"likeCount" bson:"likeCount"`
	CommentCount int64 `json:"commentCount" bson:"commentCount"`
	ShareCount   int64 `json:"shareCount" bson:"shareCount"`

	// ===== TIMESTAMPS =====
	Timestamp int64 `json:"timestamp" bson:"timestamp" index:"single:1"` // Thời điểm của snapshot được chốt
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`                  // Thời gian tạo
}
