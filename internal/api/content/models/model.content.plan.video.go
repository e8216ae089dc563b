package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanVideo là tham chiếu từ content plan tới video gốc của tổ chức.
// Rollup theo plan đọc counters từ video gốc qua OriginalVideoRef, video gốc
// đã bị xóa thì tham chiếu được bỏ qua.
type PlanVideo struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của tham chiếu

	// ===== OWNERSHIP =====
	PlanID         primitive.ObjectID `json:"planId" bson:"planId" index:"single:1;compound:plan_video_unique"` // Content plan chứa video
	OrganizationID primitive.ObjectID `json:"organizationId" bson:"organizationId" index:"single:1"`            // Tổ chức sở hữu

	// ===== REFERENCE =====
	OriginalVideoRef string `json:"originalVideoRef" bson:"originalVideoRef" index:"compound:plan_video_unique"` // VideoID của video gốc trong tổ chức

	// ===== POST INFO =====
	PostDate int64 `json:"postDate" bson:"postDate" index:"single:1"` // Ngày đăng video (UnixMilli), dùng tính completion

	// ===== TIMESTAMPS =====
	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
