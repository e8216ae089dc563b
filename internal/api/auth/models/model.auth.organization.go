package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization đại diện cho một tổ chức quản lý creator
// Mọi dữ liệu content plan, video và số liệu đều thuộc về một tổ chức
type Organization struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của tổ chức

	Name string `json:"name" bson:"name" validate:"required,no_xss"` // Tên tổ chức

	// ===== ROLLUP STATE =====
	MostRecentHourly string `json:"mostRecentHourly,omitempty" bson:"mostRecentHourly,omitempty"` // Key của entry theo giờ mới nhất

	// ===== TIMESTAMPS =====
	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
