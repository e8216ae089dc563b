package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User đại diện cho người dùng (creator hoặc manager) thuộc một tổ chức
type User struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của người dùng

	FirebaseUID string `json:"firebaseUid" bson:"firebaseUid" index:"unique,sparse"` // Firebase UID dùng để xác thực
	Email       string `json:"email,omitempty" bson:"email,omitempty" index:"unique,sparse" validate:"omitempty,email"`
	Name        string `json:"name,omitempty" bson:"name,omitempty" validate:"omitempty,no_xss"` // Tên hiển thị

	// ===== ORGANIZATION =====
	OrganizationID primitive.ObjectID `json:"organizationId" bson:"organizationId" index:"single:1"` // Tổ chức mà người dùng thuộc về

	// ===== TIMESTAMPS =====
	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
