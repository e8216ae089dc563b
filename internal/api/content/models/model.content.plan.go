package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanStatus định nghĩa trạng thái của content plan
const (
	PlanStatusActive    = "active"    // Đang chạy
	PlanStatusCompleted = "completed" // Đã hết hạn và đóng băng sang historical
)

// ContentPlan đại diện cho một content plan của creator trong tổ chức
// Plan có ngày bắt đầu và số ngày chạy, hết hạn khi đã qua đủ số ngày
type ContentPlan struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của content plan

	// ===== OWNERSHIP =====
	OrganizationID primitive.ObjectID `json:"organizationId" bson:"organizationId" index:"single:1;compound:org_user_plan"` // Tổ chức sở hữu plan
	UserID         primitive.ObjectID `json:"userId" bson:"userId" index:"compound:org_user_plan"`                          // Creator sở hữu plan
	ManagerID      string             `json:"managerId,omitempty" bson:"managerId,omitempty"`                               // Manager phụ trách plan

	// ===== PLAN TERMS =====
	DateCreated    int64   `json:"dateCreated" bson:"dateCreated"`                       // Ngày tạo plan (UnixMilli)
	StartDate      int64   `json:"startDate" bson:"startDate" index:"single:1"`          // Ngày bắt đầu chạy (UnixMilli)
	NumberOfDays   int     `json:"numberOfDays" bson:"numberOfDays" validate:"gte=0"`    // Số ngày plan chạy
	NumberOfVideos int     `json:"numberOfVideos" bson:"numberOfVideos" validate:"gte=0"` // Số video cam kết
	RequireW9      bool    `json:"requireW9" bson:"requireW9"`                           // Có yêu cầu form W9 hay không
	RetainerAmount float64 `json:"retainerAmount,omitempty" bson:"retainerAmount,omitempty"` // Khoản retainer

	// ===== STATUS =====
	Status string `json:"status" bson:"status" index:"single:1"` // Trạng thái: active, completed

	// ===== ROLLUP STATE =====
	MostRecentHourly string `json:"mostRecentHourly,omitempty" bson:"mostRecentHourly,omitempty"` // Key của entry theo giờ mới nhất

	// ===== TIMESTAMPS =====
	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
