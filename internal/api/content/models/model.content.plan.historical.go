package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HistoricalScope định nghĩa phạm vi của bản ghi historical
const (
	HistoricalScopeOrganization = "organization" // Bản ghi lưu dưới tổ chức
	HistoricalScopeUser         = "user"         // Bản ghi lưu dưới creator
)

// HistoricalContentPlan là bản ghi đóng băng của content plan sau khi hết hạn.
// Chỉ giữ lại các field trong danh sách cho phép, số liệu cuối cùng và
// completion percentage. Timestamps được lưu dạng chuỗi ISO để bản ghi
// tự mô tả, không phụ thuộc driver.
type HistoricalContentPlan struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của bản ghi historical

	// ===== SOURCE PLAN =====
	PlanID primitive.ObjectID `json:"planId" bson:"planId" index:"single:1"` // ID của plan gốc
	Scope  string             `json:"scope" bson:"scope" index:"single:1"`   // organization hoặc user

	// ===== OWNERSHIP =====
	OrganizationID primitive.ObjectID `json:"organizationId" bson:"organizationId" index:"single:1"` // Tổ chức sở hữu
	UserID         primitive.ObjectID `json:"userId,omitempty" bson:"userId,omitempty"`              // Creator (bản ghi scope organization)

	// ===== FROZEN FIELDS =====
	// Snapshot các field được phép của plan tại thời điểm đóng băng,
	// timestamps đã chuyển thành chuỗi ISO
	Fields map[string]interface{} `json:"fields" bson:"fields"`

	// ===== FINAL METRICS =====
	CompletionPercentage float64                `json:"completionPercentage" bson:"completionPercentage"` // Phần trăm hoàn thành cam kết đăng bài
	Metrics              map[string]interface{} `json:"metrics,omitempty" bson:"metrics,omitempty"`       // Số liệu cuối cùng từ entry theo ngày mới nhất

	// ===== TIMESTAMPS =====
	ArchivedAt int64 `json:"archivedAt" bson:"archivedAt"` // Thời điểm đóng băng
}
