package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Granularity định nghĩa các mức tổng hợp số liệu
type Granularity string

const (
	GranularityHourly    Granularity = "hourly"    // Entry theo giờ, key yyyymmdd-hhmm
	GranularityDaily     Granularity = "daily"     // Entry theo ngày, key yyyymmdd
	GranularityWeekly    Granularity = "weekly"    // Cửa sổ trượt 7 ngày, một document duy nhất
	GranularityMonthly   Granularity = "monthly"   // Cửa sổ trượt 30 ngày, một document duy nhất
	GranularityQuarterly Granularity = "quarterly" // Cửa sổ trượt 90 ngày, một document duy nhất
)

// WindowDays trả về độ rộng cửa sổ trượt (ngày) của các granularity dạng period.
// Granularity hourly/daily không có cửa sổ, trả về 0.
func (g Granularity) WindowDays() int {
	switch g {
	case GranularityWeekly:
		return 7
	case GranularityMonthly:
		return 30
	case GranularityQuarterly:
		return 90
	default:
		return 0
	}
}

// IsPeriod cho biết granularity có phải dạng cửa sổ trượt hay không
func (g Granularity) IsPeriod() bool {
	return g.WindowDays() > 0
}

// OwnerScope định nghĩa cấp sở hữu của một chuỗi rollup
const (
	OwnerScopeOrganization = "organization" // Rollup gộp toàn bộ video của tổ chức
	OwnerScopePlan         = "plan"         // Rollup gộp video thuộc một content plan
)

// RollupEntry là một bản ghi tổng hợp tại một thời điểm.
// Counters là giá trị tuyệt đối, các field New* là delta so với mốc trước đó
// và không bao giờ âm.
type RollupEntry struct {
	PeriodKey string `json:"periodKey" bson:"periodKey"` // Key của entry (yyyymmdd-hhmm hoặc yyyymmdd)
	Timestamp int64  `json:"timestamp" bson:"timestamp"` // Thời điểm chốt số liệu (UnixMilli)

	// ===== ABSOLUTE COUNTERS =====
	ViewCount    int64 `json:"viewCount" bson:"viewCount"`
	LikeCount    int64 `json:"likeCount" bson:"likeCount"`
	CommentCount int64 `json:"commentCount" bson:"commentCount"`
	ShareCount   int64 `json:"shareCount" bson:"shareCount"`

	// ===== DELTAS =====
	NewViewCount    int64 `json:"newViewCount" bson:"newViewCount"`                           // Delta lượt xem so với mốc trước
	NewLikeCount    int64 `json:"newLikeCount,omitempty" bson:"newLikeCount,omitempty"`       // Delta lượt thích (chỉ period)
	NewCommentCount int64 `json:"newCommentCount,omitempty" bson:"newCommentCount,omitempty"` // Delta bình luận (chỉ period)
	NewShareCount   int64 `json:"newShareCount,omitempty" bson:"newShareCount,omitempty"`     // Delta chia sẻ (chỉ period)

	// ===== PERIOD WINDOW =====
	PeriodStart  int64 `json:"periodStart,omitempty" bson:"periodStart,omitempty"`   // Đầu cửa sổ trượt (chỉ period)
	PeriodEnd    int64 `json:"periodEnd,omitempty" bson:"periodEnd,omitempty"`       // Cuối cửa sổ trượt (chỉ period)
	EarliestDate int64 `json:"earliestDate,omitempty" bson:"earliestDate,omitempty"` // Ngày của entry đầu tiên trong cửa sổ (chỉ period)
}

// RollupDoc là document lưu rollup trong MongoDB.
// PeriodKey rỗng đánh dấu document container của chuỗi (giữ MostRecentEntry),
// các granularity dạng period chỉ có duy nhất document container.
type RollupDoc struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của document

	// ===== OWNER =====
	OrganizationID primitive.ObjectID `json:"organizationId" bson:"organizationId" index:"compound:rollup_owner_key_unique"` // Tổ chức sở hữu chuỗi rollup
	OwnerScope     string             `json:"ownerScope" bson:"ownerScope" index:"compound:rollup_owner_key_unique"`         // organization hoặc plan
	OwnerRef       string             `json:"ownerRef" bson:"ownerRef" index:"compound:rollup_owner_key_unique"`             // Hex ID của plan, rỗng cho organization

	// ===== SERIES =====
	Granularity string `json:"granularity" bson:"granularity" index:"compound:rollup_owner_key_unique"` // hourly, daily, weekly, monthly, quarterly
	PeriodKey   string `json:"periodKey" bson:"periodKey" index:"compound:rollup_owner_key_unique"`     // Key của entry, rỗng = container

	// ===== PAYLOAD =====
	Entry           *RollupEntry `json:"entry,omitempty" bson:"entry,omitempty"`                     // Entry của document thường
	MostRecentEntry *RollupEntry `json:"mostRecentEntry,omitempty" bson:"mostRecentEntry,omitempty"` // Entry mới nhất (chỉ container)

	// ===== TIMESTAMPS =====
	Timestamp int64 `json:"timestamp" bson:"timestamp" index:"single:1"` // Thời điểm của entry, dùng cho range query
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`                  // Server timestamp do $currentDate ghi
}
