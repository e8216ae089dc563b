package utility

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ovrsee/internal/common"
)

// Layout cho các key thời gian của rollup entries
const (
	MinuteBucketLayout = "20060102-1504" // Key cho entry theo giờ
	DateKeyLayout      = "20060102"      // Key cho entry theo ngày
)

// FormatMinuteBucket trả về key phút cho entry theo giờ (ví dụ: 20260830-1400)
// @params - thời điểm cần format
// @returns - key dạng yyyymmdd-hhmm theo UTC
func FormatMinuteBucket(t time.Time) string {
	return t.UTC().Format(MinuteBucketLayout)
}

// FormatDateKey trả về key ngày cho entry theo ngày (ví dụ: 20260830)
// @params - thời điểm cần format
// @returns - key dạng yyyymmdd theo UTC
func FormatDateKey(t time.Time) string {
	return t.UTC().Format(DateKeyLayout)
}

// DayStart trả về thời điểm 00:00:00 UTC của ngày chứa t
func DayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// NextDayStart trả về thời điểm 00:00:00 UTC của ngày kế tiếp
func NextDayStart(t time.Time) time.Time {
	return DayStart(t).AddDate(0, 0, 1)
}

// ParseCreateTime đọc thời gian tạo video từ dữ liệu nguồn.
// Nguồn có thể gửi epoch seconds (int/int64/float64) hoặc cấu trúc
// {seconds, nanoseconds} tùy phiên bản API.
// @params - giá trị create_time thô từ payload
// @returns - thời gian UTC và lỗi nếu không đọc được
func ParseCreateTime(raw interface{}) (time.Time, error) {
	switch v := raw.(type) {
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case int32:
		return time.Unix(int64(v), 0).UTC(), nil
	case int:
		return time.Unix(int64(v), 0).UTC(), nil
	case float64:
		return time.Unix(int64(v), 0).UTC(), nil
	case time.Time:
		return v.UTC(), nil
	case primitive.DateTime:
		return v.Time().UTC(), nil
	case map[string]interface{}:
		seconds, ok := extractEpochField(v, "seconds", "_seconds")
		if !ok {
			return time.Time{}, common.ErrIngestBadCreateTime
		}
		nanos, _ := extractEpochField(v, "nanoseconds", "nanos", "_nanoseconds")
		return time.Unix(seconds, nanos).UTC(), nil
	case primitive.M:
		return ParseCreateTime(map[string]interface{}(v))
	default:
		return time.Time{}, common.ErrIngestBadCreateTime
	}
}

// extractEpochField đọc giá trị số nguyên từ map theo danh sách key
func extractEpochField(m map[string]interface{}, keys ...string) (int64, bool) {
	for _, key := range keys {
		raw, exists := m[key]
		if !exists {
			continue
		}
		switch v := raw.(type) {
		case int64:
			return v, true
		case int32:
			return int64(v), true
		case int:
			return int64(v), true
		case float64:
			return int64(v), true
		}
	}
	return 0, false
}
