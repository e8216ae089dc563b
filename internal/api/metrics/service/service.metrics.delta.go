// Package metricsvc chứa các service tổng hợp số liệu video theo nhiều granularity.
package metricsvc

import (
	metricmodels "ovrsee/internal/api/metrics/models"
)

// CounterTotals là bộ bốn counters tuyệt đối của một owner tại một thời điểm
type CounterTotals struct {
	ViewCount    int64
	LikeCount    int64
	CommentCount int64
	ShareCount   int64
}

// ClampDelta trả về current - previous, chặn dưới tại 0.
// Counter nguồn có thể giảm (video bị xóa, nguồn đếm lại), delta âm
// không được phép lọt vào chuỗi rollup.
func ClampDelta(current, previous int64) int64 {
	delta := current - previous
	if delta < 0 {
		return 0
	}
	return delta
}

// DeltaTotals tính delta cho cả bốn counters, mỗi counter chặn dưới tại 0
func DeltaTotals(current, previous CounterTotals) CounterTotals {
	return CounterTotals{
		ViewCount:    ClampDelta(current.ViewCount, previous.ViewCount),
		LikeCount:    ClampDelta(current.LikeCount, previous.LikeCount),
		CommentCount: ClampDelta(current.CommentCount, previous.CommentCount),
		ShareCount:   ClampDelta(current.ShareCount, previous.ShareCount),
	}
}

// TotalsOfEntry đọc bộ counters tuyệt đối từ một rollup entry
func TotalsOfEntry(entry *metricmodels.RollupEntry) CounterTotals {
	if entry == nil {
		return CounterTotals{}
	}
	return CounterTotals{
		ViewCount:    entry.ViewCount,
		LikeCount:    entry.LikeCount,
		CommentCount: entry.CommentCount,
		ShareCount:   entry.ShareCount,
	}
}
