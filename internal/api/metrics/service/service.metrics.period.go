package metricsvc

import (
	"context"
	"errors"
	"time"

	metricmodels "ovrsee/internal/api/metrics/models"
	metricstore "ovrsee/internal/api/metrics/store"
	"ovrsee/internal/common"
	"ovrsee/internal/logger"
	"ovrsee/internal/utility"
)

// PeriodRollupService dẫn xuất các entry theo ngày và các cửa sổ trượt
// (7/30/90 ngày) từ chuỗi entry cấp thấp hơn. Service này không đọc counters
// sống, chỉ đọc các entry biên trong store.
type PeriodRollupService struct {
	store metricstore.RollupStore
	now   func() time.Time
}

// NewPeriodRollupService tạo mới PeriodRollupService
func NewPeriodRollupService(store metricstore.RollupStore) *PeriodRollupService {
	return &PeriodRollupService{
		store: store,
		now:   time.Now,
	}
}

// RunDaily chốt entry theo ngày cho owner từ các entry theo giờ của ngày date.
// new_view_count mặc định là delta giữa entry giờ cuối và đầu của ngày,
// nhưng nếu đã có entry của ngày hôm trước thì lấy delta so với ngày hôm trước
// để không mất phần tăng trưởng rơi giữa hai entry biên.
// Trả về common.ErrRollupEmptyWindow nếu ngày không có entry theo giờ nào.
func (s *PeriodRollupService) RunDaily(ctx context.Context, owner metricstore.Owner, date time.Time) (*metricmodels.RollupEntry, error) {
	dayStart := utility.DayStart(date)
	dayEnd := utility.NextDayStart(date)

	first, err := s.store.Boundary(ctx, owner, metricmodels.GranularityHourly, dayStart, dayEnd, true)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrRollupEmptyWindow
		}
		return nil, err
	}
	last, err := s.store.Boundary(ctx, owner, metricmodels.GranularityHourly, dayStart, dayEnd, false)
	if err != nil {
		return nil, err
	}

	newViewCount := ClampDelta(last.ViewCount, first.ViewCount)

	// Hiệu chỉnh theo entry ngày hôm trước nếu có
	previousDayKey := utility.FormatDateKey(dayStart.AddDate(0, 0, -1))
	previousDay, err := s.store.Entry(ctx, owner, metricmodels.GranularityDaily, previousDayKey)
	switch {
	case err == nil:
		newViewCount = ClampDelta(last.ViewCount, previousDay.ViewCount)
	case errors.Is(err, common.ErrNotFound):
		// Ngày đầu tiên của chuỗi, giữ delta trong ngày
	default:
		return nil, err
	}

	entry := &metricmodels.RollupEntry{
		PeriodKey:    utility.FormatDateKey(dayStart),
		Timestamp:    last.Timestamp,
		ViewCount:    last.ViewCount,
		LikeCount:    last.LikeCount,
		CommentCount: last.CommentCount,
		ShareCount:   last.ShareCount,
		NewViewCount: newViewCount,
	}

	if err := s.store.PutEntry(ctx, owner, metricmodels.GranularityDaily, entry); err != nil {
		return nil, err
	}
	if err := s.store.PutContainer(ctx, owner, metricmodels.GranularityDaily, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// RunPeriod cập nhật document cửa sổ trượt (weekly/monthly/quarterly) của owner.
// Cửa sổ là [hôm nay - WindowDays, hôm nay], delta của cả bốn counters lấy từ
// entry theo ngày sớm nhất và muộn nhất trong cửa sổ, chặn dưới tại 0.
// Trả về common.ErrRollupEmptyWindow nếu cửa sổ không có entry theo ngày nào.
func (s *PeriodRollupService) RunPeriod(ctx context.Context, owner metricstore.Owner, gran metricmodels.Granularity) (*metricmodels.RollupEntry, error) {
	if !gran.IsPeriod() {
		return nil, common.ErrInvalidInput
	}

	today := utility.DayStart(s.now())
	windowStart := today.AddDate(0, 0, -gran.WindowDays())

	first, err := s.store.Boundary(ctx, owner, metricmodels.GranularityDaily, windowStart, time.Time{}, true)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrRollupEmptyWindow
		}
		return nil, err
	}
	last, err := s.store.Boundary(ctx, owner, metricmodels.GranularityDaily, windowStart, time.Time{}, false)
	if err != nil {
		return nil, err
	}

	deltas := DeltaTotals(TotalsOfEntry(last), TotalsOfEntry(first))

	// period_start là ngày của entry đầu tiên thực sự có trong cửa sổ,
	// entry không có timestamp thì lùi về đầu cửa sổ danh nghĩa
	periodStart := utility.DayStart(time.UnixMilli(first.Timestamp)).UnixMilli()
	if first.Timestamp == 0 {
		periodStart = windowStart.UnixMilli()
		logger.GetAppLogger().WithFields(map[string]interface{}{
			"orgId":       owner.OrganizationID.Hex(),
			"granularity": string(gran),
		}).Warn("📈 [ROLLUP] Entry đầu cửa sổ thiếu timestamp, dùng đầu cửa sổ danh nghĩa")
	}

	entry := &metricmodels.RollupEntry{
		PeriodKey:       string(gran),
		Timestamp:       last.Timestamp,
		ViewCount:       last.ViewCount,
		LikeCount:       last.LikeCount,
		CommentCount:    last.CommentCount,
		ShareCount:      last.ShareCount,
		NewViewCount:    deltas.ViewCount,
		NewLikeCount:    deltas.LikeCount,
		NewCommentCount: deltas.CommentCount,
		NewShareCount:   deltas.ShareCount,
		PeriodStart:     periodStart,
		PeriodEnd:       today.UnixMilli(),
		EarliestDate:    periodStart,
	}

	if err := s.store.PutContainer(ctx, owner, gran, entry); err != nil {
		return nil, err
	}

	return entry, nil
}
