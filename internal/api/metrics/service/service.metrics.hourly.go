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

// CounterSource cung cấp tổng counters tuyệt đối hiện tại của một owner.
// Với owner cấp tổ chức là tổng các video thuộc plan đang hoạt động, với owner
// cấp plan là tổng các video gốc mà plan tham chiếu tới (video đã xóa được bỏ qua).
type CounterSource interface {
	OwnerTotals(ctx context.Context, owner metricstore.Owner) (CounterTotals, error)
}

// OwnerMarker ghi key entry theo giờ mới nhất lên document của owner
// để API đọc nhanh không cần truy vấn kho rollup.
type OwnerMarker interface {
	MarkHourly(ctx context.Context, owner metricstore.Owner, periodKey string) error
}

// HourlyRollupService tạo entry rollup theo giờ cho một owner.
// Mỗi lần chạy chốt tổng counters hiện tại thành một entry key yyyymmdd-hhmm,
// new_view_count là delta lượt xem so với entry theo giờ liền trước.
type HourlyRollupService struct {
	store  metricstore.RollupStore
	source CounterSource
	marker OwnerMarker
	now    func() time.Time
}

// NewHourlyRollupService tạo mới HourlyRollupService, marker nil thì bỏ qua
// bước ghi most_recent_hourly lên document của owner
func NewHourlyRollupService(store metricstore.RollupStore, source CounterSource, marker OwnerMarker) *HourlyRollupService {
	return &HourlyRollupService{
		store:  store,
		source: source,
		marker: marker,
		now:    time.Now,
	}
}

// Run chốt một entry theo giờ cho owner tại thời điểm hiện tại.
// Ghi lại cùng một phút sẽ ghi đè entry cũ, không tạo bản ghi trùng.
func (s *HourlyRollupService) Run(ctx context.Context, owner metricstore.Owner) (*metricmodels.RollupEntry, error) {
	log := logger.GetAppLogger()

	totals, err := s.source.OwnerTotals(ctx, owner)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	periodKey := utility.FormatMinuteBucket(now)

	// Delta lượt xem so với entry theo giờ liền trước.
	// Chưa có entry nào thì delta là 0, không phải tổng tuyệt đối.
	newViewCount := int64(0)
	previous, err := s.store.LatestEntry(ctx, owner, metricmodels.GranularityHourly)
	switch {
	case err == nil:
		baseline := previous.ViewCount
		if previous.PeriodKey == periodKey {
			// Chạy lại cùng phút: entry mới nhất chính là entry sắp ghi đè,
			// phải so với mốc mà entry đó đã dùng, không so với chính nó
			baseline = previous.ViewCount - previous.NewViewCount
		}
		newViewCount = ClampDelta(totals.ViewCount, baseline)
	case errors.Is(err, common.ErrNotFound):
		log.WithFields(map[string]interface{}{
			"orgId":      owner.OrganizationID.Hex(),
			"ownerScope": owner.Scope,
			"ownerRef":   owner.Ref,
		}).Warn("📈 [ROLLUP] Chưa có entry theo giờ trước đó, new_view_count = 0")
	default:
		return nil, err
	}

	entry := &metricmodels.RollupEntry{
		PeriodKey:    periodKey,
		Timestamp:    now.UnixMilli(),
		ViewCount:    totals.ViewCount,
		LikeCount:    totals.LikeCount,
		CommentCount: totals.CommentCount,
		ShareCount:   totals.ShareCount,
		NewViewCount: newViewCount,
	}

	if err := s.store.PutEntry(ctx, owner, metricmodels.GranularityHourly, entry); err != nil {
		return nil, err
	}
	if err := s.store.PutContainer(ctx, owner, metricmodels.GranularityHourly, entry); err != nil {
		return nil, err
	}

	// Lỗi ghi marker không làm hỏng entry đã chốt
	if s.marker != nil {
		if err := s.marker.MarkHourly(ctx, owner, entry.PeriodKey); err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"orgId":    owner.OrganizationID.Hex(),
				"ownerRef": owner.Ref,
			}).Warn("📈 [ROLLUP] Lỗi ghi most_recent_hourly cho owner")
		}
	}

	return entry, nil
}
