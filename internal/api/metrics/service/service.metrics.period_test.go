package metricsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	metricmodels "ovrsee/internal/api/metrics/models"
	metricstore "ovrsee/internal/api/metrics/store"
	"ovrsee/internal/common"
	"ovrsee/internal/utility"
)

// putHourly ghi một entry theo giờ có sẵn vào store
func putHourly(t *testing.T, store *metricstore.MemoryRollupStore, owner metricstore.Owner, at time.Time, views int64) {
	t.Helper()
	entry := &metricmodels.RollupEntry{
		PeriodKey: utility.FormatMinuteBucket(at),
		Timestamp: at.UnixMilli(),
		ViewCount: views,
	}
	if err := store.PutEntry(context.Background(), owner, metricmodels.GranularityHourly, entry); err != nil {
		t.Fatalf("PutEntry lỗi: %v", err)
	}
}

// putDaily ghi một entry theo ngày có sẵn vào store
func putDaily(t *testing.T, store *metricstore.MemoryRollupStore, owner metricstore.Owner, day time.Time, totals CounterTotals) {
	t.Helper()
	entry := &metricmodels.RollupEntry{
		PeriodKey:    utility.FormatDateKey(day),
		Timestamp:    utility.DayStart(day).UnixMilli(),
		ViewCount:    totals.ViewCount,
		LikeCount:    totals.LikeCount,
		CommentCount: totals.CommentCount,
		ShareCount:   totals.ShareCount,
	}
	if err := store.PutEntry(context.Background(), owner, metricmodels.GranularityDaily, entry); err != nil {
		t.Fatalf("PutEntry lỗi: %v", err)
	}
}

func TestRunDaily_DeltaTrongNgay(t *testing.T) {
	owner := metricstore.OrganizationOwner(primitive.NewObjectID())
	store := metricstore.NewMemoryRollupStore()
	svc := NewPeriodRollupService(store)

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	putHourly(t, store, owner, day.Add(1*time.Hour), 100)
	putHourly(t, store, owner, day.Add(12*time.Hour), 130)
	putHourly(t, store, owner, day.Add(23*time.Hour), 160)

	entry, err := svc.RunDaily(context.Background(), owner, day)
	if err != nil {
		t.Fatalf("RunDaily lỗi: %v", err)
	}
	if entry.PeriodKey != "20260301" {
		t.Errorf("periodKey = %q, muốn 20260301", entry.PeriodKey)
	}
	if entry.ViewCount != 160 {
		t.Errorf("viewCount = %d, muốn 160 (entry giờ cuối ngày)", entry.ViewCount)
	}
	// Ngày đầu chuỗi: delta giữa entry giờ cuối và đầu của ngày
	if entry.NewViewCount != 60 {
		t.Errorf("newViewCount = %d, muốn 60", entry.NewViewCount)
	}
}

func TestRunDaily_HieuChinhTheoNgayHomTruoc(t *testing.T) {
	owner := metricstore.OrganizationOwner(primitive.NewObjectID())
	store := metricstore.NewMemoryRollupStore()
	svc := NewPeriodRollupService(store)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// Ngày hôm trước chốt ở 100, entry giờ đầu hôm nay đã là 120:
	// phần tăng 100 -> 120 rơi giữa hai entry biên, không được mất
	putDaily(t, store, owner, day.AddDate(0, 0, -1), CounterTotals{ViewCount: 100})
	putHourly(t, store, owner, day.Add(1*time.Hour), 120)
	putHourly(t, store, owner, day.Add(23*time.Hour), 150)

	entry, err := svc.RunDaily(context.Background(), owner, day)
	if err != nil {
		t.Fatalf("RunDaily lỗi: %v", err)
	}
	if entry.NewViewCount != 50 {
		t.Errorf("newViewCount = %d, muốn 50 (150 - 100 theo ngày hôm trước)", entry.NewViewCount)
	}
}

func TestRunDaily_NgayKhongCoEntryGio(t *testing.T) {
	owner := metricstore.OrganizationOwner(primitive.NewObjectID())
	store := metricstore.NewMemoryRollupStore()
	svc := NewPeriodRollupService(store)

	_, err := svc.RunDaily(context.Background(), owner, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, common.ErrRollupEmptyWindow) {
		t.Errorf("err = %v, muốn ErrRollupEmptyWindow", err)
	}
}

func TestRunPeriod_CuaSoTuan(t *testing.T) {
	owner := metricstore.OrganizationOwner(primitive.NewObjectID())
	store := metricstore.NewMemoryRollupStore()
	svc := NewPeriodRollupService(store)

	today := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return today }

	// Entry ngoài cửa sổ 7 ngày, phải bị bỏ qua
	putDaily(t, store, owner, today.AddDate(0, 0, -10), CounterTotals{ViewCount: 10})
	// Các entry trong cửa sổ
	firstDay := today.AddDate(0, 0, -5)
	putDaily(t, store, owner, firstDay, CounterTotals{ViewCount: 100, LikeCount: 30, CommentCount: 8, ShareCount: 2})
	putDaily(t, store, owner, today.AddDate(0, 0, -1), CounterTotals{ViewCount: 180, LikeCount: 25, CommentCount: 12, ShareCount: 5})

	entry, err := svc.RunPeriod(context.Background(), owner, metricmodels.GranularityWeekly)
	if err != nil {
		t.Fatalf("RunPeriod lỗi: %v", err)
	}

	if entry.NewViewCount != 80 {
		t.Errorf("newViewCount = %d, muốn 80", entry.NewViewCount)
	}
	// Like giảm trong cửa sổ, delta chặn tại 0
	if entry.NewLikeCount != 0 {
		t.Errorf("newLikeCount = %d, muốn 0", entry.NewLikeCount)
	}
	if entry.NewCommentCount != 4 {
		t.Errorf("newCommentCount = %d, muốn 4", entry.NewCommentCount)
	}
	if entry.NewShareCount != 3 {
		t.Errorf("newShareCount = %d, muốn 3", entry.NewShareCount)
	}

	wantStart := utility.DayStart(firstDay).UnixMilli()
	if entry.PeriodStart != wantStart {
		t.Errorf("periodStart = %d, muốn %d (ngày của entry đầu trong cửa sổ)", entry.PeriodStart, wantStart)
	}
	if entry.EarliestDate != wantStart {
		t.Errorf("earliestDate = %d, muốn %d", entry.EarliestDate, wantStart)
	}
	if entry.PeriodEnd != utility.DayStart(today).UnixMilli() {
		t.Errorf("periodEnd = %d, muốn đầu ngày hôm nay", entry.PeriodEnd)
	}

	// Cửa sổ trượt chỉ có container, đọc qua LatestEntry
	latest, err := store.LatestEntry(context.Background(), owner, metricmodels.GranularityWeekly)
	if err != nil {
		t.Fatalf("LatestEntry lỗi: %v", err)
	}
	if latest.NewViewCount != 80 {
		t.Errorf("container newViewCount = %d, muốn 80", latest.NewViewCount)
	}
}

func TestRunPeriod_CuaSoRong(t *testing.T) {
	owner := metricstore.OrganizationOwner(primitive.NewObjectID())
	store := metricstore.NewMemoryRollupStore()
	svc := NewPeriodRollupService(store)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }

	_, err := svc.RunPeriod(context.Background(), owner, metricmodels.GranularityMonthly)
	if !errors.Is(err, common.ErrRollupEmptyWindow) {
		t.Errorf("err = %v, muốn ErrRollupEmptyWindow", err)
	}
}

func TestRunPeriod_GranularityKhongPhaiCuaSo(t *testing.T) {
	owner := metricstore.OrganizationOwner(primitive.NewObjectID())
	svc := NewPeriodRollupService(metricstore.NewMemoryRollupStore())

	if _, err := svc.RunPeriod(context.Background(), owner, metricmodels.GranularityHourly); err == nil {
		t.Error("RunPeriod với granularity hourly phải trả về lỗi")
	}
}

// zeroFirstStore giả lập entry biên đầu cửa sổ bị mất timestamp
type zeroFirstStore struct {
	*metricstore.MemoryRollupStore
}

func (s *zeroFirstStore) Boundary(ctx context.Context, owner metricstore.Owner, gran metricmodels.Granularity, start, end time.Time, asc bool) (*metricmodels.RollupEntry, error) {
	entry, err := s.MemoryRollupStore.Boundary(ctx, owner, gran, start, end, asc)
	if err != nil {
		return nil, err
	}
	if asc {
		clone := *entry
		clone.Timestamp = 0
		return &clone, nil
	}
	return entry, nil
}

func TestRunPeriod_EntryDauThieuTimestampDungDauCuaSo(t *testing.T) {
	owner := metricstore.OrganizationOwner(primitive.NewObjectID())
	memory := metricstore.NewMemoryRollupStore()
	svc := NewPeriodRollupService(&zeroFirstStore{MemoryRollupStore: memory})

	today := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return today }

	putDaily(t, memory, owner, today.AddDate(0, 0, -5), CounterTotals{ViewCount: 100})
	putDaily(t, memory, owner, today.AddDate(0, 0, -1), CounterTotals{ViewCount: 180})

	entry, err := svc.RunPeriod(context.Background(), owner, metricmodels.GranularityWeekly)
	if err != nil {
		t.Fatalf("RunPeriod lỗi: %v", err)
	}

	wantStart := utility.DayStart(today).AddDate(0, 0, -7).UnixMilli()
	if entry.PeriodStart != wantStart {
		t.Errorf("periodStart = %d, muốn %d (đầu cửa sổ danh nghĩa)", entry.PeriodStart, wantStart)
	}
	if entry.EarliestDate != wantStart {
		t.Errorf("earliestDate = %d, muốn %d", entry.EarliestDate, wantStart)
	}
}
