package metricsvc

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	metricmodels "ovrsee/internal/api/metrics/models"
	metricstore "ovrsee/internal/api/metrics/store"
)

// fakeCounterSource trả về totals cố định, có thể thay đổi giữa các lần chạy
type fakeCounterSource struct {
	totals CounterTotals
	err    error
}

func (f *fakeCounterSource) OwnerTotals(ctx context.Context, owner metricstore.Owner) (CounterTotals, error) {
	if f.err != nil {
		return CounterTotals{}, f.err
	}
	return f.totals, nil
}

// fakeOwnerMarker ghi nhận key được đánh dấu cho owner
type fakeOwnerMarker struct {
	marked map[string]string
}

func (f *fakeOwnerMarker) MarkHourly(ctx context.Context, owner metricstore.Owner, periodKey string) error {
	if f.marked == nil {
		f.marked = make(map[string]string)
	}
	f.marked[owner.Ref+"/"+owner.OrganizationID.Hex()] = periodKey
	return nil
}

func newHourlyForTest(source *fakeCounterSource, at time.Time) (*HourlyRollupService, *metricstore.MemoryRollupStore) {
	store := metricstore.NewMemoryRollupStore()
	svc := NewHourlyRollupService(store, source, nil)
	svc.now = func() time.Time { return at }
	return svc, store
}

func TestHourlyRun_LanDauNewViewCountBangKhong(t *testing.T) {
	owner := metricstore.OrganizationOwner(primitive.NewObjectID())
	source := &fakeCounterSource{totals: CounterTotals{ViewCount: 1000, LikeCount: 20}}
	svc, _ := newHourlyForTest(source, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	entry, err := svc.Run(context.Background(), owner)
	if err != nil {
		t.Fatalf("Run lần đầu lỗi: %v", err)
	}
	if entry.ViewCount != 1000 {
		t.Errorf("viewCount = %d, muốn 1000", entry.ViewCount)
	}
	// Chưa có baseline thì delta phải là 0, không được bằng tổng tuyệt đối
	if entry.NewViewCount != 0 {
		t.Errorf("newViewCount lần đầu = %d, muốn 0", entry.NewViewCount)
	}
	if entry.PeriodKey != "20260301-1000" {
		t.Errorf("periodKey = %q, muốn 20260301-1000", entry.PeriodKey)
	}
}

func TestHourlyRun_DeltaSoVoiEntryTruoc(t *testing.T) {
	owner := metricstore.OrganizationOwner(primitive.NewObjectID())
	source := &fakeCounterSource{totals: CounterTotals{ViewCount: 1000}}
	svc, store := newHourlyForTest(source, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	if _, err := svc.Run(context.Background(), owner); err != nil {
		t.Fatalf("Run lần đầu lỗi: %v", err)
	}

	source.totals.ViewCount = 1150
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC) }

	entry, err := svc.Run(context.Background(), owner)
	if err != nil {
		t.Fatalf("Run lần hai lỗi: %v", err)
	}
	if entry.NewViewCount != 150 {
		t.Errorf("newViewCount = %d, muốn 150", entry.NewViewCount)
	}

	// Container phải giữ entry mới nhất
	latest, err := store.LatestEntry(context.Background(), owner, metricmodels.GranularityHourly)
	if err != nil {
		t.Fatalf("LatestEntry lỗi: %v", err)
	}
	if latest.PeriodKey != "20260301-1100" {
		t.Errorf("latest periodKey = %q, muốn 20260301-1100", latest.PeriodKey)
	}
}

func TestHourlyRun_CounterGiamDeltaBangKhong(t *testing.T) {
	owner := metricstore.OrganizationOwner(primitive.NewObjectID())
	source := &fakeCounterSource{totals: CounterTotals{ViewCount: 1000}}
	svc, _ := newHourlyForTest(source, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	if _, err := svc.Run(context.Background(), owner); err != nil {
		t.Fatalf("Run lần đầu lỗi: %v", err)
	}

	// Video bị xóa làm tổng giảm, delta không được âm
	source.totals.ViewCount = 700
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC) }

	entry, err := svc.Run(context.Background(), owner)
	if err != nil {
		t.Fatalf("Run lần hai lỗi: %v", err)
	}
	if entry.NewViewCount != 0 {
		t.Errorf("newViewCount = %d, muốn 0 khi counter giảm", entry.NewViewCount)
	}
}

func TestHourlyRun_CungPhutGhiDeKhongTrung(t *testing.T) {
	owner := metricstore.OrganizationOwner(primitive.NewObjectID())
	source := &fakeCounterSource{totals: CounterTotals{ViewCount: 1000}}
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc, store := newHourlyForTest(source, at)

	if _, err := svc.Run(context.Background(), owner); err != nil {
		t.Fatalf("Run lần đầu lỗi: %v", err)
	}

	source.totals.ViewCount = 1010
	entry, err := svc.Run(context.Background(), owner)
	if err != nil {
		t.Fatalf("Run lần hai lỗi: %v", err)
	}

	// Cùng phút thì ghi đè, đọc lại theo key phải thấy giá trị mới
	stored, err := store.Entry(context.Background(), owner, metricmodels.GranularityHourly, entry.PeriodKey)
	if err != nil {
		t.Fatalf("Entry lỗi: %v", err)
	}
	if stored.ViewCount != 1010 {
		t.Errorf("viewCount sau ghi đè = %d, muốn 1010", stored.ViewCount)
	}
}

func TestHourlyRun_ChayLaiCungPhutGiuNguyenDelta(t *testing.T) {
	owner := metricstore.OrganizationOwner(primitive.NewObjectID())
	source := &fakeCounterSource{totals: CounterTotals{ViewCount: 100}}
	svc, store := newHourlyForTest(source, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	if _, err := svc.Run(context.Background(), owner); err != nil {
		t.Fatalf("Run lần đầu lỗi: %v", err)
	}

	source.totals.ViewCount = 150
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC) }
	if _, err := svc.Run(context.Background(), owner); err != nil {
		t.Fatalf("Run lần hai lỗi: %v", err)
	}

	// Chạy lại cùng phút với dữ liệu không đổi: delta đã chốt phải được giữ
	// nguyên, không được so entry với chính nó rồi về 0
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 11, 0, 30, 0, time.UTC) }
	entry, err := svc.Run(context.Background(), owner)
	if err != nil {
		t.Fatalf("Run lần ba lỗi: %v", err)
	}
	if entry.NewViewCount != 50 {
		t.Errorf("newViewCount khi chạy lại cùng phút = %d, muốn 50", entry.NewViewCount)
	}

	stored, err := store.Entry(context.Background(), owner, metricmodels.GranularityHourly, "20260301-1100")
	if err != nil {
		t.Fatalf("Entry lỗi: %v", err)
	}
	if stored.NewViewCount != 50 {
		t.Errorf("newViewCount lưu lại = %d, muốn 50", stored.NewViewCount)
	}
}

func TestHourlyRun_CungPhutTotalsTangDeltaTinhLaiTuMoc(t *testing.T) {
	owner := metricstore.OrganizationOwner(primitive.NewObjectID())
	source := &fakeCounterSource{totals: CounterTotals{ViewCount: 100}}
	svc, _ := newHourlyForTest(source, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	if _, err := svc.Run(context.Background(), owner); err != nil {
		t.Fatalf("Run lần đầu lỗi: %v", err)
	}

	source.totals.ViewCount = 150
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC) }
	if _, err := svc.Run(context.Background(), owner); err != nil {
		t.Fatalf("Run lần hai lỗi: %v", err)
	}

	// Cùng phút nhưng totals tăng thêm: delta tính lại từ mốc 100, không phải từ 150
	source.totals.ViewCount = 160
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 11, 0, 45, 0, time.UTC) }
	entry, err := svc.Run(context.Background(), owner)
	if err != nil {
		t.Fatalf("Run lần ba lỗi: %v", err)
	}
	if entry.NewViewCount != 60 {
		t.Errorf("newViewCount = %d, muốn 60", entry.NewViewCount)
	}
}

func TestHourlyRun_MarkerNhanKeyEntryMoi(t *testing.T) {
	owner := metricstore.OrganizationOwner(primitive.NewObjectID())
	source := &fakeCounterSource{totals: CounterTotals{ViewCount: 100}}
	store := metricstore.NewMemoryRollupStore()
	marker := &fakeOwnerMarker{}
	svc := NewHourlyRollupService(store, source, marker)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	if _, err := svc.Run(context.Background(), owner); err != nil {
		t.Fatalf("Run lỗi: %v", err)
	}

	got := marker.marked[owner.Ref+"/"+owner.OrganizationID.Hex()]
	if got != "20260301-1000" {
		t.Errorf("marker nhận key %q, muốn 20260301-1000", got)
	}
}
