package contentsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	contentmodels "ovrsee/internal/api/content/models"
	"ovrsee/internal/common"
)

func dayMs(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).UnixMilli()
}

func TestIsExpired_BienNgayHetHanTinhLaHetHan(t *testing.T) {
	plan := &contentmodels.ContentPlan{
		StartDate:    dayMs(2026, 3, 1),
		NumberOfDays: 10,
	}

	// Ngày hết hạn là startDate + numberOfDays = 11/03
	if IsExpired(plan, time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)) {
		t.Error("plan chưa tới ngày hết hạn mà đã báo hết hạn")
	}
	if !IsExpired(plan, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Error("đúng ngày hết hạn phải tính là hết hạn")
	}
	if !IsExpired(plan, time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)) {
		t.Error("qua ngày hết hạn phải tính là hết hạn")
	}
}

func TestIsExpired_ThieuStartDate(t *testing.T) {
	plan := &contentmodels.ContentPlan{NumberOfDays: 10}
	if IsExpired(plan, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Error("plan thiếu startDate không được tính là hết hạn")
	}
}

func TestCompletionPercentage(t *testing.T) {
	start := dayMs(2026, 3, 1)

	// 3 ngày riêng biệt có đăng bài trong 10 ngày cam kết
	postDates := []int64{
		dayMs(2026, 3, 1),
		dayMs(2026, 3, 1), // cùng ngày, chỉ tính một lần
		dayMs(2026, 3, 5),
		dayMs(2026, 3, 9),
	}
	if got := CompletionPercentage(postDates, start, 10); got != 30.0 {
		t.Errorf("completion = %v, muốn 30.0", got)
	}
}

func TestCompletionPercentage_NgoaiCuaSoKhongTinh(t *testing.T) {
	start := dayMs(2026, 3, 1)

	postDates := []int64{
		dayMs(2026, 2, 28), // trước startDate
		dayMs(2026, 3, 11), // đúng biên cuối, vẫn tính
		dayMs(2026, 3, 20), // sau cửa sổ
		0,                  // thiếu ngày đăng
	}
	if got := CompletionPercentage(postDates, start, 10); got != 10.0 {
		t.Errorf("completion = %v, muốn 10.0 (chỉ ngày biên cuối được tính)", got)
	}
}

func TestCompletionPercentage_DuLieuThieu(t *testing.T) {
	if got := CompletionPercentage([]int64{dayMs(2026, 3, 1)}, dayMs(2026, 3, 1), 0); got != 0 {
		t.Errorf("numberOfDays = 0 phải trả về 0, got %v", got)
	}
	if got := CompletionPercentage([]int64{dayMs(2026, 3, 1)}, 0, 10); got != 0 {
		t.Errorf("thiếu startDate phải trả về 0, got %v", got)
	}
	if got := CompletionPercentage(nil, dayMs(2026, 3, 1), 10); got != 0 {
		t.Errorf("không có bài đăng phải trả về 0, got %v", got)
	}
}

func TestFrozenFields_ChiGiuFieldChoPhep(t *testing.T) {
	svc := &PlanLifecycleService{}
	plan := &contentmodels.ContentPlan{
		ID:               primitive.NewObjectID(),
		OrganizationID:   primitive.NewObjectID(),
		UserID:           primitive.NewObjectID(),
		ManagerID:        "mgr-07",
		DateCreated:      dayMs(2026, 2, 20),
		StartDate:        dayMs(2026, 3, 1),
		NumberOfDays:     10,
		NumberOfVideos:   5,
		RetainerAmount:   1500,
		Status:           contentmodels.PlanStatusActive,
		MostRecentHourly: "20260301-1000",
		CreatedAt:        dayMs(2026, 2, 20),
	}

	fields, err := svc.frozenFields(plan)
	if err != nil {
		t.Fatalf("frozenFields lỗi: %v", err)
	}

	for _, key := range []string{"organizationId", "userId", "mostRecentHourly", "createdAt", "_id"} {
		if _, exists := fields[key]; exists {
			t.Errorf("field %q không được phép có trong bản ghi historical", key)
		}
	}

	if got := fields["startDate"]; got != "2026-03-01T00:00:00Z" {
		t.Errorf("startDate = %v, muốn chuỗi RFC3339", got)
	}
	if got := fields["dateCreated"]; got != "2026-02-20T00:00:00Z" {
		t.Errorf("dateCreated = %v, muốn chuỗi RFC3339", got)
	}
	if got, ok := fields["requireW9"].(bool); !ok || got {
		t.Errorf("requireW9 = %v, muốn false mặc định", fields["requireW9"])
	}
	if got := fields["managerId"]; got != "mgr-07" {
		t.Errorf("managerId = %v, muốn mgr-07", got)
	}
	// Plan đóng băng luôn mang trạng thái cuối cùng, kể cả khi bản ghi
	// sống vẫn còn là active tại thời điểm chụp
	if got := fields["status"]; got != contentmodels.PlanStatusCompleted {
		t.Errorf("status = %v, muốn completed", got)
	}
}

func TestArchivePlan_ChuaHetHanTraVeLoi(t *testing.T) {
	svc := &PlanLifecycleService{now: func() time.Time { return time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC) }}
	plan := &contentmodels.ContentPlan{
		ID:           primitive.NewObjectID(),
		StartDate:    dayMs(2026, 3, 1),
		NumberOfDays: 10,
	}

	if err := svc.ArchivePlan(context.Background(), plan); !errors.Is(err, common.ErrPlanNotExpired) {
		t.Errorf("err = %v, muốn ErrPlanNotExpired", err)
	}
}

func TestUserScopeFields_TenToChucMacDinh(t *testing.T) {
	fields := map[string]interface{}{"status": contentmodels.PlanStatusCompleted}

	got := userScopeFields(fields, "")
	if got["organizationName"] != "Unknown Organization" {
		t.Errorf("organizationName = %v, muốn Unknown Organization", got["organizationName"])
	}

	got = userScopeFields(fields, "Folkgroup")
	if got["organizationName"] != "Folkgroup" {
		t.Errorf("organizationName = %v, muốn Folkgroup", got["organizationName"])
	}
}
