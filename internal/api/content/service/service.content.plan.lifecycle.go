package contentsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	authmodels "ovrsee/internal/api/auth/models"
	basesvc "ovrsee/internal/api/base/service"
	contentmodels "ovrsee/internal/api/content/models"
	metricmodels "ovrsee/internal/api/metrics/models"
	metricstore "ovrsee/internal/api/metrics/store"
	"ovrsee/internal/common"
	"ovrsee/internal/global"
	"ovrsee/internal/logger"
	"ovrsee/internal/utility"
)

// historicalPlanFields là danh sách field của plan được giữ lại khi đóng băng
var historicalPlanFields = []string{
	"dateCreated",
	"managerId",
	"numberOfDays",
	"numberOfVideos",
	"requireW9",
	"retainerAmount",
	"startDate",
	"status",
}

// LifecycleSummary là kết quả của một lượt quét content plan hết hạn
type LifecycleSummary struct {
	Scanned  int `json:"scanned"`  // Số plan active được kiểm tra
	Archived int `json:"archived"` // Số plan đã đóng băng
	Skipped  int `json:"skipped"`  // Số plan bỏ qua vì dữ liệu thiếu
	Failed   int `json:"failed"`   // Số plan lỗi khi đóng băng
}

// PlanLifecycleService quét các content plan đã hết hạn, tính completion
// percentage, đóng băng thành bản ghi historical (hai bản: theo tổ chức và
// theo creator) rồi xóa plan sống.
type PlanLifecycleService struct {
	plans         *basesvc.BaseServiceMongoImpl[contentmodels.ContentPlan]
	planVideos    *basesvc.BaseServiceMongoImpl[contentmodels.PlanVideo]
	historical    *basesvc.BaseServiceMongoImpl[contentmodels.HistoricalContentPlan]
	organizations *basesvc.BaseServiceMongoImpl[authmodels.Organization]
	store         metricstore.RollupStore
	now           func() time.Time
}

// NewPlanLifecycleService tạo mới PlanLifecycleService
func NewPlanLifecycleService(store metricstore.RollupStore) (*PlanLifecycleService, error) {
	plansCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ContentPlans)
	if !exist {
		return nil, fmt.Errorf("failed to get content_plans collection: %v", common.ErrNotFound)
	}
	planVideosCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.PlanVideos)
	if !exist {
		return nil, fmt.Errorf("failed to get content_plan_videos collection: %v", common.ErrNotFound)
	}
	historicalCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.HistoricalPlans)
	if !exist {
		return nil, fmt.Errorf("failed to get historical_content_plans collection: %v", common.ErrNotFound)
	}
	orgsCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Organizations)
	if !exist {
		return nil, fmt.Errorf("failed to get auth_organizations collection: %v", common.ErrNotFound)
	}

	return &PlanLifecycleService{
		plans:         basesvc.NewBaseServiceMongo[contentmodels.ContentPlan](plansCol),
		planVideos:    basesvc.NewBaseServiceMongo[contentmodels.PlanVideo](planVideosCol),
		historical:    basesvc.NewBaseServiceMongo[contentmodels.HistoricalContentPlan](historicalCol),
		organizations: basesvc.NewBaseServiceMongo[authmodels.Organization](orgsCol),
		store:         store,
		now:           time.Now,
	}, nil
}

// IsExpired kiểm tra plan đã hết hạn chưa: hết hạn khi hôm nay đã chạm hoặc
// vượt qua startDate + numberOfDays (biên tính là hết hạn).
func IsExpired(plan *contentmodels.ContentPlan, today time.Time) bool {
	if plan.StartDate == 0 {
		return false
	}
	expiry := utility.DayStart(time.UnixMilli(plan.StartDate)).AddDate(0, 0, plan.NumberOfDays)
	return !utility.DayStart(today).Before(expiry)
}

// CompletionPercentage tính phần trăm hoàn thành cam kết đăng bài của plan:
// số ngày riêng biệt có video đăng trong [startDate, startDate + numberOfDays]
// (hai biên đều tính) chia cho numberOfDays, nhân 100.
func CompletionPercentage(postDates []int64, startDate int64, numberOfDays int) float64 {
	if numberOfDays <= 0 || startDate == 0 {
		return 0
	}

	windowStart := utility.DayStart(time.UnixMilli(startDate))
	windowEnd := windowStart.AddDate(0, 0, numberOfDays)

	distinctDays := make(map[string]bool)
	for _, postDate := range postDates {
		if postDate == 0 {
			continue
		}
		day := utility.DayStart(time.UnixMilli(postDate))
		if day.Before(windowStart) || day.After(windowEnd) {
			continue
		}
		distinctDays[utility.FormatDateKey(day)] = true
	}

	return float64(len(distinctDays)) / float64(numberOfDays) * 100
}

// RunOnce quét mọi plan active, đóng băng các plan đã hết hạn.
// Lỗi của một plan không chặn các plan còn lại.
func (s *PlanLifecycleService) RunOnce(ctx context.Context) (*LifecycleSummary, error) {
	log := logger.GetAppLogger()
	today := s.now().UTC()

	plans, err := s.plans.Find(ctx, bson.M{"status": contentmodels.PlanStatusActive}, nil)
	if err != nil {
		return nil, err
	}

	summary := &LifecycleSummary{Scanned: len(plans)}
	for i := range plans {
		plan := &plans[i]
		if !IsExpired(plan, today) {
			continue
		}

		if err := s.ArchivePlan(ctx, plan); err != nil {
			if errors.Is(err, common.ErrPlanMissingStart) {
				summary.Skipped++
				log.WithFields(map[string]interface{}{
					"planId": plan.ID.Hex(),
				}).Warn("🗂️ [LIFECYCLE] Plan thiếu startDate, bỏ qua")
				continue
			}
			summary.Failed++
			log.WithError(err).WithFields(map[string]interface{}{
				"planId": plan.ID.Hex(),
			}).Error("🗂️ [LIFECYCLE] Lỗi đóng băng plan, sẽ thử lại lần quét sau")
			continue
		}
		summary.Archived++
	}

	log.WithFields(map[string]interface{}{
		"scanned":  summary.Scanned,
		"archived": summary.Archived,
		"skipped":  summary.Skipped,
		"failed":   summary.Failed,
	}).Info("🗂️ [LIFECYCLE] Hoàn thành lượt quét content plan hết hạn")

	return summary, nil
}

// ArchivePlan đóng băng một plan đã hết hạn: ghi hai bản historical
// (scope organization và scope user) rồi xóa plan sống cùng các tham chiếu video.
func (s *PlanLifecycleService) ArchivePlan(ctx context.Context, plan *contentmodels.ContentPlan) error {
	if plan.StartDate == 0 {
		return common.ErrPlanMissingStart
	}
	if !IsExpired(plan, s.now().UTC()) {
		return common.ErrPlanNotExpired
	}

	log := logger.GetAppLogger()

	// Completion percentage từ ngày đăng của các video trong plan
	refs, err := s.planVideos.Find(ctx, bson.M{"planId": plan.ID}, nil)
	if err != nil {
		return err
	}
	postDates := make([]int64, 0, len(refs))
	for _, ref := range refs {
		if ref.PostDate == 0 {
			log.WithFields(map[string]interface{}{
				"planId":   plan.ID.Hex(),
				"videoRef": ref.OriginalVideoRef,
			}).Warn("🗂️ [LIFECYCLE] Video trong plan thiếu ngày đăng, không tính vào completion")
			continue
		}
		postDates = append(postDates, ref.PostDate)
	}
	completion := CompletionPercentage(postDates, plan.StartDate, plan.NumberOfDays)

	// Số liệu cuối cùng từ entry theo ngày mới nhất của plan
	metrics := map[string]interface{}{}
	owner := metricstore.PlanOwner(plan.OrganizationID, plan.ID)
	lastDaily, err := s.store.LatestEntry(ctx, owner, metricmodels.GranularityDaily)
	switch {
	case err == nil:
		metrics["viewCount"] = lastDaily.ViewCount
		metrics["likeCount"] = lastDaily.LikeCount
		metrics["commentCount"] = lastDaily.CommentCount
		metrics["shareCount"] = lastDaily.ShareCount
	case errors.Is(err, common.ErrNotFound):
		log.WithFields(map[string]interface{}{
			"planId": plan.ID.Hex(),
		}).Warn("🗂️ [LIFECYCLE] Plan chưa có entry theo ngày nào, đóng băng không kèm số liệu")
	default:
		return err
	}

	// Plan chuyển sang completed trước khi đóng băng, bản historical
	// luôn mang trạng thái cuối cùng này
	plan.Status = contentmodels.PlanStatusCompleted
	if err := s.plans.UpdateOne(ctx, bson.M{"_id": plan.ID}, bson.M{
		"$set": bson.M{"status": contentmodels.PlanStatusCompleted},
	}, nil); err != nil {
		return err
	}

	fields, err := s.frozenFields(plan)
	if err != nil {
		return err
	}

	org, err := s.organizations.FindOneById(ctx, plan.OrganizationID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}

	archivedAt := s.now().UnixMilli()

	// Bản ghi dưới tổ chức giữ thêm userId của creator
	orgRecord := contentmodels.HistoricalContentPlan{
		PlanID:               plan.ID,
		Scope:                contentmodels.HistoricalScopeOrganization,
		OrganizationID:       plan.OrganizationID,
		UserID:               plan.UserID,
		Fields:               fields,
		CompletionPercentage: completion,
		Metrics:              metrics,
		ArchivedAt:           archivedAt,
	}
	if _, err := s.historical.InsertOne(ctx, orgRecord); err != nil {
		return err
	}

	// Bản ghi dưới creator giữ thêm tên tổ chức
	userFields := userScopeFields(fields, org.Name)
	userRecord := contentmodels.HistoricalContentPlan{
		PlanID:               plan.ID,
		Scope:                contentmodels.HistoricalScopeUser,
		OrganizationID:       plan.OrganizationID,
		UserID:               plan.UserID,
		Fields:               userFields,
		CompletionPercentage: completion,
		Metrics:              metrics,
		ArchivedAt:           archivedAt,
	}
	if _, err := s.historical.InsertOne(ctx, userRecord); err != nil {
		return err
	}

	// Plan sống và các tham chiếu video không còn cần thiết
	if _, err := s.planVideos.DeleteMany(ctx, bson.M{"planId": plan.ID}); err != nil {
		return err
	}
	if err := s.plans.DeleteOne(ctx, bson.M{"_id": plan.ID}); err != nil {
		return err
	}

	log.WithFields(map[string]interface{}{
		"planId":     plan.ID.Hex(),
		"completion": completion,
	}).Info("🗂️ [LIFECYCLE] Đã đóng băng content plan hết hạn")

	return nil
}

// frozenFields tạo snapshot các field được phép của plan, status luôn là
// completed, requireW9 luôn có mặt (mặc định false), timestamps chuyển
// thành chuỗi ISO
func (s *PlanLifecycleService) frozenFields(plan *contentmodels.ContentPlan) (map[string]interface{}, error) {
	planMap, err := utility.ToMap(plan)
	if err != nil {
		return nil, err
	}

	fields := utility.PickMapFields(planMap, historicalPlanFields)
	fields["status"] = contentmodels.PlanStatusCompleted

	if _, exists := fields["requireW9"]; !exists {
		fields["requireW9"] = false
	}

	for _, key := range []string{"dateCreated", "startDate"} {
		if raw, exists := fields[key]; exists {
			if ms, ok := toInt64(raw); ok && ms > 0 {
				fields[key] = time.UnixMilli(ms).UTC().Format(time.RFC3339)
			}
		}
	}

	return fields, nil
}

// userScopeFields tạo bản fields cho bản ghi historical scope user,
// kèm tên tổ chức, tổ chức không tra được thì dùng tên mặc định
func userScopeFields(fields map[string]interface{}, orgName string) map[string]interface{} {
	out := utility.PickMapFields(fields, historicalPlanFields)
	if orgName == "" {
		orgName = "Unknown Organization"
	}
	out["organizationName"] = orgName
	return out
}

// toInt64 đọc giá trị số nguyên từ dữ liệu bson đã decode
func toInt64(raw interface{}) (int64, bool) {
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
	return 0, false
}
