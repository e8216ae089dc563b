package metricsvc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

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

// MongoCounterSource đọc tổng counters sống từ các collection video.
// Owner cấp tổ chức gộp trên các video thuộc plan đang hoạt động của tổ
// chức, owner cấp plan đọc qua tham chiếu OriginalVideoRef, video gốc đã
// bị xóa khỏi tổ chức thì tham chiếu được bỏ qua.
type MongoCounterSource struct {
	videos     *basesvc.BaseServiceMongoImpl[contentmodels.Video]
	planVideos *basesvc.BaseServiceMongoImpl[contentmodels.PlanVideo]
	plans      *basesvc.BaseServiceMongoImpl[contentmodels.ContentPlan]
}

// NewMongoCounterSource tạo mới MongoCounterSource từ registry collections
func NewMongoCounterSource() (*MongoCounterSource, error) {
	videosCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ContentVideos)
	if !exist {
		return nil, fmt.Errorf("failed to get content_videos collection: %v", common.ErrNotFound)
	}
	planVideosCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.PlanVideos)
	if !exist {
		return nil, fmt.Errorf("failed to get content_plan_videos collection: %v", common.ErrNotFound)
	}
	plansCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ContentPlans)
	if !exist {
		return nil, fmt.Errorf("failed to get content_plans collection: %v", common.ErrNotFound)
	}

	return &MongoCounterSource{
		videos:     basesvc.NewBaseServiceMongo[contentmodels.Video](videosCol),
		planVideos: basesvc.NewBaseServiceMongo[contentmodels.PlanVideo](planVideosCol),
		plans:      basesvc.NewBaseServiceMongo[contentmodels.ContentPlan](plansCol),
	}, nil
}

// OwnerTotals trả về tổng counters tuyệt đối hiện tại của owner
func (s *MongoCounterSource) OwnerTotals(ctx context.Context, owner metricstore.Owner) (CounterTotals, error) {
	switch owner.Scope {
	case metricmodels.OwnerScopeOrganization:
		return s.organizationTotals(ctx, owner)
	case metricmodels.OwnerScopePlan:
		return s.planTotals(ctx, owner)
	default:
		return CounterTotals{}, common.ErrInvalidInput
	}
}

// organizationTotals gộp counters của các video thuộc plan đang hoạt động
// của tổ chức. Video đang theo dõi nhưng không nằm trong plan nào không
// được tính vào rollup cấp tổ chức.
func (s *MongoCounterSource) organizationTotals(ctx context.Context, owner metricstore.Owner) (CounterTotals, error) {
	activePlans, err := s.plans.Find(ctx, bson.M{
		"organizationId": owner.OrganizationID,
		"status":         contentmodels.PlanStatusActive,
	}, nil)
	if err != nil {
		return CounterTotals{}, err
	}
	if len(activePlans) == 0 {
		return CounterTotals{}, nil
	}

	planIDs := make([]primitive.ObjectID, 0, len(activePlans))
	for _, plan := range activePlans {
		planIDs = append(planIDs, plan.ID)
	}

	refs, err := s.planVideos.Find(ctx, bson.M{"planId": bson.M{"$in": planIDs}}, nil)
	if err != nil {
		return CounterTotals{}, err
	}
	videoRefs := distinctVideoRefs(refs)
	if len(videoRefs) == 0 {
		return CounterTotals{}, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"organizationId": owner.OrganizationID,
			"videoId":        bson.M{"$in": videoRefs},
			"isTracked":      true,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"viewCount":    bson.M{"$sum": "$viewCount"},
			"likeCount":    bson.M{"$sum": "$likeCount"},
			"commentCount": bson.M{"$sum": "$commentCount"},
			"shareCount":   bson.M{"$sum": "$shareCount"},
		}}},
	}

	cursor, err := s.videos.Collection().Aggregate(ctx, pipeline)
	if err != nil {
		return CounterTotals{}, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		ViewCount    int64 `bson:"viewCount"`
		LikeCount    int64 `bson:"likeCount"`
		CommentCount int64 `bson:"commentCount"`
		ShareCount   int64 `bson:"shareCount"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return CounterTotals{}, common.ConvertMongoError(err)
	}
	if len(results) == 0 {
		// Các plan đang hoạt động không còn video nào đang theo dõi
		return CounterTotals{}, nil
	}

	return CounterTotals{
		ViewCount:    results[0].ViewCount,
		LikeCount:    results[0].LikeCount,
		CommentCount: results[0].CommentCount,
		ShareCount:   results[0].ShareCount,
	}, nil
}

// distinctVideoRefs lấy danh sách videoId duy nhất từ các tham chiếu plan,
// một video nằm trong nhiều plan chỉ được tính một lần
func distinctVideoRefs(refs []contentmodels.PlanVideo) []string {
	videoRefs := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if ref.OriginalVideoRef == "" || seen[ref.OriginalVideoRef] {
			continue
		}
		seen[ref.OriginalVideoRef] = true
		videoRefs = append(videoRefs, ref.OriginalVideoRef)
	}
	return videoRefs
}

// planTotals gộp counters của các video gốc mà plan tham chiếu
func (s *MongoCounterSource) planTotals(ctx context.Context, owner metricstore.Owner) (CounterTotals, error) {
	planID := utility.String2ObjectID(owner.Ref)
	if planID.IsZero() {
		return CounterTotals{}, common.ErrInvalidInput
	}

	refs, err := s.planVideos.Find(ctx, bson.M{"planId": planID}, nil)
	if err != nil {
		return CounterTotals{}, err
	}

	log := logger.GetAppLogger()
	totals := CounterTotals{}
	for _, ref := range refs {
		video, err := s.videos.FindOne(ctx, bson.M{
			"organizationId": owner.OrganizationID,
			"videoId":        ref.OriginalVideoRef,
		}, nil)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				// Video gốc không còn, bỏ qua tham chiếu
				log.WithFields(map[string]interface{}{
					"planId":   owner.Ref,
					"videoRef": ref.OriginalVideoRef,
				}).Warn("📈 [ROLLUP] Video gốc của tham chiếu không còn tồn tại, bỏ qua")
				continue
			}
			return CounterTotals{}, err
		}

		totals.ViewCount += video.ViewCount
		totals.LikeCount += video.LikeCount
		totals.CommentCount += video.CommentCount
		totals.ShareCount += video.ShareCount
	}

	return totals, nil
}

// MongoOwnerMarker ghi key entry theo giờ mới nhất lên document tổ chức
// hoặc content plan sau mỗi lượt rollup theo giờ
type MongoOwnerMarker struct {
	organizations *basesvc.BaseServiceMongoImpl[authmodels.Organization]
	plans         *basesvc.BaseServiceMongoImpl[contentmodels.ContentPlan]
}

// NewMongoOwnerMarker tạo mới MongoOwnerMarker từ registry collections
func NewMongoOwnerMarker() (*MongoOwnerMarker, error) {
	orgsCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Organizations)
	if !exist {
		return nil, fmt.Errorf("failed to get auth_organizations collection: %v", common.ErrNotFound)
	}
	plansCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ContentPlans)
	if !exist {
		return nil, fmt.Errorf("failed to get content_plans collection: %v", common.ErrNotFound)
	}

	return &MongoOwnerMarker{
		organizations: basesvc.NewBaseServiceMongo[authmodels.Organization](orgsCol),
		plans:         basesvc.NewBaseServiceMongo[contentmodels.ContentPlan](plansCol),
	}, nil
}

// MarkHourly cập nhật most_recent_hourly cho owner theo scope
func (m *MongoOwnerMarker) MarkHourly(ctx context.Context, owner metricstore.Owner, periodKey string) error {
	update := bson.M{
		"$set": bson.M{"mostRecentHourly": periodKey},
	}

	switch owner.Scope {
	case metricmodels.OwnerScopeOrganization:
		return m.organizations.UpdateOne(ctx, bson.M{"_id": owner.OrganizationID}, update, nil)
	case metricmodels.OwnerScopePlan:
		planID := utility.String2ObjectID(owner.Ref)
		if planID.IsZero() {
			return common.ErrInvalidInput
		}
		return m.plans.UpdateOne(ctx, bson.M{"_id": planID}, update, nil)
	default:
		return common.ErrInvalidInput
	}
}
