package metricsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "ovrsee/internal/api/base/service"
	metricmodels "ovrsee/internal/api/metrics/models"
	"ovrsee/internal/common"
	"ovrsee/internal/global"
	"ovrsee/internal/logger"
	"ovrsee/internal/utility"
)

// SnapshotService quản lý snapshot số liệu video và số liệu chốt ngày.
// Snapshot chỉ sống trong thời gian ngắn phục vụ tính delta, daily close
// được giữ lâu dài làm lịch sử.
type SnapshotService struct {
	snapshots   *basesvc.BaseServiceMongoImpl[metricmodels.MetricSnapshot]
	dailyCloses *basesvc.BaseServiceMongoImpl[metricmodels.MetricDailyClose]
}

// NewSnapshotService tạo mới SnapshotService từ registry collections
func NewSnapshotService() (*SnapshotService, error) {
	snapshotsCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.MetricSnapshots)
	if !exist {
		return nil, fmt.Errorf("failed to get metric_snapshots collection: %v", common.ErrNotFound)
	}
	dailyClosesCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.MetricDailyCloses)
	if !exist {
		return nil, fmt.Errorf("failed to get metric_daily_closes collection: %v", common.ErrNotFound)
	}

	return &SnapshotService{
		snapshots:   basesvc.NewBaseServiceMongo[metricmodels.MetricSnapshot](snapshotsCol),
		dailyCloses: basesvc.NewBaseServiceMongo[metricmodels.MetricDailyClose](dailyClosesCol),
	}, nil
}

// RecordSnapshot ghi một snapshot mới cho video.
// NewViewCount là delta lượt xem so với snapshot liền trước của chính video
// đó, snapshot đầu tiên có delta 0.
func (s *SnapshotService) RecordSnapshot(ctx context.Context, orgID primitive.ObjectID, videoRef string, totals CounterTotals, at time.Time) (*metricmodels.MetricSnapshot, error) {
	newViewCount := int64(0)
	previous, err := s.LatestForVideo(ctx, orgID, videoRef)
	switch {
	case err == nil:
		newViewCount = ClampDelta(totals.ViewCount, previous.ViewCount)
	case errors.Is(err, common.ErrNotFound):
		// Snapshot đầu tiên của video
	default:
		return nil, err
	}

	snapshot := metricmodels.MetricSnapshot{
		OrganizationID: orgID,
		VideoRef:       videoRef,
		ViewCount:      totals.ViewCount,
		LikeCount:      totals.LikeCount,
		CommentCount:   totals.CommentCount,
		ShareCount:     totals.ShareCount,
		NewViewCount:   newViewCount,
		Timestamp:      at.UnixMilli(),
	}

	created, err := s.snapshots.InsertOne(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// LatestForVideo trả về snapshot mới nhất của video, common.ErrNotFound nếu chưa có
func (s *SnapshotService) LatestForVideo(ctx context.Context, orgID primitive.ObjectID, videoRef string) (*metricmodels.MetricSnapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	snapshot, err := s.snapshots.FindOne(ctx, bson.M{
		"organizationId": orgID,
		"videoRef":       videoRef,
	}, opts)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// PruneOlderThan xóa mọi snapshot cũ hơn cutoff, trả về số bản ghi đã xóa
func (s *SnapshotService) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.snapshots.DeleteMany(ctx, bson.M{
		"timestamp": bson.M{"$lt": cutoff.UnixMilli()},
	})
}

// ArchiveDailyCloses chốt snapshot cuối cùng của từng video trong ngày date
// thành bản ghi daily close. Chạy lại cùng ngày chỉ ghi đè, không nhân bản.
func (s *SnapshotService) ArchiveDailyCloses(ctx context.Context, date time.Time) (int, error) {
	dayStart := utility.DayStart(date)
	dayEnd := utility.NextDayStart(date)
	dateKey := utility.FormatDateKey(dayStart)

	// Lấy snapshot muộn nhất của mỗi video trong ngày
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"timestamp": bson.M{"$gte": dayStart.UnixMilli(), "$lt": dayEnd.UnixMilli()},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: 1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":            bson.M{"organizationId": "$organizationId", "videoRef": "$videoRef"},
			"organizationId": bson.M{"$last": "$organizationId"},
			"videoRef":       bson.M{"$last": "$videoRef"},
			"viewCount":      bson.M{"$last": "$viewCount"},
			"likeCount":      bson.M{"$last": "$likeCount"},
			"commentCount":   bson.M{"$last": "$commentCount"},
			"shareCount":     bson.M{"$last": "$shareCount"},
			"timestamp":      bson.M{"$last": "$timestamp"},
		}}},
		{{Key: "$project", Value: bson.M{"_id": 0}}},
	}

	cursor, err := s.snapshots.Collection().Aggregate(ctx, pipeline)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var closes []metricmodels.MetricDailyClose
	if err := cursor.All(ctx, &closes); err != nil {
		return 0, common.ConvertMongoError(err)
	}

	log := logger.GetAppLogger()
	archived := 0
	for _, c := range closes {
		filter := bson.M{
			"organizationId": c.OrganizationID,
			"videoRef":       c.VideoRef,
			"dateKey":        dateKey,
		}
		update := bson.M{
			"$set": bson.M{
				"viewCount":    c.ViewCount,
				"likeCount":    c.LikeCount,
				"commentCount": c.CommentCount,
				"shareCount":   c.ShareCount,
				"timestamp":    c.Timestamp,
			},
			"$setOnInsert": bson.M{"createdAt": time.Now().UnixMilli()},
		}
		if err := s.dailyCloses.UpsertOne(ctx, filter, update); err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"videoRef": c.VideoRef,
				"dateKey":  dateKey,
			}).Warn("🧹 [RETENTION] Lỗi chốt daily close cho video, bỏ qua")
			continue
		}
		archived++
	}

	return archived, nil
}
