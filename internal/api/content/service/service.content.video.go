// Package contentsvc chứa các service quản lý content plan và video của tổ chức.
package contentsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "ovrsee/internal/api/base/service"
	contentmodels "ovrsee/internal/api/content/models"
	metricmodels "ovrsee/internal/api/metrics/models"
	metricsvc "ovrsee/internal/api/metrics/service"
	"ovrsee/internal/common"
	"ovrsee/internal/global"
	"ovrsee/internal/logger"
	"ovrsee/internal/utility"
)

// VideoPayload là một video trong một lần fetch từ nguồn (TikTok)
type VideoPayload struct {
	VideoID      string      `json:"videoId" validate:"required"`
	Description  string      `json:"description,omitempty" validate:"omitempty,no_xss"`
	ShareURL     string      `json:"shareUrl,omitempty"`
	CreateTime   interface{} `json:"createTime" validate:"required"` // Epoch seconds hoặc {seconds, nanoseconds}
	ViewCount    int64       `json:"viewCount" validate:"gte=0"`
	LikeCount    int64       `json:"likeCount" validate:"gte=0"`
	CommentCount int64       `json:"commentCount" validate:"gte=0"`
	ShareCount   int64       `json:"shareCount" validate:"gte=0"`
}

// IngestSummary là kết quả của một lượt ingest video
type IngestSummary struct {
	Received   int `json:"received"`   // Số video trong payload
	Created    int `json:"created"`    // Số video tạo mới
	Updated    int `json:"updated"`    // Số video cập nhật counters
	SkippedOld int `json:"skippedOld"` // Số video mới bị bỏ qua vì quá cũ
	SkippedBad int `json:"skippedBad"` // Số video bỏ qua vì dữ liệu hỏng
	MarkedDown int `json:"markedDown"` // Số video không còn trong lần fetch, đánh dấu is_up=false
}

// videoRepository là phần kho video mà service ingest dùng tới
type videoRepository interface {
	FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (contentmodels.Video, error)
	InsertOne(ctx context.Context, video contentmodels.Video) (contentmodels.Video, error)
	UpdateOne(ctx context.Context, filter interface{}, update bson.M, opts *options.UpdateOptions) error
	UpdateMany(ctx context.Context, filter interface{}, update bson.M) (int64, error)
}

// snapshotRecorder ghi snapshot counters kèm delta cho một video
type snapshotRecorder interface {
	RecordSnapshot(ctx context.Context, orgID primitive.ObjectID, videoRef string, totals metricsvc.CounterTotals, at time.Time) (*metricmodels.MetricSnapshot, error)
}

// VideoIngestService nạp kết quả fetch video vào tổ chức.
// Video mới chỉ được nhận nếu đăng trong ngưỡng freshness (mặc định 24 giờ),
// video đã theo dõi luôn được cập nhật counters và ghi snapshot kèm delta.
type VideoIngestService struct {
	videos    videoRepository
	snapshots snapshotRecorder
	freshness time.Duration
	now       func() time.Time
}

// NewVideoIngestService tạo mới VideoIngestService.
// freshnessHours <= 0 sẽ dùng mặc định 24 giờ.
func NewVideoIngestService(freshnessHours int) (*VideoIngestService, error) {
	videosCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ContentVideos)
	if !exist {
		return nil, fmt.Errorf("failed to get content_videos collection: %v", common.ErrNotFound)
	}
	snapshots, err := metricsvc.NewSnapshotService()
	if err != nil {
		return nil, err
	}

	if freshnessHours <= 0 {
		freshnessHours = 24
	}

	return &VideoIngestService{
		videos:    basesvc.NewBaseServiceMongo[contentmodels.Video](videosCol),
		snapshots: snapshots,
		freshness: time.Duration(freshnessHours) * time.Hour,
		now:       time.Now,
	}, nil
}

// IngestFetched nạp một lượt fetch video cho tổ chức.
// Video có trong hệ thống nhưng vắng mặt trong payload bị đánh dấu
// is_up=false và is_tracked=false, không bị xóa.
func (s *VideoIngestService) IngestFetched(ctx context.Context, orgID primitive.ObjectID, payloads []VideoPayload) (*IngestSummary, error) {
	log := logger.GetAppLogger()
	now := s.now().UTC()

	summary := &IngestSummary{Received: len(payloads)}
	fetchedIDs := make(map[string]bool, len(payloads))

	for _, payload := range payloads {
		if payload.VideoID == "" {
			summary.SkippedBad++
			continue
		}

		createTime, err := utility.ParseCreateTime(payload.CreateTime)
		if err != nil {
			summary.SkippedBad++
			log.WithFields(map[string]interface{}{
				"orgId":   orgID.Hex(),
				"videoId": payload.VideoID,
			}).Warn("🎬 [INGEST] Không đọc được create_time của video, bỏ qua")
			continue
		}

		fetchedIDs[payload.VideoID] = true

		existing, err := s.videos.FindOne(ctx, bson.M{
			"organizationId": orgID,
			"videoId":        payload.VideoID,
		}, nil)

		switch {
		case err == nil:
			// Video đã theo dõi: cập nhật counters, giữ nguyên isInPlan
			update := bson.M{
				"$set": bson.M{
					"description":  payload.Description,
					"shareUrl":     payload.ShareURL,
					"viewCount":    payload.ViewCount,
					"likeCount":    payload.LikeCount,
					"commentCount": payload.CommentCount,
					"shareCount":   payload.ShareCount,
					"isUp":         true,
					"isTracked":    true,
				},
			}
			if err := s.videos.UpdateOne(ctx, bson.M{"_id": existing.ID}, update, nil); err != nil {
				return nil, err
			}
			summary.Updated++

		case errors.Is(err, common.ErrNotFound):
			// Video mới: chỉ nhận nếu đủ mới
			if now.Sub(createTime) >= s.freshness {
				summary.SkippedOld++
				continue
			}
			video := contentmodels.Video{
				VideoID:        payload.VideoID,
				OrganizationID: orgID,
				Description:    payload.Description,
				ShareURL:       payload.ShareURL,
				CreateTime:     createTime.UnixMilli(),
				IsInPlan:       false,
				IsUp:           true,
				IsTracked:      true,
				ViewCount:      payload.ViewCount,
				LikeCount:      payload.LikeCount,
				CommentCount:   payload.CommentCount,
				ShareCount:     payload.ShareCount,
			}
			if _, err := s.videos.InsertOne(ctx, video); err != nil {
				return nil, err
			}
			summary.Created++

		default:
			return nil, err
		}

		// Snapshot kèm delta so với snapshot trước của video
		totals := metricsvc.CounterTotals{
			ViewCount:    payload.ViewCount,
			LikeCount:    payload.LikeCount,
			CommentCount: payload.CommentCount,
			ShareCount:   payload.ShareCount,
		}
		if _, err := s.snapshots.RecordSnapshot(ctx, orgID, payload.VideoID, totals, now); err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"videoId": payload.VideoID,
			}).Warn("🎬 [INGEST] Lỗi ghi snapshot cho video")
		}
	}

	// Video vắng mặt trong lần fetch không còn hiện diện trên nguồn
	if len(fetchedIDs) > 0 {
		present := make([]string, 0, len(fetchedIDs))
		for id := range fetchedIDs {
			present = append(present, id)
		}
		markedDown, err := s.markMissing(ctx, orgID, present)
		if err != nil {
			return nil, err
		}
		summary.MarkedDown = int(markedDown)
	}

	log.WithFields(map[string]interface{}{
		"orgId":      orgID.Hex(),
		"received":   summary.Received,
		"created":    summary.Created,
		"updated":    summary.Updated,
		"skippedOld": summary.SkippedOld,
		"skippedBad": summary.SkippedBad,
		"markedDown": summary.MarkedDown,
	}).Info("🎬 [INGEST] Hoàn thành lượt ingest video")

	return summary, nil
}

// markMissing đánh dấu các video đang is_up nhưng vắng mặt trong lần fetch
func (s *VideoIngestService) markMissing(ctx context.Context, orgID primitive.ObjectID, presentIDs []string) (int64, error) {
	filter := bson.M{
		"organizationId": orgID,
		"isUp":           true,
		"videoId":        bson.M{"$nin": presentIDs},
	}
	update := bson.M{
		"$set": bson.M{
			"isUp":      false,
			"isTracked": false,
		},
		"$currentDate": bson.M{"updatedAt": true},
	}

	return s.videos.UpdateMany(ctx, filter, update)
}
