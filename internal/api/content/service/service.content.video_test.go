package contentsvc

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	contentmodels "ovrsee/internal/api/content/models"
	metricmodels "ovrsee/internal/api/metrics/models"
	metricsvc "ovrsee/internal/api/metrics/service"
	"ovrsee/internal/common"
)

// memVideoRepo giữ video trong bộ nhớ, hiểu đúng các filter mà service ingest dùng
type memVideoRepo struct {
	videos []contentmodels.Video
}

func (r *memVideoRepo) FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (contentmodels.Video, error) {
	f := filter.(bson.M)
	orgID := f["organizationId"].(primitive.ObjectID)
	videoID := f["videoId"].(string)
	for _, v := range r.videos {
		if v.OrganizationID == orgID && v.VideoID == videoID {
			return v, nil
		}
	}
	return contentmodels.Video{}, common.ErrNotFound
}

func (r *memVideoRepo) InsertOne(ctx context.Context, video contentmodels.Video) (contentmodels.Video, error) {
	video.ID = primitive.NewObjectID()
	r.videos = append(r.videos, video)
	return video, nil
}

func (r *memVideoRepo) UpdateOne(ctx context.Context, filter interface{}, update bson.M, opts *options.UpdateOptions) error {
	id := filter.(bson.M)["_id"].(primitive.ObjectID)
	set, _ := update["$set"].(bson.M)
	for i := range r.videos {
		if r.videos[i].ID != id {
			continue
		}
		applyVideoSet(&r.videos[i], set)
		return nil
	}
	return common.ErrNotFound
}

func (r *memVideoRepo) UpdateMany(ctx context.Context, filter interface{}, update bson.M) (int64, error) {
	f := filter.(bson.M)
	orgID := f["organizationId"].(primitive.ObjectID)
	excluded := f["videoId"].(bson.M)["$nin"].([]string)
	set, _ := update["$set"].(bson.M)

	var modified int64
	for i := range r.videos {
		v := &r.videos[i]
		if v.OrganizationID != orgID || !v.IsUp {
			continue
		}
		present := false
		for _, id := range excluded {
			if v.VideoID == id {
				present = true
				break
			}
		}
		if present {
			continue
		}
		applyVideoSet(v, set)
		modified++
	}
	return modified, nil
}

func applyVideoSet(v *contentmodels.Video, set bson.M) {
	for key, value := range set {
		switch key {
		case "description":
			v.Description = value.(string)
		case "shareUrl":
			v.ShareURL = value.(string)
		case "viewCount":
			v.ViewCount = value.(int64)
		case "likeCount":
			v.LikeCount = value.(int64)
		case "commentCount":
			v.CommentCount = value.(int64)
		case "shareCount":
			v.ShareCount = value.(int64)
		case "isUp":
			v.IsUp = value.(bool)
		case "isTracked":
			v.IsTracked = value.(bool)
		case "isInPlan":
			v.IsInPlan = value.(bool)
		}
	}
}

func (r *memVideoRepo) find(videoID string) *contentmodels.Video {
	for i := range r.videos {
		if r.videos[i].VideoID == videoID {
			return &r.videos[i]
		}
	}
	return nil
}

// fakeSnapshotRecorder đếm số snapshot được ghi theo videoRef
type fakeSnapshotRecorder struct {
	recorded []string
}

func (f *fakeSnapshotRecorder) RecordSnapshot(ctx context.Context, orgID primitive.ObjectID, videoRef string, totals metricsvc.CounterTotals, at time.Time) (*metricmodels.MetricSnapshot, error) {
	f.recorded = append(f.recorded, videoRef)
	return &metricmodels.MetricSnapshot{VideoRef: videoRef}, nil
}

func newIngestForTest(repo *memVideoRepo, rec *fakeSnapshotRecorder, at time.Time) *VideoIngestService {
	return &VideoIngestService{
		videos:    repo,
		snapshots: rec,
		freshness: 24 * time.Hour,
		now:       func() time.Time { return at },
	}
}

func TestIngest_GiuNguyenIsInPlanKhiCapNhat(t *testing.T) {
	orgID := primitive.NewObjectID()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := &memVideoRepo{videos: []contentmodels.Video{{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		VideoID:        "vid-1",
		IsInPlan:       true,
		IsUp:           true,
		IsTracked:      true,
		ViewCount:      100,
	}}}
	rec := &fakeSnapshotRecorder{}
	svc := newIngestForTest(repo, rec, now)

	summary, err := svc.IngestFetched(context.Background(), orgID, []VideoPayload{{
		VideoID:    "vid-1",
		CreateTime: now.AddDate(0, 0, -30).Unix(),
		ViewCount:  150,
	}})
	if err != nil {
		t.Fatalf("IngestFetched lỗi: %v", err)
	}
	if summary.Updated != 1 {
		t.Errorf("updated = %d, muốn 1", summary.Updated)
	}

	video := repo.find("vid-1")
	if video.ViewCount != 150 {
		t.Errorf("viewCount = %d, muốn 150", video.ViewCount)
	}
	// Cập nhật counters không được đụng tới trạng thái thuộc plan của video
	if !video.IsInPlan {
		t.Error("isInPlan phải được giữ nguyên sau khi cập nhật counters")
	}
	if len(rec.recorded) != 1 || rec.recorded[0] != "vid-1" {
		t.Errorf("snapshot ghi cho %v, muốn [vid-1]", rec.recorded)
	}
}

func TestIngest_NguongFreshnessChanVideoCu(t *testing.T) {
	orgID := primitive.NewObjectID()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := &memVideoRepo{}
	svc := newIngestForTest(repo, &fakeSnapshotRecorder{}, now)

	summary, err := svc.IngestFetched(context.Background(), orgID, []VideoPayload{
		{VideoID: "vid-moi", CreateTime: now.Add(-2 * time.Hour).Unix(), ViewCount: 10},
		{VideoID: "vid-cu", CreateTime: now.Add(-30 * time.Hour).Unix(), ViewCount: 9000},
	})
	if err != nil {
		t.Fatalf("IngestFetched lỗi: %v", err)
	}

	if summary.Created != 1 {
		t.Errorf("created = %d, muốn 1", summary.Created)
	}
	if summary.SkippedOld != 1 {
		t.Errorf("skippedOld = %d, muốn 1", summary.SkippedOld)
	}
	if repo.find("vid-cu") != nil {
		t.Error("video quá ngưỡng freshness không được tạo mới")
	}
	if repo.find("vid-moi") == nil {
		t.Error("video trong ngưỡng freshness phải được tạo mới")
	}
}

func TestIngest_CreateTimeHongBoQua(t *testing.T) {
	orgID := primitive.NewObjectID()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := &memVideoRepo{}
	rec := &fakeSnapshotRecorder{}
	svc := newIngestForTest(repo, rec, now)

	summary, err := svc.IngestFetched(context.Background(), orgID, []VideoPayload{
		{VideoID: "vid-hong", CreateTime: "khong phai thoi gian", ViewCount: 10},
	})
	if err != nil {
		t.Fatalf("IngestFetched lỗi: %v", err)
	}

	if summary.SkippedBad != 1 {
		t.Errorf("skippedBad = %d, muốn 1", summary.SkippedBad)
	}
	if repo.find("vid-hong") != nil {
		t.Error("video có create_time hỏng không được tạo")
	}
	if len(rec.recorded) != 0 {
		t.Errorf("snapshot ghi cho %v, muốn không có", rec.recorded)
	}
}

func TestIngest_VideoVangMatBiDanhDauNgung(t *testing.T) {
	orgID := primitive.NewObjectID()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := &memVideoRepo{videos: []contentmodels.Video{
		{
			ID:             primitive.NewObjectID(),
			OrganizationID: orgID,
			VideoID:        "vid-con",
			IsUp:           true,
			IsTracked:      true,
		},
		{
			ID:             primitive.NewObjectID(),
			OrganizationID: orgID,
			VideoID:        "vid-mat",
			IsInPlan:       true,
			IsUp:           true,
			IsTracked:      true,
		},
	}}
	svc := newIngestForTest(repo, &fakeSnapshotRecorder{}, now)

	summary, err := svc.IngestFetched(context.Background(), orgID, []VideoPayload{
		{VideoID: "vid-con", CreateTime: now.AddDate(0, 0, -10).Unix(), ViewCount: 50},
	})
	if err != nil {
		t.Fatalf("IngestFetched lỗi: %v", err)
	}

	if summary.MarkedDown != 1 {
		t.Errorf("markedDown = %d, muốn 1", summary.MarkedDown)
	}

	missing := repo.find("vid-mat")
	if missing.IsUp || missing.IsTracked {
		t.Error("video vắng mặt phải bị đánh dấu isUp=false, isTracked=false")
	}
	// Đánh dấu ngừng theo dõi không xóa video và không đụng tới isInPlan
	if !missing.IsInPlan {
		t.Error("isInPlan phải được giữ nguyên khi video bị đánh dấu ngừng")
	}
	still := repo.find("vid-con")
	if !still.IsUp || !still.IsTracked {
		t.Error("video còn trong lần fetch phải giữ isUp, isTracked")
	}
}
