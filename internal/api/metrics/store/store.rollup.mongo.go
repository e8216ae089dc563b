package metricstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "ovrsee/internal/api/base/service"
	metricmodels "ovrsee/internal/api/metrics/models"
	"ovrsee/internal/common"
	"ovrsee/internal/global"
)

// MongoRollupStore lưu các chuỗi rollup trong collection metric_rollups.
// Document container có periodKey rỗng, document entry có periodKey là key thời gian.
type MongoRollupStore struct {
	*basesvc.BaseServiceMongoImpl[metricmodels.RollupDoc]
}

// NewMongoRollupStore tạo mới MongoRollupStore từ registry collections
func NewMongoRollupStore() (*MongoRollupStore, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.MetricRollups)
	if !exist {
		return nil, fmt.Errorf("failed to get metric_rollups collection: %v", common.ErrNotFound)
	}

	return &MongoRollupStore{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[metricmodels.RollupDoc](collection),
	}, nil
}

// ownerFilter tạo filter cơ sở cho một chuỗi rollup
func (s *MongoRollupStore) ownerFilter(owner Owner, gran metricmodels.Granularity) bson.M {
	return bson.M{
		"organizationId": owner.OrganizationID,
		"ownerScope":     owner.Scope,
		"ownerRef":       owner.Ref,
		"granularity":    string(gran),
	}
}

// LatestEntry trả về entry mới nhất của chuỗi
func (s *MongoRollupStore) LatestEntry(ctx context.Context, owner Owner, gran metricmodels.Granularity) (*metricmodels.RollupEntry, error) {
	if gran.IsPeriod() {
		// Granularity dạng period chỉ có document container
		doc, err := s.FindOne(ctx, s.containerFilter(owner, gran), nil)
		if err != nil {
			return nil, err
		}
		if doc.MostRecentEntry == nil {
			return nil, common.ErrNotFound
		}
		return doc.MostRecentEntry, nil
	}

	filter := s.ownerFilter(owner, gran)
	filter["periodKey"] = bson.M{"$ne": ""}

	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	doc, err := s.FindOne(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	if doc.Entry == nil {
		return nil, common.ErrNotFound
	}
	return doc.Entry, nil
}

// Entry trả về entry theo periodKey
func (s *MongoRollupStore) Entry(ctx context.Context, owner Owner, gran metricmodels.Granularity, periodKey string) (*metricmodels.RollupEntry, error) {
	if periodKey == "" {
		return nil, common.ErrInvalidInput
	}

	filter := s.ownerFilter(owner, gran)
	filter["periodKey"] = periodKey

	doc, err := s.FindOne(ctx, filter, nil)
	if err != nil {
		return nil, err
	}
	if doc.Entry == nil {
		return nil, common.ErrNotFound
	}
	return doc.Entry, nil
}

// Boundary trả về entry biên trong khoảng [start, end)
func (s *MongoRollupStore) Boundary(ctx context.Context, owner Owner, gran metricmodels.Granularity, start, end time.Time, asc bool) (*metricmodels.RollupEntry, error) {
	filter := s.ownerFilter(owner, gran)
	filter["periodKey"] = bson.M{"$ne": ""}

	tsFilter := bson.M{"$gte": start.UnixMilli()}
	if !end.IsZero() {
		tsFilter["$lt"] = end.UnixMilli()
	}
	filter["timestamp"] = tsFilter

	order := -1
	if asc {
		order = 1
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: order}})

	doc, err := s.FindOne(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	if doc.Entry == nil {
		return nil, common.ErrNotFound
	}
	return doc.Entry, nil
}

// PutEntry upsert entry theo periodKey của entry
func (s *MongoRollupStore) PutEntry(ctx context.Context, owner Owner, gran metricmodels.Granularity, entry *metricmodels.RollupEntry) error {
	if entry == nil || entry.PeriodKey == "" {
		return common.ErrInvalidInput
	}

	filter := s.ownerFilter(owner, gran)
	filter["periodKey"] = entry.PeriodKey

	update := bson.M{
		"$set": bson.M{
			"entry":     entry,
			"timestamp": entry.Timestamp,
		},
	}
	return s.UpsertOne(ctx, filter, update)
}

// containerFilter tạo filter cho document container của chuỗi
func (s *MongoRollupStore) containerFilter(owner Owner, gran metricmodels.Granularity) bson.M {
	filter := s.ownerFilter(owner, gran)
	filter["periodKey"] = ""
	return filter
}

// PutContainer merge entry mới nhất vào document container của chuỗi
func (s *MongoRollupStore) PutContainer(ctx context.Context, owner Owner, gran metricmodels.Granularity, entry *metricmodels.RollupEntry) error {
	if entry == nil {
		return common.ErrInvalidInput
	}

	update := bson.M{
		"$set": bson.M{
			"mostRecentEntry": entry,
			"timestamp":       entry.Timestamp,
		},
	}
	return s.UpsertOne(ctx, s.containerFilter(owner, gran), update)
}
