package metricstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	metricmodels "ovrsee/internal/api/metrics/models"
	"ovrsee/internal/common"
)

// MemoryRollupStore là implementation in-memory của RollupStore, dùng cho test
// và chạy thử không cần MongoDB.
type MemoryRollupStore struct {
	mu         sync.RWMutex
	entries    map[string]map[string]*metricmodels.RollupEntry // series key -> periodKey -> entry
	containers map[string]*metricmodels.RollupEntry            // series key -> most recent entry
}

// NewMemoryRollupStore tạo mới MemoryRollupStore
func NewMemoryRollupStore() *MemoryRollupStore {
	return &MemoryRollupStore{
		entries:    make(map[string]map[string]*metricmodels.RollupEntry),
		containers: make(map[string]*metricmodels.RollupEntry),
	}
}

// seriesKey tạo key duy nhất cho một chuỗi rollup
func seriesKey(owner Owner, gran metricmodels.Granularity) string {
	return fmt.Sprintf("%s|%s|%s|%s", owner.OrganizationID.Hex(), owner.Scope, owner.Ref, gran)
}

// cloneEntry sao chép entry để caller không sửa được dữ liệu trong store
func cloneEntry(e *metricmodels.RollupEntry) *metricmodels.RollupEntry {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// LatestEntry trả về entry mới nhất của chuỗi
func (s *MemoryRollupStore) LatestEntry(ctx context.Context, owner Owner, gran metricmodels.Granularity) (*metricmodels.RollupEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := seriesKey(owner, gran)

	if gran.IsPeriod() {
		entry, exists := s.containers[key]
		if !exists || entry == nil {
			return nil, common.ErrNotFound
		}
		return cloneEntry(entry), nil
	}

	var latest *metricmodels.RollupEntry
	for _, entry := range s.entries[key] {
		if latest == nil || entry.Timestamp > latest.Timestamp {
			latest = entry
		}
	}
	if latest == nil {
		return nil, common.ErrNotFound
	}
	return cloneEntry(latest), nil
}

// Entry trả về entry theo periodKey
func (s *MemoryRollupStore) Entry(ctx context.Context, owner Owner, gran metricmodels.Granularity, periodKey string) (*metricmodels.RollupEntry, error) {
	if periodKey == "" {
		return nil, common.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[seriesKey(owner, gran)][periodKey]
	if !exists {
		return nil, common.ErrNotFound
	}
	return cloneEntry(entry), nil
}

// Boundary trả về entry biên trong khoảng [start, end)
func (s *MemoryRollupStore) Boundary(ctx context.Context, owner Owner, gran metricmodels.Granularity, start, end time.Time, asc bool) (*metricmodels.RollupEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	startMs := start.UnixMilli()
	endMs := int64(0)
	if !end.IsZero() {
		endMs = end.UnixMilli()
	}

	var boundary *metricmodels.RollupEntry
	for _, entry := range s.entries[seriesKey(owner, gran)] {
		if entry.Timestamp < startMs {
			continue
		}
		if endMs != 0 && entry.Timestamp >= endMs {
			continue
		}
		if boundary == nil {
			boundary = entry
			continue
		}
		if asc && entry.Timestamp < boundary.Timestamp {
			boundary = entry
		}
		if !asc && entry.Timestamp > boundary.Timestamp {
			boundary = entry
		}
	}
	if boundary == nil {
		return nil, common.ErrNotFound
	}
	return cloneEntry(boundary), nil
}

// PutEntry upsert entry theo periodKey của entry
func (s *MemoryRollupStore) PutEntry(ctx context.Context, owner Owner, gran metricmodels.Granularity, entry *metricmodels.RollupEntry) error {
	if entry == nil || entry.PeriodKey == "" {
		return common.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := seriesKey(owner, gran)
	if s.entries[key] == nil {
		s.entries[key] = make(map[string]*metricmodels.RollupEntry)
	}
	s.entries[key][entry.PeriodKey] = cloneEntry(entry)
	return nil
}

// PutContainer merge entry mới nhất vào container của chuỗi
func (s *MemoryRollupStore) PutContainer(ctx context.Context, owner Owner, gran metricmodels.Granularity, entry *metricmodels.RollupEntry) error {
	if entry == nil {
		return common.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.containers[seriesKey(owner, gran)] = cloneEntry(entry)
	return nil
}
