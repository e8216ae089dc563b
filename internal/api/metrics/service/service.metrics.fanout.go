package metricsvc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
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
)

// OwnerLister liệt kê các owner cần chạy rollup: mọi tổ chức và mọi
// content plan đang hoạt động của từng tổ chức.
type OwnerLister interface {
	ListOwners(ctx context.Context) ([]metricstore.Owner, error)
}

// MongoOwnerLister đọc danh sách owner từ collection tổ chức và content plan
type MongoOwnerLister struct {
	organizations *basesvc.BaseServiceMongoImpl[authmodels.Organization]
	plans         *basesvc.BaseServiceMongoImpl[contentmodels.ContentPlan]
}

// NewMongoOwnerLister tạo mới MongoOwnerLister từ registry collections
func NewMongoOwnerLister() (*MongoOwnerLister, error) {
	orgsCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Organizations)
	if !exist {
		return nil, fmt.Errorf("failed to get auth_organizations collection: %v", common.ErrNotFound)
	}
	plansCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ContentPlans)
	if !exist {
		return nil, fmt.Errorf("failed to get content_plans collection: %v", common.ErrNotFound)
	}

	return &MongoOwnerLister{
		organizations: basesvc.NewBaseServiceMongo[authmodels.Organization](orgsCol),
		plans:         basesvc.NewBaseServiceMongo[contentmodels.ContentPlan](plansCol),
	}, nil
}

// ListOwners trả về owner cấp tổ chức trước owner cấp plan của tổ chức đó
func (l *MongoOwnerLister) ListOwners(ctx context.Context) ([]metricstore.Owner, error) {
	orgs, err := l.organizations.Find(ctx, bson.D{}, nil)
	if err != nil {
		return nil, err
	}

	owners := make([]metricstore.Owner, 0, len(orgs))
	for _, org := range orgs {
		owners = append(owners, metricstore.OrganizationOwner(org.ID))

		plans, err := l.plans.Find(ctx, bson.M{
			"organizationId": org.ID,
			"status":         contentmodels.PlanStatusActive,
		}, nil)
		if err != nil {
			return nil, err
		}
		for _, plan := range plans {
			owners = append(owners, metricstore.PlanOwner(org.ID, plan.ID))
		}
	}

	return owners, nil
}

// RollupSummary là kết quả của một lượt chạy rollup toàn hệ thống
type RollupSummary struct {
	Owners    int           // Tổng số owner được xử lý
	Succeeded int           // Số owner xử lý trọn vẹn
	Failed    int           // Số owner có ít nhất một bước lỗi
	Elapsed   time.Duration // Thời gian chạy
}

// RollupCoordinator fan-out việc rollup cho mọi owner qua một pool worker
// có giới hạn. Lỗi của một owner không ảnh hưởng các owner khác.
type RollupCoordinator struct {
	hourly   *HourlyRollupService
	period   *PeriodRollupService
	lister   OwnerLister
	poolSize int
	now      func() time.Time
}

// NewRollupCoordinator tạo mới RollupCoordinator.
// poolSize <= 0 sẽ dùng mặc định 10 worker.
func NewRollupCoordinator(hourly *HourlyRollupService, period *PeriodRollupService, lister OwnerLister, poolSize int) *RollupCoordinator {
	if poolSize <= 0 {
		poolSize = 10
	}
	return &RollupCoordinator{
		hourly:   hourly,
		period:   period,
		lister:   lister,
		poolSize: poolSize,
		now:      time.Now,
	}
}

// RunAll chạy rollup cho mọi owner: entry theo giờ, entry theo ngày của hôm
// nay, rồi ba cửa sổ trượt. Các owner chạy song song tối đa poolSize, các
// granularity của một owner chạy tuần tự vì cấp sau đọc kết quả cấp trước.
func (c *RollupCoordinator) RunAll(ctx context.Context) (*RollupSummary, error) {
	log := logger.GetAppLogger()
	started := c.now()

	owners, err := c.lister.ListOwners(ctx)
	if err != nil {
		return nil, err
	}

	var succeeded, failed int64
	tasks := make(chan metricstore.Owner)

	var wg sync.WaitGroup
	for i := 0; i < c.poolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for owner := range tasks {
				if c.runOwner(ctx, owner) {
					atomic.AddInt64(&succeeded, 1)
				} else {
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	for _, owner := range owners {
		select {
		case <-ctx.Done():
			// Dừng phát task mới, chờ các task đang chạy kết thúc
			close(tasks)
			wg.Wait()
			return nil, ctx.Err()
		case tasks <- owner:
		}
	}
	close(tasks)
	wg.Wait()

	summary := &RollupSummary{
		Owners:    len(owners),
		Succeeded: int(succeeded),
		Failed:    int(failed),
		Elapsed:   c.now().Sub(started),
	}

	log.WithFields(map[string]interface{}{
		"owners":    summary.Owners,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"elapsed":   summary.Elapsed.String(),
	}).Info("📈 [ROLLUP] Hoàn thành lượt rollup")

	return summary, nil
}

// runOwner chạy trọn chuỗi granularity cho một owner, trả về true nếu không có lỗi
func (c *RollupCoordinator) runOwner(ctx context.Context, owner metricstore.Owner) (ok bool) {
	log := logger.GetAppLogger().WithFields(map[string]interface{}{
		"orgId":      owner.OrganizationID.Hex(),
		"ownerScope": owner.Scope,
		"ownerRef":   owner.Ref,
	})

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(map[string]interface{}{
				"panic": r,
			}).Error("📈 [ROLLUP] Panic khi rollup owner, các owner khác không bị ảnh hưởng")
			ok = false
		}
	}()

	if _, err := c.hourly.Run(ctx, owner); err != nil {
		log.WithError(err).Error("📈 [ROLLUP] Lỗi rollup theo giờ")
		return false
	}

	if _, err := c.period.RunDaily(ctx, owner, c.now()); err != nil {
		if errors.Is(err, common.ErrRollupEmptyWindow) {
			// Ngày chưa có entry theo giờ nào, các cửa sổ trượt vẫn chạy được
			log.Warn("📈 [ROLLUP] Ngày hiện tại chưa có entry theo giờ, bỏ qua entry theo ngày")
		} else {
			log.WithError(err).Error("📈 [ROLLUP] Lỗi rollup theo ngày")
			return false
		}
	}

	for _, gran := range []metricmodels.Granularity{
		metricmodels.GranularityWeekly,
		metricmodels.GranularityMonthly,
		metricmodels.GranularityQuarterly,
	} {
		if _, err := c.period.RunPeriod(ctx, owner, gran); err != nil {
			if errors.Is(err, common.ErrRollupEmptyWindow) {
				log.WithFields(map[string]interface{}{
					"granularity": string(gran),
				}).Warn("📈 [ROLLUP] Cửa sổ trượt không có entry theo ngày, bỏ qua")
				continue
			}
			log.WithError(err).WithFields(map[string]interface{}{
				"granularity": string(gran),
			}).Error("📈 [ROLLUP] Lỗi rollup cửa sổ trượt")
			return false
		}
	}

	return true
}
