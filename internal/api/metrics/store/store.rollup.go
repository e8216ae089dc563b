// Package metricstore cung cấp tầng lưu trữ cho các chuỗi rollup số liệu.
// Mỗi chuỗi được định danh bởi owner (tổ chức hoặc content plan) và granularity.
package metricstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	metricmodels "ovrsee/internal/api/metrics/models"
)

// Owner định danh chủ sở hữu của một chuỗi rollup
type Owner struct {
	OrganizationID primitive.ObjectID // Tổ chức sở hữu
	Scope          string             // organization hoặc plan
	Ref            string             // Hex ID của plan, rỗng với scope organization
}

// OrganizationOwner tạo owner cấp tổ chức
func OrganizationOwner(orgID primitive.ObjectID) Owner {
	return Owner{OrganizationID: orgID, Scope: metricmodels.OwnerScopeOrganization}
}

// PlanOwner tạo owner cấp content plan
func PlanOwner(orgID, planID primitive.ObjectID) Owner {
	return Owner{OrganizationID: orgID, Scope: metricmodels.OwnerScopePlan, Ref: planID.Hex()}
}

// RollupStore là hợp đồng lưu trữ cho các chuỗi rollup.
// Mọi thao tác ghi đều idempotent: ghi lại cùng entry không tạo bản ghi trùng.
//
// Với granularity dạng period (weekly/monthly/quarterly) chuỗi chỉ có một
// document container, entry được đọc/ghi qua LatestEntry và PutContainer.
type RollupStore interface {
	// LatestEntry trả về entry mới nhất của chuỗi, common.ErrNotFound nếu chuỗi rỗng
	LatestEntry(ctx context.Context, owner Owner, gran metricmodels.Granularity) (*metricmodels.RollupEntry, error)

	// Entry trả về entry theo periodKey, common.ErrNotFound nếu không có
	Entry(ctx context.Context, owner Owner, gran metricmodels.Granularity, periodKey string) (*metricmodels.RollupEntry, error)

	// Boundary trả về entry biên trong khoảng [start, end).
	// end zero nghĩa là không chặn trên. asc=true trả entry sớm nhất,
	// asc=false trả entry muộn nhất. common.ErrNotFound nếu khoảng rỗng.
	Boundary(ctx context.Context, owner Owner, gran metricmodels.Granularity, start, end time.Time, asc bool) (*metricmodels.RollupEntry, error)

	// PutEntry upsert entry theo periodKey của entry
	PutEntry(ctx context.Context, owner Owner, gran metricmodels.Granularity, entry *metricmodels.RollupEntry) error

	// PutContainer merge entry mới nhất vào document container của chuỗi
	PutContainer(ctx context.Context, owner Owner, gran metricmodels.Granularity, entry *metricmodels.RollupEntry) error
}
