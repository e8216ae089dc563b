package global

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	"ovrsee/config"
	"ovrsee/internal/registry"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	Organizations string // Tên collection cho tổ chức
	Users         string // Tên collection cho người dùng

	ContentPlans    string // Tên collection cho content plan
	ContentVideos   string // Tên collection cho video thuộc tổ chức
	PlanVideos      string // Tên collection cho tham chiếu video trong content plan
	HistoricalPlans string // Tên collection cho content plan đã đóng băng sau khi hết hạn

	MetricSnapshots   string // Tên collection cho snapshot số liệu video
	MetricDailyCloses string // Tên collection cho số liệu chốt cuối ngày của video
	MetricRollups     string // Tên collection cho rollup entries (hourly/daily/weekly/monthly/quarterly)
}

// Các biến toàn cục
var Validate *validator.Validate              // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client             // Phiên kết nối tới MongoDB
var ServerConfig *config.Configuration        // Cấu hình của server
var MongoDB_ColNames = MongoDB_CollectionName{ // Tên các collection
	Organizations:     "auth_organizations",
	Users:             "auth_users",
	ContentPlans:      "content_plans",
	ContentVideos:     "content_videos",
	PlanVideos:        "content_plan_videos",
	HistoricalPlans:   "historical_content_plans",
	MetricSnapshots:   "metric_snapshots",
	MetricDailyCloses: "metric_daily_closes",
	MetricRollups:     "metric_rollups",
}

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryDatabase = registry.NewRegistry[*mongo.Database]()      // Registry chứa các databases
