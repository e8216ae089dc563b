package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"ovrsee/config"
	authmodels "ovrsee/internal/api/auth/models"
	contentmodels "ovrsee/internal/api/content/models"
	metricmodels "ovrsee/internal/api/metrics/models"
	"ovrsee/internal/database"
	"ovrsee/internal/global"
	"ovrsee/internal/utility"
)

// InitGlobal khởi tạo các biến toàn cục
func InitGlobal() {
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
	initFirebase()         // Khởi tạo Firebase
}

// Hàm khởi tạo validator (dùng global.InitValidator để đăng ký custom validators: no_xss, exists, ...)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.ServerConfig = config.NewConfig()
	if global.ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	// Khởi tạo các db và collections nếu chưa có
	database.EnsureDatabaseAndCollections(global.MongoDB_Session)
	logrus.Info("Ensured database and collections")

	// Khởi tạo các index cho các collection
	dbName := global.ServerConfig.MongoDB_DBName
	db := global.MongoDB_Session.Database(dbName)
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Organizations), authmodels.Organization{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Users), authmodels.User{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.ContentPlans), contentmodels.ContentPlan{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.ContentVideos), contentmodels.Video{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.PlanVideos), contentmodels.PlanVideo{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.HistoricalPlans), contentmodels.HistoricalContentPlan{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.MetricSnapshots), metricmodels.MetricSnapshot{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.MetricDailyCloses), metricmodels.MetricDailyClose{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.MetricRollups), metricmodels.RollupDoc{})
}

// initFirebase khởi tạo Firebase Admin SDK
func initFirebase() {
	cfg := global.ServerConfig

	if cfg.FirebaseProjectID == "" || cfg.FirebaseCredentialsPath == "" {
		logrus.Warn("Firebase config không đầy đủ, bỏ qua khởi tạo Firebase")
		return
	}

	if err := utility.InitFirebase(cfg.FirebaseProjectID, cfg.FirebaseCredentialsPath); err != nil {
		logrus.Errorf("Failed to initialize Firebase: %v", err)
		return
	}

	logrus.Info("Firebase initialized successfully")
}
