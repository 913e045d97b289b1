package database

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 连接 Postgres 并迁移账号相关表
// dsn: 连接串；models: 需要 AutoMigrate 的结构体指针
// 连接失败直接 Fatal：没有数据库，账号体系无法工作
func InitDB(dsn string, models ...interface{}) *gorm.DB {
	// 只打印慢查询和错误；本服务的 SQL 都是简单的账号/令牌读写
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("Postgres 连接失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("获取底层 SQL DB 失败: %v", err)
	}

	// 小流量服务，连接池给小一点即可
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			log.Fatalf("表迁移失败: %v", err)
		}
	}

	log.Println("Postgres 连接就绪")
	return db
}
