package database

import (
	"fmt"
	"log"

	"budgetly/config"
	"budgetly/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// DSN 根据配置构建 MySQL 连接字符串
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
	)
}

// Init 初始化数据库连接
func Init(cfg *config.Config) error {
	logLevel := logger.Info
	if cfg.Server.Mode == "release" {
		logLevel = logger.Warn
	}

	var err error
	DB, err = gorm.Open(mysql.Open(DSN(cfg.Database)), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	if err := Migrate(DB); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	log.Println("数据库初始化成功")
	return nil
}

// Migrate 自动迁移全部数据表
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.UserSettings{},
		&models.Category{},
		&models.Transaction{},
		&models.BudgetCategory{},
		&models.RecurringPayment{},
		&models.Goal{},
		&models.PasswordReset{},
		&models.AIModel{},
		&models.AIChatMessage{},
		&models.AIReport{},
	); err != nil {
		return err
	}

	// 兼容历史数据：当所有 AIModel 的 sort_order 均为 0 且有多条时，按 id 赋 0,1,2,...
	var total, zeroCnt int64
	db.Model(&models.AIModel{}).Count(&total)
	db.Model(&models.AIModel{}).Where("sort_order = 0").Count(&zeroCnt)
	if total > 1 && zeroCnt == total {
		var aiModels []models.AIModel
		if err := db.Order("id").Find(&aiModels).Error; err == nil {
			for i, m := range aiModels {
				_ = db.Model(&m).Update("sort_order", i).Error
			}
		}
	}
	return nil
}

// Close 关闭底层连接池
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
