package database

import (
	"context"
	"fmt"
	"time"

	"catering/config"
	"catering/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// DSN builds the MySQL connection string
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=UTC",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
	)
}

// Init opens the connection, migrates the schema and seeds the tag catalog
func Init(cfg *config.Config, log *zap.Logger) error {
	level := logger.Warn
	if cfg.Server.Mode == "debug" {
		level = logger.Info
	}

	var err error
	DB, err = gorm.Open(mysql.Open(DSN(cfg.Database)), &gorm.Config{
		Logger: logger.New(zap.NewStdLog(log.Named("gorm")), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(DB); err != nil {
		return err
	}

	inserted, err := SeedTags(DB, false)
	if err != nil {
		return err
	}
	if inserted > 0 {
		log.Info("seeded tag catalog", zap.Int("tags", inserted))
	}

	log.Info("database ready", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))
	return nil
}

// Migrate creates or updates every table
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.MenuItem{}, "Tags", &models.MenuItemTag{}); err != nil {
		return fmt.Errorf("setup menu_item_tags: %w", err)
	}
	if err := db.AutoMigrate(
		&models.Tag{},
		&models.Menu{},
		&models.Category{},
		&models.MenuItem{},
		&models.MenuItemTag{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SeedTags inserts the predefined tags when the table is empty.
// reset deletes every existing tag first; join rows go with them.
func SeedTags(db *gorm.DB, reset bool) (int, error) {
	inserted := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		if reset {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Tag{}).Error; err != nil {
				return fmt.Errorf("clear tags: %w", err)
			}
		} else {
			var count int64
			if err := tx.Model(&models.Tag{}).Count(&count).Error; err != nil {
				return fmt.Errorf("count tags: %w", err)
			}
			if count > 0 {
				return nil
			}
		}

		tags := models.PredefinedTags()
		if err := tx.Create(&tags).Error; err != nil {
			return fmt.Errorf("insert tags: %w", err)
		}
		inserted = len(tags)
		return nil
	})
	return inserted, err
}

// GetDB returns the shared connection
func GetDB() *gorm.DB {
	return DB
}

// Ping checks the connection is alive
func Ping(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
