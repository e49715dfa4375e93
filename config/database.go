package config

import (
	"fmt"
	"strings"

	"github.com/andrewpaige1/formcraft-api/logger"
	"github.com/andrewpaige1/formcraft-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the document store named by dsn and migrates the schema.
// Postgres URLs and key=value DSNs use the postgres driver, anything else is a sqlite path.
func Connect(dsn string, log *logger.Logger) (*gorm.DB, error) {
	dialector, driver := dialectorFor(dsn)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if driver == "sqlite" && isMemoryDSN(dsn) {
		// Each new connection to :memory: is a fresh empty database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Form{}, &models.Submission{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate database: %w", err)
	}

	log.Info("Database connected", "driver", driver)
	return db, nil
}

func dialectorFor(dsn string) (gorm.Dialector, string) {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") || strings.Contains(lower, "host=") {
		return postgres.Open(dsn), "postgres"
	}
	return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), "sqlite"
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
