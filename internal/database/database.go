package database

import (
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tariel-x/eventease/internal/models"
)

// Open connects to the SQLite database at path and migrates the schema.
// Use ":memory:" for a private throwaway database.
func Open(path string, log *slog.Logger) (*gorm.DB, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger: logger.New(
			slog.NewLogLogger(log.Handler(), slog.LevelWarn),
			logger.Config{
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	// SQLite serialises writers; one connection also keeps ":memory:" shared.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Contact{},
		&models.Team{},
		&models.TeamMember{},
		&models.Event{},
		&models.EventInvitation{},
		&models.EventTeamInvite{},
		&models.PushSubscription{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("Database ready", "path", path)
	return db, nil
}
