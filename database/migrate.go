package database

import (
	"fmt"
	"strings"

	"collegium_backend/internal/config"
	"collegium_backend/internal/logger"
	"collegium_backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var gormDB *gorm.DB

// ConnectGorm opens the GORM connection using the DSN from config.
func ConnectGorm() (*gorm.DB, error) {
	if gormDB != nil {
		return gormDB, nil
	}

	cfg := config.GetConfig()
	dsn := cfg.Database.DSN

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	gormDB = db
	return db, nil
}

// AutoMigrate migrates every model and applies the indexes AutoMigrate
// cannot express.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.SubscriptionPlan{},
		&models.UserSubscription{},
		&models.Payment{},
		&models.Post{},
		&models.Project{},
		&models.Event{},
		&models.EventRegistration{},
		&models.Job{},
		&models.SubjectContact{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := applyExtraIndexes(db); err != nil {
		return err
	}

	logger.Info("AutoMigrate completed")
	return nil
}

// applyExtraIndexes adds the partial unique index that enforces at most one
// trial/active/pending subscription per subject, plus the composite indexes
// the monthly usage counts scan on. Postgres only; the sqlite test setup
// enforces the ledger rule through the transactional create instead.
func applyExtraIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_subscriptions_one_running
			ON user_subscriptions (subject_type, subject_id)
			WHERE status IN ('trial', 'active', 'pending')`,
		`CREATE INDEX IF NOT EXISTS idx_posts_user_created ON posts (user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_user_created ON projects (user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_event_regs_user_registered ON event_registrations (user_id, registered_at)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_company_created ON jobs (company_id, created_at)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("index %q: %w", firstWordAfterExists(stmt), err)
		}
	}
	return nil
}

func firstWordAfterExists(stmt string) string {
	const marker = "IF NOT EXISTS "
	i := strings.Index(stmt, marker)
	if i < 0 {
		return stmt
	}
	rest := stmt[i+len(marker):]
	if j := strings.IndexAny(rest, " \n\t"); j > 0 {
		return rest[:j]
	}
	return rest
}
