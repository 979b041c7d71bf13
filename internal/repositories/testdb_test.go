package repositories

import (
	"path/filepath"
	"testing"
	"time"

	"collegium_backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.SubscriptionPlan{},
		&models.UserSubscription{},
		&models.Payment{},
		&models.Post{},
		&models.Project{},
		&models.Event{},
		&models.EventRegistration{},
		&models.Job{},
		&models.SubjectContact{},
	))
	return db
}

func seedPlan(t *testing.T, db *gorm.DB, name string, limits string) *models.SubscriptionPlan {
	t.Helper()

	plan := &models.SubscriptionPlan{
		Name:     name,
		Audience: models.SubjectTypeStudent,
		Price:    199,
		Currency: "INR",
		Period:   models.PlanPeriodMonth,
		Limits:   []byte(limits),
		Active:   true,
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

func activeSubscription(subjectID string, planID string, from time.Time) *models.UserSubscription {
	return &models.UserSubscription{
		SubjectID:     subjectID,
		SubjectType:   models.SubjectTypeStudent,
		PlanID:        planID,
		Status:        models.SubscriptionStatusActive,
		StartDate:     from,
		EndDate:       from.AddDate(0, 1, 0),
		AutoRenew:     true,
		PaymentMethod: "razorpay",
	}
}
