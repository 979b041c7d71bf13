package services

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"collegium_backend/internal/models"
	"collegium_backend/internal/repositories"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testEnv wires the real repositories over in-memory sqlite with a frozen
// clock, so lifecycle tests exercise the same SQL paths production uses.
type testEnv struct {
	db           *gorm.DB
	subRepo      repositories.SubscriptionRepository
	planRepo     repositories.PlanRepository
	paymentRepo  repositories.PaymentRepository
	usageRepo    repositories.UsageRepository
	subscription *subscriptionService
	entitlement  *entitlementService
	now          time.Time
}

func newTestEnv(t *testing.T) *testEnv {
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
	))

	env := &testEnv{
		db:          db,
		subRepo:     repositories.NewSubscriptionRepository(db),
		planRepo:    repositories.NewPlanRepository(db),
		paymentRepo: repositories.NewPaymentRepository(db),
		usageRepo:   repositories.NewUsageRepository(db),
		now:         time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC),
	}
	env.subscription = &subscriptionService{
		subRepo:  env.subRepo,
		planRepo: env.planRepo,
		clock:    func() time.Time { return env.now },
	}
	env.entitlement = &entitlementService{
		subscriptions: env.subscription,
		usageRepo:     env.usageRepo,
		clock:         func() time.Time { return env.now },
	}
	return env
}

func (e *testEnv) createPlan(t *testing.T, name string, limits map[string]int, mutate ...func(*models.SubscriptionPlan)) *models.SubscriptionPlan {
	t.Helper()

	limitsJSON, err := jsonMarshalLimits(limits)
	require.NoError(t, err)

	plan := &models.SubscriptionPlan{
		Name:     name,
		Audience: models.SubjectTypeStudent,
		Price:    199,
		Currency: "INR",
		Period:   models.PlanPeriodMonth,
		Limits:   limitsJSON,
		Active:   true,
	}
	for _, m := range mutate {
		m(plan)
	}
	require.NoError(t, e.planRepo.Create(context.Background(), plan))
	return plan
}

func jsonMarshalLimits(limits map[string]int) (datatypes.JSON, error) {
	b, err := json.Marshal(limits)
	return datatypes.JSON(b), err
}
