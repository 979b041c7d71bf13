package services

import (
	"context"
	"testing"
	"time"

	"collegium_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) seedProjects(t *testing.T, userID string, n int, createdAt time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		p := models.Project{UserID: userID, Name: "p", Description: "d"}
		require.NoError(t, e.db.Create(&p).Error)
		require.NoError(t, e.db.Model(&models.Project{}).Where("id = ?", p.ID).
			Update("created_at", createdAt).Error)
	}
}

func TestSubjectLimits_FreeTierWithoutSubscription(t *testing.T) {
	env := newTestEnv(t)

	limits := env.entitlement.SubjectLimits(context.Background(), "student-1", models.SubjectTypeStudent)
	assert.Equal(t, FreeTierLimits, limits)
	assert.Equal(t, 2, limits[models.ActionProjects])
	assert.Equal(t, 5, limits[models.ActionChats])
	assert.Equal(t, 5, limits[models.ActionEvents])
	assert.Equal(t, 2, limits[models.ActionJobs])
}

func TestCheckLimitExceeded_FreeTierProjects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.False(t, env.entitlement.CheckLimitExceeded(ctx, "student-1", models.SubjectTypeStudent, models.ActionProjects))

	env.seedProjects(t, "student-1", 2, env.now)
	assert.True(t, env.entitlement.CheckLimitExceeded(ctx, "student-1", models.SubjectTypeStudent, models.ActionProjects))
}

func TestCheckLimitExceeded_PlanLimitsReplaceFreeTier(t *testing.T) {
	env := newTestEnv(t)
	plan := env.createPlan(t, "Pro", map[string]int{"projects": 10, "chats": 50, "events": 20, "jobs": 0})
	ctx := context.Background()

	_, err := env.subscription.Subscribe(ctx, "student-1", models.SubjectTypeStudent, plan.ID, "razorpay")
	require.NoError(t, err)

	env.seedProjects(t, "student-1", 5, env.now)
	assert.False(t, env.entitlement.CheckLimitExceeded(ctx, "student-1", models.SubjectTypeStudent, models.ActionProjects))

	env.seedProjects(t, "student-1", 5, env.now)
	assert.True(t, env.entitlement.CheckLimitExceeded(ctx, "student-1", models.SubjectTypeStudent, models.ActionProjects))
}

func TestCheckLimitExceeded_UnlimitedSentinel(t *testing.T) {
	env := newTestEnv(t)
	plan := env.createPlan(t, "Elite", map[string]int{"projects": -1})
	ctx := context.Background()

	_, err := env.subscription.Subscribe(ctx, "student-1", models.SubjectTypeStudent, plan.ID, "razorpay")
	require.NoError(t, err)

	projects := make([]models.Project, 10000)
	for i := range projects {
		projects[i] = models.Project{
			BaseModel:   models.BaseModel{CreatedAt: env.now},
			UserID:      "student-1",
			Name:        "p",
			Description: "d",
		}
	}
	require.NoError(t, env.db.CreateInBatches(&projects, 500).Error)

	assert.False(t, env.entitlement.CheckLimitExceeded(ctx, "student-1", models.SubjectTypeStudent, models.ActionProjects))
}

func TestCheckLimitExceeded_MissingKeyIsZeroCap(t *testing.T) {
	env := newTestEnv(t)
	plan := env.createPlan(t, "ProjectsOnly", map[string]int{"projects": 10})
	ctx := context.Background()

	_, err := env.subscription.Subscribe(ctx, "student-1", models.SubjectTypeStudent, plan.ID, "razorpay")
	require.NoError(t, err)

	// The plan says nothing about jobs, so the first one is already over.
	assert.True(t, env.entitlement.CheckLimitExceeded(ctx, "student-1", models.SubjectTypeStudent, models.ActionJobs))
}

func TestCheckLimitExceeded_ZeroCapIsNotUnlimited(t *testing.T) {
	env := newTestEnv(t)
	plan := env.createPlan(t, "NoJobs", map[string]int{"jobs": 0})
	ctx := context.Background()

	_, err := env.subscription.Subscribe(ctx, "company-1", models.SubjectTypeStudent, plan.ID, "razorpay")
	require.NoError(t, err)

	assert.True(t, env.entitlement.CheckLimitExceeded(ctx, "company-1", models.SubjectTypeStudent, models.ActionJobs))
}

func TestCheckLimitExceeded_WindowResetsOnCalendarMonth(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Exhaust the free tier in June.
	env.seedProjects(t, "student-1", 2, env.now)
	assert.True(t, env.entitlement.CheckLimitExceeded(ctx, "student-1", models.SubjectTypeStudent, models.ActionProjects))

	// July 1st: the calendar window rolled over, the June rows no longer count.
	env.now = time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, env.entitlement.CheckLimitExceeded(ctx, "student-1", models.SubjectTypeStudent, models.ActionProjects))
}

func TestCheckLimitExceeded_ExpiredSubscriptionFallsBackToFreeTier(t *testing.T) {
	env := newTestEnv(t)
	plan := env.createPlan(t, "Pro", map[string]int{"projects": 10})
	ctx := context.Background()

	_, err := env.subscription.Subscribe(ctx, "student-1", models.SubjectTypeStudent, plan.ID, "razorpay")
	require.NoError(t, err)

	env.now = env.now.AddDate(0, 2, 0)
	env.seedProjects(t, "student-1", 2, env.now)

	// Plan would have allowed 10, but the lapsed subscription grants nothing.
	assert.True(t, env.entitlement.CheckLimitExceeded(ctx, "student-1", models.SubjectTypeStudent, models.ActionProjects))
}
