package services

import (
	"context"
	"testing"

	"collegium_backend/internal/appErrors"
	"collegium_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePlan(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPlanService(env.planRepo)
	ctx := context.Background()

	plan, err := svc.CreatePlan(ctx, &CreatePlanRequest{
		Name:     "Campus Pro",
		Audience: models.SubjectTypeStudent,
		Price:    199,
		Period:   models.PlanPeriodMonth,
		Features: []string{"Unlimited projects"},
		Limits:   map[string]int{"projects": -1, "chats": 50},
		HasTrial: true,
		TrialPrice: 49,
		TrialDays:  7,
	})
	require.NoError(t, err)

	assert.Equal(t, "INR", plan.Currency)
	assert.True(t, plan.Active)

	limit, err := plan.LimitFor(models.ActionProjects)
	require.NoError(t, err)
	assert.Equal(t, models.UnlimitedLimit, limit)
}

func TestCreatePlan_DuplicateName(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPlanService(env.planRepo)
	ctx := context.Background()

	req := &CreatePlanRequest{
		Name:     "Campus Pro",
		Audience: models.SubjectTypeStudent,
		Price:    199,
		Period:   models.PlanPeriodMonth,
		Limits:   map[string]int{"projects": 5},
	}
	_, err := svc.CreatePlan(ctx, req)
	require.NoError(t, err)

	_, err = svc.CreatePlan(ctx, req)
	assert.ErrorIs(t, err, appErrors.ErrDuplicatePlanName)
}

func TestCreatePlan_RejectsBadLimits(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPlanService(env.planRepo)
	ctx := context.Background()

	_, err := svc.CreatePlan(ctx, &CreatePlanRequest{
		Name:     "Bad Keys",
		Audience: models.SubjectTypeStudent,
		Period:   models.PlanPeriodMonth,
		Limits:   map[string]int{"castings": 5},
	})
	assert.ErrorIs(t, err, appErrors.ErrValidationFailed)

	_, err = svc.CreatePlan(ctx, &CreatePlanRequest{
		Name:     "Bad Values",
		Audience: models.SubjectTypeStudent,
		Period:   models.PlanPeriodMonth,
		Limits:   map[string]int{"projects": -2},
	})
	assert.ErrorIs(t, err, appErrors.ErrValidationFailed)
}

func TestUpdatePlan_PartialUpdate(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPlanService(env.planRepo)
	ctx := context.Background()

	plan := env.createPlan(t, "Campus Pro", map[string]int{"projects": 5})

	newPrice := 299.0
	popular := true
	updated, err := svc.UpdatePlan(ctx, plan.ID, &UpdatePlanRequest{
		Price:   &newPrice,
		Popular: &popular,
	})
	require.NoError(t, err)

	assert.Equal(t, 299.0, updated.Price)
	assert.True(t, updated.Popular)
	assert.Equal(t, "Campus Pro", updated.Name)

	stored, err := svc.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 299.0, stored.Price)
}

func TestUpdatePlan_RejectsBadLimits(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPlanService(env.planRepo)
	ctx := context.Background()

	plan := env.createPlan(t, "Campus Pro", map[string]int{"projects": 5})

	bad := map[string]int{"projects": -5}
	_, err := svc.UpdatePlan(ctx, plan.ID, &UpdatePlanRequest{Limits: &bad})
	assert.ErrorIs(t, err, appErrors.ErrValidationFailed)
}

func TestDeactivatePlan_HidesFromListing(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPlanService(env.planRepo)
	ctx := context.Background()

	plan := env.createPlan(t, "Campus Pro", map[string]int{"projects": 5})

	plans, err := svc.ListActivePlans(ctx, models.SubjectTypeStudent)
	require.NoError(t, err)
	require.Len(t, plans, 1)

	require.NoError(t, svc.DeactivatePlan(ctx, plan.ID))

	plans, err = svc.ListActivePlans(ctx, models.SubjectTypeStudent)
	require.NoError(t, err)
	assert.Empty(t, plans)

	// Still resolvable for existing subscribers.
	got, err := svc.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	assert.ErrorIs(t, svc.DeactivatePlan(ctx, "missing"), appErrors.ErrPlanNotFound)
}

func TestListActivePlans_OrderedByPriceAndScopedToAudience(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPlanService(env.planRepo)
	ctx := context.Background()

	env.createPlan(t, "Pro", map[string]int{"projects": 10}, func(p *models.SubscriptionPlan) { p.Price = 499 })
	env.createPlan(t, "Basic", map[string]int{"projects": 2}, func(p *models.SubscriptionPlan) { p.Price = 99 })
	env.createPlan(t, "Recruiter", map[string]int{"jobs": 10}, func(p *models.SubscriptionPlan) {
		p.Audience = models.SubjectTypeCompany
	})

	plans, err := svc.ListActivePlans(ctx, models.SubjectTypeStudent)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "Basic", plans[0].Name)
	assert.Equal(t, "Pro", plans[1].Name)
}
