package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/homeservices_backend/models"
)

func applicationRequest() models.TechnicianApplicationRequest {
	return models.TechnicianApplicationRequest{
		FullName:   " Ravi Kumar ",
		Email:      "Ravi@Example.com",
		Phone:      "9876543210",
		Address:    "221 Baker Street",
		City:       "Pune",
		State:      "MH",
		Zip:        "411001",
		Category:   "plumbing",
		Experience: "5 years",
	}
}

func TestSubmitApplication(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t, "u1", models.RoleUser)
	ctx := context.Background()

	tech, err := env.technicians.SubmitApplication(ctx, token, applicationRequest())
	require.NoError(t, err)
	assert.Equal(t, "u1", tech.ID)
	assert.Equal(t, "Ravi Kumar", tech.FullName)
	assert.Equal(t, "ravi@example.com", tech.Email)
	assert.Equal(t, models.TechnicianStatusPending, tech.Status)

	_, err = env.technicians.SubmitApplication(ctx, token, applicationRequest())
	requireKind(t, err, models.KindConflict)

	mine, err := env.technicians.GetMyApplication(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, tech.ID, mine.ID)
}

func TestSubmitApplicationValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t, "u1", models.RoleUser)

	req := applicationRequest()
	req.Zip = "4110"
	_, err := env.technicians.SubmitApplication(context.Background(), token, req)
	requireKind(t, err, models.KindValidationFailed)
	assert.Equal(t, "Zip code must be at least 6 characters", err.Error())

	_, err = env.technicians.GetMyApplication(context.Background(), token)
	requireKind(t, err, models.KindNotFound)
}

func TestApproveTechnicianGrantsRole(t *testing.T) {
	env := newTestEnv(t)
	applicant := env.signIn(t, "u1", models.RoleUser)
	admin := env.signIn(t, "a1", models.RoleAdmin)
	manager := env.signIn(t, "m1", models.RoleManager)
	ctx := context.Background()

	_, err := env.technicians.SubmitApplication(ctx, applicant, applicationRequest())
	require.NoError(t, err)

	pending, err := env.technicians.ListTechnicians(ctx, manager, models.TechnicianStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = env.technicians.ApproveTechnician(ctx, manager, "u1", models.TechnicianDecisionRequest{})
	requireKind(t, err, models.KindUnauthorized)
	_, err = env.technicians.ApproveTechnician(ctx, admin, "missing", models.TechnicianDecisionRequest{})
	requireKind(t, err, models.KindNotFound)

	tech, err := env.technicians.ApproveTechnician(ctx, admin, "u1", models.TechnicianDecisionRequest{Note: "Welcome aboard."})
	require.NoError(t, err)
	assert.Equal(t, models.TechnicianStatusApproved, tech.Status)

	user, err := env.store.Users.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTechnician, user.Role)

	sent := env.notifier.to("u1")
	require.Len(t, sent, 1)
	assert.Equal(t, "Application approved", sent[0].Title)
	assert.Contains(t, sent[0].Message, "Welcome aboard.")

	// the new role opens the job board
	_, err = env.jobs.ListAvailableJobs(ctx, applicant)
	require.NoError(t, err)
}

func TestRejectTechnicianKeepsRole(t *testing.T) {
	env := newTestEnv(t)
	applicant := env.signIn(t, "u1", models.RoleUser)
	admin := env.signIn(t, "a1", models.RoleAdmin)
	ctx := context.Background()

	_, err := env.technicians.SubmitApplication(ctx, applicant, applicationRequest())
	require.NoError(t, err)

	tech, err := env.technicians.RejectTechnician(ctx, admin, "u1", models.TechnicianDecisionRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.TechnicianStatusRejected, tech.Status)

	user, err := env.store.Users.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Len(t, env.notifier.to("u1"), 1)
}
