package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NinjaGame428/church-management-sub001/internal/domain"
	"github.com/NinjaGame428/church-management-sub001/internal/events"
	"github.com/NinjaGame428/church-management-sub001/internal/repository"
)

type scheduleFixture struct {
	users       *fakeUserRepo
	services    *fakeServiceRepo
	assignments *fakeAssignmentRepo
	dispatcher  *recordingDispatcher
	service     *ScheduleService

	admin     *domain.User
	volunteer *domain.User
}

func newScheduleFixture(t *testing.T) *scheduleFixture {
	t.Helper()
	users := newFakeUserRepo()
	services := newFakeServiceRepo()
	assignments := newFakeAssignmentRepo(services)
	dispatcher := newRecordingDispatcher()
	return &scheduleFixture{
		users:       users,
		services:    services,
		assignments: assignments,
		dispatcher:  dispatcher,
		service: NewScheduleService(ScheduleDependencies{
			ServiceRepo:    services,
			AssignmentRepo: assignments,
			Dispatcher:     dispatcher,
		}),
		admin:     users.add(&domain.User{Name: "Pat Admin", Email: "admin@example.com", Role: domain.RoleAdmin, Status: domain.UserStatusActive}),
		volunteer: users.add(&domain.User{Name: "Sam", Email: "sam@example.com", Role: domain.RoleVolunteer, Status: domain.UserStatusActive}),
	}
}

func TestCreateServiceStartsDraft(t *testing.T) {
	f := newScheduleFixture(t)

	svc, err := f.service.CreateService(context.Background(), f.admin, ServiceInput{
		Title: "Sunday Morning",
		Date:  mustDate("2026-03-01"),
		Time:  "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceStatusDraft, svc.Status)

	_, err = f.service.CreateService(context.Background(), f.volunteer, ServiceInput{Title: "Nope", Date: mustDate("2026-03-01")})
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestCreateServiceValidation(t *testing.T) {
	f := newScheduleFixture(t)

	_, err := f.service.CreateService(context.Background(), f.admin, ServiceInput{Title: " ", Date: mustDate("2026-03-01")})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	_, err = f.service.CreateService(context.Background(), f.admin, ServiceInput{Title: "Sunday"})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestPublishServiceNotifiesAssignees(t *testing.T) {
	f := newScheduleFixture(t)
	svc, err := f.service.CreateService(context.Background(), f.admin, ServiceInput{Title: "Sunday", Date: mustDate("2026-03-01")})
	require.NoError(t, err)
	require.NoError(t, f.assignments.Create(context.Background(), &domain.ServiceAssignment{
		ServiceID: svc.ID,
		UserID:    f.volunteer.ID,
		Role:      "Greeter",
		Status:    domain.AssignmentStatusPending,
	}))

	published, err := f.service.PublishService(context.Background(), f.admin, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceStatusPublished, published.Status)

	lifecycle := f.dispatcher.eventsOfType(events.EventServicePublished)
	require.Len(t, lifecycle, 1)
	payload := lifecycle[0].Payload.(events.ServiceLifecyclePayload)
	assert.Equal(t, []string{f.volunteer.ID}, payload.AssigneeIDs)
}

func TestPublishServiceNotDraftConflicts(t *testing.T) {
	f := newScheduleFixture(t)
	svc, err := f.service.CreateService(context.Background(), f.admin, ServiceInput{Title: "Sunday", Date: mustDate("2026-03-01")})
	require.NoError(t, err)

	_, err = f.service.PublishService(context.Background(), f.admin, svc.ID)
	require.NoError(t, err)

	_, err = f.service.PublishService(context.Background(), f.admin, svc.ID)
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestCancelService(t *testing.T) {
	f := newScheduleFixture(t)
	svc, err := f.service.CreateService(context.Background(), f.admin, ServiceInput{Title: "Sunday", Date: mustDate("2026-03-01")})
	require.NoError(t, err)

	cancelled, err := f.service.CancelService(context.Background(), f.admin, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceStatusCancelled, cancelled.Status)
	assert.Len(t, f.dispatcher.eventsOfType(events.EventServiceCancelled), 1)

	_, err = f.service.CancelService(context.Background(), f.admin, svc.ID)
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestUpdateServiceCancelledImmutable(t *testing.T) {
	f := newScheduleFixture(t)
	svc, err := f.service.CreateService(context.Background(), f.admin, ServiceInput{Title: "Sunday", Date: mustDate("2026-03-01")})
	require.NoError(t, err)
	_, err = f.service.CancelService(context.Background(), f.admin, svc.ID)
	require.NoError(t, err)

	_, err = f.service.UpdateService(context.Background(), f.admin, svc.ID, ServiceInput{Title: "New title"})
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestUpdateServicePartialFields(t *testing.T) {
	f := newScheduleFixture(t)
	svc, err := f.service.CreateService(context.Background(), f.admin, ServiceInput{
		Title:    "Sunday",
		Date:     mustDate("2026-03-01"),
		Time:     "10:00",
		Location: "Main hall",
	})
	require.NoError(t, err)

	updated, err := f.service.UpdateService(context.Background(), f.admin, svc.ID, ServiceInput{Location: "Annex"})
	require.NoError(t, err)
	assert.Equal(t, "Sunday", updated.Title)
	assert.Equal(t, "10:00", updated.Time)
	assert.Equal(t, "Annex", updated.Location)
}

func TestDeleteService(t *testing.T) {
	f := newScheduleFixture(t)
	svc, err := f.service.CreateService(context.Background(), f.admin, ServiceInput{Title: "Sunday", Date: mustDate("2026-03-01")})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteService(context.Background(), f.admin, svc.ID))

	err = f.service.DeleteService(context.Background(), f.admin, svc.ID)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}

func TestListServicesFilters(t *testing.T) {
	f := newScheduleFixture(t)
	_, err := f.service.CreateService(context.Background(), f.admin, ServiceInput{Title: "First", Date: mustDate("2026-03-01")})
	require.NoError(t, err)
	second, err := f.service.CreateService(context.Background(), f.admin, ServiceInput{Title: "Second", Date: mustDate("2026-04-01")})
	require.NoError(t, err)
	_, err = f.service.PublishService(context.Background(), f.admin, second.ID)
	require.NoError(t, err)

	result, err := f.service.ListServices(context.Background(), repository.ServiceFilter{
		Statuses: []domain.ServiceStatus{domain.ServiceStatusPublished},
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Second", result[0].Title)
}
