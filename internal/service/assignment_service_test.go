package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NinjaGame428/church-management-sub001/internal/domain"
	"github.com/NinjaGame428/church-management-sub001/internal/events"
	"github.com/NinjaGame428/church-management-sub001/internal/repository"
	apperrors "github.com/NinjaGame428/church-management-sub001/pkg/util"
)

type assignmentFixture struct {
	users       *fakeUserRepo
	services    *fakeServiceRepo
	assignments *fakeAssignmentRepo
	dispatcher  *recordingDispatcher
	service     *AssignmentService

	admin     *domain.User
	volunteer *domain.User
	svc       *domain.Service
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()
	users := newFakeUserRepo()
	services := newFakeServiceRepo()
	assignments := newFakeAssignmentRepo(services)
	dispatcher := newRecordingDispatcher()

	f := &assignmentFixture{
		users:       users,
		services:    services,
		assignments: assignments,
		dispatcher:  dispatcher,
		service: NewAssignmentService(AssignmentDependencies{
			AssignmentRepo: assignments,
			ServiceRepo:    services,
			UserRepo:       users,
			Dispatcher:     dispatcher,
		}),
		admin:     users.add(&domain.User{Name: "Pat Admin", Email: "admin@example.com", Role: domain.RoleAdmin, Status: domain.UserStatusActive}),
		volunteer: users.add(&domain.User{Name: "Sam Volunteer", Email: "sam@example.com", Role: domain.RoleVolunteer, Status: domain.UserStatusActive}),
		svc: services.add(&domain.Service{
			Title:  "Sunday Morning",
			Date:   mustDate("2026-03-01"),
			Time:   "10:00",
			Status: domain.ServiceStatusPublished,
		}),
	}
	return f
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

func TestScheduleAssignmentCreatesPending(t *testing.T) {
	f := newAssignmentFixture(t)

	assignment, err := f.service.ScheduleAssignment(context.Background(), f.admin, f.svc.ID, f.volunteer.ID, "Greeter")
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusPending, assignment.Status)
	assert.Equal(t, "Greeter", assignment.Role)
	assert.Equal(t, "Sunday Morning", assignment.ServiceTitle)

	published := f.dispatcher.eventsOfType(events.EventAssignmentCreated)
	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.AssignmentCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, f.volunteer.ID, payload.UserID)
}

func TestScheduleAssignmentRequiresAdmin(t *testing.T) {
	f := newAssignmentFixture(t)

	_, err := f.service.ScheduleAssignment(context.Background(), f.volunteer, f.svc.ID, f.volunteer.ID, "Greeter")
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestScheduleAssignmentDuplicateConflicts(t *testing.T) {
	f := newAssignmentFixture(t)

	_, err := f.service.ScheduleAssignment(context.Background(), f.admin, f.svc.ID, f.volunteer.ID, "Greeter")
	require.NoError(t, err)

	_, err = f.service.ScheduleAssignment(context.Background(), f.admin, f.svc.ID, f.volunteer.ID, "Usher")
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestScheduleAssignmentRejectsCancelledService(t *testing.T) {
	f := newAssignmentFixture(t)
	cancelled := f.services.add(&domain.Service{Title: "Old", Date: mustDate("2026-02-01"), Status: domain.ServiceStatusCancelled})

	_, err := f.service.ScheduleAssignment(context.Background(), f.admin, cancelled.ID, f.volunteer.ID, "Greeter")
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestScheduleAssignmentUnknownUser(t *testing.T) {
	f := newAssignmentFixture(t)

	_, err := f.service.ScheduleAssignment(context.Background(), f.admin, f.svc.ID, "nope", "Greeter")
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}

func TestRespondAcceptConfirms(t *testing.T) {
	f := newAssignmentFixture(t)
	created, err := f.service.ScheduleAssignment(context.Background(), f.admin, f.svc.ID, f.volunteer.ID, "Greeter")
	require.NoError(t, err)

	assignment, err := f.service.Respond(context.Background(), f.volunteer, created.ID, domain.ResponseAccept, "")
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusConfirmed, assignment.Status)
	assert.Nil(t, assignment.DeclineReason)

	published := f.dispatcher.eventsOfType(events.EventAssignmentResponded)
	require.Len(t, published, 1)
}

func TestRespondDeclineRequiresReason(t *testing.T) {
	f := newAssignmentFixture(t)
	created, err := f.service.ScheduleAssignment(context.Background(), f.admin, f.svc.ID, f.volunteer.ID, "Greeter")
	require.NoError(t, err)

	_, err = f.service.Respond(context.Background(), f.volunteer, created.ID, domain.ResponseDecline, "   ")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
	assert.EqualError(t, err, "Reason is required when declining")
}

func TestRespondDeclineStoresReason(t *testing.T) {
	f := newAssignmentFixture(t)
	created, err := f.service.ScheduleAssignment(context.Background(), f.admin, f.svc.ID, f.volunteer.ID, "Greeter")
	require.NoError(t, err)

	assignment, err := f.service.Respond(context.Background(), f.volunteer, created.ID, domain.ResponseDecline, "out of town")
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusDeclined, assignment.Status)
	require.NotNil(t, assignment.DeclineReason)
	assert.Equal(t, "out of town", *assignment.DeclineReason)

	published := f.dispatcher.eventsOfType(events.EventAssignmentResponded)
	require.Len(t, published, 1)
	payload := published[0].Payload.(events.AssignmentRespondedPayload)
	assert.Equal(t, "out of town", payload.Reason)
}

func TestRespondOnlyAssigneeMayRespond(t *testing.T) {
	f := newAssignmentFixture(t)
	other := f.users.add(&domain.User{Name: "Alex", Email: "alex@example.com", Role: domain.RoleVolunteer, Status: domain.UserStatusActive})
	created, err := f.service.ScheduleAssignment(context.Background(), f.admin, f.svc.ID, f.volunteer.ID, "Greeter")
	require.NoError(t, err)

	_, err = f.service.Respond(context.Background(), other, created.ID, domain.ResponseAccept, "")
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestRespondReplaySameActionIsNoOp(t *testing.T) {
	f := newAssignmentFixture(t)
	created, err := f.service.ScheduleAssignment(context.Background(), f.admin, f.svc.ID, f.volunteer.ID, "Greeter")
	require.NoError(t, err)

	_, err = f.service.Respond(context.Background(), f.volunteer, created.ID, domain.ResponseAccept, "")
	require.NoError(t, err)

	assignment, err := f.service.Respond(context.Background(), f.volunteer, created.ID, domain.ResponseAccept, "")
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusConfirmed, assignment.Status)

	// Only the first response produced an event.
	assert.Len(t, f.dispatcher.eventsOfType(events.EventAssignmentResponded), 1)
}

func TestRespondOppositeActionOnTerminalConflicts(t *testing.T) {
	f := newAssignmentFixture(t)
	created, err := f.service.ScheduleAssignment(context.Background(), f.admin, f.svc.ID, f.volunteer.ID, "Greeter")
	require.NoError(t, err)

	_, err = f.service.Respond(context.Background(), f.volunteer, created.ID, domain.ResponseAccept, "")
	require.NoError(t, err)

	_, err = f.service.Respond(context.Background(), f.volunteer, created.ID, domain.ResponseDecline, "changed my mind")
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestRespondUnknownAction(t *testing.T) {
	f := newAssignmentFixture(t)
	created, err := f.service.ScheduleAssignment(context.Background(), f.admin, f.svc.ID, f.volunteer.ID, "Greeter")
	require.NoError(t, err)

	_, err = f.service.Respond(context.Background(), f.volunteer, created.ID, domain.ResponseAction("maybe"), "")
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

// staleAssignmentRepo serves a PENDING snapshot while the underlying row
// has already been confirmed, mimicking a lost write race.
type staleAssignmentRepo struct {
	repository.AssignmentRepository
	stale *domain.ServiceAssignment
	reads int
}

func (r *staleAssignmentRepo) GetByID(ctx context.Context, id string) (*domain.ServiceAssignment, error) {
	r.reads++
	if r.reads == 1 {
		clone := *r.stale
		return &clone, nil
	}
	return r.AssignmentRepository.GetByID(ctx, id)
}

func TestRespondLostRaceResolvesAgainstCurrentStatus(t *testing.T) {
	f := newAssignmentFixture(t)
	created, err := f.service.ScheduleAssignment(context.Background(), f.admin, f.svc.ID, f.volunteer.ID, "Greeter")
	require.NoError(t, err)

	// Another response lands after our read but before our write.
	require.NoError(t, f.assignments.UpdateStatusFrom(context.Background(), created.ID, domain.AssignmentStatusPending, domain.AssignmentStatusConfirmed, nil))

	stale := *created
	stale.Status = domain.AssignmentStatusPending
	svc := NewAssignmentService(AssignmentDependencies{
		AssignmentRepo: &staleAssignmentRepo{AssignmentRepository: f.assignments, stale: &stale},
		ServiceRepo:    f.services,
		UserRepo:       f.users,
		Dispatcher:     f.dispatcher,
	})

	// Identical outcome resolves as a replay.
	assignment, err := svc.Respond(context.Background(), f.volunteer, created.ID, domain.ResponseAccept, "")
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusConfirmed, assignment.Status)

	// The opposite outcome conflicts.
	svc = NewAssignmentService(AssignmentDependencies{
		AssignmentRepo: &staleAssignmentRepo{AssignmentRepository: f.assignments, stale: &stale},
		ServiceRepo:    f.services,
		UserRepo:       f.users,
		Dispatcher:     f.dispatcher,
	})
	_, err = svc.Respond(context.Background(), f.volunteer, created.ID, domain.ResponseDecline, "too late")
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestRespondUnknownAssignment(t *testing.T) {
	f := newAssignmentFixture(t)

	_, err := f.service.Respond(context.Background(), f.volunteer, "missing", domain.ResponseAccept, "")
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
	assert.NotErrorIs(t, err, pgx.ErrNoRows)
}

func TestListUserAssignments(t *testing.T) {
	f := newAssignmentFixture(t)
	other := f.users.add(&domain.User{Name: "Alex", Email: "alex@example.com", Role: domain.RoleVolunteer, Status: domain.UserStatusActive})
	_, err := f.service.ScheduleAssignment(context.Background(), f.admin, f.svc.ID, f.volunteer.ID, "Greeter")
	require.NoError(t, err)
	_, err = f.service.ScheduleAssignment(context.Background(), f.admin, f.svc.ID, other.ID, "Usher")
	require.NoError(t, err)

	mine, err := f.service.ListUserAssignments(context.Background(), f.volunteer, 50, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.volunteer.ID, mine[0].UserID)
}

func TestListServiceAssignmentsRequiresAdmin(t *testing.T) {
	f := newAssignmentFixture(t)

	_, err := f.service.ListServiceAssignments(context.Background(), f.volunteer, f.svc.ID)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	roster, err := f.service.ListServiceAssignments(context.Background(), f.admin, f.svc.ID)
	require.NoError(t, err)
	assert.Empty(t, roster)
}
