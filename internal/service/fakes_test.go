package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/NinjaGame428/church-management-sub001/internal/domain"
	"github.com/NinjaGame428/church-management-sub001/internal/events"
	"github.com/NinjaGame428/church-management-sub001/internal/repository"
)

// In-memory repository fakes. They reproduce the contract the Postgres
// implementations expose: pgx.ErrNoRows for missing or stale rows and a
// 23505 pgconn error for uniqueness violations.

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return uniqueViolation()
		}
	}
	r.seq++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", r.seq)
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) add(user *domain.User) *domain.User {
	_ = r.Create(context.Background(), user)
	return user
}

type fakeServiceRepo struct {
	mu       sync.Mutex
	services map[string]*domain.Service
	seq      int
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{services: map[string]*domain.Service{}}
}

func (r *fakeServiceRepo) Create(_ context.Context, svc *domain.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if svc.ID == "" {
		svc.ID = fmt.Sprintf("svc-%d", r.seq)
	}
	svc.CreatedAt = time.Now()
	svc.UpdatedAt = svc.CreatedAt
	clone := *svc
	r.services[svc.ID] = &clone
	return nil
}

func (r *fakeServiceRepo) Update(_ context.Context, svc *domain.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[svc.ID]; !ok {
		return pgx.ErrNoRows
	}
	svc.UpdatedAt = time.Now()
	clone := *svc
	r.services[svc.ID] = &clone
	return nil
}

func (r *fakeServiceRepo) UpdateStatusFrom(_ context.Context, id string, from, to domain.ServiceStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, ok := r.services[id]
	if !ok || svc.Status != from {
		return pgx.ErrNoRows
	}
	svc.Status = to
	svc.UpdatedAt = time.Now()
	return nil
}

func (r *fakeServiceRepo) GetByID(_ context.Context, id string) (*domain.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, ok := r.services[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *svc
	return &clone, nil
}

func (r *fakeServiceRepo) List(_ context.Context, filter repository.ServiceFilter) ([]domain.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Service
	for _, svc := range r.services {
		if len(filter.Statuses) > 0 && !containsServiceStatus(filter.Statuses, svc.Status) {
			continue
		}
		if filter.DateFrom != nil && svc.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && svc.Date.After(*filter.DateTo) {
			continue
		}
		result = append(result, *svc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (r *fakeServiceRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.services, id)
	return nil
}

func (r *fakeServiceRepo) add(svc *domain.Service) *domain.Service {
	_ = r.Create(context.Background(), svc)
	return svc
}

func containsServiceStatus(list []domain.ServiceStatus, status domain.ServiceStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

type fakeAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[string]*domain.ServiceAssignment
	services    *fakeServiceRepo
	seq         int
}

func newFakeAssignmentRepo(services *fakeServiceRepo) *fakeAssignmentRepo {
	return &fakeAssignmentRepo{
		assignments: map[string]*domain.ServiceAssignment{},
		services:    services,
	}
}

func (r *fakeAssignmentRepo) decorate(assignment *domain.ServiceAssignment) {
	if r.services == nil {
		return
	}
	if svc, err := r.services.GetByID(context.Background(), assignment.ServiceID); err == nil {
		assignment.ServiceTitle = svc.Title
		assignment.ServiceDate = svc.Date
	}
}

func (r *fakeAssignmentRepo) Create(_ context.Context, assignment *domain.ServiceAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.assignments {
		if existing.ServiceID == assignment.ServiceID && existing.UserID == assignment.UserID {
			return uniqueViolation()
		}
	}
	r.seq++
	if assignment.ID == "" {
		assignment.ID = fmt.Sprintf("assign-%d", r.seq)
	}
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = assignment.CreatedAt
	clone := *assignment
	r.assignments[assignment.ID] = &clone
	return nil
}

func (r *fakeAssignmentRepo) GetByID(_ context.Context, id string) (*domain.ServiceAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment, ok := r.assignments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *assignment
	r.decorate(&clone)
	return &clone, nil
}

func (r *fakeAssignmentRepo) GetByServiceAndUser(_ context.Context, serviceID, userID string) (*domain.ServiceAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, assignment := range r.assignments {
		if assignment.ServiceID == serviceID && assignment.UserID == userID {
			clone := *assignment
			r.decorate(&clone)
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAssignmentRepo) UpdateStatusFrom(_ context.Context, id string, from, to domain.AssignmentStatus, declineReason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment, ok := r.assignments[id]
	if !ok || assignment.Status != from {
		return pgx.ErrNoRows
	}
	assignment.Status = to
	assignment.DeclineReason = declineReason
	assignment.UpdatedAt = time.Now()
	return nil
}

func (r *fakeAssignmentRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]domain.ServiceAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.ServiceAssignment
	for _, assignment := range r.assignments {
		if assignment.UserID == userID {
			clone := *assignment
			r.decorate(&clone)
			result = append(result, clone)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeAssignmentRepo) ListByService(_ context.Context, serviceID string) ([]domain.ServiceAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.ServiceAssignment
	for _, assignment := range r.assignments {
		if assignment.ServiceID == serviceID {
			clone := *assignment
			r.decorate(&clone)
			result = append(result, clone)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type fakeSwapRepo struct {
	mu          sync.Mutex
	swaps       map[string]*domain.SwapRequest
	assignments *fakeAssignmentRepo
	seq         int
}

func newFakeSwapRepo(assignments *fakeAssignmentRepo) *fakeSwapRepo {
	return &fakeSwapRepo{swaps: map[string]*domain.SwapRequest{}, assignments: assignments}
}

func (r *fakeSwapRepo) Create(_ context.Context, swap *domain.SwapRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if swap.ID == "" {
		swap.ID = fmt.Sprintf("swap-%d", r.seq)
	}
	swap.CreatedAt = time.Now()
	swap.UpdatedAt = swap.CreatedAt
	clone := *swap
	r.swaps[swap.ID] = &clone
	return nil
}

func (r *fakeSwapRepo) GetByID(_ context.Context, id string) (*domain.SwapRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	swap, ok := r.swaps[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *swap
	return &clone, nil
}

func (r *fakeSwapRepo) UpdateStatusFrom(_ context.Context, id string, from, to domain.SwapStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	swap, ok := r.swaps[id]
	if !ok || swap.Status != from {
		return pgx.ErrNoRows
	}
	swap.Status = to
	swap.UpdatedAt = time.Now()
	return nil
}

// CompleteSwap mirrors the transactional accept: the swap flips to
// accepted and the requester's assignment is handed to the target,
// reset to PENDING. Either row being stale fails the whole operation.
func (r *fakeSwapRepo) CompleteSwap(_ context.Context, swap *domain.SwapRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.swaps[swap.ID]
	if !ok || stored.Status != domain.SwapStatusPending {
		return pgx.ErrNoRows
	}

	r.assignments.mu.Lock()
	defer r.assignments.mu.Unlock()
	var target *domain.ServiceAssignment
	for _, assignment := range r.assignments.assignments {
		if assignment.ServiceID == swap.ServiceID && assignment.UserID == swap.ToUserID {
			return uniqueViolation()
		}
		if assignment.ServiceID == swap.ServiceID && assignment.UserID == swap.FromUserID {
			target = assignment
		}
	}
	if target == nil {
		return pgx.ErrNoRows
	}

	stored.Status = domain.SwapStatusAccepted
	stored.UpdatedAt = time.Now()
	target.UserID = swap.ToUserID
	target.Status = domain.AssignmentStatusPending
	target.DeclineReason = nil
	target.UpdatedAt = time.Now()

	swap.Status = domain.SwapStatusAccepted
	swap.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *fakeSwapRepo) List(_ context.Context, filter repository.SwapFilter) ([]domain.SwapRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.SwapRequest
	for _, swap := range r.swaps {
		if len(filter.Statuses) > 0 && !containsSwapStatus(filter.Statuses, swap.Status) {
			continue
		}
		if filter.ParticipantID != nil && swap.FromUserID != *filter.ParticipantID && swap.ToUserID != *filter.ParticipantID {
			continue
		}
		result = append(result, *swap)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func containsSwapStatus(list []domain.SwapStatus, status domain.SwapStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

type fakeAvailabilityRepo struct {
	mu      sync.Mutex
	entries map[string]*domain.Availability
	seq     int
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{entries: map[string]*domain.Availability{}}
}

func (r *fakeAvailabilityRepo) Upsert(_ context.Context, entry *domain.Availability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.entries {
		if existing.UserID == entry.UserID && existing.Date.Equal(entry.Date) {
			entry.ID = existing.ID
			entry.CreatedAt = existing.CreatedAt
			entry.UpdatedAt = time.Now()
			clone := *entry
			r.entries[existing.ID] = &clone
			return nil
		}
	}
	r.seq++
	entry.ID = fmt.Sprintf("avail-%d", r.seq)
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	clone := *entry
	r.entries[entry.ID] = &clone
	return nil
}

func (r *fakeAvailabilityRepo) Update(_ context.Context, entry *domain.Availability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[entry.ID]
	if !ok || existing.UserID != entry.UserID {
		return pgx.ErrNoRows
	}
	entry.Date = existing.Date
	entry.CreatedAt = existing.CreatedAt
	entry.UpdatedAt = time.Now()
	clone := *entry
	r.entries[entry.ID] = &clone
	return nil
}

func (r *fakeAvailabilityRepo) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[id]
	if !ok || existing.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(r.entries, id)
	return nil
}

func (r *fakeAvailabilityRepo) GetByID(_ context.Context, id string) (*domain.Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *entry
	return &clone, nil
}

func (r *fakeAvailabilityRepo) ListByUser(_ context.Context, userID string, from, to *time.Time) ([]domain.Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Availability
	for _, entry := range r.entries {
		if entry.UserID != userID {
			continue
		}
		if from != nil && entry.Date.Before(*from) {
			continue
		}
		if to != nil && entry.Date.After(*to) {
			continue
		}
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (r *fakeAvailabilityRepo) ListByDate(_ context.Context, date time.Time) ([]domain.Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Availability
	for _, entry := range r.entries {
		if entry.Date.Equal(date) {
			result = append(result, *entry)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	records []*domain.Notification
	seq     int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	notification.ID = fmt.Sprintf("notif-%d", r.seq)
	notification.CreatedAt = time.Now()
	clone := *notification
	r.records = append(r.records, &clone)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID string, limit int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Notification
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].UserID != userID {
			continue
		}
		result = append(result, *r.records[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.ID == id && record.UserID == userID {
			record.IsRead = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeNotificationRepo) forUser(userID string) []*domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.Notification
	for _, record := range r.records {
		if record.UserID == userID {
			result = append(result, record)
		}
	}
	return result
}

// recordingDispatcher captures published events and still fans out to
// subscribers, so notification handlers can be exercised end to end.
type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
	listeners map[events.EventType][]events.EventHandler
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{listeners: map[events.EventType][]events.EventHandler{}}
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	d.published = append(d.published, event)
	handlers := append([]events.EventHandler{}, d.listeners[event.Type]...)
	d.mu.Unlock()
	for _, handler := range handlers {
		_ = handler(ctx, event)
	}
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

func (d *recordingDispatcher) eventsOfType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.published {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

type sentMessage struct {
	To      string
	Subject string
	Body    string
}

// recordingNotifier captures outbound email/SMS instead of delivering.
type recordingNotifier struct {
	mu     sync.Mutex
	emails []sentMessage
	sms    []sentMessage
}

func (n *recordingNotifier) SendEmail(_ context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, sentMessage{To: to, Subject: subject, Body: body})
	return nil
}

func (n *recordingNotifier) SendSMS(_ context.Context, to, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sms = append(n.sms, sentMessage{To: to, Body: message})
	return nil
}

func (n *recordingNotifier) emailsTo(to string) []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	var result []sentMessage
	for _, msg := range n.emails {
		if strings.EqualFold(msg.To, to) {
			result = append(result, msg)
		}
	}
	return result
}

func strPtr(s string) *string { return &s }

func mustDate(s string) time.Time {
	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return date
}
