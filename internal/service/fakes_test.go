package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/climatecare/repairdesk/internal/domain"
	"github.com/climatecare/repairdesk/internal/events"
	"github.com/climatecare/repairdesk/internal/repository"
	"github.com/climatecare/repairdesk/internal/stats"
	apperrors "github.com/climatecare/repairdesk/pkg/util"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	domainErr := asDomainError(t, err)
	if domainErr.Code != code {
		t.Fatalf("error code = %s, want %s (message %q)", domainErr.Code, code, domainErr.Message)
	}
}

func asDomainError(t *testing.T, err error) *apperrors.DomainError {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	return domainErr
}

type memUserRepo struct {
	mu     sync.Mutex
	nextID int
	byID   map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: make(map[string]*domain.User)}
}

// add seeds an account and returns the stored copy.
func (r *memUserRepo) add(user domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	stored := user
	r.byID[stored.ID] = &stored
	clone := stored
	return &clone
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.byID[user.ID] = &stored
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByLogin(_ context.Context, login string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byID {
		if user.Login == login {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) List(_ context.Context, role *domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.byID {
		if role != nil && user.Role != *role {
			continue
		}
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}

func (r *memUserRepo) UpdatePasswordHash(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()
	return nil
}

type memLookupRepo struct {
	mu       sync.Mutex
	nextID   int
	statuses []domain.Status
	types    []domain.EquipmentType
	models   map[string]domain.EquipmentModel
	issues   map[string]domain.IssueType
}

func newMemLookupRepo() *memLookupRepo {
	return &memLookupRepo{
		models: make(map[string]domain.EquipmentModel),
		issues: make(map[string]domain.IssueType),
	}
}

// addStatus seeds a status; seed order decides the non-final fallback.
func (r *memLookupRepo) addStatus(name string, isFinal bool) domain.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	status := domain.Status{ID: fmt.Sprintf("status-%d", r.nextID), Name: name, IsFinal: isFinal}
	r.statuses = append(r.statuses, status)
	return status
}

func (r *memLookupRepo) addType(name string) domain.EquipmentType {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	equipmentType := domain.EquipmentType{ID: fmt.Sprintf("type-%d", r.nextID), Name: name}
	r.types = append(r.types, equipmentType)
	return equipmentType
}

func (r *memLookupRepo) addIssue(name string) domain.IssueType {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	issue := domain.IssueType{ID: fmt.Sprintf("issue-%d", r.nextID), Name: name}
	r.issues[name] = issue
	return issue
}

func (r *memLookupRepo) statusByID(id string) (domain.Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, status := range r.statuses {
		if status.ID == id {
			return status, true
		}
	}
	return domain.Status{}, false
}

func (r *memLookupRepo) modelByID(id string) (domain.EquipmentModel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, model := range r.models {
		if model.ID == id {
			return model, true
		}
	}
	return domain.EquipmentModel{}, false
}

func (r *memLookupRepo) ListStatuses(_ context.Context) ([]domain.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := append([]domain.Status(nil), r.statuses...)
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *memLookupRepo) GetStatus(_ context.Context, id string) (*domain.Status, error) {
	if status, ok := r.statusByID(id); ok {
		return &status, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memLookupRepo) FindStatusByName(_ context.Context, name string) (*domain.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, status := range r.statuses {
		if status.Name == name {
			clone := status
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memLookupRepo) FirstNonFinalStatus(_ context.Context) (*domain.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, status := range r.statuses {
		if !status.IsFinal {
			clone := status
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memLookupRepo) ListEquipmentTypes(_ context.Context) ([]domain.EquipmentType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := append([]domain.EquipmentType(nil), r.types...)
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *memLookupRepo) GetEquipmentType(_ context.Context, id string) (*domain.EquipmentType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, equipmentType := range r.types {
		if equipmentType.ID == id {
			clone := equipmentType
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memLookupRepo) ListIssueTypes(_ context.Context) ([]domain.IssueType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.IssueType, 0, len(r.issues))
	for _, issue := range r.issues {
		result = append(result, issue)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *memLookupRepo) GetIssueType(_ context.Context, id string) (*domain.IssueType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, issue := range r.issues {
		if issue.ID == id {
			clone := issue
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memLookupRepo) GetOrCreateEquipmentModel(_ context.Context, equipmentTypeID, name string) (*domain.EquipmentModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := equipmentTypeID + "/" + name
	if model, ok := r.models[key]; ok {
		clone := model
		return &clone, nil
	}
	r.nextID++
	model := domain.EquipmentModel{
		ID:              fmt.Sprintf("model-%d", r.nextID),
		EquipmentTypeID: equipmentTypeID,
		Name:            name,
	}
	r.models[key] = model
	clone := model
	return &clone, nil
}

func (r *memLookupRepo) GetOrCreateIssueType(_ context.Context, name string) (*domain.IssueType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if issue, ok := r.issues[name]; ok {
		clone := issue
		return &clone, nil
	}
	r.nextID++
	issue := domain.IssueType{ID: fmt.Sprintf("issue-%d", r.nextID), Name: name}
	r.issues[name] = issue
	clone := issue
	return &clone, nil
}

type memRequestRepo struct {
	mu      sync.Mutex
	nextID  int
	byID    map[string]*domain.Request
	order   []string
	lookups *memLookupRepo
	users   *memUserRepo
}

func newMemRequestRepo(lookups *memLookupRepo, users *memUserRepo) *memRequestRepo {
	return &memRequestRepo{
		byID:    make(map[string]*domain.Request),
		lookups: lookups,
		users:   users,
	}
}

func (r *memRequestRepo) Create(_ context.Context, req *domain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	req.ID = fmt.Sprintf("req-%d", r.nextID)
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	stored := *req
	r.byID[req.ID] = &stored
	r.order = append(r.order, req.ID)
	return nil
}

func (r *memRequestRepo) Update(_ context.Context, req *domain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[req.ID]; !ok {
		return pgx.ErrNoRows
	}
	req.UpdatedAt = time.Now()
	stored := *req
	r.byID[req.ID] = &stored
	return nil
}

func (r *memRequestRepo) GetByID(_ context.Context, id string) (*domain.Request, error) {
	r.mu.Lock()
	req, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return nil, pgx.ErrNoRows
	}
	clone := *req
	r.mu.Unlock()
	if status, ok := r.lookups.statusByID(clone.StatusID); ok {
		clone.Status = status
	}
	return &clone, nil
}

func (r *memRequestRepo) GetView(ctx context.Context, id string) (*domain.RequestView, error) {
	req, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.buildView(ctx, req), nil
}

func (r *memRequestRepo) List(ctx context.Context, scope repository.RequestScope, filter domain.RequestFilter) ([]domain.RequestView, error) {
	r.mu.Lock()
	ids := append([]string(nil), r.order...)
	r.mu.Unlock()

	var result []domain.RequestView
	for i := len(ids) - 1; i >= 0; i-- {
		req, err := r.GetByID(ctx, ids[i])
		if err != nil {
			continue
		}
		if scope.ClientID != nil && req.ClientID != *scope.ClientID {
			continue
		}
		if scope.SpecialistID != nil && (req.SpecialistID == nil || *req.SpecialistID != *scope.SpecialistID) {
			continue
		}
		if filter.StatusID != "" && req.StatusID != filter.StatusID {
			continue
		}
		if filter.IssueTypeID != "" && req.IssueTypeID != filter.IssueTypeID {
			continue
		}
		view := r.buildView(ctx, req)
		if filter.EquipmentTypeID != "" && view.EquipmentTypeID != filter.EquipmentTypeID {
			continue
		}
		if q := strings.TrimSpace(filter.Query); q != "" {
			if req.ID != q && !strings.Contains(strings.ToLower(req.ProblemDescription), strings.ToLower(q)) {
				continue
			}
		}
		result = append(result, *view)
	}
	return result, nil
}

func (r *memRequestRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.byID, id)
	return nil
}

func (r *memRequestRepo) buildView(ctx context.Context, req *domain.Request) *domain.RequestView {
	view := &domain.RequestView{
		ID:                 req.ID,
		StartDate:          req.StartDate,
		CompletionDate:     req.CompletionDate,
		EquipmentModelID:   req.EquipmentModelID,
		IssueTypeID:        req.IssueTypeID,
		ProblemDescription: req.ProblemDescription,
		RepairParts:        req.RepairParts,
		Status:             req.Status,
		ClientID:           req.ClientID,
		SpecialistID:       req.SpecialistID,
		CreatedAt:          req.CreatedAt,
		UpdatedAt:          req.UpdatedAt,
	}
	if model, ok := r.lookups.modelByID(req.EquipmentModelID); ok {
		view.EquipmentModel = model.Name
		view.EquipmentTypeID = model.EquipmentTypeID
	}
	if view.EquipmentTypeID != "" {
		if equipmentType, err := r.lookups.GetEquipmentType(ctx, view.EquipmentTypeID); err == nil {
			view.EquipmentType = equipmentType.Name
		}
	}
	if issue, err := r.lookups.GetIssueType(ctx, req.IssueTypeID); err == nil {
		view.IssueType = issue.Name
	}
	if client, err := r.users.GetByID(ctx, req.ClientID); err == nil {
		view.ClientName = client.FullName
	}
	if req.SpecialistID != nil {
		if specialist, err := r.users.GetByID(ctx, *req.SpecialistID); err == nil {
			name := specialist.FullName
			view.SpecialistName = &name
		}
	}
	return view
}

type memCommentRepo struct {
	mu        sync.Mutex
	nextID    int
	byRequest map[string][]domain.Comment
	users     *memUserRepo
}

func newMemCommentRepo(users *memUserRepo) *memCommentRepo {
	return &memCommentRepo{byRequest: make(map[string][]domain.Comment), users: users}
}

func (r *memCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	comment.ID = fmt.Sprintf("comment-%d", r.nextID)
	comment.CreatedAt = time.Now()
	r.byRequest[comment.RequestID] = append(r.byRequest[comment.RequestID], *comment)
	return nil
}

func (r *memCommentRepo) ListByRequest(ctx context.Context, requestID string) ([]domain.Comment, error) {
	r.mu.Lock()
	comments := append([]domain.Comment(nil), r.byRequest[requestID]...)
	r.mu.Unlock()
	for i := range comments {
		if author, err := r.users.GetByID(ctx, comments[i].SpecialistID); err == nil {
			comments[i].SpecialistName = author.FullName
		}
	}
	return comments, nil
}

type memStatsRepo struct {
	mu          sync.Mutex
	records     []stats.Record
	assignments []stats.Assignment
	collectErr  error
}

func (r *memStatsRepo) CollectRecords(_ context.Context) ([]stats.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.collectErr != nil {
		return nil, r.collectErr
	}
	return append([]stats.Record(nil), r.records...), nil
}

func (r *memStatsRepo) CollectAssignments(_ context.Context) ([]stats.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.collectErr != nil {
		return nil, r.collectErr
	}
	return append([]stats.Assignment(nil), r.assignments...), nil
}

func (r *memStatsRepo) setRecords(records []stats.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = records
}

type fakeOverviewCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
}

func newFakeOverviewCache() *fakeOverviewCache {
	return &fakeOverviewCache{entries: make(map[string][]byte)}
}

func (c *fakeOverviewCache) Get(_ context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(raw), nil)
}

func (c *fakeOverviewCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.entries[key] = append([]byte(nil), v...)
	case string:
		c.entries[key] = []byte(v)
	}
	c.sets++
	return redis.NewStatusResult("OK", nil)
}

func (c *fakeOverviewCache) Del(_ context.Context, keys ...string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	var removed int64
	for _, key := range keys {
		if _, ok := c.entries[key]; ok {
			delete(c.entries, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) typesSeen() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	seen := make([]events.EventType, 0, len(d.published))
	for _, event := range d.published {
		seen = append(seen, event.Type)
	}
	return seen
}
