package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/repositories"
	"github.com/lampoon-ads/backend/internal/workflow"
	"github.com/stretchr/testify/mock"
)

// --- Transactor ---

type fakeTx struct {
	calls int
}

func (f *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// --- Dispatcher ---

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, ns []workflow.Notification) error {
	return m.Called(ctx, ns).Error(0)
}

// topics flattens every dispatched batch.
func (m *mockDispatcher) topics() []workflow.Topic {
	var out []workflow.Topic
	for _, call := range m.Calls {
		for _, n := range call.Arguments.Get(1).([]workflow.Notification) {
			out = append(out, n.Topic)
		}
	}
	return out
}

// --- Audit ---

type fakeAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (f *fakeAudit) Log(_ context.Context, e models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAudit) Recent(_ context.Context, limit int) ([]models.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AuditLog
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

func (f *fakeAudit) ForEntity(_ context.Context, entityType string, id uuid.UUID, limit int) ([]models.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AuditLog
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := f.entries[i]
		if e.EntityType == entityType && e.EntityID != nil && *e.EntityID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAudit) actions() []string {
	var out []string
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

// --- Users ---

type fakeUsers struct {
	byID map[uuid.UUID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]*models.User{}}
}

func (f *fakeUsers) add(u *models.User) *models.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repositories.ErrDuplicate
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) LinkAdvertiser(_ context.Context, userID, advertiserID uuid.UUID) error {
	u, ok := f.byID[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.AdvertiserID = &advertiserID
	return nil
}

func (f *fakeUsers) UpdateName(_ context.Context, id uuid.UUID, first, last string) error {
	u, ok := f.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.FirstName, u.LastName = first, last
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := f.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	u, ok := f.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.LastLoginAt = &at
	return nil
}

func (f *fakeUsers) SetRoles(_ context.Context, id uuid.UUID, staff, superuser bool) error {
	u, ok := f.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.IsStaff, u.IsSuperuser = staff, superuser
	return nil
}

func (f *fakeUsers) ListStaff(context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.byID {
		if u.IsStaff || u.IsSuperuser {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Count(context.Context) (int, error) {
	return len(f.byID), nil
}

// --- Advertisers ---

type fakeAdvertisers struct {
	byID map[uuid.UUID]*models.Advertiser
}

func newFakeAdvertisers() *fakeAdvertisers {
	return &fakeAdvertisers{byID: map[uuid.UUID]*models.Advertiser{}}
}

func (f *fakeAdvertisers) add(a *models.Advertiser) *models.Advertiser {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	f.byID[a.ID] = &cp
	return a
}

func (f *fakeAdvertisers) Create(_ context.Context, a *models.Advertiser) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAdvertisers) GetByID(_ context.Context, id uuid.UUID) (*models.Advertiser, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAdvertisers) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Advertiser, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeAdvertisers) Update(_ context.Context, a *models.Advertiser) error {
	if _, ok := f.byID[a.ID]; !ok {
		return repositories.ErrNotFound
	}
	a.UpdatedAt = time.Now()
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAdvertisers) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeAdvertisers) List(_ context.Context, flt repositories.AdvertiserFilter) ([]models.Advertiser, error) {
	var out []models.Advertiser
	for _, a := range f.byID {
		if flt.Approved != nil && a.Approved != *flt.Approved {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAdvertisers) CountByApproval(_ context.Context, approved bool) (int, error) {
	n := 0
	for _, a := range f.byID {
		if a.Approved == approved {
			n++
		}
	}
	return n, nil
}

// --- Adverts ---

type fakeAdverts struct {
	byID map[uuid.UUID]*models.Advert
}

func newFakeAdverts() *fakeAdverts {
	return &fakeAdverts{byID: map[uuid.UUID]*models.Advert{}}
}

func (f *fakeAdverts) add(a *models.Advert) *models.Advert {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	f.byID[a.ID] = &cp
	return a
}

func (f *fakeAdverts) Create(_ context.Context, a *models.Advert) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAdverts) GetByID(_ context.Context, id uuid.UUID) (*models.Advert, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAdverts) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Advert, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeAdverts) Update(_ context.Context, a *models.Advert) error {
	if _, ok := f.byID[a.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAdverts) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeAdverts) List(_ context.Context, flt repositories.AdvertFilter) ([]models.AdvertWithAdvertiser, error) {
	var out []models.AdvertWithAdvertiser
	for _, a := range f.byID {
		if flt.AdvertiserID != nil && a.AdvertiserID != *flt.AdvertiserID {
			continue
		}
		out = append(out, models.AdvertWithAdvertiser{Advert: *a, IssuesCount: len(a.IssueIDs)})
	}
	return out, nil
}

func (f *fakeAdverts) CountByPaid(_ context.Context, paid bool) (int, error) {
	n := 0
	for _, a := range f.byID {
		if a.Paid == paid {
			n++
		}
	}
	return n, nil
}

// --- Issues ---

type fakeIssues struct {
	byID map[uuid.UUID]*models.Issue
}

func newFakeIssues() *fakeIssues {
	return &fakeIssues{byID: map[uuid.UUID]*models.Issue{}}
}

func (f *fakeIssues) add(title string, volume, number int) uuid.UUID {
	i := &models.Issue{ID: uuid.New(), Title: title, Volume: volume, IssueNumber: number}
	f.byID[i.ID] = i
	return i.ID
}

func (f *fakeIssues) duplicate(i *models.Issue) bool {
	for _, other := range f.byID {
		if other.ID != i.ID && other.Volume == i.Volume && other.IssueNumber == i.IssueNumber {
			return true
		}
	}
	return false
}

func (f *fakeIssues) Create(_ context.Context, i *models.Issue) error {
	if f.duplicate(i) {
		return repositories.ErrDuplicate
	}
	i.ID = uuid.New()
	cp := *i
	f.byID[i.ID] = &cp
	return nil
}

func (f *fakeIssues) GetByID(_ context.Context, id uuid.UUID) (*models.Issue, error) {
	i, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeIssues) Update(_ context.Context, i *models.Issue) error {
	if _, ok := f.byID[i.ID]; !ok {
		return repositories.ErrNotFound
	}
	if f.duplicate(i) {
		return repositories.ErrDuplicate
	}
	cp := *i
	f.byID[i.ID] = &cp
	return nil
}

func (f *fakeIssues) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeIssues) List(_ context.Context, volume *int) ([]models.Issue, error) {
	var out []models.Issue
	for _, i := range f.byID {
		if volume != nil && i.Volume != *volume {
			continue
		}
		out = append(out, *i)
	}
	return out, nil
}

func (f *fakeIssues) CountExisting(_ context.Context, ids []uuid.UUID) (int, error) {
	n := 0
	for _, id := range ids {
		if _, ok := f.byID[id]; ok {
			n++
		}
	}
	return n, nil
}

func (f *fakeIssues) Count(context.Context) (int, error) {
	return len(f.byID), nil
}

// --- Correspondence ---

type fakeCorrespondence struct {
	byID map[uuid.UUID]*models.Correspondence
}

func newFakeCorrespondence() *fakeCorrespondence {
	return &fakeCorrespondence{byID: map[uuid.UUID]*models.Correspondence{}}
}

func (f *fakeCorrespondence) Create(_ context.Context, c *models.Correspondence) error {
	c.ID = uuid.New()
	c.CreatedOn = time.Now()
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCorrespondence) GetByID(_ context.Context, id uuid.UUID) (*models.Correspondence, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCorrespondence) UpdateReceptive(_ context.Context, id uuid.UUID, receptive *int) error {
	c, ok := f.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.Receptive = receptive
	return nil
}

func (f *fakeCorrespondence) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeCorrespondence) List(_ context.Context, flt repositories.CorrespondenceFilter) ([]models.Correspondence, error) {
	var out []models.Correspondence
	for _, c := range f.byID {
		if flt.AdvertiserID != nil && c.AdvertiserID != *flt.AdvertiserID {
			continue
		}
		if flt.Query != "" && !strings.Contains(c.Text, flt.Query) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}
