package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lampoon-ads/backend/internal/metrics"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/rbac"
	"github.com/lampoon-ads/backend/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type env struct {
	tx             *fakeTx
	users          *fakeUsers
	advertisers    *fakeAdvertisers
	adverts        *fakeAdverts
	issues         *fakeIssues
	correspondence *fakeCorrespondence
	audit          *fakeAudit
	dispatcher     *mockDispatcher

	accounts       *AccountService
	advertiserSvc  *AdvertiserService
	advertSvc      *AdvertService
	issueSvc       *IssueService
	correspondSvc  *CorrespondenceService
	dashboardSvc   *DashboardService
	superuser      rbac.Actor
	staff          rbac.Actor
	staffUser      *models.User
	superuserModel *models.User
}

func newEnv(t *testing.T, policy workflow.PaidUpdatePolicy) *env {
	t.Helper()
	log := zap.NewNop()

	e := &env{
		tx:             &fakeTx{},
		users:          newFakeUsers(),
		advertisers:    newFakeAdvertisers(),
		adverts:        newFakeAdverts(),
		issues:         newFakeIssues(),
		correspondence: newFakeCorrespondence(),
		audit:          &fakeAudit{},
		dispatcher:     &mockDispatcher{},
	}
	e.dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil)

	lc := NewLifecycle(e.audit, nil, e.dispatcher, log)
	e.accounts = NewAccountService(e.users, lc, "secret", 0, log)
	e.advertiserSvc = NewAdvertiserService(e.tx, e.advertisers, e.users, e.adverts, e.correspondence, lc, metrics.NewNop(), log)
	e.advertSvc = NewAdvertService(e.tx, e.adverts, e.advertisers, e.issues, lc, policy, log)
	e.issueSvc = NewIssueService(e.issues, lc, log)
	e.correspondSvc = NewCorrespondenceService(e.correspondence, e.advertisers, lc, log)
	e.dashboardSvc = NewDashboardService(e.advertisers, e.adverts, e.issues, e.users, e.audit)

	e.staffUser = e.users.add(&models.User{Email: "staff@lampoon.com", IsStaff: true})
	e.superuserModel = e.users.add(&models.User{Email: "root@lampoon.com", IsStaff: true, IsSuperuser: true})
	e.staff = rbac.ActorFor(e.staffUser)
	e.superuser = rbac.ActorFor(e.superuserModel)
	return e
}

func validAdvertiser() *models.Advertiser {
	return &models.Advertiser{
		Name:      "Acme Pizza",
		Address1:  "1 Main St",
		City:      "Cambridge",
		State:     "ma",
		ZipCode:   "02138",
		Contact:   "Pat Smith",
		Position:  "Owner",
		Telephone: "(617) 555 1212",
		Email:     "Pat@Acme.com",
	}
}

func registration() RegistrationInput {
	return RegistrationInput{
		Name:      "Acme Pizza",
		Address1:  "1 Main St",
		City:      "Cambridge",
		State:     "MA",
		ZipCode:   "02138",
		Contact:   "Pat Smith",
		Position:  "Owner",
		Telephone: "617-555-1212",
	}
}

func TestRegisterCreatesProfile(t *testing.T) {
	e := newEnv(t, workflow.PaidOnTransition)
	user := e.users.add(&models.User{Email: "pat@acme.com"})

	a, err := e.advertiserSvc.Register(context.Background(), user, registration())
	require.NoError(t, err)

	assert.Equal(t, "pat@acme.com", a.Email)
	assert.False(t, a.Approved)
	require.NotNil(t, user.AdvertiserID)
	assert.Equal(t, a.ID, *user.AdvertiserID)

	stored := e.users.byID[user.ID]
	assert.Equal(t, a.ID, *stored.AdvertiserID)
	assert.Equal(t, "Pat", stored.FirstName)
	assert.Equal(t, "Smith", stored.LastName)

	assert.Equal(t, []workflow.Topic{workflow.TopicAdvertiserCreated}, e.dispatcher.topics())
	assert.Contains(t, e.audit.actions(), "advertiser_created")
}

func TestRegisterUpdateKeepsStaffFields(t *testing.T) {
	e := newEnv(t, workflow.PaidOnTransition)
	existing := validAdvertiser()
	existing.Email = "billing@acme.com"
	existing.Approved = true
	existing.SalespersonID = &e.staffUser.ID
	e.advertisers.add(existing)
	user := e.users.add(&models.User{Email: "pat@acme.com", FirstName: "Patricia", AdvertiserID: &existing.ID})

	in := registration()
	in.Name = "Acme Pizza & Subs"
	in.Contact = "Someone Else Entirely"

	a, err := e.advertiserSvc.Register(context.Background(), user, in)
	require.NoError(t, err)

	assert.Equal(t, existing.ID, a.ID)
	assert.Equal(t, "Acme Pizza & Subs", a.Name)
	assert.True(t, a.Approved)
	assert.Equal(t, "billing@acme.com", a.Email)
	assert.Equal(t, e.staffUser.ID, *a.SalespersonID)
	assert.Equal(t, "Patricia", e.users.byID[user.ID].FirstName)
	assert.Empty(t, e.dispatcher.topics())
}

func TestRegisterWithStaleUserUpdatesLinkedProfile(t *testing.T) {
	e := newEnv(t, workflow.PaidOnTransition)
	user := e.users.add(&models.User{Email: "pat@acme.com"})
	stale := *user

	first, err := e.advertiserSvc.Register(context.Background(), user, registration())
	require.NoError(t, err)

	in := registration()
	in.Name = "Acme Pizza & Subs"
	second, err := e.advertiserSvc.Register(context.Background(), &stale, in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, e.advertisers.byID, 1)
	assert.Equal(t, "Acme Pizza & Subs", e.advertisers.byID[first.ID].Name)
	require.NotNil(t, stale.AdvertiserID)
	assert.Equal(t, first.ID, *stale.AdvertiserID)
	assert.Equal(t, []workflow.Topic{workflow.TopicAdvertiserCreated}, e.dispatcher.topics())
}

func TestRegisterRejectsInvalidForm(t *testing.T) {
	e := newEnv(t, workflow.PaidOnTransition)
	user := e.users.add(&models.User{Email: "pat@acme.com"})

	in := registration()
	in.ZipCode = "2138"
	_, err := e.advertiserSvc.Register(context.Background(), user, in)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Nil(t, user.AdvertiserID)
	assert.Empty(t, e.dispatcher.topics())
}

func TestProfileGate(t *testing.T) {
	e := newEnv(t, workflow.PaidOnTransition)
	pending := e.advertisers.add(validAdvertiser())
	approvedAdv := validAdvertiser()
	approvedAdv.Approved = true
	approved := e.advertisers.add(approvedAdv)
	missing := uuid.New()

	tests := []struct {
		name     string
		user     *models.User
		expected rbac.GateOutcome
	}{
		{"no profile", &models.User{}, rbac.GateRedirectToRegister},
		{"dangling profile", &models.User{AdvertiserID: &missing}, rbac.GateRedirectToRegister},
		{"pending", &models.User{AdvertiserID: &pending.ID}, rbac.GateRedirectToPending},
		{"approved", &models.User{AdvertiserID: &approved.ID}, rbac.GateContinue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, outcome, err := e.advertiserSvc.Profile(context.Background(), tt.user)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, outcome)
		})
	}
}

func TestAdvertiserApprovalNotifiesOnEdge(t *testing.T) {
	e := newEnv(t, workflow.PaidOnTransition)
	ctx := context.Background()

	a := validAdvertiser()
	require.NoError(t, e.advertiserSvc.Create(ctx, e.staff, a))
	assert.Equal(t, "pat@acme.com", a.Email)
	assert.Equal(t, "MA", a.State)
	assert.Equal(t, "617-555-1212", a.Telephone)

	a.Approved = true
	require.NoError(t, e.advertiserSvc.Update(ctx, e.staff, a, KeepStored{}))
	require.NoError(t, e.advertiserSvc.Update(ctx, e.staff, a, KeepStored{}))
	a.Approved = false
	require.NoError(t, e.advertiserSvc.Update(ctx, e.staff, a, KeepStored{}))

	assert.Equal(t, []workflow.Topic{workflow.TopicAdvertiserCreated, workflow.TopicAdvertiserApproved}, e.dispatcher.topics())
	assert.Contains(t, e.audit.actions(), "advertiser_approved")
	assert.Contains(t, e.audit.actions(), "advertiser_unapproved")
}

func TestAdvertiserUpdateKeepsStoredStaffFields(t *testing.T) {
	e := newEnv(t, workflow.PaidOnTransition)
	ctx := context.Background()

	stored := validAdvertiser()
	stored.Approved = true
	stored.SalespersonID = &e.staffUser.ID
	e.advertisers.add(stored)

	edit := *stored
	edit.Approved = false
	edit.SalespersonID = nil
	edit.Position = "Manager"
	require.NoError(t, e.advertiserSvc.Update(ctx, e.staff, &edit, KeepStored{Approved: true, Salesperson: true}))

	saved := e.advertisers.byID[stored.ID]
	assert.Equal(t, "Manager", saved.Position)
	assert.True(t, saved.Approved)
	require.NotNil(t, saved.SalespersonID)
	assert.Equal(t, e.staffUser.ID, *saved.SalespersonID)
	assert.NotContains(t, e.audit.actions(), "advertiser_unapproved")

	edit = *saved
	edit.Approved = false
	require.NoError(t, e.advertiserSvc.Update(ctx, e.staff, &edit, KeepStored{Salesperson: true}))
	assert.False(t, e.advertisers.byID[stored.ID].Approved)
	assert.Contains(t, e.audit.actions(), "advertiser_unapproved")
}

func TestAdvertiserUpdatePermissions(t *testing.T) {
	e := newEnv(t, workflow.PaidOnTransition)
	ctx := context.Background()
	other := e.users.add(&models.User{Email: "other@lampoon.com", IsStaff: true})

	owned := validAdvertiser()
	owned.Approved = true
	owned.SalespersonID = &other.ID
	e.advertisers.add(owned)

	ownedPending := validAdvertiser()
	ownedPending.SalespersonID = &other.ID
	e.advertisers.add(ownedPending)

	unassigned := validAdvertiser()
	unassigned.Approved = true
	e.advertisers.add(unassigned)

	tests := []struct {
		name  string
		actor rbac.Actor
		adv   *models.Advertiser
		err   error
	}{
		{"other salesperson, approved", e.staff, owned, ErrForbidden},
		{"own salesperson", rbac.ActorFor(other), owned, nil},
		{"superuser", e.superuser, owned, nil},
		{"other salesperson, unapproved", e.staff, ownedPending, nil},
		{"no salesperson", e.staff, unassigned, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := *tt.adv
			cp.Position = "Manager"
			err := e.advertiserSvc.Update(ctx, tt.actor, &cp, KeepStored{})
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAdvertiserSalespersonMustBeStaff(t *testing.T) {
	e := newEnv(t, workflow.PaidOnTransition)
	customer := e.users.add(&models.User{Email: "c@x.com"})
	missing := uuid.New()

	a := validAdvertiser()
	a.SalespersonID = &customer.ID
	assert.ErrorIs(t, e.advertiserSvc.Create(context.Background(), e.staff, a), ErrInvalidInput)

	a = validAdvertiser()
	a.SalespersonID = &missing
	assert.ErrorIs(t, e.advertiserSvc.Create(context.Background(), e.staff, a), ErrInvalidInput)

	a = validAdvertiser()
	a.SalespersonID = &e.staffUser.ID
	assert.NoError(t, e.advertiserSvc.Create(context.Background(), e.staff, a))
}

func TestSetApprovalSavesEachRecord(t *testing.T) {
	e := newEnv(t, workflow.PaidOnTransition)
	first := e.advertisers.add(validAdvertiser())
	secondAdv := validAdvertiser()
	secondAdv.Email = "second@acme.com"
	second := e.advertisers.add(secondAdv)
	alreadyAdv := validAdvertiser()
	alreadyAdv.Approved = true
	already := e.advertisers.add(alreadyAdv)
	missing := uuid.New()

	results := e.advertiserSvc.SetApproval(context.Background(), e.staff,
		[]uuid.UUID{first.ID, second.ID, already.ID, missing}, true)

	require.Len(t, results, 4)
	assert.True(t, results[0].OK)
	assert.True(t, results[1].OK)
	assert.True(t, results[2].OK)
	assert.False(t, results[3].OK)
	assert.NotEmpty(t, results[3].Error)

	assert.True(t, e.advertisers.byID[first.ID].Approved)
	assert.True(t, e.advertisers.byID[second.ID].Approved)
	assert.Equal(t, []workflow.Topic{workflow.TopicAdvertiserApproved, workflow.TopicAdvertiserApproved}, e.dispatcher.topics())
	assert.Equal(t, 4, e.tx.calls)
}

func TestAdvertiserDeleteSuperuserOnly(t *testing.T) {
	e := newEnv(t, workflow.PaidOnTransition)
	a := e.advertisers.add(validAdvertiser())

	assert.ErrorIs(t, e.advertiserSvc.Delete(context.Background(), e.staff, a.ID), ErrForbidden)
	assert.NoError(t, e.advertiserSvc.Delete(context.Background(), e.superuser, a.ID))
	assert.ErrorIs(t, e.advertiserSvc.Delete(context.Background(), e.superuser, a.ID), ErrNotFound)
}

func TestAdvertiserGetIncludesRelated(t *testing.T) {
	e := newEnv(t, workflow.PaidOnTransition)
	a := e.advertisers.add(validAdvertiser())
	e.adverts.add(&models.Advert{AdvertiserID: a.ID, Size: models.SizeHalf, Description: "x", ImageFile: "f"})
	require.NoError(t, e.correspondence.Create(context.Background(), &models.Correspondence{AdvertiserID: a.ID, From: "a", To: "b", Text: "hi"}))

	d, err := e.advertiserSvc.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Len(t, d.Adverts, 1)
	assert.Len(t, d.Correspondence, 1)
	assert.Equal(t, "1 Main St, Cambridge, ma 02138", d.MailingAddress)
}

func TestAdvertiserGetIncludesHistory(t *testing.T) {
	e := newEnv(t, workflow.PaidOnTransition)
	a := e.advertisers.add(validAdvertiser())
	other := e.advertisers.add(validAdvertiser())

	results := e.advertiserSvc.SetApproval(context.Background(), e.staff, []uuid.UUID{a.ID, other.ID}, true)
	require.True(t, results[0].OK)
	results = e.advertiserSvc.SetApproval(context.Background(), e.staff, []uuid.UUID{a.ID}, false)
	require.True(t, results[0].OK)

	d, err := e.advertiserSvc.Get(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, d.History, 2)
	assert.Equal(t, "advertiser_unapproved", d.History[0].Action)
	assert.Equal(t, "advertiser_approved", d.History[1].Action)
}
