package provision

import (
	"errors"
	"testing"
	"time"

	"github.com/GustaavooC/mooda-sub000/internal/contract"
	"github.com/GustaavooC/mooda-sub000/internal/credstore"
	"github.com/GustaavooC/mooda-sub000/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTenantStore struct {
	mock.Mock
}

func (m *mockTenantStore) SlugExists(slug string) (bool, error) {
	args := m.Called(slug)
	return args.Bool(0), args.Error(1)
}

func (m *mockTenantStore) Create(t *model.Tenant) error {
	args := m.Called(t)
	return args.Error(0)
}

func (m *mockTenantStore) AttachUser(tenantID, userID uuid.UUID, role string) error {
	args := m.Called(tenantID, userID, role)
	return args.Error(0)
}

type mockUserDirectory struct {
	mock.Mock
}

func (m *mockUserDirectory) CreateConfirmed(email, name, password string) (uuid.UUID, error) {
	args := m.Called(email, name, password)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type mockCustomizationStore struct {
	mock.Mock
}

func (m *mockCustomizationStore) CreateDefault(tenantID uuid.UUID) error {
	args := m.Called(tenantID)
	return args.Error(0)
}

// memCredStore is an in-memory credstore.Store for workflow tests
type memCredStore struct {
	entries map[string]credstore.Entry
}

func newMemCredStore() *memCredStore {
	return &memCredStore{entries: make(map[string]credstore.Entry)}
}

func (s *memCredStore) Lookup(email string) (*credstore.Entry, bool, error) {
	e, ok := s.entries[credstore.NormalizeEmail(email)]
	if !ok {
		return nil, false, nil
	}
	return &e, true, nil
}

func (s *memCredStore) Upsert(entry credstore.Entry) error {
	s.entries[credstore.NormalizeEmail(entry.Email)] = entry
	return nil
}

func (s *memCredStore) Clear() error {
	s.entries = make(map[string]credstore.Entry)
	return nil
}

func (s *memCredStore) List() ([]credstore.Entry, error) {
	out := make([]credstore.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out, nil
}

func validRequest() Request {
	return Request{
		Name:                 "Loja X",
		Slug:                 "loja-x",
		Description:          "Test store",
		AdminEmail:           "a@x.com",
		AdminName:            "Ana",
		AdminPassword:        "senha123",
		ContractDurationDays: 30,
	}
}

func stepByName(t *testing.T, res *Result, name string) StepResult {
	t.Helper()
	for _, s := range res.Steps {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("step %q not recorded", name)
	return StepResult{}
}

func TestRun_SlugCollisionAbortsBeforeAnyWrite(t *testing.T) {
	tenants := new(mockTenantStore)
	users := new(mockUserDirectory)
	customizations := new(mockCustomizationStore)
	creds := newMemCredStore()

	tenants.On("SlugExists", "loja-x").Return(true, nil)

	w := New(tenants, users, customizations, creds, nil, 30, "/auth/signin")
	req := validRequest()
	req.Slug = "Loja-X" // collision check is case-insensitive

	res, err := w.Run(req)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "slug", verr.Field)
	assert.False(t, res.Success)

	// Nothing was mutated
	tenants.AssertNotCalled(t, "Create", mock.Anything)
	users.AssertNotCalled(t, "CreateConfirmed", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, creds.entries)
}

func TestRun_ValidationRejectsBadInput(t *testing.T) {
	tenants := new(mockTenantStore)
	tenants.On("SlugExists", mock.Anything).Return(false, nil)
	w := New(tenants, nil, new(mockCustomizationStore), newMemCredStore(), nil, 30, "")

	cases := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"missing name", func(r *Request) { r.Name = "" }, "name"},
		{"missing slug", func(r *Request) { r.Slug = "" }, "slug"},
		{"bad slug", func(r *Request) { r.Slug = "Loja X!" }, "slug"},
		{"missing email", func(r *Request) { r.AdminEmail = "" }, "admin_email"},
		{"short password", func(r *Request) { r.AdminPassword = "12345" }, "admin_password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := w.Run(req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestRun_DemotedToDemoModeWhenUserCreationFails(t *testing.T) {
	tenants := new(mockTenantStore)
	users := new(mockUserDirectory)
	customizations := new(mockCustomizationStore)
	creds := newMemCredStore()

	tenants.On("SlugExists", "loja-x").Return(false, nil)
	users.On("CreateConfirmed", "a@x.com", "Ana", "senha123").
		Return(uuid.Nil, errors.New("insufficient privileges"))
	tenants.On("Create", mock.AnythingOfType("*model.Tenant")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*model.Tenant).ID = uuid.New()
		}).Return(nil).Once()
	customizations.On("CreateDefault", mock.Anything).Return(nil)

	w := New(tenants, users, customizations, creds, nil, 30, "/auth/signin")
	res, err := w.Run(validRequest())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.False(t, res.RealUserCreated)
	assert.NotEqual(t, uuid.Nil, res.TenantID)
	assert.NotEqual(t, uuid.Nil, res.UserID) // placeholder owner id

	// Exactly one tenant and one credential were created
	tenants.AssertNumberOfCalls(t, "Create", 1)
	require.Len(t, creds.entries, 1)
	entry, ok, _ := creds.Lookup("a@x.com")
	require.True(t, ok)
	assert.Equal(t, "senha123", entry.Password)
	assert.Equal(t, "loja-x", entry.Profile.TenantSlug)

	// No tenant-user association in demo mode
	tenants.AssertNotCalled(t, "AttachUser", mock.Anything, mock.Anything, mock.Anything)

	assert.Equal(t, OutcomeFailed, stepByName(t, res, StepCreateAdminUser).Outcome)
	assert.Equal(t, OutcomeSucceeded, stepByName(t, res, StepCreateTenant).Outcome)
	assert.Equal(t, OutcomeSucceeded, stepByName(t, res, StepRegisterCredential).Outcome)
}

func TestRun_RealUserCreatesOwnerAssociation(t *testing.T) {
	tenants := new(mockTenantStore)
	users := new(mockUserDirectory)
	customizations := new(mockCustomizationStore)
	creds := newMemCredStore()

	adminID := uuid.New()
	tenants.On("SlugExists", "loja-x").Return(false, nil)
	users.On("CreateConfirmed", "a@x.com", "Ana", "senha123").Return(adminID, nil)
	tenants.On("Create", mock.AnythingOfType("*model.Tenant")).
		Run(func(args mock.Arguments) {
			tenant := args.Get(0).(*model.Tenant)
			tenant.ID = uuid.New()
			// Owner is set from the real account before the insert
			require.NotNil(t, tenant.OwnerID)
			assert.Equal(t, adminID, *tenant.OwnerID)
		}).Return(nil)
	tenants.On("AttachUser", mock.Anything, adminID, model.RoleOwner).Return(nil).Once()
	customizations.On("CreateDefault", mock.Anything).Return(nil)

	w := New(tenants, users, customizations, creds, nil, 30, "/auth/signin")
	res, err := w.Run(validRequest())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.True(t, res.RealUserCreated)
	assert.Equal(t, adminID, res.UserID)
	tenants.AssertNumberOfCalls(t, "AttachUser", 1)
	assert.Equal(t, OutcomeSucceeded, stepByName(t, res, StepCreateDependents).Outcome)
}

func TestRun_NoUserDirectorySkipsStep(t *testing.T) {
	tenants := new(mockTenantStore)
	customizations := new(mockCustomizationStore)
	creds := newMemCredStore()

	tenants.On("SlugExists", "loja-x").Return(false, nil)
	tenants.On("Create", mock.Anything).Return(nil)
	customizations.On("CreateDefault", mock.Anything).Return(nil)

	w := New(tenants, nil, customizations, creds, nil, 30, "")
	res, err := w.Run(validRequest())
	require.NoError(t, err)

	assert.Equal(t, OutcomeSkipped, stepByName(t, res, StepCreateAdminUser).Outcome)
	assert.False(t, res.RealUserCreated)
}

func TestRun_TenantCreateFailureIsFatal(t *testing.T) {
	tenants := new(mockTenantStore)
	users := new(mockUserDirectory)
	customizations := new(mockCustomizationStore)
	creds := newMemCredStore()

	tenants.On("SlugExists", "loja-x").Return(false, nil)
	users.On("CreateConfirmed", mock.Anything, mock.Anything, mock.Anything).Return(uuid.New(), nil)
	tenants.On("Create", mock.Anything).Return(errors.New("database down"))

	w := New(tenants, users, customizations, creds, nil, 30, "")
	res, err := w.Run(validRequest())
	require.Error(t, err)

	assert.False(t, res.Success)
	// Nothing past the tenant insert was attempted
	customizations.AssertNotCalled(t, "CreateDefault", mock.Anything)
	assert.Empty(t, creds.entries)
}

func TestRun_CustomizationFailureDoesNotAbort(t *testing.T) {
	tenants := new(mockTenantStore)
	customizations := new(mockCustomizationStore)
	creds := newMemCredStore()

	tenants.On("SlugExists", "loja-x").Return(false, nil)
	tenants.On("Create", mock.Anything).Return(nil)
	customizations.On("CreateDefault", mock.Anything).Return(errors.New("table missing"))

	w := New(tenants, nil, customizations, creds, nil, 30, "")
	res, err := w.Run(validRequest())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, OutcomeFailed, stepByName(t, res, StepCreateDependents).Outcome)
	// The credential is still registered
	assert.Len(t, creds.entries, 1)
}

func TestRun_EndToEndLojaX(t *testing.T) {
	tenants := new(mockTenantStore)
	customizations := new(mockCustomizationStore)
	creds := newMemCredStore()

	var created *model.Tenant
	tenants.On("SlugExists", "loja-x").Return(false, nil)
	tenants.On("Create", mock.AnythingOfType("*model.Tenant")).
		Run(func(args mock.Arguments) {
			created = args.Get(0).(*model.Tenant)
			created.ID = uuid.New()
		}).Return(nil)
	customizations.On("CreateDefault", mock.Anything).Return(nil)

	w := New(tenants, nil, customizations, creds, nil, 30, "/auth/signin")
	res, err := w.Run(Request{
		Name:                 "Loja X",
		Slug:                 "loja-x",
		AdminEmail:           "a@x.com",
		AdminPassword:        "senha123",
		ContractDurationDays: 30,
	})
	require.NoError(t, err)
	require.True(t, res.Success)

	// The tenant exists with the requested slug and a 30-day contract
	require.NotNil(t, created)
	assert.Equal(t, "loja-x", created.Slug)
	info := contract.EvaluateTenant(created, created.ContractStartDate)
	assert.False(t, info.IsExpired)
	assert.Equal(t, 30, info.DaysRemaining)

	// Sign-in works immediately, with or without a real backend account
	entry, ok, _ := creds.Lookup("A@X.com")
	require.True(t, ok)
	assert.Equal(t, "senha123", entry.Password)
	assert.Equal(t, created.ID, entry.Profile.TenantID)

	// The deep link pre-fills the sign-in form
	assert.Contains(t, res.RegistrationURL, "/auth/signin?email=a%40x.com&password=senha123")
}

func TestRun_DefaultContractDuration(t *testing.T) {
	tenants := new(mockTenantStore)
	customizations := new(mockCustomizationStore)

	var created *model.Tenant
	tenants.On("SlugExists", mock.Anything).Return(false, nil)
	tenants.On("Create", mock.AnythingOfType("*model.Tenant")).
		Run(func(args mock.Arguments) { created = args.Get(0).(*model.Tenant) }).Return(nil)
	customizations.On("CreateDefault", mock.Anything).Return(nil)

	w := New(tenants, nil, customizations, newMemCredStore(), nil, 90, "")
	req := validRequest()
	req.ContractDurationDays = 0

	_, err := w.Run(req)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, 90, created.ContractDurationDays)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 90), created.ContractEndDate, time.Minute)
}
