package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GustaavooC/mooda-sub000/internal/credstore"
	"github.com/GustaavooC/mooda-sub000/internal/repository"
	"github.com/GustaavooC/mooda-sub000/pkg/config"
	"github.com/GustaavooC/mooda-sub000/pkg/jwtutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeCredStore is an in-memory credstore.Store for handler tests
type fakeCredStore struct {
	entries map[string]credstore.Entry
}

func newFakeCredStore(entries ...credstore.Entry) *fakeCredStore {
	s := &fakeCredStore{entries: make(map[string]credstore.Entry)}
	for _, e := range entries {
		s.entries[credstore.NormalizeEmail(e.Email)] = e
	}
	return s
}

func (s *fakeCredStore) Lookup(email string) (*credstore.Entry, bool, error) {
	e, ok := s.entries[credstore.NormalizeEmail(email)]
	if !ok {
		return nil, false, nil
	}
	return &e, true, nil
}

func (s *fakeCredStore) Upsert(entry credstore.Entry) error {
	s.entries[credstore.NormalizeEmail(entry.Email)] = entry
	return nil
}

func (s *fakeCredStore) Clear() error {
	s.entries = make(map[string]credstore.Entry)
	return nil
}

func (s *fakeCredStore) List() ([]credstore.Entry, error) {
	out := make([]credstore.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out, nil
}

func testJWT() *jwtutil.JWTUtil {
	return jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
}

func localEntry() credstore.Entry {
	return credstore.Entry{
		Email:    "a@x.com",
		Password: "senha123",
		Profile: credstore.Profile{
			UserID:     uuid.New(),
			Name:       "Ana",
			TenantID:   uuid.New(),
			TenantSlug: "loja-x",
			TenantName: "Loja X",
			IsAdmin:    true,
		},
	}
}

func signinRequest(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSignIn_LocalCredentialShortCircuitsBackendAuth(t *testing.T) {
	// No database at all: a credential-store hit must never reach it
	h := NewAuthHandler(nil, nil, newFakeCredStore(localEntry()), testJWT())

	c, rec := signinRequest(t, `{"email":"a@x.com","password":"senha123"}`)
	require.NoError(t, h.SignIn(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])
	assert.Equal(t, true, resp["demo_session"])

	tenant, ok := resp["tenant"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "loja-x", tenant["slug"])
}

func TestSignIn_LocalLookupIsCaseInsensitive(t *testing.T) {
	h := NewAuthHandler(nil, nil, newFakeCredStore(localEntry()), testJWT())

	c, rec := signinRequest(t, `{"email":"A@X.COM","password":"senha123"}`)
	require.NoError(t, h.SignIn(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignIn_WrongLocalPasswordFallsThroughToBackend(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	// The fall-through path hits the users table and finds nothing
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password"}))

	users := repository.NewUserRepository(db)
	h := NewAuthHandler(users, nil, newFakeCredStore(localEntry()), testJWT())

	c, rec := signinRequest(t, `{"email":"a@x.com","password":"errada"}`)
	require.NoError(t, h.SignIn(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignIn_MissingCredentials(t *testing.T) {
	h := NewAuthHandler(nil, nil, newFakeCredStore(), testJWT())

	c, rec := signinRequest(t, `{}`)
	require.NoError(t, h.SignIn(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignIn_DeepLinkQueryParams(t *testing.T) {
	h := NewAuthHandler(nil, nil, newFakeCredStore(localEntry()), testJWT())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/signin?email=a%40x.com&password=senha123", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.SignIn(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
