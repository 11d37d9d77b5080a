package session

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"appointment-booking-client/internal/models"
	"appointment-booking-client/internal/navigation"
)

type fakeAuth struct {
	resp  *models.AuthResponse
	err   error
	calls int
}

func (f *fakeAuth) Login(_ context.Context, _ models.Credentials) (*models.AuthResponse, error) {
	f.calls++
	return f.resp, f.err
}

func (f *fakeAuth) Register(_ context.Context, _ models.Registration) (*models.AuthResponse, error) {
	f.calls++
	return f.resp, f.err
}

func newManager(store Store, auth Authenticator) (*Manager, *navigation.Recorder) {
	nav := &navigation.Recorder{}
	return NewManager(store, auth, nav, zap.NewNop()), nav
}

func patientResponse() *models.AuthResponse {
	return &models.AuthResponse{
		Token:  "tok-123",
		UserID: 5,
		Email:  "pat@example.com",
		Name:   "Pat Doe",
		Role:   models.RolePatient,
	}
}

func TestLoginPersistsSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m, _ := newManager(store, &fakeAuth{resp: patientResponse()})

	s, err := m.Login(ctx, models.Credentials{Email: "pat@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok-123", s.Token)
	assert.Equal(t, int64(5), s.User.UserID)

	token, ok, _ := store.Get(ctx, keyToken)
	assert.True(t, ok)
	assert.Equal(t, "tok-123", token)

	// a fresh manager over the same store restores the same session
	restored, _ := newManager(store, nil)
	got, err := restored.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.User, got.User)
	assert.False(t, restored.IsAdmin())
}

func TestLoginFailureLeavesNoSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m, _ := newManager(store, &fakeAuth{err: errors.New("Invalid email or password")})

	_, err := m.Login(ctx, models.Credentials{Email: "x@example.com", Password: "bad"})
	assert.EqualError(t, err, "Invalid email or password")

	_, ok := m.Current()
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, keyToken)
	assert.False(t, ok)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		values    map[string]string
		wantOK    bool
		wantClear bool
	}{
		{"empty store", map[string]string{}, false, false},
		{"token only", map[string]string{keyToken: "t"}, false, false},
		{"user only", map[string]string{keyUser: `{"userId":1}`}, false, false},
		{"corrupt user", map[string]string{keyToken: "t", keyUser: "{not json"}, false, true},
		{"null user", map[string]string{keyToken: "t", keyUser: "null"}, false, true},
		{"empty user object", map[string]string{keyToken: "t", keyUser: "{}"}, false, true},
		{"user without role", map[string]string{keyToken: "t", keyUser: `{"userId":3,"email":"a@b.c"}`}, false, true},
		{"valid", map[string]string{keyToken: "t", keyUser: `{"userId":1,"email":"a@b.c","name":"A","role":"ADMIN"}`}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			for k, v := range tt.values {
				require.NoError(t, store.Set(ctx, k, v))
			}
			m, _ := newManager(store, nil)

			s, err := m.Restore(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, s != nil)

			if tt.wantClear {
				_, hasToken, _ := store.Get(ctx, keyToken)
				_, hasUser, _ := store.Get(ctx, keyUser)
				assert.False(t, hasToken)
				assert.False(t, hasUser)
			}
			if tt.wantOK {
				assert.True(t, m.IsAdmin())
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(NewMemoryStore(), &fakeAuth{resp: patientResponse()})

	req, _ := http.NewRequest(http.MethodGet, "http://example.com/services", nil)
	m.Authorize(req)
	assert.Empty(t, req.Header.Get("Authorization"))

	_, err := m.Login(ctx, models.Credentials{})
	require.NoError(t, err)

	req, _ = http.NewRequest(http.MethodGet, "http://example.com/services", nil)
	m.Authorize(req)
	assert.Equal(t, "Bearer tok-123", req.Header.Get("Authorization"))
}

func TestTeardownClearsAndRedirects(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m, nav := newManager(store, &fakeAuth{resp: patientResponse()})
	_, err := m.Login(ctx, models.Credentials{})
	require.NoError(t, err)

	m.Teardown(ctx)

	_, ok := m.Current()
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, keyUser)
	assert.False(t, ok)
	assert.Equal(t, []string{navigation.RouteLogin}, nav.Routes())

	_, err = m.Require()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m, nav := newManager(store, &fakeAuth{resp: patientResponse()})
	_, err := m.Register(ctx, models.Registration{Name: "Pat", Email: "pat@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx))
	_, ok := m.Current()
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, keyToken)
	assert.False(t, ok)
	assert.Empty(t, nav.Routes())
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	_, ok, err := store.Get(ctx, keyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, keyToken, "abc"))
	require.NoError(t, store.Set(ctx, keyUser, `{"userId":2}`))

	v, ok, err := NewFileStore(path).Get(ctx, keyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, store.Delete(ctx, keyToken, keyUser))
	_, ok, _ = store.Get(ctx, keyUser)
	assert.False(t, ok)
}

func TestFileStoreCorruptFileRestoresAsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	m, _ := newManager(NewFileStore(path), nil)
	s, err := m.Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	store, err := NewRedisStore(ctx, &redis.Options{Addr: addr}, "booking:test:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Set(ctx, keyToken, "abc"))
	v, ok, err := store.Get(ctx, keyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, store.Delete(ctx, keyToken))
	_, ok, err = store.Get(ctx, keyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}
