package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/inkpad/inkpad/pkg/models"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

// stubUserStore is a minimal in-memory user store for session tests.
type stubUserStore struct {
	users map[uint]*models.User
}

func newStubUserStore(users ...*models.User) *stubUserStore {
	s := &stubUserStore{users: make(map[uint]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == models.NormalizeEmail(email) {
			return u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (s *stubUserStore) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, models.ErrUserNotFound
}

func (s *stubUserStore) CreateUser(ctx context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *stubUserStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubUserStore) DeleteUser(ctx context.Context, id uint) error {
	delete(s.users, id)
	return nil
}

func newTestManager(t *testing.T, users *stubUserStore) (*Manager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	m, err := NewManager(Config{Secret: testSecret}, store, users)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	return m, store
}

// sessionCookie extracts the session cookie set on the recorder.
func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == DefaultCookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func requestWithCookie(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.AddCookie(c)
	return r
}

func TestNewManagerRejectsShortSecret(t *testing.T) {
	_, err := NewManager(Config{Secret: "short"}, NewMemoryStore(), newStubUserStore())
	if err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestCreateAndResolve(t *testing.T) {
	user := &models.User{ID: 1, Email: "alice@example.com"}
	m, _ := newTestManager(t, newStubUserStore(user))
	ctx := context.Background()

	w := httptest.NewRecorder()
	if err := m.Create(ctx, w, user); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	cookie := sessionCookie(t, w)
	if !cookie.HttpOnly {
		t.Error("expected HttpOnly cookie")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Error("expected SameSite=Lax cookie")
	}
	if cookie.MaxAge != int(DefaultTTL.Seconds()) {
		t.Errorf("expected MaxAge %d, got %d", int(DefaultTTL.Seconds()), cookie.MaxAge)
	}

	got, err := m.Resolve(ctx, requestWithCookie(cookie))
	if err != nil {
		t.Fatalf("failed to resolve session: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("resolved user %d, want %d", got.ID, user.ID)
	}
}

func TestResolveFailures(t *testing.T) {
	user := &models.User{ID: 1, Email: "alice@example.com"}
	m, _ := newTestManager(t, newStubUserStore(user))
	ctx := context.Background()

	w := httptest.NewRecorder()
	if err := m.Create(ctx, w, user); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	cookie := sessionCookie(t, w)

	t.Run("missing cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		if _, err := m.Resolve(ctx, r); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("tampered signature", func(t *testing.T) {
		sid, _, _ := strings.Cut(cookie.Value, ".")
		bad := &http.Cookie{Name: cookie.Name, Value: sid + ".AAAA"}
		if _, err := m.Resolve(ctx, requestWithCookie(bad)); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("tampered session ID", func(t *testing.T) {
		_, tag, _ := strings.Cut(cookie.Value, ".")
		bad := &http.Cookie{Name: cookie.Name, Value: "other-sid." + tag}
		if _, err := m.Resolve(ctx, requestWithCookie(bad)); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("garbage value", func(t *testing.T) {
		bad := &http.Cookie{Name: cookie.Name, Value: "not-a-session"}
		if _, err := m.Resolve(ctx, requestWithCookie(bad)); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})
}

func TestResolveDeletedAccountFailsClosed(t *testing.T) {
	user := &models.User{ID: 1, Email: "alice@example.com"}
	users := newStubUserStore(user)
	m, store := newTestManager(t, users)
	ctx := context.Background()

	w := httptest.NewRecorder()
	if err := m.Create(ctx, w, user); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	cookie := sessionCookie(t, w)

	// Delete the account out from under the live session.
	if err := users.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}

	if _, err := m.Resolve(ctx, requestWithCookie(cookie)); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	// The dangling session must have been removed.
	if store.Len() != 0 {
		t.Errorf("expected dangling session to be deleted, %d remain", store.Len())
	}
}

func TestDestroy(t *testing.T) {
	user := &models.User{ID: 1, Email: "alice@example.com"}
	m, store := newTestManager(t, newStubUserStore(user))
	ctx := context.Background()

	w := httptest.NewRecorder()
	if err := m.Create(ctx, w, user); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	cookie := sessionCookie(t, w)

	w2 := httptest.NewRecorder()
	if err := m.Destroy(ctx, w2, requestWithCookie(cookie)); err != nil {
		t.Fatalf("failed to destroy session: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected session to be removed, %d remain", store.Len())
	}

	cleared := sessionCookie(t, w2)
	if cleared.MaxAge >= 0 {
		t.Errorf("expected clearing cookie with negative MaxAge, got %d", cleared.MaxAge)
	}

	// Destroying again is not an error.
	w3 := httptest.NewRecorder()
	if err := m.Destroy(ctx, w3, requestWithCookie(cookie)); err != nil {
		t.Errorf("expected idempotent destroy, got %v", err)
	}

	if _, err := m.Resolve(ctx, requestWithCookie(cookie)); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated after destroy, got %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Save(ctx, "sid", Data{UserID: 1, CreatedAt: time.Now()}, 10*time.Millisecond); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if _, err := store.Load(ctx, "sid"); err != nil {
		t.Fatalf("expected live session, got %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := store.Load(ctx, "sid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after expiry, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected expired session to be reaped, %d remain", store.Len())
	}
}
