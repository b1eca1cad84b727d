//go:build integration

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/inkpad/inkpad/internal/api/middleware"
	"github.com/inkpad/inkpad/pkg/models"
	"github.com/inkpad/inkpad/pkg/store"
)

func setupNotesTest(t *testing.T) (*store.GORMStore, *NotesHandler, *models.User) {
	t.Helper()

	dbConfig := store.Config{
		Type: store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{
			Path: ":memory:",
		},
	}
	db, err := store.New(&dbConfig)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	user := &models.User{
		Email:    "alice@example.com",
		Provider: string(models.ProviderLocal),
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return db, NewNotesHandler(db), user
}

// asUser attaches the principal the way the session gate does.
func asUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), user))
}

func createNote(t *testing.T, handler *NotesHandler, user *models.User, title, content string) models.Note {
	t.Helper()
	payload, _ := json.Marshal(NoteRequest{Title: title, Content: content})
	req := asUser(httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader(payload)), user)
	w := httptest.NewRecorder()
	handler.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Create() status = %d, body = %s", w.Code, w.Body.String())
	}
	var note models.Note
	if err := json.Unmarshal(w.Body.Bytes(), &note); err != nil {
		t.Fatalf("failed to unmarshal note: %v", err)
	}
	return note
}

func deleteNote(handler *NotesHandler, user *models.User, id string) *httptest.ResponseRecorder {
	req := asUser(httptest.NewRequest(http.MethodDelete, "/notes/"+id, nil), user)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()
	handler.Delete(w, req)
	return w
}

func TestNotesHandler_CreateAndList(t *testing.T) {
	db, handler, alice := setupNotesTest(t)

	first := createNote(t, handler, alice, "Groceries", "milk, eggs")
	if first.ID == 0 {
		t.Error("expected created note to have an ID")
	}
	if first.Title != "Groceries" || first.Content != "milk, eggs" {
		t.Errorf("created note = %+v", first)
	}
	createNote(t, handler, alice, "Ideas", "")

	// A second account must not see alice's notes.
	bob := &models.User{Email: "bob@example.com", Provider: string(models.ProviderLocal)}
	if err := db.CreateUser(context.Background(), bob); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	createNote(t, handler, bob, "Private", "bob only")

	req := asUser(httptest.NewRequest(http.MethodGet, "/notes", nil), alice)
	w := httptest.NewRecorder()
	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("List() status = %d, body = %s", w.Code, w.Body.String())
	}
	var notes []models.Note
	if err := json.Unmarshal(w.Body.Bytes(), &notes); err != nil {
		t.Fatalf("failed to unmarshal notes: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("len(notes) = %d, want 2", len(notes))
	}
	for _, n := range notes {
		if n.Title == "Private" {
			t.Errorf("listing leaked another user's note %d", n.ID)
		}
	}
}

func TestNotesHandler_CreateInvalidBody(t *testing.T) {
	_, handler, alice := setupNotesTest(t)

	req := asUser(httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader("not json")), alice)
	w := httptest.NewRecorder()
	handler.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Create() status = %d, want 400", w.Code)
	}
}

func TestNotesHandler_Delete(t *testing.T) {
	db, handler, alice := setupNotesTest(t)

	note := createNote(t, handler, alice, "Doomed", "delete me")
	keep := createNote(t, handler, alice, "Keeper", "still here")

	bob := &models.User{Email: "bob@example.com", Provider: string(models.ProviderLocal)}
	if err := db.CreateUser(context.Background(), bob); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	t.Run("foreign note yields not found", func(t *testing.T) {
		w := deleteNote(handler, bob, uintToString(note.ID))
		if w.Code != http.StatusNotFound {
			t.Errorf("Delete() status = %d, want 404", w.Code)
		}
		resp := decodeError(t, w)
		if resp.Message != "Note not found" {
			t.Errorf("message = %q", resp.Message)
		}
	})

	t.Run("owner delete succeeds", func(t *testing.T) {
		w := deleteNote(handler, alice, uintToString(note.ID))
		if w.Code != http.StatusOK {
			t.Fatalf("Delete() status = %d, body = %s", w.Code, w.Body.String())
		}

		req := asUser(httptest.NewRequest(http.MethodGet, "/notes", nil), alice)
		rec := httptest.NewRecorder()
		handler.List(rec, req)
		var notes []models.Note
		if err := json.Unmarshal(rec.Body.Bytes(), &notes); err != nil {
			t.Fatalf("failed to unmarshal notes: %v", err)
		}
		if len(notes) != 1 || notes[0].ID != keep.ID {
			t.Errorf("remaining notes = %v, want only %d", notes, keep.ID)
		}
	})

	t.Run("already deleted note yields not found", func(t *testing.T) {
		w := deleteNote(handler, alice, uintToString(note.ID))
		if w.Code != http.StatusNotFound {
			t.Errorf("Delete() status = %d, want 404", w.Code)
		}
	})

	t.Run("invalid id yields bad request", func(t *testing.T) {
		w := deleteNote(handler, alice, "abc")
		if w.Code != http.StatusBadRequest {
			t.Errorf("Delete() status = %d, want 400", w.Code)
		}
		resp := decodeError(t, w)
		if resp.Message != "Invalid note ID" {
			t.Errorf("message = %q", resp.Message)
		}
	})
}

func TestHealthHandler(t *testing.T) {
	db, _, _ := setupNotesTest(t)
	handler := NewHealthHandler(db)

	t.Run("liveness", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Liveness(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Liveness() status = %d", w.Code)
		}
		var resp HealthResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if resp.Status != "healthy" {
			t.Errorf("status = %q", resp.Status)
		}
	})

	t.Run("readiness with live database", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Readiness() status = %d", w.Code)
		}
	})

	t.Run("readiness with closed database", func(t *testing.T) {
		if err := db.Close(); err != nil {
			t.Fatalf("failed to close store: %v", err)
		}
		w := httptest.NewRecorder()
		handler.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("Readiness() status = %d, want 503", w.Code)
		}
		var resp HealthResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if resp.Error != "database unreachable" {
			t.Errorf("error = %q", resp.Error)
		}
	})
}

func uintToString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
