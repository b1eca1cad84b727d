package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/inkpad/inkpad/internal/api/middleware"
	"github.com/inkpad/inkpad/internal/logger"
	"github.com/inkpad/inkpad/pkg/models"
	"github.com/inkpad/inkpad/pkg/store"
)

// NotesHandler handles the note CRUD endpoints. All routes run behind the
// authorization gate and trust it completely: the handler only ever scopes
// queries to the principal attached to the request context.
type NotesHandler struct {
	notes store.NoteStore
}

// NewNotesHandler creates a new NotesHandler.
func NewNotesHandler(notes store.NoteStore) *NotesHandler {
	return &NotesHandler{notes: notes}
}

// NoteRequest is the request body for POST /notes.
type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// List handles GET /notes.
func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		Unauthorized(w, "Unauthorized")
		return
	}

	notes, err := h.notes.ListNotes(r.Context(), user.ID)
	if err != nil {
		logger.Error("failed to list notes", "error", err, "user_id", user.ID)
		InternalServerError(w, "Server error")
		return
	}
	WriteJSONOK(w, notes)
}

// Create handles POST /notes.
func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		Unauthorized(w, "Unauthorized")
		return
	}

	var req NoteRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	note := &models.Note{
		UserID:  user.ID,
		Title:   req.Title,
		Content: req.Content,
	}
	if err := h.notes.CreateNote(r.Context(), note); err != nil {
		logger.Error("failed to create note", "error", err, "user_id", user.ID)
		InternalServerError(w, "Server error")
		return
	}
	WriteJSONCreated(w, note)
}

// Delete handles DELETE /notes/{id}. Deletion is logical and scoped to the
// owner; a foreign or unknown note yields 404.
func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		Unauthorized(w, "Unauthorized")
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		BadRequest(w, "Invalid note ID")
		return
	}

	if err := h.notes.DeleteNote(r.Context(), uint(id), user.ID); err != nil {
		if errors.Is(err, models.ErrNoteNotFound) {
			NotFound(w, "Note not found")
			return
		}
		logger.Error("failed to delete note", "error", err, "user_id", user.ID)
		InternalServerError(w, "Server error")
		return
	}
	WriteJSONOK(w, MessageResponse{Message: "Note deleted"})
}
