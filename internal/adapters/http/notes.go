package http

import (
	"net/http"

	"github.com/atvirokodosprendimai/assettrack/internal/application"
	"github.com/atvirokodosprendimai/assettrack/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.ListNotes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data(notes))
}

func (h *Handler) handleSearchNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	searchType := domain.NoteSearchType(q.Get("searchType"))
	if searchType == "" {
		searchType = domain.NoteSearchAll
	}
	notes, err := h.service.SearchNotes(r.Context(), searchType, q.Get("searchTerm"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": notes})
}

func (h *Handler) handleNotesByUser(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.ListNotesByUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data(notes))
}

func (h *Handler) handleNoteImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.ListNoteImages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": images})
}

func (h *Handler) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req application.NoteInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.service.CreateNote(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Note created successfully", "Note_ID": id})
}

func (h *Handler) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var req application.NoteInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.service.UpdateNote(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message("Note updated successfully"))
}

func (h *Handler) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteNote(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message("Note deleted successfully"))
}
