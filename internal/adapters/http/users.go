package http

import (
	"net/http"

	"github.com/atvirokodosprendimai/assettrack/internal/application"
	"github.com/atvirokodosprendimai/assettrack/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req application.LoginInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"accessToken": res.AccessToken,
		"user":        res.User,
	})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	profile, err := h.service.Profile(r.Context(), identity.User.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	var req application.ProfileInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	profile, err := h.service.UpdateProfile(r.Context(), identity.User.UserID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Profile updated successfully",
		"data":    profile,
	})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data(users))
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req application.UserInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "User created successfully", "user": user})
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req application.UserInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.service.UpdateUser(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message("User updated successfully"))
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message("User deleted successfully"))
}

func (h *Handler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data(roles))
}

func (h *Handler) handleMyNotes(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.Unauthorized("unauthorized"))
		return
	}
	notes, err := h.service.ListNotesByUser(r.Context(), identity.User.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data(notes))
}
