package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-portal/internal/clinicapi"
)

type messageInput struct {
	Content string `json:"content"`
}

// Thread returns the conversation with another user and marks it read.
// GET /{patient|doctor}/messages/{userID}
func (h *ActionHandler) Thread(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	userID := chi.URLParam(r, "userID")
	api := h.backend(rec)
	msgs, err := api.GetMessages(r.Context(), userID)
	if err != nil {
		h.backendError(w, r, rec, err, "Failed to load messages")
		return
	}
	if err := api.MarkRead(r.Context(), userID); err != nil {
		if clinicapi.IsUnauthorized(err) {
			h.expire(w, r, rec)
			return
		}
		h.log(rec).Warn("failed to mark conversation read", "user_id", userID, "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":  userID,
		"messages": msgs,
	})
}

// Send posts a message to another user.
// POST /{patient|doctor}/messages/{userID}
func (h *ActionHandler) Send(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	var in messageInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.Content) == "" {
		jsonError(w, "Message cannot be empty", http.StatusUnprocessableEntity)
		return
	}
	msg, err := h.backend(rec).SendMessage(r.Context(), clinicapi.SendMessageRequest{
		ReceiverID: chi.URLParam(r, "userID"),
		Content:    strings.TrimSpace(in.Content),
	})
	if err != nil {
		h.backendError(w, r, rec, err, "Failed to send message")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": msg})
}

// MarkRead clears the unread counter of a conversation.
// PUT /{patient|doctor}/messages/{userID}/read
func (h *ActionHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	if err := h.backend(rec).MarkRead(r.Context(), chi.URLParam(r, "userID")); err != nil {
		h.backendError(w, r, rec, err, "Failed to update conversation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
