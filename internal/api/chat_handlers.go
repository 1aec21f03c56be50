/*
File: internal/api/chat_handlers.go
Description: Defines the HTTP handlers for chat bookkeeping: deterministic
conversation selection and per-user chat metadata.
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/tinywideclouds/go-microservice-base/pkg/response"
)

// SelectChatHandler resolves (and lazily creates) the conversation between
// two users. The chat id is deterministic, so either party selecting the
// pair lands on the same conversation.
func (a *API) SelectChatHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentUserUID string `json:"currentUserUid"`
		UserUID        string `json:"userUid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to decode select-chat body")
		response.WriteJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.CurrentUserUID == "" || req.UserUID == "" {
		response.WriteJSONError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	chatID, created, err := a.chats.Select(r.Context(), req.CurrentUserUID, req.UserUID)
	if err != nil {
		a.logger.Error().Err(err).
			Str("current", req.CurrentUserUID).Str("other", req.UserUID).
			Msg("Failed to select chat")
		response.WriteJSONError(w, http.StatusInternalServerError, "failed to select chat")
		return
	}

	if created {
		a.logger.Info().Str("chat", chatID).Msg("New chat created.")
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{
		"chatId":  chatID,
		"created": created,
		"message": "Chat selected successfully.",
	})
}

// GetUserChatsHandler returns the chat metadata map for one user. A user
// with no chats gets an empty object, not an error.
func (a *API) GetUserChatsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	chats, err := a.chats.UserChats(r.Context(), userID)
	if err != nil {
		a.logger.Error().Err(err).Str("uid", userID).Msg("Failed to fetch user chats")
		response.WriteJSONError(w, http.StatusInternalServerError, "failed to fetch chats")
		return
	}
	if chats == nil {
		chats = map[string]any{}
	}

	response.WriteJSON(w, http.StatusOK, chats)
}

// UpdateUserChatHandler merges new metadata for one chat into a user's chat
// map, e.g. the latest message preview and timestamp.
func (a *API) UpdateUserChatHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	var req struct {
		ChatID   string         `json:"chatId"`
		ChatData map[string]any `json:"chatData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to decode chat-update body")
		response.WriteJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ChatID == "" {
		response.WriteJSONError(w, http.StatusBadRequest, "missing chatId")
		return
	}

	if err := a.chats.SetUserChat(r.Context(), userID, req.ChatID, req.ChatData); err != nil {
		a.logger.Error().Err(err).Str("uid", userID).Str("chat", req.ChatID).
			Msg("Failed to update user chat")
		response.WriteJSONError(w, http.StatusInternalServerError, "failed to update chat")
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Chat updated successfully.",
	})
}
