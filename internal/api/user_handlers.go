/*
File: internal/api/user_handlers.go
Description: Defines the HTTP handlers for the user-profile API: register,
fetch, update, delete, and free-text search.
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"github.com/tinywideclouds/go-microservice-base/pkg/response"

	"github.com/TalkNest/backend/pkg/directory"
)

// API holds the dependencies for the stateless HTTP handlers.
type API struct {
	users  directory.UserStore
	chats  directory.ChatStore
	logger zerolog.Logger
}

// NewAPI creates a new, stateless API handler.
func NewAPI(users directory.UserStore, chats directory.ChatStore, logger zerolog.Logger) *API {
	return &API{
		users:  users,
		chats:  chats,
		logger: logger,
	}
}

// CreateUserHandler registers a new user profile.
func (a *API) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UID         string `json:"uid"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"photoURL"`
		Bio         string `json:"bio"`
		Location    string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to decode create-user body")
		response.WriteJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UID == "" || req.DisplayName == "" {
		response.WriteJSONError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	// For registration, createdAt and updatedAt are the same instant.
	now := time.Now().UTC()
	user := &directory.User{
		UID:         req.UID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Bio:         req.Bio,
		Location:    req.Location,
		CreatedAt:   now,
		UpdatedAt:   now,
		Chats:       []string{},
	}

	if err := a.users.Create(r.Context(), user); err != nil {
		a.logger.Error().Err(err).Str("uid", req.UID).Msg("Failed to register user")
		response.WriteJSONError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	a.logger.Info().Str("uid", req.UID).Msg("User profile created.")
	response.WriteJSON(w, http.StatusCreated, map[string]any{
		"createdAt": now,
		"updatedAt": now,
		"message":   "User profile created successfully.",
	})
}

// GetUserHandler fetches a user profile by id.
func (a *API) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	user, err := a.users.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			response.WriteJSONError(w, http.StatusNotFound, "user not found")
			return
		}
		a.logger.Error().Err(err).Str("uid", id).Msg("Failed to fetch user")
		response.WriteJSONError(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	response.WriteJSON(w, http.StatusOK, user)
}

// UpdateUserHandler applies a partial update to a user profile. The route is
// gated by the auth middleware; the authenticated identity is logged.
func (a *API) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	authedUserID, _ := middleware.GetUserIDFromContext(r.Context())
	log := a.logger.With().Str("uid", id).Str("auth_user", authedUserID).Logger()

	var updates map[string]any
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		log.Warn().Err(err).Msg("Failed to decode update body")
		response.WriteJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	updates["updatedAt"] = time.Now().UTC()

	if err := a.users.Update(r.Context(), id, updates); err != nil {
		log.Error().Err(err).Msg("Failed to update user")
		response.WriteJSONError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	log.Debug().Msg("User profile updated.")
	w.WriteHeader(http.StatusOK)
}

// DeleteUserHandler removes a user profile.
func (a *API) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	authedUserID, _ := middleware.GetUserIDFromContext(r.Context())

	if err := a.users.Delete(r.Context(), id); err != nil {
		a.logger.Error().Err(err).Str("uid", id).Msg("Failed to delete user")
		response.WriteJSONError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	a.logger.Info().Str("uid", id).Str("auth_user", authedUserID).Msg("User profile deleted.")
	w.WriteHeader(http.StatusNoContent)
}

// SearchUsersHandler performs a free-text scan over all user profiles.
func (a *API) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		response.WriteJSONError(w, http.StatusBadRequest, "missing 'query' parameter")
		return
	}

	results, err := a.users.Search(r.Context(), query)
	if err != nil {
		a.logger.Error().Err(err).Str("query", query).Msg("User search failed")
		response.WriteJSONError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}
	if results == nil {
		results = []directory.UserSummary{}
	}

	response.WriteJSON(w, http.StatusOK, results)
}
