package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/battulga/naiznet/internal/models"
	"github.com/battulga/naiznet/internal/services"
)

type FriendHandler struct {
	friendshipService services.FriendshipServiceInterface
	userService       services.UserServiceInterface
}

func NewFriendHandler(friendshipService services.FriendshipServiceInterface, userService services.UserServiceInterface) *FriendHandler {
	return &FriendHandler{
		friendshipService: friendshipService,
		userService:       userService,
	}
}

type FriendRequestBody struct {
	Username string `json:"username"`
}

type FriendListResponse struct {
	Friends []string `json:"friends"`
}

type FriendRequestsResponse struct {
	Requests []string `json:"requests"`
}

type RelationshipResponse struct {
	Status models.RelationshipStatus `json:"status"`
}

// SendRequest sends a friend request to the named user. A crossed
// request from the other side is accepted instead.
func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req FriendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "Username is required")
		return
	}

	if _, err := h.userService.GetByUsername(r.Context(), req.Username); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("Error looking up user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	result, err := h.friendshipService.Request(r.Context(), user.Username, req.Username)
	if err != nil {
		log.Printf("Error sending friend request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	switch {
	case result.Accepted:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request accepted"})
	case result.Created:
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Friend request sent"})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request already exists"})
	}
}

// Accept accepts a pending request from the named user.
func (h *FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	from := r.PathValue("username")
	err := h.friendshipService.Accept(r.Context(), user.Username, from)
	if errors.Is(err, services.ErrNoPendingRequest) {
		writeError(w, http.StatusNotFound, "No pending friend request from this user")
		return
	}
	if err != nil {
		log.Printf("Error accepting friend request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request accepted"})
}

// Decline declines a pending request from the named user.
func (h *FriendHandler) Decline(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	from := r.PathValue("username")
	err := h.friendshipService.Decline(r.Context(), user.Username, from)
	if errors.Is(err, services.ErrNoPendingRequest) {
		writeError(w, http.StatusNotFound, "No pending friend request from this user")
		return
	}
	if err != nil {
		log.Printf("Error declining friend request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request declined"})
}

// Unfriend removes an accepted friendship with the named user.
func (h *FriendHandler) Unfriend(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	other := r.PathValue("username")
	err := h.friendshipService.Unfriend(r.Context(), user.Username, other)
	if errors.Is(err, services.ErrFriendshipNotFound) {
		writeError(w, http.StatusNotFound, "You are not friends with this user")
		return
	}
	if err != nil {
		log.Printf("Error removing friend: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend removed"})
}

// List returns the caller's accepted friends.
func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	friends, err := h.friendshipService.FriendsOf(r.Context(), user.Username)
	if err != nil {
		log.Printf("Error listing friends: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, FriendListResponse{Friends: friends})
}

// Incoming returns usernames with a pending request to the caller.
func (h *FriendHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requests, err := h.friendshipService.PendingIncoming(r.Context(), user.Username)
	if err != nil {
		log.Printf("Error listing friend requests: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, FriendRequestsResponse{Requests: requests})
}

// Status reports the relationship between the caller and the named user.
func (h *FriendHandler) Status(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	other := r.PathValue("username")
	status, err := h.friendshipService.StatusBetween(r.Context(), user.Username, other)
	if err != nil {
		log.Printf("Error getting relationship status: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, RelationshipResponse{Status: status})
}
