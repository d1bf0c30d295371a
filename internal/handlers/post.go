package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/battulga/naiznet/internal/models"
	"github.com/battulga/naiznet/internal/services"
)

type PostHandler struct {
	postService services.PostServiceInterface
	userService services.UserServiceInterface
}

func NewPostHandler(postService services.PostServiceInterface, userService services.UserServiceInterface) *PostHandler {
	return &PostHandler{
		postService: postService,
		userService: userService,
	}
}

type CreatePostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type UpdatePostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type PostResponse struct {
	Post *models.Post `json:"post"`
}

type PostListResponse struct {
	Posts []models.Post `json:"posts"`
}

// ProfileResponse is a user's wall: authored posts interleaved with
// posts shared to them, plus the authored count.
type ProfileResponse struct {
	Posts     []models.Post `json:"posts"`
	PostCount int           `json:"post_count"`
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), models.CreatePostParams{
		Title:  req.Title,
		Body:   req.Body,
		Author: user.Username,
	})
	if errors.Is(err, services.ErrPostValidation) {
		writeError(w, http.StatusBadRequest, "Title and body are required")
		return
	}
	if err != nil {
		log.Printf("Error creating post: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, PostResponse{Post: post})
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	postID, ok := h.parsePostID(w, r)
	if !ok {
		return
	}

	post, err := h.postService.GetByID(r.Context(), postID)
	if errors.Is(err, services.ErrPostNotFound) {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		log.Printf("Error getting post: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, PostResponse{Post: post})
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	postID, ok := h.parsePostID(w, r)
	if !ok {
		return
	}

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.postService.Update(r.Context(), postID, user.Username, models.UpdatePostParams{
		Title: req.Title,
		Body:  req.Body,
	})
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, services.ErrNotPostAuthor):
		writeError(w, http.StatusForbidden, "Only the author can edit this post")
	case errors.Is(err, services.ErrPostValidation):
		writeError(w, http.StatusBadRequest, "Title and body are required")
	case err != nil:
		log.Printf("Error updating post: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Post updated"})
	}
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	postID, ok := h.parsePostID(w, r)
	if !ok {
		return
	}

	err := h.postService.Delete(r.Context(), postID, user.Username)
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, services.ErrNotPostAuthor):
		writeError(w, http.StatusForbidden, "Only the author can delete this post")
	case err != nil:
		log.Printf("Error deleting post: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
	}
}

// Share reposts to the caller's own wall.
func (h *PostHandler) Share(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	postID, ok := h.parsePostID(w, r)
	if !ok {
		return
	}

	result, err := h.postService.Share(r.Context(), postID, user.Username)
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, services.ErrOwnPost):
		writeError(w, http.StatusBadRequest, "Cannot share your own post")
	case err != nil:
		log.Printf("Error sharing post: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	case result.Already:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Post already shared"})
	default:
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Post shared", "id": result.ID.String()})
	}
}

// ShareToFriend reposts onto the named friend's wall.
func (h *PostHandler) ShareToFriend(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	postID, ok := h.parsePostID(w, r)
	if !ok {
		return
	}
	friend := r.PathValue("username")

	if _, err := h.userService.GetByUsername(r.Context(), friend); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("Error looking up user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	result, err := h.postService.ShareToFriend(r.Context(), postID, user.Username, friend)
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, services.ErrSelfShare):
		writeError(w, http.StatusBadRequest, "Cannot share a post to yourself")
	case errors.Is(err, services.ErrFriendIsAuthor):
		writeError(w, http.StatusBadRequest, "Cannot share a post back to its author")
	case err != nil:
		log.Printf("Error sharing post to friend: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	case result.Already:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Post already shared to this user"})
	default:
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Post shared", "id": result.ID.String()})
	}
}

// Search finds posts by author name.
func (h *PostHandler) Search(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	term := r.URL.Query().Get("term")
	if strings.TrimSpace(term) == "" {
		writeJSON(w, http.StatusOK, PostListResponse{Posts: []models.Post{}})
		return
	}

	posts, err := h.postService.FindByAuthor(r.Context(), term)
	if err != nil {
		log.Printf("Error searching posts: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, PostListResponse{Posts: posts})
}

// Feed returns recent posts by other users.
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	posts, err := h.postService.Feed(r.Context(), user.Username, limit)
	if err != nil {
		log.Printf("Error loading feed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, PostListResponse{Posts: posts})
}

// Profile returns the named user's wall.
func (h *PostHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	username := r.PathValue("username")
	if _, err := h.userService.GetByUsername(r.Context(), username); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("Error looking up user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	posts, err := h.postService.ProfileFeed(r.Context(), username)
	if err != nil {
		log.Printf("Error loading profile: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	count, err := h.postService.CountByAuthor(r.Context(), username)
	if err != nil {
		log.Printf("Error counting posts: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{Posts: posts, PostCount: count})
}

func (h *PostHandler) parsePostID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post ID")
		return uuid.Nil, false
	}
	return postID, true
}
