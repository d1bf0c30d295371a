package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/battulga/naiznet/internal/models"
	"github.com/battulga/naiznet/internal/services"
)

type GroupHandler struct {
	groupService     services.GroupServiceInterface
	groupPostService services.GroupPostServiceInterface
}

func NewGroupHandler(groupService services.GroupServiceInterface, groupPostService services.GroupPostServiceInterface) *GroupHandler {
	return &GroupHandler{
		groupService:     groupService,
		groupPostService: groupPostService,
	}
}

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type GroupResponse struct {
	Group *models.Group `json:"group"`
}

type GroupListResponse struct {
	Groups []models.Group `json:"groups"`
}

type MyGroupsResponse struct {
	Groups []models.GroupSummary `json:"groups"`
}

// GroupDetailResponse carries the group plus the caller's standing in it.
type GroupDetailResponse struct {
	Group     *models.GroupDetail `json:"group"`
	IsMember  bool                `json:"is_member"`
	IsAdmin   bool                `json:"is_admin"`
	IsPending bool                `json:"is_pending"`
}

type GroupPostsResponse struct {
	Posts []models.GroupPost `json:"posts"`
}

type CreateGroupPostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type ShareToGroupRequest struct {
	PostID string `json:"post_id"`
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	group, err := h.groupService.Create(r.Context(), req.Name, req.Description, user.Username)
	if errors.Is(err, services.ErrGroupValidation) {
		writeError(w, http.StatusBadRequest, "Group name is required")
		return
	}
	if err != nil {
		log.Printf("Error creating group: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, GroupResponse{Group: group})
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	groups, err := h.groupService.List(r.Context(), limit)
	if err != nil {
		log.Printf("Error listing groups: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, GroupListResponse{Groups: groups})
}

// Mine lists groups the caller belongs to.
func (h *GroupHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	groups, err := h.groupService.ListForUser(r.Context(), user.Username)
	if err != nil {
		log.Printf("Error listing user groups: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MyGroupsResponse{Groups: groups})
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	groupID, ok := h.parseGroupID(w, r)
	if !ok {
		return
	}

	detail, err := h.groupService.GetByID(r.Context(), groupID)
	if errors.Is(err, services.ErrGroupNotFound) {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	if err != nil {
		log.Printf("Error getting group: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := GroupDetailResponse{Group: detail}
	if resp.IsMember, err = h.groupService.IsMember(r.Context(), groupID, user.Username); err != nil {
		log.Printf("Error checking membership: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if resp.IsAdmin, err = h.groupService.IsAdmin(r.Context(), groupID, user.Username); err != nil {
		log.Printf("Error checking admin: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if resp.IsPending, err = h.groupService.IsPending(r.Context(), groupID, user.Username); err != nil {
		log.Printf("Error checking join request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	groupID, ok := h.parseGroupID(w, r)
	if !ok {
		return
	}

	result, err := h.groupService.Join(r.Context(), groupID, user.Username)
	if errors.Is(err, services.ErrGroupNotFound) {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	if err != nil {
		log.Printf("Error joining group: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if result.Pending {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Join request sent"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Already a member"})
}

func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	groupID, ok := h.parseGroupID(w, r)
	if !ok {
		return
	}

	err := h.groupService.Leave(r.Context(), groupID, user.Username)
	if errors.Is(err, services.ErrGroupNotFound) {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	if err != nil {
		log.Printf("Error leaving group: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Left group"})
}

func (h *GroupHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.groupService.Approve, "Join request approved")
}

func (h *GroupHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.groupService.Reject, "Join request rejected")
}

func (h *GroupHandler) Kick(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.groupService.Kick, "Member removed")
}

// moderate runs an admin action against the target named in the path.
func (h *GroupHandler) moderate(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, groupID uuid.UUID, admin, target string) error, message string) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	groupID, ok := h.parseGroupID(w, r)
	if !ok {
		return
	}
	target := r.PathValue("username")

	err := action(r.Context(), groupID, user.Username, target)
	switch {
	case errors.Is(err, services.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, "Group not found")
	case errors.Is(err, services.ErrNotGroupAdmin):
		writeError(w, http.StatusForbidden, "Only group admins can do this")
	case errors.Is(err, services.ErrCannotKickAdmin):
		writeError(w, http.StatusForbidden, "Only the group creator can remove an admin")
	case err != nil:
		log.Printf("Error moderating group: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": message})
	}
}

// Posts lists the group's posts, newest first.
func (h *GroupHandler) Posts(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	groupID, ok := h.parseGroupID(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	posts, err := h.groupPostService.ListByGroup(r.Context(), groupID, limit)
	if err != nil {
		log.Printf("Error listing group posts: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, GroupPostsResponse{Posts: posts})
}

func (h *GroupHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	groupID, ok := h.parseGroupID(w, r)
	if !ok {
		return
	}

	var req CreateGroupPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.groupPostService.Create(r.Context(), groupID, req.Title, req.Body, user.Username)
	switch {
	case errors.Is(err, services.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, "Group not found")
	case errors.Is(err, services.ErrNotGroupMember):
		writeError(w, http.StatusForbidden, "Only group members can post here")
	case errors.Is(err, services.ErrPostValidation):
		writeError(w, http.StatusBadRequest, "Title and body are required")
	case err != nil:
		log.Printf("Error creating group post: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusCreated, map[string]any{"post": post})
	}
}

// SharePost copies an existing post into the group.
func (h *GroupHandler) SharePost(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	groupID, ok := h.parseGroupID(w, r)
	if !ok {
		return
	}

	var req ShareToGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	postID, err := uuid.Parse(req.PostID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	result, err := h.groupPostService.Share(r.Context(), groupID, postID, user.Username)
	switch {
	case errors.Is(err, services.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, "Group not found")
	case errors.Is(err, services.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
	case err != nil:
		log.Printf("Error sharing into group: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	case result.Already:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Post already shared to this group"})
	default:
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Post shared to group", "id": result.ID.String()})
	}
}

func (h *GroupHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	postID, err := uuid.Parse(r.PathValue("postID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	err = h.groupPostService.Like(r.Context(), postID, user.Username)
	if errors.Is(err, services.ErrGroupPostNotFound) {
		writeError(w, http.StatusNotFound, "Group post not found")
		return
	}
	if err != nil {
		log.Printf("Error liking group post: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Post liked"})
}

func (h *GroupHandler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	postID, err := uuid.Parse(r.PathValue("postID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	if err := h.groupPostService.Unlike(r.Context(), postID, user.Username); err != nil {
		log.Printf("Error unliking group post: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Post unliked"})
}

func (h *GroupHandler) parseGroupID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	groupID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid group ID")
		return uuid.Nil, false
	}
	return groupID, true
}
