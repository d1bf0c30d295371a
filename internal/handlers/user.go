package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/battulga/naiznet/internal/models"
	"github.com/battulga/naiznet/internal/services"
)

type UserHandler struct {
	userService services.UserServiceInterface
}

func NewUserHandler(userService services.UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

type UserSearchResponse struct {
	Users []models.UserSearchResult `json:"users"`
}

// Search finds users by partial username.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		writeJSON(w, http.StatusOK, UserSearchResponse{Users: []models.UserSearchResult{}})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	users, err := h.userService.Search(r.Context(), query, limit)
	if err != nil {
		log.Printf("Error searching users: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, UserSearchResponse{Users: users})
}
