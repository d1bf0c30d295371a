package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/battulga/naiznet/internal/models"
	"github.com/battulga/naiznet/internal/services"
)

type MessageHandler struct {
	messageService services.MessageServiceInterface
	userService    services.UserServiceInterface
}

func NewMessageHandler(messageService services.MessageServiceInterface, userService services.UserServiceInterface) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		userService:    userService,
	}
}

type SendMessageRequest struct {
	Body string `json:"body"`
}

type MessageResponse struct {
	Message *models.Message `json:"message"`
}

type ConversationResponse struct {
	Messages []models.Message `json:"messages"`
}

// Send delivers a direct message to the user named in the path.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	to := r.PathValue("username")
	if _, err := h.userService.GetByUsername(r.Context(), to); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("Error looking up user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := h.messageService.Send(r.Context(), user.Username, to, req.Body)
	if errors.Is(err, services.ErrMessageValidation) {
		writeError(w, http.StatusBadRequest, "Message body is required")
		return
	}
	if err != nil {
		log.Printf("Error sending message: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{Message: msg})
}

// Conversation returns the full exchange with the named user, oldest first.
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	other := r.PathValue("username")
	messages, err := h.messageService.Conversation(r.Context(), user.Username, other)
	if err != nil {
		log.Printf("Error loading conversation: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ConversationResponse{Messages: messages})
}
