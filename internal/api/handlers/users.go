package handlers

import (
	"fmt"
	"net/http"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/service"
)

// UserHandler handles login requests.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Login handles POST requests to log a user in, creating the user on first login.
//
// Endpoint: POST /login
// Request Body: LoginRequest (username)
// Response: 200 OK with MessageResponse
// Error: 400 Bad Request if the body or the username is invalid
// Error: 500 Internal Server Error if the user cannot be stored
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.LoginRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if _, err := h.userService.Login(r.Context(), req.Username); err != nil {
		respondServiceError(w, err, "failed to log in")
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Login successful for %s", req.Username)})
}
