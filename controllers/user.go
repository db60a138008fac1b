package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ecommerce-backend/models"
	"ecommerce-backend/services"
	"ecommerce-backend/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserController handles identity requests.
type UserController struct {
	Service *services.UserService
}

// NewUserController creates a new UserController.
func NewUserController(service *services.UserService) *UserController {
	return &UserController{Service: service}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Contact  int64  `json:"contact"`
	Age      int    `json:"age"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

type userResponse struct {
	Message string             `json:"message"`
	User    models.UserSummary `json:"user"`
}

// Signup handles user registration.
func (uc *UserController) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := uc.Service.Signup(ctx, services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Contact:  req.Contact,
		Age:      req.Age,
		Address:  req.Address,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{
		Message: "User created successfully",
		User:    user.Summary(),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string             `json:"message"`
	Token   string             `json:"token"`
	User    models.UserSummary `json:"user"`
}

// Login handles user authentication and issues the bearer token.
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := uc.Service.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "User login failed"})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "User logged in successfully",
		Token:   token,
		User:    user.Summary(),
	})
}

type resetPasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ResetPassword replaces the authenticated user's password.
func (uc *UserController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestActor(w, r)
	if !ok {
		return
	}

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := uc.Service.ResetPassword(ctx, userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		Message: "User password reset successfully",
		User:    user.Summary(),
	})
}

// Logout acknowledges the logout; tokens are stateless, so the client simply
// discards its copy.
func (uc *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "User logged out successfully"})
}

// UserDetails retrieves a single user by id (admin only).
func (uc *UserController) UserDetails(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := uc.Service.GetByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		Message: "User found successfully",
		User:    user.Summary(),
	})
}
