package services

import (
	"context"
	"errors"
	"strings"

	"ecommerce-backend/models"
	"ecommerce-backend/storage"
	"ecommerce-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UserService implements signup, login, password reset, and user lookup.
type UserService struct {
	Users storage.UserStore
}

// NewUserService creates a UserService on the given store.
func NewUserService(users storage.UserStore) *UserService {
	return &UserService{Users: users}
}

// SignupInput carries the signup request fields.
type SignupInput struct {
	Name     string
	Email    string
	Contact  int64
	Age      int
	Address  string
	Password string
}

func validateSignup(in SignupInput) []FieldError {
	var fields []FieldError
	if len(in.Name) < 3 || len(in.Name) > 30 {
		fields = append(fields, FieldError{Field: "name", Message: "Name must be between 3 and 30 characters"})
	}
	if !validEmail(in.Email) {
		fields = append(fields, FieldError{Field: "email", Message: "Invalid email format"})
	}
	if in.Contact <= 0 {
		fields = append(fields, FieldError{Field: "contact", Message: "Contact number is required"})
	}
	if in.Age < 18 || in.Age > 100 {
		fields = append(fields, FieldError{Field: "age", Message: "Age must be between 18 and 100"})
	}
	if in.Address == "" {
		fields = append(fields, FieldError{Field: "address", Message: "Address is required"})
	}
	if !strongPassword(in.Password) {
		fields = append(fields, FieldError{
			Field:   "password",
			Message: "Password must be at least 8 characters long and include uppercase, lowercase, number, and special character",
		})
	}
	return fields
}

// Signup registers a new user with the default role. The email is checked
// for uniqueness before the insert; the unique indexes on name and contact
// backstop the remaining constraints.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Name = utils.SanitizeText(in.Name)
	in.Address = utils.SanitizeText(in.Address)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Age == 0 {
		in.Age = 18
	}

	if fields := validateSignup(in); len(fields) > 0 {
		return nil, invalid(fields)
	}

	_, err := s.Users.FindByEmail(ctx, in.Email)
	if err == nil {
		return nil, E(KindConflict, "User already exists")
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, internal("User creation failed", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internal("User creation failed", err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Contact:  in.Contact,
		Age:      in.Age,
		Address:  in.Address,
		Password: string(hash),
		Role:     models.RoleUser,
	}
	if _, err := s.Users.Insert(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, E(KindConflict, "User already exists")
		}
		return nil, internal("User creation failed", err)
	}
	return user, nil
}

// Login verifies credentials by email. The failure response is identical
// whether the email is unknown or the password is wrong, so the endpoint
// leaks nothing about which emails are registered.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, E(KindValidation, "All required fields must be provided")
	}

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, E(KindUnauthorized, "Invalid email or password")
		}
		return nil, internal("User login failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, E(KindUnauthorized, "Invalid email or password")
	}
	return user, nil
}

// ResetPassword verifies the current password and replaces it with a new one
// meeting the complexity rules.
func (s *UserService) ResetPassword(ctx context.Context, userID primitive.ObjectID, currentPassword, newPassword string) (*models.User, error) {
	if currentPassword == "" || newPassword == "" {
		return nil, E(KindValidation, "All required fields must be provided")
	}

	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, E(KindNotFound, "User not found")
		}
		return nil, internal("User reset password failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return nil, E(KindUnauthorized, "Current password is incorrect")
	}

	if !strongPassword(newPassword) {
		return nil, invalid([]FieldError{{
			Field:   "newPassword",
			Message: "Password must be at least 8 characters long and include uppercase, lowercase, number, and special character",
		}})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, internal("User reset password failed", err)
	}
	if err := s.Users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return nil, internal("User reset password failed", err)
	}
	user.Password = string(hash)
	return user, nil
}

// GetByID returns a single user.
func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, E(KindNotFound, "User not found")
		}
		return nil, internal("Failed to fetch user", err)
	}
	return user, nil
}
