package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andrewpaige1/formcraft-api/auth"
	"github.com/andrewpaige1/formcraft-api/middleware"
	"github.com/andrewpaige1/formcraft-api/models"
	"github.com/andrewpaige1/formcraft-api/utils"
)

var validate = validator.New()

type credentials struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"max=100"`
}

type authResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

func decodeCredentials(r *http.Request) (credentials, error) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	return req, nil
}

// POST /api/auth/signup
func (db *DBHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "A valid email and a password of at least 8 characters are required")
		return
	}

	user, err := db.registerUser(r.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			utils.WriteError(w, http.StatusBadRequest, "User already exists")
			return
		}
		db.Log.Error("Signup: failed to create user", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := db.Guard.CreateToken(user.ID, user.Email)
	if err != nil {
		db.Log.Error("Signup: failed to generate token", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	db.Log.Info("User created", "user_id", user.ID)
	utils.WriteJSON(w, http.StatusCreated, authResponse{Message: "User created successfully", Token: token, User: user})
}

// registerUser creates the account, or fails with auth.ErrEmailTaken when the
// email is already registered.
func (db *DBHandler) registerUser(ctx context.Context, req credentials) (*models.User, error) {
	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return nil, auth.ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, auth.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// POST /api/auth/login
func (db *DBHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	var user models.User
	if err := db.WithContext(r.Context()).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			db.Log.Error("Login: failed to look up user", "error", err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to log in")
			return
		}
		utils.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := db.Guard.CreateToken(user.ID, user.Email)
	if err != nil {
		db.Log.Error("Login: failed to generate token", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	utils.WriteJSON(w, http.StatusOK, authResponse{Message: "Login successful", Token: token, User: &user})
}

// GET /api/auth/profile
func (db *DBHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}
