package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/andrewpaige1/formcraft-api/generator"
	"github.com/andrewpaige1/formcraft-api/middleware"
	"github.com/andrewpaige1/formcraft-api/models"
	"github.com/andrewpaige1/formcraft-api/store"
	"github.com/andrewpaige1/formcraft-api/utils"
)

type formResponse struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	FormSchema models.FormSchema `json:"formSchema"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func toFormResponse(f *models.Form) formResponse {
	return formResponse{
		ID:         f.ID,
		Title:      f.Title,
		FormSchema: f.Schema.Data(),
		CreatedAt:  f.CreatedAt,
	}
}

// POST /api/form/generate
func (db *DBHandler) GenerateForm(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		utils.WriteError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	schema, err := db.Generator.GenerateFormSchema(r.Context(), req.Prompt)
	if err != nil {
		db.Log.Error("GenerateForm: generation failed", "user_id", user.ID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, generator.UserMessage(err))
		return
	}

	form, err := db.Forms.Create(r.Context(), user.ID, "", schema)
	if err != nil {
		db.Log.Error("GenerateForm: failed to store form", "user_id", user.ID, "error", err)
		if errors.Is(err, models.ErrInvalidSchema) {
			utils.WriteError(w, http.StatusInternalServerError, generator.UserMessage(err))
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Failed to generate form")
		return
	}

	db.Log.Info("Form generated", "form_id", form.ID, "user_id", user.ID)
	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Form generated successfully",
		"form":    toFormResponse(form),
	})
}

// GET /api/form/{id}
// Readable by anyone who has the id.
func (db *DBHandler) GetFormByID(w http.ResponseWriter, r *http.Request) {
	id := models.CanonicalID(r.PathValue("id"))
	if !models.IsValidID(id) {
		utils.WriteError(w, http.StatusBadRequest, "Invalid form ID format")
		return
	}

	form, err := db.Forms.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Form not found")
			return
		}
		db.Log.Error("GetFormByID: failed to load form", "form_id", id, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to retrieve form")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"form": toFormResponse(form)})
}

// GET /api/form
func (db *DBHandler) GetUserForms(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	forms, err := db.Forms.ListByOwner(r.Context(), user.ID)
	if err != nil {
		db.Log.Error("GetUserForms: failed to list forms", "user_id", user.ID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to retrieve forms")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"forms": forms})
}

// GET /api/form/test-gemini
func (db *DBHandler) TestGeminiConnection(w http.ResponseWriter, r *http.Request) {
	err := db.Generator.Ping(r.Context())
	if err != nil {
		db.Log.Warn("Gemini connection failed", "error", err)
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"connected": err == nil})
}
