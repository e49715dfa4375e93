package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sort"
	"time"

	"github.com/andrewpaige1/formcraft-api/middleware"
	"github.com/andrewpaige1/formcraft-api/models"
	"github.com/andrewpaige1/formcraft-api/store"
	"github.com/andrewpaige1/formcraft-api/upload"
	"github.com/andrewpaige1/formcraft-api/utils"
)

// responsesField is the multipart part that carries the answers as JSON.
const responsesField = "responses"

type submissionResponse struct {
	ID        string         `json:"id"`
	Data      map[string]any `json:"data"`
	Files     []string       `json:"files"`
	CreatedAt time.Time      `json:"createdAt"`
}

// POST /api/submission/{formId}
func (db *DBHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	formID := models.CanonicalID(r.PathValue("formId"))
	if !models.IsValidID(formID) {
		utils.WriteError(w, http.StatusBadRequest, "Invalid form ID format")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, db.Upload.MaxUploadBytes)
	data, files, err := db.parseSubmission(r)
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteError(w, http.StatusBadRequest, "Submission is too large")
			return
		}
		utils.WriteError(w, http.StatusBadRequest, "Invalid submission body")
		return
	}

	if err := store.ValidateResponses(data); err != nil {
		if errors.Is(err, store.ErrEmptyResponses) {
			utils.WriteError(w, http.StatusBadRequest, "Form responses are required")
			return
		}
		utils.WriteError(w, http.StatusBadRequest, "Form responses must be plain values")
		return
	}

	exists, err := db.Forms.Exists(r.Context(), formID)
	if err != nil {
		db.Log.Error("SubmitForm: failed to check form", "form_id", formID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to submit form")
		return
	}
	if !exists {
		utils.WriteError(w, http.StatusNotFound, "Form not found")
		return
	}

	uploaded, err := upload.UploadAll(r.Context(), db.Uploads, files, db.Upload.Folder, db.Upload.Concurrency, db.Log)
	if err != nil {
		db.Log.Error("SubmitForm: file upload failed", "form_id", formID, "files", len(files), "error", err)
		if errors.Is(err, upload.ErrNotConfigured) {
			utils.WriteError(w, http.StatusInternalServerError, "File uploads are not configured on this server")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Failed to upload files")
		return
	}

	sub, err := db.Submissions.Create(r.Context(), formID, data, upload.URLs(uploaded))
	if err != nil {
		upload.Cleanup(r.Context(), db.Uploads, uploaded, db.Log)
		if errors.Is(err, store.ErrFormNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Form not found")
			return
		}
		db.Log.Error("SubmitForm: failed to store submission", "form_id", formID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to submit form")
		return
	}

	db.Log.Info("Form submitted", "form_id", formID, "submission_id", sub.ID, "files", len(uploaded))
	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Form submitted successfully",
		"submission": map[string]any{
			"id":        sub.ID,
			"formId":    sub.FormID,
			"createdAt": sub.CreatedAt,
		},
	})
}

// GET /api/submission/{formId}
// Only the form's owner may list; everyone else gets a 404.
func (db *DBHandler) GetFormSubmissions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	formID := models.CanonicalID(r.PathValue("formId"))
	if !models.IsValidID(formID) {
		utils.WriteError(w, http.StatusNotFound, "Form not found")
		return
	}

	subs, err := db.Submissions.ListByForm(r.Context(), formID, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Form not found")
			return
		}
		db.Log.Error("GetFormSubmissions: failed to list", "form_id", formID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to retrieve submissions")
		return
	}

	out := make([]submissionResponse, 0, len(subs))
	for _, s := range subs {
		files := []string(s.Files)
		if files == nil {
			files = []string{}
		}
		out = append(out, submissionResponse{
			ID:        s.ID,
			Data:      s.Data,
			Files:     files,
			CreatedAt: s.CreatedAt,
		})
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"submissions": out})
}

func (db *DBHandler) parseSubmission(r *http.Request) (map[string]any, []upload.File, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		return parseMultipartSubmission(r, db.Upload.MaxUploadBytes)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, nil, err
		}
		data := map[string]any{}
		if err := mergeValues(data, r.PostForm); err != nil {
			return nil, nil, err
		}
		return data, nil, nil
	default:
		data, err := parseJSONSubmission(r.Body)
		return data, nil, err
	}
}

func parseJSONSubmission(body io.Reader) (map[string]any, error) {
	var raw map[string]any
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	if nested, ok := raw[responsesField].(map[string]any); ok && len(raw) == 1 {
		return nested, nil
	}
	return raw, nil
}

func parseMultipartSubmission(r *http.Request, maxMemory int64) (map[string]any, []upload.File, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, nil, err
	}
	form := r.MultipartForm

	data := map[string]any{}
	if err := mergeValues(data, form.Value); err != nil {
		return nil, nil, err
	}

	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var files []upload.File
	for _, field := range fields {
		for _, fh := range form.File[field] {
			f, err := fh.Open()
			if err != nil {
				return nil, nil, fmt.Errorf("open %s: %w", fh.Filename, err)
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, nil, fmt.Errorf("read %s: %w", fh.Filename, err)
			}
			files = append(files, upload.File{
				Field:       field,
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        content,
			})
		}
	}
	return data, files, nil
}

// mergeValues copies plain form values into data. The responses value is a
// JSON object whose keys are merged in last, so they win over plain values.
func mergeValues(data map[string]any, values map[string][]string) error {
	for k, vs := range values {
		if k == responsesField || len(vs) == 0 {
			continue
		}
		data[k] = vs[0]
	}

	vs := values[responsesField]
	if len(vs) == 0 {
		return nil
	}
	var responses map[string]any
	if err := json.Unmarshal([]byte(vs[0]), &responses); err != nil {
		return fmt.Errorf("decode %s: %w", responsesField, err)
	}
	for k, v := range responses {
		data[k] = v
	}
	return nil
}
