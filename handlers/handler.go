package handlers

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/andrewpaige1/formcraft-api/auth"
	"github.com/andrewpaige1/formcraft-api/logger"
	"github.com/andrewpaige1/formcraft-api/middleware"
	"github.com/andrewpaige1/formcraft-api/models"
	"github.com/andrewpaige1/formcraft-api/store"
	"github.com/andrewpaige1/formcraft-api/upload"
	"github.com/andrewpaige1/formcraft-api/utils"
)

// SchemaGenerator turns a prompt into a form definition.
type SchemaGenerator interface {
	GenerateFormSchema(ctx context.Context, prompt string) (models.FormSchema, error)
	Ping(ctx context.Context) error
}

type UploadOptions struct {
	Folder         string
	Concurrency    int
	MaxUploadBytes int64
}

type DBHandler struct {
	*gorm.DB
	Forms       *store.FormStore
	Submissions *store.SubmissionStore
	Generator   SchemaGenerator
	Uploads     upload.Relay
	Guard       *auth.Guard
	Log         *logger.Logger
	Upload      UploadOptions
}

func NewDBHandler(db *gorm.DB, gen SchemaGenerator, relay upload.Relay, guard *auth.Guard, log *logger.Logger, opts UploadOptions) *DBHandler {
	forms := store.NewFormStore(db)
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	return &DBHandler{
		DB:          db,
		Forms:       forms,
		Submissions: store.NewSubmissionStore(db, forms),
		Generator:   gen,
		Uploads:     relay,
		Guard:       guard,
		Log:         log,
		Upload:      opts,
	}
}

// Routes registers every endpoint. Protected routes need a bearer token.
func (db *DBHandler) Routes() *http.ServeMux {
	ensureValidToken := middleware.EnsureValidToken(db.Guard, db.Log)
	protect := func(h http.HandlerFunc) http.Handler {
		return ensureValidToken(middleware.SyncUserMiddleware(db.DB, db.Log, h))
	}

	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /api/auth/signup", db.Signup)
	mux.HandleFunc("POST /api/auth/login", db.Login)
	mux.Handle("GET /api/auth/profile", protect(db.GetProfile))

	// Form
	mux.Handle("POST /api/form/generate", protect(db.GenerateForm))
	mux.HandleFunc("GET /api/form/test-gemini", db.TestGeminiConnection)
	mux.HandleFunc("GET /api/form/{id}", db.GetFormByID)
	mux.Handle("GET /api/form", protect(db.GetUserForms))

	// Submission
	mux.HandleFunc("POST /api/submission/{formId}", db.SubmitForm)
	mux.Handle("GET /api/submission/{formId}", protect(db.GetFormSubmissions))

	mux.HandleFunc("GET /api/health", db.Health)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusNotFound, "Route not found")
	})
	return mux
}

func (db *DBHandler) Health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := db.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		db.Log.Error("Health check failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "Database unavailable")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
