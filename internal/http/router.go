package http

import (
	"net/http"

	"fruitpos/internal/auth"
	"fruitpos/internal/config"
	"fruitpos/internal/http/handler"
	mw "fruitpos/internal/http/middleware"
	"fruitpos/internal/invoice"
	"fruitpos/internal/uploads"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, invSvc *invoice.Service, upRepo *uploads.Repo, worker *uploads.Worker) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{}
	r.With(auth.RequireAuth(jwtSvc)).Get("/me", me.Me)

	invH := &handler.InvoiceHandler{Svc: invSvc}
	r.Route("/invoices", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/", invH.Create)
		r.Get("/{code}", invH.Get)
	})

	upH := &handler.UploadsHandler{Repo: upRepo, Worker: worker}
	r.Route("/uploads", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/jobs", upH.List)
		r.Get("/stats", upH.Stats)

		// Operator-only recovery/sync actions.
		r.With(auth.RequireRole(auth.RoleAdmin)).Post("/jobs/{id}/retry", upH.Retry)
		r.With(auth.RequireRole(auth.RoleAdmin)).Post("/drain", upH.Drain)
	})

	// Stored images are served straight off the upload directory.
	fs := http.StripPrefix(cfg.UploadBaseURL+"/", http.FileServer(http.Dir(cfg.UploadDir)))
	r.Handle(cfg.UploadBaseURL+"/*", fs)

	return r
}
