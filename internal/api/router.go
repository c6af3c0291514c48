package api

import (
	"net/http"
	"time"

	"classtrack/internal/api/handler"
	"classtrack/internal/api/middleware"
	"classtrack/internal/app/service"
	"classtrack/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authService *service.AuthService,
	assignmentService *service.AssignmentService,
	responseService *service.ResponseService,
	statsService *service.StatsService,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(middleware.Metrics)
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", authHandler.RegisterRoutes)

		teacherHandler := handler.NewTeacherHandler(assignmentService, statsService)
		v1.Route("/teacher", func(t chi.Router) {
			t.Use(middleware.Authenticator)
			t.Use(middleware.TeacherOnly)
			teacherHandler.RegisterRoutes(t)
		})

		studentHandler := handler.NewStudentHandler(responseService, statsService)
		v1.Route("/student", func(s chi.Router) {
			s.Use(middleware.Authenticator)
			s.Use(middleware.StudentOnly)
			studentHandler.RegisterRoutes(s)
		})
	})

	return r
}
