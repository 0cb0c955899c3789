package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/studytrack/internal/metrics"
	"github.com/hitoshi/studytrack/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Authenticator     middleware.Authenticator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 運用エンドポイント。nilの場合は該当機能を無効にする。
	HealthChecker  HealthChecker
	Metrics        metrics.MetricsCollector
	MetricsHandler http.Handler

	Errors ErrorConfig

	AuthService     AuthServiceInterface
	UserService     UserServiceInterface
	AcademicService AcademicServiceInterface
	StudyLogService StudyLogServiceInterface
	RecordsService  RecordsServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Logging → Metrics → Recovery → SecurityHeaders → CORS
//	  /auth/*:   RateLimit(Auth, IP単位)
//	  その他API: Auth(Bearer) → RateLimit(General, ユーザー単位)
//
// /health と /metrics は認証不要。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(metrics.Middleware(deps.Metrics))
	}
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	authHandler := NewAuthHandler(deps.AuthService, deps.Errors)
	userHandler := NewUserHandler(deps.UserService, deps.Errors)
	academicHandler := NewAcademicHandler(deps.AcademicService, deps.Errors)
	studyLogHandler := NewStudyLogHandler(deps.StudyLogService, deps.Errors)
	recordsHandler := NewRecordsHandler(deps.RecordsService, deps.Errors)

	// --- 認証不要のルート ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Use(deps.RateLimiter.AuthMiddleware())
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Authenticator))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", userHandler.Profile)
			r.Put("/", userHandler.UpdateProfile)
			r.Delete("/", userHandler.Withdraw)
		})

		r.Route("/semesters", func(r chi.Router) {
			r.Get("/", academicHandler.ListSemesters)
			r.Post("/", academicHandler.CreateSemester)
			r.Put("/{id}", academicHandler.UpdateSemester)
			r.Delete("/{id}", academicHandler.DeleteSemester)
		})

		// /mine は静的セグメントのため {id} より優先して一致する
		r.Route("/classes", func(r chi.Router) {
			r.Post("/", academicHandler.CreateClass)
			r.Get("/mine", academicHandler.ListMyClasses)
			r.Get("/{id}", academicHandler.ListClasses)
			r.Put("/{id}", academicHandler.UpdateClass)
			r.Delete("/{id}", academicHandler.DeleteClass)
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", academicHandler.CreateAssignment)
			r.Get("/mine", academicHandler.ListMyAssignments)
			r.Get("/{id}", academicHandler.ListAssignments)
			r.Put("/{id}", academicHandler.UpdateAssignment)
			r.Delete("/{id}", academicHandler.DeleteAssignment)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", studyLogHandler.CreateSession)
			r.Get("/mine", studyLogHandler.ListSessions)
			r.Put("/{id}", studyLogHandler.UpdateSession)
			r.Delete("/{id}", studyLogHandler.DeleteSession)
		})

		r.Route("/study", func(r chi.Router) {
			r.Post("/create", studyLogHandler.CreateStudy)
			r.Get("/{id}", studyLogHandler.ListStudies)
			r.Put("/{id}", studyLogHandler.UpdateStudy)
			r.Delete("/{id}", studyLogHandler.DeleteStudy)
		})

		r.Route("/distractions", func(r chi.Router) {
			r.Post("/create", studyLogHandler.CreateDistraction)
			r.Get("/types/mine", studyLogHandler.ListMyDistractionTypes)
			r.Get("/{id}", studyLogHandler.ListDistractions)
			r.Put("/{id}", studyLogHandler.UpdateDistraction)
			r.Delete("/{id}", studyLogHandler.DeleteDistraction)
		})

		r.Route("/work", func(r chi.Router) {
			r.Post("/create", studyLogHandler.CreateWork)
			r.Get("/{id}", studyLogHandler.ListWorks)
			r.Put("/{id}", studyLogHandler.UpdateWork)
			r.Delete("/{id}", studyLogHandler.DeleteWork)
		})

		r.Post("/records/filtered", recordsHandler.Filtered)
	})

	return r
}
