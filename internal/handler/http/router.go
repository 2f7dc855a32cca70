package http

import (
	"log/slog"
	"os"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-redis/redis/v8"
)

type RouterOptions struct {
	AppName        string
	Version        string
	Env            string
	LogLevel       slog.Level
	AllowedOrigins []string

	// Redis enables Idempotency-Key handling when set.
	Redis          redis.Cmdable
	IdempotencyTTL time.Duration

	Metrics *metrics.Metrics
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	requestHandler LeaveRequestHandler,
	balanceHandler LeaveBalanceHandler,
	typeHandler LeaveTypeHandler,
	holidayHandler HolidayHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", opts.AppName),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyHeader},
		ExposedHeaders:   []string{middleware.ReplayedHeader},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource authenticates with a query token
		r.Get("/notifications/stream", notificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			if opts.Redis != nil {
				r.Use(middleware.Idempotency(opts.Redis, opts.IdempotencyTTL))
			}

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Post("/mark-read", notificationHandler.MarkAsRead)
				r.Post("/mark-all-read", notificationHandler.MarkAllAsRead)
				r.Delete("/{id}", notificationHandler.Delete)
				r.Post("/stream-token", notificationHandler.StreamToken)
			})

			r.Route("/leave-requests", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/", requestHandler.Create)
				r.With(middleware.RequirePermission(user.PermissionLeaveViewOwn)).Get("/my", requestHandler.ListMine)
				r.With(middleware.RequirePermission(user.PermissionLeaveViewAll)).Get("/", requestHandler.List)

				r.Route("/{id}", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionLeaveViewOwn)).Get("/", requestHandler.Get)
					r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Put("/", requestHandler.Update)
					r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Delete("/", requestHandler.Delete)
					r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/submit", requestHandler.Submit)
					r.With(middleware.RequirePermission(user.PermissionLeaveViewOwn)).Post("/cancel", requestHandler.Cancel)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionLeaveApproveManager))
						r.Post("/approve-manager", requestHandler.ApproveByManager)
						r.Post("/reject-manager", requestHandler.RejectByManager)
					})

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionLeaveApproveHR))
						r.Post("/approve-hr", requestHandler.ApproveByHR)
						r.Post("/reject-hr", requestHandler.RejectByHR)
					})
				})
			})

			r.Route("/leave-balances", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionLeaveViewOwn)).Get("/my", balanceHandler.GetMy)
				r.With(middleware.RequirePermission(user.PermissionLeaveViewOwn)).Get("/{id}", balanceHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveBalanceViewAll))
					r.Get("/", balanceHandler.List)
					r.Get("/employee/{employeeId}", balanceHandler.ListByEmployee)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveManageBalances))
					r.Post("/", balanceHandler.Create)
					r.Post("/{id}/adjust", balanceHandler.Adjust)
					r.Delete("/{id}", balanceHandler.Delete)
					r.Post("/employee/{employeeId}/carry-over", balanceHandler.CarryOver)
					r.Post("/employee/{employeeId}/initialize", balanceHandler.Initialize)
				})
			})

			r.Route("/leave-types", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveViewTypes))
					r.Get("/", typeHandler.List)
					r.Get("/code/{code}", typeHandler.GetByCode)
					r.Get("/{id}", typeHandler.Get)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveManageTypes))
					r.Post("/", typeHandler.Create)
					r.Put("/{id}", typeHandler.Update)
					r.Post("/{id}/toggle-active", typeHandler.ToggleActive)
					r.Delete("/{id}", typeHandler.Delete)
				})
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveViewTypes))
					r.Get("/", holidayHandler.List)
					r.Get("/upcoming", holidayHandler.ListUpcoming)
					r.Get("/range/{startDate}/{endDate}", holidayHandler.ListInRange)
					r.Get("/{id}", holidayHandler.Get)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveManageTypes))
					r.Post("/", holidayHandler.Create)
					r.Post("/clone-year", holidayHandler.CloneYear)
					r.Put("/{id}", holidayHandler.Update)
					r.Delete("/{id}", holidayHandler.Delete)
				})
			})
		})
	})
	return r
}
