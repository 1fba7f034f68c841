package cmd

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ademateus/field-service-portal/internal/agenda"
	"github.com/ademateus/field-service-portal/internal/config"
	"github.com/ademateus/field-service-portal/internal/database"
	"github.com/ademateus/field-service-portal/internal/handler"
	"github.com/ademateus/field-service-portal/internal/middleware"
	"github.com/ademateus/field-service-portal/internal/queue"
	"github.com/ademateus/field-service-portal/internal/repository"
	"github.com/ademateus/field-service-portal/internal/router"
	"github.com/ademateus/field-service-portal/internal/service"
	"github.com/ademateus/field-service-portal/internal/stream"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP + WebSocket API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	log := newLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	profiles := repository.NewProfileRepo(db)
	slots := repository.NewSlotRepo(db)
	sessions := repository.NewSessionRepo(db)
	bookings := repository.NewBookingRepo(db)
	exceptions := repository.NewExceptionRepo(db)
	calls := repository.NewServiceCallRepo(db)

	// Services.
	hub := stream.NewHub(log)
	store := service.NewStore(db)
	opts := agenda.Options{
		MaxPerDay:    cfg.MaxSessionsPerDay,
		DefaultSeats: uint32(cfg.DefaultSeats),
	}
	agendaSvc := service.NewAgendaService(store, opts, hub, log)
	bookingSvc := service.NewBookingService(store, hub, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	// Redis-backed rate limiting and response caching. Both degrade to
	// pass-through when Redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting and caching disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	h := router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, users, profiles, tokens),
		Profile: handler.NewProfileHandler(profiles),
		Slot:    handler.NewSlotHandler(slots, uint32(cfg.DefaultSeats)),
		Agenda:  handler.NewAgendaHandler(agendaSvc, exceptions),
		Session: handler.NewSessionHandler(sessions, bookings),
		Booking: handler.NewBookingHandler(bookingSvc, bookings, profiles),
		Call:    handler.NewCallHandler(calls, profiles),
		Events:  handler.NewEventsHandler(hub),
	}
	router.RegisterRoutes(e)
	router.RegisterAuth(e, h.Auth, cfg.JWTSecret)
	router.RegisterPortal(e, h, cfg.JWTSecret)

	if consumerEnabled() {
		go func() {
			if err := queue.StartBookingConsumer(log); err != nil {
				log.Error("booking consumer stopped", zap.Error(err))
			}
		}()
	}

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	return e.Start(addr)
}

func newLogger(env string) *zap.Logger {
	if env == "dev" || env == "development" {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		return l
	}
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l
}

func consumerEnabled() bool {
	v := strings.ToLower(os.Getenv("QUEUE_CONSUMER_ENABLED"))
	return v == "1" || v == "true" || v == "yes"
}
