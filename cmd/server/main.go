package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/logger"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/router"
	"github.com/iliyamo/cinema-booking/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	db, err := database.Open(database.Options{
		User:    cfg.DBUser,
		Pass:    cfg.DBPass,
		Host:    cfg.DBHost,
		Port:    cfg.DBPort,
		Name:    cfg.DBName,
		MaxOpen: cfg.DBMaxOpen,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("connected to mysql", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	if cfg.DBMigrate {
		m, err := database.NewMigrator(db, log)
		if err != nil {
			return err
		}
		if err := m.Up(ctx); err != nil {
			return err
		}
	}

	// Repositories and the unit of work that spans them.
	bookingRepo := repository.NewBookingRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	screeningRepo := repository.NewScreeningRepo(db)
	theatreRepo := repository.NewTheatreRepo(db)
	movieRepo := repository.NewMovieRepo(db)
	statsRepo := repository.NewStatsRepo(db)
	tx := repository.NewTxManager(db,
		repository.WithRetries(cfg.TxMaxRetries, cfg.TxRetryBase),
		repository.WithTxLogger(log.Named("tx")))

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.RabbitURL != "" {
		pub := service.NewAMQPPublisher(cfg.RabbitURL, cfg.EventsQueue, log.Named("events"))
		defer pub.Close()
		events = pub
		if cfg.EventConsumer {
			consumer := queue.NewConsumer(cfg.RabbitURL, cfg.EventsQueue, log.Named("consumer"), nil)
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("booking event consumer stopped", zap.Error(err))
				}
			}()
		}
	} else {
		log.Info("RABBITMQ_URL not set, booking events disabled")
	}

	clock := service.SystemClock{}
	ledger := service.NewBookingService(service.BookingDeps{
		Tx:         tx,
		Bookings:   bookingRepo,
		Seats:      seatRepo,
		Screenings: screeningRepo,
		Clock:      clock,
		Events:     events,
		Log:        log.Named("ledger"),
	}, service.WithPublishTimeout(cfg.EventsTimeout))
	schedule := service.NewScheduleService(service.ScheduleDeps{
		Tx:         tx,
		Screenings: screeningRepo,
		Theatres:   theatreRepo,
		Movies:     movieRepo,
		Bookings:   bookingRepo,
		Clock:      clock,
		Log:        log.Named("schedule"),
	})
	inventory := service.NewInventoryService(service.InventoryDeps{
		Tx:       tx,
		Seats:    seatRepo,
		Theatres: theatreRepo,
		Bookings: bookingRepo,
		Log:      log.Named("inventory"),
	})

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, caching and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log.Named("http")))
	e.Use(echomw.ContextTimeout(cfg.RequestTimeout))

	router.RegisterRoutes(e, router.Handlers{
		Health:     handler.Health(db),
		Catalog:    handler.NewCatalogHandler(movieRepo, theatreRepo),
		Screenings: handler.NewScreeningHandler(schedule),
		Bookings:   handler.NewBookingHandler(ledger),
		Seats:      handler.NewSeatHandler(inventory),
		Dashboard:  handler.NewDashboardHandler(statsRepo, clock.Now),
	}, router.Middlewares{
		Auth:      middleware.JWTAuth(cfg.JWTSecret),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log.Named("ratelimit")),
	})

	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
