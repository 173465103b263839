package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"
	"github.com/joho/godotenv"

	"github.com/appetiteclub/seating/internal/loyalty"
	"github.com/appetiteclub/seating/internal/mongo"
	"github.com/appetiteclub/seating/internal/remote"
	"github.com/appetiteclub/seating/internal/reservations"
	"github.com/appetiteclub/seating/pkg"
)

//go:embed seed.json
var seedFS embed.FS

const (
	appNamespace = "SEATING"
	appName      = "seating"
	appVersion   = "0.1.0"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
	}

	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup with error: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	seedCtx, cancelSeeds := context.WithCancel(ctx)
	defer cancelSeeds()

	lifecycle := []interface{}{}

	tableRepo := mongo.NewTableRepo(config, logger)
	if err := tableRepo.Start(ctx); err != nil {
		log.Fatalf("%s(%s) cannot start table repository: %v", appName, appVersion, err)
	}

	db := tableRepo.GetDatabase()
	if db == nil {
		log.Fatalf("%s(%s) cannot initialize database: %v", appName, appVersion, errors.New("cannot get table repo database"))
	}

	reservationRepo := mongo.NewReservationRepo(db)
	if err := reservationRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("%s(%s) cannot prepare reservation repository: %v", appName, appVersion, err)
	}

	useTx := strings.EqualFold(config.GetStringOrDef("db.mongo.transactions", "true"), "true")
	transactor := mongo.NewTransactor(tableRepo.GetClient(), db, useTx, logger)
	if err := transactor.Verify(ctx); err != nil {
		log.Fatalf("%s(%s) cannot use Mongo transactions: %v", appName, appVersion, err)
	}
	if !useTx {
		logger.Info("Mongo transactions disabled, slot locks are advisory and failed writes are compensated")
	}

	tablePublisher, err := pkg.NewNATSPublisher(config.GetStringOrDef("nats.url", "nats://localhost:4222"))
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}
	lifecycle = append(lifecycle, apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return tablePublisher.Close()
		},
	})

	notifyPublisher, closeNotify, err := newNotificationPublisher(config, tablePublisher, logger)
	if err != nil {
		log.Fatalf("%s(%s) cannot set up notifications: %v", appName, appVersion, err)
	}
	lifecycle = append(lifecycle, apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return closeNotify()
		},
	})

	customers, err := remote.NewCustomerClient(config, logger)
	if err != nil {
		log.Fatalf("%s(%s) cannot create customers client: %v", appName, appVersion, err)
	}

	var loyaltyEngine reservations.LoyaltyRuleEngine
	loyaltyClient, err := remote.NewLoyaltyClient(config, logger)
	if err != nil {
		logger.Info("Loyalty accrual disabled", "reason", err.Error())
	} else {
		loyaltyEngine = loyalty.NewEngine(loyaltyClient, loyaltyClient, logger)
	}

	location, err := time.LoadLocation(config.GetStringOrDef("restaurant.timezone", "UTC"))
	if err != nil {
		log.Fatalf("%s(%s) invalid restaurant.timezone: %v", appName, appVersion, err)
	}

	effectTimeout, err := time.ParseDuration(config.GetStringOrDef("reservations.effects.timeout", "5s"))
	if err != nil {
		log.Fatalf("%s(%s) invalid reservations.effects.timeout: %v", appName, appVersion, err)
	}

	service := reservations.NewService(reservations.ServiceDeps{
		Repos: reservations.Repos{
			TableRepo:       tableRepo,
			ReservationRepo: reservationRepo,
			Transactor:      transactor,
		},
		Customers:     customers,
		Loyalty:       loyaltyEngine,
		Notifier:      reservations.NewEventNotifier(notifyPublisher, pkg.ReservationNotificationTopic),
		Publisher:     tablePublisher,
		Location:      location,
		EffectTimeout: effectTimeout,
	}, logger)

	lifecycle = append(lifecycle, apt.LifecycleHooks{
		OnStop: service.Drain,
	})

	handler := reservations.NewHandler(service, tableRepo, tablePublisher, logger)

	if strings.EqualFold(config.GetStringOrDef("seeding.enabled", "true"), "true") {
		lifecycle = append(lifecycle, apt.LifecycleHooks{
			OnStart: reservations.SeedingFunc(seedCtx, tableRepo, seedFS, logger),
			OnStop:  reservations.StopFunc(cancelSeeds),
		})
	}

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      logger,
		DisableCORS: true,
	})
	stack = append(stack, middleware.InternalOnly())

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", handler),
		apt.WithLifecycle(lifecycle...),
		apt.WithHealthChecks(appName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	if err := ms.Run(ctx); err != nil {
		_ = tableRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped with error: %v", appName, appVersion, err)
	}

	_ = tableRepo.Stop(context.Background())
	logger.Infof("%s(%s) stopped", appName, appVersion)
}
