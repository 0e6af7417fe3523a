package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	identity_adapter "dreamsquare-service/internal/adapters/identity"
	logger_adapter "dreamsquare-service/internal/adapters/logger"
	mongodb_adapter "dreamsquare-service/internal/adapters/mongodb"
	"dreamsquare-service/internal/adapters/notifier"
	postgres_adapter "dreamsquare-service/internal/adapters/postgres"
	rabbitmq_adapter "dreamsquare-service/internal/adapters/rabbitmq"
	"dreamsquare-service/internal/adapters/rest"
	stripe_adapter "dreamsquare-service/internal/adapters/stripe"
	"dreamsquare-service/internal/configs"
	"dreamsquare-service/internal/constants"
	"dreamsquare-service/internal/core/port"
	"dreamsquare-service/internal/core/usecase"
	fluentlogger "dreamsquare-service/pkg/fluent_logger"
	"dreamsquare-service/pkg/mongodb"
	"dreamsquare-service/pkg/postgres"
	"dreamsquare-service/pkg/rabbitmq/rabbitmq_common"
	"dreamsquare-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// resource - то, что нужно закрыть при остановке. Закрываются в обратном порядке.
type resource struct {
	name  string
	close func() error
}

type listener struct {
	name string
	port.EventListenerPort
}

type App struct {
	config    *configs.AppConfig
	apiServer *rest.Server
	notifier  *notifier.SSENotifier
	listeners []listener
	resources []resource

	logger       port.LoggerPort
	fluentClient *fluent.Fluent
}

// repositories - хранилище, выбранное STORAGE_DRIVER.
type repositories struct {
	users      port.UserRepositoryPort
	properties port.PropertyRepositoryPort
	offers     port.OfferRepositoryPort
	payments   port.PaymentRepositoryPort
	wishlist   port.WishlistRepositoryPort
	reviews    port.ReviewRepositoryPort
}

// messaging - исходящие адаптеры RabbitMQ. При выключенном RabbitMQ поля остаются nil-интерфейсами.
type messaging struct {
	connManager *rabbitmq_common.ConnectionManager
	publisher   port.EventPublisherPort
	purgeQueue  port.PurgeQueuePort
}

func NewApp(envPath ...string) (app *App, err error) {
	appConfig, err := configs.LoadConfig(envPath...)
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	baseLogger, fluentClient, err := newLogger(appConfig)
	if err != nil {
		return nil, err
	}

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	app = &App{config: appConfig, logger: appLogger, fluentClient: fluentClient}

	// При ошибке закрываем все, что успели открыть
	defer func() {
		if err != nil {
			app.release()
			app = nil
		}
	}()

	ctx := context.Background()

	// --- 2. ХРАНИЛИЩЕ ---
	repos, err := app.newRepositories(ctx)
	if err != nil {
		appLogger.Error("Failed to initialize storage", err, port.Fields{"driver": appConfig.Storage.Driver})
		return app, err
	}
	appLogger.Info("Storage initialized.", port.Fields{"driver": appConfig.Storage.Driver})

	// --- 3. АУТЕНТИФИКАЦИЯ ---
	verifier, directory, err := newIdentity(ctx, appConfig.Auth)
	if err != nil {
		appLogger.Error("Failed to initialize identity provider", err, port.Fields{"provider": appConfig.Auth.Provider})
		return app, err
	}
	appLogger.Info("Identity provider initialized.", port.Fields{"provider": appConfig.Auth.Provider})

	// --- 4. ПЛАТЕЖИ ---
	var gateway port.PaymentGatewayPort
	if appConfig.Payment.GatewayKey != "" {
		stripeGateway, err := stripe_adapter.NewGatewayFromKey(appConfig.Payment.GatewayKey)
		if err != nil {
			return app, fmt.Errorf("failed to create payment gateway: %w", err)
		}
		gateway = stripeGateway
	} else {
		appLogger.Warn("Payment gateway key is not set, payment intents are disabled", nil)
	}

	// --- 5. RABBITMQ ---
	msg, err := app.newMessaging(baseLogger)
	if err != nil {
		appLogger.Error("Failed to initialize RabbitMQ", err, nil)
		return app, err
	}

	sseNotifier := notifier.NewSSENotifier(baseLogger)
	app.notifier = sseNotifier
	appLogger.Info("SSE Notifier initialized.", nil)

	// ИНИЦИАЛИЗАЦИЯ USE CASES
	roleUC := usecase.NewGetUserRoleUseCase(repos.users)
	purgeUC := usecase.NewPurgeAgentListingsUseCase(repos.users, repos.properties)

	handlers := rest.Handlers{
		Users: rest.NewUserHandler(
			usecase.NewRegisterUserUseCase(repos.users),
			roleUC,
			usecase.NewListUsersUseCase(repos.users),
			usecase.NewSetUserRoleUseCase(repos.users),
			usecase.NewMarkUserFraudUseCase(repos.users, repos.properties, msg.purgeQueue),
			usecase.NewDeleteUserUseCase(repos.users, directory),
		),
		Properties: rest.NewPropertyHandler(rest.PropertyUseCases{
			Create:         usecase.NewCreatePropertyUseCase(repos.properties, repos.users),
			List:           usecase.NewListPropertiesUseCase(repos.properties),
			ListAll:        usecase.NewListAllPropertiesUseCase(repos.properties),
			ListAdvertised: usecase.NewListAdvertisedPropertiesUseCase(repos.properties),
			Get:            usecase.NewGetPropertyUseCase(repos.properties),
			Update:         usecase.NewUpdatePropertyUseCase(repos.properties),
			Delete:         usecase.NewDeletePropertyUseCase(repos.properties),
			ChangeStatus:   usecase.NewChangePropertyStatusUseCase(repos.properties),
			SetAdvertised:  usecase.NewSetPropertyAdvertisedUseCase(repos.properties),
			AddReview:      usecase.NewAddPropertyReviewUseCase(repos.properties),
		}),
		Offers: rest.NewOfferHandler(rest.OfferUseCases{
			Submit:     usecase.NewSubmitOfferUseCase(repos.offers, repos.properties, msg.publisher, sseNotifier),
			Accept:     usecase.NewAcceptOfferUseCase(repos.offers, msg.publisher, sseNotifier),
			Reject:     usecase.NewRejectOfferUseCase(repos.offers, msg.publisher, sseNotifier),
			MarkBought: usecase.NewMarkOfferBoughtUseCase(repos.offers, msg.publisher, sseNotifier),
			ListBuyer:  usecase.NewListBuyerOffersUseCase(repos.offers, repos.properties),
			ListAgent:  usecase.NewListAgentOffersUseCase(repos.offers),
			Get:        usecase.NewGetOfferUseCase(repos.offers),
		}, sseNotifier),
		Payments: rest.NewPaymentHandler(
			usecase.NewCreatePaymentIntentUseCase(gateway, appConfig.Payment.Currency),
			usecase.NewRecordPaymentUseCase(repos.payments, msg.publisher, sseNotifier),
			usecase.NewListAgentPaymentsUseCase(repos.properties, repos.payments),
		),
		Wishlist: rest.NewWishlistHandler(
			usecase.NewAddToWishlistUseCase(repos.wishlist),
			usecase.NewGetWishlistUseCase(repos.wishlist, repos.properties),
			usecase.NewRemoveFromWishlistUseCase(repos.wishlist),
		),
		Reviews: rest.NewReviewHandler(
			usecase.NewCreateReviewUseCase(repos.reviews),
			usecase.NewListReviewsUseCase(repos.reviews),
			usecase.NewChangeReviewStatusUseCase(repos.reviews),
			usecase.NewDeleteReviewUseCase(repos.reviews),
		),
	}
	appLogger.Info("All use cases initialized.", nil)

	// REST API Server
	app.apiServer = rest.NewServer(rest.ServerConfig{
		Port:             appConfig.Rest.PORT,
		AllowedOrigins:   appConfig.Rest.CORSAllowedOrigins,
		EnforceAdminRole: appConfig.Rest.EnforceAdminRole,
	}, handlers, verifier, roleUC, baseLogger)
	appLogger.Info("REST API server configured.", port.Fields{"enforce_admin_role": appConfig.Rest.EnforceAdminRole})

	// RabbitMQ Consumer для отложенного удаления объектов
	if msg.connManager != nil {
		purgeListener, err := rabbitmq_adapter.NewPurgeConsumerAdapter(
			rabbitmq_adapter.PurgeConsumerConfig(appConfig.RabbitMQ.URL), purgeUC, baseLogger, msg.connManager)
		if err != nil {
			appLogger.Error("Failed to create purge consumer", err, nil)
			return app, fmt.Errorf("failed to create purge consumer adapter: %w", err)
		}
		app.listeners = append(app.listeners, listener{name: "purge_agent_listings", EventListenerPort: purgeListener})
		appLogger.Info("All RabbitMQ listeners initialized.", nil)
	}

	return app, nil
}

func newLogger(cfg *configs.AppConfig) (port.LoggerPort, *fluent.Fluent, error) {
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    logger_adapter.ParseLevel(cfg.StdoutLogger.Level),
		IsJSON:   cfg.StdoutLogger.JSON,
		UseColor: !cfg.StdoutLogger.JSON,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if cfg.FluentBit.Enabled {
		var err error
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, logger_adapter.ParseLevel(cfg.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		if fluentClient != nil {
			fluentClient.Close()
		}
		return nil, nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": cfg.AppName})
	baseLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": cfg.FluentBit.Enabled,
	})
	return baseLogger, fluentClient, nil
}

func (a *App) newRepositories(ctx context.Context) (*repositories, error) {
	switch a.config.Storage.Driver {
	case configs.StorageDriverPostgres:
		return a.newPostgresRepositories(ctx)
	default:
		return a.newMongoRepositories(ctx)
	}
}

func (a *App) newPostgresRepositories(ctx context.Context) (*repositories, error) {
	dbPool, err := postgres.NewClient(ctx, postgres.Config{DatabaseURL: a.config.Database.URL})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	a.addResource("postgres pool", func() error { dbPool.Close(); return nil })
	a.logger.Info("Successfully connected to PostgreSQL pool!", nil)

	repos := &repositories{}
	if repos.users, err = postgres_adapter.NewPostgresUserRepository(dbPool); err != nil {
		return nil, err
	}
	if repos.properties, err = postgres_adapter.NewPostgresPropertyRepository(dbPool); err != nil {
		return nil, err
	}
	if repos.offers, err = postgres_adapter.NewPostgresOfferRepository(dbPool); err != nil {
		return nil, err
	}
	if repos.payments, err = postgres_adapter.NewPostgresPaymentRepository(dbPool); err != nil {
		return nil, err
	}
	if repos.wishlist, err = postgres_adapter.NewPostgresWishlistRepository(dbPool); err != nil {
		return nil, err
	}
	if repos.reviews, err = postgres_adapter.NewPostgresReviewRepository(dbPool); err != nil {
		return nil, err
	}
	return repos, nil
}

func (a *App) newMongoRepositories(ctx context.Context) (*repositories, error) {
	client, db, err := mongodb.NewClient(ctx, mongodb.Config{URI: a.config.Mongo.URI, Database: a.config.Mongo.Database})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	a.addResource("mongo client", func() error {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return client.Disconnect(disconnectCtx)
	})
	a.logger.Info("Successfully connected to MongoDB!", port.Fields{"database": a.config.Mongo.Database})

	created, err := mongodb_adapter.EnsureIndexes(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure mongo indexes: %w", err)
	}
	a.logger.Info("Mongo indexes ensured.", port.Fields{"indexes": created})

	repos := &repositories{}
	if repos.users, err = mongodb_adapter.NewMongoUserRepository(db); err != nil {
		return nil, err
	}
	if repos.properties, err = mongodb_adapter.NewMongoPropertyRepository(db); err != nil {
		return nil, err
	}
	if repos.offers, err = mongodb_adapter.NewMongoOfferRepository(db, a.config.Mongo.UseTransactions); err != nil {
		return nil, err
	}
	if repos.payments, err = mongodb_adapter.NewMongoPaymentRepository(db); err != nil {
		return nil, err
	}
	if repos.wishlist, err = mongodb_adapter.NewMongoWishlistRepository(db); err != nil {
		return nil, err
	}
	if repos.reviews, err = mongodb_adapter.NewMongoReviewRepository(db); err != nil {
		return nil, err
	}
	return repos, nil
}

// newIdentity возвращает проверку токенов и каталог учетных записей.
// Для JWT каталога нет: удаление пользователя затрагивает только базу.
func newIdentity(ctx context.Context, cfg configs.AuthConfig) (port.TokenVerifierPort, port.IdentityDirectoryPort, error) {
	switch cfg.Provider {
	case configs.AuthProviderJWT:
		verifier, err := identity_adapter.NewJWTVerifier(cfg.JWTSigningKey)
		if err != nil {
			return nil, nil, err
		}
		return verifier, nil, nil
	default:
		client, err := identity_adapter.NewFirebaseAuthClient(ctx, cfg.FirebaseCredentialsJSON, cfg.FirebaseCredentialsBase64)
		if err != nil {
			return nil, nil, err
		}
		firebase, err := identity_adapter.NewFirebaseIdentity(client)
		if err != nil {
			return nil, nil, err
		}
		return firebase, firebase, nil
	}
}

func (a *App) newMessaging(baseLogger port.LoggerPort) (*messaging, error) {
	msg := &messaging{}
	if !a.config.RabbitMQ.Enabled {
		a.logger.Info("RabbitMQ is disabled, market events stay in-process.", nil)
		return msg, nil
	}

	connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
	connManager, err := rabbitmq_common.NewConnectionManager(rabbitmq_common.Config{URL: a.config.RabbitMQ.URL}, connManagerBridge)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.addResource("rabbitmq connection manager", connManager.Close)
	msg.connManager = connManager
	a.logger.Info("RabbitMQ Connection Manager initialized.", nil)

	newProducer := func(exchange string) (*rabbitmq_producer.Publisher, error) {
		producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:                   rabbitmq_common.Config{URL: a.config.RabbitMQ.URL},
			ExchangeName:             exchange,
			ExchangeType:             "topic",
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger: rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{
				"component": "rabbitmq_producer", "exchange": exchange,
			})),
		}, connManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create publisher for %s: %w", exchange, err)
		}
		a.addResource("publisher "+exchange, producer.Close)
		return producer, nil
	}

	eventsProducer, err := newProducer(constants.MarketEventsExchange)
	if err != nil {
		return nil, err
	}
	publisher, err := rabbitmq_adapter.NewMarketEventsPublisher(eventsProducer)
	if err != nil {
		return nil, err
	}
	msg.publisher = publisher

	commandsProducer, err := newProducer(constants.CommandsExchange)
	if err != nil {
		return nil, err
	}
	purgeQueue, err := rabbitmq_adapter.NewPurgeEnqueueAdapter(commandsProducer, constants.RoutingKeyPurgeAgentListings)
	if err != nil {
		return nil, err
	}
	msg.purgeQueue = purgeQueue

	a.logger.Info("RabbitMQ publishers initialized.", nil)
	return msg, nil
}

func (a *App) addResource(name string, closeFn func() error) {
	a.resources = append(a.resources, resource{name: name, close: closeFn})
}

// release закрывает слушателей и ресурсы в обратном порядке, последним - fluent.
func (a *App) release() {
	for _, l := range a.listeners {
		if err := l.Close(); err != nil {
			a.logger.Error("Error closing listener", err, port.Fields{"listener": l.name})
		}
	}
	if a.notifier != nil {
		a.notifier.Close()
	}
	for i := len(a.resources) - 1; i >= 0; i-- {
		r := a.resources[i]
		if err := r.close(); err != nil {
			a.logger.Error("Error closing resource", err, port.Fields{"resource": r.name})
		} else {
			a.logger.Info("Resource closed.", port.Fields{"resource": r.name})
		}
	}

	a.logger.Info("Application shut down gracefully.", nil)
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
}

// Run запускает HTTP-сервер и слушателей и блокируется до сигнала остановки
// или первой ошибки любого из них.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)
		a.release()
	}()

	a.logger.Info("Application is starting...", nil)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.apiServer.Start(); err != nil {
			return fmt.Errorf("HTTP server start error: %w", err)
		}
		return nil
	})

	for _, l := range a.listeners {
		l := l
		g.Go(func() error {
			listenerLogger := a.logger.WithFields(port.Fields{"listener": l.name})
			listenerLogger.Info("Starting listener...", nil)

			if err := l.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
				return fmt.Errorf("%s error: %w", l.name, err)
			}
			listenerLogger.Info("Listener stopped gracefully.", nil)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Stopping HTTP server...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.apiServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		a.logger.Error("Application stopped with error", err, nil)
		return err
	}
	return nil
}
