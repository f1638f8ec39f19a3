package config

import (
	"context"

	invapplication "github.com/draftea/order-saga/inventory-service/application"
	invhandlers "github.com/draftea/order-saga/inventory-service/handlers"
	"github.com/draftea/order-saga/order-service/application"
	"github.com/draftea/order-saga/order-service/domain"
	"github.com/draftea/order-saga/order-service/handlers"
	"github.com/draftea/order-saga/order-service/infrastructure"
	"github.com/draftea/order-saga/shared/events"
	sharedinfra "github.com/draftea/order-saga/shared/infrastructure"
	"github.com/draftea/order-saga/shared/saga"
	"github.com/draftea/order-saga/shared/telemetry"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	zlog "github.com/rs/zerolog/log"
)

type closablePublisher interface {
	events.Publisher
	Close() error
}

type closableSubscriber interface {
	events.Subscriber
	Close() error
}

type Dependencies struct {
	// Storage
	DB              *sqlx.DB
	OrderRepository domain.OrderRepository

	// Stage signalling
	Redis         *redis.Client
	RedisNotifier *infrastructure.RedisStageNotifier
	StageNotifier application.StageNotifier

	// Messaging
	EventPublisher  closablePublisher
	EventSubscriber closableSubscriber
	EventRouter     *saga.EventRouter
	// MemoryBus is set when messaging.driver is memory
	MemoryBus *sharedinfra.MemoryEventBus

	// Use Cases
	OrderSagaManager     *application.OrderSagaManager
	GetOrder             *application.GetOrder
	GetOrderHistory      *application.GetOrderHistory
	RedriveStalledOrders *application.RedriveStalledOrders

	// Handlers
	OrderHandlers      *handlers.OrderHandlers
	OrderEventHandlers *handlers.OrderEventHandlers
	HealthChecks       []handlers.HealthCheck

	// Telemetry
	Telemetry         *telemetry.Telemetry
	TelemetryShutdown func()
}

func BuildDependencies(ctx context.Context, config *Config) (*Dependencies, error) {
	deps := &Dependencies{}
	if err := deps.build(ctx, config); err != nil {
		deps.Close()
		return nil, err
	}
	return deps, nil
}

func (d *Dependencies) build(ctx context.Context, config *Config) error {
	if config.Telemetry.Enabled {
		telConfig := telemetry.OrderServiceConfig.WithOTLPEndpoint(config.Telemetry.OTLPEndpoint)
		tel, telemetryShutdown, err := telemetry.InitTelemetry(ctx, telConfig)
		if err != nil {
			// continue without telemetry rather than failing
			zlog.Warn().Err(err).Msg("failed to initialize telemetry")
		} else {
			d.Telemetry = tel
			d.TelemetryShutdown = telemetryShutdown
		}
	}

	if err := d.buildStorage(ctx, config); err != nil {
		return err
	}

	if err := d.buildStageNotifier(ctx, config); err != nil {
		return err
	}

	if err := d.buildMessaging(ctx, config); err != nil {
		return err
	}

	d.OrderSagaManager = application.NewOrderSagaManager(
		d.OrderRepository,
		d.StageNotifier,
		infrastructure.NewEventCollaboratorGateway(d.EventPublisher),
		application.SagaOptions{
			AwaitAttempts: config.Saga.AwaitAttempts,
			AwaitInterval: config.Saga.AwaitInterval,
			StaleRetries:  config.Saga.StaleRetries,
		},
	)
	d.GetOrder = application.NewGetOrder(d.OrderRepository)
	d.GetOrderHistory = application.NewGetOrderHistory(d.OrderRepository)
	d.RedriveStalledOrders = application.NewRedriveStalledOrders(d.OrderRepository, d.OrderSagaManager)

	d.OrderHandlers = handlers.NewOrderHandlers(d.OrderSagaManager, d.GetOrder, d.GetOrderHistory)
	d.OrderEventHandlers = handlers.NewOrderEventHandlers(d.OrderSagaManager)

	d.EventRouter = saga.NewEventRouter(config.ServiceName, d.Telemetry)
	d.EventRouter.RegisterHandler(events.OrderRepliesPattern, d.OrderEventHandlers)

	if d.MemoryBus != nil {
		// no broker: answer our own requests with the reference collaborators
		inventoryRouter := saga.NewEventRouter("inventory-service", d.Telemetry)
		inventoryRouter.RegisterHandler(events.OrderRequestsPattern, invhandlers.NewInventoryEventHandlers(
			invapplication.NewValidateOrder(d.MemoryBus),
			invapplication.NewAllocateOrder(d.MemoryBus),
		))
		if err := d.MemoryBus.Subscribe(ctx, events.OrderRequestsPattern, inventoryRouter); err != nil {
			return errors.Wrap(err, "failed to subscribe in-process collaborators")
		}
	}

	return nil
}

func (d *Dependencies) buildStorage(ctx context.Context, config *Config) error {
	switch config.Storage.Driver {
	case "memory":
		d.OrderRepository = infrastructure.NewMemoryOrderRepository()
		return nil
	case "postgres":
	default:
		return errors.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", config.GetDatabaseURL())
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	if config.Database.MaxOpenConn > 0 {
		db.SetMaxOpenConns(config.Database.MaxOpenConn)
	}
	d.DB = db
	d.HealthChecks = append(d.HealthChecks, db.PingContext)

	repository := infrastructure.NewPostgresOrderRepository(db)
	if config.Database.InitSchema {
		if err := repository.InitSchema(ctx); err != nil {
			return err
		}
	}
	d.OrderRepository = repository

	return nil
}

func (d *Dependencies) buildStageNotifier(ctx context.Context, config *Config) error {
	if !config.Redis.Enabled {
		d.StageNotifier = application.NewStageBroadcaster()
		return nil
	}

	opts, err := redis.ParseURL(config.Redis.URL)
	if err != nil {
		return errors.Wrap(err, "invalid redis url")
	}

	client := redis.NewClient(opts)
	d.Redis = client

	if config.Redis.EnableOTel {
		if err := redisotel.InstrumentTracing(client); err != nil {
			return errors.Wrap(err, "failed to instrument redis tracing")
		}
		if err := redisotel.InstrumentMetrics(client); err != nil {
			return errors.Wrap(err, "failed to instrument redis metrics")
		}
	}

	if err := client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "failed to ping redis")
	}
	d.HealthChecks = append(d.HealthChecks, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})

	d.RedisNotifier = infrastructure.NewRedisStageNotifier(client, config.Redis.Channel)
	d.StageNotifier = d.RedisNotifier
	return nil
}

func (d *Dependencies) buildMessaging(ctx context.Context, config *Config) error {
	switch config.Messaging.Driver {
	case "memory":
		d.MemoryBus = sharedinfra.NewMemoryEventBus()
		d.EventPublisher = d.MemoryBus
		d.EventSubscriber = d.MemoryBus

	case "sns":
		awsOptions := sharedinfra.AWSOptions{
			Region:          config.AWS.Region,
			AccessKeyID:     config.AWS.AccessKeyID,
			SecretAccessKey: config.AWS.SecretAccessKey,
			EndpointSNS:     config.AWS.EndpointSNS,
			EndpointSQS:     config.AWS.EndpointSQS,
		}

		publisher, err := sharedinfra.NewSNSPublisherAdapter(ctx, awsOptions, config.AWS.SNSTopicArn)
		if err != nil {
			return errors.Wrap(err, "failed to create SNS publisher")
		}
		d.EventPublisher = publisher

		tuning := sharedinfra.SQSTuning{
			Workers:           config.AWS.SQSWorkers,
			Readers:           config.AWS.SQSReaders,
			VisibilityTimeout: config.AWS.SQSVisibilityTimeout,
		}
		subscriber, err := sharedinfra.NewSQSSubscriberAdapter(ctx, awsOptions, config.AWS.SQSQueueURL, tuning.Options()...)
		if err != nil {
			return errors.Wrap(err, "failed to create SQS subscriber")
		}
		d.EventSubscriber = subscriber

	case "kafka":
		d.EventPublisher = sharedinfra.NewKafkaEventPublisher(config.Kafka.Brokers, config.Kafka.PublishTopic)
		d.EventSubscriber = sharedinfra.NewKafkaEventSubscriber(config.Kafka.Brokers, config.Kafka.SubscribeTopic, config.Kafka.GroupID)

	default:
		return errors.Errorf("unknown messaging driver %q", config.Messaging.Driver)
	}

	return nil
}

// Close releases everything BuildDependencies opened, subscribers first
func (d *Dependencies) Close() error {
	var errs []error

	if d.EventSubscriber != nil {
		if err := d.EventSubscriber.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "failed to close event subscriber"))
		}
	}

	if d.EventPublisher != nil {
		if err := d.EventPublisher.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "failed to close event publisher"))
		}
	}

	if d.RedisNotifier != nil {
		if err := d.RedisNotifier.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "failed to close stage notifier"))
		}
	}

	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "failed to close redis"))
		}
	}

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "failed to close database"))
		}
	}

	if d.TelemetryShutdown != nil {
		d.TelemetryShutdown()
	}

	if len(errs) > 0 {
		return errors.Errorf("errors closing dependencies: %v", errs)
	}

	return nil
}
