package config

import (
	"context"

	"github.com/draftea/order-saga/inventory-service/application"
	"github.com/draftea/order-saga/inventory-service/handlers"
	"github.com/draftea/order-saga/shared/events"
	sharedinfra "github.com/draftea/order-saga/shared/infrastructure"
	"github.com/draftea/order-saga/shared/saga"
	"github.com/draftea/order-saga/shared/telemetry"
	"github.com/pkg/errors"
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
	// Infrastructure
	EventPublisher  closablePublisher
	EventSubscriber closableSubscriber
	EventRouter     *saga.EventRouter

	// Use Cases
	ValidateOrder *application.ValidateOrder
	AllocateOrder *application.AllocateOrder

	// Event Handlers
	InventoryEventHandlers *handlers.InventoryEventHandlers

	// Telemetry
	Telemetry         *telemetry.Telemetry
	TelemetryShutdown func()
}

func BuildDependencies(ctx context.Context, config *Config) (*Dependencies, error) {
	deps := &Dependencies{}

	if config.Telemetry.Enabled {
		telConfig := telemetry.InventoryServiceConfig.WithOTLPEndpoint(config.Telemetry.OTLPEndpoint)
		tel, telemetryShutdown, err := telemetry.InitTelemetry(ctx, telConfig)
		if err != nil {
			zlog.Warn().Err(err).Msg("failed to initialize telemetry")
		} else {
			deps.Telemetry = tel
			deps.TelemetryShutdown = telemetryShutdown
		}
	}

	switch config.Messaging.Driver {
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
			deps.Close()
			return nil, errors.Wrap(err, "failed to create SNS publisher")
		}
		deps.EventPublisher = publisher

		tuning := sharedinfra.SQSTuning{
			Workers:           config.AWS.SQSWorkers,
			Readers:           config.AWS.SQSReaders,
			VisibilityTimeout: config.AWS.SQSVisibilityTimeout,
		}
		subscriber, err := sharedinfra.NewSQSSubscriberAdapter(ctx, awsOptions, config.AWS.SQSQueueURL, tuning.Options()...)
		if err != nil {
			deps.Close()
			return nil, errors.Wrap(err, "failed to create SQS subscriber")
		}
		deps.EventSubscriber = subscriber

	case "kafka":
		deps.EventPublisher = sharedinfra.NewKafkaEventPublisher(config.Kafka.Brokers, config.Kafka.PublishTopic)
		deps.EventSubscriber = sharedinfra.NewKafkaEventSubscriber(config.Kafka.Brokers, config.Kafka.SubscribeTopic, config.Kafka.GroupID)

	default:
		// memory messaging only works when order-service hosts the collaborators
		deps.Close()
		return nil, errors.Errorf("unsupported messaging driver %q", config.Messaging.Driver)
	}

	deps.ValidateOrder = application.NewValidateOrder(deps.EventPublisher)
	deps.AllocateOrder = application.NewAllocateOrder(deps.EventPublisher)
	deps.InventoryEventHandlers = handlers.NewInventoryEventHandlers(deps.ValidateOrder, deps.AllocateOrder)

	deps.EventRouter = saga.NewEventRouter(config.ServiceName, deps.Telemetry)
	deps.EventRouter.RegisterHandler(events.OrderRequestsPattern, deps.InventoryEventHandlers)

	return deps, nil
}

// Close closes all dependencies
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

	if d.TelemetryShutdown != nil {
		d.TelemetryShutdown()
	}

	if len(errs) > 0 {
		return errors.Errorf("errors closing dependencies: %v", errs)
	}

	return nil
}
