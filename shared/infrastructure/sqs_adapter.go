package infrastructure

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/draftea/order-saga/shared/events"
	"github.com/pkg/errors"
)

var _ events.Subscriber = (*SQSSubscriberAdapter)(nil)

// SQSSubscriberAdapter adapts SQSEventSubscriber to the events.Subscriber interface
type SQSSubscriberAdapter struct {
	client        SQSAPI
	queueURL      string
	options       []SQSSubscriberOption
	sqsSubscriber *SQSEventSubscriber
}

// NewSQSSubscriberAdapter creates a new SQS subscriber adapter
func NewSQSSubscriberAdapter(ctx context.Context, opts AWSOptions, queueURL string, subscriberOpts ...SQSSubscriberOption) (*SQSSubscriberAdapter, error) {
	cfg, err := loadAWSConfig(ctx, opts)
	if err != nil {
		return nil, err
	}

	client := sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		if opts.EndpointSQS != "" {
			o.BaseEndpoint = aws.String(opts.EndpointSQS)
		}
	})

	return &SQSSubscriberAdapter{
		client:   client,
		queueURL: queueURL,
		options:  subscriberOpts,
	}, nil
}

// namedHandler gives a plain events.EventHandler an identity for logging
type namedHandler struct {
	id string
	events.EventHandler
}

func (h namedHandler) HandlerID() string {
	return h.id
}

func asEventHandler(eventType string, handler events.EventHandler) EventHandler {
	if h, ok := handler.(EventHandler); ok {
		return h
	}
	return namedHandler{id: "handler:" + eventType, EventHandler: handler}
}

// Subscribe starts consuming the queue. The queue subscription decides which
// topics arrive; eventType only names the handler.
func (s *SQSSubscriberAdapter) Subscribe(ctx context.Context, eventType string, handler events.EventHandler) error {
	if s.sqsSubscriber != nil {
		return errors.New("subscriber is already running")
	}

	s.sqsSubscriber = NewSQSEventSubscriber(s.client, s.queueURL, asEventHandler(eventType, handler), s.options...)

	if err := s.sqsSubscriber.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start SQS subscriber")
	}

	return nil
}

// Close stops the subscriber
func (s *SQSSubscriberAdapter) Close() error {
	if s.sqsSubscriber == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.sqsSubscriber.Stop(ctx); err != nil {
		return errors.Wrap(err, "failed to stop SQS subscriber")
	}

	s.sqsSubscriber = nil
	return nil
}
