package infrastructure

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/draftea/order-saga/shared/events"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	mu         sync.Mutex
	pending    []types.Message
	deleted    []string
	visibility map[string]int32
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	msgs := f.pending
	f.pending = nil
	f.mu.Unlock()

	if len(msgs) == 0 && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return &sqs.ReceiveMessageOutput{Messages: msgs}, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSQS) ChangeMessageVisibility(_ context.Context, params *sqs.ChangeMessageVisibilityInput, _ ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.visibility == nil {
		f.visibility = map[string]int32{}
	}
	f.visibility[aws.ToString(params.ReceiptHandle)] = params.VisibilityTimeout
	return &sqs.ChangeMessageVisibilityOutput{}, nil
}

func (f *fakeSQS) snapshot() ([]string, map[string]int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vis := map[string]int32{}
	for k, v := range f.visibility {
		vis[k] = v
	}
	return append([]string(nil), f.deleted...), vis
}

type funcHandler struct {
	fn func(ctx context.Context, event *events.Event) error
}

func (h funcHandler) HandlerID() string { return "test-handler" }

func (h funcHandler) Handle(ctx context.Context, event *events.Event) error { return h.fn(ctx, event) }

func sqsMessageFor(t *testing.T, event *events.Event, receipt string, wrapInSNS bool) types.Message {
	t.Helper()

	body, err := event.ToJSON()
	require.NoError(t, err)

	if wrapInSNS {
		body, err = json.Marshal(snsEnvelope{Type: "Notification", Message: string(body)})
		require.NoError(t, err)
	}

	return types.Message{
		MessageId:     aws.String("msg-" + receipt),
		ReceiptHandle: aws.String(receipt),
		Body:          aws.String(string(body)),
		Attributes: map[string]string{
			string(types.MessageSystemAttributeNameApproximateReceiveCount): "4",
		},
	}
}

func TestDecodeSQSBody(t *testing.T) {
	event := events.NewEvent("order-1", events.ValidateOrderCompletedEvent, events.ValidateOrderResult{OrderID: "order-1", IsValid: true})
	raw, err := event.ToJSON()
	require.NoError(t, err)

	t.Run("raw delivery", func(t *testing.T) {
		decoded, err := decodeSQSBody(string(raw))
		require.NoError(t, err)
		assert.Equal(t, event.ID, decoded.ID)
	})

	t.Run("sns notification", func(t *testing.T) {
		wrapped, err := json.Marshal(snsEnvelope{Type: "Notification", Message: string(raw)})
		require.NoError(t, err)

		decoded, err := decodeSQSBody(string(wrapped))
		require.NoError(t, err)
		assert.Equal(t, events.Topic(events.ValidateOrderCompletedEvent), decoded.Topic)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := decodeSQSBody("not json")
		assert.Error(t, err)
	})

	t.Run("missing topic", func(t *testing.T) {
		_, err := decodeSQSBody(`{"id":"x"}`)
		assert.ErrorIs(t, err, events.ErrInvalidTopic)
	})
}

func TestSQSEventSubscriber_AcksSuccessAndDelaysFailures(t *testing.T) {
	ok := events.NewEvent("order-1", events.ValidateOrderCompletedEvent, events.ValidateOrderResult{OrderID: "order-1"})
	bad := events.NewEvent("order-2", events.AllocateOrderCompletedEvent, events.AllocateOrderResult{OrderID: "order-2"})

	client := &fakeSQS{}
	client.pending = []types.Message{
		sqsMessageFor(t, ok, "receipt-ok", false),
		sqsMessageFor(t, bad, "receipt-bad", true),
	}

	handler := funcHandler{fn: func(_ context.Context, event *events.Event) error {
		if event.AggregateID == "order-2" {
			return errors.New("transient")
		}
		return nil
	}}

	subscriber := NewSQSEventSubscriber(client, "queue", handler,
		WithWorkers(2),
		WithWaitTimeSeconds(0),
		WithSleepTimeAfterEmptyReceive(10*time.Millisecond),
	)
	require.NoError(t, subscriber.Start(context.Background()))

	assert.Eventually(t, func() bool {
		deleted, vis := client.snapshot()
		return len(deleted) == 1 && len(vis) == 1
	}, 2*time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, subscriber.Stop(stopCtx))

	deleted, vis := client.snapshot()
	assert.Equal(t, []string{"receipt-ok"}, deleted)
	// 30s base plus one 30s step for a receive count of 4
	assert.Equal(t, int32(60), vis["receipt-bad"])
}

func TestSQSTuning_Options(t *testing.T) {
	apply := func(opts []SQSSubscriberOption) sqsSubscriberOptions {
		var o sqsSubscriberOptions
		for _, opt := range opts {
			opt(&o)
		}
		return o
	}

	assert.Empty(t, SQSTuning{}.Options())

	got := apply(SQSTuning{Workers: 4, Readers: 2, VisibilityTimeout: 45}.Options())
	assert.Equal(t, int32(4), got.workers)
	assert.Equal(t, int32(2), got.readers)
	assert.Equal(t, int32(45), got.visibilityTimeout)
}
