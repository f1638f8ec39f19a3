package infrastructure

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/draftea/order-saga/shared/events"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSNS struct {
	mu      sync.Mutex
	inputs  []*sns.PublishBatchInput
	failIDs map[string]bool
	err     error
}

func (f *fakeSNS) PublishBatch(_ context.Context, params *sns.PublishBatchInput, _ ...func(*sns.Options)) (*sns.PublishBatchOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)

	out := &sns.PublishBatchOutput{}
	for _, entry := range params.PublishBatchRequestEntries {
		if f.failIDs[aws.ToString(entry.Id)] {
			out.Failed = append(out.Failed, types.BatchResultErrorEntry{Id: entry.Id})
		}
	}
	return out, nil
}

func newRequestEvents(n int) []*events.Event {
	evts := make([]*events.Event, n)
	for i := range evts {
		orderID := fmt.Sprintf("order-%d", i)
		evts[i] = events.NewEvent("", events.ValidateOrderRequestedEvent, events.ValidateOrderRequest{OrderID: orderID})
	}
	return evts
}

func TestSNSEventPublisher_SplitsIntoBatches(t *testing.T) {
	client := &fakeSNS{}
	publisher := NewSNSEventPublisher(client, "arn:aws:sns:us-east-1:000000000000:order-saga")

	require.NoError(t, publisher.Publish(context.Background(), newRequestEvents(23)...))

	require.Len(t, client.inputs, 3)
	total := 0
	for _, input := range client.inputs {
		assert.LessOrEqual(t, len(input.PublishBatchRequestEntries), maxBatchSize)
		total += len(input.PublishBatchRequestEntries)
	}
	assert.Equal(t, 23, total)
}

func TestSNSEventPublisher_MessageCarriesEnvelopeAndTopicAttribute(t *testing.T) {
	client := &fakeSNS{}
	publisher := NewSNSEventPublisher(client, "arn")

	event := events.NewEvent("order-1", events.AllocateOrderRequestedEvent, events.AllocateOrderRequest{OrderID: "order-1"})
	event.WithMetadata(SQSReceiptHandleKey, "stale-handle")
	require.NoError(t, publisher.Publish(context.Background(), event))

	entry := client.inputs[0].PublishBatchRequestEntries[0]
	assert.Equal(t, events.AllocateOrderRequestedEvent, aws.ToString(entry.MessageAttributes["topic"].StringValue))
	assert.NotContains(t, entry.MessageAttributes, SQSReceiptHandleKey)

	decoded, err := decodeSQSBody(aws.ToString(entry.Message))
	require.NoError(t, err)
	assert.Equal(t, event.ID, decoded.ID)

	var request events.AllocateOrderRequest
	require.NoError(t, decoded.UnmarshalPayload(&request))
	assert.Equal(t, "order-1", request.OrderID)
}

func TestSNSEventPublisher_ReportsFailedEntries(t *testing.T) {
	evts := newRequestEvents(2)
	client := &fakeSNS{failIDs: map[string]bool{evts[1].ID.String(): true}}
	publisher := NewSNSEventPublisher(client, "arn")

	err := publisher.Publish(context.Background(), evts...)

	require.Error(t, err)
	assert.Contains(t, err.Error(), evts[1].ID.String())
}

func TestSNSEventPublisher_ClientError(t *testing.T) {
	client := &fakeSNS{err: errors.New("throttled")}
	publisher := NewSNSEventPublisher(client, "arn")

	err := publisher.Publish(context.Background(), newRequestEvents(1)...)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish batch to SNS")
}

func TestSplitToChunks(t *testing.T) {
	assert.Len(t, splitToChunks([]int{1, 2, 3, 4, 5}, 2), 3)
	assert.Empty(t, splitToChunks([]int{}, 2))
}
