package infrastructure

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/draftea/order-saga/order-service/application"
	"github.com/draftea/order-saga/order-service/domain"
	"github.com/draftea/order-saga/shared/models"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	zlog "github.com/rs/zerolog/log"
)

var _ application.StageNotifier = (*RedisStageNotifier)(nil)

type stageMessage struct {
	OrderID  string `json:"order_id"`
	Stage    string `json:"stage"`
	Instance string `json:"instance"`
}

// RedisStageNotifier shares stage commits between orchestrator instances over
// Redis pub/sub. Local waiters are signalled straight away; commits from other
// instances are fanned into the same local broadcaster.
type RedisStageNotifier struct {
	client   redis.UniversalClient
	channel  string
	instance string
	local    *application.StageBroadcaster

	mu     sync.Mutex
	pubsub *redis.PubSub
	wg     sync.WaitGroup
}

// NewRedisStageNotifier creates a notifier publishing on channel
func NewRedisStageNotifier(client redis.UniversalClient, channel string) *RedisStageNotifier {
	return &RedisStageNotifier{
		client:   client,
		channel:  channel,
		instance: models.GenerateUUID().String(),
		local:    application.NewStageBroadcaster(),
	}
}

// Notify implements application.StageNotifier
func (n *RedisStageNotifier) Notify(ctx context.Context, orderID models.ID, stage domain.Stage) {
	n.local.Notify(ctx, orderID, stage)

	payload, err := json.Marshal(stageMessage{
		OrderID:  orderID.String(),
		Stage:    stage.String(),
		Instance: n.instance,
	})
	if err != nil {
		return
	}

	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		// waiters on other instances fall back to polling
		zlog.Ctx(ctx).Warn().Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to publish stage change to redis")
	}
}

// Subscribe implements application.StageNotifier
func (n *RedisStageNotifier) Subscribe(orderID models.ID) (<-chan domain.Stage, func()) {
	return n.local.Subscribe(orderID)
}

// Start subscribes to the channel and relays remote commits until ctx is
// done or Close is called. It returns once the subscription is confirmed.
func (n *RedisStageNotifier) Start(ctx context.Context) error {
	pubsub := n.client.Subscribe(ctx, n.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return errors.Wrap(err, "failed to subscribe to stage channel")
	}

	n.mu.Lock()
	n.pubsub = pubsub
	n.mu.Unlock()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.relay(ctx, pubsub.Channel())
	}()

	return nil
}

func (n *RedisStageNotifier) relay(ctx context.Context, messages <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			var decoded stageMessage
			if err := json.Unmarshal([]byte(msg.Payload), &decoded); err != nil {
				zlog.Warn().Err(err).Msg("ignoring malformed stage message")
				continue
			}
			if decoded.Instance == n.instance {
				continue
			}

			n.local.Notify(ctx, models.ID(decoded.OrderID), domain.Stage(decoded.Stage))
		}
	}
}

// Close ends the subscription and waits for the relay to stop
func (n *RedisStageNotifier) Close() error {
	n.mu.Lock()
	pubsub := n.pubsub
	n.pubsub = nil
	n.mu.Unlock()

	if pubsub == nil {
		return nil
	}

	err := pubsub.Close()
	n.wg.Wait()
	return err
}
