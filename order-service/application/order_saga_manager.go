package application

import (
	"context"
	"time"

	"github.com/draftea/order-saga/order-service/domain"
	"github.com/draftea/order-saga/shared/events"
	"github.com/draftea/order-saga/shared/models"
	"github.com/draftea/order-saga/shared/telemetry"
	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SagaOptions tunes the orchestrator
type SagaOptions struct {
	// AwaitAttempts and AwaitInterval bound the wait for VALIDATED before
	// ALLOCATE_ORDER is fired.
	AwaitAttempts int
	AwaitInterval time.Duration
	// StaleRetries is how many times an event is re-evaluated after another
	// writer moved the order's version.
	StaleRetries int
}

// DefaultSagaOptions returns the defaults used when config leaves them unset
func DefaultSagaOptions() SagaOptions {
	return SagaOptions{
		AwaitAttempts: 10,
		AwaitInterval: time.Second,
		StaleRetries:  3,
	}
}

// SubmitOrderLine is a requested line of a new order
type SubmitOrderLine struct {
	OrderedQty int `json:"ordered_qty"`
}

// SubmitOrderCommand represents the command to submit a new order
type SubmitOrderCommand struct {
	CustomerRef string            `json:"customer_ref"`
	Lines       []SubmitOrderLine `json:"lines"`
}

// OrderSagaManager drives orders through the stage machine. Every event runs
// read, decide, persist and act while holding the order's lock, and the stage
// is always re-read from the repository first.
type OrderSagaManager struct {
	orderRepository domain.OrderRepository
	recorder        *TransitionRecorder
	waiter          *CompletionWaiter
	collaborators   CollaboratorGateway
	locks           *orderLocks
	options         SagaOptions
}

// NewOrderSagaManager creates a new OrderSagaManager
func NewOrderSagaManager(
	orderRepository domain.OrderRepository,
	notifier StageNotifier,
	collaborators CollaboratorGateway,
	options SagaOptions,
) *OrderSagaManager {
	defaults := DefaultSagaOptions()
	if options.AwaitAttempts <= 0 {
		options.AwaitAttempts = defaults.AwaitAttempts
	}
	if options.AwaitInterval <= 0 {
		options.AwaitInterval = defaults.AwaitInterval
	}
	if options.StaleRetries < 0 {
		options.StaleRetries = defaults.StaleRetries
	}

	return &OrderSagaManager{
		orderRepository: orderRepository,
		recorder:        NewTransitionRecorder(orderRepository, notifier),
		waiter:          NewCompletionWaiter(orderRepository, notifier),
		collaborators:   collaborators,
		locks:           newOrderLocks(),
		options:         options,
	}
}

// SubmitNewOrder persists a new order at NEW and fires VALIDATE_ORDER. When
// only the validation request fails to go out, the committed order is
// returned together with an error matching domain.ErrDispatchFailure.
func (m *OrderSagaManager) SubmitNewOrder(ctx context.Context, cmd *SubmitOrderCommand) (order *domain.Order, err error) {
	ctx, done := m.observe(ctx, "submit_new_order", "", trace.WithAttributes(
		attribute.String("customer_ref", cmd.CustomerRef),
		attribute.Int("lines", len(cmd.Lines)),
	))
	defer func() { done(err) }()

	quantities := make([]int, 0, len(cmd.Lines))
	for _, line := range cmd.Lines {
		quantities = append(quantities, line.OrderedQty)
	}

	order, err = domain.CreateOrder(cmd.CustomerRef, quantities)
	if err != nil {
		return nil, err
	}

	if err := m.orderRepository.Create(ctx, order); err != nil {
		return nil, &domain.PersistenceError{OrderID: order.ID, Err: err}
	}

	zlog.Ctx(ctx).Info().
		Str("order_id", order.ID.String()).
		Str("customer_ref", order.CustomerRef).
		Msg("order submitted")

	submitted, err := m.fire(ctx, order.ID, domain.EventValidateOrder)
	if submitted != nil {
		order = submitted
	}
	if err != nil {
		if errors.Is(err, domain.ErrDispatchFailure) {
			return order, err
		}
		return nil, err
	}

	return order, nil
}

// ReceiveValidationResult fires VALIDATION_PASSED or VALIDATION_FAILED. On a
// pass it waits, outside the order lock, for VALIDATED to be durable and then
// fires ALLOCATE_ORDER.
func (m *OrderSagaManager) ReceiveValidationResult(ctx context.Context, orderID models.ID, isValid bool) (err error) {
	ctx, done := m.observe(ctx, "receive_validation_result", orderID, trace.WithAttributes(
		attribute.Bool("is_valid", isValid),
	))
	defer func() { done(err) }()

	event := domain.EventValidationFailed
	if isValid {
		event = domain.EventValidationPassed
	}

	if _, err := m.fire(ctx, orderID, event); err != nil {
		return err
	}

	if !isValid {
		return nil
	}

	reached, err := m.waiter.AwaitStage(ctx, orderID, domain.StageValidated, m.options.AwaitAttempts, m.options.AwaitInterval)
	if err != nil {
		m.recordAwait(ctx, "error")
		return errors.Wrap(err, "failed waiting for validated stage")
	}
	if !reached {
		m.recordAwait(ctx, "timeout")
		return &domain.SynchronizationTimeoutError{
			OrderID:  orderID,
			Expected: domain.StageValidated,
			Attempts: m.options.AwaitAttempts,
		}
	}
	m.recordAwait(ctx, "reached")

	_, err = m.fire(ctx, orderID, domain.EventAllocateOrder)
	return err
}

// ReceiveAllocationResult fires the event matching outcome. For success and
// noInventory the allocated quantities are stored in the same commit as the
// stage.
func (m *OrderSagaManager) ReceiveAllocationResult(ctx context.Context, orderID models.ID, outcome events.AllocationOutcome, allocations []domain.LineAllocation) (err error) {
	ctx, done := m.observe(ctx, "receive_allocation_result", orderID, trace.WithAttributes(
		attribute.String("outcome", string(outcome)),
	))
	defer func() { done(err) }()

	var event domain.SagaEvent
	switch outcome {
	case events.AllocationOutcomeSuccess:
		event = domain.EventAllocationSuccess
	case events.AllocationOutcomeNoInventory:
		event = domain.EventAllocationNoInventory
	case events.AllocationOutcomeFailed:
		event = domain.EventAllocationFailed
	default:
		return errors.Errorf("unknown allocation outcome %q", outcome)
	}

	_, err = m.fire(ctx, orderID, event, allocations...)
	return err
}

// MarkPickedUp fires ORDER_PICKED_UP
func (m *OrderSagaManager) MarkPickedUp(ctx context.Context, orderID models.ID) (err error) {
	ctx, done := m.observe(ctx, "mark_picked_up", orderID)
	defer func() { done(err) }()

	_, err = m.fire(ctx, orderID, domain.EventOrderPickedUp)
	return err
}

// CancelOrder fires CANCEL_ORDER
func (m *OrderSagaManager) CancelOrder(ctx context.Context, orderID models.ID) (err error) {
	ctx, done := m.observe(ctx, "cancel_order", orderID)
	defer func() { done(err) }()

	_, err = m.fire(ctx, orderID, domain.EventCancelOrder)
	return err
}

// fire applies event to the order under its lock. A stale snapshot means
// another writer committed first, so the event is evaluated again against the
// fresh stage.
func (m *OrderSagaManager) fire(ctx context.Context, orderID models.ID, event domain.SagaEvent, allocations ...domain.LineAllocation) (*domain.Order, error) {
	unlock := m.locks.Lock(orderID)
	defer unlock()

	logger := zlog.Ctx(ctx).With().
		Str("order_id", orderID.String()).
		Str("event", event.String()).
		Logger()

	for attempt := 0; ; attempt++ {
		order, err := m.orderRepository.FindByID(ctx, orderID)
		if err != nil {
			return nil, &domain.PersistenceError{OrderID: orderID, Err: err}
		}
		if order == nil {
			return nil, errors.Wrapf(domain.ErrOrderNotFound, "order %s", orderID)
		}

		transition, err := order.Next(event)
		if err != nil {
			telemetry.RecordCounter(ctx, "order_saga_invalid_transitions_total", "Events rejected by the stage machine", 1,
				attribute.String("stage", order.Stage.String()),
				attribute.String("event", event.String()),
			)
			return nil, err
		}

		err = m.recorder.Commit(ctx, order, transition, allocations...)
		if errors.Is(err, domain.ErrStaleSnapshot) {
			if attempt < m.options.StaleRetries {
				logger.Debug().Int("attempt", attempt+1).Msg("stale order snapshot, re-evaluating")
				continue
			}
			return nil, &domain.PersistenceError{OrderID: orderID, Err: err}
		}
		if err != nil {
			return nil, err
		}

		telemetry.RecordCounter(ctx, "order_saga_transitions_total", "Committed order stage transitions", 1,
			attribute.String("from", transition.From.String()),
			attribute.String("to", transition.To.String()),
			attribute.String("event", event.String()),
		)
		logger.Info().
			Str("from", transition.From.String()).
			Str("to", transition.To.String()).
			Int("version", order.Version.Value).
			Msg("order transitioned")

		if err := m.dispatch(ctx, order, transition.Action); err != nil {
			return order, err
		}

		return order, nil
	}
}

// dispatch runs the side effect attached to a committed transition
func (m *OrderSagaManager) dispatch(ctx context.Context, order *domain.Order, action domain.Action) error {
	var err error
	switch action {
	case domain.ActionSendValidationRequest:
		err = m.collaborators.RequestValidation(ctx, order)
	case domain.ActionSendAllocationRequest:
		err = m.collaborators.RequestAllocation(ctx, order)
	default:
		return nil
	}

	if err != nil {
		zlog.Ctx(ctx).Error().Err(err).
			Str("order_id", order.ID.String()).
			Str("action", string(action)).
			Msg("failed to dispatch collaborator request")
		return errors.Wrapf(domain.ErrDispatchFailure, "%s for order %s: %v", action, order.ID, err)
	}

	return nil
}

// redrive re-sends the collaborator request for an order stuck in a pending
// stage, or fires ALLOCATE_ORDER for one stuck at VALIDATED.
func (m *OrderSagaManager) redrive(ctx context.Context, orderID models.ID, stage domain.Stage) error {
	if stage == domain.StageValidated {
		_, err := m.fire(ctx, orderID, domain.EventAllocateOrder)
		return err
	}

	unlock := m.locks.Lock(orderID)
	defer unlock()

	order, err := m.orderRepository.FindByID(ctx, orderID)
	if err != nil {
		return &domain.PersistenceError{OrderID: orderID, Err: err}
	}
	if order == nil {
		return errors.Wrapf(domain.ErrOrderNotFound, "order %s", orderID)
	}

	switch order.Stage {
	case domain.StageValidationPending:
		return m.dispatch(ctx, order, domain.ActionSendValidationRequest)
	case domain.StageAllocationPending:
		return m.dispatch(ctx, order, domain.ActionSendAllocationRequest)
	}

	// moved on since it was listed
	return nil
}

func (m *OrderSagaManager) recordAwait(ctx context.Context, result string) {
	telemetry.RecordCounter(ctx, "order_saga_await_total", "Waits for the validated stage", 1,
		attribute.String("result", result),
	)
}

// observe starts the operation span and returns the func recording its
// outcome
func (m *OrderSagaManager) observe(ctx context.Context, operation string, orderID models.ID, opts ...trace.SpanStartOption) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "order_saga."+operation, opts...)
	if !orderID.IsZero() {
		span.SetAttributes(attribute.String("order_id", orderID.String()))
	}

	return ctx, func(err error) {
		defer span.End()

		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
		}

		telemetry.RecordHistogram(ctx, "order_saga_operation_duration_seconds", "Order saga operation duration", time.Since(start).Seconds(),
			attribute.String("operation", operation),
			attribute.String("status", status),
		)
	}
}
