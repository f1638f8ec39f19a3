package domain

import (
	"time"

	"github.com/draftea/order-saga/shared/events"
	"github.com/draftea/order-saga/shared/models"
	"github.com/pkg/errors"
)

// OrderLine is a single ordered item
type OrderLine struct {
	ID           models.ID `json:"id"`
	OrderedQty   int       `json:"ordered_qty"`
	AllocatedQty int       `json:"allocated_qty"`
}

// Order aggregate root. Stage only moves through NextTransition and is
// persisted by the transition recorder.
type Order struct {
	ID          models.ID   `json:"id"`
	CustomerRef string      `json:"customer_ref"`
	Stage       Stage       `json:"stage"`
	Lines       []OrderLine `json:"lines"`
	Timestamps  models.Timestamps
	Version     models.Version
}

// LineAllocation is the quantity an allocation collaborator reserved for a line
type LineAllocation struct {
	LineID       models.ID
	AllocatedQty int
}

// StageChange is one entry of an order's stage history
type StageChange struct {
	OrderID   models.ID `json:"order_id"`
	FromStage Stage     `json:"from_stage"`
	ToStage   Stage     `json:"to_stage"`
	Event     SagaEvent `json:"event"`
	Version   int       `json:"version"`
	ChangedAt time.Time `json:"changed_at"`
}

// CreateOrder factory method. Each entry of orderedQtys becomes a line with
// its own id.
func CreateOrder(customerRef string, orderedQtys []int) (*Order, error) {
	if len(orderedQtys) == 0 {
		return nil, errors.Wrap(ErrInvalidOrder, "order must have at least one line")
	}

	lines := make([]OrderLine, 0, len(orderedQtys))
	for i, qty := range orderedQtys {
		if qty <= 0 {
			return nil, errors.Wrapf(ErrInvalidOrder, "line %d: ordered quantity must be positive", i)
		}
		lines = append(lines, OrderLine{ID: models.GenerateUUID(), OrderedQty: qty})
	}

	return &Order{
		ID:          models.GenerateUUID(),
		CustomerRef: customerRef,
		Stage:       StageNew,
		Lines:       lines,
		Timestamps:  models.NewTimestamps(),
		Version:     models.NewVersion(),
	}, nil
}

// Next resolves the transition event fires from the order's current stage
func (o *Order) Next(event SagaEvent) (Transition, error) {
	t, err := NextTransition(o.Stage, event)
	if err != nil {
		var invalid *InvalidTransitionError
		if errors.As(err, &invalid) {
			invalid.OrderID = o.ID
		}
		return Transition{}, err
	}
	return t, nil
}

// ApplyAllocations writes allocated quantities onto matching lines. Lines
// without an allocation keep their quantity and unknown line ids are ignored.
// It reports whether any quantity changed.
func (o *Order) ApplyAllocations(allocations []LineAllocation) (bool, error) {
	byLine := make(map[models.ID]int, len(allocations))
	for _, a := range allocations {
		if a.AllocatedQty < 0 {
			return false, errors.Wrapf(ErrInvalidOrder, "negative allocated quantity %d for line %s", a.AllocatedQty, a.LineID)
		}
		byLine[a.LineID] = a.AllocatedQty
	}

	changed := false
	for i := range o.Lines {
		qty, ok := byLine[o.Lines[i].ID]
		if !ok || o.Lines[i].AllocatedQty == qty {
			continue
		}
		o.Lines[i].AllocatedQty = qty
		changed = true
	}

	return changed, nil
}

// Clone returns a deep copy
func (o *Order) Clone() *Order {
	clone := *o
	clone.Lines = append([]OrderLine(nil), o.Lines...)
	return &clone
}

// ToSnapshot converts the order to its wire form
func (o *Order) ToSnapshot() events.OrderSnapshot {
	lines := make([]events.OrderLineSnapshot, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, events.OrderLineSnapshot{
			LineID:       l.ID.String(),
			OrderedQty:   l.OrderedQty,
			AllocatedQty: l.AllocatedQty,
		})
	}

	return events.OrderSnapshot{
		OrderID:     o.ID.String(),
		Stage:       o.Stage.String(),
		CustomerRef: o.CustomerRef,
		Lines:       lines,
	}
}
