package events

// AllocationOutcome is the verdict an allocation collaborator reports for an order.
type AllocationOutcome string

const (
	AllocationOutcomeSuccess     AllocationOutcome = "success"
	AllocationOutcomeNoInventory AllocationOutcome = "noInventory"
	AllocationOutcomeFailed      AllocationOutcome = "failed"
)

// Valid reports whether the outcome is one of the known values.
func (o AllocationOutcome) Valid() bool {
	switch o {
	case AllocationOutcomeSuccess, AllocationOutcomeNoInventory, AllocationOutcomeFailed:
		return true
	}
	return false
}

// OrderLineSnapshot is the wire form of a single order line.
type OrderLineSnapshot struct {
	LineID       string `json:"line_id"`
	OrderedQty   int    `json:"ordered_qty"`
	AllocatedQty int    `json:"allocated_qty"`
}

// OrderSnapshot is the persisted order record as sent to collaborators.
type OrderSnapshot struct {
	OrderID     string              `json:"order_id"`
	Stage       string              `json:"stage"`
	CustomerRef string              `json:"customer_ref"`
	Lines       []OrderLineSnapshot `json:"lines"`
}

// ValidateOrderRequest asks the validation collaborator to check an order.
type ValidateOrderRequest struct {
	OrderID string        `json:"order_id"`
	Order   OrderSnapshot `json:"order"`
}

// ValidateOrderResult is the validation collaborator's reply.
type ValidateOrderResult struct {
	OrderID string `json:"order_id"`
	IsValid bool   `json:"is_valid"`
}

// AllocateOrderRequest asks the allocation collaborator to reserve inventory.
type AllocateOrderRequest struct {
	OrderID string        `json:"order_id"`
	Order   OrderSnapshot `json:"order"`
}

// LineAllocation carries the allocated quantity for one line.
type LineAllocation struct {
	LineID       string `json:"line_id"`
	AllocatedQty int    `json:"allocated_qty"`
}

// AllocateOrderResult is the allocation collaborator's reply.
type AllocateOrderResult struct {
	OrderID         string            `json:"order_id"`
	LineAllocations []LineAllocation  `json:"line_allocations"`
	Outcome         AllocationOutcome `json:"outcome"`
}
