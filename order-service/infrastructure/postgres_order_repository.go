package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/draftea/order-saga/order-service/domain"
	"github.com/draftea/order-saga/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

var _ domain.OrderRepository = (*PostgresOrderRepository)(nil)

// PostgresOrderRepository implements OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db *sqlx.DB
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository
func NewPostgresOrderRepository(db *sqlx.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		customer_ref TEXT NOT NULL,
		stage TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		version INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_lines (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id),
		line_no INTEGER NOT NULL,
		ordered_qty INTEGER NOT NULL CHECK (ordered_qty > 0),
		allocated_qty INTEGER NOT NULL DEFAULT 0 CHECK (allocated_qty >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS order_stage_history (
		id BIGSERIAL PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id),
		from_stage TEXT NOT NULL,
		to_stage TEXT NOT NULL,
		event TEXT NOT NULL,
		version INTEGER NOT NULL,
		changed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_stage_updated_at ON orders (stage, updated_at)`,
}

// InitSchema creates the order tables when missing
func (r *PostgresOrderRepository) InitSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to create order schema")
		}
	}
	return nil
}

// postgresOrder represents order in database
type postgresOrder struct {
	ID          string    `db:"id"`
	CustomerRef string    `db:"customer_ref"`
	Stage       string    `db:"stage"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	Version     int       `db:"version"`
}

// postgresOrderLine represents order line in database
type postgresOrderLine struct {
	ID           string `db:"id"`
	OrderID      string `db:"order_id"`
	LineNo       int    `db:"line_no"`
	OrderedQty   int    `db:"ordered_qty"`
	AllocatedQty int    `db:"allocated_qty"`
}

// postgresStageChange represents a history row in database
type postgresStageChange struct {
	OrderID   string    `db:"order_id"`
	FromStage string    `db:"from_stage"`
	ToStage   string    `db:"to_stage"`
	Event     string    `db:"event"`
	Version   int       `db:"version"`
	ChangedAt time.Time `db:"changed_at"`
}

// Create inserts the order and its lines in one transaction
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	query := `
		INSERT INTO orders (
			id, customer_ref, stage, created_at, updated_at, version
		) VALUES (
			:id, :customer_ref, :stage, :created_at, :updated_at, :version
		)`

	if _, err := tx.NamedExecContext(ctx, query, r.toPostgres(order)); err != nil {
		return errors.Wrap(err, "failed to insert order")
	}

	lineQuery := `
		INSERT INTO order_lines (
			id, order_id, line_no, ordered_qty, allocated_qty
		) VALUES (
			:id, :order_id, :line_no, :ordered_qty, :allocated_qty
		)`

	for _, line := range r.linesToPostgres(order) {
		if _, err := tx.NamedExecContext(ctx, lineQuery, line); err != nil {
			return errors.Wrap(err, "failed to insert order line")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit order")
	}

	return nil
}

// FindByID finds an order by ID
func (r *PostgresOrderRepository) FindByID(ctx context.Context, id models.ID) (*domain.Order, error) {
	query := `
		SELECT id, customer_ref, stage, created_at, updated_at, version
		FROM orders
		WHERE id = $1`

	var pgOrder postgresOrder
	err := r.db.GetContext(ctx, &pgOrder, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Order not found
		}
		return nil, errors.Wrap(err, "failed to find order")
	}

	lines, err := r.findLines(ctx, []string{pgOrder.ID})
	if err != nil {
		return nil, err
	}

	return r.toDomain(&pgOrder, lines[pgOrder.ID])
}

// UpdateStage writes the new stage, version and allocated quantities and
// appends the history row in one transaction. The version guard turns a
// concurrent writer into ErrStaleSnapshot.
func (r *PostgresOrderRepository) UpdateStage(ctx context.Context, order *domain.Order, expectedVersion int, change domain.StageChange) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	query := `
		UPDATE orders
		SET stage = $1, updated_at = $2, version = $3
		WHERE id = $4 AND version = $5`

	result, err := tx.ExecContext(ctx, query,
		order.Stage.String(),
		order.Timestamps.UpdatedAt,
		order.Version.Value,
		order.ID.String(),
		expectedVersion,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update order stage")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return domain.ErrStaleSnapshot
	}

	lineQuery := `
		UPDATE order_lines
		SET allocated_qty = $1
		WHERE id = $2 AND order_id = $3`

	for _, line := range order.Lines {
		if _, err := tx.ExecContext(ctx, lineQuery, line.AllocatedQty, line.ID.String(), order.ID.String()); err != nil {
			return errors.Wrap(err, "failed to update order line")
		}
	}

	historyQuery := `
		INSERT INTO order_stage_history (
			order_id, from_stage, to_stage, event, version, changed_at
		) VALUES (
			:order_id, :from_stage, :to_stage, :event, :version, :changed_at
		)`

	if _, err := tx.NamedExecContext(ctx, historyQuery, postgresStageChange{
		OrderID:   change.OrderID.String(),
		FromStage: change.FromStage.String(),
		ToStage:   change.ToStage.String(),
		Event:     change.Event.String(),
		Version:   change.Version,
		ChangedAt: change.ChangedAt,
	}); err != nil {
		return errors.Wrap(err, "failed to insert stage history")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit stage change")
	}

	return nil
}

// FindStalled lists orders in stages last updated before updatedBefore,
// oldest first
func (r *PostgresOrderRepository) FindStalled(ctx context.Context, stages []domain.Stage, updatedBefore time.Time, limit int) ([]*domain.Order, error) {
	stageNames := make([]string, 0, len(stages))
	for _, s := range stages {
		stageNames = append(stageNames, s.String())
	}

	query := `
		SELECT id, customer_ref, stage, created_at, updated_at, version
		FROM orders
		WHERE stage = ANY($1) AND updated_at < $2
		ORDER BY updated_at
		LIMIT $3`

	var pgOrders []postgresOrder
	if err := r.db.SelectContext(ctx, &pgOrders, query, pq.Array(stageNames), updatedBefore, limit); err != nil {
		return nil, errors.Wrap(err, "failed to find stalled orders")
	}
	if len(pgOrders) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(pgOrders))
	for _, o := range pgOrders {
		ids = append(ids, o.ID)
	}

	lines, err := r.findLines(ctx, ids)
	if err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(pgOrders))
	for i := range pgOrders {
		order, err := r.toDomain(&pgOrders[i], lines[pgOrders[i].ID])
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// History returns the stage changes of an order oldest first
func (r *PostgresOrderRepository) History(ctx context.Context, id models.ID) ([]domain.StageChange, error) {
	query := `
		SELECT order_id, from_stage, to_stage, event, version, changed_at
		FROM order_stage_history
		WHERE order_id = $1
		ORDER BY version`

	var rows []postgresStageChange
	if err := r.db.SelectContext(ctx, &rows, query, id.String()); err != nil {
		return nil, errors.Wrap(err, "failed to find stage history")
	}

	changes := make([]domain.StageChange, 0, len(rows))
	for _, row := range rows {
		changes = append(changes, domain.StageChange{
			OrderID:   models.ID(row.OrderID),
			FromStage: domain.Stage(row.FromStage),
			ToStage:   domain.Stage(row.ToStage),
			Event:     domain.SagaEvent(row.Event),
			Version:   row.Version,
			ChangedAt: row.ChangedAt,
		})
	}

	return changes, nil
}

func (r *PostgresOrderRepository) findLines(ctx context.Context, orderIDs []string) (map[string][]postgresOrderLine, error) {
	query := `
		SELECT id, order_id, line_no, ordered_qty, allocated_qty
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY order_id, line_no`

	var rows []postgresOrderLine
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(orderIDs)); err != nil {
		return nil, errors.Wrap(err, "failed to find order lines")
	}

	byOrder := make(map[string][]postgresOrderLine, len(orderIDs))
	for _, row := range rows {
		byOrder[row.OrderID] = append(byOrder[row.OrderID], row)
	}
	return byOrder, nil
}

// toPostgres converts domain order to postgres model
func (r *PostgresOrderRepository) toPostgres(order *domain.Order) *postgresOrder {
	return &postgresOrder{
		ID:          order.ID.String(),
		CustomerRef: order.CustomerRef,
		Stage:       order.Stage.String(),
		CreatedAt:   order.Timestamps.CreatedAt,
		UpdatedAt:   order.Timestamps.UpdatedAt,
		Version:     order.Version.Value,
	}
}

func (r *PostgresOrderRepository) linesToPostgres(order *domain.Order) []postgresOrderLine {
	lines := make([]postgresOrderLine, 0, len(order.Lines))
	for i, l := range order.Lines {
		lines = append(lines, postgresOrderLine{
			ID:           l.ID.String(),
			OrderID:      order.ID.String(),
			LineNo:       i,
			OrderedQty:   l.OrderedQty,
			AllocatedQty: l.AllocatedQty,
		})
	}
	return lines
}

// toDomain converts postgres model to domain order
func (r *PostgresOrderRepository) toDomain(pgOrder *postgresOrder, pgLines []postgresOrderLine) (*domain.Order, error) {
	id, err := models.NewID(pgOrder.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order ID")
	}

	stage := domain.Stage(pgOrder.Stage)
	if !stage.Valid() {
		return nil, errors.Errorf("order %s has unknown stage %q", pgOrder.ID, pgOrder.Stage)
	}

	lines := make([]domain.OrderLine, 0, len(pgLines))
	for _, l := range pgLines {
		lines = append(lines, domain.OrderLine{
			ID:           models.ID(l.ID),
			OrderedQty:   l.OrderedQty,
			AllocatedQty: l.AllocatedQty,
		})
	}

	return &domain.Order{
		ID:          id,
		CustomerRef: pgOrder.CustomerRef,
		Stage:       stage,
		Lines:       lines,
		Timestamps: models.Timestamps{
			CreatedAt: pgOrder.CreatedAt,
			UpdatedAt: pgOrder.UpdatedAt,
		},
		Version: models.Version{Value: pgOrder.Version},
	}, nil
}
