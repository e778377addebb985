// Package source reads the relational side of the sync: a full snapshot of
// the six mirrored tables, plus the readiness/liveness probe.
package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/SARx613/shopgraph/api/schemas"
)

// DBPool abstracts the pgxpool.Pool surface the store needs, so tests can
// substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// One full unfiltered read per relation. Temporal columns are cast to text so
// free-form values survive regardless of the column's declared type; NULLs in
// nullable text columns are coalesced where the row type carries a plain
// string.
const (
	queryCustomers  = `SELECT id, COALESCE(name, ''), join_date::text FROM customers`
	queryCategories = `SELECT id, COALESCE(name, '') FROM categories`
	queryProducts   = `SELECT id, COALESCE(name, ''), category_id, COALESCE(price::text, '') FROM products`
	queryOrders     = `SELECT id, customer_id, ts::text FROM orders`
	queryOrderItems = `SELECT order_id, product_id, COALESCE(quantity::text, '') FROM order_items`
	queryEvents     = `SELECT id, customer_id, product_id, COALESCE(event_type, ''), ts::text FROM events`
)

// Store reads the source database.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a store over the given pool. The pool's lifecycle belongs to
// the caller; readiness is checked separately through Probe so construction
// never blocks on the database.
func New(pool DBPool, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		pool: pool,
		log:  logger.Named("source"),
	}
}

// Probe performs a minimal round trip against the source store.
func (s *Store) Probe(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Snapshot reads all six relations in their fixed order and materializes
// them. The first failed query aborts the snapshot. Every captured relation
// is non-nil, so an empty table is distinguishable from one that was never
// read.
func (s *Store) Snapshot(ctx context.Context) (schemas.Snapshot, error) {
	var snap schemas.Snapshot
	var err error

	if snap.Customers, err = scanRows(ctx, s.pool, queryCustomers, schemas.RelationCustomers,
		func(rows pgx.Rows) (schemas.Customer, error) {
			var c schemas.Customer
			err := rows.Scan(&c.ID, &c.Name, &c.JoinDate)
			return c, err
		}); err != nil {
		return schemas.Snapshot{}, err
	}

	if snap.Categories, err = scanRows(ctx, s.pool, queryCategories, schemas.RelationCategories,
		func(rows pgx.Rows) (schemas.Category, error) {
			var c schemas.Category
			err := rows.Scan(&c.ID, &c.Name)
			return c, err
		}); err != nil {
		return schemas.Snapshot{}, err
	}

	if snap.Products, err = scanRows(ctx, s.pool, queryProducts, schemas.RelationProducts,
		func(rows pgx.Rows) (schemas.Product, error) {
			var p schemas.Product
			err := rows.Scan(&p.ID, &p.Name, &p.CategoryID, &p.Price)
			return p, err
		}); err != nil {
		return schemas.Snapshot{}, err
	}

	if snap.Orders, err = scanRows(ctx, s.pool, queryOrders, schemas.RelationOrders,
		func(rows pgx.Rows) (schemas.Order, error) {
			var o schemas.Order
			err := rows.Scan(&o.ID, &o.CustomerID, &o.TS)
			return o, err
		}); err != nil {
		return schemas.Snapshot{}, err
	}

	if snap.OrderItems, err = scanRows(ctx, s.pool, queryOrderItems, schemas.RelationOrderItems,
		func(rows pgx.Rows) (schemas.OrderItem, error) {
			var it schemas.OrderItem
			err := rows.Scan(&it.OrderID, &it.ProductID, &it.Quantity)
			return it, err
		}); err != nil {
		return schemas.Snapshot{}, err
	}

	if snap.Events, err = scanRows(ctx, s.pool, queryEvents, schemas.RelationEvents,
		func(rows pgx.Rows) (schemas.Event, error) {
			var e schemas.Event
			err := rows.Scan(&e.ID, &e.CustomerID, &e.ProductID, &e.EventType, &e.TS)
			return e, err
		}); err != nil {
		return schemas.Snapshot{}, err
	}

	s.log.Debug("snapshot extracted",
		zap.Int("customers", len(snap.Customers)),
		zap.Int("categories", len(snap.Categories)),
		zap.Int("products", len(snap.Products)),
		zap.Int("orders", len(snap.Orders)),
		zap.Int("order_items", len(snap.OrderItems)),
		zap.Int("events", len(snap.Events)),
	)
	return snap, nil
}

// scanRows runs one relation's query and materializes every row through
// scan. Each call acquires and releases its own pooled connection.
func scanRows[T any](ctx context.Context, pool DBPool, sql string, rel schemas.Relation, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", rel, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		row, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", rel, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s rows: %w", rel, err)
	}
	return out, nil
}
