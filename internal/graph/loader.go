// Package graph writes relational snapshots into the Neo4j property graph
// and exposes the store's readiness probe.
package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/SARx613/shopgraph/api/schemas"
	"github.com/SARx613/shopgraph/internal/batch"
	"github.com/SARx613/shopgraph/internal/config"
)

// Connect opens a driver against the configured graph store. The driver is
// lazy: no connection is made until the first session runs, so readiness is
// checked separately through Probe. The caller closes the driver.
func Connect(cfg config.Neo4jConfig) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating graph driver: %w", err)
	}
	return driver, nil
}

// runner executes one Cypher statement and waits for the server to finish
// consuming it. Load runs against a session-backed runner; tests substitute
// a recorder.
type runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) error
}

type sessionRunner struct {
	session neo4j.SessionWithContext
}

func (r sessionRunner) Run(ctx context.Context, cypher string, params map[string]any) error {
	result, err := r.session.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}

// Stats summarizes one load.
type Stats struct {
	Constraints   int
	Batches       int
	SkippedEvents int
}

// Loader writes snapshots into the graph in dependency order.
type Loader struct {
	driver    neo4j.DriverWithContext
	batchSize int
	log       *zap.Logger
}

// NewLoader builds a Loader over an open driver. batchSize bounds the rows
// sent per statement.
func NewLoader(driver neo4j.DriverWithContext, batchSize int, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		driver:    driver,
		batchSize: batchSize,
		log:       logger.Named("graph"),
	}
}

// Probe performs a minimal round trip against the graph store.
func (l *Loader) Probe(ctx context.Context) error {
	session := l.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, "RETURN 1", nil)
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}

// Load writes the snapshot into the graph. One write session spans the whole
// load; phases run in dependency order and the first failed statement aborts
// the run with earlier writes left in place. Re-running converges because
// every write is an upsert.
func (l *Loader) Load(ctx context.Context, snap schemas.Snapshot) (Stats, error) {
	session := l.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	return l.load(ctx, sessionRunner{session: session}, snap)
}

func (l *Loader) load(ctx context.Context, run runner, snap schemas.Snapshot) (Stats, error) {
	var stats Stats

	for _, stmt := range SchemaStatements() {
		if err := run.Run(ctx, stmt, nil); err != nil {
			return stats, fmt.Errorf("applying schema statement: %w", err)
		}
		stats.Constraints++
	}
	l.log.Debug("schema applied", zap.Int("statements", stats.Constraints))

	phases := []struct {
		name string
		run  func() (int, error)
	}{
		{"categories", func() (int, error) {
			return runBatches(ctx, run, stmtMergeCategories, snap.Categories, l.batchSize, categoryRow)
		}},
		{"products", func() (int, error) {
			return runBatches(ctx, run, stmtMergeProducts, snap.Products, l.batchSize, productRow)
		}},
		{"customers", func() (int, error) {
			return runBatches(ctx, run, stmtMergeCustomers, snap.Customers, l.batchSize, customerRow)
		}},
		{"orders", func() (int, error) {
			return runBatches(ctx, run, stmtMergeOrders, snap.Orders, l.batchSize, orderRow)
		}},
		{"order items", func() (int, error) {
			return runBatches(ctx, run, stmtMergeOrderItems, snap.OrderItems, l.batchSize, orderItemRow)
		}},
	}
	for _, phase := range phases {
		n, err := phase.run()
		stats.Batches += n
		if err != nil {
			return stats, fmt.Errorf("loading %s: %w", phase.name, err)
		}
		l.log.Debug("phase loaded", zap.String("phase", phase.name), zap.Int("batches", n))
	}

	groups, unknown, skipped := partitionEvents(snap.Events)
	stats.SkippedEvents = skipped
	if skipped > 0 {
		l.log.Warn("unrecognized event types skipped",
			zap.Int("count", skipped),
			zap.Strings("event_types", unknown),
		)
	}
	for _, rel := range []schemas.RelationshipType{schemas.RelViewed, schemas.RelClicked, schemas.RelAddedToCart} {
		n, err := runBatches(ctx, run, eventStatement(rel), groups[rel], l.batchSize, eventRow)
		stats.Batches += n
		if err != nil {
			return stats, fmt.Errorf("loading %s events: %w", rel, err)
		}
	}

	return stats, nil
}

// runBatches sends rows through one statement in order-preserving batches.
// A batch is not sent until the previous one succeeded.
func runBatches[T any](ctx context.Context, run runner, stmt string, rows []T, size int, toParam func(T) map[string]any) (int, error) {
	batches := 0
	for _, chunk := range batch.Chunk(rows, size) {
		params := make([]any, 0, len(chunk))
		for _, row := range chunk {
			params = append(params, toParam(row))
		}
		if err := run.Run(ctx, stmt, map[string]any{"rows": params}); err != nil {
			return batches, err
		}
		batches++
	}
	return batches, nil
}

// partitionEvents groups events by the relationship they become, preserving
// input order inside each group. unknown lists the distinct unrecognized
// tokens, sorted for stable logging; skipped counts their rows.
func partitionEvents(events []schemas.Event) (map[schemas.RelationshipType][]schemas.Event, []string, int) {
	groups := make(map[schemas.RelationshipType][]schemas.Event)
	seen := make(map[string]bool)
	var unknown []string
	skipped := 0

	for _, e := range events {
		rel, ok := schemas.RelationshipForEvent(e.EventType)
		if !ok {
			skipped++
			if !seen[e.EventType] {
				seen[e.EventType] = true
				unknown = append(unknown, e.EventType)
			}
			continue
		}
		groups[rel] = append(groups[rel], e)
	}
	sort.Strings(unknown)
	return groups, unknown, skipped
}

func categoryRow(c schemas.Category) map[string]any {
	return map[string]any{"id": c.ID, "name": c.Name}
}

func productRow(p schemas.Product) map[string]any {
	return map[string]any{"id": p.ID, "name": p.Name, "category_id": p.CategoryID, "price": p.Price}
}

func customerRow(c schemas.Customer) map[string]any {
	return map[string]any{"id": c.ID, "name": c.Name, "join_date": textOrNil(c.JoinDate)}
}

func orderRow(o schemas.Order) map[string]any {
	return map[string]any{"id": o.ID, "customer_id": o.CustomerID, "ts": textOrNil(o.TS)}
}

func orderItemRow(it schemas.OrderItem) map[string]any {
	return map[string]any{"order_id": it.OrderID, "product_id": it.ProductID, "quantity": it.Quantity}
}

func eventRow(e schemas.Event) map[string]any {
	return map[string]any{"customer_id": e.CustomerID, "product_id": e.ProductID, "ts": textOrNil(e.TS)}
}

// textOrNil maps the absent marker to a Cypher NULL parameter.
func textOrNil(v pgtype.Text) any {
	if !v.Valid {
		return nil
	}
	return v.String
}
