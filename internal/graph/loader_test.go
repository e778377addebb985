package graph

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SARx613/shopgraph/api/schemas"
)

// recordingRunner captures every statement in execution order and can be
// primed to fail on a matching statement.
type recordingRunner struct {
	calls  []recordedCall
	failOn string
	err    error
}

type recordedCall struct {
	cypher string
	params map[string]any
}

func (r *recordingRunner) Run(_ context.Context, cypher string, params map[string]any) error {
	r.calls = append(r.calls, recordedCall{cypher: cypher, params: params})
	if r.failOn != "" && strings.Contains(cypher, r.failOn) {
		return r.err
	}
	return nil
}

func (r *recordingRunner) rows(call int) []any {
	return r.calls[call].params["rows"].([]any)
}

func testLoader(batchSize int) *Loader {
	return NewLoader(nil, batchSize, zap.NewNop())
}

func fullSnapshot() schemas.Snapshot {
	return schemas.Snapshot{
		Customers:  []schemas.Customer{{ID: 1, Name: "Ada", JoinDate: schemas.Text("2021-06-01")}},
		Categories: []schemas.Category{{ID: 7, Name: "books"}},
		Products:   []schemas.Product{{ID: 5, Name: "novel", CategoryID: 7, Price: "12.50"}},
		Orders:     []schemas.Order{{ID: 10, CustomerID: 1, TS: schemas.Text("2023-03-05T10:20:30Z")}},
		OrderItems: []schemas.OrderItem{{OrderID: 10, ProductID: 5, Quantity: "2"}},
		Events: []schemas.Event{
			{ID: 100, CustomerID: 1, ProductID: 5, EventType: "view", TS: schemas.Text("2023-03-05T11:00:00Z")},
			{ID: 101, CustomerID: 1, ProductID: 5, EventType: "click", TS: schemas.NoText()},
			{ID: 102, CustomerID: 1, ProductID: 5, EventType: "add_to_cart", TS: schemas.Text("2023-03-05T11:02:00Z")},
		},
	}
}

func TestLoadOrdering(t *testing.T) {
	t.Parallel()
	run := &recordingRunner{}

	stats, err := testLoader(1000).load(context.Background(), run, fullSnapshot())
	require.NoError(t, err)

	// 4 schema statements, 5 entity/edge phases, 3 event partitions.
	require.Len(t, run.calls, 12)

	for i := 0; i < 4; i++ {
		assert.Contains(t, run.calls[i].cypher, "CREATE CONSTRAINT", "schema setup runs first")
		assert.Nil(t, run.calls[i].params)
	}

	wantOrder := []string{
		"MERGE (g:Category {id: row.id})",
		"MERGE (p:Product {id: row.id})",
		"MERGE (c:Customer {id: row.id})",
		"MERGE (o:Order {id: row.id})",
		"MERGE (o)-[r:CONTAINS]->(p)",
		"[r:VIEWED]",
		"[r:CLICKED]",
		"[r:ADDED_TO_CART]",
	}
	for i, want := range wantOrder {
		assert.Contains(t, run.calls[4+i].cypher, want, "dependency order is fixed")
	}

	assert.Equal(t, Stats{Constraints: 4, Batches: 8, SkippedEvents: 0}, stats)
}

func TestLoadBatching(t *testing.T) {
	t.Parallel()
	categories := make([]schemas.Category, 2500)
	for i := range categories {
		categories[i] = schemas.Category{ID: int64(i + 1), Name: "c"}
	}
	run := &recordingRunner{}

	stats, err := testLoader(1000).load(context.Background(), run, schemas.Snapshot{Categories: categories})
	require.NoError(t, err)

	// 4 schema statements, then 3 category batches of 1000/1000/500.
	require.Len(t, run.calls, 7)
	assert.Len(t, run.rows(4), 1000)
	assert.Len(t, run.rows(5), 1000)
	assert.Len(t, run.rows(6), 500)

	first := run.rows(5)[0].(map[string]any)
	assert.Equal(t, int64(1001), first["id"], "batches preserve row order")
	assert.Equal(t, 3, stats.Batches)
}

func TestLoadRowParameters(t *testing.T) {
	t.Parallel()

	t.Run("should map absent temporal values to nil", func(t *testing.T) {
		t.Parallel()
		run := &recordingRunner{}
		snap := schemas.Snapshot{
			Customers: []schemas.Customer{
				{ID: 1, Name: "Ada", JoinDate: schemas.Text("2021-06-01")},
				{ID: 2, Name: "Bo", JoinDate: schemas.NoText()},
			},
		}

		_, err := testLoader(10).load(context.Background(), run, snap)
		require.NoError(t, err)

		rows := run.rows(4)
		require.Len(t, rows, 2)
		assert.Equal(t, map[string]any{"id": int64(1), "name": "Ada", "join_date": "2021-06-01"}, rows[0])
		assert.Equal(t, map[string]any{"id": int64(2), "name": "Bo", "join_date": nil}, rows[1])
	})

	t.Run("should pass price and quantity through as text", func(t *testing.T) {
		t.Parallel()
		run := &recordingRunner{}
		snap := schemas.Snapshot{
			Categories: []schemas.Category{{ID: 7, Name: "books"}},
			Products:   []schemas.Product{{ID: 5, Name: "novel", CategoryID: 7, Price: "12.50"}},
			OrderItems: []schemas.OrderItem{{OrderID: 10, ProductID: 5, Quantity: "2"}},
		}

		_, err := testLoader(10).load(context.Background(), run, snap)
		require.NoError(t, err)

		product := run.rows(5)[0].(map[string]any)
		assert.Equal(t, "12.50", product["price"], "coercion happens in the statement, not the client")

		item := run.rows(6)[0].(map[string]any)
		assert.Equal(t, "2", item["quantity"])
	})
}

func TestLoadEventPartitioning(t *testing.T) {
	t.Parallel()
	run := &recordingRunner{}
	snap := schemas.Snapshot{
		Events: []schemas.Event{
			{ID: 1, CustomerID: 1, ProductID: 5, EventType: "view"},
			{ID: 2, CustomerID: 1, ProductID: 5, EventType: "purchase"},
			{ID: 3, CustomerID: 2, ProductID: 5, EventType: "view"},
			{ID: 4, CustomerID: 2, ProductID: 6, EventType: "refund"},
			{ID: 5, CustomerID: 3, ProductID: 6, EventType: "purchase"},
			{ID: 6, CustomerID: 3, ProductID: 6, EventType: "add_to_cart"},
		},
	}

	stats, err := testLoader(1000).load(context.Background(), run, snap)
	require.NoError(t, err)

	// 4 schema statements, one VIEWED batch, one ADDED_TO_CART batch; no
	// CLICKED batch because no click events exist.
	require.Len(t, run.calls, 6)

	viewed := run.calls[4]
	assert.Contains(t, viewed.cypher, "[r:VIEWED]")
	require.Len(t, viewed.params["rows"], 2)
	first := viewed.params["rows"].([]any)[0].(map[string]any)
	assert.Equal(t, int64(1), first["customer_id"], "partition preserves input order")

	added := run.calls[5]
	assert.Contains(t, added.cypher, "[r:ADDED_TO_CART]")
	require.Len(t, added.params["rows"], 1)

	assert.Equal(t, 3, stats.SkippedEvents, "purchase and refund rows are not loaded")
	for _, call := range run.calls {
		assert.NotContains(t, call.cypher, "purchase")
		assert.NotContains(t, call.cypher, "refund")
	}
}

func TestPartitionEvents(t *testing.T) {
	t.Parallel()
	groups, unknown, skipped := partitionEvents([]schemas.Event{
		{ID: 1, EventType: "view"},
		{ID: 2, EventType: "refund"},
		{ID: 3, EventType: "click"},
		{ID: 4, EventType: "purchase"},
		{ID: 5, EventType: "refund"},
	})

	assert.Len(t, groups[schemas.RelViewed], 1)
	assert.Len(t, groups[schemas.RelClicked], 1)
	assert.Empty(t, groups[schemas.RelAddedToCart])
	assert.Equal(t, []string{"purchase", "refund"}, unknown, "distinct tokens, sorted")
	assert.Equal(t, 3, skipped)
}

func TestLoadFailures(t *testing.T) {
	t.Parallel()

	t.Run("should fail the run when a schema statement fails", func(t *testing.T) {
		t.Parallel()
		schemaErr := errors.New("constraint rejected")
		run := &recordingRunner{failOn: "CREATE CONSTRAINT", err: schemaErr}

		_, err := testLoader(1000).load(context.Background(), run, fullSnapshot())
		require.Error(t, err)
		assert.ErrorIs(t, err, schemaErr)
		assert.Contains(t, err.Error(), "applying schema statement")
		assert.Len(t, run.calls, 1, "nothing is loaded without schema guarantees")
	})

	t.Run("should abort on the first failing batch", func(t *testing.T) {
		t.Parallel()
		writeErr := errors.New("write refused")
		run := &recordingRunner{failOn: "MERGE (p:Product {id: row.id})", err: writeErr}

		stats, err := testLoader(1000).load(context.Background(), run, fullSnapshot())
		require.Error(t, err)
		assert.ErrorIs(t, err, writeErr)
		assert.Contains(t, err.Error(), "loading products")

		// Schema, categories, then the failed products statement.
		assert.Len(t, run.calls, 6)
		assert.Equal(t, 1, stats.Batches, "only the categories batch completed")
	})
}
