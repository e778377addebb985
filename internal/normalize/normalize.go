// Package normalize canonicalizes the temporal columns of a snapshot before
// it is loaded into the graph: customer join dates become "YYYY-MM-DD" and
// order/event timestamps become UTC "YYYY-MM-DDTHH:MM:SSZ". Values that
// cannot be parsed are replaced with the absent marker rather than failing
// the run.
package normalize

import (
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/SARx613/shopgraph/api/schemas"
)

// Normalizer rewrites temporal columns to their canonical forms.
type Normalizer struct {
	log *zap.Logger
}

// New constructs a Normalizer. A nil logger is replaced with a no-op logger.
func New(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{log: logger.Named("normalize")}
}

// Snapshot returns a normalized copy of the input. The input is never
// mutated, and normalization never fails: a present value that no layout can
// parse degrades to the absent marker. Degradations are counted per column
// and logged at warn. A nil relation slice stays nil.
func (n *Normalizer) Snapshot(in schemas.Snapshot) schemas.Snapshot {
	out := schemas.Snapshot{
		Customers:  copyRows(in.Customers),
		Categories: copyRows(in.Categories),
		Products:   copyRows(in.Products),
		Orders:     copyRows(in.Orders),
		OrderItems: copyRows(in.OrderItems),
		Events:     copyRows(in.Events),
	}

	var dropped int
	for i := range out.Customers {
		out.Customers[i].JoinDate, dropped = normalizeValue(out.Customers[i].JoinDate, ParseDate, dropped)
	}
	n.logDropped(schemas.RelationCustomers, "join_date", dropped)

	dropped = 0
	for i := range out.Orders {
		out.Orders[i].TS, dropped = normalizeValue(out.Orders[i].TS, ParseTimestamp, dropped)
	}
	n.logDropped(schemas.RelationOrders, "ts", dropped)

	dropped = 0
	for i := range out.Events {
		out.Events[i].TS, dropped = normalizeValue(out.Events[i].TS, ParseTimestamp, dropped)
	}
	n.logDropped(schemas.RelationEvents, "ts", dropped)

	return out
}

// normalizeValue canonicalizes one value. An already-absent value passes
// through; a present value that fails to parse becomes absent and bumps the
// degradation count.
func normalizeValue(v pgtype.Text, parse func(string) (string, bool), dropped int) (pgtype.Text, int) {
	if !v.Valid {
		return pgtype.Text{}, dropped
	}
	canonical, ok := parse(v.String)
	if !ok {
		return pgtype.Text{}, dropped + 1
	}
	return pgtype.Text{String: canonical, Valid: true}, dropped
}

func (n *Normalizer) logDropped(rel schemas.Relation, column string, count int) {
	if count == 0 {
		return
	}
	n.log.Warn("unparsable temporal values dropped",
		zap.String("relation", string(rel)),
		zap.String("column", column),
		zap.Int("count", count),
	)
}

func copyRows[T any](rows []T) []T {
	if rows == nil {
		return nil
	}
	out := make([]T, len(rows))
	copy(out, rows)
	return out
}
