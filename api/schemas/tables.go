package schemas

import "github.com/jackc/pgx/v5/pgtype"

// Relation names a source table mirrored into the graph.
type Relation string

// The six source relations, in extraction order. Extraction, normalization
// and loading all walk them in this order; the loader additionally depends on
// it (categories before products, customers before orders, and so on).
const (
	RelationCustomers  Relation = "customers"
	RelationCategories Relation = "categories"
	RelationProducts   Relation = "products"
	RelationOrders     Relation = "orders"
	RelationOrderItems Relation = "order_items"
	RelationEvents     Relation = "events"
)

// Relations returns the fixed extraction order.
func Relations() []Relation {
	return []Relation{
		RelationCustomers,
		RelationCategories,
		RelationProducts,
		RelationOrders,
		RelationOrderItems,
		RelationEvents,
	}
}

// -- Row Models --
// One value type per relation, matching the source columns. Temporal columns
// are carried as pgtype.Text: the source stores them as free-form text, and
// Valid=false is the explicit "no value" marker (distinct from an empty
// string). Price and quantity stay textual end to end; the load statements
// coerce them server-side so a numeric or string source column behaves the
// same.

// Customer is a row of the customers relation.
type Customer struct {
	ID       int64
	Name     string
	JoinDate pgtype.Text
}

// Category is a row of the categories relation.
type Category struct {
	ID   int64
	Name string
}

// Product is a row of the products relation.
type Product struct {
	ID         int64
	Name       string
	CategoryID int64
	Price      string
}

// Order is a row of the orders relation.
type Order struct {
	ID         int64
	CustomerID int64
	TS         pgtype.Text
}

// OrderItem is a row of the order_items relation.
type OrderItem struct {
	OrderID   int64
	ProductID int64
	Quantity  string
}

// Event is a row of the events relation. EventType decides which
// relationship (if any) the row becomes in the graph.
type Event struct {
	ID         int64
	CustomerID int64
	ProductID  int64
	EventType  string
	TS         pgtype.Text
}

// Snapshot is a full point-in-time read of the source relations. A nil slice
// means the relation was not captured; consumers treat it as empty.
type Snapshot struct {
	Customers  []Customer
	Categories []Category
	Products   []Product
	Orders     []Order
	OrderItems []OrderItem
	Events     []Event
}

// Len reports the number of captured rows for one relation.
func (s Snapshot) Len(rel Relation) int {
	switch rel {
	case RelationCustomers:
		return len(s.Customers)
	case RelationCategories:
		return len(s.Categories)
	case RelationProducts:
		return len(s.Products)
	case RelationOrders:
		return len(s.Orders)
	case RelationOrderItems:
		return len(s.OrderItems)
	case RelationEvents:
		return len(s.Events)
	}
	return 0
}

// Total reports the number of captured rows across all relations.
func (s Snapshot) Total() int {
	n := 0
	for _, rel := range Relations() {
		n += s.Len(rel)
	}
	return n
}

// Text wraps a present temporal value.
func Text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

// NoText is the absent temporal value.
func NoText() pgtype.Text {
	return pgtype.Text{}
}
