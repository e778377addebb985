package schemas

// -- Graph Vocabulary --
// These types name the entities and relationships as they exist in the graph
// database. The load statements are written against exactly this vocabulary,
// so changing a value here changes the shape of the loaded graph.

// NodeLabel identifies a category of node in the graph.
type NodeLabel string

const (
	LabelCategory NodeLabel = "Category"
	LabelProduct  NodeLabel = "Product"
	LabelCustomer NodeLabel = "Customer"
	LabelOrder    NodeLabel = "Order"
)

// RelationshipType identifies the nature of a connection between two nodes.
type RelationshipType string

const (
	RelInCategory  RelationshipType = "IN_CATEGORY"
	RelPlaced      RelationshipType = "PLACED"
	RelContains    RelationshipType = "CONTAINS"
	RelViewed      RelationshipType = "VIEWED"
	RelClicked     RelationshipType = "CLICKED"
	RelAddedToCart RelationshipType = "ADDED_TO_CART"
)

// eventRelationships maps a source event_type token to the relationship it
// becomes. Tokens not listed here are not represented in the graph.
var eventRelationships = map[string]RelationshipType{
	"view":        RelViewed,
	"click":       RelClicked,
	"add_to_cart": RelAddedToCart,
}

// RelationshipForEvent resolves an event_type token to its graph
// relationship. The second return is false for unrecognized tokens; callers
// decide whether to count or skip those rows.
func RelationshipForEvent(eventType string) (RelationshipType, bool) {
	rel, ok := eventRelationships[eventType]
	return rel, ok
}

// EventTypes returns the recognized event_type tokens. Order is not
// significant.
func EventTypes() []string {
	types := make([]string, 0, len(eventRelationships))
	for t := range eventRelationships {
		types = append(types, t)
	}
	return types
}
