package graph

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/SARx613/shopgraph/api/schemas"
)

// schemaCypher holds the declarative schema setup shipped with the binary.
//
//go:embed queries.cypher
var schemaCypher string

// SchemaStatements splits the embedded schema resource into executable
// statements: parts are separated by ";", blank and comment-only parts are
// skipped. Statement order follows the file.
func SchemaStatements() []string {
	parts := strings.Split(schemaCypher, ";")
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		stmt := strings.TrimSpace(part)
		if stmt == "" || isCommentOnly(stmt) {
			continue
		}
		statements = append(statements, stmt)
	}
	return statements
}

func isCommentOnly(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "//") {
			return false
		}
	}
	return true
}

// Bulk write statements. Each consumes one batch through a single $rows list
// parameter. Upserts key on id, so replaying a batch converges instead of
// duplicating. Edge writes MATCH their endpoints first: a row whose endpoint
// is missing contributes nothing.
const (
	stmtMergeCategories = `UNWIND $rows AS row
MERGE (g:Category {id: row.id})
SET g.name = row.name`

	stmtMergeProducts = `UNWIND $rows AS row
MERGE (p:Product {id: row.id})
SET p.name = row.name, p.price = toFloat(row.price)
WITH row, p
MATCH (g:Category {id: row.category_id})
MERGE (p)-[:IN_CATEGORY]->(g)`

	stmtMergeCustomers = `UNWIND $rows AS row
MERGE (c:Customer {id: row.id})
SET c.name = row.name,
    c.join_date = CASE
        WHEN row.join_date IS NULL OR row.join_date = "" THEN NULL
        ELSE date(row.join_date)
    END`

	stmtMergeOrders = `UNWIND $rows AS row
MERGE (o:Order {id: row.id})
SET o.ts = CASE
    WHEN row.ts IS NULL OR row.ts = "" THEN NULL
    ELSE datetime(row.ts)
END
WITH row, o
MATCH (c:Customer {id: row.customer_id})
MERGE (c)-[:PLACED]->(o)`

	stmtMergeOrderItems = `UNWIND $rows AS row
MATCH (o:Order {id: row.order_id})
MATCH (p:Product {id: row.product_id})
MERGE (o)-[r:CONTAINS]->(p)
SET r.quantity = toInteger(row.quantity)`

	stmtMergeEventsTemplate = `UNWIND $rows AS row
MATCH (c:Customer {id: row.customer_id})
MATCH (p:Product {id: row.product_id})
MERGE (c)-[r:%s]->(p)
SET r.ts = CASE
    WHEN row.ts IS NULL OR row.ts = "" THEN NULL
    ELSE datetime(row.ts)
END`
)

// eventStatement renders the behavioral-event upsert for one relationship
// type. Relationship types cannot be query parameters, so the type is baked
// into the statement text.
func eventStatement(rel schemas.RelationshipType) string {
	return fmt.Sprintf(stmtMergeEventsTemplate, rel)
}
