package pgml

import (
	"fmt"
	"strings"

	"gorm.io/gorm/clause"
)

// DistanceFunction computes a per-row distance between a stored vector
// column and a query vector. Smaller is nearer.
type DistanceFunction interface {
	Distance(column, query clause.Expression) clause.Expression
}

// Distance is a pgvector distance operator.
type Distance string

// Distance operators provided by pgvector.
const (
	L2Distance      Distance = "<->"
	MaxInnerProduct Distance = "<#>"
	CosineDistance  Distance = "<=>"
	L1Distance      Distance = "<+>"
	HammingDistance Distance = "<~>"
	JaccardDistance Distance = "<%>"
)

// Distance implements DistanceFunction as "column <op> query".
func (d Distance) Distance(column, query clause.Expression) clause.Expression {
	return clause.Expr{
		SQL:  "? " + string(d) + " ?",
		Vars: []any{column, query},
	}
}

// ParseDistance maps a metric name to its operator.
func ParseDistance(name string) (Distance, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cosine":
		return CosineDistance, nil
	case "l2", "euclidean":
		return L2Distance, nil
	case "inner_product", "max_inner_product", "ip":
		return MaxInnerProduct, nil
	case "l1", "manhattan", "taxicab":
		return L1Distance, nil
	case "hamming":
		return HammingDistance, nil
	case "jaccard":
		return JaccardDistance, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownDistance, name)
	}
}
