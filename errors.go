package pgml

import "errors"

// Exported errors for library consumers.
var (
	// ErrSourceFieldNotFound indicates a column's source field does not exist
	// on the model being saved.
	ErrSourceFieldNotFound = errors.New("pgml: field to embed does not exist")

	// ErrColumnNotFound indicates a registered embedding column has no
	// matching field on the model.
	ErrColumnNotFound = errors.New("pgml: embedding column does not exist")

	// ErrNotEmbeddingColumn indicates a search referenced a column that is not
	// a registered embedding column.
	ErrNotEmbeddingColumn = errors.New("pgml: not an embedding column")

	// ErrNotRegistered indicates the model type has no registered columns.
	ErrNotRegistered = errors.New("pgml: model not registered")

	// ErrAlreadyRegistered indicates the model type was registered twice.
	ErrAlreadyRegistered = errors.New("pgml: model already registered")

	// ErrDuplicateColumn indicates two columns share a name.
	ErrDuplicateColumn = errors.New("pgml: duplicate embedding column")

	// ErrNoColumns indicates a registration without any columns.
	ErrNoColumns = errors.New("pgml: no embedding columns")

	// ErrInvalidParameters indicates a parameter mapping that cannot be
	// encoded as JSON.
	ErrInvalidParameters = errors.New("pgml: parameters are not JSON-serializable")

	// ErrUnknownDistance indicates a distance metric name ParseDistance does
	// not recognise.
	ErrUnknownDistance = errors.New("pgml: unknown distance")

	// ErrPendingEmbedding indicates a Vector holding an unevaluated embedding
	// was passed somewhere only a concrete vector is accepted.
	ErrPendingEmbedding = errors.New("pgml: vector holds a pending embedding")
)
