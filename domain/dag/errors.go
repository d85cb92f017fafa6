package dag

import "github.com/pkg/errors"

// ErrMissingParent is returned by AddBlock when a referenced parent hash is
// not present in the DAG.
var ErrMissingParent = errors.New("missing parent")

// ErrUnknownBlock is returned by queries (Ancestors, Descendants, Anticone,
// ...) when asked about a hash the DAG has never seen.
var ErrUnknownBlock = errors.New("unknown block")
