package port

import (
	"context"
	"io"
)

// Dumper produces and consumes full dumps of the primary datastore.
type Dumper interface {
	// Dump writes a plain SQL dump of the datastore to w.
	Dump(ctx context.Context, w io.Writer) error
	// Restore replaces all data in the datastore with the dump read from r.
	Restore(ctx context.Context, r io.Reader) error
}
