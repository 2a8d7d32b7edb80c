package ports

import "context"

// Archiver merges object files into one linkable archive using the host
// platform's native archiving convention. Creation is all-or-nothing: on
// failure any pre-existing archive at dest is left untouched.
type Archiver interface {
	Archive(ctx context.Context, dest string, objects []string) error
}
