package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker checks search index availability. A disabled index is not
// checked at all; running without one is a supported configuration.
type IndexChecker interface {
	Enabled() bool
	Ping(ctx context.Context) error
}
