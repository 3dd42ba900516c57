package domain

import "context"

// Store hands out request-scoped sessions. Every acquired Session must be
// closed by the caller.
type Store interface {
	Acquire(ctx context.Context) (Session, error)
}

// Session runs read queries over a single database connection.
type Session interface {
	WarpHallStalls(ctx context.Context) ([]WarpHallStall, error)
	WarpHallStall(ctx context.Context, n StallNumber) (WarpHallStall, error)

	// MallFootprintSupported reports whether the_mall has footprint columns.
	MallFootprintSupported(ctx context.Context) (bool, error)
	MallStalls(ctx context.Context, schema MallSchema) ([]MallStall, error)
	MallStall(ctx context.Context, schema MallSchema, key MallKey) (MallStall, error)
	MallReviews(ctx context.Context, key MallKey) ([]Review, error)

	Close() error
}

// StoreStatus is the outcome of a connectivity check.
type StoreStatus string

const (
	StoreConnected    StoreStatus = "connected"
	StoreDisconnected StoreStatus = "disconnected"
)
