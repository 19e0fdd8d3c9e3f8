package sink

import (
	"context"

	"github.com/kart-io/bookmarkhub/pkg/bookmark"
)

// None discards every event. It keeps the ingestion path working when no
// event store is deployed.
type None struct{}

// NewNone creates the discarding sink.
func NewNone() *None { return &None{} }

// Store accepts and drops the event.
func (*None) Store(context.Context, bookmark.Bookmark) error { return nil }

// Close is a no-op.
func (*None) Close() error { return nil }
