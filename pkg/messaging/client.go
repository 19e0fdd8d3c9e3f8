// Package messaging contains the dispatch core: the messaging client
// interface, message formatting, the category routing table, the client
// registry, and the asynchronous dispatcher.
package messaging

import (
	"context"

	"github.com/kart-io/bookmarkhub/pkg/bookmark"
)

// Client is one configured integration with an external chat service.
// Implementations are constructed once at startup from a validated config
// fragment and live for the process lifetime.
type Client interface {
	// Name returns the unique client name used in routing rules.
	Name() string

	// Enabled reports whether the client takes part in dispatch.
	Enabled() bool

	// Send delivers one bookmark message. It never panics and never returns
	// an error: every failure path is caught, logged, and reported as false.
	// A disabled client or a category with no targets is a no-op returning
	// false without network I/O.
	Send(ctx context.Context, bm bookmark.Bookmark) bool
}
