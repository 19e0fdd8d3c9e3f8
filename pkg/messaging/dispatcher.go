package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kart-io/bookmarkhub/observability"
	"github.com/kart-io/bookmarkhub/pkg/bookmark"
	"github.com/kart-io/bookmarkhub/pkg/logger"
)

// Summary aggregates the per-client outcomes of one dispatch. It is logged
// when the dispatch completes and never returned to the ingestion caller.
type Summary struct {
	DispatchID string
	Category   string
	Targeted   int
	Sent       int
	Failed     int
	Skipped    int
}

// Dispatcher fans a bookmark event out to the clients its category routes
// to. Registry and table are immutable after construction, so concurrent
// dispatches share them without locking.
type Dispatcher struct {
	registry *Registry
	table    Table
	log      logger.Logger
	tel      *observability.TelemetryProvider
}

// NewDispatcher creates a dispatcher. A nil telemetry provider degrades to
// the no-op provider.
func NewDispatcher(registry *Registry, table Table, log logger.Logger, tel *observability.TelemetryProvider) *Dispatcher {
	if tel == nil {
		tel, _ = observability.NewTelemetryProvider(nil)
	}
	return &Dispatcher{
		registry: registry,
		table:    table,
		log:      log,
		tel:      tel,
	}
}

// SendAsync resolves the bookmark's category against the routing table and,
// when at least one client is routed, launches a single goroutine that
// delivers to each routed client in table order. It returns before any
// network I/O begins and exposes no result; outcomes are observable only
// through logs and telemetry. With no matching route it returns immediately
// without spawning anything.
func (d *Dispatcher) SendAsync(bm bookmark.Bookmark) {
	dispatchID := uuid.NewString()
	names := d.table.Resolve(bm.Category)
	if len(names) == 0 {
		d.log.Info("no messaging route for category, nothing to dispatch",
			"dispatch_id", dispatchID, "category", bm.Category)
		return
	}

	d.log.Info("dispatch resolved",
		"dispatch_id", dispatchID, "category", bm.Category, "clients", names)

	go d.deliver(dispatchID, bm, names)
}

// deliver visits the routed clients sequentially. It runs detached from the
// request that triggered it: the context is fresh, so neither caller
// cancellation nor process shutdown interrupts an in-flight dispatch.
func (d *Dispatcher) deliver(dispatchID string, bm bookmark.Bookmark, names []string) Summary {
	ctx := context.Background()
	d.tel.DispatchStarted(ctx)
	defer d.tel.DispatchFinished(ctx)

	ctx, span := d.tel.TraceDispatch(ctx, dispatchID, bm.Category, len(names))
	defer span.End()

	summary := Summary{
		DispatchID: dispatchID,
		Category:   bm.Category,
		Targeted:   len(names),
	}

	for _, name := range names {
		client, ok := d.registry.Get(name)
		if !ok {
			summary.Skipped++
			d.log.Warn("routed client not registered, skipping",
				"dispatch_id", dispatchID, "client", name)
			continue
		}
		if !client.Enabled() {
			summary.Skipped++
			d.log.Debug("client disabled, skipping",
				"dispatch_id", dispatchID, "client", name)
			continue
		}

		sendCtx, sendSpan := d.tel.TraceClientSend(ctx, name)
		start := time.Now()
		if client.Send(sendCtx, bm) {
			summary.Sent++
			d.tel.RecordMessageSent(sendCtx, name, time.Since(start))
			d.tel.SetSpanSuccess(sendSpan)
			d.log.Info("message sent",
				"dispatch_id", dispatchID, "client", name)
		} else {
			summary.Failed++
			d.tel.RecordMessageFailed(sendCtx, name, time.Since(start))
			d.log.Warn("message delivery failed",
				"dispatch_id", dispatchID, "client", name)
		}
		sendSpan.End()
	}

	d.log.Info("dispatch completed",
		"dispatch_id", dispatchID,
		"category", bm.Category,
		"targeted", summary.Targeted,
		"sent", summary.Sent,
		"failed", summary.Failed,
		"skipped", summary.Skipped)

	return summary
}
