package messaging

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/bookmarkhub/pkg/bookmark"
	"github.com/kart-io/bookmarkhub/pkg/logger"
)

// fakeClient records Send calls and returns a fixed result.
type fakeClient struct {
	name    string
	enabled bool
	result  bool

	mu    sync.Mutex
	calls []bookmark.Bookmark
	gate  chan struct{}
	visit *visitLog
}

func newFakeClient(name string, enabled, result bool) *fakeClient {
	return &fakeClient{name: name, enabled: enabled, result: result}
}

func (f *fakeClient) Name() string  { return f.name }
func (f *fakeClient) Enabled() bool { return f.enabled }

func (f *fakeClient) Send(_ context.Context, bm bookmark.Bookmark) bool {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.calls = append(f.calls, bm)
	f.mu.Unlock()
	if f.visit != nil {
		f.visit.record(f.name)
	}
	return f.result
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// visitLog tracks the order clients were visited in across fakes.
type visitLog struct {
	mu    sync.Mutex
	names []string
}

func (v *visitLog) record(name string) {
	v.mu.Lock()
	v.names = append(v.names, name)
	v.mu.Unlock()
}

func (v *visitLog) snapshot() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.names...)
}

func registryWith(clients ...*fakeClient) *Registry {
	reg := NewRegistry()
	for _, c := range clients {
		reg.Add(c)
	}
	return reg
}

var testBookmark = bookmark.Bookmark{URL: "https://e.com", Title: "Hi", Category: "work"}

func TestDeliver_SkipsUnregisteredClient(t *testing.T) {
	matrix := newFakeClient(NameMatrix, true, true)
	table := Table{"work": {NameMatrix, NameDiscord}}
	d := NewDispatcher(registryWith(matrix), table, logger.Discard, nil)

	sum := d.deliver("d1", testBookmark, table.Resolve("work"))

	assert.Equal(t, 2, sum.Targeted)
	assert.Equal(t, 1, sum.Sent)
	assert.Equal(t, 0, sum.Failed)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, matrix.callCount())
}

func TestDeliver_SkipsDisabledClient(t *testing.T) {
	matrix := newFakeClient(NameMatrix, true, true)
	signal := newFakeClient(NameSignal, false, true)
	table := Table{"work": {NameMatrix, NameSignal}}
	d := NewDispatcher(registryWith(matrix, signal), table, logger.Discard, nil)

	sum := d.deliver("d1", testBookmark, table.Resolve("work"))

	assert.Equal(t, 1, sum.Sent)
	assert.Equal(t, 1, sum.Skipped)
	assert.Zero(t, signal.callCount(), "disabled client must not be called")
}

func TestDeliver_FailureIsolation(t *testing.T) {
	failing := newFakeClient(NameMatrix, true, false)
	healthy := newFakeClient(NameDiscord, true, true)
	table := Table{"work": {NameMatrix, NameDiscord}}
	d := NewDispatcher(registryWith(failing, healthy), table, logger.Discard, nil)

	sum := d.deliver("d1", testBookmark, table.Resolve("work"))

	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Sent)
	assert.Equal(t, 1, healthy.callCount(), "a failing sibling must not block delivery")
}

func TestDeliver_VisitsClientsInTableOrder(t *testing.T) {
	visits := &visitLog{}
	var clients []*fakeClient
	for _, name := range []string{NameWhatsApp, NameMatrix, NameSignal} {
		c := newFakeClient(name, true, true)
		c.visit = visits
		clients = append(clients, c)
	}
	table := Table{"work": {NameWhatsApp, NameMatrix, NameSignal}}
	d := NewDispatcher(registryWith(clients...), table, logger.Discard, nil)

	d.deliver("d1", testBookmark, table.Resolve("work"))

	assert.Equal(t, []string{NameWhatsApp, NameMatrix, NameSignal}, visits.snapshot())
}

func TestSendAsync_NoRouteSpawnsNothing(t *testing.T) {
	matrix := newFakeClient(NameMatrix, true, true)
	table := Table{"work": {NameMatrix}}
	d := NewDispatcher(registryWith(matrix), table, logger.Discard, nil)

	d.SendAsync(bookmark.Bookmark{URL: "https://e.com", Title: "Hi", Category: "personal"})

	assert.Never(t, func() bool { return matrix.callCount() > 0 },
		100*time.Millisecond, 10*time.Millisecond,
		"unrouted category must produce zero delivery attempts")
}

func TestSendAsync_ReturnsBeforeDelivery(t *testing.T) {
	matrix := newFakeClient(NameMatrix, true, true)
	matrix.gate = make(chan struct{})
	table := Table{"work": {NameMatrix}}
	d := NewDispatcher(registryWith(matrix), table, logger.Discard, nil)

	done := make(chan struct{})
	go func() {
		d.SendAsync(testBookmark)
		close(done)
	}()

	select {
	case <-done:
		// Returned while the client was still gated: the caller was not
		// blocked by delivery.
	case <-time.After(time.Second):
		t.Fatal("SendAsync blocked on client I/O")
	}

	close(matrix.gate)
	assert.Eventually(t, func() bool { return matrix.callCount() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestSendAsync_EmptyCategoryUsesDefaultRoute(t *testing.T) {
	whatsapp := newFakeClient(NameWhatsApp, true, true)
	table := Table{DefaultRoute: {NameWhatsApp}}
	d := NewDispatcher(registryWith(whatsapp), table, logger.Discard, nil)

	d.SendAsync(bookmark.Bookmark{URL: "https://e.com", Title: "Hi"})

	assert.Eventually(t, func() bool { return whatsapp.callCount() == 1 },
		time.Second, 10*time.Millisecond)
}
