package http

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/bookmarkhub/pkg/logger"
)

func TestServerDefaults(t *testing.T) {
	s := NewServer(Config{}, http.NotFoundHandler(), nil)
	assert.Equal(t, "127.0.0.1:5601", s.Addr())
}

func TestServerStartStop(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	router := newTestRouter(&fakeSink{}, &fakeDispatcher{})
	s := NewServer(Config{Addr: addr}, router, logger.Discard)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		var getErr error
		resp, getErr = http.Get("http://" + addr + "/healthz")
		return getErr == nil
	}, 2*time.Second, 20*time.Millisecond)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.ErrorIs(t, <-errCh, http.ErrServerClosed)
}
