package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMonitoringStartReturnsWithoutBlocking(t *testing.T) {
	t.Setenv("PROMETHEUS_PORT", "0")

	// Services start sequentially, so Start must hand the listener off to a
	// goroutine and return instead of serving in the caller.
	svc := &MonitoringService{}
	done := make(chan error, 1)
	go func() { done <- svc.Start() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return; the metrics listener must run in the background")
	}

	time.Sleep(50 * time.Millisecond)
	svc.Shutdown()
}
