package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartWorkerStopWaitsForReturn(t *testing.T) {
	var finished atomic.Bool
	started := make(chan struct{})
	stop := startWorker(context.Background(), func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
	})
	<-started

	stop()
	assert.True(t, finished.Load())
	assert.NotPanics(t, stop)
}

func TestStartWorkerStopAfterEarlyReturn(t *testing.T) {
	stop := startWorker(context.Background(), func(context.Context) {})
	assert.NotPanics(t, stop)
}
