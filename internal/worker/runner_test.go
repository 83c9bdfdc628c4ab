package worker

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRunner_ExecutesSubmittedTasks(t *testing.T) {
	r := NewRunner(2, 8, zap.NewNop())
	defer r.Close()

	done := make(chan struct{})
	if !r.Submit("signal", func() error {
		close(done)
		return nil
	}) {
		t.Fatal("submit rejected")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestRunner_SurvivesPanicsAndErrors(t *testing.T) {
	r := NewRunner(1, 8, zap.NewNop())
	defer r.Close()

	r.Submit("panics", func() error { panic("boom") })
	r.Submit("fails", func() error { return errors.New("bad") })

	done := make(chan struct{})
	r.Submit("after", func() error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker died after panic")
	}
}

func TestRunner_FullQueueDropsTask(t *testing.T) {
	r := NewRunner(1, 1, zap.NewNop())
	defer r.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	r.Submit("block", func() error {
		close(started)
		<-release
		return nil
	})
	<-started // the single worker is now busy

	if !r.Submit("queued", func() error { return nil }) {
		t.Fatal("queue slot should accept one task")
	}
	if r.Submit("overflow", func() error { return nil }) {
		t.Fatal("submit should report drop when the queue is full")
	}
	close(release)
}
