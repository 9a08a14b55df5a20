package guard

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestTryAcquire_RefusesWhileHeld(t *testing.T) {
	g := New()
	release, ok := g.TryAcquire(CreateKey(5))
	if !ok {
		t.Fatal("expected first acquire to succeed")
	}
	if _, ok := g.TryAcquire("create:5"); ok {
		t.Fatal("expected second acquire to be refused")
	}
	if _, ok := g.TryAcquire(UpdateKey("5")); !ok {
		t.Fatal("different target must not be blocked")
	}
	release()
	release()
	if g.Busy("create:5") {
		t.Fatal("expected key released")
	}
	if _, ok := g.TryAcquire("create:5"); !ok {
		t.Fatal("expected acquire after release")
	}
}

func TestTryAcquire_Concurrent(t *testing.T) {
	g := New()
	var wins int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok := g.TryAcquire(DeleteKey("x")); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	close(start)
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}
