package leaktest

import (
	"sync"
	"testing"
	"time"
)

func TestCheckNoGoroutineLeak_CleanFunction(t *testing.T) {
	CheckNoGoroutineLeak(t, func() {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(5 * time.Millisecond)
		}()
		wg.Wait()
	})
}

func TestGoroutineChecker_Tolerance(t *testing.T) {
	checker := NewGoroutineChecker(t)

	done := make(chan struct{})
	go func() {
		<-done
	}()

	// One goroutine is still parked; tolerance absorbs it
	checker.Check(1)
	close(done)
}
