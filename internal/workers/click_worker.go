// Package workers runs the asynchronous click-processing pool.
package workers

import (
	"log"
	"sync"

	"github.com/toolsuite/shortener/internal/models"
	"github.com/toolsuite/shortener/internal/services"
)

// StartClickWorkers launches a pool of worker goroutines to process click
// events asynchronously. The redirect path only does a non-blocking send
// into clickEventsChan, so persistence never delays a user-facing redirect.
// The returned WaitGroup completes once the channel is closed and every
// buffered event has been persisted; shutdown waits on it to drain the pool.
func StartClickWorkers(workerCount int, clickEventsChan <-chan models.ClickEvent, clicks *services.ClickService) *sync.WaitGroup {
	log.Printf("Starting %d click worker(s)...", workerCount)
	var wg sync.WaitGroup
	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func() {
			defer wg.Done()
			clickWorker(clickEventsChan, clicks)
		}()
	}
	return &wg
}

// clickWorker drains the channel until it is closed during shutdown.
// Recording failures are logged and swallowed: the redirect that produced
// the event already completed.
func clickWorker(clickEventsChan <-chan models.ClickEvent, clicks *services.ClickService) {
	for event := range clickEventsChan {
		if err := clicks.RecordClick(event); err != nil {
			log.Printf("ERROR: %v", err)
		}
	}
}
