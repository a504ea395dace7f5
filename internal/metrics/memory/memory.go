// Package memory is a counting metrics.Collector for tests.
package memory

import (
	"sync"
	"time"
)

// Collector counts events in maps guarded by a mutex.
type Collector struct {
	mu             sync.Mutex
	Messages       map[string]int
	Extractions    map[string]int
	ComposeRetries int
	StoreOps       map[string]int
}

// New creates an empty in-memory collector.
func New() *Collector {
	return &Collector{
		Messages:    make(map[string]int),
		Extractions: make(map[string]int),
		StoreOps:    make(map[string]int),
	}
}

// RecordMessage counts one handled message by path.
func (c *Collector) RecordMessage(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Messages[path]++
}

// RecordExtraction counts one extraction call by outcome.
func (c *Collector) RecordExtraction(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Extractions[outcome]++
}

// RecordComposeRetry counts one retry of the compose path.
func (c *Collector) RecordComposeRetry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ComposeRetries++
}

// RecordStoreOp counts one ledger operation by op name.
func (c *Collector) RecordStoreOp(op string, success bool, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.StoreOps[op]++
}

// MessageCount returns the count for one path.
func (c *Collector) MessageCount(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Messages[path]
}
