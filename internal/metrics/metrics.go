// Package metrics defines the collector interface for pipeline
// observability. Implementations live in the prometheus and memory
// subpackages; NoOp is the default when metrics are not wired.
package metrics

import "time"

// Message paths as recorded by the engine.
const (
	PathTransaction  = "transaction"
	PathQuestion     = "question"
	PathDashboard    = "dashboard"
	PathUnrecognized = "unrecognized"
)

// Extraction outcomes.
const (
	ExtractionOK       = "ok"
	ExtractionChat     = "chat"
	ExtractionFallback = "fallback"
)

// Collector records pipeline events.
type Collector interface {
	// RecordMessage counts one handled message by path.
	RecordMessage(path string)

	// RecordExtraction counts one extraction call by outcome.
	RecordExtraction(outcome string)

	// RecordComposeRetry counts one retry of the compose path.
	RecordComposeRetry()

	// RecordStoreOp records a ledger operation with its latency.
	RecordStoreOp(op string, success bool, duration time.Duration)
}

// NoOp is a Collector that discards everything.
type NoOp struct{}

// RecordMessage does nothing.
func (NoOp) RecordMessage(path string) {}

// RecordExtraction does nothing.
func (NoOp) RecordExtraction(outcome string) {}

// RecordComposeRetry does nothing.
func (NoOp) RecordComposeRetry() {}

// RecordStoreOp does nothing.
func (NoOp) RecordStoreOp(op string, success bool, duration time.Duration) {}
