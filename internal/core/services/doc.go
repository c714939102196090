// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The pipeline runs collection, deduplication, verification and handoff
// in that order. Every fan-out point uses SettleAll, so one failing branch
// never cancels or blocks its siblings.
package services
