// Package core defines the domain model shared by the SOCForge detection
// and correlation engines.
//
// The core package provides:
//   - Domain types (Event, DetectionRule, Alert, Incident, TimelineEntry)
//   - Ordered enumerations for severity, kill-chain phase and status values
//   - Validation methods enforcing rule invariants
//   - The error taxonomy used by both engines
//
// Both engines are pure transformations over these types: events flow in,
// alerts and incidents flow out, and the caller owns persistence. Types in
// this package carry no references to storage or transport layers.
package core
