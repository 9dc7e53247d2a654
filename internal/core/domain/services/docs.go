// Package services provides domain services for the split-shipment system.
// Domain services implement business computations that span multiple value
// objects and do not naturally belong to a single aggregate root. They are
// pure: no I/O, no clock, no randomness.
package services
