// Package domain defines the data structures and rules of the wedding RSVP service.
// It holds the guest, family, photo and vote audit models, the attendance normalizer
// that reconciles the successive RSVP formats into one AttendanceState, and the
// repository interfaces implemented by the storage layer.
//
// Nothing in this package performs I/O, so the storage and HTTP layers can depend on
// it without depending on each other.
package domain
