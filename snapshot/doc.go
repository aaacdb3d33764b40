// Package snapshot persists point-in-time images of a register array.
// A snapshot walk reads each slot individually and atomically; the
// image as a whole is not a single atomic cut across indices, which is
// fine because replaying the WAL from the snapshot sequence converges
// the state.
package snapshot
