package bridge

import "math"

// Options carries the handful of constants called out as "should become
// configurable in a future revision", surfaced here as a plain struct
// field rather than a new call argument, so existing call shapes
// (Transfer, Call, Step) are untouched.
type Options struct {
	// ValsetInterval is the minimum elapsed time (seconds, by the source
	// chain's clock) between one valset's CreateTime and the next before
	// Step will rotate the signatory set.
	ValsetInterval uint64
	// BatchTimeout is the timeout attached to batches produced by Transfer.
	// Defaults to the maximum representable value, matching the reference
	// implementation's "not yet configurable" placeholder.
	BatchTimeout uint64
}

// DefaultOptions returns the values this module shipped with before any
// of this configurability was added.
func DefaultOptions() Options {
	return Options{
		ValsetInterval: 60 * 60 * 24,
		BatchTimeout:   math.MaxUint64,
	}
}
