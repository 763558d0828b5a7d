package genome

import "fmt"

// RangeError reports the first candidate position that falls outside the
// inclusive envelope of the two parent codes.
type RangeError struct {
	Index int
	Min   uint8
	Value uint8
	Max   uint8
}

func (e RangeError) Error() string {
	return fmt.Sprintf("code position %d value %d outside parent envelope [%d,%d]", e.Index, e.Value, e.Min, e.Max)
}

// Validate checks that every position of candidate lies within the closed
// interval bounded by the min and max of the two parent codes at that
// position. It fails at the first violating position, returning a RangeError
// with the offending index and bounds. Pure function; reused for both
// derived creation and mutation.
func Validate(parentA, parentB, candidate Code) error {
	if len(parentA) != len(parentB) {
		return fmt.Errorf("parent code lengths differ: %d vs %d", len(parentA), len(parentB))
	}
	if len(candidate) != len(parentA) {
		return fmt.Errorf("candidate code length %d, want %d", len(candidate), len(parentA))
	}
	for i := range candidate {
		lo, hi := parentA[i], parentB[i]
		if lo > hi {
			lo, hi = hi, lo
		}
		if candidate[i] < lo || candidate[i] > hi {
			return RangeError{Index: i, Min: lo, Value: candidate[i], Max: hi}
		}
	}
	return nil
}
