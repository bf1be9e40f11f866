package queue

import "time"

// AbsoluteTimeoutThreshold is the point past which DequeueTimed treats its
// timeout as a Unix-epoch deadline rather than a relative wait.
const AbsoluteTimeoutThreshold = 365 * 24 * time.Hour

func validateCount(op string, count int) error {
	if count < 1 {
		return &ArgumentError{Op: op, Arg: "count", Value: count, Err: ErrInvalidCount}
	}
	return nil
}

// normalizeIndex maps a possibly negative index onto [0, length]. Negative
// indexes count back from the tail.
func normalizeIndex(index, length int) int {
	if index < 0 {
		index += length
		if index < 0 {
			return 0
		}
	}
	if index > length {
		return length
	}
	return index
}

// deadlineFor converts a DequeueTimed timeout into an absolute wake time.
func deadlineFor(timeout time.Duration, now time.Time) time.Time {
	if timeout >= AbsoluteTimeoutThreshold {
		return time.Unix(0, int64(timeout))
	}
	return now.Add(timeout)
}

func validateDeadline(op string, deadline time.Time) error {
	if deadline.IsZero() {
		return &ArgumentError{Op: op, Arg: "deadline", Value: deadline, Err: ErrInvalidTimeout}
	}
	return nil
}
