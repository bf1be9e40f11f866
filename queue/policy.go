package queue

import (
	"fmt"
	"strings"
)

// OverflowPolicy decides what an admission does when it would push the queue
// past its capacity. The zero value is TruncateSilent.
type OverflowPolicy int

const (
	// TruncateSilent evicts the oldest items until the batch fits.
	TruncateSilent OverflowPolicy = iota
	// TruncateWarn behaves like TruncateSilent and logs a warning.
	TruncateWarn
	// RejectSilent drops the whole batch and reports success.
	RejectSilent
	// RejectWarn drops the whole batch, reports success and logs a warning.
	RejectWarn
	// RejectHard drops the whole batch and returns ErrCapacityExceeded.
	RejectHard
)

var policyNames = [...]string{
	TruncateSilent: "truncate-silent",
	TruncateWarn:   "truncate-warn",
	RejectSilent:   "reject-silent",
	RejectWarn:     "reject-warn",
	RejectHard:     "reject-hard",
}

// Policies lists every overflow policy.
func Policies() []OverflowPolicy {
	return []OverflowPolicy{TruncateSilent, TruncateWarn, RejectSilent, RejectWarn, RejectHard}
}

func (p OverflowPolicy) String() string {
	if p.Valid() {
		return policyNames[p]
	}
	return fmt.Sprintf("OverflowPolicy(%d)", int(p))
}

// Valid reports whether p is one of the defined policies.
func (p OverflowPolicy) Valid() bool {
	return p >= TruncateSilent && p <= RejectHard
}

// Rejects reports whether p refuses an overflowing batch instead of truncating.
func (p OverflowPolicy) Rejects() bool {
	return p == RejectSilent || p == RejectWarn || p == RejectHard
}

// Warns reports whether p logs a diagnostic on overflow.
func (p OverflowPolicy) Warns() bool {
	return p == TruncateWarn || p == RejectWarn
}

// ParsePolicy parses a policy name. Matching ignores case, and '_' or ' '
// may stand in for '-', so "RejectHard", "reject_hard" and "reject-hard" are
// equivalent.
func ParsePolicy(name string) (OverflowPolicy, error) {
	key := normalizePolicyName(name)
	for p, n := range policyNames {
		if strings.ReplaceAll(n, "-", "") == key {
			return OverflowPolicy(p), nil
		}
	}
	return 0, &ArgumentError{Op: "ParsePolicy", Arg: "policy", Value: name, Err: ErrInvalidPolicy}
}

func normalizePolicyName(name string) string {
	r := strings.NewReplacer("-", "", "_", "", " ", "")
	return r.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// MarshalText implements encoding.TextMarshaler.
func (p OverflowPolicy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, &ArgumentError{Op: "MarshalText", Arg: "policy", Value: int(p), Err: ErrInvalidPolicy}
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *OverflowPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
