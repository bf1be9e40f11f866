package queue

import "github.com/a2y-d5l/boundq/observability"

// Unbounded is the Capacity value for a queue without a size limit.
const Unbounded = 0

// Config configures a BoundedQueue. The zero value is an unnamed, unbounded
// queue using TruncateSilent and the default logger.
type Config struct {
	// Name labels log records and metrics.
	Name string `yaml:"name" json:"name"`
	// Capacity is the maximum number of queued items. Zero is Unbounded and
	// disables the limit rather than being an error; only negative values fail.
	Capacity int `yaml:"capacity" json:"capacity"`
	// Policy applies when an admission would exceed Capacity.
	Policy OverflowPolicy `yaml:"policy" json:"policy"`

	// Logger receives overflow diagnostics. Defaults to observability.Default().
	Logger observability.Logger `yaml:"-" json:"-"`
	// Metrics, when set, receives queue metrics labelled with Name.
	Metrics observability.MetricsCollector `yaml:"-" json:"-"`
}

// Validate checks Capacity and Policy.
func (c Config) Validate() error {
	if c.Capacity < 0 {
		return &ArgumentError{Op: "New", Arg: "capacity", Value: c.Capacity, Err: ErrInvalidCapacity}
	}
	if !c.Policy.Valid() {
		return &ArgumentError{Op: "New", Arg: "policy", Value: int(c.Policy), Err: ErrInvalidPolicy}
	}
	return nil
}
