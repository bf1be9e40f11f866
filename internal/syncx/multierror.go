package syncx

import (
	"fmt"
	"strings"
	"sync"
)

// MultiError collects errors from concurrent work. It is safe for use by
// multiple goroutines and supports errors.Is and errors.As over its members.
type MultiError struct {
	mu     sync.Mutex
	errors []error
}

// NewMultiError creates an empty collector.
func NewMultiError() *MultiError {
	return &MultiError{}
}

// Add records err. Nil errors are ignored.
func (me *MultiError) Add(err error) {
	if err == nil {
		return
	}
	me.mu.Lock()
	me.errors = append(me.errors, err)
	me.mu.Unlock()
}

// Errors returns a copy of the collected errors.
func (me *MultiError) Errors() []error {
	me.mu.Lock()
	defer me.mu.Unlock()
	return append([]error(nil), me.errors...)
}

// Len returns the number of collected errors.
func (me *MultiError) Len() int {
	me.mu.Lock()
	defer me.mu.Unlock()
	return len(me.errors)
}

func (me *MultiError) Error() string {
	errs := me.Errors()
	switch len(errs) {
	case 0:
		return ""
	case 1:
		return errs[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d errors occurred:", len(errs))
	for i, err := range errs {
		fmt.Fprintf(&b, "\n[%d] %s", i+1, err)
	}
	return b.String()
}

func (me *MultiError) Unwrap() []error {
	return me.Errors()
}

// ErrorOrNil returns nil when nothing was collected, otherwise me.
func (me *MultiError) ErrorOrNil() error {
	if me.Len() == 0 {
		return nil
	}
	return me
}
