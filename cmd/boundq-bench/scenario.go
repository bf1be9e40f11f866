package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/a2y-d5l/boundq/queue"
)

// Scenario describes one benchmark run.
type Scenario struct {
	Name      string               `yaml:"name" json:"name"`
	Producers int                  `yaml:"producers" json:"producers"`
	Consumers int                  `yaml:"consumers" json:"consumers"`
	Capacity  int                  `yaml:"capacity" json:"capacity"`
	Policy    queue.OverflowPolicy `yaml:"policy" json:"policy"`
	Batch     int                  `yaml:"batch" json:"batch"`
	Duration  time.Duration        `yaml:"duration" json:"-"`
	NATS      bool                 `yaml:"nats" json:"nats"`
}

var errBadScenario = errors.New("invalid scenario")

// Validate reports the first field that cannot be run.
func (s Scenario) Validate() error {
	switch {
	case s.Producers < 1:
		return fmt.Errorf("%w %q: producers must be at least 1", errBadScenario, s.Name)
	case s.Consumers < 1:
		return fmt.Errorf("%w %q: consumers must be at least 1", errBadScenario, s.Name)
	case s.Batch < 1:
		return fmt.Errorf("%w %q: batch must be at least 1", errBadScenario, s.Name)
	case s.Duration <= 0:
		return fmt.Errorf("%w %q: duration must be positive", errBadScenario, s.Name)
	}
	return queue.Config{Capacity: s.Capacity, Policy: s.Policy}.Validate()
}

// scenarioFile is the YAML layout accepted by -config. Every scenario starts
// from the flag values, then the defaults block, then its own fields.
//
//	defaults:
//	  duration: 2s
//	  capacity: 1024
//	scenarios:
//	  - name: truncate
//	    policy: truncate-warn
//	  - name: reject
//	    policy: reject-hard
//	    producers: 8
type scenarioFile struct {
	Defaults  yaml.Node   `yaml:"defaults"`
	Scenarios []yaml.Node `yaml:"scenarios"`
}

// LoadScenarios decodes a scenario file on top of base.
func LoadScenarios(r io.Reader, base Scenario) ([]Scenario, error) {
	var f scenarioFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode scenarios: %w", err)
	}

	if !f.Defaults.IsZero() {
		if err := f.Defaults.Decode(&base); err != nil {
			return nil, fmt.Errorf("decode defaults: %w", err)
		}
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("%w: no scenarios", errBadScenario)
	}

	out := make([]Scenario, 0, len(f.Scenarios))
	for i, node := range f.Scenarios {
		sc := base
		sc.Name = ""
		if err := node.Decode(&sc); err != nil {
			return nil, fmt.Errorf("decode scenario %d: %w", i+1, err)
		}
		if sc.Name == "" {
			sc.Name = fmt.Sprintf("scenario-%d", i+1)
		}
		if err := sc.Validate(); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}
