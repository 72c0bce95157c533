package errors

import "errors"

// Collector gathers the problems of several derivation steps so they can be
// reported as one error.
type Collector struct {
	problems []Problem
	context  map[string]interface{}
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add records a single problem.
func (c *Collector) Add(p Problem) {
	c.problems = append(c.problems, p)
}

// AddError merges the problems of a ConfigurationError. Other non-nil
// errors are returned unchanged so the caller can abort on them.
func (c *Collector) AddError(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		return err
	}
	c.problems = append(c.problems, ce.Problems...)
	for k, v := range ce.Context {
		if c.context == nil {
			c.context = make(map[string]interface{})
		}
		c.context[k] = v
	}
	return nil
}

// HasErrors returns true if any problem was recorded.
func (c *Collector) HasErrors() bool {
	return len(c.problems) > 0
}

// Err returns a ConfigurationError with every recorded problem, or nil.
func (c *Collector) Err() error {
	if !c.HasErrors() {
		return nil
	}
	problems := make([]Problem, len(c.problems))
	copy(problems, c.problems)
	ce := NewConfigurationError(problems...)
	for k, v := range c.context {
		ce.WithContext(k, v)
	}
	return ce
}
