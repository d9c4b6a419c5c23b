package validation

import (
	"fmt"
	"strings"

	"github.com/elliotchance/orderedmap/v3"
	"go.uber.org/multierr"
)

// Failure is a single configuration problem reported by a validator.
type Failure struct {
	Message    string
	Correction string
	// Properties lists the config property names the failure applies to.
	Properties []string
}

// WithConfigProperty tags the failure with a config property name.
func (f *Failure) WithConfigProperty(name string) *Failure {
	f.Properties = append(f.Properties, name)
	return f
}

func (f Failure) Error() string {
	var b strings.Builder
	b.WriteString(f.Message)
	if f.Correction != "" {
		b.WriteString(" ")
		b.WriteString(f.Correction)
	}
	if len(f.Properties) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(f.Properties, ", "))
	}
	return b.String()
}

// Collector is the sink validators write into.
type Collector interface {
	AddFailure(message, correction string) *Failure
	Failures() []Failure
	// GetOrThrow returns a *ValidationError when at least one failure was recorded.
	GetOrThrow() error
}

// FailureCollector accumulates failures for one stage, in insertion order.
type FailureCollector struct {
	stage    string
	failures []*Failure
}

func NewFailureCollector(stage string) *FailureCollector {
	return &FailureCollector{stage: stage}
}

func (c *FailureCollector) Stage() string { return c.stage }

func (c *FailureCollector) AddFailure(message, correction string) *Failure {
	f := &Failure{Message: message, Correction: correction}
	c.failures = append(c.failures, f)
	return f
}

// Failures returns a snapshot of the recorded failures.
func (c *FailureCollector) Failures() []Failure {
	out := make([]Failure, len(c.failures))
	for i, f := range c.failures {
		out[i] = *f
		out[i].Properties = append([]string(nil), f.Properties...)
	}
	return out
}

func (c *FailureCollector) Len() int { return len(c.failures) }

// ByField groups failures per config property, keeping the order in which
// properties were first reported. A failure tagged with several properties
// appears under each of them.
func (c *FailureCollector) ByField() *orderedmap.OrderedMap[string, []Failure] {
	grouped := orderedmap.NewOrderedMap[string, []Failure]()
	for _, f := range c.Failures() {
		for _, p := range f.Properties {
			list, _ := grouped.Get(p)
			grouped.Set(p, append(list, f))
		}
	}
	return grouped
}

func (c *FailureCollector) GetOrThrow() error {
	if len(c.failures) == 0 {
		return nil
	}
	return &ValidationError{Stage: c.stage, Failures: c.Failures()}
}

// ValidationError carries every failure found by a validation pass.
type ValidationError struct {
	Stage    string
	Failures []Failure
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Error()
	}
	prefix := fmt.Sprintf("%d error(s) found during validation", len(e.Failures))
	if e.Stage != "" {
		prefix += fmt.Sprintf(" of stage %q", e.Stage)
	}
	return prefix + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error {
	var err error
	for _, f := range e.Failures {
		err = multierr.Append(err, f)
	}
	return multierr.Errors(err)
}
