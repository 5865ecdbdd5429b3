/*
PURPOSE:
  Declares workload parameters and validates user overrides into a Bag.

REQUIREMENTS:
  User-specified:
  - Typed parameters (bool, int, string) with default, mandatory flag,
    allowed values and an optional constraint.
  - Every mandatory parameter present and every value valid before a run proceeds.

  Implementation-discovered:
  - Agenda YAML and --param flags deliver values as strings, ints or bools;
    they are coerced to the declared kind.
  - Optional parameters without a default are absent from the Bag, not zero.

ARCHITECTURE INTEGRATION:
  - Used by: internal/workload (Validate), internal/workloads (descriptors),
    internal/cli (list-workloads)

ERROR HANDLING:
  - Every violation is failure.Configuration.

IMPLEMENTATION RULES:
  - Unknown override names are rejected.
  - Presence of optional values is checked with Opt at the point of use.

USAGE:
  bag, err := workload.NewBag("youtube", params, map[string]interface{}{"video_source": "search"})

SELF-HEALING INSTRUCTIONS:
  - New parameter kinds need a coerce case and a String() name.

RELATED FILES:
  - internal/workload/descriptor.go

MAINTENANCE:
  - None.
*/

package workload

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/daryltucker/uxperf/internal/failure"
)

// Kind is the declared type of a parameter value.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	default:
		return "str"
	}
}

// Parameter declares one workload parameter.
type Parameter struct {
	Name          string
	Kind          Kind
	Default       interface{}
	Mandatory     bool
	AllowedValues []string
	// Constraint, when set, must hold for the coerced value.
	Constraint     func(v interface{}) bool
	ConstraintDesc string
	Description    string
}

// DumpsysEnabled is shared by every workload: it gates the instrumentation log.
var DumpsysEnabled = Parameter{
	Name:    "dumpsys_enabled",
	Kind:    KindBool,
	Default: true,
	Description: "If true, dumpsys captures are carried out during the test run and the " +
		"instrumentation log is pulled from the device.",
}

func (p Parameter) coerce(raw interface{}) (interface{}, error) {
	switch p.Kind {
	case KindBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("%q is not a bool", v)
			}
			return b, nil
		}
	case KindInt:
		switch v := raw.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case uint64:
			if v <= math.MaxInt64 {
				return int(v), nil
			}
		case float64:
			if v == math.Trunc(v) {
				return int(v), nil
			}
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("%q is not an int", v)
			}
			return n, nil
		}
	case KindString:
		switch v := raw.(type) {
		case string:
			return v, nil
		case int, int64, float64, bool:
			return fmt.Sprint(v), nil
		}
	}
	return nil, fmt.Errorf("%v (%T) is not a %s", raw, raw, p.Kind)
}

// Bag holds validated parameter values for one run.
type Bag struct {
	values map[string]interface{}
}

// NewBag validates overrides against params and fills in defaults.
func NewBag(workload string, params []Parameter, overrides map[string]interface{}) (Bag, error) {
	known := make(map[string]bool, len(params))
	for _, p := range params {
		known[p.Name] = true
	}
	var unknown []string
	for name := range overrides {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Bag{}, failure.Newf(failure.Configuration, "unknown parameter(s) for %s: %s", workload, strings.Join(unknown, ", "))
	}

	b := Bag{values: make(map[string]interface{}, len(params))}
	for _, p := range params {
		raw, ok := overrides[p.Name]
		if !ok || raw == nil {
			raw = p.Default
		}
		if missing := raw == nil || p.Mandatory && raw == ""; missing {
			if p.Mandatory {
				return Bag{}, failure.Newf(failure.Configuration, "parameter %q is mandatory for %s", p.Name, workload)
			}
			continue
		}
		v, err := p.coerce(raw)
		if err != nil {
			return Bag{}, failure.Wrapf(failure.Configuration, err, "invalid value for %s parameter %q", workload, p.Name)
		}
		if len(p.AllowedValues) > 0 && !slices.Contains(p.AllowedValues, fmt.Sprint(v)) {
			return Bag{}, failure.Newf(failure.Configuration, "invalid value %v for %s parameter %q; allowed: %s",
				v, workload, p.Name, strings.Join(p.AllowedValues, ", "))
		}
		if p.Constraint != nil && !p.Constraint(v) {
			return Bag{}, failure.Newf(failure.Configuration, "value %v for %s parameter %q violates constraint: %s",
				v, workload, p.Name, p.ConstraintDesc)
		}
		b.values[p.Name] = v
	}
	return b, nil
}

// Has reports whether name has a value.
func (b Bag) Has(name string) bool {
	_, ok := b.values[name]
	return ok
}

// Bool returns the bool value of name, or false if absent.
func (b Bag) Bool(name string) bool {
	v, _ := b.values[name].(bool)
	return v
}

// Int returns the int value of name, or 0 if absent.
func (b Bag) Int(name string) int {
	v, _ := b.values[name].(int)
	return v
}

// String returns the string value of name, or "" if absent.
func (b Bag) String(name string) string {
	v, _ := b.values[name].(string)
	return v
}

// Values returns a copy of all values.
func (b Bag) Values() map[string]interface{} {
	out := make(map[string]interface{}, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

// Option is a value that may be absent.
type Option[T any] struct {
	value T
	ok    bool
}

// Some returns a present Option.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns an absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSome reports whether the value is present.
func (o Option[T]) IsSome() bool {
	return o.ok
}

// OrElse returns the value, or def if absent.
func (o Option[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

// Opt returns the value of name as an Option. Empty strings are absent.
func Opt[T any](b Bag, name string) Option[T] {
	v, ok := b.values[name].(T)
	if !ok {
		return None[T]()
	}
	if s, isStr := interface{}(v).(string); isStr && s == "" {
		return None[T]()
	}
	return Some(v)
}
