// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"fmt"
	"strconv"
	"time"

	"github.com/poiesic/notefind/core"
)

// Compile validates raw classifier predicates against the field whitelist for
// a kind and turns the survivors into typed filters. Invalid predicates are
// dropped, never executed; each drop is reported as a diagnostic wrapped in
// ErrInvalidPredicate. Values are carried as opaque typed literals and are
// never assembled into query text.
func Compile(kind core.Kind, predicates []core.Predicate) ([]core.Filter, []error) {
	var filters []core.Filter
	var diags []error

	for _, p := range predicates {
		filter, err := compilePredicate(kind, p)
		if err != nil {
			diags = append(diags, fmt.Errorf("%w: %v", ErrInvalidPredicate, err))
			continue
		}
		filters = append(filters, filter)
	}

	return filters, diags
}

func compilePredicate(kind core.Kind, p core.Predicate) (core.Filter, error) {
	field := core.Field(p.Field)
	if !core.ValidField(kind, field) {
		return core.Filter{}, fmt.Errorf("field %q not filterable for kind %s", p.Field, kind)
	}

	op := core.Operator(p.Operator)
	if !core.ValidOperator(op) {
		return core.Filter{}, fmt.Errorf("unknown operator %q", p.Operator)
	}

	filter := core.Filter{Field: field, Op: op}

	if op.IsMembership() {
		if field.IsTimeField() {
			return core.Filter{}, fmt.Errorf("operator %q not applicable to time field %q", op, field)
		}
		list, err := listValue(p.Value)
		if err != nil {
			return core.Filter{}, fmt.Errorf("operator %q on field %q: %v", op, field, err)
		}
		filter.List = list
		return filter, nil
	}

	text, err := scalarValue(p.Value)
	if err != nil {
		return core.Filter{}, fmt.Errorf("operator %q on field %q: %v", op, field, err)
	}

	if field.IsTimeField() {
		ts, err := parseTime(text)
		if err != nil {
			return core.Filter{}, fmt.Errorf("field %q: %v", field, err)
		}
		filter.Time = ts
		return filter, nil
	}

	filter.Text = text
	return filter, nil
}

// scalarValue coerces a classifier value into a string literal.
// JSON numbers and booleans are accepted; lists are an arity mismatch.
func scalarValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("expected scalar value, got %T", value)
	}
}

// listValue coerces a classifier value into a string list.
func listValue(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		if len(v) == 0 {
			return nil, fmt.Errorf("empty list value")
		}
		return v, nil
	case []any:
		if len(v) == 0 {
			return nil, fmt.Errorf("empty list value")
		}
		list := make([]string, 0, len(v))
		for _, item := range v {
			text, err := scalarValue(item)
			if err != nil {
				return nil, err
			}
			list = append(list, text)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("expected list value, got %T", value)
	}
}

// parseTime accepts full ISO-8601 timestamps and bare dates.
func parseTime(text string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, text); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse("2006-01-02", text); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("unparseable time value %q", text)
}
