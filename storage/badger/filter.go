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


package badger

import (
	"regexp"
	"strings"
	"time"

	"github.com/poiesic/notefind/core"
)

// matchRecord evaluates every filter clause against a decoded record.
// Filter values are typed literals compared in Go; there is no query text
// for a value to escape into.
func matchRecord(record *core.Record, filters []core.Filter) bool {
	for _, f := range filters {
		if !matchFilter(record, f) {
			return false
		}
	}
	return true
}

func matchFilter(record *core.Record, f core.Filter) bool {
	if f.Field == core.FieldTags {
		return matchTags(record.Tags, f)
	}
	if f.Field.IsTimeField() {
		return matchTime(fieldTime(record, f.Field), f)
	}
	return matchString(fieldString(record, f.Field), f)
}

// fieldString resolves a whitelisted string field on a record.
func fieldString(record *core.Record, field core.Field) string {
	switch field {
	case core.FieldTitle:
		return record.Title
	case core.FieldDescription, core.FieldContent:
		return record.Body
	case core.FieldStatus:
		return record.Status
	case core.FieldPriority:
		return record.Priority
	default:
		return ""
	}
}

// fieldTime resolves a whitelisted time field on a record.
func fieldTime(record *core.Record, field core.Field) time.Time {
	switch field {
	case core.FieldDueDate:
		return record.DueDate
	case core.FieldCreatedAt:
		return record.CreatedAt
	case core.FieldUpdatedAt:
		return record.UpdatedAt
	default:
		return time.Time{}
	}
}

func matchString(value string, f core.Filter) bool {
	switch f.Op {
	case core.OpEq:
		return value == f.Text
	case core.OpGt:
		return value > f.Text
	case core.OpLt:
		return value < f.Text
	case core.OpGte:
		return value >= f.Text
	case core.OpLte:
		return value <= f.Text
	case core.OpLike:
		return likeMatch(value, f.Text)
	case core.OpIn:
		return containsString(f.List, value)
	case core.OpNotIn:
		return !containsString(f.List, value)
	default:
		return false
	}
}

func matchTime(value time.Time, f core.Filter) bool {
	// An unset timestamp never satisfies a time comparison.
	if value.IsZero() {
		return false
	}
	switch f.Op {
	case core.OpEq:
		return value.Equal(f.Time)
	case core.OpGt:
		return value.After(f.Time)
	case core.OpLt:
		return value.Before(f.Time)
	case core.OpGte:
		return value.Equal(f.Time) || value.After(f.Time)
	case core.OpLte:
		return value.Equal(f.Time) || value.Before(f.Time)
	default:
		return false
	}
}

// matchTags matches a filter against any element of the tag list.
func matchTags(tags []string, f core.Filter) bool {
	switch f.Op {
	case core.OpNotIn:
		for _, tag := range tags {
			if containsString(f.List, tag) {
				return false
			}
		}
		return true
	default:
		for _, tag := range tags {
			if matchString(tag, f) {
				return true
			}
		}
		return false
	}
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// likeMatch implements case-insensitive SQL LIKE semantics: % matches any
// run of characters, _ matches a single character. The pattern body is
// regexp-quoted so the value stays an opaque literal.
func likeMatch(value, pattern string) bool {
	var sb strings.Builder
	sb.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return false
	}
	return re.MatchString(value)
}
