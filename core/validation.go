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


package core

import "fmt"

// ValidateRecord validates a Record according to domain rules.
//
// Validation rules:
//   - Kind must be KindTask or KindNote
//   - Title must not be empty
//   - For tasks, Status and Priority must be recognized values when set
//
// NOT validated (populated by the store or the indexer):
//   - ID (0 is valid before insertion)
//   - CreatedAt/UpdatedAt (set by the store)
//   - TextDigest (set by the indexer)
func ValidateRecord(record *Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if err := ValidateKind(record.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	if record.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyTitle)
	}

	if record.Kind == KindTask {
		if record.Status != "" && !ValidStatus(record.Status) {
			return fmt.Errorf("%w: %w: %q", ErrInvalidRecord, ErrInvalidStatus, record.Status)
		}
		if record.Priority != "" && !ValidPriority(record.Priority) {
			return fmt.Errorf("%w: %w: %q", ErrInvalidRecord, ErrInvalidPriority, record.Priority)
		}
	}

	return nil
}

// ValidateKind validates that a Kind is valid for a stored record.
// KindAny is a query-time wildcard and never a valid stored kind.
func ValidateKind(kind Kind) error {
	if kind != KindTask && kind != KindNote {
		return fmt.Errorf("%w: value %d", ErrInvalidKind, kind)
	}
	return nil
}

// ValidStatus checks if a status string is a recognized task status.
func ValidStatus(status string) bool {
	return status == StatusTodo || status == StatusInProgress || status == StatusDone
}

// ValidPriority checks if a priority string is a recognized task priority.
func ValidPriority(priority string) bool {
	return priority == PriorityLow || priority == PriorityMedium || priority == PriorityHigh
}
