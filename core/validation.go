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

import (
	"fmt"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//
// NOT validated:
//   - Content (an empty note is still a document)
//   - Date (zero is valid for undated documents)
//   - WordCount (derived by the scanner)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyIdentifier)
	}

	return nil
}

// ValidateFact validates a Fact according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//
// NOT validated:
//   - DateExtracted and Timestamp (absent in older store entries)
//   - Hash (filled from content when missing)
func ValidateFact(fact *Fact) error {
	if fact == nil {
		return fmt.Errorf("%w: fact is nil", ErrInvalidFact)
	}

	if fact.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFact, ErrEmptyContent)
	}

	return nil
}

// ValidateFactCategory validates that a FactCategory has a value inside
// the closed category set.
func ValidateFactCategory(category FactCategory) error {
	if category < CategoryDecisions || category > CategoryOther {
		return fmt.Errorf("%w: value %d", ErrInvalidCategory, category)
	}
	return nil
}

// ParseFactCategory maps a category name from the fact store to its
// FactCategory. Names outside the closed set are rejected.
func ParseFactCategory(name string) (FactCategory, error) {
	for _, c := range Categories() {
		if categoryNames[c] == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}
