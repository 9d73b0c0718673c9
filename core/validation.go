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
//   - Name must not be empty
//
// Purpose, UseCase, Category and Industry are optional.
func ValidateRecord(record *Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyName)
	}

	return nil
}

// ValidateResult validates an EmbeddingResult before it is persisted.
//
// Validation rules:
//   - Name must not be empty
//
// NOT validated:
//   - Embedding contents or length (whatever the service returns is kept)
func ValidateResult(result *EmbeddingResult) error {
	if result == nil {
		return fmt.Errorf("%w: result is nil", ErrInvalidResult)
	}

	if result.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidResult, ErrEmptyName)
	}

	return nil
}

// ValidateResults validates every result, stopping at the first failure.
func ValidateResults(results []EmbeddingResult) error {
	for i := range results {
		if err := ValidateResult(&results[i]); err != nil {
			return err
		}
	}
	return nil
}
