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
	"errors"
	"fmt"
)

// Configuration errors
var (
	// ErrMissingAPIKey indicates the embedding service credential was not supplied.
	ErrMissingAPIKey = errors.New("missing I3_API_KEY")

	// ErrInvalidConfig indicates a configuration value is out of range or empty.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Pipeline errors
var (
	// ErrNoRecords indicates the catalog source yielded no records.
	// An empty catalog is treated as a corrupt source, not an empty result.
	ErrNoRecords = errors.New("no models parsed from source")

	// ErrBatchSizeMismatch indicates the service returned a different number
	// of vectors than texts submitted in a batch.
	ErrBatchSizeMismatch = errors.New("embedding count mismatch")

	// ErrNetwork indicates a transport failure or non-2xx response from the embedding service.
	ErrNetwork = errors.New("embedding service request failed")
)

// Domain validation errors
var (
	// ErrInvalidRecord indicates a Record failed validation.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidResult indicates an EmbeddingResult failed validation.
	ErrInvalidResult = errors.New("invalid embedding result")

	// ErrEmptyName indicates the Name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")
)

// BatchSizeMismatchError reports a batch whose response vector count
// differs from the number of submitted texts.
type BatchSizeMismatchError struct {
	Offset   int // index of the batch's first item in the full input
	Expected int
	Got      int
}

func (e *BatchSizeMismatchError) Error() string {
	return fmt.Sprintf("%s at batch %d: got %d expected %d", ErrBatchSizeMismatch, e.Offset, e.Got, e.Expected)
}

func (e *BatchSizeMismatchError) Unwrap() error {
	return ErrBatchSizeMismatch
}

// NetworkError reports a failed embedding request.
// StatusCode is 0 when the request never produced an HTTP response.
type NetworkError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s: status %d: %s", ErrNetwork, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", ErrNetwork, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", ErrNetwork, e.Err)
	default:
		return ErrNetwork.Error()
	}
}

// Is reports ErrNetwork as a match so callers can use errors.Is.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
