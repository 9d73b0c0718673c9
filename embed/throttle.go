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


package embed

import (
	"context"
	"time"
)

// Throttle decides how long to wait before the next batch is dispatched.
// Wait is called between batches, never before the first one.
type Throttle interface {
	// Wait blocks until the next batch may be sent or ctx is done.
	Wait(ctx context.Context) error
}

// FixedDelay pauses for the same duration before every batch after the first.
// It does not adapt to server responses.
type FixedDelay time.Duration

// Wait sleeps for the delay with context awareness.
func (d FixedDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(time.Duration(d))
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoDelay dispatches batches back to back.
type NoDelay struct{}

// Wait returns immediately unless ctx is already done.
func (NoDelay) Wait(ctx context.Context) error {
	return ctx.Err()
}
