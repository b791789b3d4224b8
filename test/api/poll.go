/*
Copyright 2025 the HPC Pack BVT Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spjmurray/go-util/pkg/set"
)

// ErrNotReady marks a fetch failure that should be retried rather than abort
// polling. The service replies 4xx with "the specified subtask has not been
// expanded yet" while a parametric sweep is still expanding; that is a basis
// for waiting, not failing.
var ErrNotReady = errors.New("entity not ready")

// StateSet is the set of acceptable values for a polled property.
type StateSet struct {
	values set.Set[string]
}

// States builds a StateSet from one or more acceptable values.
func States(values ...string) StateSet {
	return StateSet{values: set.New[string](values...)}
}

func (s StateSet) Contains(value string) bool {
	return s.values.Contains(value)
}

func (s StateSet) String() string {
	return strings.Join(slices.Sorted(s.values.All()), "|")
}

// PollTimeoutError is returned by PollUntil when the attempt budget is
// exhausted without the polled property entering the target set.
type PollTimeoutError struct {
	Field     string
	Target    StateSet
	LastValue string
	Attempts  int
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for %s to be %s after %d attempts, last value %q",
		e.Field, e.Target, e.Attempts, e.LastValue)
}

// PollUntil repeatedly invokes fetch until the named property's value is a
// member of target, then returns the full property list of the matching
// response. It sleeps interval between attempts and gives up after
// maxAttempts fetches, returning a *PollTimeoutError carrying the last
// observed value. A fetch performed on the final attempt is not followed by
// a sleep, and a match on the first attempt never sleeps at all.
//
// There is no backoff, jitter or cancellation; the interval is fixed and the
// caller is bounded by maxAttempts * interval wall-clock time.
//
// Fetch errors abort polling immediately unless they wrap ErrNotReady, in
// which case the attempt counts as a non-match and polling continues.
func PollUntil(fetch func() (PropertyList, error), field string, target StateSet, maxAttempts int, interval time.Duration) (PropertyList, error) {
	if maxAttempts < 1 {
		return nil, fmt.Errorf("maxAttempts must be positive, got %d", maxAttempts)
	}

	var lastValue string

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		properties, err := fetch()

		switch {
		case err == nil:
			lastValue = properties.Value(field)
			if target.Contains(lastValue) {
				return properties, nil
			}
		case errors.Is(err, ErrNotReady):
			lastValue = ""
		default:
			return nil, fmt.Errorf("fetching %s: %w", field, err)
		}

		if attempt < maxAttempts {
			time.Sleep(interval)
		}
	}

	return nil, &PollTimeoutError{
		Field:     field,
		Target:    target,
		LastValue: lastValue,
		Attempts:  maxAttempts,
	}
}
