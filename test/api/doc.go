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

// Package api provides the build-verification test harness for an HPC
// cluster manager's REST API.
//
// The suite is a black-box consumer of the service: it creates jobs, tasks
// and parametric sweep subtasks through the API, then asserts status codes,
// property-list payloads, pagination headers and eventual state transitions.
// No scheduling behavior is implemented here; every interesting state
// machine lives on the head node.
//
// # Client design
//
// APIClient is a small hand-written client. The API speaks property lists
// (ordered only by accident, keyed by unique names) instead of fixed
// schemas, so the client is a handful of typed helpers over name/value
// pairs, independent of any server-side schema definitions.
//
// # Polling
//
// Asynchronous transitions are observed with PollUntil, a fixed-interval,
// attempt-bounded poll of one property of one entity. Test code should
// prefer the WaitFor*State fixtures, which wire in the configured budget
// (30 attempts x 1s by default).
//
// Suites live in the suites subdirectory and run against a live cluster:
//
//	go test ./test/api/suites -timeout 60m
//
// The package's own _test files need no cluster and run with the rest of
// the module's unit tests.
package api
