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
	"net/url"
	"strconv"
	"strings"
)

// ListOptions encodes the query parameters shared by the collection
// endpoints: OData-style $filter, property projection, row-count and
// continuation-token pagination, and per-entity sorting.
type ListOptions struct {
	// Filter is an expression such as "NodeState eq Online" or
	// "ChangeTimeFrom eq 6/1/2025 10:00:00". Sent as $filter.
	Filter string

	// Properties is the projection of property names to return.
	Properties []string

	// RowsPerRead caps the number of rows in one response.
	RowsPerRead int

	// StartRow enables offset pagination; the response then carries an
	// x-ms-row-count header with the total. Zero is meaningful, hence the
	// pointer.
	StartRow *int

	// QueryID continues a prior read from its x-ms-continuation-QueryId
	// response header.
	QueryID string

	SortNodesBy string
	SortJobsBy  string
	SortTasksBy string

	// Ascending orders the sorted read; sent as asc.
	Ascending *bool

	// Owner restricts a job listing to one owner.
	Owner string

	// Names restricts an environment-variable or custom-property read to
	// the named entries.
	Names []string

	// ExpandParametric controls whether parametric sweep tasks are
	// expanded into their subtasks in task listings. The service default
	// is true.
	ExpandParametric *bool
}

// Values renders the options as URL query parameters.
func (o *ListOptions) Values() url.Values {
	values := url.Values{}

	if o == nil {
		return values
	}

	if o.Filter != "" {
		values.Set("$filter", o.Filter)
	}

	if len(o.Properties) > 0 {
		values.Set("properties", strings.Join(o.Properties, ","))
	}

	if o.RowsPerRead > 0 {
		values.Set("rowsPerRead", strconv.Itoa(o.RowsPerRead))
	}

	if o.StartRow != nil {
		values.Set("startRow", strconv.Itoa(*o.StartRow))
	}

	if o.QueryID != "" {
		values.Set("queryId", o.QueryID)
	}

	if o.SortNodesBy != "" {
		values.Set("sortNodesBy", o.SortNodesBy)
	}

	if o.SortJobsBy != "" {
		values.Set("sortJobsBy", o.SortJobsBy)
	}

	if o.SortTasksBy != "" {
		values.Set("sortTasksBy", o.SortTasksBy)
	}

	if o.Ascending != nil {
		values.Set("asc", strconv.FormatBool(*o.Ascending))
	}

	if o.Owner != "" {
		values.Set("owner", o.Owner)
	}

	if len(o.Names) > 0 {
		values.Set("names", strings.Join(o.Names, ","))
	}

	if o.ExpandParametric != nil {
		values.Set("expandParametric", strconv.FormatBool(*o.ExpandParametric))
	}

	return values
}

// Int is a pointer helper for ListOptions.StartRow.
func Int(v int) *int {
	return &v
}

// Bool is a pointer helper for ListOptions.Ascending and ExpandParametric.
func Bool(v bool) *bool {
	return &v
}
