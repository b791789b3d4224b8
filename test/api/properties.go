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
	"fmt"
	"strconv"
)

// Property is one name/value pair of a remote entity. The service renders
// every entity (job, task, node) as an unordered list of these, with names
// unique per response.
type Property struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// PropertyList is the property-list response shape used throughout the API.
type PropertyList []Property

// Find returns the property with the given name, or nil if absent.
func (l PropertyList) Find(name string) *Property {
	for i := range l {
		if l[i].Name == name {
			return &l[i]
		}
	}

	return nil
}

// Value returns the value of the named property, or the empty string if the
// property is absent. Use Find when absence matters.
func (l PropertyList) Value(name string) string {
	if p := l.Find(name); p != nil {
		return p.Value
	}

	return ""
}

// IntValue returns the named property parsed as an integer.
func (l PropertyList) IntValue(name string) (int, error) {
	p := l.Find(name)
	if p == nil {
		return 0, fmt.Errorf("property %q not found", name)
	}

	value, err := strconv.Atoi(p.Value)
	if err != nil {
		return 0, fmt.Errorf("property %q is not an integer: %w", name, err)
	}

	return value, nil
}

// RestObject is one row of a collection response: the entity's requested
// properties wrapped in a Properties field.
type RestObject struct {
	Properties PropertyList `json:"Properties"`
}

// NameValue builds a single request property.
func NameValue(name, value string) Property {
	return Property{Name: name, Value: value}
}
