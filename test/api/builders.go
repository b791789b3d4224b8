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
	"encoding/xml"
	"fmt"
)

// A command that keeps a task busy for a minute on both Linux and Windows
// compute nodes.
const LongRunningCommand = "sleep 60 || ping localhost -n 60"

// A command that echoes the myvar environment variable on both Linux and
// Windows compute nodes.
const EchoEnvCommand = "echo $myvar %myvar%"

type jobXML struct {
	XMLName          xml.Name  `xml:"Job"`
	Name             string    `xml:"Name,attr,omitempty"`
	MinCores         string    `xml:"MinCores,attr,omitempty"`
	MaxCores         string    `xml:"MaxCores,attr,omitempty"`
	RunUntilCanceled string    `xml:"RunUntilCanceled,attr,omitempty"`
	NodeGroups       string    `xml:"NodeGroups,attr,omitempty"`
	NodeGroupOp      string    `xml:"NodeGroupOp,attr,omitempty"`
	Tasks            []taskXML `xml:"Tasks>Task"`
}

type taskXML struct {
	Name           string `xml:"Name,attr,omitempty"`
	CommandLine    string `xml:"CommandLine,attr"`
	MinCores       string `xml:"MinCores,attr,omitempty"`
	MaxCores       string `xml:"MaxCores,attr,omitempty"`
	Type           string `xml:"Type,attr,omitempty"`
	StartValue     string `xml:"StartValue,attr,omitempty"`
	EndValue       string `xml:"EndValue,attr,omitempty"`
	IncrementValue string `xml:"IncrementValue,attr,omitempty"`
}

// JobXMLBuilder builds XML job descriptions for the /jobs/jobFile endpoint.
// Jobs are pinned to the ComputeNodes group so they never land on cloud
// burst nodes, whose output capture differs.
type JobXMLBuilder struct {
	job jobXML
}

func NewJobXML(name string) *JobXMLBuilder {
	return &JobXMLBuilder{
		job: jobXML{
			Name:        name,
			NodeGroups:  "ComputeNodes",
			NodeGroupOp: "Uniform",
		},
	}
}

// WithCores bounds the whole job to the given core range.
func (b *JobXMLBuilder) WithCores(minCores, maxCores int) *JobXMLBuilder {
	b.job.MinCores = fmt.Sprintf("%d", minCores)
	b.job.MaxCores = fmt.Sprintf("%d", maxCores)

	return b
}

// RunUntilCanceled keeps the job alive after its tasks complete, until an
// explicit cancel or finish.
func (b *JobXMLBuilder) RunUntilCanceled() *JobXMLBuilder {
	b.job.RunUntilCanceled = "True"
	return b
}

// WithTask adds a single-core basic task.
func (b *JobXMLBuilder) WithTask(name, commandLine string) *JobXMLBuilder {
	b.job.Tasks = append(b.job.Tasks, taskXML{
		Name:        name,
		CommandLine: commandLine,
		MinCores:    "1",
		MaxCores:    "1",
	})

	return b
}

// WithSweepTask adds a single-core parametric sweep task expanding into one
// subtask per value of the start..end range.
func (b *JobXMLBuilder) WithSweepTask(name, commandLine string, start, end, increment int) *JobXMLBuilder {
	b.job.Tasks = append(b.job.Tasks, taskXML{
		Name:           name,
		CommandLine:    commandLine,
		MinCores:       "1",
		MaxCores:       "1",
		Type:           "ParametricSweep",
		StartValue:     fmt.Sprintf("%d", start),
		EndValue:       fmt.Sprintf("%d", end),
		IncrementValue: fmt.Sprintf("%d", increment),
	})

	return b
}

// Build renders the job description.
func (b *JobXMLBuilder) Build() string {
	data, err := xml.MarshalIndent(b.job, "", "  ")
	if err != nil {
		// Only reachable with an unmarshalable builder state, which the
		// fixed field set above rules out.
		panic(err)
	}

	return string(data)
}

// Canned jobs used across the suites.

// SimpleJobXML is a one-task job that echoes and finishes on its own.
func SimpleJobXML() string {
	return NewJobXML("SimpleJob").
		WithTask("TestTaskInXML", "echo Hello").
		Build()
}

// RunUntilCanceledJobXML is a job that stays Running until canceled or
// finished, for exercising lifecycle transitions.
func RunUntilCanceledJobXML() string {
	return NewJobXML("RunUntilCanceledJob").
		WithCores(1, 1).
		RunUntilCanceled().
		WithTask("TestTaskInXML", "echo Hello").
		Build()
}

// LongRunningTaskJobXML is a job whose single task runs for about a minute,
// long enough to catch it in the Running state.
func LongRunningTaskJobXML() string {
	return NewJobXML("").
		WithTask("", LongRunningCommand).
		Build()
}

// LongRunningSweepJobXML is a parametric sweep job whose subtasks run for
// about a minute each.
func LongRunningSweepJobXML(start, end int) string {
	return NewJobXML("ParametricSweepJob").
		WithCores(1, 1).
		WithSweepTask("Sweep Task", LongRunningCommand, start, end, 1).
		Build()
}
