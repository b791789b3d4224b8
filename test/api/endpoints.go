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
	"net/url"
)

// Endpoints contains all API endpoint patterns under the /hpc base path.
type Endpoints struct{}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

// Cluster metadata endpoints.
func (e *Endpoints) ClusterVersion() string {
	return "/cluster/version"
}

func (e *Endpoints) ActiveHeadNode() string {
	return "/cluster/activeHeadNode"
}

func (e *Endpoints) DateTimeFormat() string {
	return "/cluster/info/dateTimeFormat"
}

// Node endpoints.
func (e *Endpoints) ListNodes() string {
	return "/nodes"
}

func (e *Endpoints) GetNode(name string) string {
	return fmt.Sprintf("/nodes/%s", url.PathEscape(name))
}

func (e *Endpoints) ListNodeGroups() string {
	return "/nodes/groups"
}

func (e *Endpoints) GetNodeGroup(name string) string {
	return fmt.Sprintf("/nodes/groups/%s", url.PathEscape(name))
}

// Job lifecycle endpoints.
func (e *Endpoints) ListJobs() string {
	return "/jobs"
}

func (e *Endpoints) CreateJob() string {
	return "/jobs"
}

func (e *Endpoints) CreateJobFromXML() string {
	return "/jobs/jobFile"
}

func (e *Endpoints) ListJobTemplates() string {
	return "/jobs/templates"
}

func (e *Endpoints) GetJob(jobID int) string {
	return fmt.Sprintf("/jobs/%d", jobID)
}

func (e *Endpoints) SetJobProperties(jobID int) string {
	return fmt.Sprintf("/jobs/%d", jobID)
}

func (e *Endpoints) SubmitJob(jobID int) string {
	return fmt.Sprintf("/jobs/%d/submit", jobID)
}

func (e *Endpoints) CancelJob(jobID int) string {
	return fmt.Sprintf("/jobs/%d/cancel", jobID)
}

func (e *Endpoints) FinishJob(jobID int) string {
	return fmt.Sprintf("/jobs/%d/finish", jobID)
}

func (e *Endpoints) RequeueJob(jobID int) string {
	return fmt.Sprintf("/jobs/%d/requeue", jobID)
}

func (e *Endpoints) JobEnvVariables(jobID int) string {
	return fmt.Sprintf("/jobs/%d/envVariables", jobID)
}

func (e *Endpoints) JobCustomProperties(jobID int) string {
	return fmt.Sprintf("/jobs/%d/customProperties", jobID)
}

// Task endpoints.
func (e *Endpoints) ListTasks(jobID int) string {
	return fmt.Sprintf("/jobs/%d/tasks", jobID)
}

func (e *Endpoints) AddTask(jobID int) string {
	return fmt.Sprintf("/jobs/%d/tasks", jobID)
}

func (e *Endpoints) GetTask(jobID, taskID int) string {
	return fmt.Sprintf("/jobs/%d/tasks/%d", jobID, taskID)
}

func (e *Endpoints) SetTaskProperties(jobID, taskID int) string {
	return fmt.Sprintf("/jobs/%d/tasks/%d", jobID, taskID)
}

func (e *Endpoints) CancelTask(jobID, taskID int) string {
	return fmt.Sprintf("/jobs/%d/tasks/%d/cancel", jobID, taskID)
}

func (e *Endpoints) FinishTask(jobID, taskID int) string {
	return fmt.Sprintf("/jobs/%d/tasks/%d/finish", jobID, taskID)
}

func (e *Endpoints) RequeueTask(jobID, taskID int) string {
	return fmt.Sprintf("/jobs/%d/tasks/%d/requeue", jobID, taskID)
}

func (e *Endpoints) TaskEnvVariables(jobID, taskID int) string {
	return fmt.Sprintf("/jobs/%d/tasks/%d/envVariables", jobID, taskID)
}

func (e *Endpoints) TaskCustomProperties(jobID, taskID int) string {
	return fmt.Sprintf("/jobs/%d/tasks/%d/customProperties", jobID, taskID)
}

// Subtask endpoints.
func (e *Endpoints) GetSubtask(jobID, taskID, subtaskID int) string {
	return fmt.Sprintf("/jobs/%d/tasks/%d/subtasks/%d", jobID, taskID, subtaskID)
}

func (e *Endpoints) CancelSubtask(jobID, taskID, subtaskID int) string {
	return fmt.Sprintf("/jobs/%d/tasks/%d/subtasks/%d/cancel", jobID, taskID, subtaskID)
}

func (e *Endpoints) FinishSubtask(jobID, taskID, subtaskID int) string {
	return fmt.Sprintf("/jobs/%d/tasks/%d/subtasks/%d/finish", jobID, taskID, subtaskID)
}

func (e *Endpoints) RequeueSubtask(jobID, taskID, subtaskID int) string {
	return fmt.Sprintf("/jobs/%d/tasks/%d/subtasks/%d/requeue", jobID, taskID, subtaskID)
}
