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

//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package api

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Job state property projections requested while polling.
var (
	jobStateProperties     = []string{"Id", "State", "ErrorMessage"}
	taskStateProperties    = []string{"TaskId", "State", "ErrorMessage"}
	subtaskStateProperties = []string{"TaskId", "State", "ErrorMessage"}
)

// CreateAndSubmitJobXML creates a job from an XML description, submits it,
// and returns its id. Cleanup is scheduled so the job is canceled when the
// spec ends, whether it passed or not; canceling an already terminal job is
// harmless.
func CreateAndSubmitJobXML(ctx context.Context, client *APIClient, jobXML string, opts ...RequestOption) int {
	GinkgoHelper()

	jobID, err := client.CreateJobFromXML(ctx, jobXML, opts...)
	Expect(err).NotTo(HaveOccurred())
	Expect(jobID).To(BeNumerically(">", 0))

	Expect(client.SubmitJob(ctx, jobID, opts...)).To(Succeed())

	GinkgoWriter.Printf("Created and submitted job %d\n", jobID)
	CancelJobOnCleanup(ctx, client, jobID)

	return jobID
}

// CancelJobOnCleanup schedules a best-effort cancel of the job when the
// current spec finishes, so run-until-canceled jobs never outlive their test
// and starve the cluster's compute nodes.
func CancelJobOnCleanup(ctx context.Context, client *APIClient, jobID int) {
	DeferCleanup(func() {
		if err := client.CancelJob(ctx, jobID, "Canceled by BVT cleanup."); err != nil {
			GinkgoWriter.Printf("Cleanup cancel of job %d: %v\n", jobID, err)
		}
	})
}

// WaitForJobState polls the job until its State property enters target,
// failing the spec on timeout. It returns the job's polled properties.
func WaitForJobState(ctx context.Context, client *APIClient, config *TestConfig, jobID int, target StateSet) PropertyList {
	GinkgoHelper()
	GinkgoWriter.Printf("Waiting for job %d to be %s\n", jobID, target)

	properties, err := PollUntil(func() (PropertyList, error) {
		return client.GetJob(ctx, jobID, &ListOptions{Properties: jobStateProperties})
	}, "State", target, config.PollMaxAttempts, config.PollInterval)
	Expect(err).NotTo(HaveOccurred())

	return properties
}

// WaitForTaskState polls a task until its State property enters target.
func WaitForTaskState(ctx context.Context, client *APIClient, config *TestConfig, jobID, taskID int, target StateSet) PropertyList {
	GinkgoHelper()
	GinkgoWriter.Printf("Waiting for task %d of job %d to be %s\n", taskID, jobID, target)

	properties, err := PollUntil(func() (PropertyList, error) {
		return client.GetTask(ctx, jobID, taskID, &ListOptions{Properties: taskStateProperties})
	}, "State", target, config.PollMaxAttempts, config.PollInterval)
	Expect(err).NotTo(HaveOccurred())

	return properties
}

// WaitForSubtaskState polls a subtask until its State property enters
// target. Fetches keep retrying while the parametric sweep has not expanded
// the subtask yet.
func WaitForSubtaskState(ctx context.Context, client *APIClient, config *TestConfig, jobID, taskID, subtaskID int, target StateSet) PropertyList {
	GinkgoHelper()
	GinkgoWriter.Printf("Waiting for subtask %d of task %d of job %d to be %s\n", subtaskID, taskID, jobID, target)

	properties, err := PollUntil(func() (PropertyList, error) {
		return client.GetSubtask(ctx, jobID, taskID, subtaskID, &ListOptions{Properties: subtaskStateProperties})
	}, "State", target, config.PollMaxAttempts, config.PollInterval)
	Expect(err).NotTo(HaveOccurred())

	return properties
}

// ExpectClientError asserts that an operation failed with a 4xx response.
func ExpectClientError(err error) {
	GinkgoHelper()

	Expect(err).To(HaveOccurred())
	Expect(IsClientError(err)).To(BeTrue(), "expected a 4xx client error, got: %v", err)
}

// IsNotReady reports whether err is the retryable not-yet-expanded sentinel.
func IsNotReady(err error) bool {
	return errors.Is(err, ErrNotReady)
}
