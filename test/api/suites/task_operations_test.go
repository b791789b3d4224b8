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

//nolint:testpackage,revive // test package in suites is standard for these tests, dot imports standard for Ginkgo
package suites

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hpcpack-tools/rest-bvt/test/api"
)

var _ = Describe("Task Operations", func() {
	Context("When querying the tasks of a job", func() {
		var jobID int

		const taskCount = 4

		BeforeEach(func() {
			// Three tasks that succeed and one whose command does not
			// exist, so the job ends up Failed with a mixed task set.
			jobXML := api.NewJobXML("JobWithAFewTasks").
				WithTask("Good Task", "echo a").
				WithTask("Good Task", "echo b").
				WithTask("Good Task", "echo c").
				WithTask("Bad Task", "thiscommanddoesnotexist").
				Build()

			jobID = api.CreateAndSubmitJobXML(ctx, client, jobXML)
			api.WaitForJobState(ctx, client, config, jobID, api.States("Failed"))
		})

		It("should continue reads via the continuation token", func() {
			opts := &api.ListOptions{
				Properties:  []string{"TaskId", "Name", "State", "CommandLine"},
				RowsPerRead: 3,
			}

			tasks, resp, err := client.ListTasks(ctx, jobID, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(opts.RowsPerRead))
			Expect(api.ContinuationQueryID(resp)).NotTo(BeEmpty())

			opts.QueryID = api.ContinuationQueryID(resp)
			tasks, resp, err = client.ListTasks(ctx, jobID, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(taskCount - 3))
			Expect(api.ContinuationQueryID(resp)).To(BeEmpty())
		})

		It("should filter tasks by state", func() {
			tasks, _, err := client.ListTasks(ctx, jobID, &api.ListOptions{
				Filter: "TaskState eq Failed",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(1))
		})

		It("should paginate with startRow against the x-ms-row-count total", func() {
			opts := &api.ListOptions{
				Properties:  []string{"TaskId", "Name", "State", "CommandLine"},
				RowsPerRead: 3,
				StartRow:    api.Int(0),
			}

			tasks, resp, err := client.ListTasks(ctx, jobID, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(3))
			Expect(api.RowCount(resp)).To(Equal(taskCount))

			opts.StartRow = api.Int(3)
			tasks, resp, err = client.ListTasks(ctx, jobID, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(1))
			Expect(api.RowCount(resp)).To(Equal(taskCount))

			opts.StartRow = api.Int(taskCount)
			tasks, resp, err = client.ListTasks(ctx, jobID, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(BeEmpty())
			Expect(api.RowCount(resp)).To(Equal(taskCount))
		})

		It("should sort by task id with mirrored ascending and descending orders", func() {
			opts := &api.ListOptions{
				Properties:  []string{"TaskId", "Name", "State", "CommandLine"},
				RowsPerRead: 100,
				StartRow:    api.Int(0),
				SortTasksBy: "TaskId",
				Ascending:   api.Bool(true),
			}

			ascending, _, err := client.ListTasks(ctx, jobID, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(ascending).To(HaveLen(taskCount))

			opts.Ascending = api.Bool(false)
			descending, _, err := client.ListTasks(ctx, jobID, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(descending).To(HaveLen(taskCount))

			Expect(taskIDs(descending)).To(Equal(reversed(taskIDs(ascending))))
		})

		It("should fetch a single task and reject an unknown task id", func() {
			properties, err := client.GetTask(ctx, jobID, taskCount, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(properties).NotTo(BeEmpty())

			_, err = client.GetTask(ctx, jobID, taskCount+1, nil)
			api.ExpectClientError(err)
		})
	})

	Context("When canceling a running task", func() {
		It("should fail the task with the cancel message and fail the parent job", func() {
			jobID := api.CreateAndSubmitJobXML(ctx, client, api.LongRunningTaskJobXML())
			api.WaitForTaskState(ctx, client, config, jobID, 1, api.States("Running"))

			message := "Canceled by test!"
			Expect(client.CancelTask(ctx, jobID, 1, message)).To(Succeed())

			// A canceled task lands in Failed, not Canceled.
			properties := api.WaitForTaskState(ctx, client, config, jobID, 1, api.States("Failed"))
			Expect(properties.Value("ErrorMessage")).To(ContainSubstring(message))

			// And a failed task fails its job.
			api.WaitForJobState(ctx, client, config, jobID, api.States("Failed"))
		})
	})

	Context("When finishing a running task", func() {
		It("should finish the task with the message and finish the parent job", func() {
			jobID := api.CreateAndSubmitJobXML(ctx, client, api.LongRunningTaskJobXML())
			api.WaitForTaskState(ctx, client, config, jobID, 1, api.States("Running"))

			message := "Finished by test!"
			Expect(client.FinishTask(ctx, jobID, 1, message)).To(Succeed())

			properties := api.WaitForTaskState(ctx, client, config, jobID, 1, api.States("Finished"))
			Expect(properties.Value("ErrorMessage")).To(ContainSubstring(message))

			api.WaitForJobState(ctx, client, config, jobID, api.States("Finished"))
		})
	})

	Context("When requeuing a canceled task", func() {
		It("should run the task again", func() {
			jobXML := api.NewJobXML("RunUntilCanceledJob").
				WithCores(1, 1).
				RunUntilCanceled().
				WithTask("", api.LongRunningCommand).
				Build()

			jobID := api.CreateAndSubmitJobXML(ctx, client, jobXML)
			api.WaitForTaskState(ctx, client, config, jobID, 1, api.States("Running"))

			Expect(client.CancelTask(ctx, jobID, 1, "")).To(Succeed())
			api.WaitForTaskState(ctx, client, config, jobID, 1, api.States("Failed"))

			Expect(client.RequeueTask(ctx, jobID, 1)).To(Succeed())
			api.WaitForTaskState(ctx, client, config, jobID, 1, api.States("Queued", "Running"))

			// Wait the job over so a small cluster can run the remaining
			// suites without contention.
			Expect(client.CancelJob(ctx, jobID, "")).To(Succeed())
			api.WaitForJobState(ctx, client, config, jobID, api.States("Canceled"))
		})
	})

	Context("When setting environment variables on a task", func() {
		It("should scope them to that task only", func() {
			jobXML := api.NewJobXML("CustomEnvJob").
				WithTask("", api.EchoEnvCommand).
				WithTask("", api.EchoEnvCommand).
				Build()

			jobID, err := client.CreateJobFromXML(ctx, jobXML)
			Expect(err).NotTo(HaveOccurred())
			api.CancelJobOnCleanup(ctx, client, jobID)

			Expect(client.SetTaskEnvVariables(ctx, jobID, 1, api.PropertyList{
				api.NameValue(envVarName, envVarValue),
				api.NameValue("myvar2", "Another Var"),
			})).To(Succeed())

			Expect(client.SubmitJob(ctx, jobID)).To(Succeed())
			api.WaitForJobState(ctx, client, config, jobID, api.States("Finished"))

			variables, err := client.GetTaskEnvVariables(ctx, jobID, 1, envVarName)
			Expect(err).NotTo(HaveOccurred())
			Expect(variables).To(HaveLen(1))
			Expect(variables.Value(envVarName)).To(Equal(envVarValue))

			variables, err = client.GetTaskEnvVariables(ctx, jobID, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(variables).To(BeEmpty())

			// Only the first task's output sees the value.
			outputOptions := &api.ListOptions{Properties: []string{"TaskId", "ExitCode", "Output"}}

			output, err := client.GetTask(ctx, jobID, 1, outputOptions)
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Value("Output")).To(ContainSubstring(envVarValue))

			output, err = client.GetTask(ctx, jobID, 2, outputOptions)
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Value("Output")).NotTo(ContainSubstring(envVarValue))
		})
	})

	Context("When setting custom properties on a task", func() {
		It("should store them without touching the task environment", func() {
			jobID, err := client.CreateJobFromXML(ctx, echoEnvJobXML("CustomPropJob"))
			Expect(err).NotTo(HaveOccurred())
			api.CancelJobOnCleanup(ctx, client, jobID)

			Expect(client.SetTaskCustomProperties(ctx, jobID, 1, api.PropertyList{
				api.NameValue(envVarName, envVarValue),
				api.NameValue("myvar2", "Another Var"),
			})).To(Succeed())

			Expect(client.SubmitJob(ctx, jobID)).To(Succeed())
			api.WaitForJobState(ctx, client, config, jobID, api.States("Finished"))

			properties, err := client.GetTaskCustomProperties(ctx, jobID, 1, envVarName)
			Expect(err).NotTo(HaveOccurred())
			Expect(properties).To(HaveLen(1))
			Expect(properties.Value(envVarName)).To(Equal(envVarValue))

			output, err := client.GetTask(ctx, jobID, 1, &api.ListOptions{
				Properties: []string{"TaskId", "ExitCode", "Output"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Value("Output")).NotTo(ContainSubstring(envVarValue))
		})
	})

	Context("When updating task properties", func() {
		It("should allow updates in the Configuring state", func() {
			jobID, err := client.CreateJobFromXML(ctx, api.SimpleJobXML())
			Expect(err).NotTo(HaveOccurred())
			api.CancelJobOnCleanup(ctx, client, jobID)

			updatedName := "Updated Name"
			Expect(client.SetTaskProperties(ctx, jobID, 1, api.PropertyList{
				api.NameValue("Name", updatedName),
			})).To(Succeed())

			properties, err := client.GetTask(ctx, jobID, 1, &api.ListOptions{
				Properties: []string{"TaskId", "Name", "State"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(properties.Value("Name")).To(Equal(updatedName))

			// Without a submit the task would sit in Configuring forever,
			// even after the job is canceled.
			Expect(client.SubmitJob(ctx, jobID)).To(Succeed())
			api.WaitForJobState(ctx, client, config, jobID, api.States("Finished"))
		})
	})
})

func taskIDs(tasks []api.RestObject) []string {
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.Properties.Value("TaskId")
	}

	return ids
}
