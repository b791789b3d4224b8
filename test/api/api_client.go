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

//nolint:err113,revive // dynamic errors and naming conventions acceptable in test code
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/onsi/ginkgo/v2"
)

const (
	// AsUserHeader carries the username a privileged caller acts on
	// behalf of.
	AsUserHeader = "x-ms-as-user"

	// RowCountHeader carries the total row count of a paginated read.
	RowCountHeader = "x-ms-row-count"

	// ContinuationHeader carries the continuation token of an unfinished
	// read. Absent on the last page.
	ContinuationHeader = "x-ms-continuation-QueryId"
)

type APIClient struct {
	baseURL   string
	username  string
	password  string
	client    *http.Client
	config    *TestConfig
	endpoints *Endpoints
}

// NewAPIClient builds a client for the cluster named by config. Head nodes
// commonly serve self-signed certificates, so TLS verification is skipped
// when config says so.
func NewAPIClient(config *TestConfig) *APIClient {
	return NewAPIClientWithBaseURL(config, config.BaseURL())
}

// NewAPIClientWithBaseURL overrides the base URL, primarily for tests that
// point the client at a local stand-in server.
func NewAPIClientWithBaseURL(config *TestConfig, baseURL string) *APIClient {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // stdlib guarantees the type

	if config.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // self-signed head node certs
	}

	return &APIClient{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: config.Username,
		password: config.Password,
		client: &http.Client{
			Timeout:   config.RequestTimeout,
			Transport: transport,
		},
		config:    config,
		endpoints: NewEndpoints(),
	}
}

// RequestOption mutates an outgoing request.
type RequestOption func(*http.Request)

// AsUser sets the impersonation header so the request is processed as the
// given cluster user. The authenticated caller must hold an administrator
// role for the service to honor it.
func AsUser(username string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set(AsUserHeader, username)
	}
}

// APIError is a response whose status code differs from the expected one.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status code %d, body: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsClientError reports whether err is an APIError in the 4xx range. The
// suites assert "some client error", never a specific code, since the
// service is not consistent about 400 vs 404 across entities.
func IsClientError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}

// RowCount reads the total row count header of a paginated response.
func RowCount(resp *http.Response) (int, error) {
	value := resp.Header.Get(RowCountHeader)
	if value == "" {
		return 0, fmt.Errorf("response has no %s header", RowCountHeader)
	}

	count, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s header: %w", RowCountHeader, err)
	}

	return count, nil
}

// ContinuationQueryID reads the continuation token header, empty on the
// final page of a read.
func ContinuationQueryID(resp *http.Response) string {
	return resp.Header.Get(ContinuationHeader)
}

// doRequest issues one authenticated request. A non-nil payload is sent as
// JSON; note the service expects even XML job descriptions wrapped in a JSON
// string. When expectedStatus is positive, any other status code is returned
// as an *APIError. expectedStatus zero hands status handling to the caller.
func (c *APIClient) doRequest(ctx context.Context, method, path string, query url.Values, payload any, expectedStatus int, opts ...RequestOption) (*http.Response, []byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var body io.Reader

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("marshaling request body: %w", err)
		}

		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}

	req.SetBasicAuth(c.username, c.password)

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, opt := range opts {
		opt(req)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		ginkgo.GinkgoWriter.Printf("[%s %s] ERROR duration=%s error=%v\n", method, path, duration, err)
		return nil, nil, fmt.Errorf("http request failed: %w", err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		ginkgo.GinkgoWriter.Printf("[%s %s] ERROR reading response body status=%d error=%v\n", method, path, resp.StatusCode, err)
		return resp, nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.config.LogRequests {
		ginkgo.GinkgoWriter.Printf("[%s %s] status=%d duration=%s\n", method, fullURL, resp.StatusCode, duration)
	}

	if c.config.LogResponses && len(respBody) > 0 {
		ginkgo.GinkgoWriter.Printf("[%s %s] response body: %s\n", method, path, string(respBody))
	}

	if expectedStatus > 0 && resp.StatusCode != expectedStatus {
		return resp, respBody, &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	return resp, respBody, nil
}

// Cluster metadata operations.

func (c *APIClient) ClusterVersion(ctx context.Context) (string, error) {
	return c.getString(ctx, c.endpoints.ClusterVersion(), "cluster version")
}

func (c *APIClient) ActiveHeadNode(ctx context.Context) (string, error) {
	return c.getString(ctx, c.endpoints.ActiveHeadNode(), "active head node")
}

func (c *APIClient) DateTimeFormat(ctx context.Context) (string, error) {
	return c.getString(ctx, c.endpoints.DateTimeFormat(), "datetime format")
}

func (c *APIClient) getString(ctx context.Context, path, what string) (string, error) {
	//nolint:bodyclose // response body is closed in doRequest
	_, respBody, err := c.doRequest(ctx, http.MethodGet, path, nil, nil, http.StatusOK)
	if err != nil {
		return "", fmt.Errorf("getting %s: %w", what, err)
	}

	var value string
	if err := json.Unmarshal(respBody, &value); err != nil {
		return "", fmt.Errorf("unmarshaling %s response: %w", what, err)
	}

	return value, nil
}

// Node operations.

func (c *APIClient) ListNodes(ctx context.Context, opts *ListOptions) ([]RestObject, *http.Response, error) {
	return c.listRows(ctx, c.endpoints.ListNodes(), opts, "nodes")
}

func (c *APIClient) GetNode(ctx context.Context, name string) (PropertyList, error) {
	return c.getProperties(ctx, c.endpoints.GetNode(name), nil, fmt.Sprintf("node %s", name))
}

func (c *APIClient) ListNodeGroups(ctx context.Context) ([]RestObject, error) {
	rows, _, err := c.listRows(ctx, c.endpoints.ListNodeGroups(), nil, "node groups")
	return rows, err
}

// GetNodeGroup returns the names of the nodes in a group.
func (c *APIClient) GetNodeGroup(ctx context.Context, name string) ([]string, error) {
	//nolint:bodyclose // response body is closed in doRequest
	_, respBody, err := c.doRequest(ctx, http.MethodGet, c.endpoints.GetNodeGroup(name), nil, nil, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("getting node group %s: %w", name, err)
	}

	var nodes []string
	if err := json.Unmarshal(respBody, &nodes); err != nil {
		return nil, fmt.Errorf("unmarshaling node group response: %w", err)
	}

	return nodes, nil
}

// Job operations.

// CreateJobFromXML creates a job from an XML description and returns its id.
// The job is left in the Configuring state until submitted.
func (c *APIClient) CreateJobFromXML(ctx context.Context, jobXML string, opts ...RequestOption) (int, error) {
	return c.postForID(ctx, c.endpoints.CreateJobFromXML(), jobXML, "creating job from xml", opts...)
}

// CreateJob creates a job from a property list and returns its id.
func (c *APIClient) CreateJob(ctx context.Context, properties PropertyList, opts ...RequestOption) (int, error) {
	return c.postForID(ctx, c.endpoints.CreateJob(), properties, "creating job", opts...)
}

func (c *APIClient) SubmitJob(ctx context.Context, jobID int, opts ...RequestOption) error {
	return c.postAction(ctx, c.endpoints.SubmitJob(jobID), "", fmt.Sprintf("submitting job %d", jobID), opts...)
}

// CancelJob cancels a job. A non-empty message is recorded in the job's
// ErrorMessage property.
func (c *APIClient) CancelJob(ctx context.Context, jobID int, message string, opts ...RequestOption) error {
	return c.postAction(ctx, c.endpoints.CancelJob(jobID), message, fmt.Sprintf("canceling job %d", jobID), opts...)
}

func (c *APIClient) FinishJob(ctx context.Context, jobID int, message string, opts ...RequestOption) error {
	return c.postAction(ctx, c.endpoints.FinishJob(jobID), message, fmt.Sprintf("finishing job %d", jobID), opts...)
}

func (c *APIClient) RequeueJob(ctx context.Context, jobID int, opts ...RequestOption) error {
	return c.postAction(ctx, c.endpoints.RequeueJob(jobID), "", fmt.Sprintf("requeuing job %d", jobID), opts...)
}

func (c *APIClient) GetJob(ctx context.Context, jobID int, opts *ListOptions) (PropertyList, error) {
	return c.getProperties(ctx, c.endpoints.GetJob(jobID), opts, fmt.Sprintf("job %d", jobID))
}

func (c *APIClient) ListJobs(ctx context.Context, opts *ListOptions) ([]RestObject, *http.Response, error) {
	return c.listRows(ctx, c.endpoints.ListJobs(), opts, "jobs")
}

func (c *APIClient) ListJobTemplates(ctx context.Context) ([]string, error) {
	//nolint:bodyclose // response body is closed in doRequest
	_, respBody, err := c.doRequest(ctx, http.MethodGet, c.endpoints.ListJobTemplates(), nil, nil, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("listing job templates: %w", err)
	}

	var templates []string
	if err := json.Unmarshal(respBody, &templates); err != nil {
		return nil, fmt.Errorf("unmarshaling job templates response: %w", err)
	}

	return templates, nil
}

// SetJobProperties updates job properties in place. The service rejects
// updates in terminal states with a 4xx.
func (c *APIClient) SetJobProperties(ctx context.Context, jobID int, properties PropertyList) error {
	return c.putProperties(ctx, c.endpoints.SetJobProperties(jobID), properties, fmt.Sprintf("job %d", jobID))
}

func (c *APIClient) SetJobEnvVariables(ctx context.Context, jobID int, variables PropertyList) error {
	return c.postAction(ctx, c.endpoints.JobEnvVariables(jobID), variables, fmt.Sprintf("setting env variables of job %d", jobID))
}

func (c *APIClient) GetJobEnvVariables(ctx context.Context, jobID int, names ...string) (PropertyList, error) {
	return c.getProperties(ctx, c.endpoints.JobEnvVariables(jobID), &ListOptions{Names: names}, fmt.Sprintf("env variables of job %d", jobID))
}

func (c *APIClient) SetJobCustomProperties(ctx context.Context, jobID int, properties PropertyList) error {
	return c.postAction(ctx, c.endpoints.JobCustomProperties(jobID), properties, fmt.Sprintf("setting custom properties of job %d", jobID))
}

func (c *APIClient) GetJobCustomProperties(ctx context.Context, jobID int, names ...string) (PropertyList, error) {
	return c.getProperties(ctx, c.endpoints.JobCustomProperties(jobID), &ListOptions{Names: names}, fmt.Sprintf("custom properties of job %d", jobID))
}

// Task operations.

// AddTask appends a task to a job in the Configuring state and returns the
// task id.
func (c *APIClient) AddTask(ctx context.Context, jobID int, properties PropertyList) (int, error) {
	return c.postForID(ctx, c.endpoints.AddTask(jobID), properties, fmt.Sprintf("adding task to job %d", jobID))
}

func (c *APIClient) ListTasks(ctx context.Context, jobID int, opts *ListOptions) ([]RestObject, *http.Response, error) {
	return c.listRows(ctx, c.endpoints.ListTasks(jobID), opts, fmt.Sprintf("tasks of job %d", jobID))
}

func (c *APIClient) GetTask(ctx context.Context, jobID, taskID int, opts *ListOptions) (PropertyList, error) {
	return c.getProperties(ctx, c.endpoints.GetTask(jobID, taskID), opts, fmt.Sprintf("task %d of job %d", taskID, jobID))
}

func (c *APIClient) CancelTask(ctx context.Context, jobID, taskID int, message string) error {
	return c.postAction(ctx, c.endpoints.CancelTask(jobID, taskID), message, fmt.Sprintf("canceling task %d of job %d", taskID, jobID))
}

func (c *APIClient) FinishTask(ctx context.Context, jobID, taskID int, message string) error {
	return c.postAction(ctx, c.endpoints.FinishTask(jobID, taskID), message, fmt.Sprintf("finishing task %d of job %d", taskID, jobID))
}

func (c *APIClient) RequeueTask(ctx context.Context, jobID, taskID int) error {
	return c.postAction(ctx, c.endpoints.RequeueTask(jobID, taskID), "", fmt.Sprintf("requeuing task %d of job %d", taskID, jobID))
}

func (c *APIClient) SetTaskProperties(ctx context.Context, jobID, taskID int, properties PropertyList) error {
	return c.putProperties(ctx, c.endpoints.SetTaskProperties(jobID, taskID), properties, fmt.Sprintf("task %d of job %d", taskID, jobID))
}

func (c *APIClient) SetTaskEnvVariables(ctx context.Context, jobID, taskID int, variables PropertyList) error {
	return c.postAction(ctx, c.endpoints.TaskEnvVariables(jobID, taskID), variables, fmt.Sprintf("setting env variables of task %d of job %d", taskID, jobID))
}

func (c *APIClient) GetTaskEnvVariables(ctx context.Context, jobID, taskID int, names ...string) (PropertyList, error) {
	return c.getProperties(ctx, c.endpoints.TaskEnvVariables(jobID, taskID), &ListOptions{Names: names}, fmt.Sprintf("env variables of task %d of job %d", taskID, jobID))
}

func (c *APIClient) SetTaskCustomProperties(ctx context.Context, jobID, taskID int, properties PropertyList) error {
	return c.postAction(ctx, c.endpoints.TaskCustomProperties(jobID, taskID), properties, fmt.Sprintf("setting custom properties of task %d of job %d", taskID, jobID))
}

func (c *APIClient) GetTaskCustomProperties(ctx context.Context, jobID, taskID int, names ...string) (PropertyList, error) {
	return c.getProperties(ctx, c.endpoints.TaskCustomProperties(jobID, taskID), &ListOptions{Names: names}, fmt.Sprintf("custom properties of task %d of job %d", taskID, jobID))
}

// Subtask operations.

// GetSubtask retrieves one subtask of a parametric sweep task. While the
// sweep is still expanding the service answers 4xx with a "not been expanded
// yet" message; that case is reported as ErrNotReady so pollers keep waiting.
func (c *APIClient) GetSubtask(ctx context.Context, jobID, taskID, subtaskID int, opts *ListOptions) (PropertyList, error) {
	//nolint:bodyclose // response body is closed in doRequest
	resp, respBody, err := c.doRequest(ctx, http.MethodGet, c.endpoints.GetSubtask(jobID, taskID, subtaskID), opts.Values(), nil, 0)
	if err != nil {
		return nil, fmt.Errorf("getting subtask %d of task %d of job %d: %w", subtaskID, taskID, jobID, err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && strings.Contains(string(respBody), "the specified subtask has not been expanded yet") {
			return nil, fmt.Errorf("subtask %d of task %d of job %d: %w", subtaskID, taskID, jobID, ErrNotReady)
		}

		return nil, &APIError{
			Method:     http.MethodGet,
			Path:       c.endpoints.GetSubtask(jobID, taskID, subtaskID),
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	var properties PropertyList
	if err := json.Unmarshal(respBody, &properties); err != nil {
		return nil, fmt.Errorf("unmarshaling subtask response: %w", err)
	}

	return properties, nil
}

func (c *APIClient) CancelSubtask(ctx context.Context, jobID, taskID, subtaskID int, message string) error {
	return c.postAction(ctx, c.endpoints.CancelSubtask(jobID, taskID, subtaskID), message, fmt.Sprintf("canceling subtask %d of task %d of job %d", subtaskID, taskID, jobID))
}

func (c *APIClient) FinishSubtask(ctx context.Context, jobID, taskID, subtaskID int, message string) error {
	return c.postAction(ctx, c.endpoints.FinishSubtask(jobID, taskID, subtaskID), message, fmt.Sprintf("finishing subtask %d of task %d of job %d", subtaskID, taskID, jobID))
}

func (c *APIClient) RequeueSubtask(ctx context.Context, jobID, taskID, subtaskID int) error {
	return c.postAction(ctx, c.endpoints.RequeueSubtask(jobID, taskID, subtaskID), "", fmt.Sprintf("requeuing subtask %d of task %d of job %d", subtaskID, taskID, jobID))
}

// Generic request helpers.

// listRows is the shared path for collection endpoints returning rows of
// wrapped property lists plus pagination headers.
func (c *APIClient) listRows(ctx context.Context, path string, opts *ListOptions, what string) ([]RestObject, *http.Response, error) {
	//nolint:bodyclose // response body is closed in doRequest
	resp, respBody, err := c.doRequest(ctx, http.MethodGet, path, opts.Values(), nil, http.StatusOK)
	if err != nil {
		return nil, resp, fmt.Errorf("listing %s: %w", what, err)
	}

	var rows []RestObject
	if err := json.Unmarshal(respBody, &rows); err != nil {
		return nil, resp, fmt.Errorf("unmarshaling %s response: %w", what, err)
	}

	return rows, resp, nil
}

// getProperties is the shared path for single-entity endpoints returning a
// bare property list.
func (c *APIClient) getProperties(ctx context.Context, path string, opts *ListOptions, what string) (PropertyList, error) {
	//nolint:bodyclose // response body is closed in doRequest
	_, respBody, err := c.doRequest(ctx, http.MethodGet, path, opts.Values(), nil, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", what, err)
	}

	var properties PropertyList
	if err := json.Unmarshal(respBody, &properties); err != nil {
		return nil, fmt.Errorf("unmarshaling %s response: %w", what, err)
	}

	return properties, nil
}

// postForID is the shared path for creation endpoints answering with a bare
// integer id.
func (c *APIClient) postForID(ctx context.Context, path string, payload any, what string, opts ...RequestOption) (int, error) {
	//nolint:bodyclose // response body is closed in doRequest
	_, respBody, err := c.doRequest(ctx, http.MethodPost, path, nil, payload, http.StatusOK, opts...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}

	var id int
	if err := json.Unmarshal(respBody, &id); err != nil {
		return 0, fmt.Errorf("unmarshaling %s response: %w", what, err)
	}

	return id, nil
}

// postAction posts a lifecycle action or a property-list payload. A string
// payload is the optional operator message; empty means no body at all.
func (c *APIClient) postAction(ctx context.Context, path string, payload any, what string, opts ...RequestOption) error {
	if message, ok := payload.(string); ok && message == "" {
		payload = nil
	}

	//nolint:bodyclose // response body is closed in doRequest
	_, _, err := c.doRequest(ctx, http.MethodPost, path, nil, payload, http.StatusOK, opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}

	return nil
}

func (c *APIClient) putProperties(ctx context.Context, path string, properties PropertyList, what string) error {
	//nolint:bodyclose // response body is closed in doRequest
	_, _, err := c.doRequest(ctx, http.MethodPut, path, nil, properties, http.StatusOK)
	if err != nil {
		return fmt.Errorf("updating properties of %s: %w", what, err)
	}

	return nil
}
