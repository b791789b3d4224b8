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
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type TestConfig struct {
	// Hostname of the cluster head node; the API base URL is
	// https://<Hostname>/hpc.
	Hostname string
	Username string
	Password string

	// SecondaryUsername is a non-admin cluster user for impersonation
	// tests. Those tests are skipped when it is empty.
	SecondaryUsername string

	RequestTimeout  time.Duration
	PollInterval    time.Duration
	PollMaxAttempts int

	InsecureSkipVerify bool
	LogRequests        bool
	LogResponses       bool
}

func (c *TestConfig) BaseURL() string {
	return fmt.Sprintf("https://%s/hpc", c.Hostname)
}

// LoadTestConfig loads configuration from environment variables and .env files.
// Returns an error if required configuration values are missing.
//
// The bvt_* variable names are the contract shared with existing cluster CI
// environments, hence the unusual casing.
func LoadTestConfig() (*TestConfig, error) {
	loadEnvFile()

	config := &TestConfig{
		Hostname:           os.Getenv("bvt_hostname"),
		Username:           os.Getenv("bvt_username"),
		Password:           os.Getenv("bvt_password"),
		SecondaryUsername:  os.Getenv("bvt_username2"),
		RequestTimeout:     getDurationWithDefault("REQUEST_TIMEOUT", 30*time.Second),
		PollInterval:       getDurationWithDefault("POLL_INTERVAL", time.Second),
		PollMaxAttempts:    getIntWithDefault("POLL_MAX_ATTEMPTS", 30),
		InsecureSkipVerify: getBoolWithDefault("INSECURE_SKIP_VERIFY", true),
		LogRequests:        getBoolWithDefault("LOG_REQUESTS", true),
		LogResponses:       getBoolWithDefault("LOG_RESPONSES", true),
	}

	if err := validateRequiredFields(config); err != nil {
		return nil, err
	}

	return config, nil
}

// getDurationWithDefault gets a duration from environment variable or returns default.
func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getIntWithDefault gets an integer from environment variable or returns default.
func getIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// getBoolWithDefault gets a boolean from environment variable or returns default.
func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

func loadEnvFile() {
	envPaths := []string{
		"../../../test/.env", // From test/api/suites directory
		"../../test/.env",    // From test/api directory
	}

	var envPath string

	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				envPath = absPath
				break
			}
		}
	}

	if envPath == "" {
		// .env file not found - this is OK in CI/CD where env vars are set directly
		return
	}

	if err := godotenv.Load(envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env file from %s: %v\n", envPath, err)
	}
}

// validateRequiredFields checks that all required configuration values are set.
func validateRequiredFields(config *TestConfig) error {
	var missing []string

	required := map[string]string{
		"bvt_hostname": config.Hostname,
		"bvt_username": config.Username,
		"bvt_password": config.Password,
	}

	for envVar, value := range required {
		if value == "" {
			missing = append(missing, envVar)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s. Please set these environment variables or add them to a .env file", strings.Join(missing, ", "))
	}

	return nil
}
