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

// hpc-bvt runs a fast preflight against an HPC Pack REST endpoint before the
// full verification suites are kicked off. It checks that the scheduler
// answers, that credentials work and that the cluster has the pieces the
// suites assume, then exits with the number of failed checks.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hpcpack-tools/rest-bvt/test/api"
)

var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)

// report accumulates check outcomes so a single run surfaces every broken
// prerequisite instead of stopping at the first.
type report struct {
	logger   *zap.Logger
	failures int
}

func (r *report) run(ctx context.Context, name string, check func(ctx context.Context) error) {
	start := time.Now()

	if err := check(ctx); err != nil {
		r.failures++
		r.logger.Error("check failed", zap.String("check", name), zap.Error(err))

		return
	}

	r.logger.Info("check passed", zap.String("check", name), zap.Duration("elapsed", time.Since(start)))
}

func checkClusterVersion(client *api.APIClient) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		version, err := client.ClusterVersion(ctx)
		if err != nil {
			return err
		}

		if !versionPattern.MatchString(version) {
			return fmt.Errorf("unexpected version string %q", version)
		}

		return nil
	}
}

func checkActiveHeadNode(client *api.APIClient) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		node, err := client.ActiveHeadNode(ctx)
		if err != nil {
			return err
		}

		if node == "" {
			return errors.New("no active head node reported")
		}

		return nil
	}
}

func checkDateTimeFormat(client *api.APIClient) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		format, err := client.DateTimeFormat(ctx)
		if err != nil {
			return err
		}

		if format == "" {
			return errors.New("no datetime format reported")
		}

		return nil
	}
}

func checkOnlineNodes(client *api.APIClient) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		nodes, _, err := client.ListNodes(ctx, &api.ListOptions{
			Filter:     "NodeState eq Online",
			Properties: []string{"Id", "Name", "NodeState"},
		})
		if err != nil {
			return err
		}

		if len(nodes) == 0 {
			return errors.New("no online nodes, the verification suites need at least one")
		}

		return nil
	}
}

func checkDefaultJobTemplate(client *api.APIClient) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		templates, err := client.ListJobTemplates(ctx)
		if err != nil {
			return err
		}

		if !slices.Contains(templates, "Default") {
			return fmt.Errorf("Default job template missing, got %v", templates)
		}

		return nil
	}
}

// preflight runs all checks and returns the failure count, so main can sync
// the logger before exiting.
func preflight(logger *zap.Logger, timeout time.Duration) int {
	config, err := api.LoadTestConfig()
	if err != nil {
		logger.Error("configuration invalid", zap.Error(err))
		return 1
	}

	client := api.NewAPIClient(config)

	logger.Info("preflight starting", zap.String("endpoint", config.BaseURL()), zap.String("user", config.Username))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	r := &report{logger: logger}

	r.run(ctx, "cluster-version", checkClusterVersion(client))
	r.run(ctx, "active-head-node", checkActiveHeadNode(client))
	r.run(ctx, "datetime-format", checkDateTimeFormat(client))
	r.run(ctx, "online-nodes", checkOnlineNodes(client))
	r.run(ctx, "default-job-template", checkDefaultJobTemplate(client))

	if r.failures > 0 {
		logger.Error("preflight failed", zap.Int("failures", r.failures))
	} else {
		logger.Info("preflight passed")
	}

	return r.failures
}

func main() {
	timeout := pflag.Duration("timeout", 5*time.Minute, "Overall deadline for the preflight run.")
	debug := pflag.Bool("debug", false, "Enable debug logging.")

	pflag.Parse()

	zapConfig := zap.NewProductionConfig()
	if *debug {
		zapConfig = zap.NewDevelopmentConfig()
	}

	logger, err := zapConfig.Build()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	failures := preflight(logger, *timeout)

	//nolint:errcheck // stderr sync failures are unactionable
	logger.Sync()

	os.Exit(failures)
}
