// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// ServerStatus is the health of a running server as seen from its
// observability endpoints.
type ServerStatus struct {
	Addr    string `json:"addr"`
	Running bool   `json:"running"`
	Ready   bool   `json:"ready"`
	Error   string `json:"error,omitempty"`
}

// statusOptions holds flags for the status command.
type statusOptions struct {
	jsonOutput bool
}

func newStatusCmd(deps *Deps) *cobra.Command {
	opts := &statusOptions{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the health of a running tenantry server",
		Long: `Query the liveness and readiness probes of the server whose metrics
address is configured (see --metrics-addr).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, opts, deps)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, opts *statusOptions, deps *Deps) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Metrics.Addr == "" {
		return oops.Code("STATUS_UNAVAILABLE").Errorf("metrics address is disabled; nothing to query")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	status := queryServerStatus(ctx, deps.HTTPClient, cfg.Metrics.Addr)

	if opts.jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return oops.Code("STATUS_ENCODE_FAILED").Wrap(err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Print(formatStatusTable(status))
	return nil
}

// queryServerStatus probes liveness then readiness.
func queryServerStatus(ctx context.Context, client *http.Client, addr string) ServerStatus {
	status := ServerStatus{Addr: addr}
	base := addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}

	code, err := probe(ctx, client, base+"/healthz/liveness")
	if err != nil {
		status.Error = fmt.Sprintf("failed to connect: %v", err)
		return status
	}
	status.Running = code == http.StatusOK
	if !status.Running {
		status.Error = fmt.Sprintf("liveness returned %d", code)
		return status
	}

	code, err = probe(ctx, client, base+"/healthz/readiness")
	if err != nil {
		status.Error = fmt.Sprintf("readiness probe failed: %v", err)
		return status
	}
	status.Ready = code == http.StatusOK
	if !status.Ready {
		status.Error = "database not reachable"
	}
	return status
}

func probe(ctx context.Context, client *http.Client, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(status ServerStatus) string {
	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "ADDR\tSTATUS\tREADY\tDETAIL")

	state := "stopped"
	if status.Running {
		state = "running"
	}
	ready := "-"
	if status.Running {
		ready = fmt.Sprintf("%t", status.Ready)
	}
	detail := status.Error
	if detail == "" {
		detail = "-"
	}
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", status.Addr, state, ready, detail)

	_ = w.Flush()
	return buf.String()
}
