// Command spikenetctl is a thin inspection client for a running spikenetd
// daemon: a cobra root with one subcommand per admin endpoint, each doing a
// plain HTTP round-trip and pretty-printing the JSON response.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type cli struct {
	baseURL    string
	httpClient *http.Client
}

func main() {
	var connectAddr string

	c := &cli{httpClient: &http.Client{Timeout: 10 * time.Second}}

	rootCmd := &cobra.Command{
		Use:   "spikenetctl",
		Short: "spikenetctl - inspection client for a running spikenetd daemon",
		Long:  "A command-line client for inspecting spikenetd's object store, scheduler, and worker pool state.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if connectAddr == "" {
				connectAddr = os.Getenv("SPIKENET_ADDR")
			}
			if connectAddr == "" {
				connectAddr = "http://localhost:7070"
			}
			if !strings.HasPrefix(connectAddr, "http://") && !strings.HasPrefix(connectAddr, "https://") {
				connectAddr = "http://" + connectAddr
			}
			c.baseURL = strings.TrimRight(connectAddr, "/")
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&connectAddr, "connect", "", "spikenetd inspection address (overrides SPIKENET_ADDR)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Check daemon health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get("/health")
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show object store, scheduler, worker pool, and ID allocator stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get("/v1/stats")
		},
	})

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Runtime configuration inspection",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the active server configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get("/v1/config")
		},
	})
	rootCmd.AddCommand(configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func (c *cli) get(path string) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("connection to %s failed: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		fmt.Fprintf(os.Stderr, "error %d: %s\n", resp.StatusCode, string(data))
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	var pretty map[string]any
	if err := json.Unmarshal(data, &pretty); err == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
		return nil
	}
	fmt.Println(string(data))
	return nil
}
