// Package cli implements shroomctl, the operator command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/shroomtrack/pkg/clients/shroomtrack"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server  string
	Timeout time.Duration
}

func (o *RootOptions) client() *shroomtrack.Client {
	return shroomtrack.New(o.Server, o.Timeout)
}

// NewRootCommand creates the shroomctl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "shroomctl",
		Short:         "Operate a shroomtrack server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("SHROOMTRACK_URL")
	if server == "" {
		server = "http://localhost:8080"
	}
	cmd.PersistentFlags().StringVar(&opts.Server, "server", server, "server base URL (env SHROOMTRACK_URL)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 2*time.Minute, "request timeout")

	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewRatesCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))

	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
