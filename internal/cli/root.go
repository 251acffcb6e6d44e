// Package cli implements usersctl, the operator command line for usersvc.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/usersvc/usersvc/internal/client"
)

const (
	defaultAPIURL = "http://localhost:8080"
	apiURLEnv     = "USERSCTL_API_URL"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

type options struct {
	apiURL  string
	output  string
	timeout time.Duration
}

// NewRootCommand builds the usersctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "usersctl",
		Short:         "usersvc operator CLI",
		Long:          "Command line interface for inspecting and seeding a running usersvc API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case OutputTable, OutputJSON:
				return nil
			default:
				return fmt.Errorf("unsupported output %q (want %s or %s)", opts.output, OutputTable, OutputJSON)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api-url", apiURLFromEnv(), "base URL of the usersvc API (env "+apiURLEnv+")")
	flags.StringVarP(&opts.output, "output", "o", OutputTable, "output format: table or json")
	flags.DurationVar(&opts.timeout, "timeout", client.DefaultTimeout, "per-command timeout")

	root.AddCommand(newPingCommand(opts), newUsersCommand(opts))
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func apiURLFromEnv() string {
	if v := os.Getenv(apiURLEnv); v != "" {
		return v
	}
	return defaultAPIURL
}

// newClient builds an API client and a context bounded by --timeout.
func (o *options) newClient(cmd *cobra.Command) (*client.Client, context.Context, context.CancelFunc, error) {
	c, err := client.New(o.apiURL, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	return c, ctx, cancel, nil
}

func newPingCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the API answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := opts.newClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			msg, err := c.Ping(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
