package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/usersvc/usersvc/internal/client"
	"github.com/usersvc/usersvc/internal/handler"
	"github.com/usersvc/usersvc/internal/handler/dto"
)

// errSeedFailed reports that at least one seed entry could not be created.
var errSeedFailed = errors.New("some users could not be seeded")

func newUsersCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List, inspect and create users",
	}
	cmd.AddCommand(
		newUsersListCommand(opts),
		newUsersGetCommand(opts),
		newUsersCreateCommand(opts),
		newUsersSeedCommand(opts),
	)
	return cmd
}

func newUsersListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all users in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := opts.newClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			users, err := c.ListUsers(ctx)
			if err != nil {
				return err
			}
			if len(users) == 0 && opts.output == OutputTable {
				fmt.Fprintln(cmd.OutOrStdout(), "No users!")
				return nil
			}
			return renderUsers(cmd.OutOrStdout(), opts.output, users)
		},
	}
}

func newUsersGetCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := opts.newClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			user, err := c.GetUser(ctx, args[0])
			if err != nil {
				return err
			}
			return renderUsers(cmd.OutOrStdout(), opts.output, []dto.UserResponse{*user})
		},
	}
}

func newUsersCreateCommand(opts *options) *cobra.Command {
	var username, email string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := opts.newClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			msg, err := c.CreateUser(ctx, username, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username of the new user")
	cmd.Flags().StringVar(&email, "email", "", "email of the new user")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

type seedResult struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Status   string `json:"status"`
}

// Seed statuses.
const (
	seedCreated = "created"
	seedExists  = "exists"
	seedInvalid = "invalid"
	seedFailed  = "failed"
)

func newUsersSeedCommand(opts *options) *cobra.Command {
	var pairs []string

	cmd := &cobra.Command{
		Use:     "seed",
		Short:   "Create several users, skipping ones that already exist",
		Example: "  usersctl users seed --user chriswoo:chriswoo@gmail.com --user johndoe:johndoe@gmail.com",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := opts.newClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			results := make([]seedResult, 0, len(pairs))
			failed := false
			for _, pair := range pairs {
				username, email, ok := strings.Cut(pair, ":")
				res := seedResult{Username: strings.TrimSpace(username), Email: strings.TrimSpace(email)}
				if !ok || res.Username == "" || res.Email == "" {
					res.Status = seedInvalid
					failed = true
					results = append(results, res)
					continue
				}

				_, err := c.CreateUser(ctx, res.Username, res.Email)
				var apiErr *client.APIError
				switch {
				case err == nil:
					res.Status = seedCreated
				case errors.As(err, &apiErr) && apiErr.Message == handler.MsgDuplicateUser:
					res.Status = seedExists
				default:
					res.Status = seedFailed
					failed = true
				}
				results = append(results, res)
			}

			out := cmd.OutOrStdout()
			if opts.output == OutputJSON {
				if err := renderJSON(out, results); err != nil {
					return err
				}
			} else {
				rows := make([]table.Row, 0, len(results))
				for _, r := range results {
					rows = append(rows, table.Row{r.Username, r.Email, r.Status})
				}
				renderTable(out, table.Row{"Username", "Email", "Status"}, rows)
			}

			if failed {
				return errSeedFailed
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&pairs, "user", nil, "username:email pair (repeatable)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
