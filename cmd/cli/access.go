package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/akeren/telecheck/domain/access"
	"github.com/spf13/cobra"
)

func registerCmd(cli *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "register <email>",
		Short: "Set the session's email and request access",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.load(); err != nil {
				return err
			}

			resp, err := cli.services.Access.Submit(cmd.Context(), cli.sessionID, &access.SubmitEmailRequest{Email: args[0]})
			if err != nil {
				return err
			}

			printSession(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}

func sessionCmd(cli *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the session's email, status and view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.load(); err != nil {
				return err
			}

			resp, err := cli.services.Access.Resolve(cmd.Context(), cli.sessionID)
			if err != nil {
				return err
			}

			printSession(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}

func rosterCmd(cli *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster [approve|reject|revoke|reevaluate <email>]",
		Short: "List the roster, or apply an admin action to one email",
		Args: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 0:
				return nil
			case 2:
				if _, ok := access.ParseAction(args[0]); !ok {
					return fmt.Errorf("unknown roster action %q", args[0])
				}
				return nil
			default:
				return fmt.Errorf("expected no arguments or <action> <email>")
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.load(); err != nil {
				return err
			}

			if len(args) == 2 {
				action, _ := access.ParseAction(args[0])
				record, err := cli.services.Access.Transition(cmd.Context(), cli.sessionID, action, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", record.Email, record.Status)
				return nil
			}

			roster, err := cli.services.Access.ListRoster(cmd.Context(), cli.sessionID)
			if err != nil {
				return err
			}

			printRoster(cmd.OutOrStdout(), roster)
			return nil
		},
	}

	return cmd
}

func resetCmd(cli *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the roster and the session's state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.loadDevControls(); err != nil {
				return err
			}

			if err := cli.services.Access.Reset(cmd.Context(), cli.sessionID); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "State reset")
			return nil
		},
	}
}

func forceAdminCmd(cli *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "force-admin",
		Short: "Seed the admin record as approved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.loadDevControls(); err != nil {
				return err
			}

			if err := cli.services.Access.ForceAdminApproved(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s approved\n", cli.app.Config.AdminEmail)
			return nil
		},
	}
}

func forceUserCmd(cli *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "force-user",
		Short: "Approve the session's current email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.loadDevControls(); err != nil {
				return err
			}

			resp, err := cli.services.Access.ForceCurrentUserApproved(cmd.Context(), cli.sessionID)
			if err != nil {
				return err
			}

			printSession(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}

// loadDevControls refuses the reset/force commands outside dev-like environments,
// matching the HTTP surface.
func (c *cliContext) loadDevControls() error {
	if err := c.load(); err != nil {
		return err
	}
	if !c.app.Config.DevControlsEnabled() {
		return fmt.Errorf("dev controls are disabled for APP_ENV=%q", c.app.Config.AppEnv)
	}
	return nil
}

func printSession(w io.Writer, resp *access.SessionResponse) {
	email := resp.CurrentEmail
	if email == "" {
		email = "-"
	}
	fmt.Fprintf(w, "session: %s\nemail:   %s\nstatus:  %s\nview:    %s\nadmin:   %t\n",
		resp.SessionID, email, resp.Status, resp.View, resp.IsAdmin)
}

func printRoster(w io.Writer, roster *access.RosterResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EMAIL\tSTATUS\tREQUESTED\tLAST SEEN")
	for _, r := range roster.Records {
		lastSeen := r.LastSeen
		if lastSeen == "" {
			lastSeen = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Email, r.Status, r.RequestedAt, lastSeen)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d pending\n", roster.Pending)
}
