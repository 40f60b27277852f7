package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/akeren/telecheck/domain/checks"
	"github.com/akeren/telecheck/domain/export"
	"github.com/spf13/cobra"
)

type checkOptions struct {
	file     string
	export   string
	statuses []string
	paced    bool
}

func checkCmd(cli *cliContext) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [numbers...]",
		Short: "Bulk check phone numbers from arguments, a file or stdin",
		Long: `Runs a bulk check as the current session. Numbers come from the
arguments when given, otherwise from --file, otherwise from stdin. They may be
separated by newlines, commas or semicolons.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.load(); err != nil {
				return err
			}

			raw, err := readNumbers(cmd.InOrStdin(), opts.file, args)
			if err != nil {
				return err
			}

			runOpts := checks.RunOptions{}
			if opts.paced {
				runOpts.Delay = cli.app.Config.CheckDelay
				runOpts.OnProgress = func(p checks.Progress) {
					fmt.Fprintf(cmd.ErrOrStderr(), "\r%d/%d", p.Checked, p.Total)
				}
			}

			resp, err := cli.services.Checks.RunBulk(cmd.Context(), cli.sessionID, &checks.BulkCheckRequest{PhoneNumbers: raw}, runOpts)
			if opts.paced {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			if err != nil {
				return err
			}

			printResults(cmd.OutOrStdout(), resp)

			if opts.export == "" {
				return nil
			}

			file, err := cli.services.Export.Export(cmd.Context(), cli.sessionID, &export.ExportRequest{Statuses: opts.statuses})
			if err != nil {
				return err
			}

			path, err := exportPath(opts.export, file.FileName)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, file.Content, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", file.Rows, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read numbers from this file")
	cmd.Flags().StringVarP(&opts.export, "export", "o", "", "Write the results workbook to this file or directory")
	cmd.Flags().StringSliceVar(&opts.statuses, "status", nil, "Export only these statuses (found, not_found, error)")
	cmd.Flags().BoolVar(&opts.paced, "paced", false, "Pause between numbers using TELECHECK_CHECK_DELAY and show progress")

	return cmd
}

func readNumbers(stdin io.Reader, file string, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, "\n"), nil
	}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read numbers: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read numbers from stdin: %w", err)
	}
	return string(data), nil
}

// exportPath places the generated file name inside target when target is a directory.
func exportPath(target, fileName string) (string, error) {
	info, err := os.Stat(target)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(target, fileName), nil
	case err == nil || os.IsNotExist(err):
		return target, nil
	default:
		return "", fmt.Errorf("export target: %w", err)
	}
}

func printResults(w io.Writer, resp *checks.BulkCheckResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PHONE NUMBER\tSTATUS\tMESSAGE")
	for _, r := range resp.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.PhoneNumber, r.Status, r.Message)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%s: %s\n", resp.Notification.Title, resp.Notification.Description)
}
