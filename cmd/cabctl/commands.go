// cmd/cabctl/commands.go
//
// Cobra command tree.  Every command writes to cmd.OutOrStdout() so tests
// can capture output.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanizio/krishnacabs/internal/config"
	"github.com/yanizio/krishnacabs/internal/dispatch"
	"github.com/yanizio/krishnacabs/internal/form"
)

const defaultServer = "http://localhost:8080"

// errBlocked makes cobra exit non-zero after field errors were printed.
var errBlocked = errors.New("submission not sent")

type rootOpts struct {
	server string
}

func newRootCmd() *cobra.Command {
	o := &rootOpts{}
	root := &cobra.Command{
		Use:          "cabctl",
		Short:        "Submit and inspect Krishna Cabs enquiry forms",
		SilenceUsage: true,
	}
	server := os.Getenv("CABS_SERVER")
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVar(&o.server, "server", server, "enquiry API base URL (env CABS_SERVER)")

	root.AddCommand(newSubmitCmd(o), newHealthCmd(o), newSchemaCmd())
	return root
}

/*──────────────────────────── submit ───────────────────────────────────────*/

func newSubmitCmd(o *rootOpts) *cobra.Command {
	var (
		sets     []string
		strategy string
		to       string
	)
	cmd := &cobra.Command{
		Use:       "submit <form>",
		Short:     "Validate and send one form submission",
		Args:      cobra.ExactArgs(1),
		ValidArgs: form.IDs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := pickStrategy(cmd, strategy, o.server, to)
			if err != nil {
				return err
			}
			f, err := dispatch.NewForm(args[0], s)
			if err != nil {
				return err
			}
			for _, kv := range sets {
				name, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("--set %q: want name=value", kv)
				}
				if err := f.Set(name, value); err != nil {
					return err
				}
			}

			res, err := f.Submit(cmd.Context())
			if err != nil {
				return err
			}
			return report(cmd, f.Def(), res)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as name=value (repeatable)")
	cmd.Flags().StringVar(&strategy, "strategy", "http", "delivery strategy: http or mailto")
	cmd.Flags().StringVar(&to, "to", supportEmail(), "recipient for the mailto strategy")
	return cmd
}

func pickStrategy(cmd *cobra.Command, name, server, to string) (dispatch.Strategy, error) {
	switch name {
	case "http":
		return dispatch.HTTPStrategy{BaseURL: server}, nil
	case "mailto":
		return dispatch.MailLinkStrategy{To: to, Opener: dispatch.WriterOpener{W: cmd.OutOrStdout()}}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want http or mailto)", name)
	}
}

func report(cmd *cobra.Command, fd *form.FormDef, res dispatch.Result) error {
	out := cmd.OutOrStdout()
	switch res.Outcome {
	case dispatch.OutcomeBlocked:
		for _, f := range fd.Fields {
			if msg, ok := res.Errors[f.Name]; ok {
				fmt.Fprintf(out, "%s: %s\n", f.Name, msg)
			}
		}
		return errBlocked
	case dispatch.OutcomeFailed:
		fmt.Fprintln(out, res.Message)
		if res.Err != nil {
			return res.Err
		}
		return errors.New("server declined submission")
	default:
		fmt.Fprintln(out, res.Message)
		return nil
	}
}

/*──────────────────────────── health ───────────────────────────────────────*/

func newHealthCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe GET /api/health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := dispatch.HTTPStrategy{BaseURL: o.server}.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", h.Status, h.Timestamp.UTC().Format(time.RFC3339Nano))
			return nil
		},
	}
}

/*──────────────────────────── schema ───────────────────────────────────────*/

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [form]",
		Short: "Print a form definition as JSON, or list forms",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, id := range form.IDs() {
					fmt.Fprintln(out, id)
				}
				return nil
			}
			fd, ok := form.GetFormDef(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", form.ErrUnknownForm, args[0])
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(fd)
		},
	}
}

// supportEmail is the desk address the server is configured with:
// CABS_SUPPORT__EMAIL when set, else the built-in default.
func supportEmail() string {
	if v := os.Getenv(config.EnvPrefix + "SUPPORT__EMAIL"); v != "" {
		return v
	}
	return config.Defaults().Support.Email
}
