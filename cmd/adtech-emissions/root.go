package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rshade/adtech-emissions/internal/carbon"
	"github.com/rshade/adtech-emissions/internal/defaults"
	"github.com/rshade/adtech-emissions/internal/facts"
	"github.com/rshade/adtech-emissions/internal/logging"
	"github.com/rshade/adtech-emissions/internal/service"
)

// globalOptions are the flags shared by every model command.
type globalOptions struct {
	verbose  bool
	output   string
	defaults defaults.Paths
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "adtech-emissions",
		Short:         "Model the greenhouse gas emissions of digital advertising",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			switch opts.output {
			case "yaml", "json":
				return nil
			}
			return fmt.Errorf("unknown output format %q, want yaml or json", opts.output)
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "show the derivation of every output")
	pf.StringVarP(&opts.output, "output", "o", "yaml", "output format: yaml or json")
	pf.StringVar(&opts.defaults.ATP, "atp-defaults", "", "ATP defaults file (embedded defaults when empty)")
	pf.StringVar(&opts.defaults.Organization, "organization-defaults", "", "organization defaults file")
	pf.StringVar(&opts.defaults.Property, "property-defaults", "", "property defaults file")
	pf.StringVar(&opts.defaults.EndUserDevice, "end-user-device-defaults", "", "end user device defaults file")
	pf.StringVar(&opts.defaults.Networking, "networking-defaults", "", "networking defaults file")
	pf.StringVar(&opts.defaults.TransmissionRate, "transmission-rate-defaults", "", "transmission rate defaults file")

	cmd.AddCommand(
		corporateCmd(opts),
		atpCmd(opts),
		publisherCmd(opts),
		deviceCmd(opts),
		networkingCmd(opts),
		factsCmd(opts),
		computeDefaultsCmd(opts),
		serveCmd(),
	)
	return cmd
}

// logger returns the CLI logger. Verbose mode prints the derivation trace.
func (o *globalOptions) logger(cmd *cobra.Command) zerolog.Logger {
	return logging.Console(cmd.ErrOrStderr(), o.verbose)
}

// trace returns a derivation trace when verbose, otherwise nil.
func (o *globalOptions) trace(logger zerolog.Logger) *carbon.Trace {
	if !o.verbose {
		return nil
	}
	return carbon.NewTrace(logger)
}

func (o *globalOptions) service(logger zerolog.Logger) (*service.Service, error) {
	store, err := defaults.Load(o.defaults, logger)
	if err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	return service.New(store, nil, logger), nil
}

// write prints v in the selected output format.
func (o *globalOptions) write(w io.Writer, v any) error {
	var (
		out []byte
		err error
	)
	if o.output == "json" {
		out, err = json.MarshalIndent(v, "", "  ")
		out = append(out, '\n')
	} else {
		out, err = facts.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// parseDecimal parses an optional decimal flag. Empty means unset.
func parseDecimal(name, s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: --%s: %v", carbon.ErrInvalidInput, name, err)
	}
	return &d, nil
}
