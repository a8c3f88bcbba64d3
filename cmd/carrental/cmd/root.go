// Package cmd provides the carrental CLI commands.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jrsteele09/go-car-rental/apiclient"
	"github.com/jrsteele09/go-car-rental/credentials"
	"github.com/spf13/cobra"
)

// annotation keys
const (
	annotationView      = "view"
	annotationSkipSetup = "skip-setup"
)

type options struct {
	cfgFile  string
	baseURL  string
	backend  string
	logLevel string
	currency string
	lang     string

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// store replaces the configured backend; used by tests
	store credentials.Store
}

func newRootCmd(opts *options) *cobra.Command {
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:   "carrental",
		Short: "carrental - car rental API client",
		Long: `carrental is a command line client for the car rental API.

It signs in, browses and manages the fleet, books cars and quotes prices.
The session is kept in the configured credential store and the access token
is refreshed transparently when it expires.

Configuration:
  Config is loaded from carrental.yaml in the current directory or
  $HOME/.carrental/.

  Environment variables override config values with the CARRENTAL_ prefix.
  Example: CARRENTAL_API_BASE_URL=https://rentals.example.com/api/v1`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationSkipSetup] != "" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}
	root.SetIn(opts.in)
	root.SetOut(opts.out)
	root.SetErr(opts.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default: ./carrental.yaml)")
	flags.StringVar(&opts.baseURL, "base-url", "", "API base url, e.g. http://localhost:8000/api/v1")
	flags.StringVar(&opts.backend, "store", "", "credential store backend: memory, file or redis")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&opts.currency, "currency", "USD", "currency code prices are shown in")
	flags.StringVar(&opts.lang, "lang", "en-US", "locale for number formatting")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newRegisterCmd(a),
		newWhoamiCmd(a),
		newProfileCmd(a),
		newPasswdCmd(a),
		newCarsCmd(a),
		newBookingsCmd(a),
		newQuoteCmd(a),
		newHealthCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() {
	opts := &options{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	if err := newRootCmd(opts).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, apiclient.ErrorMessage(err))
		os.Exit(1)
	}
}

// viewFor names the screen a command stands for, e.g. "/cars" for
// "carrental cars list". Sign-outs from public views are not announced.
func viewFor(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if v, ok := c.Annotations[annotationView]; ok {
			return v
		}
		if c.HasParent() && !c.Parent().HasParent() {
			return "/" + c.Name()
		}
	}
	return "/"
}
