// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/x509-trust-verifier/src/logger"
)

var (
	// ErrInputFileRequired indicates that neither a certificate file nor a
	// --connect target was given.
	ErrInputFileRequired = errors.New("cli: a certificate file or --connect target is required")
	// ErrVerificationFailed is returned when the chain does not verify. It
	// wraps the verification error.
	ErrVerificationFailed = errors.New("cli: verification failed")
	// ErrInvalidOption indicates a flag or config value that cannot be used.
	ErrInvalidOption = errors.New("cli: invalid option")
)

// Output formats.
const (
	OutputText  = "text"
	OutputTree  = "tree"
	OutputTable = "table"
	OutputJSON  = "json"
)

// Log formats.
const (
	LogText = "text"
	LogJSON = "json"
)

var (
	// OperationPerformed reports whether the last run verified a chain.
	OperationPerformed bool
	// OperationPerformedSuccessfully reports whether that chain was valid.
	OperationPerformedSuccessfully bool
)

// options holds the parsed command-line flags.
type options struct {
	configFile string
	logFormat  string

	caFile             string
	caDir              string
	noDefaultLocations bool
	untrusted          []string
	rejected           []string

	crlFiles    []string
	crlDownload bool
	crlCheck    bool
	crlCheckAll bool

	flags         []string
	purpose       string
	trust         string
	depth         int
	atTime        string
	policies      []string
	hosts         []string
	email         string
	ip            string
	securityLevel int

	aia        bool
	ocsp       bool
	ocspURL    string
	connect    string
	timeout    int
	output     string
	metricsOut string
	verbose    bool
}

// Execute runs the root command with the process arguments, handling any
// errors that occur during execution.
//
// Parameters:
//   - ctx: Cancels network lookups when the process is interrupted
//   - version: Reported by --version and in the HTTP User-Agent
//   - log: Destination for diagnostics; results go to stdout
//
// Returns:
//   - error: [ErrVerificationFailed] when the chain does not verify, or the
//     error that prevented verification
func Execute(ctx context.Context, version string, log logger.Logger) error {
	cmd := newRootCmd(version, log)
	cmd.SetArgs(os.Args[1:])
	return cmd.ExecuteContext(ctx)
}

// newRootCmd builds the command tree. Output goes to cmd.OutOrStdout.
func newRootCmd(version string, log logger.Logger) *cobra.Command {
	opts := &options{}

	exe := posix.GetExecutableName()
	rootCmd := &cobra.Command{
		Use:   exe + " [CERT_FILE]",
		Short: "X.509 certificate chain verifier",
		Long: `Verify an X.509 certificate chain against a trust store.

CERT_FILE holds the certificate to verify (PEM, DER or PKCS#7). Any further
certificates in the file are used as untrusted intermediates. With --connect
the chain presented by a TLS server is verified instead.`,
		Example: fmt.Sprintf(`  %[1]s --CAfile root.pem -u intermediates.pem leaf.pem
  %[1]s --connect example.com --verify-hostname example.com -o tree
  %[1]s codes`, exe),
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			l := log
			if opts.logFormat == LogJSON {
				l = logger.NewJSONLogger(cmd.ErrOrStderr(), false).With("command", "verify")
			}
			return runVerify(cmd, args, opts, version, l)
		},
	}

	f := rootCmd.Flags()
	f.StringVarP(&opts.configFile, "config", "c", "", "config file (JSON or YAML); defaults to $X509_VERIFY_CONFIG_FILE")
	f.StringVar(&opts.logFormat, "log-format", LogText, "diagnostic log format: text or json")

	f.StringVar(&opts.caFile, "CAfile", "", "trusted certificates file")
	f.StringVar(&opts.caDir, "CApath", "", "trusted certificates directory")
	f.BoolVar(&opts.noDefaultLocations, "no-default-locations", false, "do not load the default trust locations")
	f.StringSliceVarP(&opts.untrusted, "untrusted", "u", nil, "untrusted intermediate certificates file (repeatable)")
	f.StringSliceVar(&opts.rejected, "reject", nil, "SHA-256 fingerprint of a trusted certificate to reject (repeatable)")

	f.StringSliceVar(&opts.crlFiles, "CRLfile", nil, "CRL file (repeatable)")
	f.BoolVar(&opts.crlDownload, "crl-download", false, "download CRLs from distribution points")
	f.BoolVar(&opts.crlCheck, "crl-check", false, "check the leaf certificate against CRLs")
	f.BoolVar(&opts.crlCheckAll, "crl-check-all", false, "check every certificate in the chain against CRLs")

	f.StringSliceVar(&opts.flags, "flags", nil, "verification flags, e.g. X509_STRICT,POLICY_CHECK; --flags=-NAME clears a default")
	f.StringVar(&opts.purpose, "purpose", "", "required purpose, e.g. ssl_server")
	f.StringVar(&opts.trust, "trust", "", "trust kind evaluated on the anchor")
	f.IntVar(&opts.depth, "verify-depth", 0, "maximum number of intermediate certificates")
	f.StringVar(&opts.atTime, "attime", "", "verification time (RFC 3339 or Unix seconds)")
	f.StringSliceVar(&opts.policies, "policy", nil, "acceptable policy OID (repeatable)")
	f.StringSliceVar(&opts.hosts, "verify-hostname", nil, "expected DNS name of the leaf (repeatable)")
	f.StringVar(&opts.email, "verify-email", "", "expected email address of the leaf")
	f.StringVar(&opts.ip, "verify-ip", "", "expected IP address of the leaf")
	f.IntVar(&opts.securityLevel, "auth-level", -1, "minimum security level (0-5)")

	f.BoolVar(&opts.aia, "aia", false, "fetch missing issuers from Authority Information Access URLs")
	f.BoolVar(&opts.ocsp, "ocsp", false, "query OCSP responders for the leaf")
	f.StringVar(&opts.ocspURL, "ocsp-url", "", "OCSP responder overriding the certificate's AIA")
	f.StringVar(&opts.connect, "connect", "", "verify the chain presented by host[:port]")
	f.IntVar(&opts.timeout, "timeout", 0, "network timeout in seconds")
	f.StringVarP(&opts.output, "output", "o", OutputText, "output format: text, tree, table or json")
	f.StringVar(&opts.metricsOut, "metrics-file", "", "write Prometheus metrics to this textfile")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log AIA downloads and CRL cache statistics")

	rootCmd.AddCommand(newCodesCmd())
	return rootCmd
}

// newCodesCmd lists every verification result code.
func newCodesCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "codes",
		Short: "List verification result codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch format {
			case OutputTable, OutputText:
				_, err := io.WriteString(cmd.OutOrStdout(), renderCodesTable())
				return err
			case OutputJSON:
				return writeCodesJSON(cmd.OutOrStdout())
			default:
				return fmt.Errorf("%w: unknown output format %q", ErrInvalidOption, format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", OutputTable, "output format: table or json")
	return cmd
}
