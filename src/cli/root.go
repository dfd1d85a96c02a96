// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/helper/gc"
	x509certs "github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/chain"
	x509pin "github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/pin"
	"github.com/H0llyW00dzZ/tls-cert-pinner/src/logger"
)

// OperationPerformed indicates whether a subcommand actually ran, as opposed
// to help/version output.
var OperationPerformed bool

// OperationPerformedSuccessfully indicates whether the subcommand that ran
// completed without error.
var OperationPerformedSuccessfully bool

// Execute runs the root command with the given context, version, and logger.
// It returns any error from command execution; Cobra has already reported it
// to stderr by then.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	rootCmd := &cobra.Command{
		Use:           "tls-cert-pinner",
		Short:         "TLS certificate pinning toolkit",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newPinCmd(log),
		newShowCmd(log),
		newCheckCmd(log),
	)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// newPinCmd builds the "pin" subcommand: derive a pin manifest from a PEM
// bundle file or from the chain a remote endpoint presents.
func newPinCmd(log logger.Logger) *cobra.Command {
	var (
		outputFile    string
		remoteHost    string
		ignoreExpired bool
		timeout       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "pin [BUNDLE_FILE]",
		Short: "Derive a pin manifest from a certificate bundle or remote endpoint",
		Long: `Derive a (root, pinned) pair from a certificate set and write it as a
pin manifest. The set must contain one self-signed root, any intermediates,
and one leaf; order does not matter. With --remote, the chain is taken from
the endpoint's TLS handshake instead of a file (the endpoint must present
its full chain including the root).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			OperationPerformed = true

			var (
				certs []*x509.Certificate
				err   error
			)

			switch {
			case remoteHost != "":
				host, port, splitErr := splitHostPort(remoteHost)
				if splitErr != nil {
					return splitErr
				}
				certs, err = x509chain.FetchRemoteCerts(cmd.Context(), host, port, timeout)
			case len(args) == 1:
				certs, err = readCertBundle(args[0])
			default:
				return fmt.Errorf("either a BUNDLE_FILE argument or --remote is required")
			}
			if err != nil {
				return err
			}

			manifest, err := x509pin.NewManifest(certs, ignoreExpired, remoteHost)
			if err != nil {
				return err
			}

			if err := manifest.Save(outputFile); err != nil {
				return err
			}

			log.Printf("Pinned %s (root %s) to %s",
				manifest.PinnedSubject(), manifest.RootSubject(), outputFile)
			OperationPerformedSuccessfully = true
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "pin.json", "manifest output file (.json, .yaml, or .yml)")
	cmd.Flags().StringVarP(&remoteHost, "remote", "r", "", "pin a remote endpoint (HOST[:PORT], default port 443)")
	cmd.Flags().BoolVar(&ignoreExpired, "ignore-expired", false, "tolerate the pinned certificate being expired")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "dial timeout for --remote")

	return cmd
}

// newShowCmd builds the "show" subcommand: sort a bundle and render the chain.
func newShowCmd(log logger.Logger) *cobra.Command {
	var (
		format   string
		warnDays int
	)

	cmd := &cobra.Command{
		Use:   "show BUNDLE_FILE",
		Short: "Sort a certificate bundle and render the chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			OperationPerformed = true

			certs, err := readCertBundle(args[0])
			if err != nil {
				return err
			}

			chain, err := x509chain.Sort(certs)
			if err != nil {
				return err
			}

			switch format {
			case "tree":
				log.Println(x509chain.RenderASCIITree(chain))
			case "pem":
				log.Println(string(x509certs.New().EncodeMultiplePEM(chain)))
			case "table":
				log.Println(x509chain.RenderTable(chain))
			default:
				return fmt.Errorf("unknown format %q (want table, tree, or pem)", format)
			}

			if warnDays > 0 {
				deadline := time.Now().AddDate(0, 0, warnDays)
				for _, cert := range chain {
					if cert.NotAfter.Before(deadline) {
						log.Printf("Warning: %s expires %s",
							cert.Subject.CommonName, cert.NotAfter.Format("2006-01-02"))
					}
				}
			}

			OperationPerformedSuccessfully = true
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, tree, or pem")
	cmd.Flags().IntVarP(&warnDays, "warn-days", "w", 30, "warn about certificates expiring within N days (0 disables)")

	return cmd
}

// newCheckCmd builds the "check" subcommand: dial an endpoint with the pinned
// TLS configuration and report whether the pin accepted it.
func newCheckCmd(log logger.Logger) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check MANIFEST_FILE HOST[:PORT]",
		Short: "Dial an endpoint with a pinned TLS configuration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			OperationPerformed = true

			manifest, err := x509pin.LoadManifest(args[0])
			if err != nil {
				return err
			}

			opts, err := manifest.TLSOptions()
			if err != nil {
				return err
			}

			host, port, err := splitHostPort(args[1])
			if err != nil {
				return err
			}

			dialer := &net.Dialer{Timeout: timeout}
			if deadline, ok := cmd.Context().Deadline(); ok {
				dialer.Deadline = deadline
			}

			cfg := opts.Config.Clone()
			cfg.ServerName = host

			conn, err := tls.DialWithDialer(dialer, "tcp", fmt.Sprintf("%s:%d", host, port), cfg)
			if err != nil {
				return fmt.Errorf("pin rejected %s:%d: %w", host, port, err)
			}
			defer conn.Close()

			log.Printf("Pin accepted %s:%d (peer %s)", host, port, opts.Pin.Pinned.Subject.CommonName)
			OperationPerformedSuccessfully = true
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "dial timeout")

	return cmd
}

// readCertBundle reads and decodes a certificate bundle file using the pooled
// buffer to avoid per-invocation allocations on large bundles.
func readCertBundle(path string) ([]*x509.Certificate, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	defer file.Close()

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()         // Reset the buffer to prevent data leaks
		gc.Default.Put(buf) // Return the buffer to the pool for reuse
	}()

	if _, err := buf.ReadFrom(file); err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}

	certs, err := x509certs.New().DecodeMultiple(buf.Bytes())
	if err != nil {
		return nil, err
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return certs, nil
}

// splitHostPort parses HOST[:PORT], defaulting to 443.
func splitHostPort(input string) (string, int, error) {
	if !strings.Contains(input, ":") {
		return input, 443, nil
	}

	host, portStr, err := net.SplitHostPort(input)
	if err != nil {
		return "", 0, fmt.Errorf("invalid host %q: %w", input, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}
	return host, port, nil
}
