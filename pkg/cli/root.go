// Package cli implements the auditctl admin command line. It operates
// directly on the SQLite store, so it works offline and without API
// credentials — useful for auditors holding a copy of the database.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"auditchain/internal/chain"
	internaldb "auditchain/internal/db"
	"auditchain/internal/db/repository"
	"auditchain/internal/domain"
	"auditchain/internal/service"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// env holds the wired services a subcommand runs against.
type env struct {
	attestations *service.AttestationService
	scheduler    *service.Scheduler
	close        func()
}

func newRootCmd() *cobra.Command {
	var (
		dbPath string
		secret string
	)

	rootCmd := &cobra.Command{
		Use:           "auditctl",
		Short:         "Audit chain admin CLI",
		Long:          "Verify hash-chain integrity and manage attestations directly against the audit store.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Flag > env for the signing secret, matching the server.
			if !cmd.Flags().Changed("secret") {
				if v := os.Getenv("AUDIT_SIGNING_SECRET"); v != "" {
					secret = v
				}
			}
			if !cmd.Flags().Changed("db") {
				if v := os.Getenv("AUDIT_DB_PATH"); v != "" {
					dbPath = v
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "auditchain.sqlite", "Path to the SQLite audit store")
	rootCmd.PersistentFlags().StringVar(&secret, "secret", "", "HMAC signing secret (defaults to AUDIT_SIGNING_SECRET)")

	open := func() (*env, error) {
		writeDB, readDB, err := internaldb.OpenSQLitePair(dbPath, 0)
		if err != nil {
			return nil, err
		}
		if err := internaldb.RunMigrations(writeDB); err != nil {
			_ = writeDB.Close()
			_ = readDB.Close()
			return nil, err
		}

		signer := chain.NewSigner(secret)
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		eventRepo := repository.NewEventRepo(readDB)
		attestationRepo := repository.NewAttestationRepo(writeDB)
		svc := service.NewAttestationService(eventRepo, attestationRepo, signer, nil, logger)

		return &env{
			attestations: svc,
			scheduler:    service.NewScheduler(svc, eventRepo, logger, 0, 0),
			close: func() {
				_ = readDB.Close()
				_ = writeDB.Close()
			},
		}, nil
	}

	rootCmd.AddCommand(
		newVerifyCmd(open),
		newAttestCmd(open),
		newAttestationsCmd(open),
		newRunDailyCmd(open),
	)

	return rootCmd
}

// rangeFlags registers optional --start/--end RFC3339 flags on a command.
func rangeFlags(flags *pflag.FlagSet, start, end *string) {
	flags.StringVar(start, "start", "", "Range start (RFC3339, inclusive)")
	flags.StringVar(end, "end", "", "Range end (RFC3339, inclusive)")
}

func parseRange(startStr, endStr string) (start, end *time.Time, err error) {
	if startStr != "" {
		t, perr := time.Parse(time.RFC3339, startStr)
		if perr != nil {
			return nil, nil, fmt.Errorf("invalid --start: %w", perr)
		}
		start = &t
	}
	if endStr != "" {
		t, perr := time.Parse(time.RFC3339, endStr)
		if perr != nil {
			return nil, nil, fmt.Errorf("invalid --end: %w", perr)
		}
		end = &t
	}
	return start, end, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newVerifyCmd(open func() (*env, error)) *cobra.Command {
	var startStr, endStr string

	cmd := &cobra.Command{
		Use:   "verify <tenant>",
		Short: "Verify a tenant's hash chain and print the integrity report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(startStr, endStr)
			if err != nil {
				return err
			}
			e, err := open()
			if err != nil {
				return err
			}
			defer e.close()

			report, err := e.attestations.VerifyIntegrity(cmd.Context(), args[0], start, end)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	rangeFlags(cmd.Flags(), &startStr, &endStr)
	return cmd
}

func newAttestCmd(open func() (*env, error)) *cobra.Command {
	var startStr, endStr string

	cmd := &cobra.Command{
		Use:   "attest <tenant>",
		Short: "Create and persist an attestation for a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(startStr, endStr)
			if err != nil {
				return err
			}
			e, err := open()
			if err != nil {
				return err
			}
			defer e.close()

			a, err := e.attestations.CreateManualAttestation(cmd.Context(), args[0], start, end)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a)
		},
	}
	rangeFlags(cmd.Flags(), &startStr, &endStr)
	return cmd
}

func newAttestationsCmd(open func() (*env, error)) *cobra.Command {
	var tenant string
	var maxResults int

	cmd := &cobra.Command{
		Use:   "attestations",
		Short: "List stored attestations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer e.close()

			filter := domain.AttestationFilter{Page: domain.PageRequest{MaxResults: maxResults}}
			if tenant != "" {
				filter.TenantID = &tenant
			}
			items, total, err := e.attestations.ListAttestations(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"total": total,
				"data":  items,
			})
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "Filter by tenant ID")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Page size")
	return cmd
}

func newRunDailyCmd(open func() (*env, error)) *cobra.Command {
	var asOfStr string

	cmd := &cobra.Command{
		Use:   "run-daily",
		Short: "Run the daily attestation job for every tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asOf := time.Now()
			if asOfStr != "" {
				t, err := time.Parse(time.RFC3339, asOfStr)
				if err != nil {
					return fmt.Errorf("invalid --as-of: %w", err)
				}
				asOf = t
			}
			e, err := open()
			if err != nil {
				return err
			}
			defer e.close()

			return e.scheduler.RunDaily(cmd.Context(), asOf)
		},
	}
	cmd.Flags().StringVar(&asOfStr, "as-of", "", "Attest the UTC day before this instant (RFC3339, default now)")
	return cmd
}
