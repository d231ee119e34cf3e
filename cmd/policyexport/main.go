package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"claimdesk/internal/config"
	"claimdesk/internal/csvexport"
	"claimdesk/internal/domain"
	"claimdesk/internal/logger"
	"claimdesk/internal/repository/postgres"
	"claimdesk/internal/service"
	"claimdesk/internal/xlsxexport"
)

var (
	orgID   string
	claimID string
	outDir  string
	format  string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "policyexport",
	Short: "Export a claim's effective policy as an XLSX audit workbook",
	Long: `policyexport resolves the effective policy of one claim from the
canonical policy forms and endorsements linked to it, and writes the result
with its source map to an XLSX workbook or a flat CSV file.

Example:
  policyexport --org 3f0c... --claim 9b1d... --out ./exports`,
	Args:          cobra.NoArgs,
	RunE:          runExport,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.Flags().StringVar(&orgID, "org", "", "organization ID (UUID)")
	rootCmd.Flags().StringVar(&claimID, "claim", "", "claim ID (UUID)")
	rootCmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	rootCmd.Flags().StringVar(&format, "format", "xlsx", "output format: xlsx or csv")
	rootCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall export timeout")
	_ = rootCmd.MarkFlagRequired("org")
	_ = rootCmd.MarkFlagRequired("claim")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runExport(cmd *cobra.Command, _ []string) error {
	org, err := uuid.Parse(orgID)
	if err != nil {
		return fmt.Errorf("invalid --org: %w", err)
	}
	claim, err := uuid.Parse(claimID)
	if err != nil {
		return fmt.Errorf("invalid --claim: %w", err)
	}
	if format != "xlsx" && format != "csv" {
		return fmt.Errorf("invalid --format %q: must be xlsx or csv", format)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	flush, err := logger.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer flush()

	db, err := postgres.NewDB(cmd.Context(), &cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	policySvc := service.NewPolicyService(postgres.NewClaimRepo(db), postgres.NewCanonicalRepo(db))

	tmp, err := os.CreateTemp(outDir, "effective_policy_*."+format)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	c, err := export(ctx, policySvc, org, claim, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("exporting claim %s: %w", claim, err)
	}

	name := xlsxexport.BuildFilename(c.ClaimNumber, time.Now())
	if format == "csv" {
		name = csvexport.BuildFilename(c.ClaimNumber, time.Now())
	}
	dest := filepath.Join(outDir, name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", dest)
	return nil
}

func export(ctx context.Context, policySvc service.PolicyService, org, claim uuid.UUID, w io.Writer) (*domain.Claim, error) {
	if format == "xlsx" {
		return policySvc.Export(ctx, org, claim, w)
	}
	c, ep, err := policySvc.EffectivePolicy(ctx, org, claim)
	if err != nil {
		return nil, err
	}
	return c, csvexport.Write(w, c, ep)
}
