package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/zen-systems/claimgate/pkg/adapter"
	"github.com/zen-systems/claimgate/pkg/adjudicate"
	"github.com/zen-systems/claimgate/pkg/archive"
	"github.com/zen-systems/claimgate/pkg/attest"
	"github.com/zen-systems/claimgate/pkg/codes"
	"github.com/zen-systems/claimgate/pkg/config"
	"github.com/zen-systems/claimgate/pkg/crypto"
	"github.com/zen-systems/claimgate/pkg/engine"
	"github.com/zen-systems/claimgate/pkg/evidence"
	"github.com/zen-systems/claimgate/pkg/executor"
)

var (
	failoverFile string
	backendFlag  string
	modelFlag    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "claimgate",
		Short: "Claim-line compliance and modifier resolution engine",
		Long: `Claimgate turns billable procedure codes into finalized claim lines
	carrying justified billing modifiers. Pairwise procedure conflicts and
	per-code unit limits are resolved through evidence-grounded adjudication
	against a reasoning backend with ordered failover.`,
	}

	rootCmd.PersistentFlags().StringVar(&failoverFile, "failover", "", "path to failover config file")

	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(backendsCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(attestCmd())
	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(archiveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveCmd() *cobra.Command {
	var claimPath string
	var notesPath string
	var evidenceDir string
	var signKey string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a claim's line items and modifiers",
		Long: `Loads procedure codes and conflict records from a claim YAML file and
	clinical documentation from a notes file, runs the resolution pipeline,
	and prints the finalized lines.

	Use --backend mock for a deterministic local run without API keys.
	Use --evidence-dir to write the audit evidence bundle as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := codes.LoadClaimFile(claimPath)
			if err != nil {
				return err
			}

			notes, err := os.ReadFile(notesPath)
			if err != nil {
				return fmt.Errorf("failed to read notes file: %w", err)
			}

			eng, err := buildEngine()
			if err != nil {
				return err
			}

			result := eng.Resolve(cmd.Context(), file.Procedures, file.Conflicts, string(notes))

			printResult(result)

			if evidenceDir != "" {
				writer, err := evidence.NewWriter(evidenceDir, result.Evidence.Run().ID)
				if err != nil {
					return err
				}
				if err := writer.WriteCollector(result.Evidence); err != nil {
					return err
				}
				fmt.Printf("\nEvidence written to %s\n", writer.RunDir())

				if signKey != "" {
					if err := signBundle(writer.RunDir(), signKey); err != nil {
						return err
					}
					fmt.Printf("Attestation signed with key %s\n", signKey)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&claimPath, "claim", "", "path to claim YAML file (required)")
	cmd.Flags().StringVar(&notesPath, "notes", "", "path to clinical notes file (required)")
	cmd.Flags().StringVar(&evidenceDir, "evidence-dir", "", "directory to write the evidence bundle")
	cmd.Flags().StringVar(&signKey, "sign", "", "sign the evidence bundle with the named key")
	cmd.Flags().StringVar(&backendFlag, "backend", "", "force a single backend (e.g. mock)")
	cmd.Flags().StringVar(&modelFlag, "model", "", "force a model for the forced backend")
	_ = cmd.MarkFlagRequired("claim")
	_ = cmd.MarkFlagRequired("notes")

	return cmd
}

func backendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backends",
		Short: "List available backends and models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			adapters, err := createAdapters(cfg)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "BACKEND\tMODELS\tSTATUS")
			for _, name := range []string{"anthropic", "openai", "google", "deepseek", "mock"} {
				status := "no key"
				models := "-"
				if a, ok := adapters[name]; ok {
					status = "ready"
					info := adapter.Describe(a)
					ids := make([]string, 0, len(info.Models))
					for _, m := range info.Models {
						ids = append(ids, m.ID)
					}
					models = strings.Join(ids, ", ")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, models, status)
			}
			return w.Flush()
		},
	}

	return cmd
}

func validateCmd() *cobra.Command {
	var claimPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a claim file without adjudicating",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := codes.LoadClaimFile(claimPath)
			if err != nil {
				return err
			}

			source := file.Source()
			failures := 0
			for _, proc := range file.Procedures {
				if err := proc.Validate(); err != nil {
					failures++
					fmt.Printf("invalid: %v\n", err)
					continue
				}
				conflicts, _ := source.LookupConflicts(proc.Code)
				if len(conflicts) > 0 {
					fmt.Printf("%s: %d conflict record(s) on file\n", proc.Code, len(conflicts))
				}
			}

			fmt.Printf("%d procedure(s), %d invalid, %d conflict record(s)\n",
				len(file.Procedures), failures, len(file.Conflicts))
			if failures > 0 {
				return fmt.Errorf("claim file has %d invalid procedure(s)", failures)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&claimPath, "claim", "", "path to claim YAML file (required)")
	_ = cmd.MarkFlagRequired("claim")

	return cmd
}

func attestCmd() *cobra.Command {
	var signKey string

	cmd := &cobra.Command{
		Use:   "attest <run-dir>",
		Short: "Build an attestation over a run's evidence bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runDir := args[0]
			if signKey != "" {
				return signBundle(runDir, signKey)
			}
			att, err := attest.Build(runDir)
			if err != nil {
				return err
			}
			if err := att.Write(runDir); err != nil {
				return err
			}
			fmt.Printf("Unsigned attestation written for run %s\n", att.RunID)
			return nil
		},
	}

	cmd.Flags().StringVar(&signKey, "sign", "", "sign the attestation with the named key")
	return cmd
}

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <run-dir>",
		Short: "Verify a run's evidence bundle against its attestation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			att, err := attest.VerifyFile(args[0], keyDir(cfg))
			if err != nil {
				return err
			}
			fmt.Printf("Run %s verified: %d file(s) intact", att.RunID, len(att.Hashes))
			if att.Signature != nil {
				fmt.Printf(", signature valid (key %s)", att.Signature.PubKeyID)
			}
			fmt.Println()
			return nil
		},
	}

	return cmd
}

func archiveCmd() *cobra.Command {
	var archiveDir string

	cmd := &cobra.Command{
		Use:   "archive <run-dir>",
		Short: "Copy a run's evidence bundle into the content-addressed archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runDir := args[0]

			att, err := attest.Build(runDir)
			if err != nil {
				return err
			}

			store, err := archive.NewStore(archiveDir)
			if err != nil {
				return err
			}
			index, err := store.ArchiveRun(runDir, att.RunID)
			if err != nil {
				return err
			}
			fmt.Printf("Archived run %s: %d object(s)\n", index.RunID, len(index.Objects))
			return nil
		},
	}

	cmd.Flags().StringVar(&archiveDir, "archive-dir", "", "archive root directory (required)")
	_ = cmd.MarkFlagRequired("archive-dir")
	return cmd
}

func signBundle(runDir, signKey string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	signer, err := crypto.NewSigner(keyDir(cfg), signKey)
	if err != nil {
		return fmt.Errorf("failed to load signing key: %w", err)
	}

	att, err := attest.Build(runDir)
	if err != nil {
		return err
	}
	if err := att.Sign(signer); err != nil {
		return err
	}
	return att.Write(runDir)
}

func keyDir(cfg *config.Config) string {
	return filepath.Join(cfg.ConfigDir, "keys")
}

func printResult(result *engine.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LINE\tCODE\tUNITS\tMODIFIERS\tNOTE")
	for _, line := range result.Lines {
		note := ""
		if line.Note != nil {
			note = fmt.Sprintf("[%s] %s", line.Note.Severity, line.Note.Message)
		}
		mods := strings.Join(result.FinalModifiers[line.ID], ",")
		if mods == "" {
			mods = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", line.ID, line.Code.Code, line.Units, mods, note)
	}
	w.Flush()

	if len(result.Errors) > 0 {
		fmt.Println("\nProcessing errors:")
		for _, procErr := range result.Errors {
			fmt.Printf("  [%s] %s\n", procErr.Severity, procErr.Error())
		}
	}
}

func loadConfig() (*config.Config, error) {
	if failoverFile != "" {
		return config.LoadWithFailoverFile(failoverFile)
	}
	return config.Load()
}

func buildEngine() (*engine.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	adapters, err := createAdapters(cfg)
	if err != nil {
		return nil, err
	}

	chain := make([]executor.Route, 0, len(cfg.Failover.Chain))
	for _, target := range cfg.Failover.Chain {
		chain = append(chain, executor.Route{Backend: target.Backend, Model: target.Model})
	}
	if backendFlag != "" {
		model := modelFlag
		if model == "" {
			if a, ok := adapters[backendFlag]; ok && len(a.Models()) > 0 {
				model = a.Models()[0]
			}
		}
		chain = []executor.Route{{Backend: backendFlag, Model: model}}
	}

	// Drop chain positions whose backend has no key configured.
	available := chain[:0]
	for _, route := range chain {
		if _, ok := adapters[route.Backend]; ok {
			available = append(available, route)
		}
	}
	if len(available) == 0 {
		return nil, fmt.Errorf("no configured backend is available; set an API key or use --backend mock")
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: false})

	table := executor.NewAssignmentTable(cfg.Failover.FailureThreshold,
		time.Duration(cfg.Failover.FailureWindowSeconds)*time.Second)
	limiter := rate.NewLimiter(rate.Limit(cfg.Failover.RequestsPerMinute/60.0), 1)

	exec, err := executor.New(adapters, available, table,
		executor.WithSanitizer(adjudicate.SanitizeRequest),
		executor.WithLimiter(limiter),
		executor.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return engine.New(exec, engine.WithLogger(logger)), nil
}

func createAdapters(cfg *config.Config) (map[string]adapter.Adapter, error) {
	adapters := make(map[string]adapter.Adapter)

	if cfg.AnthropicAPIKey != "" {
		a, err := adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic adapter: %w", err)
		}
		adapters["anthropic"] = a
	}

	if cfg.OpenAIAPIKey != "" {
		a, err := adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai adapter: %w", err)
		}
		adapters["openai"] = a
	}

	if cfg.GoogleAPIKey != "" {
		a, err := adapter.NewGoogleAdapter(cfg.GoogleAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create google adapter: %w", err)
		}
		adapters["google"] = a
	}

	if cfg.DeepSeekAPIKey != "" {
		a, err := adapter.NewDeepSeekAdapter(cfg.DeepSeekAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create deepseek adapter: %w", err)
		}
		adapters["deepseek"] = a
	}

	adapters["mock"] = adapter.NewMockAdapter()

	return adapters, nil
}
