// Command simctl runs scenario selection and single evaluations against a
// local catalog without starting the HTTP server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/terra-clan/readiness-engine/internal/catalog"
	"github.com/terra-clan/readiness-engine/internal/models"
	"github.com/terra-clan/readiness-engine/internal/simulator"
)

var (
	catalogDir string
	role       string
	level      string
	scenarioID string
	inputFile  string
	studentID  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "simctl",
	Short:         "Run readiness simulations from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		lvl := slog.LevelWarn
		if verbose {
			lvl = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl})))
	},
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select three scenarios for a role and skill level",
	RunE:  runSelect,
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a response file against a scenario",
	RunE:  runEvaluate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogDir, "catalog", "./catalog", "directory of YAML catalog files")
	rootCmd.PersistentFlags().StringVar(&role, "role", "", "target role")
	rootCmd.PersistentFlags().StringVar(&level, "level", models.DefaultDifficulty, "skill level")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	_ = rootCmd.MarkPersistentFlagRequired("role")

	evaluateCmd.Flags().StringVar(&scenarioID, "scenario", "", "scenario id")
	evaluateCmd.Flags().StringVarP(&inputFile, "file", "f", "", "response file, - for stdin")
	evaluateCmd.Flags().StringVar(&studentID, "student", "cli", "student id")
	_ = evaluateCmd.MarkFlagRequired("scenario")
	_ = evaluateCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(selectCmd, evaluateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newEngine() (*simulator.Engine, error) {
	store := catalog.NewStore()
	if err := store.LoadFromDir(catalogDir); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return simulator.New(store), nil
}

func runSelect(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	return printJSON(cmd.OutOrStdout(), engine.SelectScenarios(cmd.Context(), role, level))
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	content, err := readInput(cmd.InOrStdin(), inputFile)
	if err != nil {
		return err
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	student := models.StudentProfile{ID: studentID, Role: role, SkillLevel: level}
	result, err := engine.RunSimulation(cmd.Context(), student, models.Submission{
		ScenarioID: scenarioID,
		Content:    content,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read response file: %w", err)
	}
	return string(data), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
