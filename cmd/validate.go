package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/starsandeep/sfsync/config"
	"github.com/starsandeep/sfsync/pkg/mapping"
	"github.com/starsandeep/sfsync/pkg/models"
	"github.com/starsandeep/sfsync/pkg/utils"
	"gopkg.in/yaml.v3"
)

// errGateBlocked makes validate exit non-zero when the mapping cannot proceed.
var errGateBlocked = errors.New("mapping step cannot be completed")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Evaluate a mapping row file offline",
	Long: `Reads rows and optional source/target metadata from a YAML or JSON file,
runs cross-validation, scoring and the progression gate, and prints the result.
Exits with status 1 when the gate blocks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := config.Load(envFiles(cmd)...)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		policy := mapping.DefaultPolicy()
		policy.MaxMappings = cfg.MaxMappings

		return runValidate(cmd.OutOrStdout(), path, asJSON, policy)
	},
}

func init() {
	validateCmd.Flags().StringP("file", "f", "", "YAML or JSON file with rows and metadata")
	validateCmd.Flags().Bool("json", false, "print the evaluation as JSON")
	_ = validateCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(out io.Writer, path string, asJSON bool, policy mapping.Policy) error {
	req, err := readEvaluationRequest(path)
	if err != nil {
		return err
	}

	eval := mapping.NewEvaluator(policy).Evaluate(req.Input())

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(eval); err != nil {
			return err
		}
	} else {
		printEvaluation(out, eval)
	}

	if !eval.CanProceed {
		return errGateBlocked
	}
	return nil
}

// readEvaluationRequest decodes a row file. JSON is valid YAML, so one decoder
// serves both formats.
func readEvaluationRequest(path string) (mapping.EvaluationRequest, error) {
	var req mapping.EvaluationRequest

	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, err := utils.Validate(req); err != nil {
		return req, fmt.Errorf("invalid %s: %w", path, err)
	}
	for _, key := range req.Resolved {
		if _, err := utils.Validate(key); err != nil {
			return req, fmt.Errorf("invalid resolution in %s: %w", path, err)
		}
	}
	return req, nil
}

func printEvaluation(out io.Writer, eval models.Evaluation) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tTARGET\tCONFIDENCE\tTIER\tFLAGS")
	for _, row := range eval.Rows {
		target := row.TargetField
		if target == "" {
			target = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", row.SourceField, target, row.ConfidenceScore, row.ConfidenceTier, rowFlags(row))
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\n%d mapped, %d errors, %d warnings\n", eval.MappedCount, eval.Summary.Errors, eval.Summary.Warnings)
	for _, issue := range eval.Issues {
		fmt.Fprintf(out, "  [%s] %s: %s\n", issue.Severity, issue.Kind, issue.Message)
	}

	if eval.CanProceed {
		fmt.Fprintln(out, "\ngate: ok")
		return
	}
	fmt.Fprintln(out, "\ngate: blocked")
	for _, failure := range eval.GateFailures {
		line := fmt.Sprintf("  %s: %s", failure.Reason, failure.Message)
		if len(failure.Fields) > 0 {
			line += " (" + strings.Join(failure.Fields, ", ") + ")"
		}
		fmt.Fprintln(out, line)
	}
}

func rowFlags(row models.RowEvaluation) string {
	var flags []string
	if row.TypeMismatch {
		flags = append(flags, "type_mismatch")
	}
	if row.DuplicateTarget {
		flags = append(flags, "duplicate_target")
	}
	if row.InvalidSourceName {
		flags = append(flags, "invalid_source_name")
	}
	if row.EmptySource {
		flags = append(flags, "empty_source")
	}
	if row.IsErrorRow {
		flags = append(flags, "error_row")
	}
	if row.BlocksSync {
		flags = append(flags, "blocks_sync")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}
