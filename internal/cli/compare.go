package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/hostprint/internal/compare"
	"github.com/ppiankov/hostprint/internal/model"
	"github.com/ppiankov/hostprint/internal/report"
)

var (
	compareFormat string
	compareOutput string
	compareIgnore []string
	compareFailOn string
)

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringVarP(&compareFormat, "format", "f", "text", "Output format (text|json|html)")
	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", "", "Write the report to a file instead of stdout")
	compareCmd.Flags().StringVar(&passphraseFile, "passphrase-file", "", "Read the passphrase from the first line of this file")
	compareCmd.Flags().StringSliceVar(&compareIgnore, "ignore", nil, "Drop these collectors from both snapshots before comparing")
	compareCmd.Flags().StringVar(&compareFailOn, "fail-on", "", "Exit with code 3 when a change at or above this severity exists (critical|high|medium|low)")
}

var compareCmd = &cobra.Command{
	Use:   "compare <baseline> <current>",
	Short: "Compare two snapshot artifacts and report classified changes",
	Long: "Loads and verifies both artifacts, computes the structural diff, and\n" +
		"renders it grouped by severity. With --fail-on the exit code gates CI.",
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func runCompare(cmd *cobra.Command, args []string) error {
	var failOn model.Severity
	if compareFailOn != "" {
		var err error
		failOn, err = model.ParseSeverity(compareFailOn)
		if err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cls, err := compare.NewClassifier(cfg.Severity)
	if err != nil {
		return err
	}

	passphrase, err := resolvePassphrase(false)
	if err != nil {
		return err
	}
	baseline, err := loadArtifact(args[0], passphrase)
	if err != nil {
		return fmt.Errorf("failed to load baseline: %w", err)
	}
	current, err := loadArtifact(args[1], passphrase)
	if err != nil {
		return fmt.Errorf("failed to load current: %w", err)
	}

	for _, name := range compareIgnore {
		delete(baseline.Readings, name)
		delete(current.Readings, name)
	}

	diff, err := compare.Compare(baseline, current, cls)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if compareOutput != "" {
		f, err := os.Create(compareOutput)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch compareFormat {
	case "json":
		data, err := report.JSON(diff)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	case "html":
		if err := report.HTML(out, diff); err != nil {
			return err
		}
	case "text":
		if err := report.Text(out, diff); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (text|json|html)", compareFormat)
	}

	if compareFailOn != "" {
		if max, ok := diff.MaxSeverity(); ok && max.Rank() >= failOn.Rank() {
			return fmt.Errorf("%w: %s change present (--fail-on %s)", errThreshold, max, failOn)
		}
	}
	return nil
}
