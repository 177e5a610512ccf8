package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ppiankov/hostprint/internal/history"
)

var listFormat string

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "text", "Output format (text|json)")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved snapshots from the history catalog",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer cat.Close()

	entries, err := cat.List(context.Background())
	if err != nil {
		return err
	}

	if listFormat == "json" {
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("No snapshots recorded. Run: hostprint snapshot")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tHOST\tSIZE\tFLAGS\tFAILURES\tPATH")
	for _, e := range entries {
		flags := ""
		if e.Hashed {
			flags += "H"
		}
		if e.Encrypted {
			flags += "E"
		}
		if flags == "" {
			flags = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			humanize.Time(e.CreatedAt), e.Hostname,
			humanize.IBytes(uint64(e.SizeBytes)), flags, len(e.Failures), e.Path)
	}
	return w.Flush()
}
