package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/hostprint/internal/collect"
	"github.com/ppiankov/hostprint/internal/collect/builtin"
)

var collectorsFormat string

func init() {
	rootCmd.AddCommand(collectorsCmd)
	collectorsCmd.Flags().StringVarP(&collectorsFormat, "format", "f", "text", "Output format (text|json)")
}

var collectorsCmd = &cobra.Command{
	Use:   "collectors",
	Short: "List available collectors",
	Long:  "Shows every collector this build can run, with the configured disabled\nset excluded.",
	RunE:  runCollectors,
}

func runCollectors(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg := collect.NewRegistry()
	builtin.Register(reg, cfg.Assembly.Disabled)

	if collectorsFormat == "json" {
		type info struct {
			Name        string `json:"name"`
			Description string `json:"description,omitempty"`
		}
		var infos []info
		for _, name := range reg.Names() {
			infos = append(infos, info{Name: name, Description: builtin.Descriptions[name]})
		}
		out, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, name := range reg.Names() {
		fmt.Fprintf(w, "%s\t%s\n", name, builtin.Descriptions[name])
	}
	return w.Flush()
}
