package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ppiankov/hostprint/internal/model"
	"github.com/ppiankov/hostprint/internal/store"
)

func init() {
	rootCmd.AddCommand(digestCmd)
	digestCmd.Flags().StringVar(&passphraseFile, "passphrase-file", "", "Read the passphrase from the first line of this file")
}

var digestCmd = &cobra.Command{
	Use:   "digest <artifact>",
	Short: "Print the canonical digest of a snapshot artifact",
	Long: "Verifies the artifact's integrity and prints the SHA3-256 digest of the\n" +
		"canonical snapshot bytes. The digest is stable across storage modes.",
	Args: cobra.ExactArgs(1),
	RunE: runDigest,
}

func runDigest(cmd *cobra.Command, args []string) error {
	passphrase, err := resolvePassphrase(false)
	if err != nil {
		return err
	}

	digest, err := store.Digest(args[0], passphrase)
	var authErr *model.AuthenticationError
	if err != nil && passphrase == nil && errors.As(err, &authErr) && term.IsTerminal(int(os.Stdin.Fd())) {
		pw, perr := promptPassphrase()
		if perr != nil {
			return perr
		}
		digest, err = store.Digest(args[0], pw)
	}
	if err != nil {
		return err
	}

	fmt.Println(digest)
	return nil
}
