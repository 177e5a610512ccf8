package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/ppiankov/hostprint/internal/collect"
	"github.com/ppiankov/hostprint/internal/collect/builtin"
	"github.com/ppiankov/hostprint/internal/config"
	"github.com/ppiankov/hostprint/internal/history"
	"github.com/ppiankov/hostprint/internal/store"
)

var (
	snapshotOutput     string
	snapshotNoHash     bool
	snapshotEncrypt    bool
	snapshotCollectors []string
	snapshotExclude    []string
	snapshotParallel   int
	snapshotTimeout    time.Duration
	snapshotJSON       bool
)

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "", "Artifact path (default: configured snapshot directory)")
	snapshotCmd.Flags().BoolVar(&snapshotNoHash, "no-hash", false, "Keep sensitive fields in the clear")
	snapshotCmd.Flags().BoolVar(&snapshotEncrypt, "encrypt", false, "Encrypt the artifact (requires a passphrase)")
	snapshotCmd.Flags().StringVar(&passphraseFile, "passphrase-file", "", "Read the passphrase from the first line of this file")
	snapshotCmd.Flags().StringSliceVar(&snapshotCollectors, "collectors", nil, "Run only these collectors")
	snapshotCmd.Flags().StringSliceVar(&snapshotExclude, "exclude", nil, "Skip these collectors")
	snapshotCmd.Flags().IntVar(&snapshotParallel, "parallel", 0, "Collector worker pool size (default from config)")
	snapshotCmd.Flags().DurationVar(&snapshotTimeout, "timeout", 0, "Per-collector timeout (default from config)")
	snapshotCmd.Flags().BoolVar(&snapshotJSON, "json", false, "Print the result as JSON")
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Collect the host's configuration and save a snapshot artifact",
	Long: "Runs the collector suite, hashes sensitive fields per the configured\n" +
		"rules, and writes an integrity-tagged (optionally encrypted) artifact.",
	RunE: runSnapshot,
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	// A passphrase without --encrypt still upgrades the artifact to keyed
	// integrity; only encryption itself makes one mandatory.
	passphrase, err := resolvePassphrase(snapshotEncrypt)
	if err != nil {
		return err
	}

	reg := collect.NewRegistry()
	builtin.Register(reg, cfg.Assembly.Disabled)
	reg, err = reg.Subset(snapshotCollectors, snapshotExclude)
	if err != nil {
		return fmt.Errorf("%w (see: hostprint collectors)", err)
	}

	parallel := cfg.Assembly.Parallel
	if cmd.Flags().Changed("parallel") {
		parallel = snapshotParallel
	}
	timeout := time.Duration(cfg.Assembly.Timeout)
	if cmd.Flags().Changed("timeout") {
		timeout = snapshotTimeout
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	snap, err := collect.Assemble(ctx, reg, collect.Options{
		Parallel:  parallel,
		Timeout:   timeout,
		Hash:      cfg.Hashing.Enabled && !snapshotNoHash,
		HashRules: cfg.Hashing.Rules,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	path := snapshotOutput
	if path == "" {
		if err := os.MkdirAll(cfg.Storage.Dir, 0o700); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		path = store.ArtifactPath(cfg.Storage.Dir, snap.Hostname, snap.CreatedAt)
	}

	if err := store.Save(snap, path, passphrase, snapshotEncrypt); err != nil {
		return err
	}
	digest, err := store.Digest(path, passphrase)
	if err != nil {
		return err
	}

	recordHistory(cfg, log, history.Entry{
		Path:       path,
		CreatedAt:  snap.CreatedAt,
		Hostname:   snap.Hostname,
		Hashed:     snap.Hashed,
		Encrypted:  snapshotEncrypt,
		Digest:     digest,
		SizeBytes:  fileSize(path),
		Collectors: snap.CollectorNames(),
		Failures:   snap.FailedNames(),
	})

	if snapshotJSON {
		out, _ := json.MarshalIndent(map[string]any{
			"path":       path,
			"digest":     digest,
			"hostname":   snap.Hostname,
			"created_at": snap.CreatedAt.Format(time.RFC3339),
			"hashed":     snap.Hashed,
			"encrypted":  snapshotEncrypt,
			"collectors": len(snap.Readings),
			"failures":   snap.FailedNames(),
		}, "", "  ")
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Snapshot saved: %s\n", path)
	fmt.Printf("Digest:         %s\n", digest)
	fmt.Printf("Collectors:     %d", len(snap.Readings))
	if failures := snap.FailedNames(); len(failures) > 0 {
		fmt.Printf(" (%d failed: %v)", len(failures), failures)
	}
	fmt.Println()
	switch {
	case snapshotEncrypt:
		fmt.Println("Artifact is encrypted and keyed.")
	case passphrase != nil:
		fmt.Println("Artifact integrity is keyed (passphrase supplied, not encrypted).")
	default:
		fmt.Println("Artifact integrity is an unkeyed checksum (no passphrase).")
	}
	return nil
}

// recordHistory inserts a catalog row. The catalog is advisory: failures
// are logged and never fail the snapshot.
func recordHistory(cfg *config.Config, log logr.Logger, entry history.Entry) {
	cat, err := history.Open(cfg.History.Path)
	if err != nil {
		log.Error(err, "history catalog unavailable", "path", cfg.History.Path)
		return
	}
	defer cat.Close()
	if _, err := cat.Record(context.Background(), entry); err != nil {
		log.Error(err, "failed to record snapshot in history")
	}
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
