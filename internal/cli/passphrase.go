package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/ppiankov/hostprint/internal/model"
	"github.com/ppiankov/hostprint/internal/store"
)

// passphraseFile is shared by the commands that accept --passphrase-file;
// only one command runs per invocation.
var passphraseFile string

const passphraseEnv = "HOSTPRINT_PASSPHRASE"

// resolvePassphrase returns the passphrase from --passphrase-file (first
// line) or the environment. There is deliberately no --passphrase flag:
// argv leaks through process listings. When required is set and neither
// source yields one, the terminal is prompted; a non-interactive session
// fails instead.
func resolvePassphrase(required bool) ([]byte, error) {
	if passphraseFile != "" {
		f, err := os.Open(passphraseFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase file: %w", err)
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("failed to read passphrase file: %w", err)
			}
			return nil, fmt.Errorf("passphrase file %s is empty", passphraseFile)
		}
		pw := bytes.TrimRight([]byte(scanner.Text()), "\r")
		if len(pw) == 0 {
			return nil, fmt.Errorf("passphrase file %s is empty", passphraseFile)
		}
		return pw, nil
	}

	if pw := os.Getenv(passphraseEnv); pw != "" {
		return []byte(pw), nil
	}

	if !required {
		return nil, nil
	}
	return promptPassphrase()
}

func promptPassphrase() ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("passphrase required: use --passphrase-file or %s", passphraseEnv)
	}
	fmt.Fprint(os.Stderr, "Passphrase: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	if len(pw) == 0 {
		return nil, errors.New("empty passphrase")
	}
	return pw, nil
}

// loadArtifact loads a snapshot, prompting for a passphrase once when the
// artifact turns out to need one and the session is interactive.
func loadArtifact(path string, passphrase []byte) (*model.Snapshot, error) {
	snap, err := store.Load(path, passphrase)
	if err == nil || passphrase != nil {
		return snap, err
	}
	var authErr *model.AuthenticationError
	if !errors.As(err, &authErr) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, err
	}
	pw, perr := promptPassphrase()
	if perr != nil {
		return nil, perr
	}
	return store.Load(path, pw)
}
