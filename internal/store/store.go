// Package store persists snapshots as integrity-tagged, optionally
// encrypted artifacts. Writes are atomic and owner-only; reads never trust
// file contents without verification.
package store

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/hostprint/internal/model"
	"github.com/ppiankov/hostprint/internal/seal"
)

// forbiddenPrefixes are directories an artifact path must never resolve
// into.
var forbiddenPrefixes = []string{"/dev/", "/proc/", "/sys/"}

// ArtifactPath returns the conventional artifact location for a snapshot
// taken at t: <dir>/<hostname>-<UTC timestamp>.json.
func ArtifactPath(dir, hostname string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s.json", hostname, t.UTC().Format("20060102T150405Z")))
}

// Save serializes the snapshot, tags it, optionally encrypts it, and
// writes the artifact atomically with 0600 permissions.
//
// With a passphrase the integrity tag is an HMAC under a derived key and
// the artifact is tamper resistant; without one it degrades to an unkeyed
// checksum and the artifact is labeled keyed_integrity=false. Encryption
// requires a passphrase.
func Save(snap *model.Snapshot, path string, passphrase []byte, encrypt bool) error {
	if err := validatePath(path); err != nil {
		return err
	}
	if encrypt && len(passphrase) == 0 {
		return &model.StorageError{Op: "save", Path: path, Err: fmt.Errorf("encryption requires a passphrase")}
	}

	plaintext, err := snap.Marshal()
	if err != nil {
		return err
	}

	env := &Envelope{
		FormatVersion: FormatVersion,
		Hashed:        snap.Hashed,
		Encrypted:     encrypt,
	}

	if len(passphrase) > 0 {
		salt, err := seal.NewSalt()
		if err != nil {
			return &model.StorageError{Op: "save", Path: path, Err: err}
		}
		params := seal.DefaultKDFParams()
		keys, err := seal.DeriveKeys(passphrase, salt, params)
		if err != nil {
			return &model.StorageError{Op: "save", Path: path, Err: err}
		}

		env.KeyedIntegrity = true
		env.KDF = &params
		env.Salt = salt
		env.IntegrityTag = seal.Tag(plaintext, keys.MAC)

		if encrypt {
			blob, err := seal.Encrypt(plaintext, keys.Encrypt)
			if err != nil {
				return &model.StorageError{Op: "save", Path: path, Err: err}
			}
			env.Nonce = blob.Nonce
			env.Payload = blob.Ciphertext
		} else {
			env.Payload = plaintext
		}
	} else {
		env.IntegrityTag = seal.Checksum(plaintext)
		env.Payload = plaintext
	}

	data, err := env.encode()
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// Load reads an artifact, decrypts it if needed, verifies its integrity
// tag and schema version, and returns the snapshot. Each failure mode has
// its own type: StorageError (missing file, permissions), SchemaError
// (incompatible version), AuthenticationError (wrong passphrase or keyed
// tag mismatch), IntegrityError (unkeyed checksum mismatch).
func Load(path string, passphrase []byte) (*model.Snapshot, error) {
	plaintext, env, err := loadPlaintext(path, passphrase)
	if err != nil {
		return nil, err
	}

	snap, err := model.UnmarshalSnapshot(plaintext)
	if err != nil {
		return nil, err
	}
	if snap.Version != model.SchemaVersion {
		return nil, &model.SchemaError{
			Reason: fmt.Sprintf("snapshot schema version %d, this build reads version %d", snap.Version, model.SchemaVersion),
		}
	}
	// The envelope header is untrusted until it agrees with the verified
	// plaintext.
	if snap.Hashed != env.Hashed {
		return nil, &model.SchemaError{Reason: "artifact header hashed flag disagrees with snapshot"}
	}
	return snap, nil
}

// Digest returns the canonical SHA3-256 digest of the plaintext snapshot
// bytes, formatted sha3:<hex>. It verifies the artifact the same way Load
// does.
func Digest(path string, passphrase []byte) (string, error) {
	plaintext, _, err := loadPlaintext(path, passphrase)
	if err != nil {
		return "", err
	}
	return "sha3:" + hex.EncodeToString(seal.Checksum(plaintext)), nil
}

// loadPlaintext reads and verifies an artifact, returning the plaintext
// snapshot bytes and the parsed envelope.
func loadPlaintext(path string, passphrase []byte) ([]byte, *Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &model.StorageError{Op: "load", Path: path, Err: err}
	}

	env, err := parseEnvelope(data)
	if err != nil {
		return nil, nil, err
	}

	var plaintext []byte
	var keys seal.Keys

	if env.KeyedIntegrity {
		if len(passphrase) == 0 {
			return nil, nil, &model.AuthenticationError{Reason: "artifact requires a passphrase"}
		}
		if env.KDF == nil || len(env.Salt) == 0 {
			return nil, nil, &model.AuthenticationError{Reason: "artifact missing key derivation parameters"}
		}
		keys, err = seal.DeriveKeys(passphrase, env.Salt, *env.KDF)
		if err != nil {
			return nil, nil, &model.AuthenticationError{Reason: err.Error()}
		}
	}

	if env.Encrypted {
		if !env.KeyedIntegrity {
			return nil, nil, &model.AuthenticationError{Reason: "encrypted artifact without keyed integrity"}
		}
		plaintext, err = seal.Decrypt(seal.Blob{Nonce: env.Nonce, Ciphertext: env.Payload}, keys.Encrypt)
		if err != nil {
			return nil, nil, err
		}
	} else {
		plaintext = env.Payload
	}

	if env.KeyedIntegrity {
		if !seal.Verify(plaintext, env.IntegrityTag, keys.MAC) {
			return nil, nil, &model.AuthenticationError{Reason: "integrity tag mismatch"}
		}
	} else {
		if !seal.VerifyChecksum(plaintext, env.IntegrityTag) {
			return nil, nil, &model.IntegrityError{}
		}
	}

	return plaintext, env, nil
}

// validatePath rejects traversal segments, forbidden filesystem areas, and
// symlinked targets before anything is written.
func validatePath(path string) error {
	if path == "" {
		return &model.StorageError{Op: "save", Path: path, Err: fmt.Errorf("empty path")}
	}
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == ".." {
			return &model.StorageError{Op: "save", Path: path, Err: fmt.Errorf("path contains '..'")}
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return &model.StorageError{Op: "save", Path: path, Err: err}
	}
	for _, prefix := range forbiddenPrefixes {
		if strings.HasPrefix(abs, prefix) {
			return &model.StorageError{Op: "save", Path: path, Err: fmt.Errorf("refusing to write under %s", prefix)}
		}
	}

	if fi, err := os.Lstat(path); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		return &model.StorageError{Op: "save", Path: path, Err: fmt.Errorf("refusing to write through a symlink")}
	}
	return nil
}

// writeAtomic writes data through a temp file in the same directory, syncs,
// and renames into place. Permissions are owner read/write only.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return &model.StorageError{Op: "save", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".hostprint-*")
	if err != nil {
		return &model.StorageError{Op: "save", Path: path, Err: err}
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return &model.StorageError{Op: "save", Path: path, Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &model.StorageError{Op: "save", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &model.StorageError{Op: "save", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &model.StorageError{Op: "save", Path: path, Err: err}
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return &model.StorageError{Op: "save", Path: path, Err: err}
	}
	return nil
}
