// Package seal provides the crypto layer: passphrase key derivation,
// authenticated encryption of serialized snapshots, and integrity tags
// over the plaintext.
//
// Key material flows one way: a passphrase is stretched with Argon2id into
// a master key, which HKDF splits into separate encryption and MAC keys.
// Nothing in this package ever embeds a fixed key — without a passphrase
// the only available integrity check is an unkeyed checksum, and callers
// must label artifacts accordingly.
package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"

	"github.com/ppiankov/hostprint/internal/model"
)

const (
	// SaltSize is the per-encryption Argon2 salt length in bytes.
	SaltSize = 16
	// KeySize is the length of each derived key (AES-256, HMAC-SHA-256).
	KeySize = 32

	nonceSize     = 12
	masterKeySize = 64

	infoEncrypt   = "hostprint/encrypt"
	infoIntegrity = "hostprint/integrity"
)

// KDFParams are the Argon2id cost parameters. They are recorded in the
// artifact so files written under older defaults remain decryptable.
type KDFParams struct {
	Time      uint32 `json:"time"`
	MemoryKiB uint32 `json:"memory_kib"`
	Threads   uint8  `json:"threads"`
}

// DefaultKDFParams returns the current Argon2id cost settings.
func DefaultKDFParams() KDFParams {
	return KDFParams{Time: 1, MemoryKiB: 64 * 1024, Threads: 4}
}

// Keys holds the derived key pair. Encrypt and MAC are independent HKDF
// outputs of the same master key, so encryption and integrity never share
// key material directly.
type Keys struct {
	Encrypt []byte
	MAC     []byte
}

// NewSalt returns a fresh random salt. Salts are generated per encryption
// and never reused.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKeys stretches a passphrase into encryption and MAC keys.
func DeriveKeys(passphrase, salt []byte, p KDFParams) (Keys, error) {
	if len(passphrase) == 0 {
		return Keys{}, fmt.Errorf("empty passphrase")
	}
	if len(salt) != SaltSize {
		return Keys{}, fmt.Errorf("salt must be %d bytes, got %d", SaltSize, len(salt))
	}

	master := argon2.IDKey(passphrase, salt, p.Time, p.MemoryKiB, p.Threads, masterKeySize)

	keys := Keys{
		Encrypt: make([]byte, KeySize),
		MAC:     make([]byte, KeySize),
	}
	if err := expand(master, infoEncrypt, keys.Encrypt); err != nil {
		return Keys{}, err
	}
	if err := expand(master, infoIntegrity, keys.MAC); err != nil {
		return Keys{}, err
	}
	return keys, nil
}

func expand(master []byte, info string, out []byte) error {
	r := hkdf.New(sha256.New, master, nil, []byte(info))
	if _, err := io.ReadFull(r, out); err != nil {
		return fmt.Errorf("hkdf expand %s: %w", info, err)
	}
	return nil
}

// Blob is an authenticated ciphertext with its nonce.
type Blob struct {
	Nonce      []byte
	Ciphertext []byte
}

// Encrypt seals plaintext with AES-256-GCM. A fresh random nonce is drawn
// inside this function on every call; callers cannot supply one, so nonce
// reuse under a key is structurally impossible.
func Encrypt(plaintext, key []byte) (Blob, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return Blob{}, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return Blob{}, fmt.Errorf("generate nonce: %w", err)
	}

	return Blob{
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, plaintext, nil),
	}, nil
}

// Decrypt opens a blob. Any tag mismatch or corrupted ciphertext fails
// closed with an AuthenticationError — partial plaintext is never returned.
func Decrypt(b Blob, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(b.Nonce) != nonceSize {
		return nil, &model.AuthenticationError{Reason: "malformed nonce"}
	}

	plaintext, err := gcm.Open(nil, b.Nonce, b.Ciphertext, nil)
	if err != nil {
		return nil, &model.AuthenticationError{Reason: "wrong passphrase or tampered ciphertext"}
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Tag computes the keyed integrity tag (HMAC-SHA-256) over plaintext.
func Tag(plaintext, macKey []byte) []byte {
	mac := hmac.New(sha256.New, macKey)
	mac.Write(plaintext)
	return mac.Sum(nil)
}

// Verify checks a keyed integrity tag in constant time.
func Verify(plaintext, tag, macKey []byte) bool {
	return hmac.Equal(Tag(plaintext, macKey), tag)
}

// Checksum computes the unkeyed SHA3-256 of plaintext. This detects
// corruption only — anyone who can rewrite the file can recompute it.
func Checksum(plaintext []byte) []byte {
	sum := sha3.Sum256(plaintext)
	return sum[:]
}

// VerifyChecksum checks an unkeyed checksum.
func VerifyChecksum(plaintext, sum []byte) bool {
	return hmac.Equal(Checksum(plaintext), sum)
}
