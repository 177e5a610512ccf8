package store

import (
	"encoding/json"

	"github.com/ppiankov/hostprint/internal/model"
	"github.com/ppiankov/hostprint/internal/seal"
)

// FormatVersion is the on-disk artifact format version.
const FormatVersion = 1

// Envelope is the persisted artifact: a header describing how the payload
// is protected, the payload itself, and an integrity tag computed over the
// plaintext snapshot bytes (so integrity is checkable whether or not the
// payload is encrypted).
//
// KeyedIntegrity distinguishes the two guarantees this file can make:
// true means the tag is an HMAC under a passphrase-derived key (tamper
// resistant), false means an unkeyed SHA3-256 checksum (corruption
// detection only). An encrypted artifact is always keyed.
type Envelope struct {
	FormatVersion  int             `json:"format_version"`
	Hashed         bool            `json:"hashed"`
	Encrypted      bool            `json:"encrypted"`
	KeyedIntegrity bool            `json:"keyed_integrity"`
	KDF            *seal.KDFParams `json:"kdf,omitempty"`
	Salt           []byte          `json:"salt,omitempty"`
	Nonce          []byte          `json:"nonce,omitempty"`
	Payload        []byte          `json:"payload"`
	IntegrityTag   []byte          `json:"integrity_tag"`
}

// encode serializes the envelope with stable field order.
func (e *Envelope) encode() ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, &model.SerializationError{Op: "marshal artifact", Err: err}
	}
	return append(data, '\n'), nil
}

// parseEnvelope decodes artifact bytes and checks the format version.
func parseEnvelope(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, &model.SerializationError{Op: "parse artifact", Err: err}
	}
	if e.FormatVersion != FormatVersion {
		return nil, &model.SchemaError{
			Reason: "unsupported artifact format version",
		}
	}
	return &e, nil
}
