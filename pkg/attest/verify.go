package attest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zen-systems/claimgate/pkg/crypto"
)

// Verify recomputes the bundle hashes in runDir against the
// attestation and, when a signature is attached, checks it against the
// key in keyDir.
func Verify(att *Attestation, runDir, keyDir string) error {
	if att == nil {
		return fmt.Errorf("attestation is required")
	}
	if runDir == "" {
		return fmt.Errorf("run directory is required")
	}
	if att.Schema != SchemaV1 {
		return fmt.Errorf("unsupported attestation schema %q", att.Schema)
	}
	if len(att.Hashes) == 0 {
		return fmt.Errorf("attestation covers no files")
	}

	for rel, expected := range att.Hashes {
		path, err := safeJoin(runDir, rel)
		if err != nil {
			return fmt.Errorf("invalid hash path %q: %w", rel, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("missing evidence file %s: %w", rel, err)
		}
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != expected {
			return fmt.Errorf("hash mismatch for %s", rel)
		}
	}

	if att.Signature != nil {
		if att.Signature.Alg != "ed25519" {
			return fmt.Errorf("unsupported signature algorithm %q", att.Signature.Alg)
		}
		payload, err := att.payload()
		if err != nil {
			return err
		}
		if err := crypto.VerifySignature(keyDir, att.Signature.PubKeyID, payload, att.Signature.Sig); err != nil {
			return fmt.Errorf("signature verification failed: %w", err)
		}
	}

	return nil
}

// VerifyFile loads runDir/attestation.json and verifies it.
func VerifyFile(runDir, keyDir string) (*Attestation, error) {
	data, err := os.ReadFile(filepath.Join(runDir, "attestation.json"))
	if err != nil {
		return nil, err
	}
	var att Attestation
	if err := json.Unmarshal(data, &att); err != nil {
		return nil, err
	}
	if err := Verify(&att, runDir, keyDir); err != nil {
		return nil, err
	}
	return &att, nil
}

// safeJoin joins rel under base, rejecting absolute paths and parent
// traversal.
func safeJoin(base, rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("empty path")
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("absolute path not allowed")
	}
	cleaned := filepath.Clean(rel)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes run directory")
	}
	return filepath.Join(base, cleaned), nil
}
