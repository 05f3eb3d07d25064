package attest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/zen-systems/claimgate/pkg/crypto"
	"github.com/zen-systems/claimgate/pkg/evidence"
)

// SchemaV1 identifies the attestation format.
const SchemaV1 = "claimgate.attestation.v1"

// bundleFiles are the evidence files an attestation covers, relative
// to the run directory.
var bundleFiles = []string{"run.json", "audit.json", "calls.json"}

// Attestation binds a resolution run's evidence bundle to its content
// hashes, optionally signed. Downstream reviewers use it to prove the
// audit trail was not edited after the run.
type Attestation struct {
	Schema    string            `json:"schema"`
	RunID     string            `json:"run_id"`
	InputHash string            `json:"input_hash"`
	LineCount int               `json:"line_count"`
	Hashes    map[string]string `json:"hashes"`
	Signature *Signature        `json:"signature,omitempty"`
}

// Signature is a detached signature over the attestation payload.
type Signature struct {
	Alg      string `json:"alg"`
	PubKeyID string `json:"pubkey_id"`
	Sig      string `json:"sig"`
}

// Build hashes the evidence bundle in runDir and returns an unsigned
// attestation.
func Build(runDir string) (*Attestation, error) {
	if runDir == "" {
		return nil, fmt.Errorf("run directory is required")
	}

	runData, err := os.ReadFile(filepath.Join(runDir, "run.json"))
	if err != nil {
		return nil, fmt.Errorf("read run record: %w", err)
	}
	var run evidence.RunRecord
	if err := json.Unmarshal(runData, &run); err != nil {
		return nil, fmt.Errorf("parse run record: %w", err)
	}
	if run.ID == "" {
		return nil, fmt.Errorf("run record missing ID")
	}

	hashes := make(map[string]string, len(bundleFiles))
	for _, rel := range sortedBundleFiles() {
		data, err := os.ReadFile(filepath.Join(runDir, rel))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}
		sum := sha256.Sum256(data)
		hashes[rel] = hex.EncodeToString(sum[:])
	}

	return &Attestation{
		Schema:    SchemaV1,
		RunID:     run.ID,
		InputHash: run.InputHash,
		LineCount: run.LineCount,
		Hashes:    hashes,
	}, nil
}

// Sign attaches an ed25519 signature over the attestation payload.
// Any existing signature is replaced.
func (a *Attestation) Sign(signer *crypto.Signer) error {
	payload, err := a.payload()
	if err != nil {
		return err
	}
	a.Signature = &Signature{
		Alg:      "ed25519",
		PubKeyID: signer.KeyID,
		Sig:      signer.Sign(payload),
	}
	return nil
}

// Write persists the attestation next to the bundle it covers.
func (a *Attestation) Write(runDir string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(runDir, "attestation.json"), data, 0600)
}

// payload is the canonical signing input: the attestation with its
// signature field cleared.
func (a *Attestation) payload() ([]byte, error) {
	unsigned := *a
	unsigned.Signature = nil
	return json.Marshal(&unsigned)
}

func sortedBundleFiles() []string {
	out := make([]string, len(bundleFiles))
	copy(out, bundleFiles)
	sort.Strings(out)
	return out
}
