package attest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zen-systems/claimgate/pkg/crypto"
	"github.com/zen-systems/claimgate/pkg/evidence"
)

func writeBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	c := evidence.NewCollector("inputhash")
	c.SetLineCount(2)
	c.Record(evidence.KindSummary, "", "", "done", nil)

	w, err := evidence.NewWriter(dir, c.Run().ID)
	require.NoError(t, err)
	require.NoError(t, w.WriteCollector(c))
	return w.RunDir()
}

func TestBuildCoversBundleFiles(t *testing.T) {
	runDir := writeBundle(t)

	att, err := Build(runDir)
	require.NoError(t, err)
	assert.Equal(t, SchemaV1, att.Schema)
	assert.NotEmpty(t, att.RunID)
	assert.Equal(t, "inputhash", att.InputHash)
	assert.Equal(t, 2, att.LineCount)
	assert.Len(t, att.Hashes, 3)
	for _, rel := range []string{"run.json", "audit.json", "calls.json"} {
		assert.Contains(t, att.Hashes, rel)
		assert.Len(t, att.Hashes[rel], 64)
	}
}

func TestVerifyUnsignedBundle(t *testing.T) {
	runDir := writeBundle(t)
	att, err := Build(runDir)
	require.NoError(t, err)

	assert.NoError(t, Verify(att, runDir, ""))
}

func TestVerifyDetectsTamperedBundle(t *testing.T) {
	runDir := writeBundle(t)
	att, err := Build(runDir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(runDir, "audit.json"), []byte("[]"), 0644))

	err = Verify(att, runDir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hash mismatch")
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	runDir := writeBundle(t)
	keyDir := t.TempDir()

	signer, err := crypto.NewSigner(keyDir, "reviewer")
	require.NoError(t, err)

	att, err := Build(runDir)
	require.NoError(t, err)
	require.NoError(t, att.Sign(signer))
	require.NoError(t, att.Write(runDir))

	verified, err := VerifyFile(runDir, keyDir)
	require.NoError(t, err)
	assert.Equal(t, att.RunID, verified.RunID)
	require.NotNil(t, verified.Signature)
	assert.Equal(t, "reviewer", verified.Signature.PubKeyID)
}

func TestVerifyRejectsForgedSignature(t *testing.T) {
	runDir := writeBundle(t)
	keyDir := t.TempDir()

	_, err := crypto.NewSigner(keyDir, "reviewer")
	require.NoError(t, err)

	att, err := Build(runDir)
	require.NoError(t, err)
	att.Signature = &Signature{Alg: "ed25519", PubKeyID: "reviewer", Sig: "Zm9yZ2Vk"}

	err = Verify(att, runDir, keyDir)
	assert.Error(t, err)
}

func TestVerifyRejectsPathTraversal(t *testing.T) {
	runDir := writeBundle(t)
	att, err := Build(runDir)
	require.NoError(t, err)
	att.Hashes["../outside.json"] = att.Hashes["run.json"]

	err = Verify(att, runDir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid hash path")
}
