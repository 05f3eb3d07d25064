package artifact

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// Artifact is an immutable record of one reasoning-backend response.
// The engine keeps artifacts for audit evidence; decoded decisions are
// derived from Content and never written back.
type Artifact struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Backend   string            `json:"backend"`
	Model     string            `json:"model"`
	Caller    string            `json:"caller,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Hash      string            `json:"hash"`
}

// New creates an artifact with a computed content hash.
func New(content, backend, model string) *Artifact {
	a := &Artifact{
		ID:        generateID(),
		Content:   content,
		Backend:   backend,
		Model:     model,
		Metadata:  make(map[string]string),
		CreatedAt: time.Now().UTC(),
	}
	a.Hash = a.computeHash()
	return a
}

// WithCaller returns a copy tagged with the logical caller name that
// issued the request.
func (a *Artifact) WithCaller(caller string) *Artifact {
	clone := *a
	clone.Caller = caller
	clone.Metadata = copyMetadata(a.Metadata)
	return &clone
}

// WithMetadata returns a copy carrying one additional metadata entry.
func (a *Artifact) WithMetadata(key, value string) *Artifact {
	clone := *a
	clone.Metadata = copyMetadata(a.Metadata)
	clone.Metadata[key] = value
	return &clone
}

func (a *Artifact) computeHash() string {
	h := sha256.New()
	h.Write([]byte(a.Content))
	h.Write([]byte(a.Backend))
	h.Write([]byte(a.Model))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func generateID() string {
	h := sha256.New()
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(time.Now().UnixNano()))
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil))[:12]
}

func copyMetadata(m map[string]string) map[string]string {
	newM := make(map[string]string, len(m))
	for k, v := range m {
		newM[k] = v
	}
	return newM
}
