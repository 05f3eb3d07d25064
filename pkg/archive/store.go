package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Store is a content-addressed archive for resolution evidence.
// Objects are stored once by SHA256 and shared between runs; each
// archived run gets an index mapping bundle files to object hashes.
type Store struct {
	BasePath string
}

// RunIndex records which objects an archived run consists of.
type RunIndex struct {
	RunID      string            `json:"run_id"`
	ArchivedAt time.Time         `json:"archived_at"`
	Objects    map[string]string `json:"objects"`
}

// NewStore creates an archive store rooted at basePath.
func NewStore(basePath string) (*Store, error) {
	if basePath == "" {
		return nil, fmt.Errorf("archive path is required")
	}

	for _, d := range []string{
		filepath.Join(basePath, "objects"),
		filepath.Join(basePath, "runs"),
	} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, err
		}
	}

	return &Store{BasePath: basePath}, nil
}

// StoreBlob stores raw bytes by content hash in a sharded directory
// and returns the hash. Storing the same content twice is a no-op.
func (s *Store) StoreBlob(data []byte) (string, error) {
	hashBytes := sha256.Sum256(data)
	hash := hex.EncodeToString(hashBytes[:])

	shard := hash[:2]
	dir := filepath.Join(s.BasePath, "objects", shard)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, hash)
	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return hash, nil
}

// ReadBlob returns the content stored under the given hash.
func (s *Store) ReadBlob(hash string) ([]byte, error) {
	if len(hash) < 3 {
		return nil, fmt.Errorf("invalid object hash %q", hash)
	}
	return os.ReadFile(filepath.Join(s.BasePath, "objects", hash[:2], hash))
}

// ArchiveRun copies every regular file in a run directory into the
// object store and writes the run index.
func (s *Store) ArchiveRun(runDir, runID string) (*RunIndex, error) {
	if runID == "" {
		return nil, fmt.Errorf("run ID is required")
	}

	entries, err := os.ReadDir(runDir)
	if err != nil {
		return nil, err
	}

	index := &RunIndex{
		RunID:      runID,
		ArchivedAt: time.Now().UTC(),
		Objects:    make(map[string]string),
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(runDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		hash, err := s.StoreBlob(data)
		if err != nil {
			return nil, err
		}
		index.Objects[entry.Name()] = hash
	}
	if len(index.Objects) == 0 {
		return nil, fmt.Errorf("run directory %s has no files to archive", runDir)
	}

	indexData, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return nil, err
	}
	indexPath := filepath.Join(s.BasePath, "runs", runID+".json")
	if err := os.WriteFile(indexPath, indexData, 0644); err != nil {
		return nil, err
	}
	return index, nil
}

// LoadRunIndex reads the index for an archived run.
func (s *Store) LoadRunIndex(runID string) (*RunIndex, error) {
	data, err := os.ReadFile(filepath.Join(s.BasePath, "runs", runID+".json"))
	if err != nil {
		return nil, err
	}
	var index RunIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, err
	}
	return &index, nil
}
