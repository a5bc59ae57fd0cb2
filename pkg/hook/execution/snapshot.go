package execution

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"sort"
)

// Snapshot maps a repository-relative path to a digest of its content.
// A file that could not be read maps to the zero digest.
type Snapshot map[string][sha256.Size]byte

// TakeSnapshot digests files relative to root
func TakeSnapshot(root string, files []string) Snapshot {
	snapshot := make(Snapshot, len(files))
	for _, file := range files {
		data, err := os.ReadFile(filepath.Join(root, file)) // #nosec G304 -- files come from the git index
		if err != nil {
			snapshot[file] = [sha256.Size]byte{}
			continue
		}
		snapshot[file] = sha256.Sum256(data)
	}
	return snapshot
}

// Changed returns the sorted files whose digest differs in after
func (s Snapshot) Changed(after Snapshot) []string {
	var changed []string
	for file, digest := range s {
		if afterDigest, ok := after[file]; !ok || afterDigest != digest {
			changed = append(changed, file)
		}
	}
	sort.Strings(changed)
	return changed
}
