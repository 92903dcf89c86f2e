package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DiscoverChunks finds the chunks of the input named base inside dir, sorted
// by sequence. The sequence must start at 0 and have no gaps.
func DiscoverChunks(dir, base string) ([]DiscoveredChunk, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", absDir)
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	base = filepath.Base(base)
	var chunks []DiscoveredChunk
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ft, seq := ParseChunkName(entry.Name(), base)
		if ft != FileTypeChunk {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}

		chunks = append(chunks, DiscoveredChunk{
			Path:     filepath.Join(absDir, entry.Name()),
			Name:     entry.Name(),
			Sequence: seq,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks of %s found in %s", base, absDir)
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Sequence < chunks[j].Sequence
	})

	for i, c := range chunks {
		if c.Sequence != i {
			return nil, fmt.Errorf("chunk sequence has a gap: expected %s, found %s", ChunkName(i, base), c.Name)
		}
	}

	return chunks, nil
}

// DiscoverDiagnostics finds statement dumps left behind by an aborted split
func DiscoverDiagnostics(dir, base string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if ft, _ := ParseChunkName(entry.Name(), filepath.Base(base)); ft == FileTypeDiagnostic {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
