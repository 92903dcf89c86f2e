package verify

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	"github.com/cybertec-postgresql/sqlsplit/pkg/types"
)

// ChecksumPool hashes chunk files concurrently and compares them with the
// digests recorded in a manifest
type ChecksumPool struct {
	maxWorkers int
}

// NewChecksumPool creates a pool with at most maxWorkers concurrent hashers
func NewChecksumPool(maxWorkers int) *ChecksumPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &ChecksumPool{maxWorkers: maxWorkers}
}

// checksumJob is one chunk to hash
type checksumJob struct {
	info  types.ChunkInfo
	path  string
	index int
}

// checksumResult is the outcome for one chunk
type checksumResult struct {
	index int
	err   error
}

// Check hashes every chunk listed in entries. Relative paths are resolved
// against dir. The first mismatch in sequence order is returned.
func (p *ChecksumPool) Check(ctx context.Context, dir string, entries []types.ChunkInfo) error {
	n := len(entries)
	if n == 0 {
		return nil
	}

	jobs := make(chan *checksumJob, n)
	results := make(chan *checksumResult, n)

	var wg sync.WaitGroup
	workers := min(p.maxWorkers, n)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go p.worker(ctx, jobs, results, &wg)
	}

	for i, info := range entries {
		path := info.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, filepath.Base(path))
		}
		jobs <- &checksumJob{info: info, path: path, index: i}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	errs := make([]error, n)
	for res := range results {
		errs[res.index] = res.err
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	logger.Debug("checksums match for %d chunk(s)", n)
	return nil
}

func (p *ChecksumPool) worker(ctx context.Context, jobs <-chan *checksumJob, results chan<- *checksumResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			results <- &checksumResult{index: job.index, err: ctx.Err()}
			continue
		}
		results <- &checksumResult{index: job.index, err: checkOne(job)}
	}
}

func checkOne(job *checksumJob) error {
	f, err := os.Open(job.path)
	if err != nil {
		return &errors.OpenInputError{Path: job.path, Err: err}
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return &errors.ReadError{Offset: size, Err: err}
	}

	name := filepath.Base(job.path)
	if size != job.info.Bytes {
		return &errors.MismatchError{
			Chunk:   name,
			Message: fmt.Sprintf("size %d differs from manifest (%d)", size, job.info.Bytes),
		}
	}
	if job.info.SHA256 == "" {
		return nil
	}
	if sum := fmt.Sprintf("%x", h.Sum(nil)); sum != job.info.SHA256 {
		return &errors.MismatchError{
			Chunk:   name,
			Message: fmt.Sprintf("sha256 %s differs from manifest", sum),
		}
	}
	return nil
}
