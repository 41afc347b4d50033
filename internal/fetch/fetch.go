// Package fetch downloads and extracts dependency archives for
// dependency { kind "download" } entries. It is an external
// collaborator the same way internal/cache is: the interpreter never
// calls it, but the CLI's dependency resolver does, once it has a
// model.Dependency with a URL to materialize.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mholt/archives"
)

// Options controls a single fetch operation.
type Options struct {
	// DestDir is where the downloaded archive is extracted to.
	DestDir string
	// CacheDir, if set, is checked for an already-downloaded archive
	// before hitting the network, and is where the archive is saved
	// after a successful download.
	CacheDir string
	Timeout  time.Duration
	Headers  map[string]string
}

// DefaultOptions returns an Options with a 60 second timeout, the
// common case for dependency tarballs.
func DefaultOptions() Options {
	return Options{Timeout: 60 * time.Second}
}

// Result describes what a fetch produced.
type Result struct {
	ArchivePath string
	ExtractedTo string
	FromCache   bool
	Bytes       int64
}

// Fetch downloads the archive at url (or reuses a cached copy) and
// extracts it into opts.DestDir, returning the path the archive was
// read from and where it landed.
func Fetch(ctx context.Context, url string, opts Options) (*Result, error) {
	if opts.DestDir == "" {
		return nil, fmt.Errorf("fetch: DestDir is required")
	}

	archivePath, fromCache, err := acquire(ctx, url, opts)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.DestDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	if err := extractArchive(ctx, archivePath, opts.DestDir); err != nil {
		return nil, err
	}

	info, statErr := os.Stat(archivePath)
	var size int64
	if statErr == nil {
		size = info.Size()
	}

	return &Result{
		ArchivePath: archivePath,
		ExtractedTo: opts.DestDir,
		FromCache:   fromCache,
		Bytes:       size,
	}, nil
}

// acquire returns a local path to the archive named by url, downloading
// it if a cached copy is not already present.
func acquire(ctx context.Context, url string, opts Options) (string, bool, error) {
	if opts.CacheDir != "" {
		cachedPath := filepath.Join(opts.CacheDir, archiveFilename(url))
		if info, err := os.Stat(cachedPath); err == nil && !info.IsDir() {
			return cachedPath, true, nil
		}
	}

	destPath := filepath.Join(opts.CacheDir, archiveFilename(url))
	if opts.CacheDir == "" {
		tmpDir, err := os.MkdirTemp("", "iris-fetch-*")
		if err != nil {
			return "", false, fmt.Errorf("failed to create temp directory: %w", err)
		}
		destPath = filepath.Join(tmpDir, archiveFilename(url))
	} else if err := os.MkdirAll(opts.CacheDir, 0755); err != nil {
		return "", false, fmt.Errorf("failed to create cache directory: %w", err)
	}

	if err := download(ctx, url, destPath, opts); err != nil {
		return "", false, err
	}
	return destPath, false, nil
}

func archiveFilename(url string) string {
	if strings.HasSuffix(url, "/") {
		return "archive.download"
	}
	name := filepath.Base(url)
	if name == "" || name == "." || name == "/" {
		name = "archive.download"
	}
	return name
}

func download(ctx context.Context, url, destPath string, opts Options) error {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultOptions().Timeout
	}

	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download of %s failed with status: %s", url, resp.Status)
	}

	if dir := filepath.Dir(destPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create parent directory: %w", err)
		}
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to save downloaded archive: %w", err)
	}
	return nil
}

// extractArchive extracts archivePath into extractTo, identifying the
// archive/compression format automatically.
func extractArchive(ctx context.Context, archivePath, extractTo string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() { _ = archiveFile.Close() }()

	format, archiveReader, err := archives.Identify(ctx, archivePath, archiveFile)
	if err != nil {
		return fmt.Errorf("failed to identify archive format: %w", err)
	}

	extractor, ok := format.(archives.Extractor)
	if !ok {
		if decompressor, ok := format.(archives.Decompressor); ok {
			return decompressToFile(decompressor, archiveReader, archivePath, extractTo)
		}
		return fmt.Errorf("format does not support extraction: %s", archivePath)
	}

	handler := func(ctx context.Context, f archives.FileInfo) error {
		outputPath := filepath.Join(extractTo, f.NameInArchive)

		if f.IsDir() {
			return os.MkdirAll(outputPath, f.Mode())
		}
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			return fmt.Errorf("failed to create parent directory: %w", err)
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to open file in archive: %w", err)
		}
		defer func() { _ = rc.Close() }()

		outFile, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = outFile.Close() }()

		if _, err := io.Copy(outFile, rc); err != nil {
			return fmt.Errorf("failed to extract file: %w", err)
		}
		return nil
	}

	return extractor.Extract(ctx, archiveReader, handler)
}

func decompressToFile(decompressor archives.Decompressor, reader io.Reader, archivePath, extractTo string) error {
	rc, err := decompressor.OpenReader(reader)
	if err != nil {
		return fmt.Errorf("failed to open decompressor: %w", err)
	}
	defer func() { _ = rc.Close() }()

	baseName := filepath.Base(archivePath)
	for _, ext := range []string{".gz", ".bz2", ".xz", ".zst", ".br", ".lz4", ".sz"} {
		if strings.HasSuffix(strings.ToLower(baseName), ext) {
			baseName = strings.TrimSuffix(baseName, ext)
			break
		}
	}

	outputPath := filepath.Join(extractTo, baseName)
	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = outFile.Close() }()

	if _, err := io.Copy(outFile, rc); err != nil {
		return fmt.Errorf("decompression failed: %w", err)
	}
	return nil
}
