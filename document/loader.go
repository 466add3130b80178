// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package document

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/ragdex/core"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
)

// Loader reads documents from files, directories and URLs.
// Supported file types: .pdf, .txt, .md, .html, .htm.
type Loader struct {
	poolSize int
	http     *http.Client
	logger   *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPoolSize sets the worker pool size for concurrent directory loading.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) LoaderOption {
	return func(l *Loader) {
		if size < 1 {
			size = 1
		}
		l.poolSize = size
	}
}

// WithHTTPClient sets the client used to fetch URL sources.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		l.http = client
	}
}

// NewLoader creates a document loader.
func NewLoader(opts ...LoaderOption) *Loader {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	l := &Loader{
		poolSize: poolSize,
		http:     &http.Client{Timeout: 60 * time.Second},
		logger:   slog.Default().With("component", "loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsURL reports whether a source key refers to a web page rather than a path.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load reads all documents for a source: a URL, a single file, or a
// directory of supported files. Loading failures propagate; no partial
// document set is returned.
func (l *Loader) Load(ctx context.Context, source string) ([]schema.Document, error) {
	if source == "" {
		return nil, core.ErrEmptySource
	}

	if IsURL(source) {
		return l.LoadURL(ctx, source)
	}

	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrSourceNotFound, source)
		}
		return nil, err
	}

	if info.IsDir() {
		return l.LoadDirectory(ctx, source)
	}
	return l.LoadFile(ctx, source)
}

// LoadFile reads a single file, choosing the loader by extension.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]schema.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var docs []schema.Document
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		l.logger.Debug("loading PDF file", "path", path)
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		docs, err = documentloaders.NewPDF(f, info.Size()).Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	case ".txt", ".md":
		l.logger.Debug("loading text file", "path", path)
		docs, err = documentloaders.NewText(f).Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	case ".html", ".htm":
		l.logger.Debug("loading HTML file", "path", path)
		docs, err = documentloaders.NewHTML(f).Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s (supported: .pdf, .txt, .md, .html)", ErrUnsupportedType, ext)
	}

	setSource(docs, path)
	return docs, nil
}

// LoadURL fetches a web page and extracts its text.
func (l *Loader) LoadURL(ctx context.Context, rawURL string) ([]schema.Document, error) {
	l.logger.Debug("loading URL", "url", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: %s", rawURL, resp.Status)
	}

	docs, err := documentloaders.NewHTML(resp.Body).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", rawURL, err)
	}

	setSource(docs, rawURL)
	return docs, nil
}

// LoadDirectory walks a directory tree and loads every supported file.
// Files load concurrently on a worker pool; the result preserves
// lexical path order regardless of completion order.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]schema.Document, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if supportedExt(filepath.Ext(path)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no supported files under %s", ErrNoDocuments, dir)
	}

	l.logger.Info("loading directory", "dir", dir, "files", len(files), "workers", l.poolSize)

	pool, err := ants.NewPool(l.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([][]schema.Document, len(files))
	errs := make([]error, len(files))
	var wg sync.WaitGroup

	for i, path := range files {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = l.LoadFile(ctx, path)
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	var docs []schema.Document
	for i := range files {
		if errs[i] != nil {
			return nil, errs[i]
		}
		docs = append(docs, results[i]...)
	}

	l.logger.Info("loaded directory", "dir", dir, "documents", len(docs))
	return docs, nil
}

func supportedExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".txt", ".md", ".html", ".htm":
		return true
	}
	return false
}

// setSource records the originating source on every document's metadata.
func setSource(docs []schema.Document, source string) {
	for i := range docs {
		if docs[i].Metadata == nil {
			docs[i].Metadata = make(map[string]any)
		}
		docs[i].Metadata["source"] = source
	}
}
