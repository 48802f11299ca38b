package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driven/source"
	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
	"github.com/custodia-labs/neuralmap-cli/internal/logger"
)

// SourceType identifies this source.
const SourceType = "filesystem"

const filePrefix = "file://"

// DefaultConcurrency bounds parallel content reads.
const DefaultConcurrency = 8

// Verify interface compliance.
var _ driven.FileSource = (*Scanner)(nil)

// Scanner lists the files of a project directory.
type Scanner struct {
	maxBytes    int64
	concurrency int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMaxFileBytes caps content read per file. Larger files keep their node
// but carry no content.
func WithMaxFileBytes(n int64) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithConcurrency bounds parallel content reads.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewScanner creates a filesystem scanner.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		maxBytes:    source.DefaultMaxFileBytes,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Type returns the source type.
func (s *Scanner) Type() string {
	return SourceType
}

// Accepts reports whether location is a local path or file:// URI.
func (s *Scanner) Accepts(location string) bool {
	if location == "" {
		return false
	}
	if strings.HasPrefix(location, filePrefix) {
		return true
	}
	return !strings.Contains(location, "://")
}

// ProjectName returns the base name of the project directory.
func (s *Scanner) ProjectName(location string) string {
	root, err := resolveRoot(location)
	if err != nil {
		return ""
	}
	name := filepath.Base(root)
	if name == string(filepath.Separator) || name == "." {
		return ""
	}
	return name
}

type entry struct {
	abs  string
	rel  string
	size int64
	file domain.NeuralFile
}

// Scan walks location and returns its files sorted by path.
func (s *Scanner) Scan(ctx context.Context, location string) ([]domain.NeuralFile, error) {
	root, err := resolveRoot(location)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory: %w", root, domain.ErrInvalidInput)
	}

	project := s.ProjectName(root)
	entries, err := walk(ctx, root, project)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range entries {
		e := &entries[i]
		if source.IsBinary(e.rel) {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := s.read(e.abs, e.size)
			if err != nil {
				logger.Debug("skipping content of %s: %v", e.rel, err)
				return nil
			}
			e.file.Content = content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	files := make([]domain.NeuralFile, len(entries))
	for i, e := range entries {
		files[i] = e.file
	}
	logger.Debugw("scanned project", "root", root, "files", len(files))
	return files, nil
}

func walk(ctx context.Context, root, project string) ([]entry, error) {
	var entries []entry
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			logger.Debug("skipping %s: %v", p, err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p == root {
			return nil
		}
		if d.IsDir() {
			if source.SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || source.IsHidden(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if project != "" {
			rel = project + "/" + rel
		}

		entries = append(entries, entry{
			abs:  p,
			rel:  rel,
			size: info.Size(),
			file: domain.NeuralFile{
				ID:        uuid.NewSHA1(uuid.NameSpaceURL, []byte(filePrefix+filepath.ToSlash(p))).String(),
				Name:      d.Name(),
				Path:      rel,
				Type:      source.FileType(d.Name()),
				CreatedAt: info.ModTime().UTC(),
			},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })
	return entries, nil
}

// read returns the file's text, or "" when it is too large or binary.
func (s *Scanner) read(path string, size int64) (string, error) {
	if size > s.maxBytes {
		return "", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxBytes))
	if err != nil {
		return "", err
	}
	if source.LooksBinary(data) {
		return "", nil
	}
	return string(data), nil
}

func resolveRoot(location string) (string, error) {
	p := strings.TrimPrefix(location, filePrefix)
	if p == "" {
		return "", fmt.Errorf("empty location: %w", domain.ErrInvalidInput)
	}
	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", location, err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", location, err)
	}
	return abs, nil
}

// IsNotExist reports whether a Scan error means the directory is missing.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
