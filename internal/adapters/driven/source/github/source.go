package github

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driven/source"
	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
	"github.com/custodia-labs/neuralmap-cli/internal/logger"
)

// SourceType identifies this source.
const SourceType = "github"

const scheme = "github://"

// DefaultConcurrency bounds parallel blob fetches.
const DefaultConcurrency = 4

// Verify interface compliance.
var _ driven.FileSource = (*Source)(nil)

// Source lists the files of a GitHub repository.
type Source struct {
	token       string
	baseURL     string
	maxBytes    int64
	concurrency int
	limiter     *RateLimiter
	now         func() time.Time

	once   sync.Once
	client *client
	err    error
}

// Option configures a Source.
type Option func(*Source)

// WithToken authenticates API calls.
func WithToken(token string) Option {
	return func(s *Source) { s.token = token }
}

// WithBaseURL points the client at a different API root (GitHub Enterprise, tests).
func WithBaseURL(u string) Option {
	return func(s *Source) { s.baseURL = u }
}

// WithMaxFileBytes skips content of blobs larger than n.
func WithMaxFileBytes(n int64) Option {
	return func(s *Source) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithRateLimit replaces the proactive throttle.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(s *Source) { s.limiter = NewRateLimiter(r, burst) }
}

// New creates a GitHub source.
func New(opts ...Option) *Source {
	s := &Source{
		maxBytes:    source.DefaultMaxFileBytes,
		concurrency: DefaultConcurrency,
		limiter:     NewRateLimiter(rate.Limit(DefaultRate), DefaultBurst),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Type returns the source type.
func (s *Source) Type() string {
	return SourceType
}

// Accepts reports whether location uses the github:// scheme.
func (s *Source) Accepts(location string) bool {
	return strings.HasPrefix(location, scheme)
}

// ProjectName returns the repository name.
func (s *Source) ProjectName(location string) string {
	loc, err := ParseLocation(location)
	if err != nil {
		return ""
	}
	return loc.Repo
}

// Location is a parsed github:// address.
type Location struct {
	Owner string
	Repo  string
	Ref   string
}

// ParseLocation parses github://owner/repo[@ref].
func ParseLocation(location string) (Location, error) {
	rest, ok := strings.CutPrefix(location, scheme)
	if !ok {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidLocation, location)
	}
	rest = strings.Trim(rest, "/")

	var loc Location
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		loc.Ref = rest[at+1:]
		rest = rest[:at]
		if loc.Ref == "" {
			return Location{}, fmt.Errorf("%w: empty ref in %q", ErrInvalidLocation, location)
		}
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidLocation, location)
	}
	loc.Owner, loc.Repo = parts[0], parts[1]
	return loc, nil
}

// Scan lists the repository tree and fetches text blobs.
func (s *Source) Scan(ctx context.Context, location string) ([]domain.NeuralFile, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, fmt.Errorf("scan: %w: %w", domain.ErrInvalidInput, err)
	}
	c, err := s.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	ref := loc.Ref
	if ref == "" {
		if ref, err = c.defaultBranch(ctx, loc.Owner, loc.Repo); err != nil {
			return nil, err
		}
	}

	tree, err := c.tree(ctx, loc.Owner, loc.Repo, ref)
	if err != nil {
		return nil, err
	}
	if tree.GetTruncated() {
		logger.Warn("%s/%s@%s: %v, graph will be partial", loc.Owner, loc.Repo, ref, ErrTruncatedTree)
	}

	fetched := s.now().UTC()
	var files []domain.NeuralFile
	var shas []string
	var sizes []int
	for _, e := range tree.Entries {
		if e.GetType() != "blob" || source.SkipPath(e.GetPath()) {
			continue
		}
		p := e.GetPath()
		files = append(files, domain.NeuralFile{
			ID:        uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s%s/%s@%s/%s", scheme, loc.Owner, loc.Repo, ref, p))).String(),
			Name:      path.Base(p),
			Path:      loc.Repo + "/" + p,
			Type:      source.FileType(p),
			CreatedAt: fetched,
		})
		shas = append(shas, e.GetSHA())
		sizes = append(sizes, e.GetSize())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range files {
		if source.IsBinary(files[i].Path) || int64(sizes[i]) > s.maxBytes {
			continue
		}
		g.Go(func() error {
			data, err := c.blob(gctx, loc.Owner, loc.Repo, shas[i])
			if err != nil {
				if IsRateLimited(err) || gctx.Err() != nil {
					return err
				}
				logger.Debug("skipping content of %s: %v", files[i].Path, err)
				return nil
			}
			if !source.LooksBinary(data) {
				files[i].Content = string(data)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan %s/%s: %w", loc.Owner, loc.Repo, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	logger.Debugw("scanned repository", "owner", loc.Owner, "repo", loc.Repo, "ref", ref, "files", len(files))
	return files, nil
}

func (s *Source) ensureClient(ctx context.Context) (*client, error) {
	s.once.Do(func() {
		s.client, s.err = newClient(context.WithoutCancel(ctx), s.token, s.baseURL, s.limiter)
	})
	return s.client, s.err
}
