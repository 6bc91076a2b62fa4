package thumbs

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/util/sets"
)

// ErrMissingImage is wrapped by errors for references whose source image does not exist.
var ErrMissingImage = stderrors.New("referenced image does not exist")

// Cache ensures thumbnails exist for image references relative to the image root.
type Cache struct {
	imageRoot string
	cacheRoot string
	size      int
	workers   int
	maker     Maker
	logger    *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCache creates a cache storing size-pixel thumbnails of images under
// imageRoot in cacheRoot.
func NewCache(imageRoot, cacheRoot string, size int) *Cache {
	return &Cache{
		imageRoot: imageRoot,
		cacheRoot: cacheRoot,
		size:      size,
		workers:   1,
		maker:     ImageMaker{},
		logger:    slog.Default(),
		locks:     make(map[string]*sync.Mutex),
	}
}

// WithMaker sets the thumbnail generator.
func (c *Cache) WithMaker(m Maker) *Cache {
	c.maker = m
	return c
}

// WithWorkers sets how many thumbnails EnsureAll generates concurrently.
func (c *Cache) WithWorkers(n int) *Cache {
	if n < 1 {
		n = 1
	}
	c.workers = n
	return c
}

// WithLogger sets a custom logger.
func (c *Cache) WithLogger(logger *slog.Logger) *Cache {
	c.logger = logger
	return c
}

// Path returns the cache location of ref. Refs must be relative and stay
// inside the image root.
func (c *Cache) Path(ref string) (string, error) {
	if ref == "" || !filepath.IsLocal(ref) {
		return "", errors.ValidationError("image reference must be a relative path inside the image directory").
			WithContext("image", ref).Build()
	}
	return filepath.Join(c.cacheRoot, ref), nil
}

// Ensure makes sure the thumbnail for ref exists, generating it on a miss.
func (c *Cache) Ensure(ref string) error {
	_, err := c.ensure(ref)
	return err
}

func (c *Cache) ensure(ref string) (generated bool, err error) {
	dst, err := c.Path(ref)
	if err != nil {
		return false, err
	}

	lock := c.lockFor(dst)
	lock.Lock()
	defer lock.Unlock()

	if _, err := os.Stat(dst); err == nil {
		return false, nil
	}

	src := filepath.Join(c.imageRoot, ref)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return false, errors.ImageError("missing image").WithCause(ErrMissingImage).
				WithContext("image", ref).WithContext("path", src).Build()
		}
		return false, errors.ImageError("stat image").WithCause(err).WithContext("image", ref).Build()
	}

	if err := c.generate(src, dst); err != nil {
		return false, errors.ImageError("generate thumbnail").WithCause(err).WithContext("image", ref).Build()
	}
	c.logger.Debug("Generated thumbnail", logfields.Image(ref), logfields.Output(dst))
	return true, nil
}

// generate writes through a temp file in the destination directory so an
// interrupted run never leaves a partial file at dst.
func (c *Cache) generate(src, dst string) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*"+filepath.Ext(dst))
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := c.maker.Make(src, tmpPath, c.size); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func (c *Cache) lockFor(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	return l
}

// Result summarizes an EnsureAll run. Generated and Cached are sorted.
type Result struct {
	Generated []string
	Cached    []string
	Failed    map[string]error
}

// Total returns the number of distinct refs processed.
func (r Result) Total() int {
	return len(r.Generated) + len(r.Cached) + len(r.Failed)
}

// FailedRefs returns the failed refs in sorted order.
func (r Result) FailedRefs() []string {
	refs := make([]string, 0, len(r.Failed))
	for ref := range r.Failed {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// EnsureAll ensures every distinct ref, isolating per-ref failures. Refs not
// started before ctx is done are reported as failed.
func (c *Cache) EnsureAll(ctx context.Context, refs []string) Result {
	unique := dedupe(refs)
	outcomes := runOrdered(unique, c.workers, func(ref string) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, errors.WrapError(err, errors.CategoryCanceled, "thumbnail generation canceled").
				WithContext("image", ref).Build()
		}
		return c.ensure(ref)
	})

	res := Result{Failed: make(map[string]error)}
	for i, ref := range unique {
		switch o := outcomes[i]; {
		case o.Err != nil:
			res.Failed[ref] = o.Err
		case o.Value:
			res.Generated = append(res.Generated, ref)
		default:
			res.Cached = append(res.Cached, ref)
		}
	}
	return res
}

func dedupe(refs []string) []string {
	return sets.Sorted(sets.New(refs...))
}
