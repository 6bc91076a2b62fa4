package thumbs

import (
	"context"
	stderrors "errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

type countingMaker struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (m *countingMaker) Make(src, dst string, _ int) error {
	m.calls.Add(1)
	if m.fail[filepath.Base(src)] {
		return stderrors.New("decode failed")
	}
	return os.WriteFile(dst, []byte("thumb"), 0o600)
}

func setup(t *testing.T, images ...string) (imgRoot, cacheRoot string) {
	t.Helper()
	root := t.TempDir()
	imgRoot = filepath.Join(root, "img")
	cacheRoot = filepath.Join(root, "out", "thumbs")
	for _, ref := range images {
		p := filepath.Join(imgRoot, ref)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte("src"), 0o600))
	}
	return imgRoot, cacheRoot
}

func TestEnsure_MissThenHit(t *testing.T) {
	imgRoot, cacheRoot := setup(t, "a.png")
	maker := &countingMaker{}
	c := NewCache(imgRoot, cacheRoot, 200).WithMaker(maker)

	require.NoError(t, c.Ensure("a.png"))
	require.NoError(t, c.Ensure("a.png"))

	assert.Equal(t, int32(1), maker.calls.Load())
	assert.FileExists(t, filepath.Join(cacheRoot, "a.png"))
}

func TestEnsure_NestedRefMirrorsLayout(t *testing.T) {
	imgRoot, cacheRoot := setup(t, "2024/trip/b.jpg")
	c := NewCache(imgRoot, cacheRoot, 200).WithMaker(&countingMaker{})

	require.NoError(t, c.Ensure("2024/trip/b.jpg"))
	assert.FileExists(t, filepath.Join(cacheRoot, "2024", "trip", "b.jpg"))
}

func TestEnsure_MissingImage(t *testing.T) {
	imgRoot, cacheRoot := setup(t)
	maker := &countingMaker{}
	c := NewCache(imgRoot, cacheRoot, 200).WithMaker(maker)

	err := c.Ensure("nope.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingImage)
	assert.True(t, errors.HasCategory(err, errors.CategoryImage))
	assert.Equal(t, errors.SeverityWarning, errors.GetSeverity(err))
	assert.Zero(t, maker.calls.Load())
}

func TestEnsure_RejectsEscapingRefs(t *testing.T) {
	imgRoot, cacheRoot := setup(t)
	c := NewCache(imgRoot, cacheRoot, 200).WithMaker(&countingMaker{})

	for _, ref := range []string{"../secret.png", "/etc/passwd", "a/../../b.png", ""} {
		err := c.Ensure(ref)
		require.Error(t, err, ref)
		assert.True(t, errors.HasCategory(err, errors.CategoryValidation), ref)
	}
}

func TestEnsure_FailureLeavesNoCacheEntry(t *testing.T) {
	imgRoot, cacheRoot := setup(t, "bad.png")
	maker := &countingMaker{fail: map[string]bool{"bad.png": true}}
	c := NewCache(imgRoot, cacheRoot, 200).WithMaker(maker)

	require.Error(t, c.Ensure("bad.png"))
	assert.NoFileExists(t, filepath.Join(cacheRoot, "bad.png"))

	entries, err := os.ReadDir(cacheRoot)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files must be removed")

	require.Error(t, c.Ensure("bad.png"))
	assert.Equal(t, int32(2), maker.calls.Load(), "a failed ref is retried on the next call")
}

func TestEnsure_ConcurrentCallsGenerateOnce(t *testing.T) {
	imgRoot, cacheRoot := setup(t, "a.png")
	maker := &countingMaker{}
	c := NewCache(imgRoot, cacheRoot, 200).WithMaker(maker)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Ensure("a.png"))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maker.calls.Load())
}

func TestEnsureAll(t *testing.T) {
	imgRoot, cacheRoot := setup(t, "a.png", "b.png", "bad.png", "cached.png")
	require.NoError(t, os.MkdirAll(cacheRoot, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(cacheRoot, "cached.png"), []byte("old"), 0o600))

	maker := &countingMaker{fail: map[string]bool{"bad.png": true}}
	c := NewCache(imgRoot, cacheRoot, 200).WithMaker(maker).WithWorkers(3)

	res := c.EnsureAll(context.Background(), []string{"b.png", "a.png", "a.png", "cached.png", "bad.png", "missing.png"})

	assert.Equal(t, []string{"a.png", "b.png"}, res.Generated)
	assert.Equal(t, []string{"cached.png"}, res.Cached)
	assert.Equal(t, []string{"bad.png", "missing.png"}, res.FailedRefs())
	assert.ErrorIs(t, res.Failed["missing.png"], ErrMissingImage)
	assert.Equal(t, 5, res.Total())
	assert.Equal(t, int32(3), maker.calls.Load())
}

func TestEnsureAll_Canceled(t *testing.T) {
	imgRoot, cacheRoot := setup(t, "a.png")
	maker := &countingMaker{}
	c := NewCache(imgRoot, cacheRoot, 200).WithMaker(maker)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := c.EnsureAll(ctx, []string{"a.png"})

	require.Contains(t, res.Failed, "a.png")
	assert.True(t, errors.HasCategory(res.Failed["a.png"], errors.CategoryCanceled))
	assert.Zero(t, maker.calls.Load())
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 80, A: 255})
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestImageMaker_CropsAndScales(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		name     string
		w, h     int
		wantSide int
	}{
		{"landscape downscaled", 400, 300, 200},
		{"portrait downscaled", 250, 600, 200},
		{"small not upscaled", 120, 80, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := filepath.Join(root, tt.name+".png")
			dst := filepath.Join(root, "thumbs", tt.name+".png")
			writePNG(t, src, tt.w, tt.h)

			c := NewCache(root, filepath.Join(root, "thumbs"), 200)
			require.NoError(t, c.Ensure(tt.name+".png"))

			w, h := decodeSize(t, dst)
			assert.Equal(t, tt.wantSide, w)
			assert.Equal(t, tt.wantSide, h)
		})
	}
}

func TestImageMaker_KeepsFormat(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "photo.png")
	writePNG(t, src, 50, 50)

	dst := filepath.Join(root, "photo.jpg")
	require.NoError(t, ImageMaker{}.Make(src, dst, 20))

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	_, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestImageMaker_UnsupportedFormat(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a.png")
	writePNG(t, src, 10, 10)
	require.Error(t, ImageMaker{}.Make(src, filepath.Join(root, "a.bmp"), 20))
}
