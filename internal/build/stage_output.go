package build

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/templates"
)

// Output locations of copied assets.
const (
	ImagesDirName = "img"
	StylesFile    = "styles.css"
)

// stagePrepareOutput empties the output root, keeping the thumbnail cache,
// and makes sure both directories exist.
func stagePrepareOutput(_ context.Context, bs *buildState) error {
	out := bs.cfg.Paths.Output
	if bs.cfg.Output.Clean {
		removed, err := cleanOutput(out)
		if err != nil {
			return err
		}
		bs.logger.Debug("Cleaned output directory", logfields.Output(out), logfields.Count(removed))
	}
	if err := os.MkdirAll(bs.cfg.Paths.ThumbsDir(), 0o750); err != nil {
		return fsError(err, "create output directory", bs.cfg.Paths.ThumbsDir())
	}
	return nil
}

func cleanOutput(out string) (int, error) {
	entries, err := os.ReadDir(out)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fsError(err, "read output directory", out)
	}
	removed := 0
	for _, e := range entries {
		if e.Name() == config.ThumbsDirName && e.IsDir() {
			continue
		}
		p := filepath.Join(out, e.Name())
		if err := os.RemoveAll(p); err != nil {
			return removed, fsError(err, "clean output", p)
		}
		removed++
	}
	return removed, nil
}

// stageCopyStatic copies images to out/img, the static directory into the
// output root and the stylesheet to out/styles.css. Missing source
// directories are skipped. Without a project stylesheet the embedded default
// is written.
func stageCopyStatic(_ context.Context, bs *buildState) error {
	paths := bs.cfg.Paths
	copied := 0

	n, err := bs.copyTree(paths.Images, filepath.Join(paths.Output, ImagesDirName))
	if err != nil {
		return err
	}
	copied += n

	n, err = bs.copyTree(paths.Static, paths.Output)
	if err != nil {
		return err
	}
	copied += n

	dst := filepath.Join(paths.Output, StylesFile)
	src := filepath.Join(paths.Templates, StylesFile)
	switch _, statErr := os.Stat(src); {
	case statErr == nil:
		ok, err := bs.copyFile(src, dst)
		if err != nil {
			return err
		}
		if ok {
			copied++
		}
	case os.IsNotExist(statErr):
		if _, err := os.Stat(dst); os.IsNotExist(err) {
			if css, ok := templates.DefaultStyles(); ok {
				// #nosec G306 -- public web asset.
				if err := os.WriteFile(dst, css, 0o644); err != nil {
					return fsError(err, "write stylesheet", dst)
				}
				copied++
			}
		}
	default:
		return fsError(statErr, "stat stylesheet", src)
	}

	bs.logger.Info("Copied static assets", logfields.Count(copied))
	return nil
}

// copyTree mirrors regular files under src into dst and returns how many
// files were copied. Files whose copy is already newer than the source are
// left alone.
func (bs *buildState) copyTree(src, dst string) (int, error) {
	info, err := os.Stat(src)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fsError(err, "stat directory", src)
	}
	if !info.IsDir() {
		return 0, errors.FileSystemError("expected a directory").WithContext("path", src).Build()
	}

	copied := 0
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fsError(walkErr, "walk directory", path)
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fsError(err, "resolve relative path", path)
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			if err := os.MkdirAll(target, 0o750); err != nil {
				return fsError(err, "create directory", target)
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ok, err := bs.copyFile(path, target)
		if ok {
			copied++
		}
		return err
	})
	return copied, err
}

func (bs *buildState) copyFile(src, dst string) (bool, error) {
	if !bs.oracle.IsStale(dst, src) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return false, fsError(err, "create directory", filepath.Dir(dst))
	}

	// #nosec G304 -- src is inside a configured project directory.
	in, err := os.Open(src)
	if err != nil {
		return false, fsError(err, "open file", src)
	}
	defer func() { _ = in.Close() }()

	// #nosec G302 G304 -- public web asset under the output root.
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return false, fsError(err, "create file", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return false, fsError(err, "copy file", dst)
	}
	if err := out.Close(); err != nil {
		return false, fsError(err, "close file", dst)
	}
	return true, nil
}

func fsError(err error, msg, path string) error {
	return errors.WrapError(err, errors.CategoryFileSystem, msg).Fatal().WithContext("path", path).Build()
}
