package testing

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Project builds a blog project tree in a temporary directory.
type Project struct {
	t    *testing.T
	root string
}

// NewProject creates an empty project with a minimal config.yaml.
func NewProject(t *testing.T) *Project {
	t.Helper()
	p := &Project{t: t, root: t.TempDir()}
	return p.WithConfig("site_name: Test Blog\n")
}

// Root returns the project root directory.
func (p *Project) Root() string { return p.root }

// ConfigPath returns the path of config.yaml.
func (p *Project) ConfigPath() string { return filepath.Join(p.root, "config.yaml") }

// WithConfig replaces config.yaml.
func (p *Project) WithConfig(yaml string) *Project {
	p.t.Helper()
	return p.write("config.yaml", []byte(yaml))
}

// WithPost writes a post source into data/.
func (p *Project) WithPost(name, content string) *Project {
	p.t.Helper()
	return p.write(filepath.Join("data", name), []byte(content))
}

// WithImage writes a placeholder source image into img/.
func (p *Project) WithImage(ref string) *Project {
	p.t.Helper()
	return p.write(filepath.Join("img", filepath.FromSlash(ref)), []byte("image:"+ref))
}

// WithTemplate writes a template override into templates/.
func (p *Project) WithTemplate(name, content string) *Project {
	p.t.Helper()
	return p.write(filepath.Join("templates", name), []byte(content))
}

// WithStatic writes a file into static/.
func (p *Project) WithStatic(rel, content string) *Project {
	p.t.Helper()
	return p.write(filepath.Join("static", filepath.FromSlash(rel)), []byte(content))
}

// Backdate sets the modification time of every project file to age ago.
func (p *Project) Backdate(age time.Duration) *Project {
	p.t.Helper()
	ts := time.Now().Add(-age)
	err := filepath.WalkDir(p.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		return os.Chtimes(path, ts, ts)
	})
	if err != nil {
		p.t.Fatalf("Failed to backdate project: %v", err)
	}
	return p
}

func (p *Project) write(rel string, content []byte) *Project {
	p.t.Helper()
	full := filepath.Join(p.root, rel)
	if err := os.MkdirAll(filepath.Dir(full), testDirPermissions); err != nil {
		p.t.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(full, content, testFilePermissions); err != nil {
		p.t.Fatalf("Failed to write %s: %v", rel, err)
	}
	return p
}
