package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-json-experiment/json"
)

// Project is the tsconfig-shaped build configuration `ngc -p` reads: the
// files to compile, where outputs go, and a few compiler options.
// Template type-checking is not one of them.
type Project struct {
	Files           []string       `json:"files"`
	CompilerOptions ProjectOptions `json:"compilerOptions"`

	// Dir is the directory the project file lives in; relative paths in
	// Files and OutDir resolve against it.
	Dir string `json:"-"`
}

// ProjectOptions mirrors the `compilerOptions` block. The driver reads
// OutDir and Cache; PreserveWhitespaces and Verbose are parsed but not read.
type ProjectOptions struct {
	OutDir              string `json:"outDir"`
	PreserveWhitespaces bool   `json:"preserveWhitespaces"`
	Verbose             bool   `json:"verbose"`
	Cache               bool   `json:"cache"`
}

// LoadProject reads and validates a project file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project %s: %w", path, err)
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", path, err)
	}
	if len(p.Files) == 0 {
		return nil, fmt.Errorf("project %s lists no files", path)
	}
	p.Dir = filepath.Dir(path)
	if p.CompilerOptions.OutDir == "" {
		p.CompilerOptions.OutDir = p.Dir
	}
	return &p, nil
}

// Resolve joins a project-relative file name to the project directory;
// absolute names are returned unchanged.
func (p *Project) Resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.Dir, name)
}

// OutPath returns where the compiled output of name is written: the
// configured output directory with the extension swapped for .js.
func (p *Project) OutPath(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if ext != "" {
		base = base[:len(base)-len(ext)]
	}
	out := p.CompilerOptions.OutDir
	if !filepath.IsAbs(out) {
		out = filepath.Join(p.Dir, out)
	}
	return filepath.Join(out, base+".js")
}
