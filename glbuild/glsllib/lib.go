// Package glsllib embeds the GLSL library fragments included by generated
// shaders and resolves include paths such as "stdlib/genglsl/lib/mx_math.glsl".
package glsllib

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed stdlib pbrlib
var libFS embed.FS

// Includer resolves a library include path to its GLSL source.
type Includer interface {
	ReadInclude(includePath string) ([]byte, error)
}

// Library is an [Includer] reading from a filesystem rooted at the library
// search path. Paths are always slash separated and relative.
type Library struct {
	fsys fs.FS
}

var defaultLib = &Library{fsys: libFS}

// Default returns the library of fragments embedded in the binary.
func Default() *Library { return defaultLib }

// New returns a Library reading includes from fsys, i.e: os.DirFS("/usr/share/materialx").
func New(fsys fs.FS) *Library {
	return &Library{fsys: fsys}
}

// ReadInclude returns the source of the fragment at includePath.
func (l *Library) ReadInclude(includePath string) ([]byte, error) {
	clean, err := cleanPath(includePath)
	if err != nil {
		return nil, err
	}
	src, err := fs.ReadFile(l.fsys, clean)
	if err != nil {
		return nil, fmt.Errorf("glsllib: include %q: %w", includePath, err)
	}
	return src, nil
}

// Paths returns all fragment paths in the library in lexical order.
func (l *Library) Paths() ([]string, error) {
	var paths []string
	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && path.Ext(p) == ".glsl" {
			paths = append(paths, p)
		}
		return nil
	})
	return paths, err
}

// Chain is an [Includer] that tries each Includer in order and returns the
// first successful result. Used to let user search paths shadow the embedded library.
type Chain []Includer

func (c Chain) ReadInclude(includePath string) ([]byte, error) {
	var errs []error
	for _, inc := range c {
		src, err := inc.ReadInclude(includePath)
		if err == nil {
			return src, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("glsllib: include %q: no includers", includePath)
	}
	return nil, errors.Join(errs...)
}

// IncludeDirective parses a preprocessor include line of the form
//
//	#include "path"
//
// and returns the path. ok is false if line is not an include directive.
func IncludeDirective(line []byte) (includePath string, ok bool) {
	line = bytes.TrimSpace(line)
	rest, found := bytes.CutPrefix(line, []byte("#include"))
	if !found {
		return "", false
	}
	rest = bytes.TrimSpace(rest)
	if len(rest) < 2 || rest[0] != '"' || rest[len(rest)-1] != '"' {
		return "", false
	}
	return string(rest[1 : len(rest)-1]), true
}

// FunctionName returns the name of the first function defined in src.
// It expects the definition to start with the return type:
//
//	void mx_image_float(sampler2D tex_sampler, ...)
func FunctionName(src []byte) (string, error) {
	for _, line := range bytes.Split(src, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' || bytes.HasPrefix(line, []byte("//")) {
			continue
		}
		fnNameEnd := bytes.IndexByte(line, '(')
		fnNameStart := bytes.IndexByte(line, ' ')
		if fnNameEnd < 0 || fnNameStart < 0 || fnNameStart > fnNameEnd {
			continue
		}
		name := bytes.TrimSpace(line[fnNameStart:fnNameEnd])
		if len(name) == 0 {
			return "", errors.New("empty function name")
		}
		return string(name), nil
	}
	return "", errors.New("unable to parse function name")
}

func cleanPath(includePath string) (string, error) {
	if includePath == "" {
		return "", errors.New("glsllib: empty include path")
	}
	if strings.Contains(includePath, "$") {
		return "", fmt.Errorf("glsllib: unresolved token in include path %q", includePath)
	}
	clean := path.Clean(strings.TrimPrefix(includePath, "/"))
	if !fs.ValidPath(clean) {
		return "", fmt.Errorf("glsllib: invalid include path %q", includePath)
	}
	return clean, nil
}
