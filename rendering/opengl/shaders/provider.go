package shaders

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-gl/gl/v4.3-core/gl"
)

// Stage is one programmable stage of the GL pipeline
type Stage int

const (
	StageVertex Stage = iota + 1
	StageTessControl
	StageTessEval
	StageFragment
	StageCompute
)

var stageNames = map[Stage]string{
	StageVertex:      "vertex",
	StageTessControl: "tessellation control",
	StageTessEval:    "tessellation evaluation",
	StageFragment:    "fragment",
	StageCompute:     "compute",
}

var stageExtensions = map[Stage]string{
	StageVertex:      "vert",
	StageTessControl: "tesc",
	StageTessEval:    "tese",
	StageFragment:    "frag",
	StageCompute:     "comp",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Extension is the short suffix used in shader file names
func (s Stage) Extension() string {
	return stageExtensions[s]
}

// FileName is where a stage of a program lives on disk, e.g. grass.tesc.glsl
func FileName(program string, stage Stage) string {
	return program + "." + stage.Extension() + ".glsl"
}

func (s Stage) glType() uint32 {
	switch s {
	case StageVertex:
		return gl.VERTEX_SHADER
	case StageTessControl:
		return gl.TESS_CONTROL_SHADER
	case StageTessEval:
		return gl.TESS_EVALUATION_SHADER
	case StageFragment:
		return gl.FRAGMENT_SHADER
	case StageCompute:
		return gl.COMPUTE_SHADER
	}
	return 0
}

// ErrNoSource is returned when a provider has nothing for a program stage
var ErrNoSource = errors.New("shaders: no source")

// Provider hands out GLSL source for a named program stage
type Provider interface {
	Source(program string, stage Stage) (string, error)
}

type embedded struct{}

// Embedded returns the sources compiled into the binary
func Embedded() Provider { return embedded{} }

func (embedded) Source(program string, stage Stage) (string, error) {
	if src, ok := builtin[FileName(program, stage)]; ok {
		return src, nil
	}
	return "", fmt.Errorf("%w for %s", ErrNoSource, FileName(program, stage))
}

type directory struct {
	fsys     fs.FS
	fallback Provider
}

// Directory loads <program>.<stage>.glsl files from dir and falls back to the
// embedded sources for files that do not exist.
func Directory(dir string) Provider {
	return directory{fsys: os.DirFS(dir), fallback: Embedded()}
}

// FS is Directory over an arbitrary file system
func FS(fsys fs.FS) Provider {
	return directory{fsys: fsys, fallback: Embedded()}
}

func (d directory) Source(program string, stage Stage) (string, error) {
	data, err := fs.ReadFile(d.fsys, filepath.ToSlash(FileName(program, stage)))
	switch {
	case err == nil:
		return string(data), nil
	case errors.Is(err, fs.ErrNotExist):
		return d.fallback.Source(program, stage)
	default:
		return "", fmt.Errorf("read %s: %w", FileName(program, stage), err)
	}
}
