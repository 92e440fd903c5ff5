// Package translator rewrites WebGL shader sources for the desktop or ES
// context a session actually runs on.
package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"

	"github.com/richinsley/goshaderquad/graphics"
	"github.com/richinsley/goshaderquad/shader"
)

// Dialect names the language a shader pair is written in.
type Dialect string

const (
	// WebGL sources are GLSL ES 1.00 or 3.00 as accepted by browsers.
	WebGL Dialect = "webgl"
	// Native sources are passed to the driver untouched.
	Native Dialect = "native"
)

// Target selects the output language for WebGL sources.
type Target int

const (
	GLSL410 Target = iota
	ESSL
)

var (
	once       sync.Once
	translator *gst.ShaderTranslator
	initErr    error
)

// Get returns the process-wide translator, creating it on first use.
func Get() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
		if initErr != nil {
			initErr = fmt.Errorf("failed to create shader translator: %w", initErr)
		}
	})
	return translator, initErr
}

// Result is a translated shader pair plus the table mapping declared
// variable names to the names used in the translated code.
type Result struct {
	Vertex   string
	Fragment string
	Names    map[string]string
}

// Translate converts a source pair written in dialect to target. Native
// sources are returned unchanged with an empty name table. A stage the
// translator rejects is reported as a *shader.CompileError.
func Translate(src shader.Source, dialect Dialect, target Target) (Result, error) {
	switch dialect {
	case Native:
		return Result{Vertex: src.Vertex, Fragment: src.Fragment}, nil
	case WebGL, "":
	default:
		return Result{}, fmt.Errorf("unsupported shader dialect %q", dialect)
	}

	t, err := Get()
	if err != nil {
		return Result{}, err
	}

	format := gst.OutputFormatGLSL410
	if target == ESSL {
		format = gst.OutputFormatESSL
	}

	res := Result{Names: make(map[string]string)}
	stages := []struct {
		stage  graphics.Stage
		kind   string
		source string
		out    *string
	}{
		{graphics.VertexStage, "vertex", src.Vertex, &res.Vertex},
		{graphics.FragmentStage, "fragment", src.Fragment, &res.Fragment},
	}
	for _, s := range stages {
		translated, err := t.TranslateShader(s.source, s.kind, gst.ShaderSpecWebGL2, format)
		if err != nil {
			return Result{}, &shader.CompileError{Stage: s.stage, Log: err.Error()}
		}
		*s.out = translated.Code
		for name, v := range translated.Variables {
			res.Names[name] = v.MappedName
		}
	}
	return res, nil
}
