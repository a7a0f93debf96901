package assets

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/extbuild/internal/compose"
)

const defaultShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{- range .Styles}}
<link rel="stylesheet" href="{{.}}">
{{- end}}
</head>
<body>
<div id="root"></div>
{{- range .Scripts}}
<script src="{{.}}"></script>
{{- end}}
</body>
</html>
`

// renderHTML writes the shell for one entry, using the template from the
// source tree when there is one and the built in shell otherwise.
func (p *Pipeline) renderHTML(op compose.HTMLOperation, written map[string]string) error {
	if prev, ok := written[op.Destination]; ok {
		return &compose.CompositionError{
			Target: p.spec.Target,
			Paths:  []string{prev, op.Template},
			Msg:    "both write " + op.Destination,
		}
	}

	scripts, styles, err := p.loadScripts(op.Entry)
	if err != nil {
		return err
	}

	tmpl, err := p.loadTemplate(op)
	if err != nil {
		return err
	}

	data := map[string]any{
		"Title":   op.Title,
		"Scripts": scripts,
		"Styles":  styles,
		"Context": map[string]any{
			"target": p.spec.Target,
			"entry":  op.Entry,
		},
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", op.Filename, err)
	}

	// #nosec G306 - extension files are packaged and world readable
	if err := os.WriteFile(op.Destination, buf.Bytes(), 0o644); err != nil {
		return err
	}
	written[op.Destination] = op.Template

	log.Debug().Str("target", p.spec.Target.String()).Str("file", op.Destination).Msg("Rendered html")
	return nil
}

func (p *Pipeline) loadTemplate(op compose.HTMLOperation) (*template.Template, error) {
	if _, err := os.Stat(op.Template); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return template.New(op.Filename).Funcs(p.funcs).Parse(defaultShell)
		}
		return nil, err
	}

	return template.New(filepath.Base(op.Template)).Funcs(p.funcs).ParseFiles(op.Template)
}
