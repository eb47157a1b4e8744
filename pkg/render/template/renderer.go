package template

import (
	"io"
)

// TemplateRenderer is the seam HTML renderers rely on.
type TemplateRenderer interface {
	// RenderTemplate renders a named template with data and copies the
	// output to out.
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	// GlobalContext merges values every later render can read.
	GlobalContext(data any) error
}
