package admin

import (
	"context"
	"fmt"

	"github.com/abduss/docadmin/internal/file"
)

type linkResolver interface {
	DocumentURL(ctx context.Context, filePath string) (string, error)
}

// RenderedField is a field descriptor filled with one record's value.
type RenderedField struct {
	Descriptor
	Value any    `json:"value"`
	URL   string `json:"url,omitempty"`
}

// Renderer fills field descriptors with record values.
type Renderer struct {
	links linkResolver
}

// NewRenderer builds a Renderer resolving document links through links.
func NewRenderer(links linkResolver) *Renderer {
	return &Renderer{links: links}
}

// Render produces the values of fields for rec. A nil rec yields an empty form.
func (r *Renderer) Render(ctx context.Context, fields []Field, rec *file.Record) ([]RenderedField, error) {
	out := make([]RenderedField, 0, len(fields))
	for _, f := range fields {
		rf := RenderedField{Descriptor: f.Descriptor()}
		if rec != nil {
			switch field := f.(type) {
			case TextField:
				rf.Value = rec.Label()
			case UploadField:
				// file inputs are never prefilled
			case LinkField:
				if rec.FilePath() != "" {
					url, err := r.links.DocumentURL(ctx, rec.FilePath())
					if err != nil {
						return nil, fmt.Errorf("render %s: %w", field.Property, err)
					}
					rf.Value = rec.FilePath()
					rf.URL = url
				}
			}
		}
		out = append(out, rf)
	}
	return out, nil
}
