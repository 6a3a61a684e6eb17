package admin

import (
	"errors"
	"fmt"
	"strings"
)

// PageName identifies which admin screen a field list is built for.
type PageName string

const (
	PageIndex  PageName = "index"
	PageDetail PageName = "detail"
	PageNew    PageName = "new"
	PageEdit   PageName = "edit"
)

// DocumentLinkTemplate renders a stored file as a clickable document link.
const DocumentLinkTemplate = "admin/fields/document_link"

// ErrUnknownPage is returned for page names outside index, detail, new and edit.
var ErrUnknownPage = errors.New("unknown page")

// ParsePageName validates a page name received from a client.
func ParsePageName(value string) (PageName, error) {
	page := PageName(strings.ToLower(strings.TrimSpace(value)))
	switch page {
	case PageIndex, PageDetail, PageNew, PageEdit:
		return page, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPage, value)
}

func (p PageName) isForm() bool {
	return p == PageNew || p == PageEdit
}

// Kind tags the variant of a Field.
type Kind string

const (
	KindText   Kind = "text"
	KindUpload Kind = "upload"
	KindLink   Kind = "link"
)

// Field is one column or form input of the file admin. The set of variants is closed.
type Field interface {
	Kind() Kind
	Name() string
	Visible(page PageName) bool
	Descriptor() Descriptor
	isField()
}

// Descriptor is the serialisable form of a Field.
type Descriptor struct {
	Property string `json:"property"`
	Label    string `json:"label"`
	Kind     Kind   `json:"kind"`
	Required bool   `json:"required"`
	Template string `json:"template,omitempty"`
}

// TextField edits and displays a plain string property.
type TextField struct {
	Property string
	Label    string
	Required bool
}

func (TextField) isField() {}
func (f TextField) Kind() Kind { return KindText }
func (f TextField) Name() string { return f.Property }
func (f TextField) Visible(page PageName) bool { return true }
func (f TextField) Descriptor() Descriptor {
	return Descriptor{Property: f.Property, Label: f.Label, Kind: KindText, Required: f.Required}
}

// UploadField accepts a file on forms.
type UploadField struct {
	Property string
	Label    string
	Required bool
}

func (UploadField) isField() {}
func (f UploadField) Kind() Kind { return KindUpload }
func (f UploadField) Name() string { return f.Property }
func (f UploadField) Visible(page PageName) bool { return page.isForm() }
func (f UploadField) Descriptor() Descriptor {
	return Descriptor{Property: f.Property, Label: f.Label, Kind: KindUpload, Required: f.Required}
}

// LinkField shows the stored file as a link on list and detail pages.
type LinkField struct {
	Property string
	Label    string
	Template string
}

func (LinkField) isField() {}
func (f LinkField) Kind() Kind { return KindLink }
func (f LinkField) Name() string { return f.Property }
func (f LinkField) Visible(page PageName) bool { return !page.isForm() }
func (f LinkField) Descriptor() Descriptor {
	return Descriptor{Property: f.Property, Label: f.Label, Kind: KindLink, Template: f.Template}
}

// ConfigureFields returns the ordered fields shown on page. The result depends on page only.
func ConfigureFields(page PageName) []Field {
	declared := []Field{
		TextField{Property: "label", Label: "Nom du fichier", Required: true},
		UploadField{Property: "file", Label: "Fichier", Required: page == PageNew},
		LinkField{Property: "filePath", Label: "Fichier", Template: DocumentLinkTemplate},
	}

	fields := make([]Field, 0, len(declared))
	for _, f := range declared {
		if f.Visible(page) {
			fields = append(fields, f)
		}
	}
	return fields
}

// Describe converts fields to their descriptors, preserving order.
func Describe(fields []Field) []Descriptor {
	out := make([]Descriptor, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Descriptor())
	}
	return out
}
