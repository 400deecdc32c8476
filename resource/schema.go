package resource

import (
	"fmt"
	"regexp"
	"slices"
)

// FieldKind tells the controllers how to coerce and validate a field.
type FieldKind int

const (
	KindText FieldKind = iota
	KindLongText
	KindInt
	KindBool
	KindEmail
	KindDate // YYYY-MM-DD
	KindTime // HH:MM
	KindSet  // unordered list of distinct, non-empty labels
	KindRef  // identifier of a record in Field.RefTable
	KindURL  // media URL, written by the upload sub-routine
	KindEnum // closed set declared by Schema.Statuses
)

// Field describes one field of a resource.
type Field struct {
	Name       string
	Label      string
	Kind       FieldKind
	Required   bool
	Searchable bool
	RefTable   string
}

// MediaKind distinguishes the blob types a resource accepts.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// MediaSpec declares the media field of a resource.
type MediaSpec struct {
	Field     string      // record field holding the public URL
	Bucket    string      // blob bucket
	Kinds     []MediaKind // accepted kinds; first is the default
	KindField string      // optional record field holding the stored kind
	Required  bool        // a URL or a staged file must be present on submit
}

// Allows reports whether kind may be stored for this media field.
func (m MediaSpec) Allows(kind MediaKind) bool {
	return slices.Contains(m.Kinds, kind)
}

// Order is a list ordering clause.
type Order struct {
	Field string
	Desc  bool
}

// Schema is the declarative description of one content type. It is the only
// place resource-specific knowledge lives.
type Schema struct {
	Name          string // URL-safe name, e.g. "blog"
	Label         string // singular, human readable
	Plural        string
	Table         string
	Fields        []Field
	Media         *MediaSpec
	Order         Order
	StatusField   string
	Statuses      []string
	DefaultStatus string
	CategoryField string
	Singleton     bool
}

var identRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Field returns the named field declaration.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Required returns the names of the required fields, media excluded.
func (s Schema) Required() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Searchable returns the names of the fields matched by free-text filters.
func (s Schema) Searchable() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Searchable {
			out = append(out, f.Name)
		}
	}
	return out
}

// ValidStatus reports whether v belongs to the schema's status set.
func (s Schema) ValidStatus(v string) bool {
	return slices.Contains(s.Statuses, v)
}

// Validate checks the declaration itself.
func (s Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema: name is required")
	}
	if !identRe.MatchString(s.Name) {
		return fmt.Errorf("schema %q: invalid name", s.Name)
	}
	if !identRe.MatchString(s.Table) {
		return fmt.Errorf("schema %s: invalid table %q", s.Name, s.Table)
	}
	seen := map[string]bool{}
	for _, f := range s.Fields {
		if !identRe.MatchString(f.Name) {
			return fmt.Errorf("schema %s: invalid field name %q", s.Name, f.Name)
		}
		switch f.Name {
		case FieldID, FieldCreatedAt, FieldUpdatedAt:
			return fmt.Errorf("schema %s: field %q is reserved", s.Name, f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema %s: duplicate field %q", s.Name, f.Name)
		}
		seen[f.Name] = true
		if f.Kind == KindRef && f.RefTable == "" {
			return fmt.Errorf("schema %s: reference field %q has no table", s.Name, f.Name)
		}
	}
	if s.Media != nil {
		if f, ok := s.Field(s.Media.Field); !ok || f.Kind != KindURL {
			return fmt.Errorf("schema %s: media field %q must be a declared URL field", s.Name, s.Media.Field)
		}
		if s.Media.Bucket == "" || len(s.Media.Kinds) == 0 {
			return fmt.Errorf("schema %s: media needs a bucket and at least one kind", s.Name)
		}
		if s.Media.KindField != "" && !seen[s.Media.KindField] {
			return fmt.Errorf("schema %s: media kind field %q is not declared", s.Name, s.Media.KindField)
		}
	}
	if s.StatusField != "" {
		if f, ok := s.Field(s.StatusField); !ok || f.Kind != KindEnum {
			return fmt.Errorf("schema %s: status field %q must be a declared enum field", s.Name, s.StatusField)
		}
		if len(s.Statuses) == 0 || !s.ValidStatus(s.DefaultStatus) {
			return fmt.Errorf("schema %s: status set must contain the default status", s.Name)
		}
	}
	if s.CategoryField != "" && !seen[s.CategoryField] {
		return fmt.Errorf("schema %s: category field %q is not declared", s.Name, s.CategoryField)
	}
	if s.Order.Field != "" && !seen[s.Order.Field] && s.Order.Field != FieldCreatedAt && s.Order.Field != FieldUpdatedAt {
		return fmt.Errorf("schema %s: order field %q is not declared", s.Name, s.Order.Field)
	}
	return nil
}
