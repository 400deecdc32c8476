package resource

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var emailRe = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// Coerce converts a raw value (typically a form string) into the stored
// representation of the named field.
func (s Schema) Coerce(name string, v any) (any, error) {
	f, ok := s.Field(name)
	if !ok {
		return nil, &ValidationError{Field: name, Reason: "unknown field"}
	}
	switch f.Kind {
	case KindInt:
		return coerceInt(f, v)
	case KindBool:
		return coerceBool(f, v)
	case KindSet:
		return coerceSet(f, v)
	default:
		switch t := v.(type) {
		case nil:
			return nil, nil
		case string:
			t = strings.TrimSpace(t)
			if t == "" && (f.Kind == KindRef || f.Kind == KindURL) {
				return nil, nil
			}
			if f.Kind == KindEmail {
				t = strings.ToLower(t)
			}
			return t, nil
		default:
			return nil, &ValidationError{Field: name, Reason: fmt.Sprintf("expected text, got %T", v)}
		}
	}
}

func coerceInt(f Field, v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		if t != math.Trunc(t) {
			return nil, &ValidationError{Field: f.Name, Reason: "must be a whole number"}
		}
		return int64(t), nil
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return nil, nil
		}
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return nil, &ValidationError{Field: f.Name, Reason: "must be a whole number"}
		}
		return n, nil
	}
	return nil, &ValidationError{Field: f.Name, Reason: fmt.Sprintf("expected a number, got %T", v)}
}

func coerceBool(f Field, v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "", "0", "false", "off", "no":
			return false, nil
		case "1", "true", "on", "yes":
			return true, nil
		}
		return nil, &ValidationError{Field: f.Name, Reason: "must be yes or no"}
	}
	return nil, &ValidationError{Field: f.Name, Reason: fmt.Sprintf("expected a flag, got %T", v)}
}

func coerceSet(f Field, v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return []string{}, nil
	case string:
		return NormalizeSet(strings.Split(t, ",")), nil
	case []string:
		return NormalizeSet(t), nil
	}
	return nil, &ValidationError{Field: f.Name, Reason: fmt.Sprintf("expected a list, got %T", v)}
}

// NormalizeSet trims entries, drops empty ones and removes duplicates,
// keeping first-seen order. It never returns nil.
func NormalizeSet(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// ValidEmail reports whether s looks like a deliverable address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(strings.ToLower(strings.TrimSpace(s)))
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	}
	return false
}

// validateDraft runs every local check on a draft. staged reports whether a
// file is waiting to be uploaded; cleared that the persisted media will be
// removed on write.
func (s Schema) validateDraft(draft Record, staged, cleared bool) error {
	for _, name := range s.Required() {
		if isEmpty(draft[name]) {
			f, _ := s.Field(name)
			return &ValidationError{Field: name, Reason: fieldLabel(f) + " is required"}
		}
	}
	if s.Media != nil && s.Media.Required && !staged && (cleared || isEmpty(draft[s.Media.Field])) {
		return &ValidationError{Field: s.Media.Field, Reason: "a media file is required"}
	}
	if s.StatusField != "" {
		status, _ := draft[s.StatusField].(string)
		if !s.ValidStatus(status) {
			return &ValidationError{Field: s.StatusField, Reason: fmt.Sprintf("unknown status %q", status)}
		}
	}
	for _, f := range s.Fields {
		v, present := draft[f.Name]
		if !present || isEmpty(v) {
			continue
		}
		switch f.Kind {
		case KindEmail:
			if !ValidEmail(fmt.Sprint(v)) {
				return &ValidationError{Field: f.Name, Reason: "invalid email address"}
			}
		case KindDate:
			if _, err := time.Parse("2006-01-02", fmt.Sprint(v)); err != nil {
				return &ValidationError{Field: f.Name, Reason: "use YYYY-MM-DD"}
			}
		case KindTime:
			if _, err := time.Parse("15:04", fmt.Sprint(v)); err != nil {
				return &ValidationError{Field: f.Name, Reason: "use HH:MM"}
			}
		case KindInt:
			if _, ok := v.(int64); !ok {
				return &ValidationError{Field: f.Name, Reason: "must be a whole number"}
			}
		case KindURL:
			u := fmt.Sprint(v)
			if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
				return &ValidationError{Field: f.Name, Reason: "must be a full URL"}
			}
		}
	}
	return nil
}

func fieldLabel(f Field) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}
