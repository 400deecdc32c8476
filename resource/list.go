package resource

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Filter narrows the list view. Empty criteria are ignored; set criteria
// are combined with a logical AND.
type Filter struct {
	Text     string // case-insensitive substring over the searchable fields
	Category string // exact match on Schema.CategoryField
	Status   string // exact match on Schema.StatusField
}

// IsZero reports whether the filter has no criteria.
func (f *Filter) IsZero() bool {
	return f == nil || (strings.TrimSpace(f.Text) == "" && f.Category == "" && f.Status == "")
}

// ListController holds the browsable list of one resource. The in-memory
// list only changes after the matching gateway call succeeded.
type ListController struct {
	schema   Schema
	gateway  Gateway
	uploader *Uploader
	notify   Notifier
	log      zerolog.Logger

	mu     sync.RWMutex
	all    []Record
	view   []Record
	filter *Filter
	loaded bool
}

// NewListController creates a list controller. uploader may be nil for
// resources without media.
func NewListController(schema Schema, gw Gateway, uploader *Uploader, n Notifier, log zerolog.Logger) *ListController {
	if n == nil {
		n = Discard
	}
	return &ListController{
		schema:   schema,
		gateway:  gw,
		uploader: uploader,
		notify:   n,
		log:      log.With().Str("resource", schema.Name).Logger(),
	}
}

// Schema returns the resource schema.
func (l *ListController) Schema() Schema { return l.schema }

// Load fetches every record of the resource in schema order. On failure the
// previous list is kept.
func (l *ListController) Load(ctx context.Context) error {
	recs, err := l.gateway.Query(ctx, l.schema.Table, Query{Order: l.schema.Order})
	if err != nil {
		gerr := &GatewayError{Op: "query", Table: l.schema.Table, Err: err}
		l.log.Error().Err(err).Msg("load failed")
		l.notify.NotifyFailure(fmt.Sprintf("Could not load %s.", strings.ToLower(l.schema.Plural)))
		return gerr
	}
	l.mu.Lock()
	l.all = recs
	l.loaded = true
	l.refilter()
	l.mu.Unlock()
	return nil
}

// Loaded reports whether at least one Load succeeded.
func (l *ListController) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// SetFilter replaces the active filter; nil clears it. It never queries the
// gateway.
func (l *ListController) SetFilter(f *Filter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if f.IsZero() {
		l.filter = nil
	} else {
		cp := *f
		l.filter = &cp
	}
	l.refilter()
}

// Filter returns a copy of the active filter.
func (l *ListController) Filter() Filter {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.filter == nil {
		return Filter{}
	}
	return *l.filter
}

// refilter rebuilds the view; callers hold mu.
func (l *ListController) refilter() {
	if l.filter == nil {
		l.view = l.all
		return
	}
	view := make([]Record, 0, len(l.all))
	for _, rec := range l.all {
		if l.match(rec, l.filter) {
			view = append(view, rec)
		}
	}
	l.view = view
}

func (l *ListController) match(rec Record, f *Filter) bool {
	if f.Category != "" && l.schema.CategoryField != "" && rec.String(l.schema.CategoryField) != f.Category {
		return false
	}
	if f.Status != "" && l.schema.StatusField != "" && rec.String(l.schema.StatusField) != f.Status {
		return false
	}
	text := strings.ToLower(strings.TrimSpace(f.Text))
	if text == "" {
		return true
	}
	for _, name := range l.schema.Searchable() {
		if strings.Contains(strings.ToLower(rec.String(name)), text) {
			return true
		}
	}
	return false
}

// Items returns the filtered view.
func (l *ListController) Items() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneAll(l.view)
}

// All returns the list produced by the last successful Load.
func (l *ListController) All() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneAll(l.all)
}

// Get returns the loaded record with the given id.
func (l *ListController) Get(id string) (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := l.index(id)
	if i < 0 {
		return nil, false
	}
	return l.all[i].Clone(), true
}

// Categories returns the distinct values of the category field, sorted.
func (l *ListController) Categories() []string {
	if l.schema.CategoryField == "" {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	set := map[string]struct{}{}
	for _, rec := range l.all {
		if c := rec.String(l.schema.CategoryField); c != "" {
			set[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (l *ListController) index(id string) int {
	if id == "" {
		return -1
	}
	for i, rec := range l.all {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}

// Remove deletes the record with the given id once confirm agrees. Ids not
// in the current list and declined confirmations are no-ops. The record's
// media blob is removed best-effort after the delete succeeded.
func (l *ListController) Remove(ctx context.Context, id string, confirm Confirmer) error {
	rec, ok := l.Get(id)
	if !ok {
		return nil
	}
	label := strings.ToLower(l.schema.Label)
	if confirm == nil || !confirm.Confirm(fmt.Sprintf("Delete this %s?", label)) {
		return nil
	}
	if err := l.gateway.Delete(ctx, l.schema.Table, id); err != nil {
		l.log.Error().Err(err).Str("id", id).Msg("delete failed")
		l.notify.NotifyFailure(fmt.Sprintf("Could not delete %s: %v", label, err))
		return &GatewayError{Op: "delete", Table: l.schema.Table, Err: err}
	}

	l.mu.Lock()
	if i := l.index(id); i >= 0 {
		all := make([]Record, 0, len(l.all)-1)
		all = append(all, l.all[:i]...)
		l.all = append(all, l.all[i+1:]...)
		l.refilter()
	}
	l.mu.Unlock()

	if l.schema.Media != nil && l.uploader != nil {
		if url := rec.String(l.schema.Media.Field); url != "" {
			if err := l.uploader.Discard(ctx, l.schema.Media.Bucket, url); err != nil {
				l.log.Warn().Err(err).Str("url", url).Msg("media cleanup failed")
			}
		}
	}
	l.notify.NotifySuccess(fmt.Sprintf("%s deleted.", l.schema.Label))
	return nil
}

// Patch applies a partial update to one loaded record. The in-memory record
// changes only after the gateway accepted the update. Only failures are
// notified; callers announce success in their own words.
//
// The patched record must pass the same checks as a submitted form, and
// changed references must point at existing records.
func (l *ListController) Patch(ctx context.Context, id string, changes Record) error {
	current, ok := l.Get(id)
	if !ok {
		return &GatewayError{Op: "update", Table: l.schema.Table, Err: ErrNotFound}
	}
	coerced := Record{}
	for name, v := range changes {
		if l.schema.Media != nil && (name == l.schema.Media.Field || name == l.schema.Media.KindField) {
			return &ValidationError{Field: name, Reason: "media is changed through the form"}
		}
		cv, err := l.schema.Coerce(name, v)
		if err != nil {
			return err
		}
		coerced[name] = cv
	}
	merged := current.Clone()
	for k, v := range coerced {
		merged[k] = v
	}
	if err := l.schema.validateDraft(merged, false, false); err != nil {
		return err
	}
	if err := checkReferences(ctx, l.gateway, l.schema, coerced); err != nil {
		return err
	}
	label := strings.ToLower(l.schema.Label)
	if err := l.gateway.Update(ctx, l.schema.Table, id, coerced); err != nil {
		l.log.Error().Err(err).Str("id", id).Msg("patch failed")
		l.notify.NotifyFailure(fmt.Sprintf("Could not update %s: %v", label, err))
		return &GatewayError{Op: "update", Table: l.schema.Table, Err: err}
	}
	l.mu.Lock()
	if i := l.index(id); i >= 0 {
		updated := l.all[i].Clone()
		for k, v := range coerced {
			updated[k] = v
		}
		all := make([]Record, len(l.all))
		copy(all, l.all)
		all[i] = updated
		l.all = all
		l.refilter()
	}
	l.mu.Unlock()
	return nil
}

func cloneAll(recs []Record) []Record {
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
