package resource

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// State is the form controller's position in its edit cycle.
type State int

const (
	StateEmpty State = iota
	StateEditing
	StateSubmitting
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateFailure:
		return "failure"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// staged is a file waiting for upload. url is filled by the first
// successful upload so a retried submit reuses it.
type staged struct {
	file *File
	url  string
	kind MediaKind
}

// FormController manages one draft record through creation or edit.
//
// The mutex guards state and draft but is released while the gateway and
// blob store are called, so a concurrent SetField or Submit sees
// StateSubmitting and fails with ErrBusy.
type FormController struct {
	schema   Schema
	gateway  Gateway
	uploader *Uploader
	notify   Notifier
	log      zerolog.Logger

	mu         sync.Mutex
	state      State
	draft      Record
	staged     *staged
	clearMedia bool
	lastErr    error
}

// NewFormController creates a form controller in StateEmpty. uploader may
// be nil for resources without media.
func NewFormController(schema Schema, gw Gateway, uploader *Uploader, n Notifier, log zerolog.Logger) *FormController {
	if n == nil {
		n = Discard
	}
	return &FormController{
		schema:   schema,
		gateway:  gw,
		uploader: uploader,
		notify:   n,
		log:      log.With().Str("resource", schema.Name).Logger(),
	}
}

// Schema returns the resource schema.
func (f *FormController) Schema() Schema { return f.schema }

// State returns the current state.
func (f *FormController) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Draft returns a copy of the draft, or nil in StateEmpty.
func (f *FormController) Draft() Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.Clone()
}

// Err returns the error of the last failed submit, cleared on success.
func (f *FormController) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Staged returns the staged file, if any.
func (f *FormController) Staged() *File {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staged == nil {
		return nil
	}
	return f.staged.file
}

// New starts a blank draft for a record to be created.
func (f *FormController) New() error {
	return f.begin(Record{})
}

// Edit starts a draft pre-populated from an existing record.
func (f *FormController) Edit(rec Record) error {
	if rec.ID() == "" {
		return &ValidationError{Field: FieldID, Reason: "record has no identifier"}
	}
	return f.begin(rec.Clone())
}

func (f *FormController) begin(draft Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return ErrBusy
	}
	if f.schema.StatusField != "" {
		if s, _ := draft[f.schema.StatusField].(string); s == "" {
			draft[f.schema.StatusField] = f.schema.DefaultStatus
		}
	}
	for _, fd := range f.schema.Fields {
		if fd.Kind == KindSet {
			draft[fd.Name] = NormalizeSet(draft.Strings(fd.Name))
		}
	}
	f.draft = draft
	f.staged = nil
	f.clearMedia = false
	f.lastErr = nil
	f.state = StateEditing
	return nil
}

// Discard drops the draft and returns to StateEmpty.
func (f *FormController) Discard() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return ErrBusy
	}
	f.reset()
	return nil
}

func (f *FormController) reset() {
	f.state = StateEmpty
	f.draft = nil
	f.staged = nil
	f.clearMedia = false
}

// editable checks that the draft may be changed; callers hold mu.
func (f *FormController) editable() error {
	switch f.state {
	case StateSubmitting:
		return ErrBusy
	case StateEmpty:
		return ErrNotEditing
	}
	return nil
}

// SetField sets one draft field, coercing it to the schema's kind.
func (f *FormController) SetField(name string, value any) error {
	switch name {
	case FieldID, FieldCreatedAt, FieldUpdatedAt:
		return &ValidationError{Field: name, Reason: "field is managed by the store"}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return err
	}
	v, err := f.schema.Coerce(name, value)
	if err != nil {
		return err
	}
	if name == f.schema.StatusField && !f.schema.ValidStatus(fmt.Sprint(v)) {
		return &ValidationError{Field: name, Reason: fmt.Sprintf("unknown status %q", v)}
	}
	f.draft[name] = v
	f.state = StateEditing
	return nil
}

// StageMedia records a file to upload on the next submit and returns a
// local preview. It replaces any earlier staged file; a nil file clears the
// staged intent without touching the persisted media URL.
func (f *FormController) StageMedia(file *File) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return "", err
	}
	if f.schema.Media == nil {
		return "", &ValidationError{Reason: f.schema.Label + " has no media"}
	}
	f.state = StateEditing
	if file == nil {
		f.staged = nil
		return "", nil
	}
	f.staged = &staged{file: file}
	f.clearMedia = false
	return file.Preview(), nil
}

// ClearMedia removes the persisted media URL on the next submit and drops
// any staged file.
func (f *FormController) ClearMedia() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return err
	}
	if f.schema.Media == nil {
		return nil
	}
	f.staged = nil
	f.clearMedia = true
	f.state = StateEditing
	return nil
}

// Submit validates the draft, uploads the staged file if any, then inserts
// or updates the record. Local validation failures never reach the
// network. On failure the draft is kept so Submit can be retried.
func (f *FormController) Submit(ctx context.Context) (Record, error) {
	f.mu.Lock()
	if err := f.editable(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	draft := f.draft.Clone()
	st := f.staged
	dropMedia := f.clearMedia
	if err := f.schema.validateDraft(draft, st != nil, dropMedia); err != nil {
		f.state = StateEditing
		f.lastErr = err
		f.mu.Unlock()
		f.notify.NotifyFailure(err.Error())
		return nil, err
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	saved, err := f.persist(ctx, draft, st, dropMedia)

	f.mu.Lock()
	if err != nil {
		if IsValidation(err) {
			f.state = StateEditing
		} else {
			f.state = StateFailure
		}
		f.lastErr = err
		f.mu.Unlock()
		f.notify.NotifyFailure(f.failureMessage(err))
		return nil, err
	}
	f.reset()
	f.lastErr = nil
	f.mu.Unlock()

	verb := "created"
	if draft.ID() != "" {
		verb = "updated"
	}
	f.notify.NotifySuccess(fmt.Sprintf("%s %s.", f.schema.Label, verb))
	return saved, nil
}

func (f *FormController) persist(ctx context.Context, draft Record, st *staged, dropMedia bool) (Record, error) {
	if err := checkReferences(ctx, f.gateway, f.schema, draft); err != nil {
		return nil, err
	}
	if err := f.checkSingleton(ctx, draft); err != nil {
		return nil, err
	}

	if m := f.schema.Media; m != nil {
		switch {
		case st != nil:
			url, kind, err := f.upload(ctx, *m, st)
			if err != nil {
				return nil, err
			}
			draft[m.Field] = url
			if m.KindField != "" {
				draft[m.KindField] = string(kind)
			}
		case dropMedia:
			draft[m.Field] = nil
			if m.KindField != "" {
				draft[m.KindField] = nil
			}
		}
	}
	for _, fd := range f.schema.Fields {
		if fd.Kind == KindSet {
			draft[fd.Name] = NormalizeSet(draft.Strings(fd.Name))
		}
	}

	id := draft.ID()
	payload := draft.Without(FieldID, FieldCreatedAt, FieldUpdatedAt)
	if id == "" {
		saved, err := f.gateway.Insert(ctx, f.schema.Table, payload)
		if err != nil {
			f.log.Error().Err(err).Msg("insert failed")
			return nil, &GatewayError{Op: "insert", Table: f.schema.Table, Err: err}
		}
		return saved, nil
	}
	if err := f.gateway.Update(ctx, f.schema.Table, id, payload); err != nil {
		f.log.Error().Err(err).Str("id", id).Msg("update failed")
		return nil, &GatewayError{Op: "update", Table: f.schema.Table, Err: err}
	}
	return draft, nil
}

// upload runs the media sub-routine once per staged file.
func (f *FormController) upload(ctx context.Context, spec MediaSpec, st *staged) (string, MediaKind, error) {
	f.mu.Lock()
	url, kind := st.url, st.kind
	f.mu.Unlock()
	if url != "" {
		return url, kind, nil
	}
	if f.uploader == nil {
		return "", "", &UploadError{Bucket: spec.Bucket, Name: st.file.Name, Err: fmt.Errorf("no blob store configured")}
	}
	url, kind, err := f.uploader.Upload(ctx, spec, st.file)
	if err != nil {
		f.log.Error().Err(err).Str("bucket", spec.Bucket).Msg("upload failed")
		return "", "", err
	}
	f.mu.Lock()
	st.url, st.kind = url, kind
	f.mu.Unlock()
	return url, kind, nil
}

// checkReferences verifies each reference field set in rec with one gateway
// query. References are not enforced transactionally.
func checkReferences(ctx context.Context, gw Gateway, schema Schema, rec Record) error {
	for _, fd := range schema.Fields {
		if fd.Kind != KindRef {
			continue
		}
		ref := rec.String(fd.Name)
		if ref == "" {
			continue
		}
		recs, err := gw.Query(ctx, fd.RefTable, Query{Where: map[string]any{FieldID: ref}})
		if err != nil {
			return &GatewayError{Op: "query", Table: fd.RefTable, Err: err}
		}
		if len(recs) == 0 {
			return &ValidationError{Field: fd.Name, Reason: fieldLabel(fd) + " does not exist"}
		}
	}
	return nil
}

// checkSingleton refuses a second record of a singleton schema.
func (f *FormController) checkSingleton(ctx context.Context, draft Record) error {
	if f.schema.Singleton && draft.ID() == "" {
		recs, err := f.gateway.Query(ctx, f.schema.Table, Query{})
		if err != nil {
			return &GatewayError{Op: "query", Table: f.schema.Table, Err: err}
		}
		if len(recs) > 0 {
			return &ValidationError{Reason: fmt.Sprintf("only one %s may exist; edit the existing one", strings.ToLower(f.schema.Label))}
		}
	}
	return nil
}

func (f *FormController) failureMessage(err error) string {
	label := strings.ToLower(f.schema.Label)
	switch e := err.(type) {
	case *ValidationError:
		return e.Error()
	case *UploadError:
		return fmt.Sprintf("Could not upload %s: %v", e.Name, e.Err)
	case *GatewayError:
		return fmt.Sprintf("Could not save %s: %v", label, e.Err)
	}
	return fmt.Sprintf("Could not save %s: %v", label, err)
}
