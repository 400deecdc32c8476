package folio

import (
	"sync"
	"time"

	"github.com/eringen/folio/resource"
)

// Workspace is one operator's set of controllers, one list and one form
// per resource, plus the mailbox they report into.
type Workspace struct {
	ID      string
	Mailbox *Mailbox

	owner *Workspaces
	mu    sync.Mutex
	lists map[string]*resource.ListController
	forms map[string]*resource.FormController
	seen  time.Time
}

// List returns the workspace's list controller for schema.
func (w *Workspace) List(schema resource.Schema) *resource.ListController {
	w.mu.Lock()
	defer w.mu.Unlock()
	l, ok := w.lists[schema.Name]
	if !ok {
		l = w.owner.newList(schema, w.Mailbox)
		w.lists[schema.Name] = l
	}
	return l
}

// Form returns the workspace's form controller for schema.
func (w *Workspace) Form(schema resource.Schema) *resource.FormController {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, ok := w.forms[schema.Name]
	if !ok {
		f = w.owner.newForm(schema, w.Mailbox)
		w.forms[schema.Name] = f
	}
	return f
}

// Workspaces keeps a workspace per operator id. Workspaces idle for longer
// than the ttl are dropped on the next lookup.
type Workspaces struct {
	newList func(resource.Schema, resource.Notifier) *resource.ListController
	newForm func(resource.Schema, resource.Notifier) *resource.FormController
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	items map[string]*Workspace
}

// NewWorkspaces creates a registry whose controllers come from the given
// constructors.
func NewWorkspaces(
	ttl time.Duration,
	newList func(resource.Schema, resource.Notifier) *resource.ListController,
	newForm func(resource.Schema, resource.Notifier) *resource.FormController,
) *Workspaces {
	return &Workspaces{
		newList: newList,
		newForm: newForm,
		ttl:     ttl,
		now:     time.Now,
		items:   map[string]*Workspace{},
	}
}

// Get returns the workspace for id, creating it if needed.
func (ws *Workspaces) Get(id string) *Workspace {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	now := ws.now()
	for key, w := range ws.items {
		if key != id && now.Sub(w.seen) > ws.ttl {
			delete(ws.items, key)
		}
	}
	w, ok := ws.items[id]
	if !ok {
		w = &Workspace{
			ID:      id,
			Mailbox: &Mailbox{},
			owner:   ws,
			lists:   map[string]*resource.ListController{},
			forms:   map[string]*resource.FormController{},
		}
		ws.items[id] = w
	}
	w.seen = now
	return w
}

// Drop forgets the workspace for id.
func (ws *Workspaces) Drop(id string) {
	ws.mu.Lock()
	delete(ws.items, id)
	ws.mu.Unlock()
}

// Len returns the number of live workspaces.
func (ws *Workspaces) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.items)
}
