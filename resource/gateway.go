package resource

import "context"

// Query narrows a gateway read. A nil Where matches every record; a zero
// Order leaves the backend's natural order.
type Query struct {
	Where map[string]any
	Order Order
}

// Gateway is the remote record store. Implementations assign the record id
// and created_at on insert and stamp updated_at on update.
type Gateway interface {
	Query(ctx context.Context, table string, q Query) ([]Record, error)
	Insert(ctx context.Context, table string, rec Record) (Record, error)
	// Update merges rec onto the stored record. It returns ErrNotFound when
	// id does not exist.
	Update(ctx context.Context, table, id string, rec Record) error
	Delete(ctx context.Context, table, id string) error
}

// BlobStore is the remote object store used for uploaded media.
type BlobStore interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error
	PublicURL(bucket, key string) string
	Remove(ctx context.Context, bucket, key string) error
}

// Notifier surfaces operation outcomes to the operator.
type Notifier interface {
	NotifySuccess(msg string)
	NotifyFailure(msg string)
}

// Confirmer is the yes/no gate in front of destructive operations.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Confirmed is a Confirmer that always says yes.
var Confirmed Confirmer = ConfirmFunc(func(string) bool { return true })

type discardNotifier struct{}

func (discardNotifier) NotifySuccess(string) {}
func (discardNotifier) NotifyFailure(string) {}

// Discard is a Notifier that drops every message.
var Discard Notifier = discardNotifier{}
