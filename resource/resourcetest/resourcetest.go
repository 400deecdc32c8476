// Package resourcetest provides in-memory gateway, blob store and notifier
// fakes that record every call in order.
package resourcetest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/eringen/folio/resource"
)

// Call is one recorded operation.
type Call struct {
	Op     string // query, insert, update, delete, upload, remove
	Target string // table or bucket
	ID     string // record id or blob key
	Record resource.Record
}

// CallLog collects calls from several fakes so tests can assert ordering.
type CallLog struct {
	mu    sync.Mutex
	calls []Call
}

func (l *CallLog) add(c Call) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.calls = append(l.calls, c)
	l.mu.Unlock()
}

// Calls returns a copy of the recorded calls.
func (l *CallLog) Calls() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Call, len(l.calls))
	copy(out, l.calls)
	return out
}

// Ops returns the recorded operation names in order.
func (l *CallLog) Ops() []string {
	var ops []string
	for _, c := range l.Calls() {
		ops = append(ops, c.Op)
	}
	return ops
}

// Count returns how many calls of op were recorded.
func (l *CallLog) Count(op string) int {
	n := 0
	for _, c := range l.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset forgets every recorded call.
func (l *CallLog) Reset() {
	l.mu.Lock()
	l.calls = nil
	l.mu.Unlock()
}

// Gateway is an in-memory resource.Gateway.
type Gateway struct {
	Log *CallLog
	Now func() time.Time

	mu     sync.Mutex
	tables map[string][]resource.Record
	seq    int
	errs   map[string]error
}

// NewGateway creates an empty gateway recording into log.
func NewGateway(log *CallLog) *Gateway {
	return &Gateway{
		Log:    log,
		Now:    func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
		tables: map[string][]resource.Record{},
		errs:   map[string]error{},
	}
}

// Fail makes every later call of op return err until cleared with a nil err.
func (g *Gateway) Fail(op string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.errs, op)
		return
	}
	g.errs[op] = err
}

// Seed stores records as-is, bypassing the call log.
func (g *Gateway) Seed(table string, recs ...resource.Record) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range recs {
		g.tables[table] = append(g.tables[table], r.Clone())
	}
}

// Rows returns the stored records of table.
func (g *Gateway) Rows(table string) []resource.Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]resource.Record, 0, len(g.tables[table]))
	for _, r := range g.tables[table] {
		out = append(out, r.Clone())
	}
	return out
}

func (g *Gateway) Query(ctx context.Context, table string, q resource.Query) ([]resource.Record, error) {
	g.Log.add(Call{Op: "query", Target: table})
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.errs["query"]; err != nil {
		return nil, err
	}
	var out []resource.Record
	for _, r := range g.tables[table] {
		if resource.Matches(r, q.Where) {
			out = append(out, r.Clone())
		}
	}
	resource.SortRecords(out, q.Order)
	return out, nil
}

func (g *Gateway) Insert(ctx context.Context, table string, rec resource.Record) (resource.Record, error) {
	g.Log.add(Call{Op: "insert", Target: table, Record: rec.Clone()})
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.errs["insert"]; err != nil {
		return nil, err
	}
	g.seq++
	saved := rec.Clone()
	saved[resource.FieldID] = strconv.Itoa(g.seq)
	saved[resource.FieldCreatedAt] = g.Now().Add(time.Duration(g.seq) * time.Second).Format(time.RFC3339)
	g.tables[table] = append(g.tables[table], saved)
	return saved.Clone(), nil
}

func (g *Gateway) Update(ctx context.Context, table, id string, rec resource.Record) error {
	g.Log.add(Call{Op: "update", Target: table, ID: id, Record: rec.Clone()})
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.errs["update"]; err != nil {
		return err
	}
	for i, r := range g.tables[table] {
		if r.ID() == id {
			merged := r.Clone()
			for k, v := range rec {
				merged[k] = v
			}
			merged[resource.FieldUpdatedAt] = g.Now().Format(time.RFC3339)
			g.tables[table][i] = merged
			return nil
		}
	}
	return resource.ErrNotFound
}

func (g *Gateway) Delete(ctx context.Context, table, id string) error {
	g.Log.add(Call{Op: "delete", Target: table, ID: id})
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.errs["delete"]; err != nil {
		return err
	}
	rows := g.tables[table]
	for i, r := range rows {
		if r.ID() == id {
			g.tables[table] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return resource.ErrNotFound
}

// Blobs is an in-memory resource.BlobStore.
type Blobs struct {
	Log     *CallLog
	BaseURL string

	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

// NewBlobs creates a blob store whose public URLs start with baseURL.
func NewBlobs(log *CallLog, baseURL string) *Blobs {
	return &Blobs{Log: log, BaseURL: strings.TrimRight(baseURL, "/"), objects: map[string][]byte{}}
}

// Fail makes every later upload return err; nil restores success.
func (b *Blobs) Fail(err error) {
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
}

// Has reports whether bucket/key is stored.
func (b *Blobs) Has(bucket, key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[bucket+"/"+key]
	return ok
}

// Len returns the number of stored blobs.
func (b *Blobs) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

func (b *Blobs) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	b.Log.add(Call{Op: "upload", Target: bucket, ID: key})
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	if _, exists := b.objects[bucket+"/"+key]; exists {
		return fmt.Errorf("key %s already exists", key)
	}
	b.objects[bucket+"/"+key] = append([]byte(nil), data...)
	return nil
}

func (b *Blobs) PublicURL(bucket, key string) string {
	return b.BaseURL + "/" + bucket + "/" + key
}

func (b *Blobs) Remove(ctx context.Context, bucket, key string) error {
	b.Log.add(Call{Op: "remove", Target: bucket, ID: key})
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, bucket+"/"+key)
	return nil
}

// Notes is a resource.Notifier that keeps every message.
type Notes struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (n *Notes) NotifySuccess(msg string) {
	n.mu.Lock()
	n.successes = append(n.successes, msg)
	n.mu.Unlock()
}

func (n *Notes) NotifyFailure(msg string) {
	n.mu.Lock()
	n.failures = append(n.failures, msg)
	n.mu.Unlock()
}

// Successes returns the success messages received so far.
func (n *Notes) Successes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.successes...)
}

// Failures returns the failure messages received so far.
func (n *Notes) Failures() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.failures...)
}
