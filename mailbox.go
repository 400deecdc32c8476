package folio

import "sync"

// NoticeKind is the tone of a notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeFailure NoticeKind = "failure"
)

// Notice is one operator-visible message.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Mailbox is a resource.Notifier that queues notices until the next page
// render drains them.
type Mailbox struct {
	mu      sync.Mutex
	notices []Notice
}

// NotifySuccess queues a success notice.
func (m *Mailbox) NotifySuccess(msg string) { m.push(NoticeSuccess, msg) }

// NotifyFailure queues a failure notice.
func (m *Mailbox) NotifyFailure(msg string) { m.push(NoticeFailure, msg) }

func (m *Mailbox) push(kind NoticeKind, msg string) {
	m.mu.Lock()
	m.notices = append(m.notices, Notice{Kind: kind, Text: msg})
	m.mu.Unlock()
}

// Drain returns and forgets the queued notices.
func (m *Mailbox) Drain() []Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.notices
	m.notices = nil
	return out
}
