package grid

import "time"

// NoticeKind classifies a user notification.
type NoticeKind string

const (
	NoticeRejected     NoticeKind = "rejected"      // drop failed local validation
	NoticeCommitFailed NoticeKind = "commit_failed" // store refused the update, move rolled back
	NoticeDrift        NoticeKind = "drift"         // store never reflected the move
	NoticeMoved        NoticeKind = "moved"
)

// Notice is a non-blocking message for the status line.
type Notice struct {
	Kind          NoticeKind
	AppointmentID string
	Message       string
	At            time.Time
}

// IsError reports whether the notice describes a failure.
func (n Notice) IsError() bool {
	return n.Kind != NoticeMoved
}

const maxNotices = 20

type noticeLog struct {
	items []Notice
}

func (l *noticeLog) add(n Notice) {
	if len(l.items) >= maxNotices {
		l.items = l.items[1:]
	}
	l.items = append(l.items, n)
}

func (l *noticeLog) all() []Notice {
	out := make([]Notice, len(l.items))
	copy(out, l.items)
	return out
}

func (l *noticeLog) drain() []Notice {
	out := l.items
	l.items = nil
	return out
}
