package session

import (
	"sync"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/usecase"
)

const maxNotices = 50

// NoticeQueue はブラウザが取りに来るまで通知を溜める。溢れたら古い順に捨てる。
type NoticeQueue struct {
	mu    sync.Mutex
	items []usecase.Notice
	now   func() time.Time
}

func NewNoticeQueue() *NoticeQueue {
	return &NoticeQueue{now: time.Now}
}

func (q *NoticeQueue) Push(level usecase.NoticeLevel, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, usecase.Notice{Level: level, Message: message, At: q.now()})
	if over := len(q.items) - maxNotices; over > 0 {
		q.items = append([]usecase.Notice(nil), q.items[over:]...)
	}
}

// Drain は溜まっている通知を全部返して空にする
func (q *NoticeQueue) Drain() []usecase.Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	if out == nil {
		out = []usecase.Notice{}
	}
	return out
}

func (q *NoticeQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
