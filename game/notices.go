package game

import (
	"log/slog"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/microvita/microcosm/systems"
)

// noticeTTL is how long a HUD notice stays visible, in seconds.
const noticeTTL = 4.0

// notice is one pending HUD message.
type notice struct {
	Text string
	Age  float32
}

// NoticeBoard queues short player-facing messages. Graphical runs show
// them on the HUD; headless runs log them instead.
type NoticeBoard struct {
	mu       sync.Mutex
	items    []notice
	headless bool
}

// NewNoticeBoard creates an empty board.
func NewNoticeBoard(headless bool) *NoticeBoard {
	return &NoticeBoard{headless: headless}
}

// Push queues a message.
func (b *NoticeBoard) Push(text string) {
	if b.headless {
		slog.Info("notice", "text", text)
		return
	}
	b.mu.Lock()
	b.items = append(b.items, notice{Text: text})
	b.mu.Unlock()
}

// Advance ages notices and drops expired ones.
func (b *NoticeBoard) Advance(delta float32) {
	b.mu.Lock()
	keep := b.items[:0]
	for _, n := range b.items {
		n.Age += delta
		if n.Age < noticeTTL {
			keep = append(keep, n)
		}
	}
	b.items = keep
	b.mu.Unlock()
}

// Visible returns the current messages, newest last.
func (b *NoticeBoard) Visible() []string {
	b.mu.Lock()
	out := make([]string, len(b.items))
	for i, n := range b.items {
		out[i] = n.Text
	}
	b.mu.Unlock()
	return out
}

// notifier adapts the board to the coordinator's Notifier interface.
// Only the player-controlled cell has a notification sink.
func (b *NoticeBoard) notifier(reg *systems.Registry) systems.Notifier {
	return &boardNotifier{board: b, reg: reg}
}

type boardNotifier struct {
	board *NoticeBoard
	reg   *systems.Registry
}

func (n *boardNotifier) CanNotify(e ecs.Entity) bool {
	return n.reg.Player.HasAll(e)
}

func (n *boardNotifier) Notice(e ecs.Entity, msg string) {
	n.board.Push(msg)
}
