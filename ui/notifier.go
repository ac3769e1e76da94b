package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// UpdateMsg signals that the scaffold should re-render.
type UpdateMsg struct{}

// Notifier delivers messages into the Bubble Tea loop from other goroutines.
//
// Notify is a coalescing re-render signal read by the scaffold through
// Listen; a dropped signal is harmless because the next render reads current
// state. Send carries data (chat replies, status updates) through
// tea.Program.Send. Messages sent before SetProgram are queued and replayed
// in order once the program is known.
type Notifier struct {
	rcv chan UpdateMsg

	mu        sync.Mutex
	listening bool
	program   *tea.Program
	queued    []tea.Msg
}

func newNotifier() *Notifier {
	return &Notifier{rcv: make(chan UpdateMsg, 1)}
}

// SetProgram binds the running program and flushes queued messages. Call it
// after tea.NewProgram and before Run; program.Send blocks until Run starts
// reading, so the flush happens on its own goroutine.
func (n *Notifier) SetProgram(p *tea.Program) {
	n.mu.Lock()
	n.program = p
	queued := n.queued
	n.queued = nil
	n.mu.Unlock()

	if len(queued) > 0 {
		go func() {
			for _, msg := range queued {
				p.Send(msg)
			}
		}()
	}
}

// Listen returns a command that waits for the next Notify. It returns nil
// while a previous Listen command is still outstanding.
func (n *Notifier) Listen() tea.Cmd {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.listening {
		return nil
	}
	n.listening = true

	return func() tea.Msg {
		msg := <-n.rcv
		n.mu.Lock()
		n.listening = false
		n.mu.Unlock()
		return msg
	}
}

// Notify requests a re-render.
func (n *Notifier) Notify() {
	select {
	case n.rcv <- UpdateMsg{}:
	default:
	}
}

// Send delivers msg to the program, or queues it until SetProgram.
func (n *Notifier) Send(msg tea.Msg) {
	n.mu.Lock()
	p := n.program
	if p == nil {
		n.queued = append(n.queued, msg)
		n.mu.Unlock()
		return
	}
	n.mu.Unlock()
	p.Send(msg)
}

// Pending reports how many messages are waiting for SetProgram.
func (n *Notifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.queued)
}
