package wm

import (
	"context"
	"errors"
	"sync"

	"go.i3wm.org/i3/v4"
)

// ErrStreamClosed is reported when i3 ends the event stream without an
// error, for example on restart.
var ErrStreamClosed = errors.New("i3 event stream closed")

// Window event changes that can alter a workspace label.
const (
	ChangeNew   = "new"
	ChangeClose = "close"
	ChangeMove  = "move"
	ChangeTitle = "title"

	// ChangeInitial is sent once when a stream starts.
	ChangeInitial = "initial"
)

var relevantChanges = map[string]bool{
	ChangeNew:   true,
	ChangeClose: true,
	ChangeMove:  true,
	ChangeTitle: true,
}

// Event is a relabel trigger.
type Event struct {
	Change string
	// Window is the affected window's title, empty for the initial event.
	Window string
}

// Relevant reports whether a window event change can alter a label.
func Relevant(change string) bool {
	return relevantChanges[change]
}

// receiver is the subset of *i3.EventReceiver used here.
type receiver interface {
	Next() bool
	Event() i3.Event
	Err() error
	Close() error
}

// Stream delivers events until its context is canceled or the IPC
// connection fails. After C is closed, Err reports why.
type Stream struct {
	C <-chan Event

	mu  sync.Mutex
	err error
}

// Err returns the error that ended the stream, or nil if it ended because
// its context was canceled.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Events subscribes to window events. The first event on the stream is a
// synthetic ChangeInitial so consumers relabel on (re)connect.
func (c *I3) Events(ctx context.Context) *Stream {
	ch := make(chan Event)
	s := &Stream{C: ch}
	recv := c.subscribe(i3.WindowEventType)

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = recv.Close()
		case <-stop:
		}
	}()

	go func() {
		defer close(ch)
		defer close(stop)

		if !send(ctx, ch, Event{Change: ChangeInitial}) {
			_ = recv.Close()
			return
		}
		for recv.Next() {
			ev, ok := recv.Event().(*i3.WindowEvent)
			if !ok || !Relevant(ev.Change) {
				continue
			}
			if !send(ctx, ch, Event{Change: ev.Change, Window: ev.Container.Name}) {
				_ = recv.Close()
				return
			}
		}

		if ctx.Err() != nil {
			return
		}
		if err := recv.Err(); err != nil {
			s.setErr(err)
		} else {
			s.setErr(ErrStreamClosed)
		}
		_ = recv.Close()
	}()

	return s
}

func send(ctx context.Context, ch chan<- Event, ev Event) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
