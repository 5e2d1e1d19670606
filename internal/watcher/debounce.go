package watcher

import (
	"time"
	"turnsync/internal/model"
)

type firing struct {
	path string
	gen  uint64
}

// Debounce collapses bursts of events for one path into a single event,
// emitted once the path has been quiet for delay. A Created event in the
// burst is preserved over later Changed events. Pending events are flushed
// when inCh closes.
func Debounce(inCh <-chan model.FileEvent, delay time.Duration) <-chan model.FileEvent {
	outCh := make(chan model.FileEvent, cap(inCh))

	go func() {
		defer close(outCh)

		type pending struct {
			event model.FileEvent
			gen   uint64
			timer *time.Timer
		}

		pendings := make(map[string]*pending)
		fireCh := make(chan firing)
		doneCh := make(chan struct{})
		defer close(doneCh)

		var gen uint64

		for {
			select {
			case event, ok := <-inCh:
				if !ok {
					for _, p := range pendings {
						p.timer.Stop()
						outCh <- p.event
					}
					return
				}

				if p, exists := pendings[event.Path]; exists {
					p.timer.Stop()
					if p.event.Kind == model.EventCreated {
						event.Kind = model.EventCreated
					}
				}

				gen++
				f := firing{path: event.Path, gen: gen}
				pendings[event.Path] = &pending{
					event: event,
					gen:   gen,
					timer: time.AfterFunc(delay, func() {
						select {
						case fireCh <- f:
						case <-doneCh:
						}
					}),
				}

			case f := <-fireCh:
				p, exists := pendings[f.path]
				if !exists || p.gen != f.gen {
					continue
				}

				delete(pendings, f.path)
				outCh <- p.event
			}
		}
	}()

	return outCh
}
