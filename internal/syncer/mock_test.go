package syncer

import (
	"sync"
	"turnsync/internal/model"
	"turnsync/internal/watcher"
)

type fakeSource struct {
	ch       chan model.FileEvent
	started  bool
	stopOnce sync.Once
}

func newFakeSource() *fakeSource {
	return &fakeSource{ch: make(chan model.FileEvent, 16)}
}

func (f *fakeSource) Events() <-chan model.FileEvent { return f.ch }

func (f *fakeSource) Start() error {
	f.started = true
	return nil
}

func (f *fakeSource) Stop() {
	f.stopOnce.Do(func() { close(f.ch) })
}

// fakeFactory hands out a fresh fake source per Start.
type fakeFactory struct {
	mu      sync.Mutex
	sources []*fakeSource
}

func (f *fakeFactory) New(_ string, _ bool) (watcher.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	src := newFakeSource()
	f.sources = append(f.sources, src)
	return src, nil
}

func (f *fakeFactory) last() *fakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sources[len(f.sources)-1]
}

type mockHistory struct {
	mu      sync.Mutex
	results []model.SyncResult
}

func (m *mockHistory) Save(_ string, result model.SyncResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
	return nil
}

func (m *mockHistory) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results)
}
