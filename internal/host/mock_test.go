package host

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"turnsync/internal/model"
)

// mockLauncher plays the engine: it records which order files were present
// when it ran and writes one turn file per order file it finds.
type mockLauncher struct {
	mu        sync.Mutex
	localRoot string
	calls     []string
	seen      map[string][]string
	exitCode  int
	err       error
	block     chan struct{}
	entered   chan struct{}
}

func newMockLauncher(localRoot string) *mockLauncher {
	return &mockLauncher{localRoot: localRoot, seen: make(map[string][]string)}
}

func (m *mockLauncher) Run(_ context.Context, game string) (int, error) {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, game)

	if m.err != nil {
		return -1, m.err
	}

	dir := filepath.Join(m.localRoot, game)
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".2h" {
			continue
		}
		m.seen[game] = append(m.seen[game], e.Name())
		stem := e.Name()[:len(e.Name())-len(".2h")]
		_ = os.WriteFile(filepath.Join(dir, stem+".trn"), []byte("turn for "+stem), 0644)
	}

	return m.exitCode, nil
}

func (m *mockLauncher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockRuns struct {
	mu   sync.Mutex
	runs []model.HostRun
}

func (m *mockRuns) Save(run *model.HostRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

type mockHistory struct {
	mu         sync.Mutex
	directions []string
}

func (m *mockHistory) Save(direction string, _ model.SyncResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.directions = append(m.directions, direction)
	return nil
}
