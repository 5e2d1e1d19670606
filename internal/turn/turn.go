package turn

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	OrderExt = ".2h"
	TurnExt  = ".trn"
)

// GameName returns the game a save file belongs to: the name of its parent
// directory.
func GameName(path string) string {
	return filepath.Base(filepath.Dir(path))
}

// Nation returns the nation identifier encoded in a save file's stem.
func Nation(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsMyTurn reports whether an incoming turn file belongs to a nation the
// local player has an order file staged for under localRoot.
func IsMyTurn(localRoot, incoming string) bool {
	gameDir := filepath.Join(localRoot, GameName(incoming))
	nation := Nation(incoming)

	entries, err := os.ReadDir(gameDir)
	if err != nil {
		return false
	}

	for _, e := range entries {
		if e.IsDir() || !HasExt(e.Name(), OrderExt) {
			continue
		}
		if strings.EqualFold(Nation(e.Name()), nation) {
			return true
		}
	}

	return false
}

// HasExt matches a file extension without regard to case.
func HasExt(path, ext string) bool {
	return strings.EqualFold(filepath.Ext(path), ext)
}
