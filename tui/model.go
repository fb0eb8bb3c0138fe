package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/samaelod/enlil/config"
	"github.com/samaelod/enlil/engine"
	"github.com/samaelod/enlil/radio"
	"github.com/samaelod/enlil/types"
)

type screen int

const (
	screenMenu screen = iota
	screenFilePicker
	screenLoading
	screenBench
)

type Model struct {
	screen screen

	config   *config.Config
	scenario *types.Scenario
	err      error

	// fileBrowser for picking scenario scripts
	fileBrowser FileBrowser

	nodes list.Model

	width        int
	height       int
	selectedFile string

	menuCursor int // 0: bench, 1: scenario
	activeView int // 0: nodes, 1: logs viewport

	version string

	engines [2]*engine.Engine
	links   [2]*radio.Loopback
	logger  *engine.Logger
	timers  []*time.Timer // scheduled scenario steps

	logViewport viewport.Model
	logContent  string // cached log content for editor
}

const (
	minWindowWidth   = 80
	minWindowHeight  = 20
	defaultListWidth = 30
	minListWidth     = 20
	footerHeight     = 3
	linkPanelHeight  = 8
)

// selectedEngine returns the node under the cursor, or nil before the bench
// is built.
func (m Model) selectedEngine() *engine.Engine {
	item := m.nodes.SelectedItem()
	if ni, ok := item.(nodeItem); ok {
		return ni.eng
	}
	return nil
}

func (m *Model) stopAll() {
	for _, t := range m.timers {
		if t != nil {
			t.Stop()
		}
	}
	m.timers = nil

	for _, e := range m.engines {
		if e != nil {
			e.Stop()
		}
	}
}
