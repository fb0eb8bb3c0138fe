package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/samaelod/enlil/config"
)

func New(version string, cfg *config.Config) Model {
	fb := NewFileBrowser([]string{".lua"})

	return Model{
		screen:      screenMenu,
		fileBrowser: fb,
		config:      cfg,
		menuCursor:  0,
		version:     version,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func Run(version string, cfg *config.Config) error {
	p := tea.NewProgram(New(version, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
