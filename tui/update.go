package tui

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/samaelod/enlil/config"
	"github.com/samaelod/enlil/engine"
	"github.com/samaelod/enlil/radio"
	"github.com/samaelod/enlil/scenario"
	"github.com/samaelod/enlil/types"
)

// setupSessionLog points the stdlib logger at a per-session debug file so
// background warnings don't bleed into the alt screen.
func setupSessionLog(sessionName string) {
	logFilename := fmt.Sprintf("%s.debug.log", sessionName)
	logPath := filepath.Join("logs", logFilename)

	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
		return
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		log.Printf("Failed to open log file: %v", err)
		return
	}

	log.SetOutput(f)
	log.Printf("Session started: %s", sessionName)
}

func openLogsInEditor(logContent string) tea.Cmd {
	// Create temp file first
	f, err := os.CreateTemp("", "enlil-logs-*.log")
	if err != nil {
		return func() tea.Msg { return logErrorMsg{err} }
	}

	_, err = f.WriteString(logContent)
	if err != nil {
		return func() tea.Msg { return logErrorMsg{err} }
	}
	f.Close()
	tempPath := f.Name()

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "nano"
	}
	c := exec.Command(editor, tempPath)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		os.Remove(tempPath)
		return nil
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Width: 1/3 for the left column, 2/3 for the right
		availWidth := msg.Width - 4
		listWidth := defaultListWidth
		if listWidth > availWidth/3 {
			listWidth = availWidth / 3
		}
		if listWidth < minListWidth {
			listWidth = minListWidth
		}

		m.fileBrowser.SetSize(listWidth-4, msg.Height-7)
		if m.screen == screenBench {
			nodesHeight := msg.Height - 7 - linkPanelHeight
			if nodesHeight < 4 {
				nodesHeight = 4
			}
			m.nodes.SetSize(listWidth-3, nodesHeight)

			// Viewport sizing mirrors View(): title + chrome eat 7 rows
			availHeight := msg.Height - 5
			var logsHeight int
			if m.activeView == 1 {
				logsHeight = int(float64(availHeight) * 0.7)
			} else {
				logsHeight = int(float64(availHeight) * 0.4)
			}
			detailsHeight := availHeight - logsHeight
			if detailsHeight < 10 {
				logsHeight = availHeight - 10
			}

			vpHeight := logsHeight - 7
			if vpHeight < 0 {
				vpHeight = 0
			}

			m.logViewport.Width = availWidth - listWidth - 6
			m.logViewport.Height = vpHeight
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.stopAll()
			if m.logger != nil {
				m.logger.Close()
			}
			return m, tea.Quit
		}
	}

	// Bench lifecycle messages apply regardless of the active screen
	switch msg := msg.(type) {
	case benchReadyMsg:
		m.engines = msg.engines
		m.links = msg.links
		m.logger = msg.logger
		m.scenario = msg.sc
		m.selectedFile = msg.path

		sessionName := "bench"
		if msg.path != "" {
			baseName := filepath.Base(msg.path)
			sessionName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
		}
		setupSessionLog(sessionName)

		items := []list.Item{
			nodeItem{eng: m.engines[0]},
			nodeItem{eng: m.engines[1]},
		}
		m.nodes = list.New(items, nodesDelegate{}, defaultListWidth, 4)
		m.nodes.SetShowHelp(false)
		m.nodes.SetShowTitle(false)
		m.nodes.SetShowStatusBar(false)
		m.nodes.SetFilteringEnabled(false)

		for _, e := range m.engines {
			e.Start()
		}

		// Script steps land as role commands on approximate tick boundaries
		if m.scenario != nil {
			for _, st := range m.scenario.Script {
				st := st
				eng := m.engines[0]
				if st.Node == "b" {
					eng = m.engines[1]
				}
				delay := time.Duration(st.AtTick) * msg.wait
				m.timers = append(m.timers, time.AfterFunc(delay, func() {
					eng.Deliver(st.ParseStep())
				}))
			}
		}

		m.activeView = 0
		m.screen = screenBench

		m.logViewport = viewport.New(10, 10)
		m.logViewport.SetContent("Bench ready. Select a node and press 't' to start streaming.")
		m.logContent = ""

		return m, waitForLog(m.logger)

	case editorFinishedMsg:
		// Rebuild the bench against the edited scenario
		m.stopAll()
		if m.logger != nil {
			m.logger.Close()
		}
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		return m, buildBenchCmd(m.config, m.selectedFile, false)

	case logErrorMsg:
		m.err = msg.err
		return m, nil

	case logMsg:
		if m.logger != nil {
			m.logContent = m.logger.ReadAll()
			m.logViewport.SetContent(m.logContent)
			m.logViewport.GotoBottom()
			return m, waitForLog(m.logger)
		}
		return m, nil
	}

	switch m.screen {

	case screenMenu:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "up", "k", "left", "h":
				m.menuCursor--
				if m.menuCursor < 0 {
					m.menuCursor = 1
				}
			case "down", "j", "right", "l":
				m.menuCursor++
				if m.menuCursor > 1 {
					m.menuCursor = 0
				}
			case "enter":
				switch m.menuCursor {
				case 0:
					// Plain bench: fresh pair, no script
					m.screen = screenLoading
					return m, buildBenchCmd(m.config, "", false)
				case 1:
					m.fileBrowser = NewFileBrowser([]string{".lua"})
					listWidth := m.width / 3
					m.fileBrowser.SetSize(listWidth-4, m.height-7)
					m.screen = screenFilePicker
					return m, nil
				}
			}
		}
		return m, nil

	case screenFilePicker:
		var cmd tea.Cmd
		m.fileBrowser, cmd = m.fileBrowser.Update(msg)

		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
			item := m.fileBrowser.List.SelectedItem()
			if item != nil {
				fi, ok := item.(fileItem)
				if !ok || fi.isDir {
					return m, nil
				}

				if !m.fileBrowser.SelectedHasValidExtension() {
					// Ignore selection of invalid file types
					return m, nil
				}

				path := fi.path
				m.screen = screenLoading
				log.Println("Selected scenario: " + path)
				return m, buildBenchCmd(m.config, path, true)
			}
		}

		return m, cmd

	case screenLoading:
		if msg, ok := msg.(errMsg); ok {
			m.err = msg.err
		}
	}

	if m.screen == screenBench {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "tab", "shift+tab":
				m.activeView++
				if m.activeView > 1 {
					m.activeView = 0
				}
				// Re-run the resize math so the panels reflow immediately
				return m, func() tea.Msg { return tea.WindowSizeMsg{Width: m.width, Height: m.height} }

			case "t":
				if m.activeView == 0 {
					if eng := m.selectedEngine(); eng != nil {
						eng.Deliver(types.CommandTransmitter)
						return m, waitForLog(m.logger)
					}
				}
			case "r":
				if m.activeView == 0 {
					if eng := m.selectedEngine(); eng != nil {
						eng.Deliver(types.CommandReceiver)
						return m, waitForLog(m.logger)
					}
				}
			case "s":
				if m.activeView == 0 {
					if eng := m.selectedEngine(); eng != nil {
						if eng.Running() {
							eng.Stop()
						} else {
							eng.Start()
						}
						return m, waitForLog(m.logger)
					}
				}
			case "e":
				if m.activeView == 0 {
					if m.selectedFile == "" {
						return m, nil
					}
					editor := os.Getenv("EDITOR")
					if editor == "" {
						editor = "nano"
					}
					c := exec.Command(editor, m.selectedFile)
					return m, tea.ExecProcess(c, func(err error) tea.Msg {
						return editorFinishedMsg{err}
					})
				}
				return m, openLogsInEditor(m.logContent)
			case "u":
				if m.activeView == 0 && m.selectedFile != "" {
					m.stopAll()
					if m.logger != nil {
						m.logger.Close()
					}
					return m, buildBenchCmd(m.config, m.selectedFile, false)
				}
			case "g":
				if m.activeView == 1 {
					m.logViewport.GotoTop()
				}
			case "G":
				if m.activeView == 1 {
					m.logViewport.GotoBottom()
				}
			}
		}

		// Route input to whichever panel holds focus
		if m.activeView == 0 {
			m.nodes, cmd = m.nodes.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			m.logViewport, cmd = m.logViewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

// buildBenchCmd loads the scenario (when path is set), builds a loopback
// pair with its faults armed, and hands back ready-to-start engines.
func buildBenchCmd(cfg *config.Config, path string, keepCopy bool) tea.Cmd {
	return func() tea.Msg {
		var sc *types.Scenario
		if path != "" {
			var err error
			sc, err = scenario.ReadScenario(path)
			if err != nil {
				return errMsg{err}
			}

			if keepCopy {
				if _, err := scenario.SaveToRecent(sc, path); err != nil {
					return errMsg{err}
				}
			}
		}

		size := cfg.PayloadSize
		wait := cfg.CommandWaitMs
		settle := cfg.SettleMs
		limit := cfg.FailLimit
		if sc != nil {
			if sc.Settings.PayloadSize > 0 {
				size = sc.Settings.PayloadSize
			}
			if sc.Settings.CommandWait > 0 {
				wait = sc.Settings.CommandWait
			}
			if sc.Settings.Settle > 0 {
				settle = sc.Settings.Settle
			}
			if sc.Settings.FailLimit > 0 {
				limit = sc.Settings.FailLimit
			}
		}

		sessionName := "bench"
		if path != "" {
			baseName := filepath.Base(path)
			sessionName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
		}
		logPath := filepath.Join(cfg.LogsDir, sessionName+".log")
		logger := engine.NewLogger(logPath, cfg.LogLines)

		la, lb := radio.NewLoopbackPair()
		ta, tb := scenario.ArmFaults(sc, la, lb)

		waitDur := time.Duration(wait) * time.Millisecond
		opts := engine.Options{
			PayloadSize: size,
			CommandWait: waitDur,
			Settle:      time.Duration(settle) * time.Millisecond,
			FailLimit:   limit,
			Log:         logger,
		}
		a := engine.NewEngine("a", ta, opts)
		b := engine.NewEngine("b", tb, opts)

		return benchReadyMsg{
			engines: [2]*engine.Engine{a, b},
			links:   [2]*radio.Loopback{la, lb},
			logger:  logger,
			sc:      sc,
			path:    path,
			wait:    waitDur,
		}
	}
}

type benchReadyMsg struct {
	engines [2]*engine.Engine
	links   [2]*radio.Loopback
	logger  *engine.Logger
	sc      *types.Scenario
	path    string
	wait    time.Duration
}

type errMsg struct{ err error }
type editorFinishedMsg struct{ err error }
type logErrorMsg struct{ err error }
type logMsg struct{}

func waitForLog(logger *engine.Logger) tea.Cmd {
	return func() tea.Msg {
		ch := logger.Updates()
		if ch == nil {
			return nil
		}
		<-ch
		return logMsg{}
	}
}
