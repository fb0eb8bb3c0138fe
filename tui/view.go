package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/samaelod/enlil/engine"
	"github.com/samaelod/enlil/types"
)

type nodeItem struct {
	eng *engine.Engine
}

func (n nodeItem) Title() string {
	snap := n.eng.Snapshot()
	return fmt.Sprintf("[%s] %s", snap.Name, snap.Mode)
}
func (n nodeItem) Description() string { return "" }
func (n nodeItem) FilterValue() string { return n.eng.Name }

type nodesDelegate struct{}

func renderScrollbar(vp viewport.Model, height int) string {
	total := vp.TotalLineCount()
	visible := vp.VisibleLineCount()

	if total <= visible {
		return ""
	}

	trackHeight := height
	if trackHeight < 1 {
		trackHeight = visible
	}

	scrollPercent := vp.ScrollPercent()

	thumbPos := int(float64(trackHeight-1) * scrollPercent)
	if thumbPos < 0 {
		thumbPos = 0
	}
	if thumbPos > trackHeight-1 {
		thumbPos = trackHeight - 1
	}

	var sb strings.Builder
	for i := 0; i < trackHeight; i++ {
		if i == thumbPos {
			sb.WriteString(scrollbarThumb.Render("█"))
		} else {
			sb.WriteString(scrollbarTrack.Render("│"))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (d nodesDelegate) Height() int                               { return 1 }
func (d nodesDelegate) Spacing() int                              { return 0 }
func (d nodesDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d nodesDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(nodeItem)
	if !ok {
		return
	}

	snap := i.eng.Snapshot()
	state := "stopped"
	if snap.Running {
		state = "running"
	}
	str := fmt.Sprintf("[%s] %-8s %s", snap.Name, snap.Mode, state)
	isSelected := index == m.Index()

	if isSelected {
		style := styleSelected.Copy().Foreground(colorSecondary)
		str = "> " + str
		fmt.Fprint(w, style.Render(str))
	} else {
		style := lipgloss.NewStyle().Foreground(colorText)
		str = "  " + str
		fmt.Fprint(w, style.Render(str))
	}
}

func (m Model) View() string {
	var content string

	// Calculate inner dimensions
	// Window border (2) + padding (2) + margin (2) = ~6 vertical space used by chrome
	windowWidth := m.width - 4
	windowHeight := m.height - 4

	if windowWidth < minWindowWidth || windowHeight < minWindowHeight {
		return styleScreenTooSmall.
			Width(m.width).
			Height(m.height).
			Render("Terminal window is too small.\nPlease resize.")
	}

	if windowWidth < 0 {
		windowWidth = 0
	}
	if windowHeight < 0 {
		windowHeight = 0
	}

	switch m.screen {

	case screenMenu:
		// App title
		appTitle := styleAppTitle.Width(windowWidth).Render("ENLIL " + m.version)

		// Custom Card View for Menu
		menuTitle := styleTitle.Render("Select Bench")

		var cardPair, cardScript string

		if m.menuCursor == 0 {
			cardPair = styleMenuItemSelected.Render("Loopback Pair")
			cardScript = styleMenuItem.Render("Scenario Script")
		} else {
			cardPair = styleMenuItem.Render("Loopback Pair")
			cardScript = styleMenuItemSelected.Render("Scenario Script")
		}

		menuContent := lipgloss.JoinVertical(lipgloss.Center,
			menuTitle,
			"\n",
			lipgloss.JoinHorizontal(lipgloss.Center, cardPair, cardScript),
		)

		// Title at top, menu centered in remaining space
		content = lipgloss.JoinVertical(lipgloss.Top,
			appTitle,
			lipgloss.Place(
				windowWidth, windowHeight-1,
				lipgloss.Center, lipgloss.Center,
				styleMenuContainer.Render(menuContent),
			),
		)

	case screenFilePicker:
		// App title
		appTitle := styleAppTitle.Width(windowWidth).Render("ENLIL " + m.version)

		// Split View: Browser (1/3) | Preview (2/3)
		listWidth := windowWidth / 3
		previewWidth := windowWidth - listWidth
		panelHeight := windowHeight - 1 // -1 for title

		// Determine border colors
		browserColor := colorSecondary
		if m.fileBrowser.HasValidFilesInDir(m.fileBrowser.CurrentDir) {
			browserColor = colorSuccess
		}

		previewColor := colorSecondary
		if m.fileBrowser.Selected != "" {
			// Check if selected item is a file (not directory)
			item := m.fileBrowser.List.SelectedItem()
			if item != nil {
				fi, ok := item.(fileItem)
				if ok && !fi.isDir {
					if m.fileBrowser.SelectedHasValidExtension() {
						previewColor = colorSuccess
					} else {
						previewColor = colorError
					}
				}
			}
		}

		// Left panel (File Browser) with title inside
		browserTitle := styleTitle.MarginBottom(1).Render("Select Scenario")
		browserContent := browserTitle + "\n" + m.fileBrowser.View()

		browserView := stylePanelTitled.
			BorderForeground(browserColor).
			Width(listWidth - 4).
			Height(panelHeight).
			Render(browserContent)

		// Preview Panel with title inside
		previewTitle := styleTitle.MarginBottom(1).Render("Scenario Preview")

		// Truncate content to fit panel
		contentHeight := panelHeight - 5 // -2 border, -1 title, -1 margin, -1 dots
		previewLines := strings.Split(m.fileBrowser.PreviewContent, "\n")
		if len(previewLines) > contentHeight {
			previewLines = previewLines[:contentHeight-1]
			previewLines = append(previewLines, "...")
		}
		truncatedPreview := strings.Join(previewLines, "\n")
		previewWithTitle := previewTitle + "\n" + truncatedPreview

		previewView := stylePanelTitled.
			BorderForeground(previewColor).
			Width(previewWidth).
			Height(panelHeight).
			Render(previewWithTitle)

		content = lipgloss.Place(
			windowWidth, windowHeight,
			lipgloss.Center, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Top,
				appTitle,
				lipgloss.JoinHorizontal(lipgloss.Top, browserView, previewView),
			),
		)

	case screenLoading:
		appTitle := styleAppTitle.Width(windowWidth).Render("ENLIL " + m.version)

		var status string
		if m.err != nil {
			status = styleSubtext.Render("Error: " + m.err.Error())
		} else {
			status = "Building bench..."
		}

		content = lipgloss.Place(
			windowWidth, windowHeight,
			lipgloss.Center, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center,
				appTitle,
				"\n",
				status,
			),
		)

	case screenBench:
		// App title
		appTitle := styleAppTitle.Width(windowWidth).Render("ENLIL " + m.version)

		// Layout: Left (Nodes + Link) | Right (Details / Logs)
		availWidth := windowWidth
		availHeight := windowHeight - 1 // -1 for title

		// Reserve space for footer (3 lines: 1 content + 2 border)
		availHeight -= footerHeight

		// 1. Calculate Dimensions
		// Left List Width
		listWidth := defaultListWidth
		if listWidth > availWidth/3 {
			listWidth = availWidth / 3
		}
		if listWidth < minListWidth {
			listWidth = minListWidth
		}

		rightWidth := availWidth - listWidth
		if rightWidth < 0 {
			rightWidth = 0
		}

		// Vertical Split for Right Side
		var logsHeight int
		if m.activeView == 1 {
			// Logs Focused: 70%
			logsHeight = (availHeight * 70) / 100
		} else {
			// Logs NOT Focused: 40%
			logsHeight = (availHeight * 40) / 100
		}

		detailsHeight := availHeight - logsHeight
		if detailsHeight < 10 { // Enforce minimum for details
			detailsHeight = 10
			logsHeight = availHeight - detailsHeight
		}

		// 2. Left Column: Nodes panel on top, Link stats below
		nodesHeight := availHeight - linkPanelHeight - 4 // -4 for borders
		if nodesHeight < 4 {
			nodesHeight = 4
		}
		m.nodes.SetSize(listWidth-4, nodesHeight-2)

		nodesTitle := styleTitle.MarginBottom(1).Render("Nodes")
		nodesContent := nodesTitle + "\n" + m.nodes.View()
		nodesBorderColor := colorSubtext
		if m.activeView == 0 {
			nodesBorderColor = colorSecondary
		}
		nodesPanel := stylePanelTitled.
			BorderForeground(nodesBorderColor).
			Width(listWidth - 4).
			Height(nodesHeight).
			Render(nodesContent)

		linkTitle := styleTitle.MarginBottom(1).Render("Link")
		linkContent := linkTitle + "\n" + renderLinkPanel(m)
		linkPanel := stylePanelTitled.
			BorderForeground(colorSubtext).
			Width(listWidth - 4).
			Height(linkPanelHeight).
			Render(linkContent)

		leftColumn := lipgloss.JoinVertical(lipgloss.Top, nodesPanel, linkPanel)

		// 3. Right Top (Details)
		detailsContentHeight := detailsHeight - 3
		if detailsContentHeight < 4 {
			detailsContentHeight = 4
		}
		detailsContent := renderNodeDetails(m, rightWidth-4, detailsContentHeight)
		detailsTitle := styleTitle.MarginBottom(1).Render("Node Details")
		detailsWithTitle := detailsTitle + "\n" + detailsContent

		detailsBorderColor := colorSubtext
		if eng := m.selectedEngine(); eng != nil {
			snap := eng.Snapshot()
			switch {
			case snap.Last != nil && snap.Last.Aborted:
				detailsBorderColor = colorError
			case snap.Mode == types.ModeTransmit:
				detailsBorderColor = colorSecondary
			case snap.Running:
				detailsBorderColor = colorSuccess
			}
		}

		rightTop := stylePanelTitled.
			BorderForeground(detailsBorderColor).
			Width(rightWidth).
			Height(detailsHeight).
			Render(detailsWithTitle)

		// 4. Right Bottom (Logs)
		logsContentHeight := logsHeight - 6
		if logsContentHeight < 2 {
			logsContentHeight = 2
		}

		m.logViewport.Width = rightWidth - 7 // Width minus padding, border, and scrollbar
		m.logViewport.Height = logsContentHeight

		logsColor := colorSubtext
		if m.activeView == 1 {
			logsColor = colorSecondary
		}

		logsTitle := styleTitle.MarginBottom(1).Render("Logs")

		// Render viewport and scrollbar side by side
		viewportContent := m.logViewport.View()
		scrollbar := renderScrollbar(m.logViewport, logsContentHeight)

		scrollbarCol := scrollbarTrack.Width(1).Render(scrollbar)
		logsContent := lipgloss.JoinHorizontal(lipgloss.Top, viewportContent, scrollbarCol)
		logsContent = logsTitle + "\n" + logsContent

		logsView := stylePanelTitled.
			BorderForeground(logsColor).
			Width(rightWidth).
			Height(logsHeight - 2). // -2 for thick border
			Render(logsContent)

		// 5. Combine columns
		rightColumn := lipgloss.JoinVertical(lipgloss.Top, rightTop, logsView)
		topArea := lipgloss.JoinHorizontal(lipgloss.Top, leftColumn, rightColumn)

		// 6. Footer with border
		keyStyle := lipgloss.NewStyle().Foreground(colorSecondary).Bold(true)
		descStyle := lipgloss.NewStyle().Foreground(colorSubtext)
		sep := descStyle.Render(" • ")

		tabHint := keyStyle.Render("<tab>") + descStyle.Render(" switch focus")

		var footer string
		if m.activeView == 0 {
			footer = lipgloss.JoinHorizontal(lipgloss.Center,
				tabHint,
				sep,
				keyStyle.Render("t"), descStyle.Render(" transmit"),
				sep,
				keyStyle.Render("r"), descStyle.Render(" receive"),
				sep,
				keyStyle.Render("s"), descStyle.Render(" start/stop"),
				sep,
				keyStyle.Render("e"), descStyle.Render(" edit"),
				sep,
				keyStyle.Render("u"), descStyle.Render(" reload"),
				sep,
				keyStyle.Render("q"), descStyle.Render(" quit"),
			)
		} else {
			footer = lipgloss.JoinHorizontal(lipgloss.Center,
				tabHint,
				sep,
				keyStyle.Render("e"), descStyle.Render(" editor"),
				sep,
				keyStyle.Render("g"), descStyle.Render(" top"),
				sep,
				keyStyle.Render("G"), descStyle.Render(" bottom"),
				sep,
				keyStyle.Render("q"), descStyle.Render(" quit"),
			)
		}

		footerStyle := lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(colorSubtext).
			Padding(0, 1)

		footerView := footerStyle.
			Width(windowWidth - 2).
			Render(footer)

		content = lipgloss.JoinVertical(lipgloss.Top,
			appTitle,
			lipgloss.JoinVertical(lipgloss.Top, topArea, footerView),
		)
	}

	// Apply global window style
	return styleWindow.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(content)
}

func renderNodeDetails(m Model, width, height int) string {
	eng := m.selectedEngine()
	if eng == nil {
		return "No node selected"
	}

	snap := eng.Snapshot()

	contentWidth := width - 2
	if contentWidth < 0 {
		contentWidth = 0
	}

	labelWidth := 10
	valueMaxWidth := contentWidth - labelWidth - 1
	if valueMaxWidth < 5 {
		valueMaxWidth = 5
	}

	// Helper to render label+value rows with truncation
	row := func(label, value string) string {
		if len(value) > valueMaxWidth {
			value = value[:valueMaxWidth-1] + "…"
		}
		return lipgloss.JoinHorizontal(lipgloss.Left,
			styleLabel.Render(label),
			styleValue.Render(value),
		)
	}

	state := "stopped"
	if snap.Running {
		state = "running"
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		row("Node:", snap.Name),
		row("Role:", snap.Mode.String()),
		row("State:", state),
		row("Receipts:", fmt.Sprintf("%d", snap.Receipts)),
		row("Cycles:", fmt.Sprintf("%d", snap.Cycles)),
	)

	cycleHeader := lipgloss.NewStyle().
		MarginTop(1).
		Foreground(colorSecondary).
		Bold(true).
		Render("Last Cycle")

	var cycleContent string
	if snap.Last == nil {
		cycleContent = styleSubtext.Render("No transmit cycle recorded yet.")
	} else {
		last := snap.Last
		outcome := "complete"
		if last.Aborted {
			outcome = fmt.Sprintf("aborted at payload '%c'", last.Marker)
		}
		cycleContent = lipgloss.JoinVertical(lipgloss.Left,
			row("Sent:", fmt.Sprintf("%d", last.Position)),
			row("Failures:", fmt.Sprintf("%d", last.Failures)),
			row("Elapsed:", fmt.Sprintf("%d us", last.Micros())),
			row("Outcome:", outcome),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		cycleHeader,
		cycleContent,
	)

	// Pad or trim to fill exactly the panel height
	lines := strings.Split(content, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func renderLinkPanel(m Model) string {
	if m.links[0] == nil || m.links[1] == nil {
		return styleSubtext.Render("no link")
	}

	a := m.links[0].Stats()
	b := m.links[1].Stats()

	format := func(name string, delivered, refused, pending int) string {
		return fmt.Sprintf("%s  ok %d  drop %d  q %d", name, delivered, refused, pending)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		styleValue.Render(format("a→b", a.Delivered, a.Refused, b.Pending)),
		styleValue.Render(format("b→a", b.Delivered, b.Refused, a.Pending)),
		styleSubtext.Render(fmt.Sprintf("rearmed a:%d b:%d", a.Rearmed, b.Rearmed)),
	)
}
