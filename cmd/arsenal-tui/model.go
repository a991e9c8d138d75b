package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/facebookfortune84/agentic-workforce/internal/arsenal"
	"github.com/facebookfortune84/agentic-workforce/internal/config"
	"github.com/facebookfortune84/agentic-workforce/internal/controller"
	"github.com/facebookfortune84/agentic-workforce/internal/logbuf"
	"github.com/facebookfortune84/agentic-workforce/internal/registry"
)

type tabID int

const (
	tabArsenal tabID = iota
	tabForge
	tabInject
	tabSettings
	tabHelp
	tabCount
)

// Focus order inside the inject form.
const (
	injectFocusName = iota
	injectFocusCategory
	injectFocusImports
	injectFocusCode
	injectFocusCount
)

const (
	settingsFocusURL = iota
	settingsFocusKey
	settingsFocusCount
)

const (
	nameColumnWidth     = 34
	categoryColumnWidth = 24
	statusColumnWidth   = 10
)

type model struct {
	app *app
	ctx context.Context

	activeTab   tabID
	statusLine  string
	quitConfirm bool

	width  int
	height int

	search         textinput.Model
	forgeInput     textinput.Model
	injectName     textinput.Model
	injectImports  textinput.Model
	injectCode     textarea.Model
	injectCategory arsenal.Category
	injectFocus    int
	settingsURL    textinput.Model
	settingsKey    textinput.Model
	settingsFocus  int

	roster  viewport.Model
	logView viewport.Model
	spinner spinner.Model

	theme uiTheme
}

// syncDoneMsg carries a finished roster fetch back to the event loop.
type syncDoneMsg struct {
	res controller.SyncResult
}

// submitDoneMsg carries a finished forge or inject back to the event loop.
type submitDoneMsg struct {
	res controller.SubmitResult
}

func newModel(a *app) model {
	search := textinput.New()
	search.Prompt = "⌕ "
	search.Placeholder = "Filter capabilities by name or category"
	search.CharLimit = 120
	search.Focus()

	forge := textinput.New()
	forge.Prompt = "❯ "
	forge.Placeholder = "Describe the capability the forge should draft"
	forge.CharLimit = 4000

	name := textinput.New()
	name.Prompt = "name ❯ "
	name.Placeholder = "audit_silo_integrity"
	name.CharLimit = 120

	imports := textinput.New()
	imports.Prompt = "imports ❯ "
	imports.CharLimit = 1000
	imports.SetValue(controller.DefaultInjectImports)

	code := textarea.New()
	code.ShowLineNumbers = true
	code.CharLimit = 0
	code.SetValue(controller.DefaultInjectCode)

	ep := a.live.Endpoint()
	url := textinput.New()
	url.Prompt = "url ❯ "
	url.Placeholder = config.DefaultURL
	url.CharLimit = 512
	url.SetValue(ep.BaseURL)

	key := textinput.New()
	key.Prompt = "key ❯ "
	key.Placeholder = "X-API-Key value"
	key.CharLimit = 512
	key.EchoMode = textinput.EchoPassword
	key.EchoCharacter = '•'
	key.SetValue(ep.APIKey)

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#05ffa1"))

	a.log.Append(logbuf.KindInfo, "[ARMORY]: Registry client initialized.")
	a.log.Append(logbuf.KindInfo, fmt.Sprintf("[ARMORY]: %d canonical silos loaded.", len(arsenal.AllCategories())))
	a.log.Append(logbuf.KindInfo, fmt.Sprintf("[ARMORY]: Uplink target %s.", nullCoalesce(ep.BaseURL, "(unset)")))

	m := model{
		app:            a,
		ctx:            context.Background(),
		activeTab:      tabArsenal,
		statusLine:     "booting registry uplink...",
		search:         search,
		forgeInput:     forge,
		injectName:     name,
		injectImports:  imports,
		injectCode:     code,
		injectCategory: arsenal.DefaultInjectCategory,
		settingsURL:    url,
		settingsKey:    key,
		roster:         viewport.New(80, 10),
		logView:        viewport.New(80, 6),
		spinner:        sp,
		theme:          newTheme(),
		width:          120,
		height:         40,
	}
	m.resize()
	m.renderPanes()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startSync())
}

// startSync issues a sync on the loop and returns the command that runs it.
func (m *model) startSync() tea.Cmd {
	ticket, ok := m.app.sync.Begin()
	if !ok {
		m.statusLine = "no registry endpoint configured · set one in Settings"
		return nil
	}
	m.statusLine = "syncing roster from " + ticket.Endpoint.BaseURL
	return m.syncCmd(ticket)
}

func (m model) syncCmd(ticket *controller.SyncTicket) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return syncDoneMsg{res: ticket.Run(ctx)}
	}
}

func (m model) submitCmd(ticket *controller.SubmitTicket) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return submitDoneMsg{res: ticket.Run(ctx)}
	}
}

func (m *model) startForge() tea.Cmd {
	description := strings.TrimSpace(m.forgeInput.Value())
	ticket, ok := m.app.sub.BeginForge(description)
	if !ok {
		m.statusLine = m.refusal(description == "", "describe the capability first", controller.WorkflowForge)
		m.renderPanes()
		return nil
	}
	m.forgeInput.SetValue("")
	m.statusLine = "forge request submitted"
	m.renderPanes()
	return m.submitCmd(ticket)
}

func (m *model) startInject() tea.Cmd {
	in := controller.InjectInput{
		Name:     strings.TrimSpace(m.injectName.Value()),
		Category: m.injectCategory,
		Code:     m.injectCode.Value(),
		Imports:  m.injectImports.Value(),
	}
	ticket, ok := m.app.sub.BeginInject(in)
	if !ok {
		m.statusLine = m.refusal(in.Name == "", "name the capability first", controller.WorkflowInject)
		m.renderPanes()
		return nil
	}
	m.injectName.SetValue("")
	m.statusLine = fmt.Sprintf("injecting %s into %s", in.Name, in.Category.Label())
	m.renderPanes()
	return m.submitCmd(ticket)
}

// refusal explains why a Begin call did nothing.
func (m *model) refusal(blank bool, blankText string, w controller.Workflow) string {
	switch {
	case blank:
		return blankText
	case !m.app.live.Endpoint().Configured():
		return "no registry endpoint configured · set one in Settings"
	default:
		return fmt.Sprintf("%s already in flight", w)
	}
}

func (m *model) applySettings() tea.Cmd {
	ep := registry.Endpoint{
		BaseURL: strings.TrimSpace(m.settingsURL.Value()),
		APIKey:  strings.TrimSpace(m.settingsKey.Value()),
	}
	m.app.live.Set(ep)
	m.app.log.Append(logbuf.KindInfo, fmt.Sprintf("[CONFIG]: Uplink target set to %s.", nullCoalesce(ep.BaseURL, "(unset)")))
	if err := config.Save(m.app.cfg.configPath, ep); err != nil {
		m.app.logger.Warn().Err(err).Msg("persist endpoint failed")
		m.app.log.Append(logbuf.KindFault, "[CONFIG]: Endpoint could not be persisted.")
	}
	cmd := m.startSync()
	m.renderPanes()
	return cmd
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case syncDoneMsg:
		m.app.sync.Complete(msg.res)
		if msg.res.Err != nil {
			m.statusLine = "sync failed: " + compactSingleLine(msg.res.Err.Error(), 160)
		} else {
			m.statusLine = fmt.Sprintf("roster synced · %d capabilities", len(m.app.sync.List()))
		}
		m.renderPanes()
	case submitDoneMsg:
		resync := m.app.sub.Complete(msg.res)
		w := msg.res.Workflow()
		m.statusLine = ternary(msg.res.Err == nil, fmt.Sprintf("%s accepted", w), fmt.Sprintf("%s failed", w))
		if resync != nil {
			m.statusLine += " · re-syncing roster"
			cmds = append(cmds, m.syncCmd(resync))
		}
		m.renderPanes()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderPanes()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		if m.quitConfirm {
			break
		}
		var cmd tea.Cmd
		if m.activeTab == tabArsenal {
			m.roster, cmd = m.roster.Update(msg)
		} else {
			m.logView, cmd = m.logView.Update(msg)
		}
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.quitConfirm {
		switch key {
		case "y", "Y", "enter":
			return m, tea.Quit
		case "n", "N", "esc":
			m.quitConfirm = false
			m.statusLine = "quit canceled"
			m.renderPanes()
		}
		return m, nil
	}

	switch key {
	case "esc":
		m.beginQuitConfirm()
		return m, nil
	case "tab":
		m.activeTab = (m.activeTab + 1) % tabCount
		return m, m.focusActive()
	case "shift+tab":
		m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		return m, m.focusActive()
	case "ctrl+r":
		return m, m.startSync()
	case "ctrl+l":
		m.logView.GotoBottom()
		return m, nil
	}

	switch m.activeTab {
	case tabArsenal:
		switch key {
		case "pgup", "ctrl+b":
			m.roster.LineUp(8)
			return m, nil
		case "pgdown", "ctrl+f":
			m.roster.LineDown(8)
			return m, nil
		case "up":
			m.roster.LineUp(1)
			return m, nil
		case "down":
			m.roster.LineDown(1)
			return m, nil
		}
		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		cmds = append(cmds, cmd)
		if m.search.Value() != before {
			m.roster.GotoTop()
			m.renderPanes()
		}
	case tabForge:
		if key == "enter" {
			return m, m.startForge()
		}
		var cmd tea.Cmd
		m.forgeInput, cmd = m.forgeInput.Update(msg)
		cmds = append(cmds, cmd)
	case tabInject:
		switch key {
		case "ctrl+s":
			return m, m.startInject()
		case "ctrl+t":
			m.injectFocus = (m.injectFocus + 1) % injectFocusCount
			return m, m.focusActive()
		}
		var cmd tea.Cmd
		switch m.injectFocus {
		case injectFocusName:
			m.injectName, cmd = m.injectName.Update(msg)
		case injectFocusCategory:
			switch key {
			case "left", "h", "-":
				m.injectCategory = cycleCategory(m.injectCategory, -1)
			case "right", "l", "+", " ":
				m.injectCategory = cycleCategory(m.injectCategory, 1)
			}
		case injectFocusImports:
			m.injectImports, cmd = m.injectImports.Update(msg)
		case injectFocusCode:
			m.injectCode, cmd = m.injectCode.Update(msg)
		}
		cmds = append(cmds, cmd)
	case tabSettings:
		switch key {
		case "enter":
			return m, m.applySettings()
		case "up", "down", "ctrl+t":
			m.settingsFocus = (m.settingsFocus + 1) % settingsFocusCount
			return m, m.focusActive()
		}
		var cmd tea.Cmd
		if m.settingsFocus == settingsFocusURL {
			m.settingsURL, cmd = m.settingsURL.Update(msg)
		} else {
			m.settingsKey, cmd = m.settingsKey.Update(msg)
		}
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func cycleCategory(current arsenal.Category, delta int) arsenal.Category {
	all := arsenal.AllCategories()
	idx := (int(current) + delta) % len(all)
	if idx < 0 {
		idx += len(all)
	}
	return all[idx]
}

// focusActive gives keyboard focus to the one input the active tab owns.
func (m *model) focusActive() tea.Cmd {
	m.search.Blur()
	m.forgeInput.Blur()
	m.injectName.Blur()
	m.injectImports.Blur()
	m.injectCode.Blur()
	m.settingsURL.Blur()
	m.settingsKey.Blur()

	var cmd tea.Cmd
	switch m.activeTab {
	case tabArsenal:
		cmd = m.search.Focus()
	case tabForge:
		cmd = m.forgeInput.Focus()
	case tabInject:
		switch m.injectFocus {
		case injectFocusName:
			cmd = m.injectName.Focus()
		case injectFocusImports:
			cmd = m.injectImports.Focus()
		case injectFocusCode:
			cmd = m.injectCode.Focus()
		}
	case tabSettings:
		if m.settingsFocus == settingsFocusURL {
			cmd = m.settingsURL.Focus()
		} else {
			cmd = m.settingsKey.Focus()
		}
	}
	m.renderPanes()
	return cmd
}

func (m *model) beginQuitConfirm() {
	m.quitConfirm = true
	m.statusLine = "ARE YOU SURE YOU WANT TO QUIT?"
}

func (m model) View() string {
	out := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderContent(),
		m.renderLogPanel(),
		m.renderFooter(),
	)
	if m.quitConfirm {
		out = m.renderQuitModal()
	}
	return m.theme.root.Render(out)
}

func (m *model) renderHeader() string {
	tabs := []struct {
		id    tabID
		label string
	}{
		{tabArsenal, "Arsenal"},
		{tabForge, "Forge"},
		{tabInject, "Inject"},
		{tabSettings, "Settings"},
		{tabHelp, "Help"},
	}
	segments := make([]string, 0, len(tabs)+2)
	for _, tab := range tabs {
		style := m.theme.tabInactive
		if tab.id == m.activeTab {
			style = m.theme.tabActive
		}
		segments = append(segments, style.Render(tab.label))
	}
	activity := controller.CurrentActivity(m.app.sync, m.app.sub)
	if activity.Any() {
		segments = append(segments, " "+m.spinner.View()+" "+m.theme.status.Render(activityLabel(activity)))
	}
	meta := fmt.Sprintf("  Uplink: %s", nullCoalesce(m.app.live.Endpoint().BaseURL, "n/a"))
	segments = append(segments, m.theme.helpText.Render(meta))
	joined := lipgloss.JoinHorizontal(lipgloss.Left, segments...)
	return m.theme.header.Width(maxInt(20, m.width-4)).Render(joined)
}

func activityLabel(a controller.Activity) string {
	parts := make([]string, 0, 3)
	if a.Syncing {
		parts = append(parts, "syncing")
	}
	if a.Forging {
		parts = append(parts, "forging")
	}
	if a.Injecting {
		parts = append(parts, "injecting")
	}
	return strings.Join(parts, "+")
}

// layout splits the terminal height between the tab content and the log
// panel. Header and footer take a fixed share.
func (m *model) layout() (contentHeight, logHeight int) {
	logHeight = clampInt(m.height/3, 6, 12)
	contentHeight = maxInt(6, m.height-10-logHeight)
	return contentHeight, logHeight
}

func (m *model) renderContent() string {
	contentHeight, _ := m.layout()
	contentWidth := maxInt(40, m.width-4)
	panel := m.theme.panel.Width(contentWidth).Height(contentHeight)

	switch m.activeTab {
	case tabArsenal:
		return panel.Render(m.theme.panelTitle.Render("Capability Arsenal") + "\n" +
			m.search.View() + "\n" + m.rosterSummary() + "\n" + m.roster.View())
	case tabForge:
		return panel.Render(m.theme.panelTitle.Render("AI Forge") + "\n" + m.renderForge())
	case tabInject:
		return panel.Render(m.theme.panelTitle.Render("Manual Injection") + "\n" + m.renderInject())
	case tabSettings:
		return panel.Render(m.theme.panelTitle.Render("Registry Uplink") + "\n" + m.renderSettings())
	case tabHelp:
		return panel.Render(m.theme.panelTitle.Render("Arsenal Help") + "\n" + m.renderHelp())
	default:
		return ""
	}
}

func (m *model) rosterSummary() string {
	list := m.app.sync.List()
	counts := arsenal.CountByOrigin(list)
	last := "never"
	if ts := m.app.sync.LastSynced(); !ts.IsZero() {
		last = ts.Format("15:04:05")
	}
	fallback := ""
	if arsenal.IsFallback(list) {
		fallback = " · fallback set"
	}
	return m.theme.helpText.Render(fmt.Sprintf(
		"%d capabilities · platform %d · agent %d · last sync %s%s",
		len(list), counts[arsenal.OriginPlatform], counts[arsenal.OriginAgent], last, fallback,
	))
}

func (m *model) renderRoster() string {
	entries := arsenal.Filter(m.app.sync.List(), m.search.Value())
	if len(entries) == 0 {
		if strings.TrimSpace(m.search.Value()) != "" {
			return m.theme.helpText.Render("No capability matches the filter.")
		}
		return m.theme.helpText.Render("Roster empty. Press Ctrl+R to sync.")
	}
	var b strings.Builder
	b.WriteString(m.theme.settingKey.Render(
		padRight("NAME", nameColumnWidth) + " " +
			padRight("CATEGORY", categoryColumnWidth) + " " +
			padRight("STATUS", statusColumnWidth) + " ORIGIN"))
	for _, entry := range entries {
		b.WriteString("\n")
		b.WriteString(padRight(truncate(entry.Name, nameColumnWidth), nameColumnWidth) + " ")
		b.WriteString(padRight(truncate(entry.Category, categoryColumnWidth), categoryColumnWidth) + " ")
		b.WriteString(padRight(string(entry.Status), statusColumnWidth) + " ")
		b.WriteString(m.theme.origin[entry.Origin].Render(string(entry.Origin)))
	}
	return b.String()
}

func (m *model) renderForge() string {
	state := m.app.sub.State(controller.WorkflowForge)
	lines := []string{
		m.theme.helpText.Render(wrapText("The forge drafts a capability blueprint on the remote fleet from a plain-language description.", maxInt(20, m.width-10))),
		"",
		m.theme.inputPanel.Width(maxInt(30, m.width-10)).Render(m.forgeInput.View()),
		"",
		m.theme.settingKey.Render("State ") + m.theme.settingValue.Render(state.String()),
		m.theme.helpText.Render("Enter submits."),
	}
	return strings.Join(lines, "\n")
}

func (m *model) renderInject() string {
	focusMark := func(idx int) string {
		return ternary(m.injectFocus == idx, "▶ ", "  ")
	}
	category := m.theme.settingValue.Render("◀ " + m.injectCategory.Label() + " ▶")
	if m.injectFocus == injectFocusCategory {
		category = m.theme.settingPick.Render("◀ " + m.injectCategory.Label() + " ▶")
	}
	lines := []string{
		focusMark(injectFocusName) + m.injectName.View(),
		focusMark(injectFocusCategory) + m.theme.settingKey.Render("sector ❯ ") + category,
		focusMark(injectFocusImports) + m.injectImports.View(),
		focusMark(injectFocusCode) + m.theme.settingKey.Render("implementation"),
		m.injectCode.View(),
		m.theme.settingKey.Render("State ") + m.theme.settingValue.Render(m.app.sub.State(controller.WorkflowInject).String()) +
			m.theme.helpText.Render("  ·  Ctrl+T next field · ←/→ sector · Ctrl+S inject"),
	}
	return strings.Join(lines, "\n")
}

func (m *model) renderSettings() string {
	ep := m.app.live.Endpoint()
	rows := []struct {
		label string
		value string
	}{
		{"Active URL", nullCoalesce(ep.BaseURL, "(unset)")},
		{"Active Key", maskSecret(ep.APIKey)},
		{"Config File", m.app.cfg.configPath},
		{"Sync Policy", m.app.sync.Policy().String()},
		{"HTTP Timeout", fmt.Sprintf("%ds", int(m.app.cfg.timeout/time.Second))},
		{"Metrics", nullCoalesce(m.app.cfg.metricsAddr, "off")},
		{"Alt Screen", onOff(m.app.cfg.altScreen)},
	}
	var b strings.Builder
	b.WriteString(ternary(m.settingsFocus == settingsFocusURL, "▶ ", "  ") + m.settingsURL.View() + "\n")
	b.WriteString(ternary(m.settingsFocus == settingsFocusKey, "▶ ", "  ") + m.settingsKey.View() + "\n")
	b.WriteString(m.theme.helpText.Render("Up/Down switch field · Enter apply, persist and re-sync") + "\n\n")
	for _, row := range rows {
		b.WriteString(m.theme.settingKey.Render(fmt.Sprintf("%-14s", row.label)) + " " + m.theme.settingValue.Render(row.value) + "\n")
	}
	return strings.TrimSpace(b.String())
}

func (m *model) renderHelp() string {
	lines := []string{
		"Core Keys",
		"- Tab / Shift+Tab: switch views",
		"- Ctrl+R: sync the roster now",
		"- Ctrl+L: jump the diagnostic log to the newest entry",
		"- Esc: quit confirmation · Ctrl+C: quit",
		"",
		"Arsenal",
		"- Type to filter by name or category; Up/Down or PgUp/PgDn scroll",
		"- AGENT origin marks capabilities whose name mentions self or spawn",
		"",
		"Forge",
		"- Enter sends the description as a drafting mission",
		"",
		"Inject",
		"- Ctrl+T cycles name, sector, imports and implementation",
		"- Left/Right picks the sector; Ctrl+S injects and re-syncs",
		"",
		"Settings",
		"- Enter applies the URL and key, saves them and re-syncs",
	}
	return m.theme.helpText.Render(strings.Join(lines, "\n"))
}

func (m *model) renderLogs() string {
	entries := m.app.log.Snapshot()
	width := maxInt(20, m.logView.Width)
	rendered := make([]string, 0, len(entries))
	for _, entry := range entries {
		line := fmt.Sprintf("[%02d] %s", entry.Sequence, compactSingleLine(entry.String(), width))
		rendered = append(rendered, m.theme.logKind[entry.Kind].Render(line))
	}
	return strings.Join(rendered, "\n")
}

func (m *model) renderLogPanel() string {
	_, logHeight := m.layout()
	contentWidth := maxInt(40, m.width-4)
	return m.theme.panel.Width(contentWidth).Height(logHeight).Render(
		m.theme.panelTitle.Render("Diagnostic Log") + "\n" + m.logView.View(),
	)
}

func (m *model) renderFooter() string {
	contentWidth := maxInt(40, m.width-4)
	statusStyle := m.theme.status
	lower := strings.ToLower(m.statusLine)
	if strings.Contains(lower, "failed") || strings.Contains(lower, "error") || strings.Contains(lower, "no registry") {
		statusStyle = m.theme.errorStatus
	}
	line := statusStyle.Render(compactSingleLine(m.statusLine, 180))
	hints := m.theme.helpText.Render("Keys: Tab switch view · Ctrl+R sync · Enter submit (Forge/Settings) · Ctrl+S inject · Esc quit prompt · Ctrl+C quit")
	return m.theme.footer.Width(contentWidth).Render(line + "\n" + hints)
}

func (m *model) renderQuitModal() string {
	canvasWidth := maxInt(40, m.width-4)
	canvasHeight := maxInt(12, m.height-4)
	modalWidth := clampInt(int(float64(canvasWidth)*0.56), 42, 78)
	if modalWidth > canvasWidth-2 {
		modalWidth = canvasWidth - 2
	}
	if modalWidth < 32 {
		modalWidth = 32
	}

	inFlight := controller.CurrentActivity(m.app.sync, m.app.sub)
	warning := "No registry call is in flight."
	if inFlight.Any() {
		warning = "Pending " + activityLabel(inFlight) + " will be abandoned."
	}
	accent := m.theme.modalAccent.Render(strings.Repeat("=", minInt(40, modalWidth-6)))
	body := strings.Join([]string{
		m.theme.errorStatus.Render("LEAVE THE ARMORY?"),
		m.theme.helpText.Render("Are you sure you want to quit?"),
		"",
		accent,
		m.theme.helpText.Render(warning),
		accent,
		"",
		m.theme.settingPick.Render("[Y / Enter] Quit") + "    " + m.theme.helpText.Render("[N / Esc] Return"),
	}, "\n")
	panel := m.theme.modalFrame.Width(modalWidth).Render(body)
	return lipgloss.Place(
		canvasWidth,
		canvasHeight,
		lipgloss.Center,
		lipgloss.Center,
		panel,
		lipgloss.WithWhitespaceBackground(m.theme.bg),
	)
}

// renderPanes refreshes viewport content, keeping the scroll position unless
// the view was already pinned to the bottom.
func (m *model) renderPanes() {
	prevRosterYOffset := m.roster.YOffset
	prevLogAtBottom := m.logView.AtBottom()
	prevLogYOffset := m.logView.YOffset

	m.roster.SetContent(m.renderRoster())
	m.roster.SetYOffset(prevRosterYOffset)

	m.logView.SetContent(m.renderLogs())
	if prevLogAtBottom {
		m.logView.GotoBottom()
	} else {
		m.logView.SetYOffset(prevLogYOffset)
	}
}

func (m *model) resize() {
	contentWidth := maxInt(40, m.width-4)
	contentHeight, logHeight := m.layout()

	m.search.Width = maxInt(20, contentWidth-8)
	m.forgeInput.Width = maxInt(20, contentWidth-14)
	m.injectName.Width = maxInt(20, contentWidth-16)
	m.injectImports.Width = maxInt(20, contentWidth-16)
	m.settingsURL.Width = maxInt(20, contentWidth-12)
	m.settingsKey.Width = maxInt(20, contentWidth-12)
	m.injectCode.SetWidth(maxInt(20, contentWidth-6))
	m.injectCode.SetHeight(maxInt(3, contentHeight-8))

	m.roster.Width = maxInt(20, contentWidth-4)
	m.roster.Height = maxInt(3, contentHeight-4)
	m.logView.Width = maxInt(20, contentWidth-4)
	m.logView.Height = maxInt(3, logHeight-2)
}
