// Package ui is the terminal renderer of the catalog browser. It draws the
// controller's View and turns key presses into controller actions; it never
// decides navigation on its own.
package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/dpshade/prompt-catalog/internal/clipboard"
	apperrors "github.com/dpshade/prompt-catalog/internal/errors"
	"github.com/dpshade/prompt-catalog/internal/filter"
	"github.com/dpshade/prompt-catalog/internal/renderer"
	"github.com/dpshade/prompt-catalog/internal/viewstate"
)

// Toast texts
const (
	ToastPromptCopied    = "Prompt copied"
	ToastVariablesCopied = "Variables copied"
	ToastJSONCopied      = "JSON copied"
)

var DefaultToastDuration = 1400 * time.Millisecond

// createGlamourRenderer creates a glamour renderer with improved contrast handling
func createGlamourRenderer(wordWrap int) (*glamour.TermRenderer, error) {
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		return glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wordWrap),
		)
	}

	profile := termenv.ColorProfile()

	var styleOption glamour.TermRendererOption
	switch {
	case profile == termenv.Ascii:
		styleOption = glamour.WithStandardStyle("notty")
	case lipgloss.HasDarkBackground():
		styleOption = glamour.WithStandardStyle("dark")
	default:
		styleOption = glamour.WithStandardStyle("light")
	}

	return glamour.NewTermRenderer(
		styleOption,
		glamour.WithColorProfile(profile),
		glamour.WithWordWrap(wordWrap),
	)
}

// RenderMarkdown renders md for a terminal of the given width
func RenderMarkdown(md string, width int) (string, error) {
	if width < 40 {
		width = 80
	}
	r, err := createGlamourRenderer(width)
	if err != nil {
		return "", fmt.Errorf("failed to create glamour renderer: %w", err)
	}
	return r.Render(md)
}

// focus is which region receives key presses
type focus int

const (
	focusContent focus = iota
	focusSearch
	focusChips
)

// toastExpiredMsg clears the toast if no newer toast replaced it
type toastExpiredMsg struct {
	seq int
}

// copyResultMsg reports the outcome of a clipboard write
type copyResultMsg struct {
	message string
	err     error
}

// KeyMap defines all key bindings
type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	Enter         key.Binding
	Back          key.Binding
	Quit          key.Binding
	Help          key.Binding
	Search        key.Binding
	Chips         key.Binding
	Left          key.Binding
	Right         key.Binding
	All           key.Binding
	FavoritesOnly key.Binding
	Favorite      key.Binding
	Copy          key.Binding
	CopyVariables key.Binding
	CopyJSON      key.Binding
}

// ShortHelp returns keybindings to show in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns keybindings to show in the full help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Back},
		{k.Search, k.Chips, k.Left, k.Right, k.All},
		{k.FavoritesOnly, k.Favorite},
		{k.Copy, k.CopyVariables, k.CopyJSON},
		{k.Help, k.Quit},
	}
}

var keys = KeyMap{
	Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
	Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
	Enter:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "open")),
	Back:          key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "close")),
	Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Chips:         key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "categories")),
	Left:          key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous chip")),
	Right:         key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next chip")),
	All:           key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all categories")),
	FavoritesOnly: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorites only")),
	Favorite:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "star")),
	Copy:          key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy prompt")),
	CopyVariables: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "copy variables")),
	CopyJSON:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy as JSON")),
}

// Options configures a Model
type Options struct {
	Clipboard     clipboard.Writer
	ToastDuration time.Duration
	Logger        *zap.Logger
}

// Model represents the TUI application state
type Model struct {
	ctx    context.Context
	ctrl   *viewstate.Controller
	clip   clipboard.Writer
	logger *zap.Logger
	errs   *apperrors.TUIErrorHandler

	view viewstate.View

	// UI components
	recordList   list.Model
	categoryList list.Model
	search       textinput.Model
	viewport     viewport.Model
	help         help.Model
	keys         KeyMap

	focus     focus
	chipIndex int
	showHelp  bool

	glamourRenderer *glamour.TermRenderer
	detailID        string

	toast         string
	toastSeq      int
	toastDuration time.Duration

	width  int
	height int
}

// NewModel creates a new TUI model over a controller whose catalog is loaded
func NewModel(ctx context.Context, ctrl *viewstate.Controller, opts Options) (*Model, error) {
	initializeColors()

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	duration := opts.ToastDuration
	if duration <= 0 {
		duration = DefaultToastDuration
	}

	recordList := newList()
	categoryList := newList()

	search := textinput.New()
	search.Placeholder = "Search title, description, category or tag"
	search.Prompt = "🔎 "
	search.CharLimit = 200

	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	gr, err := createGlamourRenderer(76)
	if err != nil {
		return nil, fmt.Errorf("failed to create glamour renderer: %w", err)
	}

	m := &Model{
		ctx:             ctx,
		ctrl:            ctrl,
		clip:            opts.Clipboard,
		logger:          logger.Named("ui"),
		errs:            apperrors.NewTUIErrorHandler(false, logger),
		recordList:      recordList,
		categoryList:    categoryList,
		search:          search,
		viewport:        vp,
		help:            help.New(),
		keys:            keys,
		glamourRenderer: gr,
		toastDuration:   duration,
		width:           80,
		height:          24,
	}
	m.apply(ctrl.View(), true)
	return m, nil
}

func newList() list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 80, 16)
	l.Title = ""
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.errs.HandleError(msg.err)
			return m.showToast(m.errs.FormatError(msg.err))
		}
		return m.showToast(msg.message)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.focus {
		case focusSearch:
			return m.updateSearch(msg)
		case focusChips:
			return m.updateChips(msg)
		}
		if m.view.Detail != nil {
			return m.updateDetail(msg)
		}
		return m.updateContent(msg)
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "tab":
		m.focus = focusContent
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.view.Inputs.Search {
		m.apply(m.ctrl.SetSearch(m.search.Value()), true)
	}
	return m, cmd
}

func (m Model) updateChips(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	chips := len(m.view.Categories) + 1
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Chips):
		m.focus = focusContent
	case key.Matches(msg, m.keys.Left):
		m.chipIndex = (m.chipIndex - 1 + chips) % chips
	case key.Matches(msg, m.keys.Right):
		m.chipIndex = (m.chipIndex + 1) % chips
	case key.Matches(msg, m.keys.Enter):
		if m.chipIndex == 0 {
			m.apply(m.ctrl.ClearCategory(), true)
		} else {
			m.apply(m.ctrl.ClickCategory(m.view.Categories[m.chipIndex-1].Slug), true)
		}
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rec := m.view.Detail
	r := renderer.NewRenderer(rec)

	switch {
	case key.Matches(msg, m.keys.Back):
		m.apply(m.ctrl.Dismiss(), true)
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Favorite):
		m.apply(m.ctrl.ToggleFavorite(m.ctx, rec.ID), false)
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyCmd(r.RenderText(), ToastPromptCopied)
	case key.Matches(msg, m.keys.CopyVariables):
		return m, m.copyCmd(r.VariablesTemplate(), ToastVariablesCopied)
	case key.Matches(msg, m.keys.CopyJSON):
		text, err := r.RenderJSON()
		if err != nil {
			return m.showToast(err.Error())
		}
		return m, m.copyCmd(text, ToastJSONCopied)
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateContent(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Chips):
		m.focus = focusChips
		m.chipIndex = m.activeChip()
		return m, nil
	case key.Matches(msg, m.keys.All):
		m.apply(m.ctrl.ClearCategory(), true)
		return m, nil
	case key.Matches(msg, m.keys.FavoritesOnly):
		m.apply(m.ctrl.ToggleFavoritesOnly(), true)
		return m, nil
	}

	if m.view.Mode == filter.ModeHomeGrid {
		if key.Matches(msg, m.keys.Enter) {
			if item, ok := m.categoryList.SelectedItem().(categoryItem); ok {
				m.apply(m.ctrl.ClickCategory(item.category.Slug), true)
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.categoryList, cmd = m.categoryList.Update(msg)
		return m, cmd
	}

	item, selected := m.recordList.SelectedItem().(recordItem)
	switch {
	case key.Matches(msg, m.keys.Enter):
		if selected {
			m.apply(m.ctrl.OpenRecord(item.record.ID), false)
		}
		return m, nil
	case key.Matches(msg, m.keys.Favorite):
		if selected {
			m.apply(m.ctrl.ToggleFavorite(m.ctx, item.record.ID), false)
		}
		return m, nil
	case key.Matches(msg, m.keys.Back):
		return m, nil
	}

	var cmd tea.Cmd
	m.recordList, cmd = m.recordList.Update(msg)
	return m, cmd
}

// activeChip returns the chip index of the active category, 0 for "All"
func (m Model) activeChip() int {
	for i, c := range m.view.Categories {
		if c.Slug == m.view.Inputs.ActiveCategory {
			return i + 1
		}
	}
	return 0
}

// apply installs a new view. resetSelection moves list cursors to the top,
// which is wanted whenever the record set itself changed.
func (m *Model) apply(v viewstate.View, resetSelection bool) {
	m.view = v

	recordItems := make([]list.Item, len(v.Records))
	for i, rec := range v.Records {
		recordItems[i] = recordItem{record: rec, favorite: v.IsFavorite(rec.ID)}
	}
	m.recordList.SetItems(recordItems)

	categoryItems := make([]list.Item, len(v.Categories))
	for i, c := range v.Categories {
		categoryItems[i] = categoryItem{category: c}
	}
	m.categoryList.SetItems(categoryItems)

	if resetSelection {
		m.recordList.ResetSelected()
	}
	if m.search.Value() != v.Inputs.Search {
		m.search.SetValue(v.Inputs.Search)
	}

	if v.Detail == nil {
		m.detailID = ""
		return
	}
	if v.Detail.ID != m.detailID {
		m.detailID = v.Detail.ID
		m.renderDetail()
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	// title + chips + search + heading + help + toast
	const reserved = 12
	available := height - reserved
	if available < 5 {
		available = 5
	}
	m.recordList.SetSize(width-4, available)
	m.categoryList.SetSize(width-4, available)
	m.search.Width = width - 12

	vpWidth := width - 8
	if vpWidth < 40 {
		vpWidth = 40
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = height - 8
	if gr, err := createGlamourRenderer(vpWidth - 4); err == nil {
		m.glamourRenderer = gr
	}
	if m.view.Detail != nil {
		m.renderDetail()
	}
}

// renderDetail renders the detail markdown into the viewport
func (m *Model) renderDetail() {
	md := renderer.NewRenderer(m.view.Detail).RenderMarkdown()
	formatted, err := m.glamourRenderer.Render(md)
	if err != nil {
		m.logger.Warn("markdown render failed", zap.Error(err))
		formatted = renderer.Highlight(m.view.Detail.Prompt, func(p string) string {
			return StyleVariable.Render(p)
		})
	}
	m.viewport.SetContent(formatted)
	m.viewport.GotoTop()
}

func (m Model) showToast(text string) (Model, tea.Cmd) {
	m.toastSeq++
	m.toast = text
	seq := m.toastSeq
	return m, tea.Tick(m.toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (m Model) copyCmd(text, success string) tea.Cmd {
	w := m.clip
	return func() tea.Msg {
		if w == nil {
			return copyResultMsg{err: apperrors.ClipboardError(clipboard.NewClipboardError())}
		}
		msg, err := clipboard.CopyWithFallback(w, text, success)
		return copyResultMsg{message: msg, err: err}
	}
}

// View renders the current frame
func (m Model) View() string {
	var body string
	if m.view.Detail != nil {
		body = m.renderDetailView()
	} else {
		body = m.renderBrowseView()
	}

	if m.toast != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, CreateStatus(m.toast, "toast"))
	}
	return AddMainPadding(body)
}

func (m Model) renderBrowseView() string {
	elements := []string{
		CreateMainHeader("Prompt Catalog"),
		m.renderSearch(),
		m.renderChips(),
	}

	if m.view.Mode == filter.ModeHomeGrid {
		elements = append(elements, CreateSection("Categories"))
		if len(m.view.Categories) == 0 {
			elements = append(elements, StyleEmpty.Render("The catalog is empty"))
		} else {
			elements = append(elements, m.categoryList.View())
		}
	} else {
		heading := fmt.Sprintf("%s (%d)", m.view.Heading, len(m.view.Records))
		elements = append(elements, CreateSection(heading))
		if len(m.view.Records) == 0 {
			elements = append(elements, StyleEmpty.Render("Nothing matches the current filters"))
		} else {
			elements = append(elements, m.recordList.View())
		}
	}

	essential := []string{"enter open • / search • tab categories • f favorites • q quit"}
	additional := []string{"s star • a all categories • ←/→ move between chips"}
	if m.showHelp {
		elements = append(elements, m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		elements = append(elements, CreateContextualHelp(essential, additional, false, m.width))
	}

	return lipgloss.JoinVertical(lipgloss.Left, elements...)
}

func (m Model) renderSearch() string {
	style := StyleSearch
	if m.focus == focusSearch {
		style = StyleSearchFocused
	}
	favorites := "☆ favorites"
	if m.view.Inputs.FavoritesOnly {
		favorites = StyleFavorite.Render("★ favorites")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, style.Render(m.search.View()), " ", favorites)
}

func (m Model) renderChips() string {
	chips := []string{CreateChip("All", !m.view.Inputs.HasCategory(), m.focus == focusChips && m.chipIndex == 0)}
	for i, c := range m.view.Categories {
		pressed := c.Slug == m.view.Inputs.ActiveCategory
		focused := m.focus == focusChips && m.chipIndex == i+1
		chips = append(chips, CreateChip(c.Name, pressed, focused))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func (m Model) renderDetailView() string {
	rec := m.view.Detail

	marker := markerNotFavorite
	if m.view.IsFavorite(rec.ID) {
		marker = StyleFavorite.Render(markerFavorite)
	}

	meta := []string{rec.Category}
	if len(rec.Tags) > 0 {
		meta = append(meta, strings.Join(rec.Tags, ", "))
	}
	meta = append(meta, m.view.RouteString)

	top, bottom := CreateScrollIndicators(!m.viewport.AtTop(), !m.viewport.AtBottom())
	content := StyleContentContainer.Render(lipgloss.JoinVertical(lipgloss.Left, top, m.viewport.View(), bottom))

	helpText := CreateContextualHelp(
		[]string{"c copy prompt • v copy variables • Esc close"},
		[]string{"y copy JSON • s star • ↑/↓ scroll • q quit"},
		m.showHelp, m.width)

	return lipgloss.JoinVertical(lipgloss.Left,
		CreateMainHeader(marker+" "+rec.Title),
		CreateMetadata(strings.Join(meta, " • ")),
		content,
		helpText,
	)
}

// Run starts the program on the alternate screen
func Run(ctx context.Context, ctrl *viewstate.Controller, opts Options) error {
	m, err := NewModel(ctx, ctrl, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(*m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
