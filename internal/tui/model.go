// Package tui provides the BubbleTea-based terminal host for a window stack.
// Terminal cells are mapped to points so mouse drags become pan gestures.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jmylchreest/winstack/internal/animation"
	"github.com/jmylchreest/winstack/internal/config"
	"github.com/jmylchreest/winstack/internal/dbus"
	"github.com/jmylchreest/winstack/internal/feed"
	"github.com/jmylchreest/winstack/internal/geometry"
	"github.com/jmylchreest/winstack/internal/gesture"
	"github.com/jmylchreest/winstack/internal/journal"
	"github.com/jmylchreest/winstack/internal/stack"
	"github.com/jmylchreest/winstack/internal/store"
	"github.com/jmylchreest/winstack/internal/theme"
)

// journalLimit bounds how many events the TUI keeps for copying.
const journalLimit = 1000

// boxCacheSize bounds how many rendered window boxes are kept between frames.
const boxCacheSize = 256

// maxFrameGap caps the time fed to the engine in one frame, so a stalled
// terminal does not make animations jump to their end.
const maxFrameGap = 250 * time.Millisecond

// Model is the main TUI model.
type Model struct {
	// Configuration
	cfg    *config.Config
	logger *slog.Logger

	// Stack
	engine     *animation.FrameEngine
	manager    *stack.Manager
	recognizer *gesture.Recognizer
	recorder   *journal.Recorder

	// Components
	help    help.Model
	keys    KeyMap
	palette theme.Palette
	boxes   *lru.Cache[boxKey, string]

	// State
	style    animation.Style
	pushed   int
	width    int
	height   int
	ready    bool
	showHelp bool

	// Frame loop
	ticking   bool
	lastFrame time.Time
	now       func() time.Time

	// Status message
	statusMsg string
	statusErr bool
}

// Option configures a Model.
type Option func(*options)

type options struct {
	archive   store.Persistence
	feed      *feed.Hub
	delegates []stack.Delegate
}

// WithArchive appends every non-pan event to p as it is recorded.
func WithArchive(p store.Persistence) Option {
	return func(o *options) {
		o.archive = p
	}
}

// WithFeed publishes every event to hub's websocket clients.
func WithFeed(hub *feed.Hub) Option {
	return func(o *options) {
		o.feed = hub
	}
}

// WithDelegate also sends every stack callback to d.
func WithDelegate(d stack.Delegate) Option {
	return func(o *options) {
		o.delegates = append(o.delegates, d)
	}
}

// New creates a new TUI model.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) Model {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	recorderOpts := []journal.RecorderOption{journal.WithLimit(journalLimit)}
	if o.archive != nil || o.feed != nil {
		archive, hub := o.archive, o.feed
		recorderOpts = append(recorderOpts, journal.WithSink(func(e journal.Event) {
			if hub != nil {
				hub.Publish(e)
			}
			if archive == nil || e.Kind == journal.KindPan {
				return
			}
			if err := archive.Append(e); err != nil {
				logger.Warn("failed to archive event", "seq", e.Seq, "error", err)
			}
		}))
	}

	engine := animation.NewFrameEngine(cfg.Animation.FrameRate)
	recorder := journal.NewRecorder(recorderOpts...)
	manager := stack.New(engine,
		stack.WithConfig(cfg),
		stack.WithLogger(logger),
		stack.WithDelegate(append(stack.Fanout{recorder, stack.NewLogDelegate(logger)}, o.delegates...)),
	)

	recognizer := gesture.NewRecognizer(func(p geometry.Point) gesture.Handler {
		if s := manager.SurfaceAt(p); s != nil {
			return s
		}
		return nil
	})
	recognizer.Slop = cfg.Gesture.PanSlop
	recognizer.VelocityWindow = cfg.Gesture.VelocityWindow.Duration()

	boxes, err := lru.New[boxKey, string](boxCacheSize)
	if err != nil {
		panic(err)
	}

	return Model{
		cfg:        cfg,
		logger:     logger,
		engine:     engine,
		manager:    manager,
		recognizer: recognizer,
		recorder:   recorder,
		help:       help.New(),
		keys:       DefaultKeyMap(),
		palette:    loadPalette(cfg.TUI.Theme, logger),
		boxes:      boxes,
		style:      animation.Spring,
		now:        time.Now,
	}
}

// loadPalette resolves name, falling back to the bundled default.
func loadPalette(name string, logger *slog.Logger) theme.Palette {
	t, err := theme.Load(name)
	if err != nil {
		logger.Warn("failed to load theme, using default", "theme", name, "error", err)
		return theme.NewDefaultTheme().Palette
	}
	logger.Debug("loaded theme", "theme", t.Name, "path", t.Path)
	return t.Palette
}

// Manager returns the stack driven by the TUI.
func (m Model) Manager() *stack.Manager {
	return m.manager
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return nil
}

type frameMsg struct {
	at time.Time
}

func frameTick(step time.Duration) tea.Cmd {
	return tea.Tick(step, func(t time.Time) tea.Msg {
		return frameMsg{at: t}
	})
}

type configReloadedMsg struct {
	cfg *config.Config
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// Remote requests from the session bus.
type (
	remotePushMsg struct {
		card  *journal.Card
		t     gesture.WindowType
		style animation.Style
	}
	remotePopMsg struct {
		animated bool
	}
	remoteOffsetMsg struct {
		y     float64
		style animation.Style
	}
)

type copyResultMsg struct {
	events int
	err    error
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		cmd := m.startFrames()
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.manager.Resize(m.screenSize())
		return m, nil

	case frameMsg:
		dt := min(max(msg.at.Sub(m.lastFrame), 0), maxFrameGap)
		m.lastFrame = msg.at
		m.engine.Advance(dt)
		if m.engine.Idle() {
			m.ticking = false
			return m, nil
		}
		return m, frameTick(m.engine.Step())

	case remotePushMsg:
		m.manager.PushWindow(msg.card, msg.t, stack.WithStyle(msg.style), stack.WithPredicate(journal.Unlocked))
		cmd := m.startFrames()
		return m, cmd

	case remotePopMsg:
		if m.manager.Count() == 0 {
			return m, setStatus("Remote pop: stack is empty", true)
		}
		m.manager.PopWindow(msg.animated)
		cmd := m.startFrames()
		return m, cmd

	case remoteOffsetMsg:
		if m.manager.Count() == 0 {
			return m, setStatus("Remote offset: stack is empty", true)
		}
		m.manager.SetTopOffset(msg.y, msg.style)
		cmd := m.startFrames()
		return m, cmd

	case configReloadedMsg:
		m.applyConfig(msg.cfg)
		return m, setStatus("config reloaded", false)

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, setStatus("Copy failed: "+msg.err.Error(), true)
		}
		return m, setStatus(fmt.Sprintf("Copied %s events to clipboard", humanize.Comma(int64(msg.events))), false)
	}

	return m, nil
}

func setStatus(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// startFrames schedules the frame loop if something is animating and the
// loop is not already running.
func (m *Model) startFrames() tea.Cmd {
	if m.ticking || m.engine.Idle() {
		return nil
	}
	m.ticking = true
	m.lastFrame = m.now()
	return frameTick(m.engine.Step())
}

func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.Animation.FrameRate != m.cfg.Animation.FrameRate {
		m.logger.Info("frame_rate change applies on restart", "frame_rate", cfg.Animation.FrameRate)
	}
	m.palette = loadPalette(cfg.TUI.Theme, m.logger)
	m.cfg = cfg
	m.manager.UpdateConfig(cfg)
	m.recognizer.Slop = cfg.Gesture.PanSlop
	m.recognizer.VelocityWindow = cfg.Gesture.VelocityWindow.Duration()
	m.manager.Resize(m.screenSize())
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help popup swallows everything but its own toggles.
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help), msg.Type == tea.KeyEsc:
			m.showHelp = false
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.PushDismissable):
		m.push(gesture.Dismissable, false)

	case key.Matches(msg, m.keys.PushOffsetable):
		m.push(gesture.Offsetable, false)

	case key.Matches(msg, m.keys.PushLocked):
		m.push(gesture.Dismissable, true)

	case key.Matches(msg, m.keys.Pop), key.Matches(msg, m.keys.PopInstant):
		if m.manager.Count() == 0 {
			return m, setStatus("Stack is empty", true)
		}
		m.manager.PopWindow(!key.Matches(msg, m.keys.PopInstant))

	case key.Matches(msg, m.keys.Offset):
		if m.manager.Count() == 0 {
			return m, setStatus("Stack is empty", true)
		}
		y := m.cfg.Gesture.OffsetTargetFraction * m.manager.Screen().Height
		m.manager.SetTopOffset(y, m.style)

	case key.Matches(msg, m.keys.Restore):
		if m.manager.Count() == 0 {
			return m, setStatus("Stack is empty", true)
		}
		m.manager.SetTopOffset(0, m.style)

	case key.Matches(msg, m.keys.CycleStyle):
		m.style = nextStyle(m.style)
		cmd = setStatus("Transition style: "+m.style.String(), false)

	case key.Matches(msg, m.keys.Copy):
		cmd = m.copyJournal()

	case key.Matches(msg, m.keys.Clear):
		m.recorder.Reset()
		cmd = setStatus("Journal cleared", false)
	}

	frames := m.startFrames()
	return m, tea.Batch(cmd, frames)
}

func nextStyle(s animation.Style) animation.Style {
	switch s {
	case animation.Spring:
		return animation.Linear
	case animation.Linear:
		return animation.None
	default:
		return animation.Spring
	}
}

func (m *Model) push(t gesture.WindowType, locked bool) {
	m.pushed++
	card := journal.NewCard(fmt.Sprintf("Window %d", m.pushed), cardBody(t, locked))
	card.Locked = locked
	m.manager.PushWindow(card, t, stack.WithStyle(m.style), stack.WithPredicate(journal.Unlocked))
}

func cardBody(t gesture.WindowType, locked bool) string {
	switch {
	case locked:
		return "Locked: pans are refused. Press x to pop."
	case t == gesture.Offsetable:
		return "Fling down to lower, fling up to raise. Click while lowered to restore."
	default:
		return "Fling down from the top edge to dismiss."
	}
}

func (m Model) copyJournal() tea.Cmd {
	events := m.recorder.Events()
	command := m.cfg.TUI.ClipboardCommand
	return func() tea.Msg {
		text, err := journalJSON(events)
		if err == nil {
			err = copyText(text, command)
		}
		return copyResultMsg{events: len(events), err: err}
	}
}

// handleMouse feeds left-button mouse reports to the recognizer.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	sample := gesture.Sample{
		Position: m.toPoint(msg.X, msg.Y),
		At:       m.now(),
	}
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		sample.Action = gesture.ActionDown
	case msg.Action == tea.MouseActionMotion && m.recognizer.Tracking():
		sample.Action = gesture.ActionMove
	case msg.Action == tea.MouseActionRelease && m.recognizer.Tracking():
		sample.Action = gesture.ActionUp
	default:
		return
	}
	m.recognizer.Feed(sample)
}

// toPoint maps a terminal cell to the point at its centre.
func (m Model) toPoint(x, y int) geometry.Point {
	return geometry.Point{
		X: (float64(x) + 0.5) * m.cfg.TUI.CellWidth,
		Y: (float64(y) + 0.5) * m.cfg.TUI.CellHeight,
	}
}

// toCell maps a point to the cell containing it.
func (m Model) toCell(p geometry.Point) (int, int) {
	return int(math.Round(p.X / m.cfg.TUI.CellWidth)), int(math.Round(p.Y / m.cfg.TUI.CellHeight))
}

func (m Model) footerRows() int {
	if m.cfg.TUI.ShowHelp {
		return 2
	}
	return 1
}

func (m Model) canvasRows() int {
	return max(m.height-m.footerRows(), 1)
}

// screenSize is the canvas in points.
func (m Model) screenSize() geometry.Size {
	return geometry.Size{
		Width:  float64(m.width) * m.cfg.TUI.CellWidth,
		Height: float64(m.canvasRows()) * m.cfg.TUI.CellHeight,
	}
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	rows := m.canvasRows()
	canvas := m.renderStack(rows)
	if m.showHelp {
		canvas = renderPopup(canvas, m.viewHelp(), m.palette.Accent, m.width, rows)
	}

	s := canvas + "\n" + m.statusLine()
	if m.cfg.TUI.ShowHelp {
		s += "\n" + m.help.ShortHelpView(m.keys.ShortHelp())
	}
	return s
}

func (m Model) renderStack(rows int) string {
	windows := m.manager.Windows()
	if len(windows) == 0 {
		hint := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Muted)).
			Render("Empty stack. Press d or o to push a window.")
		return lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center, hint)
	}

	canvas := fitCanvas("", m.width, rows)
	for i, s := range windows {
		x, y := m.toCell(s.Frame().Origin)
		canvas = overlayAt(canvas, m.renderSurface(s, i, len(windows)), x, y, m.width, rows)
	}
	return canvas
}

func (m Model) renderSurface(s *stack.Surface, depth, total int) string {
	f := s.Frame()
	w := max(int(f.Size.Width/m.cfg.TUI.CellWidth), 4)
	h := max(int(f.Size.Height/m.cfg.TUI.CellHeight), 3)

	title, body, locked := cardText(s.Content())
	top := depth == total-1

	border := lipgloss.Color(m.palette.Accent)
	switch {
	case locked:
		border = lipgloss.Color(m.palette.Locked)
	case s.Panning():
		border = lipgloss.Color(m.palette.Dragging)
	case s.Type() == gesture.Offsetable:
		border = lipgloss.Color(m.palette.Offsetable)
	}

	titleStyle := lipgloss.NewStyle().Bold(top)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Muted))

	id := s.ID()
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	lines := []string{
		titleStyle.Render(title),
		labelStyle.Render(fmt.Sprintf("%s · %s of %s · %s", s.Type(), humanize.Ordinal(depth+1), humanize.Comma(int64(total)), id)),
		labelStyle.Render(fmt.Sprintf("pushed %s · offset %s", humanize.Time(s.CreatedAt()), humanize.FtoaWithDigits(s.OffsetY(), 1))),
		"",
		body,
	}

	k := boxKey{text: strings.Join(lines, "\n"), border: string(border), width: w, height: h}
	if box, ok := m.boxes.Get(k); ok {
		return box
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(w - 2).
		Height(h - 2).
		MaxWidth(w).
		MaxHeight(h).
		Render(k.text)
	m.boxes.Add(k, box)
	return box
}

// boxKey identifies a rendered window box. Moving a window changes only where
// it is drawn, so animation frames hit the cache.
type boxKey struct {
	text          string
	border        string
	width, height int
}

func cardText(content any) (title, body string, locked bool) {
	switch c := content.(type) {
	case *journal.Card:
		return c.Title, c.Body, c.Locked
	case fmt.Stringer:
		return c.String(), "", false
	default:
		return fmt.Sprint(content), "", false
	}
}

func (m Model) statusLine() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Text))
	if m.statusMsg != "" {
		if m.statusErr {
			style = style.Foreground(lipgloss.Color(m.palette.Error))
		}
		return style.Render(ansi.Truncate(m.statusMsg, m.width, "…"))
	}

	parts := []string{
		fmt.Sprintf("%s windows", humanize.Comma(int64(m.manager.Count()))),
		"style " + m.style.String(),
		fmt.Sprintf("%s events", humanize.Comma(int64(m.recorder.Len()))),
	}
	if last, ok := m.recorder.Last(); ok {
		parts = append(parts, fmt.Sprintf("last %s %s", last.Kind, last.Title))
	}
	return style.Render(ansi.Truncate(strings.Join(parts, " · "), m.width, "…"))
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.palette.Accent)).
		MarginBottom(1)

	s := titleStyle.Render("Keyboard & Mouse") + "\n\n"
	s += m.help.FullHelpView(m.keys.FullHelp()) + "\n\n"
	s += "Drag the top window down from its top edge.\n"
	s += "Fast flings dismiss or lower it; slow drags settle by position.\n\n"
	s += lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Muted)).Render("Press ? or esc to return")
	return s
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config      *config.Config
	Logger      *slog.Logger
	ConfigPath  string // Path to watch for changes (empty = no watching)
	JournalPath string // JSONL archive for events (empty = not archived)
	DBus        bool   // Export the stack on the session bus
	FeedAddr    string // Serve a websocket event feed here (empty = off)
	FeedPans    bool   // Include pans in the feed
}

// programController forwards bus requests into the program's update loop.
type programController struct {
	p *tea.Program
}

func (c *programController) Push(card *journal.Card, t gesture.WindowType, style animation.Style) {
	c.p.Send(remotePushMsg{card: card, t: t, style: style})
}

func (c *programController) Pop(animated bool) {
	c.p.Send(remotePopMsg{animated: animated})
}

func (c *programController) SetOffset(y float64, style animation.Style) {
	c.p.Send(remoteOffsetMsg{y: y, style: style})
}

// Run starts the TUI with the given options.
func Run(ctx context.Context, opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	var modelOpts []Option
	if opts.JournalPath != "" {
		archive, err := store.NewJSONLPersistence(opts.JournalPath)
		if err != nil {
			return fmt.Errorf("failed to open journal archive: %w", err)
		}
		defer archive.Close()
		modelOpts = append(modelOpts, WithArchive(archive))
	}

	if opts.FeedAddr != "" {
		var hubOpts []feed.Option
		if opts.FeedPans {
			hubOpts = append(hubOpts, feed.WithPans())
		}
		hub := feed.NewHub(logger, hubOpts...)
		stop, err := serveFeed(opts.FeedAddr, hub, logger)
		if err != nil {
			return err
		}
		defer stop()
		modelOpts = append(modelOpts, WithFeed(hub))
	}

	var server *dbus.StackServer
	ctrl := &programController{}
	if opts.DBus {
		server = dbus.NewStackServer(ctrl, logger)
		modelOpts = append(modelOpts, WithDelegate(server))
	}

	m := New(cfg, logger, modelOpts...)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	ctrl.p = p

	if server != nil {
		if err := server.Start(); err != nil {
			return fmt.Errorf("failed to start D-Bus server: %w", err)
		}
		defer server.Stop() //nolint:errcheck
	}

	// Start config watcher if a path was provided
	if opts.ConfigPath != "" {
		watcher := config.NewWatcher(opts.ConfigPath, logger)
		watcher.SetReloadCallback(func(cfg *config.Config) {
			p.Send(configReloadedMsg{cfg: cfg})
		})
		watcher.SetErrorCallback(func(err error) {
			p.Send(statusMsg{text: "Config not applied: " + err.Error(), isErr: true})
		})
		if err := watcher.Start(ctx, cfg); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	_, err := p.Run()
	return err
}

// serveFeed listens on addr and serves hub at /events. The returned func
// disconnects clients and shuts the server down.
func serveFeed(addr string, hub *feed.Hub, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for event feed: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/events", hub)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("event feed stopped", "error", err)
		}
	}()
	logger.Info("serving event feed", "addr", ln.Addr().String(), "path", "/events")

	return func() {
		hub.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
