package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/tmplc/lang"
	"github.com/ardnew/tmplc/log"
	"github.com/ardnew/tmplc/vars"
)

// varsEditedMsg is sent when variable editing completes successfully.
type varsEditedMsg struct{ values map[string]any }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a load
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-load error.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

// Engine names accepted by the engine command.
const (
	engineInterp = "interp"
	engineExpr   = "expr"
)

// previewWidth bounds the value column of the vars command.
const previewWidth = 40

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help                 Print this cruft
  vars                 List variables
  set NAME=EXPR        Set a variable (EXPR is an expr-lang literal)
  unset NAME           Remove a variable
  tokens [TEMPLATE]    Show the tokens of TEMPLATE or the last template
  ast [TEMPLATE]       Show the syntax tree
  emit [TEMPLATE]      Show the expr-lang program
  engine [interp|expr] Show or select the evaluator
  edit                 Edit variables as YAML in $EDITOR
  clear                Clear screen
  quit                 Exit REPL

Usage:
  Type a template to render it; the enclosing backticks are optional
  Completions appear inside formulas (keywords) and GET('...') (variables)
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to navigate command history
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	store        *vars.Store
	logger       log.Logger
	history      *History
	historyIdx   int
	engine       string
	last         string        // most recently evaluated template
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	altNav       *altNavState  // non-nil during Alt+Up/Down navigation
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	saved        [2]savedInput // per-mode input preserved across toggles
}

// altNavState is the input restored when Alt navigation runs off either end
// of the command history.
type altNavState struct {
	mode   inputMode
	text   string
	cursor int
}

type savedInput struct {
	text   string
	cursor int
}

// Run starts the REPL over store. History is kept in cacheDir; engine
// selects the initial evaluator.
func Run(
	ctx context.Context,
	store *vars.Store,
	cacheDir string,
	engine string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("variables", store.Len()),
		slog.String("engine", engine),
	)

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, store, history, engine, logger)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	store *vars.Store,
	history *History,
	engine string,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	if engine != engineExpr {
		engine = engineInterp
	}

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		store:      store,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		engine:     engine,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case varsEditedMsg:
		m.store.Replace(msg.values)
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("variables", m.store.Len()),
		)

		return m, tea.Println(resultStyle.Render("✔ — variables updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("🗴 — edit cancelled."))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(
			errorStyle.Render("🗴 — error: " + msg.err.Error()),
		)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	return b.String()
}

// statusLine is the line below the input: history position, a hint, the
// signature of the enclosing call, or the completion bar.
func (m model) statusLine() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type a template or press Esc for commands")
		}

		return hintStyle.Render("Type a command or help (press Esc to return)")
	}

	if len(m.matches) == 0 && m.mode == modeEval {
		call := detectFunctionCall(input, m.input.Position())
		if call.inCall {
			return renderSignatureHint(call.name, call.argIndex)
		}
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.altNav = nil
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		m.altNav = nil

		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.historyCtrl(-1), nil
		}

		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		if msg.Alt {
			return m.historyCtrl(1), nil
		}

		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		m.altNav = nil

		return m.switchToMode(1 - m.mode), nil
	}

	var cmd tea.Cmd

	autoConfirm := msg.Type == tea.KeyRunes

	if !autoConfirm || msg.String() == " " {
		m.tabActive = false
	}

	if !autoConfirm {
		m.altNav = nil
	}

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, autoConfirm)

	return m, cmd
}

// cycle moves the tab selection by dir, completing the word in place.
func (m model) cycle(dir int) model {
	if len(m.matches) == 0 {
		return m
	}

	// Single candidate: complete and confirm immediately.
	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	n := len(m.matches)

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + dir + n) % n
	case dir > 0:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0
	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = n - 1
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion when exactly one
// candidate remains and the typed word already equals it.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if candidate := m.matches[0].Str; m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.saved = [2]savedInput{}
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.DebugContext(m.ctxFunc(), "history write failed", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval", slog.String("input", input))

	echo := tea.Println(promptStyle.Render(evalPrompt) + inputStyle.Render(input))

	out, err := m.render(input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(formatError(m.last, err)))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

// templateOf encloses input in backticks unless it already starts with one.
func templateOf(input string) string {
	if strings.HasPrefix(input, "`") {
		return input
	}

	return "`" + input + "`"
}

// render compiles input as a template and evaluates it with the selected
// engine. The compiled source is remembered for the inspection commands.
func (m *model) render(input string) (string, error) {
	src := templateOf(input)
	m.last = src

	tmpl, err := lang.Compile(m.ctxFunc(), src, lang.WithLogger(m.logger))
	if err != nil {
		return "", err
	}

	if m.engine == engineExpr {
		return tmpl.EvaluateExpr(m.store)
	}

	return tmpl.Evaluate(m.store)
}

// formatError renders err with a caret under its column in src, if any.
func formatError(src string, err error) string {
	msg := errorStyle.Render("error: " + err.Error())

	if snippet := lang.Snippet(src, err); snippet != "" {
		msg += "\n" + hintStyle.Render(strings.TrimSuffix(snippet, "\n"))
	}

	return msg
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", name),
		slog.String("arg", arg),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.editVars())
	}

	out, err := m.runCommand(name, arg)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(formatError(m.last, err)))
	}

	return m, tea.Sequence(echo, tea.Println(out))
}

// runCommand executes the control commands that only produce text.
func (m *model) runCommand(name, arg string) (string, error) {
	switch name {
	case "h", "help":
		return helpMessage(), nil

	case "vars":
		return m.listVars(), nil

	case "set":
		if err := m.store.Assign(arg); err != nil {
			return "", err
		}

		n, _, _ := strings.Cut(arg, "=")
		n = strings.TrimSpace(n)
		v, _ := m.store.Lookup(n)

		return resultStyle.Render(n + " = " + preview(v)), nil

	case "unset":
		if !m.store.Delete(arg) {
			return "", vars.ErrUndefined.Wrap(errors.New(strconv.Quote(arg)))
		}

		return resultStyle.Render("unset " + arg), nil

	case "engine":
		switch arg {
		case "":
		case engineInterp, engineExpr:
			m.engine = arg
		default:
			return "", fmt.Errorf("unknown engine %q (want %s or %s)", arg, engineInterp, engineExpr)
		}

		return resultStyle.Render("engine: " + m.engine), nil

	case "tokens", "ast", "emit":
		return m.inspect(name, arg)

	default:
		return "", fmt.Errorf("unknown command: %s (try 'help')", name)
	}
}

// inspect prints the tokens, tree or expr-lang program of arg, or of the
// last template when arg is empty.
func (m *model) inspect(what, arg string) (string, error) {
	if arg != "" {
		m.last = templateOf(arg)
	}

	if m.last == "" {
		return "", ErrNoTemplate
	}

	var b strings.Builder

	ctx := m.ctxFunc()

	if what == "tokens" {
		tokens, err := lang.Tokenize(m.last)
		if err != nil {
			return "", err
		}

		if err := lang.FormatTokens(&b, tokens); err != nil {
			return "", err
		}

		return strings.TrimSuffix(b.String(), "\n"), nil
	}

	tmpl, err := lang.Compile(ctx, m.last, lang.WithLogger(m.logger))
	if err != nil {
		return "", err
	}

	if what == "emit" {
		return tmpl.Expr(), nil
	}

	file := tmpl.AST()
	if file == nil {
		return "", ErrNoTemplate
	}

	if err := file.FormatYAML(ctx, &b, 2); err != nil {
		return "", err
	}

	return strings.TrimSuffix(b.String(), "\n"), nil
}

func (m model) listVars() string {
	names := m.store.Names()
	if len(names) == 0 {
		return hintStyle.Render("  (no variables)")
	}

	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}

	var b strings.Builder

	for _, name := range names {
		v, _ := m.store.Lookup(name)
		fmt.Fprintf(&b, "  %-*s %s\n", width, name, hintStyle.Render(preview(v)))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// preview renders v as it would appear in a template, shortened to
// previewWidth, with its Go type.
func preview(v any) string {
	if v == nil {
		return "(nil)"
	}

	return fmt.Sprintf("%s (%T)", ansi.Truncate(lang.Text(v), previewWidth, "..."), v)
}

func (m model) editVars() tea.Cmd {
	cmd := &editVarsCommand{
		values:  m.store.Values(),
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if cmd.edited == nil {
			return editCancelledMsg{}
		}

		return varsEditedMsg{values: cmd.edited}
	})
}

// historyStep moves through history by dir. Unless sameMode is set, the
// input mode follows the recalled entry.
func (m model) historyStep(dir int, sameMode bool) model {
	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		entry, err := m.history.Entry(i)
		if err != nil || (sameMode && entry.Mode != m.mode) {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.setInput(entry.Line, len(entry.Line))

		return m
	}

	// Moving past the newest entry returns to an empty line.
	if dir > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.setInput("", 0)
	}

	return m
}

// historyCtrl moves through command history by dir, switching to command
// mode on the first step and restoring the original input when it runs off
// either end.
func (m model) historyCtrl(dir int) model {
	if m.altNav == nil {
		m.altNav = &altNavState{
			mode:   m.mode,
			text:   m.input.Value(),
			cursor: m.input.Position(),
		}

		if m.mode != modeCtrl {
			m = m.switchToMode(modeCtrl)
		}
	}

	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		if entry, err := m.history.Entry(i); err == nil && entry.Mode == modeCtrl {
			m.historyIdx = i
			m.setInput(entry.Line, len(entry.Line))

			return m
		}
	}

	orig := m.altNav
	m.altNav = nil

	if orig.mode != m.mode {
		m = m.switchToMode(orig.mode)
	}

	m.historyIdx = m.history.Len()
	m.setInput(orig.text, orig.cursor)

	return m
}

func (m *model) setInput(text string, cursor int) {
	m.input.SetValue(text)
	m.input.SetCursor(cursor)
	refreshMatches(m, false)
}

// switchToMode switches to the specified mode, preserving each mode's input.
func (m model) switchToMode(mode inputMode) model {
	m.saved[m.mode] = savedInput{m.input.Value(), m.input.Position()}
	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	}

	m.setInput(m.saved[mode].text, m.saved[mode].cursor)

	return m
}
