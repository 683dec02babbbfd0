package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"oficina/internal/connectivity"
)

const (
	ansiReset   = "\x1b[0m"
	ansiBold    = "\x1b[1m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[95m"
	ansiCyan    = "\x1b[96m"
	clearScreen = "\x1b[H\x1b[2J"
)

// Printer writes localized, optionally colored messages to a writer. It is
// safe for concurrent use; the connectivity monitor and the supervisor share
// one Printer.
type Printer struct {
	mu       sync.Mutex
	w        io.Writer
	colorize bool
	tag      language.Tag
	msg      *message.Printer
}

// New returns a Printer for w in the given language. Colors are enabled when
// w is a terminal.
func New(w io.Writer, lang string) *Printer {
	if w == nil {
		w = io.Discard
	}
	tag := ResolveLanguage(lang)
	return &Printer{
		w:        w,
		colorize: ShouldColorize(w),
		tag:      tag,
		msg:      message.NewPrinter(tag),
	}
}

// SetColor overrides terminal detection.
func (p *Printer) SetColor(enabled bool) {
	p.mu.Lock()
	p.colorize = enabled
	p.mu.Unlock()
}

// Colorize reports whether ANSI colors are emitted.
func (p *Printer) Colorize() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.colorize
}

// Language returns the resolved catalog language.
func (p *Printer) Language() language.Tag { return p.tag }

// T returns the localized text for key.
func (p *Printer) T(key string, args ...any) string {
	return p.msg.Sprintf(key, args...)
}

// ClearScreen clears a terminal. Non-terminal writers are left alone.
func (p *Printer) ClearScreen() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.colorize {
		_, _ = io.WriteString(p.w, clearScreen)
	}
}

// Banner prints the application title and loading message.
func (p *Printer) Banner() {
	p.line(ansiMagenta+ansiBold, p.T(msgTitle))
	p.blank()
	p.line(ansiCyan, p.T(msgLoading))
	p.blank()
}

// ConnectivityBanner prints the startup online/offline notice.
func (p *Printer) ConnectivityBanner(online bool) {
	if online {
		p.line(ansiGreen, p.T(msgOnline))
	} else {
		p.line(ansiYellow, p.T(msgOffline))
		p.line(ansiYellow, p.T(msgOfflineAdvice))
	}
	p.blank()
}

// ConnectivityChanged prints a transition notice. It implements
// connectivity.Observer.
func (p *Printer) ConnectivityChanged(_ context.Context, t connectivity.Transition) {
	p.blank()
	if t.Online {
		p.line(ansiGreen, p.T(msgRestored))
		return
	}
	p.line(ansiYellow, p.T(msgLost))
}

// ServerStarted announces the server URL.
func (p *Printer) ServerStarted(url string) {
	p.line(ansiGreen, p.T(msgServerStarted, url))
}

// ServerFailed reports a bind failure and the URL that will still be opened.
func (p *Printer) ServerFailed(err error, url string) {
	p.line(ansiRed, p.T(msgServerFailed, err))
	if url != "" {
		p.line(ansiYellow, p.T(msgServerDegraded, url))
	}
}

// ServerExited reports a server that stopped on its own.
func (p *Printer) ServerExited(err error) {
	p.line(ansiRed, p.T(msgServerExited, err))
}

// ShuttingDown prints the shutdown notice.
func (p *Printer) ShuttingDown() {
	p.blank()
	p.line(ansiCyan, p.T(msgShuttingDown))
}

// RuntimeMissing prints the actionable runtime hint.
func (p *Printer) RuntimeMissing(runtime, hint string) {
	p.line(ansiRed, p.T(msgRuntimeMissing, runtime, hint))
}

// Installing announces the dependency install step.
func (p *Printer) Installing() {
	p.line(ansiCyan, p.T(msgInstalling))
}

// InstallFailed reports a failed dependency install.
func (p *Printer) InstallFailed(err error) {
	p.line(ansiRed, p.T(msgInstallFailed, err))
}

// AlreadyRunning reports that another launcher holds the lock.
func (p *Printer) AlreadyRunning() {
	p.line(ansiYellow, p.T(msgAlreadyRunning))
}

// PackageCreated reports a finished bundle.
func (p *Printer) PackageCreated(name, dir string) {
	p.blank()
	p.line(ansiGreen, p.T(msgPackageCreated, name))
	p.line("", p.T(msgPackageLocation, dir))
}

// OnlineLabel returns the localized word for a connectivity state.
func (p *Printer) OnlineLabel(online bool) string {
	if online {
		return p.T(msgOnlineLabel)
	}
	return p.T(msgOfflineLabel)
}

// Section prints a localized section header.
func (p *Printer) Section(title string) {
	for _, line := range SectionHeader(p.T(title), p.Colorize()) {
		p.line("", line)
	}
}

// StatusSection prints the environment report header.
func (p *Printer) StatusSection() { p.Section(msgStatusHeader) }

// SessionsSection prints the session history header.
func (p *Printer) SessionsSection() { p.Section(msgHistorySessions) }

// TransitionsSection prints the connectivity history header.
func (p *Printer) TransitionsSection() { p.Section(msgHistoryChanges) }

// HistoryEmpty reports a journal without sessions.
func (p *Printer) HistoryEmpty() {
	p.line(ansiYellow, p.T(msgHistoryEmpty))
}

// Status prints one aligned status line.
func (p *Printer) Status(label string, kind StatusKind, detail string) {
	p.line("", StatusLine(label, kind, detail, p.Colorize()))
}

// SessionHeaders returns the localized session table columns.
func (p *Printer) SessionHeaders() []string {
	return p.translateAll(colStarted, colDuration, colMode, colURL, colOnline, colOutcome)
}

// TransitionHeaders returns the localized transition table columns.
func (p *Printer) TransitionHeaders() []string {
	return p.translateAll(colAt, colSession, colState)
}

func (p *Printer) translateAll(keys ...string) []string {
	out := make([]string, len(keys))
	for i, key := range keys {
		out[i] = p.T(key)
	}
	return out
}

// Println writes raw text followed by a newline.
func (p *Printer) Println(text string) {
	p.line("", text)
}

func (p *Printer) line(color, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.colorize && color != "" {
		fmt.Fprintln(p.w, color+text+ansiReset)
		return
	}
	fmt.Fprintln(p.w, text)
}

func (p *Printer) blank() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w)
}

// ShouldColorize reports whether writer is an interactive terminal.
func ShouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
