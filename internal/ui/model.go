package ui

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0xlemi/hearnote/internal/pitch"
)

// Constants for UI behavior
const (
	// How long a note needs to be heard before it counts as sung
	noteStabilityThreshold = 300 * time.Millisecond

	// Within this many cents of the target a note is on pitch
	onPitchCents = 25.0

	tickInterval = 100 * time.Millisecond
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(2).
			PaddingRight(2).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	hitStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF00"))

	missStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500"))

	// Note colors
	noteColors = map[string]string{
		"C": "#E8D6B0", // Beige
		"D": "#A020F0", // Purple
		"E": "#FFFF00", // Yellow
		"F": "#FFA500", // Orange
		"G": "#00FF00", // Green
		"A": "#FF0000", // Red
		"B": "#0000FF", // Blue
	}

	naturals = []string{"C", "D", "E", "F", "G", "A", "B"}
)

func noteStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color(color)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#333333")).
		Padding(2, 4).
		MarginBottom(1)
}

// nextNatural returns the natural note above a natural note name
func nextNatural(note string) string {
	for i, n := range naturals {
		if n == note {
			return naturals[(i+1)%len(naturals)]
		}
	}
	return "C"
}

// TickMsg represents a timer tick
type TickMsg time.Time

// UpdateNoteMsg reports a freshly detected note
type UpdateNoteMsg pitch.Note

// ClearNoteMsg reports that nothing usable is being heard
type ClearNoteMsg struct{}

// UpdateAudioLevelMsg reports the input level
type UpdateAudioLevelMsg struct {
	RMS float64
	DB  float64
}

// Options configures the trainer view
type Options struct {
	Mode      pitch.Mode
	MinOctave int
	MaxOctave int
	Rand      *rand.Rand

	// SetMode is called when the user cycles the estimation mode
	SetMode func(pitch.Mode)

	// OnTarget is called with every new target note
	OnTarget func(pitch.Note)
}

// Model represents the UI state
type Model struct {
	opts Options

	target      pitch.Note
	current     *pitch.Note
	heardSince  time.Time
	hits        int
	attempts    int
	lastResult  string
	level       UpdateAudioLevelMsg
	updateTimer time.Time
}

// NewModel creates a new UI model with a first target note
func NewModel(opts Options) Model {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.MaxOctave < opts.MinOctave {
		opts.MaxOctave = opts.MinOctave
	}

	m := Model{opts: opts}
	m.nextTarget()
	return m
}

// Target returns the note the user is asked to sing
func (m Model) Target() pitch.Note {
	return m.target
}

// Mode returns the estimation mode shown in the view
func (m Model) Mode() pitch.Mode {
	return m.opts.Mode
}

func (m *Model) nextTarget() {
	m.target = m.pickTarget()
	if m.opts.OnTarget != nil {
		m.opts.OnTarget(m.target)
	}
}

func (m Model) pickTarget() pitch.Note {
	names := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	name := names[m.opts.Rand.Intn(len(names))]
	octave := m.opts.MinOctave + m.opts.Rand.Intn(m.opts.MaxOctave-m.opts.MinOctave+1)

	// Names come from the chromatic table, the lookup cannot fail
	freq, _ := pitch.NoteFrequency(name, octave)
	return pitch.Note{Name: name, Octave: octave, Frequency: freq}
}

// Init initializes the UI model
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update updates the UI model based on messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "n":
			m.nextTarget()
			m.lastResult = ""
		case "m":
			m.opts.Mode = (m.opts.Mode + 1) % 3
			if m.opts.SetMode != nil {
				m.opts.SetMode(m.opts.Mode)
			}
		}

	case TickMsg:
		m.updateTimer = time.Time(msg)
		return m, tick()

	case UpdateAudioLevelMsg:
		m.level = msg

	case ClearNoteMsg:
		m.current = nil
		m.heardSince = time.Time{}

	case UpdateNoteMsg:
		note := pitch.Note(msg)
		if m.current == nil || m.current.String() != note.String() {
			m.heardSince = time.Now()
		}
		m.current = &note

		if time.Since(m.heardSince) >= noteStabilityThreshold {
			m.judge(note)
		}
	}

	return m, nil
}

// judge scores a held note against the target and moves on after a hit
func (m *Model) judge(note pitch.Note) {
	m.attempts++
	off := pitch.CentsBetween(note.Frequency, m.target.Frequency)
	if math.Abs(off) <= onPitchCents {
		m.hits++
		m.lastResult = hitStyle.Render(fmt.Sprintf("Hit %s (%+.0f cents)", m.target, off))
		m.nextTarget()
	} else {
		m.lastResult = missStyle.Render(fmt.Sprintf("%s is %+.0f cents from %s", note, off, m.target))
	}
	m.heardSince = time.Now()
}

func renderNote(note pitch.Note) string {
	text := note.String()
	if !strings.HasSuffix(note.Name, "#") {
		return noteStyle(noteColors[note.Name]).Render(text)
	}

	// Sharps are split between the colors of their neighbours
	base := string(note.Name[0])
	left := noteStyle(noteColors[base]).
		BorderRight(false).
		PaddingRight(1)
	right := noteStyle(noteColors[nextNatural(base)]).
		BorderLeft(false).
		PaddingLeft(1)

	return lipgloss.JoinHorizontal(lipgloss.Top, left.Render(base), right.Render(text[1:]))
}

// View renders the UI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("HearNote - Sing the note you hear"))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf("Target: %.2f Hz", m.target.Frequency)))
	b.WriteString("\n")
	b.WriteString(renderNote(m.target))
	b.WriteString("\n")

	if m.current != nil {
		off := pitch.CentsBetween(m.current.Frequency, m.target.Frequency)
		b.WriteString(infoStyle.Render(fmt.Sprintf("Heard: %s | %.2f Hz | %+.1f cents | %+.0f cents from target",
			m.current, m.current.Frequency, m.current.Cents, off)))
	} else {
		b.WriteString(infoStyle.Render("Listening for audio..."))
	}
	b.WriteString("\n")

	if m.lastResult != "" {
		b.WriteString(m.lastResult)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Score: %d/%d | Mode: %s | Level: %.1f dB",
		m.hits, m.attempts, m.opts.Mode, m.level.DB)))
	b.WriteString("\n\n")
	b.WriteString(infoStyle.Render("n: new note | m: change mode | q: quit"))

	return b.String()
}
