// Package migrate provides the migration progress view for the TUI.
package migrate

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/annotate/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/annotate/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/annotate/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/annotate/internal/core/domain"
)

// maxWarnings bounds the warnings shown while the view is open.
const maxWarnings = 10

// View shows per-kind migration progress.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	spinner spinner.Model

	phase    string
	counts   map[domain.EntityKind]domain.KindCounts
	warnings []string

	showWarnings bool
	quitting     bool
	done         bool
	summary      *domain.MigrationSummary
	err          error

	width  int
	height int
	ready  bool
}

// NewView creates a new migration view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		keys:   keymap.DefaultKeyMap(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(s.Subtitle),
		),
		counts: make(map[domain.EntityKind]domain.KindCounts),
		width:  80,
		height: 24,
	}
}

// Init starts the spinner.
func (v *View) Init() tea.Cmd {
	return v.spinner.Tick
}

// Update handles messages for the migration view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case spinner.TickMsg:
		if v.done {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.MigrationProgress:
		v.apply(msg.Event)
		return v, nil

	case messages.MigrationFinished:
		v.done = true
		v.err = msg.Err
		v.summary = msg.Summary
		if msg.Summary != nil {
			for k, c := range msg.Summary.Counts {
				v.counts[k] = c
			}
		}
		return v, tea.Quit

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Warnings):
			v.showWarnings = !v.showWarnings
		case key.Matches(msg, v.keys.Quit):
			if v.done {
				return v, tea.Quit
			}
			// Entities already sent cannot be recalled.
			v.quitting = true
		}
	}

	return v, nil
}

func (v *View) apply(ev domain.MigrationEvent) {
	if ev.IsPhase() {
		v.phase = ev.Phase
		return
	}

	c := v.counts[ev.Kind]
	switch ev.Outcome {
	case domain.OutcomeSucceeded:
		c.Succeeded++
	case domain.OutcomeSkipped:
		c.Skipped++
	case domain.OutcomeFailed:
		c.Failed++
	}
	v.counts[ev.Kind] = c

	if ev.Outcome != domain.OutcomeSucceeded {
		line := fmt.Sprintf("%s %s %s", ev.Outcome, ev.Kind, ev.LocalID)
		if ev.Err != nil {
			line += ": " + ev.Err.Error()
		}
		v.warnings = append(v.warnings, line)
		if len(v.warnings) > maxWarnings {
			v.warnings = v.warnings[len(v.warnings)-maxWarnings:]
		}
	}
}

// View renders the migration progress.
func (v *View) View() string {
	var b strings.Builder

	switch {
	case v.done && v.err != nil:
		b.WriteString(v.styles.Error.Render("Migration failed: " + v.err.Error()))
		b.WriteString("\n")
		return b.String()
	case v.done:
		b.WriteString(v.styles.Title.Render("Migration finished"))
	default:
		b.WriteString(v.spinner.View())
		b.WriteString(" ")
		b.WriteString(v.styles.Title.Render("Migrating workspace"))
		if v.phase != "" {
			b.WriteString(v.styles.Muted.Render("  " + v.phase))
		}
	}
	b.WriteString("\n\n")

	for _, k := range domain.MigrationKinds() {
		c := v.counts[k]
		label := v.styles.Header.Render(fmt.Sprintf("%-18s", k))
		text := fmt.Sprintf("%d migrated  %d skipped  %d failed", c.Succeeded, c.Skipped, c.Failed)
		b.WriteString(label)
		b.WriteString(v.styles.Outcome(c, text))
		b.WriteString("\n")
	}

	if v.showWarnings && len(v.warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Recent warnings"))
		b.WriteString("\n")
		for _, w := range v.warnings {
			b.WriteString(v.styles.Warning.Render("  " + w))
			b.WriteString("\n")
		}
	}

	if v.quitting && !v.done {
		b.WriteString("\n")
		b.WriteString(v.styles.Warning.Render("Waiting for the migration to finish before exiting..."))
		b.WriteString("\n")
	}

	if !v.done {
		b.WriteString("\n")
		b.WriteString(v.styles.Help.Render(helpLine(v.keys.ShortHelp())))
	}
	b.WriteString("\n")

	return b.String()
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, fmt.Sprintf("[%s] %s", h.Key, h.Desc))
	}
	return strings.Join(parts, "  ")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Done reports whether the migration has finished.
func (v *View) Done() bool {
	return v.done
}

// Counts returns the outcome counts observed so far for a kind.
func (v *View) Counts(kind domain.EntityKind) domain.KindCounts {
	return v.counts[kind]
}
