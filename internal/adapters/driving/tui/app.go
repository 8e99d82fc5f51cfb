package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/annotate/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/annotate/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/annotate/internal/adapters/driving/tui/views/migrate"
	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driving"
)

// eventBuffer is the number of progress events queued ahead of the renderer.
const eventBuffer = 256

// App runs one migration behind a progress view.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports *Ports
	ctx   context.Context
	req   driving.MigrationRequest

	view   *migrate.View
	events chan domain.MigrationEvent

	summary *domain.MigrationSummary
	err     error
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a migration app for the given request.
func NewApp(ports *Ports, req driving.MigrationRequest) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	return &App{
		ports:  ports,
		ctx:    context.Background(),
		req:    req,
		view:   migrate.NewView(styles.DefaultStyles()),
		events: make(chan domain.MigrationEvent, eventBuffer),
	}, nil
}

// WithContext sets the context passed to the migration.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model. It starts the migration.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.view.Init(), a.start(), a.waitForEvent())
}

// start runs the migration and reports its result once it returns.
func (a *App) start() tea.Cmd {
	return func() tea.Msg {
		summary, err := a.ports.Migration.Migrate(a.ctx, a.req, func(ev domain.MigrationEvent) {
			a.events <- ev
		})
		close(a.events)
		return messages.MigrationFinished{Summary: summary, Err: err}
	}
}

// waitForEvent delivers the next progress event, or nothing once the channel closes.
func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-a.events
		if !ok {
			return nil
		}
		return messages.MigrationProgress{Event: ev}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case messages.MigrationProgress:
		cmds = append(cmds, a.waitForEvent())
	case messages.MigrationFinished:
		a.summary = msg.Summary
		a.err = msg.Err
	}

	var cmd tea.Cmd
	a.view, cmd = a.view.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// View implements tea.Model.
func (a *App) View() string {
	return a.view.View()
}

// Run shows the view until the migration finishes and returns its outcome.
func (a *App) Run(opts ...tea.ProgramOption) (*domain.MigrationSummary, error) {
	p := tea.NewProgram(a, opts...)
	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("running migration view: %w", err)
	}
	return a.summary, a.err
}

// Summary returns the migration summary once finished.
func (a *App) Summary() *domain.MigrationSummary {
	return a.summary
}

// Err returns the error returned by the migration.
func (a *App) Err() error {
	return a.err
}
