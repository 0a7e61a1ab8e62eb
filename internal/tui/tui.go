// Package tui is the interactive terminal client: a campaign list, a campaign
// screen with board, list, calendar and analytics modes, and keyboard driven
// drag and drop for status changes and content scheduling.
package tui

import (
	"context"
	"time"

	"mops-cli/internal/config"
	"mops-cli/internal/controller"
	"mops-cli/internal/dnd"
	"mops-cli/internal/loader"
	"mops-cli/internal/notify"
	"mops-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type Options struct {
	API          controller.API
	Store        *store.Store
	Loader       *loader.Latest
	Notify       *notify.Notifier
	Logger       *zap.Logger
	Profile      string
	CalendarView dnd.CalendarView
	// State is the restored session; Run returns its updated copy.
	State config.UIState
	Now   func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Store == nil {
		o.Store = store.New()
	}
	if o.Loader == nil {
		o.Loader = loader.New()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Notify == nil {
		o.Notify = notify.New(notify.DefaultCapacity, o.Logger)
	}
	if o.CalendarView == "" {
		o.CalendarView = dnd.ViewWeek
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Run blocks until the user quits or ctx is canceled. In-flight requests are
// canceled on the way out.
func Run(ctx context.Context, opts Options) (config.UIState, error) {
	applyProfile(opts.Profile)
	applyGlyphPreference()
	applyThemePreference()
	applyColorProfilePreference()

	m := newAppModel(ctx, opts)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	m.loads.CancelAll()

	state := m.ui
	if fm, ok := final.(appModel); ok {
		state = fm.ui
		state.CalendarView = string(fm.cal.view)
	}
	return state, err
}
