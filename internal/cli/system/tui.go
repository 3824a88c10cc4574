package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/pibble/internal/cli"
	"github.com/julianstephens/pibble/internal/logger"
	"github.com/julianstephens/pibble/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if ctx.CacheErr != nil {
		logger.Warn("Cache unavailable, dashboard will not work offline", "error", ctx.CacheErr)
	}

	opts := tui.Options{}
	if ctx.Config != nil {
		opts.RefreshInterval = ctx.Config.RefreshInterval
		opts.RequestTimeout = 2 * ctx.Config.HTTPTimeout
	}

	p := tea.NewProgram(tui.NewModel(ctx.Service, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
