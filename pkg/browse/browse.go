package browse

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/denoland-id/denoid/pkg/provider"
	"github.com/denoland-id/denoid/pkg/web"
)

// Options configures Run
type Options struct {
	Input     io.Reader
	Output    io.Writer
	AltScreen bool
}

// Run starts the browser and blocks until the user quits or ctx is done.
// It returns the module selected when the browser closed, if any.
func Run(ctx context.Context, modules []provider.Module, site *web.Site, opts Options) (provider.Module, bool, error) {
	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}

	final, err := tea.NewProgram(New(modules, site), programOpts...).Run()
	if err != nil {
		return provider.Module{}, false, err
	}
	model, ok := final.(Model)
	if !ok {
		return provider.Module{}, false, nil
	}
	mod, selected := model.Selected()
	return mod, selected, nil
}
