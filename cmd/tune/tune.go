// Package tune implements the tune command, an interactive terminal
// settings panel.
package tune

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tphakala/go-audiofilters/internal/app"
	"github.com/tphakala/go-audiofilters/internal/audiofilters"
	"github.com/tphakala/go-audiofilters/internal/logger"
	"github.com/tphakala/go-audiofilters/internal/ui"
)

// Command creates the tune command.
func Command(settings *app.Settings) *cobra.Command {
	var live bool
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "Edit the filter settings in the terminal",
		Long: "Open an interactive settings panel. Every edit is written to the settings file immediately; " +
			"equalizer layout changes are held until saved with 's'. With --live the edits also rebuild " +
			"a running pipeline.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(settings, live)
		},
	}

	cmd.Flags().BoolVar(&live, "live", false, "Attach a live pipeline that is rebuilt on every edit")
	cmd.Flags().IntVar(&settings.Channels, "channels", app.DefaultChannels, "Channel count of the live pipeline")
	cmd.Flags().IntVar(&settings.SampleRate, "rate", app.DefaultSampleRate, "Sample rate of the live pipeline")

	return cmd
}

// Run opens the panel and blocks until the user quits.
func Run(settings *app.Settings, live bool) error {
	rt, err := app.Bootstrap(settings)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	if live {
		if _, err := rt.StartPipeline(settings.Channels, settings.SampleRate); err != nil {
			logger.Global().Module("tune").Warn("live pipeline started with errors", logger.Error(err))
		}
	}

	gui, ok := rt.Bundle.CreateInstance(audiofilters.NameEqualizerGUI).(*audiofilters.EqualizerGUI)
	if !ok {
		return fmt.Errorf("bundle did not provide %q", audiofilters.NameEqualizerGUI)
	}

	p := tea.NewProgram(ui.NewModel(rt.SettingsPanel(), gui), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("settings panel: %w", err)
	}
	return nil
}
