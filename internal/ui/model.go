// Package ui implements the interactive terminal settings panel.
package ui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tphakala/go-audiofilters/internal/audiofilters"
	"github.com/tphakala/go-audiofilters/internal/conf"
)

// Step sizes for the coarse numeric fields.
const (
	echoDelayStep = 10
	minFreqStep   = 10
	maxFreqStep   = 1000
)

// row is one editable line of the panel. adjust receives -1 or +1; toggles
// ignore the sign.
type row struct {
	group  string
	label  string
	value  func(m *Model) string
	adjust func(m *Model, delta int) error
	// disabled reports rows that are shown but not editable.
	disabled func(m *Model) bool
}

// Model is the bubbletea model of the settings panel.
type Model struct {
	panel *audiofilters.Panel
	gui   *audiofilters.EqualizerGUI

	state audiofilters.PanelState
	eq    conf.EqualizerConfig
	rows  []row

	Cursor int
	Status string
	Err    error
	Width  int
	Height int
	Done   bool
}

// NewModel creates a panel model over the settings panel and band editor.
func NewModel(panel *audiofilters.Panel, gui *audiofilters.EqualizerGUI) Model {
	m := Model{panel: panel, gui: gui}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.Done = true
		return m, tea.Quit

	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.rows)-1 {
			m.Cursor++
		}
	case "left", "h", "-":
		m.apply(-1)
	case "right", "l", "+", " ", "enter":
		m.apply(1)

	case "s":
		m.run("equalizer layout saved", m.panel.SaveSettings)
	case "r":
		m.run("equalizer bands reset", m.gui.Reset)
	}
	return m, nil
}

// apply adjusts the selected row and reloads the panel state.
func (m *Model) apply(delta int) {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return
	}
	r := m.rows[m.Cursor]
	if r.disabled != nil && r.disabled(m) {
		m.Status = r.label + " is not editable"
		m.Err = nil
		return
	}
	m.run(r.label+" updated", func() error { return r.adjust(m, delta) })
}

func (m *Model) run(status string, fn func() error) {
	err := fn()
	m.refresh()
	m.Err = err
	if err != nil {
		m.Status = ""
		return
	}
	m.Status = status
}

// refresh reloads the settings and rebuilds the row list, whose length
// follows the committed band count.
func (m *Model) refresh() {
	m.state = m.panel.State()
	m.eq = m.gui.Config()
	m.rows = buildRows(m.eq.Count)
	if m.Cursor >= len(m.rows) {
		m.Cursor = len(m.rows) - 1
	}
}

// State returns the last loaded panel state.
func (m Model) State() audiofilters.PanelState {
	return m.state
}

// Selected returns the label of the selected row.
func (m Model) Selected() string {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return ""
	}
	return m.rows[m.Cursor].label
}

// stage returns the equalizer layout being edited: the pending one if any,
// otherwise the committed one.
func (m *Model) stage() audiofilters.EqualizerStage {
	if m.state.EqualizerPending != nil {
		return *m.state.EqualizerPending
	}
	return m.state.Equalizer
}

func step(v, delta, size int, r conf.IntRange) int {
	return min(max(v+delta*size, r.Min), r.Max)
}

func slider(v, delta int) int {
	return min(max(v+delta, conf.SliderMin), conf.SliderMax)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func buildRows(bands int) []row {
	rows := []row{
		{
			group: "Crossfeed", label: "BS2B",
			value:  func(m *Model) string { return onOff(m.state.BS2B) },
			adjust: func(m *Model, _ int) error { return m.panel.ToggleBS2B(!m.state.BS2B) },
		},
		{
			group: "Voice removal", label: "Voice removal",
			value:  func(m *Model) string { return onOff(m.state.VoiceRemoval) },
			adjust: func(m *Model, _ int) error { return m.panel.ToggleVoiceRemoval(!m.state.VoiceRemoval) },
		},
		{
			group: "Phase reverse", label: "Phase reverse",
			value: func(m *Model) string { return onOff(m.state.PhaseReverse.Enabled) },
			adjust: func(m *Model, _ int) error {
				p := m.state.PhaseReverse
				return m.panel.SetPhaseReverse(!p.Enabled, p.ReverseRight)
			},
		},
		{
			group: "Phase reverse", label: "Channel",
			value: func(m *Model) string {
				if m.state.PhaseReverse.ReverseRight {
					return "right"
				}
				return "left"
			},
			adjust: func(m *Model, _ int) error {
				p := m.state.PhaseReverse
				return m.panel.SetPhaseReverse(p.Enabled, !p.ReverseRight)
			},
			disabled: func(m *Model) bool { return !m.state.ReverseRightEditable },
		},
	}

	echo := func(label string, value func(e audiofilters.EchoEdit) string, edit func(e *audiofilters.EchoEdit, delta int)) row {
		return row{
			group: "Echo", label: label,
			value: func(m *Model) string { return value(m.state.Echo) },
			adjust: func(m *Model, delta int) error {
				e := m.state.Echo
				edit(&e, delta)
				return m.panel.EditEcho(e)
			},
		}
	}
	rows = append(rows,
		echo("Echo",
			func(e audiofilters.EchoEdit) string { return onOff(e.Enabled) },
			func(e *audiofilters.EchoEdit, _ int) { e.Enabled = !e.Enabled }),
		echo("Delay",
			func(e audiofilters.EchoEdit) string { return fmt.Sprintf("%d ms", e.Delay) },
			func(e *audiofilters.EchoEdit, d int) { e.Delay = step(e.Delay, d, echoDelayStep, conf.EchoDelayRange) }),
		echo("Volume",
			func(e audiofilters.EchoEdit) string { return fmt.Sprintf("%d%%", e.Volume) },
			func(e *audiofilters.EchoEdit, d int) { e.Volume = step(e.Volume, d, 1, conf.EchoVolumeRange) }),
		echo("Feedback",
			func(e audiofilters.EchoEdit) string { return fmt.Sprintf("%d%%", e.Feedback) },
			func(e *audiofilters.EchoEdit, d int) { e.Feedback = step(e.Feedback, d, 1, conf.EchoFeedbackRange) }),
		echo("Surround",
			func(e audiofilters.EchoEdit) string { return onOff(e.Surround) },
			func(e *audiofilters.EchoEdit, _ int) { e.Surround = !e.Surround }),
	)

	comp := func(label string, value func(s audiofilters.CompressorSliders) string, edit func(s *audiofilters.CompressorSliders, delta int)) row {
		return row{
			group: "Compressor", label: label,
			value: func(m *Model) string { return value(m.state.Compressor) },
			adjust: func(m *Model, delta int) error {
				s := m.state.Compressor
				edit(&s, delta)
				return m.panel.EditCompressor(s)
			},
		}
	}
	rows = append(rows,
		comp("Compressor",
			func(s audiofilters.CompressorSliders) string { return onOff(s.Enabled) },
			func(s *audiofilters.CompressorSliders, _ int) { s.Enabled = !s.Enabled }),
		comp("Peak",
			func(s audiofilters.CompressorSliders) string { return fmt.Sprintf("%d%%", conf.PeakPercentFromSlider(s.PeakPercent)) },
			func(s *audiofilters.CompressorSliders, d int) { s.PeakPercent = slider(s.PeakPercent, d) }),
		comp("Release time",
			func(s audiofilters.CompressorSliders) string { return strconv.Itoa(s.ReleaseTime) },
			func(s *audiofilters.CompressorSliders, d int) { s.ReleaseTime = slider(s.ReleaseTime, d) }),
		comp("Fast ratio",
			func(s audiofilters.CompressorSliders) string { return strconv.Itoa(s.FastRatio) },
			func(s *audiofilters.CompressorSliders, d int) { s.FastRatio = slider(s.FastRatio, d) }),
		comp("Overall ratio",
			func(s audiofilters.CompressorSliders) string { return strconv.Itoa(s.OverallRatio) },
			func(s *audiofilters.CompressorSliders, d int) { s.OverallRatio = slider(s.OverallRatio, d) }),
	)

	layout := func(label string, value func(s audiofilters.EqualizerStage) string, edit func(s *audiofilters.EqualizerStage, delta int)) row {
		return row{
			group: "Equalizer layout", label: label,
			value: func(m *Model) string { return value(m.stage()) },
			adjust: func(m *Model, delta int) error {
				s := m.stage()
				edit(&s, delta)
				return m.panel.StageEqualizer(s)
			},
		}
	}
	labels := audiofilters.QualityLabels()
	rows = append(rows,
		layout("Quality",
			func(s audiofilters.EqualizerStage) string { return labels[s.Quality] + " taps" },
			func(s *audiofilters.EqualizerStage, d int) { s.Quality = min(max(s.Quality+d, 0), len(labels)-1) }),
		layout("Bands",
			func(s audiofilters.EqualizerStage) string { return strconv.Itoa(s.Count) },
			func(s *audiofilters.EqualizerStage, d int) { s.Count = step(s.Count, d, 1, conf.EqualizerCountRange) }),
		layout("Min frequency",
			func(s audiofilters.EqualizerStage) string { return fmt.Sprintf("%d Hz", s.MinFreq) },
			func(s *audiofilters.EqualizerStage, d int) {
				s.MinFreq = step(s.MinFreq, d, minFreqStep, conf.EqualizerMinFreqRange)
			}),
		layout("Max frequency",
			func(s audiofilters.EqualizerStage) string { return fmt.Sprintf("%d Hz", s.MaxFreq) },
			func(s *audiofilters.EqualizerStage, d int) {
				s.MaxFreq = step(s.MaxFreq, d, maxFreqStep, conf.EqualizerMaxFreqRange)
			}),
	)

	rows = append(rows,
		row{
			group: "Equalizer", label: "Equalizer",
			value:  func(m *Model) string { return onOff(m.eq.Enabled) },
			adjust: func(m *Model, _ int) error { return m.gui.SetEnabled(!m.eq.Enabled) },
		},
		bandRow("Preamp", conf.PreampBand),
	)
	for i := range bands {
		rows = append(rows, bandRow("Band "+strconv.Itoa(i+1), i))
	}
	return rows
}

func bandRow(label string, index int) row {
	return row{
		group: "Equalizer", label: label,
		value: func(m *Model) string {
			v := m.eq.Bands[index+1]
			if index == conf.PreampBand {
				return strconv.Itoa(v)
			}
			return fmt.Sprintf("%d @ %s", v, formatFreq(m.eq.Frequencies()[index]))
		},
		adjust: func(m *Model, delta int) error {
			v := min(max(m.eq.Bands[index+1]+delta, conf.BandValueRange.Min), conf.BandValueRange.Max)
			return m.gui.SetBand(index, v)
		},
	}
}

func formatFreq(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.1f kHz", hz/1000)
	}
	return fmt.Sprintf("%.0f Hz", hz)
}
