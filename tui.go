package termrender

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// frameTickMsg advances the animation by one frame.
type frameTickMsg time.Time

// AnimationModel is a bubbletea model that plays a renderable. Non-animated
// renderables display their single frame; animated ones advance on a
// per-frame tick. The model quits on q, esc or ctrl+c.
type AnimationModel struct {
	renderable Renderable
	iterator   *RenderIterator
	args       *RenderArgs

	frame *Frame
	err   error
}

// NewAnimationModel creates a model playing r with the given args (nil for
// defaults), looping forever.
func NewAnimationModel(r Renderable, args *RenderArgs) *AnimationModel {
	return &AnimationModel{renderable: r, args: args}
}

// Err returns the error that stopped playback, if any.
func (m *AnimationModel) Err() error { return m.err }

func (m *AnimationModel) Init() tea.Cmd {
	count := m.renderable.FrameCount()
	if !count.IsIndefinite() && count.Count() < 2 {
		m.frame, m.err = RenderFrame(m.renderable, m.args)
		if m.err != nil {
			return tea.Quit
		}
		return nil
	}

	it, err := NewRenderIterator(m.renderable, m.args, IteratorOptions{Loops: -1, Cache: true})
	if err != nil {
		m.err = err
		return tea.Quit
	}
	m.iterator = it
	return m.tick(0)
}

func (m *AnimationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.close()
			return m, tea.Quit
		}

	case frameTickMsg:
		if m.iterator == nil {
			return m, nil
		}
		frame, err := m.iterator.Next()
		if err != nil {
			// Indefinite sources can finish on their own; that is not a
			// playback failure.
			if !errors.Is(err, ErrFinished) {
				m.err = err
			}
			m.close()
			return m, tea.Quit
		}
		m.frame = frame
		return m, m.tick(frame.Duration)
	}
	return m, nil
}

func (m *AnimationModel) View() string {
	if m.frame == nil {
		return ""
	}
	return m.frame.Text
}

func (m *AnimationModel) tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

func (m *AnimationModel) close() {
	if m.iterator != nil {
		m.iterator.Close()
		m.iterator = nil
	}
}
