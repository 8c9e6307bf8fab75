package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/lattice/pkg/geom"
	"github.com/matzehuels/lattice/pkg/host"
	"github.com/matzehuels/lattice/pkg/scene"
)

// resizeStep is how far one arrow key moves a root maximum.
const resizeStep = 8

var (
	inspectKeyStyle  = lipgloss.NewStyle().Foreground(colorBlue)
	inspectHelpStyle = lipgloss.NewStyle().Foreground(colorDim)
	inspectNodeStyle = lipgloss.NewStyle().Foreground(colorWhite)
	inspectRootStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	inspectErrStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// InspectModel - interactive relayout of a scene
// =============================================================================

// InspectModel is the bubbletea model of the inspect command. It keeps a
// live instance of a scene; every key press changes the root constraints
// or applies the next scripted frame and then draws one frame.
type InspectModel struct {
	scene *scene.Scene
	opts  host.Options

	inst        *scene.Instance
	constraints geom.Constraints
	next        int // index of the next scripted frame

	frame *host.Frame
	snap  *host.Snapshot
	err   error
}

// NewInspectModel builds sc and draws its first frame.
func NewInspectModel(sc *scene.Scene, opts host.Options) (*InspectModel, error) {
	m := &InspectModel{scene: sc, opts: opts}
	if err := m.reset(); err != nil {
		return nil, err
	}
	return m, nil
}

// reset rebuilds the instance from the scene.
func (m *InspectModel) reset() error {
	if m.inst != nil {
		m.inst.Close()
	}
	inst, err := scene.Build(m.scene, m.opts)
	if err != nil {
		return err
	}
	m.inst = inst
	m.constraints = m.scene.Constraints.Geom()
	m.next = 0
	m.err = nil
	m.draw()
	return m.err
}

// draw runs one frame and keeps its outcome.
func (m *InspectModel) draw() {
	f, err := m.inst.Surface().Frame()
	m.frame, m.err = f, err
	m.snap = m.inst.Surface().Snapshot()
}

// resize moves the root maxima by dw and dh. An unbounded maximum starts
// from the current root size.
func (m *InspectModel) resize(dw, dh int) {
	c := m.constraints
	size := m.snap.Root.Size
	if dw != 0 {
		if !c.HasBoundedWidth() {
			c.MaxWidth = size.Width
		}
		c.MaxWidth = max(c.MinWidth, c.MaxWidth+dw)
	}
	if dh != 0 {
		if !c.HasBoundedHeight() {
			c.MaxHeight = size.Height
		}
		c.MaxHeight = max(c.MinHeight, c.MaxHeight+dh)
	}
	if err := m.inst.Surface().SetConstraints(c); err != nil {
		m.err = err
		return
	}
	m.constraints = c
	m.draw()
}

// step applies the next scripted frame, if any.
func (m *InspectModel) step() {
	if m.next >= len(m.scene.Frames) {
		return
	}
	if err := m.inst.Apply(m.scene.Frames[m.next].Steps); err != nil {
		m.err = err
		return
	}
	m.next++
	m.draw()
}

// Close releases the live instance.
func (m *InspectModel) Close() {
	if m.inst != nil {
		m.inst.Close()
	}
}

func (m *InspectModel) Init() tea.Cmd {
	return nil
}

func (m *InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		m.resize(-resizeStep, 0)
	case "right", "l":
		m.resize(resizeStep, 0)
	case "up", "k":
		m.resize(0, -resizeStep)
	case "down", "j":
		m.resize(0, resizeStep)
	case "n", " ":
		m.step()
	case "r":
		if err := m.reset(); err != nil {
			m.err = err
		}
	}
	return m, nil
}

func (m *InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.scene.Name))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render("constraints " + m.constraints.String()))
	b.WriteString("\n")
	b.WriteString(m.help())
	b.WriteString("\n\n")

	if f := m.frame; f != nil {
		label := "initial"
		if m.next > 0 {
			label = m.scene.Frames[m.next-1].Label
		}
		line := fmt.Sprintf("frame %d  %s  root %s", f.Index, label, f.Size)
		if f.RootResized {
			line += "  " + styleResized.Render("resized")
		}
		b.WriteString(StyleValue.Render(line))
		b.WriteString("\n")
		b.WriteString(StyleDim.Render("remeasured: " + listNames(f.Remeasured)))
		b.WriteString("\n\n")
	}

	if m.snap != nil {
		b.WriteString(nodeTree(m.snap.Root, m.frame).String())
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(inspectErrStyle.Render(iconError + " " + m.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *InspectModel) help() string {
	keys := []struct{ key, desc string }{
		{"←/→", "width"},
		{"↑/↓", "height"},
		{"n", fmt.Sprintf("next frame (%d/%d)", m.next, len(m.scene.Frames))},
		{"r", "reset"},
		{"q", "quit"},
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = inspectKeyStyle.Render(k.key) + " " + inspectHelpStyle.Render(k.desc)
	}
	return strings.Join(parts, "  ")
}

// nodeTree renders a snapshot as a tree. Nodes remeasured in f are
// highlighted; unplaced nodes are dimmed.
func nodeTree(ns *host.NodeSnapshot, f *host.Frame) *tree.Tree {
	hot := make(map[string]bool)
	if f != nil && f.Index > 0 {
		for _, name := range f.Remeasured {
			hot[name] = true
		}
	}
	t := tree.Root(nodeLabel(ns, hot)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(StyleDim).
		RootStyle(inspectRootStyle)
	addChildren(t, ns, hot)
	return t
}

func addChildren(t *tree.Tree, ns *host.NodeSnapshot, hot map[string]bool) {
	for _, ch := range ns.Children {
		if len(ch.Children) == 0 {
			t.Child(nodeLabel(ch, hot))
			continue
		}
		sub := tree.Root(nodeLabel(ch, hot))
		addChildren(sub, ch, hot)
		t.Child(sub)
	}
}

func nodeLabel(ns *host.NodeSnapshot, hot map[string]bool) string {
	geo := fmt.Sprintf("%s @ %s", ns.Size, ns.InRoot)
	switch {
	case !ns.Placed:
		return styleUnplaced.Render(ns.Name + " (not placed)")
	case hot[ns.Name]:
		return styleHot.Render(ns.Name) + " " + StyleDim.Render(geo)
	}
	return inspectNodeStyle.Render(ns.Name) + " " + StyleDim.Render(geo)
}
