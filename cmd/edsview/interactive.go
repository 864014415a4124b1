package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	edsruntime "github.com/wippyai/eds-runtime"
	"github.com/wippyai/eds-runtime/codec"
	"github.com/wippyai/eds-runtime/datasheet"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	hexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type typeEntry struct {
	id   datasheet.TypeId
	desc *datasheet.Descriptor
}

type viewState int

const (
	stateList viewState = iota
	stateDetail
)

type browserModel struct {
	err      error
	rt       *edsruntime.Runtime
	filename string
	slot     int32 // -1 shows every component
	types    []typeEntry
	visible  []int
	filter   textinput.Model
	selected int
	state    viewState
	detail   string
}

func newBrowserModel(filename string, slot int32) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "filter types"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()
	return &browserModel{
		filename: filename,
		slot:     slot,
		filter:   ti,
		state:    stateList,
	}
}

type loadedMsg struct {
	err   error
	rt    *edsruntime.Runtime
	types []typeEntry
}

func (m *browserModel) Init() tea.Cmd {
	return m.loadDatasheet
}

func (m *browserModel) loadDatasheet() tea.Msg {
	rt, err := edsruntime.Open(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	var types []typeEntry
	for _, comp := range rt.Database().Components() {
		if m.slot >= 0 && int32(comp.Slot) != m.slot {
			continue
		}
		for i := 1; i < len(comp.Types); i++ {
			id := datasheet.TypeId{Component: comp.Slot, Index: uint16(i)}
			types = append(types, typeEntry{id: id, desc: comp.Descriptor(uint16(i))})
		}
	}
	return loadedMsg{rt: rt, types: types}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state == stateDetail {
				m.state = stateList
				return m, nil
			}
			return m, tea.Quit

		case "up":
			if m.state == stateList && m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.state == stateList && m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			if m.state == stateList && m.selected < len(m.visible) {
				m.detail = m.renderDetail(m.types[m.visible[m.selected]])
				m.state = stateDetail
			}
			return m, nil

		case "esc":
			if m.state == stateDetail {
				m.state = stateList
			} else {
				m.filter.SetValue("")
				m.applyFilter()
			}
			return m, nil
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rt = msg.rt
		m.types = msg.types
		m.applyFilter()
		return m, nil
	}

	if m.state == stateList {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
		return m, cmd
	}
	return m, nil
}

func (m *browserModel) applyFilter() {
	needle := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, t := range m.types {
		if needle == "" || strings.Contains(strings.ToLower(t.desc.Name), needle) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = len(m.visible) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *browserModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.rt == nil {
		return "Loading datasheet..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("EDS Viewer"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	if m.state == stateDetail {
		b.WriteString(m.detail)
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc back • q back • ctrl+c quit"))
		return b.String()
	}

	b.WriteString(m.filter.View())
	b.WriteString("\n\n")
	for row, i := range m.visible {
		t := m.types[i]
		line := fmt.Sprintf("%-6s %s %s (%d bits)",
			t.id, nameStyle.Render(t.desc.Name), kindStyle.Render(t.desc.Kind.String()), t.desc.Size.Bits)
		if row == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if len(m.visible) == 0 {
		b.WriteString(helpStyle.Render("no types match"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter inspect • esc clear filter • q quit"))
	return b.String()
}

func (m *browserModel) renderDetail(t typeEntry) string {
	cod := m.rt.Codec()
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s  %s\n", nameStyle.Render(t.desc.Name), t.id, kindStyle.Render(t.desc.Kind.String()))
	fmt.Fprintf(&b, "packed %d bits, native %d bytes", t.desc.Size.Bits, t.desc.Size.Bytes)
	if t.desc.Flags.Packed() {
		b.WriteString(", packed-identical")
	}
	b.WriteString("\n")

	if t.desc.Kind == datasheet.KindSignedInt || t.desc.Kind == datasheet.KindUnsignedInt || t.desc.Kind == datasheet.KindFloat {
		n := t.desc.Number
		fmt.Fprintf(&b, "%s %s", n.Order, n.Encoding)
		if n.BitInvert {
			b.WriteString(" inverted")
		}
		b.WriteString("\n")
	}

	if t.desc.NumSub > 0 {
		b.WriteString("\nMembers:\n")
		fmt.Fprintf(&b, "  %-3s %-24s %-13s %-10s %-10s %s\n",
			"#", "name", "role", "bit off", "byte off", "type")
		for i := 0; i < int(t.desc.NumSub); i++ {
			mi, err := cod.MemberByIndex(t.id, i)
			if err != nil {
				fmt.Fprintf(&b, "  %-3d %s\n", i, errorStyle.Render(err.Error()))
				continue
			}
			name, typ := memberLabel(&mi)
			fmt.Fprintf(&b, "  %-3d %-24s %-13s %-10d %-10d %s\n",
				i, name, mi.Role, mi.Offset.Bits, mi.Offset.Bytes, kindStyle.Render(typ))
		}
	}

	if info, err := cod.GetDerivedInfo(t.id); err == nil && info.NumDerivatives > 0 {
		fmt.Fprintf(&b, "\nDerivatives (max %d bits / %d bytes):\n", info.MaxSize.Bits, info.MaxSize.Bytes)
		for i := 0; i < info.NumDerivatives; i++ {
			did, err := cod.DerivedTypeByIndex(t.id, i)
			if err != nil {
				continue
			}
			fmt.Fprintf(&b, "  %-6s %s\n", did, nameStyle.Render(m.rt.Database().TypeName(did)))
		}
	}

	b.WriteString("\nPacked preview (initialized object):\n")
	b.WriteString(m.renderPreview(t))
	return b.String()
}

// renderPreview initializes a fresh native object of the type and shows the
// wire bytes a complete pack produces, computed fields included.
func (m *browserModel) renderPreview(t typeEntry) string {
	cod := m.rt.Codec()
	info, err := cod.GetDerivedInfo(t.id)
	if err != nil {
		return errorStyle.Render(err.Error()) + "\n"
	}
	native := make([]byte, info.MaxSize.Bytes)
	if err := cod.InitializeNativeObject(t.id, native); err != nil {
		return errorStyle.Render(err.Error()) + "\n"
	}
	wire := make([]byte, (info.MaxSize.Bits+7)/8)
	id := t.id
	bits, err := cod.PackCompleteObject(&id, wire, native)
	if err != nil {
		return errorStyle.Render(err.Error()) + "\n"
	}
	used := (bits + 7) / 8
	var b strings.Builder
	if id != t.id {
		fmt.Fprintf(&b, "packs as %s %s\n", id, nameStyle.Render(m.rt.Database().TypeName(id)))
	}
	for off := uint32(0); off < used; off += 16 {
		end := off + 16
		if end > used {
			end = used
		}
		var hexed []string
		for _, by := range wire[off:end] {
			hexed = append(hexed, fmt.Sprintf("%02x", by))
		}
		fmt.Fprintf(&b, "  %04x  %s\n", off, hexStyle.Render(strings.Join(hexed, " ")))
	}
	return b.String()
}

func memberLabel(mi *codec.MemberInfo) (name, typ string) {
	if mi.Entry != nil {
		name = mi.Entry.Name
	}
	if mi.Desc == nil {
		return name, fmt.Sprintf("pad %d bits", mi.Entry.PadBits)
	}
	typ = fmt.Sprintf("%s %s (%d bits)", mi.Type, mi.Desc.Name, mi.Desc.Size.Bits)
	return name, typ
}

func runInteractive(filename string, slot int32) error {
	p := tea.NewProgram(newBrowserModel(filename, slot), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
