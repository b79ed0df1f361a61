package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"bar-chord-seq/sequencer"
	"bar-chord-seq/widgets"
)

type inputMode int

const (
	inputNone inputMode = iota
	inputNewProject
	inputRenameProject
	inputRenameSave
)

// saveBrowser lists projects and their saves, and loads them into the manager
type saveBrowser struct {
	store   *sequencer.Store
	manager *sequencer.Manager
	project string

	projects []string
	saves    []sequencer.SaveInfo

	projectIdx int
	saveIdx    int
	column     int // 0=projects, 1=saves

	mode   inputMode
	buffer string

	confirmMsg    string
	confirmAction func() error

	// results for the model to pick up after each key
	loaded        string
	loadedProject string
	err           error
	closed        bool
}

func newSaveBrowser(store *sequencer.Store, manager *sequencer.Manager, project string) *saveBrowser {
	b := &saveBrowser{store: store, manager: manager, project: project}
	b.refresh()
	for i, p := range b.projects {
		if p == project {
			b.projectIdx = i
			b.refresh()
			break
		}
	}
	return b
}

func (b *saveBrowser) refresh() {
	projects, err := b.store.ListProjects()
	if err != nil {
		b.err = err
	}
	b.projects = projects

	if b.projectIdx >= len(b.projects) {
		b.projectIdx = max(0, len(b.projects)-1)
	}

	b.saves = nil
	if len(b.projects) > 0 {
		saves, err := b.store.ListSaves(b.projects[b.projectIdx])
		if err != nil {
			b.err = err
		}
		b.saves = saves
	}

	if b.saveIdx >= len(b.saves) {
		b.saveIdx = max(0, len(b.saves)-1)
	}
	if len(b.projects) == 0 {
		b.column = 0
	}
}

// handleKey consumes a key; it always returns true
func (b *saveBrowser) handleKey(key string) bool {
	b.loaded = ""
	b.loadedProject = ""
	b.err = nil

	if b.confirmAction != nil {
		switch key {
		case "y", "Y":
			b.err = b.confirmAction()
			b.confirmAction = nil
			b.confirmMsg = ""
			b.refresh()
		case "n", "N", "esc", "q":
			b.confirmAction = nil
			b.confirmMsg = ""
		}
		return true
	}

	if b.mode != inputNone {
		switch key {
		case "enter":
			b.commitInput()
		case "esc":
			b.mode = inputNone
			b.buffer = ""
		case "backspace":
			if len(b.buffer) > 0 {
				b.buffer = b.buffer[:len(b.buffer)-1]
			}
		case " ":
			b.buffer += " "
		default:
			if len(key) == 1 && key[0] >= 32 && key[0] < 127 && key != "/" && key != "\\" {
				b.buffer += key
			}
		}
		return true
	}

	switch key {
	case "esc", "q", "o":
		b.closed = true
	case "h", "left":
		b.column = 0
	case "l", "right":
		if len(b.projects) > 0 {
			b.column = 1
		}
	case "j", "down":
		if b.column == 0 {
			if b.projectIdx < len(b.projects)-1 {
				b.projectIdx++
				b.saveIdx = 0
				b.refresh()
			}
		} else if b.saveIdx < len(b.saves)-1 {
			b.saveIdx++
		}
	case "k", "up":
		if b.column == 0 {
			if b.projectIdx > 0 {
				b.projectIdx--
				b.saveIdx = 0
				b.refresh()
			}
		} else if b.saveIdx > 0 {
			b.saveIdx--
		}
	case "enter", " ":
		b.loadSelected()
	case "n":
		b.mode = inputNewProject
		b.buffer = ""
	case "r":
		if b.column == 0 && len(b.projects) > 0 {
			b.mode = inputRenameProject
			b.buffer = b.projects[b.projectIdx]
		} else if b.column == 1 && len(b.saves) > 0 {
			b.mode = inputRenameSave
			b.buffer = b.saves[b.saveIdx].Name
		}
	case "d":
		b.deleteSelected()
	}
	return true
}

func (b *saveBrowser) commitInput() {
	name := strings.TrimSpace(b.buffer)

	switch b.mode {
	case inputNewProject:
		if name != "" {
			b.err = b.store.CreateProject(name)
		}
	case inputRenameProject:
		if name != "" && len(b.projects) > 0 {
			old := b.projects[b.projectIdx]
			renamed, err := b.store.RenameProject(old, name)
			b.err = err
			if err == nil && b.project == old {
				b.project = renamed
				b.loadedProject = renamed
			}
		}
	case inputRenameSave:
		// empty name removes the name
		if len(b.saves) > 0 {
			_, b.err = b.store.RenameSave(b.projects[b.projectIdx], b.saves[b.saveIdx].Filename, name)
		}
	}

	b.mode = inputNone
	b.buffer = ""
	b.refresh()
}

func (b *saveBrowser) loadSelected() {
	if len(b.projects) == 0 {
		return
	}

	project := b.projects[b.projectIdx]
	filename := ""
	if b.column == 1 && len(b.saves) > 0 {
		filename = b.saves[b.saveIdx].Filename
	}

	if err := b.manager.LoadProject(b.store, project, filename); err != nil {
		b.err = err
		return
	}

	if filename == "" && len(b.saves) > 0 {
		filename = b.saves[0].Filename
	}
	b.project = project
	b.loaded = project + "/" + filename
	b.loadedProject = project
	b.closed = true
}

func (b *saveBrowser) deleteSelected() {
	if b.column == 0 {
		if len(b.projects) == 0 {
			return
		}
		name := b.projects[b.projectIdx]
		b.confirmMsg = fmt.Sprintf("Delete project '%s' and all saves?", name)
		b.confirmAction = func() error {
			return b.store.DeleteProject(name)
		}
		return
	}

	if len(b.saves) == 0 {
		return
	}
	project := b.projects[b.projectIdx]
	save := b.saves[b.saveIdx]
	b.confirmMsg = fmt.Sprintf("Delete save '%s'?", save.Filename)
	b.confirmAction = func() error {
		return b.store.DeleteSave(project, save.Filename)
	}
}

func (b *saveBrowser) View() string {
	var out strings.Builder

	project := "(none)"
	if b.project != "" {
		project = b.project
	}
	out.WriteString(fmt.Sprintf("SAVES  Project: %s\n\n", project))

	if b.confirmAction != nil {
		out.WriteString(renderConfirm(b.confirmMsg))
		return out.String()
	}

	if b.mode != inputNone {
		var label string
		switch b.mode {
		case inputNewProject:
			label = "New project name"
		case inputRenameProject:
			label = "Rename project to"
		case inputRenameSave:
			label = "Name this save"
		}
		out.WriteString("─────────────────────────────────────────────────\n")
		out.WriteString(fmt.Sprintf("\n%s: %s_\n", label, b.buffer))
		out.WriteString("\n[enter] confirm  [esc] cancel\n")
		out.WriteString("\n─────────────────────────────────────────────────")
		return out.String()
	}

	out.WriteString("Projects                    Saves\n")
	out.WriteString("─────────────────────────────────────────────────\n")

	maxRows := 12
	rows := max(min(maxRows, max(1, len(b.projects))), min(maxRows, max(1, len(b.saves))))

	for row := 0; row < rows; row++ {
		if row < len(b.projects) {
			out.WriteString(fmt.Sprintf("%s%-20s", b.prefix(row == b.projectIdx, 0), truncate(b.projects[row], 20)))
		} else {
			out.WriteString(strings.Repeat(" ", 22))
		}

		out.WriteString("    ")

		if row < len(b.saves) {
			save := b.saves[row]
			display := humanize.Time(save.Timestamp)
			if save.Name != "" {
				display += " " + save.Name
			}
			out.WriteString(b.prefix(row == b.saveIdx, 1) + truncate(display, 28))
		}
		out.WriteString("\n")
	}

	if len(b.projects) == 0 {
		out.WriteString("  (no projects yet)\n")
	}

	out.WriteString("\n")
	out.WriteString(widgets.RenderKeyHelp([]widgets.KeySection{
		{Keys: []widgets.KeyBinding{
			{Key: "h / l", Desc: "switch columns"},
			{Key: "j / k", Desc: "navigate list"},
			{Key: "enter", Desc: "load selected"},
			{Key: "n", Desc: "new project"},
			{Key: "r", Desc: "rename"},
			{Key: "d", Desc: "delete"},
			{Key: "esc", Desc: "back"},
		}},
	}))

	return out.String()
}

func (b *saveBrowser) prefix(selected bool, column int) string {
	if !selected {
		return "  "
	}
	if b.column == column {
		return "> "
	}
	return "* "
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
