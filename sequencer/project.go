package sequencer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bar-chord-seq/debug"
)

const timestampLayout = "2006-01-02_15-04-05"

// SaveInfo represents a saved state file (for listing)
type SaveInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// Store keeps projects as folders of timestamped state blobs
type Store struct {
	Dir string
	now func() time.Time
}

// NewStore returns a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{Dir: dir, now: time.Now}
}

// DefaultStore returns the store under ~/.config/bar-chord-seq/projects
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewStore(filepath.Join(home, ".config", "bar-chord-seq", "projects")), nil
}

// ProjectDir returns the path to a specific project
func (st *Store) ProjectDir(projectName string) string {
	return filepath.Join(st.Dir, projectName)
}

// ListProjects returns all project folder names
func (st *Store) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(st.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	projects := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}

	sort.Strings(projects)
	return projects, nil
}

// ListSaves returns timestamped saves for a project, newest first
func (st *Store) ListSaves(projectName string) ([]SaveInfo, error) {
	entries, err := os.ReadDir(st.ProjectDir(projectName))
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	saves := []SaveInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, ok := parseSaveFilename(entry.Name())
		if !ok {
			continue
		}
		saves = append(saves, info)
	}

	sort.Slice(saves, func(i, j int) bool {
		if saves[i].Timestamp.Equal(saves[j].Timestamp) {
			return saves[i].Filename > saves[j].Filename
		}
		return saves[i].Timestamp.After(saves[j].Timestamp)
	})

	return saves, nil
}

// parseSaveFilename splits 2024-01-15_14-30-00[_name].json
func parseSaveFilename(filename string) (SaveInfo, bool) {
	if !strings.HasSuffix(filename, ".json") {
		return SaveInfo{}, false
	}
	base := strings.TrimSuffix(filename, ".json")
	if len(base) < len(timestampLayout) {
		return SaveInfo{}, false
	}

	ts, err := time.Parse(timestampLayout, base[:len(timestampLayout)])
	if err != nil {
		return SaveInfo{}, false
	}

	name := ""
	rest := base[len(timestampLayout):]
	if len(rest) > 1 && rest[0] == '_' {
		name = rest[1:]
	} else if rest != "" {
		return SaveInfo{}, false
	}

	return SaveInfo{Filename: filename, Name: name, Timestamp: ts}, true
}

// SaveProject writes the sequencer state into the project with a fresh
// timestamp and returns the file name.
func (st *Store) SaveProject(projectName string, seq *Sequencer) (string, error) {
	projectName = ProjectName(projectName)

	dir := st.ProjectDir(projectName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(seq, "", "  ")
	if err != nil {
		return "", err
	}

	filename, err := st.freeFilename(dir)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		return "", err
	}

	debug.Log("project", "saved %s/%s (%d bytes)", projectName, filename, len(data))
	return filename, nil
}

// LoadProject loads a specific save (or most recent if filename empty) into seq
func (st *Store) LoadProject(projectName, filename string, seq *Sequencer) error {
	projectName = ProjectName(projectName)
	if filename == "" {
		saves, err := st.ListSaves(projectName)
		if err != nil || len(saves) == 0 {
			return fmt.Errorf("no saves found in project %s", projectName)
		}
		filename = saves[0].Filename
	}

	data, err := os.ReadFile(filepath.Join(st.ProjectDir(projectName), filename))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, seq); err != nil {
		return fmt.Errorf("load %s/%s: %w", projectName, filename, err)
	}

	debug.Log("project", "loaded %s/%s", projectName, filename)
	return nil
}

// CreateProject creates a new empty project folder
func (st *Store) CreateProject(name string) error {
	return os.MkdirAll(st.ProjectDir(sanitizeFilename(name)), 0755)
}

// DeleteSave deletes a specific save file
func (st *Store) DeleteSave(projectName, filename string) error {
	return os.Remove(filepath.Join(st.ProjectDir(projectName), filename))
}

// RenameSave changes the name part of a save, keeping its timestamp
func (st *Store) RenameSave(projectName, oldFilename, newName string) (string, error) {
	info, ok := parseSaveFilename(oldFilename)
	if !ok {
		return "", fmt.Errorf("invalid save filename %q", oldFilename)
	}

	newFilename := info.Timestamp.Format(timestampLayout)
	if safe := sanitizeFilename(newName); safe != "" {
		newFilename += "_" + safe
	}
	newFilename += ".json"

	dir := st.ProjectDir(projectName)
	if err := os.Rename(filepath.Join(dir, oldFilename), filepath.Join(dir, newFilename)); err != nil {
		return "", err
	}
	return newFilename, nil
}

// DeleteProject deletes entire project folder
func (st *Store) DeleteProject(name string) error {
	return os.RemoveAll(st.ProjectDir(name))
}

// RenameProject renames a project folder and returns the folder's new name
func (st *Store) RenameProject(oldName, newName string) (string, error) {
	safe := sanitizeFilename(newName)
	if safe == "" {
		return "", fmt.Errorf("empty project name")
	}
	if err := os.Rename(st.ProjectDir(oldName), st.ProjectDir(safe)); err != nil {
		return "", err
	}
	return safe, nil
}

// ProjectName returns the folder name a project is stored under
func ProjectName(name string) string {
	if safe := sanitizeFilename(name); safe != "" {
		return safe
	}
	return "untitled"
}

// freeFilename returns a save filename for now. A timestamp already taken
// in dir moves forward a second at a time so saves keep their order.
func (st *Store) freeFilename(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	ts := st.now()
	for {
		prefix := ts.Format(timestampLayout)
		taken := false
		for _, entry := range entries {
			if strings.HasPrefix(entry.Name(), prefix) {
				taken = true
				break
			}
		}
		if !taken {
			return prefix + ".json", nil
		}
		ts = ts.Add(time.Second)
	}
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer(
		" ", "-",
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
	).Replace(name)
	return name
}
