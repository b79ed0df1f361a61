package sequencer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, at time.Time) *Store {
	st := NewStore(t.TempDir())
	st.now = func() time.Time { return at }
	return st
}

func TestSaveAndLoadProject(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	st := newTestStore(t, time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC))

	s := New()
	c := DefaultControls()
	c.Bar, c.Root, c.Chord = 2, 10, 12
	s.Process(Inputs{Controls: c})
	pulse(s, c, 5)

	filename, err := st.SaveProject("groove", s)
	require.NoError(err)
	assert.Equal("2024-01-15_14-30-00.json", filename)
	assert.FileExists(filepath.Join(st.Dir, "groove", filename))

	loaded := New()
	require.NoError(st.LoadProject("groove", "", loaded))
	assert.Equal(s.Snapshot(), loaded.Snapshot())
}

func TestSaveProjectDefaultsToUntitled(t *testing.T) {
	require := require.New(t)
	st := newTestStore(t, time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC))

	_, err := st.SaveProject("", New())
	require.NoError(err)

	projects, err := st.ListProjects()
	require.NoError(err)
	assert.Equal(t, []string{"untitled"}, projects)
}

func TestLoadLatestSave(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	st := newTestStore(t, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
	first := New()
	_, err := st.SaveProject("p", first)
	require.NoError(err)

	st.now = func() time.Time { return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC) }
	second := New()
	c := DefaultControls()
	c.Root = 5
	second.Process(Inputs{Controls: c})
	_, err = st.SaveProject("p", second)
	require.NoError(err)

	saves, err := st.ListSaves("p")
	require.NoError(err)
	require.Len(saves, 2)
	assert.Equal("2024-01-15_10-00-00.json", saves[0].Filename)

	loaded := New()
	require.NoError(st.LoadProject("p", "", loaded))
	assert.Equal(5, loaded.Bar(0).Root)

	require.NoError(st.LoadProject("p", saves[1].Filename, loaded))
	assert.Equal(DefaultRoot, loaded.Bar(0).Root)
}

func TestSavesInSameSecondKeepBoth(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	st := newTestStore(t, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))

	first := New()
	_, err := st.SaveProject("p", first)
	require.NoError(err)

	second := New()
	c := DefaultControls()
	c.Root = 7
	second.Process(Inputs{Controls: c})
	filename, err := st.SaveProject("p", second)
	require.NoError(err)
	assert.Equal("2024-01-15_09-00-01.json", filename)

	saves, err := st.ListSaves("p")
	require.NoError(err)
	require.Len(saves, 2)

	loaded := New()
	require.NoError(st.LoadProject("p", "", loaded))
	assert.Equal(7, loaded.Bar(0).Root)
}

func TestSaveProjectSanitizesName(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	st := newTestStore(t, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))

	_, err := st.SaveProject("live/set 2", New())
	require.NoError(err)

	projects, err := st.ListProjects()
	require.NoError(err)
	assert.Equal([]string{"live-set-2"}, projects)
	assert.NoError(st.LoadProject("live/set 2", "", New()))

	assert.Equal("live-set-2", ProjectName(" live/set 2 "))
	assert.Equal("untitled", ProjectName("  "))
}

func TestLoadProjectErrors(t *testing.T) {
	assert := assert.New(t)
	st := newTestStore(t, time.Now())

	assert.Error(st.LoadProject("missing", "", New()))

	dir := st.ProjectDir("bad")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-01-15_14-30-00.json"), []byte(`[1,2]`), 0644))

	s := New()
	assert.Error(st.LoadProject("bad", "", s))
	assert.Equal(DefaultBar, s.Bar(0))
}

func TestListSavesSkipsForeignFiles(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	st := newTestStore(t, time.Now())

	dir := st.ProjectDir("p")
	require.NoError(os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	for _, name := range []string{"notes.txt", "garbage.json", "2024-01-15_14-30-00_verse.json", "2024-01-15_14-30-00x.json"} {
		require.NoError(os.WriteFile(filepath.Join(dir, name), []byte(`{}`), 0644))
	}

	saves, err := st.ListSaves("p")
	require.NoError(err)
	require.Len(saves, 1)
	assert.Equal("verse", saves[0].Name)
	assert.Equal(time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC), saves[0].Timestamp)
}

func TestRenameAndDeleteSave(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	st := newTestStore(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	filename, err := st.SaveProject("p", New())
	require.NoError(err)

	renamed, err := st.RenameSave("p", filename, "big chorus")
	require.NoError(err)
	assert.Equal("2024-03-01_12-00-00_big-chorus.json", renamed)

	saves, err := st.ListSaves("p")
	require.NoError(err)
	require.Len(saves, 1)
	assert.Equal("big-chorus", saves[0].Name)

	// empty name drops the suffix
	renamed, err = st.RenameSave("p", renamed, "")
	require.NoError(err)
	assert.Equal(filename, renamed)

	_, err = st.RenameSave("p", "junk.json", "x")
	assert.Error(err)

	require.NoError(st.DeleteSave("p", renamed))
	saves, err = st.ListSaves("p")
	require.NoError(err)
	assert.Empty(saves)
}

func TestProjectLifecycle(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	st := newTestStore(t, time.Now())

	projects, err := st.ListProjects()
	require.NoError(err)
	assert.Empty(projects)

	require.NoError(st.CreateProject("my song"))
	require.NoError(st.CreateProject("alpha"))

	projects, err = st.ListProjects()
	require.NoError(err)
	assert.Equal([]string{"alpha", "my-song"}, projects)

	renamed, err := st.RenameProject("alpha", "b side")
	require.NoError(err)
	assert.Equal("b-side", renamed)
	_, err = st.RenameProject("b-side", "   ")
	assert.Error(err)

	require.NoError(st.DeleteProject("my-song"))
	projects, err = st.ListProjects()
	require.NoError(err)
	assert.Equal([]string{"b-side"}, projects)
}

func TestSanitizeFilename(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("a-b-c", sanitizeFilename(" a/b\\c "))
	assert.Equal("what", sanitizeFilename("wh*a?t"))
}
