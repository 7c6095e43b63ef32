package recorder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "sequences.json"))
	require.NoError(t, err)
	return store
}

func demoActions() []automation.RecordedAction {
	now := time.Now()
	return []automation.RecordedAction{
		{Type: automation.ActionLaunch, Params: automation.Params{"url": "example.com"}, Timestamp: now},
		{Type: automation.ActionClick, Params: automation.Params{"x": 1.0, "y": 2.0}, Timestamp: now.Add(time.Second), Delay: time.Second},
		{Type: automation.ActionType, Params: automation.Params{"text": "hello"}, Timestamp: now.Add(2 * time.Second), Delay: time.Second},
		{Type: automation.ActionScroll, Params: automation.Params{"direction": "down"}, Timestamp: now.Add(3 * time.Second), Delay: time.Second},
	}
}

func TestStoreSaveAndGet(t *testing.T) {
	store := newTestStore(t)

	seq, err := store.Save("demo", demoActions())
	require.NoError(t, err)
	assert.NotEmpty(t, seq.ID)
	assert.Equal(t, "demo", seq.Name)
	require.Len(t, seq.Actions, 4)

	loaded, err := store.Get(seq.ID)
	require.NoError(t, err)
	assert.Equal(t, seq.Name, loaded.Name)
	require.Len(t, loaded.Actions, 4)

	// Order and kinds must survive the round trip.
	kinds := []automation.ActionKind{automation.ActionLaunch, automation.ActionClick, automation.ActionType, automation.ActionScroll}
	for i, kind := range kinds {
		assert.Equal(t, kind, loaded.Actions[i].Type)
	}
}

func TestStorePersistedLayout(t *testing.T) {
	store := newTestStore(t)

	seq, err := store.Save("demo", demoActions())
	require.NoError(t, err)

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	var file map[string]map[string]automation.Sequence
	require.NoError(t, json.Unmarshal(raw, &file))
	require.Contains(t, file, "browserActionSequences")
	assert.Contains(t, file["browserActionSequences"], seq.ID)
}

func TestStoreSaveValidation(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save("", demoActions())
	assert.Error(t, err, "name is required")

	_, err = store.Save("   ", demoActions())
	assert.Error(t, err)

	_, err = store.Save("demo", nil)
	assert.Error(t, err, "actions are required")
}

func TestStoreSaveCopiesActions(t *testing.T) {
	store := newTestStore(t)

	actions := demoActions()
	seq, err := store.Save("demo", actions)
	require.NoError(t, err)

	actions[0].Type = automation.ActionClose

	loaded, err := store.Get(seq.ID)
	require.NoError(t, err)
	assert.Equal(t, automation.ActionLaunch, loaded.Actions[0].Type)
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)

	seq, err := store.Save("demo", demoActions())
	require.NoError(t, err)

	require.NoError(t, store.Delete(seq.ID))

	_, err = store.Get(seq.ID)
	assert.Error(t, err)

	assert.Error(t, store.Delete(seq.ID), "deleting twice fails")
}

func TestStoreList(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Save("first", demoActions())
	require.NoError(t, err)
	second, err := store.Save("second", demoActions())
	require.NoError(t, err)

	seqs, err := store.List()
	require.NoError(t, err)
	require.Len(t, seqs, 2)

	ids := []string{seqs[0].ID, seqs[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sequences.json")

	store, err := NewStore(path)
	require.NoError(t, err)
	seq, err := store.Save("demo", demoActions())
	require.NoError(t, err)

	reopened, err := NewStore(path)
	require.NoError(t, err)
	loaded, err := reopened.Get(seq.ID)
	require.NoError(t, err)
	assert.Equal(t, "demo", loaded.Name)
}
