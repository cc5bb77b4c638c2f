package taskfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/asananas/internal/allocation"
)

const yamlDoc = `tasks:
  - id: "1"
    name: Website relaunch
    start_on: "2023-01-02"
    due_on: "2023-01-06"
    allocation: "Alice: 50%, Bob: 3d"
  - id: "2"
    name: Hiring
    start_on: "2023-01-09"
    due_on: "2023-01-13"
    completed: true
`

const jsonList = `[
  {"id": "7", "name": "Budget", "start_on": "2023-01-16", "due_on": "2023-01-20", "allocation": null}
]`

func TestDecode_Document(t *testing.T) {
	items, err := Decode([]byte(yamlDoc))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Website relaunch", items[0].Name)
	assert.Equal(t, "2023-01-02", items[0].StartDate)
	require.NotNil(t, items[0].AllocationText)
	assert.Equal(t, "Alice: 50%, Bob: 3d", *items[0].AllocationText)

	assert.True(t, items[1].Completed)
	assert.Nil(t, items[1].AllocationText)
}

func TestDecode_JSONList(t *testing.T) {
	items, err := Decode([]byte(jsonList))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "7", items[0].ID)
	assert.Equal(t, "2023-01-20", items[0].DueDate)
	assert.Nil(t, items[0].AllocationText)
}

func TestDecode_EmptyAndInvalid(t *testing.T) {
	items, err := Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = Decode([]byte(`"just a string"`))
	assert.Error(t, err)

	_, err = Decode([]byte("tasks: [unterminated"))
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	text := "Carol: 1d"
	items := []allocation.WorkItem{
		{ID: "1", Name: "Audit", StartDate: "2023-01-02", DueDate: "2023-01-03", AllocationText: &text},
		{ID: "2", Name: "Backlog"},
	}

	require.NoError(t, Save(ctx, path, items))

	src := New(path)
	got, err := src.WorkItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, items, got)
	assert.Equal(t, "file:"+path, src.Name())
}

func TestWorkItems_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	_, err = New(path).WorkItems(context.Background())
	assert.Error(t, err)
}
