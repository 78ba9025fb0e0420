package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewList(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	list, err := NewList(ownerID, "groceries", []Task{
		{Name: "milk"},
		{Name: "bread", Done: true},
	})
	require.NoError(t, err)

	assert.Equal(t, "groceries", list.Name)
	assert.Equal(t, ownerID, list.OwnerID)
	require.Len(t, list.Tasks, 2)

	for i, task := range list.Tasks {
		assert.NotEqual(t, uuid.Nil, task.ID)
		assert.Equal(t, list.ID, task.ListID)
		assert.Equal(t, i, task.Position)
	}
	assert.Equal(t, "milk", list.Tasks[0].Name)
	assert.True(t, list.Tasks[1].Done)
}

func TestNewListValidation(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	tests := []struct {
		name     string
		ownerID  uuid.UUID
		listName string
		tasks    []Task
		wantErr  error
	}{
		{
			name:     "empty name",
			ownerID:  ownerID,
			listName: "",
			wantErr:  ErrEmptyListName,
		},
		{
			name:     "missing owner",
			ownerID:  uuid.Nil,
			listName: "groceries",
			wantErr:  ErrEmptyListOwner,
		},
		{
			name:     "duplicate task names",
			ownerID:  ownerID,
			listName: "groceries",
			tasks:    []Task{{Name: "milk"}, {Name: "milk"}},
			wantErr:  ErrDuplicateTask,
		},
		{
			name:     "empty task name",
			ownerID:  ownerID,
			listName: "groceries",
			tasks:    []Task{{Name: ""}},
			wantErr:  ErrEmptyTaskName,
		},
		{
			name:     "no tasks is fine",
			ownerID:  ownerID,
			listName: "groceries",
			wantErr:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			list, err := NewList(tt.ownerID, tt.listName, tt.tasks)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, list)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, list)
			}
		})
	}
}

func TestReplaceTasks(t *testing.T) {
	t.Parallel()

	list, err := NewList(uuid.New(), "groceries", []Task{{Name: "milk"}})
	require.NoError(t, err)
	oldTaskID := list.Tasks[0].ID

	list.ReplaceTasks([]Task{{Name: "eggs"}, {Name: "milk", Done: true}})

	require.Len(t, list.Tasks, 2)
	assert.Equal(t, "eggs", list.Tasks[0].Name)
	assert.Equal(t, 0, list.Tasks[0].Position)
	assert.Equal(t, 1, list.Tasks[1].Position)

	// Replacement assigns fresh task IDs even for reused names.
	assert.NotEqual(t, oldTaskID, list.Tasks[1].ID)
}
