package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task is a single entry in a list. Tasks have no lifecycle of their own:
// they are created and replaced through their owning list.
type Task struct {
	ID       uuid.UUID `json:"id"`
	ListID   uuid.UUID `json:"-"`
	Name     string    `json:"name"`
	Done     bool      `json:"is_complete"`
	Position int       `json:"-"`
}

// List is a named task collection owned by exactly one identity.
// The name is unique per owner.
type List struct {
	ID        uuid.UUID `json:"uuid"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"-"`
	Tasks     []Task    `json:"tasks"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// NewList creates a list owned by ownerID with the given name and tasks.
// Task IDs and positions are assigned here. Returns a validation error if
// the name is empty or task names collide.
func NewList(ownerID uuid.UUID, name string, tasks []Task) (*List, error) {
	now := time.Now().UTC()
	list := &List{
		ID:        uuid.New(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	list.ReplaceTasks(tasks)

	if err := list.Validate(); err != nil {
		return nil, err
	}

	return list, nil
}

// ReplaceTasks swaps the list's tasks for the given set, assigning fresh
// IDs and sequential positions.
func (l *List) ReplaceTasks(tasks []Task) {
	l.Tasks = make([]Task, len(tasks))
	for i, t := range tasks {
		l.Tasks[i] = Task{
			ID:       uuid.New(),
			ListID:   l.ID,
			Name:     t.Name,
			Done:     t.Done,
			Position: i,
		}
	}
	l.UpdatedAt = time.Now().UTC()
}

// Validate checks that the List holds consistent data.
func (l *List) Validate() error {
	if l.ID == uuid.Nil {
		return ErrInvalidID
	}
	if l.Name == "" {
		return ErrEmptyListName
	}
	if l.OwnerID == uuid.Nil {
		return ErrEmptyListOwner
	}

	seen := make(map[string]struct{}, len(l.Tasks))
	for _, t := range l.Tasks {
		if t.Name == "" {
			return ErrEmptyTaskName
		}
		if _, dup := seen[t.Name]; dup {
			return ErrDuplicateTask
		}
		seen[t.Name] = struct{}{}
	}

	return nil
}
