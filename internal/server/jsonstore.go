package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/idilsaglam/todotui/internal/model"
)

// JSON-backed storage. Single file, human-readable, portable.
// Good enough for a local single-user dev server.

type fileStore struct {
	path string

	mu     sync.Mutex
	todos  []model.Todo
	nextID int
}

func newFileStore(path string) (*fileStore, error) {
	s := &fileStore{path: path, nextID: 1}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	if err := json.Unmarshal(b, &s.todos); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	for _, t := range s.todos {
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	return s, nil
}

// saveLocked persists the collection. Callers hold mu.
func (s *fileStore) saveLocked() error {
	b, err := json.MarshalIndent(s.todos, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (s *fileStore) list(userID int) []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Todo, 0, len(s.todos))
	for _, t := range s.todos {
		if userID == 0 || t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

func (s *fileStore) create(t model.Todo) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	s.todos = append(s.todos, t)
	if err := s.saveLocked(); err != nil {
		s.todos = s.todos[:len(s.todos)-1]
		s.nextID--
		return model.Todo{}, err
	}
	return t, nil
}

type patch struct {
	UserID    *int    `json:"userId"`
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

func (s *fileStore) update(id int, p patch) (model.Todo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID != id {
			continue
		}
		prev := s.todos[i]
		if p.UserID != nil {
			s.todos[i].UserID = *p.UserID
		}
		if p.Title != nil {
			s.todos[i].Title = *p.Title
		}
		if p.Completed != nil {
			s.todos[i].Completed = *p.Completed
		}
		if err := s.saveLocked(); err != nil {
			s.todos[i] = prev
			return model.Todo{}, true, err
		}
		return s.todos[i], true, nil
	}
	return model.Todo{}, false, nil
}

func (s *fileStore) remove(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID != id {
			continue
		}
		prev := s.todos
		s.todos = append(append([]model.Todo{}, s.todos[:i]...), s.todos[i+1:]...)
		if err := s.saveLocked(); err != nil {
			s.todos = prev
			return true, err
		}
		return true, nil
	}
	return false, nil
}
