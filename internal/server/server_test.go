package server

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/idilsaglam/todotui/internal/api"
	"github.com/idilsaglam/todotui/internal/model"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "todos.json"), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestCRUDRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	client := api.New(ts.URL, 7)
	ctx := context.Background()

	created, err := client.Create(ctx, model.Todo{UserID: 7, Title: "Buy milk"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID <= 0 {
		t.Fatalf("server assigned id %d, want positive", created.ID)
	}

	todos, err := client.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(todos) != 1 || todos[0].Title != "Buy milk" || todos[0].Completed {
		t.Fatalf("List = %v", todos)
	}

	done := true
	if err := client.Update(ctx, created.ID, api.Patch{Completed: &done}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	todos, _ = client.List(ctx)
	if !todos[0].Completed {
		t.Fatalf("record not updated: %v", todos)
	}

	if err := client.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	todos, _ = client.List(ctx)
	if len(todos) != 0 {
		t.Fatalf("record not deleted: %v", todos)
	}
}

func TestListScopesByUser(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	mine := api.New(ts.URL, 1)
	other := api.New(ts.URL, 2)
	if _, err := mine.Create(ctx, model.Todo{UserID: 1, Title: "mine"}); err != nil {
		t.Fatal(err)
	}
	if _, err := other.Create(ctx, model.Todo{UserID: 2, Title: "theirs"}); err != nil {
		t.Fatal(err)
	}

	todos, err := mine.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(todos) != 1 || todos[0].Title != "mine" {
		t.Fatalf("List leaked across users: %v", todos)
	}
}

func TestUnknownIDIs404(t *testing.T) {
	ts := newTestServer(t)
	client := api.New(ts.URL, 7)

	err := client.Delete(context.Background(), 999)
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 404 {
		t.Fatalf("err = %v, want 404 api error", err)
	}
	if apiErr.Message != "no such todo" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestCreateValidation(t *testing.T) {
	ts := newTestServer(t)
	client := api.New(ts.URL, 7)

	_, err := client.Create(context.Background(), model.Todo{UserID: 7, Title: "   "})
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 400 {
		t.Fatalf("err = %v, want 400 api error", err)
	}
}

func TestStorePersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	ctx := context.Background()

	s1, err := New(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	ts1 := httptest.NewServer(s1.Handler())
	client := api.New(ts1.URL, 7)
	created, err := client.Create(ctx, model.Todo{UserID: 7, Title: "survive me"})
	if err != nil {
		t.Fatal(err)
	}
	ts1.Close()

	s2, err := New(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	ts2 := httptest.NewServer(s2.Handler())
	defer ts2.Close()
	todos, err := api.New(ts2.URL, 7).List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(todos) != 1 || todos[0].ID != created.ID {
		t.Fatalf("restart lost data: %v", todos)
	}

	// ids keep increasing after a reload
	next, err := api.New(ts2.URL, 7).Create(ctx, model.Todo{UserID: 7, Title: "another"})
	if err != nil {
		t.Fatal(err)
	}
	if next.ID <= created.ID {
		t.Fatalf("id %d reused after restart (previous %d)", next.ID, created.ID)
	}
}
