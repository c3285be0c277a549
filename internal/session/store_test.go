package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, "")
}

func TestInterimOneShot(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	in := Interim{UserID: 7, Secret: "ABCDEF"}
	if err := s.PutInterim(ctx, "tok1", in); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.TakeInterim(ctx, "tok1")
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if got != in {
		t.Errorf("got %+v, want %+v", got, in)
	}
	if _, err := s.TakeInterim(ctx, "tok1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second take: err = %v, want ErrNotFound", err)
	}
}

func TestThemeRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	if _, err := s.Theme(ctx, "7"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing theme: err = %v, want ErrNotFound", err)
	}
	want := json.RawMessage(`{"primary":"#1890ff"}`)
	if err := s.PutTheme(ctx, "7", want); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Theme(ctx, "7")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("theme = %s", got)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	if err := s.PutTheme(ctx, "7", json.RawMessage(`{}`)); err != nil {
		t.Fatal(err)
	}
	if err := s.PutProfile(ctx, "7", map[string]string{"name": "ann"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(ctx, "7"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := s.Theme(ctx, "7"); !errors.Is(err, ErrNotFound) {
		t.Errorf("theme survived clear: %v", err)
	}
	var dst map[string]string
	if err := s.Profile(ctx, "7", &dst); !errors.Is(err, ErrNotFound) {
		t.Errorf("profile survived clear: %v", err)
	}
}
