package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Tiliavir/clicktime-assistant/internal/model"
	"github.com/Tiliavir/clicktime-assistant/internal/storage"
)

func backends(t *testing.T) map[string]storage.Store {
	return map[string]storage.Store{
		"dir":    storage.NewDir(t.TempDir()),
		"memory": storage.NewMemory(),
	}
}

func TestGetMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), storage.KeyJob)
			if !errors.Is(err, storage.ErrNotFound) {
				t.Fatalf("Get on missing key: err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestSetGetRemove(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Set(ctx, storage.KeyCalendarDate, []byte(`"2026-02-27"`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := s.Get(ctx, storage.KeyCalendarDate)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != `"2026-02-27"` {
				t.Errorf("Get = %s, want %s", got, `"2026-02-27"`)
			}

			if err := s.Remove(ctx, storage.KeyCalendarDate, storage.KeyJob); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if _, err := s.Get(ctx, storage.KeyCalendarDate); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("Get after Remove: err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestSetOverwrites(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_ = s.Set(ctx, storage.KeyEnabled, []byte("true"))
			_ = s.Set(ctx, storage.KeyEnabled, []byte("false"))
			got, err := storage.GetBool(ctx, s, storage.KeyEnabled, true)
			if err != nil {
				t.Fatalf("GetBool: %v", err)
			}
			if got {
				t.Error("GetBool = true, want false after overwrite")
			}
		})
	}
}

func TestDirCorruptValueIsBackedUp(t *testing.T) {
	base := t.TempDir()
	s := storage.NewDir(base)
	path := filepath.Join(base, storage.KeyJob+".json")
	if err := os.WriteFile(path, []byte("{bad json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(context.Background(), storage.KeyJob); err == nil {
		t.Fatal("expected error for corrupt JSON, got nil")
	}
	if _, err := os.Stat(path + ".corrupt"); os.IsNotExist(err) {
		t.Error("expected backup file to exist after corrupt JSON")
	}
}

func TestDirRejectsInvalidInput(t *testing.T) {
	s := storage.NewDir(t.TempDir())
	ctx := context.Background()
	if err := s.Set(ctx, "../escape", []byte("1")); err == nil {
		t.Error("Set with path traversal key: expected error")
	}
	if err := s.Set(ctx, storage.KeyJob, []byte("{nope")); err == nil {
		t.Error("Set with invalid JSON: expected error")
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	s := storage.NewMemory()
	ctx := context.Background()
	buf := []byte(`"a"`)
	_ = s.Set(ctx, "k", buf)
	buf[1] = 'b'
	got, _ := s.Get(ctx, "k")
	if string(got) != `"a"` {
		t.Errorf("Get = %s, want %s", got, `"a"`)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemory()

	var jc model.JobCatalog
	found, err := storage.GetJSON(ctx, s, storage.KeyJob, &jc)
	if err != nil || found {
		t.Fatalf("GetJSON on empty store = (%v, %v), want (false, nil)", found, err)
	}

	want := model.JobCatalog{Jobs: map[string]model.Job{"J1": {ID: "J1", ClientID: "C1"}}}
	if err := storage.SetJSON(ctx, s, storage.KeyJob, want); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	found, err = storage.GetJSON(ctx, s, storage.KeyJob, &jc)
	if err != nil || !found {
		t.Fatalf("GetJSON = (%v, %v), want (true, nil)", found, err)
	}
	if jc.Jobs["J1"].ClientID != "C1" {
		t.Errorf("ClientID = %q, want %q", jc.Jobs["J1"].ClientID, "C1")
	}

	_ = s.Set(ctx, storage.KeySelectedClient, []byte("null"))
	if _, found, _ := storage.GetString(ctx, s, storage.KeySelectedClient); found {
		t.Error("GetString on JSON null: found = true, want false")
	}

	if v, err := storage.GetBool(ctx, s, storage.KeyEnabled, false); err != nil || v {
		t.Errorf("GetBool default = (%v, %v), want (false, nil)", v, err)
	}
}
