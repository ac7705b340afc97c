package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/amantheshaikh/untainted/pkg/untainted/internalerr"
	"github.com/amantheshaikh/untainted/pkg/untainted/prefs"
	"github.com/amantheshaikh/untainted/pkg/untainted/store"
	"github.com/amantheshaikh/untainted/pkg/untainted/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.ProfileStore {
		st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "profiles.db"))
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		return st
	})
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "profiles.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	p := store.Profile{ID: "asha", Preferences: prefs.Preferences{HealthRestrictions: []string{"Low FODMAP"}}}
	if err := st.Put(ctx, p); err != nil {
		t.Fatalf("Put: %v", err)
	}
	st.Close()

	st, err = OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	got, err := st.Get(ctx, "asha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Preferences.HealthRestrictions) != 1 || got.Preferences.HealthRestrictions[0] != "Low FODMAP" {
		t.Errorf("HealthRestrictions = %v", got.Preferences.HealthRestrictions)
	}
}

func TestOpenUnavailable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := OpenSQLite(context.Background(), filepath.Join(blocker, "profiles.db"))
	if !errors.Is(err, internalerr.ErrStoreUnavailable) {
		t.Errorf("OpenSQLite error = %v, want ErrStoreUnavailable", err)
	}
}
