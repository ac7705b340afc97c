// Package storetest checks a store.ProfileStore implementation against the
// behaviour every backend must share.
package storetest

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/amantheshaikh/untainted/pkg/untainted/internalerr"
	"github.com/amantheshaikh/untainted/pkg/untainted/prefs"
	"github.com/amantheshaikh/untainted/pkg/untainted/store"
)

// Run exercises a fresh store returned by open.
func Run(t *testing.T, open func(t *testing.T) store.ProfileStore) {
	t.Run("PutGet", func(t *testing.T) { testPutGet(t, open(t)) })
	t.Run("Upsert", func(t *testing.T) { testUpsert(t, open(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, open(t)) })
	t.Run("List", func(t *testing.T) { testList(t, open(t)) })
	t.Run("InvalidID", func(t *testing.T) { testInvalidID(t, open(t)) })
}

func testPutGet(t *testing.T, st store.ProfileStore) {
	ctx := context.Background()
	defer st.Close()

	want := prefs.Preferences{
		Diets:           []string{"Vegan"},
		Allergies:       []string{"peanuts"},
		CustomAvoidance: []string{"Palm oil, palmolein"},
	}
	if err := st.Put(ctx, store.Profile{ID: " Asha ", Name: "Asha", Preferences: want}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := st.Get(ctx, "asha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "asha" || got.Name != "Asha" {
		t.Errorf("Get = %+v, want id asha and name Asha", got)
	}
	if !reflect.DeepEqual(got.Preferences, want) {
		t.Errorf("Preferences = %+v, want %+v", got.Preferences, want)
	}
	if got.UpdatedAt.IsZero() {
		t.Errorf("UpdatedAt not set")
	}

	_, err = st.Get(ctx, "missing")
	if !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func testUpsert(t *testing.T, st store.ProfileStore) {
	ctx := context.Background()
	defer st.Close()

	if err := st.Put(ctx, store.Profile{ID: "p1", Preferences: prefs.Preferences{Diets: []string{"vegan"}}}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := st.Put(ctx, store.Profile{ID: "P1", Name: "renamed", Preferences: prefs.Preferences{Diets: []string{"keto"}}}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := st.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "renamed" || !reflect.DeepEqual(got.Preferences.Diets, []string{"keto"}) {
		t.Errorf("Get after upsert = %+v", got)
	}

	all, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("List = %d profiles, want 1", len(all))
	}
}

func testDelete(t *testing.T, st store.ProfileStore) {
	ctx := context.Background()
	defer st.Close()

	if err := st.Put(ctx, store.Profile{ID: "gone"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := st.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Get(ctx, "gone"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}
	if err := st.Delete(ctx, "gone"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func testList(t *testing.T, st store.ProfileStore) {
	ctx := context.Background()
	defer st.Close()

	all, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("empty store List = %d profiles", len(all))
	}

	for _, id := range []string{"charlie", "alpha", "bravo"} {
		if err := st.Put(ctx, store.Profile{ID: id}); err != nil {
			t.Fatalf("Put(%s): %v", id, err)
		}
	}
	all, err = st.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids []string
	for _, p := range all {
		ids = append(ids, p.ID)
	}
	if want := []string{"alpha", "bravo", "charlie"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("List ids = %v, want %v", ids, want)
	}
}

func testInvalidID(t *testing.T, st store.ProfileStore) {
	ctx := context.Background()
	defer st.Close()

	if err := st.Put(ctx, store.Profile{ID: "  "}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Put(blank) error = %v, want ErrInvalidInput", err)
	}
	if _, err := st.Get(ctx, ""); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Get(blank) error = %v, want ErrInvalidInput", err)
	}
}
