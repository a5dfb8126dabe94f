package memory

import (
	"context"
	"testing"

	"procap-study-service/internal/domain"
)

func TestSessionStoreUserSlot(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if _, ok, _ := store.LoadUser(ctx, "c1"); ok {
		t.Fatalf("expected empty slot")
	}

	user := domain.User{ID: "u1", Pseudonym: "alice", Level: 1}
	if err := store.SaveUser(ctx, "c1", user); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, ok, err := store.LoadUser(ctx, "c1")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if loaded.Pseudonym != "alice" {
		t.Fatalf("unexpected user %+v", loaded)
	}

	if err := store.ClearUser(ctx, "c1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := store.LoadUser(ctx, "c1"); ok {
		t.Fatalf("expected slot cleared")
	}
}

func TestSessionStoreThemeDefaultsToLight(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	theme, err := store.LoadTheme(ctx, "c1")
	if err != nil {
		t.Fatalf("load theme: %v", err)
	}
	if theme != domain.ThemeLight {
		t.Fatalf("expected light default, got %s", theme)
	}

	if err := store.SaveTheme(ctx, "c1", domain.ThemeDark); err != nil {
		t.Fatalf("save theme: %v", err)
	}
	theme, _ = store.LoadTheme(ctx, "c1")
	if theme != domain.ThemeDark {
		t.Fatalf("expected dark, got %s", theme)
	}
}
