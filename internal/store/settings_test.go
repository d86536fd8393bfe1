package store

import (
	"errors"
	"testing"
)

func TestSettingsRepository(t *testing.T) {
	settings := newTestStore(t).Settings()

	if _, err := settings.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := settings.Set("voice", "en-us"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := settings.Set("voice", "en-gb"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	v, err := settings.Get("voice")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if v != "en-gb" {
		t.Errorf("Get() = %q, want en-gb", v)
	}
}

func TestSettingsRepository_Bool(t *testing.T) {
	settings := newTestStore(t).Settings()

	if !settings.GetBool(SettingMuted, true) {
		t.Error("GetBool() should return default for missing key")
	}

	if err := settings.SetBool(SettingMuted, true); err != nil {
		t.Fatalf("SetBool() error = %v", err)
	}
	if !settings.GetBool(SettingMuted, false) {
		t.Error("GetBool() = false after SetBool(true)")
	}

	if err := settings.Set(SettingMuted, "garbage"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if settings.GetBool(SettingMuted, false) {
		t.Error("GetBool() should fall back to default for unparsable value")
	}
}
