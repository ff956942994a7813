package config

import (
	"testing"
	"time"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestDefaultDirOverride(t *testing.T) {
	t.Setenv("BEAM_CONFIG_DIR", "/tmp/beam-test")
	if got := DefaultDir(); got != "/tmp/beam-test" {
		t.Errorf("DefaultDir() = %q", got)
	}
}

func TestOpenMissingFile(t *testing.T) {
	s := openTemp(t)
	if s.CurrentAccount() != "" {
		t.Errorf("fresh store should have no account, got %q", s.CurrentAccount())
	}
}

func TestAccountRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	s.SetAccount("work", "tok_abc")
	s.SetCurrentApp("app_1", "Chat Prod")
	s.SetAppKey("app_1", "key:secret")
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if s2.CurrentAccount() != "work" {
		t.Errorf("CurrentAccount = %q", s2.CurrentAccount())
	}
	if s2.AccessToken() != "tok_abc" {
		t.Errorf("AccessToken = %q", s2.AccessToken())
	}
	if s2.CurrentAppID() != "app_1" {
		t.Errorf("CurrentAppID = %q", s2.CurrentAppID())
	}
	if s2.AppName("app_1") != "Chat Prod" {
		t.Errorf("AppName = %q", s2.AppName("app_1"))
	}
	if s2.APIKey() != "key:secret" {
		t.Errorf("APIKey = %q", s2.APIKey())
	}
}

func TestAppNameFallsBackToID(t *testing.T) {
	s := openTemp(t)
	s.SetAccount("work", "tok")
	if got := s.AppName("app_unknown"); got != "app_unknown" {
		t.Errorf("AppName = %q", got)
	}
}

func TestRemoveAccount(t *testing.T) {
	s := openTemp(t)
	s.SetAccount("work", "tok_abc")
	s.RemoveAccount("work")
	if s.CurrentAccount() != "" {
		t.Errorf("CurrentAccount after remove = %q", s.CurrentAccount())
	}
	if s.AccessToken() != "" {
		t.Errorf("AccessToken after remove = %q", s.AccessToken())
	}
}

func TestEnvOverrides(t *testing.T) {
	s := openTemp(t)
	t.Setenv("BEAM_ACCESS_TOKEN", "tok_env")
	t.Setenv("BEAM_API_KEY", "key_env")
	if s.AccessToken() != "tok_env" {
		t.Errorf("AccessToken = %q", s.AccessToken())
	}
	if s.APIKey() != "key_env" {
		t.Errorf("APIKey = %q", s.APIKey())
	}
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	writer, err := Open(dir)
	if err != nil {
		t.Fatalf("Open writer: %v", err)
	}
	writer.SetAccount("work", "tok_abc")
	if err := writer.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if s.CurrentAccount() != "work" {
		t.Errorf("CurrentAccount after reload = %q", s.CurrentAccount())
	}
}

func TestReloadMissingFile(t *testing.T) {
	s := openTemp(t)
	if err := s.Reload(); err != nil {
		t.Errorf("Reload with no file should be a no-op, got %v", err)
	}
}

func TestWatchFiresOnSave(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	fired := make(chan struct{}, 1)
	w, err := s.Watch(func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	s.SetAccount("work", "tok_abc")
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not fire after save")
	}
}

func TestRequireAccessWithoutLogin(t *testing.T) {
	t.Setenv("BEAM_CONFIG_DIR", t.TempDir())
	t.Setenv("BEAM_ACCESS_TOKEN", "")
	if _, err := RequireAccess(); err == nil {
		t.Error("expected error when not logged in")
	}
}

func TestRequireAppKeyFromEnv(t *testing.T) {
	t.Setenv("BEAM_CONFIG_DIR", t.TempDir())
	t.Setenv("BEAM_API_KEY", "key_env")
	_, key, err := RequireAppKey()
	if err != nil {
		t.Fatalf("RequireAppKey: %v", err)
	}
	if key != "key_env" {
		t.Errorf("key = %q", key)
	}
}
