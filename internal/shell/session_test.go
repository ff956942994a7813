package shell

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/soniclabs/beamkit/internal/restrict"
)

func TestPushHistorySkipsDuplicates(t *testing.T) {
	sess, _, _, _ := newTestSession(t, restrict.Mode{})
	sess.pushHistory("channels list")
	sess.pushHistory("channels list")
	sess.pushHistory("channels list")
	sess.pushHistory("status")
	sess.pushHistory("channels list")

	want := []string{"channels list", "status", "channels list"}
	if got := sess.History(); !reflect.DeepEqual(got, want) {
		t.Errorf("History() = %v, want %v", got, want)
	}
}

func TestPushHistorySkipsEmpty(t *testing.T) {
	sess, _, _, _ := newTestSession(t, restrict.Mode{})
	sess.pushHistory("")
	sess.pushHistory("status")
	sess.pushHistory("")
	if got := sess.History(); !reflect.DeepEqual(got, []string{"status"}) {
		t.Errorf("History() = %v", got)
	}
}

func TestPushHistoryBounded(t *testing.T) {
	sess, _, _, _ := newTestSession(t, restrict.Mode{})
	for i := 0; i < maxHistory+50; i++ {
		sess.pushHistory(fmt.Sprintf("channels publish c%d x", i))
	}
	got := sess.History()
	if len(got) != maxHistory {
		t.Fatalf("history length = %d, want %d", len(got), maxHistory)
	}
	// Oldest entries are evicted first.
	if got[0] != "channels publish c50 x" {
		t.Errorf("oldest surviving entry = %q", got[0])
	}
	if got[len(got)-1] != fmt.Sprintf("channels publish c%d x", maxHistory+49) {
		t.Errorf("newest entry = %q", got[len(got)-1])
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	sess, _, _, _ := newTestSession(t, restrict.Mode{})
	sess.pushHistory("status")
	h := sess.History()
	h[0] = "mutated"
	if got := sess.History(); got[0] != "status" {
		t.Error("History() must return a copy")
	}
}

func TestSetModeObservable(t *testing.T) {
	sess, _, _, _ := newTestSession(t, restrict.Mode{})
	mode := restrict.Mode{Hosted: true, Anonymous: true}
	sess.SetMode(mode)
	if got := sess.Mode(); got != mode {
		t.Errorf("Mode() = %+v, want %+v", got, mode)
	}
}

func TestPromptReflectsAppSelection(t *testing.T) {
	sess, _, _, _ := newTestSession(t, restrict.Mode{})
	if got := sess.prompt(); got != promptColor("beam", ansiCyan)+"> " {
		t.Errorf("prompt without store = %q", got)
	}

	sess.cfg.Store = stubStore{appID: "app_1", appName: "Chat Prod"}
	want := promptColor("beam", ansiCyan) + promptColor("[Chat Prod]", ansiDim) + "> "
	if got := sess.prompt(); got != want {
		t.Errorf("prompt with app = %q, want %q", got, want)
	}
}

type stubStore struct {
	appID   string
	appName string
}

func (s stubStore) CurrentAccount() string { return "default" }
func (s stubStore) CurrentAppID() string   { return s.appID }
func (s stubStore) AppName(id string) string {
	if id == s.appID {
		return s.appName
	}
	return ""
}
func (s stubStore) APIKey() string      { return "" }
func (s stubStore) AccessToken() string { return "" }
