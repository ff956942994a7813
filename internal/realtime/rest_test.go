package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testREST(handler http.HandlerFunc) (*REST, *httptest.Server) {
	srv := httptest.NewServer(handler)
	r := &REST{
		BaseURL:    srv.URL,
		Key:        "keyid:keysecret",
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
	return r, srv
}

func TestPublishBasicAuth(t *testing.T) {
	r, srv := testREST(func(w http.ResponseWriter, req *http.Request) {
		user, pass, ok := req.BasicAuth()
		if !ok || user != "keyid" || pass != "keysecret" {
			t.Errorf("basic auth = %q:%q ok=%v", user, pass, ok)
		}
		if req.URL.Path != "/channels/updates/messages" {
			t.Errorf("path = %q", req.URL.Path)
		}
		var body map[string]json.RawMessage
		json.NewDecoder(req.Body).Decode(&body)
		if string(body["name"]) != `"greeting"` {
			t.Errorf("body = %v", body)
		}
		w.WriteHeader(http.StatusCreated)
	})
	defer srv.Close()

	err := r.Publish(context.Background(), "updates", "greeting", []byte(`"hello"`))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestHistory(t *testing.T) {
	r, srv := testREST(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/channels/updates/messages" {
			t.Errorf("path = %q", req.URL.Path)
		}
		q := req.URL.Query()
		if q.Get("limit") != "2" || q.Get("direction") != "backwards" {
			t.Errorf("query = %v", q)
		}
		json.NewEncoder(w).Encode([]Message{
			{Name: "greeting", Data: json.RawMessage(`"hi"`), Timestamp: 1756500000000},
			{Name: "greeting", Data: json.RawMessage(`"yo"`), Timestamp: 1756500001000},
		})
	})
	defer srv.Close()

	msgs, err := r.History(context.Background(), "updates", 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Name != "greeting" {
		t.Errorf("msgs = %+v", msgs)
	}
	if msgs[0].Time().UnixMilli() != 1756500000000 {
		t.Errorf("Time() = %v", msgs[0].Time())
	}
}

func TestListChannelsPrefix(t *testing.T) {
	r, srv := testREST(func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		if q.Get("prefix") != "spaces:" {
			t.Errorf("prefix = %q", q.Get("prefix"))
		}
		json.NewEncoder(w).Encode([]ChannelDetail{
			{Name: "spaces:design", Occupancy: Occupancy{PresenceMembers: 3}},
		})
	})
	defer srv.Close()

	chans, err := r.ListChannels(context.Background(), "spaces:", 10)
	if err != nil {
		t.Fatalf("ListChannels: %v", err)
	}
	if len(chans) != 1 || chans[0].Occupancy.PresenceMembers != 3 {
		t.Errorf("chans = %+v", chans)
	}
}

func TestPresence(t *testing.T) {
	r, srv := testREST(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/channels/spaces:design/presence" {
			t.Errorf("path = %q", req.URL.Path)
		}
		json.NewEncoder(w).Encode([]Member{{ClientID: "alice"}, {ClientID: "bob"}})
	})
	defer srv.Close()

	members, err := r.Presence(context.Background(), "spaces:design")
	if err != nil {
		t.Fatalf("Presence: %v", err)
	}
	if len(members) != 2 || members[0].ClientID != "alice" {
		t.Errorf("members = %+v", members)
	}
}

func TestErrorIncludesBody(t *testing.T) {
	r, srv := testREST(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("key revoked"))
	})
	defer srv.Close()

	err := r.Publish(context.Background(), "updates", "x", []byte(`1`))
	if err == nil || !strings.Contains(err.Error(), "key revoked") || !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %v", err)
	}
}

func TestNewRESTEndpointOverride(t *testing.T) {
	t.Setenv("BEAM_REST_URL", "http://localhost:8080")
	r := NewREST("k:s")
	if r.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q", r.BaseURL)
	}
}
