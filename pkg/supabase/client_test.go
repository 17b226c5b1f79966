package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/secrets"
	"github.com/goliatone/go-intake/pkg/store"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/", "anon-key", WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNew_RequiresURLAndKey(t *testing.T) {
	if _, err := New("", "k"); err == nil {
		t.Fatal("expected base url error")
	}
	if _, err := New("https://x.supabase.co", " "); err == nil {
		t.Fatal("expected api key error")
	}
}

func TestRPC_GetSecret(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/v1/rpc/get_secret" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("apikey") != "anon-key" || r.Header.Get("Authorization") != "Bearer anon-key" {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		var args map[string]string
		if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
			t.Errorf("decode args: %v", err)
		}
		if args["secret_name"] != "GOOGLE_PLACES_API_KEY" {
			t.Errorf("unexpected args %v", args)
		}
		_, _ = w.Write([]byte(`"maps-key"`))
	})

	key, err := secrets.NewRPCSource(c).Secret(context.Background(), "GOOGLE_PLACES_API_KEY")
	if err != nil {
		t.Fatalf("secret: %v", err)
	}
	if key != "maps-key" {
		t.Fatalf("key = %q", key)
	}
}

func TestInsert_PostsRowWithMinimalReturn(t *testing.T) {
	var body []map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/rest/v1/intake-test-customers" {
			t.Errorf("unexpected path %q", r.URL.EscapedPath())
		}
		if r.Header.Get("Prefer") != "return=minimal" {
			t.Errorf("expected Prefer header, got %q", r.Header.Get("Prefer"))
		}
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	})

	row := store.Row{"F_Name": "Jane", "Other Phone": nil}
	if err := c.Insert(context.Background(), "intake-test-customers", row); err != nil {
		t.Fatalf("insert: %v", err)
	}
	want := []map[string]any{{"F_Name": "Jane", "Other Phone": nil}}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestInsert_DecodesPostgrestError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"PGRST204","message":"Could not find the column","hint":null}`))
	})

	err := c.Insert(context.Background(), "intake-test-customers", store.Row{"bogus": 1})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Code != "PGRST204" {
		t.Fatalf("unexpected error %#v", apiErr)
	}
}

func TestRPC_NullResultIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	_, err := secrets.NewRPCSource(c).Secret(context.Background(), "GOOGLE_PLACES_API_KEY")
	if !errors.Is(err, secrets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
