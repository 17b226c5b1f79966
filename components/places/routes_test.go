package places

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-intake/pkg/binder"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	if got := MountPath("/intake"); got != "/intake/api/places" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("intake"); got != "/intake/api/places" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("/intake/", WithRoutePath("api/addresses/")); got != "/intake/api/addresses" {
		t.Fatalf("unexpected mount path: %q", got)
	}
}

func TestRegisterRoutes_RegistersHandlerAndSubroutes(t *testing.T) {
	mux := http.NewServeMux()
	component := New(WithLoader(readyLoader(t)), WithWidgets(binder.ServiceWidgets(sampleService())))
	pattern, err := component.RegisterRoutes(mux, "/intake")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pattern != "/intake/api/places" {
		t.Fatalf("unexpected registered pattern: %q", pattern)
	}

	for _, target := range []string{pattern + "?q=main&limit=1", pattern + "/details?place_id=p1", pattern + "/status"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", target, rec.Code)
		}
	}

	if _, err := RegisterRoutes(nil, "/"); err == nil {
		t.Fatal("expected missing mux error")
	}
}
