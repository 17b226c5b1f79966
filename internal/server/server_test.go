package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-intake/pkg/binder"
	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/loader"
	"github.com/goliatone/go-intake/pkg/places"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/renderers/vanilla"
	"github.com/goliatone/go-intake/pkg/secrets"
	"github.com/goliatone/go-intake/pkg/store"
)

type fakePlaces struct{}

func (fakePlaces) Predictions(context.Context, places.PredictionRequest) ([]places.Prediction, error) {
	return []places.Prediction{{PlaceID: "p1", Description: "1 Main St, Springfield, IL, USA"}}, nil
}

func (fakePlaces) Details(_ context.Context, req places.DetailsRequest) (places.Place, error) {
	if req.PlaceID != "p1" {
		return places.Place{}, places.ErrNotFound
	}
	return places.Place{PlaceID: "p1", FormattedAddress: "1 Main St, Springfield, IL 62701, USA"}, nil
}

type fixture struct {
	server *Server
	loader *loader.Loader
	head   *loader.Head
}

func newFixture(t *testing.T, sink store.Sink, deps func(*Deps), fns ...OptionFn) fixture {
	t.Helper()
	head := loader.NewHead(nil)
	l := loader.New(
		secrets.Static{loader.DefaultSecretName: "k3y"},
		head,
		loader.WithMarker(&loader.Marker{}),
	)
	t.Cleanup(l.Close)

	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("vanilla renderer: %v", err)
	}
	d := Deps{
		Loader:   l,
		Document: head,
		Sink:     sink,
		Renderer: renderer,
		Widgets:  binder.ServiceWidgets(fakePlaces{}),
	}
	if deps != nil {
		deps(&d)
	}
	srv, err := New(d, fns...)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return fixture{server: srv, loader: l, head: head}
}

func formValues() url.Values {
	return url.Values{
		intake.FieldFirstName:     {"Jane"},
		intake.FieldLastName:      {"Doe"},
		intake.FieldMobilePhone:   {"5551234567"},
		intake.FieldEmail:         {"jane@example.com"},
		intake.FieldAddress:       {"123 Main St"},
		intake.FieldApplianceType: {"washer"},
		intake.FieldProblem:       {"Drum does not spin"},
	}
}

func do(h http.Handler, req *http.Request) (*http.Response, string) {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	res := rec.Result()
	body, _ := io.ReadAll(res.Body)
	return res, string(body)
}

func postForm(h http.Handler, target string, values url.Values) (*http.Response, string) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(h, req)
}

var tokenPattern = regexp.MustCompile(`name="_submission" value="([0-9a-f-]{36})"`)

func issuedToken(t *testing.T, body string) string {
	t.Helper()
	match := tokenPattern.FindStringSubmatch(body)
	if match == nil {
		t.Fatalf("expected a submission token in page:\n%s", body)
	}
	return match[1]
}

func TestForm_GetRendersPageWithToken(t *testing.T) {
	f := newFixture(t, &store.Memory{}, nil)
	h := f.server.Handler()

	res, body := do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	for _, want := range []string{intake.PageTitle, "Service Address", "/runtime/intake-places.js"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected page to contain %q", want)
		}
	}
	issuedToken(t, body)
	if strings.Contains(body, "maps.googleapis.com") {
		t.Fatal("did not expect the maps script before acquisition")
	}

	if state := <-f.server.Start(context.Background()); !state.IsReady() {
		t.Fatalf("expected ready loader, got %s", state)
	}
	_, body = do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(body, "maps/api/js?key=k3y") {
		t.Fatalf("expected injected maps script once ready:\n%s", body)
	}
	if f.head.Len() != 1 {
		t.Fatalf("expected exactly one injected script, got %d", f.head.Len())
	}
}

func TestForm_PostStoresAndRedirectsWithFlash(t *testing.T) {
	sink := &store.Memory{}
	f := newFixture(t, sink, nil)
	h := f.server.Handler()

	_, page := do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	values := formValues()
	values.Set(render.SubmissionFieldName, issuedToken(t, page))

	res, _ := postForm(h, "/", values)
	if res.StatusCode != http.StatusSeeOther || res.Header.Get("Location") != "/" {
		t.Fatalf("expected 303 to /, got %d %q", res.StatusCode, res.Header.Get("Location"))
	}
	records := sink.Records()
	if len(records) != 1 || records[0].Table != intake.DefaultTable {
		t.Fatalf("expected one record in %s, got %+v", intake.DefaultTable, records)
	}
	if got := records[0].Row[intake.ColumnMobile]; got != int64(5551234567) {
		t.Fatalf("expected numeric mobile, got %#v", got)
	}

	var flash *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == flashCookie {
			flash = c
		}
	}
	if flash == nil {
		t.Fatal("expected flash cookie")
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(flash)
	_, body := do(h, req)
	if !strings.Contains(body, intake.MessageSubmitted) {
		t.Fatalf("expected success notice after redirect:\n%s", body)
	}
	if strings.Contains(body, `value="Jane"`) {
		t.Fatal("expected an empty form after success")
	}
}

func TestForm_PostMissingFieldsRendersInlineErrors(t *testing.T) {
	sink := &store.Memory{}
	f := newFixture(t, sink, nil)

	values := formValues()
	values.Del(intake.FieldProblem)
	values.Set(intake.FieldEmail, "   ")

	res, body := postForm(f.server.Handler(), "/", values)
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", res.StatusCode)
	}
	if strings.Count(body, render.RequiredMessage) != 2 {
		t.Fatalf("expected two required messages:\n%s", body)
	}
	if !strings.Contains(body, `value="Jane"`) {
		t.Fatal("expected posted values to be kept")
	}
	if len(sink.Records()) != 0 {
		t.Fatal("expected no insert")
	}
}

func TestForm_FailedInsertKeepsValuesAndAllowsResubmit(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	sink := &store.Memory{}
	flaky := store.SinkFunc(func(ctx context.Context, table string, row store.Row) error {
		if fail.Load() {
			return errors.New("postgrest unavailable")
		}
		return sink.Insert(ctx, table, row)
	})
	f := newFixture(t, flaky, nil)
	h := f.server.Handler()

	_, page := do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	values := formValues()
	values.Set(render.SubmissionFieldName, issuedToken(t, page))

	res, body := postForm(h, "/", values)
	if res.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.StatusCode)
	}
	if strings.Count(body, intake.MessageFailed) != 1 {
		t.Fatalf("expected exactly one failure notice:\n%s", body)
	}
	if !strings.Contains(body, `value="jane@example.com"`) {
		t.Fatal("expected values to be kept after failure")
	}

	fail.Store(false)
	res, _ = postForm(h, "/", values)
	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected resubmission to succeed, got %d", res.StatusCode)
	}
	if len(sink.Records()) != 1 {
		t.Fatalf("expected one stored record, got %d", len(sink.Records()))
	}
}

func TestForm_DuplicateTokenIsRejected(t *testing.T) {
	sink := &store.Memory{}
	f := newFixture(t, sink, nil)
	h := f.server.Handler()

	_, page := do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	values := formValues()
	values.Set(render.SubmissionFieldName, issuedToken(t, page))

	if res, _ := postForm(h, "/", values); res.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected first post to succeed, got %d", res.StatusCode)
	}
	res, body := postForm(h, "/", values)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", res.StatusCode)
	}
	if !strings.Contains(body, errAlreadySubmitted.Error()) {
		t.Fatalf("expected duplicate message:\n%s", body)
	}
	if len(sink.Records()) != 1 {
		t.Fatalf("expected a single insert, got %d", len(sink.Records()))
	}
}

func TestForm_AddressStatusShowsLoaderFailure(t *testing.T) {
	f := newFixture(t, &store.Memory{}, func(d *Deps) {
		l := loader.New(secrets.Static{}, loader.NewHead(nil), loader.WithMarker(&loader.Marker{}))
		t.Cleanup(l.Close)
		d.Loader = l
	})
	if state := <-f.server.Start(context.Background()); !state.IsFailed() {
		t.Fatalf("expected failed loader, got %s", state)
	}
	_, body := do(f.server.Handler(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(body, loader.ReasonSecretMissing) {
		t.Fatalf("expected inline failure reason:\n%s", body)
	}
}

func TestForm_PageServedWhileLoadingCanFetchScriptFromStatus(t *testing.T) {
	release := make(chan struct{})
	head := loader.NewHead(nil)
	f := newFixture(t, &store.Memory{}, func(d *Deps) {
		src := secrets.SourceFunc(func(ctx context.Context, _ string) (string, error) {
			select {
			case <-release:
				return "k3y", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		})
		l := loader.New(src, head, loader.WithMarker(&loader.Marker{}))
		t.Cleanup(l.Close)
		d.Loader = l
		d.Document = head
	})
	started := f.server.Start(context.Background())
	h := f.server.Handler()

	for !strings.Contains(func() string {
		_, body := do(h, httptest.NewRequest(http.MethodGet, "/api/places/status", nil))
		return body
	}(), `"phase":"loading"`) {
		time.Sleep(time.Millisecond)
	}

	_, page := do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(page, `data-places-state="loading"`) {
		t.Fatalf("expected loading address field:\n%s", page)
	}
	if strings.Contains(page, "maps/api/js") {
		t.Fatalf("no library tag expected before the key is known:\n%s", page)
	}

	close(release)
	if state := <-started; !state.IsReady() {
		t.Fatalf("expected ready loader, got %s", state)
	}
	res, body := do(h, httptest.NewRequest(http.MethodGet, "/api/places/status", nil))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	for _, want := range []string{`"phase":"ready"`, `"script":{"src":"`, "maps/api/js?key=k3y", `"async":true`, `"defer":true`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in status payload: %s", want, body)
		}
	}
}

func TestRoutes_StaticAndComponentEndpoints(t *testing.T) {
	f := newFixture(t, &store.Memory{}, nil)
	<-f.server.Start(context.Background())
	h := f.server.Handler()

	cases := map[string]int{
		"/healthz":                          http.StatusOK,
		"/runtime/intake-places.js":         http.StatusOK,
		"/assets/intake.css":                http.StatusOK,
		"/api/openapi.yaml":                 http.StatusOK,
		"/api/places/status":                http.StatusOK,
		"/api/places?q=1+Main":              http.StatusOK,
		"/api/places/details?place_id=p1":   http.StatusOK,
		"/missing":                          http.StatusNotFound,
		"/api/places/details?place_id=nope": http.StatusNotFound,
	}
	for target, want := range cases {
		res, _ := do(h, httptest.NewRequest(http.MethodGet, target, nil))
		if res.StatusCode != want {
			t.Fatalf("%s: expected %d, got %d", target, want, res.StatusCode)
		}
	}

	res, _ := do(h, httptest.NewRequest(http.MethodDelete, "/", nil))
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.StatusCode)
	}
}

func TestRoutes_BasePathAndThemeAssets(t *testing.T) {
	themes, err := render.NewThemes()
	if err != nil {
		t.Fatalf("themes: %v", err)
	}
	sel, err := themes.Select(render.DefaultThemeName, "")
	if err != nil {
		t.Fatalf("select theme: %v", err)
	}
	f := newFixture(t, &store.Memory{}, func(d *Deps) {
		d.Theme = render.ThemeConfig(sel)
	}, WithBasePath("/intake/"))
	h := f.server.Handler()

	res, body := do(h, httptest.NewRequest(http.MethodGet, "/intake/", nil))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	for _, want := range []string{`href="/intake/assets/intake.css"`, `action="/intake/"`, `src="/intake/runtime/intake-places.js"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in page:\n%s", want, body)
		}
	}
	if res, _ := do(h, httptest.NewRequest(http.MethodGet, "/intake/api/places/status", nil)); res.StatusCode != http.StatusOK {
		t.Fatalf("expected mounted places component, got %d", res.StatusCode)
	}
	if res, _ := do(h, httptest.NewRequest(http.MethodGet, "/", nil)); res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected root outside base path to be unrouted, got %d", res.StatusCode)
	}
}

func TestNew_RequiresDeps(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Fatal("expected missing loader error")
	}
}
