package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-intake/pkg/binder"
	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/loader"
	"github.com/goliatone/go-intake/pkg/places"
	"github.com/goliatone/go-intake/pkg/secrets"
	"github.com/goliatone/go-intake/pkg/store"
)

type flakySink struct {
	failures int
	calls    int
	rows     []store.Row
}

func (f *flakySink) Insert(_ context.Context, _ string, row store.Row) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("insert rejected")
	}
	f.rows = append(f.rows, row)
	return nil
}

func intakeAnswers(address string) []string {
	return []string{"Jane", "Doe", "555-123-4567", "", "", "jane@example.com", address}
}

func TestSession_RetriesFailedSubmissionWithoutReentry(t *testing.T) {
	sink := &flakySink{failures: 1}
	inbox := &intake.Inbox{}
	form := intake.New(sink, intake.WithNotifier(inbox))
	driver := &stubDriver{
		inputs:    intakeAnswers("123 Main St"),
		selectIdx: []int{1},
		textAreas: []string{"Won't spin"},
		confirms:  []bool{true},
	}
	renderer, _ := New(WithPromptDriver(driver))
	session, err := NewSession(renderer, form, WithNotifications(inbox))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if sink.calls != 2 || len(sink.rows) != 1 {
		t.Fatalf("expected one failed and one stored insert, got calls=%d rows=%d", sink.calls, len(sink.rows))
	}
	if driver.inputPos != 7 || driver.confirmPos != 1 {
		t.Fatalf("expected a single pass of prompts, got inputs=%d confirms=%d", driver.inputPos, driver.confirmPos)
	}
	row := sink.rows[0]
	if row[intake.ColumnApplianceType] != "washer" || row[intake.ColumnAddress] != "123 Main St" {
		t.Fatalf("unexpected row: %#v", row)
	}
	if !containsMessage(driver.infoMessages, "! "+intake.MessageFailed) {
		t.Fatalf("expected failure notice, got %v", driver.infoMessages)
	}
	if !containsMessage(driver.infoMessages, intake.MessageSubmitted) {
		t.Fatalf("expected success notice, got %v", driver.infoMessages)
	}
	if form.Values() != (intake.Values{}) {
		t.Fatalf("expected form reset after success, got %+v", form.Values())
	}
}

func TestSession_DeclinedRetryKeepsValues(t *testing.T) {
	sink := &flakySink{failures: 5}
	form := intake.New(sink)
	driver := &stubDriver{
		inputs:    intakeAnswers("123 Main St"),
		selectIdx: []int{0},
		textAreas: []string{"Warm inside"},
		confirms:  []bool{false},
	}
	renderer, _ := New(WithPromptDriver(driver))
	session, _ := NewSession(renderer, form)

	err := session.Run(context.Background())
	if err == nil {
		t.Fatal("expected submission error")
	}
	if sink.calls != 1 {
		t.Fatalf("expected one insert attempt, got %d", sink.calls)
	}
	if got := form.Values(); got.FirstName != "Jane" || got.ApplianceType != "refrigerator" {
		t.Fatalf("expected values retained, got %+v", got)
	}
}

func TestSession_AddressSelectionFlowsThroughBinder(t *testing.T) {
	service := &fakePlaces{
		predictions: []places.Prediction{
			{PlaceID: "p1", Description: "1 Main St, Shelbyville, IL, USA"},
			{PlaceID: "p2", Description: "1 Main St, Springfield, IL, USA"},
		},
		details: map[string]places.Place{
			"p2": {PlaceID: "p2", FormattedAddress: "1 Main St, Springfield, IL 62701, USA"},
		},
	}
	l := loader.New(secrets.Static{loader.DefaultSecretName: "k3y"}, loader.NewHead(nil), loader.WithMarker(&loader.Marker{}))
	defer l.Close()
	if state := l.Acquire(context.Background()); !state.IsReady() {
		t.Fatalf("expected ready loader, got %s", state)
	}
	b := binder.New(l, binder.ServiceWidgets(service))
	defer b.Close()

	sink := &store.Memory{}
	form := intake.New(sink)
	driver := &stubDriver{
		inputs:    intakeAnswers("1 Main"),
		selectIdx: []int{1, 1},
		textAreas: []string{"Won't spin"},
	}
	renderer, _ := New(WithPromptDriver(driver))
	session, _ := NewSession(renderer, form, WithAddressBinder(b), WithAddressState(l.State))

	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	records := sink.Records()
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if got := records[0].Row[intake.ColumnAddress]; got != "1 Main St, Springfield, IL 62701, USA" {
		t.Fatalf("unexpected address %v", got)
	}
	if records[0].Table != intake.DefaultTable {
		t.Fatalf("unexpected table %q", records[0].Table)
	}
	if b.ActiveListeners() != 0 {
		t.Fatal("expected the binder to be unbound after the session")
	}
}

func TestSession_FailedLoaderStatusIsPrinted(t *testing.T) {
	form := intake.New(&store.Memory{})
	driver := &stubDriver{
		inputs:    intakeAnswers("123 Main St"),
		selectIdx: []int{0},
		textAreas: []string{"Leaks"},
	}
	renderer, _ := New(WithPromptDriver(driver))
	session, _ := NewSession(renderer, form, WithAddressState(func() loader.State {
		return loader.Failed(loader.ReasonSecretFailed)
	}))

	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !containsMessage(driver.infoMessages, "! "+loader.ReasonSecretFailed) {
		t.Fatalf("expected loader failure reason, got %v", driver.infoMessages)
	}
}

func TestNewSession_RequiresRendererAndForm(t *testing.T) {
	if _, err := NewSession(nil, intake.New(nil)); err == nil {
		t.Fatal("expected renderer error")
	}
	renderer, _ := New(WithPromptDriver(&stubDriver{}))
	if _, err := NewSession(renderer, nil); err == nil {
		t.Fatal("expected form error")
	}
}
