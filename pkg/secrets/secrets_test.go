package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type fakeCaller struct {
	fn     string
	args   any
	result string
	err    error
}

func (f *fakeCaller) RPC(_ context.Context, fn string, args any, out any) error {
	f.fn = fn
	f.args = args
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.result), out)
}

func TestRPCSource_ReturnsValue(t *testing.T) {
	caller := &fakeCaller{result: `"abc123"`}
	src := NewRPCSource(caller)

	value, err := src.Secret(context.Background(), "GOOGLE_PLACES_API_KEY")
	if err != nil {
		t.Fatalf("secret: %v", err)
	}
	if value != "abc123" {
		t.Fatalf("unexpected value %q", value)
	}
	if caller.fn != "get_secret" {
		t.Fatalf("unexpected rpc function %q", caller.fn)
	}
	args, ok := caller.args.(map[string]string)
	if !ok || args["secret_name"] != "GOOGLE_PLACES_API_KEY" {
		t.Fatalf("unexpected rpc args %#v", caller.args)
	}
}

func TestRPCSource_NullIsNotFound(t *testing.T) {
	src := NewRPCSource(&fakeCaller{result: `null`})
	_, err := src.Secret(context.Background(), "MISSING")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRPCSource_WrapsCallerError(t *testing.T) {
	boom := errors.New("boom")
	src := NewRPCSource(&fakeCaller{err: boom})
	_, err := src.Secret(context.Background(), "KEY")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped caller error, got %v", err)
	}
}

func TestChain_FallsThroughNotFound(t *testing.T) {
	chain := Chain{Static{}, Static{"KEY": "v"}}
	value, err := chain.Secret(context.Background(), "KEY")
	if err != nil || value != "v" {
		t.Fatalf("unexpected result %q, %v", value, err)
	}
}

func TestChain_StopsOnHardError(t *testing.T) {
	boom := errors.New("boom")
	chain := Chain{
		SourceFunc(func(context.Context, string) (string, error) { return "", boom }),
		Static{"KEY": "v"},
	}
	if _, err := chain.Secret(context.Background(), "KEY"); !errors.Is(err, boom) {
		t.Fatalf("expected hard error, got %v", err)
	}
}

func TestEnv_ReadsPrefixedVariable(t *testing.T) {
	t.Setenv("INTAKE_SECRET_GOOGLE_PLACES_API_KEY", "from-env")
	value, err := Env{Prefix: "INTAKE_SECRET_"}.Secret(context.Background(), "GOOGLE_PLACES_API_KEY")
	if err != nil || value != "from-env" {
		t.Fatalf("unexpected result %q, %v", value, err)
	}
}
