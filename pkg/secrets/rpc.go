package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultRPCFunction is the remote procedure that returns a secret value.
const DefaultRPCFunction = "get_secret"

// RPCCaller invokes a remote procedure and decodes its JSON result into out.
// *supabase.Client satisfies it.
type RPCCaller interface {
	RPC(ctx context.Context, fn string, args any, out any) error
}

// RPCSource resolves secrets through a remote procedure that accepts
// {"secret_name": name} and returns the value as a JSON string (or null).
type RPCSource struct {
	Caller   RPCCaller
	Function string
}

// NewRPCSource builds an RPCSource that calls get_secret.
func NewRPCSource(caller RPCCaller) *RPCSource {
	return &RPCSource{Caller: caller, Function: DefaultRPCFunction}
}

func (s *RPCSource) Secret(ctx context.Context, name string) (string, error) {
	if s == nil || s.Caller == nil {
		return "", errors.New("secrets: rpc caller is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("secrets: name is required")
	}
	fn := strings.TrimSpace(s.Function)
	if fn == "" {
		fn = DefaultRPCFunction
	}

	var value *string
	if err := s.Caller.RPC(ctx, fn, map[string]string{"secret_name": name}, &value); err != nil {
		return "", fmt.Errorf("secrets: %s(%s): %w", fn, name, err)
	}
	if value == nil || strings.TrimSpace(*value) == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return *value, nil
}
