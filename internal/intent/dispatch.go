package intent

import (
	"context"
	"fmt"
)

// Table binds catalog function names to handlers for one caller
type Table map[string]func(ctx context.Context, values map[string]any) Result

// NewTable builds the dispatch table for a request. Every entry injects the
// caller's user and session; only payment link creation also gets the client IP.
func NewTable(h *Handlers, caller Caller) Table {
	enrich := func(values map[string]any) Args {
		return Args{Values: values, UserID: caller.UserID, SessionID: caller.SessionID}
	}
	withIP := func(values map[string]any) Args {
		a := enrich(values)
		a.IPAddress = caller.IPAddress
		if a.IPAddress == "" {
			a.IPAddress = DefaultIPAddress
		}
		return a
	}

	t := make(Table)
	for name, fn := range h.registry() {
		bind := enrich
		if name == FnCreatePaymentLink {
			bind = withIP
		}
		t[name] = func(ctx context.Context, values map[string]any) Result {
			return fn(ctx, bind(values))
		}
	}
	return t
}

// CheckCoverage verifies every catalog function has a handler and vice versa
func CheckCoverage(h *Handlers) error {
	reg := h.registry()
	for _, name := range Names() {
		if _, ok := reg[name]; !ok {
			return fmt.Errorf("catalog function %s has no handler", name)
		}
	}
	for name := range reg {
		if _, ok := Lookup(name); !ok {
			return fmt.Errorf("handler %s is not declared in the catalog", name)
		}
	}
	return nil
}
