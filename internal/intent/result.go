package intent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/rs/zerolog/log"
)

// Result is the envelope every handler returns, on success and failure alike
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func ok(data any, message string) Result {
	return Result{Success: true, Data: data, Message: message}
}

// clarify asks the shopper for information the handler could not resolve
func clarify(message string) Result {
	return Result{Success: false, Message: message}
}

// fail converts err into a failed result. Business rule violations keep their
// own message; anything else gets the handler's generic message.
func fail(err error, message string) Result {
	r := Result{Success: false, Message: message}
	if err != nil {
		r.Error = err.Error()
		var be *domain.BusinessError
		if errors.As(err, &be) {
			r.Message = be.Message
		}
	}
	return r
}

// recovered turns a handler panic into a failed result
func recovered(name string, fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, args Args) (r Result) {
		defer func() {
			if p := recover(); p != nil {
				log.Error().
					Str("function", name).
					Str("user_id", args.UserID).
					Interface("panic", p).
					Msg("handler panicked")
				r = Result{Success: false, Message: fmt.Sprintf("Error executing: %v", p)}
			}
		}()
		return fn(ctx, args)
	}
}
