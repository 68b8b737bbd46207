package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sharetube/watchparty/pkg/validator"
)

var (
	// ErrInvalidMessage is returned for frames that are not a JSON envelope
	// or whose payload cannot be decoded into the input of its type.
	ErrInvalidMessage = errors.New("invalid message format")
	// ErrInvalidPayload is returned when a decoded payload fails validation.
	ErrInvalidPayload = errors.New("invalid payload")
	ErrUnknownType    = errors.New("unknown message type")
	ErrHandlerPanic   = errors.New("handler panicked")
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc[C any] func(ctx context.Context, conn C, payload json.RawMessage) error

type Middleware[C any] func(next HandlerFunc[C]) HandlerFunc[C]

type route[C any] struct {
	handler     HandlerFunc[C]
	middlewares []Middleware[C]
}

// WSRouter dispatches frames to handlers by their type tag. C is the
// connection type handed to handlers.
type WSRouter[C any] struct {
	routes      map[string]route[C]
	middlewares []Middleware[C]
}

func New[C any]() *WSRouter[C] {
	return &WSRouter[C]{routes: make(map[string]route[C])}
}

// Use appends middlewares applied to every route, outermost first.
func (r *WSRouter[C]) Use(middlewares ...Middleware[C]) {
	r.middlewares = append(r.middlewares, middlewares...)
}

// Handle registers handler for messageType. Route middlewares run inside the
// router-wide ones.
func (r *WSRouter[C]) Handle(messageType string, handler HandlerFunc[C], middlewares ...Middleware[C]) {
	r.routes[messageType] = route[C]{handler: handler, middlewares: middlewares}
}

func chain[C any](h HandlerFunc[C], middlewares []Middleware[C]) HandlerFunc[C] {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}

	return h
}

// Dispatch decodes one frame and runs the handler registered for its type.
// A panicking handler is reported as ErrHandlerPanic.
func (r *WSRouter[C]) Dispatch(ctx context.Context, conn C, data []byte) (err error) {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	if msg.Type == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidMessage)
	}

	rt, ok := r.routes[msg.Type]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownType, msg.Type)
	}

	ctx = context.WithValue(ctx, messageTypeKey, msg.Type)
	ctx = context.WithValue(ctx, rawMessageKey, data)

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, rec)
		}
	}()

	h := chain(chain(rt.handler, rt.middlewares), r.middlewares)

	return h(ctx, conn, msg.Payload)
}

type iValidator interface {
	Validate(any) ([]validator.ValidationError, bool)
}

// Typed adapts a handler of a concrete payload type. The payload is decoded
// into T and validated before the handler runs.
func Typed[C, T any](v iValidator, handler func(ctx context.Context, conn C, input T) error) HandlerFunc[C] {
	return func(ctx context.Context, conn C, payload json.RawMessage) error {
		var input T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &input); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
			}
		}

		if validationErrors, ok := v.Validate(input); !ok {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, validator.Join(validationErrors))
		}

		return handler(ctx, conn, input)
	}
}
