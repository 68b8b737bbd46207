package wsrouter

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sharetube/watchparty/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConn struct {
	handled []string
}

type chatInput struct {
	Content string `json:"content" validate:"required"`
}

func newTestRouter() *WSRouter[*testConn] {
	r := New[*testConn]()
	v := validator.NewValidator()

	r.Handle("chat", Typed(v, func(ctx context.Context, conn *testConn, input chatInput) error {
		conn.handled = append(conn.handled, "chat:"+input.Content)
		return nil
	}))
	r.Handle("raw", func(ctx context.Context, conn *testConn, payload json.RawMessage) error {
		conn.handled = append(conn.handled, "raw:"+string(GetRawMessageFromCtx(ctx)))
		return nil
	})
	r.Handle("boom", func(ctx context.Context, conn *testConn, payload json.RawMessage) error {
		panic("boom")
	})

	return r
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		wantErr error
		handled []string
	}{
		{name: "typed payload", frame: `{"type":"chat","payload":{"content":"hi"},"timestamp":1}`, handled: []string{"chat:hi"}},
		{name: "not json", frame: `hello`, wantErr: ErrInvalidMessage},
		{name: "missing type", frame: `{"payload":{}}`, wantErr: ErrInvalidMessage},
		{name: "payload of wrong shape", frame: `{"type":"chat","payload":{"content":5}}`, wantErr: ErrInvalidMessage},
		{name: "failed validation", frame: `{"type":"chat","payload":{}}`, wantErr: ErrInvalidPayload},
		{name: "missing payload", frame: `{"type":"chat"}`, wantErr: ErrInvalidPayload},
		{name: "unknown type", frame: `{"type":"dance","payload":{}}`, wantErr: ErrUnknownType},
		{name: "raw frame in context", frame: `{"type":"raw","payload":{"a":1}}`, handled: []string{`raw:{"type":"raw","payload":{"a":1}}`}},
		{name: "panic is recovered", frame: `{"type":"boom"}`, wantErr: ErrHandlerPanic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter()
			conn := &testConn{}

			err := r.Dispatch(context.Background(), conn, []byte(tt.frame))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, conn.handled)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.handled, conn.handled)
		})
	}
}

func TestMiddlewareOrder(t *testing.T) {
	r := New[*testConn]()

	mw := func(name string) Middleware[*testConn] {
		return func(next HandlerFunc[*testConn]) HandlerFunc[*testConn] {
			return func(ctx context.Context, conn *testConn, payload json.RawMessage) error {
				conn.handled = append(conn.handled, name)
				return next(ctx, conn, payload)
			}
		}
	}

	r.Use(mw("global1"), mw("global2"))
	r.Handle("ping", func(ctx context.Context, conn *testConn, _ json.RawMessage) error {
		conn.handled = append(conn.handled, "handler:"+GetMessageTypeFromCtx(ctx))
		return nil
	}, mw("route"))

	conn := &testConn{}
	require.NoError(t, r.Dispatch(context.Background(), conn, []byte(`{"type":"ping"}`)))
	assert.Equal(t, []string{"global1", "global2", "route", "handler:ping"}, conn.handled)
}

func TestGetMessageTypeFromCtxMissing(t *testing.T) {
	assert.Equal(t, "", GetMessageTypeFromCtx(context.Background()))
	assert.Nil(t, GetRawMessageFromCtx(context.Background()))
}
