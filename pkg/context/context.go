package context

import "context"

type ContextKey string

var (
	RequestIDKey = ContextKey("X-Request-Id")
	MethodKey    = ContextKey("X-Method")
	RouteKey     = ContextKey("X-Route")
	RemoteIPKey  = ContextKey("X-Remote-Ip")
	UserIDKey    = ContextKey("X-User-Id")
	SessionIDKey = ContextKey("X-Session-Id")
)

func setString(ctx context.Context, key ContextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

func getString(ctx context.Context, key ContextKey) string {
	value, ok := ctx.Value(key).(string)
	if !ok {
		return ""
	}
	return value
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return setString(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	return getString(ctx, RequestIDKey)
}

func SetMethod(ctx context.Context, method string) context.Context {
	return setString(ctx, MethodKey, method)
}

func GetMethod(ctx context.Context) string {
	return getString(ctx, MethodKey)
}

func SetRoute(ctx context.Context, route string) context.Context {
	return setString(ctx, RouteKey, route)
}

func GetRoute(ctx context.Context) string {
	return getString(ctx, RouteKey)
}

func SetRemoteIP(ctx context.Context, remoteIP string) context.Context {
	return setString(ctx, RemoteIPKey, remoteIP)
}

func GetRemoteIP(ctx context.Context) string {
	return getString(ctx, RemoteIPKey)
}

// SetUserID records the wizard user. Authentication happens upstream; the id
// is taken from the request as-is.
func SetUserID(ctx context.Context, userID string) context.Context {
	return setString(ctx, UserIDKey, userID)
}

func GetUserID(ctx context.Context) string {
	return getString(ctx, UserIDKey)
}

func SetSessionID(ctx context.Context, sessionID string) context.Context {
	return setString(ctx, SessionIDKey, sessionID)
}

func GetSessionID(ctx context.Context) string {
	return getString(ctx, SessionIDKey)
}

// LogFields returns the request-scoped values worth attaching to a log line.
func LogFields(ctx context.Context) map[string]any {
	fields := map[string]any{}
	for _, key := range []ContextKey{RequestIDKey, UserIDKey, SessionIDKey} {
		if v := getString(ctx, key); v != "" {
			fields[string(key)] = v
		}
	}
	return fields
}
