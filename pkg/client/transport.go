package client

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxLoggedBody caps how much of a body is buffered for debug logging.
const maxLoggedBody = 64 << 10

const redacted = "[redacted]"

// sensitiveFields are JSON keys whose values never reach the log.
var sensitiveFields = map[string]bool{
	"access_token":  true,
	"refresh_token": true,
	"token":         true,
	"mfa_token":     true,
	"password":      true,
	"code":          true,
	"secret":        true,
}

// loggingTransport tags each request with an X-Request-ID and logs the
// exchange at debug level.
type loggingTransport struct {
	logger    *zap.Logger
	logBodies bool
	next      http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
	if ce := t.logger.Check(zap.DebugLevel, "http request"); ce == nil {
		return t.next.RoundTrip(req)
	}

	reqID := req.Header.Get("X-Request-ID")
	fields := []zap.Field{
		zap.String("request_id", reqID),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("authorization", redactAuthorization(req.Header.Get("Authorization"))),
	}
	if t.logBodies && req.Body != nil && req.Body != http.NoBody {
		data, err := io.ReadAll(req.Body)
		req.Body.Close() //nolint:errcheck // replaced below
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(data))
		fields = append(fields, zap.String("body", redactBody(data)))
	}
	t.logger.Debug("http request", fields...)

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(start)
	if err != nil {
		t.logger.Debug("http request failed",
			zap.String("request_id", reqID),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	respFields := []zap.Field{
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed),
	}
	if t.logBodies && resp.Body != nil {
		data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
		if readErr == nil {
			resp.Body = struct {
				io.Reader
				io.Closer
			}{io.MultiReader(bytes.NewReader(data), resp.Body), resp.Body}
			respFields = append(respFields, zap.String("body", redactBody(data)))
		}
	}
	t.logger.Debug("http response", respFields...)
	return resp, nil
}

func redactAuthorization(v string) string {
	if v == "" {
		return ""
	}
	if scheme, _, ok := strings.Cut(v, " "); ok {
		return scheme + " " + redacted
	}
	return redacted
}

// redactBody masks sensitive JSON fields. Bodies that are not JSON are
// summarized by size only.
func redactBody(data []byte) string {
	if len(bytes.TrimSpace(data)) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		if len(data) >= maxLoggedBody {
			return "[truncated body]"
		}
		return "[non-json body]"
	}
	out, err := json.Marshal(redactValue(v))
	if err != nil {
		return "[unloggable body]"
	}
	return string(out)
}

func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if sensitiveFields[strings.ToLower(k)] {
				t[k] = redacted
				continue
			}
			t[k] = redactValue(val)
		}
		return t
	case []any:
		for i, el := range t {
			t[i] = redactValue(el)
		}
		return t
	default:
		return v
	}
}
