package logger

import "strings"

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

// Known values of the enumerated keys. Unknown status values pass through,
// unknown outcome values are dropped.
var (
	statusValues  = set("ok", "fail", "skip", "retry", "rate_limited", "cancelled")
	outcomeValues = set("ok", "fail", "cancelled", "rate_limited", "continue", "done", "ignored")
)

// defaultKeyOrder puts correlation and dialog keys first; everything else
// follows alphabetically.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "handler",
	"state", "from", "kind", "item_id", "page", "cb_key", "data",
	"outcome", "duration_ms", "wait_ms",
	"count", "sessions", "mode", "listen", "public_url",
	"db", "host", "port", "driver",
	"err", "err_code", "retryable", "attempts", "backoff_ms",
}

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

func levelName(raw string) string {
	if name, ok := levelNames[strings.ToLower(raw)]; ok {
		return name
	}
	if raw == "" {
		return "INFO"
	}
	return strings.ToUpper(raw)
}

// parseKeyOrder reads a comma separated key list, falling back to the
// default order for empty input or "default".
func parseKeyOrder(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return append([]string(nil), defaultKeyOrder...)
	}
	var order []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			order = append(order, k)
		}
	}
	if len(order) == 0 {
		return append([]string(nil), defaultKeyOrder...)
	}
	return order
}
