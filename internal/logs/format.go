package logs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// reserved keys are rendered in the line prefix rather than as key=value.
var reserved = map[string]bool{
	"ts":        true,
	"level":     true,
	"msg":       true,
	"component": true,
	"run_id":    true,
	"stage":     true,
}

// Format renders a JSON log record as
// "15:04:05 INFO  [stage] message key=value ...". Lines that are not JSON
// objects are returned unchanged.
func Format(line string) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return line
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(trimmed), &record); err != nil {
		return line
	}

	var b strings.Builder
	if ts, ok := record["ts"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			b.WriteString(parsed.Local().Format("15:04:05"))
			b.WriteByte(' ')
		}
	}
	level, _ := record["level"].(string)
	fmt.Fprintf(&b, "%-5s ", strings.ToUpper(level))
	subject, _ := record["stage"].(string)
	if subject == "" {
		subject, _ = record["component"].(string)
	}
	if subject != "" {
		fmt.Fprintf(&b, "[%s] ", subject)
	}
	msg, _ := record["msg"].(string)
	b.WriteString(msg)

	keys := make([]string, 0, len(record))
	for key := range record {
		if !reserved[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%s", key, formatField(record[key]))
	}
	return b.String()
}

func formatField(value any) string {
	switch v := value.(type) {
	case string:
		if v == "" || strings.ContainsAny(v, " \t\"=") {
			return fmt.Sprintf("%q", v)
		}
		return v
	case nil:
		return "null"
	case float64, bool:
		return fmt.Sprint(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}
