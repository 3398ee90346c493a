package logger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// jobName labels the Loki stream; APP_NAME wins when set.
func jobName() string {
	if name := os.Getenv("APP_NAME"); name != "" {
		return name
	}
	return "fleximart-catalog"
}

// buildLogEntry creates a push payload in the Loki/Alloy streams format.
func buildLogEntry(level, message string, attrs []slog.Attr, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"streams": []map[string]interface{}{
			{
				"stream": map[string]string{
					"level": level,
					"job":   jobName(),
				},
				"values": [][]string{
					{
						fmt.Sprintf("%d", now.UnixNano()),
						buildLogLine(level, message, attrs, now),
					},
				},
			},
		},
	}
}

func buildLogLine(level, message string, attrs []slog.Attr, now time.Time) string {
	logData := map[string]interface{}{
		"level":   level,
		"message": message,
		"time":    now.Format(time.RFC3339),
	}

	for _, attr := range attrs {
		logData[attr.Key] = attr.Value.Any()
	}

	jsonBytes, _ := json.Marshal(logData)
	return string(jsonBytes)
}
