package logging

import "strings"

// IsUnknownTarget matches the Discord errors for channels, messages and users
// that no longer exist or cannot be reached. These are expected during
// presentation side effects and never escalate past a log line.
func IsUnknownTarget(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Unknown Channel") ||
		strings.Contains(msg, "Unknown Message") ||
		strings.Contains(msg, "Unknown User") ||
		strings.Contains(msg, "Cannot send messages to this user")
}
