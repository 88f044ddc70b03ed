// Package format holds the small text helpers shared by the report
// renderers: timestamps, elapsed-time deltas, title banners and ANSI
// colouring.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Date renders a Unix timestamp (seconds) as a UTC calendar date.
func Date(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04")
}

// Delta renders an elapsed time in seconds as a compact human string,
// e.g. "3d 4h" or "12m". Negative deltas clamp to "0s".
func Delta(secs int64) string {
	if secs <= 0 {
		return "0s"
	}
	days := secs / 86400
	hours := (secs % 86400) / 3600
	mins := (secs % 3600) / 60
	switch {
	case days > 0:
		if hours > 0 {
			return fmt.Sprintf("%dd %dh", days, hours)
		}
		return fmt.Sprintf("%dd", days)
	case hours > 0:
		if mins > 0 {
			return fmt.Sprintf("%dh %dm", hours, mins)
		}
		return fmt.Sprintf("%dh", hours)
	case mins > 0:
		return fmt.Sprintf("%dm", mins)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// Title renders a report section banner: the title underlined with '='.
func Title(s string) string {
	return s + "\n" + strings.Repeat("=", len(s))
}

var colors = map[string]*color.Color{
	"red":    color.New(color.FgRed),
	"green":  color.New(color.FgGreen),
	"yellow": color.New(color.FgYellow),
	"blue":   color.New(color.FgBlue),
}

// Color wraps s in the ANSI escape codes for the named foreground colour.
// Unknown colour names return s unchanged.
func Color(s string, fg string) string {
	c, ok := colors[fg]
	if !ok {
		return s
	}
	return c.Sprint(s)
}
