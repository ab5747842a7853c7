package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/UnknownOlympus/orbit/internal/models"
)

// DateLayout renders rise times the way a browser prints a Date, e.g.
// "Sun Apr 07 1974 10:57:14 GMT+0000 (UTC)".
const DateLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

// Describe renders a single pass as a human readable line in the given location.
func Describe(pass models.Pass, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return fmt.Sprintf("Next pass at %s for %d seconds", pass.RiseAt().In(loc).Format(DateLayout), pass.Duration)
}

// Render describes every pass, one per line, keeping their order.
func Render(passes []models.Pass, loc *time.Location) string {
	lines := make([]string, 0, len(passes))
	for _, pass := range passes {
		lines = append(lines, Describe(pass, loc))
	}
	return strings.Join(lines, "\n")
}
