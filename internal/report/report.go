// Package report renders session summaries: a plain-text report, per-group
// channel plots, and a portable zip archive of the whole project.
package report

import (
	"fmt"
	"strings"

	"github.com/banshee-data/motion.review/internal/imu"
	"github.com/banshee-data/motion.review/internal/session"
	"github.com/banshee-data/motion.review/internal/timeline"
)

// Build renders the plain-text session report.
func Build(sess *session.Session) string {
	var b strings.Builder

	b.WriteString("MOTION REVIEW SESSION REPORT\n")
	b.WriteString("============================\n\n")

	fmt.Fprintf(&b, "Session:    %s\n", sess.ID)
	fmt.Fprintf(&b, "Created:    %s\n", sess.CreatedAt.Format("2006-01-02 15:04:05"))
	if sess.Media.Name != "" {
		fmt.Fprintf(&b, "Video:      %s (%d bytes, %s)\n",
			sess.Media.Name, sess.Media.Size, timeline.FormatSeconds(sess.Media.Duration))
	} else {
		b.WriteString("Video:      (none loaded)\n")
	}
	if sess.Series != nil {
		fmt.Fprintf(&b, "Data:       %d samples @ %.0f Hz (%s)\n",
			sess.Series.Len(), sess.Series.Rate, timeline.FormatSeconds(sess.Series.Duration()))
	} else {
		b.WriteString("Data:       (none loaded)\n")
	}
	fmt.Fprintf(&b, "Sync:       offset %+.3fs (video time minus data time)\n", sess.Sync.Offset())

	if summaries := imu.Summarize(sess.Series); len(summaries) > 0 {
		b.WriteString("\nCHANNEL STATISTICS\n")
		b.WriteString("------------------\n")
		fmt.Fprintf(&b, "%-8s %12s %12s %12s %12s\n", "channel", "mean", "stddev", "min", "max")
		for _, s := range summaries {
			fmt.Fprintf(&b, "%-8s %12.4f %12.4f %12.4f %12.4f\n", s.Name, s.Mean, s.StdDev, s.Min, s.Max)
		}
	}

	if annotations := sess.Annotations(); len(annotations) > 0 {
		b.WriteString("\nANNOTATIONS\n")
		b.WriteString("-----------\n")
		for _, a := range annotations {
			line := fmt.Sprintf("%-10s %s", timeline.FormatSeconds(a.Time), a.Label)
			if a.Category != "" {
				line += " [" + a.Category + "]"
			}
			if a.Notes != "" {
				line += ": " + a.Notes
			}
			b.WriteString(line + "\n")
		}
	}

	if sess.Notes != "" {
		b.WriteString("\nNOTES\n")
		b.WriteString("-----\n")
		b.WriteString(sess.Notes + "\n")
	}

	return b.String()
}
