package plan

import (
	"fmt"
	"strings"

	"github.com/claude/stride/internal/metrics"
)

// Narrative builds the deterministic templated plan explanation: phase
// structure, target paces, and a profile summary. Callers with an
// externally written explanation pass it to Assemble instead.
func (a *Assembler) Narrative(goal Goal, profile VolumeProfile, snapshot *metrics.Snapshot, weeks []Week) string {
	total := len(weeks)
	build, peak, taper := phasePartition(total)
	paces := a.planner.TargetPaces(goal)

	var b strings.Builder
	fmt.Fprintf(&b, "## Plan for %s\n\n", goal.Name)
	fmt.Fprintf(&b, "This %d-week plan prepares you progressively and safely for race day.\n\n", total)

	b.WriteString("### Your current profile\n\n")
	if profile.HasHistory {
		fmt.Fprintf(&b, "Based on your recent training:\n")
		fmt.Fprintf(&b, "- Average weekly volume: **%.1f km/week**\n", profile.WeeklyVolumeKm)
		fmt.Fprintf(&b, "- Longest recent run: **%.1f km**\n", profile.LongestRunKm)
		if profile.AvgPacePerKm > 0 {
			fmt.Fprintf(&b, "- Average pace: **%s**\n", FormatPace(profile.AvgPacePerKm))
		}
		b.WriteString("\nThe plan accounts for your current load to keep injury risk down.\n")
	} else {
		b.WriteString("No activity history detected. The plan starts with a conservative volume and ramps up gradually.\n")
	}
	if snapshot != nil {
		fmt.Fprintf(&b, "\nCurrent training state: fitness %.0f, fatigue %.0f, zone **%s**.\n",
			snapshot.CTL, snapshot.ATL, snapshot.Zone)
	}

	b.WriteString("\n### Plan structure\n\n")
	fmt.Fprintf(&b, "1. **Build** (weeks 1-%d): %s\n", build, phaseFocus(PhaseBuild))
	if peak > 0 {
		fmt.Fprintf(&b, "2. **Peak** (weeks %d-%d): %s\n", build+1, build+peak, phaseFocus(PhasePeak))
	}
	if taper > 0 {
		fmt.Fprintf(&b, "3. **Taper** (final %d week(s)): %s\n", taper, phaseFocus(PhaseTaper))
	}

	b.WriteString("\n### Target paces\n\n")
	for _, sessionType := range []string{SessionRecovery, SessionEasy, SessionLong, SessionTempo, SessionInterval} {
		fmt.Fprintf(&b, "- %s: %s\n", sessionType, FormatPace(paces[sessionType]))
	}

	b.WriteString("\n### Advice\n\n")
	b.WriteString("- Listen to your body: when very fatigued, favor recovery.\n")
	b.WriteString("- Hydration and sleep matter as much as the sessions.\n")
	b.WriteString("- Recovery weeks (every 4th build week) are part of the plan, not optional.\n")

	return b.String()
}
