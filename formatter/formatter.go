package formatter

import (
	"chat-router/models"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Supported output formats.
const (
	Text = "text"
	JSON = "json"
	CSV  = "csv"
)

// Format renders the snapshot in the named format. An empty format means text.
func Format(format string, snap models.Snapshot) (string, error) {
	switch strings.ToLower(format) {
	case "", Text:
		return FormatText(snap), nil
	case JSON:
		return FormatJSON(snap), nil
	case CSV:
		return FormatCSV(snap), nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or csv)", format)
	}
}

// FormatText returns the text representation of the snapshot
func FormatText(snap models.Snapshot) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Team %s | %s", snap.Team, snap.Shift))
	if !snap.NextShiftChange.IsZero() {
		sb.WriteString(fmt.Sprintf(" | next change %s", snap.NextShiftChange.Format("15:04 MST")))
	}
	sb.WriteString("\n")

	for _, lane := range snap.Lanes {
		sb.WriteString(formatLaneLine(lane))
		sb.WriteString("\n")
		if !lane.Active {
			continue
		}

		for _, a := range lane.Agents {
			line := fmt.Sprintf("  agent %s (%s, %s): load=%d/%d", a.ID, a.Nickname, a.Seniority, a.Load, a.Capacity)
			if !a.Assignable {
				line += " draining"
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		for _, s := range lane.Sessions {
			sb.WriteString(formatSessionLine(s))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// FormatJSON returns the JSON representation of the snapshot
func FormatJSON(snap models.Snapshot) string {
	jsonBytes, _ := json.MarshalIndent(snap, "", "  ")
	return string(jsonBytes)
}

// FormatCSV returns one row per session, across both lanes.
func FormatCSV(snap models.Snapshot) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	// Write header
	writer.Write([]string{
		"Lane", "Session", "Customer", "State", "Agent", "Retry", "Expires At",
	})

	for _, lane := range snap.Lanes {
		for _, s := range lane.Sessions {
			writer.Write([]string{
				lane.Name,
				s.ID,
				s.Customer,
				s.State,
				s.AssignedAgent,
				strconv.Itoa(s.Retry),
				formatExpiry(s.ExpiresAt, time.RFC3339),
			})
		}
	}

	writer.Flush()
	return sb.String()
}

// formatLaneLine summarizes a lane's thresholds and occupancy
func formatLaneLine(lane models.LaneSnapshot) string {
	if !lane.Active {
		return fmt.Sprintf("[%s] inactive", lane.Name)
	}
	return fmt.Sprintf("[%s] capacity=%d queue=%d live=%d waiting=%d",
		lane.Name, lane.TeamCapacity, lane.QueueCapacity, lane.Live, lane.Waiting)
}

func formatSessionLine(s models.SessionView) string {
	agent := s.AssignedAgent
	if agent == "" {
		agent = "-"
	}
	line := fmt.Sprintf("  chat %s %s %s agent=%s retry=%d", s.ID, s.Customer, s.State, agent, s.Retry)
	if exp := formatExpiry(s.ExpiresAt, "15:04:05"); exp != "" {
		line += " expires=" + exp
	}
	return line
}

func formatExpiry(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}
