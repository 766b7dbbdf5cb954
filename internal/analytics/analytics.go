package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"support-chat/internal/storage"
)

// DailyStats summarizes one day of chat exchanges.
type DailyStats struct {
	Date             string                  `json:"date"`
	TotalMessages    int                     `json:"total_messages"`
	UniqueSessions   int                     `json:"unique_sessions"`
	Escalations      int                     `json:"escalations"`
	PromptTokens     int                     `json:"prompt_tokens"`
	CompletionTokens int                     `json:"completion_tokens"`
	TotalTokens      int                     `json:"total_tokens"`
	SessionStats     map[string]SessionStats `json:"session_stats"`
}

type SessionStats struct {
	SessionID   string `json:"session_id"`
	Messages    int    `json:"messages"`
	Escalations int    `json:"escalations"`
}

// AnalyzeDailyLogs aggregates the events that fall on targetDate's calendar
// day in its location. Events without a user message are ignored.
func AnalyzeDailyLogs(events []storage.Event, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := &DailyStats{
		Date:         startOfDay.Format("2006-01-02"),
		SessionStats: make(map[string]SessionStats),
	}

	for _, event := range events {
		if event.Timestamp.Before(startOfDay) || !event.Timestamp.Before(endOfDay) {
			continue
		}
		if event.UserMessage == "" {
			continue
		}

		stats.TotalMessages++
		stats.PromptTokens += event.PromptTokens
		stats.CompletionTokens += event.CompletionTokens
		stats.TotalTokens += event.TotalTokens

		ss := stats.SessionStats[event.SessionID]
		ss.SessionID = event.SessionID
		ss.Messages++
		if event.Escalated {
			stats.Escalations++
			ss.Escalations++
		}
		stats.SessionStats[event.SessionID] = ss
	}

	stats.UniqueSessions = len(stats.SessionStats)
	return stats
}

// GenerateReportSummary renders the stats as a plain-text report.
func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Support chat usage for %s:\n\n", ds.Date)
	fmt.Fprintf(&b, "- Messages: %d\n", ds.TotalMessages)
	fmt.Fprintf(&b, "- Sessions: %d\n", ds.UniqueSessions)
	fmt.Fprintf(&b, "- Escalations: %d\n", ds.Escalations)
	fmt.Fprintf(&b, "- Tokens: prompt=%d completion=%d total=%d\n", ds.PromptTokens, ds.CompletionTokens, ds.TotalTokens)

	if len(ds.SessionStats) == 0 {
		return b.String()
	}

	ids := make([]string, 0, len(ds.SessionStats))
	for id := range ds.SessionStats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Fprintf(&b, "\nSessions (%d):\n", len(ids))
	for _, id := range ids {
		ss := ds.SessionStats[id]
		fmt.Fprintf(&b, "- %s: %d messages", id, ss.Messages)
		if ss.Escalations > 0 {
			fmt.Fprintf(&b, ", %d escalated", ss.Escalations)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
