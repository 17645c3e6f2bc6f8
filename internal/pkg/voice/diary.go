package voice

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

// transcriptMessage is one turn in the stored conversation log.
type transcriptMessage struct {
	Role    string `json:"role"`
	Message string `json:"message"`
	Content string `json:"content"`
}

// ComposeDiaryEntry builds the diary text for a completed call session.
// User utterances from the structured message log are preferred; the flat
// transcript is the fallback when no structured log was delivered.
func ComposeDiaryEntry(session *models.CallSession, now time.Time) (title, content string) {
	title = now.Format("January 2, 2006")

	if session.MessagesJSON != "" && session.MessagesJSON != "[]" {
		var messages []transcriptMessage
		if err := json.Unmarshal([]byte(session.MessagesJSON), &messages); err == nil {
			var parts []string
			for _, m := range messages {
				if strings.ToLower(strings.TrimSpace(m.Role)) != "user" {
					continue
				}
				text := strings.TrimSpace(m.Message)
				if text == "" {
					text = strings.TrimSpace(m.Content)
				}
				if text != "" {
					parts = append(parts, text)
				}
			}
			if len(parts) > 0 {
				return title, strings.Join(parts, "\n\n")
			}
		}
	}

	return title, strings.TrimSpace(session.Transcript)
}
