package voice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

func TestComposeDiaryEntry(t *testing.T) {
	now := time.Date(2026, time.March, 14, 21, 30, 0, 0, time.UTC)

	tests := []struct {
		name            string
		session         models.CallSession
		expectedContent string
	}{
		{
			name: "user turns from message log",
			session: models.CallSession{
				MessagesJSON: `[
					{"role":"bot","message":"How was your day?"},
					{"role":"user","message":"I finally finished the mural."},
					{"role":"bot","message":"Tell me more."},
					{"role":"User","message":"It took three weekends."}
				]`,
				Transcript: "full transcript",
			},
			expectedContent: "I finally finished the mural.\n\nIt took three weekends.",
		},
		{
			name: "content field fallback per message",
			session: models.CallSession{
				MessagesJSON: `[{"role":"user","content":"Long walk by the river."}]`,
			},
			expectedContent: "Long walk by the river.",
		},
		{
			name: "transcript fallback when no user turns",
			session: models.CallSession{
				MessagesJSON: `[{"role":"bot","message":"Hello?"}]`,
				Transcript:   "  AI: Hello? ",
			},
			expectedContent: "AI: Hello?",
		},
		{
			name: "transcript fallback on malformed log",
			session: models.CallSession{
				MessagesJSON: `{not-an-array`,
				Transcript:   "raw transcript",
			},
			expectedContent: "raw transcript",
		},
		{
			name:            "empty session",
			session:         models.CallSession{},
			expectedContent: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, content := ComposeDiaryEntry(&tt.session, now)
			assert.Equal(t, "March 14, 2026", title)
			assert.Equal(t, tt.expectedContent, content)
		})
	}
}
