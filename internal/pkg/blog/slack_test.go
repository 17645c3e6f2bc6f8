package blog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slackPayload(value string) string {
	return fmt.Sprintf(`{
		"type": "block_actions",
		"user": {"username": "reviewer"},
		"actions": [{"action_id": "blog_approve", "value": %q}]
	}`, value)
}

func TestParseSlackInteraction(t *testing.T) {
	t.Run("approve", func(t *testing.T) {
		in, err := ParseSlackInteraction(slackPayload("approve:12:tok123"))
		require.NoError(t, err)
		assert.Equal(t, SlackActionApprove, in.Action)
		assert.Equal(t, uint(12), in.PostID)
		assert.Equal(t, "tok123", in.Token)
		assert.Equal(t, "reviewer", in.UserName)
	})

	t.Run("dismiss", func(t *testing.T) {
		in, err := ParseSlackInteraction(slackPayload("dismiss:7:tok"))
		require.NoError(t, err)
		assert.Equal(t, SlackActionDismiss, in.Action)
	})

	t.Run("token may contain colons is not split", func(t *testing.T) {
		in, err := ParseSlackInteraction(slackPayload("approve:12:to:ken"))
		require.NoError(t, err)
		assert.Equal(t, "to:ken", in.Token)
	})

	t.Run("name fallback", func(t *testing.T) {
		in, err := ParseSlackInteraction(`{"user":{"name":"Jo"},"actions":[{"value":"approve:1:t"}]}`)
		require.NoError(t, err)
		assert.Equal(t, "Jo", in.UserName)
	})

	tests := []struct {
		name    string
		payload string
	}{
		{"empty payload", ""},
		{"not json", "{"},
		{"wrong interaction type", `{"type":"view_submission","actions":[{"value":"approve:1:t"}]}`},
		{"no actions", `{"type":"block_actions","actions":[]}`},
		{"malformed value", slackPayload("approve:12")},
		{"unknown action", slackPayload("delete:12:tok")},
		{"bad post id", slackPayload("approve:zero:tok")},
		{"zero post id", slackPayload("approve:0:tok")},
		{"missing token", slackPayload("approve:12: ")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSlackInteraction(tt.payload)
			assert.Error(t, err)
		})
	}
}

func TestSlackActionValue(t *testing.T) {
	value := SlackActionValue(SlackActionApprove, 12, "tok123")
	assert.Equal(t, "approve:12:tok123", value)

	in, err := ParseSlackInteraction(slackPayload(value))
	require.NoError(t, err)
	assert.Equal(t, uint(12), in.PostID)
}
