package blog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Slack button action values carried by the draft review message.
const (
	SlackActionApprove = "approve"
	SlackActionDismiss = "dismiss"
)

// SlackInteraction is a parsed button click from the Slack review message.
type SlackInteraction struct {
	Action   string
	PostID   uint
	Token    string
	UserName string
}

// ParseSlackInteraction decodes the JSON interaction payload Slack posts
// as the `payload` form field. Button values use the format
// "<action>:<post_id>:<token>".
func ParseSlackInteraction(payload string) (*SlackInteraction, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, errors.New("empty slack payload")
	}

	var raw struct {
		Type string `json:"type"`
		User struct {
			Username string `json:"username"`
			Name     string `json:"name"`
		} `json:"user"`
		Actions []struct {
			ActionID string `json:"action_id"`
			Value    string `json:"value"`
		} `json:"actions"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("invalid slack payload: %w", err)
	}
	if raw.Type != "" && raw.Type != "block_actions" {
		return nil, fmt.Errorf("unsupported slack interaction type: %s", raw.Type)
	}
	if len(raw.Actions) == 0 {
		return nil, errors.New("slack payload has no actions")
	}

	value := strings.TrimSpace(raw.Actions[0].Value)
	parts := strings.SplitN(value, ":", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed slack action value: %q", value)
	}

	action := strings.ToLower(strings.TrimSpace(parts[0]))
	if action != SlackActionApprove && action != SlackActionDismiss {
		return nil, fmt.Errorf("unknown slack action: %q", action)
	}

	postID, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil || postID == 0 {
		return nil, fmt.Errorf("invalid post id in slack action value: %q", parts[1])
	}

	token := strings.TrimSpace(parts[2])
	if token == "" {
		return nil, errors.New("missing token in slack action value")
	}

	userName := strings.TrimSpace(raw.User.Username)
	if userName == "" {
		userName = strings.TrimSpace(raw.User.Name)
	}

	return &SlackInteraction{
		Action:   action,
		PostID:   uint(postID),
		Token:    token,
		UserName: userName,
	}, nil
}

// SlackActionValue builds the value string embedded in review buttons.
func SlackActionValue(action string, postID uint, token string) string {
	return fmt.Sprintf("%s:%d:%s", action, postID, token)
}
