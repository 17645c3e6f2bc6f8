package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const EventTypeUserCreated = "user.created"

// UserCreatedEvent is the normalized shape extracted from an identity
// provider user.created webhook.
type UserCreatedEvent struct {
	ExternalID  string
	Email       string
	DisplayName string
	Tags        []string
}

// Event is a parsed identity webhook. Data is only populated for
// user.created; other event types keep their Type so the handler can
// acknowledge and ignore them.
type Event struct {
	Type string
	Data *UserCreatedEvent
}

// ParseEvent parses an identity-provider webhook payload. Unknown event
// types are not an error; the caller decides whether to ignore them.
func ParseEvent(payload []byte) (*Event, error) {
	type emailAddress struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	}
	type rawEvent struct {
		Type string `json:"type"`
		Data struct {
			ID                    string                 `json:"id"`
			EmailAddresses        []emailAddress         `json:"email_addresses"`
			PrimaryEmailAddressID string                 `json:"primary_email_address_id"`
			FirstName             string                 `json:"first_name"`
			LastName              string                 `json:"last_name"`
			Username              string                 `json:"username"`
			PublicMetadata        map[string]interface{} `json:"public_metadata"`
		} `json:"data"`
	}

	var raw rawEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("invalid identity webhook payload: %w", err)
	}
	if strings.TrimSpace(raw.Type) == "" {
		return nil, errors.New("identity webhook payload missing event type")
	}

	ev := &Event{Type: raw.Type}
	if raw.Type != EventTypeUserCreated {
		return ev, nil
	}

	if strings.TrimSpace(raw.Data.ID) == "" {
		return nil, errors.New("user.created payload missing user id")
	}

	// Primary email is matched by the declared primary id, falling back to
	// the first listed address.
	email := ""
	for _, ea := range raw.Data.EmailAddresses {
		if ea.ID != "" && ea.ID == raw.Data.PrimaryEmailAddressID {
			email = strings.TrimSpace(ea.EmailAddress)
			break
		}
	}
	if email == "" && len(raw.Data.EmailAddresses) > 0 {
		email = strings.TrimSpace(raw.Data.EmailAddresses[0].EmailAddress)
	}

	name := strings.TrimSpace(strings.TrimSpace(raw.Data.FirstName) + " " + strings.TrimSpace(raw.Data.LastName))
	if name == "" {
		name = strings.TrimSpace(raw.Data.Username)
	}

	ev.Data = &UserCreatedEvent{
		ExternalID:  strings.TrimSpace(raw.Data.ID),
		Email:       email,
		DisplayName: name,
		Tags:        NormalizeTags(raw.Data.PublicMetadata),
	}
	return ev, nil
}

// NormalizeTags extracts user tags from provider metadata. The wire shape
// is ambiguous: either "tags" or "tag", each holding a string or an array
// of strings. The plural key wins when both are present; a bare string
// becomes a one-element list; absence of both keys yields an empty list.
func NormalizeTags(meta map[string]interface{}) []string {
	for _, key := range []string{"tags", "tag"} {
		raw, ok := meta[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case []interface{}:
			out := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
				}
			}
			return out
		case string:
			if strings.TrimSpace(v) == "" {
				return []string{}
			}
			return []string{strings.TrimSpace(v)}
		}
	}
	return []string{}
}
