package voice

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	MessageTypeEndOfCallReport  = "end-of-call-report"
	MessageTypeAssistantRequest = "assistant-request"
)

// CallMessage is one conversation turn from the voice provider.
type CallMessage struct {
	Role             string  `json:"role"`
	Message          string  `json:"message"`
	SecondsFromStart float64 `json:"secondsFromStart"`
}

// EndOfCallReport is the normalized end-of-call payload. CallID is the
// dedup key against locally tracked call jobs.
type EndOfCallReport struct {
	CallID          string
	EndedReason     string
	DurationSeconds float64
	Transcript      string
	RecordingURL    string
	Messages        []CallMessage
}

// AssistantRequest is an inbound-call configuration request. The provider
// asks which assistant should answer a call from the given number.
type AssistantRequest struct {
	CallID      string
	PhoneNumber string
}

// ParseMessageType extracts the message type without committing to a
// payload shape, so unknown types can be acknowledged and ignored.
func ParseMessageType(payload []byte) (string, error) {
	var raw struct {
		Message struct {
			Type string `json:"type"`
		} `json:"message"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return "", fmt.Errorf("invalid voice webhook payload: %w", err)
	}
	if strings.TrimSpace(raw.Message.Type) == "" {
		return "", errors.New("voice webhook payload missing message type")
	}
	return raw.Message.Type, nil
}

// ParseEndOfCallReport validates and normalizes an end-of-call-report.
func ParseEndOfCallReport(payload []byte) (*EndOfCallReport, error) {
	var raw struct {
		Message struct {
			Type string `json:"type"`
			Call struct {
				ID string `json:"id"`
			} `json:"call"`
			EndedReason     string        `json:"endedReason"`
			DurationSeconds float64       `json:"durationSeconds"`
			Transcript      string        `json:"transcript"`
			RecordingURL    string        `json:"recordingUrl"`
			Messages        []CallMessage `json:"messages"`
			Artifact        struct {
				Messages []CallMessage `json:"messages"`
			} `json:"artifact"`
		} `json:"message"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("invalid end-of-call-report payload: %w", err)
	}
	if raw.Message.Type != MessageTypeEndOfCallReport {
		return nil, fmt.Errorf("unexpected message type: %s", raw.Message.Type)
	}
	callID := strings.TrimSpace(raw.Message.Call.ID)
	if callID == "" {
		return nil, errors.New("end-of-call-report missing call id")
	}

	messages := raw.Message.Messages
	if len(messages) == 0 {
		messages = raw.Message.Artifact.Messages
	}

	return &EndOfCallReport{
		CallID:          callID,
		EndedReason:     strings.TrimSpace(raw.Message.EndedReason),
		DurationSeconds: raw.Message.DurationSeconds,
		Transcript:      raw.Message.Transcript,
		RecordingURL:    strings.TrimSpace(raw.Message.RecordingURL),
		Messages:        messages,
	}, nil
}

// ParseAssistantRequest extracts the caller number from an inbound-call
// assistant request. The number may arrive under customer or phoneNumber
// depending on call direction.
func ParseAssistantRequest(payload []byte) (*AssistantRequest, error) {
	var raw struct {
		Message struct {
			Type string `json:"type"`
			Call struct {
				ID string `json:"id"`
			} `json:"call"`
			Customer struct {
				Number string `json:"number"`
			} `json:"customer"`
			PhoneNumber struct {
				Number string `json:"number"`
			} `json:"phoneNumber"`
		} `json:"message"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("invalid assistant-request payload: %w", err)
	}
	if raw.Message.Type != MessageTypeAssistantRequest {
		return nil, fmt.Errorf("unexpected message type: %s", raw.Message.Type)
	}

	number := strings.TrimSpace(raw.Message.Customer.Number)
	if number == "" {
		number = strings.TrimSpace(raw.Message.PhoneNumber.Number)
	}
	return &AssistantRequest{
		CallID:      strings.TrimSpace(raw.Message.Call.ID),
		PhoneNumber: number,
	}, nil
}
