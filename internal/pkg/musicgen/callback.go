package musicgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	CallbackComplete = "complete"
	CallbackError    = "error"
)

// TrackResult is one generated track inside a completion callback. A task
// yields up to two candidate tracks, addressed by their index.
type TrackResult struct {
	Index    int
	AudioURL string
	ImageURL string
	Title    string
	Lyrics   string
}

// TrackCallback is the normalized generation-provider completion payload.
// TaskID plus the track index form the idempotency key.
type TrackCallback struct {
	TaskID       string
	Failed       bool
	ErrorMessage string
	Tracks       []TrackResult
}

// VideoCallback is the normalized video-generation completion payload.
type VideoCallback struct {
	TaskID   string
	Failed   bool
	VideoURL string
}

// ParseTrackCallback validates and normalizes a track completion callback.
func ParseTrackCallback(payload []byte) (*TrackCallback, error) {
	type rawTrack struct {
		AudioURL string `json:"audio_url"`
		ImageURL string `json:"image_url"`
		Title    string `json:"title"`
		Lyric    string `json:"lyric"`
		Lyrics   string `json:"lyrics"`
	}
	var raw struct {
		Data struct {
			CallbackType string     `json:"callbackType"`
			TaskID       string     `json:"task_id"`
			ErrorMessage string     `json:"error_message"`
			Data         []rawTrack `json:"data"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("invalid generation callback payload: %w", err)
	}

	taskID := strings.TrimSpace(raw.Data.TaskID)
	if taskID == "" {
		return nil, errors.New("generation callback missing task id")
	}

	switch raw.Data.CallbackType {
	case CallbackError:
		return &TrackCallback{
			TaskID:       taskID,
			Failed:       true,
			ErrorMessage: strings.TrimSpace(raw.Data.ErrorMessage),
		}, nil
	case CallbackComplete:
		// proceed below
	default:
		return nil, fmt.Errorf("unsupported callback type: %q", raw.Data.CallbackType)
	}

	if len(raw.Data.Data) == 0 {
		return nil, errors.New("complete callback carries no tracks")
	}
	out := &TrackCallback{TaskID: taskID}
	for i, t := range raw.Data.Data {
		lyrics := t.Lyrics
		if lyrics == "" {
			lyrics = t.Lyric
		}
		out.Tracks = append(out.Tracks, TrackResult{
			Index:    i,
			AudioURL: strings.TrimSpace(t.AudioURL),
			ImageURL: strings.TrimSpace(t.ImageURL),
			Title:    strings.TrimSpace(t.Title),
			Lyrics:   lyrics,
		})
	}
	return out, nil
}

// ParseVideoCallback validates and normalizes a video completion callback.
func ParseVideoCallback(payload []byte) (*VideoCallback, error) {
	var raw struct {
		Data struct {
			TaskID       string `json:"task_id"`
			CallbackType string `json:"callbackType"`
			VideoURL     string `json:"video_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("invalid video callback payload: %w", err)
	}
	taskID := strings.TrimSpace(raw.Data.TaskID)
	if taskID == "" {
		return nil, errors.New("video callback missing task id")
	}
	switch raw.Data.CallbackType {
	case CallbackError:
		return &VideoCallback{TaskID: taskID, Failed: true}, nil
	case CallbackComplete:
		if strings.TrimSpace(raw.Data.VideoURL) == "" {
			return nil, errors.New("complete video callback missing video url")
		}
		return &VideoCallback{TaskID: taskID, VideoURL: strings.TrimSpace(raw.Data.VideoURL)}, nil
	default:
		return nil, fmt.Errorf("unsupported callback type: %q", raw.Data.CallbackType)
	}
}
