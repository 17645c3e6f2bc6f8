package musicgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MelodiaryApp/Melodiary/app/models"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/env"
)

const defaultProviderAPIBaseURL = "https://api.sunoapi.org/api/v1"

// ProviderClient talks to the music generation provider's REST API for
// follow-up requests that are not delivered by callback, currently the
// word-level lyric timing lookup.
type ProviderClient struct {
	APIKey     string
	APIBaseURL string

	HTTPClient *http.Client
}

func NewProviderClientFromEnv() *ProviderClient {
	return &ProviderClient{
		APIKey:     strings.TrimSpace(env.GetEnv("MUSICGEN_API_KEY", "")),
		APIBaseURL: strings.TrimSpace(env.GetEnv("MUSICGEN_API_BASE_URL", defaultProviderAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetTimestampedLyrics fetches the word alignment for one generated track.
// The provider addresses tracks by task id plus the track's index within
// the task.
func (c *ProviderClient) GetTimestampedLyrics(ctx context.Context, taskID string, musicIndex int) (models.WordAlignment, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, errors.New("MUSICGEN_API_KEY is not configured")
	}
	if strings.TrimSpace(taskID) == "" {
		return nil, errors.New("task id is required")
	}

	baseURL := strings.TrimRight(c.APIBaseURL, "/")
	u, err := url.Parse(baseURL + "/generate/get-timestamped-lyrics")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("taskId", taskID)
	q.Set("musicIndex", fmt.Sprintf("%d", musicIndex))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("timestamped lyrics request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var raw struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		Data struct {
			AlignedWords []struct {
				Word    string  `json:"word"`
				StartS  float64 `json:"start_s"`
				EndS    float64 `json:"end_s"`
				Success bool    `json:"success"`
			} `json:"alignedWords"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if raw.Code != 0 && raw.Code != 200 {
		return nil, fmt.Errorf("timestamped lyrics request rejected: code=%d msg=%s", raw.Code, raw.Msg)
	}

	alignment := make(models.WordAlignment, 0, len(raw.Data.AlignedWords))
	for _, w := range raw.Data.AlignedWords {
		word := strings.TrimSpace(w.Word)
		if word == "" {
			continue
		}
		alignment = append(alignment, models.AlignedWord{
			Word:    word,
			StartS:  w.StartS,
			EndS:    w.EndS,
			Success: w.Success,
		})
	}
	if len(alignment) == 0 {
		return nil, errors.New("provider returned no aligned words")
	}
	return alignment, nil
}
