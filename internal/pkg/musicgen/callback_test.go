package musicgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrackCallback_Complete(t *testing.T) {
	payload := []byte(`{
		"code": 200,
		"data": {
			"callbackType": "complete",
			"task_id": "task_123",
			"data": [
				{"audio_url": "https://cdn.example.com/a0.mp3", "image_url": "https://cdn.example.com/c0.jpg", "title": "River Morning", "lyric": "[Verse]\nDown by the river"},
				{"audio_url": "https://cdn.example.com/a1.mp3", "title": "River Morning (alt)", "lyrics": "[Verse]\nAlt take"}
			]
		}
	}`)

	cb, err := ParseTrackCallback(payload)
	require.NoError(t, err)

	assert.Equal(t, "task_123", cb.TaskID)
	assert.False(t, cb.Failed)
	require.Len(t, cb.Tracks, 2)

	assert.Equal(t, 0, cb.Tracks[0].Index)
	assert.Equal(t, "https://cdn.example.com/a0.mp3", cb.Tracks[0].AudioURL)
	assert.Equal(t, "River Morning", cb.Tracks[0].Title)
	assert.Equal(t, "[Verse]\nDown by the river", cb.Tracks[0].Lyrics)

	assert.Equal(t, 1, cb.Tracks[1].Index)
	assert.Equal(t, "[Verse]\nAlt take", cb.Tracks[1].Lyrics, "lyrics key wins when lyric is absent")
}

func TestParseTrackCallback_Error(t *testing.T) {
	payload := []byte(`{"data":{"callbackType":"error","task_id":"task_123","error_message":"content policy"}}`)

	cb, err := ParseTrackCallback(payload)
	require.NoError(t, err)

	assert.True(t, cb.Failed)
	assert.Equal(t, "content policy", cb.ErrorMessage)
	assert.Empty(t, cb.Tracks)
}

func TestParseTrackCallback_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{`},
		{"missing task id", `{"data":{"callbackType":"complete","data":[{"audio_url":"x"}]}}`},
		{"unknown callback type", `{"data":{"callbackType":"text","task_id":"task_123"}}`},
		{"complete without tracks", `{"data":{"callbackType":"complete","task_id":"task_123","data":[]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTrackCallback([]byte(tt.payload))
			assert.Error(t, err)
		})
	}
}

func TestParseVideoCallback(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		cb, err := ParseVideoCallback([]byte(`{"data":{"callbackType":"complete","task_id":"vid_1","video_url":"https://cdn.example.com/v.mp4"}}`))
		require.NoError(t, err)
		assert.Equal(t, "vid_1", cb.TaskID)
		assert.False(t, cb.Failed)
		assert.Equal(t, "https://cdn.example.com/v.mp4", cb.VideoURL)
	})

	t.Run("error", func(t *testing.T) {
		cb, err := ParseVideoCallback([]byte(`{"data":{"callbackType":"error","task_id":"vid_1"}}`))
		require.NoError(t, err)
		assert.True(t, cb.Failed)
	})

	t.Run("complete without url rejected", func(t *testing.T) {
		_, err := ParseVideoCallback([]byte(`{"data":{"callbackType":"complete","task_id":"vid_1"}}`))
		assert.Error(t, err)
	})

	t.Run("missing task id rejected", func(t *testing.T) {
		_, err := ParseVideoCallback([]byte(`{"data":{"callbackType":"complete","video_url":"x"}}`))
		assert.Error(t, err)
	})
}
