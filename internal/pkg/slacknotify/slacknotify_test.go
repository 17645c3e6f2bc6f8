package slacknotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

func reviewPost() *models.BlogPost {
	return &models.BlogPost{
		ID:           12,
		Title:        "How Melodiary Works",
		Slug:         "how-melodiary-works",
		Content:      "Some **markdown** body.",
		PreviewToken: "tok123",
		ReadingTime:  2,
		Status:       models.BlogStatusDraft,
	}
}

func TestEnabled(t *testing.T) {
	assert.False(t, (&Client{}).Enabled())
	assert.False(t, (&Client{WebhookURL: "  "}).Enabled())
	assert.True(t, (&Client{WebhookURL: "https://hooks.slack.com/services/x"}).Enabled())
}

func TestNotifyDraftReview_DisabledClientIsNoop(t *testing.T) {
	c := &Client{}
	assert.NoError(t, c.NotifyDraftReview(context.Background(), reviewPost()))
}

func TestNotifyDraftReview_PostsBlockKitMessage(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := &Client{
		WebhookURL: srv.URL,
		PublicURL:  "https://melodiary.app",
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
	require.NoError(t, c.NotifyDraftReview(context.Background(), reviewPost()))

	require.NotNil(t, received)
	assert.Contains(t, received["text"], "How Melodiary Works")

	blocks, ok := received["blocks"].([]interface{})
	require.True(t, ok)
	require.Len(t, blocks, 3)

	actions := blocks[2].(map[string]interface{})
	elements := actions["elements"].([]interface{})
	require.Len(t, elements, 2)

	approve := elements[0].(map[string]interface{})
	assert.Equal(t, "blog_approve", approve["action_id"])
	assert.Equal(t, "approve:12:tok123", approve["value"])
	assert.Equal(t, "https://melodiary.app/api/blog/approve?id=12&token=tok123", approve["url"])

	dismiss := elements[1].(map[string]interface{})
	assert.Equal(t, "blog_dismiss", dismiss["action_id"])
	assert.Equal(t, "dismiss:12:tok123", dismiss["value"])
}

func TestNotifyDraftReview_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := &Client{WebhookURL: srv.URL, HTTPClient: srv.Client()}
	err := c.NotifyDraftReview(context.Background(), reviewPost())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_payload")
}

func TestNotifyDraftReview_RequiresPersistedPost(t *testing.T) {
	c := &Client{WebhookURL: "https://hooks.slack.com/services/x", HTTPClient: &http.Client{}}
	assert.Error(t, c.NotifyDraftReview(context.Background(), nil))
	assert.Error(t, c.NotifyDraftReview(context.Background(), &models.BlogPost{}))
}

func TestBuildDraftReviewMessage_ExcerptFallback(t *testing.T) {
	c := &Client{PublicURL: "https://melodiary.app"}
	post := reviewPost()
	post.Excerpt = ""
	post.Content = "<p>" + strings.Repeat("word ", 100) + "</p>"

	msg := c.buildDraftReviewMessage(post)
	section := msg["blocks"].([]interface{})[0].(map[string]interface{})
	text := section["text"].(map[string]interface{})["text"].(string)
	assert.NotContains(t, text, "<p>", "markup is stripped from the fallback excerpt")
	assert.Contains(t, text, "word")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exact", truncate("exact", 5))

	long := strings.Repeat("a", 30)
	out := truncate(long, 10)
	assert.True(t, strings.HasSuffix(out, "…"))
	assert.LessOrEqual(t, len([]rune(out)), 11)

	multibyte := strings.Repeat("ü", 30)
	out = truncate(multibyte, 10)
	assert.True(t, utf8.ValidString(out), "truncation never splits a rune")
	assert.True(t, strings.HasSuffix(out, "…"))
	assert.LessOrEqual(t, len([]rune(out)), 11)
}
