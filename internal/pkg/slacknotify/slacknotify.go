package slacknotify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/MelodiaryApp/Melodiary/app/models"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/blog"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/env"
)

// Client posts messages to a Slack incoming webhook. A client with an
// empty webhook URL is valid and silently drops messages, so review
// notifications never block content staging.
type Client struct {
	WebhookURL string
	PublicURL  string

	HTTPClient *http.Client
}

func NewClientFromEnv() *Client {
	return &Client{
		WebhookURL: strings.TrimSpace(env.GetEnv("SLACK_WEBHOOK_URL", "")),
		PublicURL:  strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether a webhook URL is configured.
func (c *Client) Enabled() bool {
	return strings.TrimSpace(c.WebhookURL) != ""
}

// NotifyDraftReview sends the draft review message with approve and
// dismiss buttons. Failures are logged, never returned fatally to the
// automation flow; callers treat the returned error as advisory.
func (c *Client) NotifyDraftReview(ctx context.Context, post *models.BlogPost) error {
	if !c.Enabled() {
		log.Debug("[SlackNotify] no webhook URL configured, skipping draft review message")
		return nil
	}
	if post == nil || post.ID == 0 {
		return errors.New("post with id is required")
	}

	msg := c.buildDraftReviewMessage(post)
	if err := c.post(ctx, msg); err != nil {
		log.Errorf("[SlackNotify] draft review message for post %d failed: %v", post.ID, err)
		return err
	}
	return nil
}

func (c *Client) buildDraftReviewMessage(post *models.BlogPost) map[string]interface{} {
	excerpt := strings.TrimSpace(post.Excerpt)
	if excerpt == "" {
		excerpt = truncate(blog.StripMarkup(post.Content), 200)
	}

	approveURL := fmt.Sprintf("%s/api/blog/approve?id=%d&token=%s", c.PublicURL, post.ID, post.PreviewToken)
	dismissURL := fmt.Sprintf("%s/api/blog/dismiss?id=%d&token=%s", c.PublicURL, post.ID, post.PreviewToken)

	return map[string]interface{}{
		"text": fmt.Sprintf("New draft post awaiting review: %s", post.Title),
		"blocks": []interface{}{
			map[string]interface{}{
				"type": "section",
				"text": map[string]interface{}{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*New draft awaiting review*\n*%s*\n%s", post.Title, excerpt),
				},
			},
			map[string]interface{}{
				"type": "context",
				"elements": []interface{}{
					map[string]interface{}{
						"type": "mrkdwn",
						"text": fmt.Sprintf("Slug: `%s` | Reading time: %d min", post.Slug, post.ReadingTime),
					},
				},
			},
			map[string]interface{}{
				"type": "actions",
				"elements": []interface{}{
					map[string]interface{}{
						"type":      "button",
						"action_id": "blog_approve",
						"style":     "primary",
						"text":      map[string]interface{}{"type": "plain_text", "text": "Approve & Publish"},
						"value":     blog.SlackActionValue(blog.SlackActionApprove, post.ID, post.PreviewToken),
						"url":       approveURL,
					},
					map[string]interface{}{
						"type":      "button",
						"action_id": "blog_dismiss",
						"style":     "danger",
						"text":      map[string]interface{}{"type": "plain_text", "text": "Dismiss"},
						"value":     blog.SlackActionValue(blog.SlackActionDismiss, post.ID, post.PreviewToken),
						"url":       dismissURL,
					},
				},
			},
		},
	}
}

func (c *Client) post(ctx context.Context, msg map[string]interface{}) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}
	return nil
}

// truncate cuts on rune boundaries so a multibyte character is never
// split into invalid UTF-8.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
