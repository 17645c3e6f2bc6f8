package blog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Automation actions accepted on the content API. Closed set.
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionPublish  = "publish"
	ActionArchive  = "archive"
	ActionRedirect = "redirect"
	ActionDraft    = "draft"
)

// PostInput is the post content carried by create/update/draft operations.
type PostInput struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Excerpt    string `json:"excerpt"`
	AuthorName string `json:"author_name"`
	Slug       string `json:"slug"`
}

// Operation is a parsed automation request envelope.
type Operation struct {
	Action     string
	PostID     uint
	Post       *PostInput
	RedirectTo string
}

// ParseOperation validates an automation request envelope. Field
// requirements depend on the action: content ops need a post body,
// lifecycle ops need a post id.
func ParseOperation(payload []byte) (*Operation, error) {
	var raw struct {
		Action     string     `json:"action"`
		PostID     uint       `json:"post_id"`
		Post       *PostInput `json:"post"`
		RedirectTo string     `json:"redirect_to"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("invalid automation payload: %w", err)
	}

	action := strings.ToLower(strings.TrimSpace(raw.Action))
	op := &Operation{
		Action:     action,
		PostID:     raw.PostID,
		Post:       raw.Post,
		RedirectTo: strings.TrimSpace(raw.RedirectTo),
	}

	switch action {
	case ActionCreate, ActionDraft:
		if raw.Post == nil || strings.TrimSpace(raw.Post.Title) == "" {
			return nil, errors.New("post with title is required")
		}
	case ActionUpdate:
		if raw.PostID == 0 {
			return nil, errors.New("post_id is required")
		}
		if raw.Post == nil {
			return nil, errors.New("post body is required")
		}
	case ActionPublish, ActionArchive:
		if raw.PostID == 0 {
			return nil, errors.New("post_id is required")
		}
	case ActionRedirect:
		if raw.PostID == 0 {
			return nil, errors.New("post_id is required")
		}
		if op.RedirectTo == "" {
			return nil, errors.New("redirect_to is required")
		}
	case "":
		return nil, errors.New("missing action")
	default:
		return nil, fmt.Errorf("unknown automation action: %q", action)
	}
	return op, nil
}
