package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

var (
	// ErrPostNotFound means neither the id nor the token resolves a post.
	ErrPostNotFound = errors.New("blog post not found")
	// ErrTokenMismatch means the (post id, token) pair does not match;
	// this is a hard error, unlike the idempotent already-processed case.
	ErrTokenMismatch = errors.New("preview token mismatch")
)

// Service manages automation-staged blog content.
type Service struct {
	repo Repository
}

// NewService creates a blog service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a blog service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// CreateDraft stages a new draft post: slug generation with a timestamp
// suffix on collision, reading-time estimation, and a single-use preview
// token for the review links.
func (s *Service) CreateDraft(ctx context.Context, in *PostInput) (*models.BlogPost, error) {
	_ = ctx
	if in == nil || strings.TrimSpace(in.Title) == "" {
		return nil, errors.New("post title is required")
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = GenerateSlug(in.Title)
	}
	if slug == "" {
		return nil, errors.New("title produces an empty slug")
	}
	exists, err := s.repo.SlugExists(slug)
	if err != nil {
		return nil, err
	}
	if exists {
		// Slug already exists, append timestamp
		slug = fmt.Sprintf("%s-%d", slug, time.Now().Unix())
	}

	token, err := NewPreviewToken()
	if err != nil {
		return nil, err
	}

	post := &models.BlogPost{
		Title:        strings.TrimSpace(in.Title),
		Slug:         slug,
		Content:      in.Content,
		Excerpt:      strings.TrimSpace(in.Excerpt),
		AuthorName:   strings.TrimSpace(in.AuthorName),
		Status:       models.BlogStatusDraft,
		PreviewToken: token,
		ReadingTime:  ReadingTime(in.Content),
	}
	if err := s.repo.CreatePost(post); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost replaces the content fields of an existing post and
// recomputes the reading time. The slug is kept stable.
func (s *Service) UpdatePost(ctx context.Context, postID uint, in *PostInput) (*models.BlogPost, error) {
	_ = ctx
	post, err := s.getPost(postID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Title) != "" {
		post.Title = strings.TrimSpace(in.Title)
	}
	if in.Content != "" {
		post.Content = in.Content
		post.ReadingTime = ReadingTime(in.Content)
	}
	if strings.TrimSpace(in.Excerpt) != "" {
		post.Excerpt = strings.TrimSpace(in.Excerpt)
	}
	if strings.TrimSpace(in.AuthorName) != "" {
		post.AuthorName = strings.TrimSpace(in.AuthorName)
	}
	if err := s.repo.SavePost(post); err != nil {
		return nil, err
	}
	return post, nil
}

// Publish makes a post live. Publishing an already-published post is a
// no-op that reports alreadyProcessed.
func (s *Service) Publish(ctx context.Context, postID uint) (*models.BlogPost, bool, error) {
	_ = ctx
	post, err := s.getPost(postID)
	if err != nil {
		return nil, false, err
	}
	if post.Status == models.BlogStatusPublished {
		return post, true, nil
	}

	now := time.Now()
	post.Status = models.BlogStatusPublished
	post.PublishedAt = &now
	post.PreviewToken = ""
	if err := s.repo.SavePost(post); err != nil {
		return nil, false, err
	}
	return post, false, nil
}

// Archive takes a post off the site. Idempotent like Publish.
func (s *Service) Archive(ctx context.Context, postID uint) (*models.BlogPost, bool, error) {
	_ = ctx
	post, err := s.getPost(postID)
	if err != nil {
		return nil, false, err
	}
	if post.Status == models.BlogStatusArchived {
		return post, true, nil
	}

	post.Status = models.BlogStatusArchived
	post.PreviewToken = ""
	if err := s.repo.SavePost(post); err != nil {
		return nil, false, err
	}
	return post, false, nil
}

// Redirect points an archived or renamed post at a new location.
func (s *Service) Redirect(ctx context.Context, postID uint, target string) (*models.BlogPost, error) {
	_ = ctx
	if strings.TrimSpace(target) == "" {
		return nil, errors.New("redirect target is required")
	}
	post, err := s.getPost(postID)
	if err != nil {
		return nil, err
	}
	post.RedirectTo = strings.TrimSpace(target)
	if err := s.repo.SavePost(post); err != nil {
		return nil, err
	}
	return post, nil
}

// ApproveDraft publishes a draft when the (post id, token) pair matches.
// Three failure classes: not-found, already-processed (returned as a
// non-error so a double click never surfaces a failure) and token
// mismatch.
func (s *Service) ApproveDraft(ctx context.Context, postID uint, token string) (*models.BlogPost, bool, error) {
	post, err := s.resolveDraft(postID, token)
	if err != nil {
		if errors.Is(err, errAlreadyProcessed) {
			p, _ := s.getPost(postID)
			return p, true, nil
		}
		return nil, false, err
	}
	post2, already, err := s.Publish(ctx, post.ID)
	return post2, already, err
}

// DismissDraft archives a draft under the same guards as ApproveDraft.
func (s *Service) DismissDraft(ctx context.Context, postID uint, token string) (*models.BlogPost, bool, error) {
	post, err := s.resolveDraft(postID, token)
	if err != nil {
		if errors.Is(err, errAlreadyProcessed) {
			p, _ := s.getPost(postID)
			return p, true, nil
		}
		return nil, false, err
	}
	post2, already, err := s.Archive(ctx, post.ID)
	return post2, already, err
}

var errAlreadyProcessed = errors.New("draft already processed")

// resolveDraft enforces the token guard. Published and archived posts have
// their token cleared, so a re-clicked review link resolves to the
// already-processed branch instead of a mismatch error.
func (s *Service) resolveDraft(postID uint, token string) (*models.BlogPost, error) {
	post, err := s.getPost(postID)
	if err != nil {
		return nil, err
	}
	if post.Status != models.BlogStatusDraft {
		return nil, errAlreadyProcessed
	}
	if token == "" || post.PreviewToken == "" || post.PreviewToken != token {
		return nil, ErrTokenMismatch
	}
	return post, nil
}

func (s *Service) getPost(postID uint) (*models.BlogPost, error) {
	post, err := s.repo.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}
