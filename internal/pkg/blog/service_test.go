package blog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

type fakeBlogRepo struct {
	posts  map[uint]*models.BlogPost
	nextID uint
}

func newFakeBlogRepo() *fakeBlogRepo {
	return &fakeBlogRepo{posts: make(map[uint]*models.BlogPost), nextID: 1}
}

func (r *fakeBlogRepo) GetPostByID(id uint) (*models.BlogPost, error) {
	if p, ok := r.posts[id]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeBlogRepo) SlugExists(slug string) (bool, error) {
	for _, p := range r.posts {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBlogRepo) CreatePost(post *models.BlogPost) error {
	post.ID = r.nextID
	r.nextID++
	copy := *post
	r.posts[post.ID] = &copy
	return nil
}

func (r *fakeBlogRepo) SavePost(post *models.BlogPost) error {
	copy := *post
	r.posts[post.ID] = &copy
	return nil
}

func TestCreateDraft(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := NewService(repo)

	post, err := svc.CreateDraft(context.Background(), &PostInput{
		Title:      "How Melodiary Turns Days Into Songs",
		Content:    "Some body text for the post.",
		Excerpt:    "Days into songs.",
		AuthorName: "Automation",
	})
	require.NoError(t, err)

	assert.Equal(t, models.BlogStatusDraft, post.Status)
	assert.Equal(t, "how-melodiary-turns-days-into-songs", post.Slug)
	assert.Len(t, post.PreviewToken, PreviewTokenLength)
	assert.Equal(t, 1, post.ReadingTime)
}

func TestCreateDraft_SlugCollisionGetsSuffix(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := NewService(repo)

	first, err := svc.CreateDraft(context.Background(), &PostInput{Title: "Same Title"})
	require.NoError(t, err)
	second, err := svc.CreateDraft(context.Background(), &PostInput{Title: "Same Title"})
	require.NoError(t, err)

	assert.Equal(t, "same-title", first.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Contains(t, second.Slug, "same-title-")
}

func TestCreateDraft_ExplicitSlugWins(t *testing.T) {
	svc := NewService(newFakeBlogRepo())

	post, err := svc.CreateDraft(context.Background(), &PostInput{Title: "Whatever", Slug: "custom-slug"})
	require.NoError(t, err)
	assert.Equal(t, "custom-slug", post.Slug)
}

func TestCreateDraft_Rejections(t *testing.T) {
	svc := NewService(newFakeBlogRepo())

	_, err := svc.CreateDraft(context.Background(), nil)
	assert.Error(t, err)

	_, err = svc.CreateDraft(context.Background(), &PostInput{Title: "   "})
	assert.Error(t, err)

	_, err = svc.CreateDraft(context.Background(), &PostInput{Title: "!?!"})
	assert.Error(t, err, "title that produces an empty slug is rejected")
}

func TestUpdatePost(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := NewService(repo)
	post, err := svc.CreateDraft(context.Background(), &PostInput{Title: "Original", Content: "short"})
	require.NoError(t, err)

	updated, err := svc.UpdatePost(context.Background(), post.ID, &PostInput{Content: "longer body with more words than before"})
	require.NoError(t, err)

	assert.Equal(t, "Original", updated.Title, "empty fields keep existing values")
	assert.Equal(t, post.Slug, updated.Slug, "slug stays stable across updates")
	assert.Equal(t, "longer body with more words than before", updated.Content)

	_, err = svc.UpdatePost(context.Background(), 999, &PostInput{Content: "x"})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPublishAndArchiveAreIdempotent(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := NewService(repo)
	post, err := svc.CreateDraft(context.Background(), &PostInput{Title: "To Publish"})
	require.NoError(t, err)

	published, already, err := svc.Publish(context.Background(), post.ID)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, models.BlogStatusPublished, published.Status)
	assert.NotNil(t, published.PublishedAt)
	assert.Empty(t, published.PreviewToken, "publishing consumes the preview token")

	_, already, err = svc.Publish(context.Background(), post.ID)
	require.NoError(t, err)
	assert.True(t, already)

	archived, already, err := svc.Archive(context.Background(), post.ID)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, models.BlogStatusArchived, archived.Status)

	_, already, err = svc.Archive(context.Background(), post.ID)
	require.NoError(t, err)
	assert.True(t, already)
}

func TestRedirect(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := NewService(repo)
	post, err := svc.CreateDraft(context.Background(), &PostInput{Title: "Old Home"})
	require.NoError(t, err)

	updated, err := svc.Redirect(context.Background(), post.ID, "/blog/new-home")
	require.NoError(t, err)
	assert.Equal(t, "/blog/new-home", updated.RedirectTo)

	_, err = svc.Redirect(context.Background(), post.ID, "  ")
	assert.Error(t, err)
}

func TestApproveDraft(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := NewService(repo)
	post, err := svc.CreateDraft(context.Background(), &PostInput{Title: "Pending"})
	require.NoError(t, err)
	token := post.PreviewToken

	t.Run("wrong token", func(t *testing.T) {
		_, _, err := svc.ApproveDraft(context.Background(), post.ID, "wrong")
		assert.ErrorIs(t, err, ErrTokenMismatch)
	})

	t.Run("empty token", func(t *testing.T) {
		_, _, err := svc.ApproveDraft(context.Background(), post.ID, "")
		assert.ErrorIs(t, err, ErrTokenMismatch)
	})

	t.Run("unknown post", func(t *testing.T) {
		_, _, err := svc.ApproveDraft(context.Background(), 999, token)
		assert.ErrorIs(t, err, ErrPostNotFound)
	})

	t.Run("approve publishes", func(t *testing.T) {
		approved, already, err := svc.ApproveDraft(context.Background(), post.ID, token)
		require.NoError(t, err)
		assert.False(t, already)
		assert.Equal(t, models.BlogStatusPublished, approved.Status)
	})

	t.Run("double click is already-processed, not an error", func(t *testing.T) {
		p, already, err := svc.ApproveDraft(context.Background(), post.ID, token)
		require.NoError(t, err)
		assert.True(t, already)
		assert.Equal(t, models.BlogStatusPublished, p.Status)
	})
}

func TestDismissDraft(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := NewService(repo)
	post, err := svc.CreateDraft(context.Background(), &PostInput{Title: "Rejected"})
	require.NoError(t, err)
	token := post.PreviewToken

	dismissed, already, err := svc.DismissDraft(context.Background(), post.ID, token)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, models.BlogStatusArchived, dismissed.Status)
	assert.Empty(t, dismissed.PreviewToken)

	// Re-clicked dismiss link resolves idempotently even though the token
	// was consumed.
	p, already, err := svc.DismissDraft(context.Background(), post.ID, token)
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, models.BlogStatusArchived, p.Status)
}

func TestNewPreviewToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		token, err := NewPreviewToken()
		require.NoError(t, err)
		assert.Len(t, token, PreviewTokenLength)
		assert.False(t, seen[token], "tokens must not repeat")
		seen[token] = true
		for _, r := range token {
			assert.Contains(t, tokenAlphabet, string(r))
		}
	}
}
