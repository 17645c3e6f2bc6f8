package controllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MelodiaryApp/Melodiary/app/models"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/blog"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/database"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/env"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/slacknotify"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhookauth"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhooklog"
)

// HandleBlogAutomation is the content-automation entry point. The caller
// is a pipeline, not a browser: requests are HMAC-signed over the raw
// body and carry an action envelope.
func HandleBlogAutomation(c *fiber.Ctx) error {
	lg := webhooklog.New("BlogAutomation")
	defer lg.Timer()()

	body := c.Body()
	if err := webhookauth.VerifyHMACSignature(
		body,
		c.Get("X-Webhook-Signature"),
		c.Get(fiber.HeaderAuthorization),
		env.GetEnv("BLOG_AUTOMATION_SECRET", ""),
	); err != nil {
		return authError(c, lg, err)
	}

	op, err := blog.ParseOperation(body)
	if err != nil {
		return badRequest(c, lg, err)
	}
	lg = lg.With("action", op.Action)

	svc := blog.NewServiceFromDB(database.GetDB())

	switch op.Action {
	case blog.ActionCreate, blog.ActionDraft:
		post, err := svc.CreateDraft(c.Context(), op.Post)
		if err != nil {
			return serverError(c, lg, err)
		}
		lg.Infof("created draft %d (slug=%s)", post.ID, post.Slug)

		// Review notification is fire-and-forget; staging never fails
		// because Slack is down.
		if op.Action == blog.ActionDraft {
			go func(p models.BlogPost) {
				ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				_ = slacknotify.NewClientFromEnv().NotifyDraftReview(ctx, &p)
			}(*post)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"status":       "ok",
			"post_id":      post.ID,
			"slug":         post.Slug,
			"reading_time": post.ReadingTime,
		})

	case blog.ActionUpdate:
		post, err := svc.UpdatePost(c.Context(), op.PostID, op.Post)
		if err != nil {
			return blogOpError(c, lg, err)
		}
		lg.Infof("updated post %d", post.ID)
		return blogOpOK(c, post, false)

	case blog.ActionPublish:
		post, already, err := svc.Publish(c.Context(), op.PostID)
		if err != nil {
			return blogOpError(c, lg, err)
		}
		lg.Infof("published post %d (already=%v)", post.ID, already)
		return blogOpOK(c, post, already)

	case blog.ActionArchive:
		post, already, err := svc.Archive(c.Context(), op.PostID)
		if err != nil {
			return blogOpError(c, lg, err)
		}
		lg.Infof("archived post %d (already=%v)", post.ID, already)
		return blogOpOK(c, post, already)

	case blog.ActionRedirect:
		post, err := svc.Redirect(c.Context(), op.PostID, op.RedirectTo)
		if err != nil {
			return blogOpError(c, lg, err)
		}
		lg.Infof("redirected post %d -> %s", post.ID, post.RedirectTo)
		return blogOpOK(c, post, false)
	}

	return badRequest(c, lg, fmt.Errorf("unknown automation action: %q", op.Action))
}

func blogOpError(c *fiber.Ctx, lg *webhooklog.Logger, err error) error {
	if errors.Is(err, blog.ErrPostNotFound) {
		lg.Warnf("post not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post not found"})
	}
	return serverError(c, lg, err)
}

func blogOpOK(c *fiber.Ctx, post *models.BlogPost, already bool) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":            "ok",
		"post_id":           post.ID,
		"post_status":       post.Status,
		"already_processed": already,
	})
}

// HandleBlogApprove publishes a draft from the review link. The link is
// clicked by a human, so the responses are small HTML pages, and a
// double click resolves to the friendly already-processed page instead of
// an error.
func HandleBlogApprove(c *fiber.Ctx) error {
	return handleReviewLink(c, "approve")
}

// HandleBlogDismiss archives a draft from the review link.
func HandleBlogDismiss(c *fiber.Ctx) error {
	return handleReviewLink(c, "dismiss")
}

func handleReviewLink(c *fiber.Ctx, action string) error {
	lg := webhooklog.New("BlogReviewLink").With("action", action)
	defer lg.Timer()()

	postID := c.QueryInt("id")
	token := c.Query("token")
	if postID <= 0 || token == "" {
		return reviewPage(c, fiber.StatusBadRequest, "Invalid link", "This review link is incomplete.")
	}

	svc := blog.NewServiceFromDB(database.GetDB())

	var post *models.BlogPost
	var already bool
	var err error
	if action == "approve" {
		post, already, err = svc.ApproveDraft(c.Context(), uint(postID), token)
	} else {
		post, already, err = svc.DismissDraft(c.Context(), uint(postID), token)
	}
	if err != nil {
		status, title, message := reviewFailure(err)
		if status == fiber.StatusInternalServerError {
			lg.Errorf("review action failed: %v", err)
		} else {
			lg.Warnf("review link rejected for post %d: %v", postID, err)
		}
		return reviewPage(c, status, title, message)
	}

	if already {
		lg.Infof("post %d already processed (status=%s)", post.ID, post.Status)
		return reviewPage(c, fiber.StatusOK, "Already handled", fmt.Sprintf("This draft was already %s.", post.Status))
	}

	lg.Infof("post %d %sd", post.ID, action)
	if action == "approve" {
		return reviewPage(c, fiber.StatusOK, "Published", fmt.Sprintf("“%s” is now live.", post.Title))
	}
	return reviewPage(c, fiber.StatusOK, "Dismissed", fmt.Sprintf("“%s” was archived.", post.Title))
}

// reviewFailure maps a review-link error onto the confirmation page.
// A token mismatch is a malformed link (400), not a permission problem.
func reviewFailure(err error) (int, string, string) {
	switch {
	case errors.Is(err, blog.ErrPostNotFound):
		return fiber.StatusNotFound, "Not found", "This draft no longer exists."
	case errors.Is(err, blog.ErrTokenMismatch):
		return fiber.StatusBadRequest, "Invalid link", "This review link is not valid."
	default:
		return fiber.StatusInternalServerError, "Something went wrong", "Please try again in a moment."
	}
}

func reviewPage(c *fiber.Ctx, status int, title, message string) error {
	c.Type("html", "utf-8")
	return c.Status(status).SendString(fmt.Sprintf(
		`<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4rem;">
<h1>%s</h1>
<p>%s</p>
</body>
</html>`, title, title, message))
}

// HandleBlogSlackAction processes button clicks from the Slack review
// message. Slack retries on non-2xx, so already-processed drafts are
// acknowledged with a status line instead of an error.
func HandleBlogSlackAction(c *fiber.Ctx) error {
	lg := webhooklog.New("BlogSlackAction")
	defer lg.Timer()()

	if err := webhookauth.VerifySlackSignature(
		c.Body(),
		c.Get("X-Slack-Request-Timestamp"),
		c.Get("X-Slack-Signature"),
		env.GetEnv("SLACK_SIGNING_SECRET", ""),
		time.Now(),
	); err != nil {
		return authError(c, lg, err)
	}

	interaction, err := blog.ParseSlackInteraction(c.FormValue("payload"))
	if err != nil {
		return badRequest(c, lg, err)
	}
	lg = lg.With("action", interaction.Action, "post", interaction.PostID)

	svc := blog.NewServiceFromDB(database.GetDB())

	var post *models.BlogPost
	var already bool
	if interaction.Action == blog.SlackActionApprove {
		post, already, err = svc.ApproveDraft(c.Context(), interaction.PostID, interaction.Token)
	} else {
		post, already, err = svc.DismissDraft(c.Context(), interaction.PostID, interaction.Token)
	}
	if err != nil {
		switch {
		case errors.Is(err, blog.ErrPostNotFound):
			return slackResponse(c, "This draft no longer exists.")
		case errors.Is(err, blog.ErrTokenMismatch):
			lg.Warnf("token mismatch")
			return slackResponse(c, "This review message is no longer valid.")
		default:
			lg.Errorf("slack action failed: %v", err)
			return serverError(c, lg, err)
		}
	}

	by := interaction.UserName
	if by == "" {
		by = "someone"
	}
	if already {
		return slackResponse(c, fmt.Sprintf("Draft was already %s.", post.Status))
	}
	if interaction.Action == blog.SlackActionApprove {
		lg.Infof("post %d published via slack", post.ID)
		return slackResponse(c, fmt.Sprintf(":white_check_mark: *%s* published by %s.", post.Title, by))
	}
	lg.Infof("post %d dismissed via slack", post.ID)
	return slackResponse(c, fmt.Sprintf(":wastebasket: *%s* dismissed by %s.", post.Title, by))
}

// slackResponse replaces the original review message with a status line.
func slackResponse(c *fiber.Ctx, text string) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"response_type":    "in_channel",
		"replace_original": true,
		"text":             text,
	})
}
