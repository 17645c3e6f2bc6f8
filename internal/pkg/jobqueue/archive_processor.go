package jobqueue

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/MelodiaryApp/Melodiary/app/models"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/database"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/s3archive"
)

// processAudioArchiveJob copies a ready track's audio from the provider CDN
// into our S3 bucket. Provider URLs expire, the archive copy does not.
func (q *Queue) processAudioArchiveJob(ctx context.Context, job *Job) error {
	payload, err := AudioArchiveJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse audio archive job payload: %w", err)
	}

	log.Infof("[AudioArchive] Processing archive job for music %d", payload.MusicID)

	config, err := s3archive.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load S3 config: %w", err)
	}

	if !config.IsEnabled() {
		log.Debug("[AudioArchive] S3 archiving disabled, skipping")
		return nil
	}

	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var music models.Music
	if err := db.First(&music, payload.MusicID).Error; err != nil {
		return fmt.Errorf("failed to load music %d: %w", payload.MusicID, err)
	}

	if music.ArchiveKey != "" {
		log.Infof("[AudioArchive] Music %d already archived at %s, skipping", music.ID, music.ArchiveKey)
		return nil
	}
	if music.AudioURL == "" {
		log.Warnf("[AudioArchive] Music %d has no audio URL, skipping", music.ID)
		return nil
	}

	client, err := s3archive.NewClient(config)
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}

	ext := path.Ext(strings.SplitN(music.AudioURL, "?", 2)[0])
	if ext == "" {
		ext = ".mp3"
	}
	now := time.Now()
	objectKey := config.GetObjectKey(music.TaskID, music.MusicIndex, ext, now.Year(), int(now.Month()))

	// A retried job may have uploaded already and died before recording
	// the key. Just record it instead of downloading again.
	exists, err := client.ObjectExists(ctx, objectKey)
	if err != nil {
		return fmt.Errorf("failed to check archive object for music %d: %w", music.ID, err)
	}
	if exists {
		if err := db.Model(&music).Update("archive_key", objectKey).Error; err != nil {
			return fmt.Errorf("failed to store archive key for music %d: %w", music.ID, err)
		}
		log.Infof("[AudioArchive] Music %d already uploaded, recorded key %s", music.ID, objectKey)
		return nil
	}

	result, err := client.ArchiveURL(ctx, music.AudioURL, objectKey)
	if err != nil {
		return fmt.Errorf("failed to archive audio for music %d: %w", music.ID, err)
	}

	if err := db.Model(&music).Update("archive_key", result.ObjectKey).Error; err != nil {
		return fmt.Errorf("failed to store archive key for music %d: %w", music.ID, err)
	}

	log.Infof("[AudioArchive] Archived music %d to s3://%s/%s (%d bytes)",
		music.ID, result.BucketName, result.ObjectKey, result.Size)
	return nil
}
