package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/MelodiaryApp/Melodiary/app/models"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/database"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/musicgen"
)

// processLyricAlignmentJob fetches word-level lyric timing from the music
// generation provider and stores it on the track.
func (q *Queue) processLyricAlignmentJob(ctx context.Context, job *Job) error {
	payload, err := LyricAlignmentJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse lyric alignment job payload: %w", err)
	}

	log.Infof("[LyricAlign] Processing alignment for music %d", payload.MusicID)

	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var music models.Music
	if err := db.First(&music, payload.MusicID).Error; err != nil {
		return fmt.Errorf("failed to load music %d: %w", payload.MusicID, err)
	}

	if music.Status != models.MusicStatusReady {
		log.Warnf("[LyricAlign] Music %d is not ready (status=%s), skipping", music.ID, music.Status)
		return nil
	}
	if len(music.Alignment) > 0 {
		log.Infof("[LyricAlign] Music %d already has alignment, skipping", music.ID)
		return nil
	}

	client := musicgen.NewProviderClientFromEnv()
	alignment, err := client.GetTimestampedLyrics(ctx, music.TaskID, music.MusicIndex)
	if err != nil {
		return fmt.Errorf("failed to fetch alignment for music %d: %w", music.ID, err)
	}

	if err := db.Model(&music).Update("alignment", alignment).Error; err != nil {
		return fmt.Errorf("failed to store alignment for music %d: %w", music.ID, err)
	}

	log.Infof("[LyricAlign] Stored %d aligned words for music %d", len(alignment), music.ID)
	return nil
}
