package musicgen

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

// TrackScheduler schedules follow-on work for a track that just became
// ready: lyric alignment and best-effort audio archival. Implemented by
// the job queue manager.
type TrackScheduler interface {
	ScheduleLyricAlignment(musicID uint) error
	ScheduleAudioArchive(musicID uint) error
}

// ApplyResult summarizes what a callback delivery changed.
type ApplyResult struct {
	Updated int
	Skipped int
	// ScheduleErrors carries failed follow-on enqueues. They are logged
	// by the caller but never fail the webhook response.
	ScheduleErrors []error
}

// Service applies generation-provider callbacks to music records.
type Service struct {
	repo      Repository
	scheduler TrackScheduler
}

// NewService creates a music generation service from an injected
// repository and scheduler.
func NewService(repo Repository, scheduler TrackScheduler) *Service {
	return &Service{repo: repo, scheduler: scheduler}
}

// NewServiceFromDB creates a music generation service from a GORM handle.
func NewServiceFromDB(db *gorm.DB, scheduler TrackScheduler) *Service {
	return NewService(NewRepository(db), scheduler)
}

// ApplyTrackCallback applies a completion callback to the music rows of
// one generation task. Transitions are applied at most once per
// (task id, index): rows already in a terminal state with populated
// output are left untouched so re-delivery cannot clobber data the app is
// already playing.
func (s *Service) ApplyTrackCallback(ctx context.Context, cb *TrackCallback) (*ApplyResult, error) {
	_ = ctx
	if cb == nil || cb.TaskID == "" {
		return nil, errors.New("track callback with task id is required")
	}

	result := &ApplyResult{}

	if cb.Failed {
		rows, err := s.repo.ListMusicByTask(cb.TaskID)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, gorm.ErrRecordNotFound
		}
		for i := range rows {
			m := &rows[i]
			if m.IsTerminal() {
				result.Skipped++
				continue
			}
			m.Status = models.MusicStatusFailed
			m.ErrorMessage = cb.ErrorMessage
			if err := s.repo.SaveMusic(m); err != nil {
				return nil, err
			}
			result.Updated++
		}
		return result, nil
	}

	for _, track := range cb.Tracks {
		m, err := s.repo.GetMusicByTaskAndIndex(cb.TaskID, track.Index)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Track rows can be soft-deleted before the callback lands.
				result.Skipped++
				continue
			}
			return nil, err
		}
		if m.IsTerminal() && m.AudioURL != "" {
			result.Skipped++
			continue
		}

		m.Status = models.MusicStatusReady
		m.AudioURL = track.AudioURL
		m.ImageURL = track.ImageURL
		if track.Title != "" {
			m.Title = track.Title
		}
		if track.Lyrics != "" {
			m.Lyrics = track.Lyrics
		}
		if err := s.repo.SaveMusic(m); err != nil {
			return nil, err
		}
		result.Updated++

		if m.Lyrics != "" {
			if err := s.scheduler.ScheduleLyricAlignment(m.ID); err != nil {
				result.ScheduleErrors = append(result.ScheduleErrors, err)
			}
		}
		if err := s.scheduler.ScheduleAudioArchive(m.ID); err != nil {
			result.ScheduleErrors = append(result.ScheduleErrors, err)
		}
	}
	return result, nil
}

// ApplyVideoCallback applies a video completion callback, keyed by the
// provider task ID.
func (s *Service) ApplyVideoCallback(ctx context.Context, cb *VideoCallback) (*ApplyResult, error) {
	_ = ctx
	if cb == nil || cb.TaskID == "" {
		return nil, errors.New("video callback with task id is required")
	}

	v, err := s.repo.GetVideoByTaskID(cb.TaskID)
	if err != nil {
		return nil, err
	}
	if v.IsTerminal() && v.VideoURL != "" {
		return &ApplyResult{Skipped: 1}, nil
	}

	if cb.Failed {
		v.Status = models.MusicVideoStatusFailed
	} else {
		v.Status = models.MusicVideoStatusReady
		v.VideoURL = cb.VideoURL
	}
	if err := s.repo.SaveVideo(v); err != nil {
		return nil, err
	}
	if v.Status == models.MusicVideoStatusReady {
		if err := s.repo.SetFavoriteVideo(v.MusicID, v.ID); err != nil {
			return nil, err
		}
	}
	return &ApplyResult{Updated: 1}, nil
}
