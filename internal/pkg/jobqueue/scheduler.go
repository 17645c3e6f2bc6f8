package jobqueue

// Scheduler is the thin enqueue facade handed to the webhook services.
// It hides queue mechanics behind the per-workflow schedule methods.
type Scheduler struct {
	queue *Queue
}

// NewScheduler creates a scheduler on top of a queue.
func NewScheduler(queue *Queue) *Scheduler {
	return &Scheduler{queue: queue}
}

// ScheduleDiaryGeneration enqueues a diary generation job for a call session.
func (s *Scheduler) ScheduleDiaryGeneration(sessionID, userID uint) error {
	payload := DiaryGenerationJobPayload{
		SessionID: sessionID,
		UserID:    userID,
	}
	_, err := s.queue.EnqueueJob(JobTypeDiaryGeneration, payload.ToMap())
	return err
}

// ScheduleLyricAlignment enqueues a lyric alignment job for a ready track.
func (s *Scheduler) ScheduleLyricAlignment(musicID uint) error {
	payload := LyricAlignmentJobPayload{MusicID: musicID}
	_, err := s.queue.EnqueueJob(JobTypeLyricAlignment, payload.ToMap())
	return err
}

// ScheduleAudioArchive enqueues an audio archive job for a ready track.
func (s *Scheduler) ScheduleAudioArchive(musicID uint) error {
	payload := AudioArchiveJobPayload{MusicID: musicID}
	_, err := s.queue.EnqueueJob(JobTypeAudioArchive, payload.ToMap())
	return err
}
