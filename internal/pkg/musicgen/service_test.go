package musicgen

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

type fakeMusicgenRepo struct {
	musics    map[string]*models.Music // keyed "taskID/index"
	video     *models.MusicVideo
	favorites map[uint]uint
}

func newFakeMusicgenRepo() *fakeMusicgenRepo {
	return &fakeMusicgenRepo{
		musics:    make(map[string]*models.Music),
		favorites: make(map[uint]uint),
	}
}

func musicKey(taskID string, index int) string {
	return fmt.Sprintf("%s/%d", taskID, index)
}

func (r *fakeMusicgenRepo) add(m *models.Music) {
	r.musics[musicKey(m.TaskID, m.MusicIndex)] = m
}

func (r *fakeMusicgenRepo) GetMusicByTaskAndIndex(taskID string, musicIndex int) (*models.Music, error) {
	if m, ok := r.musics[musicKey(taskID, musicIndex)]; ok {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMusicgenRepo) ListMusicByTask(taskID string) ([]models.Music, error) {
	var out []models.Music
	for i := 0; i < 4; i++ {
		if m, ok := r.musics[musicKey(taskID, i)]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMusicgenRepo) SaveMusic(m *models.Music) error {
	r.add(m)
	return nil
}

func (r *fakeMusicgenRepo) GetVideoByTaskID(taskID string) (*models.MusicVideo, error) {
	if r.video != nil && r.video.TaskID == taskID {
		return r.video, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMusicgenRepo) SaveVideo(v *models.MusicVideo) error {
	r.video = v
	return nil
}

func (r *fakeMusicgenRepo) SetFavoriteVideo(musicID, videoID uint) error {
	if _, ok := r.favorites[musicID]; !ok {
		r.favorites[musicID] = videoID
	}
	return nil
}

type fakeTrackScheduler struct {
	alignments []uint
	archives   []uint
}

func (s *fakeTrackScheduler) ScheduleLyricAlignment(musicID uint) error {
	s.alignments = append(s.alignments, musicID)
	return nil
}

func (s *fakeTrackScheduler) ScheduleAudioArchive(musicID uint) error {
	s.archives = append(s.archives, musicID)
	return nil
}

func pendingTrack(id uint, taskID string, index int) *models.Music {
	return &models.Music{ID: id, UserID: 1, TaskID: taskID, MusicIndex: index, Status: models.MusicStatusPending}
}

func TestApplyTrackCallback_Complete(t *testing.T) {
	repo := newFakeMusicgenRepo()
	repo.add(pendingTrack(10, "task_1", 0))
	repo.add(pendingTrack(11, "task_1", 1))
	sched := &fakeTrackScheduler{}
	svc := NewService(repo, sched)

	result, err := svc.ApplyTrackCallback(context.Background(), &TrackCallback{
		TaskID: "task_1",
		Tracks: []TrackResult{
			{Index: 0, AudioURL: "https://cdn/a0.mp3", Title: "Song A", Lyrics: "la la"},
			{Index: 1, AudioURL: "https://cdn/a1.mp3", Title: "Song B"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, result.ScheduleErrors)

	m0, _ := repo.GetMusicByTaskAndIndex("task_1", 0)
	assert.Equal(t, models.MusicStatusReady, m0.Status)
	assert.Equal(t, "https://cdn/a0.mp3", m0.AudioURL)
	assert.Equal(t, "Song A", m0.Title)

	// Alignment is only scheduled when lyrics are present; archival always.
	assert.Equal(t, []uint{10}, sched.alignments)
	assert.Equal(t, []uint{10, 11}, sched.archives)
}

func TestApplyTrackCallback_RedeliverySkipsTerminalRows(t *testing.T) {
	repo := newFakeMusicgenRepo()
	ready := pendingTrack(10, "task_1", 0)
	ready.Status = models.MusicStatusReady
	ready.AudioURL = "https://cdn/original.mp3"
	repo.add(ready)
	sched := &fakeTrackScheduler{}
	svc := NewService(repo, sched)

	result, err := svc.ApplyTrackCallback(context.Background(), &TrackCallback{
		TaskID: "task_1",
		Tracks: []TrackResult{{Index: 0, AudioURL: "https://cdn/other.mp3"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, sched.archives)

	m, _ := repo.GetMusicByTaskAndIndex("task_1", 0)
	assert.Equal(t, "https://cdn/original.mp3", m.AudioURL, "redelivery must not clobber stored output")
}

func TestApplyTrackCallback_Error(t *testing.T) {
	repo := newFakeMusicgenRepo()
	repo.add(pendingTrack(10, "task_1", 0))
	failed := pendingTrack(11, "task_1", 1)
	failed.Status = models.MusicStatusFailed
	repo.add(failed)
	svc := NewService(repo, &fakeTrackScheduler{})

	result, err := svc.ApplyTrackCallback(context.Background(), &TrackCallback{
		TaskID:       "task_1",
		Failed:       true,
		ErrorMessage: "content policy",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped)

	m, _ := repo.GetMusicByTaskAndIndex("task_1", 0)
	assert.Equal(t, models.MusicStatusFailed, m.Status)
	assert.Equal(t, "content policy", m.ErrorMessage)
}

func TestApplyTrackCallback_UnknownTask(t *testing.T) {
	svc := NewService(newFakeMusicgenRepo(), &fakeTrackScheduler{})

	_, err := svc.ApplyTrackCallback(context.Background(), &TrackCallback{TaskID: "task_x", Failed: true})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestApplyTrackCallback_MissingRowSkipped(t *testing.T) {
	repo := newFakeMusicgenRepo()
	repo.add(pendingTrack(10, "task_1", 0))
	svc := NewService(repo, &fakeTrackScheduler{})

	result, err := svc.ApplyTrackCallback(context.Background(), &TrackCallback{
		TaskID: "task_1",
		Tracks: []TrackResult{
			{Index: 0, AudioURL: "https://cdn/a0.mp3"},
			{Index: 1, AudioURL: "https://cdn/a1.mp3"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped, "soft-deleted rows are skipped, not an error")
}

func TestApplyVideoCallback(t *testing.T) {
	t.Run("complete marks ready and sets favorite", func(t *testing.T) {
		repo := newFakeMusicgenRepo()
		repo.video = &models.MusicVideo{ID: 5, MusicID: 10, TaskID: "vid_1", Status: models.MusicVideoStatusPending}
		svc := NewService(repo, &fakeTrackScheduler{})

		result, err := svc.ApplyVideoCallback(context.Background(), &VideoCallback{TaskID: "vid_1", VideoURL: "https://cdn/v.mp4"})
		require.NoError(t, err)

		assert.Equal(t, 1, result.Updated)
		assert.Equal(t, models.MusicVideoStatusReady, repo.video.Status)
		assert.Equal(t, "https://cdn/v.mp4", repo.video.VideoURL)
		assert.Equal(t, uint(5), repo.favorites[10])
	})

	t.Run("redelivery skipped", func(t *testing.T) {
		repo := newFakeMusicgenRepo()
		repo.video = &models.MusicVideo{ID: 5, MusicID: 10, TaskID: "vid_1", Status: models.MusicVideoStatusReady, VideoURL: "https://cdn/v.mp4"}
		svc := NewService(repo, &fakeTrackScheduler{})

		result, err := svc.ApplyVideoCallback(context.Background(), &VideoCallback{TaskID: "vid_1", VideoURL: "https://cdn/other.mp4"})
		require.NoError(t, err)

		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, "https://cdn/v.mp4", repo.video.VideoURL)
	})

	t.Run("error marks failed without favorite", func(t *testing.T) {
		repo := newFakeMusicgenRepo()
		repo.video = &models.MusicVideo{ID: 5, MusicID: 10, TaskID: "vid_1", Status: models.MusicVideoStatusPending}
		svc := NewService(repo, &fakeTrackScheduler{})

		result, err := svc.ApplyVideoCallback(context.Background(), &VideoCallback{TaskID: "vid_1", Failed: true})
		require.NoError(t, err)

		assert.Equal(t, 1, result.Updated)
		assert.Equal(t, models.MusicVideoStatusFailed, repo.video.Status)
		assert.Empty(t, repo.favorites)
	})

	t.Run("unknown task", func(t *testing.T) {
		svc := NewService(newFakeMusicgenRepo(), &fakeTrackScheduler{})
		_, err := svc.ApplyVideoCallback(context.Background(), &VideoCallback{TaskID: "vid_x", Failed: true})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
