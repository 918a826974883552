package services

import (
	goContext "context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/excel-master-lab/excel_quest_api/model"
	"github.com/excel-master-lab/excel_quest_api/shared"
)

const dayLayout = "2006-01-02"

// progressStore is the durable key-value layer behind ProgressService. One
// JSON blob per student under a fixed key prefix.
type progressStore interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// ProgressService owns per-student gamification state. All mutations are
// read-modify-write against the blob store; a single mutex serializes them
// inside this process. Concurrent writers from other processes are
// last-writer-wins, an accepted limitation.
type ProgressService struct {
	context.DefaultService

	store progressStore
	mu    sync.Mutex

	// now is swapped in tests to drive day-rollover scenarios.
	now func() time.Time
}

const PROGRESS_SVC = "progress_svc"

func (svc ProgressService) Id() string {
	return PROGRESS_SVC
}

func (svc *ProgressService) Configure(ctx *context.Context) error {
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *ProgressService) Start() error {
	if os.Getenv("PROGRESS_BACKEND") == "redis" {
		redisSvc := svc.Service(REDIS_SVC).(*RedisService)
		svc.store = &redisProgressStore{client: redisSvc.GetClient()}
		log.Println("Progress store backend: redis")
		return nil
	}

	dir := os.Getenv("PROGRESS_DIR")
	if dir == "" {
		dir = "progress_data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create progress directory: %w", err)
	}
	svc.store = &fileProgressStore{dir: dir}
	log.Printf("Progress store backend: file (%s)", dir)
	return nil
}

func progressKey(studentID string) string {
	return shared.ProgressKeyPrefix + ":" + studentID
}

// Load returns the student's progress, rolling the daily counters over when a
// new local day has started. Any storage or decode failure falls open to the
// default state; it is never fatal to the caller.
func (svc *ProgressService) Load(studentID string) (*model.Progress, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.loadLocked(studentID)
}

func (svc *ProgressService) loadLocked(studentID string) (*model.Progress, error) {
	progress := svc.read(studentID)

	today := svc.now().Format(dayLayout)
	if progress.LastActiveDay == today {
		return progress, nil
	}

	// New day: reset the daily counter and update the streak.
	yesterday := svc.now().AddDate(0, 0, -1).Format(dayLayout)
	if progress.LastActiveDay == yesterday {
		progress.Streak++
	} else {
		progress.Streak = 1
	}
	progress.DailyProgress = 0
	progress.LastActiveDay = today

	if err := svc.persist(progress); err != nil {
		log.Printf("Failed to persist day rollover for %s: %v", studentID, err)
	}
	return progress, nil
}

// read never fails: malformed or missing blobs yield the default progress.
func (svc *ProgressService) read(studentID string) *model.Progress {
	raw, err := svc.store.Get(progressKey(studentID))
	if err != nil || len(raw) == 0 {
		fresh := model.DefaultProgress(studentID)
		fresh.LastActiveDay = svc.now().Format(dayLayout)
		return fresh
	}

	var progress model.Progress
	if err := json.Unmarshal(raw, &progress); err != nil {
		log.Printf("Malformed progress blob for %s, starting fresh: %v", studentID, err)
		fresh := model.DefaultProgress(studentID)
		fresh.LastActiveDay = svc.now().Format(dayLayout)
		return fresh
	}

	progress.StudentID = studentID
	if progress.CompletedLessons == nil {
		progress.CompletedLessons = []string{}
	}
	progress.Level = progress.XP/shared.LevelStepXP + 1
	return &progress
}

func (svc *ProgressService) persist(progress *model.Progress) error {
	progress.UpdatedAt = svc.now()
	raw, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	return svc.store.Set(progressKey(progress.StudentID), raw)
}

// RecordCompletion applies the completion reward for a lesson exactly once.
// Calling it again for an already-completed lesson returns the current state
// unchanged.
func (svc *ProgressService) RecordCompletion(studentID, lessonID string, starsDelta, xpDelta int) (*model.Progress, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	progress, err := svc.loadLocked(studentID)
	if err != nil {
		return nil, err
	}

	if progress.HasCompleted(lessonID) {
		return progress, nil
	}

	progress.CompletedLessons = append(progress.CompletedLessons, lessonID)
	progress.Stars += starsDelta
	progress.XP += xpDelta
	progress.DailyProgress += xpDelta
	progress.Level = progress.XP/shared.LevelStepXP + 1

	if err := svc.persist(progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// Redeem spends stars on the completion reward.
func (svc *ProgressService) Redeem(studentID string, cost int) (*model.Progress, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	progress, err := svc.loadLocked(studentID)
	if err != nil {
		return nil, err
	}

	if progress.Stars < cost {
		return nil, shared.ErrInsufficientStars(progress.Stars, cost)
	}

	progress.Stars -= cost
	if err := svc.persist(progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// Reset clears the student's progress back to defaults.
func (svc *ProgressService) Reset(studentID string) (*model.Progress, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.store.Delete(progressKey(studentID)); err != nil {
		log.Printf("Failed to delete progress for %s: %v", studentID, err)
	}

	progress := model.DefaultProgress(studentID)
	progress.LastActiveDay = svc.now().Format(dayLayout)
	if err := svc.persist(progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// ==================== BACKENDS ====================

// fileProgressStore keeps one JSON file per key under a base directory.
type fileProgressStore struct {
	dir string
}

func (s *fileProgressStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *fileProgressStore) Get(key string) ([]byte, error) {
	return os.ReadFile(s.path(key))
}

func (s *fileProgressStore) Set(key string, value []byte) error {
	return os.WriteFile(s.path(key), value, 0o644)
}

func (s *fileProgressStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// redisProgressStore keeps blobs in redis with no expiry.
type redisProgressStore struct {
	client *redis.Client
}

func (s *redisProgressStore) Get(key string) ([]byte, error) {
	raw, err := s.client.Get(goContext.Background(), key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return raw, err
}

func (s *redisProgressStore) Set(key string, value []byte) error {
	return s.client.Set(goContext.Background(), key, value, 0).Err()
}

func (s *redisProgressStore) Delete(key string) error {
	return s.client.Del(goContext.Background(), key).Err()
}
