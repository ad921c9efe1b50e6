package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"sekur/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const leaderboardCacheTTL = 30 * time.Second

type ProgressService struct {
	db    *gorm.DB
	redis *redis.Client
	log   *zap.Logger
}

func NewProgressService(db *gorm.DB, redisClient *redis.Client, log *zap.Logger) *ProgressService {
	return &ProgressService{db: db, redis: redisClient, log: log}
}

type LessonRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type LessonProgressEntry struct {
	ID          uint       `json:"id,omitempty"`
	UserID      uint       `json:"userId"`
	LessonID    uint       `json:"lessonId"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	Lesson      LessonRef  `json:"lesson"`
}

type QuizProgressEntry struct {
	ID          uint       `json:"id"` // best attempt id
	QuizID      uint       `json:"quizId"`
	QuizTitle   string     `json:"quizTitle"`
	LessonID    uint       `json:"lessonId"`
	LessonTitle string     `json:"lessonTitle"`
	Score       int        `json:"score"`
	MaxScore    int        `json:"maxScore"`
	Percentage  int        `json:"percentage"`
	CompletedAt *time.Time `json:"completedAt"`
	Passed      bool       `json:"passed"`
	Attempts    int        `json:"attempts"`
}

type ProgressSummary struct {
	TotalLessons      int `json:"totalLessons"`
	CompletedLessons  int `json:"completedLessons"`
	TotalQuizzes      int `json:"totalQuizzes"`
	PassedQuizzes     int `json:"passedQuizzes"`
	OverallCompletion int `json:"overallCompletion"`
}

type ComprehensiveProgress struct {
	Lessons []LessonProgressEntry `json:"lessons"`
	Quizzes []QuizProgressEntry   `json:"quizzes"`
	Summary ProgressSummary       `json:"summary"`
}

type UserStats struct {
	TotalLessons     int     `json:"totalLessons"`
	CompletedLessons int     `json:"completedLessons"`
	CompletionRate   float64 `json:"completionRate"`
	TotalQuizzes     int     `json:"totalQuizzes"`
	CompletedQuizzes int     `json:"completedQuizzes"`
	AverageScore     float64 `json:"averageScore"`
}

type LeaderboardEntry struct {
	UserID           uint       `json:"userId"`
	Name             string     `json:"name"`
	TotalScore       int        `json:"totalScore"`
	TotalMaxScore    int        `json:"totalMaxScore"`
	Percentage       int        `json:"percentage"`
	QuizzesCompleted int        `json:"quizzesCompleted"`
	LastCompletedAt  *time.Time `json:"lastCompletedAt"`
}

// GetUserProgress returns the user's progress rows across all lessons,
// ordered by lesson id ascending.
func (s *ProgressService) GetUserProgress(userID uint) ([]LessonProgressEntry, error) {
	var rows []models.UserProgress
	err := s.db.Where("user_id = ?", userID).
		Preload("Lesson").
		Order("lesson_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]LessonProgressEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, LessonProgressEntry{
			ID:          row.ID,
			UserID:      row.UserID,
			LessonID:    row.LessonID,
			Completed:   row.Completed,
			CompletedAt: row.CompletedAt,
			Lesson:      LessonRef{ID: row.Lesson.ID, Title: row.Lesson.Title},
		})
	}
	return entries, nil
}

// GetLessonProgress returns the row for one lesson, or a zero-progress
// placeholder when the user has not touched the lesson yet.
func (s *ProgressService) GetLessonProgress(userID, lessonID uint) (*LessonProgressEntry, error) {
	var row models.UserProgress
	err := s.db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Preload("Lesson").
		First(&row).Error
	if err == nil {
		return &LessonProgressEntry{
			ID:          row.ID,
			UserID:      row.UserID,
			LessonID:    row.LessonID,
			Completed:   row.Completed,
			CompletedAt: row.CompletedAt,
			Lesson:      LessonRef{ID: row.Lesson.ID, Title: row.Lesson.Title},
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var lesson models.Lesson
	if err := s.db.First(&lesson, lessonID).Error; err != nil {
		return nil, orNotFound(err)
	}
	return &LessonProgressEntry{
		UserID:   userID,
		LessonID: lessonID,
		Lesson:   LessonRef{ID: lesson.ID, Title: lesson.Title},
	}, nil
}

// MarkLessonCompleted upserts the progress row to completed=true.
func (s *ProgressService) MarkLessonCompleted(userID, lessonID uint) (*models.UserProgress, error) {
	var lesson models.Lesson
	if err := s.db.First(&lesson, lessonID).Error; err != nil {
		return nil, orNotFound(err)
	}

	now := time.Now().UTC()
	progress := models.UserProgress{
		UserID:      userID,
		LessonID:    lessonID,
		Completed:   true,
		CompletedAt: &now,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"completed": true, "completed_at": now}),
	}).Create(&progress).Error
	if err != nil {
		return nil, err
	}

	if err := s.db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// InitializeUserProgress seeds zero-progress rows for every lesson.
// Existing rows are left untouched, so it is safe to call repeatedly.
func (s *ProgressService) InitializeUserProgress(userID uint) error {
	var lessons []models.Lesson
	if err := s.db.Select("id").Find(&lessons).Error; err != nil {
		return err
	}
	if len(lessons) == 0 {
		return nil
	}

	entries := make([]models.UserProgress, 0, len(lessons))
	for _, lesson := range lessons {
		entries = append(entries, models.UserProgress{
			UserID:   userID,
			LessonID: lesson.ID,
		})
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entries).Error
}

// GetQuizProgress reports the best attempt per quiz the user has tried:
// highest score, ties broken by the most recent completion. Sorted by
// percentage descending.
func (s *ProgressService) GetQuizProgress(userID uint) ([]QuizProgressEntry, error) {
	var attempts []models.QuizAttempt
	err := s.db.Where("user_id = ?", userID).
		Preload("Quiz").
		Preload("Quiz.Lesson").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	type quizGroup struct {
		best  *models.QuizAttempt
		count int
	}
	groups := make(map[uint]*quizGroup)
	for i := range attempts {
		a := &attempts[i]
		g, ok := groups[a.QuizID]
		if !ok {
			groups[a.QuizID] = &quizGroup{best: a, count: 1}
			continue
		}
		g.count++
		if a.Score > g.best.Score ||
			(a.Score == g.best.Score && laterCompletion(a.CompletedAt, g.best.CompletedAt)) {
			g.best = a
		}
	}

	quizIDs := make([]uint, 0, len(groups))
	for id := range groups {
		quizIDs = append(quizIDs, id)
	}
	sort.Slice(quizIDs, func(i, j int) bool { return quizIDs[i] < quizIDs[j] })

	entries := make([]QuizProgressEntry, 0, len(groups))
	for _, quizID := range quizIDs {
		g := groups[quizID]
		best := g.best

		entry := QuizProgressEntry{
			ID:          best.ID,
			QuizID:      best.QuizID,
			Score:       best.Score,
			MaxScore:    best.MaxScore,
			Percentage:  Percentage(best.Score, best.MaxScore),
			CompletedAt: best.CompletedAt,
			Passed:      passed(best.Score, best.MaxScore),
			Attempts:    g.count,
		}
		if best.Quiz != nil {
			entry.QuizTitle = best.Quiz.Title
			entry.LessonID = best.Quiz.LessonID
			if best.Quiz.Lesson != nil {
				entry.LessonTitle = best.Quiz.Lesson.Title
			}
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Percentage > entries[j].Percentage
	})
	return entries, nil
}

// GetComprehensiveProgress combines lesson and quiz progress with an
// overall completion summary.
func (s *ProgressService) GetComprehensiveProgress(userID uint) (*ComprehensiveProgress, error) {
	lessons, err := s.GetUserProgress(userID)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.GetQuizProgress(userID)
	if err != nil {
		return nil, err
	}

	completedLessons := 0
	for _, l := range lessons {
		if l.Completed {
			completedLessons++
		}
	}
	passedQuizzes := 0
	for _, q := range quizzes {
		if q.Passed {
			passedQuizzes++
		}
	}

	return &ComprehensiveProgress{
		Lessons: lessons,
		Quizzes: quizzes,
		Summary: ProgressSummary{
			TotalLessons:      len(lessons),
			CompletedLessons:  completedLessons,
			TotalQuizzes:      len(quizzes),
			PassedQuizzes:     passedQuizzes,
			OverallCompletion: Percentage(completedLessons+passedQuizzes, len(lessons)+len(quizzes)),
		},
	}, nil
}

// GetUserStats returns overall learning statistics for the user.
func (s *ProgressService) GetUserStats(userID uint) (*UserStats, error) {
	var totalLessons int64
	if err := s.db.Model(&models.Lesson{}).Count(&totalLessons).Error; err != nil {
		return nil, err
	}
	var completedLessons int64
	if err := s.db.Model(&models.UserProgress{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&completedLessons).Error; err != nil {
		return nil, err
	}
	var totalQuizzes int64
	if err := s.db.Model(&models.Quiz{}).Count(&totalQuizzes).Error; err != nil {
		return nil, err
	}

	var completedAttempts []models.QuizAttempt
	if err := s.db.Where("user_id = ? AND completed = ?", userID, true).
		Find(&completedAttempts).Error; err != nil {
		return nil, err
	}

	// Unique quizzes completed, not total completed attempts.
	completedQuizIDs := make(map[uint]struct{})
	totalPercentage := 0.0
	for _, a := range completedAttempts {
		completedQuizIDs[a.QuizID] = struct{}{}
		totalPercentage += float64(a.Score) / float64(a.MaxScore) * 100
	}

	completionRate := 0.0
	if totalLessons > 0 {
		completionRate = float64(completedLessons) / float64(totalLessons) * 100
	}
	averageScore := 0.0
	if len(completedAttempts) > 0 {
		averageScore = math.Round(totalPercentage/float64(len(completedAttempts))*100) / 100
	}

	return &UserStats{
		TotalLessons:     int(totalLessons),
		CompletedLessons: int(completedLessons),
		CompletionRate:   completionRate,
		TotalQuizzes:     int(totalQuizzes),
		CompletedQuizzes: len(completedQuizIDs),
		AverageScore:     averageScore,
	}, nil
}

// GetLeaderboard aggregates the best attempt per (user, quiz) pair into
// per-user totals. Rank is total score descending; ties go to whoever
// reached their scores earlier, and users without a timestamp sort last
// among ties. At least one row is always requested.
func (s *ProgressService) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit < 1 {
		limit = 1
	}

	cacheKey := fmt.Sprintf("leaderboard:%d", limit)
	if cached, ok := s.cachedLeaderboard(ctx, cacheKey); ok {
		return cached, nil
	}

	var attempts []models.QuizAttempt
	if err := s.db.Find(&attempts).Error; err != nil {
		return nil, err
	}

	// Best attempt per (user, quiz): highest score; among equals the
	// earliest completion wins, freezing that attempt's max score.
	type pairKey struct{ userID, quizID uint }
	best := make(map[pairKey]*models.QuizAttempt)
	for i := range attempts {
		a := &attempts[i]
		key := pairKey{a.UserID, a.QuizID}
		b, ok := best[key]
		if !ok || a.Score > b.Score ||
			(a.Score == b.Score && earlierCompletion(a.CompletedAt, b.CompletedAt)) {
			best[key] = a
		}
	}

	type userTotals struct {
		totalScore      int
		totalMax        int
		quizzes         int
		lastCompletedAt *time.Time
	}
	totals := make(map[uint]*userTotals)
	for key, a := range best {
		t, ok := totals[key.userID]
		if !ok {
			t = &userTotals{}
			totals[key.userID] = t
		}
		t.totalScore += a.Score
		t.totalMax += a.MaxScore
		t.quizzes++
		if a.CompletedAt != nil && (t.lastCompletedAt == nil || a.CompletedAt.Before(*t.lastCompletedAt)) {
			t.lastCompletedAt = a.CompletedAt
		}
	}

	userIDs := make([]uint, 0, len(totals))
	for id := range totals {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	names := make(map[uint]string, len(userIDs))
	if len(userIDs) > 0 {
		var users []models.User
		if err := s.db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			names[u.ID] = u.Name
		}
	}

	rows := make([]LeaderboardEntry, 0, len(userIDs))
	for _, uid := range userIDs {
		t := totals[uid]
		name, ok := names[uid]
		if !ok {
			name = fmt.Sprintf("User %d", uid)
		}
		rows = append(rows, LeaderboardEntry{
			UserID:           uid,
			Name:             name,
			TotalScore:       t.totalScore,
			TotalMaxScore:    t.totalMax,
			Percentage:       Percentage(t.totalScore, t.totalMax),
			QuizzesCompleted: t.quizzes,
			LastCompletedAt:  t.lastCompletedAt,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalScore != rows[j].TotalScore {
			return rows[i].TotalScore > rows[j].TotalScore
		}
		return earlierCompletion(rows[i].LastCompletedAt, rows[j].LastCompletedAt)
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}

	s.cacheLeaderboard(ctx, cacheKey, rows)
	return rows, nil
}

func (s *ProgressService) cachedLeaderboard(ctx context.Context, key string) ([]LeaderboardEntry, bool) {
	if s.redis == nil {
		return nil, false
	}
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("leaderboard cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var rows []LeaderboardEntry
	if err := json.Unmarshal(data, &rows); err != nil {
		s.log.Warn("leaderboard cache decode failed", zap.Error(err))
		return nil, false
	}
	return rows, true
}

func (s *ProgressService) cacheLeaderboard(ctx context.Context, key string, rows []LeaderboardEntry) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, leaderboardCacheTTL).Err(); err != nil {
		s.log.Warn("leaderboard cache write failed", zap.Error(err))
	}
}

// passed checks the raw ratio against the threshold, unlike the rounded
// percentage used to mark attempts completed.
func passed(score, maxScore int) bool {
	if maxScore <= 0 {
		return false
	}
	return float64(score)/float64(maxScore) >= 0.75
}

// earlierCompletion treats a missing timestamp as later than any
// recorded one.
func earlierCompletion(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.Before(*b)
}

func laterCompletion(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}
