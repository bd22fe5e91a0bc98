package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/domain/streak"
	"github.com/greenleaf-study/greenleaf/internal/events"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/store"
)

// refreshPageSize is how many users RefreshAllStreakCaches loads per query.
const refreshPageSize = 500

// SessionInput describes a finished study session.
type SessionInput struct {
	DeckID       *uuid.UUID
	CardsStudied int
	CardsCorrect int
}

// StreakSummary is the streak view plus the garden stage to display.
type StreakSummary struct {
	streak.View
	GardenStage     int    `json:"garden_stage"`
	GardenStageName string `json:"garden_stage_name"`
	StageOverridden bool   `json:"stage_overridden"`
}

// StudyService records study activity and projects streaks.
type StudyService interface {
	// RecordSession marks today as studied and stores the session. Marking
	// the same day again is a no-op for the streak.
	RecordSession(ctx context.Context, userID uuid.UUID, in SessionInput) (*StreakSummary, error)

	// GetStreak recomputes the streak from the studied days.
	GetStreak(ctx context.Context, userID uuid.UUID) (*StreakSummary, error)

	// SetGardenOverride stores or clears the displayed garden stage.
	// Only users with the owner role may do this.
	SetGardenOverride(ctx context.Context, userID uuid.UUID, stage *int) (*StreakSummary, error)

	// RefreshStreakCache recomputes and stores the cached streak numbers.
	RefreshStreakCache(ctx context.Context, userID uuid.UUID) error

	// RefreshAllStreakCaches refreshes every user and returns how many
	// were updated.
	RefreshAllStreakCaches(ctx context.Context) (int, error)
}

type studyService struct {
	db              store.Beginner
	users           store.UserStore
	decks           store.DeckStore
	study           store.StudyStore
	emitter         events.EventEmitter
	useUserTimezone bool
	logger          *slog.Logger
	now             func() time.Time
}

var _ StudyService = (*studyService)(nil)

// NewStudyService creates a StudyService. When useUserTimezone is set,
// calendar days follow the timezone on each user's profile; otherwise they
// are UTC days. emitter may be nil.
func NewStudyService(
	db store.Beginner,
	users store.UserStore,
	decks store.DeckStore,
	study store.StudyStore,
	emitter events.EventEmitter,
	useUserTimezone bool,
	logger *slog.Logger,
) (StudyService, error) {
	for _, err := range []error{
		requireDep("db", db == nil),
		requireDep("users", users == nil),
		requireDep("decks", decks == nil),
		requireDep("study", study == nil),
	} {
		if err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &studyService{
		db:              db,
		users:           users,
		decks:           decks,
		study:           study,
		emitter:         emitter,
		useUserTimezone: useUserTimezone,
		logger:          logger.With(slog.String("component", "study_service")),
		now:             time.Now,
	}, nil
}

func (s *studyService) RecordSession(
	ctx context.Context,
	userID uuid.UUID,
	in SessionInput,
) (*StreakSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.DeckID != nil {
		if _, err := ownedDeck(ctx, s.decks, userID, *in.DeckID); err != nil {
			return nil, err
		}
	}

	now := s.now().In(s.location(user))
	day := streak.DateKey(now)

	session, err := domain.NewStudySession(userID, in.DeckID, in.CardsStudied, in.CardsCorrect, day)
	if err != nil {
		return nil, err
	}

	var newDay bool
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		study := s.study.WithTx(tx)
		var err error
		if newDay, err = study.AddDay(ctx, userID, day); err != nil {
			return err
		}
		return study.CreateSession(ctx, session)
	})
	if err != nil {
		log.Error("failed to record study session",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("study", "record_session", "failed to record session", err)
	}

	summary, err := s.summarize(ctx, user, now)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateStreakCache(ctx, userID, summary.CurrentStreak, summary.LongestStreak); err != nil {
		// The studied day is already committed; the next refresh repairs
		// the cache.
		log.Warn("failed to update streak cache",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
	}

	log.Info("study session recorded",
		slog.String("user_id", userID.String()),
		slog.String("day", day),
		slog.Bool("new_day", newDay),
		slog.Int("current_streak", summary.CurrentStreak))

	events.Emit(ctx, s.emitter, events.TypeStudyRecorded, userID, events.StudyRecorded{
		Day:           day,
		NewDay:        newDay,
		CardsStudied:  in.CardsStudied,
		CurrentStreak: summary.CurrentStreak,
	})
	return summary, nil
}

func (s *studyService) GetStreak(ctx context.Context, userID uuid.UUID) (*StreakSummary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, user, s.now().In(s.location(user)))
}

func (s *studyService) SetGardenOverride(
	ctx context.Context,
	userID uuid.UUID,
	stage *int,
) (*StreakSummary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsOwner() {
		logger.FromContextOrDefault(ctx, s.logger).Warn("garden override denied",
			slog.String("user_id", userID.String()))
		return nil, ErrOwnerOnly
	}
	if stage != nil && (*stage < 0 || *stage > streak.MaxStage) {
		return nil, domain.ErrInvalidStageOverride
	}

	if err := s.users.SetGardenOverride(ctx, userID, stage); err != nil {
		return nil, NewServiceError("study", "set_garden_override", "failed to save override", err)
	}
	user.GardenStageOverride = stage

	return s.summarize(ctx, user, s.now().In(s.location(user)))
}

func (s *studyService) RefreshStreakCache(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	view, err := s.compute(ctx, userID, s.now().In(s.location(user)))
	if err != nil {
		return err
	}
	if view.CurrentStreak == user.CurrentStreak && view.LongestStreak == user.LongestStreak {
		return nil
	}
	if err := s.users.UpdateStreakCache(ctx, userID, view.CurrentStreak, view.LongestStreak); err != nil {
		return NewServiceError("study", "refresh_cache", "failed to update streak cache", err)
	}
	return nil
}

func (s *studyService) RefreshAllStreakCaches(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	refreshed := 0
	after := uuid.Nil
	for {
		ids, err := s.users.ListIDs(ctx, after, refreshPageSize)
		if err != nil {
			return refreshed, NewServiceError("study", "refresh_all", "failed to list users", err)
		}
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return refreshed, err
			}
			if err := s.RefreshStreakCache(ctx, id); err != nil {
				log.Warn("failed to refresh streak cache",
					slog.String("error", err.Error()),
					slog.String("user_id", id.String()))
				continue
			}
			refreshed++
		}
		if len(ids) < refreshPageSize {
			break
		}
		after = ids[len(ids)-1]
	}

	log.Info("refreshed streak caches", slog.Int("users", refreshed))
	return refreshed, nil
}

func (s *studyService) location(user *domain.User) *time.Location {
	if s.useUserTimezone {
		return user.Location()
	}
	return time.UTC
}

func (s *studyService) compute(ctx context.Context, userID uuid.UUID, now time.Time) (streak.View, error) {
	days, err := s.study.ListDays(ctx, userID)
	if err != nil {
		return streak.View{}, NewServiceError("study", "compute_streak", "failed to load study days", err)
	}
	return streak.Compute(streak.NewDateSet(days...), now), nil
}

func (s *studyService) summarize(ctx context.Context, user *domain.User, now time.Time) (*StreakSummary, error) {
	view, err := s.compute(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}
	stage, overridden := streak.ResolveStage(
		streak.GardenStage(view.CurrentStreak), user.GardenStageOverride, user.IsOwner())
	return &StreakSummary{
		View:            view,
		GardenStage:     stage,
		GardenStageName: streak.StageInfo(stage).Name,
		StageOverridden: overridden,
	}, nil
}
