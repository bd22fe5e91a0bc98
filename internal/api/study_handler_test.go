package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain/streak"
	"github.com/greenleaf-study/greenleaf/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func sampleSummary() *service.StreakSummary {
	return &service.StreakSummary{
		View: streak.View{
			CurrentStreak:  3,
			LongestStreak:  5,
			StudiedToday:   true,
			Status:         streak.StatusActive,
			HoursRemaining: 14.5,
		},
		GardenStage:     2,
		GardenStageName: "Sprout",
	}
}

func TestRecordSession(t *testing.T) {
	userID := uuid.New()
	deckID := uuid.New()

	t.Run("success", func(t *testing.T) {
		study := &mockStudyService{}
		study.On("RecordSession", mock.Anything, userID, service.SessionInput{
			DeckID: &deckID, CardsStudied: 10, CardsCorrect: 7,
		}).Return(sampleSummary(), nil)
		h := NewStudyHandler(study, discardLogger)

		rec := httptest.NewRecorder()
		h.RecordSession(rec, newTestRequest(t, http.MethodPost, "/api/study/sessions",
			StudySessionRequest{DeckID: &deckID, CardsStudied: 10, CardsCorrect: 7}, userID))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{
			"current_streak": 3,
			"longest_streak": 5,
			"studied_today": true,
			"status": "active",
			"hours_remaining": 14.5,
			"garden_stage": 2,
			"garden_stage_name": "Sprout",
			"stage_overridden": false
		}`, rec.Body.String())
	})

	t.Run("more correct than studied", func(t *testing.T) {
		h := NewStudyHandler(&mockStudyService{}, discardLogger)

		rec := httptest.NewRecorder()
		h.RecordSession(rec, newTestRequest(t, http.MethodPost, "/api/study/sessions",
			StudySessionRequest{CardsStudied: 1, CardsCorrect: 2}, userID))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetStreak(t *testing.T) {
	userID := uuid.New()
	study := &mockStudyService{}
	study.On("GetStreak", mock.Anything, userID).Return(sampleSummary(), nil)
	h := NewStudyHandler(study, discardLogger)

	rec := httptest.NewRecorder()
	h.GetStreak(rec, newTestRequest(t, http.MethodGet, "/api/streak", nil, userID))

	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[service.StreakSummary](t, rec)
	assert.Equal(t, 3, got.CurrentStreak)
	assert.Equal(t, "Sprout", got.GardenStageName)
}

func TestSetGardenOverride(t *testing.T) {
	userID := uuid.New()

	t.Run("owner sets stage", func(t *testing.T) {
		study := &mockStudyService{}
		summary := sampleSummary()
		summary.GardenStage, summary.GardenStageName, summary.StageOverridden = 7, "Grove", true
		study.On("SetGardenOverride", mock.Anything, userID, mock.MatchedBy(func(s *int) bool {
			return s != nil && *s == 7
		})).Return(summary, nil)
		h := NewStudyHandler(study, discardLogger)

		rec := httptest.NewRecorder()
		h.SetGardenOverride(rec, newTestRequest(t, http.MethodPut, "/", `{"stage":7}`, userID))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeBody[service.StreakSummary](t, rec).StageOverridden)
	})

	t.Run("null clears", func(t *testing.T) {
		study := &mockStudyService{}
		study.On("SetGardenOverride", mock.Anything, userID, (*int)(nil)).Return(sampleSummary(), nil)
		h := NewStudyHandler(study, discardLogger)

		rec := httptest.NewRecorder()
		h.SetGardenOverride(rec, newTestRequest(t, http.MethodPut, "/", `{"stage":null}`, userID))

		assert.Equal(t, http.StatusOK, rec.Code)
		study.AssertExpectations(t)
	})

	t.Run("out of range", func(t *testing.T) {
		h := NewStudyHandler(&mockStudyService{}, discardLogger)

		rec := httptest.NewRecorder()
		h.SetGardenOverride(rec, newTestRequest(t, http.MethodPut, "/", `{"stage":11}`, userID))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("regular user", func(t *testing.T) {
		study := &mockStudyService{}
		study.On("SetGardenOverride", mock.Anything, userID, mock.Anything).Return(nil, service.ErrOwnerOnly)
		h := NewStudyHandler(study, discardLogger)

		rec := httptest.NewRecorder()
		h.SetGardenOverride(rec, newTestRequest(t, http.MethodPut, "/", `{"stage":3}`, userID))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
