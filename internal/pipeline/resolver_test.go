package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xingyao-live/pilot-manager/backend/internal/domain"
)

func TestEffectiveStatusValue(t *testing.T) {
	tests := []struct {
		raw  domain.RecruitStatus
		want domain.RecruitStatus
	}{
		{domain.RecruitStatusPendingInterview, domain.RecruitStatusPendingInterview},
		{domain.RecruitStatusEnded, domain.RecruitStatusEnded},
		{domain.RecruitStatusStarted, domain.RecruitStatusPendingInterview},
		{domain.RecruitStatusPendingTrainingScheduleOld, domain.RecruitStatusPendingTrainingSchedule},
		{domain.RecruitStatusPendingTrainingOld, domain.RecruitStatusPendingTraining},
		{domain.RecruitStatusTrainingRecruiting, domain.RecruitStatusPendingTraining},
		{domain.RecruitStatusTrainingRecruitingOld, domain.RecruitStatusPendingTraining},
		{"", ""},
		{"莫名其妙的状态", "莫名其妙的状态"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EffectiveStatusValue(tt.raw), "raw=%s", tt.raw)
	}
}

func TestLegacyStartedRecordHasNoDecisions(t *testing.T) {
	rec := &domain.Recruit{Status: domain.RecruitStatusStarted}

	view := Resolve(rec)
	assert.Equal(t, domain.RecruitStatusPendingInterview, view.Status)
	assert.Empty(t, view.InterviewDecision)
	assert.Nil(t, view.InterviewDecisionMaker)
	assert.Nil(t, view.InterviewDecisionTime)
	assert.Nil(t, view.ScheduledTrainingTime)
}

func TestLegacyTrainingDecisionFallback(t *testing.T) {
	maker := int64(7)
	decidedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	trainingAt := time.Date(2024, 5, 3, 20, 0, 0, 0, time.UTC)

	rec := &domain.Recruit{
		Status:                      domain.RecruitStatusPendingTrainingOld,
		LegacyTrainingDecision:      domain.TrainingDecisionLegacyRecruitAsTrainee,
		LegacyTrainingDecisionMaker: &maker,
		LegacyTrainingDecisionTime:  &decidedAt,
		LegacyTrainingTime:          &trainingAt,
	}

	view := Resolve(rec)
	assert.Equal(t, domain.RecruitStatusPendingTraining, view.Status)
	// 待试播阶段：面试决策已经发生，由旧版试播招募决策推断
	assert.Equal(t, domain.InterviewDecisionScheduleTraining, view.InterviewDecision)
	require.NotNil(t, view.InterviewDecisionMaker)
	assert.Equal(t, maker, *view.InterviewDecisionMaker)
	require.NotNil(t, view.InterviewDecisionTime)
	assert.Equal(t, decidedAt, *view.InterviewDecisionTime)
	// 旧版试播时间兜底预约试播时间
	require.NotNil(t, view.ScheduledTrainingTime)
	assert.Equal(t, trainingAt, *view.ScheduledTrainingTime)
	// 还没到待预约开播，试播决策尚未发生
	assert.Empty(t, view.TrainingDecision)
	assert.Nil(t, view.ScheduledBroadcastTime)
}

func TestLegacyEndedRecordFallback(t *testing.T) {
	maker := int64(7)
	decidedAt := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	rec := &domain.Recruit{
		Status:                   domain.RecruitStatusEnded,
		LegacyFinalDecision:      domain.FinalDecisionOfficial,
		LegacyFinalDecisionMaker: &maker,
		LegacyFinalDecisionTime:  &decidedAt,
	}

	view := Resolve(rec)
	assert.Equal(t, domain.BroadcastDecisionOfficial, view.BroadcastDecision)
	require.NotNil(t, view.BroadcastDecisionMaker)
	assert.Equal(t, maker, *view.BroadcastDecisionMaker)
}

func TestCurrentFieldsWinOverLegacy(t *testing.T) {
	currentMaker := int64(1)
	legacyMaker := int64(2)
	currentTime := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	legacyTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rec := &domain.Recruit{
		Status:                      domain.RecruitStatusPendingTraining,
		InterviewDecision:           domain.InterviewDecisionScheduleTraining,
		InterviewDecisionMaker:      &currentMaker,
		InterviewDecisionTime:       &currentTime,
		LegacyTrainingDecision:      domain.TrainingDecisionLegacyNotRecruit,
		LegacyTrainingDecisionMaker: &legacyMaker,
		LegacyTrainingDecisionTime:  &legacyTime,
	}

	view := Resolve(rec)
	assert.Equal(t, domain.InterviewDecisionScheduleTraining, view.InterviewDecision)
	assert.Equal(t, currentMaker, *view.InterviewDecisionMaker)
	assert.Equal(t, currentTime, *view.InterviewDecisionTime)
}

func TestLegacyDecisionValueRemap(t *testing.T) {
	assert.Equal(t, domain.InterviewDecisionScheduleTraining,
		EffectiveInterviewDecisionValue(domain.InterviewDecisionScheduleTrainingOld))
	assert.Equal(t, domain.InterviewDecisionNotRecruit,
		EffectiveInterviewDecisionValue(domain.InterviewDecisionNotRecruitOld))
	assert.Equal(t, domain.TrainingDecisionNotRecruit,
		EffectiveTrainingDecisionValue(domain.TrainingDecisionNotRecruitOld))
	assert.Equal(t, domain.BroadcastDecisionOfficial,
		EffectiveBroadcastDecisionValue(domain.BroadcastDecisionOfficialOld))
	assert.Equal(t, domain.BroadcastDecisionIntern,
		EffectiveBroadcastDecisionValue(domain.BroadcastDecisionInternOld))
}

func TestResolveIsIdempotentAndReadOnly(t *testing.T) {
	maker := int64(7)
	decidedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rec := &domain.Recruit{
		Status:                      domain.RecruitStatusPendingTrainingScheduleOld,
		LegacyTrainingDecision:      domain.TrainingDecisionLegacyRecruitAsTrainee,
		LegacyTrainingDecisionMaker: &maker,
		LegacyTrainingDecisionTime:  &decidedAt,
	}
	original := *rec

	first := Resolve(rec)
	second := Resolve(rec)
	assert.Equal(t, first, second)
	assert.Equal(t, original, *rec)
}
