package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xingyao-live/pilot-manager/backend/internal/domain"
)

func TestIsStalledAppointmentThreshold(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := &domain.Recruit{
		Status:          domain.RecruitStatusPendingInterview,
		AppointmentTime: now.Add(-25 * time.Hour),
	}
	assert.True(t, IsStalled(rec, now, DefaultThresholds))

	rec.AppointmentTime = now.Add(-23 * time.Hour)
	assert.False(t, IsStalled(rec, now, DefaultThresholds))
}

func TestIsStalledDecisionThreshold(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	maker := int64(1)

	decidedAt := now.Add(-8 * 24 * time.Hour)
	rec := &domain.Recruit{
		Status:                 domain.RecruitStatusPendingTrainingSchedule,
		InterviewDecision:      domain.InterviewDecisionScheduleTraining,
		InterviewDecisionMaker: &maker,
		InterviewDecisionTime:  &decidedAt,
	}
	assert.True(t, IsStalled(rec, now, DefaultThresholds))

	recent := now.Add(-6 * 24 * time.Hour)
	rec.InterviewDecisionTime = &recent
	assert.False(t, IsStalled(rec, now, DefaultThresholds))
}

func TestIsStalledReadsLegacyFields(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	maker := int64(1)
	decidedAt := now.Add(-10 * 24 * time.Hour)
	trainingAt := now.Add(-25 * time.Hour)

	// 旧版待训练记录：预约试播时间由旧版试播时间兜底
	rec := &domain.Recruit{
		Status:                      domain.RecruitStatusPendingTrainingOld,
		LegacyTrainingDecision:      domain.TrainingDecisionLegacyRecruitAsTrainee,
		LegacyTrainingDecisionMaker: &maker,
		LegacyTrainingDecisionTime:  &decidedAt,
		LegacyTrainingTime:          &trainingAt,
	}
	assert.True(t, IsStalled(rec, now, DefaultThresholds))

	soon := now.Add(-1 * time.Hour)
	rec.LegacyTrainingTime = &soon
	assert.False(t, IsStalled(rec, now, DefaultThresholds))
}

func TestIsStalledMissingTimeIsOnTrack(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := &domain.Recruit{Status: domain.RecruitStatusPendingTrainingSchedule}
	assert.False(t, IsStalled(rec, now, DefaultThresholds))

	ended := &domain.Recruit{Status: domain.RecruitStatusEnded}
	assert.False(t, IsStalled(ended, now, DefaultThresholds))
}

func TestPartitionKeepsOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	fresh := &domain.Recruit{ID: 1, Status: domain.RecruitStatusPendingInterview, AppointmentTime: now.Add(time.Hour)}
	late := &domain.Recruit{ID: 2, Status: domain.RecruitStatusPendingInterview, AppointmentTime: now.Add(-48 * time.Hour)}
	later := &domain.Recruit{ID: 3, Status: domain.RecruitStatusPendingInterview, AppointmentTime: now.Add(-72 * time.Hour)}

	onTrack, stalled := Partition([]*domain.Recruit{late, fresh, later}, now, DefaultThresholds)
	assert.Equal(t, []*domain.Recruit{fresh}, onTrack)
	assert.Equal(t, []*domain.Recruit{late, later}, stalled)
}
