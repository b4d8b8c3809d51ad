package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidRecruitChannel(t *testing.T) {
	for _, channel := range []RecruitChannel{ChannelBoss, ChannelJob51, ChannelIntroduction, ChannelOther} {
		assert.True(t, ValidRecruitChannel(channel))
	}
	assert.False(t, ValidRecruitChannel("微信"))
	assert.False(t, ValidRecruitChannel(""))
}

func TestRecruitValidateDecisionTriples(t *testing.T) {
	maker := int64(1)
	decidedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := &Recruit{Status: RecruitStatusPendingInterview}
	require.NoError(t, rec.Validate())

	// 有决策但缺决策人
	rec.InterviewDecision = InterviewDecisionScheduleTraining
	rec.InterviewDecisionTime = &decidedAt
	require.Error(t, rec.Validate())

	rec.InterviewDecisionMaker = &maker
	require.NoError(t, rec.Validate())

	// 预约时间同样构成三元组
	rec.ScheduledTrainingTime = &decidedAt
	require.Error(t, rec.Validate())
	rec.ScheduledTrainingDecisionMaker = &maker
	rec.ScheduledTrainingDecisionTime = &decidedAt
	require.NoError(t, rec.Validate())
}

func TestRecruitValidateLegacyTriples(t *testing.T) {
	maker := int64(1)
	decidedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	trainingAt := decidedAt.Add(48 * time.Hour)

	rec := &Recruit{
		Status:                 RecruitStatusPendingTrainingOld,
		LegacyTrainingDecision: TrainingDecisionLegacyRecruitAsTrainee,
	}
	require.Error(t, rec.Validate())

	rec.LegacyTrainingDecisionMaker = &maker
	rec.LegacyTrainingDecisionTime = &decidedAt
	// 招募为试播主播时必须有试播时间
	require.Error(t, rec.Validate())

	rec.LegacyTrainingTime = &trainingAt
	require.NoError(t, rec.Validate())
}

func TestRecruitValidateFeeAndRemarks(t *testing.T) {
	rec := &Recruit{Status: RecruitStatusPendingInterview, IntroductionFee: -1}
	require.Error(t, rec.Validate())

	rec.IntroductionFee = 0
	rec.Remarks = strings.Repeat("备", 201)
	require.Error(t, rec.Validate())

	rec.Remarks = strings.Repeat("备", 200)
	require.NoError(t, rec.Validate())
}

func TestChangeLogFieldDisplayName(t *testing.T) {
	entry := &RecruitChangeLog{FieldName: "scheduled_training_time"}
	assert.Equal(t, "预约试播时间", entry.FieldDisplayName())

	unknown := &RecruitChangeLog{FieldName: "whatever"}
	assert.Equal(t, "whatever", unknown.FieldDisplayName())

	pilotEntry := &PilotChangeLog{FieldName: "work_mode"}
	assert.Equal(t, "开播方式", pilotEntry.FieldDisplayName())
}
