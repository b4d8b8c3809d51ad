package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xingyao-live/pilot-manager/backend/internal/domain"
)

func TestDiffRecruit(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	before := &domain.Recruit{
		ID:          5,
		PilotID:     1,
		RecruiterID: 10,
		Channel:     domain.ChannelBoss,
		Status:      domain.RecruitStatusPendingInterview,
	}
	after := cloneRecruit(before)
	after.Channel = domain.ChannelIntroduction
	after.IntroductionFee = 50000
	after.Status = domain.RecruitStatusPendingTrainingSchedule

	logs := DiffRecruit(before, after, 10, "10.0.0.1", at)
	require.Len(t, logs, 3)

	byField := make(map[string]*domain.RecruitChangeLog)
	for _, entry := range logs {
		byField[entry.FieldName] = entry
		assert.Equal(t, int64(5), entry.RecruitID)
		assert.Equal(t, int64(10), entry.UserID)
		assert.Equal(t, "10.0.0.1", entry.IPAddress)
		assert.Equal(t, at, entry.ChangeTime)
	}

	require.Contains(t, byField, "channel")
	assert.Equal(t, "BOSS", byField["channel"].OldValue)
	assert.Equal(t, "介绍", byField["channel"].NewValue)

	require.Contains(t, byField, "introduction_fee")
	assert.Equal(t, "", byField["introduction_fee"].OldValue)
	assert.Equal(t, "50000", byField["introduction_fee"].NewValue)

	require.Contains(t, byField, "status")
	assert.Equal(t, "待面试", byField["status"].OldValue)
	assert.Equal(t, "待预约试播", byField["status"].NewValue)
}

func TestDiffRecruitNoChanges(t *testing.T) {
	at := time.Now()
	rec := &domain.Recruit{ID: 5, PilotID: 1, Status: domain.RecruitStatusPendingInterview}
	assert.Empty(t, DiffRecruit(rec, cloneRecruit(rec), 10, "", at))
}

func TestDiffPilot(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	birthYear := int32(2000)
	before := &domain.Pilot{
		ID:       1,
		Nickname: "小雨",
		Rank:     domain.RankCandidate,
		Status:   domain.PilotStatusNotRecruited,
	}
	after := clonePilot(before)
	after.RealName = "王小雨"
	after.BirthYear = &birthYear
	after.Rank = domain.RankTrainee
	after.Status = domain.PilotStatusRecruited

	logs := DiffPilot(before, after, 10, "10.0.0.1", at)
	require.Len(t, logs, 4)

	byField := make(map[string]*domain.PilotChangeLog)
	for _, entry := range logs {
		byField[entry.FieldName] = entry
	}
	assert.Equal(t, "王小雨", byField["real_name"].NewValue)
	assert.Equal(t, "2000", byField["birth_year"].NewValue)
	assert.Equal(t, "试播主播", byField["rank"].NewValue)
	assert.Equal(t, "已招募", byField["status"].NewValue)

	// 未追踪字段不产生记录
	after2 := clonePilot(after)
	after2.CreatedAt = at
	assert.Empty(t, DiffPilot(after, after2, 10, "", at))
}
