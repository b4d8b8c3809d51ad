package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validateAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestEffectiveRank(t *testing.T) {
	assert.Equal(t, RankCandidate, EffectiveRank(RankCandidateOld))
	assert.Equal(t, RankTrainee, EffectiveRank(RankTraineeOld))
	assert.Equal(t, RankIntern, EffectiveRank(RankInternOld))
	assert.Equal(t, RankOfficial, EffectiveRank(RankOfficialOld))
	// 当前值和未知值原样返回
	assert.Equal(t, RankOfficial, EffectiveRank(RankOfficial))
	assert.Equal(t, Rank("神秘分类"), EffectiveRank(Rank("神秘分类")))
}

func TestEffectivePilotStatus(t *testing.T) {
	assert.Equal(t, PilotStatusNotRecruited, EffectivePilotStatus(PilotStatusNotRecruitedOld))
	assert.Equal(t, PilotStatusRecruited, EffectivePilotStatus(PilotStatusRecruitedOld))
	assert.Equal(t, PilotStatusFallen, EffectivePilotStatus(PilotStatusFallenOld))
	assert.Equal(t, PilotStatusContracted, EffectivePilotStatus(PilotStatusContracted))
}

func TestPilotValidateOwnerAndPlatform(t *testing.T) {
	owner := int64(1)
	birthYear := int32(2000)
	pilot := &Pilot{
		Nickname:  "小雨",
		RealName:  "王小雨",
		BirthYear: &birthYear,
		OwnerID:   &owner,
		Platform:  PlatformKuaishou,
		WorkMode:  WorkModeOffline,
		Rank:      RankOfficial,
		Status:    PilotStatusRecruited,
	}
	require.NoError(t, pilot.Validate(validateAt))

	// 正式主播没有直属运营
	pilot.OwnerID = nil
	require.Error(t, pilot.Validate(validateAt))
	pilot.OwnerID = &owner

	// 开播平台未知
	pilot.Platform = PlatformUnknown
	require.Error(t, pilot.Validate(validateAt))
	pilot.Platform = PlatformKuaishou

	// 旧版机师分类同样要满足约束
	pilot.Rank = RankInternOld
	pilot.WorkMode = WorkModeUnknown
	require.Error(t, pilot.Validate(validateAt))
}

func TestPilotValidateRecruitedNeedsIdentity(t *testing.T) {
	pilot := &Pilot{
		Nickname: "小雨",
		Platform: PlatformUnknown,
		WorkMode: WorkModeUnknown,
		Rank:     RankCandidate,
		Status:   PilotStatusRecruited,
	}
	require.Error(t, pilot.Validate(validateAt))

	pilot.RealName = "王小雨"
	require.Error(t, pilot.Validate(validateAt))

	birthYear := int32(2000)
	pilot.BirthYear = &birthYear
	require.NoError(t, pilot.Validate(validateAt))
}

func TestBirthYearInRange(t *testing.T) {
	assert.True(t, BirthYearInRange(2000, validateAt))
	assert.True(t, BirthYearInRange(2016, validateAt)) // 距今 10 年
	assert.True(t, BirthYearInRange(1966, validateAt)) // 距今 60 年
	assert.False(t, BirthYearInRange(2017, validateAt))
	assert.False(t, BirthYearInRange(1965, validateAt))
}

func TestPilotAge(t *testing.T) {
	birthYear := int32(2000)
	pilot := &Pilot{BirthYear: &birthYear}
	assert.Equal(t, int32(26), pilot.Age(validateAt))

	assert.Equal(t, int32(0), (&Pilot{}).Age(validateAt))
}
