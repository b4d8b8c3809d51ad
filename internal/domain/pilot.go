package domain

import (
	"errors"
	"time"
)

type Gender int32

const (
	GenderMale    Gender = 0
	GenderFemale  Gender = 1
	GenderUnknown Gender = 2
)

type Platform string

const (
	PlatformKuaishou Platform = "快手"
	PlatformDouyin   Platform = "抖音"
	PlatformOther    Platform = "其他"
	PlatformUnknown  Platform = "未知"
)

type WorkMode string

const (
	WorkModeOffline WorkMode = "线下"
	WorkModeOnline  WorkMode = "线上"
	WorkModeUnknown WorkMode = "未知"
)

type Rank string

const (
	RankCandidate Rank = "候选人"
	RankTrainee   Rank = "试播主播"
	RankIntern    Rank = "实习主播"
	RankOfficial  Rank = "正式主播"

	// 旧版机师称谓，只存在于历史数据中，新代码不再写入
	RankCandidateOld Rank = "候补机师"
	RankTraineeOld   Rank = "训练机师"
	RankInternOld    Rank = "实习机师"
	RankOfficialOld  Rank = "正式机师"
)

type PilotStatus string

const (
	PilotStatusNotRecruited  PilotStatus = "未招募"
	PilotStatusNotRecruiting PilotStatus = "不招募"
	PilotStatusRecruited     PilotStatus = "已招募"
	PilotStatusContracted    PilotStatus = "已签约"
	PilotStatusFallen        PilotStatus = "流失"

	// 旧版征召称谓，只存在于历史数据中，新代码不再写入
	PilotStatusNotRecruitedOld  PilotStatus = "未征召"
	PilotStatusNotRecruitingOld PilotStatus = "不征召"
	PilotStatusRecruitedOld     PilotStatus = "已征召"
	PilotStatusFallenOld        PilotStatus = "已阵亡"
)

var rankOldToNew = map[Rank]Rank{
	RankCandidateOld: RankCandidate,
	RankTraineeOld:   RankTrainee,
	RankInternOld:    RankIntern,
	RankOfficialOld:  RankOfficial,
}

var pilotStatusOldToNew = map[PilotStatus]PilotStatus{
	PilotStatusNotRecruitedOld:  PilotStatusNotRecruited,
	PilotStatusNotRecruitingOld: PilotStatusNotRecruiting,
	PilotStatusRecruitedOld:     PilotStatusRecruited,
	PilotStatusFallenOld:        PilotStatusFallen,
}

// EffectiveRank 把历史数据中的旧版主播分类映射为当前分类，未知值原样返回。
func EffectiveRank(r Rank) Rank {
	if mapped, ok := rankOldToNew[r]; ok {
		return mapped
	}
	return r
}

// EffectivePilotStatus 把历史数据中的旧版状态映射为当前状态，未知值原样返回。
func EffectivePilotStatus(s PilotStatus) PilotStatus {
	if mapped, ok := pilotStatusOldToNew[s]; ok {
		return mapped
	}
	return s
}

type Pilot struct {
	ID        int64       `json:"id"`
	Nickname  string      `json:"nickname"`
	RealName  string      `json:"realName"`
	Gender    Gender      `json:"gender"`
	Hometown  string      `json:"hometown"`
	BirthYear *int32      `json:"birthYear"`
	OwnerID   *int64      `json:"ownerID"`
	Platform  Platform    `json:"platform"`
	WorkMode  WorkMode    `json:"workMode"`
	Rank      Rank        `json:"rank"`
	Status    PilotStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Validate 检查主播记录的业务规则，now 用于判定出生年是否在合理范围内。
func (p *Pilot) Validate(now time.Time) error {
	rank := EffectiveRank(p.Rank)
	status := EffectivePilotStatus(p.Status)

	if rank == RankIntern || rank == RankOfficial {
		if p.OwnerID == nil {
			return errors.New("实习主播和正式主播必须有直属运营")
		}
		if p.Platform == PlatformUnknown {
			return errors.New("实习主播和正式主播的开播平台不能是未知")
		}
		if p.WorkMode == WorkModeUnknown {
			return errors.New("实习主播和正式主播的开播方式不能是未知")
		}
	}

	if status == PilotStatusRecruited || status == PilotStatusContracted {
		if p.RealName == "" {
			return errors.New("已招募和已签约状态必须填写姓名")
		}
		if p.BirthYear == nil {
			return errors.New("已招募和已签约状态必须填写出生年")
		}
	}

	if p.BirthYear != nil && !BirthYearInRange(*p.BirthYear, now) {
		return errors.New("出生年份必须在距今60年前到距今10年前之间")
	}

	return nil
}

// BirthYearInRange 报告出生年是否在距今 60 年前到距今 10 年前之间。
func BirthYearInRange(year int32, now time.Time) bool {
	currentYear := int32(now.Year())
	return year >= currentYear-60 && year <= currentYear-10
}

// Age 返回按出生年计算的年龄，没有填写出生年时返回 0。
func (p *Pilot) Age(now time.Time) int32 {
	if p.BirthYear == nil {
		return 0
	}
	return int32(now.Year()) - *p.BirthYear
}

// PilotChangeLog 主播字段变更记录，只追加，不修改。
type PilotChangeLog struct {
	ID         int64     `json:"id"`
	PilotID    int64     `json:"pilotID"`
	UserID     int64     `json:"userID"`
	FieldName  string    `json:"fieldName"`
	OldValue   string    `json:"oldValue"`
	NewValue   string    `json:"newValue"`
	ChangeTime time.Time `json:"changeTime"`
	IPAddress  string    `json:"ipAddress"`
}

var pilotFieldDisplayNames = map[string]string{
	"nickname":   "昵称",
	"real_name":  "姓名",
	"gender":     "性别",
	"hometown":   "籍贯",
	"birth_year": "出生年",
	"owner":      "直属运营",
	"platform":   "开播平台",
	"work_mode":  "开播方式",
	"rank":       "主播分类",
	"status":     "状态",
}

func (l *PilotChangeLog) FieldDisplayName() string {
	if name, ok := pilotFieldDisplayNames[l.FieldName]; ok {
		return name
	}
	return l.FieldName
}
