package domain

import (
	"errors"
	"time"
	"unicode/utf8"
)

type RecruitChannel string

const (
	ChannelBoss         RecruitChannel = "BOSS"
	ChannelJob51        RecruitChannel = "51"
	ChannelIntroduction RecruitChannel = "介绍"
	ChannelOther        RecruitChannel = "其他"
)

var recruitChannels = []RecruitChannel{ChannelBoss, ChannelJob51, ChannelIntroduction, ChannelOther}

func ValidRecruitChannel(c RecruitChannel) bool {
	for _, channel := range recruitChannels {
		if channel == c {
			return true
		}
	}
	return false
}

type RecruitStatus string

const (
	RecruitStatusPendingInterview         RecruitStatus = "待面试"
	RecruitStatusPendingTrainingSchedule  RecruitStatus = "待预约试播"
	RecruitStatusPendingTraining          RecruitStatus = "待试播"
	RecruitStatusPendingBroadcastSchedule RecruitStatus = "待预约开播"
	RecruitStatusPendingBroadcast         RecruitStatus = "待开播"
	RecruitStatusEnded                    RecruitStatus = "已结束"

	// 旧版状态，只存在于历史数据中，新代码不再写入
	RecruitStatusStarted                    RecruitStatus = "已启动"   // 映射到待面试
	RecruitStatusPendingTrainingScheduleOld RecruitStatus = "待预约训练" // 映射到待预约试播
	RecruitStatusPendingTrainingOld         RecruitStatus = "待训练"   // 映射到待试播
	RecruitStatusTrainingRecruiting         RecruitStatus = "试播招募中" // 映射到待试播
	RecruitStatusTrainingRecruitingOld      RecruitStatus = "训练征召中" // 映射到待试播
)

type InterviewDecision string

const (
	InterviewDecisionScheduleTraining InterviewDecision = "预约试播"
	InterviewDecisionNotRecruit       InterviewDecision = "不招募"

	// 旧版决策值，只读
	InterviewDecisionScheduleTrainingOld InterviewDecision = "预约训练"
	InterviewDecisionNotRecruitOld       InterviewDecision = "不征召"
)

type TrainingDecision string

const (
	TrainingDecisionScheduleBroadcast TrainingDecision = "预约开播"
	TrainingDecisionNotRecruit        TrainingDecision = "不招募"

	// 旧版决策值，只读
	TrainingDecisionNotRecruitOld TrainingDecision = "不征召"
)

type BroadcastDecision string

const (
	BroadcastDecisionOfficial   BroadcastDecision = "正式主播"
	BroadcastDecisionIntern     BroadcastDecision = "实习主播"
	BroadcastDecisionNotRecruit BroadcastDecision = "不招募"

	// 旧版决策值，只读
	BroadcastDecisionOfficialOld   BroadcastDecision = "正式机师"
	BroadcastDecisionInternOld     BroadcastDecision = "实习机师"
	BroadcastDecisionNotRecruitOld BroadcastDecision = "不征召"
)

// TrainingDecisionLegacy 迁移前的试播招募决策，只存在于历史数据中。
type TrainingDecisionLegacy string

const (
	TrainingDecisionLegacyRecruitAsTrainee TrainingDecisionLegacy = "招募为试播主播"
	TrainingDecisionLegacyNotRecruit       TrainingDecisionLegacy = "不招募"
)

// FinalDecision 迁移前的结束招募决策，只存在于历史数据中。
type FinalDecision string

const (
	FinalDecisionOfficial   FinalDecision = "正式主播"
	FinalDecisionIntern     FinalDecision = "实习主播"
	FinalDecisionNotRecruit FinalDecision = "不招募"
)

// Recruit 是一次招募流程的聚合根。每个决策点都是“决策 + 决策人 + 决策时间”
// 三元组；带 Legacy 前缀的字段是迁移前的写法，只由解析层降级读取，
// 新代码永远只写当前字段。
type Recruit struct {
	ID        int64 `json:"id"`
	PilotID   int64 `json:"pilotID"`
	RecruiterID int64 `json:"recruiterID"`

	AppointmentTime time.Time      `json:"appointmentTime"`
	Channel         RecruitChannel `json:"channel"`
	IntroductionFee int64          `json:"introductionFee"` // 单位为分
	Remarks         string         `json:"remarks"`
	Status          RecruitStatus  `json:"status"`

	InterviewDecision      InterviewDecision `json:"interviewDecision"`
	InterviewDecisionMaker *int64            `json:"interviewDecisionMaker"`
	InterviewDecisionTime  *time.Time        `json:"interviewDecisionTime"`

	ScheduledTrainingTime          *time.Time `json:"scheduledTrainingTime"`
	ScheduledTrainingDecisionMaker *int64     `json:"scheduledTrainingDecisionMaker"`
	ScheduledTrainingDecisionTime  *time.Time `json:"scheduledTrainingDecisionTime"`

	TrainingDecision      TrainingDecision `json:"trainingDecision"`
	TrainingDecisionMaker *int64           `json:"trainingDecisionMaker"`
	TrainingDecisionTime  *time.Time       `json:"trainingDecisionTime"`

	ScheduledBroadcastTime          *time.Time `json:"scheduledBroadcastTime"`
	ScheduledBroadcastDecisionMaker *int64     `json:"scheduledBroadcastDecisionMaker"`
	ScheduledBroadcastDecisionTime  *time.Time `json:"scheduledBroadcastDecisionTime"`

	BroadcastDecision      BroadcastDecision `json:"broadcastDecision"`
	BroadcastDecisionMaker *int64            `json:"broadcastDecisionMaker"`
	BroadcastDecisionTime  *time.Time        `json:"broadcastDecisionTime"`

	LegacyTrainingDecision      TrainingDecisionLegacy `json:"legacyTrainingDecision"`
	LegacyTrainingDecisionMaker *int64                 `json:"legacyTrainingDecisionMaker"`
	LegacyTrainingDecisionTime  *time.Time             `json:"legacyTrainingDecisionTime"`
	LegacyTrainingTime          *time.Time             `json:"legacyTrainingTime"`

	LegacyFinalDecision      FinalDecision `json:"legacyFinalDecision"`
	LegacyFinalDecisionMaker *int64        `json:"legacyFinalDecisionMaker"`
	LegacyFinalDecisionTime  *time.Time    `json:"legacyFinalDecisionTime"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate 检查招募记录的业务规则，核心是各决策三元组的“全有或全无”约束。
func (r *Recruit) Validate() error {
	if r.IntroductionFee < 0 {
		return errors.New("介绍费必须为非负数")
	}
	if utf8.RuneCountInString(r.Remarks) > 200 {
		return errors.New("备注不能超过200个字符")
	}

	if r.InterviewDecision != "" {
		if r.InterviewDecisionMaker == nil {
			return errors.New("面试决策时必须有决策人")
		}
		if r.InterviewDecisionTime == nil {
			return errors.New("面试决策时必须有决策时间")
		}
	}

	if r.ScheduledTrainingTime != nil {
		if r.ScheduledTrainingDecisionMaker == nil {
			return errors.New("预约试播时必须有决策人")
		}
		if r.ScheduledTrainingDecisionTime == nil {
			return errors.New("预约试播时必须有决策时间")
		}
	}

	if r.TrainingDecision != "" {
		if r.TrainingDecisionMaker == nil {
			return errors.New("试播决策时必须有决策人")
		}
		if r.TrainingDecisionTime == nil {
			return errors.New("试播决策时必须有决策时间")
		}
	}

	if r.ScheduledBroadcastTime != nil {
		if r.ScheduledBroadcastDecisionMaker == nil {
			return errors.New("预约开播时必须有决策人")
		}
		if r.ScheduledBroadcastDecisionTime == nil {
			return errors.New("预约开播时必须有决策时间")
		}
	}

	if r.BroadcastDecision != "" {
		if r.BroadcastDecisionMaker == nil {
			return errors.New("开播决策时必须有决策人")
		}
		if r.BroadcastDecisionTime == nil {
			return errors.New("开播决策时必须有决策时间")
		}
	}

	if r.LegacyTrainingDecision != "" {
		if r.LegacyTrainingDecisionMaker == nil {
			return errors.New("试播招募决策时必须有决策人")
		}
		if r.LegacyTrainingDecisionTime == nil {
			return errors.New("试播招募决策时必须有决策时间")
		}
		if r.LegacyTrainingDecision == TrainingDecisionLegacyRecruitAsTrainee && r.LegacyTrainingTime == nil {
			return errors.New("招募为试播主播时必须填写试播时间")
		}
	}

	if r.LegacyFinalDecision != "" {
		if r.LegacyFinalDecisionMaker == nil {
			return errors.New("结束招募决策时必须有决策人")
		}
		if r.LegacyFinalDecisionTime == nil {
			return errors.New("结束招募决策时必须有决策时间")
		}
	}

	return nil
}

// RecruitChangeLog 招募字段变更记录，只追加，不修改。
type RecruitChangeLog struct {
	ID         int64     `json:"id"`
	RecruitID  int64     `json:"recruitID"`
	UserID     int64     `json:"userID"`
	FieldName  string    `json:"fieldName"`
	OldValue   string    `json:"oldValue"`
	NewValue   string    `json:"newValue"`
	ChangeTime time.Time `json:"changeTime"`
	IPAddress  string    `json:"ipAddress"`
}

var recruitFieldDisplayNames = map[string]string{
	"pilot":                    "主播",
	"recruiter":                "招募负责人",
	"appointment_time":         "预约时间",
	"channel":                  "渠道",
	"introduction_fee":         "介绍费",
	"remarks":                  "备注",
	"status":                   "招募状态",
	"scheduled_training_time":  "预约试播时间",
	"scheduled_broadcast_time": "预约开播时间",
}

func (l *RecruitChangeLog) FieldDisplayName() string {
	if name, ok := recruitFieldDisplayNames[l.FieldName]; ok {
		return name
	}
	return l.FieldName
}

type RecruitOperationType string

const (
	OperationStart             RecruitOperationType = "启动招募"
	OperationEdit              RecruitOperationType = "编辑招募"
	OperationInterviewDecision RecruitOperationType = "面试决策"
	OperationScheduleTraining  RecruitOperationType = "预约试播"
	OperationTrainingDecision  RecruitOperationType = "试播决策"
	OperationScheduleBroadcast RecruitOperationType = "预约开播"
	OperationBroadcastDecision RecruitOperationType = "开播决策"
	OperationAbandon           RecruitOperationType = "放弃招募"
)

// RecruitOperationLog 招募操作记录，按操作（而非按字段）追加。
type RecruitOperationLog struct {
	ID            int64                `json:"id"`
	UserID        int64                `json:"userID"`
	OperationType RecruitOperationType `json:"operationType"`
	RecruitID     int64                `json:"recruitID"`
	PilotID       int64                `json:"pilotID"`
	OperationTime time.Time            `json:"operationTime"`
	IPAddress     string               `json:"ipAddress"`
}
