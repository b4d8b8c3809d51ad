// Package pipeline 实现主播招募流水线的核心：有效值解析、阶段流转、
// 超时（鸽）判定和变更记录。历史数据迁移遗留的新旧双字段只在本包内
// 降级读取，其它包一律通过这里拿到“真正生效”的值。
package pipeline

import (
	"log/slog"
	"time"

	"github.com/xingyao-live/pilot-manager/backend/internal/domain"
)

// 阶段在流水线中的先后顺序，用于判断某条记录是否已经走到某个阶段之后。
const (
	stagePendingInterview = iota + 1
	stagePendingTrainingSchedule
	stagePendingTraining
	stagePendingBroadcastSchedule
	stagePendingBroadcast
	stageEnded
)

var statusStageIndex = map[domain.RecruitStatus]int{
	domain.RecruitStatusPendingInterview:         stagePendingInterview,
	domain.RecruitStatusPendingTrainingSchedule:  stagePendingTrainingSchedule,
	domain.RecruitStatusPendingTraining:          stagePendingTraining,
	domain.RecruitStatusPendingBroadcastSchedule: stagePendingBroadcastSchedule,
	domain.RecruitStatusPendingBroadcast:         stagePendingBroadcast,
	domain.RecruitStatusEnded:                    stageEnded,
}

var recruitStatusOldToNew = map[domain.RecruitStatus]domain.RecruitStatus{
	domain.RecruitStatusStarted:                    domain.RecruitStatusPendingInterview,
	domain.RecruitStatusPendingTrainingScheduleOld: domain.RecruitStatusPendingTrainingSchedule,
	domain.RecruitStatusPendingTrainingOld:         domain.RecruitStatusPendingTraining,
	domain.RecruitStatusTrainingRecruiting:         domain.RecruitStatusPendingTraining,
	domain.RecruitStatusTrainingRecruitingOld:      domain.RecruitStatusPendingTraining,
}

var interviewDecisionOldToNew = map[domain.InterviewDecision]domain.InterviewDecision{
	domain.InterviewDecisionScheduleTrainingOld: domain.InterviewDecisionScheduleTraining,
	domain.InterviewDecisionNotRecruitOld:       domain.InterviewDecisionNotRecruit,
}

var trainingDecisionOldToNew = map[domain.TrainingDecision]domain.TrainingDecision{
	domain.TrainingDecisionNotRecruitOld: domain.TrainingDecisionNotRecruit,
}

var broadcastDecisionOldToNew = map[domain.BroadcastDecision]domain.BroadcastDecision{
	domain.BroadcastDecisionOfficialOld:   domain.BroadcastDecisionOfficial,
	domain.BroadcastDecisionInternOld:     domain.BroadcastDecisionIntern,
	domain.BroadcastDecisionNotRecruitOld: domain.BroadcastDecisionNotRecruit,
}

// EffectiveStatusValue 把原始状态值解析为当前语义下的状态。旧版状态通过
// 固定映射表换算；映射表之外的未知值原样返回，但会打一条告警日志，
// 避免数据质量问题被静默吞掉。
func EffectiveStatusValue(status domain.RecruitStatus) domain.RecruitStatus {
	if status == "" {
		return ""
	}
	if mapped, ok := recruitStatusOldToNew[status]; ok {
		return mapped
	}
	if _, ok := statusStageIndex[status]; ok {
		return status
	}
	slog.Warn("招募状态存在未知的历史值", "status", string(status))
	return status
}

// EffectiveStatus 返回招募记录当前生效的状态。
func EffectiveStatus(rec *domain.Recruit) domain.RecruitStatus {
	return EffectiveStatusValue(rec.Status)
}

// atOrBeyond 报告记录的有效状态是否已经到达（或越过）给定阶段。
// 未知状态视为尚未到达任何阶段。
func atOrBeyond(rec *domain.Recruit, stage int) bool {
	idx, ok := statusStageIndex[EffectiveStatus(rec)]
	return ok && idx >= stage
}

// fallbackAt 是所有降级读取共用的骨架：当前字段有值就用当前字段，
// 否则在记录已到达对应阶段时读取旧版字段，再否则返回空值。
func fallbackAt[T comparable](rec *domain.Recruit, current T, empty T, stage int, legacy func(*domain.Recruit) T) T {
	if current != empty {
		return current
	}
	if atOrBeyond(rec, stage) {
		return legacy(rec)
	}
	return empty
}

// EffectiveInterviewDecisionValue 把原始面试决策值换算为当前枚举值，
// 未知值原样返回并告警。
func EffectiveInterviewDecisionValue(d domain.InterviewDecision) domain.InterviewDecision {
	if d == "" {
		return ""
	}
	if mapped, ok := interviewDecisionOldToNew[d]; ok {
		return mapped
	}
	if d != domain.InterviewDecisionScheduleTraining && d != domain.InterviewDecisionNotRecruit {
		slog.Warn("面试决策存在未知的历史值", "decision", string(d))
	}
	return d
}

// EffectiveTrainingDecisionValue 把原始试播决策值换算为当前枚举值。
func EffectiveTrainingDecisionValue(d domain.TrainingDecision) domain.TrainingDecision {
	if d == "" {
		return ""
	}
	if mapped, ok := trainingDecisionOldToNew[d]; ok {
		return mapped
	}
	if d != domain.TrainingDecisionScheduleBroadcast && d != domain.TrainingDecisionNotRecruit {
		slog.Warn("试播决策存在未知的历史值", "decision", string(d))
	}
	return d
}

// EffectiveBroadcastDecisionValue 把原始开播决策值换算为当前枚举值。
func EffectiveBroadcastDecisionValue(d domain.BroadcastDecision) domain.BroadcastDecision {
	if d == "" {
		return ""
	}
	if mapped, ok := broadcastDecisionOldToNew[d]; ok {
		return mapped
	}
	if d != domain.BroadcastDecisionOfficial && d != domain.BroadcastDecisionIntern && d != domain.BroadcastDecisionNotRecruit {
		slog.Warn("开播决策存在未知的历史值", "decision", string(d))
	}
	return d
}

// EffectiveInterviewDecision 返回生效的面试决策。当前字段缺失时，只要
// 记录已经走到待预约试播及之后的阶段，就用旧版试播招募决策推断：
// 招募为试播主播等价于预约试播，否则等价于不招募。
func EffectiveInterviewDecision(rec *domain.Recruit) domain.InterviewDecision {
	if rec.InterviewDecision != "" {
		return EffectiveInterviewDecisionValue(rec.InterviewDecision)
	}
	if atOrBeyond(rec, stagePendingTrainingSchedule) && rec.LegacyTrainingDecision != "" {
		if rec.LegacyTrainingDecision == domain.TrainingDecisionLegacyRecruitAsTrainee {
			return domain.InterviewDecisionScheduleTraining
		}
		return domain.InterviewDecisionNotRecruit
	}
	return ""
}

func EffectiveInterviewDecisionMaker(rec *domain.Recruit) *int64 {
	return fallbackAt(rec, rec.InterviewDecisionMaker, nil, stagePendingTrainingSchedule,
		func(r *domain.Recruit) *int64 { return r.LegacyTrainingDecisionMaker })
}

func EffectiveInterviewDecisionTime(rec *domain.Recruit) *time.Time {
	return fallbackAt(rec, rec.InterviewDecisionTime, nil, stagePendingTrainingSchedule,
		func(r *domain.Recruit) *time.Time { return r.LegacyTrainingDecisionTime })
}

// EffectiveScheduledTrainingTime 返回生效的预约试播时间，旧版记录里
// 由单一用途的试播时间字段兜底。
func EffectiveScheduledTrainingTime(rec *domain.Recruit) *time.Time {
	return fallbackAt(rec, rec.ScheduledTrainingTime, nil, stagePendingTraining,
		func(r *domain.Recruit) *time.Time { return r.LegacyTrainingTime })
}

// EffectiveTrainingDecision 返回生效的试播决策。旧版记录中由试播招募
// 决策推断：招募为试播主播等价于预约开播，否则等价于不招募。
func EffectiveTrainingDecision(rec *domain.Recruit) domain.TrainingDecision {
	if rec.TrainingDecision != "" {
		return EffectiveTrainingDecisionValue(rec.TrainingDecision)
	}
	if atOrBeyond(rec, stagePendingBroadcastSchedule) && rec.LegacyTrainingDecision != "" {
		if rec.LegacyTrainingDecision == domain.TrainingDecisionLegacyRecruitAsTrainee {
			return domain.TrainingDecisionScheduleBroadcast
		}
		return domain.TrainingDecisionNotRecruit
	}
	return ""
}

func EffectiveTrainingDecisionMaker(rec *domain.Recruit) *int64 {
	return fallbackAt(rec, rec.TrainingDecisionMaker, nil, stagePendingBroadcastSchedule,
		func(r *domain.Recruit) *int64 { return r.LegacyTrainingDecisionMaker })
}

func EffectiveTrainingDecisionTime(rec *domain.Recruit) *time.Time {
	return fallbackAt(rec, rec.TrainingDecisionTime, nil, stagePendingBroadcastSchedule,
		func(r *domain.Recruit) *time.Time { return r.LegacyTrainingDecisionTime })
}

// EffectiveScheduledBroadcastTime 返回生效的预约开播时间。旧版记录中
// 试播时间同时充当预约开播时间。
func EffectiveScheduledBroadcastTime(rec *domain.Recruit) *time.Time {
	return fallbackAt(rec, rec.ScheduledBroadcastTime, nil, stagePendingBroadcast,
		func(r *domain.Recruit) *time.Time { return r.LegacyTrainingTime })
}

// EffectiveBroadcastDecision 返回生效的开播决策，旧版记录里由结束招募
// 决策兜底。
func EffectiveBroadcastDecision(rec *domain.Recruit) domain.BroadcastDecision {
	if rec.BroadcastDecision != "" {
		return EffectiveBroadcastDecisionValue(rec.BroadcastDecision)
	}
	if atOrBeyond(rec, stageEnded) && rec.LegacyFinalDecision != "" {
		return EffectiveBroadcastDecisionValue(domain.BroadcastDecision(rec.LegacyFinalDecision))
	}
	return ""
}

func EffectiveBroadcastDecisionMaker(rec *domain.Recruit) *int64 {
	return fallbackAt(rec, rec.BroadcastDecisionMaker, nil, stageEnded,
		func(r *domain.Recruit) *int64 { return r.LegacyFinalDecisionMaker })
}

func EffectiveBroadcastDecisionTime(rec *domain.Recruit) *time.Time {
	return fallbackAt(rec, rec.BroadcastDecisionTime, nil, stageEnded,
		func(r *domain.Recruit) *time.Time { return r.LegacyFinalDecisionTime })
}

// EffectiveView 汇总一条招募记录所有生效的值，供展示层一次性读取。
type EffectiveView struct {
	Status                 domain.RecruitStatus     `json:"status"`
	InterviewDecision      domain.InterviewDecision `json:"interviewDecision"`
	InterviewDecisionMaker *int64                   `json:"interviewDecisionMaker"`
	InterviewDecisionTime  *time.Time               `json:"interviewDecisionTime"`
	ScheduledTrainingTime  *time.Time               `json:"scheduledTrainingTime"`
	TrainingDecision       domain.TrainingDecision  `json:"trainingDecision"`
	TrainingDecisionMaker  *int64                   `json:"trainingDecisionMaker"`
	TrainingDecisionTime   *time.Time               `json:"trainingDecisionTime"`
	ScheduledBroadcastTime *time.Time               `json:"scheduledBroadcastTime"`
	BroadcastDecision      domain.BroadcastDecision `json:"broadcastDecision"`
	BroadcastDecisionMaker *int64                   `json:"broadcastDecisionMaker"`
	BroadcastDecisionTime  *time.Time               `json:"broadcastDecisionTime"`
}

// Resolve 是只读的，不会修改传入的记录，可以被并发地反复调用。
func Resolve(rec *domain.Recruit) EffectiveView {
	return EffectiveView{
		Status:                 EffectiveStatus(rec),
		InterviewDecision:      EffectiveInterviewDecision(rec),
		InterviewDecisionMaker: EffectiveInterviewDecisionMaker(rec),
		InterviewDecisionTime:  EffectiveInterviewDecisionTime(rec),
		ScheduledTrainingTime:  EffectiveScheduledTrainingTime(rec),
		TrainingDecision:       EffectiveTrainingDecision(rec),
		TrainingDecisionMaker:  EffectiveTrainingDecisionMaker(rec),
		TrainingDecisionTime:   EffectiveTrainingDecisionTime(rec),
		ScheduledBroadcastTime: EffectiveScheduledBroadcastTime(rec),
		BroadcastDecision:      EffectiveBroadcastDecision(rec),
		BroadcastDecisionMaker: EffectiveBroadcastDecisionMaker(rec),
		BroadcastDecisionTime:  EffectiveBroadcastDecisionTime(rec),
	}
}
