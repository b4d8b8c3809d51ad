package pipeline

import (
	"time"

	"github.com/xingyao-live/pilot-manager/backend/internal/domain"
)

// Thresholds 鸽宕判定的超时阈值。预约类阶段（待面试、待试播、待开播）
// 看预约时间，决策类阶段（待预约试播、待预约开播）看上一个决策的时间。
type Thresholds struct {
	Appointment time.Duration
	Decision    time.Duration
}

// DefaultThresholds 预约过期 24 小时、决策停滞 7 天。
var DefaultThresholds = Thresholds{
	Appointment: 24 * time.Hour,
	Decision:    7 * 24 * time.Hour,
}

// IsStalled 报告一条进行中的招募是否已经超时（俗称鸽了）。判定一律
// 基于解析后的有效值，旧版记录因此同样能被识别出来。缺失对应时间
// 字段的记录视为未超时。
func IsStalled(rec *domain.Recruit, now time.Time, th Thresholds) bool {
	deadline := stalledDeadline(rec, th)
	if deadline == nil {
		return false
	}
	return now.After(*deadline)
}

func stalledDeadline(rec *domain.Recruit, th Thresholds) *time.Time {
	var base *time.Time
	var wait time.Duration

	switch EffectiveStatus(rec) {
	case domain.RecruitStatusPendingInterview:
		base, wait = &rec.AppointmentTime, th.Appointment
	case domain.RecruitStatusPendingTrainingSchedule:
		base, wait = EffectiveInterviewDecisionTime(rec), th.Decision
	case domain.RecruitStatusPendingTraining:
		base, wait = EffectiveScheduledTrainingTime(rec), th.Appointment
	case domain.RecruitStatusPendingBroadcastSchedule:
		base, wait = EffectiveTrainingDecisionTime(rec), th.Decision
	case domain.RecruitStatusPendingBroadcast:
		base, wait = EffectiveScheduledBroadcastTime(rec), th.Appointment
	default:
		return nil
	}

	if base == nil || base.IsZero() {
		return nil
	}
	deadline := base.Add(wait)
	return &deadline
}

// Partition 把进行中的招募按是否超时分成两组，保持输入的相对顺序。
func Partition(recs []*domain.Recruit, now time.Time, th Thresholds) (onTrack, stalled []*domain.Recruit) {
	for _, rec := range recs {
		if IsStalled(rec, now, th) {
			stalled = append(stalled, rec)
		} else {
			onTrack = append(onTrack, rec)
		}
	}
	return onTrack, stalled
}
