package pipeline

import (
	"strconv"
	"time"

	"github.com/xingyao-live/pilot-manager/backend/internal/domain"
)

// 变更记录只追踪下列字段。对比在字符串序列化之后进行，时间统一用
// RFC3339，空值序列化为空串，这样旧值为 NULL 的历史数据也能正常对比。

var trackedRecruitFields = []string{
	"pilot",
	"recruiter",
	"appointment_time",
	"channel",
	"introduction_fee",
	"remarks",
	"status",
	"scheduled_training_time",
	"scheduled_broadcast_time",
}

var trackedPilotFields = []string{
	"nickname",
	"real_name",
	"gender",
	"birth_year",
	"owner",
	"platform",
	"work_mode",
	"rank",
	"status",
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func recruitFieldValue(rec *domain.Recruit, field string) string {
	switch field {
	case "pilot":
		return strconv.FormatInt(rec.PilotID, 10)
	case "recruiter":
		return strconv.FormatInt(rec.RecruiterID, 10)
	case "appointment_time":
		return formatTime(&rec.AppointmentTime)
	case "channel":
		return string(rec.Channel)
	case "introduction_fee":
		if rec.IntroductionFee == 0 {
			return ""
		}
		return strconv.FormatInt(rec.IntroductionFee, 10)
	case "remarks":
		return rec.Remarks
	case "status":
		return string(rec.Status)
	case "scheduled_training_time":
		return formatTime(rec.ScheduledTrainingTime)
	case "scheduled_broadcast_time":
		return formatTime(rec.ScheduledBroadcastTime)
	default:
		return ""
	}
}

func pilotFieldValue(p *domain.Pilot, field string) string {
	switch field {
	case "nickname":
		return p.Nickname
	case "real_name":
		return p.RealName
	case "gender":
		return strconv.FormatInt(int64(p.Gender), 10)
	case "birth_year":
		if p.BirthYear == nil {
			return ""
		}
		return strconv.FormatInt(int64(*p.BirthYear), 10)
	case "owner":
		return formatID(p.OwnerID)
	case "platform":
		return string(p.Platform)
	case "work_mode":
		return string(p.WorkMode)
	case "rank":
		return string(p.Rank)
	case "status":
		return string(p.Status)
	default:
		return ""
	}
}

// DiffRecruit 对比新旧两条招募记录，为每个发生变化的受追踪字段生成
// 一条变更记录。两条记录都没有变化时返回空切片。
func DiffRecruit(before, after *domain.Recruit, userID int64, ip string, at time.Time) []*domain.RecruitChangeLog {
	var logs []*domain.RecruitChangeLog
	for _, field := range trackedRecruitFields {
		oldValue := recruitFieldValue(before, field)
		newValue := recruitFieldValue(after, field)
		if oldValue == newValue {
			continue
		}
		logs = append(logs, &domain.RecruitChangeLog{
			RecruitID:  after.ID,
			UserID:     userID,
			FieldName:  field,
			OldValue:   oldValue,
			NewValue:   newValue,
			ChangeTime: at,
			IPAddress:  ip,
		})
	}
	return logs
}

// DiffPilot 对比新旧两条主播记录，规则与 DiffRecruit 一致。
func DiffPilot(before, after *domain.Pilot, userID int64, ip string, at time.Time) []*domain.PilotChangeLog {
	var logs []*domain.PilotChangeLog
	for _, field := range trackedPilotFields {
		oldValue := pilotFieldValue(before, field)
		newValue := pilotFieldValue(after, field)
		if oldValue == newValue {
			continue
		}
		logs = append(logs, &domain.PilotChangeLog{
			PilotID:    after.ID,
			UserID:     userID,
			FieldName:  field,
			OldValue:   oldValue,
			NewValue:   newValue,
			ChangeTime: at,
			IPAddress:  ip,
		})
	}
	return logs
}
