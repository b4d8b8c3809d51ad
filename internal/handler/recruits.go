package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/xingyao-live/pilot-manager/backend/internal/domain"
	"github.com/xingyao-live/pilot-manager/backend/internal/pipeline"
)

// recruitView 在原始记录之外附上解析后的有效值，前端不需要理解新旧双字段。
type recruitView struct {
	*domain.Recruit
	Effective pipeline.EffectiveView `json:"effective"`
}

func newRecruitView(rec *domain.Recruit) recruitView {
	return recruitView{
		Recruit:   rec,
		Effective: pipeline.Resolve(rec),
	}
}

func newRecruitViews(recruits []*domain.Recruit) []recruitView {
	views := make([]recruitView, 0, len(recruits))
	for _, rec := range recruits {
		views = append(views, newRecruitView(rec))
	}
	return views
}

func (h *Handler) actor(r *http.Request) pipeline.Actor {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	return pipeline.Actor{
		UserID: myInfo.ID,
		IP:     clientIP(r),
	}
}

// pipelineError 把流转服务的错误翻译成响应：校验错误告诉用户原因，
// 写入失败让用户重试，其余按内部错误处理。
func (h *Handler) pipelineError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *pipeline.ValidationError
	var serviceErr *pipeline.ServiceError

	switch {
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "招募记录不存在")
	case errors.As(err, &validationErr):
		h.errorResponse(w, r, validationErr.Message)
	case errors.As(err, &serviceErr):
		h.logInternalServerError(r, serviceErr)
		h.errorResponse(w, r, serviceErr.Error())
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) GetAllRecruits(w http.ResponseWriter, r *http.Request) {
	recruits, err := h.repository.GetAllRecruits()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 状态筛选按有效状态进行，旧版记录同样能被筛出来。除了六个阶段外
	// 还支持两个聚合值：进行中（未结束）和鸽（进行中且已超时）
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := make([]*domain.Recruit, 0, len(recruits))
		for _, rec := range recruits {
			switch status {
			case "进行中":
				if pipeline.EffectiveStatus(rec) != domain.RecruitStatusEnded {
					filtered = append(filtered, rec)
				}
			case "鸽":
				if h.pipeline.IsStalled(rec) {
					filtered = append(filtered, rec)
				}
			default:
				if pipeline.EffectiveStatus(rec) == domain.RecruitStatus(status) {
					filtered = append(filtered, rec)
				}
			}
		}
		recruits = filtered
	}

	h.successResponse(w, r, "获取招募列表成功", newRecruitViews(recruits))
}

func (h *Handler) GetGroupedRecruits(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.pipeline.GroupInProgress()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	data := struct {
		OnTrack []recruitView `json:"onTrack"`
		Stalled []recruitView `json:"stalled"`
	}{
		OnTrack: newRecruitViews(grouped.OnTrack),
		Stalled: newRecruitViews(grouped.Stalled),
	}

	h.successResponse(w, r, "获取招募分组成功", data)
}

func (h *Handler) GetStalledRecruits(w http.ResponseWriter, r *http.Request) {
	stalled, err := h.pipeline.ListStalled()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取超时招募成功", newRecruitViews(stalled))
}

func (h *Handler) GetRecruit(w http.ResponseWriter, r *http.Request) {
	rec := r.Context().Value(RecruitCtx).(*domain.Recruit)
	h.successResponse(w, r, "获取招募详情成功", newRecruitView(rec))
}

func (h *Handler) StartRecruitment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PilotID         int64     `json:"pilotID" validate:"required"`
		RecruiterID     int64     `json:"recruiterID" validate:"required"`
		AppointmentTime time.Time `json:"appointmentTime" validate:"required"`
		Channel         string    `json:"channel" validate:"required,oneof=BOSS 51 介绍 其他"`
		IntroductionFee int64     `json:"introductionFee" validate:"gte=0"`
		Remarks         string    `json:"remarks" validate:"max=200"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	rec, err := h.pipeline.StartRecruitment(pipeline.StartInput{
		PilotID:         req.PilotID,
		RecruiterID:     req.RecruiterID,
		AppointmentTime: req.AppointmentTime,
		Channel:         domain.RecruitChannel(req.Channel),
		IntroductionFee: req.IntroductionFee,
		Remarks:         req.Remarks,
	}, h.actor(r))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "主播不存在")
			return
		}
		h.pipelineError(w, r, err)
		return
	}

	h.successResponse(w, r, "招募已成功启动", newRecruitView(rec))
}

func (h *Handler) UpdateRecruit(w http.ResponseWriter, r *http.Request) {
	rec := r.Context().Value(RecruitCtx).(*domain.Recruit)

	var req struct {
		RecruiterID     int64     `json:"recruiterID" validate:"required"`
		AppointmentTime time.Time `json:"appointmentTime" validate:"required"`
		Channel         string    `json:"channel" validate:"required,oneof=BOSS 51 介绍 其他"`
		IntroductionFee int64     `json:"introductionFee" validate:"gte=0"`
		Remarks         string    `json:"remarks" validate:"max=200"`

		ScheduledTrainingTime       *time.Time `json:"scheduledTrainingTime"`
		ClearScheduledTrainingTime  bool       `json:"clearScheduledTrainingTime"`
		ScheduledBroadcastTime      *time.Time `json:"scheduledBroadcastTime"`
		ClearScheduledBroadcastTime bool       `json:"clearScheduledBroadcastTime"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.pipeline.UpdateRecruit(rec.ID, pipeline.EditInput{
		RecruiterID:                 req.RecruiterID,
		AppointmentTime:             req.AppointmentTime,
		Channel:                     domain.RecruitChannel(req.Channel),
		IntroductionFee:             req.IntroductionFee,
		Remarks:                     req.Remarks,
		ScheduledTrainingTime:       req.ScheduledTrainingTime,
		ClearScheduledTrainingTime:  req.ClearScheduledTrainingTime,
		ScheduledBroadcastTime:      req.ScheduledBroadcastTime,
		ClearScheduledBroadcastTime: req.ClearScheduledBroadcastTime,
	}, h.actor(r))
	if err != nil {
		h.pipelineError(w, r, err)
		return
	}

	h.successResponse(w, r, "招募信息已更新", newRecruitView(updated))
}

func (h *Handler) DecideInterview(w http.ResponseWriter, r *http.Request) {
	rec := r.Context().Value(RecruitCtx).(*domain.Recruit)

	var req struct {
		InterviewDecision string `json:"interviewDecision" validate:"required,oneof=预约试播 不招募"`
		RealName          string `json:"realName"`
		BirthYear         *int32 `json:"birthYear"`
		IntroductionFee   int64  `json:"introductionFee" validate:"gte=0"`
		Remarks           string `json:"remarks" validate:"max=200"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.pipeline.DecideInterview(rec.ID, pipeline.InterviewDecisionInput{
		Decision:        domain.InterviewDecision(req.InterviewDecision),
		RealName:        req.RealName,
		BirthYear:       req.BirthYear,
		IntroductionFee: req.IntroductionFee,
		Remarks:         req.Remarks,
	}, h.actor(r))
	if err != nil {
		h.pipelineError(w, r, err)
		return
	}

	if updated.InterviewDecision == domain.InterviewDecisionScheduleTraining {
		h.successResponse(w, r, "面试决策成功，主播已进入待预约试播阶段", newRecruitView(updated))
	} else {
		h.successResponse(w, r, "面试决策完成，已决定不招募该主播", newRecruitView(updated))
	}
}

func (h *Handler) ScheduleTraining(w http.ResponseWriter, r *http.Request) {
	rec := r.Context().Value(RecruitCtx).(*domain.Recruit)

	var req struct {
		ScheduledTrainingTime time.Time `json:"scheduledTrainingTime" validate:"required"`
		WorkMode              string    `json:"workMode" validate:"required,oneof=线下 线上 未知"`
		IntroductionFee       int64     `json:"introductionFee" validate:"gte=0"`
		Remarks               string    `json:"remarks" validate:"max=200"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.pipeline.ScheduleTraining(rec.ID, pipeline.ScheduleTrainingInput{
		ScheduledTrainingTime: req.ScheduledTrainingTime,
		WorkMode:              domain.WorkMode(req.WorkMode),
		IntroductionFee:       req.IntroductionFee,
		Remarks:               req.Remarks,
	}, h.actor(r))
	if err != nil {
		h.pipelineError(w, r, err)
		return
	}

	h.successResponse(w, r, "预约试播成功，主播已进入待试播阶段", newRecruitView(updated))
}

func (h *Handler) DecideTraining(w http.ResponseWriter, r *http.Request) {
	rec := r.Context().Value(RecruitCtx).(*domain.Recruit)

	var req struct {
		TrainingDecision string `json:"trainingDecision" validate:"required,oneof=预约开播 不招募"`
		IntroductionFee  int64  `json:"introductionFee" validate:"gte=0"`
		Remarks          string `json:"remarks" validate:"max=200"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.pipeline.DecideTraining(rec.ID, pipeline.TrainingDecisionInput{
		Decision:        domain.TrainingDecision(req.TrainingDecision),
		IntroductionFee: req.IntroductionFee,
		Remarks:         req.Remarks,
	}, h.actor(r))
	if err != nil {
		h.pipelineError(w, r, err)
		return
	}

	if updated.TrainingDecision == domain.TrainingDecisionScheduleBroadcast {
		h.successResponse(w, r, "试播决策成功，主播已进入待预约开播阶段", newRecruitView(updated))
	} else {
		h.successResponse(w, r, "试播决策完成，已决定不招募该主播", newRecruitView(updated))
	}
}

func (h *Handler) ScheduleBroadcast(w http.ResponseWriter, r *http.Request) {
	rec := r.Context().Value(RecruitCtx).(*domain.Recruit)

	var req struct {
		ScheduledBroadcastTime time.Time `json:"scheduledBroadcastTime" validate:"required"`
		IntroductionFee        int64     `json:"introductionFee" validate:"gte=0"`
		Remarks                string    `json:"remarks" validate:"max=200"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.pipeline.ScheduleBroadcast(rec.ID, pipeline.ScheduleBroadcastInput{
		ScheduledBroadcastTime: req.ScheduledBroadcastTime,
		IntroductionFee:        req.IntroductionFee,
		Remarks:                req.Remarks,
	}, h.actor(r))
	if err != nil {
		h.pipelineError(w, r, err)
		return
	}

	h.successResponse(w, r, "预约开播成功，主播已进入待开播阶段", newRecruitView(updated))
}

func (h *Handler) DecideBroadcast(w http.ResponseWriter, r *http.Request) {
	rec := r.Context().Value(RecruitCtx).(*domain.Recruit)

	var req struct {
		BroadcastDecision string `json:"broadcastDecision" validate:"required,oneof=正式主播 实习主播 不招募"`
		OwnerID           *int64 `json:"ownerID"`
		Platform          string `json:"platform" validate:"omitempty,oneof=快手 抖音 其他"`
		IntroductionFee   int64  `json:"introductionFee" validate:"gte=0"`
		Remarks           string `json:"remarks" validate:"max=200"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.pipeline.DecideBroadcast(rec.ID, pipeline.BroadcastDecisionInput{
		Decision:        domain.BroadcastDecision(req.BroadcastDecision),
		OwnerID:         req.OwnerID,
		Platform:        domain.Platform(req.Platform),
		IntroductionFee: req.IntroductionFee,
		Remarks:         req.Remarks,
	}, h.actor(r))
	if err != nil {
		h.pipelineError(w, r, err)
		return
	}

	if updated.BroadcastDecision == domain.BroadcastDecisionNotRecruit {
		h.successResponse(w, r, "开播决策完成，已决定不招募该主播", newRecruitView(updated))
	} else {
		h.successResponse(w, r, "开播决策成功，主播已被招募为"+string(updated.BroadcastDecision), newRecruitView(updated))
	}
}

func (h *Handler) AbandonRecruit(w http.ResponseWriter, r *http.Request) {
	rec := r.Context().Value(RecruitCtx).(*domain.Recruit)

	updated, err := h.pipeline.Abandon(rec.ID, h.actor(r))
	if err != nil {
		h.pipelineError(w, r, err)
		return
	}

	h.successResponse(w, r, "招募已放弃", newRecruitView(updated))
}

func (h *Handler) GetRecruitChanges(w http.ResponseWriter, r *http.Request) {
	rec := r.Context().Value(RecruitCtx).(*domain.Recruit)

	logs, err := h.repository.GetRecruitChangeLogs(rec.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	type changeView struct {
		*domain.RecruitChangeLog
		FieldDisplayName string `json:"fieldDisplayName"`
	}

	views := make([]changeView, 0, len(logs))
	for _, entry := range logs {
		views = append(views, changeView{RecruitChangeLog: entry, FieldDisplayName: entry.FieldDisplayName()})
	}

	h.successResponse(w, r, "获取招募变更记录成功", views)
}

func (h *Handler) GetRecruitOperations(w http.ResponseWriter, r *http.Request) {
	rec := r.Context().Value(RecruitCtx).(*domain.Recruit)

	logs, err := h.repository.GetRecruitOperationLogs(rec.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取招募操作记录成功", logs)
}
