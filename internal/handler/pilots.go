package handler

import (
	"net/http"
	"time"

	"github.com/xingyao-live/pilot-manager/backend/internal/domain"
	"github.com/xingyao-live/pilot-manager/backend/internal/pipeline"
)

// pilotView 在原始记录之外附上解析后的分类与状态，旧版数据对前端透明。
type pilotView struct {
	*domain.Pilot
	EffectiveRank   domain.Rank        `json:"effectiveRank"`
	EffectiveStatus domain.PilotStatus `json:"effectiveStatus"`
	Age             int32              `json:"age"`
}

func newPilotView(pilot *domain.Pilot) pilotView {
	return pilotView{
		Pilot:           pilot,
		EffectiveRank:   domain.EffectiveRank(pilot.Rank),
		EffectiveStatus: domain.EffectivePilotStatus(pilot.Status),
		Age:             pilot.Age(time.Now()),
	}
}

func (h *Handler) GetAllPilots(w http.ResponseWriter, r *http.Request) {
	var pilots []*domain.Pilot
	var err error

	if q := r.URL.Query().Get("q"); q != "" {
		pilots, err = h.repository.SearchPilots(q)
	} else {
		pilots, err = h.repository.GetAllPilots()
	}
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	views := make([]pilotView, 0, len(pilots))
	for _, pilot := range pilots {
		views = append(views, newPilotView(pilot))
	}

	h.successResponse(w, r, "获取主播列表成功", views)
}

func (h *Handler) GetPilot(w http.ResponseWriter, r *http.Request) {
	pilot := r.Context().Value(PilotCtx).(*domain.Pilot)
	h.successResponse(w, r, "获取主播信息成功", newPilotView(pilot))
}

func (h *Handler) CreatePilot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname  string `json:"nickname" validate:"required"`
		RealName  string `json:"realName"`
		Gender    *int32 `json:"gender" validate:"omitempty,oneof=0 1 2"`
		Hometown  string `json:"hometown"`
		BirthYear *int32 `json:"birthYear"`
		OwnerID   *int64 `json:"ownerID"`
		Platform  string `json:"platform" validate:"omitempty,oneof=快手 抖音 其他 未知"`
		WorkMode  string `json:"workMode" validate:"omitempty,oneof=线下 线上 未知"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	pilot := &domain.Pilot{
		Nickname:  req.Nickname,
		RealName:  req.RealName,
		Gender:    domain.GenderUnknown,
		Hometown:  req.Hometown,
		BirthYear: req.BirthYear,
		OwnerID:   req.OwnerID,
		Platform:  domain.PlatformUnknown,
		WorkMode:  domain.WorkModeUnknown,
		Rank:      domain.RankCandidate,
		Status:    domain.PilotStatusNotRecruited,
	}
	if req.Gender != nil {
		pilot.Gender = domain.Gender(*req.Gender)
	}
	if req.Platform != "" {
		pilot.Platform = domain.Platform(req.Platform)
	}
	if req.WorkMode != "" {
		pilot.WorkMode = domain.WorkMode(req.WorkMode)
	}

	if err := pilot.Validate(time.Now()); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreatePilot(pilot); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "主播创建成功", newPilotView(pilot))
}

func (h *Handler) UpdatePilot(w http.ResponseWriter, r *http.Request) {
	pilot := r.Context().Value(PilotCtx).(*domain.Pilot)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Nickname  *string `json:"nickname"`
		RealName  *string `json:"realName"`
		Gender    *int32  `json:"gender" validate:"omitempty,oneof=0 1 2"`
		Hometown  *string `json:"hometown"`
		BirthYear *int32  `json:"birthYear"`
		OwnerID   *int64  `json:"ownerID"`
		Platform  *string `json:"platform" validate:"omitempty,oneof=快手 抖音 其他 未知"`
		WorkMode  *string `json:"workMode" validate:"omitempty,oneof=线下 线上 未知"`
		Rank      *string `json:"rank" validate:"omitempty,oneof=候选人 试播主播 实习主播 正式主播"`
		Status    *string `json:"status" validate:"omitempty,oneof=未招募 不招募 已招募 已签约 流失"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	before := *pilot

	if req.Nickname != nil {
		pilot.Nickname = *req.Nickname
	}
	if req.RealName != nil {
		pilot.RealName = *req.RealName
	}
	if req.Gender != nil {
		pilot.Gender = domain.Gender(*req.Gender)
	}
	if req.Hometown != nil {
		pilot.Hometown = *req.Hometown
	}
	if req.BirthYear != nil {
		pilot.BirthYear = req.BirthYear
	}
	if req.OwnerID != nil {
		pilot.OwnerID = req.OwnerID
	}
	if req.Platform != nil {
		pilot.Platform = domain.Platform(*req.Platform)
	}
	if req.WorkMode != nil {
		pilot.WorkMode = domain.WorkMode(*req.WorkMode)
	}
	if req.Rank != nil {
		pilot.Rank = domain.Rank(*req.Rank)
	}
	if req.Status != nil {
		pilot.Status = domain.PilotStatus(*req.Status)
	}

	now := time.Now()
	if err := pilot.Validate(now); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdatePilot(pilot); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if logs := pipeline.DiffPilot(&before, pilot, myInfo.ID, clientIP(r), now); len(logs) > 0 {
		if err := h.repository.InsertPilotChangeLogs(logs); err != nil {
			h.logInternalServerError(r, err)
		}
	}

	h.successResponse(w, r, "更新主播信息成功", newPilotView(pilot))
}

func (h *Handler) GetPilotChanges(w http.ResponseWriter, r *http.Request) {
	pilot := r.Context().Value(PilotCtx).(*domain.Pilot)

	logs, err := h.repository.GetPilotChangeLogs(pilot.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	type changeView struct {
		*domain.PilotChangeLog
		FieldDisplayName string `json:"fieldDisplayName"`
	}

	views := make([]changeView, 0, len(logs))
	for _, entry := range logs {
		views = append(views, changeView{PilotChangeLog: entry, FieldDisplayName: entry.FieldDisplayName()})
	}

	h.successResponse(w, r, "获取主播变更记录成功", views)
}

func (h *Handler) GetPilotRecruits(w http.ResponseWriter, r *http.Request) {
	pilot := r.Context().Value(PilotCtx).(*domain.Pilot)

	recruits, err := h.repository.GetRecruitsByPilot(pilot.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取主播招募记录成功", newRecruitViews(recruits))
}
