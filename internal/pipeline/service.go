package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xingyao-live/pilot-manager/backend/internal/domain"
)

// Store 是流转服务需要的持久化能力。没有跨两张表的事务，写入顺序与
// 失败补偿由服务层负责。
type Store interface {
	GetUserByID(id int64) (*domain.User, error)
	GetPilotByID(id int64) (*domain.Pilot, error)
	UpdatePilot(pilot *domain.Pilot) error
	GetRecruitByID(id int64) (*domain.Recruit, error)
	CreateRecruit(rec *domain.Recruit) error
	UpdateRecruit(rec *domain.Recruit) error
	HasActiveRecruit(pilotID int64) (bool, error)
	GetInProgressRecruits() ([]*domain.Recruit, error)
	InsertRecruitChangeLogs(logs []*domain.RecruitChangeLog) error
	InsertPilotChangeLogs(logs []*domain.PilotChangeLog) error
	InsertRecruitOperationLog(entry *domain.RecruitOperationLog) error
}

// ValidationError 表示请求本身不合法，调用方应当返回 400 而不是 500。
// 返回该错误时保证没有写入过任何数据。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// ServiceError 表示写入阶段失败。RollbackErr 不为空时说明补偿写入也
// 失败了，两条记录可能处于不一致状态，需要人工介入。
type ServiceError struct {
	Op          domain.RecruitOperationType
	Err         error
	RollbackErr error
}

func (e *ServiceError) Error() string {
	if e.RollbackErr != nil {
		return fmt.Sprintf("%s失败且回滚失败，数据可能不一致: %v; 回滚: %v", e.Op, e.Err, e.RollbackErr)
	}
	return fmt.Sprintf("%s失败，已回滚，请重试: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Actor 记录每次操作是谁在哪个地址上发起的，进入变更与操作日志。
type Actor struct {
	UserID int64
	IP     string
}

// Service 实现招募流水线的全部阶段流转。
type Service struct {
	store      Store
	thresholds Thresholds
	now        func() time.Time
}

func NewService(store Store, thresholds Thresholds) *Service {
	return &Service{
		store:      store,
		thresholds: thresholds,
		now:        time.Now,
	}
}

func cloneRecruit(rec *domain.Recruit) *domain.Recruit {
	clone := *rec
	return &clone
}

func clonePilot(pilot *domain.Pilot) *domain.Pilot {
	clone := *pilot
	return &clone
}

// loadRecruitAt 取出招募记录及其关联主播，并校验有效状态。
func (s *Service) loadRecruitAt(recruitID int64, want domain.RecruitStatus, message string) (*domain.Recruit, *domain.Pilot, error) {
	rec, err := s.store.GetRecruitByID(recruitID)
	if err != nil {
		return nil, nil, err
	}
	if EffectiveStatus(rec) != want {
		return nil, nil, invalid(message)
	}
	pilot, err := s.store.GetPilotByID(rec.PilotID)
	if err != nil {
		return nil, nil, err
	}
	return rec, pilot, nil
}

// finish 完成一次阶段流转的落库：先校验两条记录，再按“招募先写，主播
// 后写”的顺序写入；主播写入失败时先恢复主播快照、再恢复招募快照。
// 变更日志与操作日志在主数据写入成功后追加，失败只告警不回滚。
func (s *Service) finish(op domain.RecruitOperationType, actor Actor, rec, recSnap *domain.Recruit, pilot, pilotSnap *domain.Pilot) error {
	now := s.now()
	rec.UpdatedAt = now

	if err := rec.Validate(); err != nil {
		return invalid(err.Error())
	}
	if pilot != nil {
		pilot.UpdatedAt = now
		if err := pilot.Validate(now); err != nil {
			return invalid(err.Error())
		}
	}

	if err := s.store.UpdateRecruit(rec); err != nil {
		slog.Error("招募记录写入失败", "operation", string(op), "recruitID", rec.ID, "error", err)
		return &ServiceError{Op: op, Err: err}
	}

	if pilot != nil {
		if err := s.store.UpdatePilot(pilot); err != nil {
			slog.Error("主播记录写入失败，开始回滚", "operation", string(op), "recruitID", rec.ID, "pilotID", pilot.ID, "error", err)
			var rollbackErr error
			if rbErr := s.store.UpdatePilot(pilotSnap); rbErr != nil {
				rollbackErr = errors.Join(rollbackErr, rbErr)
			}
			if rbErr := s.store.UpdateRecruit(recSnap); rbErr != nil {
				rollbackErr = errors.Join(rollbackErr, rbErr)
			}
			if rollbackErr != nil {
				slog.Error("回滚失败，数据可能不一致", "operation", string(op), "recruitID", rec.ID, "error", rollbackErr)
			}
			return &ServiceError{Op: op, Err: err, RollbackErr: rollbackErr}
		}
	}

	s.recordChanges(op, actor, rec, recSnap, pilot, pilotSnap, now)
	return nil
}

func (s *Service) recordChanges(op domain.RecruitOperationType, actor Actor, rec, recSnap *domain.Recruit, pilot, pilotSnap *domain.Pilot, at time.Time) {
	if logs := DiffRecruit(recSnap, rec, actor.UserID, actor.IP, at); len(logs) > 0 {
		if err := s.store.InsertRecruitChangeLogs(logs); err != nil {
			slog.Warn("招募变更记录写入失败", "recruitID", rec.ID, "error", err)
		}
	}
	if pilot != nil {
		if logs := DiffPilot(pilotSnap, pilot, actor.UserID, actor.IP, at); len(logs) > 0 {
			if err := s.store.InsertPilotChangeLogs(logs); err != nil {
				slog.Warn("主播变更记录写入失败", "pilotID", pilot.ID, "error", err)
			}
		}
	}
	s.recordOperation(op, actor, rec, at)
}

func (s *Service) recordOperation(op domain.RecruitOperationType, actor Actor, rec *domain.Recruit, at time.Time) {
	entry := &domain.RecruitOperationLog{
		UserID:        actor.UserID,
		OperationType: op,
		RecruitID:     rec.ID,
		PilotID:       rec.PilotID,
		OperationTime: at,
		IPAddress:     actor.IP,
	}
	if err := s.store.InsertRecruitOperationLog(entry); err != nil {
		slog.Warn("招募操作记录写入失败", "recruitID", rec.ID, "error", err)
	}
}

type StartInput struct {
	PilotID         int64
	RecruiterID     int64
	AppointmentTime time.Time
	Channel         domain.RecruitChannel
	IntroductionFee int64
	Remarks         string
}

// StartRecruitment 为一名未招募的主播启动招募流程，初始状态为待面试。
func (s *Service) StartRecruitment(in StartInput, actor Actor) (*domain.Recruit, error) {
	pilot, err := s.store.GetPilotByID(in.PilotID)
	if err != nil {
		return nil, err
	}
	if domain.EffectivePilotStatus(pilot.Status) != domain.PilotStatusNotRecruited {
		return nil, invalid("只有未招募状态的主播才能启动招募")
	}

	active, err := s.store.HasActiveRecruit(in.PilotID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, invalid("该主播已有正在进行的招募")
	}

	recruiter, err := s.store.GetUserByID(in.RecruiterID)
	if err != nil {
		return nil, invalid("无效的招募负责人")
	}
	if !recruiter.IsHandler() {
		return nil, invalid("招募负责人必须是运营或管理员")
	}

	if in.AppointmentTime.IsZero() {
		return nil, invalid("预约时间为必填项")
	}
	if !domain.ValidRecruitChannel(in.Channel) {
		return nil, invalid("无效的招募渠道")
	}

	now := s.now()
	rec := &domain.Recruit{
		PilotID:         in.PilotID,
		RecruiterID:     in.RecruiterID,
		AppointmentTime: in.AppointmentTime,
		Channel:         in.Channel,
		IntroductionFee: in.IntroductionFee,
		Remarks:         in.Remarks,
		Status:          domain.RecruitStatusPendingInterview,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := rec.Validate(); err != nil {
		return nil, invalid(err.Error())
	}

	if err := s.store.CreateRecruit(rec); err != nil {
		return nil, &ServiceError{Op: domain.OperationStart, Err: err}
	}

	slog.Info("启动招募", "pilotID", pilot.ID, "recruiterID", recruiter.ID, "appointmentTime", in.AppointmentTime)
	s.recordOperation(domain.OperationStart, actor, rec, now)
	return rec, nil
}

type EditInput struct {
	RecruiterID     int64
	AppointmentTime time.Time
	Channel         domain.RecruitChannel
	IntroductionFee int64
	Remarks         string

	// 预约时间只在记录已到达对应阶段时允许调整，nil 表示保持不变，
	// Clear 为真表示清空。
	ScheduledTrainingTime       *time.Time
	ClearScheduledTrainingTime  bool
	ScheduledBroadcastTime      *time.Time
	ClearScheduledBroadcastTime bool
}

// UpdateRecruit 编辑招募的基础信息，不改变所处阶段。
func (s *Service) UpdateRecruit(recruitID int64, in EditInput, actor Actor) (*domain.Recruit, error) {
	rec, err := s.store.GetRecruitByID(recruitID)
	if err != nil {
		return nil, err
	}

	recruiter, err := s.store.GetUserByID(in.RecruiterID)
	if err != nil {
		return nil, invalid("无效的招募负责人")
	}
	if !recruiter.IsHandler() {
		return nil, invalid("招募负责人必须是运营或管理员")
	}
	if in.AppointmentTime.IsZero() {
		return nil, invalid("预约时间为必填项")
	}
	if !domain.ValidRecruitChannel(in.Channel) {
		return nil, invalid("无效的招募渠道")
	}
	if in.IntroductionFee < 0 {
		return nil, invalid("介绍费不能为负数")
	}

	recSnap := cloneRecruit(rec)
	rec.RecruiterID = in.RecruiterID
	rec.AppointmentTime = in.AppointmentTime
	rec.Channel = in.Channel
	rec.IntroductionFee = in.IntroductionFee
	rec.Remarks = in.Remarks

	status := EffectiveStatus(rec)
	trainingTimeEditable := status == domain.RecruitStatusPendingTraining ||
		status == domain.RecruitStatusPendingBroadcastSchedule ||
		status == domain.RecruitStatusPendingBroadcast
	if trainingTimeEditable {
		if in.ScheduledTrainingTime != nil {
			rec.ScheduledTrainingTime = in.ScheduledTrainingTime
		} else if in.ClearScheduledTrainingTime {
			rec.ScheduledTrainingTime = nil
		}
	}
	if status == domain.RecruitStatusPendingBroadcast {
		if in.ScheduledBroadcastTime != nil {
			rec.ScheduledBroadcastTime = in.ScheduledBroadcastTime
		} else if in.ClearScheduledBroadcastTime {
			rec.ScheduledBroadcastTime = nil
		}
	}

	if err := s.finish(domain.OperationEdit, actor, rec, recSnap, nil, nil); err != nil {
		return nil, err
	}
	slog.Info("更新招募", "recruitID", rec.ID, "pilotID", rec.PilotID)
	return rec, nil
}

type InterviewDecisionInput struct {
	Decision        domain.InterviewDecision
	RealName        string
	BirthYear       *int32
	IntroductionFee int64
	Remarks         string
}

// DecideInterview 执行面试决策。预约试播会把主播晋升为试播主播并补全
// 姓名与出生年，不招募则直接结束流程。
func (s *Service) DecideInterview(recruitID int64, in InterviewDecisionInput, actor Actor) (*domain.Recruit, error) {
	rec, pilot, err := s.loadRecruitAt(recruitID, domain.RecruitStatusPendingInterview, "只能对待面试状态的招募执行面试决策")
	if err != nil {
		return nil, err
	}

	if in.Decision != domain.InterviewDecisionScheduleTraining && in.Decision != domain.InterviewDecisionNotRecruit {
		return nil, invalid("无效的面试决策")
	}
	if in.IntroductionFee < 0 {
		return nil, invalid("介绍费不能为负数")
	}
	if in.Decision == domain.InterviewDecisionScheduleTraining {
		if in.RealName == "" {
			return nil, invalid("预约试播时姓名为必填项")
		}
		if in.BirthYear == nil {
			return nil, invalid("预约试播时出生年为必填项")
		}
		if !domain.BirthYearInRange(*in.BirthYear, s.now()) {
			return nil, invalid("出生年份必须在距今60年前到距今10年前之间")
		}
	}

	recSnap := cloneRecruit(rec)
	pilotSnap := clonePilot(pilot)
	now := s.now()

	rec.InterviewDecision = in.Decision
	rec.InterviewDecisionMaker = &actor.UserID
	rec.InterviewDecisionTime = &now
	rec.IntroductionFee = in.IntroductionFee
	rec.Remarks = in.Remarks

	if in.Decision == domain.InterviewDecisionScheduleTraining {
		rec.Status = domain.RecruitStatusPendingTrainingSchedule
		pilot.RealName = in.RealName
		pilot.BirthYear = in.BirthYear
		pilot.Rank = domain.RankTrainee
		pilot.Status = domain.PilotStatusRecruited
	} else {
		rec.Status = domain.RecruitStatusEnded
		pilot.Status = domain.PilotStatusNotRecruiting
	}

	if err := s.finish(domain.OperationInterviewDecision, actor, rec, recSnap, pilot, pilotSnap); err != nil {
		return nil, err
	}
	slog.Info("面试决策完成", "recruitID", rec.ID, "pilotID", pilot.ID, "decision", string(in.Decision))
	return rec, nil
}

type ScheduleTrainingInput struct {
	ScheduledTrainingTime time.Time
	WorkMode              domain.WorkMode
	IntroductionFee       int64
	Remarks               string
}

// ScheduleTraining 预约试播，同时落实主播的开播方式。
func (s *Service) ScheduleTraining(recruitID int64, in ScheduleTrainingInput, actor Actor) (*domain.Recruit, error) {
	rec, pilot, err := s.loadRecruitAt(recruitID, domain.RecruitStatusPendingTrainingSchedule, "只能对待预约试播状态的招募执行预约试播")
	if err != nil {
		return nil, err
	}

	if in.ScheduledTrainingTime.IsZero() {
		return nil, invalid("预约试播时间为必填项")
	}
	switch in.WorkMode {
	case domain.WorkModeOffline, domain.WorkModeOnline, domain.WorkModeUnknown:
	default:
		return nil, invalid("无效的开播方式选择")
	}
	if in.IntroductionFee < 0 {
		return nil, invalid("介绍费不能为负数")
	}

	recSnap := cloneRecruit(rec)
	pilotSnap := clonePilot(pilot)
	now := s.now()

	scheduled := in.ScheduledTrainingTime
	rec.ScheduledTrainingTime = &scheduled
	rec.ScheduledTrainingDecisionMaker = &actor.UserID
	rec.ScheduledTrainingDecisionTime = &now
	rec.IntroductionFee = in.IntroductionFee
	rec.Remarks = in.Remarks
	rec.Status = domain.RecruitStatusPendingTraining

	pilot.WorkMode = in.WorkMode

	if err := s.finish(domain.OperationScheduleTraining, actor, rec, recSnap, pilot, pilotSnap); err != nil {
		return nil, err
	}
	slog.Info("预约试播成功", "recruitID", rec.ID, "pilotID", pilot.ID, "scheduledTrainingTime", scheduled)
	return rec, nil
}

type TrainingDecisionInput struct {
	Decision        domain.TrainingDecision
	IntroductionFee int64
	Remarks         string
}

// DecideTraining 执行试播决策。预约开播进入下一阶段，不招募结束流程。
func (s *Service) DecideTraining(recruitID int64, in TrainingDecisionInput, actor Actor) (*domain.Recruit, error) {
	rec, pilot, err := s.loadRecruitAt(recruitID, domain.RecruitStatusPendingTraining, "只能对待试播状态的招募执行试播决策")
	if err != nil {
		return nil, err
	}

	if in.Decision != domain.TrainingDecisionScheduleBroadcast && in.Decision != domain.TrainingDecisionNotRecruit {
		return nil, invalid("无效的试播决策")
	}
	if in.IntroductionFee < 0 {
		return nil, invalid("介绍费不能为负数")
	}

	recSnap := cloneRecruit(rec)
	pilotSnap := clonePilot(pilot)
	now := s.now()

	rec.TrainingDecision = in.Decision
	rec.TrainingDecisionMaker = &actor.UserID
	rec.TrainingDecisionTime = &now
	rec.IntroductionFee = in.IntroductionFee
	rec.Remarks = in.Remarks

	var mutatedPilot *domain.Pilot
	if in.Decision == domain.TrainingDecisionScheduleBroadcast {
		rec.Status = domain.RecruitStatusPendingBroadcastSchedule
	} else {
		rec.Status = domain.RecruitStatusEnded
		pilot.Status = domain.PilotStatusNotRecruiting
		mutatedPilot = pilot
	}

	if err := s.finish(domain.OperationTrainingDecision, actor, rec, recSnap, mutatedPilot, pilotSnap); err != nil {
		return nil, err
	}
	slog.Info("试播决策完成", "recruitID", rec.ID, "pilotID", pilot.ID, "decision", string(in.Decision))
	return rec, nil
}

type ScheduleBroadcastInput struct {
	ScheduledBroadcastTime time.Time
	IntroductionFee        int64
	Remarks                string
}

// ScheduleBroadcast 预约开播，只改动招募记录本身。
func (s *Service) ScheduleBroadcast(recruitID int64, in ScheduleBroadcastInput, actor Actor) (*domain.Recruit, error) {
	rec, _, err := s.loadRecruitAt(recruitID, domain.RecruitStatusPendingBroadcastSchedule, "只能对待预约开播状态的招募执行预约开播")
	if err != nil {
		return nil, err
	}

	if in.ScheduledBroadcastTime.IsZero() {
		return nil, invalid("预约开播时间为必填项")
	}
	if in.IntroductionFee < 0 {
		return nil, invalid("介绍费不能为负数")
	}

	recSnap := cloneRecruit(rec)
	now := s.now()

	scheduled := in.ScheduledBroadcastTime
	rec.ScheduledBroadcastTime = &scheduled
	rec.ScheduledBroadcastDecisionMaker = &actor.UserID
	rec.ScheduledBroadcastDecisionTime = &now
	rec.IntroductionFee = in.IntroductionFee
	rec.Remarks = in.Remarks
	rec.Status = domain.RecruitStatusPendingBroadcast

	if err := s.finish(domain.OperationScheduleBroadcast, actor, rec, recSnap, nil, nil); err != nil {
		return nil, err
	}
	slog.Info("预约开播成功", "recruitID", rec.ID, "pilotID", rec.PilotID, "scheduledBroadcastTime", scheduled)
	return rec, nil
}

type BroadcastDecisionInput struct {
	Decision        domain.BroadcastDecision
	OwnerID         *int64
	Platform        domain.Platform
	IntroductionFee int64
	Remarks         string
}

// DecideBroadcast 执行开播决策并结束流程。招募成功时主播晋升为正式或
// 实习主播，同时落实直属运营与开播平台。
func (s *Service) DecideBroadcast(recruitID int64, in BroadcastDecisionInput, actor Actor) (*domain.Recruit, error) {
	rec, pilot, err := s.loadRecruitAt(recruitID, domain.RecruitStatusPendingBroadcast, "只能对待开播状态的招募执行开播决策")
	if err != nil {
		return nil, err
	}

	recruited := in.Decision == domain.BroadcastDecisionOfficial || in.Decision == domain.BroadcastDecisionIntern
	if !recruited && in.Decision != domain.BroadcastDecisionNotRecruit {
		return nil, invalid("无效的开播决策")
	}
	if in.IntroductionFee < 0 {
		return nil, invalid("介绍费不能为负数")
	}
	if recruited {
		if in.OwnerID == nil {
			return nil, invalid("招募成功时必须选择直属运营")
		}
		owner, err := s.store.GetUserByID(*in.OwnerID)
		if err != nil {
			return nil, invalid("无效的直属运营选择")
		}
		if !owner.IsHandler() {
			return nil, invalid("直属运营必须是运营或管理员")
		}
		switch in.Platform {
		case domain.PlatformKuaishou, domain.PlatformDouyin, domain.PlatformOther:
		default:
			return nil, invalid("招募成功时必须选择有效的开播平台")
		}
	}

	recSnap := cloneRecruit(rec)
	pilotSnap := clonePilot(pilot)
	now := s.now()

	rec.BroadcastDecision = in.Decision
	rec.BroadcastDecisionMaker = &actor.UserID
	rec.BroadcastDecisionTime = &now
	rec.IntroductionFee = in.IntroductionFee
	rec.Remarks = in.Remarks
	rec.Status = domain.RecruitStatusEnded

	if recruited {
		pilot.OwnerID = in.OwnerID
		pilot.Platform = in.Platform
		pilot.Status = domain.PilotStatusRecruited
		if in.Decision == domain.BroadcastDecisionOfficial {
			pilot.Rank = domain.RankOfficial
		} else {
			pilot.Rank = domain.RankIntern
		}
	} else {
		pilot.Status = domain.PilotStatusNotRecruiting
	}

	if err := s.finish(domain.OperationBroadcastDecision, actor, rec, recSnap, pilot, pilotSnap); err != nil {
		return nil, err
	}
	slog.Info("开播决策完成", "recruitID", rec.ID, "pilotID", pilot.ID, "decision", string(in.Decision))
	return rec, nil
}

// Abandon 放弃一次进行中的招募，流程结束且主播转为不招募。
func (s *Service) Abandon(recruitID int64, actor Actor) (*domain.Recruit, error) {
	rec, err := s.store.GetRecruitByID(recruitID)
	if err != nil {
		return nil, err
	}
	if EffectiveStatus(rec) == domain.RecruitStatusEnded {
		return nil, invalid("该招募已经结束，无法放弃")
	}
	pilot, err := s.store.GetPilotByID(rec.PilotID)
	if err != nil {
		return nil, err
	}

	recSnap := cloneRecruit(rec)
	pilotSnap := clonePilot(pilot)

	rec.Status = domain.RecruitStatusEnded
	pilot.Status = domain.PilotStatusNotRecruiting

	if err := s.finish(domain.OperationAbandon, actor, rec, recSnap, pilot, pilotSnap); err != nil {
		return nil, err
	}
	slog.Info("招募已放弃", "recruitID", rec.ID, "pilotID", pilot.ID)
	return rec, nil
}

// GroupedRecruits 进行中的招募按是否超时分成的两组。
type GroupedRecruits struct {
	OnTrack []*domain.Recruit `json:"onTrack"`
	Stalled []*domain.Recruit `json:"stalled"`
}

// GroupInProgress 取出全部进行中的招募并按超时与否分组。
func (s *Service) GroupInProgress() (*GroupedRecruits, error) {
	recs, err := s.store.GetInProgressRecruits()
	if err != nil {
		return nil, err
	}
	onTrack, stalled := Partition(recs, s.now(), s.thresholds)
	return &GroupedRecruits{OnTrack: onTrack, Stalled: stalled}, nil
}

// IsStalled 按服务配置的阈值判定一条招募是否已超时，已结束的记录恒为否。
func (s *Service) IsStalled(rec *domain.Recruit) bool {
	return IsStalled(rec, s.now(), s.thresholds)
}

// ListStalled 只返回超时的进行中招募。
func (s *Service) ListStalled() ([]*domain.Recruit, error) {
	grouped, err := s.GroupInProgress()
	if err != nil {
		return nil, err
	}
	return grouped.Stalled, nil
}
