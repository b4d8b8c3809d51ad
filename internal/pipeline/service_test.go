package pipeline

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xingyao-live/pilot-manager/backend/internal/domain"
)

type fakeStore struct {
	users    map[int64]*domain.User
	pilots   map[int64]*domain.Pilot
	recruits map[int64]*domain.Recruit
	nextID   int64

	recruitChangeLogs []*domain.RecruitChangeLog
	pilotChangeLogs   []*domain.PilotChangeLog
	operationLogs     []*domain.RecruitOperationLog

	// 让第 N 次写入失败，0 表示不注入故障
	failPilotWriteAt   int
	failRecruitWriteAt int
	pilotWrites        int
	recruitWrites      int
}

var errConnBroken = errors.New("连接中断")

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[int64]*domain.User),
		pilots:   make(map[int64]*domain.Pilot),
		recruits: make(map[int64]*domain.Recruit),
		nextID:   1,
	}
}

func (f *fakeStore) GetUserByID(id int64) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *fakeStore) GetPilotByID(id int64) (*domain.Pilot, error) {
	pilot, ok := f.pilots[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *pilot
	return &clone, nil
}

func (f *fakeStore) UpdatePilot(pilot *domain.Pilot) error {
	f.pilotWrites++
	if f.failPilotWriteAt == f.pilotWrites {
		return errConnBroken
	}
	clone := *pilot
	f.pilots[pilot.ID] = &clone
	return nil
}

func (f *fakeStore) GetRecruitByID(id int64) (*domain.Recruit, error) {
	rec, ok := f.recruits[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *rec
	return &clone, nil
}

func (f *fakeStore) CreateRecruit(rec *domain.Recruit) error {
	rec.ID = f.nextID
	f.nextID++
	clone := *rec
	f.recruits[rec.ID] = &clone
	return nil
}

func (f *fakeStore) UpdateRecruit(rec *domain.Recruit) error {
	f.recruitWrites++
	if f.failRecruitWriteAt == f.recruitWrites {
		return errConnBroken
	}
	clone := *rec
	f.recruits[rec.ID] = &clone
	return nil
}

func (f *fakeStore) HasActiveRecruit(pilotID int64) (bool, error) {
	for _, rec := range f.recruits {
		if rec.PilotID == pilotID && EffectiveStatus(rec) != domain.RecruitStatusEnded {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) GetInProgressRecruits() ([]*domain.Recruit, error) {
	var recs []*domain.Recruit
	for _, rec := range f.recruits {
		if EffectiveStatus(rec) != domain.RecruitStatusEnded {
			clone := *rec
			recs = append(recs, &clone)
		}
	}
	return recs, nil
}

func (f *fakeStore) InsertRecruitChangeLogs(logs []*domain.RecruitChangeLog) error {
	f.recruitChangeLogs = append(f.recruitChangeLogs, logs...)
	return nil
}

func (f *fakeStore) InsertPilotChangeLogs(logs []*domain.PilotChangeLog) error {
	f.pilotChangeLogs = append(f.pilotChangeLogs, logs...)
	return nil
}

func (f *fakeStore) InsertRecruitOperationLog(entry *domain.RecruitOperationLog) error {
	f.operationLogs = append(f.operationLogs, entry)
	return nil
}

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(store *fakeStore) *Service {
	svc := NewService(store, DefaultThresholds)
	svc.now = func() time.Time { return testTime }
	return svc
}

func seedUser(store *fakeStore, id int64, role domain.Role) *domain.User {
	user := &domain.User{ID: id, Username: "user", Nickname: "测试用户", Role: role, IsActive: true}
	store.users[id] = user
	return user
}

func seedPilot(store *fakeStore, id int64) *domain.Pilot {
	pilot := &domain.Pilot{
		ID:       id,
		Nickname: "小雨",
		Gender:   domain.GenderFemale,
		Platform: domain.PlatformUnknown,
		WorkMode: domain.WorkModeUnknown,
		Rank:     domain.RankCandidate,
		Status:   domain.PilotStatusNotRecruited,
	}
	store.pilots[id] = pilot
	return pilot
}

func startTestRecruit(t *testing.T, svc *Service, store *fakeStore) *domain.Recruit {
	t.Helper()
	rec, err := svc.StartRecruitment(StartInput{
		PilotID:         1,
		RecruiterID:     10,
		AppointmentTime: testTime.Add(24 * time.Hour),
		Channel:         domain.ChannelBoss,
	}, Actor{UserID: 10, IP: "10.0.0.1"})
	require.NoError(t, err)
	return rec
}

func TestStartRecruitment(t *testing.T) {
	store := newFakeStore()
	seedUser(store, 10, domain.RoleOperator)
	seedPilot(store, 1)
	svc := newTestService(store)

	rec := startTestRecruit(t, svc, store)
	assert.Equal(t, domain.RecruitStatusPendingInterview, rec.Status)
	assert.Equal(t, int64(1), rec.PilotID)

	require.Len(t, store.operationLogs, 1)
	assert.Equal(t, domain.OperationStart, store.operationLogs[0].OperationType)

	// 同一主播不能重复启动
	_, err := svc.StartRecruitment(StartInput{
		PilotID:         1,
		RecruiterID:     10,
		AppointmentTime: testTime.Add(24 * time.Hour),
		Channel:         domain.ChannelBoss,
	}, Actor{UserID: 10})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestStartRecruitmentRejectsPlainRecruiter(t *testing.T) {
	store := newFakeStore()
	seedUser(store, 10, domain.RolePlain)
	seedPilot(store, 1)
	svc := newTestService(store)

	_, err := svc.StartRecruitment(StartInput{
		PilotID:         1,
		RecruiterID:     10,
		AppointmentTime: testTime.Add(24 * time.Hour),
		Channel:         domain.ChannelBoss,
	}, Actor{UserID: 10})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, store.recruits)
}

func TestFullPipelineToOfficial(t *testing.T) {
	store := newFakeStore()
	seedUser(store, 10, domain.RoleOperator)
	seedUser(store, 11, domain.RoleAdmin)
	seedPilot(store, 1)
	svc := newTestService(store)
	actor := Actor{UserID: 10, IP: "10.0.0.1"}

	rec := startTestRecruit(t, svc, store)
	birthYear := int32(2000)

	rec, err := svc.DecideInterview(rec.ID, InterviewDecisionInput{
		Decision:  domain.InterviewDecisionScheduleTraining,
		RealName:  "王小雨",
		BirthYear: &birthYear,
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, domain.RecruitStatusPendingTrainingSchedule, rec.Status)
	require.NotNil(t, rec.InterviewDecisionMaker)
	assert.Equal(t, int64(10), *rec.InterviewDecisionMaker)
	require.NotNil(t, rec.InterviewDecisionTime)

	pilot := store.pilots[1]
	assert.Equal(t, domain.RankTrainee, pilot.Rank)
	assert.Equal(t, domain.PilotStatusRecruited, pilot.Status)
	assert.Equal(t, "王小雨", pilot.RealName)

	rec, err = svc.ScheduleTraining(rec.ID, ScheduleTrainingInput{
		ScheduledTrainingTime: testTime.Add(48 * time.Hour),
		WorkMode:              domain.WorkModeOffline,
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, domain.RecruitStatusPendingTraining, rec.Status)
	require.NotNil(t, rec.ScheduledTrainingTime)
	assert.Equal(t, domain.WorkModeOffline, store.pilots[1].WorkMode)

	rec, err = svc.DecideTraining(rec.ID, TrainingDecisionInput{
		Decision: domain.TrainingDecisionScheduleBroadcast,
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, domain.RecruitStatusPendingBroadcastSchedule, rec.Status)

	rec, err = svc.ScheduleBroadcast(rec.ID, ScheduleBroadcastInput{
		ScheduledBroadcastTime: testTime.Add(96 * time.Hour),
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, domain.RecruitStatusPendingBroadcast, rec.Status)

	ownerID := int64(11)
	rec, err = svc.DecideBroadcast(rec.ID, BroadcastDecisionInput{
		Decision: domain.BroadcastDecisionOfficial,
		OwnerID:  &ownerID,
		Platform: domain.PlatformKuaishou,
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, domain.RecruitStatusEnded, rec.Status)

	pilot = store.pilots[1]
	assert.Equal(t, domain.RankOfficial, pilot.Rank)
	assert.Equal(t, domain.PilotStatusRecruited, pilot.Status)
	require.NotNil(t, pilot.OwnerID)
	assert.Equal(t, int64(11), *pilot.OwnerID)
	assert.Equal(t, domain.PlatformKuaishou, pilot.Platform)

	// 每个决策三元组要么全空要么全满
	stored := store.recruits[rec.ID]
	require.NoError(t, stored.Validate())
	require.NotNil(t, stored.BroadcastDecisionMaker)
	require.NotNil(t, stored.BroadcastDecisionTime)
}

func TestDecideInterviewNotRecruit(t *testing.T) {
	store := newFakeStore()
	seedUser(store, 10, domain.RoleOperator)
	seedPilot(store, 1)
	svc := newTestService(store)

	rec := startTestRecruit(t, svc, store)
	rec, err := svc.DecideInterview(rec.ID, InterviewDecisionInput{
		Decision: domain.InterviewDecisionNotRecruit,
	}, Actor{UserID: 10})
	require.NoError(t, err)
	assert.Equal(t, domain.RecruitStatusEnded, rec.Status)
	assert.Equal(t, domain.PilotStatusNotRecruiting, store.pilots[1].Status)
	// 不招募时主播不晋升
	assert.Equal(t, domain.RankCandidate, store.pilots[1].Rank)
}

func TestWrongStageLeavesRecordsUntouched(t *testing.T) {
	store := newFakeStore()
	seedUser(store, 10, domain.RoleOperator)
	seedPilot(store, 1)
	svc := newTestService(store)

	rec := startTestRecruit(t, svc, store)
	before := *store.recruits[rec.ID]
	pilotBefore := *store.pilots[1]

	_, err := svc.DecideTraining(rec.ID, TrainingDecisionInput{
		Decision: domain.TrainingDecisionScheduleBroadcast,
	}, Actor{UserID: 10})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	assert.Equal(t, before, *store.recruits[rec.ID])
	assert.Equal(t, pilotBefore, *store.pilots[1])
}

func TestPilotWriteFailureRollsBackRecruit(t *testing.T) {
	store := newFakeStore()
	seedUser(store, 10, domain.RoleOperator)
	seedPilot(store, 1)
	svc := newTestService(store)

	rec := startTestRecruit(t, svc, store)
	before := *store.recruits[rec.ID]
	pilotBefore := *store.pilots[1]

	store.failPilotWriteAt = 1
	birthYear := int32(2000)
	_, err := svc.DecideInterview(rec.ID, InterviewDecisionInput{
		Decision:  domain.InterviewDecisionScheduleTraining,
		RealName:  "王小雨",
		BirthYear: &birthYear,
	}, Actor{UserID: 10})

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, domain.OperationInterviewDecision, svcErr.Op)
	assert.Nil(t, svcErr.RollbackErr)

	// 招募记录已被补偿写回快照，主播未被改动
	assert.Equal(t, before, *store.recruits[rec.ID])
	assert.Equal(t, pilotBefore, *store.pilots[1])
	assert.Empty(t, store.recruitChangeLogs)
	assert.Empty(t, store.pilotChangeLogs)
}

func TestRollbackFailureIsEscalated(t *testing.T) {
	store := newFakeStore()
	seedUser(store, 10, domain.RoleOperator)
	seedPilot(store, 1)
	svc := newTestService(store)

	rec := startTestRecruit(t, svc, store)

	// 正向写入招募成功后主播写入失败，补偿写回招募时再次失败
	store.failPilotWriteAt = 1
	store.failRecruitWriteAt = 2
	_, err := svc.DecideInterview(rec.ID, InterviewDecisionInput{
		Decision: domain.InterviewDecisionNotRecruit,
	}, Actor{UserID: 10})

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	require.Error(t, svcErr.RollbackErr)
}

func TestAbandon(t *testing.T) {
	store := newFakeStore()
	seedUser(store, 10, domain.RoleOperator)
	seedPilot(store, 1)
	svc := newTestService(store)

	rec := startTestRecruit(t, svc, store)
	rec, err := svc.Abandon(rec.ID, Actor{UserID: 10})
	require.NoError(t, err)
	assert.Equal(t, domain.RecruitStatusEnded, rec.Status)
	assert.Equal(t, domain.PilotStatusNotRecruiting, store.pilots[1].Status)

	_, err = svc.Abandon(rec.ID, Actor{UserID: 10})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestUpdateRecruitRecordsChanges(t *testing.T) {
	store := newFakeStore()
	seedUser(store, 10, domain.RoleOperator)
	seedPilot(store, 1)
	svc := newTestService(store)

	rec := startTestRecruit(t, svc, store)
	_, err := svc.UpdateRecruit(rec.ID, EditInput{
		RecruiterID:     10,
		AppointmentTime: rec.AppointmentTime,
		Channel:         domain.ChannelIntroduction,
		IntroductionFee: 50000,
		Remarks:         "朋友介绍",
	}, Actor{UserID: 10, IP: "10.0.0.1"})
	require.NoError(t, err)

	fields := make(map[string]bool)
	for _, entry := range store.recruitChangeLogs {
		fields[entry.FieldName] = true
	}
	assert.True(t, fields["channel"])
	assert.True(t, fields["introduction_fee"])
	assert.True(t, fields["remarks"])
	assert.False(t, fields["status"])
}

func TestRecruitNotFound(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.Abandon(42, Actor{UserID: 10})
	require.ErrorIs(t, err, sql.ErrNoRows)
}
