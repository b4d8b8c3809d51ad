package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/xingyao-live/pilot-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RolePlain,
	domain.RoleOperator,
	domain.RoleAdmin,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	nickname := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(nickname)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		Nickname:     nickname,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var hometowns = []string{
	"广东广州", "广东深圳", "湖南长沙", "湖北武汉", "四川成都",
	"重庆", "河南郑州", "江西南昌", "广西南宁", "福建福州",
}

var genders = []domain.Gender{domain.GenderMale, domain.GenderFemale, domain.GenderUnknown}
var platforms = []domain.Platform{domain.PlatformKuaishou, domain.PlatformDouyin, domain.PlatformOther}
var workModes = []domain.WorkMode{domain.WorkModeOffline, domain.WorkModeOnline}
var channels = []domain.RecruitChannel{domain.ChannelBoss, domain.ChannelJob51, domain.ChannelIntroduction, domain.ChannelOther}

// 随机生成一个还未进入招募流程的候选人
func GenerateRandomPilot() *domain.Pilot {
	pilot := &domain.Pilot{
		Nickname: "主播" + GenerateRandomID(3, 3),
		Gender:   genders[rand.Intn(len(genders))],
		Hometown: hometowns[rand.Intn(len(hometowns))],
		Platform: domain.PlatformUnknown,
		WorkMode: domain.WorkModeUnknown,
		Rank:     domain.RankCandidate,
		Status:   domain.PilotStatusNotRecruited,
	}

	// 一部分候选人在接触时就留下了姓名和出生年
	if rand.Intn(2) == 0 {
		pilot.RealName = GenerateRandomChineseName()
		birthYear := int32(time.Now().Year()) - int32(rand.Intn(20)+18)
		pilot.BirthYear = &birthYear
	}

	return pilot
}

// 生成还在等待面试的招募记录
func generatePendingInterviewRecruit(rec *domain.Recruit) {
	rec.Status = domain.RecruitStatusPendingInterview
	rec.AppointmentTime = time.Now().Add(time.Duration(rand.Intn(72)-24) * time.Hour)
}

// 生成面试通过后等待预约试播的招募记录
func generatePendingTrainingScheduleRecruit(rec *domain.Recruit, recruiterID int64) {
	rec.Status = domain.RecruitStatusPendingTrainingSchedule
	rec.AppointmentTime = time.Now().Add(-time.Hour * 24 * 2)

	decisionTime := rec.AppointmentTime.Add(time.Hour)
	rec.InterviewDecision = domain.InterviewDecisionScheduleTraining
	rec.InterviewDecisionMaker = &recruiterID
	rec.InterviewDecisionTime = &decisionTime
}

// 生成已经预约试播、等待试播的招募记录
func generatePendingTrainingRecruit(rec *domain.Recruit, recruiterID int64) {
	generatePendingTrainingScheduleRecruit(rec, recruiterID)
	rec.Status = domain.RecruitStatusPendingTraining

	scheduledTime := time.Now().Add(time.Duration(rand.Intn(48)-12) * time.Hour)
	decisionTime := rec.InterviewDecisionTime.Add(time.Hour * 12)
	rec.ScheduledTrainingTime = &scheduledTime
	rec.ScheduledTrainingDecisionMaker = &recruiterID
	rec.ScheduledTrainingDecisionTime = &decisionTime
}

// 生成试播通过后等待预约开播的招募记录
func generatePendingBroadcastScheduleRecruit(rec *domain.Recruit, recruiterID int64) {
	generatePendingTrainingRecruit(rec, recruiterID)
	rec.Status = domain.RecruitStatusPendingBroadcastSchedule

	decisionTime := rec.ScheduledTrainingTime.Add(time.Hour * 2)
	rec.TrainingDecision = domain.TrainingDecisionScheduleBroadcast
	rec.TrainingDecisionMaker = &recruiterID
	rec.TrainingDecisionTime = &decisionTime
}

// 生成已经预约开播、等待开播的招募记录
func generatePendingBroadcastRecruit(rec *domain.Recruit, recruiterID int64) {
	generatePendingBroadcastScheduleRecruit(rec, recruiterID)
	rec.Status = domain.RecruitStatusPendingBroadcast

	scheduledTime := time.Now().Add(time.Duration(rand.Intn(48)-12) * time.Hour)
	decisionTime := rec.TrainingDecisionTime.Add(time.Hour * 12)
	rec.ScheduledBroadcastTime = &scheduledTime
	rec.ScheduledBroadcastDecisionMaker = &recruiterID
	rec.ScheduledBroadcastDecisionTime = &decisionTime
}

// 生成已经结束的招募记录
func generateEndedRecruit(rec *domain.Recruit, recruiterID int64) {
	generatePendingBroadcastRecruit(rec, recruiterID)
	rec.Status = domain.RecruitStatusEnded

	decisions := []domain.BroadcastDecision{
		domain.BroadcastDecisionOfficial,
		domain.BroadcastDecisionIntern,
		domain.BroadcastDecisionNotRecruit,
	}
	decisionTime := rec.ScheduledBroadcastTime.Add(time.Hour * 2)
	rec.BroadcastDecision = decisions[rand.Intn(len(decisions))]
	rec.BroadcastDecisionMaker = &recruiterID
	rec.BroadcastDecisionTime = &decisionTime
}

// 随机生成一条当前格式的招募记录
func GenerateRandomRecruit(pilotID int64, recruiterID int64) *domain.Recruit {
	rec := &domain.Recruit{
		PilotID:     pilotID,
		RecruiterID: recruiterID,
		Channel:     channels[rand.Intn(len(channels))],
		Remarks:     "测试数据" + GenerateRandomID(4, 4),
	}

	if rec.Channel == domain.ChannelIntroduction {
		rec.IntroductionFee = int64(rand.Intn(50)+10) * 10000 // 100 到 600 元，单位为分
	}

	// 随机选择一个阶段，根据不同阶段填充对应的决策三元组
	randomStage := rand.Intn(6)
	switch randomStage {
	case 0:
		generatePendingInterviewRecruit(rec)
	case 1:
		generatePendingTrainingScheduleRecruit(rec, recruiterID)
	case 2:
		generatePendingTrainingRecruit(rec, recruiterID)
	case 3:
		generatePendingBroadcastScheduleRecruit(rec, recruiterID)
	case 4:
		generatePendingBroadcastRecruit(rec, recruiterID)
	case 5:
		generateEndedRecruit(rec, recruiterID)
	}

	return rec
}

// 随机生成一条迁移前格式的招募记录，用于验证旧数据的解析与降级读取
func GenerateRandomLegacyRecruit(pilotID int64, recruiterID int64) *domain.Recruit {
	rec := &domain.Recruit{
		PilotID:         pilotID,
		RecruiterID:     recruiterID,
		Channel:         channels[rand.Intn(len(channels))],
		Remarks:         "历史数据" + GenerateRandomID(4, 4),
		AppointmentTime: time.Now().Add(-time.Hour * 24 * 30),
	}

	randomStage := rand.Intn(3)
	switch randomStage {
	case 0:
		// 旧版刚启动的记录，还没有任何决策
		rec.Status = domain.RecruitStatusStarted
	case 1:
		// 旧版已经通过面试并预约了训练的记录
		rec.Status = domain.RecruitStatusPendingTrainingOld

		decisionTime := rec.AppointmentTime.Add(time.Hour)
		trainingTime := decisionTime.Add(time.Hour * 24 * 3)
		rec.LegacyTrainingDecision = domain.TrainingDecisionLegacyRecruitAsTrainee
		rec.LegacyTrainingDecisionMaker = &recruiterID
		rec.LegacyTrainingDecisionTime = &decisionTime
		rec.LegacyTrainingTime = &trainingTime
	case 2:
		// 旧版已经结束的记录
		rec.Status = domain.RecruitStatusEnded

		trainingDecisionTime := rec.AppointmentTime.Add(time.Hour)
		trainingTime := trainingDecisionTime.Add(time.Hour * 24 * 3)
		finalDecisionTime := trainingTime.Add(time.Hour * 24 * 2)

		rec.LegacyTrainingDecision = domain.TrainingDecisionLegacyRecruitAsTrainee
		rec.LegacyTrainingDecisionMaker = &recruiterID
		rec.LegacyTrainingDecisionTime = &trainingDecisionTime
		rec.LegacyTrainingTime = &trainingTime

		decisions := []domain.FinalDecision{
			domain.FinalDecisionOfficial,
			domain.FinalDecisionIntern,
			domain.FinalDecisionNotRecruit,
		}
		rec.LegacyFinalDecision = decisions[rand.Intn(len(decisions))]
		rec.LegacyFinalDecisionMaker = &recruiterID
		rec.LegacyFinalDecisionTime = &finalDecisionTime
	}

	return rec
}
