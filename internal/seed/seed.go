package seed

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/xingyao-live/pilot-manager/backend/internal/domain"
	"github.com/xingyao-live/pilot-manager/backend/internal/repository"
)

// 旧系统导出表格中的时间写法
const legacyTimeLayout = "2006-01-02 15:04"

var legacyGenderMap = map[string]domain.Gender{
	"男": domain.GenderMale,
	"女": domain.GenderFemale,
}

// 旧系统的结束决策对应的机师分类与征召状态
var legacyFinalDecisionRankMap = map[domain.FinalDecision]domain.Rank{
	domain.FinalDecisionOfficial: domain.RankOfficialOld,
	domain.FinalDecisionIntern:   domain.RankInternOld,
}

func parseLegacyTime(value string) *time.Time {
	if value == "" {
		return nil
	}

	t, err := time.Parse(legacyTimeLayout, value)
	if err != nil {
		slog.Error("解析时间失败", "value", value, "error", err)
		return nil
	}
	return &t
}

// SeedLegacyData 导入旧系统导出的招募表格。导入的记录保留旧版的状态与决策
// 写法，由解析层在读取时降级兼容，导入过程不做任何格式升级。
func SeedLegacyData(r *repository.Repository) {
	file, err := os.Open("./internal/seed/data/legacy_recruits.csv")
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		slog.Error("读取表头失败", "error", err)
		return
	}

	headerIndex := make(map[string]int)
	for i, header := range headers {
		headerIndex[header] = i
	}

	for _, required := range []string{"主播昵称", "负责人", "状态"} {
		if _, ok := headerIndex[required]; !ok {
			slog.Error("没有找到必需的列", "column", required)
			return
		}
	}

	field := func(row []string, name string) string {
		i, ok := headerIndex[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	// 逐行导入
	count := 0
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			slog.Error("读取文件失败", "error", err)
			return
		}

		// 先尝试获取负责人
		username := field(row, "负责人")
		recruiter, err := r.GetUserByUsername(username)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				// 表示该负责人不在数据库中，需要新建并插入
				recruiter = &domain.User{
					Username:     username,
					PasswordHash: "$2a$10$aUTaWl3vmXuQFocBkb9Qx.YJPAzNoaAcj2VC5tI45l1Roh24meCgO", // xingyao@import
					Nickname:     username,
					Email:        username + "@example.com",
					Role:         domain.RoleOperator,
				}

				if err := r.CreateUser(recruiter); err != nil {
					slog.Error("插入负责人失败", "error", err)
					continue
				}
			default:
				slog.Error("获取负责人失败", "error", err)
				continue
			}
		}

		trainingDecision := domain.TrainingDecisionLegacy(field(row, "训练决策"))
		finalDecision := domain.FinalDecision(field(row, "结束决策"))

		// 插入主播，分类和状态保留旧系统的机师与征召写法
		pilot := &domain.Pilot{
			Nickname: field(row, "主播昵称"),
			RealName: field(row, "姓名"),
			Gender:   domain.GenderUnknown,
			Hometown: field(row, "籍贯"),
			Platform: domain.PlatformUnknown,
			WorkMode: domain.WorkModeUnknown,
			Rank:     domain.RankCandidateOld,
			Status:   domain.PilotStatusNotRecruitedOld,
		}

		if gender, ok := legacyGenderMap[field(row, "性别")]; ok {
			pilot.Gender = gender
		}
		if year, err := strconv.Atoi(field(row, "出生年")); err == nil {
			birthYear := int32(year)
			pilot.BirthYear = &birthYear
		}
		if rank, ok := legacyFinalDecisionRankMap[finalDecision]; ok {
			pilot.Rank = rank
			pilot.Status = domain.PilotStatusRecruitedOld
			pilot.OwnerID = &recruiter.ID
		} else if finalDecision == domain.FinalDecisionNotRecruit || trainingDecision == domain.TrainingDecisionLegacyNotRecruit {
			pilot.Status = domain.PilotStatusNotRecruitingOld
		} else if trainingDecision == domain.TrainingDecisionLegacyRecruitAsTrainee {
			pilot.Rank = domain.RankTraineeOld
			pilot.Status = domain.PilotStatusRecruitedOld
		}

		if err := r.CreatePilot(pilot); err != nil {
			slog.Error("插入主播失败", "error", err)
			continue
		}

		// 插入招募记录
		rec := &domain.Recruit{
			PilotID:     pilot.ID,
			RecruiterID: recruiter.ID,
			Channel:     domain.RecruitChannel(field(row, "渠道")),
			Remarks:     field(row, "备注"),
			Status:      domain.RecruitStatus(field(row, "状态")),
		}

		if !domain.ValidRecruitChannel(rec.Channel) {
			rec.Channel = domain.ChannelOther
		}
		if appointmentTime := parseLegacyTime(field(row, "预约时间")); appointmentTime != nil {
			rec.AppointmentTime = *appointmentTime
		}
		if fee, err := strconv.Atoi(field(row, "介绍费")); err == nil {
			rec.IntroductionFee = int64(fee) * 100 // 表格中的介绍费以元为单位
		}

		if trainingDecision != "" {
			rec.LegacyTrainingDecision = trainingDecision
			rec.LegacyTrainingDecisionMaker = &recruiter.ID
			rec.LegacyTrainingDecisionTime = parseLegacyTime(field(row, "训练决策时间"))
			rec.LegacyTrainingTime = parseLegacyTime(field(row, "训练时间"))
		}
		if finalDecision != "" {
			rec.LegacyFinalDecision = finalDecision
			rec.LegacyFinalDecisionMaker = &recruiter.ID
			rec.LegacyFinalDecisionTime = parseLegacyTime(field(row, "结束决策时间"))
		}

		if err := rec.Validate(); err != nil {
			slog.Error("招募记录不合法", "nickname", pilot.Nickname, "error", err)
			continue
		}

		if err := r.InsertLegacyRecruit(rec); err != nil {
			slog.Error("插入招募记录失败", "error", err)
			continue
		}

		count++
	}

	slog.Info("导入历史数据完成", "count", count)
}
