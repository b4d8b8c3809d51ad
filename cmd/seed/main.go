package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/xingyao-live/pilot-manager/backend/internal/config"
	"github.com/xingyao-live/pilot-manager/backend/internal/domain"
	"github.com/xingyao-live/pilot-manager/backend/internal/repository"
	"github.com/xingyao-live/pilot-manager/backend/internal/seed"
	"github.com/xingyao-live/pilot-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机主播, 3: 插入随机招募记录, 4: 插入旧版格式的招募记录, 5: 导入历史数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机用户", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("无法插入用户", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入用户成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的主播数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				pilot := utils.GenerateRandomPilot()
				if err := repo.CreatePilot(pilot); err != nil {
					slog.Error("无法插入主播", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入主播成功", slog.Int("count", n-cnt))
		}
	case 3, 4:
		if n <= 0 {
			slog.Error("请输入合法的招募记录数量")
			return
		}

		pilots, recruiters, ok := loadRecruitSeedSources(repo)
		if !ok {
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			pilot := pilots[rand.Intn(len(pilots))]
			recruiter := recruiters[rand.Intn(len(recruiters))]

			var rec *domain.Recruit
			if op == 3 {
				rec = utils.GenerateRandomRecruit(pilot.ID, recruiter.ID)
				if err := repo.CreateRecruit(rec); err != nil {
					slog.Error("无法插入招募记录", slog.String("error", err.Error()))
					continue
				}

				// CreateRecruit 只写基础字段，决策三元组需要再补一次更新
				if err := repo.UpdateRecruit(rec); err != nil {
					slog.Error("无法更新招募记录", slog.String("error", err.Error()))
					continue
				}
			} else {
				rec = utils.GenerateRandomLegacyRecruit(pilot.ID, recruiter.ID)
				if err := repo.InsertLegacyRecruit(rec); err != nil {
					slog.Error("无法插入招募记录", slog.String("error", err.Error()))
					continue
				}
			}

			cnt--
		}

		slog.Info("插入招募记录成功", slog.Int("count", n-cnt))
	case 5:
		seed.SeedLegacyData(repo)
	default:
		slog.Error("指定的操作非法")
	}
}

// 随机招募记录需要已有的主播和能够担任负责人的用户
func loadRecruitSeedSources(repo *repository.Repository) ([]*domain.Pilot, []*domain.User, bool) {
	pilots, err := repo.GetAllPilots()
	if err != nil {
		slog.Error("无法获取主播列表", slog.String("error", err.Error()))
		return nil, nil, false
	}
	if len(pilots) == 0 {
		slog.Error("数据库中没有主播，请先插入主播")
		return nil, nil, false
	}

	users, err := repo.GetAllUsers()
	if err != nil {
		slog.Error("无法获取用户列表", slog.String("error", err.Error()))
		return nil, nil, false
	}

	recruiters := make([]*domain.User, 0, len(users))
	for _, user := range users {
		if user.IsHandler() {
			recruiters = append(recruiters, user)
		}
	}
	if len(recruiters) == 0 {
		slog.Error("数据库中没有运营或管理员，请先插入用户")
		return nil, nil, false
	}

	return pilots, recruiters, true
}
