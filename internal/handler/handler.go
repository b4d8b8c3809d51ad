package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/xingyao-live/pilot-manager/backend/internal/config"
	"github.com/xingyao-live/pilot-manager/backend/internal/domain"
	"github.com/xingyao-live/pilot-manager/backend/internal/pipeline"
	"github.com/xingyao-live/pilot-manager/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	pipeline    *pipeline.Service
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, svc *pipeline.Service, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		pipeline:    svc,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

// 招募和主播的写操作只对运营和管理员开放
var handlerRoles = []domain.Role{domain.RoleOperator, domain.RoleAdmin}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/pilots", func(r chi.Router) {
			r.With(h.RequiredRole(handlerRoles)).Post("/", h.CreatePilot)
			r.Get("/", h.GetAllPilots)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.pilotInfo)
				r.Get("/", h.GetPilot)
				r.With(h.RequiredRole(handlerRoles)).With(h.myInfo).Patch("/", h.UpdatePilot)
				r.Get("/changes", h.GetPilotChanges)
				r.Get("/recruits", h.GetPilotRecruits)
			})
		})

		r.Route("/recruits", func(r chi.Router) {
			r.Use(h.myInfo)
			r.With(h.RequiredRole(handlerRoles)).Post("/", h.StartRecruitment)
			r.Get("/", h.GetAllRecruits)
			r.Get("/grouped", h.GetGroupedRecruits)
			r.Get("/stalled", h.GetStalledRecruits)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.recruitInfo)
				r.Get("/", h.GetRecruit)
				r.Get("/changes", h.GetRecruitChanges)
				r.Get("/operations", h.GetRecruitOperations)
				r.Group(func(r chi.Router) {
					r.Use(h.RequiredRole(handlerRoles))
					r.Put("/", h.UpdateRecruit)
					r.Post("/interview-decision", h.DecideInterview)
					r.Post("/schedule-training", h.ScheduleTraining)
					r.Post("/training-decision", h.DecideTraining)
					r.Post("/schedule-broadcast", h.ScheduleBroadcast)
					r.Post("/broadcast-decision", h.DecideBroadcast)
					r.Post("/abandon", h.AbandonRecruit)
				})
			})
		})
	})
}
