package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/crewshift-dev/crewshift/backend/internal/config"
	"github.com/crewshift-dev/crewshift/backend/internal/domain"
	"github.com/crewshift-dev/crewshift/backend/internal/repository"
	"github.com/crewshift-dev/crewshift/backend/internal/views"
	"github.com/crewshift-dev/crewshift/backend/internal/workflow"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	schedules *workflow.ScheduleService
	swaps     *workflow.SwapService

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	invalidator := views.NewRedisInvalidator(rdb)

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		schedules: workflow.NewScheduleService(repo, invalidator),
		swaps:     workflow.NewSwapService(repo, invalidator),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	managerOnly := h.RequiredRole([]domain.Role{domain.RoleOwner, domain.RoleManager})

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// Everything below requires a logged-in, active account
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.currentUser)

		r.Get("/my-info", h.GetMyInfo)

		r.Route("/schedules", func(r chi.Router) {
			r.With(managerOnly).Post("/", h.CreateSchedule)
			r.With(managerOnly).Post("/copy-last-week", h.CopyScheduleFromLastWeek)
			r.Get("/my-week", h.GetMyWeek)
			r.Route("/{id}", func(r chi.Router) {
				r.With(managerOnly).Get("/", h.GetSchedule)
				r.With(managerOnly).Post("/publish", h.PublishSchedule)
				r.With(managerOnly).Post("/shifts", h.AddShift)
			})
		})

		r.Route("/shifts/{id}", func(r chi.Router) {
			r.With(managerOnly).Patch("/template", h.UpdateShiftTemplate)
			r.With(managerOnly).Delete("/", h.RemoveShift)
			r.With(managerOnly).Patch("/note", h.AddShiftNote)
			r.With(managerOnly).Patch("/extra-hours", h.SaveExtraHours)
			r.Post("/swaps", h.CreateSwap)
		})

		r.Route("/swaps", func(r chi.Router) {
			r.Get("/", h.GetMySwaps)
			r.Get("/board", h.GetSwapBoard)
			r.With(managerOnly).Get("/group/{groupID}", h.GetGroupSwaps)
			r.Route("/{id}", func(r chi.Router) {
				r.Post("/accept", h.AcceptSwap)
				r.Post("/decline", h.DeclineSwap)
				r.Post("/cancel", h.CancelSwap)
				r.Post("/claim", h.TakePublicShift)
				r.With(managerOnly).Post("/approve", h.ApproveSwap)
				r.With(managerOnly).Post("/reject", h.RejectSwap)
			})
		})
	})
}
