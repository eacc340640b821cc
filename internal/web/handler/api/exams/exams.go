// Package exams serves quizzes and scores submissions.
package exams

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/controller/exam"
	"github.com/cineverse-captions/cineverse/internal/web/handler"
)

// Path is the base path of the exams API.
const Path = handler.APIPath + "/exams"

// SubmitRequest carries the picked options.
type SubmitRequest struct {
	Answers []exam.AnswerInput `json:"answers"`
}

// Service is the exams API handler service.
type Service struct {
	handler.Service
	db *gorm.DB
}

// Handler is the exams API handler.
var Handler = Service{}

// Init registers the routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db

	app.Get(Path, s.List)
	app.Post(Path, auth.RequirePermission(auth.PermExamManage), s.Create)
	app.Get(Path+"/submissions", auth.Authenticated(), s.Submissions)
	app.Get(Path+"/:id<int>", s.Get)
	app.Post(Path+"/:id<int>/submit", auth.RequirePermission(auth.PermExamTake), s.Submit)
}

func (s *Service) canManage(c *fiber.Ctx) bool {
	claims, ok := auth.FromContext(c)
	return ok && claims.Can(auth.PermExamManage)
}

// List returns published exams; managers also see drafts.
func (s *Service) List(c *fiber.Ctx) error {
	exams, err := exam.List(s.db, s.canManage(c))
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(fiber.Map{"exams": exams})
}

// Get returns one exam with its questions. Correct options are never included.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return handler.JSONError(c, exam.ErrExamNotFound)
	}

	e, err := exam.Get(s.db, uint64(id), s.canManage(c))
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(e)
}

// Create stores a new exam.
func (s *Service) Create(c *fiber.Ctx) error {
	claims, _ := auth.FromContext(c)

	var in exam.Input
	if err := c.BodyParser(&in); err != nil {
		return handler.JSONError(c, handler.ErrInvalidBody)
	}

	e, err := exam.Create(s.db, claims.UserID(), in)
	if err != nil {
		return handler.JSONError(c, err)
	}

	log.Info().Uint64("exam_id", e.ID).Uint64("user_id", claims.UserID()).Msg("exam created")

	return c.Status(fiber.StatusCreated).JSON(e)
}

// Submit scores the caller's answers.
func (s *Service) Submit(c *fiber.Ctx) error {
	claims, _ := auth.FromContext(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return handler.JSONError(c, exam.ErrExamNotFound)
	}

	var req SubmitRequest
	if err = c.BodyParser(&req); err != nil {
		return handler.JSONError(c, handler.ErrInvalidBody)
	}

	sub, err := exam.Submit(s.db, claims.UserID(), uint64(id), req.Answers)
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    sub.ID,
		"score": sub.Score,
		"total": sub.Total,
	})
}

// Submissions lists the caller's submissions.
func (s *Service) Submissions(c *fiber.Ctx) error {
	claims, _ := auth.FromContext(c)

	subs, err := exam.Submissions(s.db, claims.UserID())
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(fiber.Map{"submissions": subs})
}
