package exams

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineverse-captions/cineverse/internal/db/controller/exam"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/webtest"
)

var quiz = exam.Input{
	Title:     "Film trivia",
	Published: true,
	Questions: []exam.QuestionInput{
		{Text: "Who directed Alien?", Options: []exam.OptionInput{{Text: "Ridley Scott", Correct: true}, {Text: "James Cameron"}}},
		{Text: "Year of Heat?", Options: []exam.OptionInput{{Text: "1995", Correct: true}, {Text: "1999"}}},
	},
}

func TestExamFlow(t *testing.T) {
	env := webtest.New(t)

	var s Service
	s.Init(env.App, env.Cfg, env.DB, env.Auth)

	_, user := env.Login(t, "user@example.com", models.RoleUser)
	_, admin := env.Login(t, "admin@example.com", models.RoleUserAdmin)

	resp, _ := env.JSON(t, http.MethodPost, Path, quiz, user)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = env.JSON(t, http.MethodPost, Path, exam.Input{Title: "empty"}, admin)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = env.JSON(t, http.MethodPost, Path, quiz, admin)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	e, err := exam.Get(env.DB, 1, true)
	require.NoError(t, err)

	resp, body := env.Get(t, fmt.Sprintf("%s/%d", Path, e.ID), user)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Ridley Scott")
	assert.NotContains(t, body, "correct")

	answers := SubmitRequest{Answers: []exam.AnswerInput{
		{QuestionID: e.Questions[0].ID, OptionID: e.Questions[0].Options[0].ID},
		{QuestionID: e.Questions[1].ID, OptionID: e.Questions[1].Options[1].ID},
	}}
	target := fmt.Sprintf("%s/%d/submit", Path, e.ID)

	resp, _ = env.JSON(t, http.MethodPost, target, answers, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body = env.JSON(t, http.MethodPost, target, answers, user)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Contains(t, body, `"score":1`)
	assert.Contains(t, body, `"total":2`)

	resp, _ = env.JSON(t, http.MethodPost, target, answers, user)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, body = env.Get(t, Path+"/submissions", user)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"score":1`)
}

func TestDraftsHiddenFromUsers(t *testing.T) {
	env := webtest.New(t)

	var s Service
	s.Init(env.App, env.Cfg, env.DB, env.Auth)

	admin, adminToken := env.Login(t, "admin@example.com", models.RoleUserAdmin)
	_, user := env.Login(t, "user@example.com", models.RoleUser)

	draft := quiz
	draft.Published = false

	e, err := exam.Create(env.DB, admin.ID, draft)
	require.NoError(t, err)

	resp, _ := env.Get(t, fmt.Sprintf("%s/%d", Path, e.ID), user)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	_, body := env.Get(t, Path, user)
	assert.JSONEq(t, `{"exams":[]}`, body)

	resp, _ = env.Get(t, fmt.Sprintf("%s/%d", Path, e.ID), adminToken)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
