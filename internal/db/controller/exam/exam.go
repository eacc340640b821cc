// Package exam manages quizzes and scores user submissions.
package exam

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrExamNotFound is returned when an exam does not exist or is not published.
	ErrExamNotFound = errors.New("exam not found")
	// ErrInvalidExam is returned when exam input fails validation.
	ErrInvalidExam = errors.New("invalid exam")
	// ErrInvalidAnswer is returned when a submission references foreign questions or options,
	// or answers a question twice.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrAlreadySubmitted is returned when the user has already submitted this exam.
	ErrAlreadySubmitted = errors.New("exam already submitted")

	validate = validator.New()
)

// OptionInput is one answer choice.
type OptionInput struct {
	Text    string `json:"text"    validate:"required,max=500"`
	Correct bool   `json:"correct"`
}

// QuestionInput is a question with its choices.
type QuestionInput struct {
	Text    string        `json:"text"    validate:"required"`
	Options []OptionInput `json:"options" validate:"min=2,dive"`
}

// Input describes a new exam.
type Input struct {
	Title       string          `json:"title"       validate:"required,max=255"`
	Description string          `json:"description"`
	Published   bool            `json:"published"`
	Questions   []QuestionInput `json:"questions"   validate:"min=1,dive"`
}

// AnswerInput picks an option for a question.
type AnswerInput struct {
	QuestionID uint64 `json:"questionId"`
	OptionID   uint64 `json:"optionId"`
}

// Create stores an exam with its questions and options.
func Create(db *gorm.DB, createdBy uint64, in Input) (*models.Exam, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExam, err)
	}

	e := &models.Exam{
		Title:       in.Title,
		Description: in.Description,
		Published:   in.Published,
		CreatedByID: createdBy,
		Questions:   make([]models.Question, 0, len(in.Questions)),
	}

	for i, q := range in.Questions {
		correct := 0
		question := models.Question{Text: q.Text, Position: i, Options: make([]models.Option, 0, len(q.Options))}

		for _, o := range q.Options {
			if o.Correct {
				correct++
			}

			question.Options = append(question.Options, models.Option{Text: o.Text, IsCorrect: o.Correct})
		}

		if correct == 0 {
			return nil, fmt.Errorf("%w: question %d has no correct option", ErrInvalidExam, i+1)
		}

		e.Questions = append(e.Questions, question)
	}

	if err := db.Create(e).Error; err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	// gorm skips zero-value bools on insert; make drafts explicit
	if !in.Published {
		if err := db.Model(e).Update("published", false).Error; err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Get returns an exam with questions and options. Drafts are only visible with includeDrafts.
// Correct options are never serialized to JSON.
func Get(db *gorm.DB, id uint64, includeDrafts bool) (*models.Exam, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	tx := db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})

	if !includeDrafts {
		tx = tx.Where("published = ?", true)
	}

	var e models.Exam
	if err := tx.First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}

		return nil, err
	}

	return &e, nil
}

// List returns exams newest first.
func List(db *gorm.DB, includeDrafts bool) ([]models.Exam, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	tx := db.Order("id DESC")
	if !includeDrafts {
		tx = tx.Where("published = ?", true)
	}

	exams := make([]models.Exam, 0)
	if err := tx.Find(&exams).Error; err != nil {
		return nil, err
	}

	return exams, nil
}

// Submit scores a user's answers and stores the submission with its answers in one transaction.
// Unanswered questions count as wrong. A user may submit each exam once.
func Submit(db *gorm.DB, userID, examID uint64, answers []AnswerInput) (*models.ExamSubmission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	e, err := Get(db, examID, false)
	if err != nil {
		return nil, err
	}

	options := make(map[uint64]models.Option)
	questions := make(map[uint64]struct{}, len(e.Questions))

	for _, q := range e.Questions {
		questions[q.ID] = struct{}{}

		for _, o := range q.Options {
			options[o.ID] = o
		}
	}

	sub := &models.ExamSubmission{
		ExamID:      examID,
		UserID:      userID,
		Total:       len(e.Questions),
		SubmittedAt: time.Now(),
		Answers:     make([]models.Answer, 0, len(answers)),
	}

	answered := make(map[uint64]struct{}, len(answers))

	for _, a := range answers {
		if _, ok := questions[a.QuestionID]; !ok {
			return nil, fmt.Errorf("%w: question %d is not part of this exam", ErrInvalidAnswer, a.QuestionID)
		}

		if _, dup := answered[a.QuestionID]; dup {
			return nil, fmt.Errorf("%w: question %d answered twice", ErrInvalidAnswer, a.QuestionID)
		}

		answered[a.QuestionID] = struct{}{}

		o, ok := options[a.OptionID]
		if !ok || o.QuestionID != a.QuestionID {
			return nil, fmt.Errorf("%w: option %d does not belong to question %d", ErrInvalidAnswer, a.OptionID, a.QuestionID)
		}

		if o.IsCorrect {
			sub.Score++
		}

		sub.Answers = append(sub.Answers, models.Answer{
			QuestionID: a.QuestionID,
			OptionID:   a.OptionID,
			Correct:    o.IsCorrect,
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if errCount := tx.Model(&models.ExamSubmission{}).
			Where("exam_id = ? AND user_id = ?", examID, userID).
			Count(&count).Error; errCount != nil {
			return errCount
		}

		if count > 0 {
			return ErrAlreadySubmitted
		}

		return tx.Create(sub).Error
	})
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// Submissions returns a user's submissions newest first.
func Submissions(db *gorm.DB, userID uint64) ([]models.ExamSubmission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	subs := make([]models.ExamSubmission, 0)
	if err := db.Where("user_id = ?", userID).Order("submitted_at DESC").Find(&subs).Error; err != nil {
		return nil, err
	}

	return subs, nil
}
