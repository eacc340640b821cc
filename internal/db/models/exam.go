package models

import "time"

// Exam is a quiz made of questions with selectable options.
type Exam struct {
	ID          uint64     `gorm:"primaryKey"          json:"id"`
	Title       string     `gorm:"size:255;not null"   json:"title"`
	Description string     `gorm:"type:text"           json:"description,omitempty"`
	Published   bool       `gorm:"not null;default:false" json:"published"`
	CreatedByID uint64     `gorm:"index"               json:"createdById"`
	Questions   []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Question belongs to an exam.
type Question struct {
	ID       uint64   `gorm:"primaryKey"        json:"id"`
	ExamID   uint64   `gorm:"index;not null"    json:"examId"`
	Text     string   `gorm:"type:text;not null" json:"text"`
	Position int      `gorm:"not null;default:0" json:"position"`
	Options  []Option `gorm:"constraint:OnDelete:CASCADE" json:"options"`
}

// Option is one selectable answer of a question.
type Option struct {
	ID         uint64 `gorm:"primaryKey"         json:"id"`
	QuestionID uint64 `gorm:"index;not null"     json:"questionId"`
	Text       string `gorm:"size:500;not null"  json:"text"`
	IsCorrect  bool   `gorm:"not null;default:false" json:"-"`
}

// ExamSubmission records one user's attempt at an exam.
type ExamSubmission struct {
	ID          uint64    `gorm:"primaryKey"                           json:"id"`
	ExamID      uint64    `gorm:"uniqueIndex:idx_submission_exam_user;not null" json:"examId"`
	Exam        Exam      `gorm:"constraint:OnDelete:CASCADE"          json:"-"`
	UserID      uint64    `gorm:"uniqueIndex:idx_submission_exam_user;not null" json:"userId"`
	User        User      `gorm:"constraint:OnDelete:CASCADE"          json:"-"`
	Score       int       `gorm:"not null"                             json:"score"`
	Total       int       `gorm:"not null"                             json:"total"`
	Answers     []Answer  `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	SubmittedAt time.Time `gorm:"not null"                             json:"submittedAt"`
}

// Answer is the option a user picked for a question in a submission.
type Answer struct {
	ID           uint64   `gorm:"primaryKey"                                          json:"id"`
	SubmissionID uint64   `gorm:"uniqueIndex:idx_answer_submission_question;not null" json:"submissionId"`
	QuestionID   uint64   `gorm:"uniqueIndex:idx_answer_submission_question;not null" json:"questionId"`
	Question     Question `gorm:"constraint:OnDelete:CASCADE"                         json:"-"`
	OptionID     uint64   `gorm:"not null"                                            json:"optionId"`
	Option       Option   `gorm:"constraint:OnDelete:CASCADE"                         json:"-"`
	Correct      bool     `gorm:"not null"                                            json:"correct"`
}
