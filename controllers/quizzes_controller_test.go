package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"courseplatform/models"
)

func question(id uint, points int, correctJSON string) models.QuizQuestion {
	return models.QuizQuestion{
		Model:         gorm.Model{ID: id},
		Points:        points,
		CorrectAnswer: correctJSON,
	}
}

func TestGradeQuizPointsWeighted(t *testing.T) {
	questions := []models.QuizQuestion{
		question(1, 1, `"red"`),
		question(2, 3, `["a","b"]`),
	}
	answers := []quizAnswerInput{
		{QuestionID: 1, Answer: []string{"red"}},
		{QuestionID: 2, Answer: []string{"a"}}, // incomplete set, no points
	}

	assert.InDelta(t, 25.0, gradeQuiz(questions, answers), 0.001)
}

func TestGradeQuizMultipleChoiceOrderInsensitive(t *testing.T) {
	questions := []models.QuizQuestion{question(1, 2, `["a","b"]`)}
	answers := []quizAnswerInput{{QuestionID: 1, Answer: []string{"b", "a"}}}

	assert.InDelta(t, 100.0, gradeQuiz(questions, answers), 0.001)
}

func TestGradeQuizUnansweredQuestionsScoreZero(t *testing.T) {
	questions := []models.QuizQuestion{
		question(1, 1, `"red"`),
		question(2, 1, `"blue"`),
	}

	assert.InDelta(t, 0.0, gradeQuiz(questions, nil), 0.001)
}

func TestGradeQuizNoQuestions(t *testing.T) {
	assert.Zero(t, gradeQuiz(nil, nil))
}

func TestEqualAnswerSets(t *testing.T) {
	assert.True(t, equalAnswerSets([]string{"a", "b"}, []string{"b", "a"}))
	assert.False(t, equalAnswerSets([]string{"a"}, []string{"a", "a"}))
	assert.False(t, equalAnswerSets([]string{"a", "c"}, []string{"a", "b"}))
}
