package services

import (
	"fmt"
	"math"
	"sync"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
)

// DefaultPassingScore applies when a training carries no passing score
const DefaultPassingScore = 80

// QuizSession is one employee's pass through a training's quiz. The
// session is either answering (CurrentIndex points at the open question)
// or complete (Submitted is set and the score is final).
type QuizSession struct {
	TrainingID   string                `json:"training_id"`
	EmployeeID   string                `json:"employee_id"`
	Questions    []models.QuizQuestion `json:"questions"`
	PassingScore int                   `json:"passing_score"`
	CurrentIndex int                   `json:"current_index"`
	Answers      map[int]int           `json:"answers"`
	Submitted    bool                  `json:"submitted"`
	Score        int                   `json:"score"`
	Percentage   int                   `json:"percentage"`
	Passed       bool                  `json:"passed"`
}

// NewQuizSession starts a session at the first question with no answers
func NewQuizSession(training *models.Training, employeeID string) *QuizSession {
	passingScore := training.PassingScore
	if passingScore <= 0 {
		passingScore = DefaultPassingScore
	}
	return &QuizSession{
		TrainingID:   training.ID,
		EmployeeID:   employeeID,
		Questions:    training.Content.Quiz,
		PassingScore: passingScore,
		Answers:      make(map[int]int),
	}
}

// Next advances to the following question. At the last question it is a
// no-op.
func (s *QuizSession) Next() {
	if s.Submitted {
		return
	}
	if s.CurrentIndex < len(s.Questions)-1 {
		s.CurrentIndex++
	}
}

// Previous steps back one question. At the first question it is a no-op.
func (s *QuizSession) Previous() {
	if s.Submitted {
		return
	}
	if s.CurrentIndex > 0 {
		s.CurrentIndex--
	}
}

// SelectAnswer records the employee's choice for a question. Answers may
// be changed freely until submission.
func (s *QuizSession) SelectAnswer(questionIndex, answerIndex int) error {
	if s.Submitted {
		return ErrQuizAlreadyScored
	}
	if questionIndex < 0 || questionIndex >= len(s.Questions) {
		return fmt.Errorf("%w: question %d of %d", ErrQuestionOutOfRange, questionIndex, len(s.Questions))
	}
	if answerIndex < 0 || answerIndex >= len(s.Questions[questionIndex].Options) {
		return fmt.Errorf("%w: answer %d for question %d", ErrAnswerOutOfRange, answerIndex, questionIndex)
	}
	s.Answers[questionIndex] = answerIndex
	return nil
}

// AllAnswered reports whether every question has a recorded answer
func (s *QuizSession) AllAnswered() bool {
	return len(s.Answers) == len(s.Questions)
}

// Submit scores the session. It fails while any question is unanswered
// and cannot run twice.
func (s *QuizSession) Submit() (*models.QuizResult, error) {
	if s.Submitted {
		return nil, ErrQuizAlreadyScored
	}
	if !s.AllAnswered() {
		return nil, fmt.Errorf("%w: %d of %d answered", ErrQuizIncomplete, len(s.Answers), len(s.Questions))
	}

	score := 0
	for i, question := range s.Questions {
		if s.Answers[i] == question.Correct {
			score++
		}
	}

	total := len(s.Questions)
	percentage := int(math.Round(100 * float64(score) / float64(total)))

	s.Submitted = true
	s.Score = score
	s.Percentage = percentage
	s.Passed = percentage >= s.PassingScore

	answers := make(map[int]int, len(s.Answers))
	for k, v := range s.Answers {
		answers[k] = v
	}

	return &models.QuizResult{
		TrainingID: s.TrainingID,
		EmployeeID: s.EmployeeID,
		Answers:    answers,
		Score:      score,
		Total:      total,
		Percentage: percentage,
		Passed:     s.Passed,
	}, nil
}

// Retake resets the session for another attempt. Previous answers and the
// prior score are discarded; the already-persisted result is untouched.
func (s *QuizSession) Retake() {
	s.CurrentIndex = 0
	s.Answers = make(map[int]int)
	s.Submitted = false
	s.Score = 0
	s.Percentage = 0
	s.Passed = false
}

// QuizSessionStore keeps in-flight sessions. Sessions are transient UI
// state; only submitted results reach the database.
type QuizSessionStore struct {
	mutex    sync.RWMutex
	sessions map[string]*QuizSession
}

func NewQuizSessionStore() *QuizSessionStore {
	return &QuizSessionStore{
		sessions: make(map[string]*QuizSession),
	}
}

func sessionKey(companyID, employeeID, trainingID string) string {
	return companyID + ":" + employeeID + ":" + trainingID
}

func (s *QuizSessionStore) Load(companyID, employeeID, trainingID string) (*QuizSession, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	session, ok := s.sessions[sessionKey(companyID, employeeID, trainingID)]
	return session, ok
}

func (s *QuizSessionStore) Save(companyID string, session *QuizSession) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sessions[sessionKey(companyID, session.EmployeeID, session.TrainingID)] = session
}

func (s *QuizSessionStore) Clear(companyID, employeeID, trainingID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.sessions, sessionKey(companyID, employeeID, trainingID))
}
