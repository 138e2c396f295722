package scoring

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrIncompleteAnswers = errors.New("incomplete answers")
	ErrOutOfRangeAnswer  = errors.New("answer out of range")
)

// Answers maps a question index (1-based) to its score.
type Answers map[int]int

// Result is the derived part of one evaluation.
type Result struct {
	Average         float64
	CriticalFail    bool
	FailedQuestions []int
}

// Engine scores complete answer sets against an immutable Policy.
type Engine struct {
	policy   Policy
	critical []int
}

// NewEngine validates policy and returns an Engine bound to it.
func NewEngine(policy Policy) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		policy:   policy,
		critical: policy.sortedCritical(),
	}, nil
}

// Policy returns a copy of the engine's policy.
func (e *Engine) Policy() Policy {
	p := e.policy
	p.CriticalQuestions = append([]int(nil), e.critical...)
	return p
}

// Score validates answers and computes the average and critical flags.
// Every question 1..QuestionCount must be answered with a value in
// [MinScore, MaxScore]; 0 counts as unanswered.
func (e *Engine) Score(answers Answers) (Result, error) {
	if err := e.validate(answers); err != nil {
		return Result{}, err
	}

	sum := 0
	for q := 1; q <= e.policy.QuestionCount; q++ {
		sum += answers[q]
	}

	failed := e.failedCritical(answers)
	return Result{
		Average:         float64(sum) / float64(e.policy.QuestionCount),
		CriticalFail:    len(failed) > 0,
		FailedQuestions: failed,
	}, nil
}

func (e *Engine) validate(answers Answers) error {
	var unknown []int
	for q := range answers {
		if q < 1 || q > e.policy.QuestionCount {
			unknown = append(unknown, q)
		}
	}
	if len(unknown) > 0 {
		sort.Ints(unknown)
		return fmt.Errorf("%w: questions %v outside 1..%d", ErrOutOfRangeAnswer, unknown, e.policy.QuestionCount)
	}

	var missing []int
	for q := 1; q <= e.policy.QuestionCount; q++ {
		if answers[q] == 0 {
			missing = append(missing, q)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %d of %d questions unanswered %v", ErrIncompleteAnswers, len(missing), e.policy.QuestionCount, missing)
	}

	for q := 1; q <= e.policy.QuestionCount; q++ {
		v := answers[q]
		if v < e.policy.MinScore || v > e.policy.MaxScore {
			return fmt.Errorf("%w: question %d scored %d, want %d..%d", ErrOutOfRangeAnswer, q, v, e.policy.MinScore, e.policy.MaxScore)
		}
	}
	return nil
}

// failedCritical lists critical questions scored at or below the threshold.
// Unanswered (0) questions are skipped.
func (e *Engine) failedCritical(answers Answers) []int {
	failed := []int{}
	for _, q := range e.critical {
		v := answers[q]
		if v > 0 && v <= e.policy.CriticalThreshold {
			failed = append(failed, q)
		}
	}
	return failed
}
