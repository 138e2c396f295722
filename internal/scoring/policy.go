package scoring

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Policy values used when a policy file leaves a field out.
const (
	DefaultQuestionCount     = 20
	DefaultCriticalThreshold = 2
	DefaultMinScore          = 1
	DefaultMaxScore          = 5
)

// DefaultCriticalQuestions are the safety and compliance questions
// (security systems, video coverage, transaction recording, cash bag).
var DefaultCriticalQuestions = []int{10, 11, 16, 17}

var ErrInvalidPolicy = errors.New("invalid scoring policy")

// Policy is the fixed questionnaire configuration an Engine scores against.
// It is read once at startup and never mutated afterwards.
type Policy struct {
	QuestionCount     int   `yaml:"question_count"`
	CriticalQuestions []int `yaml:"critical_questions"`
	// CriticalThreshold is the highest score on a critical question that
	// still counts as a failure.
	CriticalThreshold int `yaml:"critical_threshold"`
	MinScore          int `yaml:"min_score"`
	MaxScore          int `yaml:"max_score"`
}

// DefaultPolicy returns the standard 20 question store audit policy.
func DefaultPolicy() Policy {
	return Policy{
		QuestionCount:     DefaultQuestionCount,
		CriticalQuestions: append([]int(nil), DefaultCriticalQuestions...),
		CriticalThreshold: DefaultCriticalThreshold,
		MinScore:          DefaultMinScore,
		MaxScore:          DefaultMaxScore,
	}
}

// LoadPolicy reads a YAML policy file. Fields absent from the file keep
// their default values.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("scoring policy: read file: %w", err)
	}

	p := DefaultPolicy()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("scoring policy: parse yaml: %w", err)
	}

	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks the structural constraints of the policy.
func (p Policy) Validate() error {
	if p.QuestionCount < 1 {
		return fmt.Errorf("%w: question_count must be positive, got %d", ErrInvalidPolicy, p.QuestionCount)
	}
	if p.MinScore < 1 {
		// 0 is reserved for "not answered yet".
		return fmt.Errorf("%w: min_score must be at least 1, got %d", ErrInvalidPolicy, p.MinScore)
	}
	if p.MaxScore < p.MinScore {
		return fmt.Errorf("%w: max_score %d below min_score %d", ErrInvalidPolicy, p.MaxScore, p.MinScore)
	}
	if p.CriticalThreshold < p.MinScore || p.CriticalThreshold > p.MaxScore {
		return fmt.Errorf("%w: critical_threshold %d outside %d..%d", ErrInvalidPolicy, p.CriticalThreshold, p.MinScore, p.MaxScore)
	}

	seen := make(map[int]bool, len(p.CriticalQuestions))
	for _, q := range p.CriticalQuestions {
		if q < 1 || q > p.QuestionCount {
			return fmt.Errorf("%w: critical question %d outside 1..%d", ErrInvalidPolicy, q, p.QuestionCount)
		}
		if seen[q] {
			return fmt.Errorf("%w: critical question %d listed twice", ErrInvalidPolicy, q)
		}
		seen[q] = true
	}
	return nil
}

// sortedCritical returns a sorted copy of the critical question indices.
func (p Policy) sortedCritical() []int {
	out := append([]int(nil), p.CriticalQuestions...)
	sort.Ints(out)
	return out
}
