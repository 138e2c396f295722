package service

import "errors"

var (
	ErrStoreNotFound          = errors.New("store not found")
	ErrEvaluationNotFound     = errors.New("evaluation not found")
	ErrInvalidInput           = errors.New("invalid input")
	ErrStorageFailure         = errors.New("storage failure")
	ErrAggregationUnavailable = errors.New("aggregation unavailable")
)
