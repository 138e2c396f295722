package service

import (
	"context"
	"fmt"
	"testing"
)

func BenchmarkSubmitEvaluation(b *testing.B) {
	svc := setupRealService(b)
	ctx := context.Background()

	store, err := svc.CreateStore(ctx, CreateStoreInput{Name: "bench"})
	if err != nil {
		b.Fatalf("create store: %v", err)
	}
	for i := 0; i < 50; i++ {
		_, err := svc.SubmitEvaluation(ctx, SubmitEvaluationInput{
			StoreID: store.ID, EvaluatorID: fmt.Sprintf("seed-%d", i), Answers: answers(1+i%5, nil),
		})
		if err != nil {
			b.Fatalf("seed: %v", err)
		}
	}

	in := SubmitEvaluationInput{StoreID: store.ID, EvaluatorID: "bench", Answers: answers(4, nil)}

	b.ReportAllocs()

	for b.Loop() {
		_, _ = svc.SubmitEvaluation(ctx, in)
	}
}

func BenchmarkGetRankingView(b *testing.B) {
	svc := setupRealService(b)
	ctx := context.Background()

	store, err := svc.CreateStore(ctx, CreateStoreInput{Name: "bench"})
	if err != nil {
		b.Fatalf("create store: %v", err)
	}

	b.ReportAllocs()

	for b.Loop() {
		_, _ = svc.GetRankingView(ctx, store.ID)
	}
}
