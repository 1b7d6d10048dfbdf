package repository

import (
	"context"
	"math/rand"
	"testing"

	"github.com/vitalsentry/vitalsentry/internal/domain/model"
)

func BenchmarkMemStoreAppendInOrder(b *testing.B) {
	ctx := context.Background()
	s := NewMemStore(ctx)
	defer s.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Append(ctx, model.Record{
			PatientID: i % 100,
			Signal:    model.SignalHeartRate,
			Value:     70,
			TS:        int64(i),
		})
	}
}

func BenchmarkMemStoreAppendOutOfOrder(b *testing.B) {
	ctx := context.Background()
	s := NewMemStore(ctx)
	defer s.Close()

	rng := rand.New(rand.NewSource(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Append(ctx, model.Record{
			PatientID: i % 100,
			Signal:    model.SignalHeartRate,
			Value:     70,
			TS:        rng.Int63n(86_400_000),
		})
	}
}

func BenchmarkMemStoreRecords(b *testing.B) {
	ctx := context.Background()
	s := NewMemStore(ctx)
	defer s.Close()

	for i := 0; i < 10_000; i++ {
		_ = s.Append(ctx, model.Record{
			PatientID: i % 100,
			Signal:    model.SignalHeartRate,
			Value:     70,
			TS:        int64(i),
		})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Records(ctx, i%100, 0, 86_400_000)
	}
}
