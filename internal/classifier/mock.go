package classifier

import (
	"context"

	"github.com/assareh/fragrance-scout/internal/domain"
)

// MockClassifier returns a fixed verdict; used for local runs without an
// LLM backend.
type MockClassifier struct {
	accept bool
	reason string
}

func NewMockClassifier(accept bool, reason string) *MockClassifier {
	return &MockClassifier{accept: accept, reason: reason}
}

func (m *MockClassifier) Classify(_ context.Context, _, _ string) (*domain.Verdict, error) {
	return &domain.Verdict{Accept: m.accept, Reason: m.reason}, nil
}
