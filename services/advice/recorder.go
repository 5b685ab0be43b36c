package advice

import (
	"context"

	"github.com/YogindraChaudhari/Product-Advisor/models"
	"github.com/YogindraChaudhari/Product-Advisor/repositories"
	"github.com/YogindraChaudhari/Product-Advisor/services/routing"
)

// StoreRecorder persists routed results through the advice repository
type StoreRecorder struct {
	advices repositories.AdviceRepository
}

// NewStoreRecorder creates a recorder backed by advices
func NewStoreRecorder(advices repositories.AdviceRepository) *StoreRecorder {
	return &StoreRecorder{advices: advices}
}

// Save implements routing.Recorder
func (r *StoreRecorder) Save(ctx context.Context, record routing.Record) (string, error) {
	advice := models.NewAdvice(record.RequesterID, record.Title, record.Prompt, record.Result, string(record.Provider))
	if err := r.advices.Create(ctx, advice); err != nil {
		return "", err
	}
	return advice.ID.String(), nil
}
