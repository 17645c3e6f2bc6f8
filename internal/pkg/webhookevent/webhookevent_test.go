package webhookevent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

func TestNeedsProcessing(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		created bool
		stored  *models.WebhookEvent
		want    bool
	}{
		{
			name:    "first delivery",
			created: true,
			stored:  &models.WebhookEvent{},
			want:    true,
		},
		{
			name:    "redelivery after clean processing skips",
			created: false,
			stored:  &models.WebhookEvent{ProcessedAt: &now},
			want:    false,
		},
		{
			name:    "redelivery after failed attempt reapplies",
			created: false,
			stored:  &models.WebhookEvent{ProcessedAt: &now, ProcessingError: "db down"},
			want:    true,
		},
		{
			name:    "redelivery after crash before marking reapplies",
			created: false,
			stored:  &models.WebhookEvent{ProcessedAt: nil},
			want:    true,
		},
		{
			name:    "missing stored row is processed",
			created: false,
			stored:  nil,
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsProcessing(tt.created, tt.stored))
		})
	}
}
