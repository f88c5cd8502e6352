package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name        string
		store       Pinger
		wantStatus  string
		storeStatus string
	}{
		{"store disabled", nil, "ready", "disabled"},
		{"store ready", pingerFunc(func(context.Context) error { return nil }), "ready", "ready"},
		{"store down", pingerFunc(func(context.Context) error { return errors.New("locked") }), "not_ready", "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService("1.0.0", tt.store, nil)
			status := hs.ReadinessCheck(context.Background())

			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, tt.wantStatus == "ready", status.Ready())
			assert.Equal(t, tt.storeStatus, status.Services["store"].Status)
			assert.Equal(t, "1.0.0", status.Version)
		})
	}
}

func TestHealthService_LivenessCheck(t *testing.T) {
	hs := NewHealthService("1.0.0", nil, nil)
	status := hs.LivenessCheck(context.Background())

	assert.Equal(t, "alive", status.Status)
	assert.Contains(t, status.Runtime, "go_version")
	assert.Contains(t, status.Runtime, "uptime_seconds")
}
