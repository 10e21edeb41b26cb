package bus

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type HealthStatus struct {
	Healthy       bool     `json:"healthy"`
	NATSConnected bool     `json:"nats_connected"`
	Stream        string   `json:"stream,omitempty"`
	StreamMsgs    uint64   `json:"stream_msgs"`
	Errors        []string `json:"errors"`
}

type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
}

// Check reports NATS connectivity and the stream's message count.
func (p *JetStreamPublisher) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Stream:  p.config.StreamName,
		Errors:  []string{},
	}

	status.NATSConnected = p.nc.IsConnected()
	if !status.NATSConnected {
		status.Healthy = false
		status.Errors = append(status.Errors, "NATS disconnected")
		return status
	}

	stream, err := p.js.Stream(ctx, p.config.StreamName)
	if err != nil {
		status.Healthy = false
		status.Errors = append(status.Errors, "stream unavailable: "+err.Error())
		return status
	}
	info, err := stream.Info(ctx)
	if err != nil {
		status.Errors = append(status.Errors, "stream info failed: "+err.Error())
		return status
	}
	status.StreamMsgs = info.State.Msgs
	return status
}

// HealthHandler serves a checker's status as JSON, with 503 when unhealthy.
func HealthHandler(checker HealthChecker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := checker.Check(ctx)

		w.Header().Set("Content-Type", "application/json")
		if !status.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Error().Err(err).Msg("failed to encode health status")
		}
	})
}
