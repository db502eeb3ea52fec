package alertsmanager_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/arkade-os/nftbridge/internal/core/ports"
	"github.com/arkade-os/nftbridge/internal/infrastructure/alertsmanager"
	"github.com/stretchr/testify/require"
)

func TestPublish(t *testing.T) {
	var received []alertsmanager.Alert
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	svc := alertsmanager.NewService(server.URL, "https://explorer.example/")
	err := svc.Publish(t.Context(), ports.FraudProven, map[string]any{
		"spoke_id":   "a",
		"height":     3,
		"relayer":    "0xc3",
		"challenger": "0xa1",
	})
	require.NoError(t, err)

	require.Len(t, received, 1)
	alert := received[0]
	require.Equal(t, string(ports.FraudProven), alert.Labels["alertname"])
	require.Equal(t, "critical", alert.Labels["severity"])
	require.Equal(t, "a", alert.Labels["spoke_id"])
	require.Equal(t, "0xc3", alert.Labels["relayer"])
	require.Equal(t,
		"• challenger: https://explorer.example/address/0xa1\n"+
			"• height: 3\n"+
			"• relayer: https://explorer.example/address/0xc3\n"+
			"• spoke_id: a",
		alert.Annotations["description"],
	)
}

func TestPublishRetries(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(server.Close)

		svc := alertsmanager.NewService(server.URL, "")
		err := svc.Publish(t.Context(), ports.SpokeRestored, map[string]any{"spoke_id": "b"})
		require.NoError(t, err)
		require.Equal(t, int32(3), calls.Load())
	})

	t.Run("client error", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		t.Cleanup(server.Close)

		svc := alertsmanager.NewService(server.URL, "")
		err := svc.Publish(t.Context(), ports.ChallengeOpened, "unexpected")
		require.Error(t, err)
		require.Equal(t, int32(1), calls.Load())
	})
}
