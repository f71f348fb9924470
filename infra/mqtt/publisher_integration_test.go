//go:build integration

package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vrptw/test/util"
)

func TestPublishResultToMosquitto(t *testing.T) {
	broker := util.Broker(t)
	received := util.Subscribe(t, broker, "vrptw/results/#")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pub, err := NewPublisher(Config{Broker: broker, QoS: 1})
	require.NoError(t, err)
	defer pub.Close()
	require.NoError(t, pub.PublishResult(ctx, sampleResult()))

	select {
	case payload := <-received:
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(payload, &decoded))
		require.Equal(t, "run-1", decoded["run_id"])
	case <-ctx.Done():
		t.Fatal("result not received")
	}
}
