// Package util holds helpers for integration tests that need a real broker.
package util

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// BrokerImage is the Mosquitto image used by Broker.
const BrokerImage = "eclipse-mosquitto:2.0"

const brokerConf = "listener 1883\nallow_anonymous true\npersistence false\n"

// Broker starts a throwaway Mosquitto container and returns its tcp URL.
// The test is skipped when no container runtime answers. The container is
// terminated by t.Cleanup.
func Broker(t testing.TB) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        BrokerImage,
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
			Files: []tc.ContainerFile{{
				Reader:            strings.NewReader(brokerConf),
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0o644,
			}},
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("container runtime unavailable: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })

	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("broker host: %v", err)
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("broker port: %v", err)
	}
	url := fmt.Sprintf("tcp://%s:%s", host, port.Port())
	if err := dial(ctx, url); err != nil {
		t.Fatalf("broker not ready: %v", err)
	}
	return url
}

// Subscribe connects a listener to url and forwards every payload published
// on topic to the returned channel.
func Subscribe(t testing.TB, url, topic string) <-chan []byte {
	t.Helper()
	out := make(chan []byte, 16)
	cli := paho.NewClient(paho.NewClientOptions().AddBroker(url).SetClientID("vrptw-listener"))
	if tok := cli.Connect(); tok.Wait() && tok.Error() != nil {
		t.Fatalf("listener connect: %v", tok.Error())
	}
	t.Cleanup(func() { cli.Disconnect(100) })
	tok := cli.Subscribe(topic, 1, func(_ paho.Client, m paho.Message) { out <- m.Payload() })
	if tok.Wait() && tok.Error() != nil {
		t.Fatalf("subscribe %s: %v", topic, tok.Error())
	}
	return out
}

func dial(ctx context.Context, url string) error {
	opts := paho.NewClientOptions().AddBroker(url).SetClientID("vrptw-probe")
	for {
		cli := paho.NewClient(opts)
		tok := cli.Connect()
		tok.Wait()
		if tok.Error() == nil {
			cli.Disconnect(50)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}
