// Package util holds helpers for tests that drive the lift service over real
// sockets: address allocation, readiness polling and a throwaway broker.
package util

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	HTTPTimeout   = 5 * time.Second
	BrokerTimeout = 5 * time.Second
	MetricTimeout = 5 * time.Second

	pollInterval = 50 * time.Millisecond
)

const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
log_dest stdout
log_type error
log_type warning
`

// DockerAvailable reports whether container tests were enabled with
// DOCKER_AVAILABLE=true or 1.
func DockerAvailable() bool {
	v := os.Getenv("DOCKER_AVAILABLE")
	return v == "true" || v == "1"
}

// FreeAddr returns a loopback address with a port nobody listens on.
func FreeAddr(t testing.TB) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

// Poll calls ok every poll interval until it returns true or ctx is done.
func Poll(ctx context.Context, what string, ok func() bool) error {
	for {
		if ok() {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", what, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

func get(ctx context.Context, url string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), err
}

// WaitForHTTP waits until url answers 200.
func WaitForHTTP(ctx context.Context, url string) error {
	return Poll(ctx, url+" not ready", func() bool {
		code, _, err := get(ctx, url)
		return err == nil && code == http.StatusOK
	})
}

// WaitForMetric waits until the exposition at metricsURL contains substr.
func WaitForMetric(ctx context.Context, metricsURL, substr string) error {
	return Poll(ctx, fmt.Sprintf("metric %q not found", substr), func() bool {
		_, body, err := get(ctx, metricsURL)
		return err == nil && strings.Contains(body, substr)
	})
}

// StartMosquitto runs a disposable broker container and returns its URL with
// a cleanup func. It returns once a client can connect.
func StartMosquitto(ctx context.Context) (string, func(), error) {
	dir, err := os.MkdirTemp("", "lift-mosq")
	if err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(mosquittoConf), 0o644); err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}

	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:2.0",
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
			Files: []tc.ContainerFile{{
				HostFilePath:      path,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0o644,
			}},
		},
		Started: true,
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}
	cleanup := func() {
		_ = cont.Terminate(context.Background())
		_ = os.RemoveAll(dir)
	}

	endpoint, err := cont.PortEndpoint(ctx, "1883/tcp", "tcp")
	if err != nil {
		cleanup()
		return "", nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, BrokerTimeout)
	defer cancel()
	opts := paho.NewClientOptions().AddBroker(endpoint).SetClientID("lift-probe")
	err = Poll(waitCtx, "broker not ready", func() bool {
		cli := paho.NewClient(opts)
		tok := cli.Connect()
		if tok.Wait() && tok.Error() != nil {
			return false
		}
		cli.Disconnect(100)
		return true
	})
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return endpoint, cleanup, nil
}

// Subscribe connects a plain client to broker and routes messages on topics
// to fn. The client is disconnected when the test ends.
func Subscribe(t testing.TB, broker string, topics map[string]byte, fn paho.MessageHandler) {
	t.Helper()
	cli := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("lift-test-sub"))
	if tok := cli.Connect(); tok.Wait() && tok.Error() != nil {
		t.Fatalf("subscriber connect: %v", tok.Error())
	}
	t.Cleanup(func() { cli.Disconnect(100) })
	if tok := cli.SubscribeMultiple(topics, fn); tok.Wait() && tok.Error() != nil {
		t.Fatalf("subscribe: %v", tok.Error())
	}
}
