// Package util holds shared helpers for the integration tests: a
// disposable Mosquitto broker for MQTT paths and a poller for Prometheus
// metric exposition.
package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MetricTimeout bounds how long a test waits for a metric to appear.
const MetricTimeout = 5 * time.Second

const (
	brokerReadyTimeout = 5 * time.Second
	pollInterval       = 50 * time.Millisecond
)

// WaitForMetric polls a metrics endpoint until the substring shows up in
// the exposition output or the context is done. Transient fetch errors are
// retried; only the context ends the wait.
func WaitForMetric(ctx context.Context, metricsURL, substr string) error {
	for {
		if body, err := fetchBody(ctx, metricsURL); err == nil && strings.Contains(body, substr) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("metric %q not found: %w", substr, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

func fetchBody(ctx context.Context, url string) (string, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// StartMosquitto runs a throwaway Mosquitto broker in a Docker container
// and returns its URL plus a cleanup function. The broker accepts anonymous
// clients and keeps nothing on disk.
func StartMosquitto(ctx context.Context) (string, func(), error) {
	confPath, rmConf, err := writeBrokerConfig()
	if err != nil {
		return "", nil, err
	}

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{
			{
				HostFilePath:      confPath,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0644,
			},
		},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		rmConf()
		return "", nil, err
	}
	cleanup := func() {
		_ = cont.Terminate(context.Background())
		rmConf()
	}

	host, err := cont.Host(ctx)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		cleanup()
		return "", nil, err
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	// The listening port opens before the broker accepts sessions, so
	// probe with a real client before handing the URL to the test.
	readyCtx, cancel := context.WithTimeout(ctx, brokerReadyTimeout)
	defer cancel()
	if err := waitForBroker(readyCtx, broker); err != nil {
		cleanup()
		return "", nil, err
	}
	return broker, cleanup, nil
}

func writeBrokerConfig() (string, func(), error) {
	conf := strings.Join([]string{
		"listener 1883",
		"allow_anonymous true",
		"persistence false",
		"log_dest stdout",
		"log_type error",
		"log_type warning",
		"",
	}, "\n")
	dir, err := os.MkdirTemp("", "rosterd-mosq")
	if err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}
	return path, func() { _ = os.RemoveAll(dir) }, nil
}

func waitForBroker(ctx context.Context, broker string) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("rosterd-probe")
	for {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
