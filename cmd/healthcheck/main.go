// Command healthcheck probes the portal's health endpoint and exits non-zero
// when it does not answer 200. It is the container HEALTHCHECK.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"
)

const defaultAddr = "127.0.0.1:8080"

func main() {
	os.Exit(check(os.Getenv("PEERPORTAL_LISTEN_ADDR")))
}

func check(listenAddr string) int {
	addr := normalizeAddr(listenAddr)

	client := &http.Client{Timeout: 2 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://%s/api/v1/health", addr), nil)
	if err != nil {
		return 1
	}

	resp, err := client.Do(req)
	if err != nil {
		return 1
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 1
	}

	return 0
}

// normalizeAddr points the probe at loopback when the portal binds every
// interface; the probe runs inside the same container.
func normalizeAddr(raw string) string {
	if raw == "" {
		return defaultAddr
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return defaultAddr
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}

	return net.JoinHostPort(host, port)
}
