package config

import (
	"os"
	"sync"
)

var (
	inContainerOnce sync.Once
	inContainer     bool
)

// runningInContainer reports whether /.dockerenv exists. Cached after the first call.
func runningInContainer() bool {
	inContainerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		inContainer = err == nil
	})
	return inContainer
}

// resolveHost rewrites loopback hosts to host.docker.internal when the
// service runs in a container, so a Postgres or Redis started on the
// developer's machine stays reachable.
func resolveHost(host string, containerized bool) string {
	if !containerized {
		return host
	}
	switch host {
	case "localhost", "127.0.0.1":
		return "host.docker.internal"
	}
	return host
}
