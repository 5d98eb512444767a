package config

import (
	"os"
	"strings"
)

// EnvBackendURL overrides the backend base address when set.
const EnvBackendURL = "REFGATE_BACKEND_URL"

// ResolveBackendBase resolves the backend base address once at startup:
// explicit env var first, then a platform fallback. Under WSL the backend
// typically runs on the Windows host, so plain loopback does not reach it
// and the host alias is used instead.
func ResolveBackendBase() string {
	if v := os.Getenv(EnvBackendURL); v != "" {
		return v
	}
	if runningUnderWSL() {
		return "http://host.docker.internal:8080"
	}
	return "http://localhost:8080"
}

func runningUnderWSL() bool {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "microsoft")
}
