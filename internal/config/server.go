package config

import (
	"strings"
	"time"
)

type Server struct {
	Addr            string
	BasePath        string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

func NewServer() (*Server, error) {
	port, ok := lookupFirst("APP_PORT", "PORT")
	if !ok {
		port = "8080"
	}
	if !strings.Contains(port, ":") {
		port = ":" + port
	}

	timeout, err := envInt("APP_SHUTDOWN_TIMEOUT_SECONDS", 15)
	if err != nil {
		return nil, err
	}

	server := &Server{
		Addr:            port,
		BasePath:        strings.TrimSuffix(envString("APP_BASE_PATH", ""), "/"),
		ShutdownTimeout: time.Duration(timeout) * time.Second,
		AllowedOrigins:  envList("CORS_ALLOWED_ORIGINS"),
	}
	return server, nil
}
