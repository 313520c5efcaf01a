package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/relocity/relocation-backend/internal/auth"
	"github.com/relocity/relocation-backend/internal/conf"
	"github.com/relocity/relocation-backend/internal/pkg/logger"
	relocationservice "github.com/relocity/relocation-backend/internal/relocation/service"
)

func TestNewHTTPServerTimeouts(t *testing.T) {
	cfg := &conf.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Upload.Timeout = 10 * time.Minute

	log := logger.Nop()
	manager := auth.NewJWTManager("test-secret", "relocation-backend")
	svc := relocationservice.NewRelocationService(nil, nil, log)

	s := NewHTTPServer(cfg, manager, svc, log)

	assert.Equal(t, 10*time.Minute, s.server.ReadTimeout,
		"read timeout must follow the upload limit")
	assert.NotZero(t, s.server.ReadHeaderTimeout)
	assert.NotZero(t, s.server.IdleTimeout)
}
