package discovery

import (
	"testing"

	"quiz-app/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistration(t *testing.T) {
	server := config.ServerConfig{
		Port:           "6666",
		ServiceName:    "quiz-app",
		ServiceAddress: "quiz-app",
		ServiceID:      "quiz-app-node1",
	}
	sr, err := NewServiceRegistry(config.ConsulConfig{Address: "127.0.0.1:8500"}, server)
	require.NoError(t, err)

	reg, err := sr.Registration()
	require.NoError(t, err)
	assert.Equal(t, "quiz-app-node1-http", reg.ID)
	assert.Equal(t, 6666, reg.Port)
	assert.Equal(t, "http://quiz-app:6666/health", reg.Check.HTTP)
	assert.Equal(t, "http", reg.Meta["protocol"])
}

func TestRegistrationRejectsBadPort(t *testing.T) {
	sr, err := NewServiceRegistry(config.ConsulConfig{}, config.ServerConfig{Port: "http"})
	require.NoError(t, err)

	_, err = sr.Registration()
	assert.Error(t, err)
}
