package discovery

import (
	"fmt"
	"strconv"

	"quiz-app/internal/config"

	"github.com/hashicorp/consul/api"
	"github.com/sirupsen/logrus"
)

// ServiceRegistry registers the HTTP service with Consul.
type ServiceRegistry struct {
	client *api.Client
	server config.ServerConfig
}

func NewServiceRegistry(consul config.ConsulConfig, server config.ServerConfig) (*ServiceRegistry, error) {
	consulConfig := api.DefaultConfig()
	consulConfig.Address = consul.Address

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}

	return &ServiceRegistry{client: client, server: server}, nil
}

func (sr *ServiceRegistry) serviceID() string {
	return sr.server.ServiceID + "-http"
}

// Registration describes the service with an HTTP check against /health.
func (sr *ServiceRegistry) Registration() (*api.AgentServiceRegistration, error) {
	port, err := strconv.Atoi(sr.server.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", sr.server.Port, err)
	}

	return &api.AgentServiceRegistration{
		ID:      sr.serviceID(),
		Name:    sr.server.ServiceName,
		Port:    port,
		Address: sr.server.ServiceAddress,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%s/health", sr.server.ServiceAddress, sr.server.Port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
		Tags: []string{"quiz", "http"},
		Meta: map[string]string{
			"protocol": "http",
		},
	}, nil
}

func (sr *ServiceRegistry) Register() error {
	registration, err := sr.Registration()
	if err != nil {
		return err
	}
	if err := sr.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register service with Consul: %w", err)
	}

	logrus.WithField("service_id", registration.ID).Info("Registered with Consul")
	return nil
}

func (sr *ServiceRegistry) Deregister() error {
	if err := sr.client.Agent().ServiceDeregister(sr.serviceID()); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}

	logrus.WithField("service_id", sr.serviceID()).Info("Deregistered from Consul")
	return nil
}
