package dockerlogs

import (
	"context"
	"fmt"

	"github.com/juliog922/chatlink-v2/internal/domain"
)

// composeServiceLabel tags each container with the logical compose
// service it belongs to.
const composeServiceLabel = "com.docker.compose.service"

// Directory resolves logical service names against the runtime. State
// is queried fresh on every call; containers are never cached.
type Directory struct {
	rt Runtime
}

func NewDirectory(rt Runtime) *Directory {
	return &Directory{rt: rt}
}

// ResolveService returns the id of the first container (running or
// stopped) whose compose service label equals service exactly.
func (d *Directory) ResolveService(ctx context.Context, service string) (string, error) {
	containers, err := d.rt.ListContainers(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: list containers: %v", domain.ErrRuntimeUnavailable, err)
	}

	for _, c := range containers {
		if c.Labels[composeServiceLabel] == service {
			return c.ID, nil
		}
	}

	return "", domain.ErrNotFound
}

// ListServiceNames collects distinct compose service names in order of
// first appearance.
func (d *Directory) ListServiceNames(ctx context.Context) ([]string, error) {
	containers, err := d.rt.ListContainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list containers: %v", domain.ErrRuntimeUnavailable, err)
	}

	seen := make(map[string]bool)
	services := []string{}
	for _, c := range containers {
		svc, ok := c.Labels[composeServiceLabel]
		if !ok || seen[svc] {
			continue
		}
		seen[svc] = true
		services = append(services, svc)
	}

	return services, nil
}
