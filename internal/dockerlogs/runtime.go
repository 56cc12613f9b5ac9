// Package dockerlogs resolves compose services to containers and
// retrieves filtered historical log output for a calendar day.
package dockerlogs

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// ContainerInfo is the slice of runtime state the directory needs.
type ContainerInfo struct {
	ID     string
	Labels map[string]string
}

// Runtime is the capability interface over the container runtime.
// Tests substitute a fake; production uses the Docker SDK adapter.
type Runtime interface {
	ListContainers(ctx context.Context) ([]ContainerInfo, error)
	// ContainerLogs returns the historical combined stdout+stderr
	// stream for [since, until] epoch seconds, timestamps on, full
	// tail, no follow.
	ContainerLogs(ctx context.Context, id string, since, until int64) (io.ReadCloser, error)
}

type dockerRuntime struct {
	cli *client.Client
}

// NewDockerRuntime connects using the environment defaults
// (DOCKER_HOST or the local socket) with API version negotiation.
func NewDockerRuntime() (Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("connect to docker: %w", err)
	}
	return &dockerRuntime{cli: cli}, nil
}

func (d *dockerRuntime) ListContainers(ctx context.Context) ([]ContainerInfo, error) {
	containers, err := d.cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, err
	}

	infos := make([]ContainerInfo, 0, len(containers))
	for _, c := range containers {
		infos = append(infos, ContainerInfo{ID: c.ID, Labels: c.Labels})
	}
	return infos, nil
}

func (d *dockerRuntime) ContainerLogs(ctx context.Context, id string, since, until int64) (io.ReadCloser, error) {
	return d.cli.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Since:      strconv.FormatInt(since, 10),
		Until:      strconv.FormatInt(until, 10),
		Timestamps: true,
		Follow:     false,
		Tail:       "all",
	})
}
