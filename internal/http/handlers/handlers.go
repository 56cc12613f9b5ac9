package handlers

import (
	"context"

	"github.com/juliog922/chatlink-v2/internal/dockerlogs"
	"github.com/juliog922/chatlink-v2/internal/service"
	"github.com/juliog922/chatlink-v2/internal/wabot"
	"github.com/juliog922/chatlink-v2/pkg/config"
)

// QRForwarder relays QR-login triggers to the device-session service.
type QRForwarder interface {
	ForwardLoginQR(ctx context.Context, to, authToken string) (*wabot.ForwardResult, error)
}

type Handlers struct {
	users     service.UserService
	forwarder QRForwarder
	directory *dockerlogs.Directory
	filter    *dockerlogs.Filter
	config    *config.Config
}

func New(
	users service.UserService,
	forwarder QRForwarder,
	directory *dockerlogs.Directory,
	filter *dockerlogs.Filter,
	config *config.Config,
) *Handlers {
	return &Handlers{
		users:     users,
		forwarder: forwarder,
		directory: directory,
		filter:    filter,
		config:    config,
	}
}
