package fullaccess

import (
	"github.com/koomyhq/koomy/internal/fullaccess/service"
	"go.uber.org/fx"
)

var Module = fx.Module("fullaccess.service",
	fx.Provide(service.New),
)
