package overview

import (
	"github.com/koomyhq/koomy/internal/overview/service"
	"go.uber.org/fx"
)

var Module = fx.Module("overview.service",
	fx.Provide(service.New),
)
