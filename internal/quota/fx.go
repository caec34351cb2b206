package quota

import (
	"github.com/koomyhq/koomy/internal/quota/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quota.service",
	fx.Provide(service.New),
)
