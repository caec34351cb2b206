package membership

import (
	"github.com/koomyhq/koomy/internal/membership/repository"
	"github.com/koomyhq/koomy/internal/membership/service"
	"go.uber.org/fx"
)

var Module = fx.Module("membership.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
