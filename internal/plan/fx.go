package plan

import (
	"github.com/koomyhq/koomy/internal/plan/repository"
	"github.com/koomyhq/koomy/internal/plan/service"
	"go.uber.org/fx"
)

var Module = fx.Module("plan.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
