package community

import (
	"github.com/koomyhq/koomy/internal/community/repository"
	"github.com/koomyhq/koomy/internal/community/service"
	"go.uber.org/fx"
)

var Module = fx.Module("community.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
