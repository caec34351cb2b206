package audit

import (
	"github.com/koomyhq/koomy/internal/audit/repository"
	"github.com/koomyhq/koomy/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
