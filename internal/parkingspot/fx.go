package parkingspot

import (
	"github.com/smallbiznis/parkingcontrol/internal/parkingspot/repository"
	"github.com/smallbiznis/parkingcontrol/internal/parkingspot/service"
	"go.uber.org/fx"
)

var Module = fx.Module("parkingspot.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
