package aggregation_fx

import (
	"kiranaledger/internal/services"

	"go.uber.org/fx"
)

var Module = fx.Provide(services.NewAggregationService)
