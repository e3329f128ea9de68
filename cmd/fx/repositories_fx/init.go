package repositories_fx

import (
	"kiranaledger/internal/repositories"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(repositories.NewLedgerRepository),
	fx.Provide(repositories.NewConfirmationRepository),
	fx.Provide(repositories.NewProductRepository),
	fx.Provide(repositories.NewBatchRepository),
)
