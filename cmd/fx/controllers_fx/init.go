package controllers_fx

import (
	"kiranaledger/internal/api/controllers"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(controllers.NewTransactionController),
	fx.Provide(controllers.NewWebhookController),
	fx.Provide(controllers.NewBatchController),
	fx.Provide(controllers.NewChainController),
)
