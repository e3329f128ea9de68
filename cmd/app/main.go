package main

import (
	"context"
	"log"
	"os"

	"kiranaledger/cmd/fx/aggregation_fx"
	"kiranaledger/cmd/fx/chain_fx"
	"kiranaledger/cmd/fx/confirmation_fx"
	"kiranaledger/cmd/fx/controllers_fx"
	"kiranaledger/cmd/fx/db_fx"
	"kiranaledger/cmd/fx/fraud_fx"
	"kiranaledger/cmd/fx/logger_fx"
	"kiranaledger/cmd/fx/messaging_fx"
	"kiranaledger/cmd/fx/repositories_fx"
	"kiranaledger/cmd/fx/transaction_fx"
	"kiranaledger/cmd/fx/verification_fx"
	"kiranaledger/cmd/fx/worker_fx"
	"kiranaledger/internal/api/controllers"
	"kiranaledger/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment directly")
	}

	app := fx.New(
		logger_fx.Module,
		db_fx.Module,
		repositories_fx.Module,
		chain_fx.Module,
		worker_fx.Module,
		fraud_fx.Module,
		verification_fx.Module,
		messaging_fx.Module,
		confirmation_fx.Module,
		aggregation_fx.Module,
		transaction_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := os.Getenv("PORT")
				if port == "" {
					port = "8080"
				}
				log.Println("Starting HTTP server at :" + port)
				if err := engine.Run(":" + port); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(
	transactionController *controllers.TransactionController,
	webhookController *controllers.WebhookController,
	batchController *controllers.BatchController,
	chainController *controllers.ChainController) *gin.Engine {

	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.CORSMiddleware())

	RegisterRoutes(r, transactionController, webhookController, batchController, chainController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	transactionController *controllers.TransactionController,
	webhookController *controllers.WebhookController,
	batchController *controllers.BatchController,
	chainController *controllers.ChainController) {

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	txnGroup := r.Group("/transactions")
	txnGroup.Use(middleware.JWTAuthMiddleware())
	txnGroup.POST("", transactionController.SubmitTransaction)
	txnGroup.GET("/:id", transactionController.GetTransaction)

	webhookGroup := r.Group("/webhooks")
	webhookGroup.Use(middleware.WebhookGuardMiddleware())
	webhookGroup.POST("/messages", webhookController.HandleInboundMessage)

	batchGroup := r.Group("/batches")
	batchGroup.Use(middleware.JWTAuthMiddleware())
	batchGroup.POST("/daily", batchController.CommitDailyBatch)

	chainAdmin := r.Group("/chain")
	chainAdmin.Use(middleware.JWTAuthMiddleware(), middleware.RoleMiddleware("admin"))
	chainAdmin.POST("/shopkeepers", chainController.RegisterShopkeeper)
	chainAdmin.POST("/credit-scores", chainController.UpdateCreditScore)
	chainAdmin.POST("/cooperatives", chainController.CreateCooperative)
	chainAdmin.POST("/cooperatives/:id/join", chainController.JoinCooperative)

	chainRead := r.Group("/chain")
	chainRead.Use(middleware.JWTAuthMiddleware())
	chainRead.GET("/transactions/next-id", chainController.GetNextTransactionID)
	chainRead.GET("/transactions/:id", chainController.GetTransaction)
	chainRead.GET("/shopkeepers/:address/credit-score", chainController.GetCreditScore)
	chainRead.GET("/shopkeepers/:address/registered", chainController.IsShopkeeperRegistered)
	chainRead.GET("/cooperatives/:id", chainController.GetCooperative)
	chainRead.GET("/shopkeepers/:address/balance", chainController.GetBalance)
}
