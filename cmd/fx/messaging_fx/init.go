package messaging_fx

import (
	"os"
	"time"

	"kiranaledger/internal/services"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(provideMessagingService),
	fx.Provide(provideConfirmNotifier),
)

func provideMessagingService(log zerolog.Logger) services.MessagingServiceInterface {
	cfg := services.MessagingConfig{
		BaseURL:      os.Getenv("MESSAGING_BASE_URL"),
		AccountID:    os.Getenv("MESSAGING_ACCOUNT_ID"),
		AuthToken:    os.Getenv("MESSAGING_AUTH_TOKEN"),
		FromNumber:   os.Getenv("MESSAGING_FROM_NUMBER"),
		ProviderName: "gateway",
	}
	return services.NewMessagingService(cfg, log)
}

func provideConfirmNotifier(log zerolog.Logger) services.ConfirmNotifierInterface {
	return services.NewConfirmNotifier(services.NotifierConfig{
		BaseURL:     os.Getenv("CONFIRM_CALLBACK_BASE_URL"),
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}, log)
}
