package chain_fx

import (
	"os"
	"strconv"
	"time"

	"kiranaledger/internal/chain"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

var Module = fx.Provide(provideChainClient)

// provideChainClient selects the live client or the offline stub once, at
// construction. Missing credentials or an unreachable RPC degrade to the
// stub: transactions still get database records.
func provideChainClient(log zerolog.Logger) (chain.LedgerWriter, chain.LedgerReader) {
	cfg := chain.Config{
		RPCURL:          os.Getenv("CHAIN_RPC_URL"),
		PrivateKeyHex:   os.Getenv("CHAIN_PRIVATE_KEY"),
		ContractAddress: os.Getenv("CHAIN_CONTRACT_ADDRESS"),
	}

	if gasLimit, err := strconv.ParseUint(os.Getenv("CHAIN_GAS_LIMIT"), 10, 64); err == nil {
		cfg.GasLimit = gasLimit
	}
	if seconds, err := strconv.Atoi(os.Getenv("CHAIN_RECEIPT_TIMEOUT_SECONDS")); err == nil && seconds > 0 {
		cfg.ReceiptTimeout = time.Duration(seconds) * time.Second
	}

	client, err := chain.NewClient(cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("chain client unavailable; running in offline mode")
		noop := chain.NewNoopClient(log)
		return noop, noop
	}

	log.Info().Str("signer", client.SignerAddress()).Msg("chain client connected")
	return client, client
}
