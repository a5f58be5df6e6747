package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string `env:"APP_ENV" envDefault:"local"`
	StorageDSN string `env:"STORAGE_DSN" envDefault:"root:123@tcp(localhost:3309)/casino?charset=utf8mb4,utf8&parseTime=True&loc=Local"`
	HTTPServer
	Chain
	Settlement
	Events
	WSServer WSServer
}

type HTTPServer struct {
	Address     string        `env:"HTTP_ADDRESS" envDefault:"localhost:8080"`
	Timeout     time.Duration `env:"HTTP_TIMEOUT" envDefault:"4s"`
	IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

type WSServer struct {
	Address     string        `env:"WS_ADDRESS" envDefault:"localhost:8081"`
	Timeout     time.Duration `env:"WS_TIMEOUT" envDefault:"10s"`
	IdleTimeout time.Duration `env:"WS_IDLE_TIMEOUT" envDefault:"60s"`
}

type Chain struct {
	RPCEndpoints    []string `env:"RPC_ENDPOINTS" envSeparator:"," envDefault:"https://api.mainnet-beta.solana.com"`
	HouseAddress    string   `env:"HOUSE_ADDRESS" envDefault:""`
	HouseKeyPath    string   `env:"HOUSE_KEY_PATH" envDefault:""`
	PayoutTransport string   `env:"PAYOUT_TRANSPORT" envDefault:"local"`
	RemotePayoutURL string   `env:"REMOTE_PAYOUT_URL" envDefault:""`
}

type Settlement struct {
	// EscrowWindow bounds the wait for escrow confirmation; it stands in for
	// the validity window of the blockhash the stake transfer was built on.
	EscrowWindow        time.Duration `env:"ESCROW_WINDOW" envDefault:"90s"`
	ConfirmPollInterval time.Duration `env:"CONFIRM_POLL_INTERVAL" envDefault:"2s"`
	PayoutMaxAttempts   int           `env:"PAYOUT_MAX_ATTEMPTS" envDefault:"3"`
	PayoutBackoffBase   time.Duration `env:"PAYOUT_BACKOFF_BASE" envDefault:"500ms"`
}

type Events struct {
	EventMode     string `env:"EVENT_MODE" envDefault:"ws"`
	EventHubURL   string `env:"EVENT_HUB_URL" envDefault:"ws://localhost:8081/ws?room=settlement"`
	PusherAppID   string `env:"PUSHER_APP_ID" envDefault:""`
	PusherKey     string `env:"PUSHER_KEY" envDefault:""`
	PusherSecret  string `env:"PUSHER_SECRET" envDefault:""`
	PusherCluster string `env:"PUSHER_CLUSTER" envDefault:"eu"`
}

func MustLoad() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		panic("failed to parse config: " + err.Error())
	}

	return cfg
}
