package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type ChainConfig struct {
	// RPCURL of the EVM-compatible endpoint. Empty means simulate.
	RPCURL          string `mapstructure:"rpc_url"`
	ContractAddress string `mapstructure:"contract_address"`
	// PrivateKey is the hex-encoded server-side signing key.
	PrivateKey        string `mapstructure:"private_key"`
	ExplorerBase      string `mapstructure:"explorer_base"`
	ConfirmTimeoutSec int    `mapstructure:"confirm_timeout_sec"`
	// Simulate forces the in-process simulated backend.
	Simulate        bool   `mapstructure:"simulate"`
	SimulateDelayMs int    `mapstructure:"simulate_delay_ms"`
	SimulateOwner   string `mapstructure:"simulate_owner"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type AdvisoryConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
}

type TokensConfig struct {
	CoingeckoURL string `mapstructure:"coingecko_url"`
}

type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server"`
	Chain    ChainConfig    `mapstructure:"chain"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Advisory AdvisoryConfig `mapstructure:"advisory"`
	Tokens   TokensConfig   `mapstructure:"tokens"`
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

// LoadApp loads the application configuration from the given file (default
// config.yaml in the working directory). Environment variables prefixed with
// ATOIOTA override file values, e.g. ATOIOTA_CHAIN_RPC_URL. A missing config
// file is fine: defaults plus environment apply.
func LoadApp(path string) (*AppConfig, error) {
	var err error
	appOnce.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		v.SetDefault("server.port", "8080")
		v.SetDefault("server.mode", "release")
		v.SetDefault("chain.explorer_base", "https://explorer.evm.testnet.iotaledger.net")
		v.SetDefault("chain.confirm_timeout_sec", 120)
		v.SetDefault("chain.simulate", true)
		v.SetDefault("chain.simulate_delay_ms", 3000)
		v.SetDefault("jwt.expire_hours", 24)

		v.SetEnvPrefix("ATOIOTA")
		v.AutomaticEnv()

		if readErr := v.ReadInConfig(); readErr != nil {
			if _, notFound := readErr.(viper.ConfigFileNotFoundError); !notFound {
				err = fmt.Errorf("read config: %w", readErr)
				return
			}
		}

		var c AppConfig
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// App returns the loaded application configuration. Call LoadApp once at
// startup.
func App() *AppConfig {
	return appConfig
}
