package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	// ListenPortKey is the port where the HTTP interface will listen on
	ListenPortKey = "LISTEN_PORT"
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// NetworkKey is the network to use. Either "mainnet", "testnet" or "regtest"
	NetworkKey = "NETWORK"

	// BtcXpubKey, LbtcXpubKey and EthXpubKey are the merchant extended public
	// keys. An asset is accepted only if its key is set.
	BtcXpubKey  = "BTC_XPUB"
	LbtcXpubKey = "LBTC_XPUB"
	EthXpubKey  = "ETH_XPUB"
	// DerivationPathKey is the path template, relative to the xpubs, receiving
	// addresses are derived at
	DerivationPathKey = "DERIVATION_PATH"
	// BtcAddressTypeKey is the default address type for bitcoin orders
	BtcAddressTypeKey = "BTC_ADDRESS_TYPE"
	// LbtcAddressTypeKey is the default address type for liquid orders
	LbtcAddressTypeKey = "LBTC_ADDRESS_TYPE"

	// BtcExplorerURLKey is the endpoint of the Esplora REST API for bitcoin
	BtcExplorerURLKey = "BTC_EXPLORER_URL"
	// LbtcExplorerURLKey is the endpoint of the Esplora REST API for liquid
	LbtcExplorerURLKey = "LBTC_EXPLORER_URL"
	// EthRPCURLKey is the JSON-RPC endpoint of an ethereum node
	EthRPCURLKey = "ETH_RPC_URL"
	// ExplorerRequestTimeoutKey are the milliseconds to wait for HTTP responses before timeouts
	ExplorerRequestTimeoutKey = "EXPLORER_REQUEST_TIMEOUT"
	// ExplorerRateLimitKey is the max number of requests per second to every
	// chain data source
	ExplorerRateLimitKey = "EXPLORER_RATE_LIMIT"
	// EthBalanceLookbackKey is the number of blocks scanned to find when an
	// ethereum balance was funded
	EthBalanceLookbackKey = "ETH_BALANCE_LOOKBACK"
	// CrawlIntervalKey is the interval in milliseconds between two checks of the same pending order
	CrawlIntervalKey = "CRAWL_INTERVAL"
	// FetchRetriesKey is the number of retries of a failed chain data request
	FetchRetriesKey = "FETCH_RETRIES"

	// RequiredConfirmationsKey is the default number of confirmations for an
	// order to be confirmed
	RequiredConfirmationsKey = "REQUIRED_CONFIRMATIONS"
	// AcceptWithoutHashWindowKey is the max age in minutes of a confirmed
	// balance without tx hash to be accepted as payment
	AcceptWithoutHashWindowKey = "ACCEPT_WITHOUT_HASH_WINDOW"
	// StrictModeKey disables the acceptance of balances without tx hash
	StrictModeKey = "STRICT_MODE"
	// OrderTTLKey is the lifetime in seconds of orders. 0 means forever
	OrderTTLKey = "ORDER_TTL"

	// PriceSourceKey is the source of exchange rates. Either "kraken" or "fixed"
	PriceSourceKey = "PRICE_SOURCE"
	// FixedRatesKey is the table of rates used by the fixed price source, ie. BTC:USD:65000,ETH:USD:3000
	FixedRatesKey = "FIXED_RATES"
	// FiatCurrenciesKey are the currencies the kraken price source subscribes to
	FiatCurrenciesKey = "FIAT_CURRENCIES"
	// MaxRateAgeKey is the max age in seconds of a rate to be usable
	MaxRateAgeKey = "MAX_RATE_AGE"
	// WebhookTimeoutKey are the milliseconds to wait for webhook endpoints to respond
	WebhookTimeoutKey = "WEBHOOK_TIMEOUT"

	DbLocation = "db"

	DBBadger   = "badger"
	DBInMemory = "inmemory"

	PriceSourceKraken = "kraken"
	PriceSourceFixed  = "fixed"
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("merchantd", false)
	validate       = validator.New()
)

// Config is a validated snapshot of the configuration.
type Config struct {
	ListenPort int    `validate:"gte=0,lte=65535"`
	Datadir    string `validate:"required"`
	LogLevel   int    `validate:"gte=0,lte=6"`
	DBType     string `validate:"oneof=badger inmemory"`
	Network    string `validate:"oneof=mainnet testnet regtest"`

	BtcXpub         string
	LbtcXpub        string
	EthXpub         string
	DerivationPath  string `validate:"required,startswith=m"`
	BtcAddressType  string `validate:"oneof=p2pkh p2sh-p2wpkh p2wpkh p2tr"`
	LbtcAddressType string `validate:"oneof=p2pkh p2sh-p2wpkh p2wpkh"`

	BtcExplorerURL         string `validate:"required_with=BtcXpub,omitempty,url"`
	LbtcExplorerURL        string `validate:"required_with=LbtcXpub,omitempty,url"`
	EthRPCURL              string `validate:"required_with=EthXpub,omitempty,url"`
	ExplorerRequestTimeout time.Duration
	ExplorerRateLimit      int    `validate:"gt=0"`
	EthBalanceLookback     uint64 `validate:"gt=0"`
	CrawlInterval          int    `validate:"gt=0"`
	FetchRetries           int    `validate:"gte=0"`

	RequiredConfirmations   int `validate:"gte=0"`
	AcceptWithoutHashWindow int `validate:"gte=0"`
	StrictMode              bool
	OrderTTL                time.Duration `validate:"gte=0"`

	PriceSource    string   `validate:"oneof=kraken fixed"`
	FixedRates     string   `validate:"required_if=PriceSource fixed"`
	FiatCurrencies []string `validate:"required_if=PriceSource kraken,dive,iso4217"`
	MaxRateAge     time.Duration
	WebhookTimeout time.Duration
}

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("MERCHANT")
	vip.AutomaticEnv()

	vip.SetDefault(ListenPortKey, 9090)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(NetworkKey, "mainnet")
	vip.SetDefault(DerivationPathKey, "m/0")
	vip.SetDefault(BtcAddressTypeKey, "p2wpkh")
	vip.SetDefault(LbtcAddressTypeKey, "p2wpkh")
	vip.SetDefault(ExplorerRequestTimeoutKey, 15000)
	vip.SetDefault(ExplorerRateLimitKey, 10)
	vip.SetDefault(EthBalanceLookbackKey, 1000)
	vip.SetDefault(CrawlIntervalKey, 10000)
	vip.SetDefault(FetchRetriesKey, 3)
	vip.SetDefault(RequiredConfirmationsKey, 1)
	vip.SetDefault(AcceptWithoutHashWindowKey, 20)
	vip.SetDefault(StrictModeKey, false)
	vip.SetDefault(OrderTTLKey, 3600)
	vip.SetDefault(PriceSourceKey, PriceSourceKraken)
	vip.SetDefault(FiatCurrenciesKey, "USD,EUR")
	vip.SetDefault(MaxRateAgeKey, 300)
	vip.SetDefault(WebhookTimeoutKey, 5000)

	if err := validateConfig(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if Get().DBType == DBBadger {
		if err := initDatadir(); err != nil {
			return fmt.Errorf("error while creating datadir: %s", err)
		}
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// Get returns a snapshot of the current configuration.
func Get() Config {
	return Config{
		ListenPort: GetInt(ListenPortKey),
		Datadir:    GetDatadir(),
		LogLevel:   GetInt(LogLevelKey),
		DBType:     strings.ToLower(GetString(DBTypeKey)),
		Network:    strings.ToLower(GetString(NetworkKey)),

		BtcXpub:         GetString(BtcXpubKey),
		LbtcXpub:        GetString(LbtcXpubKey),
		EthXpub:         GetString(EthXpubKey),
		DerivationPath:  GetString(DerivationPathKey),
		BtcAddressType:  strings.ToLower(GetString(BtcAddressTypeKey)),
		LbtcAddressType: strings.ToLower(GetString(LbtcAddressTypeKey)),

		BtcExplorerURL:         GetString(BtcExplorerURLKey),
		LbtcExplorerURL:        GetString(LbtcExplorerURLKey),
		EthRPCURL:              GetString(EthRPCURLKey),
		ExplorerRequestTimeout: milliseconds(ExplorerRequestTimeoutKey),
		ExplorerRateLimit:      GetInt(ExplorerRateLimitKey),
		EthBalanceLookback:     vip.GetUint64(EthBalanceLookbackKey),
		CrawlInterval:          GetInt(CrawlIntervalKey),
		FetchRetries:           GetInt(FetchRetriesKey),

		RequiredConfirmations:   GetInt(RequiredConfirmationsKey),
		AcceptWithoutHashWindow: GetInt(AcceptWithoutHashWindowKey),
		StrictMode:              GetBool(StrictModeKey),
		OrderTTL:                seconds(OrderTTLKey),

		PriceSource:    strings.ToLower(GetString(PriceSourceKey)),
		FixedRates:     GetString(FixedRatesKey),
		FiatCurrencies: splitList(GetString(FiatCurrenciesKey)),
		MaxRateAge:     seconds(MaxRateAgeKey),
		WebhookTimeout: milliseconds(WebhookTimeoutKey),
	}
}

func validateConfig() error {
	cfg := Get()
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	if cfg.BtcXpub == "" && cfg.LbtcXpub == "" && cfg.EthXpub == "" {
		return fmt.Errorf(
			"at least one of %s, %s or %s must be set",
			BtcXpubKey, LbtcXpubKey, EthXpubKey,
		)
	}
	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	return makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

func milliseconds(key string) time.Duration {
	return time.Duration(GetInt(key)) * time.Millisecond
}

func seconds(key string) time.Duration {
	return time.Duration(GetInt(key)) * time.Second
}

func splitList(list string) []string {
	var items []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.ToUpper(strings.TrimSpace(item)); item != "" {
			items = append(items, item)
		}
	}
	return items
}
