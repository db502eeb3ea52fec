package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/application"
	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/core/ports"
	alertsmanager "github.com/arkade-os/nftbridge/internal/infrastructure/alertsmanager"
	inmemorybank "github.com/arkade-os/nftbridge/internal/infrastructure/bank"
	"github.com/arkade-os/nftbridge/internal/infrastructure/clock"
	"github.com/arkade-os/nftbridge/internal/infrastructure/db"
	inmemoryledger "github.com/arkade-os/nftbridge/internal/infrastructure/ledger"
	inmemorylivestore "github.com/arkade-os/nftbridge/internal/infrastructure/live-store/inmemory"
	redislivestore "github.com/arkade-os/nftbridge/internal/infrastructure/live-store/redis"
	clockscheduler "github.com/arkade-os/nftbridge/internal/infrastructure/scheduler/clock"
	timescheduler "github.com/arkade-os/nftbridge/internal/infrastructure/scheduler/gocron"
	"github.com/arkade-os/nftbridge/internal/interface/grpc/handlers"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	supportedEventDbs = supportedType{
		"badger":   {},
		"inmemory": {},
		"postgres": {},
	}
	supportedDbs = supportedType{
		"badger":   {},
		"sqlite":   {},
		"postgres": {},
	}
	supportedSchedulers = supportedType{
		"gocron": {},
		"clock":  {},
	}
	supportedLiveStores = supportedType{
		"inmemory": {},
		"redis":    {},
	}
)

type Config struct {
	Datadir         string
	Port            uint32
	NoTLS           bool
	NoMacaroons     bool
	LogLevel        int
	TLSExtraIPs     []string
	TLSExtraDomains []string
	EnablePprof     bool

	DbType              string
	EventDbType         string
	DbDir               string
	DbUrl               string
	EventDbUrl          string
	EventDbDir          string
	SchedulerType       string
	LiveStoreType       string
	RedisUrl            string
	RedisTxNumOfRetries int

	OtelCollectorEndpoint string
	OtelPushInterval      int64
	PyroscopeServerURL    string
	AlertManagerURL       string
	ExplorerURL           string

	Operator           string
	SourceSpokeID      string
	DestinationSpokeID string
	SourceCustody      string
	DestinationCustody string
	ContractPairs      []string
	BlockCapacity      int
	RelayerFee         uint64
	MinBond            uint64
	MinChallengeStake  uint64
	ChallengeWindow    int64 // seconds
	UndepositCooldown  int64 // seconds
	ChallengerShareBps uint64
	VerifierCacheSize  int

	RelayerAddress     string
	RelayerBond        uint64
	RelayerInterval    int64 // seconds
	SealAfter          int64 // seconds
	WatchtowerAddress  string
	WatchtowerStake    uint64
	WatchtowerInterval int64 // seconds
	AgentFunds         uint64

	repo      ports.RepoManager
	clock     ports.Clock
	scheduler ports.SchedulerService
	liveStore ports.LiveStore
	alerts    ports.Alerts
	ledgers   map[domain.Side]*inmemoryledger.Ledger
	banks     map[domain.Side]*inmemorybank.Bank
	directory application.DirectoryService
	hub       application.HubService
	spokes    map[domain.Side]application.SpokeService
	svc       application.Service
	validated bool
}

func (c *Config) String() string {
	clone := *c
	if clone.DbUrl != "" {
		clone.DbUrl = "••••••"
	}
	if clone.EventDbUrl != "" {
		clone.EventDbUrl = "••••••"
	}
	json, err := json.MarshalIndent(clone, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	defaultDatadir             = appDataDir("nftbridge")
	DefaultPort                = 7070
	defaultDbType              = "badger"
	defaultEventDbType         = "badger"
	defaultSchedulerType       = "gocron"
	defaultLiveStoreType       = "inmemory"
	defaultRedisTxNumOfRetries = 10
	defaultLogLevel            = 4
	defaultNoTLS               = true
	defaultOtelPushInterval    = 10 // seconds
	defaultEnablePprof         = false

	defaultOperator           = "operator"
	defaultSourceSpokeID      = "source"
	defaultDestinationSpokeID = "destination"
	defaultSourceCustody      = "source-custody"
	defaultDestinationCustody = "destination-custody"
	defaultBlockCapacity      = application.DefaultBlockCapacity
	defaultRelayerFee         = uint64(application.DefaultRelayerFee)
	defaultMinBond            = uint64(application.DefaultMinBond)
	defaultMinChallengeStake  = uint64(application.DefaultMinChallengeStake)
	defaultChallengeWindow    = int64(3600)  // 1 hour
	defaultUndepositCooldown  = int64(86400) // 24 hours
	defaultChallengerShareBps = uint64(application.DefaultChallengerShareBps)
	defaultVerifierCacheSize  = 1024
	defaultAgentInterval      = int64(5) // seconds
)

// env returns a list of strings prefixed with `NFTBRIDGE_`.
// This is used as a syntax sugar for defining env vars.
func env(values ...string) []string {
	envs := make([]string, len(values))

	for i, value := range values {
		envs[i] = fmt.Sprintf("NFTBRIDGE_%s", value)
	}

	return envs
}

var (
	Datadir = &cli.StringFlag{
		Usage: "Directory to store data",
		Name:  "datadir", EnvVars: env("DATADIR"),
		Value: defaultDatadir,
	}

	Port = &cli.UintFlag{
		Usage: "Port to listen on",
		Name:  "port", EnvVars: env("PORT"),
		Value: uint(DefaultPort),
	}

	LogLevel = &cli.IntFlag{
		Usage: "Logging level (0-6, where 6 is trace)",
		Name:  "log-level", EnvVars: env("LOG_LEVEL"),
		Value: defaultLogLevel,
	}

	DbType = &cli.StringFlag{
		Usage: "Database type (postgres, sqlite, badger)",
		Name:  "db-type", EnvVars: env("DB_TYPE"),
		Value: defaultDbType,
	}

	DbUrl = &cli.StringFlag{
		Usage: "Postgres connection url if NFTBRIDGE_DB_TYPE is set to postgres",
		Name:  "pg-db-url", EnvVars: env("PG_DB_URL"),
	}

	EventDbType = &cli.StringFlag{
		Usage: "Event database type (postgres, badger, inmemory)",
		Name:  "event-db-type", EnvVars: env("EVENT_DB_TYPE"),
		Value: defaultEventDbType,
	}

	EventDbUrl = &cli.StringFlag{
		Usage: "Postgres connection url if NFTBRIDGE_EVENT_DB_TYPE is set to postgres",
		Name:  "pg-event-db-url", EnvVars: env("PG_EVENT_DB_URL"),
	}

	SchedulerType = &cli.StringFlag{
		Usage: "Scheduler type (gocron, clock)",
		Name:  "scheduler-type", EnvVars: env("SCHEDULER_TYPE"),
		Value: defaultSchedulerType,
	}

	LiveStoreType = &cli.StringFlag{
		Usage: "Live store type of the agents (redis, inmemory)",
		Name:  "live-store-type", EnvVars: env("LIVE_STORE_TYPE"),
		Value: defaultLiveStoreType,
	}

	RedisUrl = &cli.StringFlag{
		Usage: "Redis db connection url if NFTBRIDGE_LIVE_STORE_TYPE is set to redis",
		Name:  "redis-url", EnvVars: env("REDIS_URL"),
	}

	RedisTxNumOfRetries = &cli.IntFlag{
		Usage: "Maximum number of retries for Redis write operations in case of conflicts",
		Name:  "redis-num-of-retries", EnvVars: env("REDIS_NUM_OF_RETRIES"),
		Value: defaultRedisTxNumOfRetries,
	}

	NoTLS = &cli.BoolFlag{
		Usage: "Disable TLS",
		Name:  "no-tls", EnvVars: env("NO_TLS"),
		Value: defaultNoTLS,
	}

	NoMacaroons = &cli.BoolFlag{
		Usage: "Disable macaroon authentication, REST callers are then read from request bodies",
		Name:  "no-macaroons", EnvVars: env("NO_MACAROONS"),
	}

	TLSExtraIP = &cli.StringSliceFlag{
		Usage: "Extra IP addresses for TLS (comma-separated)",
		Name:  "tls-extra-ip", EnvVars: env("TLS_EXTRA_IP"),
	}

	TLSExtraDomain = &cli.StringSliceFlag{
		Usage: "Extra domains for TLS (comma-separated)",
		Name:  "tls-extra-domain", EnvVars: env("TLS_EXTRA_DOMAIN"),
	}

	OtelCollectorEndpoint = &cli.StringFlag{
		Usage: "OpenTelemetry collector endpoint",
		Name:  "otel-collector-endpoint", EnvVars: env("OTEL_COLLECTOR_ENDPOINT"),
	}

	OtelPushInterval = &cli.Int64Flag{
		Usage: "OpenTelemetry push interval in seconds",
		Name:  "otel-push-interval", EnvVars: env("OTEL_PUSH_INTERVAL"),
		Value: int64(defaultOtelPushInterval),
	}

	PyroscopeServerURL = &cli.StringFlag{
		Usage: "Pyroscope server URL, requires the otel collector endpoint",
		Name:  "pyroscope-server-url", EnvVars: env("PYROSCOPE_SERVER_URL"),
	}

	AlertManagerURL = &cli.StringFlag{
		Usage: "Alert manager URL, alerts are disabled if empty",
		Name:  "alert-manager-url", EnvVars: env("ALERT_MANAGER_URL"),
	}

	ExplorerURL = &cli.StringFlag{
		Usage: "Explorer URL used to link accounts in alerts",
		Name:  "explorer-url", EnvVars: env("EXPLORER_URL"),
	}

	EnablePprof = &cli.BoolFlag{
		Usage: "Enable pprof endpoints",
		Name:  "enable-pprof", EnvVars: env("ENABLE_PPROF"),
		Value: defaultEnablePprof,
	}

	Operator = &cli.StringFlag{
		Usage: "Account owning the directory and allowed to restore the spokes",
		Name:  "operator", EnvVars: env("OPERATOR"),
		Value: defaultOperator,
	}

	SourceSpokeID = &cli.StringFlag{
		Usage: "Id of the source spoke",
		Name:  "source-spoke-id", EnvVars: env("SOURCE_SPOKE_ID"),
		Value: defaultSourceSpokeID,
	}

	DestinationSpokeID = &cli.StringFlag{
		Usage: "Id of the destination spoke",
		Name:  "destination-spoke-id", EnvVars: env("DESTINATION_SPOKE_ID"),
		Value: defaultDestinationSpokeID,
	}

	SourceCustody = &cli.StringFlag{
		Usage: "Account holding locked tokens, bonds and stakes on the source domain",
		Name:  "source-custody", EnvVars: env("SOURCE_CUSTODY"),
		Value: defaultSourceCustody,
	}

	DestinationCustody = &cli.StringFlag{
		Usage: "Account holding bonds and stakes on the destination domain",
		Name:  "destination-custody", EnvVars: env("DESTINATION_CUSTODY"),
		Value: defaultDestinationCustody,
	}

	ContractPair = &cli.StringSliceFlag{
		Usage: "Contract pair registered at startup as <local>:<remote>, the remote is wrapped",
		Name:  "contract-pair", EnvVars: env("CONTRACT_PAIR"),
	}

	BlockCapacity = &cli.IntFlag{
		Usage: "Number of intents after which a block is sealed",
		Name:  "block-capacity", EnvVars: env("BLOCK_CAPACITY"),
		Value: defaultBlockCapacity,
	}

	RelayerFee = &cli.Uint64Flag{
		Usage: "Fee paid by a receiver to the relayer of the block it claims from",
		Name:  "relayer-fee", EnvVars: env("RELAYER_FEE"),
		Value: defaultRelayerFee,
	}

	MinBond = &cli.Uint64Flag{
		Usage: "Minimum bond of a relayer",
		Name:  "min-bond", EnvVars: env("MIN_BOND"),
		Value: defaultMinBond,
	}

	MinChallengeStake = &cli.Uint64Flag{
		Usage: "Minimum stake of a challenge",
		Name:  "min-challenge-stake", EnvVars: env("MIN_CHALLENGE_STAKE"),
		Value: defaultMinChallengeStake,
	}

	// TODO: Make this a cli.DurationFlag.
	ChallengeWindow = &cli.Int64Flag{
		Usage: "Challenging time window of a relayed block in seconds",
		Name:  "challenge-window", EnvVars: env("CHALLENGE_WINDOW"),
		Value: defaultChallengeWindow,

		DefaultText: fmt.Sprintf("%d (~%0.f hours)", defaultChallengeWindow,
			(time.Duration(defaultChallengeWindow) * time.Second).Hours()),
	}

	UndepositCooldown = &cli.Int64Flag{
		Usage: "Time in seconds a relayer waits between the undeposit request and the claim",
		Name:  "undeposit-cooldown", EnvVars: env("UNDEPOSIT_COOLDOWN"),
		Value: defaultUndepositCooldown,

		DefaultText: fmt.Sprintf("%d (~%0.f hours)", defaultUndepositCooldown,
			(time.Duration(defaultUndepositCooldown) * time.Second).Hours()),
	}

	ChallengerShareBps = &cli.Uint64Flag{
		Usage: "Share of a slashed bond paid to the challenger, in basis points",
		Name:  "challenger-share-bps", EnvVars: env("CHALLENGER_SHARE_BPS"),
		Value: defaultChallengerShareBps,
	}

	VerifierCacheSize = &cli.IntFlag{
		Usage: "Number of verified proofs kept in cache",
		Name:  "verifier-cache-size", EnvVars: env("VERIFIER_CACHE_SIZE"),
		Value: defaultVerifierCacheSize,
	}

	RelayerAddress = &cli.StringFlag{
		Usage: "Account of the embedded relayer, disabled if empty",
		Name:  "relayer-address", EnvVars: env("RELAYER_ADDRESS"),
	}

	RelayerBond = &cli.Uint64Flag{
		Usage: "Bond deposited by the embedded relayer, defaults to the min bond",
		Name:  "relayer-bond", EnvVars: env("RELAYER_BOND"),
	}

	RelayerInterval = &cli.Int64Flag{
		Usage: "Interval in seconds between two rounds of the embedded relayer",
		Name:  "relayer-interval", EnvVars: env("RELAYER_INTERVAL"),
		Value: defaultAgentInterval,
	}

	SealAfter = &cli.Int64Flag{
		Usage: "Seconds after which the embedded relayer seals an open block, 0 disables it",
		Name:  "seal-after", EnvVars: env("SEAL_AFTER"),
	}

	WatchtowerAddress = &cli.StringFlag{
		Usage: "Account of the embedded watchtower, disabled if empty",
		Name:  "watchtower-address", EnvVars: env("WATCHTOWER_ADDRESS"),
	}

	WatchtowerStake = &cli.Uint64Flag{
		Usage: "Stake of the challenges of the embedded watchtower, defaults to the min stake",
		Name:  "watchtower-stake", EnvVars: env("WATCHTOWER_STAKE"),
	}

	WatchtowerInterval = &cli.Int64Flag{
		Usage: "Interval in seconds between two rounds of the embedded watchtower",
		Name:  "watchtower-interval", EnvVars: env("WATCHTOWER_INTERVAL"),
		Value: defaultAgentInterval,
	}

	AgentFunds = &cli.Uint64Flag{
		Usage: "Amount credited to the embedded agents on both simulated banks at startup",
		Name:  "agent-funds", EnvVars: env("AGENT_FUNDS"),
	}
)

var Flags = []cli.Flag{
	Datadir,
	Port,
	LogLevel,
	DbType,
	DbUrl,
	EventDbType,
	EventDbUrl,
	SchedulerType,
	LiveStoreType,
	RedisUrl,
	RedisTxNumOfRetries,
	NoTLS,
	NoMacaroons,
	TLSExtraIP,
	TLSExtraDomain,
	OtelCollectorEndpoint,
	OtelPushInterval,
	PyroscopeServerURL,
	AlertManagerURL,
	ExplorerURL,
	EnablePprof,
	Operator,
	SourceSpokeID,
	DestinationSpokeID,
	SourceCustody,
	DestinationCustody,
	ContractPair,
	BlockCapacity,
	RelayerFee,
	MinBond,
	MinChallengeStake,
	ChallengeWindow,
	UndepositCooldown,
	ChallengerShareBps,
	VerifierCacheSize,
	RelayerAddress,
	RelayerBond,
	RelayerInterval,
	SealAfter,
	WatchtowerAddress,
	WatchtowerStake,
	WatchtowerInterval,
	AgentFunds,
}

func LoadConfig(c *cli.Context) (*Config, error) {
	if err := initDatadir(c); err != nil {
		return nil, fmt.Errorf("failed to create datadir: %s", err)
	}

	dbPath := filepath.Join(c.String(Datadir.Name), "db")

	var eventDbUrl string
	if c.String(EventDbType.Name) == "postgres" {
		eventDbUrl = c.String(EventDbUrl.Name)
		if eventDbUrl == "" {
			return nil, fmt.Errorf("event db type set to 'postgres' but event db url is missing")
		}
	}

	var dbUrl string
	if c.String(DbType.Name) == "postgres" {
		dbUrl = c.String(DbUrl.Name)
		if dbUrl == "" {
			return nil, fmt.Errorf("db type set to 'postgres' but db url is missing")
		}
	}

	var redisUrl string
	if c.String(LiveStoreType.Name) == "redis" {
		redisUrl = c.String(RedisUrl.Name)
		if redisUrl == "" {
			return nil, fmt.Errorf("live store type set to 'redis' but redis url is missing")
		}
	}

	relayerBond := c.Uint64(RelayerBond.Name)
	if relayerBond == 0 {
		relayerBond = c.Uint64(MinBond.Name)
	}
	watchtowerStake := c.Uint64(WatchtowerStake.Name)
	if watchtowerStake == 0 {
		watchtowerStake = c.Uint64(MinChallengeStake.Name)
	}

	return &Config{
		Datadir:               c.String(Datadir.Name),
		Port:                  uint32(c.Uint(Port.Name)),
		NoTLS:                 c.Bool(NoTLS.Name),
		NoMacaroons:           c.Bool(NoMacaroons.Name),
		LogLevel:              c.Int(LogLevel.Name),
		TLSExtraIPs:           c.StringSlice(TLSExtraIP.Name),
		TLSExtraDomains:       c.StringSlice(TLSExtraDomain.Name),
		EnablePprof:           c.Bool(EnablePprof.Name),
		DbType:                c.String(DbType.Name),
		EventDbType:           c.String(EventDbType.Name),
		DbDir:                 dbPath,
		DbUrl:                 dbUrl,
		EventDbDir:            dbPath,
		EventDbUrl:            eventDbUrl,
		SchedulerType:         c.String(SchedulerType.Name),
		LiveStoreType:         c.String(LiveStoreType.Name),
		RedisUrl:              redisUrl,
		RedisTxNumOfRetries:   c.Int(RedisTxNumOfRetries.Name),
		OtelCollectorEndpoint: c.String(OtelCollectorEndpoint.Name),
		OtelPushInterval:      c.Int64(OtelPushInterval.Name),
		PyroscopeServerURL:    c.String(PyroscopeServerURL.Name),
		AlertManagerURL:       c.String(AlertManagerURL.Name),
		ExplorerURL:           c.String(ExplorerURL.Name),

		Operator:           c.String(Operator.Name),
		SourceSpokeID:      c.String(SourceSpokeID.Name),
		DestinationSpokeID: c.String(DestinationSpokeID.Name),
		SourceCustody:      c.String(SourceCustody.Name),
		DestinationCustody: c.String(DestinationCustody.Name),
		ContractPairs:      c.StringSlice(ContractPair.Name),
		BlockCapacity:      c.Int(BlockCapacity.Name),
		RelayerFee:         c.Uint64(RelayerFee.Name),
		MinBond:            c.Uint64(MinBond.Name),
		MinChallengeStake:  c.Uint64(MinChallengeStake.Name),
		ChallengeWindow:    c.Int64(ChallengeWindow.Name),
		UndepositCooldown:  c.Int64(UndepositCooldown.Name),
		ChallengerShareBps: c.Uint64(ChallengerShareBps.Name),
		VerifierCacheSize:  c.Int(VerifierCacheSize.Name),

		RelayerAddress:     c.String(RelayerAddress.Name),
		RelayerBond:        relayerBond,
		RelayerInterval:    c.Int64(RelayerInterval.Name),
		SealAfter:          c.Int64(SealAfter.Name),
		WatchtowerAddress:  c.String(WatchtowerAddress.Name),
		WatchtowerStake:    watchtowerStake,
		WatchtowerInterval: c.Int64(WatchtowerInterval.Name),
		AgentFunds:         c.Uint64(AgentFunds.Name),
	}, nil
}

func initDatadir(c *cli.Context) error {
	datadir := c.String(Datadir.Name)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0o755)
	}
	return nil
}

func appDataDir(appName string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, "."+appName)
}

// Validate checks the config and builds every service of the bridge. It's safe to call it
// more than once.
func (c *Config) Validate() error {
	if c.validated {
		return nil
	}

	if !supportedEventDbs.supports(c.EventDbType) {
		return fmt.Errorf(
			"event db type not supported, please select one of: %s",
			supportedEventDbs,
		)
	}
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if !supportedSchedulers.supports(c.SchedulerType) {
		return fmt.Errorf(
			"scheduler type not supported, please select one of: %s",
			supportedSchedulers,
		)
	}
	if len(c.LiveStoreType) > 0 && !supportedLiveStores.supports(c.LiveStoreType) {
		return fmt.Errorf(
			"live store type not supported, please select one of: %s",
			supportedLiveStores,
		)
	}
	if c.SourceSpokeID == c.DestinationSpokeID {
		return fmt.Errorf("source and destination spokes must have different ids")
	}
	if c.ChallengeWindow < 1 {
		return fmt.Errorf("invalid challenge window, must be at least 1 second")
	}
	if c.UndepositCooldown < 0 {
		return fmt.Errorf("invalid undeposit cooldown, must not be negative")
	}
	if c.RelayerAddress != "" && c.RelayerInterval < 1 {
		return fmt.Errorf("invalid relayer interval, must be at least 1 second")
	}
	if c.WatchtowerAddress != "" && c.WatchtowerInterval < 1 {
		return fmt.Errorf("invalid watchtower interval, must be at least 1 second")
	}
	if c.SealAfter < 0 {
		return fmt.Errorf("invalid seal after, must not be negative")
	}
	pairs, err := parseContractPairs(c.ContractPairs)
	if err != nil {
		return err
	}

	c.clock = clock.NewSystemClock()
	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.liveStoreService(); err != nil {
		return err
	}
	if err := c.schedulerService(); err != nil {
		return err
	}
	if err := c.alertsService(); err != nil {
		return err
	}
	if err := c.domainServices(pairs); err != nil {
		return err
	}
	if err := c.directoryService(pairs); err != nil {
		return err
	}
	if err := c.spokeServices(); err != nil {
		return err
	}
	if err := c.fundAgents(); err != nil {
		return err
	}

	c.validated = true
	return nil
}

func (c *Config) AppService() (application.Service, error) {
	if c.svc == nil {
		if err := c.appService(); err != nil {
			return nil, err
		}
	}
	return c.svc, nil
}

// HandlerServices returns the services exposed by the REST api.
func (c *Config) HandlerServices() (handlers.Services, error) {
	if err := c.Validate(); err != nil {
		return handlers.Services{}, err
	}

	ledgers := make(map[domain.Side]handlers.Ledger, len(c.ledgers))
	for side, ledger := range c.ledgers {
		ledgers[side] = ledger
	}
	banks := make(map[domain.Side]handlers.Bank, len(c.banks))
	for side, bank := range c.banks {
		banks[side] = bank
	}

	return handlers.Services{
		Spokes:    c.spokes,
		Directory: c.directory,
		Hub:       c.hub,
		Events:    c.repo.Events(),
		Ledgers:   ledgers,
		Banks:     banks,
		Operator:  c.Operator,
	}, nil
}

func (c *Config) Close() {
	if c.repo != nil {
		c.repo.Close()
	}
}

func (c *Config) repoManager() error {
	var eventStoreConfig []interface{}
	var dataStoreConfig []interface{}
	logger := log.New()

	switch c.EventDbType {
	case "badger":
		eventStoreConfig = []interface{}{c.EventDbDir, logger}
	case "inmemory":
	case "postgres":
		eventStoreConfig = []interface{}{c.EventDbUrl, true}
	default:
		return fmt.Errorf("unknown event db type")
	}

	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	case "sqlite":
		if err := makeDirectoryIfNotExists(c.DbDir); err != nil {
			return fmt.Errorf("failed to create db dir: %s", err)
		}
		dataStoreConfig = []interface{}{c.DbDir}
	case "postgres":
		dataStoreConfig = []interface{}{c.DbUrl, true}
	default:
		return fmt.Errorf("unknown db type")
	}

	svc, err := db.NewService(db.ServiceConfig{
		EventStoreType:   c.EventDbType,
		DataStoreType:    c.DbType,
		EventStoreConfig: eventStoreConfig,
		DataStoreConfig:  dataStoreConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) liveStoreService() error {
	var liveStoreSvc ports.LiveStore
	switch c.LiveStoreType {
	case "", "inmemory":
		liveStoreSvc = inmemorylivestore.NewLiveStore()
	case "redis":
		redisOpts, err := redis.ParseURL(c.RedisUrl)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(redisOpts)
		liveStoreSvc = redislivestore.NewLiveStore(rdb, c.RedisTxNumOfRetries)
	default:
		return fmt.Errorf("unknown liveStore type")
	}

	c.liveStore = liveStoreSvc
	return nil
}

func (c *Config) schedulerService() error {
	var svc ports.SchedulerService
	var err error
	switch c.SchedulerType {
	case "gocron":
		svc = timescheduler.NewScheduler()
	case "clock":
		svc, err = clockscheduler.NewScheduler(c.clock)
	default:
		err = fmt.Errorf("unknown scheduler type")
	}
	if err != nil {
		return err
	}

	c.scheduler = svc
	return nil
}

func (c *Config) alertsService() error {
	if c.AlertManagerURL == "" {
		return nil
	}

	c.alerts = alertsmanager.NewService(c.AlertManagerURL, c.ExplorerURL)
	return nil
}

// domainServices creates the simulated ledgers and banks of the two domains.
func (c *Config) domainServices(pairs []domain.ContractPair) error {
	wrapped := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		wrapped = append(wrapped, pair.Remote)
	}

	c.ledgers = map[domain.Side]*inmemoryledger.Ledger{
		domain.SideSource:      inmemoryledger.NewLedger(c.SourceCustody),
		domain.SideDestination: inmemoryledger.NewLedger(c.DestinationCustody, wrapped...),
	}
	c.banks = map[domain.Side]*inmemorybank.Bank{
		domain.SideSource:      inmemorybank.NewBank(),
		domain.SideDestination: inmemorybank.NewBank(),
	}
	log.Warn("ledgers and banks are simulated in memory and reset at every restart")
	return nil
}

func (c *Config) directoryService(pairs []domain.ContractPair) error {
	directory, err := application.NewDirectoryService(
		c.Operator, c.repo.ContractPairs(), c.clock,
	)
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, pair := range pairs {
		remote, err := directory.Resolve(ctx, pair.Local)
		if err == nil {
			if remote != pair.Remote {
				return fmt.Errorf(
					"contract %s is already paired with %s", pair.Local, remote,
				)
			}
			continue
		}
		if err := directory.AddPair(ctx, c.Operator, pair.Local, pair.Remote); err != nil {
			return fmt.Errorf("failed to add contract pair %s: %s", pair.Local, err)
		}
	}

	c.directory = directory
	return nil
}

func (c *Config) spokeServices() error {
	custody := map[domain.Side]string{
		domain.SideSource:      c.SourceCustody,
		domain.SideDestination: c.DestinationCustody,
	}
	ids := map[domain.Side]string{
		domain.SideSource:      c.SourceSpokeID,
		domain.SideDestination: c.DestinationSpokeID,
	}

	c.spokes = make(map[domain.Side]application.SpokeService, 2)
	for _, side := range []domain.Side{domain.SideSource, domain.SideDestination} {
		spoke, err := application.NewSpokeService(application.SpokeConfig{
			ID:                 ids[side],
			Side:               side,
			Operator:           c.Operator,
			Custody:            custody[side],
			BlockCapacity:      c.BlockCapacity,
			RelayerFee:         c.RelayerFee,
			MinBond:            c.MinBond,
			MinChallengeStake:  c.MinChallengeStake,
			ChallengeWindow:    time.Duration(c.ChallengeWindow) * time.Second,
			UndepositCooldown:  time.Duration(c.UndepositCooldown) * time.Second,
			ChallengerShareBps: c.ChallengerShareBps,
			VerifierCacheSize:  c.VerifierCacheSize,
		}, c.repo, c.ledgers[side], c.banks[side], c.directory, c.clock, c.alerts)
		if err != nil {
			return err
		}
		c.spokes[side] = spoke
	}

	c.hub = application.NewHubService()
	return c.hub.AddSpokeBridge(
		context.Background(), c.spokes[domain.SideSource], c.spokes[domain.SideDestination],
	)
}

func (c *Config) fundAgents() error {
	if c.AgentFunds == 0 {
		return nil
	}

	ctx := context.Background()
	for _, account := range []string{c.RelayerAddress, c.WatchtowerAddress} {
		if account == "" {
			continue
		}
		for side, bank := range c.banks {
			balance, err := bank.Balance(ctx, account)
			if err != nil {
				return err
			}
			if balance >= c.AgentFunds {
				continue
			}
			if err := bank.Credit(ctx, account, c.AgentFunds-balance); err != nil {
				return fmt.Errorf("failed to fund %s on %s bank: %s", account, side, err)
			}
		}
	}
	return nil
}

// appService creates a relayer and a watchtower for both directions of the bridge.
func (c *Config) appService() error {
	if err := c.Validate(); err != nil {
		return err
	}

	source, destination := c.spokes[domain.SideSource], c.spokes[domain.SideDestination]
	directions := [][2]application.SpokeService{{source, destination}, {destination, source}}
	events := c.repo.Events()

	agents := make([]application.Agent, 0, 4)
	for _, direction := range directions {
		origin, target := direction[0], direction[1]
		if c.RelayerAddress != "" {
			relayer, err := application.NewRelayerAgent(application.AgentConfig{
				Address:   c.RelayerAddress,
				Interval:  time.Duration(c.RelayerInterval) * time.Second,
				Amount:    c.RelayerBond,
				SealAfter: time.Duration(c.SealAfter) * time.Second,
			}, origin, target, events, c.liveStore.RelayQueue(), c.scheduler, c.clock)
			if err != nil {
				return err
			}
			agents = append(agents, relayer)
		}
		if c.WatchtowerAddress != "" {
			watchtower, err := application.NewWatchtower(application.AgentConfig{
				Address:  c.WatchtowerAddress,
				Interval: time.Duration(c.WatchtowerInterval) * time.Second,
				Amount:   c.WatchtowerStake,
			}, origin, target, events, c.liveStore.WatchedBlocks(), c.scheduler, c.clock)
			if err != nil {
				return err
			}
			agents = append(agents, watchtower)
		}
	}

	svc, err := application.NewService(c.scheduler, agents...)
	if err != nil {
		return err
	}

	c.svc = svc
	return nil
}

func parseContractPairs(values []string) ([]domain.ContractPair, error) {
	pairs := make([]domain.ContractPair, 0, len(values))
	locals := make(map[string]struct{}, len(values))
	remotes := make(map[string]struct{}, len(values))
	for _, value := range values {
		local, remote, ok := strings.Cut(value, ":")
		if !ok || local == "" || remote == "" {
			return nil, fmt.Errorf("invalid contract pair %q, must be <local>:<remote>", value)
		}
		if _, ok := locals[local]; ok {
			return nil, fmt.Errorf("duplicated local contract %s", local)
		}
		if _, ok := remotes[remote]; ok {
			return nil, fmt.Errorf("duplicated remote contract %s", remote)
		}
		locals[local] = struct{}{}
		remotes[remote] = struct{}{}
		pairs = append(pairs, domain.ContractPair{Local: local, Remote: remote})
	}
	return pairs, nil
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	sort.Strings(types)
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
