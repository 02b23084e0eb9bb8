package config

// DefaultDataDir is the root of the default storage paths.
const DefaultDataDir = "/usr/local/var/portfolio/data"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = DefaultDataDir + "/db/catalog.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = DefaultDataDir + "/indices/bleve"
	}
	if cfg.Storage.HistoryDir == "" {
		cfg.Storage.HistoryDir = DefaultDataDir + "/history"
	}

	if cfg.Search.Source == "" {
		cfg.Search.Source = SourceStatic
	}
	if cfg.Search.DebounceMS == 0 {
		cfg.Search.DebounceMS = 300
	}
	if cfg.Search.FetchTimeoutMS == 0 {
		cfg.Search.FetchTimeoutMS = 2000
	}
	if cfg.Search.FuzzyThreshold == 0 {
		cfg.Search.FuzzyThreshold = 2
	}
	if cfg.Search.SnippetLength == 0 {
		cfg.Search.SnippetLength = 150
	}
	if cfg.Search.MaxSuggestions == 0 {
		cfg.Search.MaxSuggestions = 5
	}
	if cfg.Search.CacheSize == 0 {
		cfg.Search.CacheSize = 100
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 50
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 200
	}

	if cfg.History.Backend == "" {
		cfg.History.Backend = HistoryFile
	}
	if cfg.History.Key == "" {
		cfg.History.Key = "recent-searches"
	}
	if cfg.History.MaxEntries == 0 {
		cfg.History.MaxEntries = 5
	}

	if cfg.Analytics.Sinks == nil {
		cfg.Analytics.Sinks = []string{SinkLog, SinkPrometheus}
	}
	if cfg.Analytics.BufferSize == 0 {
		cfg.Analytics.BufferSize = 256
	}
	if cfg.Analytics.RedisStream == "" {
		cfg.Analytics.RedisStream = "portfolio:search-events"
	}

	cfg.Ranking.ApplyDefaults()

	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 500
	}
}
