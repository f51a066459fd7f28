package config

import "time"

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Driver:       "mysql",
			Host:         "localhost",
			Port:         3306,
			User:         "root",
			Password:     "",
			Database:     "films_database",
			Path:         "",
			QueryTimeout: 10 * time.Second,
		},
		Stats: StatsConfig{
			MongoURI:         "",
			MongoHost:        "localhost",
			MongoPort:        27017,
			Database:         "film_logs",
			Collection:       "search_queries",
			ProbeTimeout:     3 * time.Second,
			RecheckInterval:  0,
			OperationTimeout: 5 * time.Second,
			JournalPath:      "search_logs.json",
			JournalCapacity:  1000,
		},
		Search: SearchConfig{
			PageSize:       10,
			LogZeroResults: true,
			PopularLimit:   5,
			RecentLimit:    5,
		},
		Logging: LoggingConfig{
			Level: "warn",
			File:  "",
		},
		Metrics: MetricsConfig{
			Textfile: "",
		},
	}
}
