package config

const (
	defaultK           = 10
	defaultT           = 50
	defaultNR          = 2
	defaultNF          = 5
	defaultNS          = 5
	defaultMaxBlockLen = 16

	defaultAPIListen       = ":8081"
	defaultClientAPITarget = "http://localhost:8081"

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "mousetron.executions"
	defaultEventsBroker   = "localhost:9092"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Memory: MemoryConfig{
			K:           defaultK,
			T:           defaultT,
			NR:          defaultNR,
			NF:          defaultNF,
			NS:          defaultNS,
			MaxBlockLen: defaultMaxBlockLen,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Brokers:  []string{defaultEventsBroker},
			Topic:    defaultEventsTopic,
		},
	}
}
