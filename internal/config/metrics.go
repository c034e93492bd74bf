package config

// MetricsConfig controls telemetry export settings.
type MetricsConfig struct {
	Enabled      bool
	Port         string
	OtlpEndpoint string
	ServiceName  string
	OtlpInsecure bool
}

func loadMetrics(f metricsFile) MetricsConfig {
	return MetricsConfig{
		Enabled:      boolEnvOrDefault(envMetricsOn, orBool(f.Enabled, defaultMetricsOn)),
		Port:         envOrDefault(envMetricsPort, orString(f.Port, defaultMetricsPort)),
		OtlpEndpoint: envOrDefault(envOtelEndpoint, f.OtlpEndpoint),
		ServiceName:  envOrDefault(envOtelService, orString(f.ServiceName, defaultServiceName)),
		OtlpInsecure: boolEnvOrDefault(envOtelInsecure, orBool(f.OtlpInsecure, defaultOtelInsecure)),
	}
}
