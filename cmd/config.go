package cmd

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	KafkaHost          string
	KafkaConsumerGroup string
	KafkaWebhookTopic  string
	KafkaWorkers       string

	RedisHost     string
	RedisPassword string

	CommerceAPIBaseURL     string
	CommerceAPIAccessToken string
	CommerceAPIRateLimit   string

	ShippingRatesPath string

	ParcelCapCents            string
	ParcelAbsorbBudgetCents   string
	ParcelAbsorbItemsPerHeavy string
}
