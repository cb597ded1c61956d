package config

type PayoutConfig struct {
	Provider            string `yaml:"provider"`
	StripeSecretKey     string `yaml:"stripe_secret_key"`
	StripeWebhookSecret string `yaml:"stripe_webhook_secret"`
}

func loadPayoutConfig() *PayoutConfig {
	return &PayoutConfig{
		Provider:            getEnv("PAYOUT_PROVIDER", "stripe"),
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
	}
}
