package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr   string `mapstructure:"LISTEN_ADDR"`
	DatabasePath string `mapstructure:"DB_PATH"`

	// DNS values users must publish. HostingIPs is the platform's load-balancer
	// pool; an A record matching any of them passes validation.
	TXTPrefix   string   `mapstructure:"TXT_PREFIX"`
	HostingIPs  []string `mapstructure:"HOSTING_IPS"`
	CNAMETarget string   `mapstructure:"CNAME_TARGET"`

	// Hosting platform custom-domain API.
	HostingAPIURL   string `mapstructure:"HOSTING_API_URL"`
	HostingAPIToken string `mapstructure:"HOSTING_API_TOKEN"`
	HostingSiteID   string `mapstructure:"HOSTING_SITE_ID"`

	DNSTimeout        time.Duration `mapstructure:"DNS_TIMEOUT"`
	HTTPTimeout       time.Duration `mapstructure:"HTTP_TIMEOUT"`
	AutoRetryMax      int           `mapstructure:"AUTO_RETRY_MAX"`
	AutoRetryInterval time.Duration `mapstructure:"AUTO_RETRY_INTERVAL"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("LISTEN_ADDR", ":8080")
	viper.SetDefault("DB_PATH", "domainly.db")
	viper.SetDefault("TXT_PREFIX", "blo-verification")
	viper.SetDefault("HOSTING_IPS", []string{"203.0.113.10"})
	viper.SetDefault("CNAME_TARGET", "sites.domainly.app")
	viper.SetDefault("HOSTING_API_URL", "https://hosting.domainly.app/api/v1")
	viper.SetDefault("DNS_TIMEOUT", "5s")
	viper.SetDefault("HTTP_TIMEOUT", "10s")
	viper.SetDefault("AUTO_RETRY_MAX", 5)
	viper.SetDefault("AUTO_RETRY_INTERVAL", "10m")

	viper.SetEnvPrefix("DOMAINLY")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Fallback to a .env file for local development
	viper.SetConfigFile(".env")
	// Ignore err if .env doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
