/* config.go
 * Contains the environment configuration. Values are read by envconfig after main has loaded the .env file
 */

package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Mongo     Mongo
	Discord   Discord
	Schedule  Schedule
	HTTPAddr  string `envconfig:"HTTP_ADDR" default:":8080"`
	Archive   string `envconfig:"ARCHIVE_PATH" default:"nfl_stats_lab.db"`
	MCPAPIKey string `envconfig:"MCP_API_KEY"`
}

type Mongo struct {
	URI                 string `envconfig:"MONGO_URI" required:"true"`
	Database            string `envconfig:"MONGO_DB" default:"nfl_stats_lab"`
	TeamsCollection     string `envconfig:"TEAMS_COLLECTION" default:"teams_2025_v2"`
	AnalyticsCollection string `envconfig:"ANALYTICS_COLLECTION" default:"team_analytics"`
}

type Discord struct {
	ProdToken string `envconfig:"DISCORD_PROD_TOKEN"`
	BetaToken string `envconfig:"DISCORD_BETA_TOKEN"`
	ChannelID string `envconfig:"DISCORD_CHANNEL_ID"`
}

type Schedule struct {
	// BaseWeek is the week number of each team's next game
	BaseWeek       int           `envconfig:"BASE_WEEK" default:"14"`
	ResyncInterval time.Duration `envconfig:"RESYNC_INTERVAL" default:"15m"`
	Timezone       string        `envconfig:"TIMEZONE" default:"America/Chicago"`
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.Schedule.BaseWeek <= 0 {
		return fmt.Errorf("BASE_WEEK must be positive, got %d", c.Schedule.BaseWeek)
	}
	if c.Schedule.ResyncInterval <= 0 {
		return fmt.Errorf("RESYNC_INTERVAL must be positive, got %s", c.Schedule.ResyncInterval)
	}
	return nil
}

// DiscordToken picks the production or beta bot token
func (c *Config) DiscordToken(beta bool) string {
	if beta {
		return c.Discord.BetaToken
	}
	return c.Discord.ProdToken
}
