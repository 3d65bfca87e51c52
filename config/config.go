package config

import (
	"errors"

	"github.com/spf13/viper"

	"github.com/korjavin/quizbot/quiz"
)

// Config holds all the configuration for the application. Values come from
// viper, which merges flags, the QUIZBOT_* environment and an optional
// config file.
type Config struct {
	TelegramToken string
	VKToken       string
	RedisURL      string
	DatabasePath  string
	Rules         quiz.Rules
}

// SetDefaults registers the defaults for every key Load reads.
func SetDefaults() {
	viper.SetDefault("storage.db_path", "./data/quizbot.db")

	rules := quiz.DefaultRules()
	viper.SetDefault("game.max_tries", rules.MaxTries)
	viper.SetDefault("game.correct_reward", rules.CorrectReward)
	viper.SetDefault("game.surrender_penalty", rules.SurrenderPenalty)
	viper.SetDefault("game.exhaust_penalty", rules.ExhaustPenalty)
}

// Load reads the configuration out of viper.
func Load() *Config {
	return &Config{
		TelegramToken: viper.GetString("telegram.token"),
		VKToken:       viper.GetString("vk.token"),
		RedisURL:      viper.GetString("storage.redis_url"),
		DatabasePath:  viper.GetString("storage.db_path"),
		Rules: quiz.Rules{
			MaxTries:         viper.GetInt("game.max_tries"),
			CorrectReward:    viper.GetInt("game.correct_reward"),
			SurrenderPenalty: viper.GetInt("game.surrender_penalty"),
			ExhaustPenalty:   viper.GetInt("game.exhaust_penalty"),
		},
	}
}

// ValidateTelegram checks the fields the telegram command needs.
func (c *Config) ValidateTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("telegram.token is required (set QUIZBOT_TELEGRAM_TOKEN)")
	}
	return nil
}

// ValidateVK checks the fields the vk command needs.
func (c *Config) ValidateVK() error {
	if c.VKToken == "" {
		return errors.New("vk.token is required (set QUIZBOT_VK_TOKEN)")
	}
	return nil
}
