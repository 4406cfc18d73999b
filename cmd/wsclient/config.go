package main

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	URL            string        `envconfig:"WSCLIENT_URL" default:"ws://localhost:8080/ws"`
	Token          string        `envconfig:"WSCLIENT_TOKEN"`
	ProjectID      string        `envconfig:"WSCLIENT_PROJECT_ID"`
	ParticipantUID string        `envconfig:"WSCLIENT_PARTICIPANT_UID"`
	ChatID         string        `envconfig:"WSCLIENT_CHAT_ID"`
	Message        string        `envconfig:"WSCLIENT_MESSAGE"`
	Duration       time.Duration `envconfig:"WSCLIENT_DURATION" default:"30s"`
	Colours        bool          `envconfig:"WSCLIENT_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if cfg.Token == "" && (cfg.ProjectID == "" || cfg.ParticipantUID == "") {
		return Config{}, fmt.Errorf("set WSCLIENT_TOKEN, or WSCLIENT_PROJECT_ID and WSCLIENT_PARTICIPANT_UID")
	}
	return cfg, nil
}

// DialURL carries the credentials as query parameters, the way a browser
// client has to.
func (c Config) DialURL() (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("invalid WSCLIENT_URL: %w", err)
	}
	query := u.Query()
	if c.Token != "" {
		query.Set("token", c.Token)
	} else {
		query.Set("projectId", c.ProjectID)
		query.Set("participantUid", c.ParticipantUID)
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}
