package config

import (
	"time"
)

// minCheckInterval is the floor for the poll interval; anything lower would
// hammer the mailbox.
const minCheckInterval = 60 * time.Second

// IMAPConfig represents the configuration for the mailbox session
type IMAPConfig struct {
	Server       string
	Email        string
	Password     string
	LookbackDays int
}

// MonitorConfig represents the configuration for the monitor loop
type MonitorConfig struct {
	CheckInterval time.Duration
	InitialLoad   int
	PollLimit     int
	Model         string
	AutoLabel     bool
}

// NotificationConfig represents the configuration for the notification channel
type NotificationConfig struct {
	NotifyOnSpam   bool
	NotifyOnHam    bool
	TelegramToken  string
	TelegramChatID string
}

// GetIMAP returns the mailbox session configuration
func (c *Config) GetIMAP() IMAPConfig {
	return IMAPConfig{
		Server:       c.GetString("imap.server"),
		Email:        c.GetString("imap.email"),
		Password:     c.GetString("imap.password"),
		LookbackDays: c.GetInt("imap.lookback_days"),
	}
}

// GetMonitor returns the monitor loop configuration. The check interval is
// clamped to the documented 60 second minimum.
func (c *Config) GetMonitor() MonitorConfig {
	interval := time.Duration(c.GetInt("monitor.check_interval")) * time.Second
	if interval < minCheckInterval {
		interval = minCheckInterval
	}
	return MonitorConfig{
		CheckInterval: interval,
		InitialLoad:   c.GetInt("monitor.initial_load"),
		PollLimit:     c.GetInt("monitor.poll_limit"),
		Model:         c.GetString("monitor.model"),
		AutoLabel:     c.GetBool("monitor.auto_label"),
	}
}

// GetNotification returns the notification channel configuration
func (c *Config) GetNotification() NotificationConfig {
	return NotificationConfig{
		NotifyOnSpam:   c.GetBool("notification.notify_on_spam"),
		NotifyOnHam:    c.GetBool("notification.notify_on_ham"),
		TelegramToken:  c.GetString("notification.telegram_token"),
		TelegramChatID: c.GetString("notification.telegram_chat_id"),
	}
}
