package config

import "fyne.io/fyne/v2"

// AppNotificationsEnabledKey is the key for the app notifications enabled preference
const AppNotificationsEnabledKey = "app_notifications_enabled"

// AppConfig holds the application-wide configuration
type AppConfig struct {
	prefs fyne.Preferences
}

// NewAppConfig creates a new AppConfig instance
func NewAppConfig(p fyne.Preferences) *AppConfig {
	return &AppConfig{prefs: p}
}

// GetAppNotificationsEnabled returns whether system notifications are enabled
func (c *AppConfig) GetAppNotificationsEnabled() bool {
	return c.prefs.BoolWithFallback(AppNotificationsEnabledKey, true)
}

// SetAppNotificationsEnabled sets whether system notifications are enabled
func (c *AppConfig) SetAppNotificationsEnabled(enabled bool) {
	c.prefs.SetBool(AppNotificationsEnabledKey, enabled)
}

// UpdateCheckEnabledKey and ThemeKey are the preference keys for the update check and UI theme.
const (
	UpdateCheckEnabledKey = "update_check_enabled"
	ThemeKey              = "theme"
)

// GetUpdateCheckEnabled returns whether the update check is enabled (default true).
func (c *AppConfig) GetUpdateCheckEnabled() bool { return c.prefs.BoolWithFallback(UpdateCheckEnabledKey, true) }

// SetUpdateCheckEnabled sets whether the update check is enabled.
func (c *AppConfig) SetUpdateCheckEnabled(enabled bool) { c.prefs.SetBool(UpdateCheckEnabledKey, enabled) }

// GetTheme returns the selected theme name (default "System").
func (c *AppConfig) GetTheme() string { return c.prefs.StringWithFallback(ThemeKey, "System") }

// SetTheme sets the selected theme name.
func (c *AppConfig) SetTheme(name string) { c.prefs.SetString(ThemeKey, name) }
