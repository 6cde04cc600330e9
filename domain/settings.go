package domain

// DefaultDigestHour is the hour used when a user has no settings row.
const DefaultDigestHour = 9

// DigestSettings holds per-user digest preferences.
type DigestSettings struct {
	UserID               string `json:"user_id"`
	DigestEnabled        bool   `json:"digest_enabled"`
	DigestHour           int    `json:"digest_hour"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

// DefaultDigestSettings synthesizes the settings of a user who never saved any.
func DefaultDigestSettings(userID string) DigestSettings {
	return DigestSettings{
		UserID:               userID,
		DigestEnabled:        true,
		DigestHour:           DefaultDigestHour,
		NotificationsEnabled: true,
	}
}
