package settings

// Typed section views return snapshot structs. Mutating a returned struct
// does not modify the underlying document; write through Store.Save.

// DesignSettings provides typed access to the design section.
type DesignSettings struct {
	// Theme is the storefront color theme ("light", "dark").
	Theme string

	// PrimaryColor is the accent color as a hex string.
	PrimaryColor string

	// FontFamily is the storefront base font.
	FontFamily string

	// LogoURL points at the tenant's uploaded logo.
	LogoURL string
}

// SecuritySettings provides typed access to the security section.
type SecuritySettings struct {
	// EnforceTLS redirects plain HTTP storefront traffic.
	EnforceTLS bool

	// SessionTimeoutMinutes bounds admin session lifetime.
	SessionTimeoutMinutes int

	// AllowedOrigins lists origins permitted for embedded checkout.
	AllowedOrigins []string
}

// NotificationSettings provides typed access to the notifications section.
type NotificationSettings struct {
	// EmailEnabled turns on transactional email.
	EmailEnabled bool

	// SenderAddress is the from-address for outbound mail.
	SenderAddress string

	// Channels lists additional delivery channels.
	Channels []string
}

// Design returns a typed snapshot of the design section.
func (d Document) Design() DesignSettings {
	payload := d[SectionDesign]
	return DesignSettings{
		Theme:        getStringOr(payload, "theme", "light"),
		PrimaryColor: getStringOr(payload, "primaryColor", "#1a73e8"),
		FontFamily:   getStringOr(payload, "fontFamily", "sans-serif"),
		LogoURL:      getStringOr(payload, "logoUrl", ""),
	}
}

// Security returns a typed snapshot of the security section.
func (d Document) Security() SecuritySettings {
	payload := d[SectionSecurity]
	return SecuritySettings{
		EnforceTLS:            getBoolOr(payload, "enforceTls", true),
		SessionTimeoutMinutes: getIntOr(payload, "sessionTimeoutMinutes", 60),
		AllowedOrigins:        getStringSliceOr(payload, "allowedOrigins", nil),
	}
}

// Notifications returns a typed snapshot of the notifications section.
func (d Document) Notifications() NotificationSettings {
	payload := d[SectionNotifications]
	return NotificationSettings{
		EmailEnabled:  getBoolOr(payload, "emailEnabled", true),
		SenderAddress: getStringOr(payload, "senderAddress", ""),
		Channels:      getStringSliceOr(payload, "channels", nil),
	}
}

// FeatureEnabled reports whether the named flag is on in the features
// section. Absent flags are off.
func (d Document) FeatureEnabled(name string) bool {
	return getBoolOr(d[SectionFeatures], name, false)
}

func getStringOr(payload map[string]any, key, defaultValue string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return defaultValue
}

func getBoolOr(payload map[string]any, key string, defaultValue bool) bool {
	if v, ok := payload[key].(bool); ok {
		return v
	}
	return defaultValue
}

// getIntOr tolerates the numeric types JSON decoding and TOML defaults
// produce.
func getIntOr(payload map[string]any, key string, defaultValue int) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return defaultValue
	}
}

func getStringSliceOr(payload map[string]any, key string, defaultValue []string) []string {
	raw, ok := payload[key].([]any)
	if !ok {
		result := make([]string, len(defaultValue))
		copy(result, defaultValue)
		return result
	}
	result := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}
