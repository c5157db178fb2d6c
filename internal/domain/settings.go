package domain

// UnitSystem selects the measurement system used by the presentation layer.
type UnitSystem string

const (
	UnitSystemImperial UnitSystem = "imperial"
	UnitSystemMetric   UnitSystem = "metric"
)

// ThemeMode selects the UI color scheme preference.
type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

// CacheMode controls whether price lookups may serve cached values.
type CacheMode string

const (
	CacheModeEnabled CacheMode = "enabled"
	CacheModeBypass  CacheMode = "bypass"
)

// Settings is the closed set of user preferences. Persisted as a single JSON
// document; fields missing from the persisted document keep their defaults.
type Settings struct {
	UnitSystem             UnitSystem `json:"unitSystem"`
	Currency               string     `json:"currency"`
	DecimalPlaces          int        `json:"decimalPlaces"`
	RefreshIntervalMinutes int        `json:"refreshIntervalMinutes"`
	CacheMode              CacheMode  `json:"cacheMode"`
	AutoSave               bool       `json:"autoSave"`
	Theme                  ThemeMode  `json:"theme"`
}

// DefaultSettings returns the fixed defaults every settings read starts from.
func DefaultSettings() Settings {
	return Settings{
		UnitSystem:             UnitSystemImperial,
		Currency:               "USD",
		DecimalPlaces:          2,
		RefreshIntervalMinutes: 5,
		CacheMode:              CacheModeEnabled,
		AutoSave:               true,
		Theme:                  ThemeLight,
	}
}

// SettingsPatch is a partial settings update. Nil fields are left untouched,
// so a patch overlays the current (defaults plus persisted) settings.
type SettingsPatch struct {
	UnitSystem             *UnitSystem `json:"unitSystem,omitempty"`
	Currency               *string     `json:"currency,omitempty"`
	DecimalPlaces          *int        `json:"decimalPlaces,omitempty"`
	RefreshIntervalMinutes *int        `json:"refreshIntervalMinutes,omitempty"`
	CacheMode              *CacheMode  `json:"cacheMode,omitempty"`
	AutoSave               *bool       `json:"autoSave,omitempty"`
	Theme                  *ThemeMode  `json:"theme,omitempty"`
}

// Apply merges the patch into the settings.
func (p SettingsPatch) Apply(s *Settings) {
	if p.UnitSystem != nil {
		s.UnitSystem = *p.UnitSystem
	}
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.DecimalPlaces != nil {
		s.DecimalPlaces = *p.DecimalPlaces
	}
	if p.RefreshIntervalMinutes != nil {
		s.RefreshIntervalMinutes = *p.RefreshIntervalMinutes
	}
	if p.CacheMode != nil {
		s.CacheMode = *p.CacheMode
	}
	if p.AutoSave != nil {
		s.AutoSave = *p.AutoSave
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
}

// SettingKey names a single settings field for keyed lookups.
type SettingKey string

const (
	SettingUnitSystem             SettingKey = "unitSystem"
	SettingCurrency               SettingKey = "currency"
	SettingDecimalPlaces          SettingKey = "decimalPlaces"
	SettingRefreshIntervalMinutes SettingKey = "refreshIntervalMinutes"
	SettingCacheMode              SettingKey = "cacheMode"
	SettingAutoSave               SettingKey = "autoSave"
	SettingTheme                  SettingKey = "theme"
)

// Value returns the field named by key, or false for an unknown key.
func (s Settings) Value(key SettingKey) (any, bool) {
	switch key {
	case SettingUnitSystem:
		return s.UnitSystem, true
	case SettingCurrency:
		return s.Currency, true
	case SettingDecimalPlaces:
		return s.DecimalPlaces, true
	case SettingRefreshIntervalMinutes:
		return s.RefreshIntervalMinutes, true
	case SettingCacheMode:
		return s.CacheMode, true
	case SettingAutoSave:
		return s.AutoSave, true
	case SettingTheme:
		return s.Theme, true
	default:
		return nil, false
	}
}
