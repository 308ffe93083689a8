package settings

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/aristath/rfitrainer/internal/domain"
)

// Service layers defaults, type conversion and validation over Repository.
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a settings service.
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("service", "settings").Logger(),
	}
}

// Get returns the typed value of key, falling back to its default.
func (s *Service) Get(key string) (interface{}, error) {
	def, known := SettingDefaults[key]
	if !known {
		return nil, fmt.Errorf("unknown setting %q", key)
	}

	raw, err := s.repo.Get(key)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return def, nil
	}

	switch def.(type) {
	case float64:
		f, err := strconv.ParseFloat(*raw, 64)
		if err != nil {
			s.log.Warn().Str("key", key).Str("value", *raw).Msg("Stored setting is not a number, using default")
			return def, nil
		}
		return f, nil
	default:
		return *raw, nil
	}
}

// GetString returns key as a string. Numeric settings are formatted.
func (s *Service) GetString(key string) (string, error) {
	v, err := s.Get(key)
	if err != nil {
		return "", err
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	default:
		return fmt.Sprint(val), nil
	}
}

// GetFloat returns key as a float64.
func (s *Service) GetFloat(key string) (float64, error) {
	v, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("setting %q is not numeric", key)
	}
	return f, nil
}

// Set validates and stores a single setting.
func (s *Service) Set(key string, value interface{}) error {
	def, known := SettingDefaults[key]
	if !known {
		return fmt.Errorf("unknown setting %q", key)
	}

	var stored string
	switch def.(type) {
	case float64:
		f, err := toFloat(value)
		if err != nil {
			return fmt.Errorf("setting %q: %w", key, err)
		}
		stored = strconv.FormatFloat(f, 'f', -1, 64)
	default:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("setting %q must be a string", key)
		}
		stored = str
	}

	if err := validateValue(key, stored); err != nil {
		return err
	}

	var description *string
	if d, ok := SettingDescriptions[key]; ok {
		description = &d
	}
	if err := s.repo.Set(key, stored, description); err != nil {
		return err
	}

	s.log.Info().Str("key", key).Msg("Setting updated")
	return nil
}

// GetAll returns every setting with defaults merged in. Secrets are masked.
func (s *Service) GetAll() (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(SettingDefaults))
	for key := range SettingDefaults {
		v, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		if secretKeys[key] {
			if str, _ := v.(string); str != "" {
				v = "********"
			}
		}
		result[key] = v
	}
	return result, nil
}

// Load returns the user settings singleton.
func (s *Service) Load() (UserSettings, error) {
	us := DefaultUserSettings()

	positions, err := s.GetString(KeyEnabledPositions)
	if err != nil {
		return us, err
	}
	if us.EnabledPositions, err = splitPositions(positions); err != nil {
		s.log.Warn().Err(err).Msg("Stored positions are invalid, using defaults")
		us.EnabledPositions = DefaultUserSettings().EnabledPositions
	}

	mode, err := s.GetString(KeyMode)
	if err != nil {
		return us, err
	}
	if us.Mode, err = domain.ParseMode(mode); err != nil {
		s.log.Warn().Err(err).Msg("Stored mode is invalid, using default")
		us.Mode = domain.ModeBoundary
	}

	count, err := s.GetFloat(KeyQuestionCount)
	if err != nil {
		return us, err
	}
	if count > 0 {
		us.QuestionCount = QuestionCount(count)
	}

	if us.Theme, err = s.GetString(KeyTheme); err != nil {
		return us, err
	}

	return us, nil
}

// Save validates and stores the whole singleton.
func (s *Service) Save(us UserSettings) (UserSettings, error) {
	if us.EnabledPositions == nil {
		us.EnabledPositions = []domain.Position{}
	}
	if err := us.Validate(); err != nil {
		return UserSettings{}, err
	}

	if err := s.repo.SetMany(map[string]string{
		KeyEnabledPositions: joinPositions(domain.SortPositions(us.EnabledPositions)),
		KeyMode:             string(us.Mode),
		KeyQuestionCount:    strconv.Itoa(int(us.QuestionCount)),
		KeyTheme:            us.Theme,
	}); err != nil {
		return UserSettings{}, err
	}

	s.log.Info().
		Interface("positions", us.EnabledPositions).
		Str("mode", string(us.Mode)).
		Msg("User settings saved")
	return s.Load()
}

// TogglePosition enables position if it is disabled and disables it otherwise.
func (s *Service) TogglePosition(position domain.Position) (UserSettings, error) {
	if !position.Valid() {
		return UserSettings{}, fmt.Errorf("unknown position %q", position)
	}
	us, err := s.Load()
	if err != nil {
		return UserSettings{}, err
	}

	next := make([]domain.Position, 0, len(us.EnabledPositions)+1)
	found := false
	for _, p := range us.EnabledPositions {
		if p == position {
			found = true
			continue
		}
		next = append(next, p)
	}
	if !found {
		next = append(next, position)
	}
	us.EnabledPositions = next
	return s.Save(us)
}

// SetMode changes the selection mode.
func (s *Service) SetMode(mode domain.Mode) (UserSettings, error) {
	if _, err := domain.ParseMode(string(mode)); err != nil {
		return UserSettings{}, err
	}
	us, err := s.Load()
	if err != nil {
		return UserSettings{}, err
	}
	us.Mode = mode
	return s.Save(us)
}

func validateValue(key, value string) error {
	switch key {
	case KeyEnabledPositions:
		_, err := splitPositions(value)
		return err
	case KeyMode:
		_, err := domain.ParseMode(value)
		return err
	case KeyTheme:
		if value != ThemeDark && value != ThemeLight {
			return fmt.Errorf("unknown theme %q", value)
		}
	case KeyQuestionCount, KeyR2RetentionDays:
		if f, _ := strconv.ParseFloat(value, 64); f < 0 {
			return fmt.Errorf("setting %q must not be negative", key)
		}
	}
	return nil
}

func toFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("invalid value type %T", value)
	}
}
