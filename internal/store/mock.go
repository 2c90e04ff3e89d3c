package store

// MockRepository is an in-memory Repository for testing.
type MockRepository struct {
	Settings *Settings

	LoadError error
	SaveError error
	Saved     int
}

// Load returns the mock settings, or the defaults when none are set.
func (m *MockRepository) Load() (*Settings, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	if m.Settings == nil {
		return DefaultSettings(), nil
	}
	return m.Settings, nil
}

// Save records the settings.
func (m *MockRepository) Save(settings *Settings) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Settings = settings
	m.Saved++
	return nil
}
