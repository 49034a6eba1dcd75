// FILE: lixenwraith/datacast/settings_test.go
package datacast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, OptionIgnore, s.OnExtra)
	assert.Equal(t, OptionRaise, s.OnInvalid)
	assert.Equal(t, OptionRaise, s.OnMissing)
	assert.Nil(t, s.MissingValue)
	assert.False(t, s.StoreCallables)
	assert.False(t, s.CastDefaults)
	assert.False(t, s.RaiseOriginal)
	assert.NotNil(t, s.ResultClass)
	assert.Empty(t, s.Precasters)
	assert.Empty(t, s.Postcasters)
	assert.NoError(t, s.Validate())
}

func TestResolveSettings(t *testing.T) {
	t.Run("LaterLayerWins", func(t *testing.T) {
		s, err := ResolveSettings(
			Overrides{SettingOnExtra: "store", SettingCastDefaults: true},
			Overrides{SettingOnExtra: "raise"},
		)
		require.NoError(t, err)
		assert.Equal(t, OptionRaise, s.OnExtra)
		assert.True(t, s.CastDefaults)
	})

	t.Run("WeakScalars", func(t *testing.T) {
		s, err := ResolveSettings(Overrides{
			SettingStoreCallables: "true",
			SettingRaiseOriginal:  1,
			SettingOnMissing:      " STORE ",
		})
		require.NoError(t, err)
		assert.True(t, s.StoreCallables)
		assert.True(t, s.RaiseOriginal)
		assert.Equal(t, OptionStore, s.OnMissing)
	})

	t.Run("CaseInsensitiveOptionWords", func(t *testing.T) {
		tests := []struct {
			name  string
			value any
		}{
			{"String", "STORE"},
			{"TypedOption", Option("STORE")},
			{"PaddedOption", Option(" Store ")},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s, err := ResolveSettings(Overrides{
					SettingOnExtra:   tt.value,
					SettingOnInvalid: tt.value,
					SettingOnMissing: tt.value,
				})
				require.NoError(t, err)
				assert.Equal(t, OptionStore, s.OnExtra)
				assert.Equal(t, OptionStore, s.OnInvalid)
				assert.Equal(t, OptionStore, s.OnMissing)
			})
		}
	})

	t.Run("CaseInsensitiveNames", func(t *testing.T) {
		s, err := ResolveSettings(Overrides{"On_Extra": "store"})
		require.NoError(t, err)
		assert.Equal(t, OptionStore, s.OnExtra)
	})

	t.Run("NoLayers", func(t *testing.T) {
		s, err := ResolveSettings()
		require.NoError(t, err)
		assert.Equal(t, DefaultSettings().OnExtra, s.OnExtra)
	})
}

func TestSettingsErrors(t *testing.T) {
	tests := []struct {
		name    string
		layer   Overrides
		setting string
	}{
		{"UnknownName", Overrides{"on_typo": "raise"}, "on_typo"},
		{"BadOption", Overrides{SettingOnExtra: "explode"}, SettingOnExtra},
		{"CastOnlyForExtra", Overrides{SettingOnInvalid: "cast"}, SettingOnInvalid},
		{"CastNotForMissing", Overrides{SettingOnMissing: OptionCast}, SettingOnMissing},
		{"CasterNamesNeedRegistry", Overrides{SettingPrecasters: "strip"}, SettingPrecasters},
		{"NotACasterList", Overrides{SettingPostcasters: 42}, SettingPostcasters},
		{"UnknownResultClass", Overrides{SettingResultClass: "tuple"}, SettingResultClass},
		{"NilCasterInList", Overrides{SettingPrecasters: []Func{nil}}, SettingPrecasters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveSettings(tt.layer)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))

			var ce *ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.setting, ce.Setting)
		})
	}

	t.Run("BadScalarType", func(t *testing.T) {
		_, err := ResolveSettings(Overrides{SettingCastDefaults: "not-a-bool"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfiguration))
	})
}

func TestSettingsWithIsCopy(t *testing.T) {
	base := DefaultSettings()
	next, err := base.With(Overrides{SettingOnExtra: OptionStore, SettingPrecasters: []Func{Strip}})
	require.NoError(t, err)

	assert.Equal(t, OptionIgnore, base.OnExtra)
	assert.Empty(t, base.Precasters)
	assert.Equal(t, OptionStore, next.OnExtra)
	assert.Len(t, next.Precasters, 1)
}

func TestSettingsOverridesRoundTrip(t *testing.T) {
	s := DefaultSettings()
	s.OnExtra = OptionCast
	s.CastDefaults = true
	s.MissingValue = "x"
	s.Postcasters = []Func{Lower}

	back, err := ResolveSettings(s.Overrides())
	require.NoError(t, err)
	assert.Equal(t, OptionCast, back.OnExtra)
	assert.True(t, back.CastDefaults)
	assert.Equal(t, "x", back.MissingValue)
	assert.Len(t, back.Postcasters, 1)
}

func TestSettingNames(t *testing.T) {
	names := SettingNames()
	assert.Len(t, names, 10)
	assert.Contains(t, names, SettingOnExtra)
	assert.Contains(t, names, SettingRaiseOriginal)
	assert.IsIncreasing(t, names)
}
