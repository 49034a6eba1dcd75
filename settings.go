// FILE: lixenwraith/datacast/settings.go
package datacast

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Option selects what happens to extra, invalid or missing values
type Option string

const (
	// OptionIgnore leaves the value out of the result
	OptionIgnore Option = "ignore"
	// OptionStore keeps a value in the result (raw value, or missing_value for missing fields)
	OptionStore Option = "store"
	// OptionRaise aborts the cast with an error
	OptionRaise Option = "raise"
	// OptionCast runs extra values through the pre- and postcasters; valid for on_extra only
	OptionCast Option = "cast"
)

// Setting names as used in Overrides and settings files
const (
	SettingOnExtra        = "on_extra"
	SettingOnInvalid      = "on_invalid"
	SettingOnMissing      = "on_missing"
	SettingMissingValue   = "missing_value"
	SettingStoreCallables = "store_callables"
	SettingResultClass    = "result_class"
	SettingPrecasters     = "precasters"
	SettingPostcasters    = "postcasters"
	SettingCastDefaults   = "cast_defaults"
	SettingRaiseOriginal  = "raise_original"
)

var settingNames = map[string]bool{
	SettingOnExtra:        true,
	SettingOnInvalid:      true,
	SettingOnMissing:      true,
	SettingMissingValue:   true,
	SettingStoreCallables: true,
	SettingResultClass:    true,
	SettingPrecasters:     true,
	SettingPostcasters:    true,
	SettingCastDefaults:   true,
	SettingRaiseOriginal:  true,
}

var errUnknownSetting = errors.New("unknown setting")

// Factory produces a value at resolution time. Usable as missing_value or as a field default.
type Factory func() any

// Settings is the effective option set of one cast.
// A Settings value is a snapshot: the engine never modifies it.
type Settings struct {
	OnExtra        Option        `toml:"on_extra"`
	OnInvalid      Option        `toml:"on_invalid"`
	OnMissing      Option        `toml:"on_missing"`
	MissingValue   any           `toml:"missing_value"`
	StoreCallables bool          `toml:"store_callables"`
	ResultClass    ResultFactory `toml:"result_class"`
	Precasters     []Func        `toml:"precasters"`
	Postcasters    []Func        `toml:"postcasters"`
	CastDefaults   bool          `toml:"cast_defaults"`
	RaiseOriginal  bool          `toml:"raise_original"`
}

// Overrides is a sparse settings layer keyed by setting name.
type Overrides map[string]any

// DefaultSettings returns the library defaults
func DefaultSettings() Settings {
	return Settings{
		OnExtra:     OptionIgnore,
		OnInvalid:   OptionRaise,
		OnMissing:   OptionRaise,
		ResultClass: NewRecord,
	}
}

// SettingNames returns all known setting names, sorted.
func SettingNames() []string {
	names := make([]string, 0, len(settingNames))
	for name := range settingNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveSettings merges the layers over the library defaults; later layers win.
func ResolveSettings(layers ...Overrides) (Settings, error) {
	s := DefaultSettings()
	for _, layer := range layers {
		var err error
		if s, err = s.With(layer); err != nil {
			return Settings{}, err
		}
	}
	return s, nil
}

// With returns a copy of s with the layer applied on top.
func (s Settings) With(layer Overrides) (Settings, error) {
	if len(layer) == 0 {
		return s, s.Validate()
	}

	// Split off the values mapstructure cannot decode generically
	scalars := make(map[string]any, len(layer))
	for rawName, value := range layer {
		name := strings.ToLower(rawName)
		if !settingNames[name] {
			return Settings{}, &ConfigurationError{Setting: rawName, Err: errUnknownSetting}
		}

		var err error
		switch name {
		case SettingMissingValue:
			s.MissingValue = value
		case SettingResultClass:
			s.ResultClass, err = toResultFactory(value)
		case SettingPrecasters:
			s.Precasters, err = toFuncs(value)
		case SettingPostcasters:
			s.Postcasters, err = toFuncs(value)
		case SettingOnExtra, SettingOnInvalid, SettingOnMissing:
			switch word := value.(type) {
			case string:
				value = strings.ToLower(strings.TrimSpace(word))
			case Option:
				value = Option(strings.ToLower(strings.TrimSpace(string(word))))
			}
			scalars[name] = value
		default:
			scalars[name] = value
		}
		if err != nil {
			return Settings{}, &ConfigurationError{Setting: rawName, Err: err}
		}
	}

	if len(scalars) > 0 {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &s,
			TagName:          "toml",
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			return Settings{}, &ConfigurationError{Err: fmt.Errorf("decoder creation failed: %w", err)}
		}
		if err := decoder.Decode(scalars); err != nil {
			return Settings{}, &ConfigurationError{Err: err}
		}
	}

	return s, s.Validate()
}

// Validate checks option words and required settings
func (s Settings) Validate() error {
	var errs []error
	if err := checkOption(SettingOnExtra, s.OnExtra, OptionIgnore, OptionStore, OptionRaise, OptionCast); err != nil {
		errs = append(errs, err)
	}
	if err := checkOption(SettingOnInvalid, s.OnInvalid, OptionIgnore, OptionStore, OptionRaise); err != nil {
		errs = append(errs, err)
	}
	if err := checkOption(SettingOnMissing, s.OnMissing, OptionIgnore, OptionStore, OptionRaise); err != nil {
		errs = append(errs, err)
	}
	if s.ResultClass == nil {
		errs = append(errs, &ConfigurationError{Setting: SettingResultClass, Err: errors.New("result class is nil")})
	}
	for name, funcs := range map[string][]Func{SettingPrecasters: s.Precasters, SettingPostcasters: s.Postcasters} {
		for i, f := range funcs {
			if f == nil {
				errs = append(errs, &ConfigurationError{Setting: name, Err: fmt.Errorf("caster %d is nil", i)})
			}
		}
	}
	return errors.Join(errs...)
}

// Overrides returns s as a complete settings layer.
func (s Settings) Overrides() Overrides {
	return Overrides{
		SettingOnExtra:        s.OnExtra,
		SettingOnInvalid:      s.OnInvalid,
		SettingOnMissing:      s.OnMissing,
		SettingMissingValue:   s.MissingValue,
		SettingStoreCallables: s.StoreCallables,
		SettingResultClass:    s.ResultClass,
		SettingPrecasters:     s.Precasters,
		SettingPostcasters:    s.Postcasters,
		SettingCastDefaults:   s.CastDefaults,
		SettingRaiseOriginal:  s.RaiseOriginal,
	}
}

// missingValue returns the value stored for a missing field under on_missing=store.
// A Factory is always invoked; a plain func() any is invoked unless store_callables is set.
func (s *Settings) missingValue() any {
	switch v := s.MissingValue.(type) {
	case Factory:
		return v()
	case func() any:
		if !s.StoreCallables {
			return v()
		}
	}
	return s.MissingValue
}

func checkOption(name string, got Option, allowed ...Option) error {
	for _, opt := range allowed {
		if got == opt {
			return nil
		}
	}
	return &ConfigurationError{Setting: name, Err: fmt.Errorf("invalid option %q, allowed %v", got, allowed)}
}

// toFuncs accepts a Func, a plain func, or a slice of either.
func toFuncs(value any) ([]Func, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case Func:
		return []Func{v}, nil
	case func(any) (any, error):
		return []Func{v}, nil
	case []Func:
		out := make([]Func, len(v))
		copy(out, v)
		return out, nil
	case []any:
		out := make([]Func, 0, len(v))
		for i, elem := range v {
			switch f := elem.(type) {
			case Func:
				out = append(out, f)
			case func(any) (any, error):
				out = append(out, f)
			default:
				return nil, fmt.Errorf("element %d: %T is not a caster", i, elem)
			}
		}
		return out, nil
	case string, []string:
		return nil, fmt.Errorf("caster names %v need a Registry to resolve", v)
	}
	return nil, fmt.Errorf("%T is not a caster list", value)
}

// toResultFactory accepts a ResultFactory, a plain factory func, or a built-in name.
func toResultFactory(value any) (ResultFactory, error) {
	switch v := value.(type) {
	case ResultFactory:
		if v == nil {
			return nil, errors.New("result class is nil")
		}
		return v, nil
	case func([]Pair) (Result, error):
		if v == nil {
			return nil, errors.New("result class is nil")
		}
		return v, nil
	case string:
		if f, ok := resultClasses[strings.ToLower(strings.TrimSpace(v))]; ok {
			return f, nil
		}
		return nil, fmt.Errorf("unknown result class %q", v)
	}
	return nil, fmt.Errorf("%T is not a result factory", value)
}
