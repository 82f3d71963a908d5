package shadergen

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// SpecularEnvironmentMethod selects how specular environment lighting is approximated.
type SpecularEnvironmentMethod int

const (
	SpecularEnvironmentNone SpecularEnvironmentMethod = iota
	// SpecularEnvironmentFIS uses filtered importance sampling.
	SpecularEnvironmentFIS
	// SpecularEnvironmentPrefilter uses prefiltered environment maps provided by the host.
	SpecularEnvironmentPrefilter
)

var specularNames = map[SpecularEnvironmentMethod]string{
	SpecularEnvironmentNone:      "none",
	SpecularEnvironmentFIS:       "fis",
	SpecularEnvironmentPrefilter: "prefilter",
}

// IsValid reports whether m is a defined method.
func (m SpecularEnvironmentMethod) IsValid() bool {
	_, ok := specularNames[m]
	return ok
}

func (m SpecularEnvironmentMethod) String() string {
	if s, ok := specularNames[m]; ok {
		return s
	}
	return "SpecularEnvironmentMethod(" + strconv.Itoa(int(m)) + ")"
}

func (m SpecularEnvironmentMethod) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return []byte(strconv.Itoa(int(m))), nil
	}
	return []byte(m.String()), nil
}

// UnmarshalText accepts a method name or its integer value. Integer values are
// not validated so that invalid configurations reach code generation.
func (m *SpecularEnvironmentMethod) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for k, v := range specularNames {
		if v == s {
			*m = k
			return nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("unknown specular environment method %q", text)
	}
	*m = SpecularEnvironmentMethod(n)
	return nil
}

// DirectionalAlbedoMethod selects how directional albedo is computed when
// specular environment lighting uses [SpecularEnvironmentFIS].
type DirectionalAlbedoMethod int

const (
	DirectionalAlbedoAnalytic DirectionalAlbedoMethod = iota
	DirectionalAlbedoTable
	DirectionalAlbedoMonteCarlo
)

var albedoNames = map[DirectionalAlbedoMethod]string{
	DirectionalAlbedoAnalytic:   "analytic",
	DirectionalAlbedoTable:      "table",
	DirectionalAlbedoMonteCarlo: "monte_carlo",
}

// IsValid reports whether m is a defined method.
func (m DirectionalAlbedoMethod) IsValid() bool {
	_, ok := albedoNames[m]
	return ok
}

func (m DirectionalAlbedoMethod) String() string {
	if s, ok := albedoNames[m]; ok {
		return s
	}
	return "DirectionalAlbedoMethod(" + strconv.Itoa(int(m)) + ")"
}

func (m DirectionalAlbedoMethod) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return []byte(strconv.Itoa(int(m))), nil
	}
	return []byte(m.String()), nil
}

// UnmarshalText accepts a method name or its integer value. Integer values
// are not validated and are emitted as is.
func (m *DirectionalAlbedoMethod) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for k, v := range albedoNames {
		if v == s {
			*m = k
			return nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("unknown directional albedo method %q", text)
	}
	*m = DirectionalAlbedoMethod(n)
	return nil
}

// Options control code generation. Options are read only during generation.
type Options struct {
	// HwMaxActiveLightSources is the maximum number of lights the generated
	// code handles. Values below 1 are raised to 1.
	HwMaxActiveLightSources     uint                      `toml:"hw_max_active_light_sources" cbor:"1,keyasint"`
	HwSpecularEnvironmentMethod SpecularEnvironmentMethod `toml:"hw_specular_environment_method" cbor:"2,keyasint"`
	HwDirectionalAlbedoMethod   DirectionalAlbedoMethod   `toml:"hw_directional_albedo_method" cbor:"3,keyasint"`
	// FileTextureVerticalFlip flips the V texture coordinate of image lookups.
	FileTextureVerticalFlip bool `toml:"file_texture_vertical_flip" cbor:"4,keyasint"`
	// HwTransparency makes the root function return an alpha channel.
	HwTransparency bool `toml:"hw_transparency" cbor:"5,keyasint"`
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		HwMaxActiveLightSources:     3,
		HwSpecularEnvironmentMethod: SpecularEnvironmentFIS,
		HwDirectionalAlbedoMethod:   DirectionalAlbedoAnalytic,
	}
}

// MaxActiveLightSources returns HwMaxActiveLightSources clamped to at least 1.
func (o Options) MaxActiveLightSources() uint {
	return max(1, o.HwMaxActiveLightSources)
}

// optionsFile is the TOML layout of an options file:
//
//	[options]
//	hw_specular_environment_method = "prefilter"
//	hw_transparency = true
type optionsFile struct {
	Options Options `toml:"options"`
}

// DecodeOptions decodes TOML options from data on top of [DefaultOptions].
// Unknown keys are an error.
func DecodeOptions(data string) (Options, error) {
	of := optionsFile{Options: DefaultOptions()}
	md, err := toml.Decode(data, &of)
	if err != nil {
		return Options{}, fmt.Errorf("decode options: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Options{}, errors.New("unknown option keys: " + strings.Join(keys, ", "))
	}
	return of.Options, nil
}

// LoadOptionsFile reads and decodes a TOML options file.
func LoadOptionsFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read options: %w", err)
	}
	opts, err := DecodeOptions(string(data))
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("loaded options from %s: %+v", path, opts)
	return opts, nil
}

// EncodeOptions writes opts in the TOML layout read by [DecodeOptions].
func EncodeOptions(opts Options) (string, error) {
	var sb strings.Builder
	err := toml.NewEncoder(&sb).Encode(optionsFile{Options: opts})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
