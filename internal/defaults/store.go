// Package defaults loads the template defaults used when a fact is missing
// and computes new defaults by averaging sourced facts.
package defaults

import (
	"bytes"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rshade/adtech-emissions/internal/carbon"
	"github.com/rshade/adtech-emissions/internal/facts"
)

// Defaults document kinds.
const (
	KindATP              = "atp"
	KindOrganization     = "organization"
	KindProperty         = "property"
	KindEndUserDevice    = "end user device"
	KindNetworking       = "networking"
	KindTransmissionRate = "transmission rate"
)

// Paths names the defaults files to load. An empty path selects the
// embedded document of that kind.
type Paths struct {
	ATP              string
	Organization     string
	Property         string
	EndUserDevice    string
	Networking       string
	TransmissionRate string
}

// Store holds every defaults document. It is read-only after Load and safe
// for concurrent use.
type Store struct {
	atp          map[carbon.ATPTemplate]carbon.Values
	organization map[carbon.OrganizationType]carbon.Values
	property     map[carbon.PropertyChannel]carbon.Values
	devices      map[carbon.EndUserDeviceType]carbon.Values
	networking   map[carbon.ConnectionType]carbon.NetworkingConnection
	rates        map[carbon.StreamingResolution]carbon.TransmissionRate
}

// Load reads the six defaults documents. Every template of every kind must
// be present.
func Load(paths Paths, logger zerolog.Logger) (*Store, error) {
	s := &Store{}

	atp, err := read(paths.ATP, rawATP)
	if err != nil {
		return nil, err
	}
	if s.atp, err = loadValues(KindATP, atp, carbon.ATPTemplates); err != nil {
		return nil, err
	}

	org, err := read(paths.Organization, rawOrganization)
	if err != nil {
		return nil, err
	}
	if s.organization, err = loadValues(KindOrganization, org, carbon.OrganizationTypes); err != nil {
		return nil, err
	}

	prop, err := read(paths.Property, rawProperty)
	if err != nil {
		return nil, err
	}
	if s.property, err = loadValues(KindProperty, prop, carbon.PropertyChannels); err != nil {
		return nil, err
	}

	dev, err := read(paths.EndUserDevice, rawEndUserDevice)
	if err != nil {
		return nil, err
	}
	if s.devices, err = loadValues(KindEndUserDevice, dev, carbon.EndUserDevices); err != nil {
		return nil, err
	}

	netw, err := read(paths.Networking, rawNetworking)
	if err != nil {
		return nil, err
	}
	if s.networking, err = loadNetworking(netw); err != nil {
		return nil, err
	}

	rates, err := read(paths.TransmissionRate, rawTransmissionRate)
	if err != nil {
		return nil, err
	}
	if s.rates, err = loadRates(rates); err != nil {
		return nil, err
	}

	logger.Info().
		Int("atp_templates", len(s.atp)).
		Int("organization_types", len(s.organization)).
		Int("property_channels", len(s.property)).
		Int("devices", len(s.devices)).
		Int("connection_types", len(s.networking)).
		Int("transmission_rates", len(s.rates)).
		Msg("loaded defaults")
	return s, nil
}

// Embedded returns a store built from the embedded documents.
func Embedded() (*Store, error) {
	return Load(Paths{}, zerolog.Nop())
}

func read(path string, embedded []byte) ([]byte, error) {
	if path == "" {
		return embedded, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading defaults: %w", err)
	}
	return data, nil
}

// loadValues decodes a defaults document of numeric template values and
// checks that every expected template is present. Non-numeric entries are
// ignored.
func loadValues[T ~string](kind string, data []byte, want []T) (map[T]carbon.Values, error) {
	doc, err := facts.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s defaults: %w", kind, err)
	}
	templates, ok := doc["defaults"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s defaults: no 'defaults' mapping", carbon.ErrInvalidInput, kind)
	}
	out := make(map[T]carbon.Values, len(want))
	for _, t := range want {
		raw, ok := templates[string(t)].(map[string]any)
		if !ok {
			return nil, &carbon.TemplateError{Kind: kind, Template: string(t)}
		}
		v := make(carbon.Values, len(raw))
		for k, x := range raw {
			if d, ok := facts.AsDecimal(x); ok {
				v[carbon.Field(k)] = d
			}
		}
		out[t] = v
	}
	return out, nil
}

func loadNetworking(data []byte) (map[carbon.ConnectionType]carbon.NetworkingConnection, error) {
	var doc struct {
		Defaults map[string]carbon.NetworkingConnection `yaml:"defaults"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: networking defaults: %v", carbon.ErrInvalidInput, err)
	}
	out := make(map[carbon.ConnectionType]carbon.NetworkingConnection, len(carbon.ConnectionTypes))
	for _, ct := range carbon.ConnectionTypes {
		conn, ok := doc.Defaults[string(ct)]
		if !ok {
			return nil, &carbon.TemplateError{Kind: KindNetworking, Template: string(ct)}
		}
		if err := conn.Validate(); err != nil {
			return nil, fmt.Errorf("networking defaults %s: %w", ct, err)
		}
		for device, res := range conn.StreamingResolutionPerDevice {
			if _, err := carbon.ParseEndUserDevice(string(device)); err != nil {
				return nil, fmt.Errorf("networking defaults %s: %w", ct, err)
			}
			if _, err := carbon.ParseStreamingResolution(string(res)); err != nil {
				return nil, fmt.Errorf("networking defaults %s: %w", ct, err)
			}
		}
		out[ct] = conn
	}
	return out, nil
}

func loadRates(data []byte) (map[carbon.StreamingResolution]carbon.TransmissionRate, error) {
	var doc struct {
		Defaults map[string]carbon.TransmissionRate `yaml:"defaults"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: transmission rate defaults: %v", carbon.ErrInvalidInput, err)
	}
	out := make(map[carbon.StreamingResolution]carbon.TransmissionRate, len(carbon.StreamingResolutions))
	for _, r := range carbon.StreamingResolutions {
		rate, ok := doc.Defaults[string(r)]
		if !ok {
			return nil, &carbon.TemplateError{Kind: KindTransmissionRate, Template: string(r)}
		}
		if rate.Resolution == "" {
			rate.Resolution = r
		}
		out[r] = rate
	}
	return out, nil
}

// ATP returns the defaults of an ad tech platform template.
func (s *Store) ATP(t carbon.ATPTemplate) (carbon.Values, error) {
	return lookup(s.atp, KindATP, t)
}

// Organization returns the corporate defaults of an organization type.
func (s *Store) Organization(t carbon.OrganizationType) (carbon.Values, error) {
	return lookup(s.organization, KindOrganization, t)
}

// Property returns the generic template defaults of a property channel.
func (s *Store) Property(c carbon.PropertyChannel) (carbon.Values, error) {
	return lookup(s.property, KindProperty, c)
}

// EndUserDevice returns the defaults of a device type.
func (s *Store) EndUserDevice(d carbon.EndUserDeviceType) (carbon.Values, error) {
	return lookup(s.devices, KindEndUserDevice, d)
}

// Networking returns the networking model of a connection type.
func (s *Store) Networking(c carbon.ConnectionType) (carbon.NetworkingConnection, error) {
	conn, ok := s.networking[c]
	if !ok {
		return carbon.NetworkingConnection{}, &carbon.TemplateError{Kind: KindNetworking, Template: string(c)}
	}
	return conn, nil
}

// TransmissionRate returns the transmission rate of a streaming resolution.
func (s *Store) TransmissionRate(r carbon.StreamingResolution) (carbon.TransmissionRate, error) {
	rate, ok := s.rates[r]
	if !ok {
		return carbon.TransmissionRate{}, &carbon.TemplateError{Kind: KindTransmissionRate, Template: string(r)}
	}
	return rate, nil
}

// lookup returns a copy so callers may add derived values.
func lookup[T ~string](m map[T]carbon.Values, kind string, t T) (carbon.Values, error) {
	v, ok := m[t]
	if !ok {
		return nil, &carbon.TemplateError{Kind: kind, Template: string(t)}
	}
	return v.Clone(), nil
}
