package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/endpointmonitor/internal/domain"
)

var methodToken = regexp.MustCompile(`^[A-Z][A-Z0-9_-]*$`)

// rawEndpoint mirrors one entry of the endpoints file before normalisation.
type rawEndpoint struct {
	Name    string            `yaml:"name"`
	URL     string            `yaml:"url"`
	Method  string            `yaml:"method"`
	Headers map[string]string `yaml:"headers"`
	Body    interface{}       `yaml:"body"`
}

type endpointsDoc struct {
	Endpoints []rawEndpoint `yaml:"endpoints"`
}

// LoadEndpoints reads the endpoints file at path. The file is YAML and is
// either a top-level list of entries or a mapping with an "endpoints" list.
// Every invalid entry is reported, not just the first one. An empty but
// well-formed file yields an empty slice and no error.
func LoadEndpoints(path string) ([]domain.Endpoint, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read endpoints file: %w", err)
	}
	raws, err := decodeEndpoints(b)
	if err != nil {
		return nil, fmt.Errorf("parse endpoints file %s: %w", path, err)
	}

	out := make([]domain.Endpoint, 0, len(raws))
	var errs error
	for i, r := range raws {
		ep, err := r.normalize()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("endpoint[%d] %q: %w", i, r.Name, err))
			continue
		}
		out = append(out, ep)
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

func decodeEndpoints(b []byte) ([]rawEndpoint, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		var list []rawEndpoint
		if err := doc.Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	case yaml.MappingNode:
		var d endpointsDoc
		if err := doc.Decode(&d); err != nil {
			return nil, err
		}
		return d.Endpoints, nil
	case yaml.ScalarNode:
		if doc.Tag == "!!null" {
			return nil, nil
		}
	}
	return nil, errors.New("expected a list of endpoints or an \"endpoints\" mapping")
}

func (r rawEndpoint) normalize() (domain.Endpoint, error) {
	ep := domain.Endpoint{
		Name:    strings.TrimSpace(r.Name),
		URL:     strings.TrimSpace(r.URL),
		Method:  strings.ToUpper(strings.TrimSpace(r.Method)),
		Headers: make(map[string]string, len(r.Headers)),
	}
	if ep.Method == "" {
		ep.Method = "GET"
	}
	for k, v := range r.Headers {
		ep.Headers[k] = v
	}

	body, contentType, err := encodeBody(r.Body)
	if err != nil {
		return domain.Endpoint{}, err
	}
	ep.Body = body
	if contentType != "" && !hasHeader(ep.Headers, "Content-Type") {
		ep.Headers["Content-Type"] = contentType
	}

	if err := validateEndpoint(&ep); err != nil {
		return domain.Endpoint{}, err
	}
	return ep, nil
}

// encodeBody turns the YAML body value into the bytes sent on the wire.
// Strings go as-is, flat mappings as a urlencoded form and anything else as
// JSON.
func encodeBody(v interface{}) ([]byte, string, error) {
	switch b := v.(type) {
	case nil:
		return nil, "", nil
	case string:
		return []byte(b), "", nil
	case map[string]interface{}:
		form := url.Values{}
		for k, val := range b {
			switch val.(type) {
			case map[string]interface{}, []interface{}:
				return encodeJSON(v)
			}
			form.Set(k, fmt.Sprint(val))
		}
		return []byte(form.Encode()), "application/x-www-form-urlencoded", nil
	default:
		return encodeJSON(v)
	}
}

func encodeJSON(v interface{}) ([]byte, string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("encode body: %w", err)
	}
	return b, "application/json", nil
}

func hasHeader(h map[string]string, name string) bool {
	for k := range h {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

func validateEndpoint(ep *domain.Endpoint) error {
	return validation.ValidateStruct(ep,
		validation.Field(&ep.URL, validation.Required, validation.By(validateEndpointURL)),
		validation.Field(&ep.Method, validation.Required, validation.Match(methodToken)),
		validation.Field(&ep.Headers, validation.By(validateHeaders)),
	)
}

func validateEndpointURL(value interface{}) error {
	raw, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}
	if parsed.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}
	return nil
}

func validateHeaders(value interface{}) error {
	h, ok := value.(map[string]string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string map")
	}
	for k := range h {
		if k == "" || strings.ContainsAny(k, " \t:\r\n") {
			return validation.NewError("validation_invalid_header", fmt.Sprintf("invalid header name %q", k))
		}
	}
	return nil
}
