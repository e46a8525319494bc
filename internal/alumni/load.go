package alumni

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	userAgent       = "spigell/alumni-matcher"
)

var validate = validator.New()

// Loader reads the roster once from a file or an http(s) endpoint.
type Loader struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: userAgent,
	}
}

// Load resolves source as an http(s) URL or a local YAML/JSON file.
func (l *Loader) Load(ctx context.Context, source string) (*Roster, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("roster source is not configured")
	}

	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = l.fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("read roster %q: %w", source, err)
	}

	roster, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse roster %q: %w", source, err)
	}

	l.logger.Debug("roster loaded", zap.String("source", source), zap.Int("profiles", roster.Len()))
	return roster, nil
}

// Parse decodes a roster document. Both a bare list and an object with an
// "items" (or "alumni") list are accepted, in YAML or JSON.
func Parse(data []byte) (*Roster, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	items, err := rosterItems(doc)
	if err != nil {
		return nil, err
	}

	var profiles []*Profile
	cfg := &mapstructure.DecoderConfig{
		Result:  &profiles,
		TagName: "mapstructure",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(profiles))
	for idx, profile := range profiles {
		if profile == nil {
			return nil, fmt.Errorf("profile #%d is empty", idx)
		}
		if err := validate.Struct(profile); err != nil {
			return nil, fmt.Errorf("profile #%d (%s): %w", idx, profile.ID, err)
		}
		if _, dup := seen[profile.ID]; dup {
			return nil, fmt.Errorf("duplicate profile id %q", profile.ID)
		}
		seen[profile.ID] = struct{}{}
	}

	return &Roster{Items: profiles}, nil
}

func rosterItems(doc any) ([]any, error) {
	switch typed := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		return typed, nil
	case map[string]any:
		for _, key := range []string{"items", "alumni"} {
			if list, ok := typed[key].([]any); ok {
				return list, nil
			}
		}
		return nil, fmt.Errorf("roster object must contain an items list")
	default:
		return nil, fmt.Errorf("unexpected roster document type %T", doc)
	}
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", l.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)

	l.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := l.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	return io.ReadAll(reader)
}
