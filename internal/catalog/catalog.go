// Package catalog holds the quick-reply templates keyed by use case.
//
// The loaded catalog is an immutable snapshot shared by every in-flight event.
// Load and Reload replace the snapshot as a whole; entries are never edited in
// place, and Lookup hands out copies.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/xeipuuv/gojsonschema"

	"helpline-responder/internal/domain"
)

const documentSchema = `{
	"type": "object",
	"additionalProperties": {
		"oneOf": [
			{"type": "string"},
			{
				"type": "object",
				"properties": {
					"text": {"type": "string"},
					"quick_replies": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["content_type"],
							"properties": {
								"content_type": {"type": "string"},
								"title": {"type": "string"},
								"payload": {"type": "string"},
								"image_url": {"type": "string"}
							}
						}
					}
				}
			}
		]
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

type entries map[string]domain.QuickReplyDefinition

type Catalog struct {
	source   Source
	logger   *slog.Logger
	snapshot atomic.Pointer[entries]
}

func New(src Source, logger *slog.Logger) (*Catalog, error) {
	if src == nil {
		return nil, errors.New("catalog: source must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{source: src, logger: logger}, nil
}

// Load reads and validates the whole document and installs it as the current
// snapshot. On error the previous snapshot stays in place.
func (c *Catalog) Load(ctx context.Context) error {
	raw, err := c.source.Read(ctx)
	if err != nil {
		return err
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	snap := entries(parsed)
	c.snapshot.Store(&snap)
	c.logger.Info("quick reply catalog loaded", "use_cases", len(snap))
	return nil
}

// Reload is Load under the name used by operators.
func (c *Catalog) Reload(ctx context.Context) error {
	return c.Load(ctx)
}

// Lookup returns a copy of the definition for key. An unknown key, or a
// catalog that was never loaded, reports false.
func (c *Catalog) Lookup(key string) (domain.QuickReplyDefinition, bool) {
	snap := c.snapshot.Load()
	if snap == nil {
		return domain.QuickReplyDefinition{}, false
	}
	def, ok := (*snap)[key]
	if !ok {
		return domain.QuickReplyDefinition{}, false
	}
	return def.Clone(), true
}

func (c *Catalog) Len() int {
	snap := c.snapshot.Load()
	if snap == nil {
		return 0
	}
	return len(*snap)
}

// Parse validates raw against the catalog schema and decodes it. A use case
// may map to a bare string, which becomes a text-only definition.
func Parse(raw []byte) (map[string]domain.QuickReplyDefinition, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("catalog: validate document: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("catalog: invalid document: %v", errs)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode document: %w", err)
	}
	out := make(map[string]domain.QuickReplyDefinition, len(doc))
	for key, val := range doc {
		var text string
		if err := json.Unmarshal(val, &text); err == nil {
			out[key] = domain.QuickReplyDefinition{Text: text}
			continue
		}
		var def domain.QuickReplyDefinition
		if err := json.Unmarshal(val, &def); err != nil {
			return nil, fmt.Errorf("catalog: decode %q: %w", key, err)
		}
		out[key] = def
	}
	return out, nil
}

// ResolveImages returns a copy of def whose relative image references are
// prefixed with baseURL. Absolute references and options without an image
// are left untouched, so resolving twice gives the same result.
func ResolveImages(def domain.QuickReplyDefinition, baseURL string) domain.QuickReplyDefinition {
	out := def.Clone()
	base := strings.TrimRight(baseURL, "/")
	for i, qr := range out.QuickReplies {
		if qr.ImageURL == "" || isAbsolute(qr.ImageURL) {
			continue
		}
		ref := qr.ImageURL
		if !strings.HasPrefix(ref, "/") {
			ref = "/" + ref
		}
		out.QuickReplies[i].ImageURL = base + ref
	}
	return out
}

func isAbsolute(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && u.IsAbs()
}
