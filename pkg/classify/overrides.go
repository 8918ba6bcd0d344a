package classify

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// overrideSchema validates extension-override documents. Deployments map
// additional extensions onto known families without a rebuild.
const overrideSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["extensions"],
	"additionalProperties": false,
	"properties": {
		"extensions": {
			"type": "object",
			"additionalProperties": {
				"type": "string",
				"enum": ["audio", "image", "video", "csv", "xlsx", "docx",
					"pdf", "json", "markdown", "html", "code", "text"]
			}
		}
	}
}`

var (
	overrideMu  sync.RWMutex
	overrideTab map[string]Classification
)

// LoadOverrides installs extension-to-family overrides from a JSON
// document. The document is validated against the embedded schema before
// any table is replaced; an invalid document leaves the current table
// untouched.
func LoadOverrides(doc []byte) error {
	schema, err := jsonschema.CompileString("overrides.schema.json", overrideSchema)
	if err != nil {
		return fmt.Errorf("compile override schema: %w", err)
	}

	var parsed any
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return fmt.Errorf("parse overrides: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("validate overrides: %w", err)
	}

	root := parsed.(map[string]any)
	exts := root["extensions"].(map[string]any)

	tab := make(map[string]Classification, len(exts))
	for ext, fam := range exts {
		family := FormatFamily(fam.(string))
		tab[strings.ToLower(strings.TrimPrefix(ext, "."))] = Classification{
			Family:    family,
			Transport: defaultTransport(family),
		}
	}

	overrideMu.Lock()
	overrideTab = tab
	overrideMu.Unlock()
	return nil
}

// ResetOverrides clears any installed overrides.
func ResetOverrides() {
	overrideMu.Lock()
	overrideTab = nil
	overrideMu.Unlock()
}

func lookupOverride(base string) (Classification, bool) {
	overrideMu.RLock()
	defer overrideMu.RUnlock()
	if overrideTab == nil {
		return Classification{}, false
	}
	c, ok := overrideTab[Extension(base)]
	return c, ok
}

func defaultTransport(f FormatFamily) TransportMode {
	switch f {
	case FamilyAudio, FamilyImage, FamilyVideo:
		return TransportBlob
	case FamilyXlsx, FamilyDocx:
		return TransportBinary
	case FamilyPdf:
		return TransportDeferred
	default:
		return TransportText
	}
}
