package decode

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/arcadia-data/preview/pkg/classify"
)

// JSON parses a JSON payload into its generic in-memory form. There is no
// further decode step; grouping of large arrays happens in the navigator.
func JSON(data []byte) (any, error) {
	var v any
	if err := sonic.Unmarshal(data, &v); err != nil {
		return nil, newError(classify.FamilyJson, fmt.Sprintf("parse: %v", err))
	}
	return v, nil
}

// JSONLiteral serializes a value with JSON literal semantics: strings are
// quoted, numbers and booleans are bare, nil renders as the literal null.
func JSONLiteral(v any) string {
	b, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
