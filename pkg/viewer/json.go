package viewer

import (
	"context"

	"github.com/arcadia-data/preview/pkg/classify"
	"github.com/arcadia-data/preview/pkg/decode"
	"github.com/arcadia-data/preview/pkg/jsonview"
)

// JSONViewer renders JSON artifacts through the navigator.
type JSONViewer struct{}

func (v *JSONViewer) Render(ctx context.Context, in Input) (*Fragment, error) {
	if in.Loading || in.Contents == nil {
		return skeleton(classify.FamilyJson), nil
	}

	value, err := decode.JSON(in.Contents)
	if err != nil {
		return nil, err
	}

	state := map[string]any{"raw": false}
	if arr, ok := value.([]any); ok {
		if groups := jsonview.GroupArray(arr); groups != nil {
			labels := make([]string, len(groups))
			for i, g := range groups {
				labels[i] = g.Label
			}
			state["groups"] = labels
			state["activeGroup"] = labels[0]
		}
	}

	return &Fragment{
		Family: classify.FamilyJson,
		HTML:   jsonview.Render(value, jsonview.Options{Standalone: true}),
		State:  state,
	}, nil
}
