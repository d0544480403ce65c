package output

import (
	"encoding/json"

	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/models"
)

// ResultDocument is the JSON shape of a sanitization result.
type ResultDocument struct {
	Summary models.Summary      `json:"summary"`
	Bounds  []models.BoundEntry `json:"bounds"`
	Clean   *models.Table       `json:"clean"`
	Bad     *models.Table       `json:"bad"`
}

// NewResultDocument converts a result to its JSON document.
func NewResultDocument(r *models.Result) ResultDocument {
	bounds := r.Bounds.Entries()
	if bounds == nil {
		bounds = []models.BoundEntry{}
	}
	return ResultDocument{
		Summary: r.Summary(),
		Bounds:  bounds,
		Clean:   orEmpty(r.Clean),
		Bad:     orEmpty(r.Bad),
	}
}

// ToJSON serializes a table as an array of row objects.
func ToJSON(t *models.Table, pretty bool) ([]byte, error) {
	return marshal(orEmpty(t), pretty)
}

// ResultToJSON serializes a sanitization result.
func ResultToJSON(r *models.Result, pretty bool) ([]byte, error) {
	return marshal(NewResultDocument(r), pretty)
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

func orEmpty(t *models.Table) *models.Table {
	if t == nil {
		return models.NewTable()
	}
	return t
}
