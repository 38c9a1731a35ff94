package surface

import (
	"encoding/json"
	"io"

	"github.com/twealth/twealth/pkg/scoring"
)

// JSONRenderer renders a ScoreSnapshot as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, snap *scoring.ScoreSnapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
