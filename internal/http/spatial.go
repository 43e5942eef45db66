package http

import (
	"bytes"
	"html/template"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
)

var spatialTmpl = template.Must(template.New("spatial").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="300" height="200" viewBox="0 0 300 200">
	<rect x="50" y="80" width="200" height="100" fill="{{.Color}}" stroke="white" stroke-width="2"/>
	<path d="M50 80 L150 20 L250 80 Z" fill="#34495e" stroke="white" stroke-width="2"/>
	<rect x="125" y="130" width="50" height="50" fill="#f1c40f"/>
	<text x="80" y="195" fill="white" font-size="12">Spatial Load State: {{printf "%.2f" .Load}} kW</text>
</svg>
`))

func renderSpatial(state domain.SpatialState) ([]byte, error) {
	var buf bytes.Buffer
	if err := spatialTmpl.Execute(&buf, state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
