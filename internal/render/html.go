package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"regexp"

	"github.com/valter-silva-au/gantt/internal/core"
	"github.com/valter-silva-au/gantt/pkg/models"
)

// StateElementID is the id of the script element that carries the project
// state inside an exported HTML document.
const StateElementID = "gantt-state"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ .Title }}</title>
<style>
body { margin: 0; font-family: Inter, Helvetica, Arial, sans-serif; background: #F3F4F6; }
main { padding: 24px; overflow-x: auto; }
@media print { @page { size: A4 landscape; } main { padding: 0; } .screen { display: none; } .print { display: block; } }
@media screen { .print { display: none; } }
</style>
</head>
<body>
<main>
<div class="screen">{{ .Chart }}</div>
<div class="print">{{ .PrintChart }}</div>
</main>
<script id="` + StateElementID + `" type="application/json">{{ .State }}</script>
</body>
</html>
`))

// HTML writes a standalone document holding the rendered chart and the full
// project state, which ExtractState can read back.
func HTML(w io.Writer, snap models.Snapshot, containerWidth int) error {
	snap = snap.WithDefaults()
	state, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	v := Build(snap, containerWidth)
	var screen, printed bytes.Buffer
	if err := SVG(&screen, v, Options{}); err != nil {
		return err
	}
	if err := Print(&printed, v); err != nil {
		return err
	}
	// json.Marshal escapes <, > and &, so the state cannot close the script element.
	data := struct {
		Title      string
		Chart      template.HTML
		PrintChart template.HTML
		State      template.JS
	}{
		Title:      snap.ProjectTitle,
		Chart:      template.HTML(screen.String()),
		PrintChart: template.HTML(printed.String()),
		State:      template.JS(state),
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("writing html: %w", err)
	}
	return nil
}

var stateElement = regexp.MustCompile(`(?s)<script[^>]*\bid="` + StateElementID + `"[^>]*>(.*?)</script>`)

// ExtractState returns the raw JSON state embedded in an exported document.
func ExtractState(r io.Reader, source string) ([]byte, error) {
	doc, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	m := stateElement.FindSubmatch(doc)
	if m == nil {
		return nil, &core.ImportFormatError{Source: source, Cause: "No embedded project state found."}
	}
	state := bytes.TrimSpace(m[1])
	if len(state) == 0 {
		return nil, &core.ImportFormatError{Source: source, Cause: "Embedded project state is empty."}
	}
	return state, nil
}
