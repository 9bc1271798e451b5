package core

// render.go maps stored content rows to HTML fragments. The markup is chosen
// solely by content type, so rendering the same row list twice yields
// byte-identical output.
//
// Content and style are emitted verbatim, without HTML escaping. This
// mirrors the system this replaces: the uploading operator is trusted, and
// stored inline styles must keep working unmodified. Known weakness; the
// upload endpoint is the only write path and sits behind the operator UI.

import "strings"

// RenderRows concatenates the fragment for each row, in order.
func RenderRows(rows []ContentRow) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(RenderRow(r))
	}
	return b.String()
}

// RenderRow produces the HTML fragment for a single row.
// T renders a heading, ST a subheading, P a paragraph, I an image. Any other
// type should have been rejected upstream; it falls back to a div.
func RenderRow(r ContentRow) string {
	style := ""
	if r.Style != "" {
		style = ` style="` + r.Style + `"`
	}

	switch r.ContentType {
	case TypeTitle:
		return "<h1" + style + ">" + r.Content + "</h1>"
	case TypeSubtitle:
		return "<h3" + style + ">" + r.Content + "</h3>"
	case TypeParagraph:
		return "<p" + style + ">" + r.Content + "</p>"
	case TypeImage:
		return `<img src="` + r.Content + `"` + style + ` alt="Imagen blog" class="blog-image">`
	default:
		return "<div" + style + ">" + r.Content + "</div>"
	}
}
