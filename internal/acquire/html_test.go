package acquire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"simple", `<html><head><title>Acme Corp</title></head></html>`, "Acme Corp"},
		{"attributes", `<title data-rh="true">  Padded  </title>`, "Padded"},
		{"case insensitive", `<TITLE>Upper</TITLE>`, "Upper"},
		{"missing", `<html><body>no title</body></html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractTitle(tt.html))
		})
	}
}

func TestStripHTML(t *testing.T) {
	html := `<html><head>
		<style>body { color: red; }</style>
		<script>console.log("hi");</script>
	</head><body>
		<nav><a href="/">Home</a></nav>
		<p>Industrial &amp; marine   equipment.</p>
		<footer>Copyright</footer>
	</body></html>`

	got := stripHTML(html)
	assert.Contains(t, got, "Industrial & marine equipment.")
	assert.NotContains(t, got, "color: red")
	assert.NotContains(t, got, "console.log")
	assert.NotContains(t, got, "Home")
	assert.NotContains(t, got, "Copyright")
}

func TestStripHTML_Entities(t *testing.T) {
	got := stripHTML(`<p>a &lt; b &gt; c &quot;d&quot; e&#39;s&nbsp;end</p>`)
	assert.Equal(t, `a < b > c "d" e's end`, got)
}
