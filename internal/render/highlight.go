package render

import (
	"bytes"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/debemdeboas/campaign-editor/internal/cache"
)

func sourceFormatter() *html.Formatter {
	return html.New(
		html.WithClasses(true),
		html.TabWidth(4),
		html.WithLineNumbers(true),
		html.WrapLongLines(true),
	)
}

// HighlightMarkup renders campaign HTML as a highlighted, line-numbered
// listing. Pair it with StyleCSS for the same style.
func HighlightMarkup(markup, style string) (string, error) {
	lexer := lexers.Get("html")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, markup)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := sourceFormatter().Format(&buf, getStyle(style), iterator); err != nil {
		return "", err
	}

	return `<div class="campaign-source">` + buf.String() + `</div>`, nil
}

// HighlightMarkupCached memoizes HighlightMarkup per content hash and style.
func HighlightMarkupCached(markup, contentHash, style string) (string, error) {
	if contentHash == "" {
		renderLogger.Warn().Msg("Content hash is empty, skipping cache check")
		return HighlightMarkup(markup, style)
	}

	if cached, ok := cache.GetRenderedSource(contentHash, style); ok {
		renderLogger.Debug().Str("contentHash", contentHash).Str("style", style).Msg("Cache hit for highlighted source")
		return cached, nil
	}

	out, err := HighlightMarkup(markup, style)
	if err != nil {
		return "", err
	}
	cache.SetRenderedSource(contentHash, style, out)
	return out, nil
}

// StyleCSS returns the stylesheet matching HighlightMarkup output for style.
func StyleCSS(style string) string {
	if css, ok := cache.GetSyntaxCSS(style); ok {
		return css
	}

	var buf strings.Builder
	s := getStyle(style)

	bg := s.Get(chroma.Background)
	if !bg.Colour.IsSet() {
		// Pick readable text for styles that only set a background.
		luminance := (0.299*float64(bg.Background.Red()) +
			0.587*float64(bg.Background.Green()) +
			0.114*float64(bg.Background.Blue())) / 255
		if luminance > 0.5 {
			buf.WriteString(".chroma { color: #181818; }\n")
		}
	}

	if err := sourceFormatter().WriteCSS(&buf, s); err != nil {
		renderLogger.Error().Err(err).Str("style", style).Msg("Failed to write style CSS")
		return ""
	}

	css := buf.String()
	cache.SetSyntaxCSS(style, css)
	return css
}

func StyleNames() []string {
	names := styles.Names()
	slices.Sort(names)
	return names
}

// IsStyle reports whether name is a registered chroma style.
func IsStyle(name string) bool {
	_, ok := styles.Registry[name]
	return ok
}
