package cache

var syntaxCache = NewCache[string, string]()

func GetSyntaxCSS(style string) (string, bool) {
	return syntaxCache.Get(style)
}

func SetSyntaxCSS(style, css string) {
	syntaxCache.Set(style, css)
}
