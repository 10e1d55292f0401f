package static

import "embed"

// FS exposes userclient static assets for HTTP serving.
//
//go:embed *.css
var FS embed.FS
