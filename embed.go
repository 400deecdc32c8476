package folio

import "embed"

// EmbeddedAssets contains the static assets shipped with the default theme,
// served under /static/.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
