// Package public holds the static assets served under /assets.
package public

import "embed"

//go:embed assets
var Assets embed.FS
