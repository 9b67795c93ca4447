// ABOUTME: Embeds the authorization form template into the binary using go:embed
// ABOUTME: Provides templateFS for loading templates at runtime

package auth

import "embed"

//go:embed templates/*.html
var templateFS embed.FS
