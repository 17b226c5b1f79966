package vanilla

import (
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-intake/pkg/render"
)

func themeStylesheets(cfg *theme.RendererConfig) []string {
	if cfg == nil || cfg.AssetURL == nil {
		return nil
	}
	if href := strings.TrimSpace(cfg.AssetURL(render.AssetStylesheet)); href != "" {
		return []string{href}
	}
	return nil
}

func themeCSSVars(cfg *theme.RendererConfig) string {
	if cfg == nil {
		return ""
	}
	return render.CSSVarsStyle(cfg.CSSVars)
}

// runtimeURL prefers the page's explicit runtime script over the theme asset.
func runtimeURL(page render.Page) string {
	if url := strings.TrimSpace(page.RuntimeURL); url != "" {
		return url
	}
	if page.Theme == nil || page.Theme.AssetURL == nil {
		return ""
	}
	return strings.TrimSpace(page.Theme.AssetURL(render.AssetRuntime))
}
