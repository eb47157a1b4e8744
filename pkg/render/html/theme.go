package html

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemeConfig flattens a theme selection into renderer configuration: variant
// tokens override manifest tokens, every token is exposed as a "--name" CSS
// variable, and asset keys resolve against the manifest asset prefix. A nil
// selection yields nil.
func ThemeConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: map[string]string{},
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
	}
	manifest := selection.Manifest
	if manifest == nil {
		return cfg
	}
	assets := manifest.Assets
	for key, value := range manifest.Tokens {
		cfg.Tokens[key] = value
	}
	for key, value := range manifest.Templates {
		cfg.Partials[key] = value
	}
	if variant, ok := manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			cfg.Tokens[key] = value
		}
		for key, value := range variant.Templates {
			cfg.Partials[key] = value
		}
		if variant.Assets.Prefix != "" {
			assets.Prefix = variant.Assets.Prefix
		}
		if len(variant.Assets.Files) > 0 {
			files := make(map[string]string, len(assets.Files)+len(variant.Assets.Files))
			for key, value := range assets.Files {
				files[key] = value
			}
			for key, value := range variant.Assets.Files {
				files[key] = value
			}
			assets.Files = files
		}
	}
	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+strings.TrimPrefix(key, "--")] = value
	}
	cfg.AssetURL = func(key string) string {
		file, ok := assets.Files[key]
		if !ok || file == "" {
			return ""
		}
		if assets.Prefix == "" {
			return file
		}
		return strings.TrimRight(assets.Prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
	return cfg
}

// cssVarsStyle renders CSS variables as an inline style attribute value in
// stable order.
func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key])
	}
	return strings.Join(parts, "; ")
}
