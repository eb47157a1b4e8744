package chart

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// Theme names a chart palette.
type Theme string

// Built-in palettes, in index order.
const (
	ThemeViolet  Theme = "violet"
	ThemeBlue    Theme = "blue"
	ThemeCoral   Theme = "coral"
	ThemeYellow  Theme = "yellow"
	ThemeGreen   Theme = "green"
	ThemePeacock Theme = "peacock"
	ThemeIndigo  Theme = "indigo"
)

// Themes lists the built-in palettes. ThemeForIndex cycles through it.
var Themes = []Theme{ThemeViolet, ThemeBlue, ThemeCoral, ThemeYellow, ThemeGreen, ThemePeacock, ThemeIndigo}

// ThemeForIndex returns the palette for a widget position. Indices wrap
// modulo the palette count in both directions, so len(Themes) maps to the
// first palette and -1 to the last.
func ThemeForIndex(index int) Theme {
	n := len(Themes)
	return Themes[((index%n)+n)%n]
}

// ManifestName is the go-theme manifest that carries the chart palettes. Each
// palette is a variant whose tokens are color-1 … color-N.
const ManifestName = "dynamic-chart"

const colorTokenPrefix = "color-"

var builtinPalettes = map[Theme][]string{
	ThemeViolet:  {"#6638B6", "#8C6BD1", "#A084E0", "#C4B0F0", "#E2D7F9"},
	ThemeBlue:    {"#1F5FC4", "#3C82F0", "#6DA2F5", "#A3C6FA", "#D6E6FD"},
	ThemeCoral:   {"#D1453B", "#FF6A5C", "#FF8F84", "#FFB8B0", "#FFDEDA"},
	ThemeYellow:  {"#C78B00", "#F2AC00", "#FFC533", "#FFDA7A", "#FFEFC2"},
	ThemeGreen:   {"#2B8A3E", "#3FB357", "#6ACB7F", "#A3E0AF", "#D6F2DC"},
	ThemePeacock: {"#00707A", "#0096A3", "#33B5C0", "#80D2D9", "#C7EDF0"},
	ThemeIndigo:  {"#283593", "#3949AB", "#5C6BC0", "#9FA8DA", "#D1D6EE"},
}

// Palette returns a copy of a built-in palette's colors.
func Palette(t Theme) ([]string, bool) {
	colors, ok := builtinPalettes[t]
	if !ok {
		return nil, false
	}
	return append([]string(nil), colors...), true
}

// Manifest builds the go-theme manifest describing every built-in palette.
// The base tokens are the first palette.
func Manifest() *theme.Manifest {
	manifest := &theme.Manifest{
		Name:     ManifestName,
		Version:  "1.0.0",
		Tokens:   paletteTokens(builtinPalettes[Themes[0]]),
		Variants: make(map[string]theme.Variant, len(Themes)),
	}
	for _, t := range Themes {
		manifest.Variants[string(t)] = theme.Variant{Tokens: paletteTokens(builtinPalettes[t])}
	}
	return manifest
}

// ManifestRegistry is the part of a go-theme registry needed to publish the
// chart manifest.
type ManifestRegistry interface {
	Register(manifest *theme.Manifest) error
}

// RegisterManifest publishes the chart manifest to a go-theme registry so
// host applications can override palettes alongside their other themes.
func RegisterManifest(registry ManifestRegistry) error {
	if registry == nil {
		return fmt.Errorf("chart: theme registry is nil")
	}
	if err := registry.Register(Manifest()); err != nil {
		return fmt.Errorf("chart: register theme manifest: %w", err)
	}
	return nil
}

func paletteTokens(colors []string) map[string]string {
	tokens := make(map[string]string, len(colors))
	for idx, color := range colors {
		tokens[colorTokenPrefix+strconv.Itoa(idx+1)] = color
	}
	return tokens
}

// Colors extracts the ordered palette from a theme selection. Variant tokens
// override the manifest's base tokens.
func Colors(selection *theme.Selection) []string {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	tokens := make(map[string]string, len(selection.Manifest.Tokens))
	for key, value := range selection.Manifest.Tokens {
		tokens[key] = value
	}
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			tokens[key] = value
		}
	}
	type indexed struct {
		idx   int
		color string
	}
	var ordered []indexed
	for key, value := range tokens {
		if !strings.HasPrefix(key, colorTokenPrefix) {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(key, colorTokenPrefix))
		if err != nil || strings.TrimSpace(value) == "" {
			continue
		}
		ordered = append(ordered, indexed{idx: idx, color: value})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].idx < ordered[j].idx })
	out := make([]string, len(ordered))
	for i, entry := range ordered {
		out[i] = entry.color
	}
	return out
}

// Selector resolves palettes from a set of go-theme manifests. It implements
// theme.ThemeSelector; the zero value is not usable, use NewSelector.
type Selector struct {
	mu        sync.RWMutex
	manifests map[string]*theme.Manifest
}

// NewSelector returns a selector seeded with the built-in chart manifest and
// any extra manifests. Later manifests with the same name replace earlier ones.
func NewSelector(manifests ...*theme.Manifest) *Selector {
	s := &Selector{manifests: map[string]*theme.Manifest{ManifestName: Manifest()}}
	for _, manifest := range manifests {
		s.Add(manifest)
	}
	return s
}

// Add registers or replaces a manifest.
func (s *Selector) Add(manifest *theme.Manifest) {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[manifest.Name] = manifest
}

// Select implements theme.ThemeSelector. An empty name selects the chart
// manifest; an unknown variant is an error.
func (s *Selector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if strings.TrimSpace(name) == "" {
		name = ManifestName
	}
	s.mu.RLock()
	manifest, ok := s.manifests[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("chart: theme %q not found", name)
	}
	if variant != "" {
		if _, exists := manifest.Variants[variant]; !exists {
			return nil, fmt.Errorf("chart: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

var _ theme.ThemeSelector = (*Selector)(nil)
