// Package pongo renders templates with pongo2 behind the
// template.TemplateRenderer contract.
package pongo
