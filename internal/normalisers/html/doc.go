// Package html provides a Normaliser for HTML files. It drops scripts,
// styles and markup, keeps block structure as line breaks and decodes entities.
package html
