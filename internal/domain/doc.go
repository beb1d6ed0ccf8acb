// Package domain defines the core entities of the content generation layer:
// generation requests, resolved metadata context, and the activity variants
// produced per skill/format pair, including their redacted public views.
package domain
