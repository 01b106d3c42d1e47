// Package models declares the persisted blog resources.
package models

// All returns every model the schema migrates
func All() []any {
	return []any{&Author{}, &Post{}, &Comment{}}
}
