package models

// ModelRegistry lists every gorm model that --auto-migrate creates.
var ModelRegistry = []interface{}{
	&KVEntry{},
}
