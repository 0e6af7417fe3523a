package schemas

import "embed"

// SchemasFS содержит JSON-схемы входящих запросов и сообщений очередей.
//
//go:embed requests events
var SchemasFS embed.FS
