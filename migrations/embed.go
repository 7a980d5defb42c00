// README: SQL migrations embedded for goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
