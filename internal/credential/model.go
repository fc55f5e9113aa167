// Package credential holds the account table reserved for operator login.
// No route reads or writes it yet; the table is created at startup so the
// schema matches deployments that already carry it.
package credential

import "github.com/uptrace/bun"

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             int64  `bun:"id,pk,autoincrement"`
	Email          string `bun:"email,type:varchar(255),unique,notnull"`
	HashedPassword string `bun:"hashed_password,type:varchar(255),notnull"`
}

// Models lists the tables owned by this package.
func Models() []interface{} {
	return []interface{}{(*User)(nil)}
}
