package credential_test

import (
	"context"
	"testing"

	"registration-service/internal/credential"
	"registration-service/internal/db"
	"registration-service/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserTable(t *testing.T) {
	database := testutil.NewSQLiteDB(t, credential.Models()...)
	ctx := context.Background()

	user := &credential.User{Email: "admin@example.com", HashedPassword: "x"}
	_, err := database.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	_, err = database.NewInsert().Model(&credential.User{Email: "admin@example.com", HashedPassword: "y"}).Exec(ctx)
	detail, ok := db.UniqueViolation(err)
	assert.True(t, ok)
	assert.Contains(t, detail, "users.email")
}
