package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDriverURL(t *testing.T) {
	assert.Equal(t, "pgx5://app@db:5432/pavilion?sslmode=disable", DriverURL("postgres://app@db:5432/pavilion?sslmode=disable"))
	assert.Equal(t, "pgx5://app@db/pavilion", DriverURL("postgresql://app@db/pavilion"))
	assert.Equal(t, "pgx5://already", DriverURL("pgx5://already"))
}
