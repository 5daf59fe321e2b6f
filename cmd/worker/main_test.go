package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/basteen-Dev/pavilion/internal/app"
	_ "github.com/basteen-Dev/pavilion/internal/testing/guard"
)

func TestMainSkipsStartupInTestMode(t *testing.T) {
	require.True(t, app.InTestMode())
	main()
}
