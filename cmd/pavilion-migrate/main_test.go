package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunRejectsBadArguments(t *testing.T) {
	logger := slog.Default()
	cases := map[string]struct {
		args []string
		dsn  string
	}{
		"no command":      {nil, "postgres://localhost/pavilion"},
		"missing dsn":     {[]string{"up"}, ""},
		"unknown command": {[]string{"sideways"}, "postgres://localhost/pavilion"},
		"steps no count":  {[]string{"steps"}, "postgres://localhost/pavilion"},
		"steps zero":      {[]string{"steps", "0"}, "postgres://localhost/pavilion"},
		"steps not a int": {[]string{"steps", "x"}, "postgres://localhost/pavilion"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, run(tc.args, tc.dsn, logger))
		})
	}
}
