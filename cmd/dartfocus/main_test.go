package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/dartfocus/internal/cli"
	"github.com/rshade/dartfocus/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		assert.NotNil(t, root)
		assert.Equal(t, "dartfocus", root.Use)
	})
}
