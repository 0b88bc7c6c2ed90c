// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trankieu/medora/internal/platform/config"
)

/*
TestConfig_AllowedOrigins verifies the comma-separated EXTRA_ORIGINS parsing:
whitespace is trimmed, empty entries are dropped, and an unset value yields
no extra origins.
*/
func TestConfig_AllowedOrigins(t *testing.T) {
	cfg := &config.Config{ExtraOrigins: " https://staging.example.test , ,https://partner.example.org"}
	assert.Equal(t,
		[]string{"https://staging.example.test", "https://partner.example.org"},
		cfg.AllowedOrigins(),
	)

	assert.Nil(t, (&config.Config{}).AllowedOrigins())
}

func TestConfig_Environment(t *testing.T) {
	dev := &config.Config{Environment: "development"}
	assert.True(t, dev.IsDevelopment())
	assert.False(t, dev.IsProduction())

	prod := &config.Config{Environment: "production"}
	assert.True(t, prod.IsProduction())
	assert.False(t, prod.IsDevelopment())
}
