package model

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var bcryptFormat = regexp.MustCompile(`^\$2[aby]\$\d{2}\$[./A-Za-z0-9]{53}$`)

func TestAccount_SetPassword(t *testing.T) {
	var acc Account
	require.NoError(t, acc.SetPassword("Pa$$w0rd2025!", bcrypt.MinCost))

	assert.NotEqual(t, "Pa$$w0rd2025!", acc.Password)
	assert.Regexp(t, bcryptFormat, acc.Password)
	assert.True(t, acc.CheckPassword("Pa$$w0rd2025!"))
	assert.False(t, acc.CheckPassword("wrong"))
}

func TestAccount_SetPassword_Salted(t *testing.T) {
	var a, b Account
	require.NoError(t, a.SetPassword("same-password", bcrypt.MinCost))
	require.NoError(t, b.SetPassword("same-password", bcrypt.MinCost))
	assert.NotEqual(t, a.Password, b.Password)
}

func TestAccount_SetPassword_InvalidCostFallsBack(t *testing.T) {
	var acc Account
	require.NoError(t, acc.SetPassword("secret", 0))
	cost, err := bcrypt.Cost([]byte(acc.Password))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
