package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/Produccion-api/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "17", "administrador", "produccion-api", 60)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse(secret, "produccion-api", tok)
	require.NoError(t, err)
	assert.Equal(t, "17", claims.UserID)
	assert.Equal(t, "administrador", claims.Role)
}

func TestParse_Rechazos(t *testing.T) {
	expired, err := pkgjwt.Generate(secret, "17", "", "produccion-api", -1)
	require.NoError(t, err)
	_, err = pkgjwt.Parse(secret, "", expired)
	assert.Error(t, err, "token expirado")

	tok, err := pkgjwt.Generate(secret, "17", "", "otro-emisor", 60)
	require.NoError(t, err)
	_, err = pkgjwt.Parse(secret, "produccion-api", tok)
	assert.Error(t, err, "emisor distinto")

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", "", tok)
	assert.Error(t, err, "secret incorrecto")

	_, err = pkgjwt.Generate("", "17", "", "", 60)
	assert.Error(t, err)
}
