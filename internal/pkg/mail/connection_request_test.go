package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConnectionRequestEmail(t *testing.T) {
	body, err := BuildConnectionRequestEmail("Maria", "João Souza")
	require.NoError(t, err)

	assert.Contains(t, body, "Olá, Maria")
	assert.Contains(t, body, "João Souza")
	assert.Contains(t, body, "/conexoes")
	assert.Contains(t, body, "Solicitação de Conexão")
}

func TestBuildConnectionRequestEmail_EscapesHTML(t *testing.T) {
	body, err := BuildConnectionRequestEmail("<script>alert(1)</script>", "x")
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>alert(1)</script>")
}
