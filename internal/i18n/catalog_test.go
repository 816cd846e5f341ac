package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Registro não encontrado", c.Error("NOT_FOUND", "x"))
	assert.Equal(t, "fallback", c.Error("UNKNOWN_CODE", "fallback"))
	assert.Equal(t, "SKU", c.Field("sku"))
	assert.Equal(t, "quantity", c.Field("quantity"))
}

func TestValidation(t *testing.T) {
	c := MustLoad()

	assert.Equal(t, "SKU é obrigatório", c.Validation("required", "sku", ""))
	assert.Equal(t, "role deve ser um de: ADMIN, SELLER", c.Validation("oneof", "role", "ADMIN SELLER"))
	assert.Equal(t, "price é inválido", c.Validation("weird_tag", "price", ""))
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	assert.Equal(t, "fb", c.Error("NOT_FOUND", "fb"))
	assert.Equal(t, "price is invalid", c.Validation("required", "price", ""))
}

func TestMessage(t *testing.T) {
	c := MustLoad()

	assert.Equal(t, "O desconto é maior que o subtotal", c.Message("discount exceeds subtotal"))
	assert.Equal(t, "sku X already exists", c.Message("sku X already exists"))
}

func TestParseSections(t *testing.T) {
	c, err := Parse([]byte(`
[validation]
required = "{field} is required"

[messages]
"stock cannot be negative" = "no negative stock"
`))
	require.NoError(t, err)

	assert.Equal(t, "{field} is required", c.Rules["required"])
	assert.Equal(t, "sku is required", c.Validation("required", "sku", ""))
	assert.Equal(t, "no negative stock", c.Message("stock cannot be negative"))
}
