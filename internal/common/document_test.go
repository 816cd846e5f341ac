package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCPF(t *testing.T) {
	assert.True(t, ValidCPF("529.982.247-25"))
	assert.True(t, ValidCPF("52998224725"))
	assert.False(t, ValidCPF("529.982.247-24"))
	assert.False(t, ValidCPF("111.111.111-11"))
	assert.False(t, ValidCPF("1234"))
}

func TestValidCNPJ(t *testing.T) {
	assert.True(t, ValidCNPJ("11.222.333/0001-81"))
	assert.True(t, ValidCNPJ("11222333000181"))
	assert.False(t, ValidCNPJ("11.222.333/0001-80"))
	assert.False(t, ValidCNPJ("00000000000000"))
}

func TestDocumentType(t *testing.T) {
	assert.Equal(t, DocumentCPF, DocumentType("529.982.247-25"))
	assert.Equal(t, DocumentCNPJ, DocumentType("11.222.333/0001-81"))
	assert.Equal(t, "", DocumentType("123"))
	assert.True(t, ValidDocument("11.222.333/0001-81"))
	assert.False(t, ValidDocument("123"))
}

func TestAppErrorIs(t *testing.T) {
	err := NotFound("product")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, "product", err.Details["resource"])
}

func TestValidatePaginationParams(t *testing.T) {
	l, o := ValidatePaginationParams(0, -5)
	assert.Equal(t, 20, l)
	assert.Equal(t, 0, o)
	l, _ = ValidatePaginationParams(1000, 0)
	assert.Equal(t, 100, l)
}
