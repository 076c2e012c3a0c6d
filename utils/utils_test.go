package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.56, Round2(10.555))
	assert.Equal(t, 10.0, Round2(10))
	assert.Equal(t, -2.35, Round2(-2.345))
}

func TestMoneyFromInput(t *testing.T) {
	assert.Equal(t, "19.99", MoneyFromInput(19.99).String())
	assert.Equal(t, "0.3", MoneyFromInput(0.1+0.2).String(), "float artifacts are rounded away")
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 5, ParseIntDefault("5", 1))
	assert.Equal(t, 1, ParseIntDefault("", 1))
	assert.Equal(t, 1, ParseIntDefault("abc", 1))
	assert.Equal(t, 1, ParseIntDefault("-3", 1), "negatives fall back to the default")
	assert.Equal(t, 7, ParseIntDefault(" 7 ", 1))
}

func TestNormalizeDTO(t *testing.T) {
	type form struct {
		Name   string
		Amount float64
	}
	f := form{Name: "  Acme  ", Amount: 10.555}
	NormalizeDTO(&f)
	assert.Equal(t, "Acme", f.Name)
	assert.Equal(t, 10.56, f.Amount)
}

func TestNormalizePtrDTO(t *testing.T) {
	type form struct {
		Name   *string
		Amount *float64
	}
	name := "  Acme  "
	amount := 10.555
	f := form{Name: &name, Amount: &amount}
	NormalizePtrDTO(&f)
	assert.Equal(t, "Acme", *f.Name)
	assert.Equal(t, 10.56, *f.Amount)

	var empty form
	NormalizePtrDTO(&empty) // nil fields stay nil
	assert.Nil(t, empty.Name)
}
