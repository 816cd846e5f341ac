package common

import "strings"

const (
	DocumentCPF  = "CPF"
	DocumentCNPJ = "CNPJ"
)

// OnlyDigits strips everything but 0-9.
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DocumentType returns CPF or CNPJ based on the digit count, or "" when neither fits.
func DocumentType(doc string) string {
	switch len(OnlyDigits(doc)) {
	case 11:
		return DocumentCPF
	case 14:
		return DocumentCNPJ
	default:
		return ""
	}
}

// ValidCPF checks the two CPF verification digits.
func ValidCPF(doc string) bool {
	d := OnlyDigits(doc)
	if len(d) != 11 || allSame(d) {
		return false
	}
	for pos := 9; pos <= 10; pos++ {
		sum := 0
		for i := 0; i < pos; i++ {
			sum += int(d[i]-'0') * (pos + 1 - i)
		}
		check := (sum * 10) % 11
		if check == 10 {
			check = 0
		}
		if check != int(d[pos]-'0') {
			return false
		}
	}
	return true
}

var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// ValidCNPJ checks the two CNPJ verification digits.
func ValidCNPJ(doc string) bool {
	d := OnlyDigits(doc)
	if len(d) != 14 || allSame(d) {
		return false
	}
	for i, weights := range [][]int{cnpjWeights1, cnpjWeights2} {
		sum := 0
		for j, w := range weights {
			sum += int(d[j]-'0') * w
		}
		check := sum % 11
		if check < 2 {
			check = 0
		} else {
			check = 11 - check
		}
		if check != int(d[12+i]-'0') {
			return false
		}
	}
	return true
}

// ValidDocument accepts a valid CPF or CNPJ.
func ValidDocument(doc string) bool {
	switch DocumentType(doc) {
	case DocumentCPF:
		return ValidCPF(doc)
	case DocumentCNPJ:
		return ValidCNPJ(doc)
	}
	return false
}

func allSame(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}
