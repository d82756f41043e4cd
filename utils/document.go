package utils

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizeDocument strips punctuation from a CPF/CNPJ for storage.
func NormalizeDocument(doc string) string {
	return nonDigits.ReplaceAllString(doc, "")
}

// ValidateCPF checks the 11-digit CPF checksum.
func ValidateCPF(cpf string) bool {
	digits := NormalizeDocument(cpf)
	if len(digits) != 11 {
		return false
	}

	// Sequences like 00000000000 pass the checksum but are not valid CPFs
	if strings.Count(digits, string(digits[0])) == 11 {
		return false
	}

	for _, pos := range []int{9, 10} {
		sum := 0
		for i := 0; i < pos; i++ {
			sum += int(digits[i]-'0') * (pos + 1 - i)
		}
		check := (sum * 10) % 11
		if check == 10 {
			check = 0
		}
		if check != int(digits[pos]-'0') {
			return false
		}
	}

	return true
}

// ValidateCNPJ checks the 14-digit CNPJ checksum.
func ValidateCNPJ(cnpj string) bool {
	digits := NormalizeDocument(cnpj)
	if len(digits) != 14 {
		return false
	}

	if strings.Count(digits, string(digits[0])) == 14 {
		return false
	}

	weightsFirst := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	weightsSecond := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}

	for _, w := range [][]int{weightsFirst, weightsSecond} {
		sum := 0
		for i, weight := range w {
			sum += int(digits[i]-'0') * weight
		}
		check := sum % 11
		if check < 2 {
			check = 0
		} else {
			check = 11 - check
		}
		if check != int(digits[len(w)]-'0') {
			return false
		}
	}

	return true
}

// DisplayCPF formats a normalized CPF as XXX.XXX.XXX-XX.
func DisplayCPF(cpf string) string {
	digits := NormalizeDocument(cpf)
	if len(digits) != 11 {
		return cpf
	}
	return digits[:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:]
}
