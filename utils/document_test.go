package utils

import "testing"

func TestValidateCPF(t *testing.T) {
	valid := []string{
		"52998224725",
		"529.982.247-25",
		"111.444.777-35",
	}
	for _, cpf := range valid {
		if !ValidateCPF(cpf) {
			t.Errorf("expected %q to be valid", cpf)
		}
	}

	invalid := []string{
		"",
		"5299822472",
		"52998224724",
		"11111111111",
		"000.000.000-00",
		"abc.def.ghi-jk",
	}
	for _, cpf := range invalid {
		if ValidateCPF(cpf) {
			t.Errorf("expected %q to be invalid", cpf)
		}
	}
}

func TestValidateCNPJ(t *testing.T) {
	valid := []string{
		"11222333000181",
		"11.222.333/0001-81",
	}
	for _, cnpj := range valid {
		if !ValidateCNPJ(cnpj) {
			t.Errorf("expected %q to be valid", cnpj)
		}
	}

	invalid := []string{
		"",
		"1122233300018",
		"11222333000180",
		"00000000000000",
	}
	for _, cnpj := range invalid {
		if ValidateCNPJ(cnpj) {
			t.Errorf("expected %q to be invalid", cnpj)
		}
	}
}

func TestNormalizeAndDisplay(t *testing.T) {
	if got := NormalizeDocument("529.982.247-25"); got != "52998224725" {
		t.Fatalf("normalize: got %q", got)
	}
	if got := DisplayCPF("52998224725"); got != "529.982.247-25" {
		t.Fatalf("display: got %q", got)
	}
	if got := DisplayCPF("123"); got != "123" {
		t.Fatalf("display should pass through malformed input, got %q", got)
	}
}
