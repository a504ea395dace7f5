package parse

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    float64
		wantErr bool
	}{
		{"json number", float64(150), 150, false},
		{"negative number", float64(-500), -500, false},
		{"numeric string", "42.5", 42.5, false},
		{"division expression", "1200/3", 400, false},
		{"division with spaces", "100 / 4", 25, false},
		{"division non-integer quotient", "100/3", 100.0 / 3.0, false},
		{"division by zero", "100/0", 0, true},
		{"bad numerator", "abc/3", 0, true},
		{"bad denominator", "100/x", 0, true},
		{"empty string", "", 0, true},
		{"missing", nil, 0, true},
		{"wrong type", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAmount(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("parseAmount(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"coffee", "Coffee"},
		{"COFFEE AND CAKE", "Coffee And Cake"},
		{"uber to airport", "Uber To Airport"},
		{"loan given", "Loan Given"},
		{"", ""},
		{"123 pizza", "123 Pizza"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := titleCase(tt.input)
			if got != tt.want {
				t.Errorf("titleCase(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
