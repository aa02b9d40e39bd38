package storage

import "testing"

func TestValidSourceURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://groww.in/mutual-funds/uti-nifty-index-fund-direct-growth", true},
		{"http://groww.in/mutual-funds/uti-flexi-cap-fund-direct-growth", true},
		{"https://www.groww.in/mutual-funds/uti-nifty-index-fund-direct-growth", true},
		{"https://groww.in/stocks/reliance", false},
		{"https://example.com/mutual-funds/foo", false},
		{"https://groww.in/mutual-funds/", false},
		{"https://groww.in/mutual-funds/fund name with spaces", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidSourceURL(tt.url); got != tt.want {
			t.Errorf("ValidSourceURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestValidFundName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"UTI Nifty Index Fund Direct Growth", true},
		{"UTI", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidFundName(tt.name); got != tt.want {
			t.Errorf("ValidFundName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestValidAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"₹500", true},
		{"₹5,000", true},
		{"1,234.56 Cr", true},
		{"14,000 Crore", true},
		{"2.5 Lakh", true},
		{"500", true},
		{"not a number", false},
		{"₹", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidAmount(tt.amount); got != tt.want {
			t.Errorf("ValidAmount(%q) = %v, want %v", tt.amount, got, tt.want)
		}
	}
}

func TestValidPercentage(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"0.21%", true},
		{"0.21", true},
		{"12.5 %", true},
		{"-8.4%", true},
		{"1000%", true},
		{"1001%", false},
		{"-101%", false},
		{"N/A", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidPercentage(tt.value); got != tt.want {
			t.Errorf("ValidPercentage(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestValidRatio(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"24.6", true},
		{"0", true},
		{"1000", true},
		{"1000.1", false},
		{"-1", false},
		{"high", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidRatio(tt.value); got != tt.want {
			t.Errorf("ValidRatio(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
