package kijiji

import (
	"strings"
	"testing"
)

func TestBuildSearchURL_WithKeyword(t *testing.T) {
	got := BuildSearchURL("https://www.kijiji.ca/b-buy-sell/edmonton", "rtx 3080", "10", 25)
	want := "https://www.kijiji.ca/b-buy-sell/edmonton/rtx%203080/k0c10l1700203?address=edmonton&radius=25&sort=dateDesc&view=list"
	if got != want {
		t.Errorf("BuildSearchURL:\n got %s\nwant %s", got, want)
	}
}

func TestBuildSearchURL_NoKeyword(t *testing.T) {
	got := BuildSearchURL("https://www.kijiji.ca/b-buy-sell/edmonton", "", "10", 50)
	want := "https://www.kijiji.ca/b-buy-sell/edmonton/c10l1700203?address=edmonton&radius=50&sort=dateDesc&view=list"
	if got != want {
		t.Errorf("BuildSearchURL:\n got %s\nwant %s", got, want)
	}
}

func TestBuildSearchURL_CategoryPath(t *testing.T) {
	got := BuildSearchURL("https://www.kijiji.ca/b-buy-sell/calgary", "civic", "27", 50)
	if !strings.Contains(got, "/b-cars-vehicles/calgary/") {
		t.Errorf("expected cars category path, got %s", got)
	}
	if !strings.Contains(got, "k0c27l1700199") {
		t.Errorf("expected category and Calgary codes, got %s", got)
	}
}

func TestBuildSearchURL_UnknownCategoryFallsBack(t *testing.T) {
	got := BuildSearchURL("https://www.kijiji.ca/b-buy-sell/edmonton", "", "99999", 50)
	if !strings.Contains(got, "/b-buy-sell/") || !strings.Contains(got, "c10l1700203") {
		t.Errorf("expected buy-sell fallback, got %s", got)
	}
}

func TestBuildSearchURL_UnknownRegionFallsBack(t *testing.T) {
	got := BuildSearchURL("https://www.kijiji.ca/b-buy-sell/moncton", "", "10", 50)
	if !strings.Contains(got, "/moncton/") {
		t.Errorf("region name should be kept, got %s", got)
	}
	if !strings.Contains(got, "l1700203") {
		t.Errorf("expected default region code, got %s", got)
	}
}

func TestBuildSearchURL_RadiusDefault(t *testing.T) {
	got := BuildSearchURL("https://www.kijiji.ca/b-buy-sell/edmonton", "", "10", 0)
	if !strings.Contains(got, "radius=50") {
		t.Errorf("expected default radius 50, got %s", got)
	}
}

func TestRegionNameFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.kijiji.ca/b-buy-sell/edmonton", "edmonton"},
		{"https://www.kijiji.ca/b-cars-vehicles/calgary/k0c27l1700199", "calgary"},
		{"https://www.kijiji.ca/toronto", "toronto"},
		{"https://www.kijiji.ca/", ""},
		{"://bad url", ""},
	}
	for _, tt := range tests {
		if got := regionNameFromURL(tt.url); got != tt.want {
			t.Errorf("regionNameFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
