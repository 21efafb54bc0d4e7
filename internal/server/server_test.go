package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"resourcemap/internal/config"
	"resourcemap/internal/sheet"
)

func testConfig(t *testing.T, withWorkbook bool) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		ServerAddr: ":0",
		Sheet: config.SheetConfig{
			InputPath: filepath.Join(dir, "resources.xlsx"),
		},
	}
	if withWorkbook {
		table := &sheet.Table{
			SheetName: "Sheet1",
			Headers:   []string{"Name of Service", "Cateogry of Help", "Latitude", "Longitude"},
			Rows: [][]string{
				{"Free Clinic", "Physical & General Health Care", "39.2904", "-76.6122"},
				{"No Coords", "", "", ""},
			},
		}
		if err := table.Write(cfg.Sheet.InputPath); err != nil {
			t.Fatal(err)
		}
	}
	return cfg
}

func get(t *testing.T, s *Server, target string) (*http.Response, string) {
	t.Helper()
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("request %s: %v", target, err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestPing(t *testing.T) {
	s, err := New(testConfig(t, false), nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, body := get(t, s, "/ping")
	if resp.StatusCode != http.StatusOK || body != "pong" {
		t.Fatalf("ping = %d %q", resp.StatusCode, body)
	}
}

func TestMapPageRendersMarkers(t *testing.T) {
	s, err := New(testConfig(t, true), nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, body := get(t, s, "/map")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Free Clinic") {
		t.Error("kept record not in the rendered page")
	}
	if strings.Contains(body, "No Coords") {
		t.Error("coordinate-less row leaked into the page")
	}
	if !strings.Contains(body, "1 resources") {
		t.Error("marker count not rendered")
	}
}

func TestMapPageRendersWithMissingWorkbook(t *testing.T) {
	s, err := New(testConfig(t, false), nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, _ := get(t, s, "/map")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("a missing workbook must still render the page, got %d", resp.StatusCode)
	}
}

func TestMapDebugDump(t *testing.T) {
	s, err := New(testConfig(t, true), nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, body := get(t, s, "/map?debug=1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
	for _, want := range []string{"Parsed rows (with coords): 1", "Skipped (no coords): 1", "Sample row:"} {
		if !strings.Contains(body, want) {
			t.Errorf("debug dump missing %q:\n%s", want, body)
		}
	}
}

func TestHomePage(t *testing.T) {
	s, err := New(testConfig(t, false), nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, body := get(t, s, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "/map") {
		t.Error("home page does not link to the map")
	}
}
