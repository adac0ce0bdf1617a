package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/mosaic-tools/internal/app"
)

// createTestImageFile writes a solid PNG into dir and returns its path.
func createTestImageFile(t *testing.T, dir, name string, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create image file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool sends a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatal(err)
	}

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeContent unmarshals the text content of a successful tool response
// into v.
func decodeContent(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content should hold one item, got %v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode tool result %q: %v", text, err)
	}
}

// scanPhotos fills a folder with red, green and blue photos and scans it.
func scanPhotos(t *testing.T, s *Server) app.ScanResult {
	t.Helper()
	photos := t.TempDir()
	createTestImageFile(t, photos, "red.png", 20, 20, color.RGBA{255, 0, 0, 255})
	createTestImageFile(t, photos, "green.png", 20, 20, color.RGBA{0, 255, 0, 255})
	createTestImageFile(t, photos, "blue.png", 20, 20, color.RGBA{0, 0, 255, 255})

	var res app.ScanResult
	decodeContent(t, callTool(t, s, "mosaic_scan", map[string]interface{}{"dir": photos}), &res)
	return res
}

func TestHandleToolsCall_Scan(t *testing.T) {
	s := newTestServer(t)
	res := scanPhotos(t, s)

	if res.Added != 3 || res.Tiles != 3 || res.Colors != 3 {
		t.Errorf("scan result: %+v", res)
	}
}

func TestHandleToolsCall_Compose(t *testing.T) {
	s := newTestServer(t)
	scanPhotos(t, s)
	target := createTestImageFile(t, t.TempDir(), "target.png", 55, 32, color.RGBA{10, 240, 10, 255})

	var res app.ComposeResult
	decodeContent(t, callTool(t, s, "mosaic_compose", map[string]interface{}{
		"target":        target,
		"seed":          9,
		"workers":       2,
		"on_tile_error": "fallback",
	}), &res)

	if res.Width != 50 || res.Height != 30 || res.Columns != 5 || res.Rows != 3 {
		t.Errorf("compose result: %+v", res)
	}
	if res.Seed != 9 {
		t.Errorf("seed: got %d, want 9", res.Seed)
	}
	if _, err := os.Stat(res.Output); err != nil {
		t.Errorf("composite not written: %v", err)
	}
}

func TestHandleToolsCall_IndexInfo(t *testing.T) {
	s := newTestServer(t)
	scanPhotos(t, s)

	var info IndexInfo
	decodeContent(t, callTool(t, s, "mosaic_index_info", map[string]interface{}{"limit": 2}), &info)

	if info.Colors != 3 || info.Tiles != 3 {
		t.Errorf("index info: %+v", info)
	}
	if len(info.Sample) != 2 {
		t.Errorf("sample: got %d colors, want 2", len(info.Sample))
	}
	for _, c := range info.Sample {
		if len(c.Hex) != 7 || c.Hex[0] != '#' {
			t.Errorf("bad hex %q", c.Hex)
		}
	}
}

func TestHandleToolsCall_NearestColor(t *testing.T) {
	s := newTestServer(t)
	scanPhotos(t, s)

	var res NearestColorResult
	decodeContent(t, callTool(t, s, "mosaic_nearest_color", map[string]interface{}{"hex": "#1020e0"}), &res)

	if res.Query.R != 0x10 || res.Query.G != 0x20 || res.Query.B != 0xe0 {
		t.Errorf("query: %+v", res.Query)
	}
	if res.Nearest.B < 200 {
		t.Errorf("nearest: got %+v, want the blue tile color", res.Nearest)
	}
	if len(res.Tiles) != 1 || filepath.Base(res.Tiles[0]) != "blue.jpg" {
		t.Errorf("tiles: got %v, want [blue.jpg]", res.Tiles)
	}
	if res.Distance <= 0 {
		t.Errorf("distance: got %v", res.Distance)
	}
}

func TestHandleToolsCall_AverageColor(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, t.TempDir(), "grey.png", 16, 16, color.RGBA{100, 150, 200, 255})

	var c ColorInfo
	decodeContent(t, callTool(t, s, "mosaic_average_color", map[string]interface{}{"path": path}), &c)

	if c.R != 100 || c.G != 150 || c.B != 200 || c.Hex != "#6496c8" {
		t.Errorf("average: got %+v", c)
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		tool     string
		args     interface{}
		wantCode int
	}{
		{"unknown tool", "image_crop", map[string]interface{}{}, -32602},
		{"compose without target", "mosaic_compose", map[string]interface{}{}, -32602},
		{"compose bad policy", "mosaic_compose", map[string]interface{}{"target": "/x.png", "on_tile_error": "retry"}, -32602},
		{"compose wrong type", "mosaic_compose", map[string]interface{}{"target": 7}, -32602},
		{"compose missing file", "mosaic_compose", map[string]interface{}{"target": "/nonexistent/image.png"}, -32000},
		{"scan without dir", "mosaic_scan", nil, -32602},
		{"scan missing dir", "mosaic_scan", map[string]interface{}{"dir": "/nonexistent/photos"}, -32000},
		{"nearest bad hex", "mosaic_nearest_color", map[string]interface{}{"hex": "blue"}, -32602},
		{"nearest empty index", "mosaic_nearest_color", map[string]interface{}{"hex": "#000000"}, -32000},
		{"index info empty index", "mosaic_index_info", nil, -32000},
		{"average without path", "mosaic_average_color", map[string]interface{}{}, -32602},
		{"average missing file", "mosaic_average_color", map[string]interface{}{"path": "/nonexistent/image.png"}, -32000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, tt.tool, tt.args)
			if resp.Error == nil {
				t.Fatalf("expected error, got result %v", resp.Result)
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("Error code: got %d, want %d (%v)", resp.Error.Code, tt.wantCode, resp.Error.Data)
			}
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`[1,2,3]`),
	})

	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("expected -32602, got %+v", resp.Error)
	}
}
