package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/mosaic-tools/internal/app"
	"github.com/ironsheep/mosaic-tools/internal/imaging"
	"github.com/ironsheep/mosaic-tools/internal/mosaic"
)

// errInvalidParams marks argument errors, reported with code -32602.
var errInvalidParams = errors.New("invalid params")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "mosaic_compose").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad arguments return code -32602; any other tool failure returns -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if errors.Is(err, errInvalidParams) {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "mosaic_compose":
		return s.handleCompose(args)
	case "mosaic_scan":
		return s.handleScan(args)
	case "mosaic_index_info":
		return s.handleIndexInfo(args)
	case "mosaic_nearest_color":
		return s.handleNearestColor(args)
	case "mosaic_average_color":
		return s.handleAverageColor(args)
	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidParams, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments; missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return nil
}

// ColorInfo is the JSON form of a color.
type ColorInfo struct {
	Hex string `json:"hex"`
	R   uint8  `json:"r"`
	G   uint8  `json:"g"`
	B   uint8  `json:"b"`
}

func colorInfo(c imaging.Color) ColorInfo {
	return ColorInfo{Hex: c.Hex(), R: c.R, G: c.G, B: c.B}
}

// === Composition ===

type composeArgs struct {
	Target      string `json:"target"`
	Single      bool   `json:"single"`
	Workers     int    `json:"workers"`
	Seed        uint64 `json:"seed"`
	OnTileError string `json:"on_tile_error"`
}

func (s *Server) handleCompose(args json.RawMessage) (interface{}, error) {
	var a composeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Target == "" {
		return nil, fmt.Errorf("%w: target is required", errInvalidParams)
	}
	if a.Workers < 0 {
		return nil, fmt.Errorf("%w: workers must be positive", errInvalidParams)
	}

	req := app.ComposeRequest{
		Target:  a.Target,
		Single:  a.Single,
		Workers: a.Workers,
		Seed:    a.Seed,
	}
	if a.OnTileError != "" {
		p, err := mosaic.ParsePolicy(a.OnTileError)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidParams, err)
		}
		req.OnTileError = &p
	}
	return s.app.Compose(s.ctx, req)
}

// === Tile repository ===

type scanArgs struct {
	Dir string `json:"dir"`
}

func (s *Server) handleScan(args json.RawMessage) (interface{}, error) {
	var a scanArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Dir == "" {
		return nil, fmt.Errorf("%w: dir is required", errInvalidParams)
	}
	return s.app.Scan(s.ctx, a.Dir)
}

// === Index inspection ===

type indexInfoArgs struct {
	Limit int `json:"limit"`
}

// IndexInfo describes the color index.
type IndexInfo struct {
	Path   string      `json:"path"`
	Colors int         `json:"colors"`
	Tiles  int         `json:"tiles"`
	Sample []ColorInfo `json:"sample"`
}

const defaultSampleLimit = 10

func (s *Server) handleIndexInfo(args json.RawMessage) (interface{}, error) {
	var a indexInfoArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Limit <= 0 {
		a.Limit = defaultSampleLimit
	}

	idx, err := s.app.Index(s.ctx)
	if err != nil {
		return nil, err
	}

	colors := idx.Colors()
	if len(colors) > a.Limit {
		colors = colors[:a.Limit]
	}
	info := IndexInfo{
		Path:   s.app.Config().IndexPath,
		Colors: idx.Len(),
		Tiles:  idx.TileCount(),
		Sample: make([]ColorInfo, len(colors)),
	}
	for i, c := range colors {
		info.Sample[i] = colorInfo(c)
	}
	return info, nil
}

type nearestColorArgs struct {
	Hex string `json:"hex"`
}

// NearestColorResult is the index color closest to a query.
type NearestColorResult struct {
	Query    ColorInfo `json:"query"`
	Nearest  ColorInfo `json:"nearest"`
	Distance float64   `json:"distance"`
	Tiles    []string  `json:"tiles"`
}

func (s *Server) handleNearestColor(args json.RawMessage) (interface{}, error) {
	var a nearestColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	query, err := imaging.ParseHex(a.Hex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidParams, err)
	}

	nearest, tiles, err := s.app.NearestColor(s.ctx, query)
	if err != nil {
		return nil, err
	}
	return NearestColorResult{
		Query:    colorInfo(query),
		Nearest:  colorInfo(nearest),
		Distance: imaging.Distance(query, nearest),
		Tiles:    tiles,
	}, nil
}

// === Color extraction ===

type averageColorArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleAverageColor(args json.RawMessage) (interface{}, error) {
	var a averageColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidParams)
	}
	c, err := imaging.AverageColorFile(a.Path)
	if err != nil {
		return nil, err
	}
	return colorInfo(c), nil
}
