package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/leafmeter/internal/analysis"
	"github.com/ironsheep/leafmeter/internal/detection"
	"github.com/ironsheep/leafmeter/internal/imaging"
	"github.com/ironsheep/leafmeter/internal/morphometry"
)

// errMissingPath is returned when a tool call omits the image path.
var errMissingPath = errors.New("path is required")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "leaf_analyze").
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
// Bad arguments, undecodable images and invalid reference areas return code
// -32602; other failures return -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		if isInvalidParams(err) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
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

// argumentError marks a malformed tool argument payload.
type argumentError struct {
	err error
}

func (e *argumentError) Error() string { return "invalid arguments: " + e.err.Error() }
func (e *argumentError) Unwrap() error { return e.err }

func isInvalidParams(err error) bool {
	var ae *argumentError
	return errors.As(err, &ae) || analysis.IsClientError(err)
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "leaf_analyze":
		return s.handleLeafAnalyze(args)
	case "leaf_detect_shapes":
		return s.handleLeafDetectShapes(args)
	case "leaf_calibrate":
		return s.handleLeafCalibrate(args)
	case "leaf_overlay":
		return s.handleLeafOverlay(args)
	default:
		return nil, &argumentError{err: fmt.Errorf("unknown tool: %s", name)}
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type leafArgs struct {
	Path             string   `json:"path"`
	RealAreaSquare   *float64 `json:"real_area_square"`
	IncludeOverlay   bool     `json:"include_overlay"`
	IncludeCentroids bool     `json:"include_centroids"`
}

func parseLeafArgs(args json.RawMessage) (leafArgs, error) {
	var a leafArgs
	if len(args) == 0 {
		return a, &argumentError{err: errMissingPath}
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return a, &argumentError{err: err}
	}
	if a.Path == "" {
		return a, &argumentError{err: errMissingPath}
	}
	// RunOptions treats zero as "use the default", so an explicit zero is
	// rejected here.
	if a.RealAreaSquare != nil && *a.RealAreaSquare == 0 {
		return a, fmt.Errorf("%w: got 0", analysis.ErrInvalidReferenceArea)
	}
	return a, nil
}

// analyze runs the pipeline on the image named by args.
func (s *Server) analyze(args json.RawMessage, overlay bool) (leafArgs, *analysis.Report, error) {
	a, err := parseLeafArgs(args)
	if err != nil {
		return a, nil, err
	}
	opts := analysis.RunOptions{Overlay: overlay || a.IncludeOverlay}
	if a.RealAreaSquare != nil {
		opts.ReferenceArea = *a.RealAreaSquare
	}
	report, err := s.analyzer.AnalyzeFile(a.Path, opts)
	return a, report, err
}

func (s *Server) handleLeafAnalyze(args json.RawMessage) (interface{}, error) {
	a, report, err := s.analyze(args, false)
	if err != nil {
		return nil, err
	}
	p := s.analyzer.Config().Pipeline
	return report.Record(p.RoundLeafMetrics, a.IncludeCentroids || p.IncludeCentroids), nil
}

// detectShapesResult is the output of leaf_detect_shapes.
type detectShapesResult struct {
	Width              int               `json:"width"`
	Height             int               `json:"height"`
	OtsuLevel          uint8             `json:"otsu_level"`
	ForegroundFraction float64           `json:"foreground_fraction"`
	Squares            int               `json:"squares"`
	Leaves             int               `json:"leaves"`
	Shapes             []detection.Shape `json:"shapes"`
}

func (s *Server) handleLeafDetectShapes(args json.RawMessage) (interface{}, error) {
	_, report, err := s.analyze(args, false)
	if err != nil {
		return nil, err
	}
	return &detectShapesResult{
		Width:              report.Width,
		Height:             report.Height,
		OtsuLevel:          report.OtsuLevel,
		ForegroundFraction: report.ForegroundFraction,
		Squares:            len(report.Squares),
		Leaves:             len(report.Leaves),
		Shapes:             report.Shapes,
	}, nil
}

// calibrateResult is the output of leaf_calibrate.
type calibrateResult struct {
	ReferenceArea float64                  `json:"reference_area"`
	SquaresFound  int                      `json:"squares_found"`
	Scale         morphometry.ScaleFactors `json:"scale"`
	Reference     *detection.Shape         `json:"reference,omitempty"`
}

func (s *Server) handleLeafCalibrate(args json.RawMessage) (interface{}, error) {
	_, report, err := s.analyze(args, false)
	if err != nil {
		return nil, err
	}

	res := &calibrateResult{
		ReferenceArea: report.ReferenceArea,
		SquaresFound:  len(report.Squares),
		Scale:         report.Scale,
	}
	for i := range report.Shapes {
		if report.Shapes[i].Class == detection.ClassSquare {
			res.Reference = &report.Shapes[i]
			break
		}
	}
	return res, nil
}

// overlayResult is the output of leaf_overlay.
type overlayResult struct {
	NumberOfLeaves int `json:"number_of_leaves"`
	*imaging.OverlayResult
}

func (s *Server) handleLeafOverlay(args json.RawMessage) (interface{}, error) {
	_, report, err := s.analyze(args, true)
	if err != nil {
		return nil, err
	}
	return &overlayResult{
		NumberOfLeaves: report.Result.NumberOfLeaves,
		OverlayResult:  report.Overlay,
	}, nil
}
